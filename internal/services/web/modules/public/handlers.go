package public

import (
	"net/http"

	"go.uber.org/zap"

	module "github.com/louisbranch/wedding.rsvp/internal/services/web/module"
	"github.com/louisbranch/wedding.rsvp/internal/services/web/platform/httpx"
	"github.com/louisbranch/wedding.rsvp/internal/services/web/platform/modulehandler"
	"github.com/louisbranch/wedding.rsvp/internal/services/web/routepath"
	"github.com/louisbranch/wedding.rsvp/internal/services/web/static"
	webtemplates "github.com/louisbranch/wedding.rsvp/internal/services/web/templates"
)

const staticCacheControl = "public, max-age=3600"

type handlers struct {
	modulehandler.Base
	deps    module.Dependencies
	metrics http.Handler
	static  http.Handler
}

func newHandlers(deps module.Dependencies) handlers {
	files := http.StripPrefix(routepath.StaticPrefix, http.FileServerFS(static.FS))
	return handlers{
		Base:    modulehandler.NewBase(deps),
		deps:    deps,
		metrics: deps.Metrics.Handler(),
		static: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Cache-Control", staticCacheControl)
			files.ServeHTTP(w, r)
		}),
	}
}

func (h handlers) handleHome(w http.ResponseWriter, r *http.Request) {
	loc := h.Localize(w, r)
	cal := h.deps.Calendar
	view := webtemplates.HomeView{
		Title:          h.deps.Settings.Title,
		WeddingDate:    cal.WeddingDate,
		Deadline:       cal.RSVPDeadline,
		DeadlinePassed: cal.DeadlinePassed(h.deps.Now()),
		AdminPhone:     h.deps.Settings.AdminPhone,
	}
	h.WritePage(w, r, loc, "", webtemplates.Home(view, loc.Lang(), loc))
}

type healthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
}

func (h handlers) handleHealth(w http.ResponseWriter, r *http.Request) {
	if h.deps.Ping != nil {
		if err := h.deps.Ping(r); err != nil {
			h.Logger().Error("health check failed", zap.Error(err))
			_ = httpx.WriteJSON(w, http.StatusServiceUnavailable, healthResponse{Status: "unhealthy", Database: "disconnected"})
			return
		}
	}
	_ = httpx.WriteJSON(w, http.StatusOK, healthResponse{Status: "healthy", Database: "connected"})
}

func (h handlers) handleNotFound(w http.ResponseWriter, r *http.Request) {
	h.WriteNotFound(w, r, h.Localize(w, r))
}
