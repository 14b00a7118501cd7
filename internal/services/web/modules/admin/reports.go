package admin

import (
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/louisbranch/wedding.rsvp/internal/services/web/platform/httpx"
	webtemplates "github.com/louisbranch/wedding.rsvp/internal/services/web/templates"
	"github.com/louisbranch/wedding.rsvp/internal/services/wedding/domain/report"
)

func (h handlers) handleDietary(w http.ResponseWriter, r *http.Request) {
	loc := h.Localize(w, r)
	dietary, err := h.deps.Services.Reports.Dietary(r.Context())
	if err != nil {
		h.WriteError(w, r, loc, err)
		return
	}
	h.WriteAdminPage(w, r, loc, loc.Sprintf("admin.dietary.title"), http.StatusOK, webtemplates.AdminDietary(dietary, loc))
}

func (h handlers) handleTransport(w http.ResponseWriter, r *http.Request) {
	loc := h.Localize(w, r)
	transport, err := h.deps.Services.Reports.Transport(r.Context())
	if err != nil {
		h.WriteError(w, r, loc, err)
		return
	}
	h.WriteAdminPage(w, r, loc, loc.Sprintf("admin.transport.title"), http.StatusOK, webtemplates.AdminTransport(transport, loc))
}

func (h handlers) handlePending(w http.ResponseWriter, r *http.Request) {
	loc := h.Localize(w, r)
	pending, err := h.deps.Services.Reports.Pending(r.Context())
	if err != nil {
		h.WriteError(w, r, loc, err)
		return
	}
	h.WriteAdminPage(w, r, loc, loc.Sprintf("admin.pending.title"), http.StatusOK,
		webtemplates.AdminPending(webtemplates.PendingView{Guests: pending, RSVPLink: h.deps.Settings.RSVPLink}, loc))
}

// handleExport downloads one CSV row per reply.
func (h handlers) handleExport(w http.ResponseWriter, r *http.Request) {
	rows, err := h.deps.Services.Reports.Detailed(r.Context())
	if err != nil {
		h.WriteError(w, r, h.Localize(w, r), err)
		return
	}
	filename := "rsvps_" + h.deps.Now().Format("20060102") + ".csv"
	err = httpx.WriteDownload(w, filename, "text/csv; charset=utf-8", func(out io.Writer) error {
		return report.WriteDetailedCSV(out, rows)
	})
	if err != nil {
		h.Logger().Error("write rsvp export", zap.Error(err))
	}
}
