package admin

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/louisbranch/wedding.rsvp/internal/platform/requestctx"
	flashnotice "github.com/louisbranch/wedding.rsvp/internal/services/web/platform/flash"
	"github.com/louisbranch/wedding.rsvp/internal/services/web/routepath"
	webtemplates "github.com/louisbranch/wedding.rsvp/internal/services/web/templates"
)

// manualSender labels reminders sent from the dashboard.
const manualSender = "admin"

func (h handlers) handleReminders(w http.ResponseWriter, r *http.Request) {
	loc := h.Localize(w, r)
	ctx := r.Context()
	stats, err := h.deps.Services.Reminders.Statistics(ctx)
	if err != nil {
		h.WriteError(w, r, loc, err)
		return
	}
	schedule, err := h.deps.Services.Reminders.Status(ctx, h.deps.Now())
	if err != nil {
		h.WriteError(w, r, loc, err)
		return
	}
	guests, err := h.deps.Services.Guests.List(ctx)
	if err != nil {
		h.WriteError(w, r, loc, err)
		return
	}
	h.WriteAdminPage(w, r, loc, loc.Sprintf("admin.reminders.title"), http.StatusOK,
		webtemplates.AdminReminders(webtemplates.RemindersView{
			Statistics: stats,
			Schedule:   schedule,
			Guests:     guests,
		}, loc.Lang(), loc))
}

func (h handlers) handleRemindersSend(w http.ResponseWriter, r *http.Request) {
	loc := h.Localize(w, r)
	if !h.parseForm(w, r, loc) {
		return
	}
	var ids []int64
	for _, raw := range r.PostForm["guest_id"] {
		id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
		if err != nil || id <= 0 {
			continue
		}
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		h.Flash(w, r, flashnotice.Warning("admin.reminders.none_selected"))
		h.Redirect(w, r, routepath.AdminReminders)
		return
	}

	sentBy := manualSender
	if subject := requestctx.AdminFromContext(r.Context()); subject != "" {
		sentBy = manualSender + ":" + subject
	}
	result, err := h.deps.Services.Reminders.SendManual(r.Context(), ids, strings.TrimSpace(r.PostForm.Get("message")), sentBy)
	if err != nil {
		h.WriteError(w, r, loc, err)
		return
	}
	h.WriteAdminPage(w, r, loc, loc.Sprintf("admin.reminders.title"), http.StatusOK, webtemplates.ReminderResult(result, loc))
}

func (h handlers) handleOptOut(w http.ResponseWriter, r *http.Request) {
	loc := h.Localize(w, r)
	id, err := pathID(r)
	if err != nil {
		h.WriteError(w, r, loc, err)
		return
	}
	g, err := h.deps.Services.Guests.Get(r.Context(), id)
	if err == nil {
		err = h.deps.Services.Reminders.OptOut(r.Context(), id)
	}
	if err != nil {
		h.WriteError(w, r, loc, err)
		return
	}
	h.Flash(w, r, flashnotice.Success("admin.flash.opted_out", g.Name))
	h.Redirect(w, r, routepath.AdminReminders)
}

func (h handlers) handleAllergens(w http.ResponseWriter, r *http.Request) {
	loc := h.Localize(w, r)
	list, err := h.deps.Services.Allergens.List(r.Context())
	if err != nil {
		h.WriteError(w, r, loc, err)
		return
	}
	h.WriteAdminPage(w, r, loc, loc.Sprintf("admin.allergens.title"), http.StatusOK, webtemplates.AdminAllergens(list, loc))
}

func (h handlers) handleAllergenCreate(w http.ResponseWriter, r *http.Request) {
	loc := h.Localize(w, r)
	if !h.parseForm(w, r, loc) {
		return
	}
	created, err := h.deps.Services.Allergens.Add(r.Context(), r.PostForm.Get("name"))
	if err != nil {
		if !h.flashError(w, r, err) {
			h.WriteError(w, r, loc, err)
			return
		}
		h.Redirect(w, r, routepath.AdminAllergens)
		return
	}
	h.Flash(w, r, flashnotice.Success("admin.flash.allergen_added", created.Name))
	h.Redirect(w, r, routepath.AdminAllergens)
}
