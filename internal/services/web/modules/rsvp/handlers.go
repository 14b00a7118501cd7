package rsvp

import (
	"errors"
	"net/http"

	apperrors "github.com/louisbranch/wedding.rsvp/internal/platform/errors"
	platformi18n "github.com/louisbranch/wedding.rsvp/internal/platform/i18n"
	module "github.com/louisbranch/wedding.rsvp/internal/services/web/module"
	flashnotice "github.com/louisbranch/wedding.rsvp/internal/services/web/platform/flash"
	"github.com/louisbranch/wedding.rsvp/internal/services/web/platform/modulehandler"
	"github.com/louisbranch/wedding.rsvp/internal/services/web/platform/pagerender"
	"github.com/louisbranch/wedding.rsvp/internal/services/web/routepath"
	webtemplates "github.com/louisbranch/wedding.rsvp/internal/services/web/templates"
	weddingapp "github.com/louisbranch/wedding.rsvp/internal/services/wedding/app"
	"github.com/louisbranch/wedding.rsvp/internal/services/wedding/domain/guest"
	"github.com/louisbranch/wedding.rsvp/internal/services/wedding/domain/rsvp"
)

// maxFormBytes bounds the reply form body.
const maxFormBytes = 64 << 10

type handlers struct {
	modulehandler.Base
	deps module.Dependencies
}

func newHandlers(deps module.Dependencies) handlers {
	return handlers{Base: modulehandler.NewBase(deps), deps: deps}
}

// localizeFor uses the guest's stored language unless the visitor picked
// one explicitly.
func (h handlers) localizeFor(w http.ResponseWriter, r *http.Request, g guest.Guest) pagerender.Locale {
	tag, ok := platformi18n.ParseTag(string(g.Language))
	if !ok {
		return h.Localize(w, r)
	}
	return pagerender.LocalizeWithDefault(w, r, tag)
}

func (h handlers) handleLanding(w http.ResponseWriter, r *http.Request) {
	loc := h.Localize(w, r)
	cal := h.deps.Calendar
	if cal.DeadlinePassed(h.deps.Now()) {
		h.WritePage(w, r, loc, loc.Sprintf("rsvp.deadline.title"),
			webtemplates.RSVPDeadlinePassed(h.deps.Settings.AdminPhone, loc))
		return
	}
	h.WritePage(w, r, loc, loc.Sprintf("rsvp.landing.title"),
		webtemplates.RSVPLanding(cal.RSVPDeadline, loc.Lang(), loc))
}

func (h handlers) handleForm(w http.ResponseWriter, r *http.Request) {
	page, err := h.deps.Services.RSVP.Load(r.Context(), r.PathValue("token"))
	if err != nil {
		h.WriteError(w, r, h.Localize(w, r), err)
		return
	}
	loc := h.localizeFor(w, r, page.Guest)
	if page.DeadlinePassed {
		h.WritePage(w, r, loc, loc.Sprintf("rsvp.deadline.title"),
			webtemplates.RSVPDeadlinePassed(h.deps.Settings.AdminPhone, loc))
		return
	}
	view := h.formView(page)
	if page.RSVP != nil {
		view.Values = rsvp.FormValues(*page.RSVP, page.Guest)
	}
	h.WritePage(w, r, loc, loc.Sprintf("rsvp.form.title"), webtemplates.RSVPForm(view, loc.Lang(), loc))
}

func (h handlers) handleSubmit(w http.ResponseWriter, r *http.Request) {
	token := r.PathValue("token")
	page, err := h.deps.Services.RSVP.Load(r.Context(), token)
	if err != nil {
		h.WriteError(w, r, h.Localize(w, r), err)
		return
	}
	loc := h.localizeFor(w, r, page.Guest)

	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	if err := r.ParseForm(); err != nil {
		h.WriteError(w, r, loc, apperrors.Wrap(apperrors.CodeInvalidInput, "parse rsvp form", err))
		return
	}

	saved, err := h.deps.Services.RSVP.Submit(r.Context(), token, r.PostForm)
	if err != nil {
		var invalid *rsvp.InvalidError
		if errors.As(err, &invalid) {
			view := h.formView(page)
			view.Values = r.PostForm
			view.Problems = invalid.Problems
			h.WritePageStatus(w, r, loc, loc.Sprintf("rsvp.form.title"), http.StatusBadRequest,
				webtemplates.RSVPForm(view, loc.Lang(), loc))
			return
		}
		if h.flashClosed(w, r, err) {
			h.Redirect(w, r, routepath.RSVPForm(token))
			return
		}
		h.WriteError(w, r, loc, err)
		return
	}

	if saved.Status() == rsvp.StatusAttending {
		h.Flash(w, r, flashnotice.Success("rsvp.flash.submitted"))
	} else {
		h.Flash(w, r, flashnotice.Success("rsvp.flash.declined"))
	}
	h.Redirect(w, r, routepath.RSVPConfirmation(token))
}

func (h handlers) handleCancel(w http.ResponseWriter, r *http.Request) {
	token := r.PathValue("token")
	if _, err := h.deps.Services.RSVP.Cancel(r.Context(), token); err != nil {
		switch {
		case apperrors.CodeOf(err) == apperrors.CodeRSVPNotFound:
			h.Flash(w, r, flashnotice.Error("error.rsvp_not_found"))
			h.Redirect(w, r, routepath.RSVPForm(token))
		case h.flashClosed(w, r, err):
			h.Redirect(w, r, routepath.RSVPForm(token))
		default:
			h.WriteError(w, r, h.Localize(w, r), err)
		}
		return
	}
	h.Flash(w, r, flashnotice.Success("rsvp.flash.cancelled"))
	h.Redirect(w, r, routepath.RSVPConfirmation(token))
}

func (h handlers) handleConfirmation(w http.ResponseWriter, r *http.Request) {
	token := r.PathValue("token")
	page, err := h.deps.Services.RSVP.Load(r.Context(), token)
	if err != nil {
		h.WriteError(w, r, h.Localize(w, r), err)
		return
	}
	if page.RSVP == nil {
		h.Redirect(w, r, routepath.RSVPForm(token))
		return
	}
	loc := h.localizeFor(w, r, page.Guest)
	h.WritePage(w, r, loc, loc.Sprintf("rsvp.confirmation.title"),
		webtemplates.RSVPConfirmation(token, page.RSVP.Status(), loc))
}

func (h handlers) handleNotFound(w http.ResponseWriter, r *http.Request) {
	h.WriteNotFound(w, r, h.Localize(w, r))
}

// flashClosed stores a warning when replies are closed or locked.
func (h handlers) flashClosed(w http.ResponseWriter, r *http.Request, err error) bool {
	switch code := apperrors.CodeOf(err); code {
	case apperrors.CodeRSVPDeadlinePassed, apperrors.CodeRSVPNotEditable:
		h.Flash(w, r, flashnotice.Warning(code.Key()))
		return true
	default:
		return false
	}
}

func (h handlers) formView(page weddingapp.RSVPPage) webtemplates.RSVPFormView {
	return webtemplates.RSVPFormView{
		Guest:      page.Guest,
		Deadline:   h.deps.Calendar.RSVPDeadline,
		AdminPhone: h.deps.Settings.AdminPhone,
		Allergens:  page.Allergens,
		Summary:    page.Summary,
		Editable:   page.Editable,
	}
}
