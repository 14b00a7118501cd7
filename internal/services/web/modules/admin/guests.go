package admin

import (
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"go.uber.org/zap"

	apperrors "github.com/louisbranch/wedding.rsvp/internal/platform/errors"
	flashnotice "github.com/louisbranch/wedding.rsvp/internal/services/web/platform/flash"
	"github.com/louisbranch/wedding.rsvp/internal/services/web/platform/httpx"
	"github.com/louisbranch/wedding.rsvp/internal/services/web/platform/pagerender"
	"github.com/louisbranch/wedding.rsvp/internal/services/web/platform/weberror"
	"github.com/louisbranch/wedding.rsvp/internal/services/web/routepath"
	webtemplates "github.com/louisbranch/wedding.rsvp/internal/services/web/templates"
	"github.com/louisbranch/wedding.rsvp/internal/services/wedding/domain/guest"
)

const (
	// multipartOverhead is the room left for boundaries and headers
	// around the CSV upload.
	multipartOverhead = 1 << 20
	multipartMemory   = 1 << 20
	templateFilename  = "guest_template.csv"
)

func (h handlers) handleGuests(w http.ResponseWriter, r *http.Request) {
	h.Redirect(w, r, routepath.AdminDashboard)
}

func (h handlers) handleGuestNew(w http.ResponseWriter, r *http.Request) {
	loc := h.Localize(w, r)
	h.writeGuestForm(w, r, loc, webtemplates.GuestFormView{
		Guest: guest.Guest{Language: guest.DefaultLanguage},
		IsNew: true,
	}, http.StatusOK)
}

func (h handlers) handleGuestCreate(w http.ResponseWriter, r *http.Request) {
	loc := h.Localize(w, r)
	if !h.parseForm(w, r, loc) {
		return
	}
	g := guestFromForm(r)
	if _, err := h.deps.Services.Guests.Add(r.Context(), g); err != nil {
		h.writeGuestFormError(w, r, loc, webtemplates.GuestFormView{Guest: g, IsNew: true}, err)
		return
	}
	h.Flash(w, r, flashnotice.Success("admin.flash.guest_added"))
	h.Redirect(w, r, routepath.AdminDashboard)
}

func (h handlers) handleGuestEdit(w http.ResponseWriter, r *http.Request) {
	loc := h.Localize(w, r)
	id, err := pathID(r)
	if err != nil {
		h.WriteError(w, r, loc, err)
		return
	}
	g, err := h.deps.Services.Guests.Get(r.Context(), id)
	if err != nil {
		h.WriteError(w, r, loc, err)
		return
	}
	h.writeGuestForm(w, r, loc, webtemplates.GuestFormView{Guest: g}, http.StatusOK)
}

func (h handlers) handleGuestUpdate(w http.ResponseWriter, r *http.Request) {
	loc := h.Localize(w, r)
	id, err := pathID(r)
	if err != nil {
		h.WriteError(w, r, loc, err)
		return
	}
	if !h.parseForm(w, r, loc) {
		return
	}
	g := guestFromForm(r)
	g.ID = id
	if _, err := h.deps.Services.Guests.Update(r.Context(), g); err != nil {
		if apperrors.CodeOf(err) == apperrors.CodeGuestNotFound {
			h.WriteError(w, r, loc, err)
			return
		}
		if existing, getErr := h.deps.Services.Guests.Get(r.Context(), id); getErr == nil {
			g.Token = existing.Token
		}
		h.writeGuestFormError(w, r, loc, webtemplates.GuestFormView{Guest: g}, err)
		return
	}
	h.Flash(w, r, flashnotice.Success("admin.flash.guest_updated"))
	h.Redirect(w, r, routepath.AdminDashboard)
}

func (h handlers) handleGuestDelete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err == nil {
		err = h.deps.Services.Guests.Delete(r.Context(), id)
	}
	if err != nil {
		h.WriteError(w, r, h.Localize(w, r), err)
		return
	}
	h.Flash(w, r, flashnotice.Success("admin.flash.guest_deleted"))
	h.Redirect(w, r, routepath.AdminDashboard)
}

func (h handlers) handleImportPage(w http.ResponseWriter, r *http.Request) {
	loc := h.Localize(w, r)
	h.WriteAdminPage(w, r, loc, loc.Sprintf("admin.import.title"), http.StatusOK, webtemplates.AdminImport(loc))
}

func (h handlers) handleImport(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, guest.DefaultMaxCSVBytes+multipartOverhead)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.importFailed(w, r, apperrors.New(apperrors.CodeCSVTooLarge, "upload exceeds size limit"))
			return
		}
		h.Flash(w, r, flashnotice.Error("admin.import.no_file"))
		h.Redirect(w, r, routepath.AdminGuestImport)
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	file, header, err := r.FormFile("file")
	if err != nil || header.Filename == "" {
		h.Flash(w, r, flashnotice.Error("admin.import.no_file"))
		h.Redirect(w, r, routepath.AdminGuestImport)
		return
	}
	defer file.Close()
	if !strings.EqualFold(filepath.Ext(header.Filename), ".csv") {
		h.Flash(w, r, flashnotice.Error("admin.import.not_csv"))
		h.Redirect(w, r, routepath.AdminGuestImport)
		return
	}

	created, err := h.deps.Services.Guests.Import(r.Context(), file)
	if err != nil {
		h.importFailed(w, r, err)
		return
	}
	h.Flash(w, r, flashnotice.Success("admin.flash.guests_imported", strconv.Itoa(len(created))))
	h.Redirect(w, r, routepath.AdminDashboard)
}

// importFailed flashes a row-level problem, or the generic failure for
// server errors, and returns to the upload form.
func (h handlers) importFailed(w http.ResponseWriter, r *http.Request, err error) {
	if !h.flashError(w, r, err) {
		h.Logger().Error("guest import failed", zap.Error(err))
		h.Flash(w, r, flashnotice.Error("admin.flash.import_failed"))
	}
	h.Redirect(w, r, routepath.AdminGuestImport)
}

func (h handlers) handleTemplate(w http.ResponseWriter, r *http.Request) {
	err := httpx.WriteDownload(w, templateFilename, "text/csv; charset=utf-8", func(out io.Writer) error {
		_, err := io.WriteString(out, guest.CSVTemplate())
		return err
	})
	if err != nil {
		h.Logger().Warn("write guest template", zap.Error(err))
	}
}

func (h handlers) writeGuestForm(w http.ResponseWriter, r *http.Request, loc pagerender.Locale, view webtemplates.GuestFormView, status int) {
	title := loc.Sprintf("admin.guests.edit")
	if view.IsNew {
		title = loc.Sprintf("admin.guests.add")
	}
	h.WriteAdminPage(w, r, loc, title, status, webtemplates.AdminGuestForm(view, loc))
}

// writeGuestFormError re-renders the form with a validation message, or
// the error page for anything else.
func (h handlers) writeGuestFormError(w http.ResponseWriter, r *http.Request, loc pagerender.Locale, view webtemplates.GuestFormView, err error) {
	status := apperrors.HTTPStatus(err)
	if status < http.StatusBadRequest || status >= http.StatusInternalServerError {
		h.WriteError(w, r, loc, err)
		return
	}
	view.Error = weberror.PublicMessage(loc, err)
	h.writeGuestForm(w, r, loc, view, status)
}

func guestFromForm(r *http.Request) guest.Guest {
	form := r.PostForm
	return guest.Guest{
		Name:       form.Get("name"),
		Phone:      form.Get("phone"),
		Email:      form.Get("email"),
		Language:   guest.ParseLanguage(form.Get("language")),
		HasPlusOne: form.Get("has_plus_one") != "",
		IsFamily:   form.Get("is_family") != "",
	}
}
