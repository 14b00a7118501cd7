package admin

import (
	"bytes"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/louisbranch/wedding.rsvp/internal/services/web/platform/httpx"
	"github.com/louisbranch/wedding.rsvp/internal/services/web/platform/qrimage"
	webtemplates "github.com/louisbranch/wedding.rsvp/internal/services/web/templates"
	"github.com/louisbranch/wedding.rsvp/internal/services/wedding/domain/guest"
)

func (h handlers) handleQR(w http.ResponseWriter, r *http.Request) {
	loc := h.Localize(w, r)
	guests, err := h.qrGuests(r)
	if err != nil {
		h.WriteError(w, r, loc, err)
		return
	}
	h.WriteAdminPage(w, r, loc, loc.Sprintf("admin.qr.title"), http.StatusOK, webtemplates.AdminQR(guests, loc))
}

func (h handlers) handleQRPrintable(w http.ResponseWriter, r *http.Request) {
	loc := h.Localize(w, r)
	guests, err := h.qrGuests(r)
	if err != nil {
		h.WriteError(w, r, loc, err)
		return
	}
	h.WriteAdminPage(w, r, loc, loc.Sprintf("admin.qr.printable"), http.StatusOK, webtemplates.AdminQRPrintable(guests, loc))
}

// handleQRDownload sends one guest's code as an attachment.
func (h handlers) handleQRDownload(w http.ResponseWriter, r *http.Request) {
	loc := h.Localize(w, r)
	format, ok := qrimage.ParseFormat(r.PathValue("format"))
	if !ok {
		h.WriteNotFound(w, r, loc)
		return
	}
	g, err := h.pathGuest(r)
	if err != nil {
		h.WriteError(w, r, loc, err)
		return
	}
	image, err := qrimage.Encode(h.deps.Settings.RSVPLink(g.Token), format, qrimage.DownloadModule)
	if err != nil {
		h.WriteError(w, r, loc, err)
		return
	}
	filename := "qr_" + qrimage.SafeName(g.Name) + "." + string(format)
	err = httpx.WriteDownload(w, filename, format.ContentType(), func(out io.Writer) error {
		_, err := out.Write(image)
		return err
	})
	if err != nil {
		h.Logger().Error("write qr download", zap.Int64("guest_id", g.ID), zap.Error(err))
	}
}

// handleQRPreview serves a smaller inline PNG for the index page.
func (h handlers) handleQRPreview(w http.ResponseWriter, r *http.Request) {
	loc := h.Localize(w, r)
	g, err := h.pathGuest(r)
	if err != nil {
		h.WriteError(w, r, loc, err)
		return
	}
	image, err := qrimage.Encode(h.deps.Settings.RSVPLink(g.Token), qrimage.PNG, qrimage.PreviewModule)
	if err != nil {
		h.WriteError(w, r, loc, err)
		return
	}
	w.Header().Set("Content-Type", qrimage.PNG.ContentType())
	w.Header().Set("Cache-Control", "private, max-age=300")
	if _, err := w.Write(image); err != nil {
		h.Logger().Error("write qr preview", zap.Int64("guest_id", g.ID), zap.Error(err))
	}
}

// handleQRArchive zips every guest's code. Encoding happens before the
// first byte is written so a failure still gets an error page.
func (h handlers) handleQRArchive(w http.ResponseWriter, r *http.Request) {
	loc := h.Localize(w, r)
	format, ok := qrimage.ParseFormat(r.PathValue("format"))
	if !ok {
		h.WriteNotFound(w, r, loc)
		return
	}
	guests, err := h.deps.Services.Guests.List(r.Context())
	if err != nil {
		h.WriteError(w, r, loc, err)
		return
	}
	entries := make([]qrimage.Entry, 0, len(guests))
	for _, g := range guests {
		entries = append(entries, qrimage.Entry{Name: g.Name, URL: h.deps.Settings.RSVPLink(g.Token)})
	}
	var archive bytes.Buffer
	if err := qrimage.WriteArchive(&archive, entries, format); err != nil {
		h.WriteError(w, r, loc, err)
		return
	}
	filename := "wedding_qr_codes_" + string(format) + ".zip"
	err = httpx.WriteDownload(w, filename, "application/zip", func(out io.Writer) error {
		_, err := archive.WriteTo(out)
		return err
	})
	if err != nil {
		h.Logger().Error("write qr archive", zap.Int("guests", len(entries)), zap.Error(err))
	}
}

func (h handlers) qrGuests(r *http.Request) ([]webtemplates.QRGuest, error) {
	guests, err := h.deps.Services.Guests.List(r.Context())
	if err != nil {
		return nil, err
	}
	out := make([]webtemplates.QRGuest, 0, len(guests))
	for _, g := range guests {
		out = append(out, webtemplates.QRGuest{
			ID:    g.ID,
			Name:  g.Name,
			Phone: g.Phone,
			Link:  h.deps.Settings.RSVPLink(g.Token),
		})
	}
	return out, nil
}

func (h handlers) pathGuest(r *http.Request) (guest.Guest, error) {
	id, err := pathID(r)
	if err != nil {
		return guest.Guest{}, err
	}
	return h.deps.Services.Guests.Get(r.Context(), id)
}
