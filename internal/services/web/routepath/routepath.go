// Package routepath stores canonical HTTP paths for web modules.
package routepath

import (
	"net/url"
	"strconv"
	"strings"
)

const (
	Root         = "/"
	Health       = "/health"
	Metrics      = "/metrics"
	StaticPrefix = "/static/"

	RSVPPrefix              = "/rsvp/"
	RSVPLandingPattern      = RSVPPrefix + "{$}"
	RSVPFormPattern         = RSVPPrefix + "{token}"
	RSVPCancelPattern       = RSVPPrefix + "{token}/cancel"
	RSVPConfirmationPattern = RSVPPrefix + "{token}/confirmation"

	AdminPrefix                = "/admin/"
	AdminLogin                 = "/admin/login"
	AdminLogout                = "/admin/logout"
	AdminDashboard             = "/admin/dashboard"
	AdminGuests                = "/admin/guests"
	AdminGuestNew              = "/admin/guests/new"
	AdminGuestImport           = "/admin/guests/import"
	AdminGuestTemplate         = "/admin/guests/template.csv"
	AdminGuestPattern          = "/admin/guests/{guestID}"
	AdminGuestEditPattern      = "/admin/guests/{guestID}/edit"
	AdminGuestDeletePattern    = "/admin/guests/{guestID}/delete"
	AdminAllergens             = "/admin/allergens"
	AdminDietary               = "/admin/reports/dietary"
	AdminTransport             = "/admin/reports/transport"
	AdminPending               = "/admin/reports/pending"
	AdminExport                = "/admin/reports/rsvps.csv"
	AdminReminders             = "/admin/reminders"
	AdminRemindersSend         = "/admin/reminders/send"
	AdminReminderOptOutPattern = "/admin/reminders/{guestID}/opt-out"

	AdminQR                      = "/admin/qr"
	AdminQRPrintable             = "/admin/qr/printable"
	AdminQRDownloadAll           = "/admin/qr/download-all"
	AdminQRDownloadAllPattern    = "/admin/qr/download-all/{format}"
	AdminQRDownloadPattern       = "/admin/qr/download/{guestID}"
	AdminQRDownloadFormatPattern = "/admin/qr/download/{guestID}/{format}"
	AdminQRPreviewPattern        = "/admin/qr/preview/{guestID}"

	CronPrefix        = "/api/cron/"
	CronSendReminders = "/api/cron/send-reminders"
	CronStatus        = "/api/cron/status"

	// NextQueryKey carries the post-login destination.
	NextQueryKey = "next"
)

// RSVPForm returns the RSVP page of a guest token.
func RSVPForm(token string) string {
	return RSVPPrefix + escapeSegment(token)
}

// RSVPCancel returns the cancel action of a guest token.
func RSVPCancel(token string) string {
	return RSVPForm(token) + "/cancel"
}

// RSVPConfirmation returns the post-submit page of a guest token.
func RSVPConfirmation(token string) string {
	return RSVPForm(token) + "/confirmation"
}

// AdminGuest returns the update action of a guest.
func AdminGuest(guestID int64) string {
	return AdminGuests + "/" + strconv.FormatInt(guestID, 10)
}

// AdminGuestEdit returns the edit form of a guest.
func AdminGuestEdit(guestID int64) string {
	return AdminGuest(guestID) + "/edit"
}

// AdminGuestDelete returns the delete action of a guest.
func AdminGuestDelete(guestID int64) string {
	return AdminGuest(guestID) + "/delete"
}

// AdminReminderOptOut returns the opt-out action of a guest.
func AdminReminderOptOut(guestID int64) string {
	return AdminReminders + "/" + strconv.FormatInt(guestID, 10) + "/opt-out"
}

// AdminQRDownload returns the QR image download of a guest.
func AdminQRDownload(guestID int64, format string) string {
	return AdminQR + "/download/" + strconv.FormatInt(guestID, 10) + "/" + escapeSegment(format)
}

// AdminQRPreview returns the inline QR image of a guest.
func AdminQRPreview(guestID int64) string {
	return AdminQR + "/preview/" + strconv.FormatInt(guestID, 10)
}

// AdminQRArchive returns the zip of every guest QR image in format.
func AdminQRArchive(format string) string {
	return AdminQRDownloadAll + "/" + escapeSegment(format)
}

// AdminLoginWithNext returns the login page remembering a destination.
// Only local admin paths are kept.
func AdminLoginWithNext(next string) string {
	next = strings.TrimSpace(next)
	if !IsLocalAdminPath(next) {
		return AdminLogin
	}
	return AdminLogin + "?" + url.Values{NextQueryKey: {next}}.Encode()
}

// IsLocalAdminPath reports whether path is a safe post-login redirect.
func IsLocalAdminPath(path string) bool {
	if !strings.HasPrefix(path, AdminPrefix) || strings.HasPrefix(path, "//") {
		return false
	}
	return !strings.ContainsAny(path, "\\\r\n")
}

func escapeSegment(raw string) string {
	return url.PathEscape(strings.TrimSpace(raw))
}
