package cron

import (
	"crypto/subtle"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	apperrors "github.com/louisbranch/wedding.rsvp/internal/platform/errors"
	"github.com/louisbranch/wedding.rsvp/internal/platform/logging"
	module "github.com/louisbranch/wedding.rsvp/internal/services/web/module"
	"github.com/louisbranch/wedding.rsvp/internal/services/web/platform/httpx"
	"github.com/louisbranch/wedding.rsvp/internal/services/web/platform/requestmeta"
	"github.com/louisbranch/wedding.rsvp/internal/services/web/platform/weberror"
	weddingapp "github.com/louisbranch/wedding.rsvp/internal/services/wedding/app"
)

// Query parameters.
const (
	keyParam    = "key"
	forceParam  = "force_reminder"
	dryRunParam = "dry_run"
)

type handlers struct {
	deps   module.Dependencies
	logger *zap.Logger
}

func newHandlers(deps module.Dependencies) handlers {
	return handlers{deps: deps, logger: logging.OrNop(deps.Logger)}
}

// requireKey admits requests carrying the configured cron secret.
func (h handlers) requireKey(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h.deps.CronSecret == "" {
			h.logger.Error("cron secret is not configured")
			_ = httpx.WriteJSONError(w, http.StatusInternalServerError, "Server misconfigured")
			return
		}
		key := r.URL.Query().Get(keyParam)
		if subtle.ConstantTimeCompare([]byte(key), []byte(h.deps.CronSecret)) != 1 {
			h.logger.Warn("invalid cron key",
				zap.String("path", r.URL.Path),
				zap.String("client_ip", requestmeta.ClientIP(r, h.deps.Policy)),
			)
			_ = httpx.WriteJSONError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		next.ServeHTTP(w, r)
	})
}

type detailResponse struct {
	GuestID int64  `json:"guest_id"`
	Name    string `json:"name"`
	Phone   string `json:"phone,omitempty"`
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

type sendResponse struct {
	Status            string            `json:"status"`
	Message           string            `json:"message,omitempty"`
	ReminderNumber    int               `json:"reminder_number,omitempty"`
	Today             string            `json:"today"`
	RSVPDeadline      string            `json:"rsvp_deadline,omitempty"`
	UpcomingReminders map[string]string `json:"upcoming_reminders"`
	DryRun            *bool             `json:"dry_run,omitempty"`
	Total             *int              `json:"total,omitempty"`
	Sent              *int              `json:"sent,omitempty"`
	Failed            *int              `json:"failed,omitempty"`
	Skipped           *int              `json:"skipped,omitempty"`
	Details           []detailResponse  `json:"details,omitempty"`
}

func (h handlers) handleSendReminders(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	force := 0
	if raw := strings.TrimSpace(query.Get(forceParam)); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			weberror.WriteJSON(w, r, h.logger, apperrors.New(apperrors.CodeInvalidInput, "force_reminder must be a number"))
			return
		}
		force = n
	}
	dryRun := strings.EqualFold(strings.TrimSpace(query.Get(dryRunParam)), "true")

	run, err := h.deps.Services.Reminders.RunScheduled(r.Context(), h.deps.Now(), force, dryRun)
	if err != nil {
		weberror.WriteJSON(w, r, h.logger, err)
		return
	}
	_ = httpx.WriteJSON(w, http.StatusOK, newSendResponse(run))
}

func newSendResponse(run weddingapp.ScheduledRun) sendResponse {
	resp := sendResponse{
		Status:            string(run.Action),
		Today:             weddingapp.DeadlineLabel(run.Today),
		UpcomingReminders: make(map[string]string, len(run.Upcoming)),
	}
	switch run.Action {
	case weddingapp.RunNoAction:
		resp.Message = fmt.Sprintf("No reminder scheduled for today. %d days until deadline.", run.DaysUntil)
		resp.RSVPDeadline = weddingapp.DeadlineLabel(run.Deadline)
		for _, d := range run.Upcoming {
			resp.UpcomingReminders[d.Key()] = weddingapp.DeadlineLabel(d.Day)
		}
	case weddingapp.RunNoGuests:
		resp.Message = fmt.Sprintf("No guests need reminder %d", run.Number)
		resp.ReminderNumber = run.Number
	default:
		result := run.Result
		resp.ReminderNumber = run.Number
		resp.DryRun = &run.DryRun
		resp.Total = &result.Total
		resp.Sent = &result.Sent
		resp.Failed = &result.Failed
		resp.Skipped = &result.Skipped
		resp.Details = make([]detailResponse, 0, len(result.Details))
		for _, d := range result.Details {
			resp.Details = append(resp.Details, detailResponse{
				GuestID: d.GuestID,
				Name:    d.Guest,
				Phone:   d.Phone,
				Status:  d.Status,
				Message: d.Message,
			})
		}
	}
	return resp
}

type scheduleEntry struct {
	Date               string `json:"date"`
	DaysBeforeDeadline int    `json:"days_before_deadline"`
	Status             string `json:"status"`
}

type statusResponse struct {
	Status            string                   `json:"status"`
	Today             string                   `json:"today"`
	RSVPDeadline      string                   `json:"rsvp_deadline"`
	DaysUntilDeadline int                      `json:"days_until_deadline"`
	PendingGuests     int                      `json:"pending_guests"`
	ReminderSchedule  map[string]scheduleEntry `json:"reminder_schedule"`
	TodayReminder     *int                     `json:"today_reminder"`
}

func (h handlers) handleStatus(w http.ResponseWriter, r *http.Request) {
	st, err := h.deps.Services.Reminders.Status(r.Context(), h.deps.Now())
	if err != nil {
		weberror.WriteJSON(w, r, h.logger, err)
		return
	}
	resp := statusResponse{
		Status:            "ok",
		Today:             weddingapp.DeadlineLabel(st.Today),
		RSVPDeadline:      weddingapp.DeadlineLabel(st.Deadline),
		DaysUntilDeadline: st.DaysUntil,
		PendingGuests:     st.Pending,
		ReminderSchedule:  make(map[string]scheduleEntry, len(st.Schedule)),
	}
	for _, d := range st.Schedule {
		resp.ReminderSchedule[d.Key()] = scheduleEntry{
			Date:               weddingapp.DeadlineLabel(d.Day),
			DaysBeforeDeadline: d.DaysBefore,
			Status:             st.DateState(d),
		}
	}
	if st.TodayNumber > 0 {
		n := st.TodayNumber
		resp.TodayReminder = &n
	}
	_ = httpx.WriteJSON(w, http.StatusOK, resp)
}

func (h handlers) handleNotFound(w http.ResponseWriter, _ *http.Request) {
	_ = httpx.WriteJSONError(w, http.StatusNotFound, "Not found")
}
