package calendar

import (
	"testing"
	"time"
)

func mustParse(t *testing.T) Calendar {
	t.Helper()
	cal, err := Parse("2026-06-06", "2026-05-06", time.UTC)
	if err != nil {
		t.Fatalf("parse calendar: %v", err)
	}
	return cal
}

func TestParseRejectsInvalidDates(t *testing.T) {
	t.Parallel()

	if _, err := Parse("06/06/2026", "2026-05-06", time.UTC); err == nil {
		t.Fatal("expected wedding date error")
	}
	if _, err := Parse("2026-06-06", "not-a-date", time.UTC); err == nil {
		t.Fatal("expected deadline error")
	}
}

func TestDeadlinePassed(t *testing.T) {
	t.Parallel()

	cal := mustParse(t)
	tests := []struct {
		name string
		now  time.Time
		want bool
	}{
		{name: "day before", now: time.Date(2026, 5, 5, 23, 0, 0, 0, time.UTC), want: false},
		{name: "deadline day morning", now: time.Date(2026, 5, 6, 0, 1, 0, 0, time.UTC), want: false},
		{name: "deadline day night", now: time.Date(2026, 5, 6, 23, 59, 0, 0, time.UTC), want: false},
		{name: "day after", now: time.Date(2026, 5, 7, 0, 0, 0, 0, time.UTC), want: true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := cal.DeadlinePassed(tc.now); got != tc.want {
				t.Fatalf("DeadlinePassed(%s) = %v, want %v", tc.now, got, tc.want)
			}
		})
	}
}

func TestEditableUsesWeddingDate(t *testing.T) {
	t.Parallel()

	cal := mustParse(t)
	if !cal.Editable(time.Date(2026, 5, 29, 23, 59, 0, 0, time.UTC)) {
		t.Fatal("expected editable eight days out")
	}
	if cal.Editable(time.Date(2026, 5, 30, 0, 0, 0, 0, time.UTC)) {
		t.Fatal("expected locked exactly seven days out")
	}
	if !cal.Editable(time.Date(2026, 5, 20, 0, 0, 0, 0, time.UTC)) {
		t.Fatal("editability must not depend on the deadline")
	}
}

func TestDaysUntilDeadline(t *testing.T) {
	t.Parallel()

	cal := mustParse(t)
	if got := cal.DaysUntilDeadline(time.Date(2026, 4, 6, 15, 0, 0, 0, time.UTC)); got != 30 {
		t.Fatalf("DaysUntilDeadline = %d, want 30", got)
	}
	if got := cal.DaysUntilDeadline(time.Date(2026, 5, 8, 0, 0, 0, 0, time.UTC)); got != -2 {
		t.Fatalf("DaysUntilDeadline = %d, want -2", got)
	}
}

func TestFormatDate(t *testing.T) {
	t.Parallel()

	day := time.Date(2026, 6, 6, 0, 0, 0, 0, time.UTC)
	if got := FormatDate(day, "en"); got != "June 6, 2026" {
		t.Fatalf("FormatDate(en) = %q", got)
	}
	if got := FormatDate(day, "es"); got != "6 de junio de 2026" {
		t.Fatalf("FormatDate(es) = %q", got)
	}
	if got := FormatDate(time.Time{}, "en"); got != "" {
		t.Fatalf("FormatDate(zero) = %q", got)
	}
}
