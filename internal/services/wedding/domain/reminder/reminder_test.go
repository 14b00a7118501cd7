package reminder

import (
	"testing"
	"time"
)

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestForDay(t *testing.T) {
	t.Parallel()

	deadline := day("2026-05-06")
	tests := []struct {
		today string
		want  Type
		ok    bool
	}{
		{today: "2026-04-06", want: TypeInitial, ok: true},
		{today: "2026-04-22", want: TypeFirst, ok: true},
		{today: "2026-04-29", want: TypeSecond, ok: true},
		{today: "2026-05-03", want: TypeFinal, ok: true},
		{today: "2026-05-04"},
		{today: "2026-05-06"},
	}
	for _, tc := range tests {
		got, ok := ForDay(deadline, day(tc.today))
		if got != tc.want || ok != tc.ok {
			t.Fatalf("ForDay(%s) = (%q, %v), want (%q, %v)", tc.today, got, ok, tc.want, tc.ok)
		}
	}
}

func TestForDayIgnoresTimeOfDay(t *testing.T) {
	t.Parallel()

	deadline := day("2026-05-06")
	today := time.Date(2026, 5, 3, 23, 59, 0, 0, time.UTC)
	if got, ok := ForDay(deadline, today); !ok || got != TypeFinal {
		t.Fatalf("ForDay = (%q, %v), want final", got, ok)
	}
}

func TestScheduleFrom(t *testing.T) {
	t.Parallel()

	got := ScheduleFrom(day("2026-05-06"))
	want := []string{"2026-04-06", "2026-04-22", "2026-04-29", "2026-05-03"}
	if len(got) != len(want) {
		t.Fatalf("len(ScheduleFrom) = %d, want %d", len(got), len(want))
	}
	for i, d := range got {
		if d.Day.Format("2006-01-02") != want[i] {
			t.Fatalf("ScheduleFrom[%d] = %s, want %s", i, d.Day.Format("2006-01-02"), want[i])
		}
		if d.Number != i+1 || d.Key() != "reminder_"+string(rune('1'+i)) {
			t.Fatalf("ScheduleFrom[%d] numbered %d/%q", i, d.Number, d.Key())
		}
	}
}

func TestFromNumber(t *testing.T) {
	t.Parallel()

	for n, want := range map[int]Type{1: TypeInitial, 2: TypeFirst, 3: TypeSecond, 4: TypeFinal} {
		got, ok := FromNumber(n)
		if !ok || got != want {
			t.Fatalf("FromNumber(%d) = (%q, %v), want %q", n, got, ok, want)
		}
		if got.Number() != n {
			t.Fatalf("%q.Number() = %d, want %d", got, got.Number(), n)
		}
	}
	for _, n := range []int{0, 5, -1} {
		if _, ok := FromNumber(n); ok {
			t.Fatalf("FromNumber(%d) ok, want false", n)
		}
	}
}

func TestParseType(t *testing.T) {
	t.Parallel()

	if got, ok := ParseType(" Manual "); !ok || got != TypeManual {
		t.Fatalf("ParseType = (%q, %v), want manual", got, ok)
	}
	if _, ok := ParseType("weekly"); ok {
		t.Fatal("ParseType(weekly) ok, want false")
	}
	if _, ok := TypeManual.DaysBefore(); ok {
		t.Fatal("manual reminders have no schedule")
	}
	if TypeFinal.SubjectKey() != "email.reminder.subject.final" {
		t.Fatalf("SubjectKey = %q", TypeFinal.SubjectKey())
	}
}

func TestEligible(t *testing.T) {
	t.Parallel()

	base := Candidate{GuestID: 1, Email: "ana@example.com", Preference: DefaultPreference(1)}
	tests := []struct {
		name   string
		mutate func(*Candidate)
		want   bool
	}{
		{name: "pending guest", mutate: func(*Candidate) {}, want: true},
		{name: "cancelled rsvp", mutate: func(c *Candidate) { c.HasRSVP, c.Cancelled = true, true }, want: true},
		{name: "responded", mutate: func(c *Candidate) { c.HasRSVP = true }},
		{name: "opted out", mutate: func(c *Candidate) { c.Preference.OptOut = true }},
		{name: "already sent", mutate: func(c *Candidate) { c.AlreadySent = true }},
		{name: "limit reached", mutate: func(c *Candidate) { c.Preference.TotalSent = DefaultMaxReminders }},
		{name: "no email", mutate: func(c *Candidate) { c.Email = " " }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			c := base
			tc.mutate(&c)
			if got := Eligible(c); got != tc.want {
				t.Fatalf("Eligible = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestBatch(t *testing.T) {
	t.Parallel()

	if KindFor(ExecutedByCron) != BatchScheduled || KindFor("admin@example.com") != BatchManual {
		t.Fatal("unexpected batch kind")
	}
	if got := (Batch{Total: 4, Sent: 3}).SuccessRate(); got != 75 {
		t.Fatalf("SuccessRate = %v, want 75", got)
	}
	if got := (Batch{}).SuccessRate(); got != 0 {
		t.Fatalf("SuccessRate = %v, want 0", got)
	}
}
