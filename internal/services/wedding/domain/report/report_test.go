package report

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/louisbranch/wedding.rsvp/internal/services/wedding/domain/allergen"
	"github.com/louisbranch/wedding.rsvp/internal/services/wedding/domain/guest"
	"github.com/louisbranch/wedding.rsvp/internal/services/wedding/domain/rsvp"
)

var stamp = time.Date(2026, 4, 1, 18, 30, 0, 0, time.UTC)

func id(v int64) *int64 { return &v }

func fixture() []Entry {
	return []Entry{
		{
			Guest: guest.Guest{ID: 1, Name: "Ana", Phone: "600111222", Language: guest.LanguageSpanish},
			RSVP: &rsvp.RSVP{
				ID:                   1,
				IsAttending:          true,
				HotelName:            "Hotel Mar",
				TransportToChurch:    true,
				TransportToReception: true,
				PlusOneName:          "Bea",
				AdditionalGuests:     []rsvp.AdditionalGuest{{Name: "Bea"}},
				Allergens: []allergen.GuestAllergen{
					{GuestName: "Ana", AllergenID: id(1), Name: "Gluten"},
					{GuestName: "Bea", Custom: "kiwi"},
				},
				CreatedAt:   stamp,
				LastUpdated: stamp,
			},
		},
		{
			Guest: guest.Guest{ID: 2, Name: "Familia Ruiz", Phone: "600333444", IsFamily: true},
			RSVP: &rsvp.RSVP{
				ID:               2,
				IsAttending:      true,
				HotelName:        "Hotel Sol",
				TransportToHotel: true,
				AdultsCount:      1,
				ChildrenCount:    2,
				AdditionalGuests: []rsvp.AdditionalGuest{
					{Name: "Pedro"},
					{Name: "Lucía", IsChild: true, NeedsMenu: true},
					{Name: "Leo", IsChild: true},
				},
				Allergens: []allergen.GuestAllergen{
					{GuestName: "Lucía", AllergenID: id(1), Name: "Gluten"},
					{GuestName: "Leo", Custom: "kiwi"},
				},
				CreatedAt:   stamp,
				LastUpdated: stamp,
			},
		},
		{Guest: guest.Guest{ID: 3, Name: "Carlos"}, RSVP: &rsvp.RSVP{ID: 3, CreatedAt: stamp, LastUpdated: stamp}},
		{
			Guest: guest.Guest{ID: 4, Name: "Diana"},
			RSVP: &rsvp.RSVP{
				ID:          4,
				IsCancelled: true,
				HotelName:   "Hotel Luna",
				Allergens:   []allergen.GuestAllergen{{GuestName: "Diana", AllergenID: id(2), Name: "Dairy"}},
				CreatedAt:   stamp,
				LastUpdated: stamp,
			},
		},
		{Guest: guest.Guest{ID: 5, Name: "Elena"}},
	}
}

func TestBuildDashboard(t *testing.T) {
	t.Parallel()

	d := BuildDashboard(fixture())
	if d.TotalGuests != 5 || d.AttendingResponses != 2 || d.Declined != 1 || d.Cancelled != 1 || d.Pending != 1 {
		t.Fatalf("counts = %+v", d)
	}
	if d.TotalAttending != 6 {
		t.Fatalf("TotalAttending = %d, want 6", d.TotalAttending)
	}
	if d.ToChurch != 1 || d.ToReception != 1 || d.ToHotel != 1 {
		t.Fatalf("transport = %d/%d/%d, want 1/1/1", d.ToChurch, d.ToReception, d.ToHotel)
	}
	if len(d.Hotels) != 2 || d.Hotels[0] != "Hotel Mar" || d.Hotels[1] != "Hotel Sol" {
		t.Fatalf("Hotels = %v", d.Hotels)
	}
	if d.Rows[4].Status != rsvp.StatusPending || d.Rows[4].LastUpdated != nil {
		t.Fatalf("pending row = %+v", d.Rows[4])
	}
}

func TestPending(t *testing.T) {
	t.Parallel()

	got := Pending(fixture())
	if len(got) != 1 || got[0].Name != "Elena" {
		t.Fatalf("Pending = %+v", got)
	}
}

func TestBuildDietary(t *testing.T) {
	t.Parallel()

	known := []allergen.Allergen{{ID: 1, Name: "Gluten"}, {ID: 2, Name: "Dairy"}}
	d := BuildDietary(fixture(), known)
	if d.Total != 4 {
		t.Fatalf("Total = %d, want 4", d.Total)
	}
	if len(d.Standard) != 2 || len(d.Standard[0].Guests) != 2 || len(d.Standard[1].Guests) != 0 {
		t.Fatalf("Standard = %+v", d.Standard)
	}
	if selected := d.Selected(); len(selected) != 1 || selected[0].Name != "Gluten" {
		t.Fatalf("Selected = %+v", selected)
	}
	if len(d.Custom) != 1 || d.Custom[0].Name != "kiwi" || len(d.Custom[0].Guests) != 2 {
		t.Fatalf("Custom = %+v", d.Custom)
	}
}

func TestBuildTransport(t *testing.T) {
	t.Parallel()

	tr := BuildTransport(fixture())
	if tr.Total != 2 {
		t.Fatalf("Total = %d, want 2", tr.Total)
	}
	if len(tr.ToChurch) != 1 || tr.ToChurch[0].Name != "Ana" || tr.ToChurch[0].GuestCount != 2 {
		t.Fatalf("ToChurch = %+v", tr.ToChurch)
	}
	if len(tr.ToHotel) != 1 || tr.ToHotel[0].GuestCount != 4 {
		t.Fatalf("ToHotel = %+v", tr.ToHotel)
	}
	if len(tr.Hotels) != 2 || tr.Hotels[1].Name != "Hotel Sol" || tr.Hotels[1].People() != 4 {
		t.Fatalf("Hotels = %+v", tr.Hotels)
	}
}

func TestBuildDetailed(t *testing.T) {
	t.Parallel()

	rows := BuildDetailed(fixture())
	if len(rows) != 4 {
		t.Fatalf("len(rows) = %d, want 4", len(rows))
	}
	family := rows[1]
	if family.Status != "Attending" || family.ChildrenWithMenu != 1 || family.ChildrenNoMenu != 1 || family.TotalGuests != 4 {
		t.Fatalf("family row = %+v", family)
	}
	if family.LastUpdated != "2026-04-01 18:30" {
		t.Fatalf("LastUpdated = %q, want %q", family.LastUpdated, "2026-04-01 18:30")
	}
	cancelled := rows[3]
	if cancelled.Status != "Cancelled" || cancelled.Hotel != "" || cancelled.TotalGuests != 0 {
		t.Fatalf("cancelled row = %+v", cancelled)
	}
	if rows[2].Status != "Declined" {
		t.Fatalf("Status = %q, want Declined", rows[2].Status)
	}
}

func TestWriteDetailedCSV(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if err := WriteDetailedCSV(&buf, BuildDetailed(fixture())); err != nil {
		t.Fatalf("WriteDetailedCSV: %v", err)
	}
	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	if len(records) != 5 {
		t.Fatalf("len(records) = %d, want 5", len(records))
	}
	if records[0][0] != "guest_name" || records[1][13] != "Bea" || records[1][14] != "Ana: Gluten; Bea: kiwi" {
		t.Fatalf("records = %v", records[:2])
	}
}
