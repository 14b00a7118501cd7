// Package report aggregates guests and replies into the admin views.
package report

import (
	"encoding/csv"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/louisbranch/wedding.rsvp/internal/services/wedding/domain/allergen"
	"github.com/louisbranch/wedding.rsvp/internal/services/wedding/domain/calendar"
	"github.com/louisbranch/wedding.rsvp/internal/services/wedding/domain/guest"
	"github.com/louisbranch/wedding.rsvp/internal/services/wedding/domain/rsvp"
)

// Entry pairs a guest with their reply, if any.
type Entry struct {
	Guest guest.Guest
	RSVP  *rsvp.RSVP
}

// Status returns the derived reply state.
func (e Entry) Status() rsvp.Status {
	return rsvp.StatusOf(e.RSVP)
}

func (e Entry) attending() bool {
	return e.RSVP != nil && e.RSVP.Attending()
}

// Row is one line of the dashboard guest table.
type Row struct {
	Guest       guest.Guest
	Status      rsvp.Status
	GuestCount  int
	HotelName   string
	LastUpdated *time.Time
}

// Dashboard is the admin landing summary.
type Dashboard struct {
	TotalGuests    int
	TotalAttending int
	// AttendingResponses counts attending replies only; declines and
	// cancellations have their own figures.
	AttendingResponses int
	Declined           int
	Cancelled          int
	Pending            int
	ToChurch           int
	ToReception        int
	ToHotel            int
	Hotels             []string
	Rows               []Row
}

// BuildDashboard counts replies. People attending include every additional
// guest of an attending reply.
func BuildDashboard(entries []Entry) Dashboard {
	d := Dashboard{TotalGuests: len(entries)}
	hotels := make(map[string]struct{})
	for _, e := range entries {
		row := Row{Guest: e.Guest, Status: e.Status()}
		switch row.Status {
		case rsvp.StatusCancelled:
			d.Cancelled++
		case rsvp.StatusDeclined:
			d.Declined++
		case rsvp.StatusAttending:
			d.AttendingResponses++
			d.TotalAttending += e.RSVP.GuestCount()
			if e.RSVP.TransportToChurch {
				d.ToChurch++
			}
			if e.RSVP.TransportToReception {
				d.ToReception++
			}
			if e.RSVP.TransportToHotel {
				d.ToHotel++
			}
			if e.RSVP.HotelName != "" {
				hotels[e.RSVP.HotelName] = struct{}{}
			}
		}
		if e.RSVP != nil {
			row.GuestCount = e.RSVP.GuestCount()
			row.HotelName = e.RSVP.HotelName
			updated := e.RSVP.LastUpdated
			row.LastUpdated = &updated
		}
		d.Rows = append(d.Rows, row)
	}
	d.Pending = d.TotalGuests - d.AttendingResponses - d.Declined - d.Cancelled
	d.Hotels = sortedKeys(hotels)
	return d
}

// Pending lists guests who have not replied.
func Pending(entries []Entry) []guest.Guest {
	var out []guest.Guest
	for _, e := range entries {
		if e.RSVP == nil {
			out = append(out, e.Guest)
		}
	}
	return out
}

// NamedGuests groups attendee names under one restriction.
type NamedGuests struct {
	Name   string
	Guests []string
}

// Dietary is the catering report.
type Dietary struct {
	// Standard lists every known allergen, including those nobody chose.
	Standard []NamedGuests
	Custom   []NamedGuests
	Total    int
}

// Selected returns the standard allergens with at least one guest.
func (d Dietary) Selected() []NamedGuests {
	var out []NamedGuests
	for _, s := range d.Standard {
		if len(s.Guests) > 0 {
			out = append(out, s)
		}
	}
	return out
}

// BuildDietary collects restrictions of attending replies.
func BuildDietary(entries []Entry, known []allergen.Allergen) Dietary {
	byID := make(map[int64][]string)
	custom := make(map[string][]string)
	people := make(map[string]struct{})
	for _, e := range entries {
		if !e.attending() {
			continue
		}
		for _, a := range e.RSVP.Allergens {
			people[a.GuestName] = struct{}{}
			if a.AllergenID != nil {
				byID[*a.AllergenID] = append(byID[*a.AllergenID], a.GuestName)
				continue
			}
			custom[a.Custom] = append(custom[a.Custom], a.GuestName)
		}
	}

	d := Dietary{Total: len(people)}
	for _, a := range known {
		d.Standard = append(d.Standard, NamedGuests{Name: a.Name, Guests: byID[a.ID]})
	}
	for _, text := range sortedKeys(custom) {
		d.Custom = append(d.Custom, NamedGuests{Name: text, Guests: custom[text]})
	}
	return d
}

// TransportRow is one reply needing a ride.
type TransportRow struct {
	Name       string
	Phone      string
	Hotel      string
	GuestCount int
}

// Transport is the shuttle planning report.
type Transport struct {
	ToChurch    []TransportRow
	ToReception []TransportRow
	ToHotel     []TransportRow
	Hotels      []HotelGroup
	// Total counts replies needing at least one leg.
	Total int
}

// HotelGroup lists the replies staying at one hotel.
type HotelGroup struct {
	Name   string
	Guests []TransportRow
}

// People sums the guest count of the group.
func (h HotelGroup) People() int {
	total := 0
	for _, g := range h.Guests {
		total += g.GuestCount
	}
	return total
}

// BuildTransport groups attending replies by leg and by hotel.
func BuildTransport(entries []Entry) Transport {
	var t Transport
	hotels := make(map[string][]TransportRow)
	for _, e := range entries {
		if !e.attending() {
			continue
		}
		row := TransportRow{
			Name:       e.Guest.Name,
			Phone:      e.Guest.Phone,
			Hotel:      e.RSVP.HotelName,
			GuestCount: e.RSVP.GuestCount(),
		}
		if e.RSVP.TransportToChurch {
			t.ToChurch = append(t.ToChurch, row)
		}
		if e.RSVP.TransportToReception {
			t.ToReception = append(t.ToReception, row)
		}
		if e.RSVP.TransportToHotel {
			t.ToHotel = append(t.ToHotel, row)
		}
		if e.RSVP.NeedsTransport() {
			t.Total++
		}
		if row.Hotel != "" {
			hotels[row.Hotel] = append(hotels[row.Hotel], row)
		}
	}
	for _, name := range sortedKeys(hotels) {
		t.Hotels = append(t.Hotels, HotelGroup{Name: name, Guests: hotels[name]})
	}
	return t
}

// DetailedRow is one reply in the export.
type DetailedRow struct {
	GuestName          string
	Phone              string
	Language           guest.Language
	Status             string
	AdultsCount        int
	ChildrenCount      int
	ChildrenWithMenu   int
	ChildrenNoMenu     int
	TotalGuests        int
	Hotel              string
	TransportChurch    bool
	TransportReception bool
	TransportHotel     bool
	AdditionalGuests   []rsvp.AdditionalGuest
	Allergens          []allergen.GuestAllergen
	LastUpdated        string
	CreatedAt          string
}

// BuildDetailed lists every reply. Details of non-attending replies are
// blanked.
func BuildDetailed(entries []Entry) []DetailedRow {
	var out []DetailedRow
	for _, e := range entries {
		if e.RSVP == nil {
			continue
		}
		r := e.RSVP
		row := DetailedRow{
			GuestName:   e.Guest.Name,
			Phone:       e.Guest.Phone,
			Language:    e.Guest.Language,
			Status:      statusLabel(r.Status()),
			Allergens:   r.Allergens,
			LastUpdated: calendar.FormatDateTime(r.LastUpdated),
			CreatedAt:   calendar.FormatDateTime(r.CreatedAt),
		}
		if r.Attending() {
			row.AdultsCount = r.AdultsCount
			row.ChildrenCount = r.ChildrenCount
			row.TotalGuests = r.GuestCount()
			row.Hotel = r.HotelName
			row.TransportChurch = r.TransportToChurch
			row.TransportReception = r.TransportToReception
			row.TransportHotel = r.TransportToHotel
			row.AdditionalGuests = r.AdditionalGuests
			for _, child := range r.Children() {
				if child.NeedsMenu {
					row.ChildrenWithMenu++
				} else {
					row.ChildrenNoMenu++
				}
			}
		}
		out = append(out, row)
	}
	return out
}

func statusLabel(s rsvp.Status) string {
	switch s {
	case rsvp.StatusCancelled:
		return "Cancelled"
	case rsvp.StatusAttending:
		return "Attending"
	default:
		return "Declined"
	}
}

var detailedHeader = []string{
	"guest_name", "phone", "language", "status",
	"adults_count", "children_count", "children_with_menu", "children_no_menu",
	"total_guests", "hotel", "transport_church", "transport_reception", "transport_hotel",
	"additional_guests", "allergens", "last_updated", "created_at",
}

// WriteDetailedCSV writes rows as CSV with a header line.
func WriteDetailedCSV(w io.Writer, rows []DetailedRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(detailedHeader); err != nil {
		return err
	}
	for _, row := range rows {
		names := make([]string, 0, len(row.AdditionalGuests))
		for _, g := range row.AdditionalGuests {
			names = append(names, g.Name)
		}
		labels := make([]string, 0, len(row.Allergens))
		for _, a := range row.Allergens {
			labels = append(labels, a.GuestName+": "+a.Label())
		}
		record := []string{
			row.GuestName,
			row.Phone,
			string(row.Language),
			row.Status,
			strconv.Itoa(row.AdultsCount),
			strconv.Itoa(row.ChildrenCount),
			strconv.Itoa(row.ChildrenWithMenu),
			strconv.Itoa(row.ChildrenNoMenu),
			strconv.Itoa(row.TotalGuests),
			row.Hotel,
			strconv.FormatBool(row.TransportChurch),
			strconv.FormatBool(row.TransportReception),
			strconv.FormatBool(row.TransportHotel),
			strings.Join(names, "; "),
			strings.Join(labels, "; "),
			row.LastUpdated,
			row.CreatedAt,
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
