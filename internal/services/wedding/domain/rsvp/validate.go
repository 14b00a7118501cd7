package rsvp

import (
	"strings"

	apperrors "github.com/louisbranch/wedding.rsvp/internal/platform/errors"
	"github.com/louisbranch/wedding.rsvp/internal/services/wedding/domain/allergen"
	"github.com/louisbranch/wedding.rsvp/internal/services/wedding/domain/guest"
)

// Problem is one localizable validation failure.
type Problem struct {
	Key  string
	Args []any
}

// Problem catalog keys.
const (
	ProblemNoData                = "rsvp.problem.no_data"
	ProblemAttendanceRequired    = "rsvp.problem.attendance_required"
	ProblemAttendanceInvalid     = "rsvp.problem.attendance_invalid"
	ProblemHotelRequired         = "rsvp.problem.hotel_required"
	ProblemHotelTooLong          = "rsvp.problem.hotel_too_long"
	ProblemCustomAllergenTooLong = "rsvp.problem.custom_allergen_too_long"
	ProblemCountFormat           = "rsvp.problem.count_format"
	ProblemCountNegative         = "rsvp.problem.count_negative"
	ProblemTooManyAdults         = "rsvp.problem.too_many_adults"
	ProblemTooManyChildren       = "rsvp.problem.too_many_children"
	ProblemAdultNameRequired     = "rsvp.problem.adult_name_required"
	ProblemChildNameRequired     = "rsvp.problem.child_name_required"
)

// Validate checks a submission for guest g. Details are only checked when
// the guest is attending.
func Validate(sub Submission, g guest.Guest) []Problem {
	if sub.Empty {
		return []Problem{{Key: ProblemNoData}}
	}

	var problems []Problem
	switch {
	case !sub.AttendanceSet:
		problems = append(problems, Problem{Key: ProblemAttendanceRequired})
	case sub.Attendance != AttendingYes && sub.Attendance != AttendingNo:
		problems = append(problems, Problem{Key: ProblemAttendanceInvalid})
	}
	if !sub.Attending() {
		return problems
	}

	if (sub.TransportToChurch || sub.TransportToHotel) && sub.HotelName == "" {
		problems = append(problems, Problem{Key: ProblemHotelRequired})
	}
	if tooLong(sub.HotelName, MaxHotelLength) {
		problems = append(problems, Problem{Key: ProblemHotelTooLong})
	}
	for _, prefix := range attendeePrefixes(sub, g) {
		if tooLong(sub.Allergens(prefix).Custom, allergen.MaxCustomLength) {
			problems = append(problems, Problem{Key: ProblemCustomAllergenTooLong, Args: []any{allergen.MaxCustomLength}})
			break
		}
	}
	if g.IsFamily {
		problems = append(problems, validateFamily(sub)...)
	}
	return problems
}

func validateFamily(sub Submission) []Problem {
	adults, children, err := sub.Counts()
	if err != nil {
		return []Problem{{Key: ProblemCountFormat}}
	}
	switch {
	case adults < 0 || children < 0:
		return []Problem{{Key: ProblemCountNegative}}
	case adults > MaxAdditionalAdults:
		return []Problem{{Key: ProblemTooManyAdults, Args: []any{MaxAdditionalAdults}}}
	case children > MaxChildren:
		return []Problem{{Key: ProblemTooManyChildren, Args: []any{MaxChildren}}}
	}
	var problems []Problem
	for i := 0; i < adults; i++ {
		if sub.AdultName(i) == "" {
			problems = append(problems, Problem{Key: ProblemAdultNameRequired, Args: []any{i + 1}})
		}
	}
	for i := 0; i < children; i++ {
		if sub.ChildName(i) == "" {
			problems = append(problems, Problem{Key: ProblemChildNameRequired, Args: []any{i + 1}})
		}
	}
	return problems
}

// InvalidError carries the problems of a rejected submission.
type InvalidError struct {
	Problems []Problem
}

// Error implements error.
func (e *InvalidError) Error() string {
	keys := make([]string, 0, len(e.Problems))
	for _, p := range e.Problems {
		keys = append(keys, p.Key)
	}
	return "invalid rsvp: " + strings.Join(keys, ", ")
}

// Unwrap exposes the RSVP_INVALID code to error inspection.
func (e *InvalidError) Unwrap() error {
	return apperrors.New(apperrors.CodeRSVPInvalid, "invalid rsvp")
}
