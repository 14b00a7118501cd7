package guest

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	apperrors "github.com/louisbranch/wedding.rsvp/internal/platform/errors"
)

// DefaultMaxCSVBytes bounds accepted import uploads.
const DefaultMaxCSVBytes = 5 << 20

// CSV column names.
const (
	ColumnName       = "name"
	ColumnPhone      = "phone"
	ColumnEmail      = "email"
	ColumnHasPlusOne = "has_plus_one"
	ColumnIsFamily   = "is_family"
	ColumnLanguage   = "language"
)

var requiredColumns = []string{ColumnName, ColumnPhone, ColumnHasPlusOne, ColumnIsFamily, ColumnLanguage}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// CSVTemplate returns the header row offered for download.
func CSVTemplate() string {
	return strings.Join([]string{ColumnName, ColumnPhone, ColumnEmail, ColumnHasPlusOne, ColumnIsFamily, ColumnLanguage}, ",") + "\n"
}

// ParseCSV reads guests from an import file. Tokens are left empty for the
// caller to assign. Blank rows are skipped; any invalid row fails the whole
// import so nothing is half-applied.
func ParseCSV(r io.Reader, maxBytes int64) ([]Guest, error) {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxCSVBytes
	}
	data, err := io.ReadAll(io.LimitReader(r, maxBytes+1))
	if err != nil {
		return nil, &apperrors.Error{Code: apperrors.CodeCSVInvalid, Message: "read csv", Args: []any{err.Error()}, Cause: err}
	}
	if int64(len(data)) > maxBytes {
		return nil, apperrors.New(apperrors.CodeCSVTooLarge, "csv exceeds size limit")
	}
	data = bytes.TrimPrefix(data, utf8BOM)

	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, missingHeaders(requiredColumns)
	}
	if err != nil {
		return nil, csvInvalid(err.Error())
	}
	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.ToLower(strings.TrimSpace(name))] = i
	}
	var missing []string
	for _, column := range requiredColumns {
		if _, ok := index[column]; !ok {
			missing = append(missing, column)
		}
	}
	if len(missing) > 0 {
		return nil, missingHeaders(missing)
	}

	var guests []Guest
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, csvInvalid(err.Error())
		}
		if blankRecord(record) {
			continue
		}
		line, _ := reader.FieldPos(0)
		field := func(name string) string {
			i, ok := index[name]
			if !ok || i >= len(record) {
				return ""
			}
			return strings.TrimSpace(record[i])
		}
		g, err := Normalize(Guest{
			Name:       field(ColumnName),
			Phone:      field(ColumnPhone),
			Email:      field(ColumnEmail),
			HasPlusOne: parseBool(field(ColumnHasPlusOne)),
			IsFamily:   parseBool(field(ColumnIsFamily)),
			Language:   Language(field(ColumnLanguage)),
		})
		if err != nil {
			var appErr *apperrors.Error
			reason := err.Error()
			if errors.As(err, &appErr) {
				reason = appErr.Message
			}
			return nil, csvInvalid(fmt.Sprintf("line %d: %s", line, reason))
		}
		guests = append(guests, g)
	}
	return guests, nil
}

func parseBool(value string) bool {
	return strings.EqualFold(strings.TrimSpace(value), "true")
}

func blankRecord(record []string) bool {
	for _, value := range record {
		if strings.TrimSpace(value) != "" {
			return false
		}
	}
	return true
}

func missingHeaders(columns []string) error {
	joined := strings.Join(columns, ", ")
	return apperrors.WithArgs(apperrors.CodeCSVMissingHeaders, "Missing required headers: "+joined, joined)
}

func csvInvalid(reason string) error {
	return apperrors.WithArgs(apperrors.CodeCSVInvalid, "invalid csv: "+reason, reason)
}
