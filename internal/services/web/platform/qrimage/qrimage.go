// Package qrimage renders guest RSVP links as QR code images and bundles
// them for download.
package qrimage

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode"

	"github.com/klauspost/compress/zip"
	qrcode "github.com/skip2/go-qrcode"
)

// Format is an output image format.
type Format string

const (
	PNG Format = "png"
	SVG Format = "svg"
)

// Module sizes in pixels.
const (
	DownloadModule = 10
	PreviewModule  = 8
)

// ParseFormat accepts "png", "svg" or empty for PNG.
func ParseFormat(raw string) (Format, bool) {
	switch Format(strings.ToLower(strings.TrimSpace(raw))) {
	case "", PNG:
		return PNG, true
	case SVG:
		return SVG, true
	default:
		return "", false
	}
}

// ContentType is the media type of f.
func (f Format) ContentType() string {
	if f == SVG {
		return "image/svg+xml"
	}
	return "image/png"
}

// Encode renders content with modules of the given pixel size.
func Encode(content string, f Format, module int) ([]byte, error) {
	if module <= 0 {
		module = DownloadModule
	}
	code, err := qrcode.New(content, qrcode.Low)
	if err != nil {
		return nil, fmt.Errorf("encode qr code: %w", err)
	}
	if f == SVG {
		return svg(code.Bitmap(), module), nil
	}
	// A negative size asks for fixed-size modules.
	out, err := code.PNG(-module)
	if err != nil {
		return nil, fmt.Errorf("encode qr png: %w", err)
	}
	return out, nil
}

// svg draws the dark modules of bitmap as one path.
func svg(bitmap [][]bool, module int) []byte {
	n := len(bitmap)
	px := strconv.Itoa(n * module)
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	b.WriteString(`<svg xmlns="http://www.w3.org/2000/svg" version="1.1" width="` + px + `" height="` + px +
		`" viewBox="0 0 ` + strconv.Itoa(n) + " " + strconv.Itoa(n) + `" shape-rendering="crispEdges">`)
	b.WriteString(`<rect width="100%" height="100%" fill="#ffffff"/><path fill="#000000" d="`)
	for y, row := range bitmap {
		for x, dark := range row {
			if dark {
				fmt.Fprintf(&b, "M%d %dh1v1h-1z", x, y)
			}
		}
	}
	b.WriteString(`"/></svg>`)
	return []byte(b.String())
}

// SafeName turns a guest name into a file name stem: letters, digits,
// dashes and underscores, with spaces as underscores.
func SafeName(name string) string {
	var b strings.Builder
	for _, r := range name {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == ' ' || r == '-' || r == '_' {
			b.WriteRune(r)
		}
	}
	stem := strings.ReplaceAll(strings.TrimSpace(b.String()), " ", "_")
	if stem == "" {
		return "guest"
	}
	return stem
}

// Entry is one guest link to encode.
type Entry struct {
	Name string
	URL  string
}

// WriteArchive writes a zip with one image per entry. Repeated names get
// a numeric suffix.
func WriteArchive(w io.Writer, entries []Entry, f Format) error {
	zw := zip.NewWriter(w)
	seen := make(map[string]int, len(entries))
	for _, e := range entries {
		image, err := Encode(e.URL, f, DownloadModule)
		if err != nil {
			return err
		}
		stem := SafeName(e.Name)
		seen[stem]++
		if n := seen[stem]; n > 1 {
			stem += "_" + strconv.Itoa(n)
		}
		part, err := zw.Create(stem + "." + string(f))
		if err != nil {
			return fmt.Errorf("zip entry %s: %w", stem, err)
		}
		if _, err := part.Write(image); err != nil {
			return fmt.Errorf("zip entry %s: %w", stem, err)
		}
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("close zip: %w", err)
	}
	return nil
}
