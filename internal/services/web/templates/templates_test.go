package templates

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/a-h/templ"
	"golang.org/x/net/html"
	"golang.org/x/text/language"

	"github.com/louisbranch/wedding.rsvp/internal/platform/i18n/catalog"
	"github.com/louisbranch/wedding.rsvp/internal/services/wedding/domain/allergen"
	"github.com/louisbranch/wedding.rsvp/internal/services/wedding/domain/guest"
	"github.com/louisbranch/wedding.rsvp/internal/services/wedding/domain/rsvp"
)

var english = catalog.Printer(language.English)

func render(t *testing.T, ctx context.Context, c templ.Component) *html.Node {
	t.Helper()
	var b strings.Builder
	if err := c.Render(ctx, &b); err != nil {
		t.Fatalf("Render() = %v", err)
	}
	doc, err := html.Parse(strings.NewReader(b.String()))
	if err != nil {
		t.Fatalf("html.Parse() = %v", err)
	}
	return doc
}

func attrOf(n *html.Node, name string) (string, bool) {
	for _, a := range n.Attr {
		if a.Key == name {
			return a.Val, true
		}
	}
	return "", false
}

func findAll(n *html.Node, match func(*html.Node) bool) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && match(n) {
			out = append(out, n)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return out
}

func byName(name string) func(*html.Node) bool {
	return func(n *html.Node) bool {
		v, ok := attrOf(n, "name")
		return ok && v == name
	}
}

func textOf(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}

func TestLayoutRendersChildrenAndNotice(t *testing.T) {
	t.Parallel()

	child := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, "<p>hello &lt;world&gt;</p>")
		return err
	})
	page := PageContext{
		Title:     "RSVP",
		SiteTitle: "Ana & Luis",
		Lang:      "en",
		Loc:       english,
		Notice:    &Notice{Kind: "success", Message: "Saved"},
	}
	doc := render(t, templ.WithChildren(context.Background(), child), Layout(page))

	titles := findAll(doc, func(n *html.Node) bool { return n.Data == "title" })
	if len(titles) != 1 || textOf(titles[0]) != "RSVP | Ana & Luis" {
		t.Fatalf("title = %q", textOf(titles[0]))
	}
	main := findAll(doc, func(n *html.Node) bool { return n.Data == "main" })
	if len(main) != 1 {
		t.Fatalf("main elements = %d, want 1", len(main))
	}
	got := textOf(main[0])
	if !strings.Contains(got, "Saved") || !strings.Contains(got, "hello <world>") {
		t.Fatalf("main text = %q", got)
	}
}

func TestComposePageTitle(t *testing.T) {
	t.Parallel()

	tests := []struct{ title, site, want string }{
		{"", "Boda", "Boda"},
		{"RSVP", "", "RSVP"},
		{"RSVP", "Boda", "RSVP | Boda"},
		{"RSVP | Boda", "Boda", "RSVP | Boda"},
	}
	for _, tc := range tests {
		if got := ComposePageTitle(tc.title, tc.site); got != tc.want {
			t.Fatalf("ComposePageTitle(%q, %q) = %q, want %q", tc.title, tc.site, got, tc.want)
		}
	}
}

func TestRSVPFormShowsFamilyRowsUpToCount(t *testing.T) {
	t.Parallel()

	view := RSVPFormView{
		Guest:     guest.Guest{ID: 1, Name: "Familia Pérez", Token: "tok", IsFamily: true},
		Deadline:  time.Date(2026, 5, 6, 0, 0, 0, 0, time.UTC),
		Allergens: []allergen.Allergen{{ID: 1, Name: "Gluten"}, {ID: 2, Name: "Dairy"}},
		Values: url.Values{
			rsvp.FieldAttending:         {rsvp.AttendingYes},
			rsvp.FieldAdultsCount:       {"1"},
			rsvp.AdultNameField(0):      {"Pedro"},
			"allergens_adult_0":         {"2"},
			rsvp.FieldChildrenCount:     {"0"},
			rsvp.ChildNeedsMenuField(0): {"on"},
		},
		Summary:  rsvp.Summary{Status: rsvp.StatusPending},
		Editable: true,
	}
	doc := render(t, context.Background(), RSVPForm(view, "en", english))

	rows := findAll(doc, func(n *html.Node) bool {
		_, ok := attrOf(n, "data-row")
		return ok
	})
	if len(rows) != rsvp.MaxAdditionalAdults+rsvp.MaxChildren {
		t.Fatalf("rows = %d", len(rows))
	}
	if _, hidden := attrOf(rows[0], "hidden"); hidden {
		t.Fatal("first adult row should be visible")
	}
	if _, hidden := attrOf(rows[1], "hidden"); !hidden {
		t.Fatal("second adult row should be hidden")
	}

	dairy := findAll(doc, func(n *html.Node) bool {
		name, _ := attrOf(n, "name")
		value, _ := attrOf(n, "value")
		return name == "allergens_adult_0" && value == "2"
	})
	if len(dairy) != 1 {
		t.Fatalf("dairy checkbox for adult 0 = %d", len(dairy))
	}
	if _, checked := attrOf(dairy[0], "checked"); !checked {
		t.Fatal("expected stored allergen to be checked")
	}
	if len(findAll(doc, byName(rsvp.FieldPlusOneName))) != 0 {
		t.Fatal("family invitations have no plus-one field")
	}
	if len(findAll(doc, func(n *html.Node) bool { v, _ := attrOf(n, "class"); return v == "rsvp-cancel" })) != 0 {
		t.Fatal("cancel form needs an existing reply")
	}
}

func TestRSVPFormReadOnlyWhenLocked(t *testing.T) {
	t.Parallel()

	view := RSVPFormView{
		Guest:      guest.Guest{ID: 2, Name: "Ana", Token: "tok-ana", HasPlusOne: true},
		AdminPhone: "+34 600 000 000",
		Values:     url.Values{rsvp.FieldAttending: {rsvp.AttendingNo}},
		Summary:    rsvp.Summary{HasRSVP: true, Status: rsvp.StatusDeclined},
		Editable:   false,
	}
	doc := render(t, context.Background(), RSVPForm(view, "en", english))

	fieldsets := findAll(doc, func(n *html.Node) bool { return n.Data == "fieldset" })
	if _, disabled := attrOf(fieldsets[0], "disabled"); !disabled {
		t.Fatal("expected the form to be disabled")
	}
	body := textOf(doc)
	if !strings.Contains(body, "+34 600 000 000") {
		t.Fatalf("expected admin phone in warning, got %q", body)
	}
	if !strings.Contains(body, "could not attend") {
		t.Fatalf("expected previously declined banner, got %q", body)
	}
	if len(findAll(doc, byName(rsvp.FieldPlusOneName))) != 1 {
		t.Fatal("expected plus-one field")
	}
	if len(findAll(doc, func(n *html.Node) bool { v, _ := attrOf(n, "class"); return v == "rsvp-cancel" })) != 0 {
		t.Fatal("locked replies cannot be cancelled")
	}
}

func TestRSVPFormEscapesGuestInput(t *testing.T) {
	t.Parallel()

	view := RSVPFormView{
		Guest:    guest.Guest{Name: `<script>alert(1)</script>`, Token: "t"},
		Values:   url.Values{rsvp.FieldHotelName: {`"><b>x`}},
		Editable: true,
	}
	var b strings.Builder
	if err := RSVPForm(view, "es", nil).Render(context.Background(), &b); err != nil {
		t.Fatalf("Render() = %v", err)
	}
	if strings.Contains(b.String(), "<script>") || strings.Contains(b.String(), `"><b>`) {
		t.Fatalf("unescaped input in %q", b.String())
	}
}

func TestErrorPageTitle(t *testing.T) {
	t.Parallel()

	if got := ErrorPageTitle(http.StatusNotFound, english); got != "Page not found" {
		t.Fatalf("404 title = %q", got)
	}
	if got := ErrorPageTitle(http.StatusInternalServerError, english); got != "Something went wrong" {
		t.Fatalf("500 title = %q", got)
	}
}

func TestHomeListsEverySection(t *testing.T) {
	t.Parallel()

	doc := render(t, context.Background(), Home(HomeView{Title: "Ana & Luis"}, "en", english))
	dialogs := findAll(doc, func(n *html.Node) bool { return n.Data == "dialog" })
	if len(dialogs) != len(HomeSections) {
		t.Fatalf("dialogs = %d, want %d", len(dialogs), len(HomeSections))
	}
}

func TestAdminQRListsPreviewAndDownloads(t *testing.T) {
	t.Parallel()

	guests := []QRGuest{{ID: 7, Name: "Ana", Phone: "+52 1", Link: "https://boda.example.com/rsvp/tok"}}
	doc := render(t, context.Background(), AdminQR(guests, english))

	cards := findAll(doc, func(n *html.Node) bool { v, _ := attrOf(n, "data-guest"); return v == "Ana" })
	if len(cards) != 1 {
		t.Fatalf("qr cards = %d, want 1", len(cards))
	}
	imgs := findAll(cards[0], func(n *html.Node) bool { return n.Data == "img" })
	if len(imgs) != 1 {
		t.Fatalf("previews = %d, want 1", len(imgs))
	}
	if src, _ := attrOf(imgs[0], "src"); src != "/admin/qr/preview/7" {
		t.Fatalf("preview src = %q", src)
	}
	if !strings.Contains(textOf(cards[0]), "https://boda.example.com/rsvp/tok") {
		t.Fatalf("card text = %q", textOf(cards[0]))
	}
}

func TestAdminQRPrintableHasPrintButton(t *testing.T) {
	t.Parallel()

	doc := render(t, context.Background(), AdminQRPrintable(nil, english))
	buttons := findAll(doc, func(n *html.Node) bool { _, ok := attrOf(n, "data-print"); return ok })
	if len(buttons) != 1 {
		t.Fatalf("print buttons = %d, want 1", len(buttons))
	}
}
