package templates

import (
	"strings"

	"github.com/louisbranch/wedding.rsvp/internal/services/shared/i18nhttp"
)

// Notice is a flash message ready for display.
type Notice struct {
	Kind    string
	Message string
}

// PageContext provides shared layout context for pages.
type PageContext struct {
	Title     string
	SiteTitle string
	Lang      string
	Loc       Localizer
	Languages []i18nhttp.LanguageOption
	Notice    *Notice
	// Admin switches the header to the admin navigation.
	Admin bool
}

// ComposePageTitle appends the site title to a page title.
func ComposePageTitle(title, site string) string {
	title = strings.TrimSpace(title)
	site = strings.TrimSpace(site)
	switch {
	case title == "":
		return site
	case site == "" || title == site || strings.HasSuffix(title, " | "+site):
		return title
	default:
		return title + " | " + site
	}
}

func (p PageContext) lang() string {
	if p.Lang == "" {
		return "es"
	}
	return p.Lang
}

func (n *Notice) visible() bool {
	return n != nil && n.Message != ""
}
