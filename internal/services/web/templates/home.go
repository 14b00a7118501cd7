package templates

import "time"

// HomeView is the landing page data.
type HomeView struct {
	Title          string
	WeddingDate    time.Time
	Deadline       time.Time
	DeadlinePassed bool
	AdminPhone     string
}

// HomeSection is one modal of the landing page.
type HomeSection struct {
	ID       string
	TitleKey string
	BodyKeys []string
	// List renders the body keys as list items.
	List bool
}

// HomeSections lists the modal sections in display order.
var HomeSections = []HomeSection{
	{
		ID:       "schedule",
		TitleKey: "home.section.schedule.title",
		BodyKeys: []string{
			"home.section.schedule.ceremony",
			"home.section.schedule.cocktail",
			"home.section.schedule.dinner",
			"home.section.schedule.buses",
		},
		List: true,
	},
	{
		ID:       "venue",
		TitleKey: "home.section.venue.title",
		BodyKeys: []string{"home.section.venue.church", "home.section.venue.reception"},
	},
	{
		ID:       "accommodation",
		TitleKey: "home.section.accommodation.title",
		BodyKeys: []string{"home.section.accommodation.body", "home.section.accommodation.transport"},
	},
	{ID: "activities", TitleKey: "home.section.activities.title", BodyKeys: []string{"home.section.activities.body"}},
	{ID: "gallery", TitleKey: "home.section.gallery.title", BodyKeys: []string{"home.section.gallery.body"}},
	{ID: "dress-code", TitleKey: "home.section.dress_code.title", BodyKeys: []string{"home.section.dress_code.body"}},
	{ID: "gifts", TitleKey: "home.section.gifts.title", BodyKeys: []string{"home.section.gifts.body"}},
}

func (s HomeSection) dialogID() string {
	return "dialog-" + s.ID
}
