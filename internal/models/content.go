package models

type Priority string

const (
	PriorityHigh   Priority = "High"
	PriorityNormal Priority = "Normal"
	PriorityLow    Priority = "Low"
)

func (p Priority) Valid() bool {
	return p == PriorityHigh || p == PriorityNormal || p == PriorityLow
}

type Announcement struct {
	ID       string   `json:"_id,omitempty"`
	Title    string   `json:"title"`
	Date     string   `json:"date"`
	Content  string   `json:"content"`
	Priority Priority `json:"priority"`
	ImageURL string   `json:"imageUrl"`
}

// GalleryItem is one picture on the gallery page. ImageURL may be a data
// URL; the admin console uploads compressed images inline.
type GalleryItem struct {
	ID       string `json:"_id,omitempty"`
	Title    string `json:"title"`
	Category string `json:"category"`
	ImageURL string `json:"imageUrl"`
	Date     string `json:"date"`
	Featured bool   `json:"featured"`
}

// RedirectLink is a named external link, such as a photo album.
type RedirectLink struct {
	ID    string `json:"_id,omitempty"`
	Label string `json:"label"`
	URL   string `json:"url"`
}

// Site sections are single documents edited as a whole.
const (
	SectionAbout   = "about"
	SectionHistory = "history"
	SectionHero    = "hero"
	SectionFooter  = "footer"
)

type AboutCard struct {
	ID          string `json:"id"`
	Icon        string `json:"icon"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

type About struct {
	Title       string      `json:"title"`
	Subtitle    string      `json:"subtitle"`
	Description string      `json:"description"`
	Cards       []AboutCard `json:"cards"`
}

type HistoryBlock struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

type History struct {
	HeaderSubtitle  string         `json:"headerSubtitle"`
	HeaderTitle     string         `json:"headerTitle"`
	MainDescription string         `json:"mainDescription"`
	ImageURL        string         `json:"imageUrl"`
	ContentBlocks   []HistoryBlock `json:"contentBlocks"`
	Quote           string         `json:"quote"`
}

type Footer struct {
	BrandDescription string `json:"brandDescription"`
	FacebookURL      string `json:"facebookUrl"`
	InstagramURL     string `json:"instagramUrl"`
	ContactAddress   string `json:"contactAddress"`
	ContactEmail     string `json:"contactEmail"`
	EstablishedYear  string `json:"establishedYear"`
	QuoteText        string `json:"quoteText"`
	CopyrightText    string `json:"copyrightText"`
}

// HeroButtonType says how the hero button's URL is followed: a section id
// to scroll to, a site path, or a full external URL.
type HeroButtonType string

const (
	HeroScroll   HeroButtonType = "scroll"
	HeroRoute    HeroButtonType = "route"
	HeroExternal HeroButtonType = "external"
)

func (t HeroButtonType) Valid() bool {
	return t == HeroScroll || t == HeroRoute || t == HeroExternal
}

type HeroButton struct {
	Text string         `json:"text"`
	URL  string         `json:"url"`
	Type HeroButtonType `json:"type"`
}

type Hero struct {
	Title    string     `json:"title"`
	Subtitle string     `json:"subtitle"`
	ImageURL string     `json:"imageUrl"`
	Button   HeroButton `json:"button"`
}
