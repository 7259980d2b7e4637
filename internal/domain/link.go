package domain

import (
	"errors"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

var (
	ErrInvalidURL    = errors.New("invalid url")
	ErrInvalidLink   = errors.New("invalid link")
	ErrLinkNotFound  = errors.New("link not found")
	ErrDuplicateLink = errors.New("a link with this url already exists")
)

// LaunchPref overrides how a link is opened by the host.
type LaunchPref string

const (
	LaunchDefault  LaunchPref = ""
	LaunchExternal LaunchPref = "external"
)

// Link is one user bookmark.
type Link struct {
	// ID is unique across the collection and never changes once assigned.
	ID string `json:"id"`

	// Description is the label shown to the user. Defaults to the URL.
	Description string `json:"description"`

	// URL always carries an explicit http(s) scheme.
	URL string `json:"url"`

	// Category groups links in the grouped view. Defaults to "Other".
	Category string `json:"category"`

	LaunchPref LaunchPref `json:"launchPref,omitempty"`
}

// DefaultCategory is assigned when a link has none.
const DefaultCategory = "Other"

// Categories is the built-in category list offered when adding links.
var Categories = []string{
	"Education", "Entertainment", "Finance", "Gaming", "Health", "Music", "News",
	"Personal", "Reference", "Shopping", "Social", "Sports", "Tech", "Tools",
	"Travel", "Work", DefaultCategory,
}

// SampleLinks seeds a fresh installation.
func SampleLinks() []Link {
	seed := []Link{
		{Description: "Youtube", URL: "https://m.youtube.com", Category: "Entertainment"},
		{Description: "Copilot", URL: "https://copilot.microsoft.com/", Category: "Tools"},
		{Description: "Radio.net", URL: "https://www.radio.net/", Category: "Music"},
	}
	for i := range seed {
		seed[i].ID = StableLinkID(seed[i].URL)
	}
	return seed
}

// NewLinkID returns a random id for a link created by the user.
func NewLinkID() string {
	return uuid.NewString()
}

// StableLinkID derives a deterministic id from a URL, so the same legacy link
// gets the same id when a migration pass is re-run.
func StableLinkID(url string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(URLKey(url))).String()
}

var schemePattern = regexp.MustCompile(`(?i)^https?://`)

// NormalizeURL trims input and adds https:// when no http(s) scheme is given.
// Empty input, javascript: URLs and a bare "https://" are rejected.
func NormalizeURL(raw string) (string, error) {
	u := strings.TrimSpace(raw)
	if u == "" || strings.HasPrefix(strings.ToLower(u), "javascript:") || strings.EqualFold(u, "https://") {
		return "", ErrInvalidURL
	}
	if !schemePattern.MatchString(u) {
		u = "https://" + u
	}
	return u, nil
}

// URLKey is the comparison key for duplicate detection: the normalised URL
// without trailing slashes.
func URLKey(raw string) string {
	u, err := NormalizeURL(raw)
	if err != nil {
		u = strings.TrimSpace(raw)
	}
	return strings.TrimRight(u, "/")
}

// Normalize validates l and fills defaults. The returned link has a normalised URL.
func (l Link) Normalize() (Link, error) {
	u, err := NormalizeURL(l.URL)
	if err != nil {
		return Link{}, err
	}
	l.URL = u
	l.Description = strings.TrimSpace(l.Description)
	if l.Description == "" {
		l.Description = u
	}
	l.Category = strings.TrimSpace(l.Category)
	if l.Category == "" {
		l.Category = DefaultCategory
	}
	if l.LaunchPref != LaunchExternal {
		l.LaunchPref = LaunchDefault
	}
	return l, nil
}

// LinkMerger appends links to a collection, dropping URL duplicates and
// replacing ids that would collide with an existing entry.
type LinkMerger struct {
	links []Link
	byURL map[string]string
	ids   map[string]struct{}
	newID func(Link) string
}

// NewLinkMerger indexes existing without modifying it. newID is called for
// links that arrive without an id or with a colliding one.
func NewLinkMerger(existing []Link, newID func(Link) string) *LinkMerger {
	m := &LinkMerger{
		links: append([]Link(nil), existing...),
		byURL: make(map[string]string, len(existing)),
		ids:   make(map[string]struct{}, len(existing)),
		newID: newID,
	}
	for _, l := range existing {
		key := URLKey(l.URL)
		if _, seen := m.byURL[key]; !seen {
			m.byURL[key] = l.ID
		}
		m.ids[l.ID] = struct{}{}
	}
	return m
}

// Add merges l. It returns the id the link is known by in the collection and
// whether it was appended (false for a duplicate).
func (m *LinkMerger) Add(l Link) (id string, added bool, err error) {
	l, err = l.Normalize()
	if err != nil {
		return "", false, err
	}
	key := URLKey(l.URL)
	if existing, dup := m.byURL[key]; dup {
		return existing, false, nil
	}

	if _, taken := m.ids[l.ID]; l.ID == "" || taken {
		l.ID = m.uniqueID(l)
	}

	m.links = append(m.links, l)
	m.byURL[key] = l.ID
	m.ids[l.ID] = struct{}{}
	return l.ID, true, nil
}

func (m *LinkMerger) uniqueID(l Link) string {
	id := m.newID(l)
	for {
		if _, taken := m.ids[id]; id != "" && !taken {
			return id
		}
		id = NewLinkID()
	}
}

// Links returns the merged collection.
func (m *LinkMerger) Links() []Link {
	return m.links
}
