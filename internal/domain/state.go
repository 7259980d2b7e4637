package domain

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/MrSnakeDoc/launchpad/internal/palette"
)

// View is how the link list is laid out.
type View string

const (
	ViewList  View = "list"
	ViewGroup View = "group"
)

// ParseView maps unknown values to ViewList.
func ParseView(s string) View {
	if View(strings.ToLower(strings.TrimSpace(s))) == ViewGroup {
		return ViewGroup
	}
	return ViewList
}

// DefaultVolume is used when nothing was persisted.
const DefaultVolume = 80

// State is the whole user-visible launcher state. Methods keep the
// invariants between links and favorites; callers handle locking.
type State struct {
	Links     []Link        `json:"links"`
	Favorites []string      `json:"favorites"`
	View      View          `json:"view"`
	Collapsed []string      `json:"collapsed"`
	Theme     palette.Theme `json:"theme"`
	Volume    int           `json:"volume"`
}

// NewState returns an empty state with defaults.
func NewState() *State {
	return &State{
		Links:     []Link{},
		Favorites: []string{},
		View:      ViewList,
		Collapsed: []string{},
		Theme:     palette.DefaultTheme(palette.Dark),
		Volume:    DefaultVolume,
	}
}

// Clone returns a deep copy safe to hand out to readers.
func (s *State) Clone() *State {
	return &State{
		Links:     slices.Clone(s.Links),
		Favorites: slices.Clone(s.Favorites),
		View:      s.View,
		Collapsed: slices.Clone(s.Collapsed),
		Theme: palette.Theme{
			Name:    s.Theme.Name,
			Palette: s.Theme.Palette.Clone(),
			Mode:    s.Theme.Mode,
		},
		Volume: s.Volume,
	}
}

func (s *State) indexOf(id string) int {
	return slices.IndexFunc(s.Links, func(l Link) bool { return l.ID == id })
}

// Link returns the link with id.
func (s *State) Link(id string) (Link, bool) {
	if i := s.indexOf(id); i >= 0 {
		return s.Links[i], true
	}
	return Link{}, false
}

// FindByURL returns the link whose URL matches u, ignoring trailing slashes.
func (s *State) FindByURL(u string) (Link, bool) {
	key := URLKey(u)
	for _, l := range s.Links {
		if URLKey(l.URL) == key {
			return l, true
		}
	}
	return Link{}, false
}

// AddLink validates l, assigns an id and appends it. The link's category is
// expanded so the new entry is visible.
func (s *State) AddLink(l Link) (Link, error) {
	l, err := l.Normalize()
	if err != nil {
		return Link{}, fmt.Errorf("%w: %w", ErrInvalidLink, err)
	}
	if _, dup := s.FindByURL(l.URL); dup {
		return Link{}, ErrDuplicateLink
	}
	if l.ID == "" || s.indexOf(l.ID) >= 0 {
		l.ID = NewLinkID()
	}
	s.Links = append(s.Links, l)
	s.ExpandCategory(l.Category)
	return l, nil
}

// UpdateLink replaces the fields of an existing link, keeping its id.
func (s *State) UpdateLink(id string, l Link) (Link, error) {
	i := s.indexOf(id)
	if i < 0 {
		return Link{}, ErrLinkNotFound
	}
	l, err := l.Normalize()
	if err != nil {
		return Link{}, fmt.Errorf("%w: %w", ErrInvalidLink, err)
	}
	if other, dup := s.FindByURL(l.URL); dup && other.ID != id {
		return Link{}, ErrDuplicateLink
	}
	l.ID = id
	s.Links[i] = l
	return l, nil
}

// DeleteLink removes the link and its favorite entry.
func (s *State) DeleteLink(id string) (Link, error) {
	i := s.indexOf(id)
	if i < 0 {
		return Link{}, ErrLinkNotFound
	}
	removed := s.Links[i]
	s.Links = slices.Delete(s.Links, i, i+1)
	s.Favorites = slices.DeleteFunc(s.Favorites, func(f string) bool { return f == id })
	return removed, nil
}

// DeleteMode selects the links a bulk delete removes.
type DeleteMode string

const (
	DeleteSelected      DeleteMode = "selected"
	DeleteAll           DeleteMode = "all"
	DeleteKeepFavorites DeleteMode = "keep-favs"
)

var (
	ErrUnknownDeleteMode = errors.New("unknown delete mode")
	ErrNothingToDelete   = errors.New("no links to delete")
)

// ParseDeleteMode defaults an empty mode to DeleteSelected.
func ParseDeleteMode(s string) (DeleteMode, error) {
	switch m := DeleteMode(strings.ToLower(strings.TrimSpace(s))); m {
	case "", DeleteSelected:
		return DeleteSelected, nil
	case DeleteAll, DeleteKeepFavorites:
		return m, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownDeleteMode, s)
	}
}

// DeleteSelection returns the ids a bulk delete in mode removes, in
// collection order. ids only matter for DeleteSelected; unknown ones are
// skipped. An empty selection is ErrNothingToDelete.
func (s *State) DeleteSelection(mode DeleteMode, ids []string) ([]string, error) {
	var keep func(Link) bool
	switch mode {
	case DeleteSelected:
		keep = func(l Link) bool { return slices.Contains(ids, l.ID) }
	case DeleteAll:
		keep = func(Link) bool { return true }
	case DeleteKeepFavorites:
		keep = func(l Link) bool { return !s.IsFavorite(l.ID) }
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDeleteMode, mode)
	}

	out := []string{}
	for _, l := range s.Links {
		if keep(l) {
			out = append(out, l.ID)
		}
	}
	if len(out) == 0 {
		return nil, ErrNothingToDelete
	}
	return out, nil
}

// DeleteLinks removes every link in ids and prunes the favorites that
// pointed at them. Unknown ids are ignored.
func (s *State) DeleteLinks(ids []string) []Link {
	var removed []Link
	s.Links = slices.DeleteFunc(s.Links, func(l Link) bool {
		if slices.Contains(ids, l.ID) {
			removed = append(removed, l)
			return true
		}
		return false
	})
	s.PruneFavorites()
	return removed
}

// IsFavorite reports whether id is in the favorites set.
func (s *State) IsFavorite(id string) bool {
	return slices.Contains(s.Favorites, id)
}

// ToggleFavorite flips the favorite status of id and returns the new status.
func (s *State) ToggleFavorite(id string) (bool, error) {
	if s.indexOf(id) < 0 {
		return false, ErrLinkNotFound
	}
	if s.IsFavorite(id) {
		s.Favorites = slices.DeleteFunc(s.Favorites, func(f string) bool { return f == id })
		return false, nil
	}
	s.Favorites = append(s.Favorites, id)
	return true, nil
}

// ClearFavorites empties the favorites set.
func (s *State) ClearFavorites() {
	s.Favorites = []string{}
}

// FavoriteLinks returns favorited links in collection order.
func (s *State) FavoriteLinks() []Link {
	out := make([]Link, 0, len(s.Favorites))
	for _, l := range s.Links {
		if s.IsFavorite(l.ID) {
			out = append(out, l)
		}
	}
	return out
}

// PruneFavorites drops duplicate ids and ids that reference no link.
// It returns how many entries were removed.
func (s *State) PruneFavorites() int {
	before := len(s.Favorites)
	seen := make(map[string]struct{}, len(s.Favorites))
	kept := make([]string, 0, len(s.Favorites))
	for _, id := range s.Favorites {
		if _, dup := seen[id]; dup || s.indexOf(id) < 0 {
			continue
		}
		seen[id] = struct{}{}
		kept = append(kept, id)
	}
	s.Favorites = kept
	return before - len(kept)
}

// IsCollapsed reports whether a category is folded in the grouped view.
func (s *State) IsCollapsed(category string) bool {
	return slices.Contains(s.Collapsed, category)
}

// ToggleCategory folds or unfolds a category and returns whether it is now collapsed.
func (s *State) ToggleCategory(category string) bool {
	if s.IsCollapsed(category) {
		s.ExpandCategory(category)
		return false
	}
	s.Collapsed = append(s.Collapsed, category)
	return true
}

// ExpandCategory unfolds a category.
func (s *State) ExpandCategory(category string) {
	s.Collapsed = slices.DeleteFunc(s.Collapsed, func(c string) bool { return c == category })
}

// CollapseAll folds every category that currently holds links. When all of
// them are already folded it unfolds everything instead.
func (s *State) CollapseAll() bool {
	cats := s.UsedCategories()
	allCollapsed := len(cats) > 0
	for _, c := range cats {
		if !s.IsCollapsed(c) {
			allCollapsed = false
			break
		}
	}
	if allCollapsed {
		s.Collapsed = []string{}
		return false
	}
	s.Collapsed = cats
	return true
}

// UsedCategories returns the categories present in the collection, in first-seen order.
func (s *State) UsedCategories() []string {
	var out []string
	for _, l := range s.Links {
		if !slices.Contains(out, l.Category) {
			out = append(out, l.Category)
		}
	}
	return out
}

// SetVolume clamps v to 0-100 and stores it.
func (s *State) SetVolume(v int) int {
	s.Volume = ClampVolume(float64(v))
	return s.Volume
}

// ClampVolume rounds and clamps a volume to 0-100.
func ClampVolume(v float64) int {
	if math.IsNaN(v) {
		return DefaultVolume
	}
	return int(math.Max(0, math.Min(100, math.Round(v))))
}
