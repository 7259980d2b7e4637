package homepage

import (
	"errors"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/MrSnakeDoc/launchpad/internal/domain"
)

// ErrNoLinks is returned when a file holds no usable entry.
var ErrNoLinks = errors.New("no valid links found in homepage config")

// Mapper converts Homepage entries to links. The group becomes the category
// and the entry name the description.
type Mapper struct{}

func NewMapper() *Mapper {
	return &Mapper{}
}

// MapLinks skips entries without a usable href. Links get ids derived from
// their URL so importing the same file twice yields the same ids.
func (m *Mapper) MapLinks(file File) ([]domain.Link, error) {
	var links []domain.Link

	for _, group := range file {
		// a group map normally has a single key; sort for a stable order
		names := make([]string, 0, len(group))
		for name := range group {
			names = append(names, name)
		}
		sort.Strings(names)

		for _, groupName := range names {
			for _, entries := range group[groupName] {
				for entryName, node := range entries {
					href, ok := entryHref(&node)
					if !ok {
						continue
					}

					l, err := domain.Link{
						Description: strings.TrimSpace(entryName),
						URL:         href,
						Category:    strings.TrimSpace(groupName),
					}.Normalize()
					if err != nil {
						continue
					}
					l.ID = domain.StableLinkID(l.URL)
					links = append(links, l)
				}
			}
		}
	}

	if len(links) == 0 {
		return nil, ErrNoLinks
	}
	return links, nil
}

// entryHref reads the href of a service (mapping) or bookmark (list with one mapping).
func entryHref(node *yaml.Node) (string, bool) {
	switch node.Kind {
	case yaml.MappingNode:
		var props ServiceProps
		if err := node.Decode(&props); err != nil {
			return "", false
		}
		return props.Href, props.Href != ""

	case yaml.SequenceNode:
		var entries []BookmarkEntry
		if err := node.Decode(&entries); err != nil || len(entries) == 0 {
			return "", false
		}
		return entries[0].Href, entries[0].Href != ""

	default:
		return "", false
	}
}
