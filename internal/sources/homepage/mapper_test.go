package homepage

import (
	"testing"

	"github.com/MrSnakeDoc/launchpad/internal/domain"
)

func TestMapLinksStableIDs(t *testing.T) {
	file, err := Parse([]byte(`
- Media:
    - Jellyfin:
        href: https://jellyfin.local/
        description: Streaming
`))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	m := NewMapper()
	first, err := m.MapLinks(file)
	if err != nil {
		t.Fatalf("MapLinks() error = %v", err)
	}
	second, _ := m.MapLinks(file)

	if first[0].ID != second[0].ID {
		t.Errorf("ids differ between runs: %q vs %q", first[0].ID, second[0].ID)
	}
	if first[0].ID != domain.StableLinkID(first[0].URL) {
		t.Errorf("id %q is not derived from the URL", first[0].ID)
	}
}

func TestMapLinksSkipsInvalidEntries(t *testing.T) {
	file, err := Parse([]byte(`
- Mixed:
    - Good:
        href: https://good.example
    - NoHref:
        description: nothing here
    - Scalar: just a string
    - EmptyBookmark: []
`))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	links, err := NewMapper().MapLinks(file)
	if err != nil {
		t.Fatalf("MapLinks() error = %v", err)
	}
	if len(links) != 1 || links[0].Description != "Good" {
		t.Errorf("MapLinks() = %+v, want only Good", links)
	}
}
