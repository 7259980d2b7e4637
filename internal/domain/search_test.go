package domain

import "testing"

func TestScoreLink(t *testing.T) {
	tests := []struct {
		name           string
		query          string
		description    string
		url            string
		expectPositive bool
	}{
		{
			name:           "exact match",
			query:          "youtube",
			description:    "Youtube",
			url:            "https://m.youtube.com",
			expectPositive: true,
		},
		{
			name:           "prefix match",
			query:          "you",
			description:    "Youtube",
			url:            "https://m.youtube.com",
			expectPositive: true,
		},
		{
			name:           "substring match",
			query:          "tube",
			description:    "Youtube",
			url:            "https://m.youtube.com",
			expectPositive: true,
		},
		{
			name:           "host match",
			query:          "radio.net",
			description:    "Internet radio",
			url:            "https://www.radio.net/",
			expectPositive: true,
		},
		{
			name:           "no match",
			query:          "xyz",
			description:    "Youtube",
			url:            "https://m.youtube.com",
			expectPositive: false,
		},
		{
			name:           "multi-word match",
			query:          "docker hub",
			description:    "Docker Hub",
			url:            "https://hub.docker.com",
			expectPositive: true,
		},
		{
			name:           "empty query",
			query:          "  ",
			description:    "Youtube",
			url:            "https://m.youtube.com",
			expectPositive: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score := ScoreLink(tt.query, Link{ID: "test-id", Description: tt.description, URL: tt.url})

			if tt.expectPositive && score <= 0 {
				t.Errorf("Expected positive score, got %f", score)
			}

			if !tt.expectPositive && score > 0 {
				t.Errorf("Expected zero score, got %f", score)
			}
		})
	}
}

func TestRankLinksOrder(t *testing.T) {
	links := []Link{
		{ID: "sub", Description: "My Chat", URL: "https://example.com"},
		{ID: "exact", Description: "Chat", URL: "https://chat.example.com"},
		{ID: "none", Description: "Music", URL: "https://spotify.io"},
		{ID: "prefix", Description: "ChatGPT", URL: "https://chat.openai.com"},
	}

	matches := RankLinks("chat", links)
	if len(matches) != 3 {
		t.Fatalf("Expected 3 matches, got %d", len(matches))
	}

	want := []string{"exact", "prefix", "sub"}
	for i, id := range want {
		if matches[i].Link.ID != id {
			t.Errorf("matches[%d] = %s, want %s", i, matches[i].Link.ID, id)
		}
	}
}

func TestFilterSuggestions(t *testing.T) {
	links := []Link{{ID: "1", URL: "https://a.com"}}
	suggestions := []Suggestion{
		{Title: "A again", Link: "https://a.com/"},
		{Title: "B", Link: "https://b.com"},
		{Title: "B dup", Link: "https://b.com/"},
		{Title: "", Link: "c.com"},
		{Title: "bad", Link: "javascript:alert(1)"},
		{Title: "D", Link: "https://d.com"},
		{Title: "E", Link: "https://e.com"},
		{Title: "F", Link: "https://f.com"},
	}

	got := FilterSuggestions(suggestions, links, MaxSuggestions)
	if len(got) != MaxSuggestions {
		t.Fatalf("Expected %d suggestions, got %d: %v", MaxSuggestions, len(got), got)
	}

	want := []Suggestion{
		{Title: "B", Link: "https://b.com"},
		{Title: "https://c.com", Link: "https://c.com"},
		{Title: "D", Link: "https://d.com"},
		{Title: "E", Link: "https://e.com"},
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("got[%d] = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestRankLinksScenarios(t *testing.T) {
	links := []Link{
		{ID: "1", Description: "AdGuard", URL: "https://adguard.home.lan"},
		{ID: "2", Description: "AdGuard HA", URL: "https://adguard-ha.home.lan"},
		{ID: "3", Description: "Traefik", URL: "https://traefik.home.lan"},
		{ID: "4", Description: "Jellyfin", URL: "https://jellyfin.home.lan"},
		{ID: "5", Description: "Jellyseerr", URL: "https://jellyseerr.home.lan"},
	}

	tests := []struct {
		name        string
		query       string
		expectedTop string
	}{
		{"exact match beats longer names", "adguard", "AdGuard"},
		{"prefix match keeps collection order", "jelly", "Jellyfin"},
		{"multi fragment search", "ad ha", "AdGuard HA"},
		{"fuzzy match", "trfk", "Traefik"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			matches := RankLinks(tt.query, links)
			if len(matches) == 0 {
				t.Fatalf("no matches for query %q", tt.query)
			}
			if top := matches[0].Link.Description; top != tt.expectedTop {
				for i, m := range matches {
					t.Logf("  %d. %s (score: %.2f)", i+1, m.Link.Description, m.Score)
				}
				t.Errorf("query %q: top = %s, want %s", tt.query, top, tt.expectedTop)
			}
		})
	}
}
