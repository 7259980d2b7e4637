package domain

import (
	"net/url"
	"sort"
	"strings"
)

const (
	// Scoring weights
	ScoreExactMatch     = 100.0
	ScorePrefixMatch    = 75.0
	ScoreSubstringMatch = 50.0
	ScoreFuzzyMatch     = 25.0

	// Position bonus (earlier is better)
	ScorePositionBonus = 10.0

	// Exact description match bonus
	ScoreExactBonus = 200.0

	// Matches on the host only count for a fraction of a description match
	ScoreHostWeight = 0.6
)

// LinkMatch is a link with its match score.
type LinkMatch struct {
	Link  Link    `json:"link"`
	Score float64 `json:"score"`
}

// ScoreLink scores a link against a query using its description, falling
// back to the URL host.
func ScoreLink(query string, l Link) float64 {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return 0.0
	}

	best := scoreText(query, strings.ToLower(l.Description))
	if u, err := url.Parse(l.URL); err == nil && u.Hostname() != "" {
		host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
		if s := scoreText(query, host) * ScoreHostWeight; s > best {
			best = s
		}
	}
	return best
}

func scoreText(query, text string) float64 {
	if text == "" {
		return 0.0
	}

	// Exact match (highest score)
	if query == text {
		return ScoreExactMatch + ScoreExactBonus
	}

	// Prefix match
	if strings.HasPrefix(text, query) {
		return ScorePrefixMatch
	}

	// Substring match
	if index := strings.Index(text, query); index >= 0 {
		// Earlier substring matches get higher score
		substringBonus := ScorePositionBonus * (1.0 - float64(index)/float64(len(text)))
		return ScoreSubstringMatch + substringBonus
	}

	// Fuzzy match (word-based)
	// Check if all query words appear in the text
	if words := strings.Fields(query); len(words) > 1 {
		allMatch := true
		for _, word := range words {
			if !strings.Contains(text, word) {
				allMatch = false
				break
			}
		}
		if allMatch {
			return ScoreFuzzyMatch
		}
	}

	// Character similarity
	if similarity := calculateSimilarity(query, text); similarity > 0.5 {
		return ScoreFuzzyMatch * similarity
	}

	return 0.0
}

// calculateSimilarity is the ratio of query characters present in text.
func calculateSimilarity(query, text string) float64 {
	if query == "" || text == "" {
		return 0.0
	}

	matches, total := 0, 0
	for _, c := range query {
		total++
		if strings.ContainsRune(text, c) {
			matches++
		}
	}

	return float64(matches) / float64(total)
}

// RankLinks returns links matching query, best first. Ties keep collection order.
func RankLinks(query string, links []Link) []LinkMatch {
	matches := make([]LinkMatch, 0, len(links))
	for _, l := range links {
		if score := ScoreLink(query, l); score > 0 {
			matches = append(matches, LinkMatch{Link: l, Score: score})
		}
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})
	return matches
}

// Suggestion is a web search result offered as a new link.
type Suggestion struct {
	Title string `json:"title"`
	Link  string `json:"link"`
}

// MaxSuggestions is how many suggestions are shown at once.
const MaxSuggestions = 4

// FilterSuggestions drops suggestions without a usable URL, suggestions whose
// URL is already saved and repeats, keeping at most limit entries.
func FilterSuggestions(suggestions []Suggestion, links []Link, limit int) []Suggestion {
	known := make(map[string]struct{}, len(links)+len(suggestions))
	for _, l := range links {
		known[URLKey(l.URL)] = struct{}{}
	}

	out := make([]Suggestion, 0, min(limit, len(suggestions)))
	for _, s := range suggestions {
		if len(out) >= limit {
			break
		}
		u, err := NormalizeURL(s.Link)
		if err != nil {
			continue
		}
		key := URLKey(u)
		if _, dup := known[key]; dup {
			continue
		}
		known[key] = struct{}{}
		title := strings.TrimSpace(s.Title)
		if title == "" {
			title = u
		}
		out = append(out, Suggestion{Title: title, Link: u})
	}
	return out
}
