package host

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/MrSnakeDoc/launchpad/internal/domain"
)

// SearchClient fetches web results from a SerpAPI-style endpoint returning
// {"organic_results":[{"title":...,"link":...}]}.
type SearchClient struct {
	endpoint string
	client   *http.Client
}

func NewSearchClient(endpoint string, timeout time.Duration) *SearchClient {
	return &SearchClient{endpoint: endpoint, client: newHTTPClient(timeout)}
}

type searchResponse struct {
	OrganicResults []domain.Suggestion `json:"organic_results"`
}

// Suggest returns raw results; filtering against saved links is up to the caller.
func (s *SearchClient) Suggest(ctx context.Context, query string) ([]domain.Suggestion, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}

	u, err := url.Parse(s.endpoint)
	if err != nil {
		return nil, fmt.Errorf("invalid search endpoint: %w", err)
	}
	q := u.Query()
	q.Set("q", query)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create search request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search request failed: status %d", resp.StatusCode)
	}

	var out searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode search response: %w", err)
	}
	return out.OrganicResults, nil
}
