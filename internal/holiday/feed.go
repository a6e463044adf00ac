package holiday

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// PublicHoliday is one entry of the Nager.Date PublicHolidays feed.
type PublicHoliday struct {
	Date        string   `json:"date"`
	LocalName   string   `json:"localName"`
	Name        string   `json:"name"`
	CountryCode string   `json:"countryCode"`
	Fixed       bool     `json:"fixed"`
	Global      bool     `json:"global"`
	Types       []string `json:"types"`
}

// Feed is the public holiday source consumed by the sync.
type Feed interface {
	PublicHolidays(ctx context.Context, year int, country string) ([]PublicHoliday, error)
}

type FeedClient struct {
	baseURL string
	http    *http.Client
}

// NewFeedClient builds a client for baseURL (for example https://date.nager.at/api/v3).
// A nil httpClient gets a 15 second timeout.
func NewFeedClient(baseURL string, httpClient *http.Client) *FeedClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &FeedClient{baseURL: baseURL, http: httpClient}
}

func (c *FeedClient) PublicHolidays(ctx context.Context, year int, country string) ([]PublicHoliday, error) {
	url := fmt.Sprintf("%s/PublicHolidays/%d/%s", c.baseURL, year, country)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build holiday feed request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch holiday feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("holiday feed returned %d: %s", resp.StatusCode, string(body))
	}

	var out []PublicHoliday
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode holiday feed: %w", err)
	}
	return out, nil
}
