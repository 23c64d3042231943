// Package imagesearch finds background photos for slides via the Unsplash API.
package imagesearch

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"

	"deckcast/pkg/config"
	"deckcast/pkg/request"
)

const defaultBaseURL = "https://api.unsplash.com"

// Client searches Unsplash for one landscape photo per query and fetches
// its bytes. It implements render.Searcher.
type Client struct {
	client  *request.Client
	key     string
	baseURL string
}

// New creates an Unsplash client. The key may be empty; searches then fail
// and callers fall back to solid backgrounds.
func New(cfg config.ImageSearchConfig, rc *request.Client) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		client:  rc,
		key:     cfg.Key,
		baseURL: baseURL,
	}
}

// searchResponse is the subset of the Unsplash search payload we read.
type searchResponse struct {
	Results []struct {
		ID   string `json:"id"`
		URLs struct {
			Regular string `json:"regular"`
		} `json:"urls"`
	} `json:"results"`
}

// SearchImage returns the encoded bytes of the top landscape result for the
// query. Both the search response and the image bytes are cached, so repeated
// renders of the same deck stay within API quota.
func (c *Client) SearchImage(ctx context.Context, query string) ([]byte, error) {
	if c.key == "" {
		return nil, fmt.Errorf("unsplash: no access key configured")
	}
	if query == "" {
		return nil, fmt.Errorf("unsplash: empty query")
	}

	params := url.Values{}
	params.Set("query", query)
	params.Set("orientation", "landscape")
	params.Set("per_page", "1")

	searchURL := fmt.Sprintf("%s/search/photos?%s", c.baseURL, params.Encode())
	headers := map[string]string{
		"Authorization": "Client-ID " + c.key,
	}

	cacheKey := "unsplash:search:" + query
	body, err := c.client.GetWithHeaders(ctx, searchURL, headers, cacheKey)
	if err != nil {
		return nil, fmt.Errorf("unsplash search: %w", err)
	}

	var resp searchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("unsplash search: invalid response: %w", err)
	}
	if len(resp.Results) == 0 {
		return nil, fmt.Errorf("unsplash: no results for %q", query)
	}

	photo := resp.Results[0]
	if photo.URLs.Regular == "" {
		return nil, fmt.Errorf("unsplash: result %s has no regular url", photo.ID)
	}

	slog.Debug("Unsplash photo selected", "query", query, "id", photo.ID)

	imgKey := "unsplash:image:" + photo.ID
	img, err := c.client.Get(ctx, photo.URLs.Regular, imgKey)
	if err != nil {
		return nil, fmt.Errorf("unsplash image fetch: %w", err)
	}
	return img, nil
}
