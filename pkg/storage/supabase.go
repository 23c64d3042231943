// Package storage uploads finished videos to Supabase object storage and
// builds their public URLs.
package storage

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"deckcast/pkg/config"
	"deckcast/pkg/request"
)

// Uploader stores a named object and returns its public URL.
type Uploader interface {
	Upload(ctx context.Context, filename string, data []byte, contentType string) (string, error)
}

// Client talks to the Supabase storage API.
type Client struct {
	client *request.Client
	cfg    config.StorageConfig
}

// New creates a storage client. URL and Key must be set for uploads to work.
func New(cfg config.StorageConfig, rc *request.Client) *Client {
	return &Client{client: rc, cfg: cfg}
}

// Upload stores data under filename in the configured bucket, overwriting any
// existing object, and returns the public URL.
func (c *Client) Upload(ctx context.Context, filename string, data []byte, contentType string) (string, error) {
	if c.cfg.URL == "" || c.cfg.Key == "" {
		return "", fmt.Errorf("storage not configured (url/key missing)")
	}
	if filename == "" {
		return "", fmt.Errorf("filename is required")
	}

	base := strings.TrimSuffix(c.cfg.URL, "/")
	u := fmt.Sprintf("%s/storage/v1/object/%s/%s", base, c.cfg.Bucket, url.PathEscape(filename))

	headers := map[string]string{
		"Authorization": "Bearer " + c.cfg.Key,
		"Content-Type":  contentType,
		"x-upsert":      "true",
	}

	if _, err := c.client.PostWithHeaders(ctx, u, data, headers); err != nil {
		return "", fmt.Errorf("storage upload: %w", err)
	}

	publicURL := c.PublicURL(filename)
	slog.Info("Object uploaded", "bucket", c.cfg.Bucket, "filename", filename, "bytes", len(data))
	return publicURL, nil
}

// PublicURL returns the unauthenticated URL for an object in the bucket.
func (c *Client) PublicURL(filename string) string {
	base := strings.TrimSuffix(c.cfg.URL, "/")
	return fmt.Sprintf("%s/storage/v1/object/public/%s/%s", base, c.cfg.Bucket, url.PathEscape(filename))
}
