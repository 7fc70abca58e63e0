// Package names resolves character IDs to display names through the public
// EVE Swagger Interface (ESI).
package names

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"slices"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/thoreinstein/packprefs/internal/logging"
)

// DefaultEndpoint is the ESI bulk name lookup endpoint.
const DefaultEndpoint = "https://esi.evetech.net/latest/universe/names/"

// DefaultTimeout bounds a single lookup request.
const DefaultTimeout = 10 * time.Second

// BatchSize is the maximum number of IDs ESI accepts per request.
const BatchSize = 500

// CategoryCharacter is the only result category kept.
const CategoryCharacter = "character"

// maxErrorBody caps how much of an error response is read into the error.
const maxErrorBody = 512

// Client performs name lookups.
type Client struct {
	endpoint string
	http     *http.Client
	logger   *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithEndpoint overrides the lookup URL.
func WithEndpoint(url string) Option {
	return func(c *Client) {
		if url != "" {
			c.endpoint = url
		}
	}
}

// WithHTTPClient sets the HTTP client used for requests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithTimeout sets the per-request timeout on the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http = &http.Client{Timeout: d}
		}
	}
}

// WithLogger sets the client logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewClient creates a Client.
func NewClient(opts ...Option) *Client {
	c := &Client{
		endpoint: DefaultEndpoint,
		http:     &http.Client{Timeout: DefaultTimeout},
		logger:   logging.NewDiscard(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type result struct {
	ID       uint64 `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category"`
}

// Resolve looks up names for ids in batches of BatchSize. Only character
// results are returned. IDs ESI does not know are absent from the map. The
// first failing batch aborts the lookup.
func (c *Client) Resolve(ctx context.Context, ids []uint64) (map[uint64]string, error) {
	out := make(map[uint64]string)

	for batch := range slices.Chunk(ids, BatchSize) {
		found, err := c.fetch(ctx, batch)
		if err != nil {
			return out, err
		}
		for id, name := range found {
			out[id] = name
		}
	}

	return out, nil
}

func (c *Client) fetch(ctx context.Context, ids []uint64) (map[uint64]string, error) {
	body, err := json.Marshal(ids)
	if err != nil {
		return nil, errors.Wrap(err, "encoding ids")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrap(err, "building name lookup request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	c.logger.Debug("resolving names", "count", len(ids))

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "sending name lookup request")
	}
	defer resp.Body.Close()

	// ESI answers 404 when none of the IDs resolve.
	if resp.StatusCode == http.StatusNotFound {
		return map[uint64]string{}, nil
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, errors.Newf("name lookup failed with status %s: %s", resp.Status, bytes.TrimSpace(snippet))
	}

	var results []result
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return nil, errors.Wrap(err, "decoding name lookup response")
	}

	found := make(map[uint64]string, len(results))
	for _, r := range results {
		if r.Category == CategoryCharacter {
			found[r.ID] = r.Name
		}
	}
	return found, nil
}

// Uncached returns the IDs in ids that are not keys of cache, preserving
// order and dropping duplicates.
func Uncached(ids []uint64, cache map[uint64]string) []uint64 {
	var out []uint64
	seen := make(map[uint64]bool, len(ids))
	for _, id := range ids {
		if _, ok := cache[id]; ok || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

// ResolveUncached looks up only the ids missing from cache and returns the
// new entries. Nothing is requested when every id is cached.
func (c *Client) ResolveUncached(ctx context.Context, ids []uint64, cache map[uint64]string) (map[uint64]string, error) {
	missing := Uncached(ids, cache)
	if len(missing) == 0 {
		return map[uint64]string{}, nil
	}
	return c.Resolve(ctx, missing)
}
