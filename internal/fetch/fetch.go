// Package fetch downloads remote documents for the open-from-URL action.
// Fetches run off the event loop; the caller cancels through the context
// when the tab that requested the fetch goes away.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// DefaultMaxBytes caps a download at 128 MiB.
const DefaultMaxBytes = 128 << 20

// DefaultTimeout bounds the whole request when the caller's context does
// not.
const DefaultTimeout = 60 * time.Second

// pdfMagic is the header every PDF starts with.
const pdfMagic = "%PDF-"

// Client fetches remote documents.
type Client struct {
	http     *http.Client
	maxBytes int64
	log      zerolog.Logger
}

// New creates a client. maxBytes <= 0 selects DefaultMaxBytes.
func New(maxBytes int64, log zerolog.Logger) *Client {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	return &Client{
		http:     &http.Client{Timeout: DefaultTimeout},
		maxBytes: maxBytes,
		log:      log.With().Str("component", "fetch").Logger(),
	}
}

// Document is a fetched remote document.
type Document struct {
	// Label is a display name derived from the URL path.
	Label string
	Data  []byte
}

// Fetch downloads rawURL and verifies it is a PDF. The response body is
// read fully; documents over the size cap fail rather than truncate.
func (c *Client) Fetch(ctx context.Context, rawURL string) (Document, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return Document{}, fmt.Errorf("parse url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return Document{}, fmt.Errorf("unsupported scheme %q", u.Scheme)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return Document{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/pdf, */*")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return Document{}, fmt.Errorf("fetch %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Document{}, fmt.Errorf("fetch %s: unexpected status %s", rawURL, resp.Status)
	}
	if resp.ContentLength > c.maxBytes {
		return Document{}, fmt.Errorf("document is %d bytes, cap is %d", resp.ContentLength, c.maxBytes)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBytes+1))
	if err != nil {
		return Document{}, fmt.Errorf("read body: %w", err)
	}
	if int64(len(data)) > c.maxBytes {
		return Document{}, fmt.Errorf("document exceeds %d byte cap", c.maxBytes)
	}
	if !strings.HasPrefix(string(data[:min(len(data), len(pdfMagic))]), pdfMagic) {
		return Document{}, fmt.Errorf("%s is not a PDF document", rawURL)
	}

	c.log.Info().
		Str("url", rawURL).
		Int("bytes", len(data)).
		Dur("took", time.Since(start)).
		Msg("document fetched")

	return Document{Label: labelFor(u), Data: data}, nil
}

// labelFor derives a tab label from the URL path, falling back to the
// host for bare URLs.
func labelFor(u *url.URL) string {
	base := path.Base(u.Path)
	if base == "." || base == "/" || base == "" {
		return u.Host
	}
	return base
}
