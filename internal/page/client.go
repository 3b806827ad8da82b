// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package page wraps page fetching and HTML parsing behind a small client
// interface so the resolution and retrieval logic can be tested against
// canned pages.
package page

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/gjunjie/medical-paper-downloader/internal/httputil"
	"github.com/gjunjie/medical-paper-downloader/pkg/types"
)

// Link is one anchor extracted from a document, with Href resolved to an
// absolute URL.
type Link struct {
	Href string
	Text string
}

// Document is a fetched, parsed page.
type Document interface {
	// Links returns the anchors matching the CSS selector, in page order,
	// with hrefs resolved against the document URL. Anchors without an
	// href are omitted.
	Links(selector string) []Link

	// Text returns the text content of the whole page.
	Text() string
}

// Client fetches catalog pages and downloads documents. Implementations own
// all transport state; callers hold nothing between calls.
type Client interface {
	// Page fetches url and parses it as HTML.
	Page(ctx context.Context, url string) (Document, error)

	// Download fetches url expecting a PDF payload. The caller must close
	// the returned reader.
	Download(ctx context.Context, url string) (io.ReadCloser, error)
}

// HTTPClient is the production Client backed by net/http and goquery.
type HTTPClient struct {
	client *http.Client
	cfg    types.HTTPConfig
}

// NewHTTPClient creates a client with the configured timeout and User-Agent.
func NewHTTPClient(cfg types.HTTPConfig) *HTTPClient {
	return &HTTPClient{
		client: &http.Client{Timeout: cfg.Timeout},
		cfg:    cfg,
	}
}

func (c *HTTPClient) get(ctx context.Context, rawURL, accept string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", c.cfg.UserAgent)
	req.Header.Set("Accept", accept)

	resp, err := httputil.DoWithRetry(ctx, c.client, req, 0)
	if err != nil {
		return nil, fmt.Errorf("HTTP request: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("HTTP %d from %s", resp.StatusCode, rawURL)
	}
	return resp, nil
}

// Page implements Client.
func (c *HTTPClient) Page(ctx context.Context, rawURL string) (Document, error) {
	resp, err := c.get(ctx, rawURL, "text/html,application/xhtml+xml")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", rawURL, err)
	}
	return &htmlDocument{doc: doc, base: resp.Request.URL}, nil
}

// pdfMagic is the required prefix of a downloaded payload.
var pdfMagic = []byte("%PDF")

// Download implements Client. Payloads that do not start with the PDF magic
// number (interstitial or error pages served with status 200) are rejected.
func (c *HTTPClient) Download(ctx context.Context, rawURL string) (io.ReadCloser, error) {
	resp, err := c.get(ctx, rawURL, "application/pdf,application/octet-stream,*/*")
	if err != nil {
		return nil, err
	}

	head := make([]byte, len(pdfMagic))
	if _, err := io.ReadFull(resp.Body, head); err != nil {
		resp.Body.Close()
		return nil, fmt.Errorf("reading download from %s: %w", rawURL, err)
	}
	if !bytes.Equal(head, pdfMagic) {
		resp.Body.Close()
		return nil, fmt.Errorf("%s did not return a PDF", rawURL)
	}
	return &prefixedBody{prefix: head, body: resp.Body}, nil
}

// prefixedBody replays the sniffed magic bytes ahead of the remaining body.
type prefixedBody struct {
	prefix []byte
	body   io.ReadCloser
}

func (p *prefixedBody) Read(b []byte) (int, error) {
	if len(p.prefix) > 0 {
		n := copy(b, p.prefix)
		p.prefix = p.prefix[n:]
		return n, nil
	}
	return p.body.Read(b)
}

func (p *prefixedBody) Close() error { return p.body.Close() }

type htmlDocument struct {
	doc  *goquery.Document
	base *url.URL
}

func (d *htmlDocument) Links(selector string) []Link {
	var links []Link
	d.doc.Find(selector).Each(func(_ int, s *goquery.Selection) {
		href, ok := s.Attr("href")
		if !ok || href == "" {
			return
		}
		links = append(links, Link{
			Href: d.resolve(href),
			Text: strings.TrimSpace(s.Text()),
		})
	})
	return links
}

func (d *htmlDocument) Text() string { return d.doc.Text() }

func (d *htmlDocument) resolve(href string) string {
	u, err := url.Parse(href)
	if err != nil || d.base == nil {
		return href
	}
	return d.base.ResolveReference(u).String()
}
