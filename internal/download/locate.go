// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package download locates and retrieves PDF documents for resolved
// catalog records, one attempt per target.
package download

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"path"

	"github.com/gjunjie/medical-paper-downloader/internal/catalog"
	"github.com/gjunjie/medical-paper-downloader/internal/page"
	"github.com/gjunjie/medical-paper-downloader/pkg/types"
)

// ErrNoPDF reports that a loaded article page carries no PDF affordance,
// typically a paywalled or malformed page.
var ErrNoPDF = errors.New("no pdf affordance")

// Action is the resolved download affordance for one article: the URL
// which, when fetched, yields the PDF payload.
type Action struct {
	URL      string
	Filename string
}

// Locate opens the article page for rec and finds its PDF download link.
// Each article has one well-known affordance; Locate does not guess among
// unrelated candidates. Absence yields ErrNoPDF.
func Locate(ctx context.Context, client page.Client, rec types.CatalogRecord) (Action, error) {
	doc, err := client.Page(ctx, rec.ArticleURL)
	if err != nil {
		return Action{}, fmt.Errorf("loading article %s: %w", rec.RecordID, err)
	}

	// Canonical affordance: /articles/<id>/pdf/<filename>.pdf.
	canonical := fmt.Sprintf(`a[href*="/articles/%s/pdf/"]`, rec.RecordID)
	if links := doc.Links(canonical); len(links) > 0 {
		return Action{URL: links[0].Href, Filename: path.Base(links[0].Href)}, nil
	}

	// Fallback: some pages link the bare /pdf/<filename> form. Take the
	// filename and reconstruct the canonical article path.
	if links := doc.Links(`a[href$=".pdf"]`); len(links) > 0 {
		name := path.Base(links[0].Href)
		return Action{URL: articlePDFURL(rec, name), Filename: name}, nil
	}

	return Action{}, fmt.Errorf("article %s: %w", rec.RecordID, ErrNoPDF)
}

func articlePDFURL(rec types.CatalogRecord, filename string) string {
	u, err := url.Parse(rec.ArticleURL)
	if err != nil {
		return catalog.PMCBase + "/articles/" + rec.RecordID + "/pdf/" + filename
	}
	u.Path = "/articles/" + rec.RecordID + "/pdf/" + filename
	u.RawQuery = ""
	u.Fragment = ""
	return u.String()
}
