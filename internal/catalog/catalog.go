// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package catalog resolves search terms to candidate article records and
// follows free-full-text cross-references between the two NCBI catalogs.
package catalog

import (
	"context"
	"fmt"
	"net/url"
	"regexp"

	"github.com/gjunjie/medical-paper-downloader/internal/page"
	"github.com/gjunjie/medical-paper-downloader/pkg/types"
)

// Base URLs for the two catalogs. Declared as vars so tests can substitute
// httptest servers.
var (
	PMCBase    = "https://pmc.ncbi.nlm.nih.gov"
	PubMedBase = "https://pubmed.ncbi.nlm.nih.gov"
)

// pmcIDPattern matches PMC identifiers ("PMC7681026").
var pmcIDPattern = regexp.MustCompile(`PMC\d+`)

// pmidPattern extracts a PubMed id from a result href ("/28390121/").
// PMIDs are 6 to 8 digits, which keeps years and other short numbers out.
var pmidPattern = regexp.MustCompile(`/(\d{6,8})/?$`)

// Resolver turns search terms into catalog records using a page client.
type Resolver struct {
	Client page.Client
}

// SearchURL returns the results-page URL for term in the given catalog.
func SearchURL(c types.Catalog, term string) string {
	q := url.QueryEscape(term)
	if c == types.CitationIndex {
		return PubMedBase + "/?term=" + q
	}
	return PMCBase + "/search/?term=" + q
}

// ResolveCandidates runs one search against the chosen catalog and returns
// up to k records in page order, which is the catalog's own relevance
// ranking. Fewer than k results, including none, is not an error; an error
// means the results page could not be loaded.
func (r *Resolver) ResolveCandidates(ctx context.Context, term string, k int, cat types.Catalog) ([]types.CatalogRecord, error) {
	doc, err := r.Client.Page(ctx, SearchURL(cat, term))
	if err != nil {
		return nil, fmt.Errorf("searching %s for %q: %w", cat, term, err)
	}

	var records []types.CatalogRecord
	if cat == types.CitationIndex {
		records = pubmedRecords(doc)
	} else {
		records = pmcRecords(doc)
	}

	if len(records) > k {
		records = records[:k]
	}
	return records, nil
}

// pmcResultSelectors are tried in order; the first that yields article
// links wins. The catalog markup changes periodically, hence the ladder.
var pmcResultSelectors = []string{
	`a[href*="/articles/PMC"]`,
	`a[href*="pmc/articles"]`,
	`.rprt a`,
}

func pmcRecords(doc page.Document) []types.CatalogRecord {
	for _, sel := range pmcResultSelectors {
		var records []types.CatalogRecord
		seen := make(map[string]struct{})
		for _, l := range doc.Links(sel) {
			id := pmcIDPattern.FindString(l.Href)
			if id == "" {
				continue
			}
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}
			records = append(records, types.CatalogRecord{
				SourceCatalog: types.FullTextRepo,
				RecordID:      id,
				ArticleURL:    l.Href,
			})
		}
		if len(records) > 0 {
			return records
		}
	}
	return nil
}

var pubmedResultSelectors = []string{
	`a.docsum-title`,
	`.docsum-title a`,
	`.rprt a`,
	`article a`,
}

func pubmedRecords(doc page.Document) []types.CatalogRecord {
	for _, sel := range pubmedResultSelectors {
		var records []types.CatalogRecord
		seen := make(map[string]struct{})
		for _, l := range doc.Links(sel) {
			m := pmidPattern.FindStringSubmatch(l.Href)
			if m == nil {
				continue
			}
			pmid := m[1]
			if _, dup := seen[pmid]; dup {
				continue
			}
			seen[pmid] = struct{}{}
			records = append(records, types.CatalogRecord{
				SourceCatalog: types.CitationIndex,
				RecordID:      pmid,
				ArticleURL:    l.Href,
			})
		}
		if len(records) > 0 {
			return records
		}
	}
	return nil
}

// pmcLinkSelectors locate the "free full text in PMC" affordance on a
// PubMed article page. The full-text-links section is preferred so that an
// unrelated PMC mention elsewhere on the page does not win.
var pmcLinkSelectors = []string{
	`.full-text-links a[href*="/articles/PMC"]`,
	`a[href*="/articles/PMC"]`,
	`a[href*="pmc.ncbi.nlm.nih.gov"]`,
}

// ResolveCrossReference opens a citation-index article page and resolves
// the linked full-text record, if any. ok is false when the article has no
// free full text, which is a normal outcome rather than an error.
func (r *Resolver) ResolveCrossReference(ctx context.Context, rec types.CatalogRecord) (full types.CatalogRecord, ok bool, err error) {
	doc, err := r.Client.Page(ctx, rec.ArticleURL)
	if err != nil {
		return types.CatalogRecord{}, false, fmt.Errorf("loading citation record %s: %w", rec.RecordID, err)
	}

	for _, sel := range pmcLinkSelectors {
		for _, l := range doc.Links(sel) {
			id := pmcIDPattern.FindString(l.Href)
			if id == "" {
				continue
			}
			return types.CatalogRecord{
				SourceCatalog: types.FullTextRepo,
				RecordID:      id,
				ArticleURL:    l.Href,
			}, true, nil
		}
	}

	// Last resort: a PMCID mentioned anywhere in the page body.
	if id := pmcIDPattern.FindString(doc.Text()); id != "" {
		return types.CatalogRecord{
			SourceCatalog: types.FullTextRepo,
			RecordID:      id,
			ArticleURL:    PMCBase + "/articles/" + id + "/",
		}, true, nil
	}

	return types.CatalogRecord{}, false, nil
}
