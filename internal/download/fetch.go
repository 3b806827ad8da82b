// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package download

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/gjunjie/medical-paper-downloader/internal/catalog"
	"github.com/gjunjie/medical-paper-downloader/internal/page"
	"github.com/gjunjie/medical-paper-downloader/pkg/types"
)

// DiscoverTargets resolves up to cfg.MaxResults retrieval targets for term.
// Ordinals are assigned in discovery order starting at zero. In
// cross-referenced mode every citation record receives an ordinal; records
// without a free-full-text link (or whose lookup failed) come back as
// pre-resolved Skipped outcomes instead of targets, so the caller still
// accounts for them 1:1.
func DiscoverTargets(ctx context.Context, resolver *catalog.Resolver, term string, cfg types.FetchConfig) ([]types.RetrievalTarget, []types.RetrievalOutcome, error) {
	records, err := resolver.ResolveCandidates(ctx, term, cfg.MaxResults, cfg.Mode.Catalog())
	if err != nil {
		return nil, nil, err
	}

	if cfg.Mode != types.ModeCrossReferenced {
		targets := make([]types.RetrievalTarget, 0, len(records))
		for i, rec := range records {
			targets = append(targets, newTarget(term, i, rec))
		}
		return targets, nil, nil
	}

	var targets []types.RetrievalTarget
	var skipped []types.RetrievalOutcome
	for i, rec := range records {
		full, ok, xerr := resolver.ResolveCrossReference(ctx, rec)
		if xerr != nil {
			skipped = append(skipped, types.RetrievalOutcome{
				Ordinal: i,
				Status:  types.OutcomeSkipped,
				Reason:  fmt.Sprintf("cross-reference lookup failed: %v", xerr),
			})
			continue
		}
		if !ok {
			skipped = append(skipped, types.RetrievalOutcome{
				Ordinal: i,
				Status:  types.OutcomeSkipped,
				Reason:  "no free full text",
			})
			continue
		}
		targets = append(targets, newTarget(term, i, full))
	}
	return targets, skipped, nil
}

func newTarget(term string, ordinal int, rec types.CatalogRecord) types.RetrievalTarget {
	return types.RetrievalTarget{
		Term:       term,
		Ordinal:    ordinal,
		RecordID:   rec.RecordID,
		ArticleURL: rec.ArticleURL,
	}
}

// FetchTerm resolves and downloads up to cfg.MaxResults papers for one
// search term into cfg.OutputDir, returning the saved file paths in
// ordinal order. Per-target failures and skips are reported on w and are
// simply absent from the returned list; callers needing per-outcome detail
// use the batch surface.
func FetchTerm(ctx context.Context, client page.Client, resolver *catalog.Resolver, term string, cfg types.FetchConfig, w io.Writer) ([]string, error) {
	if strings.TrimSpace(term) == "" {
		return nil, fmt.Errorf("search term is empty")
	}
	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	fmt.Fprintf(w, "searching %s for: %s\n", cfg.Mode.Catalog(), term)
	targets, skipped, err := DiscoverTargets(ctx, resolver, term, cfg)
	if err != nil {
		return nil, err
	}
	for _, s := range skipped {
		fmt.Fprintf(w, "skipped: candidate %d (%s)\n", s.Ordinal, s.Reason)
	}
	if len(targets) == 0 {
		fmt.Fprintln(w, "no retrievable results")
		return nil, nil
	}
	fmt.Fprintf(w, "found %d candidate(s) to retrieve\n", len(targets))

	var paths []string
	for i, tgt := range targets {
		if i > 0 && cfg.DownloadDelay > 0 {
			time.Sleep(cfg.DownloadDelay)
		}
		out := Retrieve(ctx, client, tgt, cfg.OutputDir)
		switch out.Status {
		case types.OutcomeSuccess:
			fmt.Fprintf(w, "downloaded: %s\n", out.FilePath)
			paths = append(paths, out.FilePath)
		case types.OutcomeSkipped:
			fmt.Fprintf(w, "skipped: %s (%s)\n", tgt.RecordID, out.Reason)
		default:
			fmt.Fprintf(w, "failed: %s (%s)\n", tgt.RecordID, out.Reason)
		}
	}

	fmt.Fprintf(w, "\n%d file(s) downloaded to %s\n", len(paths), cfg.OutputDir)
	return paths, nil
}
