// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package batch runs the retrieval pipeline over many search terms with
// per-term failure isolation and aggregate reporting.
package batch

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/gjunjie/medical-paper-downloader/internal/catalog"
	"github.com/gjunjie/medical-paper-downloader/internal/download"
	"github.com/gjunjie/medical-paper-downloader/internal/page"
	"github.com/gjunjie/medical-paper-downloader/pkg/types"
)

// Run processes terms strictly in input order, downloading up to
// cfg.MaxResults papers per term into the term's own subdirectory of
// cfg.OutputDir. A failed target never halts the rest of its term and a
// failed term never halts the batch; the only way to stop early is process
// termination.
func Run(ctx context.Context, client page.Client, resolver *catalog.Resolver, terms []string, cfg types.BatchConfig, w io.Writer) types.BatchResult {
	var result types.BatchResult

	fmt.Fprintf(w, "starting batch of %d term(s), up to %d paper(s) each\n\n", len(terms), cfg.MaxResults)

	for i, term := range terms {
		fmt.Fprintf(w, "[%d/%d] %s\n", i+1, len(terms), term)
		result.Terms = append(result.Terms, runTerm(ctx, client, resolver, term, cfg, w))
	}

	writeSummary(w, result)
	return result
}

func runTerm(ctx context.Context, client page.Client, resolver *catalog.Resolver, term string, cfg types.BatchConfig, w io.Writer) types.TermResult {
	tr := types.TermResult{Term: term}

	dir := filepath.Join(cfg.OutputDir, download.Sanitize(term))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		tr.ResolutionErr = fmt.Sprintf("creating term directory: %v", err)
		fmt.Fprintf(w, "  error: %s\n\n", tr.ResolutionErr)
		return tr
	}
	tr.Dir = dir

	targets, skipped, err := download.DiscoverTargets(ctx, resolver, term, cfg.FetchConfig)
	if err != nil {
		tr.ResolutionErr = err.Error()
		fmt.Fprintf(w, "  error: %v\n\n", err)
		return tr
	}
	if len(targets) == 0 && len(skipped) == 0 {
		fmt.Fprintf(w, "  no results\n\n")
		return tr
	}

	outcomes := make([]types.RetrievalOutcome, 0, len(targets)+len(skipped))
	outcomes = append(outcomes, skipped...)

	for i, tgt := range targets {
		if i > 0 && cfg.DownloadDelay > 0 {
			time.Sleep(cfg.DownloadDelay)
		}
		out := download.Retrieve(ctx, client, tgt, dir)
		switch out.Status {
		case types.OutcomeSuccess:
			fmt.Fprintf(w, "  downloaded: %s\n", out.FilePath)
		case types.OutcomeSkipped:
			fmt.Fprintf(w, "  skipped: %s (%s)\n", tgt.RecordID, out.Reason)
		default:
			fmt.Fprintf(w, "  failed: %s (%s)\n", tgt.RecordID, out.Reason)
		}
		outcomes = append(outcomes, out)
	}

	// Outcomes are reported in ordinal order regardless of whether they
	// came from the discovery or the retrieval phase.
	sort.Slice(outcomes, func(a, b int) bool { return outcomes[a].Ordinal < outcomes[b].Ordinal })
	tr.Outcomes = outcomes

	fmt.Fprintf(w, "  term done: %d downloaded, %d failed, %d skipped\n\n",
		tr.SuccessCount(), tr.FailureCount(), tr.SkipCount())
	return tr
}

func writeSummary(w io.Writer, r types.BatchResult) {
	fmt.Fprintln(w, "Batch summary:")
	for _, tr := range r.Terms {
		if tr.ResolutionErr != "" {
			fmt.Fprintf(w, "  %s: error (%s)\n", tr.Term, tr.ResolutionErr)
			continue
		}
		fmt.Fprintf(w, "  %s: %d downloaded, %d failed, %d skipped\n",
			tr.Term, tr.SuccessCount(), tr.FailureCount(), tr.SkipCount())
	}
	fmt.Fprintf(w, "Total: %d term(s), %d downloaded, %d failed, %d skipped\n",
		r.TermsProcessed(), r.FilesDownloaded(), r.FilesFailed(), r.FilesSkipped())
}
