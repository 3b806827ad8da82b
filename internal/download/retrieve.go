// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package download

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
	"strings"

	"github.com/gjunjie/medical-paper-downloader/internal/page"
	"github.com/gjunjie/medical-paper-downloader/pkg/types"
)

// Retrieve drives one target through locate, download, and persist, and
// converts every error into a terminal outcome. Its side effects (one
// navigation, one file write) are confined to this single attempt; no
// orchestrator state is read or mutated.
func Retrieve(ctx context.Context, client page.Client, target types.RetrievalTarget, destDir string) types.RetrievalOutcome {
	out := types.RetrievalOutcome{Ordinal: target.Ordinal}

	rec := types.CatalogRecord{
		SourceCatalog: types.FullTextRepo,
		RecordID:      target.RecordID,
		ArticleURL:    target.ArticleURL,
	}
	action, err := Locate(ctx, client, rec)
	if err != nil {
		if errors.Is(err, ErrNoPDF) {
			out.Status = types.OutcomeSkipped
			out.Reason = "no pdf affordance"
			return out
		}
		out.Status = types.OutcomeFailed
		out.Reason = failReason(err)
		return out
	}

	body, err := client.Download(ctx, action.URL)
	if err != nil {
		out.Status = types.OutcomeFailed
		out.Reason = failReason(err)
		return out
	}
	defer body.Close()

	destPath := filepath.Join(destDir, FileName(target.Term, target.Ordinal))
	if err := saveFile(body, destPath); err != nil {
		out.Status = types.OutcomeFailed
		out.Reason = failReason(err)
		return out
	}

	out.Status = types.OutcomeSuccess
	out.FilePath = destPath
	return out
}

// failReason collapses deadline and transport timeouts into a stable label.
func failReason(err error) string {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return "download timeout"
	}
	return err.Error()
}

// FileName returns the deterministic destination name for a target:
// <sanitized term>_<ordinal>.pdf. Re-running a term overwrites rather than
// duplicates.
func FileName(term string, ordinal int) string {
	return fmt.Sprintf("%s_%d.pdf", Sanitize(term), ordinal)
}

// Sanitize converts a search term to a filesystem-safe name: lowercased,
// whitespace runs collapsed to single underscores, path separators and
// drive colons replaced.
func Sanitize(term string) string {
	s := strings.ToLower(strings.TrimSpace(term))
	s = strings.Join(strings.Fields(s), "_")
	s = strings.NewReplacer("/", "_", `\`, "_", ":", "_").Replace(s)
	if s == "" {
		return "term"
	}
	return s
}

// saveFile writes body to destPath via a temporary file renamed on success,
// so an interrupted download never leaves a partial PDF behind.
func saveFile(body io.Reader, destPath string) error {
	tmp, err := os.CreateTemp(filepath.Dir(destPath), ".download-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()

	_, copyErr := io.Copy(tmp, body)
	closeErr := tmp.Close()
	if copyErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("writing download: %w", copyErr)
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp file: %w", closeErr)
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}
