// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package batch

import (
	"fmt"
	"os"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/gjunjie/medical-paper-downloader/pkg/types"
)

// Report is the on-disk YAML record of a batch run.
type Report struct {
	Timestamp  time.Time        `yaml:"timestamp"`
	Mode       types.SearchMode `yaml:"mode"`
	MaxResults int              `yaml:"max_results"`
	OutputDir  string           `yaml:"output_dir"`
	Terms      []TermReport     `yaml:"terms"`
	Totals     ReportTotals     `yaml:"totals"`
}

// TermReport holds one term's outcomes and counts.
type TermReport struct {
	Term       string                   `yaml:"term"`
	Error      string                   `yaml:"error,omitempty"`
	Downloaded int                      `yaml:"downloaded"`
	Failed     int                      `yaml:"failed"`
	Skipped    int                      `yaml:"skipped"`
	Outcomes   []types.RetrievalOutcome `yaml:"outcomes,omitempty"`
}

// ReportTotals aggregates counts across the whole run.
type ReportTotals struct {
	TermsProcessed  int `yaml:"terms_processed"`
	FilesDownloaded int `yaml:"files_downloaded"`
	FilesFailed     int `yaml:"files_failed"`
	FilesSkipped    int `yaml:"files_skipped"`
}

// NewReport converts a batch result into its report form.
func NewReport(cfg types.BatchConfig, result types.BatchResult, at time.Time) Report {
	rep := Report{
		Timestamp:  at,
		Mode:       cfg.Mode,
		MaxResults: cfg.MaxResults,
		OutputDir:  cfg.OutputDir,
		Totals: ReportTotals{
			TermsProcessed:  result.TermsProcessed(),
			FilesDownloaded: result.FilesDownloaded(),
			FilesFailed:     result.FilesFailed(),
			FilesSkipped:    result.FilesSkipped(),
		},
	}
	for _, tr := range result.Terms {
		rep.Terms = append(rep.Terms, TermReport{
			Term:       tr.Term,
			Error:      tr.ResolutionErr,
			Downloaded: tr.SuccessCount(),
			Failed:     tr.FailureCount(),
			Skipped:    tr.SkipCount(),
			Outcomes:   tr.Outcomes,
		})
	}
	return rep
}

// WriteReport saves the batch result as a YAML report at path.
func WriteReport(path string, cfg types.BatchConfig, result types.BatchResult) error {
	data, err := yaml.Marshal(NewReport(cfg, result, time.Now()))
	if err != nil {
		return fmt.Errorf("marshaling report: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	return nil
}
