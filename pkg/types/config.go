package types

import (
	"fmt"
	"time"
)

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout, covering the full response body read.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests. The NCBI
	// sites reject obviously non-browser agents, so the default mimics one.
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// SearchMode selects how download candidates are discovered.
type SearchMode string

const (
	// ModeDirect searches PMC and downloads hits directly.
	ModeDirect SearchMode = "pmc"

	// ModeCrossReferenced searches PubMed and follows each record's
	// free-full-text cross-reference into PMC. Records without one are
	// skipped.
	ModeCrossReferenced SearchMode = "pubmed"
)

// Catalog returns the catalog searched in this mode.
func (m SearchMode) Catalog() Catalog {
	if m == ModeCrossReferenced {
		return CitationIndex
	}
	return FullTextRepo
}

// ParseMode validates a mode string from the CLI or config file.
func ParseMode(s string) (SearchMode, error) {
	switch SearchMode(s) {
	case ModeDirect, ModeCrossReferenced:
		return SearchMode(s), nil
	default:
		return "", fmt.Errorf("unknown mode %q (expected %q or %q)", s, ModeDirect, ModeCrossReferenced)
	}
}

// FetchConfig holds settings for resolving and downloading papers for a
// single search term.
type FetchConfig struct {
	HTTPConfig `yaml:",inline"`

	// MaxResults is the maximum number of papers to download per term.
	MaxResults int `json:"max_results" yaml:"max_results"`

	// Mode selects direct PMC search or PubMed cross-reference search.
	Mode SearchMode `json:"mode" yaml:"mode"`

	// OutputDir is the directory that receives downloaded PDFs.
	OutputDir string `json:"output_dir" yaml:"output_dir"`

	// DownloadDelay is the pause between consecutive downloads.
	DownloadDelay time.Duration `json:"download_delay" yaml:"download_delay"`
}

// BatchConfig holds settings for a multi-term batch run. Each term gets
// its own subdirectory under OutputDir.
type BatchConfig struct {
	FetchConfig `yaml:",inline"`

	// ReportPath, when set, receives a YAML report of the run.
	ReportPath string `json:"report_path,omitempty" yaml:"report_path,omitempty"`

	// HistoryDB, when set, is the SQLite database that records the run.
	HistoryDB string `json:"history_db,omitempty" yaml:"history_db,omitempty"`
}
