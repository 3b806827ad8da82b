// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types holds the record and configuration structs shared across
// the resolution and retrieval stages.
package types

// Catalog identifies which bibliographic catalog a record came from.
type Catalog int

const (
	// FullTextRepo is PMC, which hosts complete article content including PDFs.
	FullTextRepo Catalog = iota
	// CitationIndex is PubMed, whose records may cross-reference PMC.
	CitationIndex
)

func (c Catalog) String() string {
	switch c {
	case CitationIndex:
		return "pubmed"
	default:
		return "pmc"
	}
}

// CatalogRecord is one search hit scraped from a catalog results page.
// Identity is RecordID within SourceCatalog. Records are transient: created
// and consumed within one resolution, never cached across terms or runs.
type CatalogRecord struct {
	SourceCatalog Catalog
	RecordID      string
	ArticleURL    string
}

// RetrievalTarget is the ordinal-th download candidate for a search term.
// It carries enough to attempt a download independent of whether it came
// from a direct hit or a cross-reference.
type RetrievalTarget struct {
	Term       string
	Ordinal    int
	RecordID   string
	ArticleURL string
}

// OutcomeStatus is the terminal state of one retrieval attempt.
type OutcomeStatus string

const (
	OutcomeSuccess OutcomeStatus = "success"
	OutcomeSkipped OutcomeStatus = "skipped"
	OutcomeFailed  OutcomeStatus = "failed"
)

// RetrievalOutcome records the result of one retrieval attempt. Exactly one
// outcome exists per discovered target; outcomes are never retried within a
// run.
type RetrievalOutcome struct {
	Ordinal  int           `json:"ordinal" yaml:"ordinal"`
	Status   OutcomeStatus `json:"status" yaml:"status"`
	FilePath string        `json:"file_path,omitempty" yaml:"file_path,omitempty"`
	Reason   string        `json:"reason,omitempty" yaml:"reason,omitempty"`
}

// TermResult aggregates the outcomes for one search term, in ordinal order.
type TermResult struct {
	Term string `json:"term" yaml:"term"`

	// Dir is the subdirectory that received this term's files.
	Dir string `json:"dir,omitempty" yaml:"dir,omitempty"`

	Outcomes []RetrievalOutcome `json:"outcomes" yaml:"outcomes"`

	// ResolutionErr is set when the search step itself failed and no
	// candidates could be discovered for the term.
	ResolutionErr string `json:"resolution_error,omitempty" yaml:"resolution_error,omitempty"`
}

// SuccessCount returns the number of successful downloads for the term.
func (t TermResult) SuccessCount() int { return t.countStatus(OutcomeSuccess) }

// FailureCount returns the number of failed retrieval attempts for the term.
func (t TermResult) FailureCount() int { return t.countStatus(OutcomeFailed) }

// SkipCount returns the number of skipped candidates for the term.
func (t TermResult) SkipCount() int { return t.countStatus(OutcomeSkipped) }

func (t TermResult) countStatus(s OutcomeStatus) int {
	n := 0
	for _, o := range t.Outcomes {
		if o.Status == s {
			n++
		}
	}
	return n
}

// BatchResult holds the per-term results of a batch run, in input order.
type BatchResult struct {
	Terms []TermResult `json:"terms" yaml:"terms"`
}

// TermsProcessed returns the number of terms the batch attempted.
func (r BatchResult) TermsProcessed() int { return len(r.Terms) }

// FilesDownloaded returns the total successful downloads across all terms.
func (r BatchResult) FilesDownloaded() int {
	n := 0
	for _, t := range r.Terms {
		n += t.SuccessCount()
	}
	return n
}

// FilesFailed returns the total failed retrieval attempts across all terms.
func (r BatchResult) FilesFailed() int {
	n := 0
	for _, t := range r.Terms {
		n += t.FailureCount()
	}
	return n
}

// FilesSkipped returns the total skipped candidates across all terms.
func (r BatchResult) FilesSkipped() int {
	n := 0
	for _, t := range r.Terms {
		n += t.SkipCount()
	}
	return n
}

// HasFailures reports whether any retrieval failed or any term could not
// be resolved at all.
func (r BatchResult) HasFailures() bool {
	for _, t := range r.Terms {
		if t.FailureCount() > 0 || t.ResolutionErr != "" {
			return true
		}
	}
	return false
}
