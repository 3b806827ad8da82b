// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package download

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gjunjie/medical-paper-downloader/internal/catalog"
	"github.com/gjunjie/medical-paper-downloader/pkg/types"
)

// newPMCServer serves a PMC search page with n results plus the article and
// PDF pages behind them.
func newPMCServer(t *testing.T, n int) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()

	mux.HandleFunc("/search/", func(w http.ResponseWriter, _ *http.Request) {
		var b strings.Builder
		b.WriteString("<html><body>")
		for i := 1; i <= n; i++ {
			fmt.Fprintf(&b, `<a href="/articles/PMC%d/">Result %d</a>`, i, i)
		}
		b.WriteString("</body></html>")
		w.Write([]byte(b.String()))
	})

	for i := 1; i <= n; i++ {
		id := fmt.Sprintf("PMC%d", i)
		mux.HandleFunc("/articles/"+id+"/", func(w http.ResponseWriter, _ *http.Request) {
			w.Write([]byte(`<html><body><a href="/articles/` + id + `/pdf/paper.pdf">Download PDF</a></body></html>`))
		})
		mux.HandleFunc("/articles/"+id+"/pdf/paper.pdf", func(w http.ResponseWriter, _ *http.Request) {
			w.Write([]byte("%PDF-1.4 " + id))
		})
	}
	return httptest.NewServer(mux)
}

func swapPMCBase(t *testing.T, url string) {
	t.Helper()
	old := catalog.PMCBase
	catalog.PMCBase = url
	t.Cleanup(func() { catalog.PMCBase = old })
}

func fetchTestConfig(outputDir string) types.FetchConfig {
	return types.FetchConfig{
		HTTPConfig: types.HTTPConfig{
			Timeout:   5 * time.Second,
			UserAgent: "test-agent",
		},
		MaxResults: 3,
		Mode:       types.ModeDirect,
		OutputDir:  outputDir,
	}
}

func TestDiscoverTargets_OrdinalsInDiscoveryOrder(t *testing.T) {
	ts := newPMCServer(t, 5)
	defer ts.Close()
	swapPMCBase(t, ts.URL)

	client := testPageClient()
	resolver := &catalog.Resolver{Client: client}

	targets, skipped, err := DiscoverTargets(context.Background(), resolver, "vitamin c", fetchTestConfig(t.TempDir()))
	if err != nil {
		t.Fatalf("DiscoverTargets: %v", err)
	}
	if len(skipped) != 0 {
		t.Fatalf("direct mode produced %d skips", len(skipped))
	}
	if len(targets) != 3 {
		t.Fatalf("got %d targets, want 3", len(targets))
	}
	for i, tgt := range targets {
		if tgt.Ordinal != i {
			t.Errorf("target %d: ordinal = %d", i, tgt.Ordinal)
		}
		wantID := fmt.Sprintf("PMC%d", i+1)
		if tgt.RecordID != wantID {
			t.Errorf("target %d: id = %q, want %q", i, tgt.RecordID, wantID)
		}
	}
}

func TestFetchTerm_DirectMode(t *testing.T) {
	ts := newPMCServer(t, 5)
	defer ts.Close()
	swapPMCBase(t, ts.URL)

	client := testPageClient()
	resolver := &catalog.Resolver{Client: client}
	outDir := t.TempDir()

	var buf bytes.Buffer
	paths, err := FetchTerm(context.Background(), client, resolver, "vitamin c", fetchTestConfig(outDir), &buf)
	if err != nil {
		t.Fatalf("FetchTerm: %v", err)
	}

	want := []string{
		filepath.Join(outDir, "vitamin_c_0.pdf"),
		filepath.Join(outDir, "vitamin_c_1.pdf"),
		filepath.Join(outDir, "vitamin_c_2.pdf"),
	}
	if len(paths) != len(want) {
		t.Fatalf("got %d paths, want %d: %v", len(paths), len(want), paths)
	}
	for i := range want {
		if paths[i] != want[i] {
			t.Errorf("path %d = %q, want %q", i, paths[i], want[i])
		}
	}
}

func TestFetchTerm_EmptyTerm(t *testing.T) {
	client := testPageClient()
	resolver := &catalog.Resolver{Client: client}

	_, err := FetchTerm(context.Background(), client, resolver, "  ", fetchTestConfig(t.TempDir()), &bytes.Buffer{})
	if err == nil {
		t.Fatal("expected error for empty term")
	}
}

func TestFetchTerm_NoResults(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`<html><body>No results.</body></html>`))
	}))
	defer ts.Close()
	swapPMCBase(t, ts.URL)

	client := testPageClient()
	resolver := &catalog.Resolver{Client: client}

	var buf bytes.Buffer
	paths, err := FetchTerm(context.Background(), client, resolver, "asdfqwerty", fetchTestConfig(t.TempDir()), &buf)
	if err != nil {
		t.Fatalf("no results should not be an error, got %v", err)
	}
	if len(paths) != 0 {
		t.Fatalf("got %d paths, want 0", len(paths))
	}
}
