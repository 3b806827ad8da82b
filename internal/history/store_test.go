// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package history

import (
	"bytes"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gjunjie/medical-paper-downloader/pkg/types"
)

func testBatchResult() types.BatchResult {
	return types.BatchResult{
		Terms: []types.TermResult{
			{
				Term: "vitamin c",
				Dir:  "downloads/vitamin_c",
				Outcomes: []types.RetrievalOutcome{
					{Ordinal: 0, Status: types.OutcomeSuccess, FilePath: "downloads/vitamin_c/vitamin_c_0.pdf"},
					{Ordinal: 1, Status: types.OutcomeFailed, Reason: "download timeout"},
					{Ordinal: 2, Status: types.OutcomeSkipped, Reason: "no free full text"},
				},
			},
			{
				Term:          "bad term",
				ResolutionErr: "search page unreachable",
			},
		},
	}
}

func testConfig() types.BatchConfig {
	return types.BatchConfig{
		FetchConfig: types.FetchConfig{
			MaxResults: 5,
			Mode:       types.ModeDirect,
		},
	}
}

func TestStore_RecordAndList(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "history.db")
	store, err := Open(dbPath)
	require.NoError(t, err)
	defer store.Close()

	started := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	require.NoError(t, store.Record(started, testConfig(), testBatchResult()))

	var buf bytes.Buffer
	require.NoError(t, store.List(&buf, 10))

	out := buf.String()
	assert.Contains(t, out, "run 1")
	assert.Contains(t, out, "2026-03-14T09:30:00Z")
	assert.Contains(t, out, "mode=pmc k=5")
	assert.Contains(t, out, "2 term(s): 1 downloaded, 1 failed, 1 skipped")
	assert.Contains(t, out, "vitamin c: 1 downloaded, 1 failed, 1 skipped")
	assert.Contains(t, out, "bad term: error (search page unreachable)")
}

func TestStore_ListNewestFirst(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "history.db")
	store, err := Open(dbPath)
	require.NoError(t, err)
	defer store.Close()

	first := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	second := first.Add(24 * time.Hour)
	require.NoError(t, store.Record(first, testConfig(), testBatchResult()))
	require.NoError(t, store.Record(second, testConfig(), testBatchResult()))

	var buf bytes.Buffer
	require.NoError(t, store.List(&buf, 10))

	out := buf.String()
	assert.Less(t, bytes.Index(buf.Bytes(), []byte("run 2")), bytes.Index(buf.Bytes(), []byte("run 1")),
		"newest run should be listed first:\n%s", out)
}

func TestStore_ListLimit(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "history.db")
	store, err := Open(dbPath)
	require.NoError(t, err)
	defer store.Close()

	for i := 0; i < 3; i++ {
		require.NoError(t, store.Record(time.Now(), testConfig(), testBatchResult()))
	}

	var buf bytes.Buffer
	require.NoError(t, store.List(&buf, 1))
	assert.Contains(t, buf.String(), "run 3")
	assert.NotContains(t, buf.String(), "run 2")
}

func TestStore_ListEmpty(t *testing.T) {
	store, err := Open(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	defer store.Close()

	var buf bytes.Buffer
	require.NoError(t, store.List(&buf, 5))
	assert.Contains(t, buf.String(), "No recorded runs.")
}

func TestStore_OpenCreatesParentDirs(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nested", "dir", "history.db")
	store, err := Open(dbPath)
	require.NoError(t, err)
	store.Close()
}
