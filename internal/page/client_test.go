// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package page

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gjunjie/medical-paper-downloader/pkg/types"
)

func testClient() *HTTPClient {
	return NewHTTPClient(types.HTTPConfig{
		Timeout:   5 * time.Second,
		UserAgent: "test-agent",
	})
}

const linksHTML = `<html><body>
<a href="/articles/PMC111/">Relative</a>
<a href="https://example.org/articles/PMC222/">Absolute</a>
<a href="/other/page">Unrelated</a>
<a>No href</a>
</body></html>`

func TestPage_LinksResolved(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-agent", r.Header.Get("User-Agent"))
		w.Write([]byte(linksHTML))
	}))
	defer ts.Close()

	doc, err := testClient().Page(context.Background(), ts.URL+"/search/")
	require.NoError(t, err)

	links := doc.Links(`a[href*="/articles/PMC"]`)
	require.Len(t, links, 2)
	assert.Equal(t, ts.URL+"/articles/PMC111/", links[0].Href)
	assert.Equal(t, "Relative", links[0].Text)
	assert.Equal(t, "https://example.org/articles/PMC222/", links[1].Href)
}

func TestPage_HTTPError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer ts.Close()

	_, err := testClient().Page(context.Background(), ts.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP 500")
}

func TestDownload_ValidPDF(t *testing.T) {
	payload := []byte("%PDF-1.4\nfake pdf body")
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write(payload)
	}))
	defer ts.Close()

	body, err := testClient().Download(context.Background(), ts.URL+"/paper.pdf")
	require.NoError(t, err)
	defer body.Close()

	got, err := io.ReadAll(body)
	require.NoError(t, err)
	assert.Equal(t, payload, got)
}

func TestDownload_RejectsNonPDF(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("<html>interstitial page</html>"))
	}))
	defer ts.Close()

	_, err := testClient().Download(context.Background(), ts.URL+"/paper.pdf")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "did not return a PDF")
}

func TestDownload_HTTPError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer ts.Close()

	_, err := testClient().Download(context.Background(), ts.URL+"/missing.pdf")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP 404")
}
