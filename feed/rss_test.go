package feed

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const rssFixture = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>Example</title>
    <link>https://example.com</link>
    <item>
      <title>Older</title>
      <link>https://example.com/older</link>
      <guid>older</guid>
      <description>&lt;p&gt;old &lt;b&gt;news&lt;/b&gt;&lt;/p&gt;</description>
      <pubDate>Mon, 01 Jan 2024 10:00:00 GMT</pubDate>
    </item>
    <item>
      <title>Newer</title>
      <link>https://example.com/newer</link>
      <guid>newer</guid>
      <description>fresh news</description>
      <pubDate>Fri, 05 Jan 2024 10:00:00 GMT</pubDate>
    </item>
    <item>
      <title>No link</title>
      <description>cannot be used</description>
      <pubDate>Sat, 06 Jan 2024 10:00:00 GMT</pubDate>
    </item>
  </channel>
</rss>`

func newRSSServer(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		_, _ = w.Write([]byte(rssFixture))
	}))
}

func TestRSSFetcher_Fetch(t *testing.T) {
	srv := newRSSServer(t)
	defer srv.Close()

	items, err := NewRSSFetcher(srv.URL, 0).Fetch(context.Background())
	require.NoError(t, err)

	// リンクのない項目は落ち、残りは公開日の降順
	require.Len(t, items, 2)
	assert.Equal(t, "Newer", items[0].Title)
	assert.Equal(t, "https://example.com/newer", items[0].Link)
	assert.Equal(t, "Older", items[1].Title)

	// 要約からHTMLタグが除去されている
	assert.Equal(t, "old news", items[1].Summary)

	assert.Equal(t, 2024, items[0].Published.Year())
	assert.False(t, items[1].Published.IsZero())
}

func TestRSSFetcher_FetchLimit(t *testing.T) {
	srv := newRSSServer(t)
	defer srv.Close()

	items, err := NewRSSFetcher(srv.URL, 1).Fetch(context.Background())
	require.NoError(t, err)

	require.Len(t, items, 1)
	assert.Equal(t, "Newer", items[0].Title)
}

func TestRSSFetcher_FetchBadURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := NewRSSFetcher(srv.URL, 0).Fetch(context.Background())
	assert.Error(t, err)
}
