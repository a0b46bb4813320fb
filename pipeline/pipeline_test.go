package pipeline

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	buspkg "github.com/sat8bit/kawaraban/bus"
	"github.com/sat8bit/kawaraban/draft"
	"github.com/sat8bit/kawaraban/event"
	"github.com/sat8bit/kawaraban/feed"
	"github.com/sat8bit/kawaraban/gate"
	"github.com/sat8bit/kawaraban/seen"
	"github.com/sat8bit/kawaraban/summarize"
)

// stubFetcher は、固定の項目を返す feed.Fetcher です。
type stubFetcher struct {
	items []*feed.Item
}

func (f *stubFetcher) Fetch(ctx context.Context) ([]*feed.Item, error) {
	return f.items, nil
}

func newArticleServer(t *testing.T, words int) *httptest.Server {
	t.Helper()
	body := "<html><body><p>" + strings.Repeat("word ", words) + "</p></body></html>"
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(body))
	}))
}

func freshItem(link, title string, age time.Duration) *feed.Item {
	return &feed.Item{
		Title:     title,
		Link:      link,
		Summary:   "short.",
		Published: time.Now().Add(-age),
	}
}

type testEnv struct {
	pipeline *Pipeline
	store    *seen.Store
	postsDir string
	events   []*event.Event
	finish   func()
}

func newTestEnv(t *testing.T, fetcher feed.Fetcher, store *seen.Store, postsDir string) *testEnv {
	t.Helper()

	env := &testEnv{store: store, postsDir: postsDir}

	b := buspkg.NewMemoryBus()
	ch := b.Subscribe()
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for ev := range ch {
			env.events = append(env.events, ev)
		}
	}()
	env.finish = func() {
		b.Close()
		wg.Wait()
	}

	env.pipeline = New(Config{
		Fetcher:    fetcher,
		Summarizer: summarize.NewLead(),
		Writer:     draft.NewWriter(postsDir),
		Seen:       store,
		Bus:        b,
		Gate:       gate.NewChannelGate(2),
		Window:     6 * time.Hour,
		MaxPosts:   2,
		MinWords:   40,
		Author:     "desk",
	})
	return env
}

func (e *testEnv) kinds() map[event.Kind]int {
	out := make(map[event.Kind]int)
	for _, ev := range e.events {
		out[ev.Kind]++
	}
	return out
}

func TestPipeline_Run(t *testing.T) {
	srv := newArticleServer(t, 60)
	defer srv.Close()

	statePath := filepath.Join(t.TempDir(), "seen.json")
	store, err := seen.Load(statePath)
	require.NoError(t, err)

	fetcher := &stubFetcher{items: []*feed.Item{
		freshItem(srv.URL+"/a", "First story", time.Hour),
		freshItem(srv.URL+"/b", "Second story", 2*time.Hour),
		freshItem(srv.URL+"/c", "Third story", 3*time.Hour),
	}}

	postsDir := t.TempDir()
	env := newTestEnv(t, fetcher, store, postsDir)

	drafted, err := env.pipeline.Run(context.Background())
	require.NoError(t, err)
	env.finish()

	// MaxPosts が予算になる
	assert.Equal(t, 2, drafted)

	entries, err := os.ReadDir(postsDir)
	require.NoError(t, err)
	assert.Len(t, entries, 2)

	// 新しい順に消化されるので、最初の2件が採用される
	assert.True(t, store.Has(srv.URL+"/a"))
	assert.True(t, store.Has(srv.URL+"/b"))
	assert.False(t, store.Has(srv.URL+"/c"))

	// seen は保存済み
	reloaded, err := seen.Load(statePath)
	require.NoError(t, err)
	assert.Equal(t, 2, reloaded.Len())

	kinds := env.kinds()
	assert.Equal(t, 2, kinds[event.KindDrafted])
	assert.Equal(t, 1, kinds[event.KindSystem])
}

func TestPipeline_Run_SkipsSeenAndStale(t *testing.T) {
	srv := newArticleServer(t, 60)
	defer srv.Close()

	store, err := seen.Load(filepath.Join(t.TempDir(), "seen.json"))
	require.NoError(t, err)
	store.Add(srv.URL + "/seen")

	fetcher := &stubFetcher{items: []*feed.Item{
		freshItem(srv.URL+"/seen", "Already seen", time.Hour),
		freshItem(srv.URL+"/stale", "Too old", 48*time.Hour),
		{Title: "No date", Link: srv.URL + "/nodate"},
	}}

	postsDir := t.TempDir()
	env := newTestEnv(t, fetcher, store, postsDir)

	drafted, err := env.pipeline.Run(context.Background())
	require.NoError(t, err)
	env.finish()

	assert.Equal(t, 0, drafted)
	entries, err := os.ReadDir(postsDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestPipeline_Run_SkipsShortArticles(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	store, err := seen.Load(filepath.Join(t.TempDir(), "seen.json"))
	require.NoError(t, err)

	// 記事ページが取れず、フィードの要約も短い → スキップ
	fetcher := &stubFetcher{items: []*feed.Item{
		freshItem(srv.URL+"/short", "Thin item", time.Hour),
	}}

	env := newTestEnv(t, fetcher, store, t.TempDir())

	drafted, err := env.pipeline.Run(context.Background())
	require.NoError(t, err)
	env.finish()

	assert.Equal(t, 0, drafted)
	assert.False(t, store.Has(srv.URL+"/short"), "skipped items stay unseen for the next run")

	kinds := env.kinds()
	assert.Equal(t, 1, kinds[event.KindSkipped])
	assert.Zero(t, kinds[event.KindDrafted])
}

func TestPipeline_Run_FallsBackToFeedSummary(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	store, err := seen.Load(filepath.Join(t.TempDir(), "seen.json"))
	require.NoError(t, err)

	item := freshItem(srv.URL+"/a", "Summary only", time.Hour)
	item.Summary = strings.Repeat("every word counts here today ", 10) + "End."

	postsDir := t.TempDir()
	env := newTestEnv(t, &stubFetcher{items: []*feed.Item{item}}, store, postsDir)

	drafted, err := env.pipeline.Run(context.Background())
	require.NoError(t, err)
	env.finish()

	assert.Equal(t, 1, drafted)
	entries, err := os.ReadDir(postsDir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Contains(t, entries[0].Name(), "summary-only.md")
}
