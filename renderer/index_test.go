package renderer

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	buspkg "github.com/sat8bit/kawaraban/bus"
	"github.com/sat8bit/kawaraban/event"
	"github.com/sat8bit/kawaraban/page"
	"github.com/sat8bit/kawaraban/post"
)

func writeIndexFixture(t *testing.T, dir string) {
	t.Helper()
	content := `---
layout: post
title: "Existing post"
date: 2024-01-05
---

Body.
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "2024-01-05-existing.md"), []byte(content), 0644))
}

func runIndexRenderer(t *testing.T, r *IndexRenderer, events []*event.Event) {
	t.Helper()
	b := buspkg.NewMemoryBus()
	var wg sync.WaitGroup
	require.NoError(t, r.Render(context.Background(), b, &wg))
	for _, ev := range events {
		require.NoError(t, b.Broadcast(ev))
	}
	b.Close()
	wg.Wait()
	require.NoError(t, r.Finalize())
}

func TestIndexRenderer_WritesIndexAfterDraft(t *testing.T) {
	postsDir := t.TempDir()
	writeIndexFixture(t, postsDir)
	indexPath := filepath.Join(t.TempDir(), "index.html")

	r := NewIndexRenderer(postsDir, indexPath, "/feed.xml", page.Page{Title: "The Policy Dispatch"})
	runIndexRenderer(t, r, []*event.Event{
		{Kind: event.KindDrafted, Text: "Existing post", Post: &post.Post{}, At: time.Now()},
	})

	data, err := os.ReadFile(indexPath)
	require.NoError(t, err)
	html := string(data)

	assert.Contains(t, html, "<h1>The Policy Dispatch</h1>")
	assert.Contains(t, html, `<a href="/2024/01/05/existing.html">Existing post</a> (Jan 05, 2024)`)
	assert.Contains(t, html, `<a href="/feed.xml">RSS feed</a>`)
}

func TestIndexRenderer_WritesIndexWhenMissingEvenWithoutDrafts(t *testing.T) {
	postsDir := t.TempDir()
	indexPath := filepath.Join(t.TempDir(), "index.html")

	r := NewIndexRenderer(postsDir, indexPath, "/feed.xml", page.Page{})
	runIndexRenderer(t, r, nil)

	data, err := os.ReadFile(indexPath)
	require.NoError(t, err)
	// 記事ゼロでもフィードへのリンクは出る
	assert.Contains(t, string(data), `<a href="/feed.xml">RSS feed</a>`)
	assert.NotContains(t, string(data), "<li>")
}

func TestIndexRenderer_LeavesExistingIndexUntouched(t *testing.T) {
	postsDir := t.TempDir()
	indexPath := filepath.Join(t.TempDir(), "index.html")
	require.NoError(t, os.WriteFile(indexPath, []byte("untouched"), 0644))

	r := NewIndexRenderer(postsDir, indexPath, "/feed.xml", page.Page{})
	runIndexRenderer(t, r, []*event.Event{
		{Kind: event.KindSkipped, Text: "nothing new", At: time.Now()},
	})

	data, err := os.ReadFile(indexPath)
	require.NoError(t, err)
	assert.Equal(t, "untouched", string(data))
}
