package draft

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writePostFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
}

func TestScanDir(t *testing.T) {
	dir := t.TempDir()

	writePostFile(t, dir, "2024-01-05-newer.md", `---
layout: post
title: "Newer post"
date: 2024-01-05
author: "desk"
original_link: "https://news.example/newer"
---

Body.
`)
	writePostFile(t, dir, "2023-12-31-older.md", `---
layout: post
title: "Older post"
date: 2023-12-31
---

Body.
`)
	// front matter のないファイルとポスト以外のファイルは無視される
	writePostFile(t, dir, "2024-01-01-broken.md", "no front matter here\n")
	writePostFile(t, dir, "README.md", "# readme\n")

	posts, err := ScanDir(dir)
	require.NoError(t, err)
	require.Len(t, posts, 2)

	assert.Equal(t, "Newer post", posts[0].Title)
	assert.Equal(t, "/2024/01/05/newer.html", posts[0].URL)
	assert.Equal(t, time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC), posts[0].Date)
	assert.Equal(t, "https://news.example/newer", posts[0].SourceURL)

	assert.Equal(t, "Older post", posts[1].Title)
	assert.Equal(t, "/2023/12/31/older.html", posts[1].URL)
}

func TestScanDir_DateFallsBackToFileName(t *testing.T) {
	dir := t.TempDir()

	writePostFile(t, dir, "2024-02-10-no-date.md", `---
title: "No date in front matter"
---

Body.
`)

	posts, err := ScanDir(dir)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC), posts[0].Date)
	assert.Equal(t, "/2024/02/10/no-date.html", posts[0].URL)
}

func TestScanDir_SkipsUntitled(t *testing.T) {
	dir := t.TempDir()

	writePostFile(t, dir, "2024-02-10-untitled.md", `---
layout: post
date: 2024-02-10
---

Body.
`)

	posts, err := ScanDir(dir)
	require.NoError(t, err)
	assert.Empty(t, posts)
}

func TestScanDir_MissingDir(t *testing.T) {
	posts, err := ScanDir(filepath.Join(t.TempDir(), "does-not-exist"))
	require.NoError(t, err)
	assert.Empty(t, posts)
}
