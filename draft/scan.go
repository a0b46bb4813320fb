package draft

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"gopkg.in/yaml.v3"

	"github.com/sat8bit/kawaraban/post"
)

// Jekyllのポストファイル名: YYYY-MM-DD-slug.md
var postFileRegex = regexp.MustCompile(`^(\d{4}-\d{2}-\d{2})-(.+)\.md$`)

// frontMatter は、ポストファイル先頭のYAMLブロックです。
type frontMatter struct {
	Layout       string `yaml:"layout"`
	Title        string `yaml:"title"`
	Date         string `yaml:"date"`
	Author       string `yaml:"author"`
	OriginalLink string `yaml:"original_link"`
}

// ScanDir は、ポストディレクトリを走査して記事一覧を組み立てます。
// front matter の壊れたファイルは警告を出してスキップします（致命的ではない）。
// 返されるスライスは公開日の降順です。ディレクトリが存在しない場合は空を返します。
func ScanDir(dir string) ([]*post.Post, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read posts directory %s: %w", dir, err)
	}

	type scanned struct {
		post     *post.Post
		fileName string
	}
	var posts []scanned

	for _, entry := range entries {
		name := entry.Name()
		m := postFileRegex.FindStringSubmatch(name)
		if entry.IsDir() || m == nil {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("failed to read post file %s: %w", name, err)
		}

		fmBlock, ok := splitFrontMatter(string(data))
		if !ok {
			slog.Warn("Post without front matter skipped", "file", name)
			continue
		}

		var fm frontMatter
		if err := yaml.Unmarshal([]byte(fmBlock), &fm); err != nil {
			slog.Warn("Post with broken front matter skipped", "file", name, "error", err)
			continue
		}
		if fm.Title == "" {
			slog.Warn("Post without title skipped", "file", name)
			continue
		}

		date, ok := resolveDate(fm.Date, m[1])
		if !ok {
			slog.Warn("Post with unparsable date skipped", "file", name)
			continue
		}

		posts = append(posts, scanned{
			post: &post.Post{
				Title:     fm.Title,
				URL:       Permalink(date, m[2]),
				Date:      date,
				Author:    fm.Author,
				SourceURL: fm.OriginalLink,
			},
			fileName: name,
		})
	}

	// 公開日の降順。同日ならファイル名の降順で安定させる。
	sort.Slice(posts, func(i, j int) bool {
		if !posts[i].post.Date.Equal(posts[j].post.Date) {
			return posts[i].post.Date.After(posts[j].post.Date)
		}
		return posts[i].fileName > posts[j].fileName
	})

	out := make([]*post.Post, len(posts))
	for i, s := range posts {
		out[i] = s.post
	}
	return out, nil
}

// splitFrontMatter は、ファイル先頭の "---" で囲まれたブロックを取り出します。
func splitFrontMatter(content string) (string, bool) {
	content = strings.ReplaceAll(content, "\r\n", "\n")
	if !strings.HasPrefix(content, "---\n") {
		return "", false
	}
	rest := content[len("---\n"):]
	end := strings.Index(rest, "\n---")
	if end < 0 {
		return "", false
	}
	return rest[:end], true
}

// resolveDate は、front matter の日付を優先し、だめならファイル名の日付を使います。
func resolveDate(fmDate, fileDate string) (time.Time, bool) {
	for _, candidate := range []string{fmDate, fileDate} {
		if candidate == "" {
			continue
		}
		if t, err := time.Parse("2006-01-02", candidate); err == nil {
			return t, true
		}
		if t, err := dateparse.ParseAny(candidate); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
