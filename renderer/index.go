package renderer

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/sat8bit/kawaraban/bus"
	"github.com/sat8bit/kawaraban/draft"
	"github.com/sat8bit/kawaraban/event"
	"github.com/sat8bit/kawaraban/page"
)

// IndexRenderer は、記事一覧ページのHTML断片を書き出すレンダラーです。
// 実行中は drafted イベントを数えるだけで、実際の書き出しは Finalize で
// 行います。その時点でポストディレクトリには新しい記事も含めたすべての
// ファイルが揃っているためです。
type IndexRenderer struct {
	postsDir  string
	indexPath string
	feedPath  string
	page      page.Page

	mu      sync.Mutex
	drafted int
}

// NewIndexRenderer は新しい IndexRenderer を生成します。
func NewIndexRenderer(postsDir, indexPath, feedPath string, pg page.Page) *IndexRenderer {
	return &IndexRenderer{
		postsDir:  postsDir,
		indexPath: indexPath,
		feedPath:  feedPath,
		page:      pg,
	}
}

func (r *IndexRenderer) Render(ctx context.Context, b bus.Bus, wg *sync.WaitGroup) error {
	ch := b.Subscribe()

	wg.Add(1)
	go func() {
		defer wg.Done()
		for ev := range ch {
			if ev.Kind == event.KindDrafted {
				r.mu.Lock()
				r.drafted++
				r.mu.Unlock()
			}
		}
	}()

	return nil
}

// Finalize は、ポストディレクトリを走査して記事一覧ページを書き出します。
// 新しい記事が1件もなく、かつ一覧ページが既に存在する場合は何もしません。
func (r *IndexRenderer) Finalize() error {
	r.mu.Lock()
	drafted := r.drafted
	r.mu.Unlock()

	if drafted == 0 {
		if _, err := os.Stat(r.indexPath); err == nil {
			slog.Info("No new posts, index page left untouched", "path", r.indexPath)
			return nil
		}
	}

	posts, err := draft.ScanDir(r.postsDir)
	if err != nil {
		return fmt.Errorf("failed to scan posts for index: %w", err)
	}

	html, err := r.page.Render(posts, r.feedPath)
	if err != nil {
		return fmt.Errorf("failed to render index page: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(r.indexPath), 0755); err != nil {
		return fmt.Errorf("failed to create index directory: %w", err)
	}
	if err := os.WriteFile(r.indexPath, []byte(html), 0644); err != nil {
		return fmt.Errorf("failed to write index page: %w", err)
	}

	slog.Info("Index page generated", "path", r.indexPath, "posts", len(posts))
	return nil
}

var _ Renderer = (*IndexRenderer)(nil)
