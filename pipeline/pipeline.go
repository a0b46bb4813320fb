package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	buspkg "github.com/sat8bit/kawaraban/bus"
	"github.com/sat8bit/kawaraban/draft"
	"github.com/sat8bit/kawaraban/event"
	"github.com/sat8bit/kawaraban/extract"
	"github.com/sat8bit/kawaraban/feed"
	"github.com/sat8bit/kawaraban/gate"
	"github.com/sat8bit/kawaraban/post"
	"github.com/sat8bit/kawaraban/seen"
	"github.com/sat8bit/kawaraban/summarize"
)

// 1記事あたりの取得〜要約に使える時間。
const perItemTimeout = 30 * time.Second

// Config は、Pipeline の依存と設定をまとめたものです。
type Config struct {
	Fetcher    feed.Fetcher
	Summarizer summarize.Summarizer
	Writer     *draft.Writer
	Seen       *seen.Store
	Bus        buspkg.Bus
	Gate       gate.Gate

	// Client は記事ページの取得に使うHTTPクライアントです。nilならデフォルト。
	Client *http.Client

	// Window より古い記事は無視します。
	Window time.Duration
	// MaxPosts は1回の実行で書き出す記事数の上限です。0以下で無制限。
	MaxPosts int
	// MinWords は記事として採用する本文の最低単語数です。
	MinWords int
	// Author は front matter に書き出す著者名です。
	Author string
}

// Pipeline は、フィードの取得から記事ファイルの書き出しまでを実行します。
type Pipeline struct {
	cfg Config
}

// New は新しい Pipeline を生成します。
func New(cfg Config) *Pipeline {
	if cfg.Client == nil {
		cfg.Client = &http.Client{Timeout: 20 * time.Second}
	}
	if cfg.Gate == nil {
		cfg.Gate = gate.NewChannelGate(1)
	}
	return &Pipeline{cfg: cfg}
}

// prepared は、1記事ぶんの準備（取得・要約）の結果です。
type prepared struct {
	post *post.Post
	skip string
	err  error
}

// Run は、パイプラインを1回実行し、書き出した記事数を返します。
// 個々の記事の失敗はイベントとして流すだけで、実行全体は止めません。
func (p *Pipeline) Run(ctx context.Context) (int, error) {
	items, err := p.cfg.Fetcher.Fetch(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch feed: %w", err)
	}
	slog.Info("Feed fetched", "items", len(items))

	candidates := p.selectCandidates(items)
	slog.Info("Candidates selected", "count", len(candidates))

	budget := p.cfg.MaxPosts
	if budget <= 0 {
		budget = len(candidates)
	}

	// 短文などで落ちる記事があるため、予算の倍ずつまとめて準備しながら
	// 候補を消化していく。
	batchSize := budget * 2

	drafted := 0
	for start := 0; start < len(candidates) && drafted < budget && ctx.Err() == nil; start += batchSize {
		end := start + batchSize
		if end > len(candidates) {
			end = len(candidates)
		}

		results := p.prepareBatch(ctx, candidates[start:end])

		for i, res := range results {
			if drafted >= budget {
				break
			}
			item := candidates[start+i]

			switch {
			case res.err != nil:
				slog.Error("Item failed", "url", item.Link, "error", res.err)
				p.broadcast(&event.Event{Kind: event.KindError, Text: res.err.Error(), At: time.Now()})
				continue
			case res.skip != "":
				p.broadcast(&event.Event{Kind: event.KindSkipped, Text: res.skip, At: time.Now()})
				continue
			}

			if _, err := p.cfg.Writer.Write(res.post); err != nil {
				slog.Error("Draft write failed", "url", item.Link, "error", err)
				p.broadcast(&event.Event{Kind: event.KindError, Text: err.Error(), At: time.Now()})
				continue
			}

			p.cfg.Seen.Add(item.Link)
			drafted++
			p.broadcast(&event.Event{Kind: event.KindDrafted, Text: res.post.Title, Post: res.post, At: time.Now()})
		}
	}

	if err := p.cfg.Seen.Save(); err != nil {
		return drafted, fmt.Errorf("failed to save seen state: %w", err)
	}

	if ctx.Err() != nil {
		slog.Warn("Run interrupted", "drafted", drafted)
	}
	p.broadcast(&event.Event{
		Kind: event.KindSystem,
		Text: fmt.Sprintf("run finished: %d post(s) drafted", drafted),
		At:   time.Now(),
	})

	return drafted, nil
}

// selectCandidates は、鮮度の窓の外の記事と処理済みの記事を落とし、
// 公開日の降順に並べます。
func (p *Pipeline) selectCandidates(items []*feed.Item) []*feed.Item {
	cutoff := time.Now().Add(-p.cfg.Window)

	var candidates []*feed.Item
	for _, it := range items {
		if it.Published.IsZero() || it.Published.Before(cutoff) {
			continue
		}
		if p.cfg.Seen.Has(it.Link) {
			continue
		}
		candidates = append(candidates, it)
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Published.After(candidates[j].Published)
	})
	return candidates
}

// prepareBatch は、候補のスライスをゲートで絞った並行度で準備します。
// 結果は入力と同じ順序で返します。
func (p *Pipeline) prepareBatch(ctx context.Context, items []*feed.Item) []*prepared {
	results := make([]*prepared, len(items))

	var wg sync.WaitGroup
	for i, it := range items {
		wg.Add(1)
		go func(idx int, it *feed.Item) {
			defer wg.Done()

			if err := p.cfg.Gate.Acquire(ctx); err != nil {
				results[idx] = &prepared{err: err}
				return
			}
			defer p.cfg.Gate.Release()

			results[idx] = p.prepare(ctx, it)
		}(i, it)
	}
	wg.Wait()

	return results
}

// prepare は、1記事ぶんの本文取得と要約を行います。
func (p *Pipeline) prepare(ctx context.Context, it *feed.Item) *prepared {
	opCtx, cancel := context.WithTimeout(ctx, perItemTimeout)
	defer cancel()

	title := strings.TrimSpace(it.Title)
	if title == "" {
		title = "(no title)"
	}

	// 記事ページから本文を取り、だめならフィードの要約にフォールバック
	text := extract.Article(opCtx, p.cfg.Client, it.Link, p.cfg.MinWords)
	if text == "" {
		text = it.Summary
	}
	if len(strings.Fields(text)) < p.cfg.MinWords {
		return &prepared{skip: fmt.Sprintf("%s: article text too short", title)}
	}

	summary, err := p.cfg.Summarizer.Summarize(opCtx, summarize.Input{Title: title, Body: text})
	if err != nil {
		return &prepared{err: fmt.Errorf("failed to summarize %s: %w", it.Link, err)}
	}

	slug := draft.Slug(title)
	return &prepared{post: &post.Post{
		Title:     title,
		URL:       draft.Permalink(it.Published, slug),
		Date:      it.Published,
		Summary:   summary,
		Author:    p.cfg.Author,
		SourceURL: it.Link,
	}}
}

// broadcast は、バスが設定されていればイベントを流します。
func (p *Pipeline) broadcast(ev *event.Event) {
	if p.cfg.Bus == nil {
		return
	}
	if err := p.cfg.Bus.Broadcast(ev); err != nil {
		slog.Warn("Event broadcast failed", "kind", string(ev.Kind), "error", err)
	}
}
