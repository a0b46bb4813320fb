package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	buspkg "github.com/sat8bit/kawaraban/bus"
	"github.com/sat8bit/kawaraban/config"
	"github.com/sat8bit/kawaraban/draft"
	"github.com/sat8bit/kawaraban/feed"
	"github.com/sat8bit/kawaraban/gate"
	"github.com/sat8bit/kawaraban/page"
	"github.com/sat8bit/kawaraban/pipeline"
	"github.com/sat8bit/kawaraban/renderer"
	"github.com/sat8bit/kawaraban/seen"
	"github.com/sat8bit/kawaraban/summarize"
)

func main() {
	// --- コマンドライン引数のパース ---
	var (
		configPath = flag.String("config", "config.yaml", "Path to the configuration file")
	)
	flag.Parse()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Ctrl+C シグナルで cancel()
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		cancel()
	}()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	// --- フィードの取得方法を決める ---
	var fetcher feed.Fetcher
	switch cfg.FeedKind {
	case "json":
		fetcher = feed.NewJSONFetcher(cfg.FeedURL, cfg.FetchLimit)
	default:
		fetcher = feed.NewRSSFetcher(cfg.FeedURL, cfg.FetchLimit)
	}

	// --- 要約器を決める ---
	// Vertex AI の認証情報があればGemini、なければローカルのフォールバック。
	var summarizer summarize.Summarizer
	projectId := os.Getenv("PROJECT_ID")
	location := os.Getenv("LOCATION")
	if projectId != "" && location != "" {
		summarizer = summarize.NewGemini(ctx, projectId, location, cfg.Model)
		slog.Info("Using Gemini summarizer", "model", cfg.Model)
	} else {
		summarizer = summarize.NewLead()
		slog.Info("PROJECT_ID / LOCATION not set, using lead summarizer")
	}

	seenStore, err := seen.Load(cfg.StateFile)
	if err != nil {
		log.Fatalf("failed to load seen state: %v", err)
	}

	bus := buspkg.NewMemoryBus()
	var wg sync.WaitGroup

	// --- レンダラーを初期化 ---
	var renderers []renderer.Renderer
	if cfg.Verbose {
		renderers = append(renderers, renderer.NewConsoleRenderer())
	}
	renderers = append(renderers, renderer.NewIndexRenderer(
		cfg.OutputDir,
		cfg.IndexFile,
		cfg.FeedPath,
		page.Page{Title: cfg.SiteTitle, Tagline: cfg.Tagline},
	))
	for _, r := range renderers {
		if err := r.Render(ctx, bus, &wg); err != nil {
			log.Fatalf("failed to initialize renderer: %v", err)
		}
	}

	// --- パイプラインを実行 ---
	p := pipeline.New(pipeline.Config{
		Fetcher:    fetcher,
		Summarizer: summarizer,
		Writer:     draft.NewWriter(cfg.OutputDir),
		Seen:       seenStore,
		Bus:        bus,
		Gate:       gate.NewChannelGate(cfg.MaxConcurrent),
		Window:     time.Duration(cfg.Hours) * time.Hour,
		MaxPosts:   cfg.MaxPosts,
		MinWords:   cfg.MinWords,
		Author:     cfg.Author,
	})

	drafted, runErr := p.Run(ctx)

	// レンダラーが残りのイベントを拾い切るのを待ってから最終処理へ
	bus.Close()
	wg.Wait()

	if runErr != nil {
		log.Fatalf("run failed: %v", runErr)
	}

	for _, r := range renderers {
		if err := r.Finalize(); err != nil {
			log.Fatalf("failed to finalize renderer: %v", err)
		}
	}

	slog.Info("Done", "drafted", drafted)
}
