package config

import (
	"fmt"
	"net/url"
	"os"

	"gopkg.in/yaml.v3"
)

// Config は、1回の実行に必要な設定をまとめたものです。
// 元になるのはサイトリポジトリに置かれた config.yaml です。
type Config struct {
	// SiteTitle は、記事一覧ページの見出しに使うサイト名です。
	SiteTitle string `yaml:"site_title"`
	// Tagline は、見出しの下に表示する一文です。省略可能。
	Tagline string `yaml:"tagline"`
	// Author は、front matter に書き出す著者名です。
	Author string `yaml:"author"`

	// FeedURL は、取得元フィードのURLです。
	FeedURL string `yaml:"feed_url"`
	// FeedKind は、フィードの形式です。"rss"（Atom含む）か "json"。
	FeedKind string `yaml:"feed_kind"`
	// FetchLimit は、フィードから読む記事の上限です。0で無制限。
	FetchLimit int `yaml:"fetch_limit"`

	// Hours は、この時間より古い記事を無視する鮮度の窓です。
	Hours int `yaml:"hours"`
	// MaxPosts は、1回の実行で書き出す記事数の上限です。
	MaxPosts int `yaml:"max_posts"`
	// MinWords は、記事として採用する本文の最低単語数です。
	MinWords int `yaml:"min_words"`
	// MaxConcurrent は、記事ページの取得・要約の同時実行数です。
	MaxConcurrent int `yaml:"max_concurrent"`

	// StateFile は、処理済み記事を記録するファイルのパスです。
	StateFile string `yaml:"state_file"`
	// OutputDir は、記事ファイルを書き出すディレクトリです。
	OutputDir string `yaml:"output_dir"`
	// IndexFile は、記事一覧のHTML断片を書き出すパスです。
	IndexFile string `yaml:"index_file"`
	// FeedPath は、一覧ページからリンクするRSSフィードのパスです。
	// フィード自体はサイト生成側（jekyll-feed）が作ります。
	FeedPath string `yaml:"feed_path"`

	// Model は、要約に使うGeminiのモデル名です。
	Model string `yaml:"model"`
	// Verbose は、進行状況をコンソールに出すかどうかです。
	Verbose bool `yaml:"verbose"`
}

// New は、デフォルト値入りの Config を生成します。
func New() *Config {
	return &Config{
		FeedKind:      "rss",
		Hours:         6,
		MaxPosts:      3,
		MinWords:      40,
		MaxConcurrent: 4,
		StateFile:     "state/seen.json",
		OutputDir:     "_posts",
		IndexFile:     "index.html",
		FeedPath:      "/feed.xml",
		Model:         "gemini-2.5-flash-lite",
		Verbose:       true,
	}
}

// Load は、指定されたYAMLファイルを読み込みます。
// 書かれていない項目にはデフォルト値が残ります。
func Load(path string) (*Config, error) {
	cfg := New()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return cfg, nil
}

// Validate は設定の妥当性を検査し、最初に見つかった問題を返します。
func (c *Config) Validate() error {
	if c.FeedURL == "" {
		return fmt.Errorf("feed_url is not set")
	}
	if _, err := url.ParseRequestURI(c.FeedURL); err != nil {
		return fmt.Errorf("invalid feed_url %s: %w", c.FeedURL, err)
	}
	if c.FeedKind != "rss" && c.FeedKind != "json" {
		return fmt.Errorf("feed_kind must be \"rss\" or \"json\", got %q", c.FeedKind)
	}
	if c.Hours <= 0 {
		return fmt.Errorf("hours must be a positive number")
	}
	if c.MaxPosts <= 0 {
		return fmt.Errorf("max_posts must be a positive number")
	}
	if c.MinWords <= 0 {
		return fmt.Errorf("min_words must be a positive number")
	}
	if c.MaxConcurrent <= 0 {
		return fmt.Errorf("max_concurrent must be a positive number")
	}
	if c.StateFile == "" {
		return fmt.Errorf("state_file is not set")
	}
	if c.OutputDir == "" {
		return fmt.Errorf("output_dir is not set")
	}
	if c.IndexFile == "" {
		return fmt.Errorf("index_file is not set")
	}
	if c.FeedPath == "" {
		return fmt.Errorf("feed_path is not set")
	}
	return nil
}
