package feed

import (
	"context"
	"time"
)

// Fetcher は、外部のフィードから []*Item を取得するためのインターフェースです。
type Fetcher interface {
	Fetch(ctx context.Context) ([]*Item, error)
}

// Item は、フィードから取得した1件の記事候補を表します。
// この構造体は、フィードの形式（RSS、JSONフィードなど）に依存しない、汎用的な形式です。
type Item struct {
	// Title は、記事の見出しです。
	Title string

	// Link は、記事本体へのURLです。
	Link string

	// Summary は、フィードに含まれていた短い要約（プレーンテキスト）です。
	Summary string

	// Published は、記事の公開日時です。不明な場合はゼロ値になります。
	Published time.Time

	// GUID は、フィード内での記事の識別子です。
	GUID string
}
