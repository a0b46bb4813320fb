package summarize

import (
	"context"
)

// Summarizer は、記事本文から投稿用の要約を生成するインターフェースです。
type Summarizer interface {
	// Summarize generates a post-ready summary for the given article.
	Summarize(ctx context.Context, in Input) (string, error)
}

// Input は、要約の入力となる記事です。
type Input struct {
	Title string
	Body  string
}
