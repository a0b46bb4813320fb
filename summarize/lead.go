package summarize

import (
	"context"
	"strings"
)

// Lead は、ネットワークを使わないフォールバックの Summarizer 実装です。
// 本文の先頭2文をそのまま要約として返します。LLMの認証情報がない環境でも
// パイプラインを動かせるようにするためのものです。
type Lead struct {
	sentences int
}

// NewLead は新しい Lead を生成します。
func NewLead() *Lead {
	return &Lead{sentences: 2}
}

func (l *Lead) Summarize(ctx context.Context, in Input) (string, error) {
	text := strings.Join(strings.Fields(in.Body), " ")
	parts := splitSentences(text)
	if len(parts) > l.sentences {
		parts = parts[:l.sentences]
	}
	return strings.TrimSpace(strings.Join(parts, " ")), nil
}

// splitSentences は、文末記号（. ! ?）に続く空白で文を区切ります。
// 厳密な文分割ではありませんが、先頭数文を拾う用途には十分です。
func splitSentences(s string) []string {
	var out []string
	start := 0
	runes := []rune(s)
	for i := 0; i < len(runes)-1; i++ {
		switch runes[i] {
		case '.', '!', '?':
			if runes[i+1] == ' ' {
				out = append(out, strings.TrimSpace(string(runes[start:i+1])))
				start = i + 2
			}
		}
	}
	if start < len(runes) {
		if tail := strings.TrimSpace(string(runes[start:])); tail != "" {
			out = append(out, tail)
		}
	}
	return out
}

var _ Summarizer = (*Lead)(nil)
