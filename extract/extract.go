package extract

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// 記事ページの読み込み上限。暴走したレスポンスでメモリを食い潰さないための制限です。
const maxBodyBytes = 2 << 20

// 一部のサイトはデフォルトのGoクライアントを弾くため、ブラウザ風のUAを名乗ります。
const userAgent = "Mozilla/5.0 (compatible; kawaraban/1.0)"

// Text は、HTML断片から本文らしいプレーンテキストを取り出します。
// script / style / noscript を除去し、空白を正規化します。
// 単語数が minWords に満たない場合は空文字列を返します。
func Text(html string, minWords int) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}

	doc.Find("script, style, noscript").Remove()

	text := strings.Join(strings.Fields(doc.Text()), " ")
	if len(strings.Fields(text)) < minWords {
		return ""
	}
	return text
}

// Article は、記事URLから本文テキストの抽出を試みます。
// 取得や抽出に失敗しても致命的ではないため、エラーは返さず空文字列を返します。
// 呼び出し側はフィードの要約へフォールバックすることを想定しています。
func Article(ctx context.Context, client *http.Client, url string, minWords int) string {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return ""
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := client.Do(req)
	if err != nil {
		slog.Debug("article fetch failed", "url", url, "error", err)
		return ""
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		slog.Debug("article fetch returned non-200", "url", url, "status", resp.StatusCode)
		return ""
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return ""
	}

	return Text(string(body), minWords)
}
