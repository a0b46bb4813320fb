package feed

import (
	"context"
	"fmt"
	"regexp"
	"sort"

	"github.com/mmcdole/gofeed"
)

// RSSFetcher は feed.Fetcher インターフェースのRSS/Atom実装です。
type RSSFetcher struct {
	url   string
	limit int
}

// NewRSSFetcher は新しい RSSFetcher を生成します。
// limit は取得する記事の上限数を指定します。0以下の場合は無制限。
func NewRSSFetcher(url string, limit int) Fetcher {
	return &RSSFetcher{
		url:   url,
		limit: limit,
	}
}

// Fetch は指定されたURLからフィードを取得し、*Itemのスライスに変換します。
// 返されるスライスは公開日の降順（新しいものが先頭）です。
func (f *RSSFetcher) Fetch(ctx context.Context) ([]*Item, error) {
	fp := gofeed.NewParser()
	feed, err := fp.ParseURLWithContext(f.url, ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to parse RSS feed from %s: %w", f.url, err)
	}

	// 公開日で降順にソートして最新のものを取得しやすくする
	sort.Slice(feed.Items, func(i, j int) bool {
		iTime := feed.Items[i].PublishedParsed
		jTime := feed.Items[j].PublishedParsed
		if iTime == nil || jTime == nil {
			return i < j
		}
		return iTime.After(*jTime)
	})

	var items []*Item
	for _, it := range feed.Items {
		if f.limit > 0 && len(items) >= f.limit {
			break
		}
		if it.Link == "" {
			// リンクのない記事は後段で扱いようがないので捨てる
			continue
		}

		// フィードの要約はHTMLが混ざっていることが多いので、
		// タグを除去してから指定文字数で切り捨てる。
		summary := truncateString(stripHTML(it.Description), maxSummaryRunes)

		published := it.PublishedParsed
		if published == nil {
			published = it.UpdatedParsed
		}

		item := &Item{
			Title:   it.Title,
			Link:    it.Link,
			Summary: summary,
			GUID:    it.GUID,
		}
		if published != nil {
			item.Published = *published
		}
		items = append(items, item)
	}

	return items, nil
}

// フィード由来の要約として保持する最大文字数（rune単位）。
const maxSummaryRunes = 2000

// stripHTML は文字列からHTMLタグを削除します。
var htmlRegex = regexp.MustCompile("<[^>]*>")

func stripHTML(s string) string {
	return htmlRegex.ReplaceAllString(s, "")
}

// truncateString は文字列をrune単位で指定された長さに切り詰めます。
func truncateString(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) > maxLen {
		return string(runes[:maxLen])
	}
	return s
}

var _ Fetcher = (*RSSFetcher)(nil)
