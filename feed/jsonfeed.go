package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/araddon/dateparse"
)

// JSONFetcher は feed.Fetcher インターフェースの、Inoreader系JSONフィード実装です。
// JSON Feed風の `{"items": [...]}` と、素の配列の両方を受け付けます。
type JSONFetcher struct {
	url    string
	limit  int
	client *http.Client
}

// NewJSONFetcher は新しい JSONFetcher を生成します。
// limit は取得する記事の上限数を指定します。0以下の場合は無制限。
func NewJSONFetcher(url string, limit int) Fetcher {
	return &JSONFetcher{
		url:    url,
		limit:  limit,
		client: &http.Client{Timeout: 30 * time.Second},
	}
}

// jsonLink は canonical / alternate 配列の1要素です。
type jsonLink struct {
	Href string `json:"href"`
}

// jsonItem は、フィード側の項目をゆるく受けるための構造体です。
// サービスによってフィールド名や型が揺れるため、必要なものだけ拾います。
type jsonItem struct {
	ID            string          `json:"id"`
	OriginID      string          `json:"originId"`
	Title         string          `json:"title"`
	URL           string          `json:"url"`
	Link          string          `json:"link"`
	ContentHTML   string          `json:"content_html"`
	Canonical     []jsonLink      `json:"canonical"`
	Alternate     []jsonLink      `json:"alternate"`
	Summary       textBlock       `json:"summary"`
	Content       textBlock       `json:"content"`
	DatePublished json.RawMessage `json:"date_published"`
	Published     json.RawMessage `json:"published"`
	Updated       json.RawMessage `json:"updated"`
	Crawled       json.RawMessage `json:"crawled"`
}

// textBlock は、文字列と `{"content": "..."}` 形式のオブジェクトの
// どちらで来ても受けられるテキストフィールドです。
type textBlock struct {
	Text string
}

func (t *textBlock) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		t.Text = s
		return nil
	}
	var obj struct {
		Content string `json:"content"`
	}
	if err := json.Unmarshal(data, &obj); err == nil {
		t.Text = obj.Content
		return nil
	}
	// 想定外の形式は空として扱う
	t.Text = ""
	return nil
}

// Fetch は指定されたURLからJSONフィードを取得し、*Itemのスライスに変換します。
// 返されるスライスは公開日の降順です。リンクか公開日時が判別できない項目は捨てます。
func (f *JSONFetcher) Fetch(ctx context.Context) ([]*Item, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request for %s: %w", f.url, err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch JSON feed from %s: %w", f.url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch JSON feed from %s: unexpected status %d", f.url, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read JSON feed body: %w", err)
	}

	raw, err := decodeItems(body)
	if err != nil {
		return nil, fmt.Errorf("failed to decode JSON feed from %s: %w", f.url, err)
	}

	var items []*Item
	for _, it := range raw {
		link := bestLink(it)
		if link == "" {
			continue
		}

		item := &Item{
			Title:     strings.TrimSpace(it.Title),
			Link:      link,
			Summary:   truncateString(stripHTML(itemText(it)), maxSummaryRunes),
			Published: itemTime(it),
			GUID:      it.ID,
		}
		if item.GUID == "" {
			item.GUID = link
		}
		items = append(items, item)
	}

	sort.Slice(items, func(i, j int) bool {
		return items[i].Published.After(items[j].Published)
	})

	if f.limit > 0 && len(items) > f.limit {
		items = items[:f.limit]
	}

	return items, nil
}

// decodeItems は `{"items": [...]}` と素の配列の両方を受け付けます。
func decodeItems(body []byte) ([]*jsonItem, error) {
	var envelope struct {
		Items []*jsonItem `json:"items"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Items != nil {
		return envelope.Items, nil
	}

	var bare []*jsonItem
	if err := json.Unmarshal(body, &bare); err != nil {
		return nil, err
	}
	return bare, nil
}

// bestLink は、項目から記事本体へのURLを優先順位付きで選びます。
//  1. content_html 内の最初の <a href>
//  2. canonical / alternate 配列の先頭
//  3. url フィールド（http(s)のみ）
//  4. originId / id フィールド（http(s)のみ）
func bestLink(it *jsonItem) string {
	if href := hrefFromContentHTML(it.ContentHTML); href != "" {
		return href
	}

	for _, links := range [][]jsonLink{it.Canonical, it.Alternate} {
		if len(links) > 0 && links[0].Href != "" {
			return links[0].Href
		}
	}

	for _, candidate := range []string{it.URL, it.Link, it.OriginID, it.ID} {
		if strings.HasPrefix(candidate, "http") {
			return candidate
		}
	}

	return ""
}

// hrefFromContentHTML は、content_html 断片の最初のアンカーの href を返します。
func hrefFromContentHTML(html string) string {
	if strings.TrimSpace(html) == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}
	href, _ := doc.Find("a[href]").First().Attr("href")
	return href
}

// itemText は、フォールバック用の本文テキストを選びます。
func itemText(it *jsonItem) string {
	for _, s := range []string{it.Content.Text, it.Summary.Text, it.ContentHTML} {
		if strings.TrimSpace(s) != "" {
			return s
		}
	}
	return ""
}

// itemTime は、項目の公開日時を判別します。フィールド名も型（文字列・エポック秒・
// エポックミリ秒）も揺れるため、見つかったものから順に解釈を試みます。
func itemTime(it *jsonItem) time.Time {
	for _, raw := range []json.RawMessage{it.DatePublished, it.Published, it.Updated, it.Crawled} {
		if len(raw) == 0 {
			continue
		}
		if t, ok := parseWhen(raw); ok {
			return t
		}
	}
	return time.Time{}
}

func parseWhen(raw json.RawMessage) (time.Time, bool) {
	var epoch int64
	if err := json.Unmarshal(raw, &epoch); err == nil && epoch > 0 {
		// 13桁ならミリ秒とみなす
		if epoch > 1e12 {
			return time.UnixMilli(epoch).UTC(), true
		}
		return time.Unix(epoch, 0).UTC(), true
	}

	var s string
	if err := json.Unmarshal(raw, &s); err != nil || strings.TrimSpace(s) == "" {
		return time.Time{}, false
	}
	t, err := dateparse.ParseAny(s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

var _ Fetcher = (*JSONFetcher)(nil)
