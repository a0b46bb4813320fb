package page

import (
	"fmt"
	"html/template"
	"net/url"
	"strings"

	"github.com/sat8bit/kawaraban/post"
)

// DateFormat は、一覧に表示する日付の書式です（例: "Jan 05, 2024"）。
// 月名は英語の省略形で固定し、ロケーションには依存しません。
const DateFormat = "Jan 02, 2006"

const indexTemplate = `<header>
  <h1>{{ .Title }}</h1>{{ if .Tagline }}
  <p>{{ .Tagline }}</p>{{ end }}
</header>
<ul class="post-list">
{{- range .Posts }}
  <li><a href="{{ .URL }}">{{ .Title }}</a> ({{ .Date }})</li>
{{- end }}
</ul>
<p><a href="{{ .FeedPath }}">RSS feed</a></p>
`

// テンプレートは固定文字列なので、パースは初期化時に1回だけ行います。
var indexTmpl = template.Must(template.New("index").Parse(indexTemplate))

// Page は、記事一覧ページの見出しまわりの設定です。
type Page struct {
	// Title はページの見出しです。空の場合は "Posts" になります。
	Title string

	// Tagline は見出しの下に表示する一文です。省略可能です。
	Tagline string
}

// Render は、記事一覧とフィードへのリンクからなるHTML断片を生成します。
// 外側のレイアウトへの埋め込みは、サイト生成プロセス側の責務です。
//
// 入力が同じであれば、出力はバイト単位で同一です（純粋関数）。
// 記事は入力の順序のまま、1件につき1つのリスト項目として出力されます。
// タイトル・URL・日付の欠けた記事は、壊れたマークアップを出す代わりに
// エラーとして呼び出し側に返します。
func Render(posts []*post.Post, feedPath string) (string, error) {
	return Page{}.Render(posts, feedPath)
}

// Render は、この Page の見出し設定で記事一覧のHTML断片を生成します。
func (p Page) Render(posts []*post.Post, feedPath string) (string, error) {
	if err := validate(posts, feedPath); err != nil {
		return "", err
	}

	title := p.Title
	if title == "" {
		title = "Posts"
	}

	type item struct {
		URL   string
		Title string
		Date  string
	}
	items := make([]item, 0, len(posts))
	for _, pst := range posts {
		items = append(items, item{
			URL:   pst.URL,
			Title: pst.Title,
			Date:  pst.Date.Format(DateFormat),
		})
	}

	data := struct {
		Title    string
		Tagline  string
		Posts    []item
		FeedPath string
	}{
		Title:    title,
		Tagline:  p.Tagline,
		Posts:    items,
		FeedPath: feedPath,
	}

	var b strings.Builder
	if err := indexTmpl.Execute(&b, data); err != nil {
		return "", fmt.Errorf("failed to execute index template: %w", err)
	}
	return b.String(), nil
}

// validate は、レンダリング前に必須フィールドを検査します。
// ビルド時に気づけるよう、欠けを黙って握りつぶさずエラーにします。
func validate(posts []*post.Post, feedPath string) error {
	if feedPath == "" {
		return fmt.Errorf("page: feed path is empty")
	}
	if _, err := url.Parse(feedPath); err != nil {
		return fmt.Errorf("page: invalid feed path %q: %w", feedPath, err)
	}

	for i, pst := range posts {
		switch {
		case pst == nil:
			return fmt.Errorf("page: post %d is nil", i)
		case pst.Title == "":
			return fmt.Errorf("page: post %d (%s) has no title", i, pst.URL)
		case pst.URL == "":
			return fmt.Errorf("page: post %d (%s) has no url", i, pst.Title)
		case pst.Date.IsZero():
			return fmt.Errorf("page: post %d (%s) has no date", i, pst.Title)
		}
	}
	return nil
}
