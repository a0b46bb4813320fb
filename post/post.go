package post

import "time"

// Post は、サイトに掲載される1件の記事を表します。
// タイトル・URL・公開日の最終的な解決は外部のサイト生成プロセス（Jekyll）の
// 責務であり、このツールは生成時に読み取るだけです。
type Post struct {
	// Title は記事のタイトルです。
	Title string

	// URL は記事へのリンクです。相対パス・絶対URLのどちらも許容します。
	URL string

	// Date は記事の公開日です。
	Date time.Time

	// Summary は記事本文として書き出す要約です。
	Summary string

	// Author は front matter に書き出す著者名です。
	Author string

	// SourceURL は要約元の記事のURLです。
	SourceURL string
}
