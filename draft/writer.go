package draft

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"text/template"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/sat8bit/kawaraban/post"
)

const frontMatterTemplate = `---
layout: post
title: {{ .Title }}
date: {{ .Date }}
author: {{ .Author }}
original_link: {{ .Link }}
---

{{ .Body }}
`

// Writer は、記事をJekyll形式のmarkdownファイルとして書き出します。
// ファイル名は `YYYY-MM-DD-slug.md` で、サイト側の date パーマリンクが
// そのままURLになります。
type Writer struct {
	outputDir string
}

// NewWriter は新しい Writer を生成します。
func NewWriter(outputDir string) *Writer {
	return &Writer{outputDir: outputDir}
}

// Write は、記事を1ファイル書き出し、書き出したファイルのパスを返します。
// 同名ファイルがある場合は上書きします（重複はseenストアが防いでいる前提）。
func (w *Writer) Write(p *post.Post) (string, error) {
	if p.Title == "" {
		return "", fmt.Errorf("failed to write draft: post has no title")
	}
	if p.Date.IsZero() {
		return "", fmt.Errorf("failed to write draft: post has no date")
	}

	slug := Slug(p.Title)
	fileName := fmt.Sprintf("%s-%s.md", p.Date.Format("2006-01-02"), slug)
	filePath := filepath.Join(w.outputDir, fileName)

	var body strings.Builder
	body.WriteString(p.Summary)
	if p.SourceURL != "" {
		body.WriteString(fmt.Sprintf("\n\n[Original link](%s)", p.SourceURL))
	}

	tmpl, err := template.New("frontmatter").Parse(frontMatterTemplate)
	if err != nil {
		return "", fmt.Errorf("failed to parse front matter template: %w", err)
	}

	data := struct {
		Title  string
		Date   string
		Author string
		Link   string
		Body   string
	}{
		Title:  fmt.Sprintf("%q", p.Title),
		Date:   p.Date.Format("2006-01-02"),
		Author: fmt.Sprintf("%q", p.Author),
		Link:   fmt.Sprintf("%q", p.SourceURL),
		Body:   body.String(),
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute front matter template: %w", err)
	}

	if err := os.MkdirAll(w.outputDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	if err := os.WriteFile(filePath, buf.Bytes(), 0644); err != nil {
		return "", fmt.Errorf("failed to write draft file: %w", err)
	}

	slog.Info("Draft written", "path", filePath)
	return filePath, nil
}

// Permalink は、サイト側の date パーマリンク設定で解決されるURLを返します。
func Permalink(date time.Time, slug string) string {
	return date.Format("/2006/01/02/") + slug + ".html"
}

// アクセント記号つきの文字をNFKD分解し、結合文字を落とすことでASCIIに寄せます。
var asciiFold = transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)))

// Slug は、タイトルからURLに使えるスラッグを生成します。
// ASCIIに畳み込み、小文字化し、英数字以外の連続を "-" 1つに置き換えます。
// 80文字で切り詰め、何も残らなければ "post" を返します。
func Slug(title string) string {
	folded, _, err := transform.String(asciiFold, title)
	if err != nil {
		folded = title
	}

	var b strings.Builder
	pendingDash := false
	for _, r := range strings.ToLower(folded) {
		isAlnum := (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
		if !isAlnum {
			pendingDash = b.Len() > 0
			continue
		}
		if pendingDash {
			b.WriteByte('-')
			pendingDash = false
		}
		b.WriteRune(r)
	}

	slug := b.String()
	if len(slug) > 80 {
		slug = strings.TrimRight(slug[:80], "-")
	}
	if slug == "" {
		return "post"
	}
	return slug
}
