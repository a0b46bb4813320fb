package summarize

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

func NewGemini(ctx context.Context, projectId, location, model string) *Gemini {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		Project:  projectId,
		Location: location,
		Backend:  genai.BackendVertexAI,
	})
	if err != nil {
		panic(fmt.Errorf("summarize.NewGemini: %w", err))
	}

	return &Gemini{
		client: client,
		model:  model,
	}
}

type Gemini struct {
	client *genai.Client
	model  string
}

func (g *Gemini) Summarize(ctx context.Context, in Input) (string, error) {
	// 長文は要約の質にほぼ寄与しないので、入力側でrune単位に切り詰める
	body := trimRunes(in.Body, maxInputRunes)

	contents := []*genai.Content{
		{
			Role:  genai.RoleUser,
			Parts: []*genai.Part{{Text: fmt.Sprintf("Title: %s\n\n%s", in.Title, body)}},
		},
	}

	sysText := strings.TrimSpace(`
You are the news desk editor of a policy blog.
Summarize the article you are given for a short blog post.

STRICT OUTPUT RULES (MANDATORY):
- Write in English ONLY.
- 2 to 4 sentences, plain prose. No headline, no bullet points, no labels.
- Stick to what the article says. Never invent facts, numbers, or quotes.
- Do not mention that you are summarizing. Do not address the reader.

If the article text is too thin to summarize, restate its main claim in one sentence.`)

	var temp float32 = 0.3
	cfg := &genai.GenerateContentConfig{
		Temperature:     &temp,
		MaxOutputTokens: 512,
		SystemInstruction: &genai.Content{
			Role:  genai.RoleUser,
			Parts: []*genai.Part{{Text: sysText}},
		},
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, cfg)
	if err != nil {
		return "", fmt.Errorf("summarize.Gemini.Summarize: %w", err)
	}

	txt := strings.TrimSpace(extractText(resp))
	if txt == "" {
		return "", fmt.Errorf("summarize.Gemini.Summarize: empty response")
	}
	return txt, nil
}

func extractText(res *genai.GenerateContentResponse) string {
	if res == nil || len(res.Candidates) == 0 {
		return ""
	}
	// 最も確度が高い候補のテキスト部分のみ
	for _, p := range res.Candidates[0].Content.Parts {
		if p.Text != "" {
			return p.Text
		}
	}
	// 念のため他候補も走査
	for _, c := range res.Candidates {
		for _, p := range c.Content.Parts {
			if p.Text != "" {
				return p.Text
			}
		}
	}
	return ""
}

// 要約入力として渡す本文の最大文字数（rune単位）。
const maxInputRunes = 4000

func trimRunes(s string, n int) string {
	r := []rune(s)
	if n > 0 && len(r) > n {
		return string(r[:n])
	}
	return s
}

var _ Summarizer = &Gemini{}
