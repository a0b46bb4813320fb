package event

import (
	"time"

	"github.com/sat8bit/kawaraban/post"
)

type Kind string

const (
	KindSystem  Kind = "system"
	KindDrafted Kind = "drafted"
	KindSkipped Kind = "skipped"
	KindError   Kind = "error"
)

// Event は、パイプラインの進行状況を表すメッセージです。
// レンダラーはバス経由でこれを購読し、それぞれの形式で出力します。
type Event struct {
	Kind Kind
	Text string
	Post *post.Post
	At   time.Time
}

// IsError は、このイベントがエラーを表すかどうかを返します。
func (e *Event) IsError() bool {
	return e.Kind == KindError
}
