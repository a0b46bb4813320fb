package renderer

import (
	"context"
	"sync"

	"github.com/sat8bit/kawaraban/bus"
)

// Renderer は、パイプラインの実行結果を出力するコンポーネントが満たすべきインターフェースです。
type Renderer interface {
	// Render は、実行中のイベントの購読を開始します。
	// 購読ゴルーチンは wg に登録され、バスが閉じられると完了します。
	Render(ctx context.Context, b bus.Bus, wg *sync.WaitGroup) error

	// Finalize は、パイプラインの実行が終わった後の最終処理を行います。
	// 例えば、記事一覧ページを書き出すなどの処理を想定しています。
	Finalize() error
}
