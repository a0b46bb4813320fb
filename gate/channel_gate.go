package gate

import (
	"context"
	"fmt"
)

// ChannelGate は gate.Gate の実装です。
// バッファ付きチャネルをセマフォとして使い、同時実行数を制限します。
type ChannelGate struct {
	// このチャネルに書き込みができれば枠を取得し、
	// このチャネルから読み込むことで枠を解放します。
	slots chan struct{}
}

// NewChannelGate は新しい ChannelGate を生成します。
// n は同時実行数の上限です。0以下の場合は1として扱います。
func NewChannelGate(n int) Gate {
	if n <= 0 {
		n = 1
	}
	return &ChannelGate{
		slots: make(chan struct{}, n),
	}
}

// Acquire は実行枠を取得します。
// 枠が空くまでブロックします。待機中に context がキャンセルされた場合は
// エラーを返します。
func (g *ChannelGate) Acquire(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("failed to acquire slot: %w", ctx.Err())
	case g.slots <- struct{}{}:
		return nil
	}
}

// Release は保持している実行枠を解放します。
// Acquire していないのに呼ばれた場合は何もしません。
func (g *ChannelGate) Release() {
	select {
	case <-g.slots:
		// バッファに空きを作り、待機中のゴルーチンが枠を取得できるようにする
	default:
		// 取得していない枠の解放。パニックにはしない。
	}
}

// コンパイル時に Gate インターフェースを実装していることを保証します。
var _ Gate = (*ChannelGate)(nil)
