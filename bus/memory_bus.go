package bus

import (
	"fmt"
	"sync"

	"github.com/sat8bit/kawaraban/event"
)

// 購読者チャネルのバッファサイズ。1回の実行で流れるイベント数は
// 高々フィード件数程度なので、控えめな値で足ります。
const subscriberBuffer = 32

// MemoryBus は bus.Bus インターフェースのインメモリ実装です。
// 購読者ごとのチャネルを保持し、ブロードキャストされたイベントを
// すべての購読者に配送します。
type MemoryBus struct {
	subscribers []chan *event.Event

	// subscribers スライスを保護するための読み書きミューテックス
	mu sync.RWMutex

	// バスが閉じられているかどうかを示すフラグ
	isClosed bool
}

// NewMemoryBus は新しい MemoryBus を生成します。
func NewMemoryBus() Bus {
	return &MemoryBus{
		subscribers: make([]chan *event.Event, 0),
	}
}

// Broadcast はイベントをすべての購読者に配送します。
// この操作はノンブロッキングです。購読者のチャネルバッファが一杯の場合、
// その購読者へのイベントはドロップされます。
func (b *MemoryBus) Broadcast(e *event.Event) error {
	// 読み取りロックなので、複数のブロードキャストは並行して実行できます。
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.isClosed {
		return fmt.Errorf("bus is closed")
	}

	for _, ch := range b.subscribers {
		select {
		case ch <- e:
			// 正常に送信
		default:
			// 購読者の受信が追いついていない場合はドロップする。
		}
	}

	return nil
}

// Subscribe は新しい購読者を追加し、イベントを受信するためのチャネルを返します。
func (b *MemoryBus) Subscribe() <-chan *event.Event {
	b.mu.Lock()
	defer b.mu.Unlock()

	newSubscriberCh := make(chan *event.Event, subscriberBuffer)

	if b.isClosed {
		// バスが既に閉じられている場合は、閉じたチャネルを返す
		close(newSubscriberCh)
		return newSubscriberCh
	}

	b.subscribers = append(b.subscribers, newSubscriberCh)

	return newSubscriberCh
}

// Close はバスを閉じ、すべての購読者チャネルをクローズします。
// Close 以降の Broadcast はエラーを返します。
func (b *MemoryBus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.isClosed {
		b.isClosed = true
		for _, ch := range b.subscribers {
			close(ch)
		}
		b.subscribers = nil
	}
}

// コンパイル時に Bus インターフェースを実装していることを保証します。
var _ Bus = (*MemoryBus)(nil)
