package renderer

import (
	"context"
	"fmt"
	"sync"

	"github.com/sat8bit/kawaraban/bus"
	"github.com/sat8bit/kawaraban/event"
)

func NewConsoleRenderer() *ConsoleRenderer {
	return &ConsoleRenderer{}
}

// ConsoleRenderer は、パイプラインの進行状況を標準出力に流すレンダラーです。
type ConsoleRenderer struct{}

func (c *ConsoleRenderer) Render(ctx context.Context, b bus.Bus, wg *sync.WaitGroup) error {
	ch := b.Subscribe()

	wg.Add(1)
	go func() {
		defer wg.Done()
		for ev := range ch {
			switch ev.Kind {
			case event.KindSystem:
				fmt.Printf("[System] %s\n", ev.Text)
			case event.KindDrafted:
				fmt.Printf("Drafted: %s\n", ev.Text)
			case event.KindSkipped:
				fmt.Printf("Skip: %s\n", ev.Text)
			case event.KindError:
				fmt.Printf("[Error] %s\n", ev.Text)
			}
		}
	}()

	return nil
}

// Finalize は Renderer インターフェースを実装するためのメソッドです。
// ConsoleRenderer では特に何も行いません。
func (c *ConsoleRenderer) Finalize() error {
	return nil
}

var _ Renderer = (*ConsoleRenderer)(nil)
