package bus

import (
	"github.com/sat8bit/kawaraban/event"
)

// Bus はイベントの配送責務を持つ
type Bus interface {
	Broadcast(e *event.Event) error
	Subscribe() <-chan *event.Event
	Close()
}
