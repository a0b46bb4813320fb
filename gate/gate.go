package gate

import (
	"context"
)

// Gate は、同時に実行できる処理の数を制限します。
type Gate interface {
	Acquire(ctx context.Context) error
	Release()
}
