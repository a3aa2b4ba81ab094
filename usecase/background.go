package usecase

import (
	"context"
	"sync"
	"time"
)

// background runs side effects that must outlive the request that caused them
type background struct {
	wg      sync.WaitGroup
	timeout time.Duration
}

func (b *background) Go(fn func(ctx context.Context)) {
	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), b.timeout)
		defer cancel()
		fn(ctx)
	}()
}

// Wait blocks until every started task has finished
func (b *background) Wait() {
	b.wg.Wait()
}
