// Package schedule запускает периодические задачи, которые можно остановить.
// Время берётся из clockwork.Clock, поэтому в тестах его можно подменить.
package schedule

import (
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// Task — запущенная периодическая задача.
type Task struct {
	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

// Every вызывает fn каждые interval до отмены ctx или вызова Stop.
// Первый вызов происходит через interval после запуска.
// Вызовы fn не пересекаются: следующий тик ждёт завершения предыдущего.
func Every(ctx context.Context, clock clockwork.Clock, interval time.Duration, fn func(context.Context)) *Task {
	ctx, cancel := context.WithCancel(ctx)
	t := &Task{cancel: cancel, done: make(chan struct{})}

	ticker := clock.NewTicker(interval)
	go func() {
		defer close(t.done)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.Chan():
				if ctx.Err() != nil {
					return
				}
				fn(ctx)
			}
		}
	}()
	return t
}

// Stop останавливает задачу и ждёт завершения текущего вызова fn.
// Повторный вызов безопасен. Вызывать Stop из fn нельзя.
func (t *Task) Stop() {
	if t == nil {
		return
	}
	t.once.Do(t.cancel)
	<-t.done
}

// Done закрывается после остановки задачи.
func (t *Task) Done() <-chan struct{} {
	return t.done
}
