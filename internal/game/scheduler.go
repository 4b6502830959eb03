package game

import (
	"context"
	"time"
)

// TimerScheduler fires callbacks from time.AfterFunc.
type TimerScheduler struct{}

// After implements Scheduler.
func (TimerScheduler) After(d time.Duration, fn func()) {
	time.AfterFunc(d, fn)
}

// GoDispatcher runs each task on its own goroutine with a background context.
type GoDispatcher struct{}

// Dispatch implements Dispatcher.
func (GoDispatcher) Dispatch(task func(ctx context.Context) error) {
	go func() {
		// Errors are reported by the task itself.
		_ = task(context.Background())
	}()
}
