package service

import (
	"context"
	"time"

	"github.com/haxorport/zapscan-go-client/internal/domain/model"
)

// DefaultPollInterval is used when no positive interval is given
const DefaultPollInterval = time.Second

// ProgressPoller reads the progress of a job
type ProgressPoller interface {
	Progress(ctx context.Context, id int) (int, error)
}

// Await polls a job and delivers its progress on the returned channel until
// it reaches 100, an error occurs or ctx is done; then the channel is closed.
// Delivered progress never decreases and 100 is delivered exactly once.
func Await(ctx context.Context, poller ProgressPoller, id int, interval time.Duration) <-chan model.ProgressUpdate {
	updates := make(chan model.ProgressUpdate, 1)
	go func() {
		defer close(updates)
		_ = pollProgress(ctx, poller, id, interval, func(u model.ProgressUpdate) bool {
			select {
			case updates <- u:
				return true
			case <-ctx.Done():
				return false
			}
		})
	}()
	return updates
}

// WaitForCompletion polls a job on the calling goroutine until it reaches 100.
// onProgress, when set, sees every progress change.
func WaitForCompletion(ctx context.Context, poller ProgressPoller, id int, interval time.Duration, onProgress func(int)) error {
	return pollProgress(ctx, poller, id, interval, func(u model.ProgressUpdate) bool {
		if onProgress != nil && u.Err == nil {
			onProgress(u.Progress)
		}
		return true
	})
}

func pollProgress(ctx context.Context, poller ProgressPoller, id int, interval time.Duration, emit func(model.ProgressUpdate) bool) error {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	last := -1
	for {
		progress, err := poller.Progress(ctx, id)
		if err != nil {
			emit(model.ProgressUpdate{JobID: id, Progress: max(last, 0), Err: err})
			return err
		}
		progress = min(max(progress, last), 100)
		if progress != last {
			last = progress
			done := progress == 100
			if !emit(model.ProgressUpdate{JobID: id, Progress: progress, Done: done}) {
				return ctx.Err()
			}
			if done {
				return nil
			}
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
