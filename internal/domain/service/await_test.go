package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scriptedPoller struct {
	mu     sync.Mutex
	values []int
	err    error
	calls  int
}

func (p *scriptedPoller) Progress(ctx context.Context, id int) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	if len(p.values) == 0 {
		if p.err != nil {
			return 0, p.err
		}
		return 100, nil
	}
	v := p.values[0]
	p.values = p.values[1:]
	return v, nil
}

func TestAwaitIsMonotonicAndCompletesOnce(t *testing.T) {
	poller := &scriptedPoller{values: []int{0, 10, 10, 5, 40, 100, 100}}

	var seen []int
	completions := 0
	for u := range Await(context.Background(), poller, 3, time.Millisecond) {
		require.NoError(t, u.Err)
		assert.Equal(t, 3, u.JobID)
		seen = append(seen, u.Progress)
		if u.Done {
			completions++
		}
	}

	assert.Equal(t, []int{0, 10, 40, 100}, seen)
	assert.Equal(t, 1, completions)
}

func TestAwaitReportsErrorAndCloses(t *testing.T) {
	boom := errors.New("boom")
	failing := &failingAfter{inner: &scriptedPoller{values: []int{20}}, after: 1, err: boom}

	var updates []int
	var lastErr error
	for u := range Await(context.Background(), failing, 1, time.Millisecond) {
		if u.Err != nil {
			lastErr = u.Err
			continue
		}
		updates = append(updates, u.Progress)
	}

	assert.Equal(t, []int{20}, updates)
	assert.ErrorIs(t, lastErr, boom)
}

type failingAfter struct {
	inner *scriptedPoller
	after int
	err   error
	calls int
}

func (f *failingAfter) Progress(ctx context.Context, id int) (int, error) {
	f.calls++
	if f.calls > f.after {
		return 0, f.err
	}
	return f.inner.Progress(ctx, id)
}

func TestAwaitStopsOnContextCancel(t *testing.T) {
	poller := &scriptedPoller{values: []int{1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1}}
	ctx, cancel := context.WithCancel(context.Background())

	updates := Await(ctx, poller, 1, 10*time.Millisecond)
	first := <-updates
	assert.Equal(t, 1, first.Progress)
	cancel()

	for u := range updates {
		assert.False(t, u.Done)
	}
}

func TestWaitForCompletion(t *testing.T) {
	poller := &scriptedPoller{values: []int{0, 50, 100}}

	var seen []int
	err := WaitForCompletion(context.Background(), poller, 9, time.Millisecond, func(p int) {
		seen = append(seen, p)
	})

	require.NoError(t, err)
	assert.Equal(t, []int{0, 50, 100}, seen)
	assert.Equal(t, 3, poller.calls)
}

func TestWaitForCompletionDeadline(t *testing.T) {
	poller := &scriptedPoller{values: make([]int, 1000)}
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := WaitForCompletion(ctx, poller, 9, 5*time.Millisecond, nil)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
