package orchestrator

import (
	"context"
	"math/rand"
	"time"
)

type waitResult int

const (
	waitCompleted waitResult = iota
	waitPaused
	waitStopped
)

// sleep blocks for d or until a control command / context cancellation
// arrives, whichever is first. A non-positive duration returns
// immediately as completed.
func (o *Orchestrator) sleep(ctx context.Context, d time.Duration) waitResult {
	if d <= 0 {
		return waitCompleted
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return waitCompleted
	case cmd := <-o.control:
		return resultFor(cmd)
	case <-ctx.Done():
		return waitStopped
	}
}

func resultFor(cmd command) waitResult {
	switch cmd {
	case cmdPause:
		return waitPaused
	default:
		return waitStopped
	}
}

func (o *Orchestrator) finishOnWait(ctx context.Context, result waitResult) {
	switch result {
	case waitPaused:
		o.pauseSession(ctx)
	case waitStopped:
		o.stopSession(ctx)
	}
}

func randomDuration(minMs, maxMs int) time.Duration {
	if maxMs <= minMs {
		return time.Duration(minMs) * time.Millisecond
	}
	span := maxMs - minMs
	return time.Duration(minMs+rand.Intn(span)) * time.Millisecond
}
