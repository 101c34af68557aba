package quiz

import (
	"context"
	"time"
)

const (
	// FeedbackDelay separates marking the selected answer from revealing the
	// correct one and recording the score.
	FeedbackDelay = 500 * time.Millisecond
	// AdvanceDelay lets feedback settle before the next round loads.
	AdvanceDelay = 500 * time.Millisecond

	CorrectNoticeTimeout = 2 * time.Second
	WrongNoticeTimeout   = 3 * time.Second

	// MilestoneEvery is how many answers separate two progress summaries.
	MilestoneEvery = 20
)

// Pacing holds the delays of one controller.
type Pacing struct {
	Feedback      time.Duration
	Advance       time.Duration
	CorrectNotice time.Duration
	WrongNotice   time.Duration
}

func DefaultPacing() Pacing {
	return Pacing{
		Feedback:      FeedbackDelay,
		Advance:       AdvanceDelay,
		CorrectNotice: CorrectNoticeTimeout,
		WrongNotice:   WrongNoticeTimeout,
	}
}

// Waiter suspends a continuation for d.
type Waiter interface {
	Wait(ctx context.Context, d time.Duration) error
}

// WaiterFunc adapts a function to Waiter.
type WaiterFunc func(ctx context.Context, d time.Duration) error

func (f WaiterFunc) Wait(ctx context.Context, d time.Duration) error {
	return f(ctx, d)
}

// TimerWaiter waits on a real timer.
type TimerWaiter struct{}

func (TimerWaiter) Wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Immediate never waits. Tests use it to run continuations back to back.
var Immediate Waiter = WaiterFunc(func(ctx context.Context, _ time.Duration) error {
	return ctx.Err()
})
