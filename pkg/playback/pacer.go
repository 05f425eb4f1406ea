package playback

import (
	"context"
	"time"
)

// Pace pulls every event from d and hands it to fn once wait returns for
// its DTime. Waiting happens here, never inside the Dispatcher. A
// cancelled ctx stops Pace before fn sees another event.
func Pace(ctx context.Context, d *Dispatcher, wait func(context.Context, time.Duration) error, fn func(Dispatched) error) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		e, ok := d.Next()
		if !ok {
			return nil
		}

		if err := wait(ctx, seconds(e.DTime)); err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		if err := fn(e); err != nil {
			return err
		}
	}
}

// Sleep waits for d or until ctx is done.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// NoWait delivers events back to back.
func NoWait(ctx context.Context, _ time.Duration) error {
	return ctx.Err()
}

// CatchUp pulls events whose Time is not after elapsed. It keeps one
// event of lookahead between calls so nothing is lost when polling.
type CatchUp struct {
	d       *Dispatcher
	pending Dispatched
	has     bool
	done    bool
}

func NewCatchUp(d *Dispatcher) *CatchUp {
	return &CatchUp{d: d}
}

// Until calls fn for every event due by elapsed and reports whether more
// events remain.
func (c *CatchUp) Until(elapsed time.Duration, fn func(Dispatched)) bool {
	for {
		if !c.has {
			if c.done {
				return false
			}
			c.pending, c.has = c.d.Next()
			if !c.has {
				c.done = true
				return false
			}
		}

		if seconds(c.pending.Time) > elapsed {
			return true
		}

		fn(c.pending)
		c.has = false
	}
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
