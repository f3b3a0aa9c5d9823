package runner

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// DefaultDelay follows every inference call unless configured otherwise.
const DefaultDelay = time.Second

// pacer spaces out the calls of one worker. The limiter, when set, is
// shared by every worker and caps the whole run's request rate.
type pacer struct {
	delay   time.Duration
	limiter *rate.Limiter
	sleep   SleepFunc
}

func newLimiter(perSecond float64) *rate.Limiter {
	if perSecond <= 0 {
		return nil
	}
	return rate.NewLimiter(rate.Limit(perSecond), 1)
}

// before blocks until the shared limiter admits one call.
func (p *pacer) before(ctx context.Context) error {
	if p.limiter == nil {
		return nil
	}
	return p.limiter.Wait(ctx)
}

// after applies the inter-call delay.
func (p *pacer) after(ctx context.Context) error {
	if p.delay <= 0 {
		return nil
	}
	return p.sleep(ctx, p.delay)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
