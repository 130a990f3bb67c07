package payment

import (
	"context"
	"errors"
	"time"
)

// RetryPolicy bounds how long a gateway call may take overall.
type RetryPolicy struct {
	MaxAttempts int           // total attempts, including the first
	BaseBackoff time.Duration // wait before the second attempt; doubles afterwards
	Timeout     time.Duration // per attempt
}

// DefaultRetryPolicy is three attempts, 200ms then 400ms apart, 5s each.
var DefaultRetryPolicy = RetryPolicy{
	MaxAttempts: 3,
	BaseBackoff: 200 * time.Millisecond,
	Timeout:     5 * time.Second,
}

func (p RetryPolicy) normalized() RetryPolicy {
	if p.MaxAttempts < 1 {
		p.MaxAttempts = 1
	}
	if p.Timeout <= 0 {
		p.Timeout = DefaultRetryPolicy.Timeout
	}
	return p
}

// do runs fn until it succeeds, fails with anything but ErrGatewayUnavailable,
// or the attempts run out.
func (p RetryPolicy) do(ctx context.Context, fn func(ctx context.Context) error) error {
	p = p.normalized()

	var err error
	for attempt := 1; attempt <= p.MaxAttempts; attempt++ {
		err = func() error {
			actx, cancel := context.WithTimeout(ctx, p.Timeout)
			defer cancel()
			return fn(actx)
		}()
		if err == nil || !errors.Is(err, ErrGatewayUnavailable) || attempt == p.MaxAttempts {
			return err
		}

		wait := p.BaseBackoff << (attempt - 1)
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return errors.Join(ErrGatewayUnavailable, ctx.Err())
		case <-timer.C:
		}
	}
	return err
}
