package llm

import (
	"context"
	"errors"
	"math/rand/v2"
	"time"
)

type retrying struct {
	inner   Provider
	cfg     RetryConfig
	timeout time.Duration

	// sleep waits d or until ctx ends. Tests replace it.
	sleep func(ctx context.Context, d time.Duration) error
}

// WithRetry retries temporary failures with exponential backoff and ±20%
// jitter. A schema mismatch is retried once. timeout, when positive, bounds
// the whole call.
func WithRetry(p Provider, cfg RetryConfig, timeout time.Duration) Provider {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	return &retrying{inner: p, cfg: cfg, timeout: timeout, sleep: sleepCtx}
}

func (r *retrying) Name() string { return r.inner.Name() }

func (r *retrying) Generate(ctx context.Context, req Request) (*Response, error) {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	invalidSeen := false
	var err error
	for attempt := 0; attempt < r.cfg.MaxAttempts; attempt++ {
		var resp *Response
		resp, err = r.inner.Generate(ctx, req)
		if err == nil {
			return resp, nil
		}

		var lerr *Error
		if !errors.As(err, &lerr) || !lerr.Temporary() {
			return nil, err
		}
		if lerr.Kind == KindInvalid {
			if invalidSeen {
				return nil, err
			}
			invalidSeen = true
		}
		if attempt == r.cfg.MaxAttempts-1 {
			break
		}
		if serr := r.sleep(ctx, r.wait(attempt, lerr)); serr != nil {
			return nil, serr
		}
	}
	return nil, err
}

func (r *retrying) wait(attempt int, err *Error) time.Duration {
	if err.Kind == KindRateLimited && err.RetryAfter > 0 {
		return err.RetryAfter
	}
	d := float64(r.cfg.InitialWait)
	for i := 0; i < attempt; i++ {
		d *= r.cfg.Multiplier
	}
	if ceiling := float64(r.cfg.MaxWait); ceiling > 0 && d > ceiling {
		d = ceiling
	}
	d += d * 0.2 * (2*rand.Float64() - 1)
	return time.Duration(d)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
