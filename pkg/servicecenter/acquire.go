package servicecenter

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/contract-intake/internal/resilience"
)

// AcquireOptions bound the polling loop that resolves an order number to
// its permanent service center ID. Leads are processed asynchronously on
// the far side, so the ID is usually not available immediately after
// creation.
type AcquireOptions struct {
	// MaxAttempts is the total number of lookup attempts.
	MaxAttempts int
	// InitialDelay is the wait before the first lookup and the base of
	// the backoff between attempts.
	InitialDelay time.Duration
	// MaxDelay caps the backoff between attempts.
	MaxDelay time.Duration
	// Multiplier grows the delay after each pending result.
	Multiplier float64
}

// DefaultAcquireOptions returns the standard polling budget.
func DefaultAcquireOptions() AcquireOptions {
	return AcquireOptions{
		MaxAttempts:  5,
		InitialDelay: 10 * time.Second,
		MaxDelay:     60 * time.Second,
		Multiplier:   1.5,
	}
}

// ErrAcquisitionExhausted matches any *ExhaustedError via errors.Is.
var ErrAcquisitionExhausted = errors.New("servicecenter: ID acquisition exhausted")

// ExhaustedError reports that the polling budget ran out before the
// service center ID became available. The lead itself was created; only
// the ID is still unknown.
type ExhaustedError struct {
	OrderNumber string
	Attempts    int
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("servicecenter: ID acquisition exhausted for %s after %d attempts", e.OrderNumber, e.Attempts)
}

func (e *ExhaustedError) Is(target error) bool { return target == ErrAcquisitionExhausted }

// AcquireID polls LookupOrder until the service center ID is available or
// the attempt budget is exhausted. It never fabricates an ID: on
// exhaustion the returned error is an *ExhaustedError and the ID is
// empty. Transient lookup errors consume an attempt like a pending
// result; other errors abort immediately.
func AcquireID(ctx context.Context, client Client, orderNumber string, opts AcquireOptions) (string, error) {
	if opts.MaxAttempts <= 0 {
		opts = DefaultAcquireOptions()
	}

	cfg := resilience.RetryConfig{
		MaxAttempts:    opts.MaxAttempts,
		InitialBackoff: opts.InitialDelay,
		MaxBackoff:     opts.MaxDelay,
		Multiplier:     opts.Multiplier,
	}

	delay := opts.InitialDelay
	for attempt := 1; attempt <= opts.MaxAttempts; attempt++ {
		if err := resilience.Sleep(ctx, delay); err != nil {
			return "", err
		}

		id, found, err := client.LookupOrder(ctx, orderNumber)
		switch {
		case err != nil && resilience.IsTransient(err):
			zap.S().Warnw("lead lookup failed, will retry",
				"order_number", orderNumber,
				"attempt", attempt,
				"error", err)
		case err != nil:
			return "", err
		case found:
			return id, nil
		default:
			zap.S().Debugw("lead still pending",
				"order_number", orderNumber,
				"attempt", attempt)
		}

		delay = resilience.Backoff(attempt, cfg)
	}

	return "", &ExhaustedError{OrderNumber: orderNumber, Attempts: opts.MaxAttempts}
}
