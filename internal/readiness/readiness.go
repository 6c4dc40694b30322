// Package readiness blocks process startup until the backing store accepts
// connections.
package readiness

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sethvargo/go-retry"
	"github.com/sirupsen/logrus"
)

// ErrStoreUnavailable is returned when the store never answered within the policy.
var ErrStoreUnavailable = errors.New("store unavailable")

const (
	BackoffConstant    = "constant"
	BackoffExponential = "exponential"
)

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Policy controls how often and how long Wait retries.
type Policy struct {
	Interval time.Duration
	// MaxAttempts bounds the number of pings. Zero retries until ctx ends.
	MaxAttempts uint64
	// Backoff is BackoffConstant or BackoffExponential.
	Backoff string
	// MaxInterval caps the exponential delay. Zero leaves it uncapped.
	MaxInterval time.Duration
}

// DefaultPolicy pings once a second with no attempt cap.
func DefaultPolicy() Policy {
	return Policy{
		Interval: time.Second,
		Backoff:  BackoffConstant,
	}
}

func (p Policy) backoff() (retry.Backoff, error) {
	if p.Interval <= 0 {
		return nil, fmt.Errorf("readiness interval must be positive, got %s", p.Interval)
	}

	var b retry.Backoff
	switch strings.ToLower(strings.TrimSpace(p.Backoff)) {
	case "", BackoffConstant:
		b = retry.NewConstant(p.Interval)
	case BackoffExponential:
		b = retry.NewExponential(p.Interval)
		if p.MaxInterval > 0 {
			b = retry.WithCappedDuration(p.MaxInterval, b)
		}
	default:
		return nil, fmt.Errorf("unknown readiness backoff %q", p.Backoff)
	}

	if p.MaxAttempts > 0 {
		b = retry.WithMaxRetries(p.MaxAttempts-1, b)
	}
	return b, nil
}

// Wait pings the store until it answers, the policy gives up, or ctx ends.
func Wait(ctx context.Context, store Pinger, policy Policy, logger logrus.FieldLogger) error {
	b, err := policy.backoff()
	if err != nil {
		return err
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	logger.Info("waiting for database...")
	var attempt uint64
	err = retry.Do(ctx, b, func(ctx context.Context) error {
		attempt++
		if err := store.PingContext(ctx); err != nil {
			logger.WithField("attempt", attempt).Warnf("database unavailable: %v", err)
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("wait for database: %w", ctxErr)
		}
		return fmt.Errorf("%w after %d attempts: %w", ErrStoreUnavailable, attempt, err)
	}

	logger.WithField("attempts", attempt).Info("database available")
	return nil
}
