package resilience

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/sony/gobreaker/v2"
)

type ErrorClassification struct {
	Retryable     bool
	RecordFailure bool
}

type ErrorClassifier func(err error) ErrorClassification

type Config struct {
	RetryMaxAttempts    int
	RetryInitialBackoff time.Duration
	RetryMaxBackoff     time.Duration

	BreakerEnabled      bool
	BreakerMinRequests  uint32
	BreakerFailureRatio float64
	BreakerOpenTimeout  time.Duration
}

func DefaultConfig() Config {
	return Config{
		RetryMaxAttempts:    3,
		RetryInitialBackoff: 100 * time.Millisecond,
		RetryMaxBackoff:     400 * time.Millisecond,

		BreakerEnabled:      true,
		BreakerMinRequests:  10,
		BreakerFailureRatio: 0.5,
		BreakerOpenTimeout:  30 * time.Second,
	}
}

func (c Config) normalize() Config {
	def := DefaultConfig()
	out := c
	if out.RetryMaxAttempts <= 0 {
		out.RetryMaxAttempts = def.RetryMaxAttempts
	}
	if out.RetryInitialBackoff <= 0 {
		out.RetryInitialBackoff = def.RetryInitialBackoff
	}
	if out.RetryMaxBackoff < out.RetryInitialBackoff {
		out.RetryMaxBackoff = out.RetryInitialBackoff
	}
	if out.BreakerMinRequests == 0 {
		out.BreakerMinRequests = def.BreakerMinRequests
	}
	if out.BreakerFailureRatio <= 0 || out.BreakerFailureRatio > 1 {
		out.BreakerFailureRatio = def.BreakerFailureRatio
	}
	if out.BreakerOpenTimeout <= 0 {
		out.BreakerOpenTimeout = def.BreakerOpenTimeout
	}
	return out
}

// Executor wraps infrastructure calls with bounded retries and a
// per-operation circuit breaker. The query core never goes through it; it
// protects the edges (queue publishes) only.
type Executor struct {
	cfg Config

	mu       sync.Mutex
	breakers map[string]*gobreaker.CircuitBreaker[any]
}

func NewExecutor(cfg Config) *Executor {
	return &Executor{
		cfg:      cfg.normalize(),
		breakers: make(map[string]*gobreaker.CircuitBreaker[any]),
	}
}

func (e *Executor) Execute(
	ctx context.Context,
	operation string,
	fn func(context.Context) error,
	classifier ErrorClassifier,
) error {
	if fn == nil {
		return fmt.Errorf("resilience: operation callback is nil")
	}
	op := strings.TrimSpace(operation)
	if op == "" {
		op = "unknown"
	}
	if classifier == nil {
		classifier = func(error) ErrorClassification {
			return ErrorClassification{RecordFailure: true}
		}
	}

	if !e.cfg.BreakerEnabled {
		return e.executeWithRetry(ctx, op, fn, classifier)
	}

	breaker := e.breaker(op, classifier)
	_, err := breaker.Execute(func() (any, error) {
		return nil, e.executeWithRetry(ctx, op, fn, classifier)
	})
	return err
}

func (e *Executor) executeWithRetry(
	ctx context.Context,
	operation string,
	fn func(context.Context) error,
	classifier ErrorClassifier,
) error {
	backoff := e.cfg.RetryInitialBackoff

	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		err := fn(ctx)
		if err == nil {
			return nil
		}
		if !classifier(err).Retryable || attempt == e.cfg.RetryMaxAttempts {
			return err
		}

		slog.Warn("retry_attempt",
			"operation", operation,
			"attempt", attempt,
			"max_attempts", e.cfg.RetryMaxAttempts,
			"backoff_ms", float64(backoff.Microseconds())/1000.0,
			"error", err,
		)

		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return err
		case <-timer.C:
		}

		backoff *= 2
		if backoff > e.cfg.RetryMaxBackoff {
			backoff = e.cfg.RetryMaxBackoff
		}
	}
}

func (e *Executor) breaker(operation string, classifier ErrorClassifier) *gobreaker.CircuitBreaker[any] {
	e.mu.Lock()
	defer e.mu.Unlock()

	if breaker, ok := e.breakers[operation]; ok {
		return breaker
	}

	breaker := gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:    operation,
		Timeout: e.cfg.BreakerOpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < e.cfg.BreakerMinRequests {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= e.cfg.BreakerFailureRatio
		},
		IsSuccessful: func(err error) bool {
			return err == nil || !classifier(err).RecordFailure
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			slog.Warn("circuit_breaker_state_change", "operation", name, "from", from.String(), "to", to.String())
		},
	})
	e.breakers[operation] = breaker
	return breaker
}

func IsCircuitOpen(err error) bool {
	return errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests)
}
