package resilience

import (
	"context"
	"errors"
	"testing"
	"time"
)

func testConfig() Config {
	return Config{
		RetryMaxAttempts:    3,
		RetryInitialBackoff: time.Millisecond,
		RetryMaxBackoff:     2 * time.Millisecond,
		BreakerEnabled:      false,
	}
}

func retryableClassifier(error) ErrorClassification {
	return ErrorClassification{Retryable: true, RecordFailure: true}
}

func TestExecuteRetriesUntilSuccess(t *testing.T) {
	executor := NewExecutor(testConfig())

	attempts := 0
	err := executor.Execute(context.Background(), "test.op", func(context.Context) error {
		attempts++
		if attempts < 3 {
			return errors.New("transient")
		}
		return nil
	}, retryableClassifier)

	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if attempts != 3 {
		t.Fatalf("expected 3 attempts, got %d", attempts)
	}
}

func TestExecuteStopsAtMaxAttempts(t *testing.T) {
	executor := NewExecutor(testConfig())

	attempts := 0
	err := executor.Execute(context.Background(), "test.op", func(context.Context) error {
		attempts++
		return errors.New("still failing")
	}, retryableClassifier)

	if err == nil {
		t.Fatalf("expected error after exhausting attempts")
	}
	if attempts != 3 {
		t.Fatalf("expected 3 attempts, got %d", attempts)
	}
}

func TestExecuteDoesNotRetryNonRetryable(t *testing.T) {
	executor := NewExecutor(testConfig())

	attempts := 0
	err := executor.Execute(context.Background(), "test.op", func(context.Context) error {
		attempts++
		return errors.New("permanent")
	}, func(error) ErrorClassification {
		return ErrorClassification{Retryable: false, RecordFailure: true}
	})

	if err == nil {
		t.Fatalf("expected error")
	}
	if attempts != 1 {
		t.Fatalf("expected single attempt, got %d", attempts)
	}
}

func TestExecuteHonorsContextCancellation(t *testing.T) {
	executor := NewExecutor(testConfig())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := executor.Execute(ctx, "test.op", func(context.Context) error {
		t.Fatalf("callback must not run on cancelled context")
		return nil
	}, retryableClassifier)

	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestBreakerOpensAfterRepeatedFailures(t *testing.T) {
	cfg := testConfig()
	cfg.RetryMaxAttempts = 1
	cfg.BreakerEnabled = true
	cfg.BreakerMinRequests = 2
	cfg.BreakerFailureRatio = 0.5
	cfg.BreakerOpenTimeout = time.Minute
	executor := NewExecutor(cfg)

	fail := func(context.Context) error { return errors.New("down") }
	for i := 0; i < 2; i++ {
		_ = executor.Execute(context.Background(), "breaker.op", fail, retryableClassifier)
	}

	err := executor.Execute(context.Background(), "breaker.op", fail, retryableClassifier)
	if !IsCircuitOpen(err) {
		t.Fatalf("expected open circuit, got %v", err)
	}
}
