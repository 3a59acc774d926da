package llm

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

// recordingSleeper captures the delays without actually sleeping.
type recordingSleeper struct {
	delays []time.Duration
}

func (rs *recordingSleeper) sleep(_ context.Context, d time.Duration) error {
	rs.delays = append(rs.delays, d)
	return nil
}

func TestRunWithRetry_ExhaustsAttemptsWithDoublingDelay(t *testing.T) {
	sleeper := &recordingSleeper{}
	calls := 0

	_, err := RunWithRetry(context.Background(), zerolog.Nop(), func(context.Context) (string, error) {
		calls++
		return "", errors.New("boom")
	}, 3, time.Second, sleeper.sleep)

	if err == nil {
		t.Fatal("expected an error after exhausting attempts")
	}
	if calls != 3 {
		t.Fatalf("expected exactly 3 attempts, got %d", calls)
	}
	want := []time.Duration{time.Second, 2 * time.Second, 4 * time.Second}
	if len(sleeper.delays) != len(want) {
		t.Fatalf("expected %d delays, got %v", len(want), sleeper.delays)
	}
	for i, d := range want {
		if sleeper.delays[i] != d {
			t.Fatalf("delay %d: expected %v, got %v", i, d, sleeper.delays[i])
		}
	}
}

func TestRunWithRetry_SucceedsAfterTransientFailures(t *testing.T) {
	sleeper := &recordingSleeper{}
	calls := 0

	out, err := RunWithRetry(context.Background(), zerolog.Nop(), func(context.Context) (string, error) {
		calls++
		if calls < 3 {
			return "", errors.New("transient")
		}
		return "ok", nil
	}, 3, time.Second, sleeper.sleep)

	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if out != "ok" {
		t.Fatalf("expected ok, got %q", out)
	}
	if len(sleeper.delays) != 2 {
		t.Fatalf("expected 2 delays before success, got %v", sleeper.delays)
	}
}

func TestRunWithRetry_FatalErrorNotRetried(t *testing.T) {
	sleeper := &recordingSleeper{}
	calls := 0

	_, err := RunWithRetry(context.Background(), zerolog.Nop(), func(context.Context) (string, error) {
		calls++
		return "", Fatal(errors.New("bad request"))
	}, 3, time.Second, sleeper.sleep)

	if err == nil {
		t.Fatal("expected an error")
	}
	if calls != 1 {
		t.Fatalf("expected a single attempt, got %d", calls)
	}
	if len(sleeper.delays) != 0 {
		t.Fatalf("expected no sleeps, got %v", sleeper.delays)
	}
	if !strings.Contains(err.Error(), "non-retryable") {
		t.Fatalf("expected non-retryable marker in %q", err)
	}
}

func TestRunWithRetry_ContextCancellationAborts(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	calls := 0

	_, err := RunWithRetry(ctx, zerolog.Nop(), func(context.Context) (string, error) {
		calls++
		return "", context.Canceled
	}, 3, time.Second, nil)

	if err == nil {
		t.Fatal("expected an error")
	}
	if calls != 1 {
		t.Fatalf("expected a single attempt, got %d", calls)
	}
}

func TestRunWithRetry_LogsExhaustionOnFinalAttempt(t *testing.T) {
	var buf bytes.Buffer
	log := zerolog.New(&buf)
	sleeper := &recordingSleeper{}

	_, err := RunWithRetry(context.Background(), log, func(context.Context) (string, error) {
		return "", errors.New("boom")
	}, 3, time.Second, sleeper.sleep)
	if err == nil {
		t.Fatal("expected an error after exhausting attempts")
	}

	out := buf.String()
	if got := strings.Count(out, "call failed, retrying"); got != 2 {
		t.Fatalf("expected 2 retrying entries, got %d:\n%s", got, out)
	}
	if got := strings.Count(out, "call failed, attempts exhausted"); got != 1 {
		t.Fatalf("expected 1 exhausted entry, got %d:\n%s", got, out)
	}
}

func TestIsRetryable(t *testing.T) {
	if IsRetryable(nil) {
		t.Error("nil error should not be retryable")
	}
	if IsRetryable(Fatal(errors.New("x"))) {
		t.Error("fatal error should not be retryable")
	}
	if IsRetryable(context.DeadlineExceeded) {
		t.Error("deadline exceeded should not be retryable")
	}
	if !IsRetryable(errors.New("connection reset")) {
		t.Error("plain error should be retryable")
	}
}
