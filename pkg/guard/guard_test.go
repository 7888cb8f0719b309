package guard

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestRunReturnsValue(t *testing.T) {
	got, err := Run(context.Background(), time.Second, func(ctx context.Context) (string, error) {
		return "fast", nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "fast" {
		t.Errorf("got %q, want %q", got, "fast")
	}
}

func TestRunPropagatesError(t *testing.T) {
	wantErr := errors.New("backend down")
	_, err := Run(context.Background(), time.Second, func(ctx context.Context) (int, error) {
		return 0, wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Errorf("got %v, want wrapped %v", err, wantErr)
	}
	if IsTimeout(err) {
		t.Error("backend error misclassified as timeout")
	}
}

func TestRunTimesOut(t *testing.T) {
	timeout := 30 * time.Millisecond
	start := time.Now()
	_, err := Run(context.Background(), timeout, func(ctx context.Context) (string, error) {
		select {
		case <-time.After(2 * time.Second):
			return "late", nil
		case <-ctx.Done():
			return "", ctx.Err()
		}
	})
	elapsed := time.Since(start)

	if !IsTimeout(err) {
		t.Fatalf("expected timeout, got %v", err)
	}
	if elapsed > 500*time.Millisecond {
		t.Errorf("timeout took %v, should return close to the %v deadline", elapsed, timeout)
	}
}

func TestRunAbandonsSlowWorker(t *testing.T) {
	done := make(chan struct{})
	_, err := Run(context.Background(), 20*time.Millisecond, func(ctx context.Context) (string, error) {
		defer close(done)
		time.Sleep(80 * time.Millisecond)
		return "late", nil
	})
	if !IsTimeout(err) {
		t.Fatalf("expected timeout, got %v", err)
	}

	// The worker must still be able to finish and exit on its own.
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("abandoned worker never finished")
	}
}

func TestRunParentCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	_, err := Run(ctx, time.Minute, func(ctx context.Context) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	})
	if !IsCanceled(err) {
		t.Fatalf("expected cancellation, got %v", err)
	}
	if IsTimeout(err) {
		t.Error("cancellation misclassified as timeout")
	}
}
