package browser

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/chromedp/cdproto/network"
)

func TestCaptureWithRetrySucceedsFirstAttempt(t *testing.T) {
	calls := 0
	tok, err := captureWithRetry(context.Background(),
		RetryPolicy{MaxAttempts: 3, AttemptTimeout: time.Second},
		func(ctx context.Context) (string, error) {
			calls++
			return "tok-abc", nil
		})
	if err != nil {
		t.Fatalf("captureWithRetry error = %v", err)
	}
	if tok != "tok-abc" {
		t.Fatalf("token = %q", tok)
	}
	if calls != 1 {
		t.Fatalf("attempt called %d times, want 1", calls)
	}
}

func TestCaptureWithRetryRetriesOnTimeout(t *testing.T) {
	calls := 0
	tok, err := captureWithRetry(context.Background(),
		RetryPolicy{MaxAttempts: 3, AttemptTimeout: 10 * time.Millisecond},
		func(ctx context.Context) (string, error) {
			calls++
			if calls < 3 {
				<-ctx.Done()
				return "", ctx.Err()
			}
			return "tok-late", nil
		})
	if err != nil {
		t.Fatalf("captureWithRetry error = %v", err)
	}
	if tok != "tok-late" {
		t.Fatalf("token = %q", tok)
	}
	if calls != 3 {
		t.Fatalf("attempt called %d times, want 3", calls)
	}
}

func TestCaptureWithRetryExhaustsBudget(t *testing.T) {
	calls := 0
	_, err := captureWithRetry(context.Background(),
		RetryPolicy{MaxAttempts: 2, AttemptTimeout: 5 * time.Millisecond},
		func(ctx context.Context) (string, error) {
			calls++
			<-ctx.Done()
			return "", ctx.Err()
		})
	if !errors.Is(err, ErrTokenNotObserved) {
		t.Fatalf("error = %v, want ErrTokenNotObserved", err)
	}
	if calls != 2 {
		t.Fatalf("attempt called %d times, want the full budget of 2", calls)
	}
}

func TestCaptureWithRetryStopsOnHardError(t *testing.T) {
	hard := errors.New("browser crashed")
	calls := 0
	_, err := captureWithRetry(context.Background(),
		RetryPolicy{MaxAttempts: 5, AttemptTimeout: time.Second},
		func(ctx context.Context) (string, error) {
			calls++
			return "", hard
		})
	if !errors.Is(err, hard) {
		t.Fatalf("error = %v, want the attempt error", err)
	}
	if calls != 1 {
		t.Fatalf("attempt called %d times, want no retry after a hard error", calls)
	}
}

func TestCaptureWithRetryHonorsParentCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := captureWithRetry(ctx,
		RetryPolicy{MaxAttempts: 5, AttemptTimeout: time.Millisecond},
		func(ctx context.Context) (string, error) {
			<-ctx.Done()
			return "", ctx.Err()
		})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("error = %v, want context.Canceled", err)
	}
}

func TestCaptureWithRetryZeroAttemptsStillTriesOnce(t *testing.T) {
	calls := 0
	tok, err := captureWithRetry(context.Background(),
		RetryPolicy{MaxAttempts: 0, AttemptTimeout: time.Second},
		func(ctx context.Context) (string, error) {
			calls++
			return "tok", nil
		})
	if err != nil || tok != "tok" {
		t.Fatalf("got (%q, %v)", tok, err)
	}
	if calls != 1 {
		t.Fatalf("attempt called %d times, want 1", calls)
	}
}

func TestBearerFromHeaders(t *testing.T) {
	cases := []struct {
		name    string
		headers network.Headers
		want    string
	}{
		{"canonical", network.Headers{"Authorization": "Bearer abc123"}, "abc123"},
		{"lowercase", network.Headers{"authorization": "Bearer xyz"}, "xyz"},
		{"not bearer", network.Headers{"Authorization": "Basic dXNlcg=="}, ""},
		{"absent", network.Headers{"Accept": "application/json"}, ""},
		{"non-string value", network.Headers{"Authorization": 42}, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := bearerFromHeaders(tc.headers); got != tc.want {
				t.Fatalf("bearerFromHeaders = %q, want %q", got, tc.want)
			}
		})
	}
}
