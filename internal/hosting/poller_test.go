package hosting

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// deploySequence serves one deploy state per GET, in order, holding the last
// state once the sequence is exhausted.
func deploySequence(states ...string) (http.Handler, *atomic.Int32) {
	var calls atomic.Int32
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := int(calls.Add(1)) - 1
		if n >= len(states) {
			n = len(states) - 1
		}
		state := states[n]
		if state == "unavailable" {
			http.Error(w, "down", http.StatusServiceUnavailable)
			return
		}
		_ = json.NewEncoder(w).Encode(Deploy{ID: "d1", State: state, ErrorMessage: errorMessageFor(state)})
	})
	return handler, &calls
}

func errorMessageFor(state string) string {
	if state == StateError {
		return "build script exited with code 1"
	}
	return ""
}

func newTestPoller(t *testing.T, handler http.Handler, opts ...PollerOption) *Poller {
	t.Helper()
	c := newTestClient(t, handler)
	base := []PollerOption{WithPollInterval(time.Millisecond)}
	return NewPoller(c, append(base, opts...)...)
}

func TestAwaitReady(t *testing.T) {
	handler, calls := deploySequence(StateEnqueued, StateProcessing, StateUploading, StateReady)
	p := newTestPoller(t, handler)

	if err := p.AwaitReady(context.Background(), "d1"); err != nil {
		t.Fatalf("AwaitReady() error = %v", err)
	}
	if got := calls.Load(); got != 4 {
		t.Errorf("polled %d times, want 4", got)
	}
}

func TestAwaitReadyDeployError(t *testing.T) {
	handler, _ := deploySequence(StateProcessing, StateError)
	p := newTestPoller(t, handler)

	err := p.AwaitReady(context.Background(), "d1")
	if err == nil {
		t.Fatal("AwaitReady() error = nil, want deploy failure")
	}
	if !strings.Contains(err.Error(), "build script exited with code 1") {
		t.Errorf("error = %v, want provider error message", err)
	}
}

func TestAwaitReadySurvivesTransientFailures(t *testing.T) {
	handler, _ := deploySequence("unavailable", "unavailable", StateReady)
	p := newTestPoller(t, handler)

	if err := p.AwaitReady(context.Background(), "d1"); err != nil {
		t.Fatalf("AwaitReady() error = %v, want polling to ride out transient failures", err)
	}
}

func TestAwaitReadyTimeoutIsNotFailure(t *testing.T) {
	handler, calls := deploySequence(StateProcessing)
	p := newTestPoller(t, handler, WithPollAttempts(3))

	if err := p.AwaitReady(context.Background(), "d1"); err != nil {
		t.Fatalf("AwaitReady() error = %v, want nil on attempt exhaustion", err)
	}
	if got := calls.Load(); got != 3 {
		t.Errorf("polled %d times, want 3", got)
	}
}

func TestAwaitReadyContextCancellation(t *testing.T) {
	handler, _ := deploySequence(StateProcessing)
	p := newTestPoller(t, handler, WithPollInterval(time.Minute))

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- p.AwaitReady(ctx, "d1") }()

	cancel()
	select {
	case err := <-errCh:
		if err != context.Canceled {
			t.Errorf("AwaitReady() error = %v, want context.Canceled", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("AwaitReady() did not return after cancellation")
	}
}
