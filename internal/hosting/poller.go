package hosting

import (
	"context"
	"fmt"
	"time"

	"github.com/dropdawn/dropdawn/internal/log"
)

const (
	// defaultPollInterval is the fixed backoff between deploy status checks.
	defaultPollInterval = 2 * time.Second

	// defaultPollAttempts bounds the poll loop (~60s at the default interval).
	defaultPollAttempts = 30
)

// Poller watches a submitted deploy until it reaches a terminal state.
// The zero value is not useful; use NewPoller.
type Poller struct {
	client   *Client
	interval time.Duration
	attempts int
	logger   log.Logger
}

// PollerOption configures a Poller.
type PollerOption func(*Poller)

// WithPollInterval overrides the fixed backoff between checks. Tests use this
// to avoid real sleeps.
func WithPollInterval(d time.Duration) PollerOption {
	return func(p *Poller) { p.interval = d }
}

// WithPollAttempts overrides the attempt ceiling.
func WithPollAttempts(n int) PollerOption {
	return func(p *Poller) { p.attempts = n }
}

// NewPoller creates a poller over the given client.
func NewPoller(client *Client, opts ...PollerOption) *Poller {
	p := &Poller{
		client:   client,
		interval: defaultPollInterval,
		attempts: defaultPollAttempts,
		logger:   client.logger,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// AwaitReady polls the deploy on a fixed interval until it is ready, fails,
// or the attempt ceiling is reached.
//
// A "ready" state returns nil. An "error" state fails fast with the
// provider's error message. Network or API errors during polling count as one
// attempt and polling continues. Exhausting the ceiling is NOT a failure: the
// archive upload already succeeded and the deploy is likely still in
// progress, so the timeout is logged and nil is returned.
//
// Context cancellation aborts immediately with the context's error.
func (p *Poller) AwaitReady(ctx context.Context, deployID string) error {
	for attempt := 1; attempt <= p.attempts; attempt++ {
		deploy, err := p.client.GetDeploy(ctx, deployID)
		switch {
		case err != nil:
			if ctx.Err() != nil {
				return ctx.Err()
			}
			p.logger.Warn("polling deploy status", "deploy_id", deployID, "attempt", attempt, "error", err)
		case deploy.State == StateReady:
			p.logger.Debug("deploy ready", "deploy_id", deployID, "attempts", attempt)
			return nil
		case deploy.State == StateError:
			msg := deploy.ErrorMessage
			if msg == "" {
				msg = "unknown error"
			}
			return fmt.Errorf("deploy %s failed: %s", deployID, msg)
		}
		// enqueued / processing / uploading: still in flight

		if attempt == p.attempts {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(p.interval):
		}
	}

	p.logger.Warn("deploy polling timed out, continuing", "deploy_id", deployID, "attempts", p.attempts)
	return nil
}
