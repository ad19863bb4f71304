package quota

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dropdawn/dropdawn/internal/log"
)

// querier is the common interface satisfied by both *pgxpool.Pool and pgx.Tx.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Limiter checks and records message usage against the event log.
//
// Failure policy is asymmetric: a user at the ceiling is always refused, but
// a storage failure never blocks a message. Check degrades to allowing the
// message when the log cannot be read, and Record logs and swallows write
// failures.
//
// Limiter is safe for concurrent use by multiple goroutines.
type Limiter struct {
	db     querier
	limit  int
	window time.Duration
	logger log.Logger
	now    func() time.Time
}

// LimiterOption configures optional Limiter behavior.
type LimiterOption func(*Limiter)

// WithLimit overrides the message ceiling.
func WithLimit(n int) LimiterOption {
	return func(l *Limiter) { l.limit = n }
}

// WithWindow overrides the rolling window length.
func WithWindow(d time.Duration) LimiterOption {
	return func(l *Limiter) { l.window = d }
}

// WithClock overrides the time source. Tests use it for deterministic windows.
func WithClock(now func() time.Time) LimiterOption {
	return func(l *Limiter) { l.now = now }
}

// NewLimiter creates a Limiter backed by the given pool.
func NewLimiter(pool *pgxpool.Pool, logger log.Logger, opts ...LimiterOption) (*Limiter, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is required")
	}
	return newLimiter(pool, logger, opts...), nil
}

func newLimiter(db querier, logger log.Logger, opts ...LimiterOption) *Limiter {
	if logger == nil {
		logger = log.NewNop()
	}
	l := &Limiter{
		db:     db,
		limit:  DefaultLimit,
		window: DefaultWindow,
		logger: logger,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Limit returns the message ceiling per window.
func (l *Limiter) Limit() int { return l.limit }

// Window returns the rolling window length.
func (l *Limiter) Window() time.Duration { return l.window }

// Check refuses with ErrQuotaExceeded when the user has no remaining
// allowance. A log read failure is logged and the message is allowed through.
func (l *Limiter) Check(ctx context.Context, userID string) error {
	events, err := l.eventsInWindow(ctx, userID)
	if err != nil {
		l.logger.Warn("quota check degraded, allowing message", "user_id", userID, "error", err)
		return nil
	}

	if CountInWindow(events, l.now(), l.window) >= l.limit {
		return ErrQuotaExceeded
	}
	return nil
}

// Record appends one usage event for the user. Write failures are logged and
// swallowed so persistence trouble never blocks an accepted message.
func (l *Limiter) Record(ctx context.Context, userID string) {
	_, err := l.db.Exec(ctx,
		`INSERT INTO quota_events (user_id, created_at) VALUES ($1, $2)`,
		userID, l.now().UTC())
	if err != nil {
		l.logger.Warn("recording quota event failed", "user_id", userID, "error", err)
	}
}

// Usage reports how many messages the user has used and may still send.
func (l *Limiter) Usage(ctx context.Context, userID string) (used, remaining int, err error) {
	events, err := l.eventsInWindow(ctx, userID)
	if err != nil {
		return 0, 0, err
	}

	now := l.now()
	used = CountInWindow(events, now, l.window)
	return used, Remaining(events, now, l.window, l.limit), nil
}

// eventsInWindow loads the user's event timestamps inside the current window.
// The cutoff is applied in SQL so old events never leave the database.
func (l *Limiter) eventsInWindow(ctx context.Context, userID string) ([]time.Time, error) {
	cutoff := l.now().Add(-l.window).UTC()

	rows, err := l.db.Query(ctx,
		`SELECT created_at FROM quota_events WHERE user_id = $1 AND created_at > $2`,
		userID, cutoff)
	if err != nil {
		return nil, fmt.Errorf("querying quota events: %w", err)
	}
	defer rows.Close()

	var events []time.Time
	for rows.Next() {
		var at time.Time
		if err := rows.Scan(&at); err != nil {
			return nil, fmt.Errorf("scanning quota event: %w", err)
		}
		events = append(events, at)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading quota events: %w", err)
	}
	return events, nil
}
