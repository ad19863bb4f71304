package conversation

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/dropdawn/dropdawn/internal/log"
)

// scriptedRow feeds one canned result through the pgx.Row interface.
type scriptedRow struct {
	err  error
	scan func(dest ...any) error
}

func (r scriptedRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	if r.scan != nil {
		return r.scan(dest...)
	}
	return nil
}

// scriptedQuerier returns its rows in order, one per QueryRow call.
type scriptedQuerier struct {
	rows []scriptedRow
	next int
}

func (q *scriptedQuerier) Exec(context.Context, string, ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, nil
}

func (q *scriptedQuerier) Query(context.Context, string, ...any) (pgx.Rows, error) {
	return nil, errors.New("query not scripted")
}

func (q *scriptedQuerier) QueryRow(context.Context, string, ...any) pgx.Row {
	if q.next >= len(q.rows) {
		return scriptedRow{err: errors.New("unexpected QueryRow")}
	}
	row := q.rows[q.next]
	q.next++
	return row
}

func TestNewStoreRequiresPool(t *testing.T) {
	if _, err := NewStore(nil, log.NewNop()); err == nil {
		t.Fatal("NewStore(nil) expected error")
	}
}

func TestCreateRequiresOwner(t *testing.T) {
	s := newStore(nil, log.NewNop())

	if _, err := s.Create(context.Background(), "", "title"); err == nil {
		t.Fatal("Create() with empty owner expected error")
	}
}

func TestAppendMessageRejectsUnknownRole(t *testing.T) {
	s := newStore(nil, log.NewNop())

	_, err := s.AppendMessage(context.Background(), "owner", uuid.New(), "system", "hi", nil)
	if err == nil {
		t.Fatal("AppendMessage() with unknown role expected error")
	}
	if errors.Is(err, ErrNotFound) {
		t.Fatal("role validation must run before the ownership lookup")
	}
}

func TestAppendMessageUnownedConversation(t *testing.T) {
	s := newStore(&scriptedQuerier{
		rows: []scriptedRow{{err: pgx.ErrNoRows}},
	}, log.NewNop())

	_, err := s.AppendMessage(context.Background(), "owner", uuid.New(), RoleUser, "hi", nil)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("error = %v, want ErrNotFound", err)
	}
}

// A conversation deleted between the ownership check and the insert shows up
// as a foreign key violation; callers must see ErrNotFound, not a raw
// constraint error.
func TestAppendMessageConcurrentDelete(t *testing.T) {
	s := newStore(&scriptedQuerier{
		rows: []scriptedRow{
			{scan: func(dest ...any) error {
				if p, ok := dest[0].(*int); ok {
					*p = 1
				}
				return nil
			}},
			{err: &pgconn.PgError{Code: pgerrcode.ForeignKeyViolation}},
		},
	}, log.NewNop())

	_, err := s.AppendMessage(context.Background(), "owner", uuid.New(), RoleUser, "hi", nil)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("error = %v, want ErrNotFound", err)
	}
}
