package conversation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
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

const conversationCols = `id, owner_id, title, created_at, updated_at`

const messageCols = `id, conversation_id, role, content, tool_results, created_at`

// Store manages conversation persistence backed by PostgreSQL.
// Every read and write is scoped to an owner; a mismatched owner behaves
// exactly like a missing row.
//
// Store is safe for concurrent use by multiple goroutines.
type Store struct {
	db     querier
	logger log.Logger
}

// NewStore creates a conversation Store.
func NewStore(pool *pgxpool.Pool, logger log.Logger) (*Store, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is required")
	}
	return newStore(pool, logger), nil
}

func newStore(db querier, logger log.Logger) *Store {
	if logger == nil {
		logger = log.NewNop()
	}
	return &Store{db: db, logger: logger}
}

// Create starts a new conversation for the owner.
func (s *Store) Create(ctx context.Context, ownerID, title string) (*Conversation, error) {
	if ownerID == "" {
		return nil, fmt.Errorf("owner is required")
	}

	var c Conversation
	err := s.db.QueryRow(ctx,
		`INSERT INTO conversations (owner_id, title) VALUES ($1, $2)
		 RETURNING `+conversationCols,
		ownerID, title).
		Scan(&c.ID, &c.OwnerID, &c.Title, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("creating conversation: %w", err)
	}

	s.logger.Debug("created conversation", "id", c.ID, "owner_id", ownerID)
	return &c, nil
}

// Get retrieves one conversation owned by the given user.
func (s *Store) Get(ctx context.Context, ownerID string, id uuid.UUID) (*Conversation, error) {
	var c Conversation
	err := s.db.QueryRow(ctx,
		`SELECT `+conversationCols+` FROM conversations WHERE id = $1 AND owner_id = $2`,
		id, ownerID).
		Scan(&c.ID, &c.OwnerID, &c.Title, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting conversation: %w", err)
	}
	return &c, nil
}

// List returns the owner's conversations, most recently updated first.
func (s *Store) List(ctx context.Context, ownerID string, limit int) ([]Conversation, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.Query(ctx,
		`SELECT `+conversationCols+` FROM conversations
		 WHERE owner_id = $1 ORDER BY updated_at DESC LIMIT $2`,
		ownerID, limit)
	if err != nil {
		return nil, fmt.Errorf("listing conversations: %w", err)
	}
	defer rows.Close()

	var out []Conversation
	for rows.Next() {
		var c Conversation
		if err := rows.Scan(&c.ID, &c.OwnerID, &c.Title, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning conversation: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading conversations: %w", err)
	}
	return out, nil
}

// SetTitle updates a conversation's title.
func (s *Store) SetTitle(ctx context.Context, ownerID string, id uuid.UUID, title string) error {
	tag, err := s.db.Exec(ctx,
		`UPDATE conversations SET title = $1, updated_at = now()
		 WHERE id = $2 AND owner_id = $3`,
		title, id, ownerID)
	if err != nil {
		return fmt.Errorf("updating conversation title: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a conversation and, through the schema's cascade, all of
// its messages.
func (s *Store) Delete(ctx context.Context, ownerID string, id uuid.UUID) error {
	tag, err := s.db.Exec(ctx,
		`DELETE FROM conversations WHERE id = $1 AND owner_id = $2`,
		id, ownerID)
	if err != nil {
		return fmt.Errorf("deleting conversation: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	s.logger.Debug("deleted conversation", "id", id, "owner_id", ownerID)
	return nil
}

// txBeginner is satisfied by *pgxpool.Pool; pgx.Tx is not a beginner, so a
// Store already running inside a transaction keeps using it directly.
type txBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// AppendMessage adds one message to an owned conversation and bumps its
// updated_at so List ordering tracks activity. On a pool the ownership
// check, insert and bump run in one transaction; a conversation deleted
// concurrently surfaces as ErrNotFound, not a constraint error.
func (s *Store) AppendMessage(ctx context.Context, ownerID string, conversationID uuid.UUID, role, content string, toolResults json.RawMessage) (*Message, error) {
	if role != RoleUser && role != RoleAssistant {
		return nil, fmt.Errorf("invalid message role %q", role)
	}

	if beginner, ok := s.db.(txBeginner); ok {
		var m *Message
		err := pgx.BeginFunc(ctx, beginner, func(tx pgx.Tx) error {
			var err error
			m, err = s.appendMessage(ctx, tx, ownerID, conversationID, role, content, toolResults)
			return err
		})
		if err != nil {
			return nil, err
		}
		return m, nil
	}
	return s.appendMessage(ctx, s.db, ownerID, conversationID, role, content, toolResults)
}

func (s *Store) appendMessage(ctx context.Context, q querier, ownerID string, conversationID uuid.UUID, role, content string, toolResults json.RawMessage) (*Message, error) {
	// Ownership gate before the insert; a foreign conversation ID must look
	// exactly like a missing one.
	var one int
	err := q.QueryRow(ctx,
		`SELECT 1 FROM conversations WHERE id = $1 AND owner_id = $2`,
		conversationID, ownerID).Scan(&one)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("checking conversation: %w", err)
	}

	var m Message
	err = q.QueryRow(ctx,
		`INSERT INTO messages (conversation_id, role, content, tool_results)
		 VALUES ($1, $2, $3, $4)
		 RETURNING `+messageCols,
		conversationID, role, content, toolResults).
		Scan(&m.ID, &m.ConversationID, &m.Role, &m.Content, &m.ToolResults, &m.CreatedAt)
	if err != nil {
		// The conversation can vanish between the check and the insert; the
		// broken reference reads the same as a missing conversation.
		if isForeignKeyViolation(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("appending message: %w", err)
	}

	if _, err := q.Exec(ctx,
		`UPDATE conversations SET updated_at = now() WHERE id = $1`,
		conversationID); err != nil {
		return nil, fmt.Errorf("bumping conversation updated_at: %w", err)
	}
	return &m, nil
}

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.ForeignKeyViolation
}

// Messages returns a conversation's messages in chronological order.
func (s *Store) Messages(ctx context.Context, ownerID string, conversationID uuid.UUID) ([]Message, error) {
	if _, err := s.Get(ctx, ownerID, conversationID); err != nil {
		return nil, err
	}

	rows, err := s.db.Query(ctx,
		`SELECT `+messageCols+` FROM messages
		 WHERE conversation_id = $1 ORDER BY created_at, id`,
		conversationID)
	if err != nil {
		return nil, fmt.Errorf("listing messages: %w", err)
	}
	defer rows.Close()

	var out []Message
	for rows.Next() {
		var m Message
		if err := rows.Scan(&m.ID, &m.ConversationID, &m.Role, &m.Content, &m.ToolResults, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning message: %w", err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading messages: %w", err)
	}
	return out, nil
}
