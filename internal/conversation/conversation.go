// Package conversation persists chat history: conversations owned by a user
// and the ordered messages inside them.
package conversation

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound reports that a conversation does not exist or is not owned by
// the requesting user. The two cases are not distinguished; a caller cannot
// probe for other users' conversation IDs.
var ErrNotFound = errors.New("conversation: not found")

// Message roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Conversation is one chat thread.
type Conversation struct {
	ID        uuid.UUID `json:"id"`
	OwnerID   string    `json:"-"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Message is one turn inside a conversation. ToolResults carries the raw
// outputs of any tools invoked while producing an assistant message.
type Message struct {
	ID             uuid.UUID       `json:"id"`
	ConversationID uuid.UUID       `json:"-"`
	Role           string          `json:"role"`
	Content        string          `json:"content"`
	ToolResults    json.RawMessage `json:"toolResults,omitempty"`
	CreatedAt      time.Time       `json:"createdAt"`
}
