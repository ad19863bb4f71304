// Package chat runs the conversational agent: it resolves the requested
// model, enforces the message allowance, drives the tool-calling loop and
// persists the finished turn.
package chat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"
	"github.com/google/uuid"

	"github.com/dropdawn/dropdawn/internal/conversation"
	"github.com/dropdawn/dropdawn/internal/log"
	"github.com/dropdawn/dropdawn/internal/provider"
	"github.com/dropdawn/dropdawn/internal/tools"
)

const (
	// DefaultMaxTurns caps the tool-calling loop per message.
	DefaultMaxTurns = 5

	// EphemeralMessageCap bounds a temporary session's history. Temporary
	// sessions skip the quota log, so the cap is the only brake on them.
	EphemeralMessageCap = 20

	// fallbackResponse is returned when the model produces no text at all.
	fallbackResponse = "I apologize, but I couldn't generate a response. Please try rephrasing your question."

	systemPrompt = `You are Dropdawn, a helpful assistant that can chat, look things up and build things.

You have tools for arithmetic, weather, web search, PDF and invoice generation, screenshots, portfolio links, and deploying websites. Use them whenever they would give a better answer than recalling from memory. When a tool reports an error, explain the problem to the user instead of retrying blindly.

When you deploy or modify a site, always include the resulting URL in your reply. Keep answers concise and direct.`

	titlePrompt = `Generate a very short title (at most six words) summarizing the user's message. Reply with the title only: no quotes, no punctuation at the end.`
)

// ErrEphemeralLimit reports that a temporary session hit its message cap.
// Callers map it to HTTP 429.
var ErrEphemeralLimit = errors.New("chat: temporary session message limit reached")

// Turn is one prior exchange supplied by an unauthenticated client.
// Temporary sessions keep history client-side.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Request is one chat message to execute.
type Request struct {
	// OwnerID identifies the authenticated user. Empty for ephemeral requests.
	OwnerID string

	// ConversationID selects an existing conversation. Nil starts a new one.
	ConversationID *uuid.UUID

	// Provider and Model select the backend. Both may be empty.
	Provider string
	Model    string

	// Message is the user's input.
	Message string

	// Ephemeral skips persistence and quota. History must then be carried
	// in the request itself.
	Ephemeral bool
	History   []Turn
}

// ToolResult is one tool invocation recorded during a turn.
type ToolResult struct {
	Name   string `json:"name"`
	Output any    `json:"output"`
}

// Response is the completed turn.
type Response struct {
	ConversationID *uuid.UUID   `json:"conversationId,omitempty"`
	Text           string       `json:"text"`
	ToolResults    []ToolResult `json:"toolResults,omitempty"`
}

// StreamCallback receives each response chunk as the model produces it.
// Returning an error aborts the stream.
type StreamCallback func(ctx context.Context, chunk *ai.ModelResponseChunk) error

// ConversationStore persists conversations and their messages.
// *conversation.Store is the production implementation.
type ConversationStore interface {
	Create(ctx context.Context, ownerID, title string) (*conversation.Conversation, error)
	Get(ctx context.Context, ownerID string, id uuid.UUID) (*conversation.Conversation, error)
	Messages(ctx context.Context, ownerID string, conversationID uuid.UUID) ([]conversation.Message, error)
	AppendMessage(ctx context.Context, ownerID string, conversationID uuid.UUID, role, content string, toolResults json.RawMessage) (*conversation.Message, error)
}

// QuotaKeeper gates persistent messages against the rolling allowance.
// *quota.Limiter is the production implementation.
type QuotaKeeper interface {
	Check(ctx context.Context, userID string) error
	Record(ctx context.Context, userID string)
}

// Config contains all required parameters for the Agent.
type Config struct {
	Genkit        *genkit.Genkit
	Conversations ConversationStore
	Quota         QuotaKeeper
	Tools         []ai.ToolRef
	Logger        log.Logger

	// MaxTurns caps the tool-calling loop. Zero uses DefaultMaxTurns.
	MaxTurns int
}

// validate checks if all required parameters are present.
func (cfg Config) validate() error {
	if cfg.Genkit == nil {
		return errors.New("genkit instance is required")
	}
	if cfg.Conversations == nil {
		return errors.New("conversation store is required")
	}
	if cfg.Quota == nil {
		return errors.New("quota limiter is required")
	}
	if len(cfg.Tools) == 0 {
		return errors.New("at least one tool is required")
	}
	if cfg.Logger == nil {
		return errors.New("logger is required")
	}
	return nil
}

// Agent executes chat requests. All configuration is captured immutably at
// construction, so an Agent is safe for concurrent use.
type Agent struct {
	g             *genkit.Genkit
	conversations ConversationStore
	quota         QuotaKeeper
	toolRefs      []ai.ToolRef
	logger        log.Logger
	maxTurns      int
}

// New creates an Agent with required configuration.
func New(cfg Config) (*Agent, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	maxTurns := cfg.MaxTurns
	if maxTurns <= 0 {
		maxTurns = DefaultMaxTurns
	}

	a := &Agent{
		g:             cfg.Genkit,
		conversations: cfg.Conversations,
		quota:         cfg.Quota,
		toolRefs:      cfg.Tools,
		logger:        cfg.Logger,
		maxTurns:      maxTurns,
	}

	a.logger.Info("chat agent initialized",
		"tools", len(a.toolRefs),
		"max_turns", a.maxTurns,
	)
	return a, nil
}

// Execute runs a chat request without streaming.
func (a *Agent) Execute(ctx context.Context, req Request) (*Response, error) {
	return a.ExecuteStream(ctx, req, nil)
}

// ExecuteStream runs a chat request, streaming chunks through callback when
// it is non-nil. The finished turn is returned after generation completes.
//
// Error mapping is the caller's concern, but the distinguished failures are
// provider.MissingCredentialsError, quota.ErrQuotaExceeded, ErrEphemeralLimit
// and conversation.ErrNotFound.
func (a *Agent) ExecuteStream(ctx context.Context, req Request, callback StreamCallback) (*Response, error) {
	p, err := provider.Parse(req.Provider)
	if err != nil {
		return nil, err
	}
	modelName, err := provider.Resolve(p, req.Model)
	if err != nil {
		return nil, err
	}

	if req.Ephemeral {
		return a.executeEphemeral(ctx, req, modelName, callback)
	}
	return a.executePersistent(ctx, req, modelName, callback)
}

func (a *Agent) executeEphemeral(ctx context.Context, req Request, modelName string, callback StreamCallback) (*Response, error) {
	if len(req.History) >= EphemeralMessageCap {
		return nil, ErrEphemeralLimit
	}

	messages := make([]*ai.Message, 0, len(req.History)+1)
	for _, turn := range req.History {
		switch turn.Role {
		case conversation.RoleAssistant:
			messages = append(messages, ai.NewModelMessage(ai.NewTextPart(turn.Content)))
		default:
			messages = append(messages, ai.NewUserMessage(ai.NewTextPart(turn.Content)))
		}
	}
	messages = append(messages, ai.NewUserMessage(ai.NewTextPart(req.Message)))

	text, toolResults, err := a.generate(ctx, modelName, messages, callback)
	if err != nil {
		return nil, err
	}
	return &Response{Text: text, ToolResults: toolResults}, nil
}

func (a *Agent) executePersistent(ctx context.Context, req Request, modelName string, callback StreamCallback) (*Response, error) {
	if err := a.quota.Check(ctx, req.OwnerID); err != nil {
		return nil, err
	}
	// The permitted message consumes allowance before generation starts, so
	// a failed or cancelled generation still counts against the window and
	// parallel requests cannot all pass Check with nothing recorded.
	a.quota.Record(ctx, req.OwnerID)

	conv, history, err := a.loadConversation(ctx, req)
	if err != nil {
		return nil, err
	}

	messages := append(history, ai.NewUserMessage(ai.NewTextPart(req.Message)))

	text, toolResults, err := a.generate(ctx, modelName, messages, callback)
	if err != nil {
		return nil, err
	}

	conv = a.persistTurn(ctx, req, conv, text, toolResults)

	resp := &Response{Text: text, ToolResults: toolResults}
	if conv != nil {
		resp.ConversationID = &conv.ID
	}
	return resp, nil
}

// loadConversation resolves the target conversation and its history as model
// messages. A nil ConversationID returns a nil conversation: the row is only
// created once an assistant response exists, so a failed generation leaves
// nothing behind in the listing.
func (a *Agent) loadConversation(ctx context.Context, req Request) (*conversation.Conversation, []*ai.Message, error) {
	if req.ConversationID == nil {
		return nil, nil, nil
	}

	conv, err := a.conversations.Get(ctx, req.OwnerID, *req.ConversationID)
	if err != nil {
		return nil, nil, err
	}

	stored, err := a.conversations.Messages(ctx, req.OwnerID, conv.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("loading history: %w", err)
	}

	history := make([]*ai.Message, 0, len(stored))
	for _, m := range stored {
		switch m.Role {
		case conversation.RoleAssistant:
			history = append(history, ai.NewModelMessage(ai.NewTextPart(m.Content)))
		default:
			history = append(history, ai.NewUserMessage(ai.NewTextPart(m.Content)))
		}
	}
	return conv, history, nil
}

// generate drives one tool-calling loop and collects tool outputs for
// persistence alongside any emitter already bound to the context.
func (a *Agent) generate(ctx context.Context, modelName string, messages []*ai.Message, callback StreamCallback) (string, []ToolResult, error) {
	collector := &collectingEmitter{next: tools.EmitterFromContext(ctx)}
	ctx = tools.ContextWithEmitter(ctx, collector)

	opts := []ai.GenerateOption{
		ai.WithModelName(modelName),
		ai.WithSystem(systemPrompt),
		ai.WithMessages(messages...),
		ai.WithTools(a.toolRefs...),
		ai.WithMaxTurns(a.maxTurns),
	}
	if callback != nil {
		opts = append(opts, ai.WithStreaming(func(ctx context.Context, chunk *ai.ModelResponseChunk) error {
			return callback(ctx, chunk)
		}))
	}

	resp, err := genkit.Generate(ctx, a.g, opts...)
	if err != nil {
		return "", nil, fmt.Errorf("generating response: %w", err)
	}

	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		a.logger.Warn("model returned empty response", "model", modelName)
		text = fallbackResponse
	}
	return text, collector.results(), nil
}

// persistTurn appends both sides of the turn, best-effort. A nil conv means
// this is the session's first assistant response; the conversation row is
// created here, titled from the message. Storage failures never surface to
// the user once a response exists.
func (a *Agent) persistTurn(ctx context.Context, req Request, conv *conversation.Conversation, text string, toolResults []ToolResult) *conversation.Conversation {
	if conv == nil {
		created, err := a.conversations.Create(ctx, req.OwnerID, a.titleFor(ctx, req))
		if err != nil {
			a.logger.Warn("starting conversation failed", "error", err)
			return nil
		}
		conv = created
	}

	if _, err := a.conversations.AppendMessage(ctx, req.OwnerID, conv.ID, conversation.RoleUser, req.Message, nil); err != nil {
		a.logger.Warn("persisting user message failed", "conversation_id", conv.ID, "error", err)
	}

	var rawResults json.RawMessage
	if len(toolResults) > 0 {
		if encoded, err := json.Marshal(toolResults); err == nil {
			rawResults = encoded
		} else {
			a.logger.Warn("encoding tool results failed", "conversation_id", conv.ID, "error", err)
		}
	}

	if _, err := a.conversations.AppendMessage(ctx, req.OwnerID, conv.ID, conversation.RoleAssistant, text, rawResults); err != nil {
		a.logger.Warn("persisting assistant message failed", "conversation_id", conv.ID, "error", err)
	}
	return conv
}

// titleFor produces a title for a new conversation. Falls back to a truncated
// echo of the message when the model cannot help.
func (a *Agent) titleFor(ctx context.Context, req Request) string {
	p, err := provider.Parse(req.Provider)
	if err == nil {
		if modelName, err := provider.Resolve(p, req.Model); err == nil {
			resp, err := genkit.Generate(ctx, a.g,
				ai.WithModelName(modelName),
				ai.WithSystem(titlePrompt),
				ai.WithMessages(ai.NewUserMessage(ai.NewTextPart(req.Message))),
			)
			if err == nil {
				if title := strings.TrimSpace(resp.Text()); title != "" {
					return truncateTitle(title)
				}
			} else {
				a.logger.Debug("title generation failed", "error", err)
			}
		}
	}
	return truncateTitle(req.Message)
}

func truncateTitle(s string) string {
	const maxTitle = 60
	s = strings.TrimSpace(s)
	runes := []rune(s)
	if len(runes) <= maxTitle {
		return s
	}
	return string(runes[:maxTitle-1]) + "…"
}

// collectingEmitter records finished tool outputs and forwards every event
// to the emitter that was already bound, if any.
type collectingEmitter struct {
	next tools.EventEmitter

	mu        sync.Mutex
	collected []ToolResult
}

func (c *collectingEmitter) ToolStarted(name string) {
	if c.next != nil {
		c.next.ToolStarted(name)
	}
}

func (c *collectingEmitter) ToolFinished(name string, output any) {
	c.mu.Lock()
	c.collected = append(c.collected, ToolResult{Name: name, Output: output})
	c.mu.Unlock()

	if c.next != nil {
		c.next.ToolFinished(name, output)
	}
}

func (c *collectingEmitter) ToolFailed(name string) {
	if c.next != nil {
		c.next.ToolFailed(name)
	}
}

func (c *collectingEmitter) results() []ToolResult {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.collected
}
