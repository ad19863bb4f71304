package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"

	"github.com/firebase/genkit/go/ai"
	"github.com/google/uuid"

	"github.com/dropdawn/dropdawn/internal/chat"
	"github.com/dropdawn/dropdawn/internal/conversation"
	"github.com/dropdawn/dropdawn/internal/log"
	"github.com/dropdawn/dropdawn/internal/provider"
	"github.com/dropdawn/dropdawn/internal/quota"
	"github.com/dropdawn/dropdawn/internal/tools"
)

// SSE event types for chat streaming.
const (
	EventChunk      = "chunk"       // Partial response text
	EventToolCall   = "tool-call"   // A tool began executing
	EventToolResult = "tool-result" // A tool finished with output
	EventDone       = "done"        // Stream completed successfully
	EventError      = "error"       // Error occurred during streaming
)

// ChatRequest is the POST /api/v1/chat body. Messages carries the
// conversation so far with the new user message last; for persistent
// sessions the server-side history selected by ConversationID is
// authoritative and only the final message is consumed.
type ChatRequest struct {
	ConversationID *uuid.UUID  `json:"conversationId,omitempty"`
	Provider       string      `json:"provider,omitempty"`
	Model          string      `json:"model,omitempty"`
	Messages       []chat.Turn `json:"messages"`
	IsTemporary    bool        `json:"isTemporary,omitempty"`
}

// ChunkPayload is the SSE data payload for streaming text chunks.
type ChunkPayload struct {
	Text string `json:"text"`
}

// ToolCallPayload is the SSE data payload when a tool starts.
type ToolCallPayload struct {
	Name string `json:"name"`
}

// ToolResultPayload is the SSE data payload when a tool finishes.
type ToolResultPayload struct {
	Name   string `json:"name"`
	Output any    `json:"output"`
}

// DonePayload is the SSE data payload when streaming completes successfully.
type DonePayload struct {
	Response       string     `json:"response"`
	ConversationID *uuid.UUID `json:"conversationId,omitempty"`
}

// ErrorPayload is the SSE data payload when an error occurs mid-stream.
type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// chatHandler serves the streaming chat endpoint.
type chatHandler struct {
	agent  *chat.Agent
	logger log.Logger
}

// send handles POST /api/v1/chat.
//
// The response is an SSE stream, but its headers are withheld until the
// first event so failures before any output map to real HTTP status codes:
// 400 for bad input or missing provider credentials, 401 for persistent
// chat without identity, 404 for a foreign conversation, 429 at the message
// ceiling. Errors after streaming began become error events instead.
func (h *chatHandler) send(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_request", "invalid request body", h.logger)
		return
	}
	last := len(req.Messages) - 1
	if last < 0 || req.Messages[last].Content == "" {
		WriteError(w, http.StatusBadRequest, "missing_message", "messages must end with a non-empty user message", h.logger)
		return
	}
	if req.Messages[last].Role != conversation.RoleUser {
		WriteError(w, http.StatusBadRequest, "invalid_messages", "messages must end with a user message", h.logger)
		return
	}

	userID, authenticated := userIDFromContext(r.Context())
	if !req.IsTemporary && !authenticated {
		WriteError(w, http.StatusUnauthorized, "authentication_required", "sign in or use a temporary session", h.logger)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		WriteError(w, http.StatusInternalServerError, "streaming_unsupported", "streaming not supported", h.logger)
		return
	}

	stream := &sseStream{w: w, flusher: flusher}
	ctx := tools.ContextWithEmitter(r.Context(), &streamEmitter{stream: stream, logger: h.logger})

	resp, err := h.agent.ExecuteStream(ctx, chat.Request{
		OwnerID:        userID,
		ConversationID: req.ConversationID,
		Provider:       req.Provider,
		Model:          req.Model,
		Message:        req.Messages[last].Content,
		Ephemeral:      req.IsTemporary,
		History:        req.Messages[:last],
	}, func(_ context.Context, chunk *ai.ModelResponseChunk) error {
		if text := chunk.Text(); text != "" {
			return stream.writeEvent(EventChunk, ChunkPayload{Text: text})
		}
		return nil
	})

	if err != nil {
		h.fail(w, stream, err)
		return
	}

	if err := stream.writeEvent(EventDone, DonePayload{
		Response:       resp.Text,
		ConversationID: resp.ConversationID,
	}); err != nil {
		h.logger.Debug("writing done event", "error", err)
	}
}

// fail reports an execution error either as an HTTP status (stream untouched)
// or as a terminal SSE error event (stream already started).
func (h *chatHandler) fail(w http.ResponseWriter, stream *sseStream, err error) {
	status, code := http.StatusInternalServerError, "internal_error"

	var missing *provider.MissingCredentialsError
	switch {
	case errors.As(err, &missing):
		status, code = http.StatusBadRequest, "missing_provider_credentials"
	case errors.Is(err, provider.ErrUnknownProvider):
		status, code = http.StatusBadRequest, "unknown_provider"
	case errors.Is(err, quota.ErrQuotaExceeded):
		status, code = http.StatusTooManyRequests, "quota_exceeded"
	case errors.Is(err, chat.ErrEphemeralLimit):
		status, code = http.StatusTooManyRequests, "temporary_session_limit"
	case errors.Is(err, conversation.ErrNotFound):
		status, code = http.StatusNotFound, "conversation_not_found"
	}

	if errors.Is(err, context.Canceled) {
		h.logger.Info("client disconnected mid-stream")
		return
	}

	if status == http.StatusInternalServerError {
		h.logger.Error("chat execution failed", "error", err)
	} else {
		h.logger.Debug("chat request refused", "code", code, "error", err)
	}

	message := err.Error()
	if status == http.StatusInternalServerError {
		message = "chat execution failed"
	}

	if stream.hasStarted() {
		_ = stream.writeEvent(EventError, ErrorPayload{Code: code, Message: message})
		return
	}
	WriteError(w, status, code, message, h.logger)
}

// sseStream writes SSE events, sending headers lazily on the first event.
type sseStream struct {
	w       io.Writer
	flusher http.Flusher

	mu      sync.Mutex
	started bool
}

func (s *sseStream) hasStarted() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.started
}

// writeEvent writes a single SSE event with JSON-encoded data.
// SSE format: "event: <type>\ndata: <json>\n\n"
func (s *sseStream) writeEvent(event string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		if rw, ok := s.w.(http.ResponseWriter); ok {
			rw.Header().Set("Content-Type", "text/event-stream")
			rw.Header().Set("Cache-Control", "no-cache")
			rw.Header().Set("Connection", "keep-alive")
			rw.Header().Set("X-Accel-Buffering", "no")
		}
		s.started = true
	}

	if _, err := fmt.Fprintf(s.w, "event: %s\ndata: %s\n\n", event, payload); err != nil {
		return fmt.Errorf("write event: %w", err)
	}

	s.flusher.Flush()
	return nil
}

// streamEmitter forwards tool lifecycle events onto the SSE stream.
type streamEmitter struct {
	stream *sseStream
	logger log.Logger
}

func (e *streamEmitter) ToolStarted(name string) {
	if err := e.stream.writeEvent(EventToolCall, ToolCallPayload{Name: name}); err != nil {
		e.logger.Debug("writing tool-call event", "tool", name, "error", err)
	}
}

func (e *streamEmitter) ToolFinished(name string, output any) {
	if err := e.stream.writeEvent(EventToolResult, ToolResultPayload{Name: name, Output: output}); err != nil {
		e.logger.Debug("writing tool-result event", "tool", name, "error", err)
	}
}

func (e *streamEmitter) ToolFailed(name string) {
	if err := e.stream.writeEvent(EventToolResult, ToolResultPayload{
		Name:   name,
		Output: map[string]string{"error": "tool execution failed"},
	}); err != nil {
		e.logger.Debug("writing tool-result event", "tool", name, "error", err)
	}
}
