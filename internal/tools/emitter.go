package tools

import (
	"context"

	"github.com/firebase/genkit/go/ai"
)

// emitterKey uses an empty struct for a zero-allocation context key.
type emitterKey struct{}

// EventEmitter receives tool lifecycle events. The streaming chat handler
// binds one per request so clients render "tool X is running" before its
// result arrives. Presentation is the subscriber's concern; the emitter only
// carries the tool name and raw output.
type EventEmitter interface {
	// ToolStarted signals that a tool began executing.
	ToolStarted(name string)

	// ToolFinished signals completion and carries the tool output. Outputs
	// with a populated error field still arrive here: a tool returning
	// failure information is a successful tool completion.
	ToolFinished(name string, output any)

	// ToolFailed signals that the handler itself failed (input decoding,
	// panic recovery at the framework level).
	ToolFailed(name string)
}

// EmitterFromContext retrieves the EventEmitter from context.
// Returns nil when none is bound; callers degrade to no events.
func EmitterFromContext(ctx context.Context) EventEmitter {
	emitter, _ := ctx.Value(emitterKey{}).(EventEmitter)
	return emitter
}

// ContextWithEmitter binds an EventEmitter to the context for one request.
func ContextWithEmitter(ctx context.Context, emitter EventEmitter) context.Context {
	return context.WithValue(ctx, emitterKey{}, emitter)
}

// WithEvents wraps a typed tool handler to emit lifecycle events around
// execution. With no emitter in context the handler runs unchanged.
func WithEvents[In, Out any](name string, fn func(*ai.ToolContext, In) (Out, error)) func(*ai.ToolContext, In) (Out, error) {
	return func(ctx *ai.ToolContext, input In) (Out, error) {
		emitter := EmitterFromContext(ctx.Context)
		if emitter != nil {
			emitter.ToolStarted(name)
		}

		result, err := fn(ctx, input)

		if emitter != nil {
			if err != nil {
				emitter.ToolFailed(name)
			} else {
				emitter.ToolFinished(name, result)
			}
		}

		return result, err
	}
}
