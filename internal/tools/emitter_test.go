package tools

import (
	"context"
	"errors"
	"testing"

	"github.com/firebase/genkit/go/ai"
)

type recordingEmitter struct {
	started  []string
	finished []string
	failed   []string
	outputs  []any
}

func (r *recordingEmitter) ToolStarted(name string) { r.started = append(r.started, name) }
func (r *recordingEmitter) ToolFinished(name string, output any) {
	r.finished = append(r.finished, name)
	r.outputs = append(r.outputs, output)
}
func (r *recordingEmitter) ToolFailed(name string) { r.failed = append(r.failed, name) }

func TestWithEventsEmitsLifecycle(t *testing.T) {
	emitter := &recordingEmitter{}
	ctx := &ai.ToolContext{Context: ContextWithEmitter(context.Background(), emitter)}

	wrapped := WithEvents("echo", func(_ *ai.ToolContext, in string) (string, error) {
		return in, nil
	})

	out, err := wrapped(ctx, "hello")
	if err != nil {
		t.Fatalf("wrapped handler error = %v", err)
	}
	if out != "hello" {
		t.Errorf("output = %q, want hello", out)
	}
	if len(emitter.started) != 1 || emitter.started[0] != "echo" {
		t.Errorf("started events = %v, want [echo]", emitter.started)
	}
	if len(emitter.finished) != 1 || emitter.outputs[0] != "hello" {
		t.Errorf("finished events = %v outputs = %v", emitter.finished, emitter.outputs)
	}
	if len(emitter.failed) != 0 {
		t.Errorf("failed events = %v, want none", emitter.failed)
	}
}

func TestWithEventsOnHandlerError(t *testing.T) {
	emitter := &recordingEmitter{}
	ctx := &ai.ToolContext{Context: ContextWithEmitter(context.Background(), emitter)}

	wrapped := WithEvents("broken", func(_ *ai.ToolContext, _ string) (string, error) {
		return "", errors.New("boom")
	})

	if _, err := wrapped(ctx, "x"); err == nil {
		t.Fatal("expected handler error")
	}
	if len(emitter.failed) != 1 || emitter.failed[0] != "broken" {
		t.Errorf("failed events = %v, want [broken]", emitter.failed)
	}
	if len(emitter.finished) != 0 {
		t.Errorf("finished events = %v, want none", emitter.finished)
	}
}

func TestWithEventsWithoutEmitter(t *testing.T) {
	wrapped := WithEvents("plain", func(_ *ai.ToolContext, in int) (int, error) {
		return in * 2, nil
	})

	out, err := wrapped(&ai.ToolContext{Context: context.Background()}, 21)
	if err != nil {
		t.Fatalf("wrapped handler error = %v", err)
	}
	if out != 42 {
		t.Errorf("output = %d, want 42", out)
	}
}
