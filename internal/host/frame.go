package host

import (
	"context"
	"encoding/json"
	"time"
)

// ReplyChannel delivers messages to one execution context. Implementations
// must be comparable; the controller matches incoming messages against its
// frame's channel by identity.
type ReplyChannel interface {
	Send(msg any) error
}

// Frame is an isolated browsing context the controller renders into.
type Frame interface {
	SetContent(html string) error
	Channel() ReplyChannel
}

// ToolCaller performs a tools/call on behalf of the sandbox.
type ToolCaller interface {
	CallTool(ctx context.Context, params json.RawMessage) (any, error)
}

// ToolCallerFunc adapts a function to ToolCaller.
type ToolCallerFunc func(ctx context.Context, params json.RawMessage) (any, error)

func (f ToolCallerFunc) CallTool(ctx context.Context, params json.RawMessage) (any, error) {
	return f(ctx, params)
}

// Load outcomes reported to an Observer.
const (
	OutcomeRendered = "rendered"
	OutcomeFailed   = "failed"
	OutcomeStale    = "stale"
	OutcomeError    = "error"
)

// Observer receives controller events. monitoring.Metrics implements it.
type Observer interface {
	LoadCompleted(outcome string, d time.Duration)
	ResourceResolved(kind string, ok bool, d time.Duration)
	ToolCallCompleted(ok bool, d time.Duration)
}

type nopObserver struct{}

func (nopObserver) LoadCompleted(string, time.Duration)          {}
func (nopObserver) ResourceResolved(string, bool, time.Duration) {}
func (nopObserver) ToolCallCompleted(bool, time.Duration)        {}
