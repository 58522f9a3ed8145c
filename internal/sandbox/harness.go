package sandbox

import (
	"context"
	_ "embed"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dop251/goja"

	"github.com/GriffinCanCode/AgentOS/mcpview/internal/protocol"
)

//go:embed dom.js
var domSource string

var domProgram = goja.MustCompile("dom.js", domSource, true)

// DefaultTimeout bounds a single harness evaluation.
const DefaultTimeout = 5 * time.Second

// LogEntry is a captured console call.
type LogEntry struct {
	Level   string
	Message string
	Time    time.Time
}

// Harness runs the sandbox runtime headlessly against a minimal document
// model. Messages the runtime posts to its parent are captured as JSON and
// host replies are delivered with Deliver.
type Harness struct {
	vm      *goja.Runtime
	timeout time.Duration
	mu      sync.Mutex

	console   []LogEntry
	posted    []json.RawMessage
	captureMu sync.Mutex
}

// NewHarness creates a harness. A non-positive timeout selects DefaultTimeout.
func NewHarness(timeout time.Duration) (*Harness, error) {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	h := &Harness{
		vm:      goja.New(),
		timeout: timeout,
	}
	if err := h.setupGlobals(); err != nil {
		return nil, err
	}
	if _, err := h.vm.RunProgram(domProgram); err != nil {
		return nil, fmt.Errorf("failed to install document model: %w", err)
	}
	return h, nil
}

func (h *Harness) setupGlobals() error {
	for _, name := range []string{"require", "process", "module", "exports"} {
		if err := h.vm.Set(name, goja.Undefined()); err != nil {
			return err
		}
	}

	console := h.vm.NewObject()
	for _, level := range []string{"log", "info", "warn", "error", "debug"} {
		if err := console.Set(level, h.consoleFunc(level)); err != nil {
			return err
		}
	}
	if err := h.vm.Set("console", console); err != nil {
		return err
	}

	if err := h.vm.Set("__post", func(message string) {
		h.captureMu.Lock()
		h.posted = append(h.posted, json.RawMessage(message))
		h.captureMu.Unlock()
	}); err != nil {
		return err
	}

	return h.vm.Set("atob", func(call goja.FunctionCall) goja.Value {
		raw, err := base64.StdEncoding.DecodeString(call.Argument(0).String())
		if err != nil {
			panic(h.vm.NewTypeError("invalid base64"))
		}
		runes := make([]rune, len(raw))
		for i, b := range raw {
			runes[i] = rune(b)
		}
		return h.vm.ToValue(string(runes))
	})
}

func (h *Harness) consoleFunc(level string) func(goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		parts := make([]string, len(call.Arguments))
		for i, arg := range call.Arguments {
			parts[i] = arg.String()
		}

		h.captureMu.Lock()
		h.console = append(h.console, LogEntry{
			Level:   level,
			Message: strings.Join(parts, " "),
			Time:    time.Now(),
		})
		h.captureMu.Unlock()

		return goja.Undefined()
	}
}

// run evaluates src with the harness timeout. Pending promise reactions are
// drained before it returns.
func (h *Harness) run(ctx context.Context, src string) (goja.Value, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	timer := time.NewTimer(h.timeout)
	defer timer.Stop()
	done := make(chan struct{})
	stopped := make(chan struct{})

	go func() {
		defer close(stopped)
		select {
		case <-timer.C:
			h.vm.Interrupt("execution timeout exceeded")
		case <-ctx.Done():
			h.vm.Interrupt("context cancelled")
		case <-done:
		}
	}()

	val, err := h.vm.RunString(src)
	close(done)
	<-stopped
	h.vm.ClearInterrupt()
	return val, err
}

// Boot executes a runtime script as the first inline script of the document.
func (h *Harness) Boot(ctx context.Context, script string) error {
	_, err := h.run(ctx, script)
	return err
}

// Mount appends an element to the body, or to the head when inHead is set.
// Registered custom elements are connected immediately.
func (h *Harness) Mount(ctx context.Context, tag string, attrs map[string]string, inHead bool) error {
	if attrs == nil {
		attrs = map[string]string{}
	}
	_, err := h.run(ctx, fmt.Sprintf("__mount(%s, %s, %t)", Serialize(tag), Serialize(attrs), inHead))
	return err
}

// Parsed marks the document interactive and fires DOMContentLoaded.
func (h *Harness) Parsed(ctx context.Context) error {
	_, err := h.run(ctx, "__parsed()")
	return err
}

// Deliver posts a host message to the runtime as if sent by the parent window.
func (h *Harness) Deliver(ctx context.Context, msg any) error {
	return h.deliver(ctx, msg, "undefined")
}

// DeliverForeign posts a message whose source is not the parent window.
func (h *Harness) DeliverForeign(ctx context.Context, msg any) error {
	return h.deliver(ctx, msg, "{}")
}

func (h *Harness) deliver(ctx context.Context, msg any, source string) error {
	raw, err := protocol.Encode(msg)
	if err != nil {
		return err
	}
	_, err = h.run(ctx, fmt.Sprintf("__deliver(%s, %s)", raw, source))
	return err
}

// Eval evaluates expr and exports the result.
func (h *Harness) Eval(ctx context.Context, expr string) (any, error) {
	val, err := h.run(ctx, expr)
	if err != nil {
		return nil, err
	}
	if val == nil || goja.IsUndefined(val) || goja.IsNull(val) {
		return nil, nil
	}
	return val.Export(), nil
}

// Posted returns and clears the messages sent to the parent window.
func (h *Harness) Posted() []json.RawMessage {
	h.captureMu.Lock()
	defer h.captureMu.Unlock()
	out := h.posted
	h.posted = nil
	return out
}

// Console returns the captured console output.
func (h *Harness) Console() []LogEntry {
	h.captureMu.Lock()
	defer h.captureMu.Unlock()
	return append([]LogEntry(nil), h.console...)
}

// SelfCheck boots the runtime in a fresh harness and completes a tool call
// round trip through it.
func SelfCheck(ctx context.Context) error {
	script, err := Script(map[string]any{"ready": true})
	if err != nil {
		return err
	}
	h, err := NewHarness(DefaultTimeout)
	if err != nil {
		return err
	}
	if err := h.Boot(ctx, script); err != nil {
		return fmt.Errorf("runtime failed to boot: %w", err)
	}

	for _, tag := range []string{protocol.TagLink, protocol.TagScript, protocol.TagImg, protocol.TagSource, protocol.TagAudio, protocol.TagVideo} {
		defined, err := h.Eval(ctx, fmt.Sprintf("customElements.get(%s) !== undefined", Serialize(tag)))
		if err != nil {
			return err
		}
		if defined != true {
			return fmt.Errorf("runtime did not define %s", tag)
		}
	}

	if _, err := h.Eval(ctx, `window.mcp.callTool({name: "ping"}).then((r) => { globalThis.__check = r; })`); err != nil {
		return err
	}
	posted := h.Posted()
	if len(posted) != 1 {
		return fmt.Errorf("expected one tool call, runtime posted %d messages", len(posted))
	}
	msg, err := protocol.Decode(posted[0])
	if err != nil {
		return err
	}
	call, ok := msg.(protocol.ToolCall)
	if !ok {
		return errors.New("runtime posted an unexpected message")
	}
	if err := h.Deliver(ctx, protocol.ToolSuccess(call.ID, "pong")); err != nil {
		return err
	}
	result, err := h.Eval(ctx, "globalThis.__check")
	if err != nil {
		return err
	}
	if result != "pong" {
		return fmt.Errorf("tool result not delivered, got %v", result)
	}
	return nil
}
