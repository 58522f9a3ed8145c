package host

import (
	"context"
	"encoding/json"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/AgentOS/mcpview/internal/bridge"
	"github.com/GriffinCanCode/AgentOS/mcpview/internal/protocol"
)

func send(t *testing.T, c *Controller, from ReplyChannel, msg any) {
	t.Helper()
	raw, err := json.Marshal(msg)
	require.NoError(t, err)
	c.HandleMessage(from, raw)
	c.Wait()
}

func lastReply(t *testing.T, frame *fakeFrame) any {
	t.Helper()
	msgs := frame.ch.messages()
	require.NotEmpty(t, msgs)
	return msgs[len(msgs)-1]
}

func TestResourceRequest(t *testing.T) {
	c, frame := attached(t, Config{
		Resolver: pages(map[string]string{"ui://app/a.css": "p{}"}),
	})

	send(t, c, frame.ch, map[string]any{"type": "resource-request", "id": 7, "uri": "ui://app/a.css", "kind": "style"})

	res, ok := lastReply(t, frame).(protocol.ResourceResponse)
	require.True(t, ok)
	assert.Equal(t, protocol.TypeResourceResponse, res.Type)
	assert.Equal(t, int64(7), res.ID)
	assert.True(t, res.OK)
	assert.Equal(t, "text/css", res.MIME)
	assert.Equal(t, []byte("p{}"), res.Body)
}

func TestResourceRequestFailures(t *testing.T) {
	tests := []struct {
		name   string
		cfg    Config
		uri    string
		reason string
	}{
		{"no resolver", Config{}, "ui://app/a.css", bridge.ReasonNoResolver},
		{"resolver error", Config{Resolver: pages(nil)}, "ui://app/a.css", "not found"},
		{"remote blocked", Config{}, "https://evil.test/x.js", bridge.ReasonRemoteBlocked},
		{"unsupported", Config{}, "ftp://files.test/x.js", bridge.ReasonUnsupportedURI},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, frame := attached(t, tt.cfg)

			send(t, c, frame.ch, protocol.ResourceRequest{Type: protocol.TypeResourceRequest, ID: 1, URI: tt.uri, Kind: "script"})

			res := lastReply(t, frame).(protocol.ResourceResponse)
			assert.False(t, res.OK)
			assert.Equal(t, tt.reason, res.Error)
			assert.Empty(t, res.Body)
		})
	}
}

func TestResourceRequestKindDefaultsToDocument(t *testing.T) {
	c, frame := attached(t, Config{
		Resolver: pages(map[string]string{"ui://app/page": "<p>x</p>"}),
	})

	send(t, c, frame.ch, map[string]any{"type": "resource-request", "id": 3, "uri": "ui://app/page"})

	res := lastReply(t, frame).(protocol.ResourceResponse)
	assert.Equal(t, "text/html", res.MIME)
}

func TestInvalidMessagesDropped(t *testing.T) {
	c, frame := attached(t, Config{Resolver: pages(nil)})

	for _, raw := range []string{
		`{"type":"resource-request","id":0,"uri":"ui://app/a.css"}`,
		`{"type":"tool-call","id":0,"params":{}}`,
		`{"type":"resource-request","id":"x"}`,
		`{"type":"surprise","id":1}`,
		`not json`,
		`{"type":"tool-result","id":1,"ok":true}`,
	} {
		c.HandleMessage(frame.ch, []byte(raw))
	}
	c.Wait()

	assert.Empty(t, frame.ch.messages())
}

func TestResourceRequestWithoutURI(t *testing.T) {
	c, frame := attached(t, Config{Resolver: pages(nil)})

	send(t, c, frame.ch, map[string]any{"type": "resource-request", "id": 4, "uri": ""})

	res := lastReply(t, frame).(protocol.ResourceResponse)
	assert.Equal(t, int64(4), res.ID)
	assert.False(t, res.OK)
	assert.Equal(t, ReasonMissingURI, res.Error)
	assert.Empty(t, res.Body)
}

func TestForeignChannelIgnored(t *testing.T) {
	var calls atomic.Int32
	c, frame := attached(t, Config{
		Resolver: pages(map[string]string{"ui://app/a.css": "p{}"}),
		ToolCaller: ToolCallerFunc(func(context.Context, json.RawMessage) (any, error) {
			calls.Add(1)
			return nil, nil
		}),
	})
	other := &fakeChannel{}

	send(t, c, other, protocol.ResourceRequest{Type: protocol.TypeResourceRequest, ID: 1, URI: "ui://app/a.css"})
	send(t, c, other, protocol.ToolCall{Type: protocol.TypeToolCall, ID: 1, Params: json.RawMessage(`{}`)})
	send(t, c, nil, protocol.ToolCall{Type: protocol.TypeToolCall, ID: 1, Params: json.RawMessage(`{}`)})

	assert.Empty(t, other.messages())
	assert.Empty(t, frame.ch.messages())
	assert.Zero(t, calls.Load())
}

func TestToolCall(t *testing.T) {
	var got json.RawMessage
	c, frame := attached(t, Config{
		ToolCaller: ToolCallerFunc(func(_ context.Context, params json.RawMessage) (any, error) {
			got = params
			return map[string]any{"content": "ok"}, nil
		}),
	})

	send(t, c, frame.ch, map[string]any{"type": "tool-call", "id": 5, "method": "tools/call", "params": map[string]any{"name": "echo"}})

	res, ok := lastReply(t, frame).(protocol.ToolResult)
	require.True(t, ok)
	assert.Equal(t, int64(5), res.ID)
	assert.True(t, res.OK)
	assert.Equal(t, map[string]any{"content": "ok"}, res.Result)
	assert.JSONEq(t, `{"name":"echo"}`, string(got))
}

func TestToolCallMethodDefaults(t *testing.T) {
	c, frame := attached(t, Config{
		ToolCaller: ToolCallerFunc(func(context.Context, json.RawMessage) (any, error) {
			return "done", nil
		}),
	})

	send(t, c, frame.ch, map[string]any{"type": "tool-call", "id": 2, "params": nil})

	res := lastReply(t, frame).(protocol.ToolResult)
	assert.True(t, res.OK)
	assert.Equal(t, "done", res.Result)
}

func TestToolCallFailures(t *testing.T) {
	tests := []struct {
		name   string
		caller ToolCaller
		reason string
	}{
		{
			name:   "no caller",
			reason: ReasonNoToolCaller,
		},
		{
			name: "caller error",
			caller: ToolCallerFunc(func(context.Context, json.RawMessage) (any, error) {
				return nil, errors.New("tool exploded")
			}),
			reason: "tool exploded",
		},
		{
			name: "empty error",
			caller: ToolCallerFunc(func(context.Context, json.RawMessage) (any, error) {
				return nil, errors.New("")
			}),
			reason: ReasonToolCallFailed,
		},
		{
			name: "panic",
			caller: ToolCallerFunc(func(context.Context, json.RawMessage) (any, error) {
				panic("boom")
			}),
			reason: "Tool call failed: boom",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, frame := attached(t, Config{ToolCaller: tt.caller})

			send(t, c, frame.ch, protocol.ToolCall{Type: protocol.TypeToolCall, ID: 9, Method: protocol.MethodToolsCall})

			res := lastReply(t, frame).(protocol.ToolResult)
			assert.Equal(t, int64(9), res.ID)
			assert.False(t, res.OK)
			assert.Equal(t, tt.reason, res.Error)
		})
	}
}

func TestUnsupportedToolMethod(t *testing.T) {
	var calls atomic.Int32
	c, frame := attached(t, Config{
		ToolCaller: ToolCallerFunc(func(context.Context, json.RawMessage) (any, error) {
			calls.Add(1)
			return nil, nil
		}),
	})

	send(t, c, frame.ch, protocol.ToolCall{Type: protocol.TypeToolCall, ID: 4, Method: "tools/list"})

	res := lastReply(t, frame).(protocol.ToolResult)
	assert.False(t, res.OK)
	assert.Equal(t, "Unsupported tool method: tools/list", res.Error)
	assert.Zero(t, calls.Load())
}

func blockingCaller(started, release chan struct{}) ToolCaller {
	return ToolCallerFunc(func(context.Context, json.RawMessage) (any, error) {
		close(started)
		<-release
		return "late", nil
	})
}

func TestNoReplyAfterDetach(t *testing.T) {
	started, release := make(chan struct{}), make(chan struct{})
	c := New(Config{ToolCaller: blockingCaller(started, release)})
	frame := newFrame()
	require.NoError(t, c.Attach(frame))

	raw, err := json.Marshal(protocol.ToolCall{Type: protocol.TypeToolCall, ID: 1})
	require.NoError(t, err)
	c.HandleMessage(frame.ch, raw)
	<-started

	c.Detach()
	close(release)
	c.Wait()
	assert.Empty(t, frame.ch.messages())

	c.HandleMessage(frame.ch, raw)
	c.Wait()
	assert.Empty(t, frame.ch.messages())
}

func TestReattachDropsRepliesForOldFrame(t *testing.T) {
	started, release := make(chan struct{}), make(chan struct{})
	c := New(Config{ToolCaller: blockingCaller(started, release)})
	defer c.Close()
	first, second := newFrame(), newFrame()
	require.NoError(t, c.Attach(first))

	raw, err := json.Marshal(protocol.ToolCall{Type: protocol.TypeToolCall, ID: 1})
	require.NoError(t, err)
	c.HandleMessage(first.ch, raw)
	<-started

	require.NoError(t, c.Attach(second))
	close(release)
	c.Wait()

	assert.Empty(t, first.ch.messages())
	assert.Empty(t, second.ch.messages())
}

func TestReattachSameFrameDropsOldReplies(t *testing.T) {
	started, release := make(chan struct{}), make(chan struct{})
	c := New(Config{ToolCaller: blockingCaller(started, release)})
	defer c.Close()
	frame := newFrame()
	require.NoError(t, c.Attach(frame))

	raw, err := json.Marshal(protocol.ToolCall{Type: protocol.TypeToolCall, ID: 1})
	require.NoError(t, err)
	c.HandleMessage(frame.ch, raw)
	<-started

	c.Detach()
	require.NoError(t, c.Attach(frame))
	close(release)
	c.Wait()

	assert.Empty(t, frame.ch.messages())
}
