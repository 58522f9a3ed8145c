package host

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/AgentOS/mcpview/internal/bridge"
	"github.com/GriffinCanCode/AgentOS/mcpview/internal/protocol"
)

// HandleMessage processes a raw message received from the channel from.
// Messages from any channel other than the attached frame's are ignored, as
// are message types the host does not handle.
func (c *Controller) HandleMessage(from ReplyChannel, data []byte) {
	c.mu.Lock()
	if !c.attached || from == nil || from != c.frame.Channel() {
		c.mu.Unlock()
		return
	}
	ctx := c.ctx
	c.mu.Unlock()

	msg, err := protocol.Decode(data)
	if errors.Is(err, protocol.ErrUnknownType) {
		return
	}
	if err != nil {
		c.logger.Warn("malformed message", zap.Error(err))
		return
	}

	switch m := msg.(type) {
	case protocol.ResourceRequest:
		c.handleResourceRequest(ctx, from, m)
	case protocol.ToolCall:
		c.handleToolCall(ctx, from, m)
	}
}

func (c *Controller) handleResourceRequest(ctx context.Context, from ReplyChannel, req protocol.ResourceRequest) {
	if req.ID == 0 {
		c.logger.Warn("resource request without id", zap.String("uri", req.URI), zap.String("kind", req.Kind))
		return
	}
	if req.URI == "" {
		c.logger.Warn("resource request without uri", zap.Int64("id", req.ID))
		c.reply(ctx, from, protocol.NewResourceResponse(req.ID, false, "", nil, ReasonMissingURI))
		return
	}
	kind := bridge.ParseKind(req.Kind)

	c.mu.Lock()
	b := c.bridgeLocked()
	c.mu.Unlock()

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()

		start := time.Now()
		res := b.Resolve(ctx, req.URI, kind)
		c.observer.ResourceResolved(string(kind), res.OK, time.Since(start))
		if !res.OK {
			c.logger.Error("resolve failed",
				zap.String("uri", req.URI),
				zap.String("kind", string(kind)),
				zap.String("error", res.Error))
		}
		c.reply(ctx, from, protocol.NewResourceResponse(req.ID, res.OK, res.MIME, res.Body, res.Error))
	}()
}

func (c *Controller) handleToolCall(ctx context.Context, from ReplyChannel, call protocol.ToolCall) {
	if call.ID == 0 {
		c.logger.Warn("tool call without id", zap.String("method", call.Method))
		return
	}
	method := call.Method
	if method == "" {
		method = protocol.MethodToolsCall
	}
	if method != protocol.MethodToolsCall {
		c.logger.Warn("unsupported tool method", zap.String("method", method))
		c.reply(ctx, from, protocol.ToolFailure(call.ID, "Unsupported tool method: "+method))
		return
	}

	c.mu.Lock()
	caller := c.cfg.ToolCaller
	c.mu.Unlock()

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()

		start := time.Now()
		result, err := invoke(ctx, caller, call.Params)
		c.observer.ToolCallCompleted(err == nil, time.Since(start))
		if err != nil {
			reason := err.Error()
			if reason == "" {
				reason = ReasonToolCallFailed
			}
			c.logger.Error("tool call failed", zap.Int64("id", call.ID), zap.String("error", reason))
			c.reply(ctx, from, protocol.ToolFailure(call.ID, reason))
			return
		}
		c.reply(ctx, from, protocol.ToolSuccess(call.ID, result))
	}()
}

func invoke(ctx context.Context, caller ToolCaller, params json.RawMessage) (result any, err error) {
	if caller == nil {
		return nil, errors.New(ReasonNoToolCaller)
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%s: %v", ReasonToolCallFailed, r)
		}
	}()
	return caller.CallTool(ctx, params)
}

// reply sends msg to from unless the attachment that received the request has
// ended, even if the same frame was attached again since.
func (c *Controller) reply(session context.Context, from ReplyChannel, msg any) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.attached || session != c.ctx || session.Err() != nil || c.frame.Channel() != from {
		c.logger.Debug("dropping reply for detached frame")
		return
	}
	if err := from.Send(msg); err != nil {
		c.logger.Error("failed to send reply", zap.Error(err))
	}
}
