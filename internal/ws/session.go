package ws

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/AgentOS/mcpview/internal/host"
	"github.com/GriffinCanCode/AgentOS/mcpview/internal/protocol"
	"github.com/GriffinCanCode/AgentOS/mcpview/internal/shared/id"
)

// session serializes writes to one connection.
type session struct {
	id           id.SessionID
	conn         *websocket.Conn
	writeMu      sync.Mutex
	writeTimeout time.Duration
	frame        *frame
	logger       *zap.Logger
}

func newSession(sessionID id.SessionID, conn *websocket.Conn, writeTimeout time.Duration, logger *zap.Logger) *session {
	s := &session{
		id:           sessionID,
		conn:         conn,
		writeTimeout: writeTimeout,
		logger:       logger,
	}
	s.frame = &frame{id: id.NewFrameID(), session: s}
	return s
}

func (s *session) welcome() error {
	return s.write(outbound{Type: typeSession, Session: s.id.String(), Frame: s.frame.id.String()})
}

// channel returns the reply channel for a frame ID, or nil if the ID does not
// name this session's frame.
func (s *session) channel(frameID string) host.ReplyChannel {
	if frameID != s.frame.id.String() {
		return nil
	}
	return s.frame
}

func (s *session) write(msg outbound) error {
	data, err := codec.Marshal(msg)
	if err != nil {
		return err
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if err := s.conn.SetWriteDeadline(time.Now().Add(s.writeTimeout)); err != nil {
		return err
	}
	return s.conn.WriteMessage(websocket.TextMessage, data)
}

func (s *session) sendError(message string) {
	if err := s.write(outbound{Type: typeError, Error: message}); err != nil {
		s.logger.Debug("failed to send error", zap.Error(err))
	}
}

// frame is the browser iframe of a session. It is both the render target and
// the reply channel for messages the iframe posts.
type frame struct {
	id      id.FrameID
	session *session
}

func (f *frame) SetContent(html string) error {
	return f.session.write(outbound{Type: typeContent, Frame: f.id.String(), HTML: html})
}

func (f *frame) Channel() host.ReplyChannel { return f }

func (f *frame) Send(msg any) error {
	data, err := protocol.Encode(msg)
	if err != nil {
		return err
	}
	return f.session.write(outbound{Type: typeMessage, Frame: f.id.String(), Message: data})
}
