package ws

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/AgentOS/mcpview/internal/host"
	"github.com/GriffinCanCode/AgentOS/mcpview/internal/shared/id"
)

const (
	defaultReadLimit    = 8 << 20
	defaultWriteTimeout = 10 * time.Second
)

// Tracker observes session activity. monitoring.Metrics implements it.
type Tracker interface {
	SessionOpened()
	SessionClosed()
	MessageReceived(kind string)
}

type nopTracker struct{}

func (nopTracker) SessionOpened()         {}
func (nopTracker) SessionClosed()         {}
func (nopTracker) MessageReceived(string) {}

// Options configures a Handler.
type Options struct {
	// Config returns the base controller settings for a new session.
	Config func() host.Config
	// CheckOrigin validates the upgrade request origin. Nil accepts any
	// origin.
	CheckOrigin  func(r *http.Request) bool
	ReadLimit    int64
	WriteTimeout time.Duration
	Logger       *zap.Logger
	Tracker      Tracker
}

// Handler manages view sessions over WebSocket connections.
type Handler struct {
	opts     Options
	upgrader websocket.Upgrader
	logger   *zap.Logger
	tracker  Tracker
}

// NewHandler creates a handler.
func NewHandler(opts Options) *Handler {
	if opts.Config == nil {
		opts.Config = func() host.Config { return host.Config{} }
	}
	if opts.ReadLimit <= 0 {
		opts.ReadLimit = defaultReadLimit
	}
	if opts.WriteTimeout <= 0 {
		opts.WriteTimeout = defaultWriteTimeout
	}
	checkOrigin := opts.CheckOrigin
	if checkOrigin == nil {
		checkOrigin = func(*http.Request) bool { return true }
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	tracker := opts.Tracker
	if tracker == nil {
		tracker = nopTracker{}
	}
	return &Handler{
		opts:     opts,
		upgrader: websocket.Upgrader{CheckOrigin: checkOrigin},
		logger:   logger.Named("ws"),
		tracker:  tracker,
	}
}

// HandleConnection upgrades the request and serves one view session until
// the client disconnects.
func (h *Handler) HandleConnection(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()
	conn.SetReadLimit(h.opts.ReadLimit)

	sessionID := id.NewSessionID()
	logger := h.logger.With(zap.String("session", sessionID.String()))

	s := newSession(sessionID, conn, h.opts.WriteTimeout, logger)
	cfg := h.opts.Config()
	cfg.Logger = logger
	ctrl := host.New(cfg)

	h.tracker.SessionOpened()
	defer h.tracker.SessionClosed()
	// In-flight resolutions drain on their own; their replies are dropped.
	defer ctrl.Detach()

	if err := s.welcome(); err != nil {
		logger.Error("failed to send welcome", zap.Error(err))
		return
	}
	if err := ctrl.Attach(s.frame); err != nil {
		logger.Error("failed to attach frame", zap.Error(err))
		return
	}
	logger.Info("view session started", zap.String("frame", s.frame.id.String()))

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Warn("websocket read error", zap.Error(err))
			}
			break
		}

		var msg inbound
		if err := codec.Unmarshal(raw, &msg); err != nil {
			s.sendError("malformed message")
			continue
		}
		h.tracker.MessageReceived(msg.Type)

		switch msg.Type {
		case typeSet:
			h.handleSet(s, ctrl, msg)
		case typeLoaded:
			ctrl.Loaded()
		case typeMessage:
			ctrl.HandleMessage(s.channel(msg.Frame), msg.Message)
		case typePing:
			_ = s.write(outbound{Type: typePong})
		default:
			s.sendError("unknown message type")
		}
	}
	logger.Info("view session ended")
}

func (h *Handler) handleSet(s *session, ctrl *host.Controller, msg inbound) {
	u, err := msg.update()
	if err != nil {
		s.sendError(err.Error())
		return
	}
	if len(msg.Data) > 0 {
		ctrl.SetData(msg.Data)
	}
	ctrl.Apply(u)
}
