package host

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/AgentOS/mcpview/internal/bridge"
	"github.com/GriffinCanCode/AgentOS/mcpview/internal/policy"
	"github.com/GriffinCanCode/AgentOS/mcpview/internal/protocol"
	"github.com/GriffinCanCode/AgentOS/mcpview/internal/rewrite"
	"github.com/GriffinCanCode/AgentOS/mcpview/internal/sandbox"
	"github.com/GriffinCanCode/AgentOS/mcpview/internal/theme"
)

// ErrDetached is returned by operations that need an attached frame.
var ErrDetached = errors.New("host: controller is detached")

// Failure reasons reported in replies.
const (
	ReasonNoToolCaller   = "No tool caller"
	ReasonToolCallFailed = "Tool call failed"
	ReasonMissingURI     = "Missing uri"
)

// Config holds the initial view settings. Every field is optional.
type Config struct {
	Src       string
	Data      any
	CSS       theme.CSS
	Layers    []string
	ThemeLink string
	// Base is the resolver base template. Empty selects bridge.DefaultBase.
	Base string
	// PublicURL is the host's own URL, used to absolutize Base and to
	// resolve non-ui theme links.
	PublicURL      string
	Resolver       bridge.Resolver
	ToolCaller     ToolCaller
	Allow          policy.Allower
	AllowedOrigins []string
	Fetcher        *bridge.Fetcher
	// CancelStale cancels the context of a render superseded by a newer one.
	// Stale renders are discarded either way.
	CancelStale bool

	Logger   *zap.Logger
	Observer Observer
}

// Controller drives one sandboxed view.
type Controller struct {
	mu  sync.Mutex
	cfg Config

	frame    Frame
	attached bool
	ctx      context.Context
	cancel   context.CancelFunc

	token      atomic.Uint64
	loadCancel context.CancelFunc

	wg       sync.WaitGroup
	logger   *zap.Logger
	observer Observer
}

// New creates a detached controller.
func New(cfg Config) *Controller {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	observer := cfg.Observer
	if observer == nil {
		observer = nopObserver{}
	}
	return &Controller{
		cfg:      cfg,
		logger:   logger.Named("host"),
		observer: observer,
	}
}

// Attach binds the controller to frame and renders the current source.
// Attaching the already attached frame is a no-op; attaching a different
// frame detaches the previous one first.
func (c *Controller) Attach(frame Frame) error {
	if frame == nil {
		return errors.New("host: nil frame")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.attached {
		if c.frame == frame {
			return nil
		}
		c.detachLocked()
	}

	c.ctx, c.cancel = context.WithCancel(context.Background())
	c.frame = frame
	c.attached = true
	c.loadLocked()
	return nil
}

// Detach releases the frame. No message reaches the frame afterwards, even
// from work that completes later. Detaching twice is harmless.
func (c *Controller) Detach() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.detachLocked()
}

func (c *Controller) detachLocked() {
	if !c.attached {
		return
	}
	c.attached = false
	c.frame = nil
	c.cancel()
	c.loadCancel = nil
}

// Attached reports whether a frame is bound.
func (c *Controller) Attached() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.attached
}

// Wait blocks until all in-flight renders and replies have finished.
func (c *Controller) Wait() {
	c.wg.Wait()
}

// Close detaches and waits for in-flight work.
func (c *Controller) Close() {
	c.Detach()
	c.Wait()
}

// Token returns the current load token.
func (c *Controller) Token() uint64 {
	return c.token.Load()
}

// Reload renders the current source again.
func (c *Controller) Reload() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.attached {
		return ErrDetached
	}
	c.loadLocked()
	return nil
}

// SetSource changes the root document and renders it.
func (c *Controller) SetSource(src string) {
	c.update(func(cfg *Config) { cfg.Src = src })
}

// SetCSS replaces the theme overrides and re-renders.
func (c *Controller) SetCSS(css theme.CSS) {
	c.update(func(cfg *Config) { cfg.CSS = css })
}

// SetLayers replaces the cascade layer order and re-renders.
func (c *Controller) SetLayers(layers []string) {
	c.update(func(cfg *Config) { cfg.Layers = append([]string(nil), layers...) })
}

// SetThemeLink replaces the user stylesheet link and re-renders.
func (c *Controller) SetThemeLink(link string) {
	c.update(func(cfg *Config) { cfg.ThemeLink = link })
}

// SetBase replaces the resolver base template and re-renders.
func (c *Controller) SetBase(base string) {
	c.update(func(cfg *Config) { cfg.Base = base })
}

// SetResolver replaces the ui:// resolver and re-renders. Nil restores the
// base-template resolver.
func (c *Controller) SetResolver(r bridge.Resolver) {
	c.update(func(cfg *Config) { cfg.Resolver = r })
}

func (c *Controller) update(apply func(*Config)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	apply(&c.cfg)
	if c.attached {
		c.loadLocked()
	}
}

// Update is a batch of setting changes. Nil fields are left unchanged.
type Update struct {
	Src       *string
	CSS       *theme.CSS
	Layers    *[]string
	ThemeLink *string
	Base      *string
}

// Apply applies u and re-renders once if anything that affects rendering
// changed.
func (c *Controller) Apply(u Update) {
	c.mu.Lock()
	defer c.mu.Unlock()

	reload := false
	if u.Src != nil {
		c.cfg.Src, reload = *u.Src, true
	}
	if u.CSS != nil {
		c.cfg.CSS, reload = *u.CSS, true
	}
	if u.Layers != nil {
		c.cfg.Layers, reload = append([]string(nil), (*u.Layers)...), true
	}
	if u.ThemeLink != nil {
		c.cfg.ThemeLink, reload = *u.ThemeLink, true
	}
	if u.Base != nil {
		c.cfg.Base, reload = *u.Base, true
	}
	if reload && c.attached {
		c.loadLocked()
	}
}

// SetToolCaller replaces the tool caller. Calls already in flight keep the
// caller they started with.
func (c *Controller) SetToolCaller(tc ToolCaller) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cfg.ToolCaller = tc
}

// SetAllow sets an explicit remote allow predicate. It takes precedence over
// the allowed origins; nil falls back to them.
func (c *Controller) SetAllow(a policy.Allower) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cfg.Allow = a
}

// SetAllowedOrigins replaces the static origin allow-list.
func (c *Controller) SetAllowedOrigins(origins []string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cfg.AllowedOrigins = append([]string(nil), origins...)
}

// SetData replaces the application data and pushes it to the frame without
// re-rendering.
func (c *Controller) SetData(data any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cfg.Data = data
	c.pushDataLocked()
}

// Loaded is called when the frame reports that its content finished loading.
// The current data is pushed again.
func (c *Controller) Loaded() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pushDataLocked()
}

func (c *Controller) pushDataLocked() {
	if !c.attached {
		return
	}
	if err := c.frame.Channel().Send(protocol.NewDataUpdate(c.cfg.Data)); err != nil {
		c.logger.Error("failed to push data", zap.Error(err))
	}
}

// allower returns the effective remote predicate.
func (c *Controller) allower() policy.Allower {
	return policy.Select(c.cfg.Allow, c.cfg.AllowedOrigins)
}

// bridgeLocked builds a Bridge from the current settings.
func (c *Controller) bridgeLocked() *bridge.Bridge {
	base := c.cfg.Base
	if base == "" {
		base = bridge.DefaultBase
	}
	return bridge.New(bridge.Options{
		Resolver: c.cfg.Resolver,
		Base:     bridge.ResolveBase(base, c.cfg.PublicURL),
		Allow:    c.allower(),
		Fetcher:  c.cfg.Fetcher,
		Logger:   c.logger,
	})
}

func (c *Controller) loadLocked() {
	if !c.attached || c.cfg.Src == "" {
		return
	}

	token := c.token.Add(1)
	ctx := c.ctx
	cancel := context.CancelFunc(func() {})
	if c.cfg.CancelStale {
		if c.loadCancel != nil {
			c.loadCancel()
		}
		ctx, cancel = context.WithCancel(ctx)
		c.loadCancel = cancel
	}

	src := c.cfg.Src
	b := c.bridgeLocked()

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		defer cancel()
		c.load(ctx, token, src, b)
	}()
}

func (c *Controller) load(ctx context.Context, token uint64, src string, b *bridge.Bridge) {
	start := time.Now()
	logger := c.logger.With(zap.String("src", src), zap.Uint64("token", token))

	root := b.Resolve(ctx, src, bridge.KindDocument)
	if !root.OK {
		if ctx.Err() != nil {
			logger.Debug("render cancelled")
			c.observer.LoadCompleted(OutcomeStale, time.Since(start))
			return
		}
		logger.Error("failed to resolve root document", zap.String("error", root.Error))
		c.observer.LoadCompleted(OutcomeFailed, time.Since(start))
		return
	}

	c.mu.Lock()
	opts := rewrite.Options{
		RootURI:   src,
		ThemeCSS:  theme.Build(theme.Inputs{CSS: c.cfg.CSS, Layers: c.cfg.Layers}),
		ThemeLink: c.cfg.ThemeLink,
		HostURL:   c.cfg.PublicURL,
		Allow:     c.allower(),
	}
	data := c.cfg.Data
	c.mu.Unlock()

	html, err := c.render(root, data, opts)
	if err != nil {
		logger.Error("failed to render view", zap.Error(err))
		c.observer.LoadCompleted(OutcomeError, time.Since(start))
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if token != c.token.Load() || !c.attached {
		logger.Debug("discarding stale render")
		c.observer.LoadCompleted(OutcomeStale, time.Since(start))
		return
	}
	if err := c.frame.SetContent(html); err != nil {
		logger.Error("failed to set frame content", zap.Error(err))
		c.observer.LoadCompleted(OutcomeError, time.Since(start))
		return
	}
	logger.Debug("view rendered", zap.Duration("duration", time.Since(start)))
	c.observer.LoadCompleted(OutcomeRendered, time.Since(start))
}

func (c *Controller) render(root bridge.Resource, data any, opts rewrite.Options) (string, error) {
	boot, err := sandbox.Script(data)
	if err != nil {
		return "", err
	}
	opts.HTML = bridge.DecodeText(root.Body, root.MIME)
	opts.Bootstrap = boot
	out, err := rewrite.Rewrite(opts)
	if err != nil {
		return "", fmt.Errorf("failed to rewrite document: %w", err)
	}
	return out, nil
}
