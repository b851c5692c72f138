// internal/browser/session/session.go
// A Session wraps a single browser tab driven over the Chrome DevTools
// Protocol. It owns the tab's lifecycle, runs chromedp actions against it
// with proper context combination, and answers visibility-gated element
// queries for the resolver.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/chromedp"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/xkilldash9x/anchor-cli/internal/config"
	"github.com/xkilldash9x/anchor-cli/internal/resolver"
)

// ErrNoVisibleMatch is returned by QueryVisible when the query completed but
// matched nothing. Callers treat it like any other per-candidate miss.
var ErrNoVisibleMatch = errors.New("no visible element matched")

// Session represents an active browser tab.
type Session struct {
	id     string
	ctx    context.Context
	cancel context.CancelFunc
	logger *zap.Logger
	cfg    *config.Config

	mu       sync.Mutex
	isClosed bool
}

// Ensure the resolver can query through a live session.
var _ resolver.PageQuerier = (*Session)(nil)

// NewSession creates a tab under the given allocator context and waits for
// the CDP connection to come up.
func NewSession(allocCtx context.Context, cfg *config.Config, logger *zap.Logger) (*Session, error) {
	sessionID := uuid.New().String()

	ctx, cancel := chromedp.NewContext(allocCtx)

	s := &Session{
		id:     sessionID,
		ctx:    ctx,
		cancel: cancel,
		logger: logger.With(zap.String("session_id", sessionID)),
		cfg:    cfg,
	}

	// Force target creation so the first real action does not pay the
	// browser startup cost inside its own timeout.
	if err := chromedp.Run(ctx); err != nil {
		cancel()
		return nil, fmt.Errorf("failed to initialize browser target connection: %w", err)
	}

	s.logger.Debug("Browser session started.")
	return s, nil
}

// ID returns the session identifier used in logs and registry scoping.
func (s *Session) ID() string {
	return s.id
}

// Context exposes the session's master context for callers that need to
// derive their own chromedp actions (tests mostly).
func (s *Session) Context() context.Context {
	return s.ctx
}

// RunActions executes chromedp actions under a context that respects both
// the operational context and the session lifetime.
func (s *Session) RunActions(ctx context.Context, actions ...chromedp.Action) error {
	runCtx, cancel := CombineContext(s.ctx, ctx)
	defer cancel()

	err := chromedp.Run(runCtx, actions...)
	if err != nil {
		// Report the context error with priority: a cancelled operation or
		// session explains the chromedp failure better than the raw error.
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if s.ctx.Err() != nil {
			return fmt.Errorf("session closed: %w", s.ctx.Err())
		}
	}
	return err
}

// QueryVisible blocks until an element matching sel is present and visible,
// or ctx expires. It returns the first matching node.
func (s *Session) QueryVisible(ctx context.Context, sel string, kind resolver.QueryKind) (*cdp.Node, error) {
	opt := chromedp.ByQuery
	if kind == resolver.KindXPath {
		opt = chromedp.BySearch
	}

	var nodes []*cdp.Node
	err := s.RunActions(ctx,
		chromedp.WaitVisible(sel, opt),
		chromedp.Nodes(sel, &nodes, opt),
	)
	if err != nil {
		return nil, err
	}
	if len(nodes) == 0 {
		return nil, ErrNoVisibleMatch
	}
	return nodes[0], nil
}

// CurrentURL reports the tab's current location.
func (s *Session) CurrentURL(ctx context.Context) (string, error) {
	var loc string
	if err := s.RunActions(ctx, chromedp.Location(&loc)); err != nil {
		return "", fmt.Errorf("failed to read current location: %w", err)
	}
	return loc, nil
}

// Close tears down the tab. Safe to call more than once.
func (s *Session) Close() error {
	s.mu.Lock()
	if s.isClosed {
		s.mu.Unlock()
		return nil
	}
	s.isClosed = true
	s.mu.Unlock()

	s.logger.Debug("Closing browser session.")
	if s.cancel != nil {
		s.cancel()
	}
	return nil
}
