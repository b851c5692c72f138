// internal/resolver/resolver.go
// Turns a persisted selector reference back into a live element handle. The
// resolver walks the stability-ranked candidate list sequentially, giving
// each candidate a short bounded search before moving on. Candidates are
// never raced concurrently: two locators matching (and mutating) different
// elements at once is strictly worse than a slower, deterministic search.
package resolver

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"go.uber.org/zap"

	"github.com/xkilldash9x/anchor-cli/api/schemas"
	"github.com/xkilldash9x/anchor-cli/internal/selector"
)

// QueryKind distinguishes the two selector families the resolver tries.
type QueryKind int

const (
	KindCSS QueryKind = iota
	KindXPath
)

func (k QueryKind) String() string {
	if k == KindXPath {
		return "xpath"
	}
	return "css"
}

// PageQuerier locates a single visible element on a live page. The chromedp
// session implements it; tests substitute a scripted fake.
type PageQuerier interface {
	// QueryVisible blocks until an element matching sel is present and
	// visible, or the context expires. The returned node is a live handle
	// valid until the next navigation.
	QueryVisible(ctx context.Context, sel string, kind QueryKind) (*cdp.Node, error)
}

// Resolution is a successful lookup: the live handle plus the candidate that
// found it, for diagnostics and persistence upgrades.
type Resolution struct {
	Node         *cdp.Node
	SelectorUsed string
	Kind         QueryKind
}

// ElementNotFoundError reports that every candidate in both selector
// families was exhausted. Attempted carries the full trial list so a failed
// replay can be diagnosed without re-running.
type ElementNotFoundError struct {
	Original  string
	Attempted []string
}

func (e *ElementNotFoundError) Error() string {
	return fmt.Sprintf("failed to find element (original selector: %s, %d candidates attempted)",
		e.Original, len(e.Attempted))
}

// DefaultCandidateTimeout bounds each individual candidate search. This is a
// per-candidate budget, not the step's overall timeout.
const DefaultCandidateTimeout = 2500 * time.Millisecond

// Resolver resolves selector references against a PageQuerier.
type Resolver struct {
	logger           *zap.Logger
	candidateTimeout time.Duration
}

// New creates a Resolver. A non-positive timeout falls back to the default.
func New(logger *zap.Logger, candidateTimeout time.Duration) *Resolver {
	if candidateTimeout <= 0 {
		candidateTimeout = DefaultCandidateTimeout
	}
	return &Resolver{
		logger:           logger.Named("resolver"),
		candidateTimeout: candidateTimeout,
	}
}

// Resolve tries the primary selector, then every generated fallback, then the
// XPath family. The first visible match wins. A candidate timing out aborts
// only that candidate; cancellation of ctx aborts the whole resolution.
func (r *Resolver) Resolve(ctx context.Context, q PageQuerier, primary string, desc schemas.ElementDescriptor) (Resolution, error) {
	var attempted []string

	cssCandidates := buildList(primary, selector.GenerateCandidates(desc))
	if res, found, err := r.trial(ctx, q, cssCandidates, KindCSS, &attempted); err != nil {
		return Resolution{}, err
	} else if found {
		return res, nil
	}

	if xpath := strings.TrimSpace(desc.OriginalXPath); xpath != "" {
		xpathCandidates := append([]string{xpath}, selector.GenerateXPathCandidates(xpath, desc)...)
		if res, found, err := r.trial(ctx, q, xpathCandidates, KindXPath, &attempted); err != nil {
			return Resolution{}, err
		} else if found {
			return res, nil
		}
	}

	return Resolution{}, &ElementNotFoundError{Original: primary, Attempted: attempted}
}

// trial runs one selector family sequentially. The bool result reports
// whether a candidate matched; the error is only ever a parent-context error.
func (r *Resolver) trial(ctx context.Context, q PageQuerier, candidates []string, kind QueryKind, attempted *[]string) (Resolution, bool, error) {
	for _, cand := range candidates {
		if err := ctx.Err(); err != nil {
			return Resolution{}, false, err
		}
		*attempted = append(*attempted, cand)

		r.logger.Debug("Trying selector candidate.",
			zap.String("kind", kind.String()),
			zap.String("selector", Truncate(cand)))

		candCtx, cancel := context.WithTimeout(ctx, r.candidateTimeout)
		node, err := q.QueryVisible(candCtx, cand, kind)
		cancel()

		if err != nil {
			if ctx.Err() != nil {
				return Resolution{}, false, ctx.Err()
			}
			// Timeout or lookup failure for this candidate only; move on.
			r.logger.Debug("Selector candidate failed.",
				zap.String("kind", kind.String()),
				zap.String("selector", Truncate(cand)),
				zap.Error(err))
			continue
		}

		r.logger.Debug("Found element.",
			zap.String("kind", kind.String()),
			zap.String("selector", Truncate(cand)))
		return Resolution{Node: node, SelectorUsed: cand, Kind: kind}, true, nil
	}
	return Resolution{}, false, nil
}

// buildList prepends the primary selector to the candidate list with
// order-preserving de-duplication.
func buildList(primary string, candidates []selector.Candidate) []string {
	out := make([]string, 0, len(candidates)+1)
	seen := make(map[string]bool)
	if primary = strings.TrimSpace(primary); primary != "" {
		out = append(out, primary)
		seen[primary] = true
	}
	for _, c := range candidates {
		if !seen[c.Selector] {
			seen[c.Selector] = true
			out = append(out, c.Selector)
		}
	}
	return out
}

// maxLoggedSelector keeps log lines readable when selectors are deep paths.
const maxLoggedSelector = 35

// Truncate shortens a selector for logging.
func Truncate(sel string) string {
	if len(sel) <= maxLoggedSelector {
		return sel
	}
	return sel[:maxLoggedSelector] + "..."
}
