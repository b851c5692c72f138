// internal/browser/session/interaction.go
// High-level page interactions for a Session: navigation, clicking, typing,
// scrolling and waiting. Element-targeted actions operate on live CDP node
// handles rather than raw selectors. To act on a handle reliably even when
// the surrounding DOM has shifted, the node is tagged with a temporary
// attribute and addressed through it for the duration of the action.
package session

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/dom"
	"github.com/chromedp/chromedp"
	"github.com/chromedp/chromedp/kb"
	json "github.com/json-iterator/go"
	"go.uber.org/zap"
)

const tagAttributeName = "data-anchor-id"

var namedKeys = map[string]string{
	"Enter":      kb.Enter,
	"Tab":        kb.Tab,
	"Escape":     kb.Escape,
	"Backspace":  kb.Backspace,
	"Delete":     kb.Delete,
	"ArrowUp":    kb.ArrowUp,
	"ArrowDown":  kb.ArrowDown,
	"ArrowLeft":  kb.ArrowLeft,
	"ArrowRight": kb.ArrowRight,
	"Home":       kb.Home,
	"End":        kb.End,
	"PageUp":     kb.PageUp,
	"PageDown":   kb.PageDown,
}

// jsonEncode safely embeds a Go string into generated JavaScript.
func jsonEncode(s string) string {
	b, err := json.Marshal(s)
	if err != nil {
		return `""`
	}
	return string(b)
}

// Navigate loads the URL and waits for the page to settle. The quiet period
// after load absorbs late layout shifts and client-side redirects.
func (s *Session) Navigate(ctx context.Context, url string) error {
	s.logger.Debug("Navigating.", zap.String("url", url))

	navTimeout := s.cfg.Browser.NavigationTimeout
	if navTimeout <= 0 {
		navTimeout = 90 * time.Second
	}
	navCtx, navCancel := context.WithTimeout(ctx, navTimeout)
	defer navCancel()

	if err := s.RunActions(navCtx, chromedp.Navigate(url)); err != nil {
		if navCtx.Err() == context.DeadlineExceeded {
			return fmt.Errorf("navigation to %s timed out after %v: %w", url, navTimeout, navCtx.Err())
		}
		return fmt.Errorf("navigation to %s failed: %w", url, err)
	}

	quietPeriod := s.cfg.Browser.PostLoadWait
	if quietPeriod <= 0 {
		quietPeriod = 1500 * time.Millisecond
	}
	if err := s.RunActions(ctx, chromedp.WaitReady("body", chromedp.ByQuery), chromedp.Sleep(quietPeriod)); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		// Stabilization is best effort once navigation itself succeeded.
		s.logger.Warn("Page stabilization after navigation failed.", zap.Error(err))
	}
	return nil
}

// DocumentHTML returns the serialized outer HTML of the current document.
func (s *Session) DocumentHTML(ctx context.Context) (string, error) {
	var out string
	if err := s.RunActions(ctx, chromedp.OuterHTML("html", &out, chromedp.ByQuery)); err != nil {
		return "", fmt.Errorf("failed to capture document HTML: %w", err)
	}
	return out, nil
}

// WaitForElement blocks until the selector matches a visible element.
func (s *Session) WaitForElement(ctx context.Context, sel string, timeout time.Duration) error {
	if timeout <= 0 {
		timeout = s.cfg.Browser.ActionTimeout
	}
	waitCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := s.RunActions(waitCtx, chromedp.WaitVisible(sel, chromedp.ByQuery)); err != nil {
		if waitCtx.Err() == context.DeadlineExceeded {
			return fmt.Errorf("element '%s' not visible after %v: %w", sel, timeout, waitCtx.Err())
		}
		return err
	}
	return nil
}

// ClickNode scrolls the node into view and clicks it.
func (s *Session) ClickNode(ctx context.Context, node *cdp.Node) error {
	return s.withTaggedNode(ctx, node, "click", func(opCtx context.Context, sel string) error {
		return s.RunActions(opCtx, chromedp.Tasks{
			chromedp.ScrollIntoView(sel, chromedp.ByQuery),
			chromedp.WaitVisible(sel, chromedp.ByQuery),
			chromedp.Click(sel, chromedp.ByQuery),
		})
	})
}

// TypeNode clears the node's current value and types the text into it.
func (s *Session) TypeNode(ctx context.Context, node *cdp.Node, text string) error {
	return s.withTaggedNode(ctx, node, "type", func(opCtx context.Context, sel string) error {
		clearJS := fmt.Sprintf(`(() => {
			const el = document.querySelector(%s);
			if (!el) return;
			el.focus();
			el.value = '';
			el.dispatchEvent(new Event('input', {bubbles: true}));
		})()`, jsonEncode(sel))

		return s.RunActions(opCtx, chromedp.Tasks{
			chromedp.ScrollIntoView(sel, chromedp.ByQuery),
			chromedp.WaitVisible(sel, chromedp.ByQuery),
			chromedp.Evaluate(clearJS, nil),
			chromedp.SendKeys(sel, text, chromedp.ByQuery),
		})
	})
}

// SelectNode sets the value of a <select> element and fires the events a
// real change would produce.
func (s *Session) SelectNode(ctx context.Context, node *cdp.Node, value string) error {
	return s.withTaggedNode(ctx, node, "select_change", func(opCtx context.Context, sel string) error {
		changeJS := fmt.Sprintf(`(() => {
			const el = document.querySelector(%s);
			if (!el) return false;
			el.value = %s;
			el.dispatchEvent(new Event('input', {bubbles: true}));
			el.dispatchEvent(new Event('change', {bubbles: true}));
			return true;
		})()`, jsonEncode(sel), jsonEncode(value))

		var ok bool
		if err := s.RunActions(opCtx, chromedp.Tasks{
			chromedp.ScrollIntoView(sel, chromedp.ByQuery),
			chromedp.WaitVisible(sel, chromedp.ByQuery),
			chromedp.Evaluate(changeJS, &ok),
		}); err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("select element vanished before value could be set")
		}
		return nil
	})
}

// KeyPressNode focuses the node and sends a key. Named keys ("Enter",
// "Tab", ...) are translated to their control sequences; anything else is
// sent literally.
func (s *Session) KeyPressNode(ctx context.Context, node *cdp.Node, key string) error {
	keys := key
	if mapped, ok := namedKeys[key]; ok {
		keys = mapped
	}
	return s.withTaggedNode(ctx, node, "key_press", func(opCtx context.Context, sel string) error {
		return s.RunActions(opCtx, chromedp.Tasks{
			chromedp.WaitVisible(sel, chromedp.ByQuery),
			chromedp.Focus(sel, chromedp.ByQuery),
			chromedp.SendKeys(sel, keys, chromedp.ByQuery),
		})
	})
}

// ScrollIntoViewNode brings the node into the viewport.
func (s *Session) ScrollIntoViewNode(ctx context.Context, node *cdp.Node) error {
	return s.withTaggedNode(ctx, node, "scroll_into_view", func(opCtx context.Context, sel string) error {
		return s.RunActions(opCtx, chromedp.ScrollIntoView(sel, chromedp.ByQuery))
	})
}

// ExtractTextNode reads the node's visible text content.
func (s *Session) ExtractTextNode(ctx context.Context, node *cdp.Node) (string, error) {
	var text string
	err := s.withTaggedNode(ctx, node, "extract", func(opCtx context.Context, sel string) error {
		return s.RunActions(opCtx, chromedp.Text(sel, &text, chromedp.ByQuery))
	})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

// withTaggedNode tags the node with a temporary unique attribute, runs the
// action addressed through that attribute, and removes the tag afterwards.
// Addressing by a freshly written attribute is far more reliable than
// re-querying the original selector, which may now match a different
// element.
func (s *Session) withTaggedNode(ctx context.Context, node *cdp.Node, actionName string, fn func(ctx context.Context, sel string) error) error {
	if node == nil {
		return fmt.Errorf("%s: nil element handle", actionName)
	}

	timeout := s.cfg.Browser.ActionTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	opCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	tempID := fmt.Sprintf("anchor-%s-%d", actionName, time.Now().UnixNano())
	sel := fmt.Sprintf(`[%s="%s"]`, tagAttributeName, tempID)

	// Tagging through the NodeID fails fast if the handle went stale.
	if err := s.RunActions(opCtx, chromedp.ActionFunc(func(c context.Context) error {
		return dom.SetAttributeValue(node.NodeID, tagAttributeName, tempID).Do(c)
	})); err != nil {
		return fmt.Errorf("failed to tag element for %s (handle may be stale): %w", actionName, err)
	}
	defer s.cleanupTag(opCtx, sel)

	if err := fn(opCtx, sel); err != nil {
		if opCtx.Err() == context.DeadlineExceeded {
			return fmt.Errorf("%s timed out after %v: %w", actionName, timeout, opCtx.Err())
		}
		return fmt.Errorf("%s failed: %w", actionName, err)
	}
	return nil
}

// cleanupTag removes the temporary attribute, detaching from the caller's
// cancellation so the DOM is left clean even after a cancelled action.
func (s *Session) cleanupTag(ctx context.Context, sel string) {
	if chromedp.FromContext(ctx) == nil {
		return
	}

	detached := valueOnlyContext{ctx}
	taskCtx, cancel := context.WithTimeout(detached, 2*time.Second)
	defer cancel()

	js := fmt.Sprintf(`document.querySelector(%s)?.removeAttribute('%s')`, jsonEncode(sel), tagAttributeName)
	if err := chromedp.Run(taskCtx, chromedp.Evaluate(js, nil)); err != nil && taskCtx.Err() == nil {
		s.logger.Debug("Tag cleanup failed, element likely gone.", zap.String("selector", sel), zap.Error(err))
	}
}
