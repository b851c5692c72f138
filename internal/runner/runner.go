// internal/runner/runner.go
// The runner replays a persisted tool definition step by step. Steps execute
// strictly in sequence; each selector-bearing step goes through one
// resolve-and-act cycle per attempt, wrapped in a bounded retry loop. The
// retry tier sits above the resolver's candidate fallback: the resolver
// decides which selector finds the element, the runner decides whether a
// failed cycle is worth trying again.
package runner

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"go.uber.org/zap"

	"github.com/xkilldash9x/anchor-cli/api/schemas"
	"github.com/xkilldash9x/anchor-cli/internal/anchor"
	"github.com/xkilldash9x/anchor-cli/internal/resolver"
)

// Page is the browser surface the runner drives. A live chromedp session
// implements it; tests substitute a scripted fake.
type Page interface {
	resolver.PageQuerier

	Navigate(ctx context.Context, url string) error
	CurrentURL(ctx context.Context) (string, error)
	ClickNode(ctx context.Context, node *cdp.Node) error
	TypeNode(ctx context.Context, node *cdp.Node, text string) error
	SelectNode(ctx context.Context, node *cdp.Node, value string) error
	KeyPressNode(ctx context.Context, node *cdp.Node, key string) error
	ScrollIntoViewNode(ctx context.Context, node *cdp.Node) error
	ExtractTextNode(ctx context.Context, node *cdp.Node) (string, error)
}

// Runner executes tool definitions against a Page.
type Runner struct {
	page     Page
	resolver *resolver.Resolver
	registry *anchor.Registry
	policy   schemas.RetryPolicy
	logger   *zap.Logger
	steps    *StepLogger

	// ContinueOnFailure keeps executing later steps after a terminal step
	// failure instead of aborting the run.
	ContinueOnFailure bool
}

// New creates a Runner. The registry may be nil during replay; descriptors
// then come from the steps themselves.
func New(page Page, res *resolver.Resolver, reg *anchor.Registry, policy schemas.RetryPolicy, logger *zap.Logger, stepLogging bool) (*Runner, error) {
	if err := policy.Validate(); err != nil {
		return nil, err
	}
	return &Runner{
		page:     page,
		resolver: res,
		registry: reg,
		policy:   policy,
		logger:   logger.Named("runner"),
		steps:    NewStepLogger(logger, stepLogging),
	}, nil
}

// Run executes every step of the definition in order. Step n+1 never starts
// before step n's retry loop concludes. The returned slice holds one result
// per executed step.
func (r *Runner) Run(ctx context.Context, def *schemas.ToolDefinition) ([]schemas.StepResult, error) {
	if err := def.Validate(); err != nil {
		return nil, fmt.Errorf("refusing to run invalid definition: %w", err)
	}

	results := make([]schemas.StepResult, 0, len(def.Steps))
	for i, step := range def.Steps {
		res := r.RunStep(ctx, i, step)
		results = append(results, res)

		if res.Status == schemas.StepStatusFailure && !r.ContinueOnFailure {
			return results, fmt.Errorf("run aborted at step %d: %s", i, res.Error)
		}
		if err := ctx.Err(); err != nil {
			return results, err
		}
	}
	return results, nil
}

// RunStep executes one step's full retry loop and reports its terminal
// outcome. It never panics and never retries past the policy's budget.
func (r *Runner) RunStep(ctx context.Context, index int, step schemas.ToolStep) schemas.StepResult {
	result := schemas.StepResult{Index: index, Type: step.Type}

	// Agent steps are opaque to the replay engine.
	if step.Type == schemas.StepAgent {
		r.logger.Info("Skipping agent step; no agent attached.", zap.Int("step", index))
		result.Status = schemas.StepStatusSkipped
		return result
	}

	overallStart := time.Now()
	var lastErr error

	for attempt := 1; attempt <= r.policy.MaxAttempts; attempt++ {
		attemptStart := time.Now()
		url := r.currentURL(ctx)
		r.steps.Start(index, step.Type, attempt, url)

		selectorUsed, extracted, err := r.executeOnce(ctx, step)
		elapsed := time.Since(attemptStart)
		url = r.currentURL(ctx)

		result.Attempts = attempt
		if err == nil {
			r.steps.End(index, step.Type, attempt, schemas.StepStatusSuccess, elapsed, url, nil)
			result.Status = schemas.StepStatusSuccess
			result.SelectorUsed = selectorUsed
			result.Extracted = extracted
			result.Elapsed = time.Since(overallStart)
			result.URL = url
			return result
		}

		r.steps.End(index, step.Type, attempt, schemas.StepStatusFailure, elapsed, url, err)
		lastErr = err

		if ctx.Err() != nil || !recoverable(err) {
			break
		}
		if attempt < r.policy.MaxAttempts && r.policy.Delay > 0 {
			if err := sleepCtx(ctx, r.policy.Delay); err != nil {
				lastErr = err
				break
			}
		}
	}

	terminal := &BudgetExceededError{Index: index, Type: step.Type, Attempts: result.Attempts, Err: lastErr}
	result.Status = schemas.StepStatusFailure
	result.Elapsed = time.Since(overallStart)
	result.URL = r.currentURL(ctx)
	result.Error = terminal.Error()
	return result
}

// executeOnce performs a single resolve-and-act cycle.
func (r *Runner) executeOnce(ctx context.Context, step schemas.ToolStep) (selectorUsed, extracted string, err error) {
	switch step.Type {
	case schemas.StepNavigation:
		return "", "", r.page.Navigate(ctx, step.URL)

	case schemas.StepWait:
		return "", "", sleepCtx(ctx, secondsToDuration(step.Seconds))
	}

	// Everything else targets an element.
	resolveCtx := ctx
	if step.Type == schemas.StepWaitForElement && step.Timeout > 0 {
		var cancel context.CancelFunc
		resolveCtx, cancel = context.WithTimeout(ctx, secondsToDuration(step.Timeout))
		defer cancel()
	}
	res, err := r.resolver.Resolve(resolveCtx, r.page, step.CSSSelector, r.descriptorFor(step))
	if err != nil {
		return "", "", err
	}

	switch step.Type {
	case schemas.StepWaitForElement:
		// Resolution already waited for visibility.
	case schemas.StepClick:
		err = r.page.ClickNode(ctx, res.Node)
	case schemas.StepInput:
		err = r.page.TypeNode(ctx, res.Node, step.Value)
	case schemas.StepSelectChange:
		err = r.page.SelectNode(ctx, res.Node, step.Value)
	case schemas.StepKeyPress:
		err = r.page.KeyPressNode(ctx, res.Node, step.Key)
	case schemas.StepScrollIntoView:
		err = r.page.ScrollIntoViewNode(ctx, res.Node)
	case schemas.StepExtract:
		extracted, err = r.page.ExtractTextNode(ctx, res.Node)
	default:
		return "", "", fmt.Errorf("unsupported step type %q", step.Type)
	}

	if err != nil {
		if ctx.Err() != nil {
			return "", "", ctx.Err()
		}
		return "", "", &TransientActionError{Action: string(step.Type), Err: err}
	}
	return res.SelectorUsed, extracted, nil
}

// descriptorFor reconstructs the element descriptor backing a step. The
// registry entry wins when the hash is known; otherwise the step's embedded
// snapshot, then a minimal descriptor built from the persisted selectors.
func (r *Runner) descriptorFor(step schemas.ToolStep) schemas.ElementDescriptor {
	if step.ElementHash != "" && r.registry != nil {
		if desc, ok := r.registry.Lookup(step.ElementHash); ok {
			return desc
		}
	}
	if step.Descriptor != nil {
		return *step.Descriptor
	}
	return schemas.ElementDescriptor{
		TagName:          step.ElementTag,
		OriginalSelector: step.CSSSelector,
		OriginalXPath:    step.XPath,
	}
}

func (r *Runner) currentURL(ctx context.Context) string {
	if ctx.Err() != nil {
		return ""
	}
	url, err := r.page.CurrentURL(ctx)
	if err != nil {
		return ""
	}
	return url
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func secondsToDuration(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
