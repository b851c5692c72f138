// internal/runner/errors.go
package runner

import (
	"errors"
	"fmt"

	"github.com/xkilldash9x/anchor-cli/api/schemas"
	"github.com/xkilldash9x/anchor-cli/internal/resolver"
)

// TransientActionError marks an action failure that happened after the
// element resolved, e.g. a click intercepted by an overlay. The retry loop
// treats these as recoverable.
type TransientActionError struct {
	Action string
	Err    error
}

func (e *TransientActionError) Error() string {
	return fmt.Sprintf("transient %s failure: %v", e.Action, e.Err)
}

func (e *TransientActionError) Unwrap() error { return e.Err }

// BudgetExceededError is the terminal failure of a step whose retry budget
// ran out. It wraps the last attempt's error.
type BudgetExceededError struct {
	Index    int
	Type     schemas.StepType
	Attempts int
	Err      error
}

func (e *BudgetExceededError) Error() string {
	return fmt.Sprintf("step %d (%s) failed after %d attempts: %v", e.Index, e.Type, e.Attempts, e.Err)
}

func (e *BudgetExceededError) Unwrap() error { return e.Err }

// recoverable reports whether the retry loop should try the whole
// resolve-and-act cycle again. Resolution misses and transient action
// failures are recoverable; context cancellation and malformed steps are
// not.
func recoverable(err error) bool {
	var notFound *resolver.ElementNotFoundError
	if errors.As(err, &notFound) {
		return true
	}
	var transient *TransientActionError
	return errors.As(err, &transient)
}
