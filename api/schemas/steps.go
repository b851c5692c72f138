package schemas

import (
	"fmt"
	"time"
)

// StepType identifies the kind of action a tool step performs during replay.
type StepType string

const (
	StepNavigation      StepType = "navigation"
	StepClick           StepType = "click"
	StepInput           StepType = "input"
	StepSelectChange    StepType = "select_change"
	StepKeyPress        StepType = "key_press"
	StepWait            StepType = "wait"
	StepWaitForElement  StepType = "wait_for_element"
	StepScrollIntoView  StepType = "scroll_into_view"
	StepExtract         StepType = "extract"
	// StepAgent delegates the step to an external agent. It carries only a
	// task description; this subsystem treats it as opaque.
	StepAgent StepType = "agent"
)

// selectorBearing lists the step types that target a specific DOM element and
// therefore must carry a non-empty cssSelector once persisted.
var selectorBearing = map[StepType]bool{
	StepClick:          true,
	StepInput:          true,
	StepSelectChange:   true,
	StepKeyPress:       true,
	StepWaitForElement: true,
	StepScrollIntoView: true,
	StepExtract:        true,
}

// SelectorBearing reports whether the step type targets a DOM element.
func (t StepType) SelectorBearing() bool { return selectorBearing[t] }

// ToolStep is one persisted action of a tool definition. Selector-bearing
// steps are never written out with an empty CSSSelector; the authoring layer
// back-fills it from the element hash registry first.
type ToolStep struct {
	Type        StepType `json:"type"`
	Description string   `json:"description,omitempty"`

	// Element targeting. ElementHash is the 10-hex-char authoring-time
	// reference; CSSSelector/XPath/ElementTag are back-filled from it before
	// persistence and are what replay actually uses.
	CSSSelector string `json:"cssSelector,omitempty"`
	XPath       string `json:"xpath,omitempty"`
	ElementTag  string `json:"elementTag,omitempty"`
	ElementHash string `json:"elementHash,omitempty"`

	// Step-specific fields.
	URL     string  `json:"url,omitempty"`     // navigation
	Value   string  `json:"value,omitempty"`   // input, select_change
	Key     string  `json:"key,omitempty"`     // key_press
	Seconds float64 `json:"seconds,omitempty"` // wait
	Timeout float64 `json:"timeout,omitempty"` // wait_for_element, seconds
	Task    string  `json:"task,omitempty"`    // agent

	// Descriptor is the captured element snapshot carried alongside the step
	// so replay can regenerate fallback candidates. Optional; replay degrades
	// to the persisted selectors without it.
	Descriptor *ElementDescriptor `json:"descriptor,omitempty"`
}

// Validate checks the persistence invariant for a single step.
func (s ToolStep) Validate() error {
	if s.Type == "" {
		return fmt.Errorf("step has no type")
	}
	if s.Type.SelectorBearing() && s.CSSSelector == "" {
		return fmt.Errorf("step type %q requires a cssSelector", s.Type)
	}
	if s.Type == StepNavigation && s.URL == "" {
		return fmt.Errorf("navigation step requires a url")
	}
	return nil
}

// InputParameter describes one replay-time input of a tool definition.
type InputParameter struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Description string `json:"description,omitempty"`
	Required    bool   `json:"required,omitempty"`
}

// ToolDefinition is the persisted, replayable artifact produced by a
// demonstration session.
type ToolDefinition struct {
	Name        string           `json:"name"`
	Description string           `json:"description,omitempty"`
	Version     string           `json:"version,omitempty"`
	Steps       []ToolStep       `json:"steps"`
	InputSchema []InputParameter `json:"input_schema,omitempty"`
}

// Validate checks every step's persistence invariant.
func (d ToolDefinition) Validate() error {
	if d.Name == "" {
		return fmt.Errorf("tool definition has no name")
	}
	for i, step := range d.Steps {
		if err := step.Validate(); err != nil {
			return fmt.Errorf("step %d: %w", i, err)
		}
	}
	return nil
}

// RetryPolicy bounds the per-step retry loop. It is orthogonal to selector
// candidate fallback, which happens within a single attempt.
type RetryPolicy struct {
	MaxAttempts int           `json:"maxAttempts"`
	Delay       time.Duration `json:"delay"`
}

// Validate rejects non-executable policies.
func (p RetryPolicy) Validate() error {
	if p.MaxAttempts < 1 {
		return fmt.Errorf("retry policy maxAttempts must be >= 1, got %d", p.MaxAttempts)
	}
	if p.Delay < 0 {
		return fmt.Errorf("retry policy delay must be >= 0, got %v", p.Delay)
	}
	return nil
}

// StepStatus is the terminal state of one step execution.
type StepStatus string

const (
	StepStatusSuccess StepStatus = "success"
	StepStatusFailure StepStatus = "failure"
	StepStatusSkipped StepStatus = "skipped"
)

// StepResult records the outcome of one step's full retry loop.
type StepResult struct {
	Index        int           `json:"index"`
	Type         StepType      `json:"type"`
	Status       StepStatus    `json:"status"`
	Attempts     int           `json:"attempts"`
	SelectorUsed string        `json:"selectorUsed,omitempty"`
	Elapsed      time.Duration `json:"elapsed"`
	URL          string        `json:"url,omitempty"`
	Extracted    string        `json:"extracted,omitempty"`
	Error        string        `json:"error,omitempty"`
}
