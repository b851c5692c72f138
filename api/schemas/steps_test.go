package schemas

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSelectorBearing(t *testing.T) {
	bearing := []StepType{
		StepClick, StepInput, StepSelectChange, StepKeyPress,
		StepWaitForElement, StepScrollIntoView, StepExtract,
	}
	for _, st := range bearing {
		assert.True(t, st.SelectorBearing(), "%s should be selector-bearing", st)
	}

	for _, st := range []StepType{StepNavigation, StepWait, StepAgent} {
		assert.False(t, st.SelectorBearing(), "%s should not be selector-bearing", st)
	}
}

func TestToolStepValidate(t *testing.T) {
	cases := []struct {
		name string
		step ToolStep
		ok   bool
	}{
		{"click with selector", ToolStep{Type: StepClick, CSSSelector: "#go"}, true},
		{"click without selector", ToolStep{Type: StepClick}, false},
		{"navigation with url", ToolStep{Type: StepNavigation, URL: "https://example.com"}, true},
		{"navigation without url", ToolStep{Type: StepNavigation}, false},
		{"wait needs nothing", ToolStep{Type: StepWait, Seconds: 1.5}, true},
		{"agent needs nothing", ToolStep{Type: StepAgent, Task: "summarize the page"}, true},
		{"missing type", ToolStep{CSSSelector: "#go"}, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.step.Validate()
			if tc.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestToolDefinitionValidate(t *testing.T) {
	valid := ToolDefinition{
		Name: "login",
		Steps: []ToolStep{
			{Type: StepNavigation, URL: "https://example.com"},
			{Type: StepInput, CSSSelector: "#email", Value: "{{email}}"},
			{Type: StepClick, CSSSelector: "#submitBtn"},
		},
	}
	assert.NoError(t, valid.Validate())

	t.Run("missing name", func(t *testing.T) {
		def := valid
		def.Name = ""
		assert.Error(t, def.Validate())
	})

	t.Run("bad step is reported with its index", func(t *testing.T) {
		def := valid
		def.Steps = append([]ToolStep{}, valid.Steps...)
		def.Steps[2].CSSSelector = ""
		err := def.Validate()
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "step 2")
	})
}

func TestRetryPolicyValidate(t *testing.T) {
	assert.NoError(t, RetryPolicy{MaxAttempts: 1}.Validate())
	assert.NoError(t, RetryPolicy{MaxAttempts: 3, Delay: time.Second}.Validate())
	assert.Error(t, RetryPolicy{MaxAttempts: 0}.Validate())
	assert.Error(t, RetryPolicy{MaxAttempts: 2, Delay: -time.Millisecond}.Validate())
}
