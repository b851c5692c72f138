// internal/selector/stability_test.go
package selector

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsStableID(t *testing.T) {
	tests := []struct {
		name   string
		id     string
		stable bool
	}{
		{"hand-authored camelCase", "submitBtn", true},
		{"hand-authored kebab", "login-form", true},
		{"hand-authored with small number", "step2", true},
		{"react generated", "react-17", false},
		{"mui generated", "mui-1234", false},
		{"jquery ui counter", "ui-id-7", false},
		{"minified uppercase run", "B3R4DD", false},
		{"long hex", "a1b2c3d4e5", false},
		{"pure digits", "10243", false},
		{"id counter", "id42", false},
		{"underscore counter", "_ref12", false},
		{"long digit tail", "widget123", false},
		{"gen prefix", "gen-tooltip", false},
		{"auto prefix", "auto-row", false},
		{"empty", "", false},
		{"whitespace only", "   ", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.stable, IsStableID(tt.id), "id %q", tt.id)
		})
	}
}

func TestIsStableAttributeValue(t *testing.T) {
	tests := []struct {
		name   string
		value  string
		stable bool
	}{
		{"plain word", "Search", true},
		{"sentence", "Enter your email", true},
		{"deliberate small counter", "step3", true},
		{"long digit tail", "field10492", false},
		{"pure digits", "8812", false},
		{"long hex", "deadbeef01", false},
		{"tmp prefix", "tmp-value", false},
		{"uppercase run", "XK29PD", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.stable, IsStableAttributeValue(tt.value), "value %q", tt.value)
		})
	}
}

func TestExtractStableClasses(t *testing.T) {
	t.Run("excludes CSS-in-JS tokens", func(t *testing.T) {
		classes := ExtractStableClasses("btn btn-primary css-x7f3k2")
		assert.Equal(t, []string{"btn", "btn-primary"}, classes)
	})

	t.Run("excludes state tokens regardless of shape", func(t *testing.T) {
		classes := ExtractStableClasses("nav-item is-active hover-target menu-entry")
		assert.Equal(t, []string{"nav-item", "menu-entry"}, classes)
	})

	t.Run("caps at two tokens preserving order", func(t *testing.T) {
		classes := ExtractStableClasses("alpha beta gamma delta")
		assert.Equal(t, []string{"alpha", "beta"}, classes)
	})

	t.Run("skips single character classes", func(t *testing.T) {
		classes := ExtractStableClasses("a btn")
		assert.Equal(t, []string{"btn"}, classes)
	})

	t.Run("empty attribute yields nothing", func(t *testing.T) {
		assert.Empty(t, ExtractStableClasses(""))
	})

	t.Run("excludes generated shapes", func(t *testing.T) {
		classes := ExtractStableClasses("x-panel12 dyn-box 123456 card")
		assert.Equal(t, []string{"card"}, classes)
	})
}

func TestClassesFromSelector(t *testing.T) {
	classes := classesFromSelector("div.container > button.btn.css-9f8a7b")
	assert.Equal(t, []string{"container", "btn"}, classes)
}
