// internal/runner/persist_test.go
package runner

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/xkilldash9x/anchor-cli/api/schemas"
	"github.com/xkilldash9x/anchor-cli/internal/anchor"
)

func submitDescriptor() schemas.ElementDescriptor {
	return schemas.ElementDescriptor{
		TagName: "button",
		Attributes: schemas.AttrList{
			{Key: "id", Value: "submitBtn"},
			{Key: "class", Value: "btn btn-primary"},
		},
		OriginalSelector: "form > button",
		OriginalXPath:    "//form/button[1]",
	}
}

func TestBackfillSelectorsFromRegistry(t *testing.T) {
	reg := anchor.NewRegistry()
	hash := reg.Register(submitDescriptor(), 0)

	def := &schemas.ToolDefinition{
		Name: "login",
		Steps: []schemas.ToolStep{
			{Type: schemas.StepNavigation, URL: "https://example.com"},
			{Type: schemas.StepClick, ElementHash: hash},
		},
	}

	require.NoError(t, BackfillSelectors(def, reg, zap.NewNop()))

	step := def.Steps[1]
	assert.Equal(t, "#submitBtn", step.CSSSelector)
	assert.Equal(t, "//form/button[1]", step.XPath)
	assert.Equal(t, "button", step.ElementTag)
	require.NotNil(t, step.Descriptor)
	assert.Equal(t, "button", step.Descriptor.TagName)
}

func TestBackfillRejectsUnresolvableStep(t *testing.T) {
	reg := anchor.NewRegistry()

	t.Run("unknown hash and no captured selector", func(t *testing.T) {
		def := &schemas.ToolDefinition{
			Name:  "broken",
			Steps: []schemas.ToolStep{{Type: schemas.StepClick, ElementHash: "ffffffffff"}},
		}
		err := BackfillSelectors(def, reg, zap.NewNop())
		assert.Error(t, err)
	})

	t.Run("no hash and no captured selector", func(t *testing.T) {
		def := &schemas.ToolDefinition{
			Name:  "broken",
			Steps: []schemas.ToolStep{{Type: schemas.StepInput, Value: "hello"}},
		}
		err := BackfillSelectors(def, reg, zap.NewNop())
		assert.Error(t, err)
	})

	t.Run("unknown hash but captured selector survives", func(t *testing.T) {
		def := &schemas.ToolDefinition{
			Name: "ok",
			Steps: []schemas.ToolStep{
				{Type: schemas.StepClick, ElementHash: "ffffffffff", CSSSelector: "#fallback"},
			},
		}
		assert.NoError(t, BackfillSelectors(def, reg, zap.NewNop()))
	})
}

func TestBackfillKeepsExistingSelectors(t *testing.T) {
	reg := anchor.NewRegistry()
	hash := reg.Register(submitDescriptor(), 0)

	def := &schemas.ToolDefinition{
		Name: "login",
		Steps: []schemas.ToolStep{
			{Type: schemas.StepClick, ElementHash: hash, CSSSelector: "#alreadySet"},
		},
	}

	require.NoError(t, BackfillSelectors(def, reg, zap.NewNop()))
	assert.Equal(t, "#alreadySet", def.Steps[0].CSSSelector, "captured selector must not be overwritten")
}

func TestSaveAndLoadDefinition(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tool.json")

	def := &schemas.ToolDefinition{
		Name:    "login",
		Version: "1",
		Steps: []schemas.ToolStep{
			{Type: schemas.StepNavigation, URL: "https://example.com"},
			{Type: schemas.StepClick, CSSSelector: "#submitBtn", ElementTag: "button", ElementHash: "0123456789"},
		},
	}

	require.NoError(t, SaveDefinition(path, def))

	loaded, err := LoadDefinition(path)
	require.NoError(t, err)
	assert.Equal(t, def, loaded)
}

func TestSaveRejectsInvalidDefinition(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tool.json")

	def := &schemas.ToolDefinition{
		Name:  "broken",
		Steps: []schemas.ToolStep{{Type: schemas.StepClick}}, // selector-bearing, no selector
	}
	assert.Error(t, SaveDefinition(path, def))
}

func TestLoadMissingFile(t *testing.T) {
	_, err := LoadDefinition(filepath.Join(t.TempDir(), "absent.json"))
	assert.Error(t, err)
}
