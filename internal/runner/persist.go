// internal/runner/persist.go
// Authoring-time persistence of tool definitions. Before a definition is
// written out, every selector-bearing step has its concrete selectors
// back-filled from the element hash registry, so replay never depends on the
// registry being present.
package runner

import (
	"fmt"
	"os"

	json "github.com/json-iterator/go"
	"go.uber.org/zap"

	"github.com/xkilldash9x/anchor-cli/api/schemas"
	"github.com/xkilldash9x/anchor-cli/internal/anchor"
	"github.com/xkilldash9x/anchor-cli/internal/resolver"
	"github.com/xkilldash9x/anchor-cli/internal/selector"
)

// BackfillSelectors resolves every step's element hash through the registry
// and fills in cssSelector, xpath, elementTag and the descriptor snapshot. A
// selector-bearing step with neither a resolvable hash nor a captured
// selector is rejected; the definition must not be persisted in that state.
func BackfillSelectors(def *schemas.ToolDefinition, reg *anchor.Registry, logger *zap.Logger) error {
	log := logger.Named("persist")

	for i := range def.Steps {
		step := &def.Steps[i]
		if !step.Type.SelectorBearing() {
			continue
		}

		if step.ElementHash != "" && reg != nil {
			desc, ok := reg.Lookup(step.ElementHash)
			if !ok {
				if step.CSSSelector == "" {
					return fmt.Errorf("step %d (%s): element hash %s has no registry entry and no captured selector", i, step.Type, step.ElementHash)
				}
				log.Warn("Element hash has no registry entry; keeping captured selector.",
					zap.Int("step", i),
					zap.String("hash", step.ElementHash))
			} else {
				if step.CSSSelector == "" {
					step.CSSSelector = selector.StableSelector(desc)
				}
				if step.XPath == "" {
					step.XPath = desc.OriginalXPath
				}
				if step.ElementTag == "" {
					step.ElementTag = desc.Tag()
				}
				if step.Descriptor == nil {
					snapshot := desc
					step.Descriptor = &snapshot
				}
				warnIfUnstable(log, i, step, desc)
			}
		}

		if step.CSSSelector == "" {
			return fmt.Errorf("step %d (%s): no resolvable hash and no captured selector", i, step.Type)
		}
	}

	return def.Validate()
}

// warnIfUnstable flags steps whose primary selector is a last-resort
// fallback. The step is still persisted, but it is the likeliest future
// flake.
func warnIfUnstable(log *zap.Logger, index int, step *schemas.ToolStep, desc schemas.ElementDescriptor) {
	cands := selector.GenerateCandidates(desc)
	if len(cands) > 0 && cands[0].Tier < selector.TierStrippedOriginal {
		return
	}
	log.Warn("Primary selector for step is classified unstable; replay may be flaky.",
		zap.Int("step", index),
		zap.String("type", string(step.Type)),
		zap.String("selector", resolver.Truncate(step.CSSSelector)))
}

// SaveDefinition validates and writes the definition as indented JSON.
func SaveDefinition(path string, def *schemas.ToolDefinition) error {
	if err := def.Validate(); err != nil {
		return fmt.Errorf("refusing to persist invalid definition: %w", err)
	}
	data, err := json.MarshalIndent(def, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode definition: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write definition to %s: %w", path, err)
	}
	return nil
}

// LoadDefinition reads and validates a persisted definition.
func LoadDefinition(path string) (*schemas.ToolDefinition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read definition from %s: %w", path, err)
	}
	var def schemas.ToolDefinition
	if err := json.Unmarshal(data, &def); err != nil {
		return nil, fmt.Errorf("failed to decode definition: %w", err)
	}
	if err := def.Validate(); err != nil {
		return nil, fmt.Errorf("definition %s is invalid: %w", path, err)
	}
	return &def, nil
}
