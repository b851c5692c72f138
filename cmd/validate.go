// File: cmd/validate.go
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/xkilldash9x/anchor-cli/internal/observability"
	"github.com/xkilldash9x/anchor-cli/internal/resolver"
	"github.com/xkilldash9x/anchor-cli/internal/runner"
	"github.com/xkilldash9x/anchor-cli/internal/selector"
)

// newValidateCmd creates the `validate` command. It checks a persisted tool
// definition without touching a browser: structural validity plus a
// stability audit of each step's primary selector.
func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <tool.json>",
		Short: "Validates a tool definition and audits its selectors for stability",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := observability.GetLogger()

			def, err := runner.LoadDefinition(args[0])
			if err != nil {
				return err
			}

			var flagged int
			for i, step := range def.Steps {
				if !step.Type.SelectorBearing() || step.Descriptor == nil {
					continue
				}
				cands := selector.GenerateCandidates(*step.Descriptor)
				if len(cands) > 0 && cands[0].Tier < selector.TierStrippedOriginal {
					continue
				}
				flagged++
				logger.Warn("Step's primary selector is classified unstable.",
					zap.Int("step", i),
					zap.String("type", string(step.Type)),
					zap.String("selector", resolver.Truncate(step.CSSSelector)))
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d steps, %d flagged as unstable\n",
				def.Name, len(def.Steps), flagged)
			return nil
		},
	}
}
