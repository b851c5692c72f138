// File: cmd/replay.go
package cmd

import (
	"fmt"
	"os"

	json "github.com/json-iterator/go"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/xkilldash9x/anchor-cli/api/schemas"
	"github.com/xkilldash9x/anchor-cli/internal/browser/session"
	"github.com/xkilldash9x/anchor-cli/internal/observability"
	"github.com/xkilldash9x/anchor-cli/internal/resolver"
	"github.com/xkilldash9x/anchor-cli/internal/runner"
)

// newReplayCmd creates and configures the `replay` command.
func newReplayCmd() *cobra.Command {
	replayCmd := &cobra.Command{
		Use:   "replay <tool.json>",
		Short: "Replays a persisted tool definition against a live browser",
		Args:  cobra.ExactArgs(1),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			// Bind flags to their viper keys so CLI flags override the
			// config file and environment.
			if err := viper.BindPFlag("retry.max_attempts", cmd.Flags().Lookup("max-attempts")); err != nil {
				return err
			}
			if err := viper.BindPFlag("retry.delay", cmd.Flags().Lookup("delay")); err != nil {
				return err
			}
			if err := viper.BindPFlag("replay.continue_on_failure", cmd.Flags().Lookup("continue-on-failure")); err != nil {
				return err
			}
			if err := viper.BindPFlag("browser.headless", cmd.Flags().Lookup("headless")); err != nil {
				return err
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := observability.GetLogger()

			cfg := appConfig
			if err := viper.Unmarshal(cfg); err != nil {
				return fmt.Errorf("failed to apply flag overrides: %w", err)
			}

			def, err := runner.LoadDefinition(args[0])
			if err != nil {
				return err
			}
			logger.Info("Loaded tool definition.",
				zap.String("name", def.Name),
				zap.Int("steps", len(def.Steps)))

			allocCtx, allocCancel := session.NewAllocator(ctx, cfg)
			defer allocCancel()

			sess, err := session.NewSession(allocCtx, cfg, logger)
			if err != nil {
				return fmt.Errorf("failed to start browser session: %w", err)
			}
			defer sess.Close()

			res := resolver.New(logger, cfg.Resolver.CandidateTimeout)
			policy := schemas.RetryPolicy{
				MaxAttempts: cfg.Retry.MaxAttempts,
				Delay:       cfg.Retry.Delay,
			}
			run, err := runner.New(sess, res, nil, policy, logger, cfg.Replay.StepLogging)
			if err != nil {
				return err
			}
			run.ContinueOnFailure = cfg.Replay.ContinueOnFailure

			results, runErr := run.Run(ctx, def)

			if out, _ := cmd.Flags().GetString("output"); out != "" {
				if err := writeResults(out, results); err != nil {
					logger.Error("Failed to write results file.", zap.Error(err))
				}
			}
			summarize(logger, results)

			return runErr
		},
	}

	replayCmd.Flags().Int("max-attempts", 3, "retry attempts per step")
	replayCmd.Flags().Duration("delay", 0, "delay between retry attempts (e.g. 1s)")
	replayCmd.Flags().Bool("continue-on-failure", false, "keep running after a step fails terminally")
	replayCmd.Flags().Bool("headless", true, "run the browser headless")
	replayCmd.Flags().StringP("output", "o", "", "write step results to a JSON file")

	return replayCmd
}

func writeResults(path string, results []schemas.StepResult) error {
	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func summarize(logger *zap.Logger, results []schemas.StepResult) {
	var ok, failed, skipped int
	for _, r := range results {
		switch r.Status {
		case schemas.StepStatusSuccess:
			ok++
		case schemas.StepStatusFailure:
			failed++
		case schemas.StepStatusSkipped:
			skipped++
		}
	}
	logger.Info("Replay finished.",
		zap.Int("succeeded", ok),
		zap.Int("failed", failed),
		zap.Int("skipped", skipped))
}
