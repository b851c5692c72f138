// File: cmd/fingerprint.go
package cmd

import (
	"context"
	"fmt"
	"strings"

	json "github.com/json-iterator/go"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/xkilldash9x/anchor-cli/internal/anchor"
	"github.com/xkilldash9x/anchor-cli/internal/browser/dom"
	"github.com/xkilldash9x/anchor-cli/internal/browser/session"
	"github.com/xkilldash9x/anchor-cli/internal/observability"
	"github.com/xkilldash9x/anchor-cli/internal/resolver"
	"github.com/xkilldash9x/anchor-cli/internal/selector"
)

// fingerprintReport is the JSON shape printed by the fingerprint command.
type fingerprintReport struct {
	URL           string              `json:"url"`
	Selector      string              `json:"selector"`
	Tag           string              `json:"tag"`
	ElementHash   string              `json:"elementHash"`
	StableClasses []string            `json:"stableClasses,omitempty"`
	Candidates    []reportedCandidate `json:"candidates"`
}

type reportedCandidate struct {
	Selector string `json:"selector"`
	Tier     string `json:"tier"`
}

// newFingerprintCmd creates the `fingerprint` command, an authoring aid that
// shows what selector candidates and element hash a live element produces.
func newFingerprintCmd() *cobra.Command {
	fpCmd := &cobra.Command{
		Use:   "fingerprint <url> <css-selector>",
		Short: "Computes the stable selector candidates and element hash for a live element",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := observability.GetLogger()
			cfg := appConfig
			url, sel := args[0], args[1]

			allocCtx, allocCancel := session.NewAllocator(ctx, cfg)
			defer allocCancel()

			sess, err := session.NewSession(allocCtx, cfg, logger)
			if err != nil {
				return fmt.Errorf("failed to start browser session: %w", err)
			}
			defer sess.Close()

			if err := sess.Navigate(ctx, url); err != nil {
				return err
			}

			queryCtx, cancel := context.WithTimeout(ctx, cfg.Resolver.CandidateTimeout)
			node, err := sess.QueryVisible(queryCtx, sel, resolver.KindCSS)
			cancel()
			if err != nil {
				return fmt.Errorf("no visible element matched %q: %w", sel, err)
			}

			desc := dom.DescriptorFromCDPNode(node, sel, "")

			// Enrich the descriptor from the serialized document when the
			// element carries an id: the parsed tree yields a positional
			// selector and a unique XPath that a live handle cannot.
			if id, ok := desc.Attributes.Get("id"); ok && id != "" {
				if html, err := sess.DocumentHTML(ctx); err == nil {
					if root, perr := dom.Parse(strings.NewReader(html)); perr == nil {
						if el := dom.FindByID(root, id); el != nil {
							desc.Text = dom.ElementText(el)
							desc.OriginalSelector = dom.SimpleSelector(el)
							desc.OriginalXPath = dom.UniqueXPath(el)
						}
					}
				}
			}

			report := fingerprintReport{
				URL:           url,
				Selector:      sel,
				Tag:           desc.Tag(),
				ElementHash:   anchor.HashOrFallback(desc, 0),
				StableClasses: selector.ExtractStableClasses(desc.Attributes.GetDefault("class", "")),
			}
			for _, c := range selector.GenerateCandidates(desc) {
				report.Candidates = append(report.Candidates, reportedCandidate{
					Selector: c.Selector,
					Tier:     c.Tier.String(),
				})
			}

			out, err := json.MarshalIndent(report, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))

			logger.Debug("Fingerprint complete.",
				zap.String("hash", report.ElementHash),
				zap.Int("candidates", len(report.Candidates)))
			return nil
		},
	}
	return fpCmd
}
