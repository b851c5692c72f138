// internal/browser/session/allocator.go
package session

import (
	"context"
	"strings"

	"github.com/chromedp/chromedp"

	"github.com/xkilldash9x/anchor-cli/internal/config"
)

// ExecOptions translates the browser configuration into chromedp allocator
// options.
func ExecOptions(cfg *config.Config) []chromedp.ExecAllocatorOption {
	// Start with chromedp defaults.
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		// Required on hardened systems where the sandbox cannot start.
		chromedp.NoSandbox,
		// Recommended for stability in containers and headless environments.
		chromedp.Flag("disable-dev-shm-usage", true),
	)

	if cfg.Browser.Headless {
		opts = append(opts, chromedp.Headless)
	}

	if cfg.Browser.DisableGPU {
		opts = append(opts, chromedp.DisableGPU)
	}

	if cfg.Browser.UserAgent != "" {
		opts = append(opts, chromedp.UserAgent(cfg.Browser.UserAgent))
	}

	// Additional flags from the config file's 'args' slice.
	for _, arg := range cfg.Browser.Args {
		// Boolean flags (e.g. --no-zygote).
		if !strings.Contains(arg, "=") {
			if !strings.HasPrefix(arg, "--") {
				arg = "--" + arg
			}
			opts = append(opts, chromedp.Flag(strings.TrimPrefix(arg, "--"), true))
			continue
		}

		// Key=value flags (e.g. --window-size=1280,800).
		parts := strings.SplitN(strings.TrimPrefix(arg, "--"), "=", 2)
		opts = append(opts, chromedp.Flag(parts[0], parts[1]))
	}

	return opts
}

// NewAllocator creates the root exec allocator context for the browser
// lifecycle. The returned cancel func terminates the browser process.
func NewAllocator(ctx context.Context, cfg *config.Config) (context.Context, context.CancelFunc) {
	return chromedp.NewExecAllocator(ctx, ExecOptions(cfg)...)
}
