// Package ai provides text-completion gateways for the advisory
// pipeline. A gateway is the single external dependency of the core:
// prompt in, text out.
package ai

import "context"

// Gateway abstracts a generative text-completion provider. The
// (string, error) return makes the fail-fast contract explicit:
// transport failures, quota exhaustion, and empty model output all
// surface as a non-nil error, and callers degrade to deterministic
// fallbacks instead of retrying.
type Gateway interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
}
