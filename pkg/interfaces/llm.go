package interfaces

import (
	"context"

	"github.com/OWDM/dental-ai-agent/pkg/types"
)

// LLMClient defines the classification backend used by the classifier,
// the guardrail, and the ticket archiver. The returned text is treated as
// a black box the caller parses defensively.
type LLMClient interface {
	Infer(ctx context.Context, systemPrompt string, history []types.Turn) (string, error)
}
