package conversation

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/OWDM/dental-ai-agent/internal/llm"
	"github.com/OWDM/dental-ai-agent/internal/metrics"
	"github.com/OWDM/dental-ai-agent/pkg/interfaces"
	"github.com/OWDM/dental-ai-agent/pkg/logger"
	"github.com/OWDM/dental-ai-agent/pkg/types"
)

const guardrailSystemPrompt = `You are a sentiment and escalation analyzer for a dental clinic customer service system.

Analyze the user's message and respond with ONLY a JSON object in this exact format:
{"sentiment": "<positive|neutral|negative|hostile>", "should_escalate": <true|false>, "reason": "<short reason or empty string>"}

Escalation rules (should_escalate = true):
- The user describes a medical emergency (severe pain, bleeding, swelling, trauma)
- The user is extremely angry or threatening
- The user explicitly demands to speak with a human, manager, or real person
- The user reports being harmed by the clinic's treatment

Do NOT escalate for:
- Ordinary frustration or mild complaints
- Questions about prices, hours, or services
- Booking difficulties

Respond with ONLY the JSON object, no other text.`

// Guardrail assesses each inbound turn for sentiment and urgent
// escalation signals, independently of intent classification
type Guardrail struct {
	llm    interfaces.LLMClient
	logger *logger.Logger
}

// NewGuardrail creates a new sentiment guardrail
func NewGuardrail(llmClient interfaces.LLMClient, log *logger.Logger) *Guardrail {
	return &Guardrail{
		llm:    llmClient,
		logger: log,
	}
}

// Assess evaluates the user's message. Any failure yields the safe
// verdict (neutral, no escalation) so one flaky model call never blocks
// a turn.
func (g *Guardrail) Assess(ctx context.Context, userText string) types.GuardrailVerdict {
	history := []types.Turn{{Role: types.RoleUser, Text: userText}}

	reply, err := g.llm.Infer(ctx, guardrailSystemPrompt, history)
	if err != nil {
		metrics.LLMFailuresTotal.WithLabelValues("guardrail").Inc()
		g.logger.Warnf("Guardrail assessment failed, using safe verdict: %v", err)
		return types.SafeGuardrailVerdict()
	}

	verdict, err := parseVerdict(reply)
	if err != nil {
		metrics.LLMFailuresTotal.WithLabelValues("guardrail").Inc()
		g.logger.Warnf("Guardrail returned unparseable verdict %q: %v", reply, err)
		return types.SafeGuardrailVerdict()
	}
	return verdict
}

func parseVerdict(reply string) (types.GuardrailVerdict, error) {
	var raw struct {
		Sentiment      string `json:"sentiment"`
		ShouldEscalate bool   `json:"should_escalate"`
		Reason         string `json:"reason"`
	}
	if err := json.Unmarshal([]byte(llm.StripCodeFence(reply)), &raw); err != nil {
		return types.SafeGuardrailVerdict(), err
	}

	sentiment := types.Sentiment(strings.ToLower(strings.TrimSpace(raw.Sentiment)))
	if !types.ValidSentiment(string(sentiment)) {
		sentiment = types.SentimentNeutral
	}

	return types.GuardrailVerdict{
		Sentiment:      sentiment,
		ShouldEscalate: raw.ShouldEscalate,
		Reason:         raw.Reason,
	}, nil
}
