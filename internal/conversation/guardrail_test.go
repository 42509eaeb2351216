package conversation

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/OWDM/dental-ai-agent/pkg/logger"
	"github.com/OWDM/dental-ai-agent/pkg/types"
)

func TestGuardrail_ParsesVerdict(t *testing.T) {
	llmMock := &MockLLMClient{}
	llmMock.On("Infer", mock.Anything, guardrailSystemPrompt, mock.Anything).
		Return(`{"sentiment": "hostile", "should_escalate": true, "reason": "user threatened staff"}`, nil)
	guardrail := NewGuardrail(llmMock, logger.New("debug"))

	verdict := guardrail.Assess(context.Background(), "this clinic is a scam, get me a human NOW")

	assert.Equal(t, types.SentimentHostile, verdict.Sentiment)
	assert.True(t, verdict.ShouldEscalate)
	assert.Equal(t, "user threatened staff", verdict.Reason)
}

func TestGuardrail_ParsesFencedVerdict(t *testing.T) {
	llmMock := &MockLLMClient{}
	llmMock.On("Infer", mock.Anything, mock.Anything, mock.Anything).
		Return("```json\n{\"sentiment\": \"positive\", \"should_escalate\": false, \"reason\": \"\"}\n```", nil)
	guardrail := NewGuardrail(llmMock, logger.New("debug"))

	verdict := guardrail.Assess(context.Background(), "thanks, you've been great!")

	assert.Equal(t, types.SentimentPositive, verdict.Sentiment)
	assert.False(t, verdict.ShouldEscalate)
}

func TestGuardrail_UnknownSentimentFallsBackToNeutral(t *testing.T) {
	llmMock := &MockLLMClient{}
	llmMock.On("Infer", mock.Anything, mock.Anything, mock.Anything).
		Return(`{"sentiment": "furious", "should_escalate": true, "reason": "angry"}`, nil)
	guardrail := NewGuardrail(llmMock, logger.New("debug"))

	verdict := guardrail.Assess(context.Background(), "I am furious")

	// Sentiment is normalized but the escalation signal is kept
	assert.Equal(t, types.SentimentNeutral, verdict.Sentiment)
	assert.True(t, verdict.ShouldEscalate)
}

func TestGuardrail_LLMFailureYieldsSafeVerdict(t *testing.T) {
	llmMock := &MockLLMClient{}
	llmMock.On("Infer", mock.Anything, mock.Anything, mock.Anything).Return("", assert.AnError)
	guardrail := NewGuardrail(llmMock, logger.New("debug"))

	verdict := guardrail.Assess(context.Background(), "hello")

	assert.Equal(t, types.SafeGuardrailVerdict(), verdict)
}

func TestGuardrail_UnparseableReplyYieldsSafeVerdict(t *testing.T) {
	llmMock := &MockLLMClient{}
	llmMock.On("Infer", mock.Anything, mock.Anything, mock.Anything).
		Return("The user seems upset, I would escalate this.", nil)
	guardrail := NewGuardrail(llmMock, logger.New("debug"))

	verdict := guardrail.Assess(context.Background(), "hello")

	require.False(t, verdict.ShouldEscalate)
	assert.Equal(t, types.SentimentNeutral, verdict.Sentiment)
}
