package ticket

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/OWDM/dental-ai-agent/internal/llm"
	"github.com/OWDM/dental-ai-agent/internal/metrics"
	"github.com/OWDM/dental-ai-agent/pkg/interfaces"
	"github.com/OWDM/dental-ai-agent/pkg/logger"
	"github.com/OWDM/dental-ai-agent/pkg/types"
)

const analyzerSystemPrompt = `You are a Support Ticket Analyst for Riyadh Dental Care Clinic.

Your job is to analyze a completed customer service conversation and extract structured data for our CRM.

Input: A conversation history between a Patient and an AI Assistant.

Output: A JSON object with the following fields:
1. "subject": A concise, professional summary of the conversation (max 10 words).
   - Bad: "User asked about booking"
   - Good: "Appointment Booking - Dr. Saad - Teeth Cleaning"
2. "ticket_types": A list of categories that apply to this conversation.
   - Valid options ONLY: ["appointment_booking", "appointment_modification", "appointment_cancellation", "complaint", "general_inquiry"]
   - IMPORTANT: You MUST only use these exact values. Do NOT use "emergency" or any other values.
   - If the user was hostile or requested escalation, use "complaint"
3. "status": The final status of the interaction.
   - "resolved": If the user's request was handled (booked, answered, cancelled).
   - "escalated": If the user asked for a human, was hostile, or the AI couldn't help.

Analyze the conversation carefully. If multiple topics were discussed, include all relevant ticket types.
CRITICAL: Only use the 5 valid ticket types listed above.`

// maxAnalysisAttempts bounds classification retries: one normal attempt
// plus one retry carrying explicit correction feedback.
const maxAnalysisAttempts = 2

// analysis is the shape the classification backend is asked to return
type analysis struct {
	Subject     string   `json:"subject"`
	TicketTypes []string `json:"ticket_types"`
	Status      string   `json:"status"`
}

// Archiver classifies completed conversations into support tickets and
// persists them. It never lets an error escape: every path yields a
// well-formed record.
type Archiver struct {
	llm    interfaces.LLMClient
	store  interfaces.TicketStore
	logger *logger.Logger
}

// NewArchiver creates a new ticket archiver
func NewArchiver(llmClient interfaces.LLMClient, store interfaces.TicketStore, log *logger.Logger) *Archiver {
	return &Archiver{
		llm:    llmClient,
		store:  store,
		logger: log,
	}
}

// Archive classifies the session's transcript and persists the resulting
// ticket. Sessions with fewer than 2 turns are skipped and return nil.
func (a *Archiver) Archive(ctx context.Context, state *types.ConversationState) *types.TicketRecord {
	if state == nil || len(state.Turns) < 2 {
		a.logger.Debug("Skipping archive for empty conversation")
		return nil
	}

	result := a.analyze(ctx, transcriptText(state.Turns))

	// The session's escalated flag overrides whatever classification said
	if state.Escalated {
		result.Status = string(types.TicketEscalated)
		if !containsCategory(result.TicketTypes, string(types.CategoryComplaint)) {
			result.TicketTypes = append(result.TicketTypes, string(types.CategoryComplaint))
		}
	}

	record := buildRecord(state, result)

	if err := a.store.InsertTicket(ctx, record); err != nil {
		a.logger.WithSession(state.ID).Errorf("Failed to persist ticket: %v", err)
	}

	return record
}

// analyze runs the bounded classification retry; exhaustion or parse
// failure falls back to the fixed default.
func (a *Archiver) analyze(ctx context.Context, transcript string) analysis {
	result, err := RetryWithFeedback(
		maxAnalysisAttempts,
		func(feedback string) (analysis, error) {
			return a.classify(ctx, transcript, feedback)
		},
		validateAnalysis,
		func(bad analysis, _ error) string {
			metrics.ArchiverRetriesTotal.Inc()
			return correctionMessage(invalidCategories(bad.TicketTypes))
		},
	)
	if err != nil {
		metrics.ArchiverDefaultsTotal.Inc()
		a.logger.Warnf("Ticket analysis failed after %d attempts, using defaults: %v", maxAnalysisAttempts, err)
		return defaultAnalysis()
	}
	return result
}

// classify performs one classification call and parses the JSON reply
func (a *Archiver) classify(ctx context.Context, transcript, feedback string) (analysis, error) {
	history := []types.Turn{
		{Role: types.RoleUser, Text: "Analyze this conversation:\n\n" + transcript},
	}
	if feedback != "" {
		history = append(history, types.Turn{Role: types.RoleUser, Text: feedback})
	}

	reply, err := a.llm.Infer(ctx, analyzerSystemPrompt, history)
	if err != nil {
		metrics.LLMFailuresTotal.WithLabelValues("ticket_analysis").Inc()
		return analysis{}, err
	}

	var result analysis
	if err := json.Unmarshal([]byte(llm.StripCodeFence(reply)), &result); err != nil {
		return analysis{}, fmt.Errorf("failed to parse ticket analysis: %w", err)
	}
	return result, nil
}

// validateAnalysis rejects analyses carrying out-of-enum categories
func validateAnalysis(result analysis) error {
	invalid := invalidCategories(result.TicketTypes)
	if len(invalid) > 0 {
		return types.NewClassificationIntegrityError(types.ErrCodeInvalidCategories,
			fmt.Sprintf("classification returned invalid ticket types: %v", invalid),
			map[string]interface{}{"invalid": invalid})
	}
	if len(result.TicketTypes) == 0 {
		return types.NewClassificationIntegrityError(types.ErrCodeInvalidCategories,
			"classification returned no ticket types", nil)
	}
	return nil
}

func invalidCategories(categories []string) []string {
	var invalid []string
	for _, c := range categories {
		if !types.ValidTicketCategory(c) {
			invalid = append(invalid, c)
		}
	}
	return invalid
}

// correctionMessage tells the classifier exactly which values were wrong
// and which are allowed
func correctionMessage(invalid []string) string {
	valid := make([]string, 0, 5)
	for _, c := range types.AllTicketCategories() {
		valid = append(valid, "- "+string(c))
	}
	return fmt.Sprintf(`Your previous response contained invalid ticket types: %v

CRITICAL ERROR: You MUST only use these exact ticket types:
%s

DO NOT use: "emergency", "escalation", or any other values.

Please analyze the conversation again and provide a corrected JSON response with ONLY the valid ticket types listed above.`,
		invalid, strings.Join(valid, "\n"))
}

// defaultAnalysis is the fixed fallback used when the retry budget is
// exhausted
func defaultAnalysis() analysis {
	return analysis{
		Subject:     "General Inquiry (Auto-generated)",
		TicketTypes: []string{string(types.CategoryGeneral)},
		Status:      string(types.TicketResolved),
	}
}

// buildRecord assembles the immutable ticket record from a validated
// analysis
func buildRecord(state *types.ConversationState, result analysis) *types.TicketRecord {
	categories := make([]types.TicketCategory, 0, len(result.TicketTypes))
	for _, c := range result.TicketTypes {
		categories = append(categories, types.TicketCategory(c))
	}

	status := types.TicketStatus(result.Status)
	if status != types.TicketResolved && status != types.TicketEscalated {
		status = types.TicketResolved
	}

	transcript := make([]types.Turn, len(state.Turns))
	copy(transcript, state.Turns)

	now := time.Now()
	record := &types.TicketRecord{
		ConversationID: state.ID,
		Categories:     categories,
		Subject:        result.Subject,
		Status:         status,
		Transcript:     transcript,
		CreatedAt:      now,
	}
	if state.PatientID != "" {
		patientID := state.PatientID
		record.PatientID = &patientID
	}
	if status == types.TicketResolved {
		resolvedAt := now
		record.ResolvedAt = &resolvedAt
	}
	return record
}

func containsCategory(categories []string, target string) bool {
	for _, c := range categories {
		if c == target {
			return true
		}
	}
	return false
}

// transcriptText renders the transcript for the analyzer
func transcriptText(turns []types.Turn) string {
	var b strings.Builder
	for _, turn := range turns {
		b.WriteString(strings.ToUpper(string(turn.Role)))
		b.WriteString(": ")
		b.WriteString(turn.Text)
		b.WriteString("\n")
	}
	return b.String()
}
