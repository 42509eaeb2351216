package ticket

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/OWDM/dental-ai-agent/pkg/logger"
	"github.com/OWDM/dental-ai-agent/pkg/types"
)

// MockLLMClient is a mock implementation of LLMClient
type MockLLMClient struct {
	mock.Mock
}

func (m *MockLLMClient) Infer(ctx context.Context, systemPrompt string, history []types.Turn) (string, error) {
	args := m.Called(ctx, systemPrompt, history)
	return args.String(0), args.Error(1)
}

// MockTicketStore is a mock implementation of TicketStore
type MockTicketStore struct {
	mock.Mock
}

func (m *MockTicketStore) InsertTicket(ctx context.Context, record *types.TicketRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func archivableState() *types.ConversationState {
	state := types.NewConversationState("")
	state.PatientID = "pat-1"
	state.AppendTurn(types.RoleUser, "I want to book a cleaning with Dr. Saad")
	state.AppendTurn(types.RoleAssistant, "Booked for Tuesday at 2 PM!")
	return state
}

func TestArchiver_SkipsShortConversations(t *testing.T) {
	llmMock := &MockLLMClient{}
	store := &MockTicketStore{}
	archiver := NewArchiver(llmMock, store, logger.New("debug"))

	state := types.NewConversationState("")
	state.AppendTurn(types.RoleUser, "hi")

	record := archiver.Archive(context.Background(), state)

	assert.Nil(t, record)
	llmMock.AssertNotCalled(t, "Infer", mock.Anything, mock.Anything, mock.Anything)
	store.AssertNotCalled(t, "InsertTicket", mock.Anything, mock.Anything)
}

func TestArchiver_HappyPath(t *testing.T) {
	llmMock := &MockLLMClient{}
	llmMock.On("Infer", mock.Anything, analyzerSystemPrompt, mock.Anything).
		Return(`{"subject": "Appointment Booking - Dr. Saad - Teeth Cleaning", "ticket_types": ["appointment_booking"], "status": "resolved"}`, nil)

	store := &MockTicketStore{}
	store.On("InsertTicket", mock.Anything, mock.AnythingOfType("*types.TicketRecord")).Return(nil)

	archiver := NewArchiver(llmMock, store, logger.New("debug"))
	state := archivableState()

	record := archiver.Archive(context.Background(), state)

	require.NotNil(t, record)
	assert.Equal(t, "Appointment Booking - Dr. Saad - Teeth Cleaning", record.Subject)
	assert.Equal(t, []types.TicketCategory{types.CategoryBooking}, record.Categories)
	assert.Equal(t, types.TicketResolved, record.Status)
	require.NotNil(t, record.PatientID)
	assert.Equal(t, "pat-1", *record.PatientID)
	assert.NotNil(t, record.ResolvedAt)
	assert.Len(t, record.Transcript, 2)
	llmMock.AssertNumberOfCalls(t, "Infer", 1)
	store.AssertExpectations(t)
}

func TestArchiver_RetriesOnceWithCorrectionFeedback(t *testing.T) {
	llmMock := &MockLLMClient{}
	// First reply uses the forbidden "emergency" category, retry corrects it
	llmMock.On("Infer", mock.Anything, analyzerSystemPrompt, mock.Anything).
		Return(`{"subject": "Urgent complaint", "ticket_types": ["emergency"], "status": "escalated"}`, nil).Once()
	llmMock.On("Infer", mock.Anything, analyzerSystemPrompt, mock.MatchedBy(func(history []types.Turn) bool {
		if len(history) != 2 {
			return false
		}
		return history[1].Role == types.RoleUser &&
			strings.Contains(history[1].Text, "invalid ticket types") &&
			strings.Contains(history[1].Text, "emergency")
	})).Return(`{"subject": "Urgent complaint", "ticket_types": ["complaint"], "status": "escalated"}`, nil).Once()

	store := &MockTicketStore{}
	store.On("InsertTicket", mock.Anything, mock.Anything).Return(nil)

	archiver := NewArchiver(llmMock, store, logger.New("debug"))

	record := archiver.Archive(context.Background(), archivableState())

	require.NotNil(t, record)
	assert.Equal(t, []types.TicketCategory{types.CategoryComplaint}, record.Categories)
	assert.Equal(t, types.TicketEscalated, record.Status)
	assert.Nil(t, record.ResolvedAt)
	llmMock.AssertNumberOfCalls(t, "Infer", 2)
}

func TestArchiver_ExhaustedRetriesFallBackToDefault(t *testing.T) {
	llmMock := &MockLLMClient{}
	llmMock.On("Infer", mock.Anything, analyzerSystemPrompt, mock.Anything).
		Return(`{"subject": "x", "ticket_types": ["emergency"], "status": "resolved"}`, nil)

	store := &MockTicketStore{}
	store.On("InsertTicket", mock.Anything, mock.Anything).Return(nil)

	archiver := NewArchiver(llmMock, store, logger.New("debug"))

	record := archiver.Archive(context.Background(), archivableState())

	require.NotNil(t, record)
	assert.Equal(t, "General Inquiry (Auto-generated)", record.Subject)
	assert.Equal(t, []types.TicketCategory{types.CategoryGeneral}, record.Categories)
	assert.Equal(t, types.TicketResolved, record.Status)
	// Exactly two attempts, never a third
	llmMock.AssertNumberOfCalls(t, "Infer", 2)
}

func TestArchiver_LLMFailureFallsBackToDefault(t *testing.T) {
	llmMock := &MockLLMClient{}
	llmMock.On("Infer", mock.Anything, mock.Anything, mock.Anything).Return("", assert.AnError)

	store := &MockTicketStore{}
	store.On("InsertTicket", mock.Anything, mock.Anything).Return(nil)

	archiver := NewArchiver(llmMock, store, logger.New("debug"))

	record := archiver.Archive(context.Background(), archivableState())

	require.NotNil(t, record)
	assert.Equal(t, "General Inquiry (Auto-generated)", record.Subject)
	store.AssertExpectations(t)
}

func TestArchiver_EscalatedSessionForcesStatusAndComplaint(t *testing.T) {
	llmMock := &MockLLMClient{}
	// Classification says resolved booking; the session flag must win
	llmMock.On("Infer", mock.Anything, mock.Anything, mock.Anything).
		Return(`{"subject": "Appointment Booking", "ticket_types": ["appointment_booking"], "status": "resolved"}`, nil)

	store := &MockTicketStore{}
	store.On("InsertTicket", mock.Anything, mock.Anything).Return(nil)

	archiver := NewArchiver(llmMock, store, logger.New("debug"))
	state := archivableState()
	state.Escalated = true

	record := archiver.Archive(context.Background(), state)

	require.NotNil(t, record)
	assert.Equal(t, types.TicketEscalated, record.Status)
	assert.Contains(t, record.Categories, types.CategoryBooking)
	assert.Contains(t, record.Categories, types.CategoryComplaint)
}

func TestArchiver_StoreFailureStillReturnsRecord(t *testing.T) {
	llmMock := &MockLLMClient{}
	llmMock.On("Infer", mock.Anything, mock.Anything, mock.Anything).
		Return(`{"subject": "General Inquiry", "ticket_types": ["general_inquiry"], "status": "resolved"}`, nil)

	store := &MockTicketStore{}
	store.On("InsertTicket", mock.Anything, mock.Anything).Return(assert.AnError)

	archiver := NewArchiver(llmMock, store, logger.New("debug"))

	record := archiver.Archive(context.Background(), archivableState())

	// Persistence failure is logged, never surfaced to the caller
	require.NotNil(t, record)
	assert.Equal(t, "General Inquiry", record.Subject)
}
