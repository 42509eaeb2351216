package conversation

import (
	"context"
	"sync"

	"github.com/OWDM/dental-ai-agent/internal/ticket"
	"github.com/OWDM/dental-ai-agent/pkg/logger"
	"github.com/OWDM/dental-ai-agent/pkg/types"
)

// sessionEntry serializes turns within one session. Turns across
// different sessions run concurrently.
type sessionEntry struct {
	mu    sync.Mutex
	state *types.ConversationState
}

// Manager owns the live session registry. Sessions exist only in memory
// for their lifetime and leave a persistent trace only through the
// archiver at session end.
type Manager struct {
	mu         sync.Mutex
	sessions   map[string]*sessionEntry
	dispatcher *Dispatcher
	archiver   *ticket.Archiver
	logger     *logger.Logger
}

// NewManager creates the session registry
func NewManager(dispatcher *Dispatcher, archiver *ticket.Archiver, log *logger.Logger) *Manager {
	return &Manager{
		sessions:   make(map[string]*sessionEntry),
		dispatcher: dispatcher,
		archiver:   archiver,
		logger:     log,
	}
}

// StartSession creates a session bound to an identified patient and
// returns its id
func (m *Manager) StartSession(patient *types.Patient) string {
	state := types.NewConversationState("")
	if patient != nil {
		state.PatientID = patient.ID
		state.PatientName = patient.Name
		state.PatientEmail = patient.Email
		state.PatientPhone = patient.Phone
	}

	m.mu.Lock()
	m.sessions[state.ID] = &sessionEntry{state: state}
	m.mu.Unlock()

	m.logger.WithSession(state.ID).Info("Session started")
	return state.ID
}

// HandleTurn routes one user message through the dispatcher under the
// session's lock and returns the assistant reply
func (m *Manager) HandleTurn(ctx context.Context, sessionID, userText string) (string, error) {
	entry, err := m.lookup(sessionID)
	if err != nil {
		return "", err
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()
	return m.dispatcher.HandleTurn(ctx, entry.state, userText), nil
}

// EndSession archives the conversation as a support ticket and destroys
// the in-memory state. Idempotent archive failures are absorbed by the
// archiver; the session is removed regardless.
func (m *Manager) EndSession(ctx context.Context, sessionID string) (*types.TicketRecord, error) {
	entry, err := m.lookup(sessionID)
	if err != nil {
		return nil, err
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	record := m.archiver.Archive(ctx, entry.state)

	m.mu.Lock()
	delete(m.sessions, sessionID)
	m.mu.Unlock()

	m.logger.WithSession(sessionID).WithField("archived", record != nil).Info("Session ended")
	return record, nil
}

// State returns a session's live state. Intended for diagnostics and
// tests.
func (m *Manager) State(sessionID string) (*types.ConversationState, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.sessions[sessionID]
	if !ok {
		return nil, false
	}
	return entry.state, true
}

func (m *Manager) lookup(sessionID string) (*sessionEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.sessions[sessionID]
	if !ok {
		return nil, types.NewNotFoundError(types.ErrCodeSessionNotFound,
			"session not found", map[string]interface{}{"session_id": sessionID})
	}
	return entry, nil
}
