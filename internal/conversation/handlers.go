package conversation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/OWDM/dental-ai-agent/internal/llm"
	"github.com/OWDM/dental-ai-agent/internal/scheduling"
	"github.com/OWDM/dental-ai-agent/pkg/config"
	"github.com/OWDM/dental-ai-agent/pkg/interfaces"
	"github.com/OWDM/dental-ai-agent/pkg/logger"
	"github.com/OWDM/dental-ai-agent/pkg/types"
)

// Handler produces the single assistant reply for one dispatched turn
type Handler interface {
	Name() string
	Handle(ctx context.Context, state *types.ConversationState) (string, error)
}

// ---------------------------------------------------------------------------
// FAQ

const faqSystemPromptTemplate = `You are a friendly customer service assistant for %s.

Clinic information:
- Name: %s
- Phone: %s
- Hours: Saturday to Thursday, 9:00 AM to 9:00 PM (closed Friday)
- Services: cleanings, fillings, root canals, whitening, orthodontics, implants, checkups

Answer the user's question helpfully and concisely. If you do not know a
detail, say so and offer the clinic phone number. Do not invent prices or
medical advice. Keep replies short and warm.`

// FAQHandler answers general clinic questions directly from the model
type FAQHandler struct {
	llm    interfaces.LLMClient
	prompt string
}

func NewFAQHandler(llmClient interfaces.LLMClient, clinic *config.ClinicConfig) *FAQHandler {
	return &FAQHandler{
		llm:    llmClient,
		prompt: fmt.Sprintf(faqSystemPromptTemplate, clinic.Name, clinic.Name, clinic.Phone),
	}
}

func (h *FAQHandler) Name() string { return string(HandlerFAQ) }

func (h *FAQHandler) Handle(ctx context.Context, state *types.ConversationState) (string, error) {
	reply, err := h.llm.Infer(ctx, h.prompt, state.RecentTurns(historyWindow))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(reply), nil
}

// ---------------------------------------------------------------------------
// Booking

const bookingSystemPrompt = `You are the appointment booking assistant for a dental clinic.

The patient is already identified. Your job is to collect three things,
one step at a time: the service, the doctor, and the date and time. When
you have all three, book the appointment.

You MUST respond with ONLY a JSON object, one of:

{"action": "list_services"}
  When the user asks what services exist or has not chosen one yet.

{"action": "list_doctors"}
  When the user has a service and needs to pick a doctor.

{"action": "book", "doctor_name": "...", "service_name": "...", "datetime": "YYYY-MM-DD HH:MM"}
  ONLY when the user has confirmed the service, the doctor, and an exact
  date and time. Convert relative dates like "tomorrow at 3pm" to the
  exact "YYYY-MM-DD HH:MM" form.

{"action": "reply", "message": "..."}
  For everything else: asking which service you need, which doctor they
  prefer, or what date and time works. Ask for exactly one missing piece
  per message.

Respond with ONLY the JSON object.`

// BookingHandler drives the multi-turn booking flow. The model extracts a
// structured action; the scheduling engine does the actual work.
type BookingHandler struct {
	llm    interfaces.LLMClient
	engine *scheduling.Engine
	refs   interfaces.ReferenceStore
	logger *logger.Logger
}

func NewBookingHandler(llmClient interfaces.LLMClient, engine *scheduling.Engine, refs interfaces.ReferenceStore, log *logger.Logger) *BookingHandler {
	return &BookingHandler{
		llm:    llmClient,
		engine: engine,
		refs:   refs,
		logger: log,
	}
}

func (h *BookingHandler) Name() string { return string(HandlerBooking) }

type bookingAction struct {
	Action      string `json:"action"`
	DoctorName  string `json:"doctor_name,omitempty"`
	ServiceName string `json:"service_name,omitempty"`
	DateTime    string `json:"datetime,omitempty"`
	Message     string `json:"message,omitempty"`
}

func (h *BookingHandler) Handle(ctx context.Context, state *types.ConversationState) (string, error) {
	reply, err := h.llm.Infer(ctx, bookingSystemPrompt, state.RecentTurns(historyWindow))
	if err != nil {
		return "", err
	}

	var action bookingAction
	if err := json.Unmarshal([]byte(llm.StripCodeFence(reply)), &action); err != nil {
		// Model replied in prose instead of JSON; pass it through rather
		// than failing the turn.
		h.logger.WithSession(state.ID).Debugf("Booking action not JSON, passing through: %v", err)
		return strings.TrimSpace(reply), nil
	}

	switch action.Action {
	case "list_services":
		return h.listServices(ctx)
	case "list_doctors":
		return h.listDoctors(ctx)
	case "book":
		return h.book(ctx, state, action)
	case "reply":
		return strings.TrimSpace(action.Message), nil
	default:
		return "Could you tell me which service you need?", nil
	}
}

func (h *BookingHandler) listServices(ctx context.Context) (string, error) {
	services, err := h.refs.ListServices(ctx)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	b.WriteString("Here are the services we offer:\n")
	for _, s := range services {
		fmt.Fprintf(&b, "- %s (%.0f SAR, %d minutes)\n", s.Name, s.Price, s.DurationMinutes)
	}
	b.WriteString("\nWhich service would you like to book?")
	return b.String(), nil
}

func (h *BookingHandler) listDoctors(ctx context.Context) (string, error) {
	doctors, err := h.refs.ListDoctors(ctx, true)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	b.WriteString("These are our available doctors:\n")
	for _, d := range doctors {
		fmt.Fprintf(&b, "- %s (%s)\n", d.Name, d.Specialization)
	}
	b.WriteString("\nWhich doctor would you prefer?")
	return b.String(), nil
}

func (h *BookingHandler) book(ctx context.Context, state *types.ConversationState, action bookingAction) (string, error) {
	doctor, err := h.findDoctor(ctx, action.DoctorName)
	if err != nil {
		return fmt.Sprintf("I couldn't find a doctor named %q. Would you like to see the available doctors?", action.DoctorName), nil
	}
	service, err := h.findService(ctx, action.ServiceName)
	if err != nil {
		return fmt.Sprintf("I couldn't find a service named %q. Would you like to see the service you need from our list?", action.ServiceName), nil
	}

	result, err := h.engine.Create(ctx, state.PatientEmail, state.PatientName, doctor.ID, service.ID, action.DateTime)
	if err != nil {
		return schedulingErrorReply(err)
	}

	apt := result.Appointment
	msg := fmt.Sprintf("Your appointment is booked! %s with %s on %s. The price is %.0f SAR.",
		apt.ServiceName, apt.DoctorName, scheduling.FormatDisplayTime(apt.Start), result.Price)
	if result.Notification.Status == types.NotificationSent {
		msg += " A confirmation email is on its way."
	}
	return msg, nil
}

func (h *BookingHandler) findDoctor(ctx context.Context, name string) (*types.Doctor, error) {
	doctors, err := h.refs.ListDoctors(ctx, true)
	if err != nil {
		return nil, err
	}
	needle := strings.ToLower(strings.TrimSpace(name))
	for _, d := range doctors {
		if strings.Contains(strings.ToLower(d.Name), needle) && needle != "" {
			return d, nil
		}
	}
	return nil, types.NewNotFoundError(types.ErrCodeNotFound, "doctor not found", nil)
}

func (h *BookingHandler) findService(ctx context.Context, name string) (*types.Service, error) {
	services, err := h.refs.ListServices(ctx)
	if err != nil {
		return nil, err
	}
	needle := strings.ToLower(strings.TrimSpace(name))
	for _, s := range services {
		if strings.Contains(strings.ToLower(s.Name), needle) && needle != "" {
			return s, nil
		}
	}
	return nil, types.NewNotFoundError(types.ErrCodeNotFound, "service not found", nil)
}

// ---------------------------------------------------------------------------
// Management

const managementSystemPrompt = `You are the appointment management assistant for a dental clinic.

The patient is already identified. You help them view, cancel, or
reschedule their existing appointments.

You MUST respond with ONLY a JSON object, one of:

{"action": "view"}
  When the user asks what appointments they have.

{"action": "cancel", "doctor_name": "...", "service_name": "...", "date_ref": "..."}
  When the user wants to cancel. Include only the hints the user actually
  gave (doctor name, service name, or a date reference like "2025-09-03",
  "Wednesday", or "September 3"). Omit fields the user did not mention.

{"action": "reschedule", "doctor_name": "...", "service_name": "...", "date_ref": "...", "new_time": "..."}
  When the user wants to move an appointment and has given the new time.
  new_time may be a full "YYYY-MM-DD HH:MM" or just "HH:MM" if only the
  time is changing.

{"action": "reply", "message": "..."}
  For everything else, such as asking which appointment they mean or what
  new time they want.

Respond with ONLY the JSON object.`

// ManagementHandler drives viewing, cancelling, and rescheduling of the
// patient's existing appointments
type ManagementHandler struct {
	llm    interfaces.LLMClient
	engine *scheduling.Engine
	logger *logger.Logger
}

func NewManagementHandler(llmClient interfaces.LLMClient, engine *scheduling.Engine, log *logger.Logger) *ManagementHandler {
	return &ManagementHandler{
		llm:    llmClient,
		engine: engine,
		logger: log,
	}
}

func (h *ManagementHandler) Name() string { return string(HandlerManagement) }

type managementAction struct {
	Action      string `json:"action"`
	DoctorName  string `json:"doctor_name,omitempty"`
	ServiceName string `json:"service_name,omitempty"`
	DateRef     string `json:"date_ref,omitempty"`
	NewTime     string `json:"new_time,omitempty"`
	Message     string `json:"message,omitempty"`
}

func (h *ManagementHandler) Handle(ctx context.Context, state *types.ConversationState) (string, error) {
	reply, err := h.llm.Infer(ctx, managementSystemPrompt, state.RecentTurns(historyWindow))
	if err != nil {
		return "", err
	}

	var action managementAction
	if err := json.Unmarshal([]byte(llm.StripCodeFence(reply)), &action); err != nil {
		h.logger.WithSession(state.ID).Debugf("Management action not JSON, passing through: %v", err)
		return strings.TrimSpace(reply), nil
	}

	criteria := types.AppointmentCriteria{
		PatientEmail: state.PatientEmail,
		DoctorName:   action.DoctorName,
		ServiceName:  action.ServiceName,
		DateRef:      action.DateRef,
	}

	switch action.Action {
	case "view":
		return h.view(ctx, state)
	case "cancel":
		return h.cancel(ctx, criteria)
	case "reschedule":
		return h.reschedule(ctx, criteria, action.NewTime)
	case "reply":
		return strings.TrimSpace(action.Message), nil
	default:
		return "Would you like to view, cancel, or reschedule an appointment?", nil
	}
}

func (h *ManagementHandler) view(ctx context.Context, state *types.ConversationState) (string, error) {
	appointments, err := h.engine.ListForPatient(ctx, state.PatientEmail)
	if err != nil {
		return "", err
	}
	if len(appointments) == 0 {
		return "You don't have any upcoming appointments. Would you like to book one?", nil
	}
	var b strings.Builder
	b.WriteString("Here are your upcoming appointments:\n")
	for _, apt := range appointments {
		fmt.Fprintf(&b, "- %s with %s on %s\n", apt.ServiceName, apt.DoctorName, scheduling.FormatDisplayTime(apt.Start))
	}
	return b.String(), nil
}

func (h *ManagementHandler) cancel(ctx context.Context, criteria types.AppointmentCriteria) (string, error) {
	result, err := h.engine.Cancel(ctx, criteria)
	if err != nil {
		return schedulingErrorReply(err)
	}
	apt := result.Cancelled
	return fmt.Sprintf("Your %s appointment with %s on %s has been cancelled.",
		apt.ServiceName, apt.DoctorName, scheduling.FormatDisplayTime(apt.Start)), nil
}

func (h *ManagementHandler) reschedule(ctx context.Context, criteria types.AppointmentCriteria, newTime string) (string, error) {
	if strings.TrimSpace(newTime) == "" {
		return "What date and time would you like to move it to?", nil
	}
	result, err := h.engine.Reschedule(ctx, criteria, newTime)
	if err != nil {
		return schedulingErrorReply(err)
	}
	apt := result.Appointment
	return fmt.Sprintf("Done! Your %s appointment with %s has been moved from %s to %s.",
		apt.ServiceName, apt.DoctorName,
		scheduling.FormatDisplayTime(result.OldStart), scheduling.FormatDisplayTime(apt.Start)), nil
}

// schedulingErrorReply converts the engine's typed errors into patient
// facing replies. Unknown errors propagate so the dispatcher's fallback
// path handles them.
func schedulingErrorReply(err error) (string, error) {
	var agentErr *types.AgentError
	if !errors.As(err, &agentErr) {
		return "", err
	}
	switch {
	case types.IsConflict(err):
		return fmt.Sprintf("Sorry, %s. Could you pick a different time?", agentErr.Message), nil
	case types.IsNotFound(err):
		return fmt.Sprintf("I couldn't find that: %s. Could you give me more details?", agentErr.Message), nil
	case types.IsValidation(err):
		return fmt.Sprintf("That doesn't look right: %s.", agentErr.Message), nil
	default:
		return "", err
	}
}

// ---------------------------------------------------------------------------
// Human handoff

const handoffReply = "I understand this needs personal attention. I've escalated your case to our team, and a human specialist will contact you shortly. If this is a medical emergency, please call the clinic directly right away."

// HumanHandoffHandler acknowledges an escalated session with a fixed
// reassurance message. No model call; the reply must never fail.
type HumanHandoffHandler struct {
	clinicPhone string
}

func NewHumanHandoffHandler(clinic *config.ClinicConfig) *HumanHandoffHandler {
	return &HumanHandoffHandler{clinicPhone: clinic.Phone}
}

func (h *HumanHandoffHandler) Name() string { return string(HandlerHumanHandoff) }

func (h *HumanHandoffHandler) Handle(_ context.Context, _ *types.ConversationState) (string, error) {
	reply := handoffReply
	if h.clinicPhone != "" {
		reply += " Our number is " + h.clinicPhone + "."
	}
	return reply, nil
}

// ---------------------------------------------------------------------------
// Placeholder

const placeholderReply = "Thank you for sharing your feedback! Our feedback system is coming soon. In the meantime, your comments have been noted and our team will review them."

// PlaceholderHandler covers intents whose full flow is not built yet
type PlaceholderHandler struct{}

func NewPlaceholderHandler() *PlaceholderHandler { return &PlaceholderHandler{} }

func (h *PlaceholderHandler) Name() string { return string(HandlerPlaceholder) }

func (h *PlaceholderHandler) Handle(_ context.Context, _ *types.ConversationState) (string, error) {
	return placeholderReply, nil
}
