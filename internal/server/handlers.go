package server

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/OWDM/dental-ai-agent/pkg/types"
)

// setupRoutes configures HTTP routes for the agent service
func (s *Service) setupRoutes(router *mux.Router) {
	router.Use(s.observeRequests)

	api := router.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/sessions", s.startSessionHandler).Methods("POST")
	api.HandleFunc("/sessions/{id}/messages", s.sendMessageHandler).Methods("POST")
	api.HandleFunc("/sessions/{id}/end", s.endSessionHandler).Methods("POST")
	api.HandleFunc("/patients", s.listPatientsHandler).Methods("GET")
	api.HandleFunc("/health", s.healthCheckHandler).Methods("GET")

	router.Handle("/metrics", promhttp.Handler()).Methods("GET")

	s.logger.Info("Agent service routes configured")
}

type startSessionRequest struct {
	PatientID string `json:"patient_id"`
}

// startSessionHandler opens a conversation for an identified patient
func (s *Service) startSessionHandler(w http.ResponseWriter, r *http.Request) {
	var req startSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeErrorResponse(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.PatientID == "" {
		s.writeErrorResponse(w, http.StatusBadRequest, "patient_id is required", nil)
		return
	}

	patient, err := s.refs.GetPatient(r.Context(), req.PatientID)
	if err != nil {
		s.writeErrorResponse(w, http.StatusNotFound, "Patient not found", err)
		return
	}

	sessionID := s.sessions.StartSession(patient)
	s.writeJSONResponse(w, http.StatusCreated, map[string]interface{}{
		"session_id":   sessionID,
		"patient_name": patient.Name,
	})
}

type sendMessageRequest struct {
	Message string `json:"message"`
}

// sendMessageHandler routes one user message through the dispatcher
func (s *Service) sendMessageHandler(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	var req sendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeErrorResponse(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		s.writeErrorResponse(w, http.StatusBadRequest, "message is required", nil)
		return
	}

	reply, err := s.sessions.HandleTurn(r.Context(), sessionID, req.Message)
	if err != nil {
		s.writeErrorResponse(w, statusFor(err), "Failed to process message", err)
		return
	}

	s.writeJSONResponse(w, http.StatusOK, map[string]interface{}{
		"session_id": sessionID,
		"reply":      reply,
	})
}

// endSessionHandler archives the conversation and destroys the session
func (s *Service) endSessionHandler(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	record, err := s.sessions.EndSession(r.Context(), sessionID)
	if err != nil {
		s.writeErrorResponse(w, statusFor(err), "Failed to end session", err)
		return
	}

	response := map[string]interface{}{
		"session_id": sessionID,
		"archived":   record != nil,
	}
	if record != nil {
		response["ticket_id"] = record.ID
		response["ticket_subject"] = record.Subject
		response["ticket_status"] = record.Status
	}
	s.writeJSONResponse(w, http.StatusOK, response)
}

// listPatientsHandler returns the known patients for session startup
func (s *Service) listPatientsHandler(w http.ResponseWriter, r *http.Request) {
	patients, err := s.refs.ListPatients(r.Context())
	if err != nil {
		s.writeErrorResponse(w, http.StatusInternalServerError, "Failed to list patients", err)
		return
	}
	s.writeJSONResponse(w, http.StatusOK, patients)
}

// healthCheckHandler reports service and database health
func (s *Service) healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	status := "healthy"
	code := http.StatusOK
	if s.db != nil {
		if err := s.db.Health(); err != nil {
			status = "degraded"
			code = http.StatusServiceUnavailable
		}
	}

	s.writeJSONResponse(w, code, map[string]interface{}{
		"status":    status,
		"service":   "dental-agent",
		"timestamp": time.Now().UTC(),
	})
}

// statusFor maps the error taxonomy onto HTTP status codes
func statusFor(err error) int {
	switch {
	case types.IsNotFound(err):
		return http.StatusNotFound
	case types.IsValidation(err):
		return http.StatusBadRequest
	case types.IsConflict(err):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func (s *Service) writeJSONResponse(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Errorf("Failed to encode JSON response: %v", err)
	}
}

func (s *Service) writeErrorResponse(w http.ResponseWriter, statusCode int, message string, err error) {
	s.logger.Errorf("%s: %v", message, err)

	response := map[string]interface{}{
		"error":  message,
		"status": statusCode,
	}
	if err != nil {
		response["details"] = err.Error()
	}

	s.writeJSONResponse(w, statusCode, response)
}
