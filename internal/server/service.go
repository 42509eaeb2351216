package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/OWDM/dental-ai-agent/internal/conversation"
	"github.com/OWDM/dental-ai-agent/pkg/config"
	"github.com/OWDM/dental-ai-agent/pkg/database"
	"github.com/OWDM/dental-ai-agent/pkg/interfaces"
	"github.com/OWDM/dental-ai-agent/pkg/logger"
)

// Service exposes the conversational agent over HTTP
type Service struct {
	config   *config.Config
	logger   *logger.Logger
	sessions *conversation.Manager
	refs     interfaces.ReferenceStore
	db       *database.DB
	server   *http.Server
}

// New creates the agent HTTP service
func New(cfg *config.Config, sessions *conversation.Manager, refs interfaces.ReferenceStore, db *database.DB, log *logger.Logger) *Service {
	return &Service{
		config:   cfg,
		logger:   log,
		sessions: sessions,
		refs:     refs,
		db:       db,
	}
}

// Start blocks serving HTTP until the listener fails or Stop is called
func (s *Service) Start(addr string) error {
	router := mux.NewRouter()
	s.setupRoutes(router)

	s.server = &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  time.Duration(s.config.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(s.config.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(s.config.Server.IdleTimeout) * time.Second,
	}

	s.logger.Infof("Starting agent service on %s", addr)
	return s.server.ListenAndServe()
}

// Stop shuts the server down gracefully
func (s *Service) Stop(ctx context.Context) error {
	if s.server != nil {
		s.logger.Info("Stopping agent service")
		return s.server.Shutdown(ctx)
	}
	return nil
}
