package app

import (
	"time"

	"github.com/OWDM/dental-ai-agent/internal/conversation"
	"github.com/OWDM/dental-ai-agent/internal/llm"
	"github.com/OWDM/dental-ai-agent/internal/metrics"
	"github.com/OWDM/dental-ai-agent/internal/notification"
	"github.com/OWDM/dental-ai-agent/internal/scheduling"
	"github.com/OWDM/dental-ai-agent/internal/ticket"
	"github.com/OWDM/dental-ai-agent/pkg/config"
	"github.com/OWDM/dental-ai-agent/pkg/database"
	"github.com/OWDM/dental-ai-agent/pkg/interfaces"
	"github.com/OWDM/dental-ai-agent/pkg/logger"
)

// App wires the full agent dependency graph: database, LLM client,
// scheduling engine, conversation pipeline, and ticket archiver. Both
// the CLI and the HTTP server build on it.
type App struct {
	Config   *config.Config
	Logger   *logger.Logger
	DB       *database.DB
	Refs     interfaces.ReferenceStore
	Sessions *conversation.Manager
}

// New connects the database and assembles the agent
func New(cfg *config.Config, log *logger.Logger) (*App, error) {
	metrics.Register()

	db, err := database.NewConnection(&cfg.Database, log)
	if err != nil {
		return nil, err
	}

	loc := cfg.Clinic.Location()

	repo := scheduling.NewRepository(db, log)
	sender := notification.NewEmailSender(&cfg.SMTP, log)
	engine := scheduling.NewEngine(repo, repo, sender, loc, log)

	llmClient := llm.NewClient(&cfg.LLM, log)

	classifier := conversation.NewClassifier(llmClient, log)
	guardrail := conversation.NewGuardrail(llmClient, log)
	handlers := map[conversation.HandlerKind]conversation.Handler{
		conversation.HandlerFAQ:          conversation.NewFAQHandler(llmClient, &cfg.Clinic),
		conversation.HandlerBooking:      conversation.NewBookingHandler(llmClient, engine, repo, log),
		conversation.HandlerManagement:   conversation.NewManagementHandler(llmClient, engine, log),
		conversation.HandlerPlaceholder:  conversation.NewPlaceholderHandler(),
		conversation.HandlerHumanHandoff: conversation.NewHumanHandoffHandler(&cfg.Clinic),
	}

	taskTimeout := time.Duration(cfg.LLM.TaskTimeout) * time.Second
	dispatcher := conversation.NewDispatcher(classifier, guardrail, handlers, taskTimeout, log)

	archiver := ticket.NewArchiver(llmClient, repo, log)
	sessions := conversation.NewManager(dispatcher, archiver, log)

	return &App{
		Config:   cfg,
		Logger:   log,
		DB:       db,
		Refs:     repo,
		Sessions: sessions,
	}, nil
}

// Close releases held resources
func (a *App) Close() error {
	if a.DB != nil {
		return a.DB.Close()
	}
	return nil
}
