package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/OWDM/dental-ai-agent/internal/app"
	"github.com/OWDM/dental-ai-agent/internal/server"
	"github.com/OWDM/dental-ai-agent/pkg/config"
	"github.com/OWDM/dental-ai-agent/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := logger.New(cfg.LogLevel)

	agent, err := app.New(cfg, logger)
	if err != nil {
		logger.Fatalf("Failed to initialize agent: %v", err)
	}
	defer agent.Close()

	service := server.New(cfg, agent.Sessions, agent.Refs, agent.DB, logger)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	go func() {
		logger.Infof("Starting agent server on %s", addr)
		if err := service.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Failed to start agent server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down agent server...")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := service.Stop(ctx); err != nil {
		logger.Errorf("Error during shutdown: %v", err)
	}
	logger.Info("Agent server stopped")
}
