package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/OWDM/dental-ai-agent/internal/app"
	"github.com/OWDM/dental-ai-agent/pkg/config"
	"github.com/OWDM/dental-ai-agent/pkg/logger"
	"github.com/OWDM/dental-ai-agent/pkg/types"
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

	ctx := context.Background()
	reader := bufio.NewScanner(os.Stdin)

	patient, err := selectPatient(ctx, agent, reader)
	if err != nil {
		logger.Fatalf("Failed to select patient: %v", err)
	}

	sessionID := agent.Sessions.StartSession(patient)

	fmt.Printf("\n=== %s ===\n", cfg.Clinic.Name)
	fmt.Printf("Welcome, %s! How can I help you today?\n", patient.Name)
	fmt.Println("(type 'quit' or 'exit' to end the conversation)")

	for {
		fmt.Print("\nYou: ")
		if !reader.Scan() {
			break
		}
		input := strings.TrimSpace(reader.Text())
		if input == "" {
			continue
		}
		if input == "quit" || input == "exit" || input == "q" {
			break
		}

		reply, err := agent.Sessions.HandleTurn(ctx, sessionID, input)
		if err != nil {
			fmt.Printf("Agent: something went wrong: %v\n", err)
			continue
		}
		fmt.Printf("Agent: %s\n", reply)
	}

	record, err := agent.Sessions.EndSession(ctx, sessionID)
	if err != nil {
		logger.Errorf("Failed to end session: %v", err)
		return
	}
	if record != nil {
		fmt.Printf("\nYour conversation was saved as ticket %s (%s).\n", record.ID, record.Subject)
	}
	fmt.Println("Goodbye!")
}

// selectPatient lists known patients and reads a numbered choice
func selectPatient(ctx context.Context, agent *app.App, reader *bufio.Scanner) (*types.Patient, error) {
	patients, err := agent.Refs.ListPatients(ctx)
	if err != nil {
		return nil, err
	}
	if len(patients) == 0 {
		return nil, fmt.Errorf("no patients registered")
	}

	fmt.Println("Who is chatting today?")
	for i, p := range patients {
		fmt.Printf("  %d. %s (%s)\n", i+1, p.Name, p.Email)
	}

	for {
		fmt.Print("Select a patient number: ")
		if !reader.Scan() {
			return nil, fmt.Errorf("input closed")
		}
		choice, err := strconv.Atoi(strings.TrimSpace(reader.Text()))
		if err == nil && choice >= 1 && choice <= len(patients) {
			return patients[choice-1], nil
		}
		fmt.Println("Please enter a valid number.")
	}
}
