package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// transcriptDumpFile is overwritten on every quit.
const transcriptDumpFile = "messages.json"

type ConsoleConfig struct {
	APIBaseURL string
	Timeout    time.Duration
}

func main() {
	cfg := &ConsoleConfig{
		APIBaseURL: getEnv("API_BASE_URL", "http://localhost:8080"),
		Timeout:    5 * time.Minute,
	}

	client := &http.Client{
		Timeout: cfg.Timeout,
	}

	if !testConnection(client, cfg.APIBaseURL) {
		fmt.Fprintf(os.Stderr, "Could not connect to API at %s. Please ensure the API is running.\n", cfg.APIBaseURL)
		os.Exit(1)
	}

	created, err := createSession(client, cfg.APIBaseURL)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create session: %v\n", err)
		os.Exit(1)
	}

	p := tea.NewProgram(NewConsoleUI(cfg, client, created),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion())
	finalModel, err := p.Run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error running program: %v\n", err)
		os.Exit(1)
	}

	ui, ok := finalModel.(ConsoleUI)
	if !ok {
		return
	}
	if err := dumpTranscript(client, cfg.APIBaseURL, ui); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to save transcript: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("Thanks for playing! Transcript saved to " + transcriptDumpFile)
}

// dumpTranscript serializes the transcript as a list of {content}
// objects, overwriting the previous run's file.
func dumpTranscript(client *http.Client, baseURL string, ui ConsoleUI) error {
	s, err := getSession(client, baseURL, ui.sessionID)
	if err != nil {
		return err
	}

	type entry struct {
		Content string `json:"content"`
	}
	entries := make([]entry, 0, len(s.Transcript))
	for _, msg := range s.Transcript {
		entries = append(entries, entry{Content: msg.Content})
	}

	data, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("failed to marshal transcript: %w", err)
	}
	return os.WriteFile(transcriptDumpFile, data, 0o644)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
