// Command comms-center is the terminal client for the carbon-credit
// marketplace messaging and notification service.
package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/verdantex/comms-center/internal/app"
	"github.com/verdantex/comms-center/internal/backend/api"
	"github.com/verdantex/comms-center/internal/bridge/email"
	"github.com/verdantex/comms-center/internal/credential"
	"github.com/verdantex/comms-center/internal/model"
	"github.com/verdantex/comms-center/internal/store"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "comms-center: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := model.LoadConfig(model.DefaultConfigPath())
	if err != nil {
		return err
	}

	// The TUI owns the terminal; route logs to a file instead.
	logPath := filepath.Join(
		filepath.Dir(model.DefaultConfigPath()), "comms-center.log",
	)
	if f, err := os.OpenFile(
		logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644,
	); err == nil {
		log.SetOutput(f)
		defer f.Close()
	}

	s, err := store.NewSQLiteStore(model.DefaultCachePath())
	if err != nil {
		return fmt.Errorf("opening cache: %w", err)
	}
	defer s.Close()

	// A missing token is not fatal; the settings view can store one.
	token, err := credential.APIToken()
	if err != nil {
		log.Printf("comms: no API token available: %v", err)
	}

	client := api.NewClient(cfg.Backend.BaseURL, token)

	bridge := buildEmailBridge(cfg)

	program := tea.NewProgram(
		app.New(*cfg, client, s, bridge),
		tea.WithAltScreen(),
	)
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("running UI: %w", err)
	}
	return nil
}

// buildEmailBridge wires the optional registry inbox digest. Returns
// nil when the bridge is disabled or its password is unavailable.
func buildEmailBridge(cfg *model.AppConfig) *email.Bridge {
	if !cfg.Email.Enabled || cfg.Email.Host == "" {
		return nil
	}

	password, err := credential.Get(credential.KeyIMAPPassword)
	if err != nil {
		log.Printf("comms: email bridge disabled, no password: %v", err)
		return nil
	}

	client := email.NewIMAPClient(
		cfg.Email.Host,
		cfg.Email.Port,
		cfg.Email.Username,
		password,
		cfg.Email.Mailbox,
		cfg.Email.TLS,
	)
	interval := time.Duration(cfg.Email.PollIntervalSec) * time.Second
	return email.NewBridge(client, interval)
}
