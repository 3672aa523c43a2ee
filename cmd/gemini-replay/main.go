package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"sort"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/anomredux/gemini-replay/internal/config"
	"github.com/anomredux/gemini-replay/internal/replay"
	"github.com/anomredux/gemini-replay/internal/session"
	"github.com/anomredux/gemini-replay/internal/ui"
)

// version is set by goreleaser via ldflags.
var version = "dev"

func main() {
	var (
		configPath  = flag.String("config", config.DefaultPath(), "config file path")
		sessionPath = flag.String("session", "", "captured session file (default from config or ANTIGRAVITY_SESSION_FILE)")
		headersPath = flag.String("headers", "", "supplemental headers file (default from config)")
		model       = flag.String("model", "", "model to use (default from config or ANTIGRAVITY_MODEL)")
		system      = flag.String("system", "", "system prompt")
		listModels  = flag.Bool("list-models", false, "list available models and exit")
		showHeaders = flag.Bool("show-headers", false, "show captured headers and exit")
		noTUI       = flag.Bool("no-tui", false, "never start the interactive chat")
		showVersion = flag.Bool("version", false, "print version and exit")
	)
	flag.Parse()

	if *showVersion {
		fmt.Println("gemini-replay", version)
		return
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	sessFile := firstNonEmpty(*sessionPath, os.Getenv("ANTIGRAVITY_SESSION_FILE"), cfg.Capture.SessionFile)
	headFile := firstNonEmpty(*headersPath, cfg.Capture.HeadersFile)
	chatModel := firstNonEmpty(*model, os.Getenv("ANTIGRAVITY_MODEL"), cfg.API.Model)

	sess, err := session.Load(sessFile, headFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\nRun the capture step first to record credentials.\n", err)
		os.Exit(1)
	}

	client := replay.New(sess)
	client.BaseURL = cfg.API.Base
	client.DefaultModel = chatModel
	client.Timeout = time.Duration(cfg.API.Timeout) * time.Second
	defer client.Close()

	switch {
	case *showHeaders:
		printHeaders(client.CapturedHeaders())
	case *listModels:
		if err := printModels(client); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case flag.Arg(0) != "":
		resp, err := client.Chat(context.Background(), flag.Arg(0), replay.ChatOptions{SystemPrompt: *system})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(resp.Text)
	case *noTUI:
		fmt.Fprintln(os.Stderr, "Usage: gemini-replay [flags] <message>")
		os.Exit(1)
	default:
		p := tea.NewProgram(ui.NewChat(client, chatModel, *system), tea.WithAltScreen())
		if _, err := p.Run(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}
}

func printHeaders(headers map[string]string) {
	keys := make([]string, 0, len(headers))
	for k := range headers {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fmt.Println("Captured headers:")
	for _, k := range keys {
		v := headers[k]
		if len(v) > 60 {
			v = v[:60] + "..."
		}
		fmt.Printf("  %s: %s\n", k, v)
	}
}

func printModels(client *replay.Client) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	models, err := client.ListModels(ctx)
	if err != nil {
		return err
	}

	fmt.Println("Available models:")
	for _, raw := range models {
		var m struct {
			Name        string `json:"name"`
			Description string `json:"description"`
		}
		if err := json.Unmarshal(raw, &m); err != nil {
			continue
		}
		fmt.Printf("  - %s\n", m.Name)
		if m.Description != "" {
			desc := m.Description
			if len(desc) > 60 {
				desc = desc[:60] + "..."
			}
			fmt.Printf("    %s\n", desc)
		}
	}
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
