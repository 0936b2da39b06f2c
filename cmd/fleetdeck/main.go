// ABOUTME: Entry point for the fleetdeck terminal dashboard
// ABOUTME: Watches an agent fleet via pull snapshots and the live event stream

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"slices"
	"syscall"
	"time"

	"github.com/fatih/color"

	"github.com/fleetdeck/fleetdeck/internal/api"
	"github.com/fleetdeck/fleetdeck/internal/config"
	"github.com/fleetdeck/fleetdeck/internal/dashboard"
	"github.com/fleetdeck/fleetdeck/internal/dedupe"
	"github.com/fleetdeck/fleetdeck/internal/event"
	"github.com/fleetdeck/fleetdeck/internal/transport"
)

// Version is set by goreleaser at build time.
var version = "dev"

const banner = `
   __ _           _      _           _
  / _| | ___  ___| |_ __| | ___  ___| | __
 | |_| |/ _ \/ _ \ __/ _' |/ _ \/ __| |/ /
 |  _| |  __/  __/ || (_| |  __/ (__|   <
 |_| |_|\___|\___|\__\__,_|\___|\___|_|\_\
`

// getConfigPath returns the path to the fleetdeck config file.
// Priority: FLEETDECK_CONFIG env var > XDG_CONFIG_HOME/fleetdeck/config.yaml >
// ~/.config/fleetdeck/config.yaml
func getConfigPath() string {
	if envPath := os.Getenv("FLEETDECK_CONFIG"); envPath != "" {
		return envPath
	}

	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "config.yaml" // fallback
		}
		configDir = filepath.Join(homeDir, ".config")
	}

	return filepath.Join(configDir, "fleetdeck", "config.yaml")
}

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: fleetdeck <command>")
		fmt.Println()
		fmt.Println("Commands:")
		fmt.Println("  watch    Stream the live activity feed")
		fmt.Println("  agents   List agents with current status")
		fmt.Println("  tasks    List tasks with current status")
		fmt.Println("  health   Show orchestrator component health")
		fmt.Println("  init     Create a starter config file")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var err error
	switch os.Args[1] {
	case "watch":
		err = runWatch(ctx)
	case "agents":
		err = runAgents(ctx)
	case "tasks":
		err = runTasks(ctx)
	case "health":
		err = runHealth(ctx)
	case "init":
		err = runInit()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runWatch(ctx context.Context) error {
	configPath := getConfigPath()

	cyan := color.New(color.FgCyan)
	gray := color.New(color.FgHiBlack)
	green := color.New(color.FgGreen)

	cyan.Print(banner)
	gray.Printf("    version: %s\n\n", version)

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := setupLogger(cfg.Logging)

	green.Print("    ▶ ")
	fmt.Printf("Config: %s\n", configPath)
	green.Print("    ▶ ")
	fmt.Printf("API:    %s\n", cfg.Server.BaseURL)
	green.Print("    ▶ ")
	fmt.Printf("Stream: %s\n", cfg.Server.StreamURL)
	fmt.Println()

	client := dashboard.New(cfg, logger)
	client.Start()
	defer client.Close()

	// Remember what the feed loop has already printed. The timeline
	// re-delivers every occurrence on each merge.
	printed := dedupe.New(2 * dashboard.TimelineWindow)

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	lastState := client.ConnectionState()
	printConnectionState(lastState)

	for {
		select {
		case <-ctx.Done():
			fmt.Println("\nGoodbye!")
			return nil
		case <-ticker.C:
			if s := client.ConnectionState(); s != lastState {
				lastState = s
				printConnectionState(s)
			}

			timeline := client.Timeline()
			// Newest first; walk backwards so output stays chronological.
			slices.Reverse(timeline)
			for _, e := range timeline {
				if printed.Seen(e.ID) {
					continue
				}
				printEvent(e)
			}
		}
	}
}

func printConnectionState(s transport.State) {
	switch s {
	case transport.StateConnected:
		color.Green("-- stream %s --", s)
	case transport.StateConnecting:
		color.Yellow("-- stream %s --", s)
	default:
		color.Red("-- stream %s --", s)
	}
}

func printEvent(e event.Event) {
	ts := color.HiBlackString(e.Timestamp.Local().Format("15:04:05"))
	kind := severityColor(e.Severity).Sprintf("%-16s", e.Kind)
	fmt.Printf("%s %s %s\n", ts, kind, e.Message)
}

func severityColor(s event.Severity) *color.Color {
	switch s {
	case event.SeveritySuccess:
		return color.New(color.FgGreen)
	case event.SeverityWarning:
		return color.New(color.FgYellow)
	case event.SeverityError:
		return color.New(color.FgRed)
	default:
		return color.New(color.FgCyan)
	}
}

func runAgents(ctx context.Context) error {
	cfg, err := config.Load(getConfigPath())
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	client := api.New(cfg.Server.BaseURL, cfg.Server.Token)
	list, err := client.ListAgents(ctx)
	if err != nil {
		return err
	}

	if len(list.Items) == 0 {
		fmt.Println("No agents")
		return nil
	}

	fmt.Printf("Agents (%d):\n", list.Total)
	for _, a := range list.Items {
		status := statusColor(a.Status).Sprintf("%-10s", a.Status)
		fmt.Printf("  %s %s  %s [%s]\n", status, a.ID, a.Name, a.Type)
	}
	return nil
}

func runTasks(ctx context.Context) error {
	cfg, err := config.Load(getConfigPath())
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	client := api.New(cfg.Server.BaseURL, cfg.Server.Token)
	list, err := client.ListTasks(ctx)
	if err != nil {
		return err
	}

	if len(list.Items) == 0 {
		fmt.Println("No tasks")
		return nil
	}

	fmt.Printf("Tasks (%d):\n", list.Total)
	for _, t := range list.Items {
		status := statusColor(t.Status).Sprintf("%-12s", t.Status)
		desc := t.Description
		if len(desc) > 60 {
			desc = desc[:57] + "..."
		}
		fmt.Printf("  %s %s  %s\n", status, t.ID, desc)
	}
	return nil
}

func runHealth(ctx context.Context) error {
	cfg, err := config.Load(getConfigPath())
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	client := api.New(cfg.Server.BaseURL, cfg.Server.Token)
	report, err := client.Health(ctx)
	if err != nil {
		return err
	}

	statusColor(report.Status).Printf("%s", report.Status)
	fmt.Printf(" (version %s)\n", report.Version)
	for _, comp := range report.Components {
		status := statusColor(comp.Status).Sprintf("%-10s", comp.Status)
		fmt.Printf("  %s %s", status, comp.Name)
		if comp.LatencyMS > 0 {
			fmt.Printf("  %.1fms", comp.LatencyMS)
		}
		if comp.Message != "" {
			fmt.Printf("  %s", comp.Message)
		}
		fmt.Println()
	}
	return nil
}

func statusColor(status string) *color.Color {
	switch status {
	case "idle", "completed", "healthy":
		return color.New(color.FgGreen)
	case "busy", "in_progress", "starting", "queued", "pending", "degraded":
		return color.New(color.FgYellow)
	case "failed", "offline", "unhealthy", "cancelled":
		return color.New(color.FgRed)
	default:
		return color.New(color.FgCyan)
	}
}

func runInit() error {
	configPath := getConfigPath()

	if _, err := os.Stat(configPath); err == nil {
		return fmt.Errorf("config already exists: %s", configPath)
	}

	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	content := `# fleetdeck configuration
# Generated by fleetdeck init

server:
  base_url: "http://localhost:8000"
  stream_url: "ws://localhost:8000/ws/events"
  token: "${FLEETDECK_TOKEN}"

poll:
  intervals:
    agents: "5s"
    tasks: "3s"
    events: "10s"
    health: "10s"

reconnect:
  max_attempts: 5
  base_delay: "1s"
  max_delay: "5s"

logging:
  level: "info"
  format: "text"
`

	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	color.Green("  ✓ Created config: %s", configPath)
	fmt.Println()
	fmt.Println("Edit the server section, then run:")
	fmt.Println("  fleetdeck watch")
	return nil
}
