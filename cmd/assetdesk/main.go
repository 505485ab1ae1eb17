package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/assetdesk/assetdesk/internal/api"
	"github.com/assetdesk/assetdesk/internal/app"
	"github.com/assetdesk/assetdesk/internal/pages"
	"github.com/assetdesk/assetdesk/internal/telemetry"
	"github.com/assetdesk/assetdesk/internal/ui/dialog"
	"github.com/assetdesk/assetdesk/internal/ui/layout"
	"github.com/assetdesk/assetdesk/internal/ui/router"
	"github.com/assetdesk/assetdesk/internal/ui/toast"
)

var (
	version   = "dev"
	commit    = "unknown"
	buildTime = "unknown"
	goVersion = "unknown"
)

func main() {
	var configPath, apiURL string
	var showVersion bool

	flag.StringVar(&configPath, "config", "", "config file (default is $HOME/.config/assetdesk/config.yml)")
	flag.StringVar(&apiURL, "api-url", "", "override inventory API base URL")
	flag.BoolVar(&showVersion, "version", false, "print version information")
	flag.Parse()

	if showVersion {
		fmt.Printf("AssetDesk - Asset Inventory Console\n")
		fmt.Printf("  Version:    %s\n", version)
		fmt.Printf("  Commit:     %s\n", commit)
		fmt.Printf("  Built:      %s\n", buildTime)
		fmt.Printf("  Go version: %s\n", goVersion)
		return
	}

	cfg, err := loadCLIConfig(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	if apiURL != "" {
		cfg.APIURL = apiURL
	}

	if err := runTUI(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runTUI(cfg cliConfig) error {
	if err := os.MkdirAll(filepath.Dir(cfg.LogFile), 0o755); err != nil {
		return fmt.Errorf("create log dir: %w", err)
	}
	logFile, err := tea.LogToFile(cfg.LogFile, "assetdesk")
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer logFile.Close()

	tp, err := telemetry.Setup(context.Background(), cfg.OTLPEndpoint, "assetdesk")
	if err != nil {
		log.Printf("telemetry disabled: %v", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = tp.Shutdown(ctx)
	}()

	client, err := api.New(cfg.APIURL, api.WithTracer(tp.Tracer("assetdesk/api")))
	if err != nil {
		return fmt.Errorf("invalid api-url %q: %w", cfg.APIURL, err)
	}

	toasts := toast.New()
	dialogs := dialog.New()
	mount := layout.NewMount()
	deps := &pages.Deps{
		Inventory:   client,
		Dialogs:     dialogs,
		Toasts:      toasts,
		PageSize:    cfg.PageSize,
		ToastTTL:    cfg.ToastTTL,
		Timeout:     cfg.RequestTimeout,
		DownloadDir: cfg.DownloadDir,
	}

	r, err := router.New(pages.Routes(deps), mount, toasts, router.WithToastTTL(cfg.ToastTTL))
	if err != nil {
		return err
	}
	shell := app.New(r, dialogs, toasts, mount,
		app.WithStartPath(cfg.StartPath),
		app.WithReverseScroll(cfg.ReverseScrollWheel),
	)

	log.Printf("assetdesk %s starting against %s", version, cfg.APIURL)
	p := tea.NewProgram(shell, tea.WithAltScreen(), tea.WithMouseCellMotion())
	if _, err := p.Run(); err != nil {
		if strings.Contains(err.Error(), "TTY") || strings.Contains(err.Error(), "/dev/tty") {
			return fmt.Errorf("TUI requires a real terminal")
		}
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}
