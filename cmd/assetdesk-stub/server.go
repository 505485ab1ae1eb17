package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/sync/errgroup"

	"github.com/assetdesk/assetdesk/internal/inventory"
	"github.com/assetdesk/assetdesk/internal/telemetry"
)

// runServer serves the inventory API until SIGINT or SIGTERM.
func runServer(cfg stubConfig, logStderr bool) error {
	cleanupLogger := configureRuntimeLogger(logStderr)
	defer cleanupLogger()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	tp, err := telemetry.Setup(ctx, cfg.OTLPEndpoint, "assetdesk-stub")
	if err != nil {
		return err
	}
	defer func() {
		sctx, scancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer scancel()
		if err := tp.Shutdown(sctx); err != nil {
			log.Printf("telemetry: shutdown: %v", err)
		}
	}()

	store, err := inventory.NewStore(cfg.DBPath, cfg.QueryTimeout)
	if err != nil {
		return fmt.Errorf("failed to initialize DuckDB: %w", err)
	}
	defer store.Close()

	seeded := false
	if cfg.Seed {
		if seeded, err = store.Seed(ctx); err != nil {
			return fmt.Errorf("failed to seed demo data: %w", err)
		}
	}

	srv := inventory.NewServer(cfg.Addr, store,
		inventory.WithTracer(tp.Tracer("assetdesk/inventory")),
		inventory.WithDebug(cfg.Debug),
	)
	if err := srv.Start(); err != nil {
		return fmt.Errorf("failed to start API server: %w", err)
	}
	log.Printf("stub: listening on %s", srv.Addr())

	printStartupBanner(cfg, srv.Addr(), seeded, tp.Enabled())

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		<-gctx.Done()
		fmt.Println("\nShutting down...")
		return srv.Stop()
	})

	if err := g.Wait(); err != nil {
		log.Printf("stub: shutdown: %v", err)
		return err
	}
	return nil
}

// configureRuntimeLogger appends to the stub's state log, or stderr when
// asked or when the state dir is unusable.
func configureRuntimeLogger(toStderr bool) func() {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)

	if toStderr {
		log.SetOutput(os.Stderr)
		return func() {}
	}

	home, err := os.UserHomeDir()
	if err != nil {
		log.SetOutput(os.Stderr)
		return func() {}
	}

	logDir := filepath.Join(home, ".local", "state", "assetdesk")
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		log.SetOutput(os.Stderr)
		return func() {}
	}

	f, err := os.OpenFile(filepath.Join(logDir, "stub.log"), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		log.SetOutput(os.Stderr)
		return func() {}
	}

	log.SetOutput(f)
	return func() {
		_ = f.Close()
	}
}

func printStartupBanner(cfg stubConfig, addr string, seeded, tracing bool) {
	dim := lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	green := lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	cyan := lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	bold := lipgloss.NewStyle().Bold(true)

	check := green.Render("●")
	dot := dim.Render("●")

	state := func(on bool, label string) string {
		if on {
			return fmt.Sprintf("%s  %s", check, label)
		}
		return fmt.Sprintf("%s  %s", dot, dim.Render(label))
	}

	db := cfg.DBPath
	if db == "" {
		db = "in-memory"
	}

	lines := []string{
		"",
		bold.Render("    assetdesk-stub") + " " + dim.Render("v"+version),
		dim.Render("    ─────────────────────────────────"),
		"",
		fmt.Sprintf("    %s  REST API       %s", check, cyan.Render("http://"+addr+"/api/v1")),
		fmt.Sprintf("    %s  Store          %s", check, cyan.Render(db)),
		"    " + state(seeded, "Demo data seeded"),
		"    " + state(tracing, "OTLP tracing"),
		"",
		dim.Render("    Press Ctrl+C to stop"),
		"",
	}
	fmt.Println(strings.Join(lines, "\n"))
}
