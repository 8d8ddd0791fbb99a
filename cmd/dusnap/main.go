// dusnap takes periodic disk usage snapshots of configured directory
// roots, stores them in SQLite, reports human-readable usage and growth,
// and alerts via ntfy webhook when a root crosses a configured byte limit.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/setevik/dusnap/internal/config"
	"github.com/setevik/dusnap/internal/report"
	"github.com/setevik/dusnap/internal/scanner"
	"github.com/setevik/dusnap/internal/snapshot"
	"github.com/setevik/dusnap/internal/store"
)

var version = "dev"

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "scan":
			runScan(os.Args[2:])
			return
		case "report":
			runReport(os.Args[2:])
			return
		case "history":
			runHistory(os.Args[2:])
			return
		case "status":
			runStatus(os.Args[2:])
			return
		case "version":
			fmt.Println("dusnap", version)
			return
		}
	}

	// Default: run daemon.
	runDaemon(os.Args[1:])
}

func runDaemon(args []string) {
	fs := flag.NewFlagSet("dusnap", flag.ExitOnError)
	configPath := fs.String("config", "", "path to config file")
	showVersion := fs.Bool("version", false, "print version and exit")
	fs.Parse(args)

	if *showVersion {
		fmt.Println("dusnap", version)
		os.Exit(0)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error loading config: %v\n", err)
		os.Exit(1)
	}

	setupLogging(cfg.Log.Level)

	slog.Info("dusnap starting",
		"version", version,
		"instance", cfg.Instance.ID,
		"roots", cfg.Scan.Roots,
	)

	if err := run(cfg); err != nil {
		slog.Error("fatal error", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	if len(cfg.Scan.Roots) == 0 {
		return fmt.Errorf("no scan roots configured (set [scan].roots)")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	// Open snapshot database.
	db, err := store.Open(cfg.DBPath())
	if err != nil {
		return fmt.Errorf("opening snapshot database: %w", err)
	}
	defer db.Close()

	slog.Info("snapshot database opened", "path", cfg.DBPath())

	// Run retention purge on startup.
	if cfg.DB.Retention.Duration > 0 {
		purged, err := db.Purge(cfg.DB.Retention.Duration)
		if err != nil {
			slog.Warn("failed to purge old snapshots", "error", err)
		} else if purged > 0 {
			slog.Info("purged old snapshots", "count", purged, "retention", cfg.DB.Retention.Duration)
		}
	}

	rep := report.NewNtfy(cfg)

	// Notify systemd we are ready (sd_notify).
	sdNotify("READY=1")

	// Start watchdog ticker if WatchdogSec is configured.
	var watchdogTicker *time.Ticker
	if wdInterval := watchdogInterval(); wdInterval > 0 {
		// Ping at half the watchdog interval.
		watchdogTicker = time.NewTicker(wdInterval / 2)
		defer watchdogTicker.Stop()
		slog.Info("systemd watchdog enabled", "interval", wdInterval)
	}

	scanTicker := time.NewTicker(cfg.Scan.Interval.Duration)
	defer scanTicker.Stop()

	slog.Info("daemon started, scanning on interval", "interval", cfg.Scan.Interval.Duration)

	// First pass immediately, then on the ticker.
	scanAll(ctx, cfg, db, rep)

	for {
		// Watchdog channel (nil if disabled, select skips nil channels).
		var watchdogCh <-chan time.Time
		if watchdogTicker != nil {
			watchdogCh = watchdogTicker.C
		}

		select {
		case <-scanTicker.C:
			scanAll(ctx, cfg, db, rep)

		case <-watchdogCh:
			sdNotify("WATCHDOG=1")

		case sig := <-sigCh:
			slog.Info("received signal, shutting down", "signal", sig)
			sdNotify("STOPPING=1")
			cancel()
			return nil
		}
	}
}

// scanAll scans every configured root, stores the snapshots, and fires
// limit alerts where due.
func scanAll(ctx context.Context, cfg *config.Config, db *store.DB, rep *report.NtfyReporter) {
	for _, root := range cfg.Scan.Roots {
		snap, err := scanner.Scan(ctx, cfg.Instance.ID, root)
		if err != nil {
			slog.Error("scan failed", "root", root, "error", err)
			continue
		}

		if err := db.Insert(snap); err != nil {
			slog.Error("failed to store snapshot", "root", root, "error", err)
		}

		slog.Info("snapshot recorded",
			"root", root,
			"total", snap.Total(),
			"files", snap.FileCount,
			"skipped", snap.SkippedCount,
		)

		checkLimit(ctx, cfg, db, rep, snap)
	}
}

// checkLimit fires an ntfy alert if the snapshot exceeds its root's
// configured limit and no alert fired within the cooldown window.
func checkLimit(ctx context.Context, cfg *config.Config, db *store.DB, rep *report.NtfyReporter, snap *snapshot.Snapshot) {
	limit, ok := cfg.LimitFor(snap.Root)
	if !ok || snap.TotalBytes <= limit {
		return
	}

	mayAlert, err := db.CheckCooldown(snap.Root, cfg.Cooldown.Window.Duration)
	if err != nil {
		slog.Error("cooldown check failed", "error", err)
		return
	}
	if !mayAlert {
		slog.Debug("limit alert suppressed by cooldown", "root", snap.Root)
		return
	}

	if err := rep.Alert(ctx, snap, limit); err != nil {
		slog.Error("failed to send limit alert", "root", snap.Root, "error", err)
		return
	}
	if cfg.Ntfy.URL != "" {
		_ = db.MarkNotified(snap.ID)
	}
}

// --- scan subcommand ---

func runScan(args []string) {
	fs := flag.NewFlagSet("scan", flag.ExitOnError)
	configPath := fs.String("config", "", "path to config file")
	root := fs.String("root", "", "scan a single root instead of the configured ones")
	dryRun := fs.Bool("dry-run", false, "print results without storing snapshots")
	fs.Parse(args)

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error loading config: %v\n", err)
		os.Exit(1)
	}

	setupLogging("error") // quiet for CLI output

	roots := cfg.Scan.Roots
	if *root != "" {
		roots = []string{*root}
	}
	if len(roots) == 0 {
		fmt.Fprintln(os.Stderr, "error: no roots to scan (set [scan].roots or pass -root)")
		os.Exit(1)
	}

	var db *store.DB
	if !*dryRun {
		db, err = store.Open(cfg.DBPath())
		if err != nil {
			fmt.Fprintf(os.Stderr, "error opening database: %v\n", err)
			os.Exit(1)
		}
		defer db.Close()
	}

	ctx := context.Background()
	prec := cfg.Display.Precision

	for _, r := range roots {
		snap, err := scanner.Scan(ctx, cfg.Instance.ID, r)
		if err != nil {
			fmt.Fprintf(os.Stderr, "scan error: %v\n", err)
			os.Exit(1)
		}

		if db != nil {
			if err := db.Insert(snap); err != nil {
				fmt.Fprintf(os.Stderr, "error storing snapshot: %v\n", err)
				os.Exit(1)
			}
		}

		fmt.Printf("%s  %s  %d files", r, snap.Total().Format(prec), snap.FileCount)
		if snap.SkippedCount > 0 {
			fmt.Printf("  (%d skipped)", snap.SkippedCount)
		}
		fmt.Println()
	}
}

// --- report subcommand ---

func runReport(args []string) {
	fs := flag.NewFlagSet("report", flag.ExitOnError)
	configPath := fs.String("config", "", "path to config file")
	fs.Parse(args)

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error loading config: %v\n", err)
		os.Exit(1)
	}

	setupLogging("error")

	db, err := store.Open(cfg.DBPath())
	if err != nil {
		fmt.Fprintf(os.Stderr, "error opening database: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	roots, err := db.Roots()
	if err != nil {
		fmt.Fprintf(os.Stderr, "query error: %v\n", err)
		os.Exit(1)
	}

	recent := make(map[string][]*snapshot.Snapshot)
	for _, r := range roots {
		snaps, err := db.Recent(r, 2)
		if err != nil {
			fmt.Fprintf(os.Stderr, "query error: %v\n", err)
			os.Exit(1)
		}
		recent[r] = snaps
	}

	usages := report.Build(recent)
	fmt.Print(report.FormatReport(cfg.Instance.ID, usages, cfg.Display.Precision))
}

// --- history subcommand ---

func runHistory(args []string) {
	fs := flag.NewFlagSet("history", flag.ExitOnError)
	configPath := fs.String("config", "", "path to config file")
	root := fs.String("root", "", "root to show history for (required)")
	last := fs.String("last", "30d", "time window (e.g. 24h, 7d, 30d)")
	limit := fs.Int("limit", 50, "max snapshots to show")
	fs.Parse(args)

	if *root == "" {
		fmt.Fprintln(os.Stderr, "error: -root is required")
		os.Exit(1)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error loading config: %v\n", err)
		os.Exit(1)
	}

	setupLogging("error")

	db, err := store.Open(cfg.DBPath())
	if err != nil {
		fmt.Fprintf(os.Stderr, "error opening database: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	window, err := parseDuration(*last)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid --last value %q: %v\n", *last, err)
		os.Exit(1)
	}

	snaps, err := db.Query(store.QueryFilter{
		Root:  *root,
		Since: time.Now().Add(-window),
		Limit: *limit,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "query error: %v\n", err)
		os.Exit(1)
	}

	if len(snaps) == 0 {
		fmt.Println("No snapshots found.")
		return
	}

	prec := cfg.Display.Precision
	for i, s := range snaps {
		ts := s.Timestamp.Local().Format("2006-01-02 15:04:05")
		fmt.Printf("%s  %12s  %8d files", ts, s.Total().Format(prec), s.FileCount)
		if i+1 < len(snaps) {
			fmt.Printf("  %s", report.FormatDelta(s.TotalBytes-snaps[i+1].TotalBytes, prec))
		}
		fmt.Println()
	}
	fmt.Printf("Total: %d snapshot(s)\n", len(snaps))
}

// --- status subcommand ---

func runStatus(args []string) {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	configPath := fs.String("config", "", "path to config file")
	fs.Parse(args)

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error loading config: %v\n", err)
		os.Exit(1)
	}

	setupLogging("error")

	fmt.Printf("Instance:    %s\n", cfg.Instance.ID)
	if len(cfg.Scan.Roots) > 0 {
		fmt.Printf("Roots:       %s\n", strings.Join(cfg.Scan.Roots, ", "))
	} else {
		fmt.Println("Roots:       none configured")
	}

	db, err := store.Open(cfg.DBPath())
	if err != nil {
		fmt.Fprintf(os.Stderr, "error opening database: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	prec := cfg.Display.Precision
	roots, _ := db.Roots()
	for _, r := range roots {
		snaps, err := db.Recent(r, 1)
		if err != nil || len(snaps) == 0 {
			continue
		}
		s := snaps[0]
		ago := time.Since(s.Timestamp).Truncate(time.Second)
		fmt.Printf("Last scan:   %s  %s — %s ago\n", r, s.Total().Format(prec), formatDuration(ago))
	}

	count, _ := db.Count()
	fmt.Printf("Snapshots:   %d total\n", count)
	fmt.Printf("DB path:     %s\n", cfg.DBPath())
}

// --- sd_notify support ---

// sdNotify sends a notification to systemd via the NOTIFY_SOCKET.
// This is a minimal implementation that doesn't require a C dependency.
func sdNotify(state string) {
	socketAddr := os.Getenv("NOTIFY_SOCKET")
	if socketAddr == "" {
		return
	}

	conn, err := net.Dial("unixgram", socketAddr)
	if err != nil {
		slog.Debug("sd_notify: failed to connect", "error", err)
		return
	}
	defer conn.Close()

	if _, err := conn.Write([]byte(state)); err != nil {
		slog.Debug("sd_notify: failed to send", "error", err)
	}
}

// watchdogInterval reads WATCHDOG_USEC from the environment and returns the
// watchdog interval as a time.Duration. Returns 0 if not set.
func watchdogInterval() time.Duration {
	usecStr := os.Getenv("WATCHDOG_USEC")
	if usecStr == "" {
		return 0
	}
	var usec int64
	if _, err := fmt.Sscanf(usecStr, "%d", &usec); err != nil {
		return 0
	}
	return time.Duration(usec) * time.Microsecond
}

// --- utilities ---

func setupLogging(level string) {
	var logLevel slog.Level
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	})
	slog.SetDefault(slog.New(handler))
}

// parseDuration extends time.ParseDuration with support for "d" (days) suffix.
func parseDuration(s string) (time.Duration, error) {
	if strings.HasSuffix(s, "d") {
		s = strings.TrimSuffix(s, "d")
		var days int
		if _, err := fmt.Sscanf(s, "%d", &days); err != nil {
			return 0, fmt.Errorf("invalid days format: %s", s)
		}
		return time.Duration(days) * 24 * time.Hour, nil
	}
	return time.ParseDuration(s)
}

// formatDuration formats a duration in human-readable form.
func formatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	if d < time.Hour {
		return fmt.Sprintf("%dm", int(d.Minutes()))
	}
	if d < 24*time.Hour {
		h := int(d.Hours())
		m := int(d.Minutes()) % 60
		return fmt.Sprintf("%dh %dm", h, m)
	}
	days := int(d.Hours()) / 24
	h := int(d.Hours()) % 24
	return fmt.Sprintf("%dd %dh", days, h)
}
