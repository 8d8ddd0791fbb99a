package report

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/setevik/dusnap/internal/config"
	"github.com/setevik/dusnap/internal/snapshot"
)

// NtfyReporter sends limit alerts to an ntfy server.
type NtfyReporter struct {
	cfg    *config.Config
	client *http.Client
}

// NewNtfy creates a new NtfyReporter.
func NewNtfy(cfg *config.Config) *NtfyReporter {
	return &NtfyReporter{
		cfg: cfg,
		client: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// Alert sends a limit alert for the given snapshot to ntfy. It is a
// no-op when no ntfy URL is configured.
func (r *NtfyReporter) Alert(ctx context.Context, snap *snapshot.Snapshot, limit int64) error {
	if r.cfg.Ntfy.URL == "" {
		slog.Debug("ntfy URL not configured, skipping alert")
		return nil
	}

	title := FormatAlertTitle(snap)
	body := FormatAlertBody(snap, limit, r.cfg.Display.Precision)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.cfg.Ntfy.URL, strings.NewReader(body))
	if err != nil {
		return fmt.Errorf("creating ntfy request: %w", err)
	}

	req.Header.Set("Title", title)
	req.Header.Set("Priority", r.cfg.Ntfy.Priority)
	req.Header.Set("Tags", "floppy_disk,warning")

	resp, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("sending ntfy alert: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("ntfy returned status %d", resp.StatusCode)
	}

	slog.Info("limit alert sent", "root", snap.Root, "usage", snap.Total(), "limit", limit)
	return nil
}
