package store

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/Modzmart2112/Tracker-sub001/config"
	"github.com/Modzmart2112/Tracker-sub001/models"
)

// Event types pushed to the webhook consumer.
const (
	EventJobCompleted = "job.completed"
	EventJobFailed    = "job.failed"
)

// retrySchedule is the wait before each delivery attempt; the first attempt
// is immediate.
var retrySchedule = []time.Duration{0, time.Second, 5 * time.Second, 30 * time.Second}

// JobEvent is the payload handed to the persistence consumer when a scrape
// job finishes. The engine keeps no durable product state, so this is the
// hand-off point for everything downstream wants to keep.
type JobEvent struct {
	Type         string                  `json:"type"`
	JobID        string                  `json:"job_id"`
	OccurredAt   int64                   `json:"occurred_at"`
	Products     []models.ScrapedProduct `json:"products,omitempty"`
	Slides       []models.Slide          `json:"slides,omitempty"`
	TotalItems   int                     `json:"total_items"`
	PagesScraped int                     `json:"pages_scraped"`
	Errors       []string                `json:"errors,omitempty"`
}

// Notifier delivers job events over HTTP. Bodies are signed with HMAC-SHA256
// when a secret is configured (header X-Tracker-Signature: sha256=<hex>).
// A Notifier without a URL is disabled and drops events silently.
type Notifier struct {
	url    string
	secret string
	client *http.Client
}

// NewNotifier creates a notifier from the webhook configuration.
func NewNotifier(cfg config.WebhookConfig) *Notifier {
	return &Notifier{
		url:    cfg.URL,
		secret: cfg.Secret,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

// Enabled reports whether events will actually be sent anywhere.
func (n *Notifier) Enabled() bool {
	return n != nil && n.url != ""
}

// Send delivers one event synchronously.
func (n *Notifier) Send(ctx context.Context, ev *JobEvent) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("webhook: marshal event: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("webhook: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "Tracker-Webhook/1.0")
	if n.secret != "" {
		req.Header.Set("X-Tracker-Signature", "sha256="+n.sign(body))
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("webhook: deliver: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("webhook: endpoint returned status %d", resp.StatusCode)
	}
	return nil
}

// SendAsync delivers an event in the background, retrying on a fixed
// schedule. Delivery failures never propagate to the job that emitted the
// event.
func (n *Notifier) SendAsync(ev *JobEvent) {
	if !n.Enabled() {
		return
	}
	go func() {
		for attempt, wait := range retrySchedule {
			if wait > 0 {
				time.Sleep(wait)
			}
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			err := n.Send(ctx, ev)
			cancel()
			if err == nil {
				slog.Info("webhook delivered",
					"event", ev.Type, "job_id", ev.JobID, "attempt", attempt+1)
				return
			}
			slog.Warn("webhook delivery failed",
				"event", ev.Type, "job_id", ev.JobID, "attempt", attempt+1, "error", err)
		}
		slog.Error("webhook delivery gave up",
			"event", ev.Type, "job_id", ev.JobID, "attempts", len(retrySchedule))
	}()
}

// sign computes the hex HMAC-SHA256 of the request body.
func (n *Notifier) sign(body []byte) string {
	mac := hmac.New(sha256.New, []byte(n.secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}
