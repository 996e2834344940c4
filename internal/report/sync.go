package report

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"quiz-delivery/internal/domain"
)

// SyncPayload is the wire shape of an outbound grade report.
type SyncPayload struct {
	Student   string                   `json:"student"`
	Score     float64                  `json:"score"`
	Total     float64                  `json:"total"`
	Quiz      string                   `json:"quiz"`
	Timestamp string                   `json:"timestamp"`
	Answers   map[string]domain.Answer `json:"answers"`
}

// Syncer posts grade reports to the author-configured endpoint. Callers treat
// failures as diagnostics only; no response body is consumed for control flow.
type Syncer struct {
	client  *http.Client
	timeout time.Duration
}

func NewSyncer(client *http.Client, timeout time.Duration) *Syncer {
	if client == nil {
		client = http.DefaultClient
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Syncer{client: client, timeout: timeout}
}

// Send posts one report. A single attempt, bounded by the syncer's timeout.
func (s *Syncer) Send(url string, payload SyncPayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal sync payload: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build sync request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("post grade sync: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("grade sync endpoint returned %d", resp.StatusCode)
	}
	return nil
}
