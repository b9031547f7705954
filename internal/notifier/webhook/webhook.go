// Package webhook implements an HTTP webhook notifier.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/marketlens/marketlens/internal/core"
)

// Webhook posts signal and transition batches as JSON to a configured URL.
type Webhook struct {
	url     string
	headers map[string]string
	client  *http.Client
}

// New creates a Webhook notifier.
func New(url string, headers map[string]string) (*Webhook, error) {
	if url == "" {
		return nil, fmt.Errorf("webhook: url is required")
	}
	return &Webhook{
		url:     url,
		headers: headers,
		client:  &http.Client{Timeout: 30 * time.Second},
	}, nil
}

func (w *Webhook) Name() string { return "webhook" }

func (w *Webhook) SendSignals(ctx context.Context, signals []core.Signal) error {
	if len(signals) == 0 {
		return nil
	}

	payloads := make([]map[string]any, len(signals))
	for i, sig := range signals {
		payloads[i] = signalPayload(sig)
	}

	return w.post(ctx, map[string]any{
		"type":    "signals",
		"count":   len(signals),
		"signals": payloads,
	})
}

func (w *Webhook) SendTransitions(ctx context.Context, transitions []core.Transition) error {
	if len(transitions) == 0 {
		return nil
	}

	payloads := make([]map[string]any, len(transitions))
	for i, tr := range transitions {
		payloads[i] = map[string]any{
			"signal_id":     tr.SignalID,
			"symbol":        tr.Symbol,
			"from":          tr.From,
			"to":            tr.To,
			"trigger_price": tr.TriggerPrice,
			"date":          core.DateKey(tr.Date),
		}
	}

	return w.post(ctx, map[string]any{
		"type":        "transitions",
		"count":       len(transitions),
		"transitions": payloads,
	})
}

func signalPayload(sig core.Signal) map[string]any {
	return map[string]any{
		"id":          sig.ID,
		"symbol":      sig.Symbol,
		"signal_type": sig.Type,
		"strength":    sig.Strength,
		"entry":       sig.EntryPrice,
		"target_1":    sig.Target1,
		"target_2":    sig.Target2,
		"stop_loss":   sig.StopLoss,
		"rr_1":        sig.RewardRatio1,
		"rationale":   sig.Rationale,
		"date":        core.DateKey(sig.SignalDate),
	}
}

func (w *Webhook) post(ctx context.Context, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("webhook: failed to marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("webhook: failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	for k, v := range w.headers {
		req.Header.Set(k, v)
	}

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("webhook: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("webhook: server returned %d", resp.StatusCode)
	}

	return nil
}
