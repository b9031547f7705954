package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/marketlens/marketlens/internal/core"
)

// Telegram delivers signal notifications through the Telegram Bot API.
type Telegram struct {
	botToken string
	chatID   string
	client   *http.Client
}

// New creates a Telegram notifier.
func New(botToken, chatID string) (*Telegram, error) {
	if botToken == "" {
		return nil, fmt.Errorf("telegram: bot_token is required")
	}
	if chatID == "" {
		return nil, fmt.Errorf("telegram: chat_id is required")
	}
	return &Telegram{
		botToken: botToken,
		chatID:   chatID,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}, nil
}

func (t *Telegram) Name() string {
	return "telegram"
}

func (t *Telegram) SendSignals(ctx context.Context, signals []core.Signal) error {
	if len(signals) == 0 {
		return nil
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("📊 *%d Trading Signals*\n\n", len(signals)))
	for i, sig := range signals {
		sb.WriteString(formatSignal(sig))
		if i < len(signals)-1 {
			sb.WriteString("\n---\n\n")
		}
	}

	return t.sendMessage(ctx, sb.String())
}

func (t *Telegram) SendTransitions(ctx context.Context, transitions []core.Transition) error {
	if len(transitions) == 0 {
		return nil
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("🔄 *%d Signal Updates*\n\n", len(transitions)))
	for _, tr := range transitions {
		sb.WriteString(fmt.Sprintf("%s *%s*: %s → %s at $%.2f\n",
			transitionEmoji(tr.To), tr.Symbol, tr.From, tr.To, tr.TriggerPrice))
	}

	return t.sendMessage(ctx, sb.String())
}

func formatSignal(sig core.Signal) string {
	var sb strings.Builder

	emoji := "📈"
	if sig.Type == core.SignalSell {
		emoji = "📉"
	}

	sb.WriteString(fmt.Sprintf("%s *%s* - %s (%s)\n", emoji, sig.Symbol, sig.Type, sig.Strength))
	sb.WriteString(fmt.Sprintf("💰 Entry: $%.2f\n", sig.EntryPrice))
	sb.WriteString(fmt.Sprintf("🎯 Targets: $%.2f / $%.2f\n", sig.Target1, sig.Target2))
	sb.WriteString(fmt.Sprintf("🛑 Stop: $%.2f (R/R %.2f)\n", sig.StopLoss, sig.RewardRatio1))
	for _, reason := range sig.Rationale.Reasons {
		sb.WriteString(fmt.Sprintf("💡 %s\n", reason.Detail))
	}
	sb.WriteString(fmt.Sprintf("⏰ Date: %s", core.DateKey(sig.SignalDate)))

	return sb.String()
}

func transitionEmoji(status core.SignalStatus) string {
	switch status {
	case core.StatusHitTarget1, core.StatusHitTarget2:
		return "✅"
	case core.StatusStoppedOut:
		return "🛑"
	case core.StatusExpired:
		return "⌛"
	default:
		return "🔔"
	}
}

func (t *Telegram) sendMessage(ctx context.Context, text string) error {
	url := fmt.Sprintf("https://api.telegram.org/bot%s/sendMessage", t.botToken)

	payload := map[string]any{
		"chat_id":    t.chatID,
		"text":       text,
		"parse_mode": "Markdown",
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("telegram: failed to marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("telegram: failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return fmt.Errorf("telegram: failed to send message: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var result map[string]any
		json.NewDecoder(resp.Body).Decode(&result)
		return fmt.Errorf("telegram: API error (status %d): %v", resp.StatusCode, result)
	}

	return nil
}
