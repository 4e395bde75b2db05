package notifications

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

type TelegramNotifier struct {
	token   string
	chatID  string
	baseURL string
	hc      *http.Client
}

func NewTelegramNotifier(token, chatID string) *TelegramNotifier {
	return &TelegramNotifier{
		token:   token,
		chatID:  chatID,
		baseURL: "https://api.telegram.org",
		hc:      &http.Client{Timeout: 10 * time.Second},
	}
}

func (t *TelegramNotifier) SendAlert(level, message string) error {
	emoji := "ℹ️"
	switch level {
	case "warning":
		emoji = "⚠️"
	case "error":
		emoji = "🚨"
	case "success":
		emoji = "✅"
	case "trade":
		emoji = "🚀"
	}

	return t.send(fmt.Sprintf("%s *Viper Bot*\n\n%s", emoji, message))
}

// EntryAlert describes an option entry for notification.
type EntryAlert struct {
	Symbol       string
	Side         string // CE or PE
	Strike       int
	FuturesPrice float64
	EntryPrice   float64
	Quantity     int
	OrderID      string
	Reason       string
}

// SendEntry sends a formatted trade entry alert.
func (t *TelegramNotifier) SendEntry(a EntryAlert) error {
	kind, arrow := "CALL", "🔺"
	if a.Side == "PE" {
		kind, arrow = "PUT", "🔻"
	}
	reason := a.Reason
	if reason == "" {
		reason = "Momentum + OI skew confirm"
	}

	text := fmt.Sprintf(
		"🚀 %s %s Trade Alert\n"+
			"Futures Price: %.2f\n"+
			"Strike: %d %s\n"+
			"Entry: %.2f x %d\n"+
			"Order ID: %s\n"+
			"Reason: %s %s",
		a.Symbol, kind, a.FuturesPrice, a.Strike, a.Side,
		a.EntryPrice, a.Quantity, a.OrderID, arrow, reason)
	return t.send(text)
}

// SendExit sends a formatted trade exit alert.
func (t *TelegramNotifier) SendExit(symbol string, quantity int, exitPrice, pnl float64) error {
	emoji := "✅"
	if pnl < 0 {
		emoji = "🔻"
	}
	return t.send(fmt.Sprintf("🚪 EXIT %s: %d @ %.2f, P&L %s %.2f", symbol, quantity, exitPrice, emoji, pnl))
}

func (t *TelegramNotifier) send(text string) error {
	if t.token == "" || t.chatID == "" {
		return nil
	}

	apiURL := fmt.Sprintf("%s/bot%s/sendMessage", t.baseURL, t.token)

	data := url.Values{}
	data.Set("chat_id", t.chatID)
	data.Set("text", text)
	data.Set("parse_mode", "Markdown")

	resp, err := t.hc.Post(apiURL, "application/x-www-form-urlencoded",
		strings.NewReader(data.Encode()))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("telegram API returned status %d", resp.StatusCode)
	}
	return nil
}
