package telegram

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/finpulse/monitor/pkg/logger"
	"github.com/finpulse/monitor/pkg/models"
)

// Notifier publishes alerts to a Telegram chat. Implements alerts.Sink.
type Notifier struct {
	api    *tgbotapi.BotAPI
	chatID int64
}

// NewNotifier creates new Telegram notifier
func NewNotifier(botToken string, chatID int64) (*Notifier, error) {
	if botToken == "" {
		return nil, fmt.Errorf("telegram bot token is required")
	}

	bot, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot API: %w", err)
	}

	bot.Debug = false

	logger.Info("telegram notifier initialized",
		zap.String("bot_username", bot.Self.UserName),
		zap.Int64("chat_id", chatID),
	)

	return &Notifier{
		api:    bot,
		chatID: chatID,
	}, nil
}

// Publish formats and sends one alert to the configured chat.
func (n *Notifier) Publish(_ context.Context, alert models.Alert) error {
	var text string

	switch a := alert.(type) {
	case models.PriceAlert:
		text = formatPriceAlert(a)
	case models.SentimentSnapshot:
		text = formatSentimentSnapshot(a)
	default:
		return fmt.Errorf("unknown alert kind: %s", alert.Kind())
	}

	return n.sendMessageMarkdown(text)
}

func formatPriceAlert(a models.PriceAlert) string {
	emoji := "📈"
	if a.Direction == "down" {
		emoji = "📉"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s *%s* price %s %.2f%%\n", emoji, a.Symbol, a.Direction, a.ChangePct)
	fmt.Fprintf(&b, "Price: `%.2f` (baseline `%.2f`)\n", a.Price, a.Baseline)
	if a.TradingDate != "" {
		fmt.Fprintf(&b, "Session: %s\n", a.TradingDate)
	}
	fmt.Fprintf(&b, "Time: %s", a.Timestamp.Format("15:04:05 MST"))
	return b.String()
}

func formatSentimentSnapshot(a models.SentimentSnapshot) string {
	emoji := "🟡"
	switch a.Decision {
	case models.DecisionBuy:
		emoji = "🟢"
	case models.DecisionSell:
		emoji = "🔴"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s *%s* sentiment: *%s* (%.1f%%)\n", emoji, a.Symbol, a.Decision, a.Confidence)
	fmt.Fprintf(&b, "Texts: %d news / %d social, %d+ %d-\n", a.NewsCount, a.SocialCount, a.Positive, a.Negative)
	if len(a.SampleTitles) > 0 {
		fmt.Fprintf(&b, "Latest: _%s_", a.SampleTitles[0])
	}
	return b.String()
}

func (n *Notifier) sendMessageMarkdown(text string) error {
	msg := tgbotapi.NewMessage(n.chatID, text)
	msg.ParseMode = "Markdown"

	_, err := n.api.Send(msg)
	if err != nil {
		logger.Error("failed to send telegram message",
			zap.Int64("chat_id", n.chatID),
			zap.Error(err),
		)
		return err
	}

	return nil
}
