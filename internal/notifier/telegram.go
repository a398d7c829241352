package notifier

import (
	"fmt"
	"time"

	"committee-trade-bot-go/internal/config"
	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

const telegramAPIBase = "https://api.telegram.org"

// Telegram sends messages to a chat through the Bot API, with bounded
// retries. A send failure is the caller's to log; it must never fail a
// pipeline run.
type Telegram struct {
	client   *resty.Client
	botToken string
	chatID   string
	logger   *zap.Logger
}

var _ TextNotifier = (*Telegram)(nil)

// NewTelegram creates a Telegram notifier from the configuration.
func NewTelegram(cfg *config.Telegram, logger *zap.Logger) *Telegram {
	return &Telegram{
		client:   resty.New().SetBaseURL(telegramAPIBase).SetTimeout(15 * time.Second),
		botToken: cfg.BotToken,
		chatID:   cfg.ChatID,
		logger:   logger,
	}
}

// SendText delivers one message, retrying up to three times.
func (t *Telegram) SendText(text string) error {
	if t.botToken == "" || t.chatID == "" {
		return fmt.Errorf("telegram notifier is not configured")
	}

	url := fmt.Sprintf("/bot%s/sendMessage", t.botToken)
	payload := map[string]any{
		"chat_id": t.chatID,
		"text":    text,
	}

	var lastErr error
	for i := 0; i < 3; i++ {
		resp, err := t.client.R().SetBody(payload).Post(url)
		if err == nil && !resp.IsError() {
			return nil
		}
		if err != nil {
			lastErr = err
		} else {
			lastErr = fmt.Errorf("telegram responded with status %s", resp.Status())
		}
		t.logger.Warn("Notification send failed, retrying...",
			zap.Int("attempt", i+1),
			zap.Error(lastErr),
		)
		time.Sleep(time.Duration(i+1) * time.Second)
	}
	return lastErr
}
