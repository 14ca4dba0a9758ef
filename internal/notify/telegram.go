// Package notify delivers short staff notifications.
package notify

import (
	"context"
	"fmt"

	"skynest/internal/config"
	"skynest/internal/domain"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

// Sender is the part of the Telegram bot API the notifier needs.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// TelegramNotifier posts messages to the staff chat.
type TelegramNotifier struct {
	api    Sender
	chatID int64
	logger *zerolog.Logger
}

var _ domain.Notifier = (*TelegramNotifier)(nil)

func NewTelegramNotifier(cfg config.TelegramConfig, logger *zerolog.Logger) (*TelegramNotifier, error) {
	api, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}
	api.Debug = cfg.Debug
	logger.Info().Str("bot", api.Self.UserName).Int64("chat_id", cfg.StaffChatID).Msg("telegram staff notifier ready")

	return NewTelegramNotifierWithSender(api, cfg.StaffChatID, logger), nil
}

// New returns the Telegram notifier when configured, otherwise one that logs.
func New(cfg config.TelegramConfig, logger *zerolog.Logger) domain.Notifier {
	if cfg.Enabled() {
		n, err := NewTelegramNotifier(cfg, logger)
		if err == nil {
			return n
		}
		logger.Warn().Err(err).Msg("telegram init failed, staff notifications go to the log")
	}
	return NewLogNotifier(logger)
}

func NewTelegramNotifierWithSender(api Sender, chatID int64, logger *zerolog.Logger) *TelegramNotifier {
	return &TelegramNotifier{api: api, chatID: chatID, logger: logger}
}

func (n *TelegramNotifier) Notify(ctx context.Context, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := tgbotapi.NewMessage(n.chatID, text)
	msg.DisableWebPagePreview = true
	if _, err := n.api.Send(msg); err != nil {
		return fmt.Errorf("send telegram message: %w", err)
	}
	n.logger.Debug().Int64("chat_id", n.chatID).Msg("staff notification sent")
	return nil
}

// LogNotifier writes notifications to the log when Telegram is not configured.
type LogNotifier struct {
	logger *zerolog.Logger
}

func NewLogNotifier(logger *zerolog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Notify(_ context.Context, text string) error {
	n.logger.Info().Str("text", text).Msg("staff notification")
	return nil
}
