package notify

import (
	"context"
	"errors"
	"testing"

	"skynest/internal/config"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSender struct {
	sent []tgbotapi.MessageConfig
	err  error
}

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	if f.err != nil {
		return tgbotapi.Message{}, f.err
	}
	if msg, ok := c.(tgbotapi.MessageConfig); ok {
		f.sent = append(f.sent, msg)
	}
	return tgbotapi.Message{MessageID: len(f.sent)}, nil
}

func TestTelegramNotifier_Notify(t *testing.T) {
	logger := zerolog.Nop()
	sender := &fakeSender{}
	n := NewTelegramNotifierWithSender(sender, -100123, &logger)

	require.NoError(t, n.Notify(context.Background(), "New support ticket #5"))

	require.Len(t, sender.sent, 1)
	assert.Equal(t, int64(-100123), sender.sent[0].ChatID)
	assert.Equal(t, "New support ticket #5", sender.sent[0].Text)
	assert.True(t, sender.sent[0].DisableWebPagePreview)
}

func TestTelegramNotifier_SendError(t *testing.T) {
	logger := zerolog.Nop()
	n := NewTelegramNotifierWithSender(&fakeSender{err: errors.New("flood wait")}, 1, &logger)

	err := n.Notify(context.Background(), "hello")
	assert.ErrorContains(t, err, "flood wait")
}

func TestTelegramNotifier_CancelledContext(t *testing.T) {
	logger := zerolog.Nop()
	sender := &fakeSender{}
	n := NewTelegramNotifierWithSender(sender, 1, &logger)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, n.Notify(ctx, "hello"), context.Canceled)
	assert.Empty(t, sender.sent)
}

func TestLogNotifier(t *testing.T) {
	logger := zerolog.Nop()
	assert.NoError(t, NewLogNotifier(&logger).Notify(context.Background(), "x"))
}

func TestNewFallsBackToLog(t *testing.T) {
	logger := zerolog.Nop()
	_, ok := New(config.TelegramConfig{}, &logger).(*LogNotifier)
	assert.True(t, ok)
}
