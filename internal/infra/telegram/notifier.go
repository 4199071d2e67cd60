// Package telegram delivers best-effort match notifications through a bot.
// Failures here never affect match state.
package telegram

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

type Notifier struct {
	api *tgbotapi.BotAPI
}

func NewNotifier(token string) (*Notifier, error) {
	if strings.TrimSpace(token) == "" {
		return nil, fmt.Errorf("telegram bot token is empty")
	}

	api, err := tgbotapi.NewBotAPI(strings.TrimSpace(token))
	if err != nil {
		return nil, fmt.Errorf("create telegram bot api: %w", err)
	}

	return &Notifier{api: api}, nil
}

// NotifyMatch sends the "you matched" message. chatID is the numeric Telegram
// chat stored on the user's notification settings; a zero id means the user
// has no linked chat and the call is a no-op.
func (n *Notifier) NotifyMatch(ctx context.Context, chatID int64, otherDisplayName string, strength int) error {
	if n == nil || n.api == nil {
		return fmt.Errorf("telegram notifier is not initialized")
	}
	if chatID == 0 {
		return nil
	}
	// tgbotapi sends without a context, so the deadline is honored only
	// before dispatch.
	if err := ctx.Err(); err != nil {
		return err
	}

	text := "You have a new match with " + otherDisplayName +
		" (" + strconv.Itoa(strength) + " shared favorites)"
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := n.api.Send(msg); err != nil {
		return fmt.Errorf("send telegram message: %w", err)
	}

	return nil
}
