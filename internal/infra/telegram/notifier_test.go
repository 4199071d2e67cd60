package telegram

import (
	"context"
	"errors"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func TestNotifyMatchSkipsWithoutLinkedChat(t *testing.T) {
	n := &Notifier{api: &tgbotapi.BotAPI{}}
	if err := n.NotifyMatch(context.Background(), 0, "Bea", 3); err != nil {
		t.Fatalf("zero chat id must be a no-op, got %v", err)
	}
}

func TestNotifyMatchHonorsCancelledContext(t *testing.T) {
	n := &Notifier{api: &tgbotapi.BotAPI{}}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := n.NotifyMatch(ctx, 42, "Bea", 3); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestNotifyMatchUninitialized(t *testing.T) {
	var n *Notifier
	if err := n.NotifyMatch(context.Background(), 42, "Bea", 3); err == nil {
		t.Fatalf("expected an error from an uninitialized notifier")
	}
}
