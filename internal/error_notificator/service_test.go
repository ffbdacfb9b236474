package error_notificator

import (
	"context"
	"errors"
	"strings"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

type fakeSender struct {
	sent []tgbotapi.Chattable
	err  error
}

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.sent = append(f.sent, c)
	return tgbotapi.Message{}, f.err
}

func TestTelegramInfraSendsToAdminChat(t *testing.T) {
	sender := &fakeSender{}
	svc := NewService(NewTelegramInfraWithSender(sender, 42))

	if err := svc.Notify(context.Background(), "pipeline", errors.New("boom"), "stage=translation"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sender.sent) != 1 {
		t.Fatalf("expected 1 message, got %d", len(sender.sent))
	}
	msg, ok := sender.sent[0].(tgbotapi.MessageConfig)
	if !ok {
		t.Fatalf("unexpected chattable %T", sender.sent[0])
	}
	if msg.ChatID != 42 || !strings.Contains(msg.Text, "boom") || !strings.Contains(msg.Text, "stage=translation") {
		t.Fatalf("unexpected message %#v", msg)
	}
}

func TestTelegramInfraReturnsSendError(t *testing.T) {
	sendErr := errors.New("telegram down")
	svc := NewService(NewTelegramInfraWithSender(&fakeSender{err: sendErr}, 1))

	if err := svc.Notify(context.Background(), "history", errors.New("db"), ""); !errors.Is(err, sendErr) {
		t.Fatalf("expected send error, got %v", err)
	}
}

func TestServiceWithoutInfraLogs(t *testing.T) {
	if err := NewService(nil).Notify(context.Background(), "x", errors.New("y"), "z"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
