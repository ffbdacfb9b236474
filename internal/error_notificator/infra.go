package error_notificator

import (
	"context"
	"fmt"
	"log"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Sender is the part of tgbotapi.BotAPI the notifier needs.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// TelegramInfra sends failure reports to an admin chat.
type TelegramInfra struct {
	bot    Sender
	chatID int64
}

func NewTelegramInfra(token string, chatID int64) (*TelegramInfra, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram alerts: %w", err)
	}
	return &TelegramInfra{bot: bot, chatID: chatID}, nil
}

func NewTelegramInfraWithSender(bot Sender, chatID int64) *TelegramInfra {
	return &TelegramInfra{bot: bot, chatID: chatID}
}

func (i *TelegramInfra) Notify(ctx context.Context, source string, err error, details string) error {
	text := fmt.Sprintf(
		"❗ Ошибка (%s)\n\nОшибка: %v\n\nДетали: %s",
		source,
		err,
		details,
	)

	if _, sendErr := i.bot.Send(tgbotapi.NewMessage(i.chatID, text)); sendErr != nil {
		log.Printf("[error_notificator] send fail: %v", sendErr)
		return sendErr
	}
	return nil
}

// LogInfra only writes the report to the process log.
type LogInfra struct{}

func (LogInfra) Notify(ctx context.Context, source string, err error, details string) error {
	log.Printf("[error_notificator] source=%s err=%v details=%s", source, err, details)
	return nil
}
