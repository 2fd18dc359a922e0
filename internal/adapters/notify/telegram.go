package notify

import (
	"context"
	"fmt"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"control-tower/internal/domain"
	"control-tower/internal/infra/metrics"
)

// TelegramChat доставляет событие в Telegram-чат операторов.
// Альтернативный транспорт канала chat для инсталляций без вебхука.
type TelegramChat struct {
	bot    *tgbotapi.BotAPI
	chatID int64
}

// NewTelegramChat создаёт Telegram-нотификатор.
func NewTelegramChat(token string, chatID int64) (*TelegramChat, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("инициализация бота: %w", err)
	}
	return &TelegramChat{bot: bot, chatID: chatID}, nil
}

var _ domain.ChannelNotifier = (*TelegramChat)(nil)

// Channel возвращает имя канала.
func (t *TelegramChat) Channel() domain.Channel {
	return domain.ChannelChat
}

// Send отправляет сообщение в настроенный чат.
func (t *TelegramChat) Send(ctx context.Context, event domain.FeedbackEvent) error {
	msg := tgbotapi.NewMessage(t.chatID, EventText(event))
	start := time.Now()
	_, err := t.bot.Send(msg)
	metrics.ObserveNetworkRequest("telegram", "send_message", event.Service, start, err)
	if err != nil {
		return fmt.Errorf("отправка в telegram: %w", err)
	}
	return nil
}
