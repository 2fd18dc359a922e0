package notify

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"control-tower/internal/domain"
	"control-tower/internal/infra/metrics"
)

// ErrChannelNotConfigured возвращается в результате для канала,
// у которого нет настроенного нотификатора.
var ErrChannelNotConfigured = errors.New("канал не настроен")

// FanOut реализует domain.Dispatcher: рассылает событие всем запрошенным
// каналам параллельно и собирает все результаты, не прерываясь на ошибках
// отдельных каналов.
type FanOut struct {
	notifiers map[domain.Channel]domain.ChannelNotifier
	log       zerolog.Logger
}

// NewFanOut создаёт диспетчер по списку нотификаторов.
func NewFanOut(logger zerolog.Logger, notifiers ...domain.ChannelNotifier) *FanOut {
	byChannel := make(map[domain.Channel]domain.ChannelNotifier, len(notifiers))
	for _, n := range notifiers {
		byChannel[n.Channel()] = n
	}
	return &FanOut{notifiers: byChannel, log: logger}
}

var _ domain.Dispatcher = (*FanOut)(nil)

// Configured возвращает каналы, для которых есть нотификатор.
func (d *FanOut) Configured() []domain.Channel {
	channels := make([]domain.Channel, 0, len(d.notifiers))
	for ch := range d.notifiers {
		channels = append(channels, ch)
	}
	return channels
}

// Notify доставляет событие в каждый из каналов независимо. Результаты
// возвращаются в порядке запрошенных каналов; порядок фактических
// доставок не определён.
func (d *FanOut) Notify(ctx context.Context, event domain.FeedbackEvent, channels []domain.Channel) []domain.ChannelResult {
	results := make([]domain.ChannelResult, len(channels))
	var wg sync.WaitGroup
	for i, ch := range channels {
		results[i].Channel = ch
		notifier, ok := d.notifiers[ch]
		if !ok {
			results[i].Err = fmt.Errorf("%s: %w", ch, ErrChannelNotConfigured)
			continue
		}
		wg.Add(1)
		go func(i int, notifier domain.ChannelNotifier) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					results[i].Err = fmt.Errorf("канал %s: паника: %v", results[i].Channel, r)
				}
			}()
			start := time.Now()
			err := notifier.Send(ctx, event)
			metrics.ObserveChannelDelivery(string(results[i].Channel), start, err)
			if err != nil {
				results[i].Err = fmt.Errorf("канал %s: %w", results[i].Channel, err)
				d.log.Error().Err(err).Str("channel", string(results[i].Channel)).Str("service", event.Service).Msg("notify: доставка не удалась")
			}
		}(i, notifier)
	}
	wg.Wait()
	return results
}
