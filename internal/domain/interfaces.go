package domain

import "context"

// Analyzer вычисляет тональность и категорию текста отзыва.
// Анализ не имеет режима отказа: для любого текста возвращается результат.
type Analyzer interface {
	Analyze(message string) AnalysisResult
}

// FeedbackRepo хранит принятые отзывы в порядке поступления.
// Дубликаты допустимы и сохраняются как есть.
type FeedbackRepo interface {
	Append(ctx context.Context, item FeedbackItem) error
	List(ctx context.Context) ([]FeedbackItem, error)
}

// ChannelNotifier доставляет событие в один внешний канал.
type ChannelNotifier interface {
	Channel() Channel
	Send(ctx context.Context, event FeedbackEvent) error
}

// Dispatcher рассылает событие по запрошенным каналам. Ошибка одного
// канала не прерывает попытки доставки в остальные и не возвращается
// наверх: все исходы собираются в срез результатов.
type Dispatcher interface {
	Notify(ctx context.Context, event FeedbackEvent, channels []Channel) []ChannelResult
}
