package intake

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"control-tower/internal/domain"
	"control-tower/internal/infra/metrics"
)

var (
	// ErrServiceRequired возвращается при пустом имени сервиса.
	ErrServiceRequired = errors.New("не указан сервис")
	// ErrMessageRequired возвращается при пустом тексте отзыва.
	ErrMessageRequired = errors.New("пустое сообщение отзыва")
)

// DefaultBaseChannels — базовые каналы уведомления о каждом принятом
// отзыве, независимо от решения движка эскалаций.
var DefaultBaseChannels = []domain.Channel{domain.ChannelChat}

// Service реализует приём отзывов: валидация, анализ, сохранение
// и базовое уведомление.
type Service struct {
	repo         domain.FeedbackRepo
	analyzer     domain.Analyzer
	dispatcher   domain.Dispatcher
	baseChannels []domain.Channel
	log          zerolog.Logger
}

// NewService создаёт сервис приёма отзывов. При пустом baseChannels
// используется DefaultBaseChannels.
func NewService(repo domain.FeedbackRepo, analyzer domain.Analyzer, dispatcher domain.Dispatcher, baseChannels []domain.Channel, logger zerolog.Logger) *Service {
	if len(baseChannels) == 0 {
		baseChannels = DefaultBaseChannels
	}
	return &Service{repo: repo, analyzer: analyzer, dispatcher: dispatcher, baseChannels: baseChannels, log: logger}
}

// Submit валидирует и принимает отзыв. Отзыв считается принятым сразу
// после сохранения; сбой базового уведомления только логируется и не
// возвращается отправителю.
func (s *Service) Submit(ctx context.Context, service, message, submitter string) (domain.AnalysisResult, error) {
	service = strings.TrimSpace(service)
	message = strings.TrimSpace(message)
	submitter = strings.TrimSpace(submitter)
	if service == "" {
		metrics.IncFeedbackRejected()
		return domain.AnalysisResult{}, ErrServiceRequired
	}
	if message == "" {
		metrics.IncFeedbackRejected()
		return domain.AnalysisResult{}, ErrMessageRequired
	}

	analysis := s.analyzer.Analyze(message)
	item := domain.FeedbackItem{
		ID:         uuid.NewString(),
		Service:    service,
		Message:    message,
		Submitter:  submitter,
		Analysis:   analysis,
		ReceivedAt: time.Now().UTC(),
	}
	if err := s.repo.Append(ctx, item); err != nil {
		return domain.AnalysisResult{}, fmt.Errorf("сохранение отзыва: %w", err)
	}
	metrics.IncFeedbackAccepted(string(analysis.Category))

	event := domain.FeedbackEvent{
		Service:   service,
		Message:   message,
		Submitter: submitter,
		Analysis:  analysis,
	}
	results := s.dispatcher.Notify(ctx, event, s.baseChannels)
	if failed := domain.FailedChannels(results); len(failed) > 0 {
		s.log.Warn().
			Str("feedback_id", item.ID).
			Strs("failed_channels", failed).
			Msg("intake: базовое уведомление доставлено не во все каналы")
	}
	return analysis, nil
}

// List возвращает принятые отзывы в порядке поступления.
func (s *Service) List(ctx context.Context) ([]domain.FeedbackItem, error) {
	return s.repo.List(ctx)
}

// Stats — агрегат по принятым отзывам для дашборда.
type Stats struct {
	Total            int                     `json:"total"`
	ByCategory       map[domain.Category]int `json:"by_category"`
	AverageSentiment float64                 `json:"average_sentiment"`
}

// Stats считает сводку по всем принятым отзывам.
func (s *Service) Stats(ctx context.Context) (Stats, error) {
	items, err := s.repo.List(ctx)
	if err != nil {
		return Stats{}, fmt.Errorf("чтение отзывов: %w", err)
	}
	stats := Stats{
		Total:      len(items),
		ByCategory: make(map[domain.Category]int),
	}
	var sum float64
	for _, item := range items {
		stats.ByCategory[item.Analysis.Category]++
		sum += item.Analysis.SentimentScore
	}
	if len(items) > 0 {
		stats.AverageSentiment = sum / float64(len(items))
	}
	return stats, nil
}
