package intake

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"control-tower/internal/domain"
)

type stubRepo struct {
	items     []domain.FeedbackItem
	appendErr error
}

func (s *stubRepo) Append(ctx context.Context, item domain.FeedbackItem) error {
	if s.appendErr != nil {
		return s.appendErr
	}
	s.items = append(s.items, item)
	return nil
}

func (s *stubRepo) List(ctx context.Context) ([]domain.FeedbackItem, error) {
	return s.items, nil
}

type stubAnalyzer struct {
	result domain.AnalysisResult
}

func (s *stubAnalyzer) Analyze(message string) domain.AnalysisResult { return s.result }

type stubDispatcher struct {
	calls    int
	channels []domain.Channel
	results  []domain.ChannelResult
}

func (s *stubDispatcher) Notify(ctx context.Context, event domain.FeedbackEvent, channels []domain.Channel) []domain.ChannelResult {
	s.calls++
	s.channels = channels
	if s.results != nil {
		return s.results
	}
	out := make([]domain.ChannelResult, len(channels))
	for i, ch := range channels {
		out[i].Channel = ch
	}
	return out
}

func newTestService(repo *stubRepo, dispatcher *stubDispatcher, result domain.AnalysisResult) *Service {
	return NewService(repo, &stubAnalyzer{result: result}, dispatcher, nil, zerolog.Nop())
}

func TestSubmitValidation(t *testing.T) {
	repo := &stubRepo{}
	dispatcher := &stubDispatcher{}
	s := newTestService(repo, dispatcher, domain.AnalysisResult{})

	if _, err := s.Submit(context.Background(), "", "текст", ""); !errors.Is(err, ErrServiceRequired) {
		t.Fatalf("ожидали ErrServiceRequired, получили %v", err)
	}
	if _, err := s.Submit(context.Background(), "Support", "   ", ""); !errors.Is(err, ErrMessageRequired) {
		t.Fatalf("ожидали ErrMessageRequired, получили %v", err)
	}
	if len(repo.items) != 0 {
		t.Fatalf("невалидный отзыв не должен попадать в хранилище")
	}
	if dispatcher.calls != 0 {
		t.Fatalf("невалидный отзыв не должен уведомлять каналы")
	}
}

func TestSubmitStoresAndNotifies(t *testing.T) {
	repo := &stubRepo{}
	dispatcher := &stubDispatcher{}
	analysis := domain.AnalysisResult{Category: domain.CategoryBugReport, SentimentScore: -2}
	s := newTestService(repo, dispatcher, analysis)

	got, err := s.Submit(context.Background(), "Support", "This is broken, please fix the bug", "user@example.com")
	if err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	if got.Category != domain.CategoryBugReport {
		t.Fatalf("ожидали категорию bug_report, получили %s", got.Category)
	}
	if len(repo.items) != 1 {
		t.Fatalf("отзыв должен быть сохранён")
	}
	item := repo.items[0]
	if item.ID == "" || item.ReceivedAt.IsZero() {
		t.Fatalf("у отзыва должны быть ID и время приёма")
	}
	if dispatcher.calls != 1 {
		t.Fatalf("базовое уведомление должно быть отправлено один раз")
	}
	if len(dispatcher.channels) != len(DefaultBaseChannels) {
		t.Fatalf("ожидали базовый набор каналов, получили %v", dispatcher.channels)
	}
}

func TestSubmitAcceptedDespiteNotifyFailure(t *testing.T) {
	repo := &stubRepo{}
	dispatcher := &stubDispatcher{results: []domain.ChannelResult{
		{Channel: domain.ChannelChat, Err: errors.New("webhook недоступен")},
	}}
	s := newTestService(repo, dispatcher, domain.AnalysisResult{Category: domain.CategoryGeneral})

	if _, err := s.Submit(context.Background(), "Payments", "просто отзыв", ""); err != nil {
		t.Fatalf("сбой уведомления не должен возвращаться отправителю: %v", err)
	}
	if len(repo.items) != 1 {
		t.Fatalf("отзыв должен остаться принятым")
	}
}

func TestSubmitAppendFailure(t *testing.T) {
	repo := &stubRepo{appendErr: errors.New("диск умер")}
	dispatcher := &stubDispatcher{}
	s := newTestService(repo, dispatcher, domain.AnalysisResult{})

	if _, err := s.Submit(context.Background(), "Support", "текст", ""); err == nil {
		t.Fatalf("ошибка хранилища должна возвращаться наверх")
	}
	if dispatcher.calls != 0 {
		t.Fatalf("несохранённый отзыв не должен уведомлять каналы")
	}
}

func TestStats(t *testing.T) {
	repo := &stubRepo{items: []domain.FeedbackItem{
		{Analysis: domain.AnalysisResult{Category: domain.CategoryBugReport, SentimentScore: -4}},
		{Analysis: domain.AnalysisResult{Category: domain.CategoryBugReport, SentimentScore: -2}},
		{Analysis: domain.AnalysisResult{Category: domain.CategoryPraise, SentimentScore: 3}},
	}}
	s := newTestService(repo, &stubDispatcher{}, domain.AnalysisResult{})

	stats, err := s.Stats(context.Background())
	if err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	if stats.Total != 3 {
		t.Fatalf("ожидали 3 отзыва, получили %d", stats.Total)
	}
	if stats.ByCategory[domain.CategoryBugReport] != 2 {
		t.Fatalf("ожидали 2 bug_report, получили %d", stats.ByCategory[domain.CategoryBugReport])
	}
	if stats.AverageSentiment != -1 {
		t.Fatalf("ожидали среднюю тональность -1, получили %v", stats.AverageSentiment)
	}
}
