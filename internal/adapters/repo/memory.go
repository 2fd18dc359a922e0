package repo

import (
	"context"
	"sync"

	"control-tower/internal/domain"
)

// Memory реализует domain.FeedbackRepo в памяти процесса.
// Данные живут до рестарта; записи сериализуются мьютексом,
// чтобы сохранить порядок поступления при конкурентных запросах.
type Memory struct {
	mu    sync.Mutex
	items []domain.FeedbackItem
}

// NewMemory создаёт пустое хранилище.
func NewMemory() *Memory {
	return &Memory{}
}

var _ domain.FeedbackRepo = (*Memory)(nil)

// Append добавляет отзыв в конец списка.
func (m *Memory) Append(ctx context.Context, item domain.FeedbackItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items = append(m.items, item)
	return nil
}

// List возвращает копию списка в порядке поступления.
func (m *Memory) List(ctx context.Context) ([]domain.FeedbackItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.FeedbackItem, len(m.items))
	copy(out, m.items)
	return out, nil
}
