package repo

import (
	"context"
	"strconv"
	"sync"
	"testing"

	"control-tower/internal/domain"
)

func TestMemoryAppendKeepsOrderAndDuplicates(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	items := []domain.FeedbackItem{
		{ID: "1", Service: "Support", Message: "first"},
		{ID: "2", Service: "Payments", Message: "second"},
		{ID: "2", Service: "Payments", Message: "second"},
	}
	for _, item := range items {
		if err := m.Append(ctx, item); err != nil {
			t.Fatalf("не ожидали ошибку: %v", err)
		}
	}
	got, err := m.List(ctx)
	if err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("дубликаты должны сохраняться: ожидали 3, получили %d", len(got))
	}
	for i := range items {
		if got[i].ID != items[i].ID {
			t.Fatalf("нарушен порядок поступления на позиции %d", i)
		}
	}
}

func TestMemoryListReturnsCopy(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	_ = m.Append(ctx, domain.FeedbackItem{ID: "1", Message: "оригинал"})
	first, _ := m.List(ctx)
	first[0].Message = "испорчено"
	second, _ := m.List(ctx)
	if second[0].Message != "оригинал" {
		t.Fatalf("List должен возвращать копию, а не внутренний срез")
	}
}

func TestMemoryConcurrentAppends(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	const writers = 50
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = m.Append(ctx, domain.FeedbackItem{ID: strconv.Itoa(i)})
		}(i)
	}
	wg.Wait()
	got, err := m.List(ctx)
	if err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	if len(got) != writers {
		t.Fatalf("потеряны записи: ожидали %d, получили %d", writers, len(got))
	}
}
