package repo

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"control-tower/internal/domain"
	"control-tower/internal/infra/metrics"
)

// Postgres реализует domain.FeedbackRepo на основе pgxpool.
// Монотонный seq сохраняет порядок поступления.
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres создаёт адаптер БД.
func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

var _ domain.FeedbackRepo = (*Postgres)(nil)

const feedbackSchema = `
CREATE TABLE IF NOT EXISTS feedback (
    seq BIGSERIAL PRIMARY KEY,
    id TEXT NOT NULL,
    service TEXT NOT NULL,
    message TEXT NOT NULL,
    submitter TEXT NOT NULL DEFAULT '',
    sentiment_score DOUBLE PRECISION NOT NULL,
    sentiment_comparative DOUBLE PRECISION NOT NULL,
    category TEXT NOT NULL,
    received_at TIMESTAMPTZ NOT NULL
)`

func (p *Postgres) connCtxWithParent(ctx context.Context) (context.Context, context.CancelFunc) {
	if ctx == nil {
		return context.WithTimeout(context.Background(), 5*time.Second)
	}
	if _, ok := ctx.Deadline(); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, 5*time.Second)
}

// EnsureSchema создаёт таблицу отзывов, если её ещё нет.
func (p *Postgres) EnsureSchema(ctx context.Context) error {
	ctx, cancel := p.connCtxWithParent(ctx)
	defer cancel()
	if _, err := p.pool.Exec(ctx, feedbackSchema); err != nil {
		return fmt.Errorf("создание схемы: %w", err)
	}
	return nil
}

// Append добавляет отзыв.
func (p *Postgres) Append(ctx context.Context, item domain.FeedbackItem) error {
	ctx, cancel := p.connCtxWithParent(ctx)
	defer cancel()

	start := time.Now()
	_, err := p.pool.Exec(ctx, `
INSERT INTO feedback (id, service, message, submitter, sentiment_score, sentiment_comparative, category, received_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
`, item.ID, item.Service, item.Message, item.Submitter,
		item.Analysis.SentimentScore, item.Analysis.SentimentComparative,
		string(item.Analysis.Category), item.ReceivedAt)
	metrics.ObserveNetworkRequest("postgres", "feedback_insert", "feedback", start, err)
	if err != nil {
		return fmt.Errorf("сохранение отзыва: %w", err)
	}
	return nil
}

// List возвращает все отзывы в порядке поступления.
func (p *Postgres) List(ctx context.Context) ([]domain.FeedbackItem, error) {
	ctx, cancel := p.connCtxWithParent(ctx)
	defer cancel()

	start := time.Now()
	rows, err := p.pool.Query(ctx, `
SELECT id, service, message, submitter, sentiment_score, sentiment_comparative, category, received_at
FROM feedback
ORDER BY seq
`)
	metrics.ObserveNetworkRequest("postgres", "feedback_list", "feedback", start, err)
	if err != nil {
		return nil, fmt.Errorf("чтение отзывов: %w", err)
	}
	defer rows.Close()

	var items []domain.FeedbackItem
	for rows.Next() {
		var item domain.FeedbackItem
		var category string
		if err := rows.Scan(&item.ID, &item.Service, &item.Message, &item.Submitter,
			&item.Analysis.SentimentScore, &item.Analysis.SentimentComparative,
			&category, &item.ReceivedAt); err != nil {
			return nil, fmt.Errorf("чтение строки: %w", err)
		}
		item.Analysis.Category = domain.Category(category)
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("обход строк: %w", err)
	}
	return items, nil
}
