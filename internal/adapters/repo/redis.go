package repo

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"control-tower/internal/domain"
	"control-tower/internal/infra/metrics"
)

// Redis реализует domain.FeedbackRepo поверх Redis list.
// RPUSH/LRANGE сохраняют порядок поступления между рестартами сервиса.
type Redis struct {
	client *redis.Client
	key    string
}

// NewRedis создаёт хранилище по указанному ключу.
func NewRedis(client *redis.Client, key string) *Redis {
	return &Redis{client: client, key: key}
}

var _ domain.FeedbackRepo = (*Redis)(nil)

// Append добавляет отзыв в конец списка.
func (r *Redis) Append(ctx context.Context, item domain.FeedbackItem) error {
	payload, err := json.Marshal(item)
	if err != nil {
		return fmt.Errorf("marshal item: %w", err)
	}
	start := time.Now()
	err = r.client.RPush(ctx, r.key, payload).Err()
	metrics.ObserveNetworkRequest("redis", "feedback_append", r.key, start, err)
	if err != nil {
		return fmt.Errorf("push item: %w", err)
	}
	return nil
}

// List возвращает все отзывы в порядке поступления.
func (r *Redis) List(ctx context.Context) ([]domain.FeedbackItem, error) {
	start := time.Now()
	raw, err := r.client.LRange(ctx, r.key, 0, -1).Result()
	metrics.ObserveNetworkRequest("redis", "feedback_list", r.key, start, err)
	if err != nil {
		return nil, fmt.Errorf("read list: %w", err)
	}
	items := make([]domain.FeedbackItem, 0, len(raw))
	for _, entry := range raw {
		var item domain.FeedbackItem
		if err := json.Unmarshal([]byte(entry), &item); err != nil {
			return nil, fmt.Errorf("decode item: %w", err)
		}
		items = append(items, item)
	}
	return items, nil
}
