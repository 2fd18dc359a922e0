package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"control-tower/internal/domain"
	"control-tower/internal/infra/metrics"
)

// ChatWebhook отправляет событие HTTP POST-ом на вебхук чата
// с телом {"text": "..."}.
type ChatWebhook struct {
	url        string
	httpClient *http.Client
}

// NewChatWebhook создаёт чат-нотификатор.
func NewChatWebhook(url string, timeout time.Duration) *ChatWebhook {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &ChatWebhook{url: url, httpClient: &http.Client{Timeout: timeout}}
}

var _ domain.ChannelNotifier = (*ChatWebhook)(nil)

// SetHTTPClient подменяет HTTP клиент, используется в тестах.
func (c *ChatWebhook) SetHTTPClient(httpClient *http.Client) {
	if httpClient != nil {
		c.httpClient = httpClient
	}
}

// Channel возвращает имя канала.
func (c *ChatWebhook) Channel() domain.Channel {
	return domain.ChannelChat
}

// Send доставляет событие. Ошибкой считается любой не-2xx статус
// или сетевая ошибка.
func (c *ChatWebhook) Send(ctx context.Context, event domain.FeedbackEvent) error {
	body, err := json.Marshal(map[string]string{"text": EventText(event)})
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	metrics.ObserveNetworkRequest("chat_webhook", "send", event.Service, start, err)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("chat webhook status %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}
	return nil
}
