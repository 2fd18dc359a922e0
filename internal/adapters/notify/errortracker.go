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

// ErrorTracker отправляет capture-message во внешний трекер ошибок.
type ErrorTracker struct {
	endpoint   string
	token      string
	httpClient *http.Client
}

// NewErrorTracker создаёт нотификатор трекера ошибок.
func NewErrorTracker(endpoint, token string, timeout time.Duration) *ErrorTracker {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &ErrorTracker{
		endpoint:   endpoint,
		token:      token,
		httpClient: &http.Client{Timeout: timeout},
	}
}

var _ domain.ChannelNotifier = (*ErrorTracker)(nil)

// SetHTTPClient подменяет HTTP клиент, используется в тестах.
func (e *ErrorTracker) SetHTTPClient(httpClient *http.Client) {
	if httpClient != nil {
		e.httpClient = httpClient
	}
}

// Channel возвращает имя канала.
func (e *ErrorTracker) Channel() domain.Channel {
	return domain.ChannelErrorTracker
}

// Send публикует событие как сообщение уровня warning/error.
func (e *ErrorTracker) Send(ctx context.Context, event domain.FeedbackEvent) error {
	level := "warning"
	if event.Escalation != nil && event.Escalation.Priority == domain.PriorityCritical {
		level = "error"
	}
	payload := map[string]any{
		"message": EventText(event),
		"level":   level,
		"tags": map[string]string{
			"service":  event.Service,
			"category": string(event.Analysis.Category),
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if e.token != "" {
		req.Header.Set("Authorization", "Bearer "+e.token)
	}

	start := time.Now()
	resp, err := e.httpClient.Do(req)
	metrics.ObserveNetworkRequest("error_tracker", "capture_message", event.Service, start, err)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("error tracker status %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}
	return nil
}
