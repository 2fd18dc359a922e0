package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"control-tower/internal/domain"
	"control-tower/internal/infra/metrics"
)

// TicketClient создаёт карточку в тикет-системе (Trello-совместимый REST).
type TicketClient struct {
	baseURL    string
	key        string
	token      string
	listID     string
	httpClient *http.Client
}

// TicketConfig — параметры тикет-системы.
type TicketConfig struct {
	BaseURL string
	Key     string
	Token   string
	ListID  string
	Timeout time.Duration
}

// NewTicketClient создаёт тикет-нотификатор.
func NewTicketClient(cfg TicketConfig) *TicketClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "https://api.trello.com"
	}
	return &TicketClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		key:        cfg.Key,
		token:      cfg.Token,
		listID:     cfg.ListID,
		httpClient: &http.Client{Timeout: timeout},
	}
}

var _ domain.ChannelNotifier = (*TicketClient)(nil)

// SetHTTPClient подменяет HTTP клиент, используется в тестах.
func (t *TicketClient) SetHTTPClient(httpClient *http.Client) {
	if httpClient != nil {
		t.httpClient = httpClient
	}
}

// Channel возвращает имя канала.
func (t *TicketClient) Channel() domain.Channel {
	return domain.ChannelTicket
}

// Send создаёт карточку с названием и описанием по событию.
func (t *TicketClient) Send(ctx context.Context, event domain.FeedbackEvent) error {
	payload := map[string]string{
		"name":   EventText(event),
		"desc":   EventBody(event),
		"idList": t.listID,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	endpoint := fmt.Sprintf("%s/1/cards?key=%s&token=%s",
		t.baseURL, url.QueryEscape(t.key), url.QueryEscape(t.token))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := t.httpClient.Do(req)
	metrics.ObserveNetworkRequest("ticket", "create_card", event.Service, start, err)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("ticket status %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}
	return nil
}
