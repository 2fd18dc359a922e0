package notify

import (
	"context"
	"fmt"
	"mime"
	"net/smtp"
	"strings"
	"time"

	"control-tower/internal/domain"
	"control-tower/internal/infra/metrics"
)

const emailMaxAttempts = 3

// SMTPEmail отправляет письмо ответственной команде через SMTP.
// Единственный канал с повторными попытками: до трёх отправок
// с линейно растущей паузой (номер попытки × retryDelay).
type SMTPEmail struct {
	host       string
	port       int
	username   string
	password   string
	from       string
	to         []string
	retryDelay time.Duration
	sendFn     func(addr string, auth smtp.Auth, from string, to []string, msg []byte) error
}

// SMTPConfig — параметры SMTP-канала.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	To       []string
}

// NewSMTPEmail создаёт email-нотификатор.
func NewSMTPEmail(cfg SMTPConfig) *SMTPEmail {
	port := cfg.Port
	if port <= 0 {
		port = 587
	}
	return &SMTPEmail{
		host:       cfg.Host,
		port:       port,
		username:   cfg.Username,
		password:   cfg.Password,
		from:       cfg.From,
		to:         cfg.To,
		retryDelay: time.Second,
		sendFn:     smtp.SendMail,
	}
}

var _ domain.ChannelNotifier = (*SMTPEmail)(nil)

// SetSendFunc подменяет функцию отправки, используется в тестах.
func (e *SMTPEmail) SetSendFunc(fn func(addr string, auth smtp.Auth, from string, to []string, msg []byte) error) {
	if fn != nil {
		e.sendFn = fn
	}
}

// SetRetryDelay задаёт базовую паузу между попытками.
func (e *SMTPEmail) SetRetryDelay(d time.Duration) {
	e.retryDelay = d
}

// Channel возвращает имя канала.
func (e *SMTPEmail) Channel() domain.Channel {
	return domain.ChannelEmail
}

// Send отправляет письмо, повторяя до трёх раз. Между попытками пауза
// растёт линейно; ожидание прерывается отменой контекста.
func (e *SMTPEmail) Send(ctx context.Context, event domain.FeedbackEvent) error {
	if len(e.to) == 0 {
		return fmt.Errorf("список получателей пуст")
	}
	msg := e.buildMessage(event)
	addr := fmt.Sprintf("%s:%d", e.host, e.port)
	var auth smtp.Auth
	if e.username != "" {
		auth = smtp.PlainAuth("", e.username, e.password, e.host)
	}

	var lastErr error
	for attempt := 1; attempt <= emailMaxAttempts; attempt++ {
		start := time.Now()
		err := e.sendFn(addr, auth, e.from, e.to, msg)
		metrics.ObserveNetworkRequest("smtp", "send_mail", event.Service, start, err)
		if err == nil {
			return nil
		}
		lastErr = err
		if attempt == emailMaxAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(attempt) * e.retryDelay):
		}
	}
	return fmt.Errorf("после %d попыток: %w", emailMaxAttempts, lastErr)
}

func (e *SMTPEmail) buildMessage(event domain.FeedbackEvent) []byte {
	subject := fmt.Sprintf("Новый отзыв: %s (%s)", event.Service, event.Analysis.Category)
	if event.Escalation != nil {
		subject = fmt.Sprintf("Эскалация %s: %s", event.Escalation.Priority, event.Service)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", e.from)
	fmt.Fprintf(&b, "To: %s\r\n", strings.Join(e.to, ", "))
	fmt.Fprintf(&b, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", subject))
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=utf-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(EventBody(event))
	return []byte(b.String())
}
