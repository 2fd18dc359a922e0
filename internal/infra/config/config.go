package config

import (
	"log"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// AppConfig описывает конфигурацию сервиса.
type AppConfig struct {
	AppEnv      string `envconfig:"APP_ENV" default:"dev"`
	Port        int    `envconfig:"PORT" default:"8080"`
	MetricsAddr string `envconfig:"METRICS_ADDR" default:":9090"`

	// OutboundTimeout ограничивает каждый исходящий сетевой вызов,
	// чтобы медленный сторонний канал не подвешивал обработчик.
	OutboundTimeout time.Duration `envconfig:"OUTBOUND_TIMEOUT" default:"10s"`

	Store struct {
		PGDSN     string `envconfig:"PG_DSN"`
		RedisAddr string `envconfig:"REDIS_ADDR"`
		RedisKey  string `envconfig:"REDIS_FEEDBACK_KEY" default:"feedback_items"`
	} `envconfig:""`

	Chat struct {
		WebhookURL string `envconfig:"CHAT_WEBHOOK_URL"`
	} `envconfig:""`

	Telegram struct {
		Token  string `envconfig:"TG_BOT_TOKEN"`
		ChatID int64  `envconfig:"TG_ALERT_CHAT_ID"`
	} `envconfig:""`

	SMTP struct {
		Host     string   `envconfig:"SMTP_HOST"`
		Port     int      `envconfig:"SMTP_PORT" default:"587"`
		Username string   `envconfig:"SMTP_USERNAME"`
		Password string   `envconfig:"SMTP_PASSWORD"`
		From     string   `envconfig:"SMTP_FROM"`
		To       []string `envconfig:"SMTP_TO"`
	} `envconfig:""`

	Ticket struct {
		BaseURL string `envconfig:"TICKET_BASE_URL" default:"https://api.trello.com"`
		Key     string `envconfig:"TICKET_API_KEY"`
		Token   string `envconfig:"TICKET_API_TOKEN"`
		ListID  string `envconfig:"TICKET_LIST_ID"`
	} `envconfig:""`

	ErrorTracker struct {
		Endpoint string `envconfig:"ERROR_TRACKER_ENDPOINT"`
		Token    string `envconfig:"ERROR_TRACKER_TOKEN"`
	} `envconfig:""`

	// BaseChannels — каналы базового уведомления при каждом принятом отзыве,
	// независимо от решения движка эскалаций.
	BaseChannels []string `envconfig:"BASE_NOTIFY_CHANNELS" default:"chat"`
}

// Load загружает конфиг из окружения.
func Load() AppConfig {
	var cfg AppConfig
	if err := envconfig.Process("", &cfg); err != nil {
		log.Fatalf("не удалось загрузить конфиг: %v", err)
	}
	return cfg
}
