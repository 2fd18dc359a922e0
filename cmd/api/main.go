package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"control-tower/internal/adapters/analyzer"
	"control-tower/internal/adapters/notify"
	"control-tower/internal/adapters/repo"
	"control-tower/internal/domain"
	"control-tower/internal/infra/config"
	"control-tower/internal/infra/db"
	httpinfra "control-tower/internal/infra/http"
	loginfra "control-tower/internal/infra/log"
	"control-tower/internal/infra/metrics"
	escalationusecase "control-tower/internal/usecase/escalation"
	intakeusecase "control-tower/internal/usecase/intake"
)

func main() {
	cfg := config.Load()
	log.Logger = loginfra.NewLogger(cfg.AppEnv)

	metrics.MustRegister(prometheus.DefaultRegisterer)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	feedbackRepo := buildRepo(ctx, cfg)
	dispatcher := notify.NewFanOut(log.With().Str("component", "dispatcher").Logger(), buildNotifiers(cfg)...)
	log.Info().Strs("channels", channelNames(dispatcher.Configured())).Msg("api: настроенные каналы уведомлений")

	intakeSvc := intakeusecase.NewService(
		feedbackRepo,
		analyzer.NewLexicon(),
		dispatcher,
		baseChannels(cfg),
		log.With().Str("component", "intake").Logger(),
	)
	escalationSvc := escalationusecase.NewService(dispatcher, log.With().Str("component", "escalation").Logger())

	srv := httpinfra.NewServer(log.With().Str("component", "http").Logger())
	r := srv.Router

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		httpinfra.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Post("/api/v1/feedback", func(w http.ResponseWriter, r *http.Request) {
		defer r.Body.Close()
		var req submitFeedbackRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpinfra.WriteError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		analysis, err := intakeSvc.Submit(r.Context(), req.Service, req.Message, req.Submitter)
		if err != nil {
			if errors.Is(err, intakeusecase.ErrServiceRequired) || errors.Is(err, intakeusecase.ErrMessageRequired) {
				httpinfra.WriteError(w, http.StatusBadRequest, err.Error())
				return
			}
			log.Error().Err(err).Msg("api: приём отзыва")
			httpinfra.WriteError(w, http.StatusInternalServerError, "failed to accept feedback")
			return
		}
		httpinfra.WriteJSON(w, http.StatusAccepted, map[string]any{
			"accepted": true,
			"analysis": analysis,
		})
	})

	r.Get("/api/v1/feedback", func(w http.ResponseWriter, r *http.Request) {
		items, err := intakeSvc.List(r.Context())
		if err != nil {
			log.Error().Err(err).Msg("api: чтение отзывов")
			httpinfra.WriteError(w, http.StatusInternalServerError, "failed to list feedback")
			return
		}
		if items == nil {
			items = []domain.FeedbackItem{}
		}
		httpinfra.WriteJSON(w, http.StatusOK, map[string]any{"items": items})
	})

	r.Get("/api/v1/feedback/stats", func(w http.ResponseWriter, r *http.Request) {
		stats, err := intakeSvc.Stats(r.Context())
		if err != nil {
			log.Error().Err(err).Msg("api: сводка по отзывам")
			httpinfra.WriteError(w, http.StatusInternalServerError, "failed to build stats")
			return
		}
		httpinfra.WriteJSON(w, http.StatusOK, stats)
	})

	r.Post("/api/v1/escalate", func(w http.ResponseWriter, r *http.Request) {
		defer r.Body.Close()
		var req escalateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpinfra.WriteError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if req.Service == "" || req.Message == "" {
			httpinfra.WriteError(w, http.StatusBadRequest, "service and message are required")
			return
		}
		decision, results := escalationSvc.Escalate(r.Context(), domain.FeedbackEvent{
			Service:   req.Service,
			Message:   req.Message,
			Submitter: req.Submitter,
			Analysis:  req.Analysis,
		})
		failed := domain.FailedChannels(results)
		httpinfra.WriteJSON(w, http.StatusOK, map[string]any{
			"success":    len(failed) == 0,
			"errors":     failed,
			"escalation": decision,
		})
	})

	metrics.StartServer(ctx, log.With().Str("component", "metrics").Logger(), cfg.MetricsAddr)

	go func() {
		log.Info().Int("port", cfg.Port).Msg("api: старт")
		if err := srv.Start(cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("api: сервер остановлен")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("api: остановка")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
}

// buildRepo выбирает хранилище отзывов по конфигурации:
// Postgres, затем Redis, иначе память процесса.
func buildRepo(ctx context.Context, cfg config.AppConfig) domain.FeedbackRepo {
	if cfg.Store.PGDSN != "" {
		pool, err := db.Connect(cfg.Store.PGDSN)
		if err != nil {
			log.Fatal().Err(err).Msg("api: нет подключения к БД")
		}
		pg := repo.NewPostgres(pool)
		if err := pg.EnsureSchema(ctx); err != nil {
			log.Fatal().Err(err).Msg("api: схема БД")
		}
		return pg
	}
	if cfg.Store.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.Store.RedisAddr})
		return repo.NewRedis(client, cfg.Store.RedisKey)
	}
	log.Warn().Msg("api: хранилище в памяти, отзывы не переживут рестарт")
	return repo.NewMemory()
}

// buildNotifiers собирает каналы по заполненным секциям конфига.
// Канал chat доставляется вебхуком, а без него — Telegram-ботом.
func buildNotifiers(cfg config.AppConfig) []domain.ChannelNotifier {
	var notifiers []domain.ChannelNotifier
	switch {
	case cfg.Chat.WebhookURL != "":
		notifiers = append(notifiers, notify.NewChatWebhook(cfg.Chat.WebhookURL, cfg.OutboundTimeout))
	case cfg.Telegram.Token != "" && cfg.Telegram.ChatID != 0:
		tg, err := notify.NewTelegramChat(cfg.Telegram.Token, cfg.Telegram.ChatID)
		if err != nil {
			log.Fatal().Err(err).Msg("api: telegram канал")
		}
		notifiers = append(notifiers, tg)
	}
	if cfg.SMTP.Host != "" {
		notifiers = append(notifiers, notify.NewSMTPEmail(notify.SMTPConfig{
			Host:     cfg.SMTP.Host,
			Port:     cfg.SMTP.Port,
			Username: cfg.SMTP.Username,
			Password: cfg.SMTP.Password,
			From:     cfg.SMTP.From,
			To:       cfg.SMTP.To,
		}))
	}
	if cfg.Ticket.Key != "" && cfg.Ticket.Token != "" {
		notifiers = append(notifiers, notify.NewTicketClient(notify.TicketConfig{
			BaseURL: cfg.Ticket.BaseURL,
			Key:     cfg.Ticket.Key,
			Token:   cfg.Ticket.Token,
			ListID:  cfg.Ticket.ListID,
			Timeout: cfg.OutboundTimeout,
		}))
	}
	if cfg.ErrorTracker.Endpoint != "" {
		notifiers = append(notifiers, notify.NewErrorTracker(cfg.ErrorTracker.Endpoint, cfg.ErrorTracker.Token, cfg.OutboundTimeout))
	}
	return notifiers
}

func channelNames(channels []domain.Channel) []string {
	names := make([]string, 0, len(channels))
	for _, ch := range channels {
		names = append(names, string(ch))
	}
	return names
}

func baseChannels(cfg config.AppConfig) []domain.Channel {
	channels := make([]domain.Channel, 0, len(cfg.BaseChannels))
	for _, name := range cfg.BaseChannels {
		channels = append(channels, domain.Channel(name))
	}
	return channels
}

type submitFeedbackRequest struct {
	Service   string `json:"service"`
	Message   string `json:"message"`
	Submitter string `json:"submitter,omitempty"`
}

type escalateRequest struct {
	Service   string                `json:"service"`
	Message   string                `json:"message"`
	Submitter string                `json:"submitter,omitempty"`
	Analysis  domain.AnalysisResult `json:"analysis"`
}
