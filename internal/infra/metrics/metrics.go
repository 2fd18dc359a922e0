package metrics

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

var (
	FeedbackAccepted = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "feedback_accepted_total",
		Help: "Принятые отзывы по категориям",
	}, []string{"category"})

	FeedbackRejected = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "feedback_rejected_total",
		Help: "Отзывы, отклонённые валидацией",
	})

	EscalationDecisions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "escalation_decisions_total",
		Help: "Решения об эскалации по приоритету и признаку одобрения",
	}, []string{"priority", "approved"})

	ChannelDeliveries = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "channel_deliveries_total",
		Help: "Попытки доставки уведомлений по каналам",
	}, []string{"channel", "status"})

	ChannelDeliveryDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "channel_delivery_duration_seconds",
		Help:    "Длительность доставки уведомления в канал",
		Buckets: prometheus.DefBuckets,
	}, []string{"channel"})

	NetworkRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "network_request_duration_seconds",
		Help:    "Длительность сетевых запросов",
		Buckets: prometheus.DefBuckets,
	}, []string{"component", "operation", "target", "status"})

	NetworkRequestTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "network_request_total",
		Help: "Количество сетевых запросов",
	}, []string{"component", "operation", "target", "status"})
)

// MustRegister регистрирует метрики.
func MustRegister(registerer prometheus.Registerer) {
	registerer.MustRegister(
		FeedbackAccepted,
		FeedbackRejected,
		EscalationDecisions,
		ChannelDeliveries,
		ChannelDeliveryDuration,
		NetworkRequestDuration,
		NetworkRequestTotal,
	)
}

// StartServer запускает HTTP сервер с эндпоинтом /metrics.
func StartServer(ctx context.Context, logger zerolog.Logger, addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
	}

	shutdownCtx, cancel := context.WithCancel(context.Background())
	go func() {
		select {
		case <-ctx.Done():
		case <-shutdownCtx.Done():
		}
		shutdownTimeout, timeoutCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer timeoutCancel()
		if err := srv.Shutdown(shutdownTimeout); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("metrics: graceful shutdown failed")
		}
	}()

	go func() {
		logger.Info().Str("addr", addr).Msg("metrics: server started")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("metrics: server stopped")
		}
		cancel()
	}()
}

// ObserveNetworkRequest записывает длительность и статус сетевого запроса.
func ObserveNetworkRequest(component, operation, target string, start time.Time, err error) {
	if component == "" {
		component = "unknown"
	}
	if operation == "" {
		operation = "unknown"
	}
	if target == "" {
		target = "unknown"
	}
	status := "success"
	if err != nil {
		status = "error"
	}
	duration := time.Since(start).Seconds()
	NetworkRequestDuration.WithLabelValues(component, operation, target, status).Observe(duration)
	NetworkRequestTotal.WithLabelValues(component, operation, target, status).Inc()
}

// ObserveChannelDelivery записывает попытку доставки уведомления в канал.
func ObserveChannelDelivery(channel string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	ChannelDeliveries.WithLabelValues(channel, status).Inc()
	ChannelDeliveryDuration.WithLabelValues(channel).Observe(time.Since(start).Seconds())
}

// IncFeedbackAccepted увеличивает счётчик принятых отзывов.
func IncFeedbackAccepted(category string) {
	FeedbackAccepted.WithLabelValues(category).Inc()
}

// IncFeedbackRejected увеличивает счётчик отклонённых валидацией отзывов.
func IncFeedbackRejected() {
	FeedbackRejected.Inc()
}

// IncEscalationDecision фиксирует принятое решение об эскалации.
func IncEscalationDecision(priority string, approved bool) {
	EscalationDecisions.WithLabelValues(priority, strconv.FormatBool(approved)).Inc()
}
