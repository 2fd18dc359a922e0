package escalation

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"control-tower/internal/domain"
	"control-tower/internal/infra/metrics"
)

// Service принимает решения об эскалации отзывов и рассылает уведомления
// через диспетчер каналов.
type Service struct {
	dispatcher domain.Dispatcher
	log        zerolog.Logger
}

// NewService создаёт движок эскалаций.
func NewService(dispatcher domain.Dispatcher, logger zerolog.Logger) *Service {
	return &Service{dispatcher: dispatcher, log: logger}
}

// Decide строит решение об эскалации по таблице правил. Функция чистая:
// кроме метки времени решение полностью определяется парой
// (сервис, результат анализа).
func Decide(service string, analysis domain.AnalysisResult) domain.EscalationDecision {
	priority := domain.PriorityNormal
	switch {
	case analysis.Category == domain.CategoryBugReport || analysis.SentimentScore < -2:
		priority = domain.PriorityCritical
	case analysis.SentimentScore < 0:
		priority = domain.PriorityHigh
	case analysis.Category == domain.CategoryFeatureRequest:
		priority = domain.PriorityLow
	}

	slaHours := 72
	switch priority {
	case domain.PriorityCritical:
		slaHours = 24
	case domain.PriorityHigh:
		slaHours = 48
	}

	team := domain.TeamGeneral
	switch service {
	case "Payments", "Withdrawals":
		team = domain.TeamFinance
	case "Support":
		team = domain.TeamSupport
	case "Cybersecurity":
		team = domain.TeamSecurity
	}

	// Некритичные приоритеты ждут ручного одобрения; самого процесса
	// одобрения в этом конвейере нет, флаг остаётся ложным.
	approved := priority == domain.PriorityCritical

	var channels []domain.Channel
	if approved {
		if priority == domain.PriorityCritical || priority == domain.PriorityHigh {
			channels = addChannel(channels,
				domain.ChannelChat, domain.ChannelTicket, domain.ChannelEmail, domain.ChannelErrorTracker)
		}
		if team == domain.TeamFinance {
			channels = addChannel(channels, domain.ChannelEmail, domain.ChannelErrorTracker)
		}
		if service == "Support" {
			channels = addChannel(channels, domain.ChannelChat)
		}
		if analysis.Category == domain.CategoryFeatureRequest {
			channels = addChannel(channels, domain.ChannelTicket)
		}
	}

	return domain.EscalationDecision{
		Priority:     priority,
		SLAHours:     slaHours,
		AssignedTeam: team,
		Approved:     approved,
		Channels:     channels,
		DecidedAt:    time.Now().UTC(),
	}
}

// addChannel добавляет каналы без дубликатов, сохраняя порядок добавления.
// Набор каналов только накапливается, выбранные каналы не удаляются.
func addChannel(set []domain.Channel, channels ...domain.Channel) []domain.Channel {
	for _, ch := range channels {
		exists := false
		for _, have := range set {
			if have == ch {
				exists = true
				break
			}
		}
		if !exists {
			set = append(set, ch)
		}
	}
	return set
}

// Escalate принимает решение для события и доставляет уведомления в
// выбранные каналы. Для неодобренных решений каналы не уведомляются.
func (s *Service) Escalate(ctx context.Context, event domain.FeedbackEvent) (domain.EscalationDecision, []domain.ChannelResult) {
	decision := Decide(event.Service, event.Analysis)
	metrics.IncEscalationDecision(string(decision.Priority), decision.Approved)
	if !decision.Approved {
		s.log.Info().
			Str("service", event.Service).
			Str("priority", string(decision.Priority)).
			Msg("escalation: решение ждёт ручного одобрения, каналы не уведомлены")
		return decision, nil
	}
	event.Escalation = &decision
	results := s.dispatcher.Notify(ctx, event, decision.Channels)
	if failed := domain.FailedChannels(results); len(failed) > 0 {
		s.log.Warn().
			Str("service", event.Service).
			Strs("failed_channels", failed).
			Msg("escalation: часть каналов не доставлена")
	}
	return decision, results
}
