package escalation

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/rs/zerolog"

	"control-tower/internal/domain"
)

type fakeDispatcher struct {
	calls    int
	event    domain.FeedbackEvent
	channels []domain.Channel
	results  []domain.ChannelResult
}

func (f *fakeDispatcher) Notify(ctx context.Context, event domain.FeedbackEvent, channels []domain.Channel) []domain.ChannelResult {
	f.calls++
	f.event = event
	f.channels = channels
	if f.results != nil {
		return f.results
	}
	results := make([]domain.ChannelResult, len(channels))
	for i, ch := range channels {
		results[i].Channel = ch
	}
	return results
}

func TestDecideCriticalBugForPayments(t *testing.T) {
	d := Decide("Payments", domain.AnalysisResult{Category: domain.CategoryBugReport, SentimentScore: -3})
	if d.Priority != domain.PriorityCritical {
		t.Fatalf("ожидали critical, получили %s", d.Priority)
	}
	if d.SLAHours != 24 {
		t.Fatalf("ожидали SLA 24 часа, получили %d", d.SLAHours)
	}
	if d.AssignedTeam != domain.TeamFinance {
		t.Fatalf("ожидали Finance Team, получили %s", d.AssignedTeam)
	}
	if !d.Approved {
		t.Fatalf("критичное решение должно быть одобрено автоматически")
	}
	for _, ch := range []domain.Channel{domain.ChannelChat, domain.ChannelTicket, domain.ChannelEmail, domain.ChannelErrorTracker} {
		if !d.HasChannel(ch) {
			t.Fatalf("критичное решение должно включать канал %s", ch)
		}
	}
}

func TestDecideNormalIsHeldForApproval(t *testing.T) {
	d := Decide("Support", domain.AnalysisResult{Category: domain.CategoryGeneral, SentimentScore: 1})
	if d.Priority != domain.PriorityNormal {
		t.Fatalf("ожидали normal, получили %s", d.Priority)
	}
	if d.Approved {
		t.Fatalf("некритичное решение не должно быть одобрено")
	}
	if len(d.Channels) != 0 {
		t.Fatalf("без одобрения каналы не выбираются, получили %v", d.Channels)
	}
	if d.SLAHours != 72 {
		t.Fatalf("ожидали SLA 72 часа, получили %d", d.SLAHours)
	}
}

func TestDecidePriorityTable(t *testing.T) {
	cases := []struct {
		name     string
		analysis domain.AnalysisResult
		expected domain.Priority
		sla      int
	}{
		{"очень негативный general", domain.AnalysisResult{Category: domain.CategoryGeneral, SentimentScore: -5}, domain.PriorityCritical, 24},
		{"слегка негативный general", domain.AnalysisResult{Category: domain.CategoryGeneral, SentimentScore: -1}, domain.PriorityHigh, 48},
		{"фича с нейтральным тоном", domain.AnalysisResult{Category: domain.CategoryFeatureRequest, SentimentScore: 0}, domain.PriorityLow, 72},
		{"похвала", domain.AnalysisResult{Category: domain.CategoryPraise, SentimentScore: 4}, domain.PriorityNormal, 72},
	}
	for _, tc := range cases {
		d := Decide("Other", tc.analysis)
		if d.Priority != tc.expected {
			t.Fatalf("%s: ожидали %s, получили %s", tc.name, tc.expected, d.Priority)
		}
		if d.SLAHours != tc.sla {
			t.Fatalf("%s: ожидали SLA %d, получили %d", tc.name, tc.sla, d.SLAHours)
		}
	}
}

func TestDecideTeamAssignment(t *testing.T) {
	cases := map[string]string{
		"Payments":      domain.TeamFinance,
		"Withdrawals":   domain.TeamFinance,
		"Support":       domain.TeamSupport,
		"Cybersecurity": domain.TeamSecurity,
		"Marketing":     domain.TeamGeneral,
	}
	for service, team := range cases {
		d := Decide(service, domain.AnalysisResult{})
		if d.AssignedTeam != team {
			t.Fatalf("для %s ожидали %s, получили %s", service, team, d.AssignedTeam)
		}
	}
}

func TestDecideIsIdempotent(t *testing.T) {
	analysis := domain.AnalysisResult{Category: domain.CategoryBugReport, SentimentScore: -3}
	first := Decide("Payments", analysis)
	second := Decide("Payments", analysis)
	first.DecidedAt = second.DecidedAt
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("повторный вызов с теми же входами дал другое решение:\n%+v\n%+v", first, second)
	}
}

func TestEscalateSkipsUnapproved(t *testing.T) {
	dispatcher := &fakeDispatcher{}
	s := NewService(dispatcher, zerolog.Nop())
	decision, results := s.Escalate(context.Background(), domain.FeedbackEvent{
		Service:  "Support",
		Analysis: domain.AnalysisResult{Category: domain.CategoryGeneral, SentimentScore: 1},
	})
	if decision.Approved {
		t.Fatalf("решение не должно быть одобрено")
	}
	if dispatcher.calls != 0 {
		t.Fatalf("без одобрения диспетчер не вызывается")
	}
	if len(results) != 0 {
		t.Fatalf("без одобрения результатов доставки нет")
	}
}

func TestEscalateNotifiesDecisionChannels(t *testing.T) {
	dispatcher := &fakeDispatcher{}
	s := NewService(dispatcher, zerolog.Nop())
	decision, results := s.Escalate(context.Background(), domain.FeedbackEvent{
		Service:  "Payments",
		Message:  "платёж завис",
		Analysis: domain.AnalysisResult{Category: domain.CategoryBugReport, SentimentScore: -3},
	})
	if dispatcher.calls != 1 {
		t.Fatalf("одобренное решение должно уведомить каналы")
	}
	if !reflect.DeepEqual(dispatcher.channels, decision.Channels) {
		t.Fatalf("диспетчер должен получить каналы решения")
	}
	if dispatcher.event.Escalation == nil {
		t.Fatalf("событие должно нести метаданные эскалации")
	}
	if len(results) != len(decision.Channels) {
		t.Fatalf("ожидали результат на каждый канал")
	}
}

func TestEscalateCollectsFailures(t *testing.T) {
	dispatcher := &fakeDispatcher{results: []domain.ChannelResult{
		{Channel: domain.ChannelChat, Err: errors.New("webhook недоступен")},
		{Channel: domain.ChannelTicket},
		{Channel: domain.ChannelEmail},
		{Channel: domain.ChannelErrorTracker},
	}}
	s := NewService(dispatcher, zerolog.Nop())
	_, results := s.Escalate(context.Background(), domain.FeedbackEvent{
		Service:  "Payments",
		Analysis: domain.AnalysisResult{Category: domain.CategoryBugReport, SentimentScore: -3},
	})
	failed := domain.FailedChannels(results)
	if len(failed) != 1 || failed[0] != "chat" {
		t.Fatalf("ожидали единственный сбойный канал chat, получили %v", failed)
	}
}
