package domain

import "time"

// Priority — приоритет эскалации отзыва.
type Priority string

const (
	PriorityCritical Priority = "critical"
	PriorityHigh     Priority = "high"
	PriorityNormal   Priority = "normal"
	PriorityLow      Priority = "low"
)

// Channel — имя внешнего канала доставки уведомления.
type Channel string

const (
	// ChannelChat — вебхук чата либо Telegram-чат операторов.
	ChannelChat Channel = "chat"
	// ChannelTicket — карточка в тикет-системе.
	ChannelTicket Channel = "ticket"
	// ChannelEmail — письмо ответственной команде.
	ChannelEmail Channel = "email"
	// ChannelErrorTracker — событие во внешнем трекере ошибок.
	ChannelErrorTracker Channel = "error_tracker"
)

// Команды, за которыми закрепляются эскалации.
const (
	TeamFinance  = "Finance Team"
	TeamSupport  = "Support Team"
	TeamSecurity = "Security Team"
	TeamGeneral  = "General Team"
)

// EscalationDecision — решение об эскалации отзыва. Выводится как чистая
// функция от пары (сервис, результат анализа): одинаковые входы всегда
// дают одинаковое решение.
type EscalationDecision struct {
	Priority     Priority  `json:"priority"`
	SLAHours     int       `json:"sla_hours"`
	AssignedTeam string    `json:"assigned_team"`
	Approved     bool      `json:"approved"`
	Channels     []Channel `json:"channels"`
	DecidedAt    time.Time `json:"decided_at"`
}

// HasChannel сообщает, выбран ли канал в решении.
func (d EscalationDecision) HasChannel(ch Channel) bool {
	for _, c := range d.Channels {
		if c == ch {
			return true
		}
	}
	return false
}

// ChannelResult — итог попытки доставки по одному каналу.
type ChannelResult struct {
	Channel Channel
	Err     error
}

// FailedChannels возвращает имена каналов, доставка в которые не удалась.
func FailedChannels(results []ChannelResult) []string {
	failed := make([]string, 0, len(results))
	for _, res := range results {
		if res.Err != nil {
			failed = append(failed, string(res.Channel))
		}
	}
	return failed
}
