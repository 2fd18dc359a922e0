package notify

import (
	"fmt"
	"strings"

	"control-tower/internal/domain"
)

// EventText строит однострочное представление события для чат-каналов.
func EventText(event domain.FeedbackEvent) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s", event.Service, event.Message)
	if event.Submitter != "" {
		fmt.Fprintf(&b, " — от %s", event.Submitter)
	}
	fmt.Fprintf(&b, " (категория: %s, балл: %.1f)", event.Analysis.Category, event.Analysis.SentimentScore)
	if event.Escalation != nil {
		fmt.Fprintf(&b, " | эскалация: %s, команда %s, SLA %d ч",
			event.Escalation.Priority, event.Escalation.AssignedTeam, event.Escalation.SLAHours)
	}
	return b.String()
}

// EventBody строит многострочное представление события для письма
// и описания карточки в тикет-системе.
func EventBody(event domain.FeedbackEvent) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Сервис: %s\n", event.Service)
	if event.Submitter != "" {
		fmt.Fprintf(&b, "Отправитель: %s\n", event.Submitter)
	}
	fmt.Fprintf(&b, "Категория: %s\n", event.Analysis.Category)
	fmt.Fprintf(&b, "Тональность: %.2f (сравнительная %.2f)\n",
		event.Analysis.SentimentScore, event.Analysis.SentimentComparative)
	if event.Escalation != nil {
		fmt.Fprintf(&b, "Приоритет: %s\n", event.Escalation.Priority)
		fmt.Fprintf(&b, "Команда: %s\n", event.Escalation.AssignedTeam)
		fmt.Fprintf(&b, "SLA: %d ч\n", event.Escalation.SLAHours)
	}
	fmt.Fprintf(&b, "\n%s\n", event.Message)
	return b.String()
}
