package domain

import "time"

// Category — грубая категория отзыва по тексту сообщения.
type Category string

const (
	// CategoryBugReport — сообщение об ошибке или поломке.
	CategoryBugReport Category = "bug_report"
	// CategoryFeatureRequest — запрос новой функциональности.
	CategoryFeatureRequest Category = "feature_request"
	// CategoryPraise — благодарность или похвала.
	CategoryPraise Category = "praise"
	// CategoryGeneral — всё остальное.
	CategoryGeneral Category = "general"
)

// AnalysisResult содержит результат анализа текста отзыва.
// Вычисляется один раз при приёме и дальше не меняется.
type AnalysisResult struct {
	SentimentScore       float64  `json:"sentiment_score"`
	SentimentComparative float64  `json:"sentiment_comparative"`
	Category             Category `json:"category"`
}

// FeedbackItem представляет принятый отзыв пользователя о сервисе платформы.
// После приёма элемент неизменяем; владеет им хранилище отзывов.
type FeedbackItem struct {
	ID         string         `json:"id"`
	Service    string         `json:"service"`
	Message    string         `json:"message"`
	Submitter  string         `json:"submitter,omitempty"`
	Analysis   AnalysisResult `json:"analysis"`
	ReceivedAt time.Time      `json:"received_at"`
}

// FeedbackEvent — полезная нагрузка, которую получают каналы уведомлений.
// Явная структура с фиксированными полями вместо произвольного payload.
type FeedbackEvent struct {
	Service   string         `json:"service"`
	Message   string         `json:"message"`
	Submitter string         `json:"submitter,omitempty"`
	Analysis  AnalysisResult `json:"analysis"`
	// Escalation заполняется движком эскалаций; при базовом уведомлении пусто.
	Escalation *EscalationDecision `json:"escalation,omitempty"`
}
