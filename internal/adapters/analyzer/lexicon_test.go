package analyzer

import (
	"testing"

	"control-tower/internal/domain"
)

func TestAnalyzeCategories(t *testing.T) {
	l := NewLexicon()
	cases := map[string]domain.Category{
		"There is a bug in the checkout":      domain.CategoryBugReport,
		"Please add a feature for exports":    domain.CategoryFeatureRequest,
		"I love this platform":                domain.CategoryPraise,
		"Just wanted to say hi":               domain.CategoryGeneral,
		"PROBLEM with my withdrawal":          domain.CategoryBugReport,
		"I would suggest a dark theme":        domain.CategoryFeatureRequest,
		"This is broken, please fix the bug":  domain.CategoryBugReport,
		"Great support, everything is smooth": domain.CategoryPraise,
	}
	for message, expected := range cases {
		res := l.Analyze(message)
		if res.Category != expected {
			t.Fatalf("для %q ожидали категорию %s, получили %s", message, expected, res.Category)
		}
	}
}

func TestAnalyzeBugWinsOverPraise(t *testing.T) {
	l := NewLexicon()
	res := l.Analyze("I love this app but there is a bug")
	if res.Category != domain.CategoryBugReport {
		t.Fatalf("правило bug должно побеждать praise, получили %s", res.Category)
	}
}

func TestAnalyzeSentiment(t *testing.T) {
	l := NewLexicon()
	positive := l.Analyze("awesome and helpful service")
	if positive.SentimentScore <= 0 {
		t.Fatalf("ожидали положительный балл, получили %v", positive.SentimentScore)
	}
	negative := l.Analyze("terrible bug, everything is broken")
	if negative.SentimentScore >= 0 {
		t.Fatalf("ожидали отрицательный балл, получили %v", negative.SentimentScore)
	}
	if negative.SentimentComparative >= 0 {
		t.Fatalf("сравнительный балл тоже должен быть отрицательным")
	}
}

func TestAnalyzeEmptyText(t *testing.T) {
	l := NewLexicon()
	for _, message := range []string{"", "   ", "\t\n"} {
		res := l.Analyze(message)
		if res.SentimentScore != 0 || res.SentimentComparative != 0 {
			t.Fatalf("для пустого текста ожидали нулевые баллы")
		}
		if res.Category != domain.CategoryGeneral {
			t.Fatalf("для пустого текста ожидали CategoryGeneral")
		}
	}
}

func TestAnalyzeComparativeIsPerToken(t *testing.T) {
	l := NewLexicon()
	res := l.Analyze("good good")
	if res.SentimentScore != 6 {
		t.Fatalf("ожидали сумму 6, получили %v", res.SentimentScore)
	}
	if res.SentimentComparative != 3 {
		t.Fatalf("ожидали сравнительный балл 3, получили %v", res.SentimentComparative)
	}
}
