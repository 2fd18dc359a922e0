package analyzer

import (
	"regexp"
	"strings"
	"unicode"

	"control-tower/internal/domain"
)

// Lexicon реализует domain.Analyzer словарным скорингом тональности
// и фиксированным набором правил категоризации.
type Lexicon struct{}

// NewLexicon создаёт анализатор.
func NewLexicon() *Lexicon {
	return &Lexicon{}
}

var _ domain.Analyzer = (*Lexicon)(nil)

// polarity — веса токенов. Версия словаря фиксирована, поэтому результат
// анализа детерминирован для одного и того же текста.
var polarity = map[string]float64{
	"awesome":    4,
	"amazing":    4,
	"love":       3,
	"excellent":  3,
	"great":      3,
	"good":       3,
	"perfect":    3,
	"best":       3,
	"nice":       3,
	"thanks":     2,
	"helpful":    2,
	"like":       2,
	"fast":       2,
	"smooth":     2,
	"easy":       1,
	"fine":       1,
	"slow":       -1,
	"confusing":  -1,
	"issue":      -1,
	"bug":        -2,
	"broken":     -2,
	"crash":      -2,
	"error":      -2,
	"problem":    -2,
	"fail":       -2,
	"failed":     -2,
	"wrong":      -2,
	"annoying":   -2,
	"useless":    -2,
	"stuck":      -2,
	"lost":       -2,
	"bad":        -3,
	"terrible":   -3,
	"awful":      -3,
	"hate":       -3,
	"worst":      -3,
	"scam":       -3,
	"fraud":      -3,
	"unusable":   -3,
	"disgusting": -4,
	"horrible":   -4,
}

// Правила категоризации: применяется первое совпавшее, без мультиклассов.
var (
	bugPattern     = regexp.MustCompile(`(?i)(bug|error|issue|problem|broken|crash|fail)`)
	featurePattern = regexp.MustCompile(`(?i)(feature|request|suggest)`)
	praisePattern  = regexp.MustCompile(`(?i)(love|like|awesome|great|good)`)
)

// Analyze считает суммарный и сравнительный балл тональности и категорию.
// Для пустого после обрезки текста возвращает нулевой балл и CategoryGeneral:
// отклонять пустые сообщения обязан вызывающий, а не анализатор.
func (l *Lexicon) Analyze(message string) domain.AnalysisResult {
	tokens := tokenize(message)
	var score float64
	for _, token := range tokens {
		score += polarity[token]
	}
	comparative := 0.0
	if len(tokens) > 0 {
		comparative = score / float64(len(tokens))
	}
	return domain.AnalysisResult{
		SentimentScore:       score,
		SentimentComparative: comparative,
		Category:             categorize(message),
	}
}

func categorize(message string) domain.Category {
	switch {
	case bugPattern.MatchString(message):
		return domain.CategoryBugReport
	case featurePattern.MatchString(message):
		return domain.CategoryFeatureRequest
	case praisePattern.MatchString(message):
		return domain.CategoryPraise
	default:
		return domain.CategoryGeneral
	}
}

func tokenize(message string) []string {
	return strings.FieldsFunc(strings.ToLower(message), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
