package fortune

import "strings"

// KeywordTable - 분위기별 점수 키워드
type KeywordTable struct {
	Love   []string
	Wealth []string
	Health []string
}

// DefaultKeywords - 기본 키워드 (호출마다 새 사본)
func DefaultKeywords() KeywordTable {
	return KeywordTable{
		Love:   []string{"사랑", "연인", "인연", "설렘", "고백", "결혼", "만남", "연애"},
		Wealth: []string{"재물", "금전", "돈", "투자", "수입", "부자", "행운", "재산"},
		Health: []string{"건강", "활력", "휴식", "운동", "회복", "체력", "컨디션", "수면"},
	}
}

func (t KeywordTable) clone() KeywordTable {
	cp := func(s []string) []string {
		out := make([]string, len(s))
		copy(out, s)
		return out
	}
	return KeywordTable{Love: cp(t.Love), Wealth: cp(t.Wealth), Health: cp(t.Health)}
}

// MoodClassifier - 운세 텍스트에서 분위기 선택
type MoodClassifier struct {
	keywords KeywordTable
}

func NewMoodClassifier(keywords KeywordTable) *MoodClassifier {
	return &MoodClassifier{keywords: keywords.clone()}
}

// Classify - 각 항목에서 자기 주제 키워드 등장 횟수를 세어 비교
// 동점은 love > wealth > health 순으로 이긴다. 점수가 모두 0이면 health.
func (c *MoodClassifier) Classify(result *FortuneResult) Mood {
	if !result.Valid() {
		return Mood{Category: MoodNeutral}
	}

	love := countKeywords(result.Love, c.keywords.Love)
	wealth := countKeywords(result.Wealth, c.keywords.Wealth)
	health := countKeywords(result.Health, c.keywords.Health)

	switch {
	case love > 0 && love >= wealth && love >= health:
		return Mood{Category: MoodLove, Score: love}
	case wealth > 0 && wealth >= health:
		return Mood{Category: MoodWealth, Score: wealth}
	default:
		return Mood{Category: MoodHealth, Score: health}
	}
}

func countKeywords(text string, keywords []string) int {
	n := 0
	for _, kw := range keywords {
		if kw == "" {
			continue
		}
		n += strings.Count(text, kw)
	}
	return n
}
