package fortune

import "testing"

func TestMoodClassifier(t *testing.T) {
	kw := KeywordTable{
		Love:   []string{"L"},
		Wealth: []string{"W"},
		Health: []string{"H"},
	}
	c := NewMoodClassifier(kw)

	result := func(love, wealth, health int) *FortuneResult {
		rep := func(s string, n int) string {
			out := "x"
			for i := 0; i < n; i++ {
				out += s
			}
			return out
		}
		return &FortuneResult{
			Love:   rep("L", love),
			Wealth: rep("W", wealth),
			Health: rep("H", health),
			Advice: "a",
		}
	}

	tests := []struct {
		name                 string
		love, wealth, health int
		want                 MoodCategory
		score                int
	}{
		{"모두 0이면 health", 0, 0, 0, MoodHealth, 0},
		{"love만 0", 0, 0, 2, MoodHealth, 2},
		{"love 최대", 3, 1, 2, MoodLove, 3},
		{"love=wealth 동점은 love", 2, 2, 1, MoodLove, 2},
		{"love=health 동점은 love", 2, 1, 2, MoodLove, 2},
		{"세 값 동점은 love", 4, 4, 4, MoodLove, 4},
		{"wealth=health 동점은 wealth", 1, 3, 3, MoodWealth, 3},
		{"wealth 최대", 0, 5, 1, MoodWealth, 5},
		{"health 최대", 1, 2, 3, MoodHealth, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.Classify(result(tt.love, tt.wealth, tt.health))
			if got.Category != tt.want || got.Score != tt.score {
				t.Errorf("Classify() = %+v, want %s/%d", got, tt.want, tt.score)
			}
		})
	}

	t.Run("결과 없으면 neutral", func(t *testing.T) {
		if got := c.Classify(nil); got.Category != MoodNeutral || got.Score != 0 {
			t.Errorf("Classify(nil) = %+v", got)
		}
		if got := c.Classify(&FortuneResult{Love: "L"}); got.Category != MoodNeutral {
			t.Errorf("Classify(incomplete) = %+v", got)
		}
	})

	t.Run("자기 항목 키워드만 센다", func(t *testing.T) {
		r := &FortuneResult{Love: "x", Wealth: "LLLL", Health: "H", Advice: "a"}
		if got := c.Classify(r); got.Category != MoodHealth {
			t.Errorf("Classify() = %+v, want health", got)
		}
	})

	t.Run("기본 키워드", func(t *testing.T) {
		d := NewMoodClassifier(DefaultKeywords())
		r := &FortuneResult{
			Wealth: "평범한 한 해입니다.",
			Love:   "평온합니다.",
			Health: "건강에 유의하고 충분한 휴식과 수면을 챙기십시오.",
			Advice: "물은 낮은 곳으로 흐른다.",
		}
		if got := d.Classify(r); got.Category != MoodHealth || got.Score != 3 {
			t.Errorf("Classify() = %+v, want health/3", got)
		}
	})
}
