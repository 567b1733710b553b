package export

import (
	"fmt"
	"strings"
	"unicode"
)

const (
	// FortuneYear - 운세 대상 연도
	FortuneYear = 2026
	// ExcerptRunes - 텍스트 요약에 싣는 항목별 최대 글자 수
	ExcerptRunes = 50
	// FailureNotice - 모든 내보내기 경로 실패 시 안내 문구
	FailureNotice = "공유에 실패했습니다."
)

// Title - 공유 제목
func Title(name string) string {
	return fmt.Sprintf("%s님의 %d년 운명", name, FortuneYear)
}

// Excerpt - 앞에서부터 n글자, 잘렸으면 말줄임표
func Excerpt(s string, n int) string {
	s = strings.TrimSpace(s)
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}

// Summary - 텍스트 공유용 본문 (제목 제외)
func Summary(v View) string {
	f := v.Artifact.Fortune
	var b strings.Builder
	fmt.Fprintf(&b, "%s님의 %d년 운세를 확인해보세요!\n\n", v.Profile.Name, FortuneYear)
	fmt.Fprintf(&b, "💰 금전운: %s\n", Excerpt(f.Wealth, ExcerptRunes))
	fmt.Fprintf(&b, "💕 애정운: %s\n", Excerpt(f.Love, ExcerptRunes))
	fmt.Fprintf(&b, "🏥 건강운: %s\n\n", Excerpt(f.Health, ExcerptRunes))
	fmt.Fprintf(&b, "✨ 핵심 조언: %s", strings.TrimSpace(f.Advice))
	return b.String()
}

// ClipboardText - 제목과 본문을 합친 클립보드용 텍스트
func ClipboardText(v View) string {
	return Title(v.Profile.Name) + "\n\n" + Summary(v)
}

// FileName - 이름 기반 다운로드 파일명 (파일 시스템에 안전한 문자만)
func FileName(name, ext string) string {
	safe := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return r
		}
		return '_'
	}, strings.TrimSpace(name))
	safe = strings.Trim(safe, "_")
	if safe == "" {
		safe = "fortune"
	}
	if ext == "" {
		ext = "png"
	}
	return fmt.Sprintf("%s_%d_운명.%s", safe, FortuneYear, ext)
}
