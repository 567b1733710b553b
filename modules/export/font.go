package export

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// LoadFont - 카드 글꼴 로드 (TTF, OTF, TTC)
// path가 비면 내장 Go 글꼴을 쓴다. 한글은 Noto Sans KR 같은 한글 글꼴이 있어야 제대로 그려진다.
func LoadFont(path string) (*opentype.Font, error) {
	if path == "" {
		return opentype.Parse(goregular.TTF)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read font %s: %w", path, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".ttc", ".otc":
		coll, err := opentype.ParseCollection(data)
		if err != nil {
			return nil, fmt.Errorf("failed to parse font collection %s: %w", path, err)
		}
		if coll.NumFonts() == 0 {
			return nil, fmt.Errorf("font collection %s is empty", path)
		}
		return coll.Font(0)
	default:
		f, err := opentype.Parse(data)
		if err != nil {
			return nil, fmt.Errorf("failed to parse font %s: %w", path, err)
		}
		return f, nil
	}
}

func newFace(f *opentype.Font, size float64, scale int) (font.Face, error) {
	return opentype.NewFace(f, &opentype.FaceOptions{
		Size:    size * float64(scale),
		DPI:     72,
		Hinting: font.HintingFull,
	})
}

// wrapText - 글자 단위 줄바꿈. maxLines를 넘으면 마지막 줄 끝을 "..."로 자른다
func wrapText(face font.Face, text string, width, maxLines int) []string {
	limit := fixed.I(width)

	var lines []string
	var cur []rune
	for _, r := range strings.TrimSpace(text) {
		if r == '\n' {
			lines = append(lines, string(cur))
			cur = nil
			continue
		}
		next := append(cur, r)
		if len(cur) > 0 && font.MeasureString(face, string(next)) > limit {
			lines = append(lines, string(cur))
			cur = []rune{r}
			continue
		}
		cur = next
	}
	if len(cur) > 0 {
		lines = append(lines, string(cur))
	}

	if maxLines > 0 && len(lines) > maxLines {
		lines = lines[:maxLines]
		last := []rune(strings.TrimSpace(lines[maxLines-1]))
		for len(last) > 0 && font.MeasureString(face, string(last)+"...") > limit {
			last = last[:len(last)-1]
		}
		lines[maxLines-1] = string(last) + "..."
	}
	for i := range lines {
		lines[i] = strings.TrimSpace(lines[i])
	}
	return lines
}
