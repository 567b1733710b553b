package export

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"fortune-canvas-server/modules/common/utils"
	"fortune-canvas-server/modules/fortune"
)

// 카드 기본 레이아웃 (scale 1 기준 픽셀)
const (
	cardWidth     = 360
	cardHeight    = 640
	cardPadding   = 16
	textWidth     = cardWidth - cardPadding*2
	titleBaseline = 40
	nameBaseline  = 62
	portraitTop   = 76
	portraitSize  = 208
	portraitLeft  = (cardWidth - portraitSize) / 2
	bandTop       = portraitTop + portraitSize + 12
	bandHeight    = 6
	textTop       = bandTop + bandHeight + 24
	lineHeight    = 20
	sectionGap    = 8
	bodyLines     = 2
)

// 글자 크기 (pt, 72 DPI)
const (
	titleSize = 20
	nameSize  = 14
	labelSize = 14
	bodySize  = 13
)

// maxPortraitBytes - 초상화 다운로드 최대 크기
const maxPortraitBytes = 10 << 20

var (
	titleColor = color.RGBA{R: 0xfd, G: 0xe6, B: 0x8a, A: 0xff}
	nameColor  = color.RGBA{R: 0xc4, G: 0xb5, B: 0xfd, A: 0xff}
	bodyColor  = color.RGBA{R: 0xf5, G: 0xf3, B: 0xff, A: 0xff}
	frameColor = color.RGBA{R: 0x2d, G: 0x24, B: 0x4a, A: 0xff}
)

// moodAccent - 분위기별 강조 색
var moodAccent = map[fortune.MoodCategory]color.RGBA{
	fortune.MoodLove:    {R: 0xf4, G: 0x72, B: 0xb6, A: 0xff},
	fortune.MoodWealth:  {R: 0xfa, G: 0xcc, B: 0x15, A: 0xff},
	fortune.MoodHealth:  {R: 0x4a, G: 0xde, B: 0x80, A: 0xff},
	fortune.MoodNeutral: {R: 0xa7, G: 0x8b, B: 0xfa, A: 0xff},
}

// CardRasterizer - 결과 화면(제목, 이름, 초상화, 운세 요약, 조언)을 카드 이미지로 합성
// 초상화 바이너리가 없으면 URL(data URL 또는 http)에서 가져온다.
type CardRasterizer struct {
	httpClient *http.Client
	font       *opentype.Font
}

// NewCardRasterizer - fnt가 nil이면 내장 글꼴
func NewCardRasterizer(httpClient *http.Client, fnt *opentype.Font) (*CardRasterizer, error) {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	if fnt == nil {
		var err error
		if fnt, err = LoadFont(""); err != nil {
			return nil, err
		}
	}
	return &CardRasterizer{httpClient: httpClient, font: fnt}, nil
}

// Rasterize - scale 배율로 카드 그리기. 초상화를 못 불러와도 카드 자체는 만든다
func (r *CardRasterizer) Rasterize(ctx context.Context, v View, scale int, background color.Color) (image.Image, error) {
	if scale < 1 {
		return nil, fmt.Errorf("invalid scale: %d", scale)
	}
	if background == nil {
		background = DefaultBackground
	}
	if _, _, _, a := background.RGBA(); a != 0xffff {
		return nil, errors.New("background must be opaque")
	}

	faces, err := r.faces(scale)
	if err != nil {
		return nil, err
	}
	defer faces.close()

	s := func(n int) int { return n * scale }
	card := image.NewRGBA(image.Rect(0, 0, s(cardWidth), s(cardHeight)))
	draw.Draw(card, card.Bounds(), &image.Uniform{C: background}, image.Point{}, draw.Src)

	accent, ok := moodAccent[v.Artifact.Mood.Category]
	if !ok {
		accent = moodAccent[fortune.MoodNeutral]
	}

	// 제목, 이름
	drawCentered(card, faces.title, titleColor, s(cardWidth), s(titleBaseline), Title(v.Profile.Name))
	drawCentered(card, faces.name, nameColor, s(cardWidth), s(nameBaseline), v.Profile.DisplayName())

	// 초상화 영역
	frame := image.Rect(s(portraitLeft), s(portraitTop), s(portraitLeft+portraitSize), s(portraitTop+portraitSize))
	draw.Draw(card, frame, &image.Uniform{C: frameColor}, image.Point{}, draw.Src)
	if portrait, err := r.loadPortrait(ctx, v.Artifact.Portrait); err != nil {
		zap.S().Warnf("⚠️ [Export] Portrait unavailable, drawing empty frame: %v", err)
	} else {
		fitted := utils.ResizeImage(portrait, frame.Dx(), frame.Dy())
		utils.DrawOver(card, frame, fitted)
	}

	// 분위기 띠
	band := image.Rect(s(cardPadding), s(bandTop), s(cardWidth-cardPadding), s(bandTop+bandHeight))
	draw.Draw(card, band, &image.Uniform{C: accent}, image.Point{}, draw.Src)

	// 항목별 요약과 핵심 조언
	f := v.Artifact.Fortune
	sections := []struct {
		label string
		text  string
	}{
		{"금전운", Excerpt(f.Wealth, ExcerptRunes)},
		{"애정운", Excerpt(f.Love, ExcerptRunes)},
		{"건강운", Excerpt(f.Health, ExcerptRunes)},
		{"핵심 조언", strings.TrimSpace(f.Advice)},
	}
	y := s(textTop)
	for _, sec := range sections {
		y = drawLines(card, faces.label, accent, s(cardPadding), y, s(lineHeight), []string{sec.label})
		lines := wrapText(faces.body, sec.text, s(textWidth), bodyLines)
		y = drawLines(card, faces.body, bodyColor, s(cardPadding), y, s(lineHeight), lines)
		y += s(sectionGap)
	}

	return card, nil
}

type cardFaces struct {
	title, name, label, body font.Face
}

func (r *CardRasterizer) faces(scale int) (*cardFaces, error) {
	fc := &cardFaces{}
	var err error
	if fc.title, err = newFace(r.font, titleSize, scale); err != nil {
		return nil, fmt.Errorf("failed to create title face: %w", err)
	}
	if fc.name, err = newFace(r.font, nameSize, scale); err != nil {
		fc.close()
		return nil, fmt.Errorf("failed to create name face: %w", err)
	}
	if fc.label, err = newFace(r.font, labelSize, scale); err != nil {
		fc.close()
		return nil, fmt.Errorf("failed to create label face: %w", err)
	}
	if fc.body, err = newFace(r.font, bodySize, scale); err != nil {
		fc.close()
		return nil, fmt.Errorf("failed to create body face: %w", err)
	}
	return fc, nil
}

func (fc *cardFaces) close() {
	for _, f := range []font.Face{fc.title, fc.name, fc.label, fc.body} {
		if f != nil {
			f.Close()
		}
	}
}

// drawLines - 기준선 y부터 한 줄씩 그리고 다음 기준선 반환
func drawLines(dst draw.Image, face font.Face, c color.Color, x, y, step int, lines []string) int {
	d := &font.Drawer{Dst: dst, Src: image.NewUniform(c), Face: face}
	for _, line := range lines {
		d.Dot = fixed.P(x, y)
		d.DrawString(line)
		y += step
	}
	return y
}

func drawCentered(dst draw.Image, face font.Face, c color.Color, width, y int, text string) {
	x := (width - font.MeasureString(face, text).Ceil()) / 2
	if x < 0 {
		x = 0
	}
	drawLines(dst, face, c, x, y, 0, []string{text})
}

func (r *CardRasterizer) loadPortrait(ctx context.Context, p fortune.Portrait) (image.Image, error) {
	if len(p.Data) > 0 {
		return utils.DecodeImage(p.Data)
	}
	if p.URL == "" {
		return nil, errors.New("portrait has no source")
	}
	if strings.HasPrefix(p.URL, "data:") {
		comma := strings.IndexByte(p.URL, ',')
		if comma < 0 {
			return nil, errors.New("malformed data URL")
		}
		data, err := base64.StdEncoding.DecodeString(p.URL[comma+1:])
		if err != nil {
			return nil, fmt.Errorf("failed to decode data URL: %w", err)
		}
		return utils.DecodeImage(data)
	}

	data, err := r.download(ctx, p.URL)
	if err != nil {
		return nil, err
	}
	return utils.DecodeImage(data)
}

// download - URL에서 이미지 다운로드
func (r *CardRasterizer) download(ctx context.Context, imageURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to download portrait: status %d", resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxPortraitBytes+1))
	if err != nil {
		return nil, err
	}
	if len(data) > maxPortraitBytes {
		return nil, fmt.Errorf("portrait exceeds %d bytes", maxPortraitBytes)
	}
	return data, nil
}
