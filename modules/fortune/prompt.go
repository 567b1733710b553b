package fortune

import (
	"fmt"
	"strings"
)

// Backgrounds - 분위기별 초상화 배경 묘사
type Backgrounds map[MoodCategory]string

// DefaultBackgrounds - 기본 배경 테이블
func DefaultBackgrounds() Backgrounds {
	return Backgrounds{
		MoodLove:    "분홍빛 노을 아래 꽃잎이 흩날리는 몽환적인 배경",
		MoodWealth:  "금빛 조명 속에 금화가 떠다니는 화려한 배경",
		MoodHealth:  "아침 햇살이 비치는 맑은 초록 숲 배경",
		MoodNeutral: "어두운 배경, 캐릭터가 잘 보이도록",
	}
}

// FortuneSchema - 텍스트 응답 스키마 (네 항목 모두 필수)
var FortuneSchema = []SchemaField{
	{Name: "wealth", Description: "금전운 (3문장 이상, 구체적 예언)"},
	{Name: "love", Description: "애정운 (3문장 이상, 관계의 변화 중심)"},
	{Name: "health", Description: "건강운 (3문장 이상, 주의할 점 포함)"},
	{Name: "advice", Description: "단 한 줄의 핵심 조언 (비유적 표현 한 문장)"},
}

const (
	fortuneSystem  = "당신은 2026년의 운명을 꿰뚫어 보는 신비로운 예언가입니다."
	outputLanguage = "언어: 반드시 한국어(Korean)로 출력할 것."
	outputTone     = "톤앤매너: 웅장하고, 진지하며, 약간은 냉소적이지만 정확한 통찰력을 보여주는 문체 (반말 사용 금지, 격식체 사용)."
	portraitStyle  = "스타일: 3D, 복셀 아트, 8비트 미학적이지만 고화질 렌더링, 마법 같은, 신비로운."
)

// RequestBuilder - 프로필로 생성 요청을 만드는 순수 함수 모음
type RequestBuilder struct {
	catalog     *Catalog
	backgrounds Backgrounds
}

// NewRequestBuilder - 카탈로그와 배경 테이블 주입
func NewRequestBuilder(catalog *Catalog, backgrounds Backgrounds) *RequestBuilder {
	bg := make(Backgrounds, len(backgrounds))
	for k, v := range backgrounds {
		bg[k] = v
	}
	return &RequestBuilder{catalog: catalog, backgrounds: bg}
}

// BuildTextRequest - 운세 텍스트 요청
func (b *RequestBuilder) BuildTextRequest(p Profile) (GenerationRequest, error) {
	name := strings.TrimSpace(p.Name)
	if name == "" {
		return GenerationRequest{}, &BuildError{Kind: RequestText, Field: "name"}
	}
	if !p.Gender.Valid() {
		return GenerationRequest{}, &BuildError{Kind: RequestText, Field: "gender"}
	}
	if p.BirthDate.IsZero() {
		return GenerationRequest{}, &BuildError{Kind: RequestText, Field: "birthDate"}
	}

	var sb strings.Builder
	sb.WriteString("[사용자 정보]\n")
	fmt.Fprintf(&sb, "이름: %s\n", name)
	fmt.Fprintf(&sb, "성별: %s\n", p.Gender.Label())
	fmt.Fprintf(&sb, "생년월일: %s\n", p.BirthDate.Format(BirthDateLayout))
	sb.WriteString("\n위 사용자의 2026년 운세를 예언하십시오.\n\n")

	sb.WriteString("[필수 요구사항]\n")
	sb.WriteString("- " + outputLanguage + "\n")
	sb.WriteString("- " + outputTone + "\n")
	sb.WriteString("- 내용: 추상적인 말보다는 구체적인 조언을 포함할 것.\n\n")

	sb.WriteString("[출력 항목]\n")
	for _, f := range FortuneSchema {
		fmt.Fprintf(&sb, "- %s: %s\n", f.Name, f.Description)
	}

	schema := make([]SchemaField, len(FortuneSchema))
	copy(schema, FortuneSchema)

	return GenerationRequest{
		Kind:              RequestText,
		Prompt:            sb.String(),
		SystemInstruction: fortuneSystem,
		Schema:            schema,
	}, nil
}

// BuildImageRequest - 초상화 요청 (분위기로 배경 결정)
func (b *RequestBuilder) BuildImageRequest(p Profile, mood MoodCategory) (GenerationRequest, error) {
	if !p.Gender.Valid() {
		return GenerationRequest{}, &BuildError{Kind: RequestImage, Field: "gender"}
	}

	eye, err := b.trait(TraitEye, p.Appearance.EyeStyle)
	if err != nil {
		return GenerationRequest{}, err
	}
	outfit, err := b.trait(TraitOutfit, p.Appearance.OutfitStyle)
	if err != nil {
		return GenerationRequest{}, err
	}

	background, ok := b.backgrounds[mood]
	if !ok {
		background, ok = b.backgrounds[MoodNeutral]
	}
	if !ok {
		return GenerationRequest{}, &BuildError{Kind: RequestImage, Field: "background"}
	}

	var sb strings.Builder
	sb.WriteString("고품질 3D 현대적이고 매끈한 캐릭터, 전신 샷.\n")
	fmt.Fprintf(&sb, "성별: %s.\n", p.Gender.Label())
	sb.WriteString("외모 세부사항:\n")
	if hair, ok := b.catalog.Label(TraitHair, p.Appearance.HairStyle); ok {
		fmt.Fprintf(&sb, "- 머리: %s\n", hair)
	}
	fmt.Fprintf(&sb, "- 눈: %s (%s)\n", eye.Label, eye.Description)
	fmt.Fprintf(&sb, "- 옷: %s (%s)\n", outfit.Label, outfit.Description)
	fmt.Fprintf(&sb, "\n배경: %s.\n", background)
	sb.WriteString(portraitStyle + "\n")

	return GenerationRequest{
		Kind:        RequestImage,
		Prompt:      sb.String(),
		AspectRatio: "1:1",
	}, nil
}

func (b *RequestBuilder) trait(kind TraitKind, id string) (Option, error) {
	if id == "" {
		return Option{}, &BuildError{Kind: RequestImage, Field: kind.Field()}
	}
	o, ok := b.catalog.Lookup(kind, id)
	if !ok || o.Label == "" {
		return Option{}, &BuildError{Kind: RequestImage, Field: kind.Field()}
	}
	return o, nil
}
