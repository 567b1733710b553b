package fortune

import (
	"strings"
	"time"
)

// Gender - 성별
type Gender string

const (
	GenderUnset  Gender = ""
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
	GenderOther  Gender = "other"
)

// Valid - 허용된 성별 값인지
func (g Gender) Valid() bool {
	switch g {
	case GenderMale, GenderFemale, GenderOther:
		return true
	}
	return false
}

// Label - 프롬프트용 한글 표기
func (g Gender) Label() string {
	switch g {
	case GenderMale:
		return "남성"
	case GenderFemale:
		return "여성"
	case GenderOther:
		return "성별 무관"
	}
	return ""
}

// Honorific - 이름 뒤에 붙는 호칭 (군/양/님)
func (g Gender) Honorific() string {
	switch g {
	case GenderMale:
		return "군"
	case GenderFemale:
		return "양"
	}
	return "님"
}

// BirthDateLayout - 생년월일 직렬화 형식
const BirthDateLayout = "2006-01-02"

// BirthTimeLayout - 태어난 시각 형식 (선택)
const BirthTimeLayout = "15:04"

// Appearance - 외형 선택값 (카탈로그 ID)
type Appearance struct {
	HairStyle   string `json:"hairStyle"`
	EyeStyle    string `json:"eyeStyle"`
	OutfitStyle string `json:"outfitStyle"`
}

// Profile - 위저드가 모으는 사용자 입력
type Profile struct {
	Name       string     `json:"name"`
	Gender     Gender     `json:"gender"`
	BirthDate  time.Time  `json:"birthDate"`
	BirthTime  string     `json:"birthTime,omitempty"`
	Appearance Appearance `json:"appearance"`
}

// ProfileUpdate - 개인정보 단계 부분 갱신 (nil 필드는 유지)
type ProfileUpdate struct {
	Name      *string
	Gender    *Gender
	BirthDate *time.Time
	BirthTime *string
}

// AppearanceUpdate - 외형 단계 부분 갱신 (nil 필드는 유지)
type AppearanceUpdate struct {
	HairStyle   *string
	EyeStyle    *string
	OutfitStyle *string
}

// apply - 갱신값을 병합한 사본 반환
func (u ProfileUpdate) apply(p Profile) Profile {
	if u.Name != nil {
		p.Name = strings.TrimSpace(*u.Name)
	}
	if u.Gender != nil {
		p.Gender = *u.Gender
	}
	if u.BirthDate != nil {
		p.BirthDate = *u.BirthDate
	}
	if u.BirthTime != nil {
		p.BirthTime = strings.TrimSpace(*u.BirthTime)
	}
	return p
}

func (u AppearanceUpdate) apply(p Profile) Profile {
	if u.HairStyle != nil {
		p.Appearance.HairStyle = *u.HairStyle
	}
	if u.EyeStyle != nil {
		p.Appearance.EyeStyle = *u.EyeStyle
	}
	if u.OutfitStyle != nil {
		p.Appearance.OutfitStyle = *u.OutfitStyle
	}
	return p
}

// ValidatePersonal - 이름/성별/생년월일/시각 검증
func (p Profile) ValidatePersonal() error {
	if strings.TrimSpace(p.Name) == "" {
		return &ValidationError{Field: "name", Reason: "이름을 입력해 주세요"}
	}
	if !p.Gender.Valid() {
		return &ValidationError{Field: "gender", Reason: "성별을 선택해 주세요"}
	}
	if p.BirthDate.IsZero() {
		return &ValidationError{Field: "birthDate", Reason: "생년월일을 입력해 주세요"}
	}
	if p.BirthTime != "" {
		if _, err := time.Parse(BirthTimeLayout, p.BirthTime); err != nil {
			return &ValidationError{Field: "birthTime", Reason: "시각은 HH:MM 형식이어야 합니다"}
		}
	}
	return nil
}

// Validate - 결과 단계 진입 조건 전체 검증
func (p Profile) Validate(catalog *Catalog) error {
	if err := p.ValidatePersonal(); err != nil {
		return err
	}
	traits := []struct {
		kind TraitKind
		id   string
	}{
		{TraitHair, p.Appearance.HairStyle},
		{TraitEye, p.Appearance.EyeStyle},
		{TraitOutfit, p.Appearance.OutfitStyle},
	}
	for _, tr := range traits {
		if tr.id == "" {
			return &ValidationError{Field: tr.kind.Field(), Reason: "외형을 선택해 주세요"}
		}
		if catalog != nil {
			if _, ok := catalog.Lookup(tr.kind, tr.id); !ok {
				return &ValidationError{Field: tr.kind.Field(), Reason: "알 수 없는 선택지입니다: " + tr.id}
			}
		}
	}
	return nil
}

// DisplayName - 결과 화면용 이름 (예: 홍길동 군)
func (p Profile) DisplayName() string {
	return p.Name + " " + p.Gender.Honorific()
}

// FortuneResult - 텍스트 생성 결과
type FortuneResult struct {
	Wealth string `json:"wealth"`
	Love   string `json:"love"`
	Health string `json:"health"`
	Advice string `json:"advice"`
}

// Valid - 네 항목 모두 비어 있지 않은지
func (r *FortuneResult) Valid() bool {
	if r == nil {
		return false
	}
	for _, s := range []string{r.Wealth, r.Love, r.Health, r.Advice} {
		if strings.TrimSpace(s) == "" {
			return false
		}
	}
	return true
}

// MoodCategory - 초상화 배경을 고르는 분위기
type MoodCategory string

const (
	MoodLove    MoodCategory = "love"
	MoodWealth  MoodCategory = "wealth"
	MoodHealth  MoodCategory = "health"
	MoodNeutral MoodCategory = "neutral"
)

// Mood - 분류 결과와 이긴 점수
type Mood struct {
	Category MoodCategory `json:"category"`
	Score    int          `json:"score"`
}

// RequestKind - 생성 요청 종류
type RequestKind string

const (
	RequestText  RequestKind = "text"
	RequestImage RequestKind = "image"
)

// SchemaField - 응답 스키마 필드 (모두 필수 문자열)
type SchemaField struct {
	Name        string
	Description string
}

// GenerationRequest - 생성 서비스에 넘기는 요청 서술자 (시도마다 새로 만든다)
type GenerationRequest struct {
	Kind              RequestKind
	Prompt            string
	SystemInstruction string
	Schema            []SchemaField
	AspectRatio       string
}

// InlineImage - 생성 응답에 포함된 이미지
type InlineImage struct {
	Data     []byte
	MIMEType string
}

// Portrait - 결과 화면 초상화 (인라인 이미지 또는 대체 주소)
type Portrait struct {
	URL         string `json:"url"`
	Data        []byte `json:"-"`
	MIMEType    string `json:"mimeType,omitempty"`
	Placeholder bool   `json:"placeholder"`
}

// Artifact - 생성 완료 결과물
type Artifact struct {
	Fortune  FortuneResult `json:"fortune"`
	Mood     Mood          `json:"mood"`
	Portrait Portrait      `json:"portrait"`
}
