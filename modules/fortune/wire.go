package fortune

import (
	"strings"
	"time"
)

// ProfilePayload - 개인정보 입력 JSON (생략한 필드는 기존 값 유지)
type ProfilePayload struct {
	Name      *string `json:"name,omitempty"`
	Gender    *string `json:"gender,omitempty"`
	BirthDate *string `json:"birthDate,omitempty"`
	BirthTime *string `json:"birthTime,omitempty"`
}

// AppearancePayload - 외형 입력 JSON
type AppearancePayload struct {
	HairStyle   *string `json:"hairStyle,omitempty"`
	EyeStyle    *string `json:"eyeStyle,omitempty"`
	OutfitStyle *string `json:"outfitStyle,omitempty"`
}

// ToUpdate - 부분 갱신으로 변환. 날짜 형식 오류는 ValidationError
func (p ProfilePayload) ToUpdate() (ProfileUpdate, error) {
	u := ProfileUpdate{Name: p.Name, BirthTime: p.BirthTime}
	if p.Gender != nil {
		g := Gender(strings.ToLower(strings.TrimSpace(*p.Gender)))
		u.Gender = &g
	}
	if p.BirthDate != nil {
		raw := strings.TrimSpace(*p.BirthDate)
		var d time.Time
		if raw != "" {
			parsed, err := time.Parse(BirthDateLayout, raw)
			if err != nil {
				return ProfileUpdate{}, &ValidationError{Field: "birthDate", Reason: "생년월일은 YYYY-MM-DD 형식이어야 합니다"}
			}
			d = parsed
		}
		u.BirthDate = &d
	}
	return u, nil
}

func (p AppearancePayload) ToUpdate() AppearanceUpdate {
	return AppearanceUpdate{HairStyle: p.HairStyle, EyeStyle: p.EyeStyle, OutfitStyle: p.OutfitStyle}
}

// ProfileView - 클라이언트에 돌려주는 프로필
type ProfileView struct {
	Name        string     `json:"name"`
	DisplayName string     `json:"displayName,omitempty"`
	Gender      Gender     `json:"gender"`
	BirthDate   string     `json:"birthDate"`
	BirthTime   string     `json:"birthTime,omitempty"`
	Appearance  Appearance `json:"appearance"`
}

// View - 직렬화용 프로필
func (p Profile) View() ProfileView {
	v := ProfileView{
		Name:       p.Name,
		Gender:     p.Gender,
		BirthTime:  p.BirthTime,
		Appearance: p.Appearance,
	}
	if p.Name != "" {
		v.DisplayName = p.DisplayName()
	}
	if !p.BirthDate.IsZero() {
		v.BirthDate = p.BirthDate.Format(BirthDateLayout)
	}
	return v
}
