package fortune

// TraitKind - 외형 항목 종류
type TraitKind string

const (
	TraitHair   TraitKind = "hair"
	TraitEye    TraitKind = "eye"
	TraitOutfit TraitKind = "outfit"
)

// Field - 프로필 필드 이름
func (k TraitKind) Field() string {
	switch k {
	case TraitHair:
		return "appearance.hairStyle"
	case TraitEye:
		return "appearance.eyeStyle"
	case TraitOutfit:
		return "appearance.outfitStyle"
	}
	return "appearance"
}

// Option - 카탈로그 선택지
type Option struct {
	ID          string `json:"id"`
	Label       string `json:"label"`
	Description string `json:"description"`
}

// Catalog - 외형 선택지 조회 테이블 (생성 후 변경하지 않음)
type Catalog struct {
	kinds map[TraitKind][]Option
	index map[TraitKind]map[string]Option
}

// NewCatalog - 종류별 선택지로 카탈로그 생성
func NewCatalog(options map[TraitKind][]Option) *Catalog {
	c := &Catalog{
		kinds: make(map[TraitKind][]Option, len(options)),
		index: make(map[TraitKind]map[string]Option, len(options)),
	}
	for kind, opts := range options {
		list := make([]Option, len(opts))
		copy(list, opts)
		c.kinds[kind] = list

		idx := make(map[string]Option, len(opts))
		for _, o := range opts {
			idx[o.ID] = o
		}
		c.index[kind] = idx
	}
	return c
}

// Lookup - id로 선택지 조회
func (c *Catalog) Lookup(kind TraitKind, id string) (Option, bool) {
	o, ok := c.index[kind][id]
	return o, ok
}

// Label - id → 표시 이름
func (c *Catalog) Label(kind TraitKind, id string) (string, bool) {
	o, ok := c.Lookup(kind, id)
	return o.Label, ok
}

// Description - id → 상세 묘사
func (c *Catalog) Description(kind TraitKind, id string) (string, bool) {
	o, ok := c.Lookup(kind, id)
	return o.Description, ok
}

// Options - 종류별 선택지 사본
func (c *Catalog) Options(kind TraitKind) []Option {
	list := make([]Option, len(c.kinds[kind]))
	copy(list, c.kinds[kind])
	return list
}

// DefaultCatalog - 기본 외형 카탈로그
func DefaultCatalog() *Catalog {
	return NewCatalog(map[TraitKind][]Option{
		TraitHair: {
			{ID: "short_neat", Label: "단정한 숏컷", Description: "귀가 드러나는 짧고 깔끔하게 정돈된 머리"},
			{ID: "long_straight", Label: "긴 생머리", Description: "허리까지 곧게 떨어지는 윤기 나는 긴 머리"},
			{ID: "wavy_perm", Label: "웨이브 펌", Description: "어깨선에서 부드럽게 물결치는 굵은 웨이브"},
			{ID: "natural_layer", Label: "내추럴 레이어드", Description: "층을 낸 가벼운 질감의 자연스러운 중단발"},
			{ID: "two_block", Label: "투블럭", Description: "옆과 뒤를 짧게 밀고 윗머리를 내린 투블럭 컷"},
			{ID: "ponytail", Label: "포니테일", Description: "높게 묶어 올린 경쾌한 포니테일"},
			{ID: "braided", Label: "땋은 머리", Description: "한 갈래로 길게 땋아 내린 머리"},
			{ID: "buzz_cut", Label: "반삭 스타일", Description: "두피가 비칠 만큼 짧게 민 반삭"},
		},
		TraitEye: {
			{ID: "cat_eye", Label: "고양이상", Description: "눈꼬리가 살짝 올라간 도도하고 날렵한 눈매"},
			{ID: "puppy_eye", Label: "강아지상", Description: "눈꼬리가 처진 순하고 동그란 눈매"},
			{ID: "sharp_eye", Label: "날카로운 눈매", Description: "가늘고 길게 찢어진 카리스마 있는 눈매"},
			{ID: "big_eye", Label: "크고 맑은 눈", Description: "또렷한 쌍꺼풀에 크고 투명한 눈동자"},
			{ID: "tired_eye", Label: "나른한 눈매", Description: "반쯤 내려온 눈꺼풀의 무심하고 나른한 눈빛"},
			{ID: "smiling_eye", Label: "웃는 눈매", Description: "반달처럼 휘어지는 웃는 눈"},
			{ID: "sparkling_eye", Label: "반짝이는 눈", Description: "별빛이 맺힌 듯 반짝이는 눈동자"},
			{ID: "monolid", Label: "매력적인 무쌍", Description: "쌍꺼풀 없이 길고 시원한 무쌍 눈매"},
		},
		TraitOutfit: {
			{ID: "modern_chic", Label: "모던 시크", Description: "검은 톤의 테일러드 재킷과 슬림한 팬츠"},
			{ID: "street_hip", Label: "스트릿 힙합", Description: "오버사이즈 후드티와 카고 팬츠, 볼캡"},
			{ID: "casual_daily", Label: "캐주얼 데일리", Description: "니트 스웨터와 청바지의 편안한 일상복"},
			{ID: "formal_suit", Label: "포멀 수트", Description: "넥타이를 맨 각 잡힌 정장 수트"},
			{ID: "vintage_retro", Label: "빈티지 레트로", Description: "체크 셔츠와 하이웨이스트 바지의 복고풍 차림"},
			{ID: "sporty_look", Label: "스포티 룩", Description: "트레이닝 저지와 러닝화의 활동적인 차림"},
			{ID: "romantic_look", Label: "로맨틱 룩", Description: "레이스와 프릴이 달린 부드러운 파스텔 톤 의상"},
			{ID: "minimal_look", Label: "미니멀 룩", Description: "무채색 셔츠와 단순한 실루엣의 절제된 의상"},
		},
	})
}
