package fortune

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

var fencedJSON = regexp.MustCompile("(?s)^```(?:json)?\\s*(.*?)\\s*```$")

// ParseFortune - 텍스트 응답을 네 항목 결과로 변환
// 항목 누락, 빈 값, 문자열이 아닌 값은 모두 실패다.
func ParseFortune(body string) (*FortuneResult, error) {
	raw := strings.TrimSpace(body)
	if m := fencedJSON.FindStringSubmatch(raw); m != nil {
		raw = m[1]
	}
	if raw == "" {
		return nil, &GenerationError{Stage: StageParse, Err: fmt.Errorf("empty response body")}
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &fields); err != nil {
		return nil, &GenerationError{Stage: StageParse, Err: err}
	}

	values := make(map[string]string, len(FortuneSchema))
	for _, f := range FortuneSchema {
		msg, ok := fields[f.Name]
		if !ok {
			return nil, &GenerationError{Stage: StageSchema, Err: fmt.Errorf("missing field %q", f.Name)}
		}
		var s string
		if err := json.Unmarshal(msg, &s); err != nil {
			return nil, &GenerationError{Stage: StageSchema, Err: fmt.Errorf("field %q is not a string", f.Name)}
		}
		s = strings.TrimSpace(s)
		if s == "" {
			return nil, &GenerationError{Stage: StageSchema, Err: fmt.Errorf("field %q is empty", f.Name)}
		}
		values[f.Name] = s
	}

	return &FortuneResult{
		Wealth: values["wealth"],
		Love:   values["love"],
		Health: values["health"],
		Advice: values["advice"],
	}, nil
}
