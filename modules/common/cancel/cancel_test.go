package cancel

import (
	"context"
	"testing"
)

func TestToken(t *testing.T) {
	t.Run("생성 직후 유효", func(t *testing.T) {
		tok := NewToken(context.Background())
		defer tok.Close()
		if !tok.Alive() {
			t.Fatal("new token is not alive")
		}
		if CheckBeforeApply(tok) {
			t.Error("CheckBeforeApply() = true for live token")
		}
		if CheckBeforeStage(tok.Context(), "text") {
			t.Error("CheckBeforeStage() = true for live token")
		}
	})

	t.Run("Close 후 무효", func(t *testing.T) {
		tok := NewToken(context.Background())
		tok.Close()
		tok.Close()
		if tok.Alive() {
			t.Fatal("closed token is alive")
		}
		if !CheckBeforeApply(tok) {
			t.Error("CheckBeforeApply() = false for closed token")
		}
		if !CheckBeforeStage(tok.Context(), "image") {
			t.Error("CheckBeforeStage() = false for closed token")
		}
	})

	t.Run("부모 취소 전파", func(t *testing.T) {
		parent, cancel := context.WithCancel(context.Background())
		tok := NewToken(parent)
		cancel()
		if tok.Alive() {
			t.Error("token alive after parent cancel")
		}
	})

	t.Run("토큰마다 고유 ID", func(t *testing.T) {
		a, b := NewToken(context.Background()), NewToken(context.Background())
		defer a.Close()
		defer b.Close()
		if a.ID() == b.ID() {
			t.Error("tokens share an id")
		}
	})
}
