package export

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"golang.org/x/image/font"

	"fortune-canvas-server/modules/common/utils"
	"fortune-canvas-server/modules/fortune"
)

func solidPNG(t *testing.T, c color.Color) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			img.Set(x, y, c)
		}
	}
	data, err := utils.EncodePNG(img)
	if err != nil {
		t.Fatalf("EncodePNG: %v", err)
	}
	return data
}

func newRasterizer(t *testing.T, client *http.Client) *CardRasterizer {
	t.Helper()
	r, err := NewCardRasterizer(client, nil)
	if err != nil {
		t.Fatalf("NewCardRasterizer: %v", err)
	}
	return r
}

// inked - 영역 안에 배경과 다른 픽셀이 있는지
func inked(img image.Image, rect image.Rectangle, bg color.Color) bool {
	want := color.RGBAModel.Convert(bg)
	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		for x := rect.Min.X; x < rect.Max.X; x++ {
			if color.RGBAModel.Convert(img.At(x, y)) != want {
				return true
			}
		}
	}
	return false
}

func TestCardRasterizer(t *testing.T) {
	red := color.RGBA{R: 0xff, A: 0xff}
	r := newRasterizer(t, nil)

	t.Run("배율과 불투명 배경", func(t *testing.T) {
		v := testView()
		v.Artifact.Portrait = fortune.Portrait{Data: solidPNG(t, red), MIMEType: "image/png"}

		img, err := r.Rasterize(context.Background(), v, 2, nil)
		if err != nil {
			t.Fatalf("Rasterize() error = %v", err)
		}
		if b := img.Bounds(); b.Dx() != cardWidth*2 || b.Dy() != cardHeight*2 {
			t.Errorf("bounds = %v, want %dx%d", b, cardWidth*2, cardHeight*2)
		}
		if _, _, _, a := img.At(0, 0).RGBA(); a != 0xffff {
			t.Error("corner pixel is not opaque")
		}
		center := image.Pt((portraitLeft+portraitSize/2)*2, (portraitTop+portraitSize/2)*2)
		if got := color.RGBAModel.Convert(img.At(center.X, center.Y)); got != red {
			t.Errorf("portrait center = %v, want red", got)
		}
	})

	t.Run("data URL 초상화", func(t *testing.T) {
		v := testView()
		v.Artifact.Portrait = fortune.Portrait{URL: utils.DataURL("image/png", solidPNG(t, red))}
		if _, err := r.Rasterize(context.Background(), v, 1, nil); err != nil {
			t.Fatalf("Rasterize() error = %v", err)
		}
	})

	t.Run("대체 이미지 URL을 내려받음", func(t *testing.T) {
		var hits int
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			hits++
			w.Header().Set("Content-Type", "image/png")
			_, _ = w.Write(solidPNG(t, red))
		}))
		defer srv.Close()

		v := testView()
		v.Artifact.Portrait = fortune.Portrait{URL: srv.URL + "/민준/400/400", Placeholder: true}
		if _, err := newRasterizer(t, srv.Client()).Rasterize(context.Background(), v, 1, nil); err != nil {
			t.Fatalf("Rasterize() error = %v", err)
		}
		if hits != 1 {
			t.Errorf("hits = %d, want 1", hits)
		}
	})

	t.Run("초상화가 없어도 카드는 생성", func(t *testing.T) {
		if _, err := r.Rasterize(context.Background(), testView(), 1, nil); err != nil {
			t.Errorf("Rasterize() error = %v", err)
		}
	})

	t.Run("제목과 운세 텍스트를 그림", func(t *testing.T) {
		v := View{
			Profile: fortune.Profile{Name: "Minjun", Gender: fortune.GenderMale},
			Artifact: fortune.Artifact{
				Fortune: fortune.FortuneResult{
					Wealth: "Money flows in this year.",
					Love:   "A new bond is near.",
					Health: "Rest well and sleep early.",
					Advice: "The kite rises against the wind.",
				},
				Mood: fortune.Mood{Category: fortune.MoodLove},
			},
		}
		img, err := r.Rasterize(context.Background(), v, 1, nil)
		if err != nil {
			t.Fatalf("Rasterize() error = %v", err)
		}

		header := image.Rect(0, 0, cardWidth, portraitTop)
		if !inked(img, header, DefaultBackground) {
			t.Error("title area is empty")
		}
		body := image.Rect(0, bandTop+bandHeight, cardWidth, cardHeight)
		if !inked(img, body, DefaultBackground) {
			t.Error("fortune text area is empty")
		}
	})

	t.Run("투명 배경 거부", func(t *testing.T) {
		if _, err := r.Rasterize(context.Background(), testView(), 1, color.RGBA{}); err == nil {
			t.Error("expected error for transparent background")
		}
	})
}

func TestPortraitDownloadLimit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write(bytes.Repeat([]byte{0}, maxPortraitBytes+1))
	}))
	defer srv.Close()

	r := newRasterizer(t, srv.Client())
	if _, err := r.download(context.Background(), srv.URL); err == nil {
		t.Error("expected error for oversized portrait")
	}
}

func TestWrapText(t *testing.T) {
	f, err := LoadFont("")
	if err != nil {
		t.Fatalf("LoadFont: %v", err)
	}
	face, err := newFace(f, bodySize, 1)
	if err != nil {
		t.Fatalf("newFace: %v", err)
	}
	defer face.Close()

	long := strings.Repeat("fortune ", 40)

	t.Run("너비 안에서 줄바꿈", func(t *testing.T) {
		lines := wrapText(face, long, 120, 0)
		if len(lines) < 2 {
			t.Fatalf("lines = %d, want wrapped", len(lines))
		}
		for _, l := range lines {
			if w := font.MeasureString(face, l).Ceil(); w > 120 {
				t.Errorf("line %q width %d > 120", l, w)
			}
		}
	})

	t.Run("최대 줄 수 초과는 말줄임", func(t *testing.T) {
		lines := wrapText(face, long, 120, 2)
		if len(lines) != 2 || !strings.HasSuffix(lines[1], "...") {
			t.Errorf("lines = %q", lines)
		}
	})

	t.Run("짧은 텍스트는 그대로", func(t *testing.T) {
		if lines := wrapText(face, " short ", 120, 2); len(lines) != 1 || lines[0] != "short" {
			t.Errorf("lines = %q", lines)
		}
	})
}

func TestLoadFont(t *testing.T) {
	if _, err := LoadFont(""); err != nil {
		t.Errorf("LoadFont(\"\") error = %v", err)
	}
	if _, err := LoadFont(filepath.Join(t.TempDir(), "missing.ttf")); err == nil {
		t.Error("expected error for missing font")
	}
	bad := filepath.Join(t.TempDir(), "bad.ttf")
	if err := os.WriteFile(bad, []byte("not a font"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFont(bad); err == nil {
		t.Error("expected error for invalid font")
	}
}

func TestEncoders(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))

	b, err := PNGEncoder{}.Encode(img)
	if err != nil || b.MIMEType != "image/png" || len(b.Data) == 0 {
		t.Errorf("PNGEncoder = %+v, %v", b.MIMEType, err)
	}

	b, err = WebPEncoder{Quality: 90}.Encode(img)
	if err != nil || b.Ext != "webp" || len(b.Data) == 0 {
		t.Errorf("WebPEncoder = %+v, %v", b.MIMEType, err)
	}
	if _, err := utils.DecodeImage(b.Data); err != nil {
		t.Errorf("encoded WebP does not decode: %v", err)
	}
}
