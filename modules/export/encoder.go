package export

import (
	"image"

	"fortune-canvas-server/modules/common/utils"
)

// WebPEncoder - 손실 WebP 인코딩
type WebPEncoder struct {
	Quality float32
}

func (e WebPEncoder) Encode(img image.Image) (Blob, error) {
	quality := e.Quality
	if quality <= 0 || quality > 100 {
		quality = 90
	}
	data, err := utils.EncodeWebP(img, quality)
	if err != nil {
		return Blob{}, err
	}
	return Blob{Data: data, MIMEType: "image/webp", Ext: "webp"}, nil
}

// PNGEncoder - 무손실 PNG 인코딩
type PNGEncoder struct{}

func (PNGEncoder) Encode(img image.Image) (Blob, error) {
	data, err := utils.EncodePNG(img)
	if err != nil {
		return Blob{}, err
	}
	return Blob{Data: data, MIMEType: "image/png", Ext: "png"}, nil
}
