package objectstore

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif" // decoder registration
	"image/jpeg"
	_ "image/png" // decoder registration
	"io"

	"github.com/nfnt/resize"
)

// Staff photo limits.
const (
	MaxPhotoSide   = 800
	PhotoQuality   = 85
	MaxUploadBytes = 10 << 20
	MaxPhotoPixels = 40_000_000
	PhotoExtension = ".jpg"
	PhotoMediaType = "image/jpeg"
)

// ErrNotAnImage is returned when an upload cannot be decoded.
var ErrNotAnImage = errors.New("upload is not a jpeg, png or gif image")

// NormalizePhoto decodes an uploaded image, shrinks it to fit within
// MaxPhotoSide×MaxPhotoSide keeping the aspect ratio, and re-encodes it as JPEG.
// Smaller images are re-encoded without upscaling. Images declaring more than
// MaxPhotoPixels are rejected from their header, before any pixel is decoded.
func NormalizePhoto(r io.Reader) (*bytes.Buffer, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxUploadBytes))
	if err != nil {
		return nil, fmt.Errorf("read photo: %w", err)
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotAnImage, err)
	}
	if int64(cfg.Width)*int64(cfg.Height) > MaxPhotoPixels {
		return nil, fmt.Errorf("%w: %dx%d exceeds %d pixels", ErrNotAnImage, cfg.Width, cfg.Height, MaxPhotoPixels)
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotAnImage, err)
	}
	thumb := resize.Thumbnail(MaxPhotoSide, MaxPhotoSide, img, resize.Lanczos3)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, thumb, &jpeg.Options{Quality: PhotoQuality}); err != nil {
		return nil, fmt.Errorf("encode photo: %w", err)
	}
	return &buf, nil
}
