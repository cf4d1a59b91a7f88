// ABOUTME: Probing and downscaling for images attached to prompts
// ABOUTME: CatmullRom interpolation; JPEG re-encode when PNG exceeds the byte limit

package imageutil

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"

	_ "image/gif"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// Attachment limits applied before a prompt is dispatched.
const (
	MaxDimension = 1568
	MaxBytes     = 4 * 1024 * 1024
)

// Info describes a probed image.
type Info struct {
	Mime   string
	Width  int
	Height int
}

// Probe reads the mime type and dimensions from data without a full
// decode.
func Probe(data []byte) (Info, error) {
	mime := DetectMime(data)
	if mime == "application/octet-stream" {
		return Info{}, fmt.Errorf("unrecognized image format")
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return Info{}, fmt.Errorf("reading image header: %w", err)
	}
	return Info{Mime: mime, Width: cfg.Width, Height: cfg.Height}, nil
}

// Downscale shrinks data to fit MaxDimension and MaxBytes, returning
// the (possibly re-encoded) bytes and resulting mime type. Data already
// within both limits passes through untouched.
func Downscale(data []byte) ([]byte, string, error) {
	info, err := Probe(data)
	if err != nil {
		return nil, "", err
	}
	if info.Width <= MaxDimension && info.Height <= MaxDimension && len(data) <= MaxBytes {
		return data, info.Mime, nil
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("decoding image: %w", err)
	}

	w, h := fit(info.Width, info.Height, MaxDimension)
	out, mime, err := encode(scale(img, w, h))
	if err != nil {
		return nil, "", err
	}
	if len(out) <= MaxBytes {
		return out, mime, nil
	}

	for _, factor := range []float64{0.75, 0.5, 0.25} {
		sw := max(int(float64(w)*factor), 1)
		sh := max(int(float64(h)*factor), 1)
		out, mime, err = encode(scale(img, sw, sh))
		if err != nil {
			return nil, "", err
		}
		if len(out) <= MaxBytes {
			return out, mime, nil
		}
	}
	return out, mime, nil
}

// DetectMime identifies an image format from magic bytes.
func DetectMime(data []byte) string {
	switch {
	case len(data) >= 4 && data[0] == 0x89 && data[1] == 'P' && data[2] == 'N' && data[3] == 'G':
		return "image/png"
	case len(data) >= 2 && data[0] == 0xFF && data[1] == 0xD8:
		return "image/jpeg"
	case len(data) >= 3 && data[0] == 'G' && data[1] == 'I' && data[2] == 'F':
		return "image/gif"
	case len(data) >= 12 && string(data[0:4]) == "RIFF" && string(data[8:12]) == "WEBP":
		return "image/webp"
	default:
		return "application/octet-stream"
	}
}

// fit shrinks w x h to fit within maxDim preserving aspect ratio.
func fit(w, h, maxDim int) (int, int) {
	if w <= maxDim && h <= maxDim {
		return w, h
	}
	if w >= h {
		return maxDim, h * maxDim / w
	}
	return w * maxDim / h, maxDim
}

func scale(src image.Image, w, h int) image.Image {
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Over, nil)
	return dst
}

// encode tries PNG first, then JPEG at decreasing quality.
func encode(img image.Image) ([]byte, string, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, "", fmt.Errorf("encoding PNG: %w", err)
	}
	if buf.Len() <= MaxBytes {
		return buf.Bytes(), "image/png", nil
	}

	for _, q := range []int{85, 70, 55, 40} {
		buf.Reset()
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: q}); err != nil {
			return nil, "", fmt.Errorf("encoding JPEG: %w", err)
		}
		if buf.Len() <= MaxBytes {
			return buf.Bytes(), "image/jpeg", nil
		}
	}
	return buf.Bytes(), "image/jpeg", nil
}
