// ABOUTME: Tests mime detection, probing, and downscale behavior
// ABOUTME: Test images are generated in memory with the stdlib encoders

package imageutil

import (
	"bytes"
	"image"
	"image/png"
	"testing"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h))); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestDetectMime(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want string
	}{
		{"png", []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A}, "image/png"},
		{"jpeg", []byte{0xFF, 0xD8, 0xFF, 0xE0}, "image/jpeg"},
		{"gif", []byte("GIF89a"), "image/gif"},
		{"webp", []byte("RIFF\x00\x00\x00\x00WEBPVP8 "), "image/webp"},
		{"text", []byte("hello world"), "application/octet-stream"},
		{"empty", nil, "application/octet-stream"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DetectMime(tt.data); got != tt.want {
				t.Errorf("DetectMime = %q; want %q", got, tt.want)
			}
		})
	}
}

func TestProbe(t *testing.T) {
	data := pngBytes(t, 320, 200)
	info, err := Probe(data)
	if err != nil {
		t.Fatalf("Probe = %v; want nil", err)
	}
	if info.Mime != "image/png" || info.Width != 320 || info.Height != 200 {
		t.Errorf("info = %+v; want png 320x200", info)
	}
}

func TestProbeRejectsNonImage(t *testing.T) {
	if _, err := Probe([]byte("not an image")); err == nil {
		t.Error("Probe(text) = nil; want error")
	}
}

func TestFit(t *testing.T) {
	tests := []struct {
		name         string
		w, h, maxDim int
		wantW, wantH int
	}{
		{"within limits", 800, 600, 1568, 800, 600},
		{"wide", 3136, 1568, 1568, 1568, 784},
		{"tall", 1000, 4000, 1568, 392, 1568},
		{"square oversized", 2000, 2000, 1568, 1568, 1568},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, h := fit(tt.w, tt.h, tt.maxDim)
			if w != tt.wantW || h != tt.wantH {
				t.Errorf("fit(%d, %d) = %dx%d; want %dx%d", tt.w, tt.h, w, h, tt.wantW, tt.wantH)
			}
		})
	}
}

func TestDownscalePassThrough(t *testing.T) {
	data := pngBytes(t, 100, 100)
	out, mime, err := Downscale(data)
	if err != nil {
		t.Fatalf("Downscale = %v; want nil", err)
	}
	if !bytes.Equal(out, data) {
		t.Error("small image was re-encoded; want pass-through")
	}
	if mime != "image/png" {
		t.Errorf("mime = %q; want image/png", mime)
	}
}

func TestDownscaleShrinksOversized(t *testing.T) {
	data := pngBytes(t, MaxDimension+432, 400)
	out, mime, err := Downscale(data)
	if err != nil {
		t.Fatalf("Downscale = %v; want nil", err)
	}
	if mime != "image/png" {
		t.Errorf("mime = %q; want image/png", mime)
	}
	info, err := Probe(out)
	if err != nil {
		t.Fatalf("Probe(downscaled) = %v", err)
	}
	if info.Width > MaxDimension || info.Height > MaxDimension {
		t.Errorf("downscaled to %dx%d; want within %d", info.Width, info.Height, MaxDimension)
	}
}
