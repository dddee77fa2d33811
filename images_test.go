package shopengine

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"
)

// testPNG renders a solid-color PNG of the given size.
func testPNG(t *testing.T, w, h int) *bytes.Buffer {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: 30, G: 120, B: 60, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode test png: %v", err)
	}
	return &buf
}

func TestProcessImageKeepsSmallSizes(t *testing.T) {
	src := testPNG(t, 640, 480)

	meta, data, err := processImage(src, "Product Photo.png")
	if err != nil {
		t.Fatalf("processImage failed: %v", err)
	}
	if meta.Width != 640 || meta.Height != 480 {
		t.Errorf("dimensions = %dx%d, want 640x480", meta.Width, meta.Height)
	}
	if meta.Filename != "product-photo.jpg" {
		t.Errorf("Filename = %q, want product-photo.jpg", meta.Filename)
	}
	if meta.OriginalName != "Product Photo.png" {
		t.Errorf("OriginalName = %q", meta.OriginalName)
	}
	if len(data) == 0 || meta.Size != len(data) {
		t.Errorf("Size = %d, data length = %d", meta.Size, len(data))
	}

	// Re-decode to confirm the output is a valid image.
	if _, _, err := image.Decode(bytes.NewReader(data)); err != nil {
		t.Errorf("output does not decode: %v", err)
	}
}

func TestProcessImageResizesWide(t *testing.T) {
	src := testPNG(t, 2400, 1200)

	meta, _, err := processImage(src, "banner.png")
	if err != nil {
		t.Fatalf("processImage failed: %v", err)
	}
	if meta.Width != maxImageWidth {
		t.Errorf("Width = %d, want %d", meta.Width, maxImageWidth)
	}
	if meta.Height != 600 {
		t.Errorf("Height = %d, want 600 (aspect preserved)", meta.Height)
	}
}

func TestProcessImageRejectsGarbage(t *testing.T) {
	if _, _, err := processImage(bytes.NewReader([]byte("not an image")), "x.jpg"); err == nil {
		t.Fatal("expected an error for undecodable input")
	}
}

func TestSlugifyFilename(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"IMG_0001.JPG", "img-0001"},
		{"Grüne Tee Fotos.png", "grune-tee-fotos"},
		{"photo.with.dots.png", "photo-with-dots"},
	}

	for _, tt := range tests {
		if got := slugifyFilename(tt.in); got != tt.want {
			t.Errorf("slugifyFilename(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
