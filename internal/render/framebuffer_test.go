package render

import (
	"image/color"
	"testing"
)

func pixelAt(fb *FrameBuffer, x, y int) color.RGBA {
	i := (y*fb.W + x) * 4
	return color.RGBA{fb.Pixels[i], fb.Pixels[i+1], fb.Pixels[i+2], fb.Pixels[i+3]}
}

func TestFillRectClipsToBuffer(t *testing.T) {
	fb := NewFrameBuffer(4, 4)
	fb.FillRect(-2, -2, 4, 4, color.RGBA{R: 255, A: 255})

	if got := pixelAt(fb, 0, 0); got.R != 255 {
		t.Fatalf("expected fill at origin, got %#v", got)
	}
	if got := pixelAt(fb, 2, 2); got.R != 0 {
		t.Fatalf("fill leaked outside clipped rect: %#v", got)
	}

	fb.FillRect(10, 10, 5, 5, color.RGBA{G: 255, A: 255})
	fb.FillRect(0, 0, -1, 3, color.RGBA{G: 255, A: 255})
	if got := pixelAt(fb, 3, 3); got.G != 0 {
		t.Fatalf("out-of-range fill wrote pixels: %#v", got)
	}
}

func TestNewFrameBufferClampsDimensions(t *testing.T) {
	fb := NewFrameBuffer(0, -3)
	if fb.W != 1 || fb.H != 1 || len(fb.Pixels) != 4 {
		t.Fatalf("expected 1x1 buffer, got %dx%d (%d bytes)", fb.W, fb.H, len(fb.Pixels))
	}
}

func TestBlendRectSrcOver(t *testing.T) {
	fb := NewFrameBuffer(2, 1)
	fb.Clear(color.RGBA{R: 100, G: 100, B: 100, A: 255})
	fb.BlendRect(0, 0, 1, 1, color.RGBA{R: 200, A: 128})

	got := pixelAt(fb, 0, 0)
	// (200*128 + 100*127) / 255 = 150
	if got.R != 150 {
		t.Fatalf("blended red %d, want 150", got.R)
	}
	if got.A != 255 {
		t.Fatalf("opaque dst must stay opaque, alpha %d", got.A)
	}
	if untouched := pixelAt(fb, 1, 0); untouched.R != 100 {
		t.Fatalf("blend leaked past rect: %#v", untouched)
	}
}

func TestBlendRectEdges(t *testing.T) {
	fb := NewFrameBuffer(2, 2)
	fb.Clear(color.RGBA{B: 50, A: 255})

	fb.BlendRect(0, 0, 2, 2, color.RGBA{R: 90})
	if got := pixelAt(fb, 0, 0); got != (color.RGBA{B: 50, A: 255}) {
		t.Fatalf("zero-alpha blend changed pixels: %#v", got)
	}

	fb.BlendRect(0, 0, 2, 2, color.RGBA{R: 90, A: 255})
	if got := pixelAt(fb, 1, 1); got != (color.RGBA{R: 90, A: 255}) {
		t.Fatalf("opaque blend should replace: %#v", got)
	}
}

func TestStrokeRectOutlinesOnly(t *testing.T) {
	fb := NewFrameBuffer(5, 5)
	fb.StrokeRect(0, 0, 5, 5, 1, color.RGBA{R: 255, A: 255})

	if got := pixelAt(fb, 0, 2); got.R != 255 {
		t.Fatalf("left edge missing: %#v", got)
	}
	if got := pixelAt(fb, 4, 2); got.R != 255 {
		t.Fatalf("right edge missing: %#v", got)
	}
	if got := pixelAt(fb, 2, 2); got.R != 0 {
		t.Fatalf("interior must stay clear: %#v", got)
	}
}
