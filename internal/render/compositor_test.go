package render

import (
	"image/color"
	"testing"

	"slate/pkg/slate"
)

func testPen() slate.Pen {
	return slate.Pen{Color: 0x1D4ED8FF, Size: 3, Opacity: 0.9}
}

func TestLiveStrokeLifecycle(t *testing.T) {
	c := NewCompositor(color.RGBA{R: 255, G: 255, B: 255, A: 255})

	if _, ok := c.FinishStroke(); ok {
		t.Fatal("finish without start must fail")
	}

	c.StartStroke("layer-1", slate.Point{X: 1, Y: 2}, testPen(), false)
	if !c.Drawing() {
		t.Fatal("expected a live stroke")
	}
	c.AddStrokePoint(slate.Point{X: 3, Y: 4})
	c.AddStrokePoint(slate.Point{X: 5, Y: 6})

	s, ok := c.FinishStroke()
	if !ok {
		t.Fatal("finish failed")
	}
	if len(s.Points) != 3 {
		t.Fatalf("expected 3 points, got %d", len(s.Points))
	}
	if s.IsEraser {
		t.Fatal("ink stroke flagged as eraser")
	}
	if s.LayerID != "layer-1" || s.Color != 0x1D4ED8FF || s.Size != 3 || s.Opacity != 0.9 {
		t.Fatalf("pen settings lost: %#v", s)
	}
	if s.ID == "" {
		t.Fatal("finished stroke needs an id")
	}
	if c.Drawing() {
		t.Fatal("live stroke must clear on finish")
	}
}

func TestCancelStrokeDiscards(t *testing.T) {
	c := NewCompositor(color.RGBA{})
	c.StartStroke("layer-1", slate.Point{}, testPen(), true)
	c.CancelStroke()
	if c.Drawing() {
		t.Fatal("cancel must clear the live stroke")
	}
	if _, ok := c.FinishStroke(); ok {
		t.Fatal("nothing to finish after cancel")
	}
}

func TestEraserFlagCarriesThrough(t *testing.T) {
	c := NewCompositor(color.RGBA{})
	c.StartStroke("layer-1", slate.Point{}, testPen(), true)
	s, ok := c.FinishStroke()
	if !ok || !s.IsEraser {
		t.Fatalf("eraser flag lost: %#v", s)
	}
}

func TestAddStrokePointWithoutLiveStrokeIsNoOp(t *testing.T) {
	c := NewCompositor(color.RGBA{})
	c.AddStrokePoint(slate.Point{X: 1})
	if c.Drawing() {
		t.Fatal("no stroke should exist")
	}
}

func TestResizeIgnoresNonPositiveDimensions(t *testing.T) {
	c := NewCompositor(color.RGBA{})
	c.Resize(800, 600, 2)
	c.Resize(0, 600, 2)
	c.Resize(800, -1, 2)
	if c.width != 800 || c.height != 600 || c.deviceScale != 2 {
		t.Fatalf("resize state corrupted: %dx%d @%v", c.width, c.height, c.deviceScale)
	}
	w, h := c.bufSize()
	if w != 1600 || h != 1200 {
		t.Fatalf("buffer size %dx%d", w, h)
	}
}

func TestStrokeScreenPointsAppliesViewAndDeviceScale(t *testing.T) {
	view := slate.View{X: 10, Y: 20, Scale: 2}
	pts := StrokeScreenPoints([]slate.Point{{X: 5, Y: 5}}, view, 2)
	// world 5 -> screen 5*2+10=20 -> device 40; y: 5*2+20=30 -> 60.
	if pts[0].X != 40 || pts[0].Y != 60 {
		t.Fatalf("unexpected mapping: %#v", pts[0])
	}
}
