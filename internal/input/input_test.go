package input

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type recorder struct {
	pans       []([2]float64)
	zooms      int
	zoomFactor float64
	selected   []string
	deselects  int
	dragStarts []string
	dragMoves  int
	dragEnds   []string
	resizes    int
	resizeEnds int
	drawStarts int
	drawEraser bool
	drawMoves  int
	drawEnds   int
	undos      int
	redos      int
	modes      []Mode
	saves      int
}

func (r *recorder) callbacks() Callbacks {
	return Callbacks{
		Pan:    func(dx, dy float64) { r.pans = append(r.pans, [2]float64{dx, dy}) },
		ZoomAt: func(sx, sy, f float64) { r.zooms++; r.zoomFactor = f },
		SelectItem: func(id string) {
			r.selected = append(r.selected, id)
		},
		Deselect:  func() { r.deselects++ },
		DragStart: func(id string) { r.dragStarts = append(r.dragStarts, id) },
		DragMove:  func(id string, dx, dy float64) { r.dragMoves++ },
		DragEnd:   func(id string) { r.dragEnds = append(r.dragEnds, id) },
		ResizeMove: func(dx, dy float64) {
			r.resizes++
		},
		ResizeEnd: func() { r.resizeEnds++ },
		DrawStart: func(sx, sy float64, eraser bool) {
			r.drawStarts++
			r.drawEraser = eraser
		},
		DrawMove:    func(sx, sy float64) { r.drawMoves++ },
		DrawEnd:     func() { r.drawEnds++ },
		Undo:        func() { r.undos++ },
		Redo:        func() { r.redos++ },
		ModeChanged: func(m Mode) { r.modes = append(r.modes, m) },
		SaveHint:    func() { r.saves++ },
	}
}

func TestClickWithoutMovementIsPureSelection(t *testing.T) {
	r := &recorder{}
	h := NewHandler(r.callbacks())

	h.HandlePointerDown(PointerDown{X: 10, Y: 10, Target: TargetItem, ItemID: "a"})
	h.HandlePointerUp(PointerUp{X: 10, Y: 10})

	assert.Equal(t, []string{"a"}, r.selected)
	assert.Empty(t, r.dragStarts, "motionless click must not promote to drag")
	assert.Empty(t, r.dragEnds)
	assert.Equal(t, 1, r.saves)
}

func TestDragPromotesOnFirstMovement(t *testing.T) {
	r := &recorder{}
	h := NewHandler(r.callbacks())

	h.HandlePointerDown(PointerDown{X: 10, Y: 10, Target: TargetItem, ItemID: "a"})
	h.HandlePointerMove(PointerMove{X: 10, Y: 10})
	assert.Empty(t, r.dragStarts, "zero delta must not promote")

	h.HandlePointerMove(PointerMove{X: 14, Y: 11})
	h.HandlePointerMove(PointerMove{X: 18, Y: 12})
	h.HandlePointerUp(PointerUp{X: 18, Y: 12})

	assert.Equal(t, []string{"a"}, r.dragStarts)
	assert.Equal(t, 2, r.dragMoves)
	assert.Equal(t, []string{"a"}, r.dragEnds)
}

func TestEmptyCanvasClickDeselectsAndPans(t *testing.T) {
	r := &recorder{}
	h := NewHandler(r.callbacks())

	h.HandlePointerDown(PointerDown{X: 0, Y: 0, Target: TargetCanvas})
	h.HandlePointerMove(PointerMove{X: 5, Y: -3})
	h.HandlePointerUp(PointerUp{X: 5, Y: -3})

	assert.Equal(t, 1, r.deselects)
	assert.Equal(t, [][2]float64{{5, -3}}, [][2]float64(r.pans))
}

func TestMiddleButtonAlwaysPans(t *testing.T) {
	r := &recorder{}
	h := NewHandler(r.callbacks())
	h.SetMode(ModePen)

	h.HandlePointerDown(PointerDown{X: 0, Y: 0, Button: ButtonMiddle, Target: TargetCanvas})
	h.HandlePointerMove(PointerMove{X: 7, Y: 7})

	assert.Len(t, r.pans, 1)
	assert.Zero(t, r.drawStarts)
}

func TestPenModeDraws(t *testing.T) {
	r := &recorder{}
	h := NewHandler(r.callbacks())
	h.SetMode(ModePen)

	h.HandlePointerDown(PointerDown{X: 1, Y: 2, Target: TargetCanvas})
	h.HandlePointerMove(PointerMove{X: 3, Y: 4})
	h.HandlePointerMove(PointerMove{X: 5, Y: 6})
	h.HandlePointerUp(PointerUp{X: 5, Y: 6})

	assert.Equal(t, 1, r.drawStarts)
	assert.False(t, r.drawEraser)
	assert.Equal(t, 2, r.drawMoves)
	assert.Equal(t, 1, r.drawEnds)
}

func TestEraserModeFlagsEraser(t *testing.T) {
	r := &recorder{}
	h := NewHandler(r.callbacks())
	h.SetMode(ModeEraser)
	h.HandlePointerDown(PointerDown{Target: TargetCanvas})
	assert.True(t, r.drawEraser)
}

func TestPointerUpAlwaysEndsDraw(t *testing.T) {
	r := &recorder{}
	h := NewHandler(r.callbacks())
	h.HandlePointerUp(PointerUp{})
	assert.Equal(t, 1, r.drawEnds, "draw-end fires even with no interaction")
}

func TestChromeTargetsAreIgnored(t *testing.T) {
	r := &recorder{}
	h := NewHandler(r.callbacks())

	h.HandlePointerDown(PointerDown{Target: TargetChrome, ItemID: "a"})
	h.HandlePointerMove(PointerMove{X: 10, Y: 10})

	assert.Empty(t, r.selected)
	assert.Empty(t, r.pans)
	assert.Empty(t, r.dragStarts)
}

func TestMiddleButtonPansOverResizeHandle(t *testing.T) {
	r := &recorder{}
	h := NewHandler(r.callbacks())

	h.HandlePointerDown(PointerDown{X: 0, Y: 0, Button: ButtonMiddle, Target: TargetResizeHandle, ItemID: "a"})
	h.HandlePointerMove(PointerMove{X: 5, Y: 5})
	h.HandlePointerUp(PointerUp{X: 5, Y: 5})

	assert.Len(t, r.pans, 1)
	assert.Zero(t, r.resizes)
	assert.Zero(t, r.resizeEnds)
}

func TestResizeHandleRoutesMoves(t *testing.T) {
	r := &recorder{}
	h := NewHandler(r.callbacks())

	h.HandlePointerDown(PointerDown{X: 0, Y: 0, Target: TargetResizeHandle, ItemID: "a"})
	h.HandlePointerMove(PointerMove{X: 4, Y: 4})
	h.HandlePointerMove(PointerMove{X: 8, Y: 8})
	h.HandlePointerUp(PointerUp{X: 8, Y: 8})

	assert.Equal(t, 2, r.resizes)
	assert.Equal(t, 1, r.resizeEnds)
	assert.Empty(t, r.dragStarts)
}

func TestSpaceHoldOverridesAndRestoresMode(t *testing.T) {
	r := &recorder{}
	h := NewHandler(r.callbacks())
	h.SetMode(ModePen)

	h.HandleKeyDown(KeyDown{Key: KeySpace})
	assert.Equal(t, ModeHand, h.Mode())

	// Held space repeats must not clobber the saved mode.
	h.HandleKeyDown(KeyDown{Key: KeySpace})
	h.HandleKeyUp(KeyUp{Key: KeySpace})
	assert.Equal(t, ModePen, h.Mode())
}

func TestSpaceHeldPansInCursorMode(t *testing.T) {
	r := &recorder{}
	h := NewHandler(r.callbacks())

	h.HandleKeyDown(KeyDown{Key: KeySpace})
	h.HandlePointerDown(PointerDown{Target: TargetItem, ItemID: "a"})
	h.HandlePointerMove(PointerMove{X: 3, Y: 3})

	assert.Len(t, r.pans, 1)
	assert.Empty(t, r.selected)
}

func TestModeHotkeys(t *testing.T) {
	r := &recorder{}
	h := NewHandler(r.callbacks())

	h.HandleKeyDown(KeyDown{Key: KeyP})
	assert.Equal(t, ModePen, h.Mode())
	h.HandleKeyDown(KeyDown{Key: KeyE})
	assert.Equal(t, ModeEraser, h.Mode())
	h.HandleKeyDown(KeyDown{Key: KeyH})
	assert.Equal(t, ModeHand, h.Mode())
	h.HandleKeyDown(KeyDown{Key: KeyV})
	assert.Equal(t, ModeCursor, h.Mode())
}

func TestUndoRedoShortcuts(t *testing.T) {
	r := &recorder{}
	h := NewHandler(r.callbacks())

	h.HandleKeyDown(KeyDown{Key: KeyZ, Ctrl: true})
	h.HandleKeyDown(KeyDown{Key: KeyZ, Ctrl: true, Shift: true})
	h.HandleKeyDown(KeyDown{Key: KeyY, Ctrl: true})
	h.HandleKeyDown(KeyDown{Key: KeyZ}) // no modifier

	assert.Equal(t, 1, r.undos)
	assert.Equal(t, 2, r.redos)
}

func TestShortcutsSuppressedInTextFocus(t *testing.T) {
	r := &recorder{}
	h := NewHandler(r.callbacks())

	h.HandleKeyDown(KeyDown{Key: KeyZ, Ctrl: true, TextFocus: true})
	h.HandleKeyDown(KeyDown{Key: KeyP, TextFocus: true})

	assert.Zero(t, r.undos)
	assert.Equal(t, ModeCursor, h.Mode())
}

func TestWheelZoomAndPan(t *testing.T) {
	r := &recorder{}
	h := NewHandler(r.callbacks())

	h.HandleWheel(Wheel{X: 100, Y: 100, DeltaY: -3, DeltaMode: DeltaLine, Zoom: true})
	assert.Equal(t, 1, r.zooms)
	assert.Greater(t, r.zoomFactor, 1.0, "wheel up zooms in")

	h.HandleWheel(Wheel{DeltaX: 2, DeltaY: 5, DeltaMode: DeltaPixel})
	assert.Equal(t, [][2]float64{{-2, -5}}, [][2]float64(r.pans))
}

func TestWheelDeltaIsCapped(t *testing.T) {
	assert.Equal(t, 60.0, normalizeWheelDelta(100, DeltaPage))
	assert.Equal(t, -60.0, normalizeWheelDelta(-100, DeltaPage))
	assert.Equal(t, 32.0, normalizeWheelDelta(2, DeltaLine))
}
