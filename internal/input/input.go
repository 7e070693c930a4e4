// Package input is the pointer/keyboard state machine. It consumes
// synthetic events, tracks the active tool mode and the current
// interaction, and dispatches semantic operations through callbacks.
// It never touches the scene or the window layer directly, so the
// whole machine runs headless under test.
package input

import "math"

// Mode is the active tool.
type Mode uint8

const (
	ModeCursor Mode = iota
	ModeHand
	ModePen
	ModeEraser
)

func (m Mode) String() string {
	switch m {
	case ModeCursor:
		return "cursor"
	case ModeHand:
		return "hand"
	case ModePen:
		return "pen"
	case ModeEraser:
		return "eraser"
	}
	return "unknown"
}

type Button uint8

const (
	ButtonLeft Button = iota
	ButtonMiddle
	ButtonRight
)

// Target classifies what sits under the pointer at pointer-down.
type Target uint8

const (
	// TargetCanvas is empty drawing space.
	TargetCanvas Target = iota
	// TargetItem is a floating object's body.
	TargetItem
	// TargetResizeHandle is one of an object's resize grips.
	TargetResizeHandle
	// TargetChrome is any UI control: toolbar, panels, context menu,
	// or an actively edited note.
	TargetChrome
)

// WheelDeltaMode mirrors the three wheel delta units hosts report.
type WheelDeltaMode uint8

const (
	DeltaPixel WheelDeltaMode = iota
	DeltaLine
	DeltaPage
)

type PointerDown struct {
	X, Y   float64
	Button Button
	Target Target
	ItemID string
}

type PointerMove struct {
	X, Y float64
}

type PointerUp struct {
	X, Y float64
}

type Wheel struct {
	X, Y      float64
	DeltaX    float64
	DeltaY    float64
	DeltaMode WheelDeltaMode
	Zoom      bool // modifier held
}

// Key names the subset of keys the machine cares about.
type Key uint8

const (
	KeyNone Key = iota
	KeySpace
	KeyV
	KeyH
	KeyP
	KeyE
	KeyZ
	KeyY
)

type KeyDown struct {
	Key       Key
	Ctrl      bool
	Shift     bool
	TextFocus bool // focus is inside a text field or an edited note
}

type KeyUp struct {
	Key Key
}

// Callbacks is the machine's entire outgoing surface. Nil entries are
// skipped.
type Callbacks struct {
	Pan         func(dx, dy float64)
	ZoomAt      func(sx, sy, factor float64)
	SelectItem  func(id string)
	Deselect    func()
	DragStart   func(id string)
	DragMove    func(id string, dx, dy float64)
	DragEnd     func(id string)
	ResizeMove  func(dx, dy float64)
	ResizeEnd   func()
	DrawStart   func(sx, sy float64, eraser bool)
	DrawMove    func(sx, sy float64)
	DrawEnd     func()
	Undo        func()
	Redo        func()
	ModeChanged func(m Mode)
	SaveHint    func()
}

type interaction uint8

const (
	interactNone interaction = iota
	interactPan
	interactDrag
	interactResize
	interactDraw
)

const zoomIntensity = 0.01

type Handler struct {
	cb Callbacks

	mode      Mode
	prevMode  Mode
	spaceHeld bool

	active      interaction
	pendingItem string
	promoted    bool
	lastX       float64
	lastY       float64
}

func NewHandler(cb Callbacks) *Handler {
	return &Handler{cb: cb, mode: ModeCursor}
}

func (h *Handler) Mode() Mode {
	return h.mode
}

// SetMode switches the active tool and notifies.
func (h *Handler) SetMode(m Mode) {
	if h.mode == m {
		return
	}
	h.mode = m
	if h.cb.ModeChanged != nil {
		h.cb.ModeChanged(m)
	}
}

// Interacting reports whether a pan, drag, resize, or draw is active.
func (h *Handler) Interacting() bool {
	return h.active != interactNone || h.pendingItem != ""
}

func (h *Handler) HandlePointerDown(ev PointerDown) {
	h.lastX = ev.X
	h.lastY = ev.Y

	if ev.Target == TargetChrome {
		return
	}

	// Middle button pans regardless of mode or target.
	if ev.Button == ButtonMiddle || h.mode == ModeHand || h.spaceHeld {
		h.active = interactPan
		return
	}

	if ev.Target == TargetResizeHandle {
		// The object manager already recorded history and reported
		// resize-start; from here we only route moves.
		h.active = interactResize
		return
	}

	switch h.mode {
	case ModeCursor:
		if ev.Target == TargetItem && ev.ItemID != "" {
			// Drag is promoted lazily on first movement: a motionless
			// click stays a pure selection.
			h.pendingItem = ev.ItemID
			h.promoted = false
			if h.cb.SelectItem != nil {
				h.cb.SelectItem(ev.ItemID)
			}
			return
		}
		if h.cb.Deselect != nil {
			h.cb.Deselect()
		}
		h.active = interactPan
	case ModePen, ModeEraser:
		h.active = interactDraw
		if h.cb.DrawStart != nil {
			h.cb.DrawStart(ev.X, ev.Y, h.mode == ModeEraser)
		}
	}
}

func (h *Handler) HandlePointerMove(ev PointerMove) {
	dx := ev.X - h.lastX
	dy := ev.Y - h.lastY
	h.lastX = ev.X
	h.lastY = ev.Y

	switch h.active {
	case interactPan:
		if h.cb.Pan != nil {
			h.cb.Pan(dx, dy)
		}
	case interactResize:
		if h.cb.ResizeMove != nil {
			h.cb.ResizeMove(dx, dy)
		}
	case interactDraw:
		if h.cb.DrawMove != nil {
			h.cb.DrawMove(ev.X, ev.Y)
		}
	default:
		if h.pendingItem == "" {
			return
		}
		if !h.promoted {
			if dx == 0 && dy == 0 {
				return
			}
			h.promoted = true
			h.active = interactDrag
			if h.cb.DragStart != nil {
				h.cb.DragStart(h.pendingItem)
			}
		}
		if h.cb.DragMove != nil {
			h.cb.DragMove(h.pendingItem, dx, dy)
		}
	}
}

func (h *Handler) HandlePointerUp(ev PointerUp) {
	if h.active == interactDrag && h.cb.DragEnd != nil {
		h.cb.DragEnd(h.pendingItem)
	}
	if h.active == interactResize && h.cb.ResizeEnd != nil {
		h.cb.ResizeEnd()
	}
	// Always end any live stroke, even if the up event arrives in a
	// state the machine did not expect.
	if h.cb.DrawEnd != nil {
		h.cb.DrawEnd()
	}
	h.active = interactNone
	h.pendingItem = ""
	h.promoted = false
	if h.cb.SaveHint != nil {
		h.cb.SaveHint()
	}
}

func (h *Handler) HandleWheel(ev Wheel) {
	if ev.Zoom {
		norm := normalizeWheelDelta(ev.DeltaY, ev.DeltaMode)
		factor := math.Exp(-norm * zoomIntensity)
		if h.cb.ZoomAt != nil {
			h.cb.ZoomAt(ev.X, ev.Y, factor)
		}
		return
	}
	if h.cb.Pan != nil {
		dx := normalizeWheelDelta(ev.DeltaX, ev.DeltaMode)
		dy := normalizeWheelDelta(ev.DeltaY, ev.DeltaMode)
		h.cb.Pan(-dx, -dy)
	}
}

// normalizeWheelDelta converts line and page deltas to approximate
// pixel magnitudes and caps runaway values from free-spinning wheels.
func normalizeWheelDelta(delta float64, mode WheelDeltaMode) float64 {
	switch mode {
	case DeltaLine:
		delta *= 16
	case DeltaPage:
		delta *= 160
	}
	const limit = 60
	if delta > limit {
		return limit
	}
	if delta < -limit {
		return -limit
	}
	return delta
}

func (h *Handler) HandleKeyDown(ev KeyDown) {
	if ev.TextFocus {
		return
	}
	switch ev.Key {
	case KeySpace:
		if !h.spaceHeld {
			h.spaceHeld = true
			h.prevMode = h.mode
			h.SetMode(ModeHand)
		}
	case KeyV:
		h.SetMode(ModeCursor)
	case KeyH:
		h.SetMode(ModeHand)
	case KeyP:
		h.SetMode(ModePen)
	case KeyE:
		h.SetMode(ModeEraser)
	case KeyZ:
		if !ev.Ctrl {
			return
		}
		if ev.Shift {
			if h.cb.Redo != nil {
				h.cb.Redo()
			}
		} else if h.cb.Undo != nil {
			h.cb.Undo()
		}
	case KeyY:
		if ev.Ctrl && h.cb.Redo != nil {
			h.cb.Redo()
		}
	}
}

func (h *Handler) HandleKeyUp(ev KeyUp) {
	if ev.Key == KeySpace && h.spaceHeld {
		h.spaceHeld = false
		h.SetMode(h.prevMode)
	}
}
