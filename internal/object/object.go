// Package object realizes floating items as manipulable handles: an
// arena keyed by item id with selection, 8-grip resizing, double-tap
// note editing, and auto-grow. It owns no pixels; the app layer draws
// whatever the arena describes.
package object

import (
	"math"
	"time"

	"slate/internal/richtext"
	"slate/internal/scene"
	"slate/pkg/slate"
)

const (
	// MinItemWidth and MinItemHeight floor all resizes.
	MinItemWidth  = 100.0
	MinItemHeight = 60.0

	// MinNoteAutoHeight floors note auto-grow.
	MinNoteAutoHeight = 160.0

	// ChecklistZone is the leading world-space span of a checklist row
	// that toggles the checkbox instead of placing the caret.
	ChecklistZone = 30.0

	// HandleSize is the screen-space edge of a resize grip.
	HandleSize = 8.0

	// DoubleTapWindow is the maximum interval between taps that still
	// counts as a double tap.
	DoubleTapWindow = 300 * time.Millisecond

	// DefaultNoteWidth and DefaultNoteHeight size freshly added notes.
	DefaultNoteWidth  = 200.0
	DefaultNoteHeight = 160.0
)

// HandleKind names the 8 resize grips.
type HandleKind uint8

const (
	HandleNW HandleKind = iota
	HandleN
	HandleNE
	HandleE
	HandleSE
	HandleS
	HandleSW
	HandleW
)

func (k HandleKind) isCorner() bool {
	switch k {
	case HandleNW, HandleNE, HandleSE, HandleSW:
		return true
	}
	return false
}

func (k HandleKind) affectsWest() bool {
	return k == HandleNW || k == HandleW || k == HandleSW
}

func (k HandleKind) affectsEast() bool {
	return k == HandleNE || k == HandleE || k == HandleSE
}

func (k HandleKind) affectsNorth() bool {
	return k == HandleNW || k == HandleN || k == HandleNE
}

func (k HandleKind) affectsSouth() bool {
	return k == HandleSW || k == HandleS || k == HandleSE
}

// Measurer reports the minimum height a note's content needs at a
// candidate width. The app backs it with real font metrics; tests use
// a stub.
type Measurer interface {
	NoteContentHeight(note *slate.NoteContent, width float64) float64
}

// Handle is one item's live representation in the arena.
type Handle struct {
	Item    slate.Item
	ZIndex  int  // owning layer's index among all layers
	Visible bool // false when the owning layer is hidden
}

type resizeState struct {
	itemID  string
	kind    HandleKind
	start   slate.Item // geometry at resize start
	aspect  float64    // locked w/h for image corner grips
	totalDX float64
	totalDY float64
}

// Manager is the arena plus interaction state for floating items.
type Manager struct {
	scene   *scene.Manager
	measure Measurer

	handles map[string]*Handle
	order   []string // arena iteration order, bottom to top

	selected string
	editing  string
	editor   *richtext.Editor

	resize *resizeState

	lastTapItem string
	lastTapAt   time.Time
	now         func() time.Time
}

func NewManager(sc *scene.Manager, measure Measurer) *Manager {
	m := &Manager{
		scene:   sc,
		measure: measure,
		handles: map[string]*Handle{},
		now:     time.Now,
	}
	m.RenderAll()
	return m
}

// RenderAll rebuilds the whole arena from the scene. Used after
// structural changes (undo/redo, layer mutations) instead of diffing.
func (m *Manager) RenderAll() {
	wb := m.scene.Whiteboard()
	m.handles = make(map[string]*Handle, len(wb.Items))
	m.order = m.order[:0]

	layerIdx := make(map[string]int, len(wb.Layers))
	layerVis := make(map[string]bool, len(wb.Layers))
	for i, l := range wb.Layers {
		layerIdx[l.ID] = i
		layerVis[l.ID] = l.Visible
	}

	for _, it := range wb.Items {
		h := &Handle{
			Item:    slate.CloneItem(it),
			ZIndex:  layerIdx[it.LayerID],
			Visible: layerVis[it.LayerID],
		}
		m.handles[it.ID] = h
		m.order = append(m.order, it.ID)
	}
	// Stable sort by layer index; insertion order breaks ties.
	for i := 1; i < len(m.order); i++ {
		for j := i; j > 0 && m.handles[m.order[j-1]].ZIndex > m.handles[m.order[j]].ZIndex; j-- {
			m.order[j-1], m.order[j] = m.order[j], m.order[j-1]
		}
	}

	if m.selected != "" {
		if _, ok := m.handles[m.selected]; !ok {
			m.selected = ""
		}
	}
	if m.editing != "" {
		h, ok := m.handles[m.editing]
		if !ok {
			m.editing = ""
			m.editor = nil
		} else if m.editor != nil {
			// Keep the live editor's content authoritative across
			// rebuilds triggered by unrelated scene changes.
			h.Item.Note = m.editor.Note
		}
	}
}

// Handles returns ids bottom-to-top. Draw in this order.
func (m *Manager) Handles() []string {
	return m.order
}

func (m *Manager) Handle(id string) (*Handle, bool) {
	h, ok := m.handles[id]
	return h, ok
}

func (m *Manager) Selected() string { return m.selected }

func (m *Manager) Select(id string) {
	if _, ok := m.handles[id]; !ok {
		return
	}
	if m.editing != "" && m.editing != id {
		m.EndEdit()
	}
	m.selected = id
}

func (m *Manager) Deselect() {
	if m.editing != "" {
		m.EndEdit()
	}
	m.selected = ""
}

// HitTest finds the topmost visible item under a screen point.
// Returns the resize grip when the point sits on one of the selected
// item's handles.
func (m *Manager) HitTest(sx, sy float64, view slate.View) (id string, grip HandleKind, onGrip bool, ok bool) {
	if m.selected != "" {
		if h, found := m.handles[m.selected]; found && h.Visible {
			if k, hit := m.gripAt(h.Item, sx, sy, view); hit {
				return m.selected, k, true, true
			}
		}
	}
	for i := len(m.order) - 1; i >= 0; i-- {
		h := m.handles[m.order[i]]
		if !h.Visible {
			continue
		}
		w := view.ScreenToWorld(slate.Point{X: sx, Y: sy})
		if w.X >= h.Item.X && w.X <= h.Item.X+h.Item.W &&
			w.Y >= h.Item.Y && w.Y <= h.Item.Y+h.Item.H {
			return h.Item.ID, 0, false, true
		}
	}
	return "", 0, false, false
}

// GripRects returns the 8 screen-space grip squares for an item.
func GripRects(it slate.Item, view slate.View) [8][4]float64 {
	tl := view.WorldToScreen(slate.Point{X: it.X, Y: it.Y})
	br := view.WorldToScreen(slate.Point{X: it.X + it.W, Y: it.Y + it.H})
	cx := (tl.X + br.X) / 2
	cy := (tl.Y + br.Y) / 2
	centers := [8][2]float64{
		HandleNW: {tl.X, tl.Y},
		HandleN:  {cx, tl.Y},
		HandleNE: {br.X, tl.Y},
		HandleE:  {br.X, cy},
		HandleSE: {br.X, br.Y},
		HandleS:  {cx, br.Y},
		HandleSW: {tl.X, br.Y},
		HandleW:  {tl.X, cy},
	}
	var out [8][4]float64
	for i, c := range centers {
		out[i] = [4]float64{c[0] - HandleSize/2, c[1] - HandleSize/2, HandleSize, HandleSize}
	}
	return out
}

func (m *Manager) gripAt(it slate.Item, sx, sy float64, view slate.View) (HandleKind, bool) {
	for k, r := range GripRects(it, view) {
		if sx >= r[0] && sx <= r[0]+r[2] && sy >= r[1] && sy <= r[1]+r[3] {
			return HandleKind(k), true
		}
	}
	return 0, false
}

// BeginResize records history and captures the starting geometry. For
// images the aspect ratio is locked from the start geometry.
func (m *Manager) BeginResize(id string, kind HandleKind) bool {
	h, ok := m.handles[id]
	if !ok {
		return false
	}
	m.scene.RecordHistory()
	st := &resizeState{itemID: id, kind: kind, start: slate.CloneItem(h.Item)}
	if h.Item.Type == slate.ItemImage && h.Item.H > 0 {
		st.aspect = h.Item.W / h.Item.H
	}
	m.resize = st
	m.selected = id
	return true
}

// PerformResize applies an incremental world-space delta to the active
// resize. The full geometry is recomputed from the start state so
// clamping never accumulates drift.
func (m *Manager) PerformResize(dx, dy float64) {
	st := m.resize
	if st == nil {
		return
	}
	h, ok := m.handles[st.itemID]
	if !ok {
		return
	}
	st.totalDX += dx
	st.totalDY += dy

	g := st.start
	w, hgt := g.W, g.H
	if st.kind.affectsEast() {
		w += st.totalDX
	}
	if st.kind.affectsWest() {
		w -= st.totalDX
	}
	if st.kind.affectsSouth() {
		hgt += st.totalDY
	}
	if st.kind.affectsNorth() {
		hgt -= st.totalDY
	}

	if w < MinItemWidth {
		w = MinItemWidth
	}
	if g.Type == slate.ItemImage && st.kind.isCorner() && st.aspect > 0 {
		hgt = w / st.aspect
	}
	minH := MinItemHeight
	if g.Type == slate.ItemNote && g.Note != nil && m.measure != nil {
		if need := m.measure.NoteContentHeight(g.Note, w); need > minH {
			minH = need
		}
	}
	if hgt < minH {
		hgt = minH
		if g.Type == slate.ItemImage && st.kind.isCorner() && st.aspect > 0 {
			w = hgt * st.aspect
			if w < MinItemWidth {
				w = MinItemWidth
			}
		}
	}

	x, y := g.X, g.Y
	if st.kind.affectsWest() {
		x = g.X + g.W - w
	}
	if st.kind.affectsNorth() {
		y = g.Y + g.H - hgt
	}

	h.Item.X, h.Item.Y, h.Item.W, h.Item.H = x, y, w, hgt
}

// EndResize commits the final geometry to the scene.
func (m *Manager) EndResize() {
	st := m.resize
	m.resize = nil
	if st == nil {
		return
	}
	if h, ok := m.handles[st.itemID]; ok {
		m.scene.UpdateItem(h.Item)
	}
}

func (m *Manager) Resizing() bool { return m.resize != nil }

// BeginDrag records history before the item starts moving.
func (m *Manager) BeginDrag(id string) {
	if _, ok := m.handles[id]; !ok {
		return
	}
	m.scene.RecordHistory()
}

// DragBy moves an item by a world-space delta without committing.
func (m *Manager) DragBy(id string, dx, dy float64) {
	h, ok := m.handles[id]
	if !ok {
		return
	}
	h.Item.X += dx
	h.Item.Y += dy
}

// EndDrag commits the dragged position.
func (m *Manager) EndDrag(id string) {
	h, ok := m.handles[id]
	if !ok {
		return
	}
	m.scene.UpdateItem(h.Item)
}

// Tap feeds a pointer tap on an item. Two taps within the double-tap
// window on the same note enter edit mode. Returns true when edit mode
// was entered.
func (m *Manager) Tap(id string) bool {
	now := m.now()
	double := id == m.lastTapItem && now.Sub(m.lastTapAt) <= DoubleTapWindow
	m.lastTapItem = id
	m.lastTapAt = now
	if !double {
		return false
	}
	m.lastTapItem = ""
	return m.BeginEdit(id)
}

// BeginEdit enters note edit mode. Images are not editable.
func (m *Manager) BeginEdit(id string) bool {
	h, ok := m.handles[id]
	if !ok || h.Item.Type != slate.ItemNote {
		return false
	}
	if m.editing == id {
		return true
	}
	if m.editing != "" {
		m.EndEdit()
	}
	if h.Item.Note == nil {
		h.Item.Note = &slate.NoteContent{}
	}
	m.scene.RecordHistory()
	m.editing = id
	m.selected = id
	m.editor = richtext.NewEditor(h.Item.Note)
	return true
}

// EndEdit leaves edit mode and persists content, auto-growing the note
// to fit it.
func (m *Manager) EndEdit() {
	if m.editing == "" {
		return
	}
	id := m.editing
	m.editing = ""
	m.editor = nil
	h, ok := m.handles[id]
	if !ok {
		return
	}
	m.autoGrow(h)
	m.scene.UpdateItem(h.Item)
}

// Editing returns the id of the note in edit mode, or "".
func (m *Manager) Editing() string { return m.editing }

// Editor returns the live note editor while editing.
func (m *Manager) Editor() *richtext.Editor { return m.editor }

// AutoGrow re-fits the edited note's height to its content. Call after
// every text input.
func (m *Manager) AutoGrow() {
	if m.editing == "" {
		return
	}
	h, ok := m.handles[m.editing]
	if !ok {
		return
	}
	if m.autoGrow(h) {
		m.scene.UpdateItem(h.Item)
	}
}

func (m *Manager) autoGrow(h *Handle) bool {
	if h.Item.Type != slate.ItemNote || h.Item.Note == nil {
		return false
	}
	need := MinNoteAutoHeight
	if m.measure != nil {
		if c := m.measure.NoteContentHeight(h.Item.Note, h.Item.W); c > need {
			need = c
		}
	}
	if h.Item.H >= need {
		return false
	}
	h.Item.H = need
	return true
}

// ChecklistHit reports whether a click at a world-space offset within
// the note lands in a checklist row's checkbox zone. Only meaningful
// while the note is being edited.
func ChecklistHit(note *slate.NoteContent, localX float64, block int) bool {
	if note == nil || block < 0 || block >= len(note.Blocks) {
		return false
	}
	if note.Blocks[block].Kind != slate.BlockCheck {
		return false
	}
	return localX >= 0 && localX <= ChecklistZone
}

// AddNote places a new note centered in the viewport and records
// history before insertion.
func (m *Manager) AddNote(layerID string, viewportW, viewportH float64) slate.Item {
	cx, cy := m.viewportCenter(viewportW, viewportH)
	it := slate.Item{
		ID:         slate.NewID(),
		Type:       slate.ItemNote,
		LayerID:    layerID,
		X:          cx - DefaultNoteWidth/2,
		Y:          cy - DefaultNoteHeight/2,
		W:          DefaultNoteWidth,
		H:          DefaultNoteHeight,
		Background: slate.DefaultNoteBackground,
		Note:       &slate.NoteContent{},
	}
	m.scene.RecordHistory()
	m.scene.AddItem(it)
	m.RenderAll()
	m.selected = it.ID
	return it
}

// AddImage places an image item centered in the viewport, scaled down
// to a sane on-canvas size while keeping its pixel aspect ratio.
func (m *Manager) AddImage(layerID, mime string, data []byte, pxW, pxH int, viewportW, viewportH float64) slate.Item {
	w := float64(pxW)
	h := float64(pxH)
	if w <= 0 || h <= 0 {
		w, h = DefaultNoteWidth, DefaultNoteHeight
	}
	const maxSide = 480.0
	if side := math.Max(w, h); side > maxSide {
		scale := maxSide / side
		w *= scale
		h *= scale
	}
	cx, cy := m.viewportCenter(viewportW, viewportH)
	it := slate.Item{
		ID:        slate.NewID(),
		Type:      slate.ItemImage,
		LayerID:   layerID,
		X:         cx - w/2,
		Y:         cy - h/2,
		W:         w,
		H:         h,
		ImageMIME: mime,
		ImageData: data,
	}
	m.scene.RecordHistory()
	m.scene.AddItem(it)
	m.RenderAll()
	m.selected = it.ID
	return it
}

func (m *Manager) viewportCenter(viewportW, viewportH float64) (float64, float64) {
	v := m.scene.View()
	c := v.ScreenToWorld(slate.Point{X: viewportW / 2, Y: viewportH / 2})
	return c.X, c.Y
}

// ResetAspect recomputes an image's height from its natural pixel
// ratio at the current width.
func (m *Manager) ResetAspect(id string, naturalW, naturalH int) bool {
	h, ok := m.handles[id]
	if !ok || h.Item.Type != slate.ItemImage || naturalW <= 0 || naturalH <= 0 {
		return false
	}
	m.scene.RecordHistory()
	h.Item.H = h.Item.W * float64(naturalH) / float64(naturalW)
	m.scene.UpdateItem(h.Item)
	return true
}

// ToggleBorder adds a default border to an image, or removes the
// existing one.
func (m *Manager) ToggleBorder(id string) bool {
	h, ok := m.handles[id]
	if !ok || h.Item.Type != slate.ItemImage {
		return false
	}
	m.scene.RecordHistory()
	if h.Item.Border == nil {
		h.Item.Border = &slate.Border{Width: slate.DefaultBorderWidth, Color: slate.DefaultBorderColor}
	} else {
		h.Item.Border = nil
	}
	m.scene.UpdateItem(h.Item)
	return true
}

// SetBorder updates an existing border's width and color.
func (m *Manager) SetBorder(id string, width float64, color uint32) bool {
	h, ok := m.handles[id]
	if !ok || h.Item.Border == nil {
		return false
	}
	if width <= 0 {
		width = 1
	}
	m.scene.RecordHistory()
	h.Item.Border = &slate.Border{Width: width, Color: color}
	m.scene.UpdateItem(h.Item)
	return true
}

// Delete removes an item, recording history first.
func (m *Manager) Delete(id string) bool {
	if _, ok := m.handles[id]; !ok {
		return false
	}
	if m.editing == id {
		m.editing = ""
		m.editor = nil
	}
	if m.selected == id {
		m.selected = ""
	}
	m.scene.RecordHistory()
	ok := m.scene.DeleteItem(id)
	m.RenderAll()
	return ok
}
