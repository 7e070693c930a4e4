package slate

import (
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

const (
	MinScale = 0.1
	MaxScale = 5.0

	DefaultPenColor   = uint32(0x1D4ED8FF)
	DefaultPenSize    = 3.0
	DefaultPenOpacity = 1.0

	DefaultNoteBackground = uint32(0xFEF3C7FF)
	DefaultBorderWidth    = 5.0
	DefaultBorderColor    = uint32(0x000000FF)
)

type ItemType uint8

const (
	ItemNote ItemType = iota
	ItemImage
)

type BlockKind uint8

const (
	BlockParagraph BlockKind = iota
	BlockBullet
	BlockOrdered
	BlockCheck
)

type Alignment uint8

const (
	AlignLeft Alignment = iota
	AlignCenter
	AlignRight
)

type Project struct {
	Metadata   Metadata
	Whiteboard *Whiteboard
}

type Metadata struct {
	Name         string
	CreatedUnix  int64
	ModifiedUnix int64
}

type Whiteboard struct {
	Items   []Item
	Strokes []Stroke
	Layers  []Layer
	Pen     Pen
	View    View
}

type Point struct {
	X float64
	Y float64
}

type Stroke struct {
	ID       string
	Points   []Point
	Color    uint32
	Size     float64
	Opacity  float64
	LayerID  string
	IsEraser bool
}

type Layer struct {
	ID      string
	Name    string
	Visible bool
}

type Pen struct {
	Color   uint32
	Size    float64
	Opacity float64
}

type Border struct {
	Width float64
	Color uint32
}

type Item struct {
	ID         string
	Type       ItemType
	LayerID    string
	X          float64
	Y          float64
	W          float64
	H          float64
	Note       *NoteContent
	Background uint32
	ImageMIME  string
	ImageData  []byte
	Border     *Border
}

type NoteContent struct {
	Blocks []NoteBlock
}

type NoteBlock struct {
	Kind    BlockKind
	Checked bool
	Align   Alignment
	Text    []byte
	Runs    []StyleRun
}

type StyleRun struct {
	Start uint32
	End   uint32
	Attr  StyleAttr
}

type StyleAttr struct {
	Bold       bool
	Italic     bool
	Underline  bool
	Strike     bool
	Highlight  bool
	FontSizePt uint16
	ColorRGBA  uint32
}

// Snapshot is one undo/redo history entry: deep copies of the mutable
// scene collections. Layers, pen, and view are deliberately outside
// undo scope.
type Snapshot struct {
	Items   []Item
	Strokes []Stroke
}

func NewID() string {
	return uuid.NewString()
}

func NewProject(name string) *Project {
	now := time.Now().Unix()
	return &Project{Metadata: Metadata{Name: name, CreatedUnix: now, ModifiedUnix: now}}
}

func NewWhiteboard() *Whiteboard {
	return &Whiteboard{
		Items:   []Item{},
		Strokes: []Stroke{},
		Layers:  []Layer{{ID: NewID(), Name: "Layer 1", Visible: true}},
		Pen:     Pen{Color: DefaultPenColor, Size: DefaultPenSize, Opacity: DefaultPenOpacity},
		View:    View{X: 0, Y: 0, Scale: 1},
	}
}

// EnsureWhiteboard lazily materializes the whiteboard with defaults.
func (p *Project) EnsureWhiteboard() *Whiteboard {
	if p.Whiteboard == nil {
		p.Whiteboard = NewWhiteboard()
	}
	wb := p.Whiteboard
	if wb.Items == nil {
		wb.Items = []Item{}
	}
	if wb.Strokes == nil {
		wb.Strokes = []Stroke{}
	}
	if len(wb.Layers) == 0 {
		wb.Layers = []Layer{{ID: NewID(), Name: "Layer 1", Visible: true}}
	}
	if wb.Pen.Size <= 0 {
		wb.Pen = Pen{Color: DefaultPenColor, Size: DefaultPenSize, Opacity: DefaultPenOpacity}
	}
	if wb.View.Scale <= 0 {
		wb.View = View{X: 0, Y: 0, Scale: 1}
	}
	wb.View.Scale = ClampScale(wb.View.Scale)
	return wb
}

func (wb *Whiteboard) LayerIndex(id string) int {
	for i := range wb.Layers {
		if wb.Layers[i].ID == id {
			return i
		}
	}
	return -1
}

func (wb *Whiteboard) ItemIndex(id string) int {
	for i := range wb.Items {
		if wb.Items[i].ID == id {
			return i
		}
	}
	return -1
}

func CloneItems(items []Item) []Item {
	out := make([]Item, len(items))
	for i, it := range items {
		out[i] = CloneItem(it)
	}
	return out
}

func CloneItem(it Item) Item {
	c := it
	c.Note = CloneNote(it.Note)
	if it.ImageData != nil {
		c.ImageData = append([]byte(nil), it.ImageData...)
	}
	if it.Border != nil {
		b := *it.Border
		c.Border = &b
	}
	return c
}

func CloneNote(n *NoteContent) *NoteContent {
	if n == nil {
		return nil
	}
	out := &NoteContent{Blocks: make([]NoteBlock, len(n.Blocks))}
	for i, b := range n.Blocks {
		nb := b
		nb.Text = append([]byte(nil), b.Text...)
		nb.Runs = append([]StyleRun(nil), b.Runs...)
		out.Blocks[i] = nb
	}
	return out
}

func CloneStroke(s Stroke) Stroke {
	out := s
	out.Points = append([]Point(nil), s.Points...)
	return out
}

func CloneStrokes(strokes []Stroke) []Stroke {
	out := make([]Stroke, len(strokes))
	for i, s := range strokes {
		out[i] = CloneStroke(s)
	}
	return out
}

func CloneWhiteboard(wb *Whiteboard) *Whiteboard {
	if wb == nil {
		return nil
	}
	return &Whiteboard{
		Items:   CloneItems(wb.Items),
		Strokes: CloneStrokes(wb.Strokes),
		Layers:  append([]Layer(nil), wb.Layers...),
		Pen:     wb.Pen,
		View:    wb.View,
	}
}

// TakeSnapshot deep-copies the undo-scoped parts of the scene.
func (wb *Whiteboard) TakeSnapshot() Snapshot {
	return Snapshot{Items: CloneItems(wb.Items), Strokes: CloneStrokes(wb.Strokes)}
}

// RestoreSnapshot replaces the live scene collections with deep copies
// of the snapshot, so later mutations never alias history entries.
func (wb *Whiteboard) RestoreSnapshot(s Snapshot) {
	wb.Items = CloneItems(s.Items)
	wb.Strokes = CloneStrokes(s.Strokes)
}

var (
	ErrNoLayers        = errors.New("slate: whiteboard has no layers")
	ErrDanglingLayer   = errors.New("slate: reference to missing layer")
	ErrDuplicateID     = errors.New("slate: duplicate id")
	ErrInvalidGeometry = errors.New("slate: non-positive item size")
)

func Validate(p *Project) error {
	if p == nil {
		return errors.New("slate: project is nil")
	}
	if !utf8.ValidString(p.Metadata.Name) {
		return errors.New("slate: project name must be valid UTF-8")
	}
	wb := p.Whiteboard
	if wb == nil {
		return nil
	}
	if len(wb.Layers) == 0 {
		return ErrNoLayers
	}
	layerIDs := map[string]struct{}{}
	for i, l := range wb.Layers {
		if l.ID == "" {
			return fmt.Errorf("slate: layer[%d] has empty id", i)
		}
		if _, ok := layerIDs[l.ID]; ok {
			return fmt.Errorf("%w: layer %s", ErrDuplicateID, l.ID)
		}
		layerIDs[l.ID] = struct{}{}
	}
	seenItems := map[string]struct{}{}
	for i, it := range wb.Items {
		if it.ID == "" {
			return fmt.Errorf("slate: item[%d] has empty id", i)
		}
		if _, ok := seenItems[it.ID]; ok {
			return fmt.Errorf("%w: item %s", ErrDuplicateID, it.ID)
		}
		seenItems[it.ID] = struct{}{}
		if _, ok := layerIDs[it.LayerID]; !ok {
			return fmt.Errorf("%w: item %s -> %q", ErrDanglingLayer, it.ID, it.LayerID)
		}
		if it.W <= 0 || it.H <= 0 {
			return fmt.Errorf("%w: item %s", ErrInvalidGeometry, it.ID)
		}
		if it.Type == ItemNote {
			if err := validateNote(it.Note); err != nil {
				return fmt.Errorf("slate: item %s: %w", it.ID, err)
			}
		}
	}
	for i, s := range wb.Strokes {
		if _, ok := layerIDs[s.LayerID]; !ok {
			return fmt.Errorf("%w: stroke[%d] -> %q", ErrDanglingLayer, i, s.LayerID)
		}
		if len(s.Points) == 0 {
			return fmt.Errorf("slate: stroke[%d] has no points", i)
		}
		if s.Size <= 0 {
			return fmt.Errorf("slate: stroke[%d] has non-positive size", i)
		}
		if s.Opacity < 0 || s.Opacity > 1 {
			return fmt.Errorf("slate: stroke[%d] opacity out of range", i)
		}
	}
	if wb.Pen.Size <= 0 {
		return errors.New("slate: pen size must be positive")
	}
	if wb.Pen.Opacity < 0 || wb.Pen.Opacity > 1 {
		return errors.New("slate: pen opacity out of range")
	}
	if wb.View.Scale < MinScale || wb.View.Scale > MaxScale {
		return fmt.Errorf("slate: view scale %v outside [%v, %v]", wb.View.Scale, MinScale, MaxScale)
	}
	return nil
}

func validateNote(n *NoteContent) error {
	if n == nil {
		return errors.New("note content is nil")
	}
	if len(n.Blocks) == 0 {
		return errors.New("note has no blocks")
	}
	for i, b := range n.Blocks {
		if !utf8.Valid(b.Text) {
			return fmt.Errorf("block[%d] text is not valid UTF-8", i)
		}
		if err := validateRuns(len(b.Text), b.Runs); err != nil {
			return fmt.Errorf("block[%d]: %w", i, err)
		}
	}
	return nil
}

func validateRuns(textLen int, runs []StyleRun) error {
	var lastEnd uint32
	for i, r := range runs {
		if r.Start > r.End {
			return fmt.Errorf("invalid run range %d..%d", r.Start, r.End)
		}
		if r.Start == r.End && !(textLen == 0 && r.Start == 0) {
			return fmt.Errorf("invalid zero-length run at %d", r.Start)
		}
		if int(r.End) > textLen {
			return fmt.Errorf("run range %d..%d outside text length %d", r.Start, r.End, textLen)
		}
		if i > 0 && r.Start < lastEnd {
			return fmt.Errorf("overlapping style runs around offset %d", r.Start)
		}
		if r.Attr.FontSizePt == 0 {
			return errors.New("font size must be non-zero")
		}
		lastEnd = r.End
	}
	return nil
}
