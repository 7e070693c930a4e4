// Package app is the window shell: it owns the ebiten game loop,
// polls raw input into the input machine's events, and rasterizes the
// scene plus chrome every frame.
package app

import (
	"fmt"

	"slate/internal/input"
	"slate/internal/object"
	"slate/internal/render"
	"slate/internal/scene"
	"slate/internal/store"
	"slate/internal/ui"
	"slate/pkg/slate"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/rs/zerolog"
	xclipboard "golang.design/x/clipboard"
)

type rect struct {
	x int
	y int
	w int
	h int
}

func (r rect) contains(x, y int) bool {
	return x >= r.x && y >= r.y && x < r.x+r.w && y < r.y+r.h
}

type actionButton struct {
	id       string
	label    string
	r        rect
	active   bool
	disabled bool
}

type colorSwatch struct {
	value uint32
	r     rect
}

type menuButton struct {
	act    ui.MenuAction
	label  string
	r      rect
	active bool
}

// panelRow is one layer's control strip in the layer panel.
type panelRow struct {
	row      ui.LayerRow
	rowRect  rect
	eyeRect  rect
	nameRect rect
	upRect   rect
	downRect rect
	delRect  rect
}

// confirmPrompt is the modal overlay for destructive layer operations
// and blocking notices.
type confirmPrompt struct {
	message    string
	okLabel    string
	alertOnly  bool
	onConfirm  func()
	panel      rect
	okRect     rect
	cancelRect rect
}

type App struct {
	theme ui.Theme
	tr    ui.Translations
	log   zerolog.Logger

	scene   *scene.Manager
	objects *object.Manager
	machine *input.Handler
	comp    *render.Compositor
	deck    *store.Store
	menu    ui.ContextMenu

	fonts   *fontBank
	measure *textMeasurer

	// Key sources for the note editing chords; swapped in tests.
	keyJust    func(ebiten.Key) bool
	inputChars func() []rune

	frameBuffer *render.FrameBuffer
	chrome      *ebiten.Image

	uiScales   []float32
	uiScaleIdx int

	layout          ui.Layout
	toolbarActions  []actionButton
	menuButtons     []menuButton
	panelRows       []panelRow
	panelAddRect    rect
	colorSwatches   []colorSwatch
	colorPopupRect  rect
	showColorPicker bool

	panelVisible bool
	activeLayer  string

	renameLayerID string
	renameBuffer  string

	confirm *confirmPrompt

	status    string
	frameTick uint64

	imageCache map[string]*ebiten.Image

	clipboardReady bool
	pointerHeld    bool
	textSelecting  bool

	screenW int
	screenH int
}

// penPalette is the stroke color popup; the same swatches serve text
// color while a note is edited.
var penPalette = []uint32{
	0x1D4ED8FF, 0x202020FF, 0xA31515FF, 0x117A37FF,
	0x7A2DB8FF, 0xE67E22FF, 0x0E7490FF, 0xB7791FFF,
	0xDB2777FF, 0x4B5563FF, 0x84CC16FF, 0x000000FF,
}

func New(project *slate.Project, deck *store.Store, tr ui.Translations, log zerolog.Logger) *App {
	a := &App{
		theme:      ui.DefaultTheme(),
		log:        log.With().Str("component", "app").Logger(),
		deck:       deck,
		tr:         tr,
		fonts:      newFontBank(),
		uiScales:   []float32{1.0, 1.25, 1.5, 2.0},
		status:     "Ready",
		imageCache: map[string]*ebiten.Image{},
	}
	a.measure = &textMeasurer{bank: a.fonts}
	a.keyJust = func(k ebiten.Key) bool { return inpututil.IsKeyJustPressed(k) }
	a.inputChars = func() []rune { return ebiten.AppendInputChars(nil) }
	a.scene = scene.NewManager(project, deck.Save)
	a.objects = object.NewManager(a.scene, a.measure)
	a.comp = render.NewCompositor(a.theme.Canvas)
	a.machine = input.NewHandler(a.callbacks())

	wb := a.scene.Whiteboard()
	if len(wb.Layers) > 0 {
		a.activeLayer = wb.Layers[0].ID
	}

	a.scene.OnChange(func() {
		a.objects.RenderAll()
		a.comp.MarkDirty()
		a.ensureActiveLayer()
		a.refreshMenuAnchor()
	})
	return a
}

func (a *App) Run() error {
	if err := xclipboard.Init(); err != nil {
		a.log.Debug().Err(err).Msg("system clipboard unavailable")
	} else {
		a.clipboardReady = true
	}
	title := "Slate - " + a.scene.Project().Metadata.Name
	ebiten.SetWindowTitle(title)
	ebiten.SetWindowSize(1280, 800)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowSizeLimits(900, 560, -1, -1)
	ebiten.MaximizeWindow()
	if err := ebiten.RunGame(a); err != nil {
		return fmt.Errorf("run game loop: %w", err)
	}
	return a.scene.Close()
}

func (a *App) Layout(outsideWidth, outsideHeight int) (screenWidth, screenHeight int) {
	if outsideWidth < 900 {
		outsideWidth = 900
	}
	if outsideHeight < 560 {
		outsideHeight = 560
	}
	a.screenW = outsideWidth
	a.screenH = outsideHeight
	return outsideWidth, outsideHeight
}

func (a *App) uiScale() float32 {
	return a.uiScales[a.uiScaleIdx]
}

func (a *App) dp(v int) int {
	return int(float32(v) * a.uiScale())
}

// ensureActiveLayer re-targets the active layer after structural
// changes; a deleted active layer falls back to the first one.
func (a *App) ensureActiveLayer() {
	wb := a.scene.Whiteboard()
	for _, l := range wb.Layers {
		if l.ID == a.activeLayer {
			return
		}
	}
	if len(wb.Layers) > 0 {
		a.activeLayer = wb.Layers[0].ID
	} else {
		a.activeLayer = ""
	}
}

func (a *App) refreshMenuAnchor() {
	if !a.menu.Visible {
		return
	}
	h, ok := a.objects.Handle(a.menu.ItemID)
	if !ok {
		a.menu.Hide()
		return
	}
	a.menu.UpdatePosition(h.Item, a.scene.View(), float64(a.dp(a.theme.MenuHeightDp)))
}

func (a *App) callbacks() input.Callbacks {
	return input.Callbacks{
		Pan: func(dx, dy float64) {
			v := a.scene.View()
			a.scene.UpdateView(v.PanBy(dx, dy))
		},
		ZoomAt: func(sx, sy, factor float64) {
			v := a.scene.View()
			a.scene.UpdateView(v.ZoomAt(sx, sy, factor))
		},
		SelectItem: func(id string) {
			a.selectItem(id)
		},
		Deselect: func() {
			a.deselectAll()
		},
		DragStart: func(id string) {
			a.objects.BeginDrag(id)
		},
		DragMove: func(id string, dx, dy float64) {
			s := a.scene.View().Scale
			a.objects.DragBy(id, dx/s, dy/s)
			a.refreshDraggedAnchor(id)
		},
		DragEnd: func(id string) {
			a.objects.EndDrag(id)
		},
		ResizeMove: func(dx, dy float64) {
			s := a.scene.View().Scale
			a.objects.PerformResize(dx/s, dy/s)
		},
		ResizeEnd: func() {
			a.objects.EndResize()
		},
		DrawStart: func(sx, sy float64, eraser bool) {
			a.startStroke(sx, sy, eraser)
		},
		DrawMove: func(sx, sy float64) {
			if !a.comp.Drawing() {
				return
			}
			p := a.scene.View().ScreenToWorld(slate.Point{X: sx, Y: sy})
			a.comp.AddStrokePoint(p)
		},
		DrawEnd: func() {
			if s, ok := a.comp.FinishStroke(); ok {
				a.scene.RecordHistory()
				a.scene.AddStroke(s)
			}
		},
		Undo: func() { a.undo() },
		Redo: func() { a.redo() },
		ModeChanged: func(m input.Mode) {
			a.status = "Tool: " + m.String()
		},
		SaveHint: func() {
			a.scene.ScheduleSave()
		},
	}
}

// refreshDraggedAnchor tracks the context menu while its item moves.
func (a *App) refreshDraggedAnchor(id string) {
	if !a.menu.Visible || a.menu.ItemID != id {
		return
	}
	h, ok := a.objects.Handle(id)
	if !ok {
		return
	}
	a.menu.UpdatePosition(h.Item, a.scene.View(), float64(a.dp(a.theme.MenuHeightDp)))
}

func (a *App) selectItem(id string) {
	if a.objects.Editing() != "" && a.objects.Editing() != id {
		a.objects.EndEdit()
	}
	a.objects.Select(id)
	h, ok := a.objects.Handle(id)
	if !ok {
		return
	}
	editing := a.objects.Editing() == id
	a.menu.ShowFor(h.Item, editing, a.scene.View(), float64(a.dp(a.theme.MenuHeightDp)))
}

func (a *App) deselectAll() {
	if a.objects.Editing() != "" {
		a.objects.EndEdit()
	}
	a.objects.Deselect()
	a.menu.Hide()
	a.showColorPicker = false
}

func (a *App) startStroke(sx, sy float64, eraser bool) {
	wb := a.scene.Whiteboard()
	idx := wb.LayerIndex(a.activeLayer)
	if idx < 0 {
		return
	}
	if !wb.Layers[idx].Visible {
		a.alert("The active layer is hidden. Show it to draw on it.")
		return
	}
	p := a.scene.View().ScreenToWorld(slate.Point{X: sx, Y: sy})
	a.comp.StartStroke(a.activeLayer, p, wb.Pen, eraser)
}

func (a *App) undo() {
	if a.scene.Undo() {
		a.status = "Undo"
	}
}

func (a *App) redo() {
	if a.scene.Redo() {
		a.status = "Redo"
	}
}

// alert shows a single-button blocking notice.
func (a *App) alert(message string) {
	a.confirm = &confirmPrompt{message: a.tr.T(message), okLabel: a.tr.T("OK"), alertOnly: true}
}

// confirmAction shows an OK/Cancel prompt and runs fn on OK.
func (a *App) confirmAction(message, okLabel string, fn func()) {
	a.confirm = &confirmPrompt{message: a.tr.T(message), okLabel: a.tr.T(okLabel), onConfirm: fn}
}
