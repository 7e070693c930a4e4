package app

import (
	"strings"
	"unicode/utf8"

	"slate/internal/input"
	"slate/internal/object"
	"slate/pkg/slate"

	"github.com/atotto/clipboard"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

func (a *App) Update() error {
	a.frameTick++
	ctrl := ebiten.IsKeyPressed(ebiten.KeyControl) || ebiten.IsKeyPressed(ebiten.KeyMeta)
	shift := ebiten.IsKeyPressed(ebiten.KeyShift)

	if a.confirm != nil {
		a.updateConfirm()
		return nil
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		switch {
		case a.showColorPicker:
			a.showColorPicker = false
		case a.renameLayerID != "":
			a.renameLayerID = ""
			a.renameBuffer = ""
		case a.comp.Drawing():
			a.comp.CancelStroke()
		case a.objects.Editing() != "":
			a.objects.EndEdit()
			a.refreshMenuAfterEdit()
		case a.menu.Visible || a.objects.Selected() != "":
			a.deselectAll()
		default:
			return ebiten.Termination
		}
		return nil
	}

	if a.renameLayerID != "" {
		a.updateRenameInput()
		a.handlePointer(shift)
		return nil
	}

	if a.objects.Editing() != "" {
		a.updateNoteEditing(ctrl, shift)
	} else {
		a.updateGlobalKeys(ctrl, shift)
	}

	a.updateWheel(ctrl)
	a.handlePointer(shift)
	return nil
}

func (a *App) updateGlobalKeys(ctrl, shift bool) {
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		a.machine.HandleKeyDown(input.KeyDown{Key: input.KeySpace})
	}
	if inpututil.IsKeyJustReleased(ebiten.KeySpace) {
		a.machine.HandleKeyUp(input.KeyUp{Key: input.KeySpace})
	}
	if !ctrl {
		hotkeys := map[ebiten.Key]input.Key{
			ebiten.KeyV: input.KeyV,
			ebiten.KeyH: input.KeyH,
			ebiten.KeyP: input.KeyP,
			ebiten.KeyE: input.KeyE,
		}
		for k, mk := range hotkeys {
			if inpututil.IsKeyJustPressed(k) {
				a.machine.HandleKeyDown(input.KeyDown{Key: mk})
			}
		}
	}
	if ctrl && inpututil.IsKeyJustPressed(ebiten.KeyZ) {
		a.machine.HandleKeyDown(input.KeyDown{Key: input.KeyZ, Ctrl: true, Shift: shift})
	}
	if ctrl && inpututil.IsKeyJustPressed(ebiten.KeyY) {
		a.machine.HandleKeyDown(input.KeyDown{Key: input.KeyY, Ctrl: true})
	}
	if ctrl && inpututil.IsKeyJustPressed(ebiten.KeyS) {
		a.saveNow()
	}
	if ctrl && inpututil.IsKeyJustPressed(ebiten.KeyE) {
		a.exportPDF()
	}
	if ctrl && inpututil.IsKeyJustPressed(ebiten.KeyL) {
		a.panelVisible = !a.panelVisible
	}
	if ctrl && inpututil.IsKeyJustPressed(ebiten.KeyN) {
		a.addNote()
	}
	if ctrl && inpututil.IsKeyJustPressed(ebiten.KeyI) {
		a.insertImageDialog()
	}
	if ctrl && inpututil.IsKeyJustPressed(ebiten.KeyV) {
		a.pasteImageFromClipboard()
	}
	if ctrl && inpututil.IsKeyJustPressed(ebiten.KeyDigit0) {
		a.scene.UpdateView(slate.View{X: 0, Y: 0, Scale: 1})
		a.status = "View reset"
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyDelete) || inpututil.IsKeyJustPressed(ebiten.KeyBackspace) {
		if id := a.objects.Selected(); id != "" {
			a.deleteItem(id)
		}
	}
}

func (a *App) updateWheel(ctrl bool) {
	wx, wy := ebiten.Wheel()
	if wx == 0 && wy == 0 {
		return
	}
	x, y := ebiten.CursorPosition()
	a.machine.HandleWheel(input.Wheel{
		X:         float64(x),
		Y:         float64(y),
		DeltaX:    -wx * 3,
		DeltaY:    -wy * 3,
		DeltaMode: input.DeltaLine,
		Zoom:      ctrl,
	})
}

func (a *App) handlePointer(shift bool) {
	x, y := ebiten.CursorPosition()

	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		a.pointerDown(x, y, input.ButtonLeft, shift)
	}
	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonMiddle) {
		a.pointerDown(x, y, input.ButtonMiddle, shift)
	}

	held := ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft) ||
		ebiten.IsMouseButtonPressed(ebiten.MouseButtonMiddle)
	if a.pointerHeld && held {
		a.machine.HandlePointerMove(input.PointerMove{X: float64(x), Y: float64(y)})
	}
	if a.textSelecting && ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft) {
		a.extendTextSelection(float64(x), float64(y))
	}

	if a.pointerHeld && !held {
		a.machine.HandlePointerUp(input.PointerUp{X: float64(x), Y: float64(y)})
		a.pointerHeld = false
	}
	if !ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft) {
		a.textSelecting = false
	}
}

// pointerDown routes a press to chrome or feeds it to the input
// machine with its classified target.
func (a *App) pointerDown(x, y int, btn input.Button, shift bool) {
	if btn == input.ButtonLeft {
		if a.handleChromeClick(x, y) {
			return
		}
	} else if a.chromeAt(x, y) {
		return
	}

	fx, fy := float64(x), float64(y)
	view := a.scene.View()

	if editID := a.objects.Editing(); editID != "" {
		if h, ok := a.objects.Handle(editID); ok {
			r := itemScreenRect(h.Item, view)
			if r.contains(x, y) && btn == input.ButtonLeft {
				a.noteEditClick(h.Item, fx, fy, shift)
				return
			}
		}
		a.objects.EndEdit()
		a.refreshMenuAfterEdit()
	}

	ev := input.PointerDown{X: fx, Y: fy, Button: btn, Target: input.TargetCanvas}
	if btn == input.ButtonLeft && a.machine.Mode() == input.ModeCursor {
		if id, grip, onGrip, ok := a.objects.HitTest(fx, fy, view); ok {
			if onGrip && id == a.objects.Selected() {
				if a.objects.BeginResize(id, grip) {
					ev.Target = input.TargetResizeHandle
				}
			} else {
				if btn == input.ButtonLeft && a.objects.Tap(id) {
					// Double-tap entered note editing.
					a.selectItem(id)
					if h, hok := a.objects.Handle(id); hok {
						a.noteEditClick(h.Item, fx, fy, false)
					}
					return
				}
				ev.Target = input.TargetItem
				ev.ItemID = id
			}
		}
	}
	a.machine.HandlePointerDown(ev)
	a.pointerHeld = true
}

// chromeAt reports whether a point is over any chrome region.
func (a *App) chromeAt(x, y int) bool {
	if y < a.layout.ToolbarH || y >= a.layout.StatusY {
		return true
	}
	if a.layout.PanelVisible && x >= a.layout.PanelX {
		return true
	}
	for _, btn := range a.menuButtons {
		if btn.r.contains(x, y) {
			return true
		}
	}
	if a.showColorPicker && a.colorPopupRect.contains(x, y) {
		return true
	}
	return false
}

func (a *App) noteEditClick(it slate.Item, sx, sy float64, shift bool) {
	ed := a.objects.Editor()
	if ed == nil {
		return
	}
	view := a.scene.View()
	world := view.ScreenToWorld(slate.Point{X: sx, Y: sy})
	lx := world.X - it.X
	ly := world.Y - it.Y

	nl := layoutNote(a.fonts, ed.Note, it.W)
	block, bytePos := nl.hit(a.fonts, lx, ly)
	if object.ChecklistHit(ed.Note, lx, block) {
		ed.ToggleChecked(block)
		return
	}
	if shift {
		ed.EnsureSelectionAnchor()
		ed.SetCaret(block, bytePos)
		ed.UpdateSelectionFromCaret()
	} else {
		// Anchor at the click point itself, after the caret has
		// moved, so a plain click never leaves a visible selection.
		ed.SetCaret(block, bytePos)
		ed.ClearSelection()
		ed.EnsureSelectionAnchor()
	}
	a.textSelecting = true
}

func (a *App) extendTextSelection(sx, sy float64) {
	editID := a.objects.Editing()
	ed := a.objects.Editor()
	if editID == "" || ed == nil {
		return
	}
	h, ok := a.objects.Handle(editID)
	if !ok {
		return
	}
	world := a.scene.View().ScreenToWorld(slate.Point{X: sx, Y: sy})
	nl := layoutNote(a.fonts, ed.Note, h.Item.W)
	block, bytePos := nl.hit(a.fonts, world.X-h.Item.X, world.Y-h.Item.Y)
	ed.SetCaret(block, bytePos)
	ed.UpdateSelectionFromCaret()
}

func (a *App) updateNoteEditing(ctrl, shift bool) {
	ed := a.objects.Editor()
	if ed == nil {
		return
	}
	mutated := false
	change := func(fn func()) {
		fn()
		mutated = true
	}

	moveWithSelection := func(move func()) {
		if shift {
			ed.EnsureSelectionAnchor()
		} else {
			ed.ClearSelection()
		}
		move()
		if shift {
			ed.UpdateSelectionFromCaret()
		}
	}

	if ctrl && a.keyJust(ebiten.KeyZ) {
		if shift {
			ed.Redo()
		} else {
			ed.Undo()
		}
		mutated = true
	}
	if ctrl && a.keyJust(ebiten.KeyY) {
		ed.Redo()
		mutated = true
	}
	if ctrl && a.keyJust(ebiten.KeyA) {
		ed.SelectAll()
	}
	if ctrl && !shift && a.keyJust(ebiten.KeyC) {
		if ed.HasSelection() {
			if err := clipboard.WriteAll(ed.SelectedText()); err != nil {
				a.status = "Copy failed: " + err.Error()
			}
		}
	}
	if ctrl && !shift && a.keyJust(ebiten.KeyX) {
		if ed.HasSelection() {
			if err := clipboard.WriteAll(ed.SelectedText()); err != nil {
				a.status = "Cut failed: " + err.Error()
			} else {
				change(func() { ed.DeleteSelection() })
			}
		}
	}
	if ctrl && a.keyJust(ebiten.KeyV) {
		paste, err := clipboard.ReadAll()
		if err != nil {
			a.status = "Paste failed: " + err.Error()
		} else if paste != "" {
			change(func() { ed.InsertText(strings.ReplaceAll(paste, "\r\n", "\n")) })
		}
	}
	if ctrl && a.keyJust(ebiten.KeyB) {
		change(ed.ToggleBold)
	}
	if ctrl && a.keyJust(ebiten.KeyI) {
		change(ed.ToggleItalic)
	}
	if ctrl && a.keyJust(ebiten.KeyU) {
		change(ed.ToggleUnderline)
	}
	if ctrl && shift && a.keyJust(ebiten.KeyX) {
		change(ed.ToggleStrike)
	}
	if ctrl && shift && a.keyJust(ebiten.KeyH) {
		change(ed.ToggleHighlight)
	}
	if ctrl && a.keyJust(ebiten.KeyPeriod) {
		change(func() { ed.SetFontSize(ed.CurrentAttr().FontSizePt + 2) })
	}
	if ctrl && a.keyJust(ebiten.KeyComma) {
		sz := ed.CurrentAttr().FontSizePt
		if sz > 2 {
			change(func() { ed.SetFontSize(sz - 2) })
		}
	}
	if ctrl && a.keyJust(ebiten.KeyBackspace) {
		change(ed.DeleteWordBackward)
	}
	if ctrl && a.keyJust(ebiten.KeyDelete) {
		change(ed.DeleteWordForward)
	}
	if ctrl && a.keyJust(ebiten.KeyS) {
		a.saveNow()
	}

	if a.keyJust(ebiten.KeyArrowUp) {
		moveWithSelection(func() { ed.MoveBlock(-1) })
	}
	if a.keyJust(ebiten.KeyArrowDown) {
		moveWithSelection(func() { ed.MoveBlock(1) })
	}
	if a.keyJust(ebiten.KeyArrowLeft) {
		if ctrl {
			moveWithSelection(ed.MoveCaretWordLeft)
		} else {
			moveWithSelection(ed.MoveCaretLeft)
		}
	}
	if a.keyJust(ebiten.KeyArrowRight) {
		if ctrl {
			moveWithSelection(ed.MoveCaretWordRight)
		} else {
			moveWithSelection(ed.MoveCaretRight)
		}
	}
	if a.keyJust(ebiten.KeyHome) {
		moveWithSelection(ed.MoveCaretLineStart)
	}
	if a.keyJust(ebiten.KeyEnd) {
		moveWithSelection(ed.MoveCaretLineEnd)
	}

	if !ctrl {
		if a.keyJust(ebiten.KeyEnter) || a.keyJust(ebiten.KeyKPEnter) {
			change(ed.InsertNewline)
		}
		if a.keyJust(ebiten.KeyBackspace) {
			change(ed.DeleteBackward)
		}
		if a.keyJust(ebiten.KeyDelete) {
			change(ed.DeleteForward)
		}
		if a.keyJust(ebiten.KeyTab) {
			change(func() { ed.InsertText("    ") })
		}
		for _, r := range a.inputChars() {
			if r < 0x20 || !utf8.ValidRune(r) {
				continue
			}
			ch := string(r)
			change(func() { ed.InsertText(ch) })
		}
	}

	if mutated {
		a.objects.AutoGrow()
	}
}

func (a *App) refreshMenuAfterEdit() {
	if !a.menu.Visible {
		return
	}
	h, ok := a.objects.Handle(a.menu.ItemID)
	if !ok {
		a.menu.Hide()
		return
	}
	a.menu.ShowFor(h.Item, false, a.scene.View(), float64(a.dp(a.theme.MenuHeightDp)))
}

func (a *App) updateConfirm() {
	c := a.confirm
	if inpututil.IsKeyJustPressed(ebiten.KeyEnter) {
		a.confirm = nil
		if c.onConfirm != nil {
			c.onConfirm()
		}
		return
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		a.confirm = nil
		return
	}
	if !inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		return
	}
	x, y := ebiten.CursorPosition()
	switch {
	case c.okRect.contains(x, y):
		a.confirm = nil
		if c.onConfirm != nil {
			c.onConfirm()
		}
	case c.alertOnly:
		if !c.panel.contains(x, y) {
			a.confirm = nil
		}
	case c.cancelRect.contains(x, y) || !c.panel.contains(x, y):
		a.confirm = nil
	}
}

func (a *App) updateRenameInput() {
	for _, r := range ebiten.AppendInputChars(nil) {
		if r < 0x20 || !utf8.ValidRune(r) {
			continue
		}
		a.renameBuffer += string(r)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyBackspace) && a.renameBuffer != "" {
		_, size := utf8.DecodeLastRuneInString(a.renameBuffer)
		a.renameBuffer = a.renameBuffer[:len(a.renameBuffer)-size]
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEnter) {
		name := strings.TrimSpace(a.renameBuffer)
		if name != "" {
			a.scene.RenameLayer(a.renameLayerID, name)
		}
		a.renameLayerID = ""
		a.renameBuffer = ""
	}
}

// itemScreenRect is an item's bounding box in window coordinates.
func itemScreenRect(it slate.Item, view slate.View) rect {
	tl := view.WorldToScreen(slate.Point{X: it.X, Y: it.Y})
	return rect{
		x: int(tl.X),
		y: int(tl.Y),
		w: int(it.W * view.Scale),
		h: int(it.H * view.Scale),
	}
}
