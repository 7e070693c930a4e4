package app

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"strconv"

	"slate/internal/input"
	"slate/internal/object"
	"slate/internal/render"
	"slate/internal/richtext"
	"slate/internal/ui"
	"slate/pkg/slate"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"golang.org/x/image/font"
)

func (a *App) Draw(screen *ebiten.Image) {
	w, h := screen.Bounds().Dx(), screen.Bounds().Dy()
	if a.frameBuffer == nil || a.frameBuffer.W != w || a.frameBuffer.H != h {
		a.frameBuffer = render.NewFrameBuffer(w, h)
		if a.chrome != nil {
			a.chrome.Deallocate()
		}
		a.chrome = ebiten.NewImage(w, h)
	}
	a.comp.Resize(w, h, 1)

	wb := a.scene.Whiteboard()
	view := a.scene.View()

	a.comp.Draw(screen, wb)
	a.drawItems(screen, view)
	a.drawSelection(screen, view)

	a.layout = ui.DrawShell(a.frameBuffer, a.theme, a.uiScale(), a.panelVisible)
	scale := float64(a.uiScale())
	toolbarFace := a.fonts.face(11, false, false, scale)
	panelFace := a.fonts.face(10, false, false, scale)
	statusFace := a.fonts.face(10, false, false, scale)

	a.layoutToolbarControls(toolbarFace)
	a.layoutPanelRows()

	a.chrome.WritePixels(a.frameBuffer.Pixels)
	screen.DrawImage(a.chrome, nil)

	a.drawToolbarLabels(screen, toolbarFace)
	a.drawPanelLabels(screen, panelFace)
	a.drawStatus(screen, statusFace, wb)

	a.drawContextMenu(screen, toolbarFace)
	a.drawColorPicker(screen)
	a.drawConfirm(screen, toolbarFace)
}

func rgbaFromUint32(u uint32) color.RGBA {
	return color.RGBA{R: uint8(u >> 24), G: uint8(u >> 16), B: uint8(u >> 8), A: uint8(u)}
}

func textWidth(face font.Face, s string) int {
	return int(measureString(face, s) + 0.5)
}

// drawLabel centers a string inside a rect.
func drawLabel(screen *ebiten.Image, face font.Face, r rect, s string, clr color.RGBA) {
	tw := textWidth(face, s)
	ascent := face.Metrics().Ascent.Round()
	descent := face.Metrics().Descent.Round()
	x := r.x + (r.w-tw)/2
	baseline := r.y + (r.h+ascent+descent)/2 - descent
	text.Draw(screen, s, face, x, baseline, clr)
}

// ---- canvas content ----

func (a *App) drawItems(screen *ebiten.Image, view slate.View) {
	for _, id := range a.objects.Handles() {
		h, ok := a.objects.Handle(id)
		if !ok || !h.Visible {
			continue
		}
		it := h.Item
		r := itemScreenRect(it, view)
		switch it.Type {
		case slate.ItemNote:
			bg := it.Background
			if bg == 0 {
				bg = slate.DefaultNoteBackground
			}
			vector.DrawFilledRect(screen, float32(r.x), float32(r.y), float32(r.w), float32(r.h), rgbaFromUint32(bg), false)
			vector.StrokeRect(screen, float32(r.x), float32(r.y), float32(r.w), float32(r.h), 1, a.theme.Shadow, false)
			a.drawNoteContent(screen, it, view, a.objects.Editing() == id)
		case slate.ItemImage:
			a.drawImageItem(screen, it, r)
		}
	}
}

func (a *App) drawImageItem(screen *ebiten.Image, it slate.Item, r rect) {
	img := a.itemImage(it)
	if img == nil {
		vector.DrawFilledRect(screen, float32(r.x), float32(r.y), float32(r.w), float32(r.h), a.theme.PanelRow, false)
		vector.StrokeRect(screen, float32(r.x), float32(r.y), float32(r.w), float32(r.h), 1, a.theme.Border, false)
		return
	}
	bounds := img.Bounds()
	if bounds.Dx() == 0 || bounds.Dy() == 0 || r.w == 0 || r.h == 0 {
		return
	}
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(float64(r.w)/float64(bounds.Dx()), float64(r.h)/float64(bounds.Dy()))
	op.GeoM.Translate(float64(r.x), float64(r.y))
	op.Filter = ebiten.FilterLinear
	screen.DrawImage(img, op)

	if it.Border != nil && it.Border.Width > 0 {
		bw := float32(it.Border.Width * a.scene.View().Scale)
		vector.StrokeRect(screen, float32(r.x), float32(r.y), float32(r.w), float32(r.h), bw, rgbaFromUint32(it.Border.Color), false)
	}
}

func (a *App) itemImage(it slate.Item) *ebiten.Image {
	if img, ok := a.imageCache[it.ID]; ok {
		return img
	}
	src, _, err := image.Decode(bytes.NewReader(it.ImageData))
	if err != nil {
		a.log.Warn().Err(err).Str("item", it.ID).Msg("undecodable image item")
		a.imageCache[it.ID] = nil
		return nil
	}
	img := ebiten.NewImageFromImage(src)
	a.imageCache[it.ID] = img
	return img
}

// orderedNumbers assigns 1-based numbers to consecutive ordered
// blocks, restarting after any other kind.
func orderedNumbers(note *slate.NoteContent) map[int]int {
	nums := map[int]int{}
	n := 0
	for i, b := range note.Blocks {
		if b.Kind == slate.BlockOrdered {
			n++
			nums[i] = n
		} else {
			n = 0
		}
	}
	return nums
}

func (a *App) drawNoteContent(screen *ebiten.Image, it slate.Item, view slate.View, editing bool) {
	note := it.Note
	if note == nil {
		return
	}
	s := view.Scale
	origin := view.WorldToScreen(slate.Point{X: it.X, Y: it.Y})
	nl := layoutNote(a.fonts, note, it.W)
	nums := orderedNumbers(note)

	ed := a.objects.Editor()
	if editing && ed != nil {
		a.drawNoteSelection(screen, nl, origin, s, ed)
	}

	for _, l := range nl.lines {
		baseline := origin.Y + (l.y+l.ascent)*s
		if l.first {
			a.drawBlockMarker(screen, note.Blocks[l.block], nums[l.block], origin, l, s)
		}
		for _, p := range l.pieces {
			face := a.fonts.attrFace(p.attr, s)
			px := origin.X + (notePadX+l.indent+p.x)*s
			if p.attr.Highlight {
				vector.DrawFilledRect(screen, float32(px), float32(origin.Y+l.y*s), float32(p.width*s), float32(l.height*s), color.RGBA{0xFD, 0xE6, 0x8A, 0xFF}, false)
			}
			clr := rgbaFromUint32(p.attr.ColorRGBA)
			if p.attr.ColorRGBA == 0 {
				clr = color.RGBA{0x20, 0x20, 0x20, 0xFF}
			}
			text.Draw(screen, p.text, face, int(px), int(baseline), clr)
			if p.attr.Underline {
				y := float32(baseline + 2*s)
				vector.StrokeLine(screen, float32(px), y, float32(px+p.width*s), y, float32(s), clr, false)
			}
			if p.attr.Strike {
				y := float32(baseline - l.ascent*0.3*s)
				vector.StrokeLine(screen, float32(px), y, float32(px+p.width*s), y, float32(s), clr, false)
			}
		}
	}

	if editing && ed != nil && a.frameTick/30%2 == 0 {
		cx, cy, ch := nl.caret(a.fonts, ed.CurrentBlock, ed.CaretByte)
		x := float32(origin.X + cx*s)
		vector.StrokeLine(screen, x, float32(origin.Y+cy*s), x, float32(origin.Y+(cy+ch)*s), 1.5, a.theme.Accent, false)
	}
}

func (a *App) drawBlockMarker(screen *ebiten.Image, b slate.NoteBlock, num int, origin slate.Point, l noteLine, s float64) {
	markX := origin.X + (notePadX+4)*s
	midY := origin.Y + (l.y+l.ascent*0.65)*s
	switch b.Kind {
	case slate.BlockBullet:
		vector.DrawFilledCircle(screen, float32(markX+4*s), float32(midY), float32(2.5*s), color.RGBA{0x20, 0x20, 0x20, 0xFF}, true)
	case slate.BlockOrdered:
		face := a.fonts.face(noteDefaultPt, false, false, s)
		text.Draw(screen, strconv.Itoa(num)+".", face, int(markX), int(origin.Y+(l.y+l.ascent)*s), color.RGBA{0x20, 0x20, 0x20, 0xFF})
	case slate.BlockCheck:
		sz := 12 * s
		y := midY - sz/2
		vector.StrokeRect(screen, float32(markX), float32(y), float32(sz), float32(sz), float32(s), color.RGBA{0x4B, 0x55, 0x63, 0xFF}, false)
		if b.Checked {
			vector.DrawFilledRect(screen, float32(markX+2*s), float32(y+2*s), float32(sz-4*s), float32(sz-4*s), a.theme.Accent, false)
		}
	}
}

// lineX is the note-local x of a byte position within one laid-out
// line. Unlike caret it never jumps to another line at wrap points.
func (a *App) lineX(l noteLine, bytePos int) float64 {
	x := notePadX + l.indent + l.alignOff
	for _, p := range l.pieces {
		if bytePos <= p.startByte {
			break
		}
		if bytePos >= p.startByte+len(p.text) {
			x = notePadX + l.indent + p.x + p.width
			continue
		}
		face := a.fonts.attrFace(p.attr, 1)
		x = notePadX + l.indent + p.x + measureString(face, p.text[:bytePos-p.startByte])
		break
	}
	return x
}

func (a *App) drawNoteSelection(screen *ebiten.Image, nl noteLayout, origin slate.Point, s float64, ed *richtext.Editor) {
	start, end, ok := ed.SelectionRange()
	if !ok {
		return
	}
	selClr := color.RGBA{0xB7, 0xD2, 0xF4, 0xA0}
	for _, l := range nl.lines {
		if l.block < start.Block || l.block > end.Block {
			continue
		}
		from := l.startByte
		to := l.endByte
		if l.block == start.Block && start.Byte > from {
			from = start.Byte
		}
		if l.block == end.Block && end.Byte < to {
			to = end.Byte
		}
		if from >= to && !(l.startByte == l.endByte && from == to) {
			continue
		}
		x1 := a.lineX(l, from)
		x2 := a.lineX(l, to)
		if x2 < x1+2 {
			x2 = x1 + 2
		}
		vector.DrawFilledRect(screen,
			float32(origin.X+x1*s), float32(origin.Y+l.y*s),
			float32((x2-x1)*s), float32(l.height*s), selClr, false)
	}
}

// ---- selection grips ----

func (a *App) drawSelection(screen *ebiten.Image, view slate.View) {
	id := a.objects.Selected()
	if id == "" {
		return
	}
	h, ok := a.objects.Handle(id)
	if !ok || !h.Visible {
		return
	}
	r := itemScreenRect(h.Item, view)
	vector.StrokeRect(screen, float32(r.x), float32(r.y), float32(r.w), float32(r.h), 1.5, a.theme.SelectionBox, false)
	for _, g := range object.GripRects(h.Item, view) {
		vector.DrawFilledRect(screen, float32(g[0]), float32(g[1]), float32(g[2]), float32(g[3]), color.RGBA{0xFF, 0xFF, 0xFF, 0xFF}, false)
		vector.StrokeRect(screen, float32(g[0]), float32(g[1]), float32(g[2]), float32(g[3]), 1, a.theme.SelectionBox, false)
	}
}

// ---- toolbar ----

func (a *App) layoutToolbarControls(face font.Face) {
	a.toolbarActions = a.toolbarActions[:0]
	a.colorSwatches = a.colorSwatches[:0]
	a.colorPopupRect = rect{}

	wb := a.scene.Whiteboard()
	mode := a.machine.Mode()
	x := 10
	y := 6
	h := a.layout.ToolbarH - 12
	if h < 24 {
		h = 24
	}
	mx, my := ebiten.CursorPosition()

	addBtn := func(id, label string, w int, active, disabled bool) rect {
		label = a.tr.T(label)
		if w <= 0 {
			w = textWidth(face, label) + 20
			if w < 40 {
				w = 40
			}
		}
		r := rect{x: x, y: y, w: w, h: h}
		bg := a.theme.PanelRow
		if active {
			bg = a.theme.PanelActive
		}
		a.frameBuffer.FillRect(r.x, r.y, r.w, r.h, bg)
		if !disabled && r.contains(mx, my) {
			hl := a.theme.Accent
			hl.A = 0x2E
			a.frameBuffer.BlendRect(r.x, r.y, r.w, r.h, hl)
		}
		a.frameBuffer.StrokeRect(r.x, r.y, r.w, r.h, 1, a.theme.Border)
		a.toolbarActions = append(a.toolbarActions, actionButton{id: id, label: label, r: r, active: active, disabled: disabled})
		x += w + 6
		return r
	}
	gap := func() { x += 8 }

	addBtn("tool_cursor", "Cursor", 0, mode == input.ModeCursor, false)
	addBtn("tool_hand", "Hand", 0, mode == input.ModeHand, false)
	addBtn("tool_pen", "Pen", 0, mode == input.ModePen, false)
	addBtn("tool_eraser", "Eraser", 0, mode == input.ModeEraser, false)
	gap()

	addBtn("pen_size_down", "-", 26, false, false)
	addBtn("", fmt.Sprintf("%.0fpx", wb.Pen.Size), 48, false, true)
	addBtn("pen_size_up", "+", 26, false, false)
	colorRect := addBtn("pen_color", "Color", 64, a.showColorPicker, false)
	a.frameBuffer.FillRect(colorRect.x+colorRect.w-14, colorRect.y+6, 8, colorRect.h-12, rgbaFromUint32(wb.Pen.Color))
	a.frameBuffer.StrokeRect(colorRect.x+colorRect.w-14, colorRect.y+6, 8, colorRect.h-12, 1, a.theme.Border)
	addBtn("pen_opacity_down", "-", 26, false, false)
	addBtn("", fmt.Sprintf("%.0f%%", wb.Pen.Opacity*100), 48, false, true)
	addBtn("pen_opacity_up", "+", 26, false, false)
	gap()

	addBtn("add_note", "Note", 0, false, false)
	addBtn("add_image", "Image", 0, false, false)
	gap()

	addBtn("undo", "Undo", 0, false, !a.scene.CanUndo())
	addBtn("redo", "Redo", 0, false, !a.scene.CanRedo())
	gap()

	addBtn("layers", "Layers", 0, a.panelVisible, false)
	addBtn("clear_layer", "Clear", 0, false, false)
	addBtn("reset_view", "1:1", 40, false, false)
	gap()

	addBtn("export", "Export", 0, false, false)
	addBtn("save", "Save", 0, false, false)
	addBtn("scale_down", "A-", 32, false, false)
	addBtn("scale_up", "A+", 32, false, false)

	if a.showColorPicker {
		cols := 6
		size := 22
		gapPx := 6
		popupW := cols*(size+gapPx) + 10
		rows := (len(penPalette) + cols - 1) / cols
		popupH := rows*(size+gapPx) + 10
		px := colorRect.x
		py := colorRect.y + colorRect.h + 4
		a.colorPopupRect = rect{x: px, y: py, w: popupW, h: popupH}
		for i, c := range penPalette {
			cx := px + 8 + (i%cols)*(size+gapPx)
			cy := py + 8 + (i/cols)*(size+gapPx)
			a.colorSwatches = append(a.colorSwatches, colorSwatch{value: c, r: rect{x: cx, y: cy, w: size, h: size}})
		}
	}
}

func (a *App) drawToolbarLabels(screen *ebiten.Image, face font.Face) {
	for _, btn := range a.toolbarActions {
		clr := color.RGBA{0x2C, 0x3A, 0x52, 0xFF}
		if btn.disabled && btn.id != "" {
			clr = color.RGBA{0x9A, 0xA5, 0xB5, 0xFF}
		} else if btn.active {
			clr = color.RGBA{0x13, 0x3E, 0x7A, 0xFF}
		}
		drawLabel(screen, face, btn.r, btn.label, clr)
	}
}

// ---- layer panel ----

func (a *App) layoutPanelRows() {
	a.panelRows = a.panelRows[:0]
	a.panelAddRect = rect{}
	if !a.layout.PanelVisible {
		return
	}
	wb := a.scene.Whiteboard()
	rows := ui.LayerRows(wb.Layers, a.activeLayer)

	x := a.layout.PanelX + 8
	w := a.layout.PanelW - 16
	y := a.layout.CanvasY + 8
	rowH := a.layout.PanelRowH
	mx, my := ebiten.CursorPosition()

	a.panelAddRect = rect{x: x, y: y, w: w, h: rowH - 6}
	a.frameBuffer.FillRect(a.panelAddRect.x, a.panelAddRect.y, a.panelAddRect.w, a.panelAddRect.h, a.theme.PanelActive)
	a.frameBuffer.StrokeRect(a.panelAddRect.x, a.panelAddRect.y, a.panelAddRect.w, a.panelAddRect.h, 1, a.theme.Border)
	y += rowH

	btn := rowH - 12
	for _, row := range rows {
		rr := rect{x: x, y: y, w: w, h: rowH - 6}
		bg := a.theme.PanelRow
		if row.Active {
			bg = a.theme.PanelActive
		}
		a.frameBuffer.FillRect(rr.x, rr.y, rr.w, rr.h, bg)
		if rr.contains(mx, my) {
			hl := a.theme.Accent
			hl.A = 0x1E
			a.frameBuffer.BlendRect(rr.x, rr.y, rr.w, rr.h, hl)
		}
		a.frameBuffer.StrokeRect(rr.x, rr.y, rr.w, rr.h, 1, a.theme.Border)

		pr := panelRow{
			row:     row,
			rowRect: rr,
			eyeRect: rect{x: rr.x + 4, y: rr.y + 3, w: btn, h: btn},
			delRect: rect{x: rr.x + rr.w - btn - 4, y: rr.y + 3, w: btn, h: btn},
		}
		pr.downRect = rect{x: pr.delRect.x - btn - 2, y: rr.y + 3, w: btn, h: btn}
		pr.upRect = rect{x: pr.downRect.x - btn - 2, y: rr.y + 3, w: btn, h: btn}
		pr.nameRect = rect{x: pr.eyeRect.x + btn + 4, y: rr.y, w: pr.upRect.x - pr.eyeRect.x - btn - 8, h: rr.h}
		a.panelRows = append(a.panelRows, pr)
		y += rowH
	}
}

func (a *App) drawPanelLabels(screen *ebiten.Image, face font.Face) {
	if !a.layout.PanelVisible {
		return
	}
	drawLabel(screen, face, a.panelAddRect, a.tr.T("+ Add layer"), color.RGBA{0x13, 0x3E, 0x7A, 0xFF})
	ink := color.RGBA{0x2F, 0x3C, 0x4E, 0xFF}
	faded := color.RGBA{0x9A, 0xA5, 0xB5, 0xFF}
	for _, pr := range a.panelRows {
		eye := "[o]"
		if !pr.row.Visible {
			eye = "[-]"
		}
		drawLabel(screen, face, pr.eyeRect, eye, ink)

		name := pr.row.Name
		if a.renameLayerID == pr.row.LayerID {
			name = a.renameBuffer + "_"
		}
		ascent := face.Metrics().Ascent.Round()
		descent := face.Metrics().Descent.Round()
		baseline := pr.nameRect.y + (pr.nameRect.h+ascent+descent)/2 - descent
		text.Draw(screen, name, face, pr.nameRect.x, baseline, ink)

		up, down, del := faded, faded, faded
		if pr.row.CanMoveUp {
			up = ink
		}
		if pr.row.CanMoveDown {
			down = ink
		}
		if pr.row.CanDelete {
			del = ink
		}
		drawLabel(screen, face, pr.upRect, "^", up)
		drawLabel(screen, face, pr.downRect, "v", down)
		drawLabel(screen, face, pr.delRect, "x", del)
	}
}

// ---- status bar ----

func (a *App) drawStatus(screen *ebiten.Image, face font.Face, wb *slate.Whiteboard) {
	ink := color.RGBA{0x2A, 0x38, 0x50, 0xFF}
	baseline := a.layout.StatusY + (a.layout.StatusH+10)/2

	layerName := ""
	if i := wb.LayerIndex(a.activeLayer); i >= 0 {
		layerName = wb.Layers[i].Name
	}
	left := fmt.Sprintf("[ %s ] [ Pen %.0fpx %.0f%% ] [ %s ]",
		a.machine.Mode().String(), wb.Pen.Size, wb.Pen.Opacity*100, layerName)
	right := fmt.Sprintf("[ Zoom %.0f%% ] [ %s ]", wb.View.Scale*100, a.status)
	text.Draw(screen, left, face, 12, baseline, ink)
	text.Draw(screen, right, face, a.screenW/2, baseline, ink)
}

// ---- context menu ----

func (a *App) menuLabel(act ui.MenuAction) string {
	return a.tr.T(a.rawMenuLabel(act))
}

func (a *App) rawMenuLabel(act ui.MenuAction) string {
	switch act {
	case ui.ActDelete:
		return "Delete"
	case ui.ActResetAspect:
		return "1:1"
	case ui.ActToggleBorder:
		return "Border"
	case ui.ActBorderColor:
		return "B-Col"
	case ui.ActBorderWidth:
		return "B-Px"
	case ui.ActNoteUndo:
		return "Undo"
	case ui.ActNoteRedo:
		return "Redo"
	case ui.ActFontSize:
		if ed := a.objects.Editor(); ed != nil {
			return fmt.Sprintf("%dpt", ed.CurrentAttr().FontSizePt)
		}
		return "pt"
	case ui.ActBold:
		return "B"
	case ui.ActItalic:
		return "I"
	case ui.ActUnderline:
		return "U"
	case ui.ActStrike:
		return "S"
	case ui.ActTextColor:
		return "Color"
	case ui.ActHighlight:
		return "HL"
	case ui.ActClearFormat:
		return "Plain"
	case ui.ActAlignLeft:
		return "L"
	case ui.ActAlignCenter:
		return "C"
	case ui.ActAlignRight:
		return "R"
	case ui.ActListBullet:
		return "List"
	case ui.ActListOrdered:
		return "1-2-3"
	case ui.ActListCheck:
		return "[x]"
	case ui.ActInsertImage:
		return "Img"
	}
	return "?"
}

func (a *App) menuActive(act ui.MenuAction) bool {
	ed := a.objects.Editor()
	if ed == nil {
		return false
	}
	attr := ed.CurrentAttr()
	switch act {
	case ui.ActBold:
		return attr.Bold
	case ui.ActItalic:
		return attr.Italic
	case ui.ActUnderline:
		return attr.Underline
	case ui.ActStrike:
		return attr.Strike
	case ui.ActHighlight:
		return attr.Highlight
	}
	return false
}

func (a *App) drawContextMenu(screen *ebiten.Image, face font.Face) {
	a.menuButtons = a.menuButtons[:0]
	if !a.menu.Visible {
		return
	}
	h := a.dp(a.theme.MenuHeightDp)
	pad := 4
	x := int(a.menu.X)
	y := int(a.menu.Y)
	if y < a.layout.ToolbarH+2 {
		y = a.layout.ToolbarH + 2
	}

	total := pad
	for _, act := range a.menu.Actions {
		total += textWidth(face, a.menuLabel(act)) + 16 + pad
	}
	if x+total > a.screenW {
		x = a.screenW - total
	}
	if x < 0 {
		x = 0
	}

	vector.DrawFilledRect(screen, float32(x), float32(y), float32(total), float32(h), a.theme.Menu, false)

	bx := x + pad
	mx, my := ebiten.CursorPosition()
	for _, act := range a.menu.Actions {
		label := a.menuLabel(act)
		w := textWidth(face, label) + 16
		r := rect{x: bx, y: y + pad, w: w, h: h - 2*pad}
		active := a.menuActive(act)
		if active {
			vector.DrawFilledRect(screen, float32(r.x), float32(r.y), float32(r.w), float32(r.h), a.theme.MenuActive, false)
		} else if r.contains(mx, my) {
			vector.DrawFilledRect(screen, float32(r.x), float32(r.y), float32(r.w), float32(r.h), color.RGBA{0x44, 0x4B, 0x56, 0xFF}, false)
		}
		drawLabel(screen, face, r, label, color.RGBA{0xF4, 0xF8, 0xFF, 0xFF})
		a.menuButtons = append(a.menuButtons, menuButton{act: act, label: label, r: r, active: active})
		bx += w + pad
	}
}

// ---- color popup ----

func (a *App) drawColorPicker(screen *ebiten.Image) {
	if !a.showColorPicker || a.colorPopupRect.w == 0 {
		return
	}
	p := a.colorPopupRect
	vector.DrawFilledRect(screen, float32(p.x), float32(p.y), float32(p.w), float32(p.h), a.theme.PanelRow, false)
	vector.StrokeRect(screen, float32(p.x), float32(p.y), float32(p.w), float32(p.h), 1, a.theme.Border, false)
	for _, sw := range a.colorSwatches {
		vector.DrawFilledRect(screen, float32(sw.r.x), float32(sw.r.y), float32(sw.r.w), float32(sw.r.h), rgbaFromUint32(sw.value), false)
		vector.StrokeRect(screen, float32(sw.r.x), float32(sw.r.y), float32(sw.r.w), float32(sw.r.h), 1, a.theme.Border, false)
	}
}

// ---- confirm modal ----

func (a *App) drawConfirm(screen *ebiten.Image, face font.Face) {
	c := a.confirm
	if c == nil {
		return
	}
	w, h := a.screenW, a.screenH
	vector.DrawFilledRect(screen, 0, 0, float32(w), float32(h), color.RGBA{0, 0, 0, 90}, false)

	pw := textWidth(face, c.message) + 48
	if pw < 320 {
		pw = 320
	}
	if pw > w-80 {
		pw = w - 80
	}
	ph := 120
	px := (w - pw) / 2
	py := (h - ph) / 2
	c.panel = rect{x: px, y: py, w: pw, h: ph}

	vector.DrawFilledRect(screen, float32(px), float32(py), float32(pw), float32(ph), a.theme.PanelRow, false)
	vector.StrokeRect(screen, float32(px), float32(py), float32(pw), float32(ph), 1, a.theme.Border, false)
	text.Draw(screen, c.message, face, px+24, py+36, color.RGBA{0x18, 0x26, 0x38, 0xFF})

	bw, bh := 90, 30
	by := py + ph - bh - 16
	c.okRect = rect{x: px + pw - bw - 16, y: by, w: bw, h: bh}
	vector.DrawFilledRect(screen, float32(c.okRect.x), float32(c.okRect.y), float32(bw), float32(bh), a.theme.Accent, false)
	drawLabel(screen, face, c.okRect, c.okLabel, color.RGBA{0xF4, 0xF8, 0xFF, 0xFF})

	if !c.alertOnly {
		c.cancelRect = rect{x: c.okRect.x - bw - 12, y: by, w: bw, h: bh}
		vector.DrawFilledRect(screen, float32(c.cancelRect.x), float32(c.cancelRect.y), float32(bw), float32(bh), a.theme.PanelActive, false)
		drawLabel(screen, face, c.cancelRect, a.tr.T("Cancel"), color.RGBA{0x18, 0x26, 0x38, 0xFF})
	}
}
