package app

import (
	"bytes"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"

	"slate/internal/export"
	"slate/internal/input"
	"slate/internal/ui"
	"slate/pkg/slate"

	"github.com/sqweek/dialog"
	xclipboard "golang.design/x/clipboard"
)

var borderWidths = []float64{2, 5, 8, 12}

// handleChromeClick routes a left press that lands on chrome. Returns
// false when the press belongs to the canvas.
func (a *App) handleChromeClick(x, y int) bool {
	for _, btn := range a.menuButtons {
		if btn.r.contains(x, y) {
			a.invokeMenuAction(btn.act)
			return true
		}
	}
	for _, sw := range a.colorSwatches {
		if sw.r.contains(x, y) {
			a.applySwatch(sw.value)
			return true
		}
	}
	if a.showColorPicker {
		if a.colorPopupRect.contains(x, y) {
			return true
		}
		a.showColorPicker = false
	}
	if y < a.layout.ToolbarH {
		for _, btn := range a.toolbarActions {
			if btn.r.contains(x, y) && !btn.disabled {
				a.invokeAction(btn.id)
				break
			}
		}
		return true
	}
	if a.layout.PanelVisible && x >= a.layout.PanelX && y < a.layout.StatusY {
		a.panelClick(x, y)
		return true
	}
	if y >= a.layout.StatusY {
		return true
	}
	return false
}

func (a *App) applySwatch(value uint32) {
	a.showColorPicker = false
	if ed := a.objects.Editor(); ed != nil {
		ed.SetColor(value)
		a.status = "Applied text color"
		return
	}
	wb := a.scene.Whiteboard()
	pen := wb.Pen
	pen.Color = value
	a.scene.UpdatePen(pen)
	a.status = "Applied pen color"
}

func (a *App) invokeAction(id string) {
	switch id {
	case "tool_cursor":
		a.machine.SetMode(input.ModeCursor)
	case "tool_hand":
		a.machine.SetMode(input.ModeHand)
	case "tool_pen":
		a.machine.SetMode(input.ModePen)
	case "tool_eraser":
		a.machine.SetMode(input.ModeEraser)
	case "pen_size_down":
		a.bumpPenSize(-1)
	case "pen_size_up":
		a.bumpPenSize(1)
	case "pen_opacity_down":
		a.bumpPenOpacity(-0.1)
	case "pen_opacity_up":
		a.bumpPenOpacity(0.1)
	case "pen_color":
		a.showColorPicker = !a.showColorPicker
	case "add_note":
		a.addNote()
	case "add_image":
		a.insertImageDialog()
	case "undo":
		a.undo()
	case "redo":
		a.redo()
	case "layers":
		a.panelVisible = !a.panelVisible
	case "clear_layer":
		a.clearActiveLayer()
	case "reset_view":
		a.scene.UpdateView(slate.View{X: 0, Y: 0, Scale: 1})
		a.status = "View reset"
	case "export":
		a.exportPDF()
	case "save":
		a.saveNow()
	case "scale_down":
		a.bumpUIScale(-1)
	case "scale_up":
		a.bumpUIScale(1)
	}
}

func (a *App) bumpPenSize(delta float64) {
	pen := a.scene.Whiteboard().Pen
	pen.Size += delta
	if pen.Size < 1 {
		pen.Size = 1
	}
	if pen.Size > 30 {
		pen.Size = 30
	}
	a.scene.UpdatePen(pen)
}

func (a *App) bumpPenOpacity(delta float64) {
	pen := a.scene.Whiteboard().Pen
	pen.Opacity += delta
	if pen.Opacity < 0.1 {
		pen.Opacity = 0.1
	}
	if pen.Opacity > 1 {
		pen.Opacity = 1
	}
	a.scene.UpdatePen(pen)
}

func (a *App) bumpUIScale(delta int) {
	prev := a.uiScaleIdx
	a.uiScaleIdx += delta
	if a.uiScaleIdx < 0 {
		a.uiScaleIdx = 0
	}
	if a.uiScaleIdx >= len(a.uiScales) {
		a.uiScaleIdx = len(a.uiScales) - 1
	}
	if prev != a.uiScaleIdx {
		a.fonts.reset()
	}
}

func (a *App) activeLayerVisible() bool {
	wb := a.scene.Whiteboard()
	i := wb.LayerIndex(a.activeLayer)
	return i >= 0 && wb.Layers[i].Visible
}

func (a *App) addNote() {
	if !a.activeLayerVisible() {
		a.alert("The active layer is hidden. Show it to add a note.")
		return
	}
	it := a.objects.AddNote(a.activeLayer, float64(a.screenW), float64(a.screenH))
	a.selectItem(it.ID)
	a.status = "Note added"
}

func (a *App) insertImageDialog() {
	path, err := dialog.File().Filter("Image files", "png", "jpg", "jpeg").Load()
	if err != nil {
		if err != dialog.ErrCancelled {
			a.status = "Insert image failed: " + err.Error()
		}
		return
	}
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		a.status = "Insert image failed: " + err.Error()
		return
	}
	a.addImageFromBytes(data)
}

func (a *App) pasteImageFromClipboard() {
	if !a.clipboardReady {
		return
	}
	data := xclipboard.Read(xclipboard.FmtImage)
	if len(data) == 0 {
		return
	}
	a.addImageFromBytes(data)
}

func (a *App) addImageFromBytes(data []byte) {
	if !a.activeLayerVisible() {
		a.alert("The active layer is hidden. Show it to add an image.")
		return
	}
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		a.status = "Unsupported image: " + err.Error()
		return
	}
	mime := "image/png"
	if format == "jpeg" {
		mime = "image/jpeg"
	}
	it := a.objects.AddImage(a.activeLayer, mime, data, cfg.Width, cfg.Height, float64(a.screenW), float64(a.screenH))
	a.selectItem(it.ID)
	a.status = "Image added"
}

func (a *App) deleteItem(id string) {
	if a.objects.Editing() == id {
		a.objects.EndEdit()
	}
	if a.objects.Delete(id) {
		delete(a.imageCache, id)
		a.menu.Hide()
		a.status = "Item deleted"
	}
}

func (a *App) clearActiveLayer() {
	wb := a.scene.Whiteboard()
	i := wb.LayerIndex(a.activeLayer)
	if i < 0 {
		return
	}
	name := wb.Layers[i].Name
	id := a.activeLayer
	a.confirmAction("Clear every item and stroke on \""+name+"\"?", "Clear", func() {
		a.scene.RecordHistory()
		if a.scene.ClearLayer(id) {
			a.comp.DropLayerBuffer(id)
			a.status = "Layer cleared"
		}
	})
}

func (a *App) addLayer() {
	wb := a.scene.Whiteboard()
	layer := a.scene.AddLayer(ui.NextLayerName(wb.Layers))
	a.activeLayer = layer.ID
	a.status = "Layer added"
}

func (a *App) panelClick(x, y int) {
	if a.panelAddRect.contains(x, y) {
		a.addLayer()
		return
	}
	for _, pr := range a.panelRows {
		switch {
		case pr.eyeRect.contains(x, y):
			a.scene.ToggleLayerVisibility(pr.row.LayerID)
			return
		case pr.upRect.contains(x, y):
			if pr.row.CanMoveUp {
				a.scene.ReorderLayers(pr.row.StorageIndex, pr.row.StorageIndex+1)
			}
			return
		case pr.downRect.contains(x, y):
			if pr.row.CanMoveDown {
				a.scene.ReorderLayers(pr.row.StorageIndex, pr.row.StorageIndex-1)
			}
			return
		case pr.delRect.contains(x, y):
			if pr.row.CanDelete {
				a.deleteLayerPrompt(pr.row)
			}
			return
		case pr.nameRect.contains(x, y):
			if pr.row.Active {
				a.renameLayerID = pr.row.LayerID
				a.renameBuffer = pr.row.Name
			} else {
				a.activeLayer = pr.row.LayerID
			}
			return
		case pr.rowRect.contains(x, y):
			a.activeLayer = pr.row.LayerID
			return
		}
	}
}

func (a *App) deleteLayerPrompt(row ui.LayerRow) {
	id := row.LayerID
	a.confirmAction("Delete layer \""+row.Name+"\" and everything on it?", "Delete", func() {
		if a.scene.DeleteLayer(id) {
			a.comp.DropLayerBuffer(id)
			a.status = "Layer deleted"
		}
	})
}

func (a *App) saveNow() {
	if err := a.scene.SaveNow(); err != nil {
		a.log.Error().Err(err).Msg("save failed")
		a.status = "Save failed: " + err.Error()
		return
	}
	a.status = "Saved " + filepath.Base(a.deck.Path())
}

func (a *App) exportPDF() {
	path, err := dialog.File().Filter("PDF files", "pdf").Save()
	if err != nil {
		if err != dialog.ErrCancelled {
			a.status = "Export failed: " + err.Error()
		}
		return
	}
	if !strings.HasSuffix(strings.ToLower(path), ".pdf") {
		path += ".pdf"
	}
	if err := export.PDF(path, a.scene.Whiteboard()); err != nil {
		a.status = "Export failed: " + err.Error()
		return
	}
	a.status = "Exported " + filepath.Base(path)
}

func (a *App) invokeMenuAction(act ui.MenuAction) {
	id := a.menu.ItemID
	h, ok := a.objects.Handle(id)
	if !ok {
		a.menu.Hide()
		return
	}
	ed := a.objects.Editor()
	styled := func(fn func()) {
		if ed == nil {
			return
		}
		fn()
		a.objects.AutoGrow()
	}

	switch act {
	case ui.ActDelete:
		a.deleteItem(id)
		return
	case ui.ActResetAspect:
		if w, hgt, err := naturalImageSize(h.Item.ImageData); err == nil {
			a.objects.ResetAspect(id, w, hgt)
		}
	case ui.ActToggleBorder:
		a.objects.ToggleBorder(id)
	case ui.ActBorderColor:
		if h.Item.Border != nil {
			a.objects.SetBorder(id, h.Item.Border.Width, nextPaletteColor(h.Item.Border.Color))
		}
	case ui.ActBorderWidth:
		if h.Item.Border != nil {
			a.objects.SetBorder(id, nextBorderWidth(h.Item.Border.Width), h.Item.Border.Color)
		}
	case ui.ActNoteUndo:
		styled(func() { ed.Undo() })
	case ui.ActNoteRedo:
		styled(func() { ed.Redo() })
	case ui.ActFontSize:
		styled(func() {
			sz := ed.CurrentAttr().FontSizePt + 2
			if sz > 32 {
				sz = 8
			}
			ed.SetFontSize(sz)
		})
	case ui.ActBold:
		styled(ed.ToggleBold)
	case ui.ActItalic:
		styled(ed.ToggleItalic)
	case ui.ActUnderline:
		styled(ed.ToggleUnderline)
	case ui.ActStrike:
		styled(ed.ToggleStrike)
	case ui.ActHighlight:
		styled(ed.ToggleHighlight)
	case ui.ActTextColor:
		a.showColorPicker = true
	case ui.ActClearFormat:
		styled(ed.RemoveFormatting)
	case ui.ActAlignLeft:
		styled(func() { ed.SetAlignment(slate.AlignLeft) })
	case ui.ActAlignCenter:
		styled(func() { ed.SetAlignment(slate.AlignCenter) })
	case ui.ActAlignRight:
		styled(func() { ed.SetAlignment(slate.AlignRight) })
	case ui.ActListBullet:
		styled(func() { ed.ToggleBlockKind(slate.BlockBullet) })
	case ui.ActListOrdered:
		styled(func() { ed.ToggleBlockKind(slate.BlockOrdered) })
	case ui.ActListCheck:
		styled(func() { ed.ToggleBlockKind(slate.BlockCheck) })
	case ui.ActInsertImage:
		a.insertImageDialog()
		return
	}

	// Border toggles change the action set, so rebuild the menu.
	if h, ok := a.objects.Handle(id); ok {
		a.menu.ShowFor(h.Item, a.objects.Editing() == id, a.scene.View(), float64(a.dp(a.theme.MenuHeightDp)))
	}
}

func naturalImageSize(data []byte) (int, int, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return 0, 0, err
	}
	return cfg.Width, cfg.Height, nil
}

func nextPaletteColor(current uint32) uint32 {
	for i, c := range penPalette {
		if c == current {
			return penPalette[(i+1)%len(penPalette)]
		}
	}
	return penPalette[0]
}

func nextBorderWidth(current float64) float64 {
	for i, w := range borderWidths {
		if w == current {
			return borderWidths[(i+1)%len(borderWidths)]
		}
	}
	return borderWidths[1]
}
