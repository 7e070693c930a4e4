package ui

import (
	"testing"

	"slate/pkg/slate"
)

func layers(n int) []slate.Layer {
	out := make([]slate.Layer, n)
	for i := range out {
		out[i] = slate.Layer{ID: slate.NewID(), Name: NextLayerName(out[:i]), Visible: true}
	}
	return out
}

func TestLayerRowsReverseStorageOrder(t *testing.T) {
	ls := layers(3)
	rows := LayerRows(ls, ls[1].ID)
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
	if rows[0].LayerID != ls[2].ID || rows[2].LayerID != ls[0].ID {
		t.Fatalf("rows not reversed: %#v", rows)
	}
	if !rows[1].Active {
		t.Fatalf("active flag misplaced: %#v", rows)
	}
}

func TestLayerRowButtonsAtBoundaries(t *testing.T) {
	ls := layers(3)
	rows := LayerRows(ls, "")
	top, mid, bottom := rows[0], rows[1], rows[2]

	if top.CanMoveUp || !top.CanMoveDown {
		t.Fatalf("top row buttons wrong: %#v", top)
	}
	if !mid.CanMoveUp || !mid.CanMoveDown {
		t.Fatalf("middle row buttons wrong: %#v", mid)
	}
	if !bottom.CanMoveUp || bottom.CanMoveDown {
		t.Fatalf("bottom row buttons wrong: %#v", bottom)
	}
}

func TestSingleLayerCannotBeDeleted(t *testing.T) {
	ls := layers(1)
	rows := LayerRows(ls, "")
	if rows[0].CanDelete {
		t.Fatal("last layer must not be deletable")
	}
	rows = LayerRows(layers(2), "")
	if !rows[0].CanDelete || !rows[1].CanDelete {
		t.Fatal("both layers should be deletable")
	}
}

func TestComputeLayoutPanelCarvesCanvas(t *testing.T) {
	theme := DefaultTheme()
	l := ComputeLayout(1280, 800, theme, 1, false)
	if l.CanvasW != 1280 {
		t.Fatalf("canvas width %d", l.CanvasW)
	}
	l = ComputeLayout(1280, 800, theme, 1, true)
	if l.CanvasW != 1280-theme.PanelWidthDp || l.PanelX != 1280-theme.PanelWidthDp {
		t.Fatalf("panel layout wrong: %#v", l)
	}
	if l.CanvasY != theme.ToolbarHeightDp || l.StatusY != 800-theme.StatusHeightDp {
		t.Fatalf("vertical layout wrong: %#v", l)
	}
}

func TestContextMenuActionsPerTarget(t *testing.T) {
	img := slate.Item{ID: "i", Type: slate.ItemImage}
	note := slate.Item{ID: "n", Type: slate.ItemNote}

	var m ContextMenu
	m.ShowFor(img, false, slate.View{Scale: 1}, 32)
	if has(m.Actions, ActBorderColor) {
		t.Fatal("borderless image must not offer border color")
	}
	if !has(m.Actions, ActResetAspect) || !has(m.Actions, ActDelete) {
		t.Fatalf("image menu incomplete: %v", m.Actions)
	}

	img.Border = &slate.Border{Width: 5, Color: 0x000000FF}
	m.ShowFor(img, false, slate.View{Scale: 1}, 32)
	if !has(m.Actions, ActBorderColor) || !has(m.Actions, ActBorderWidth) {
		t.Fatalf("bordered image menu incomplete: %v", m.Actions)
	}

	m.ShowFor(note, false, slate.View{Scale: 1}, 32)
	if len(m.Actions) != 1 || m.Actions[0] != ActDelete {
		t.Fatalf("view-mode note menu must be delete only: %v", m.Actions)
	}

	m.ShowFor(note, true, slate.View{Scale: 1}, 32)
	for _, want := range []MenuAction{ActNoteUndo, ActBold, ActListCheck, ActInsertImage} {
		if !has(m.Actions, want) {
			t.Fatalf("edit-mode note menu missing %v: %v", want, m.Actions)
		}
	}
}

func TestContextMenuTracksAnchor(t *testing.T) {
	it := slate.Item{ID: "n", Type: slate.ItemNote, X: 100, Y: 200, W: 50, H: 50}
	view := slate.View{Scale: 1}

	var m ContextMenu
	m.ShowFor(it, false, view, 32)
	if m.X != 100 || m.Y != 200-32-6 {
		t.Fatalf("anchor wrong: %v,%v", m.X, m.Y)
	}

	view = slate.View{X: 10, Y: 10, Scale: 2}
	m.UpdatePosition(it, view, 32)
	if m.X != 210 || m.Y != 410-32-6 {
		t.Fatalf("anchor did not follow the view: %v,%v", m.X, m.Y)
	}

	m.UpdatePosition(slate.Item{ID: "other"}, view, 32)
	if m.X != 210 {
		t.Fatal("foreign item must not move the menu")
	}

	m.Hide()
	if m.Visible || m.ItemID != "" || m.Actions != nil {
		t.Fatalf("hide must clear state: %#v", m)
	}
}

func has(acts []MenuAction, want MenuAction) bool {
	for _, a := range acts {
		if a == want {
			return true
		}
	}
	return false
}

func TestTranslationsFallBackToKey(t *testing.T) {
	tr := Translations{"Cursor": "Zeiger"}
	if got := tr.T("Cursor"); got != "Zeiger" {
		t.Fatalf("mapped key: %q", got)
	}
	if got := tr.T("Eraser"); got != "Eraser" {
		t.Fatalf("missing key must fall back: %q", got)
	}
	var nilTr Translations
	if got := nilTr.T("Save"); got != "Save" {
		t.Fatalf("nil map must fall back: %q", got)
	}
}
