package app

import (
	"testing"

	"github.com/hajimehoshi/ebiten/v2"

	"slate/internal/object"
	"slate/internal/scene"
	"slate/pkg/slate"
)

// newEditingApp builds an app around a scene holding one note already
// in edit mode, with inert key sources.
func newEditingApp(t *testing.T, text string) (*App, slate.Item) {
	t.Helper()
	a := &App{
		fonts:    newFontBank(),
		uiScales: []float32{1},
	}
	a.measure = &textMeasurer{bank: a.fonts}
	a.keyJust = func(ebiten.Key) bool { return false }
	a.inputChars = func() []rune { return nil }
	a.scene = scene.NewManager(slate.NewProject("test"), nil)

	it := slate.Item{
		ID:      slate.NewID(),
		Type:    slate.ItemNote,
		LayerID: a.scene.Whiteboard().Layers[0].ID,
		X:       100, Y: 100, W: 240, H: 160,
		Background: slate.DefaultNoteBackground,
		Note: &slate.NoteContent{Blocks: []slate.NoteBlock{{
			Kind: slate.BlockParagraph,
			Text: []byte(text),
		}}},
	}
	a.scene.AddItem(it)
	a.objects = object.NewManager(a.scene, a.measure)
	if !a.objects.BeginEdit(it.ID) {
		t.Fatal("note must enter edit mode")
	}
	h, ok := a.objects.Handle(it.ID)
	if !ok {
		t.Fatal("edited note missing from the arena")
	}
	return a, h.Item
}

func TestPlainClickPlacesCaretWithoutSelecting(t *testing.T) {
	a, it := newEditingApp(t, "hello world")
	ed := a.objects.Editor()
	if ed.CaretByte != len("hello world") {
		t.Fatalf("fresh editor caret at %d", ed.CaretByte)
	}

	a.noteEditClick(it, it.X+notePadX+0.5, it.Y+notePadY+1, false)

	if ed.HasSelection() {
		from, to, _ := ed.SelectionRange()
		t.Fatalf("plain click left a selection %v..%v", from, to)
	}
	if ed.CurrentBlock != 0 || ed.CaretByte != 0 {
		t.Fatalf("caret at block %d byte %d, want 0/0", ed.CurrentBlock, ed.CaretByte)
	}

	ed.InsertText("x")
	if got := ed.PlainText(); got != "xhello world" {
		t.Fatalf("typing after a click must insert, not replace: %q", got)
	}
}

func TestShiftClickSelectsFromPreviousCaret(t *testing.T) {
	a, it := newEditingApp(t, "hello world")
	ed := a.objects.Editor()

	a.noteEditClick(it, it.X+notePadX+0.5, it.Y+notePadY+1, true)

	if got := ed.SelectedText(); got != "hello world" {
		t.Fatalf("shift-click selection %q", got)
	}
}

func TestStrikeChordKeepsSelectionText(t *testing.T) {
	a, _ := newEditingApp(t, "hello world")
	ed := a.objects.Editor()
	ed.SelectAll()

	a.keyJust = func(k ebiten.Key) bool { return k == ebiten.KeyX }
	a.updateNoteEditing(true, true)

	if got := ed.PlainText(); got != "hello world" {
		t.Fatalf("ctrl+shift+X must not cut: %q", got)
	}
	if !ed.CurrentAttr().Strike {
		t.Fatal("ctrl+shift+X must toggle strikethrough")
	}
	if !ed.HasSelection() {
		t.Fatal("selection must survive the style toggle")
	}
}
