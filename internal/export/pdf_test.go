package export

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"slate/pkg/slate"
)

func boardWithInk() *slate.Whiteboard {
	wb := slate.NewWhiteboard()
	layerID := wb.Layers[0].ID
	wb.Strokes = append(wb.Strokes, slate.Stroke{
		ID:      slate.NewID(),
		Points:  []slate.Point{{X: 0, Y: 0}, {X: 100, Y: 50}, {X: 200, Y: 0}},
		Color:   0x1D4ED8FF,
		Size:    3,
		Opacity: 1,
		LayerID: layerID,
	})
	wb.Items = append(wb.Items, slate.Item{
		ID:         slate.NewID(),
		Type:       slate.ItemNote,
		LayerID:    layerID,
		X:          20, Y: 80, W: 200, H: 160,
		Background: slate.DefaultNoteBackground,
		Note: &slate.NoteContent{Blocks: []slate.NoteBlock{
			{Kind: slate.BlockParagraph, Text: []byte("exported note")},
			{Kind: slate.BlockCheck, Checked: true, Text: []byte("done")},
		}},
	})
	return wb
}

func TestPDFWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "board.pdf")
	if err := PDF(path, boardWithInk()); err != nil {
		t.Fatalf("export failed: %v", err)
	}
	blob, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(blob) < 4 || string(blob[:4]) != "%PDF" {
		t.Fatalf("not a PDF: %q", blob[:min(8, len(blob))])
	}
}

func TestPDFRejectsEmptyBoard(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.pdf")
	err := PDF(path, slate.NewWhiteboard())
	if !errors.Is(err, ErrEmptyBoard) {
		t.Fatalf("expected ErrEmptyBoard, got %v", err)
	}
}

func TestPDFSkipsHiddenLayers(t *testing.T) {
	wb := boardWithInk()
	wb.Layers[0].Visible = false
	err := PDF(filepath.Join(t.TempDir(), "hidden.pdf"), wb)
	if !errors.Is(err, ErrEmptyBoard) {
		t.Fatalf("hidden-only content must export nothing, got %v", err)
	}
}

func TestNoteTextMarkers(t *testing.T) {
	n := &slate.NoteContent{Blocks: []slate.NoteBlock{
		{Kind: slate.BlockBullet, Text: []byte("a")},
		{Kind: slate.BlockCheck, Text: []byte("b")},
	}}
	if got := noteText(n); got != "- a\n[ ] b" {
		t.Fatalf("unexpected note text: %q", got)
	}
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
