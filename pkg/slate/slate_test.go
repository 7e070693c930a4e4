package slate

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"
)

func sampleProject() *Project {
	p := NewProject("demo")
	wb := p.EnsureWhiteboard()
	layerID := wb.Layers[0].ID
	wb.Strokes = append(wb.Strokes, Stroke{
		ID:      NewID(),
		Points:  []Point{{X: 1, Y: 2}, {X: 3, Y: 4}, {X: 5, Y: 6}},
		Color:   0x11223344,
		Size:    3,
		Opacity: 0.8,
		LayerID: layerID,
	})
	wb.Items = append(wb.Items, Item{
		ID:         NewID(),
		Type:       ItemNote,
		LayerID:    layerID,
		X:          10, Y: 20, W: 200, H: 160,
		Background: DefaultNoteBackground,
		Note: &NoteContent{Blocks: []NoteBlock{{
			Kind: BlockParagraph,
			Text: []byte("hello board"),
			Runs: []StyleRun{{Start: 0, End: 5, Attr: StyleAttr{Bold: true, FontSizePt: 14, ColorRGBA: 0x202020FF}}},
		}}},
	})
	wb.Items = append(wb.Items, Item{
		ID:        NewID(),
		Type:      ItemImage,
		LayerID:   layerID,
		X:         50, Y: 60, W: 120, H: 80,
		ImageMIME: "image/png",
		ImageData: []byte{0x89, 'P', 'N', 'G', 0, 1, 2, 3},
		Border:    &Border{Width: 5, Color: 0x000000FF},
	})
	return p
}

func TestRoundTripSaveLoad(t *testing.T) {
	p := sampleProject()
	path := filepath.Join(t.TempDir(), "roundtrip.slate")
	if err := Save(path, p); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if loaded.Metadata.Name != "demo" {
		t.Fatalf("name mismatch: %q", loaded.Metadata.Name)
	}
	wb := loaded.Whiteboard
	if len(wb.Layers) != 1 || len(wb.Strokes) != 1 || len(wb.Items) != 2 {
		t.Fatalf("unexpected scene shape: %d layers %d strokes %d items", len(wb.Layers), len(wb.Strokes), len(wb.Items))
	}
	if len(wb.Strokes[0].Points) != 3 || wb.Strokes[0].Points[2] != (Point{X: 5, Y: 6}) {
		t.Fatalf("stroke points mismatch: %#v", wb.Strokes[0].Points)
	}
	note := wb.Items[0]
	if note.Type != ItemNote || note.Note == nil || string(note.Note.Blocks[0].Text) != "hello board" {
		t.Fatalf("note mismatch: %#v", note)
	}
	if !note.Note.Blocks[0].Runs[0].Attr.Bold {
		t.Fatalf("note run lost bold: %#v", note.Note.Blocks[0].Runs)
	}
	img := wb.Items[1]
	if img.Type != ItemImage || img.Border == nil || img.Border.Width != 5 {
		t.Fatalf("image mismatch: %#v", img)
	}
	if string(img.ImageData) != string(p.Whiteboard.Items[1].ImageData) {
		t.Fatalf("image data mismatch")
	}
}

func TestRoundTripCompressedEncrypted(t *testing.T) {
	p := sampleProject()
	path := filepath.Join(t.TempDir(), "secure.slate")
	opts := SaveOptions{Compression: true, Encryption: EncryptionOptions{Enabled: true, Password: "hunter2"}}
	if err := SaveWithOptions(path, p, opts); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	info, err := InspectEnvelope(path)
	if err != nil {
		t.Fatal(err)
	}
	if !info.Wrapped || !info.Compressed || !info.Encrypted {
		t.Fatalf("unexpected envelope info: %#v", info)
	}

	if _, err := Load(path); !errors.Is(err, ErrPasswordRequired) {
		t.Fatalf("expected ErrPasswordRequired, got %v", err)
	}
	if _, err := LoadWithOptions(path, LoadOptions{Password: "wrong"}); !errors.Is(err, ErrInvalidPassword) {
		t.Fatalf("expected ErrInvalidPassword, got %v", err)
	}

	loaded, err := LoadWithOptions(path, LoadOptions{Password: "hunter2"})
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if len(loaded.Whiteboard.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(loaded.Whiteboard.Items))
	}
}

func TestLoadRejectsBadMagic(t *testing.T) {
	blob := make([]byte, headerSize)
	copy(blob, []byte("nottheboards!"))
	path := filepath.Join(t.TempDir(), "badmagic.slate")
	if err := os.WriteFile(path, blob, 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); !errors.Is(err, ErrInvalidMagic) {
		t.Fatalf("expected ErrInvalidMagic, got %v", err)
	}
}

func TestValidateRejectsDanglingLayerRef(t *testing.T) {
	p := sampleProject()
	p.Whiteboard.Strokes[0].LayerID = "missing"
	if err := Validate(p); !errors.Is(err, ErrDanglingLayer) {
		t.Fatalf("expected ErrDanglingLayer, got %v", err)
	}
}

func TestValidateRejectsOverlappingRuns(t *testing.T) {
	p := sampleProject()
	p.Whiteboard.Items[0].Note.Blocks[0].Runs = []StyleRun{
		{Start: 0, End: 4, Attr: StyleAttr{FontSizePt: 12}},
		{Start: 3, End: 6, Attr: StyleAttr{FontSizePt: 12}},
	}
	if err := Validate(p); err == nil {
		t.Fatalf("expected validation error")
	}
}

func TestSnapshotIsIndependentDeepCopy(t *testing.T) {
	p := sampleProject()
	wb := p.Whiteboard
	snap := wb.TakeSnapshot()

	wb.Strokes[0].Points[0].X = 999
	wb.Items[0].Note.Blocks[0].Text[0] = 'H'
	wb.Items[1].ImageData[0] = 0

	if snap.Strokes[0].Points[0].X == 999 {
		t.Fatalf("snapshot shares stroke points with live scene")
	}
	if snap.Items[0].Note.Blocks[0].Text[0] == 'H' {
		t.Fatalf("snapshot shares note text with live scene")
	}
	if snap.Items[1].ImageData[0] == 0 {
		t.Fatalf("snapshot shares image data with live scene")
	}
}

func TestEnsureWhiteboardMaterializesDefaults(t *testing.T) {
	p := NewProject("")
	wb := p.EnsureWhiteboard()
	if len(wb.Layers) != 1 || wb.Layers[0].Name != "Layer 1" || !wb.Layers[0].Visible {
		t.Fatalf("unexpected default layer: %#v", wb.Layers)
	}
	if wb.Pen.Size != DefaultPenSize || wb.Pen.Opacity != DefaultPenOpacity {
		t.Fatalf("unexpected default pen: %#v", wb.Pen)
	}
	if wb.View.Scale != 1 {
		t.Fatalf("unexpected default view: %#v", wb.View)
	}
	if p.EnsureWhiteboard() != wb {
		t.Fatalf("second call must return the same whiteboard")
	}
}

func TestViewTransformRoundTrip(t *testing.T) {
	views := []View{
		{X: 0, Y: 0, Scale: 1},
		{X: 120.5, Y: -64.25, Scale: 0.1},
		{X: -999, Y: 333, Scale: 5},
		{X: 17, Y: 42, Scale: 1.75},
	}
	points := []Point{{0, 0}, {-1000.5, 2048.25}, {3.14159, -2.71828}}
	for _, v := range views {
		for _, p := range points {
			got := v.ScreenToWorld(v.WorldToScreen(p))
			if math.Abs(got.X-p.X) > 1e-9 || math.Abs(got.Y-p.Y) > 1e-9 {
				t.Fatalf("round trip failed for %v under %v: got %v", p, v, got)
			}
		}
	}
}

func TestZoomAtClampsScale(t *testing.T) {
	v := View{Scale: 1}
	for i := 0; i < 100; i++ {
		v = v.ZoomAt(400, 300, 1.5)
	}
	if v.Scale != MaxScale {
		t.Fatalf("expected scale clamped to %v, got %v", MaxScale, v.Scale)
	}
	for i := 0; i < 200; i++ {
		v = v.ZoomAt(400, 300, 0.5)
	}
	if v.Scale != MinScale {
		t.Fatalf("expected scale clamped to %v, got %v", MinScale, v.Scale)
	}
}

func TestZoomAtKeepsPointerFixed(t *testing.T) {
	v := View{X: 30, Y: -20, Scale: 1.2}
	world := v.ScreenToWorld(Point{X: 250, Y: 175})
	v2 := v.ZoomAt(250, 175, 1.3)
	world2 := v2.ScreenToWorld(Point{X: 250, Y: 175})
	if math.Abs(world.X-world2.X) > 1e-9 || math.Abs(world.Y-world2.Y) > 1e-9 {
		t.Fatalf("world point drifted: %v -> %v", world, world2)
	}
}

func TestSymmetricZoomReturnsView(t *testing.T) {
	v := View{X: 10, Y: 20, Scale: 1}
	z := v.ZoomAt(100, 100, 1.25)
	back := z.ZoomAt(100, 100, 1/1.25)
	if math.Abs(back.X-v.X) > 1e-9 || math.Abs(back.Y-v.Y) > 1e-9 || math.Abs(back.Scale-v.Scale) > 1e-12 {
		t.Fatalf("zoom in/out did not return view: %#v vs %#v", back, v)
	}
}

func TestDecodeNoteContentRejectsOversizedBlockCount(t *testing.T) {
	blob := appendU32(nil, 0xFFFFFF00)
	if _, _, err := decodeNoteContent(blob); err == nil {
		t.Fatal("huge block count must be rejected, not allocated")
	}

	blob = appendU32(nil, 2) // claims two blocks, supplies none
	if _, _, err := decodeNoteContent(blob); err == nil {
		t.Fatal("block count exceeding the payload must be rejected")
	}

	enc := encodeNoteContent(nil, &NoteContent{Blocks: []NoteBlock{{
		Kind: BlockParagraph,
		Text: []byte("still fine"),
	}}})
	enc = append(enc, 0xAB, 0xCD)
	n, rest, err := decodeNoteContent(enc)
	if err != nil {
		t.Fatalf("valid payload rejected: %v", err)
	}
	if len(n.Blocks) != 1 || string(n.Blocks[0].Text) != "still fine" {
		t.Fatalf("decoded blocks wrong: %#v", n.Blocks)
	}
	if len(rest) != 2 {
		t.Fatalf("trailing bytes lost: %d left", len(rest))
	}
}
