package scene

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"slate/pkg/slate"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	return NewManager(slate.NewProject("test"), nil)
}

func noteItem(layerID, text string) slate.Item {
	return slate.Item{
		ID:      slate.NewID(),
		Type:    slate.ItemNote,
		LayerID: layerID,
		X:       10, Y: 10, W: 200, H: 160,
		Background: slate.DefaultNoteBackground,
		Note: &slate.NoteContent{Blocks: []slate.NoteBlock{{
			Kind: slate.BlockParagraph,
			Text: []byte(text),
		}}},
	}
}

func strokeOn(layerID string, pts ...slate.Point) slate.Stroke {
	return slate.Stroke{
		ID:      slate.NewID(),
		Points:  pts,
		Color:   0x1D4ED8FF,
		Size:    3,
		Opacity: 1,
		LayerID: layerID,
	}
}

func TestWhiteboardMaterializesOnce(t *testing.T) {
	m := newTestManager(t)
	wb := m.Whiteboard()
	require.Len(t, wb.Layers, 1)
	assert.Same(t, wb, m.Whiteboard())
}

func TestAddUndoRedoItem(t *testing.T) {
	m := newTestManager(t)
	wb := m.Whiteboard()
	layerID := wb.Layers[0].ID

	m.RecordHistory()
	it := noteItem(layerID, "hello")
	m.AddItem(it)
	require.Len(t, m.Whiteboard().Items, 1)

	require.True(t, m.Undo())
	assert.Empty(t, m.Whiteboard().Items)
	assert.False(t, m.Undo(), "undo past the floor must fail")

	require.True(t, m.Redo())
	items := m.Whiteboard().Items
	require.Len(t, items, 1)
	assert.Equal(t, it.ID, items[0].ID)
	assert.Equal(t, "hello", string(items[0].Note.Blocks[0].Text))
	assert.False(t, m.Redo(), "redo past the tip must fail")
}

func TestUndoRedoRoundTripSequence(t *testing.T) {
	m := newTestManager(t)
	layerID := m.Whiteboard().Layers[0].ID

	const n = 7
	for i := 0; i < n; i++ {
		m.RecordHistory()
		m.AddStroke(strokeOn(layerID, slate.Point{X: float64(i)}, slate.Point{X: float64(i) + 1}))
	}
	require.Len(t, m.Whiteboard().Strokes, n)

	for i := 0; i < n; i++ {
		require.True(t, m.Undo())
	}
	assert.Empty(t, m.Whiteboard().Strokes)

	for i := 0; i < n; i++ {
		require.True(t, m.Redo())
	}
	assert.Len(t, m.Whiteboard().Strokes, n)
}

func TestNewMutationTruncatesRedoBranch(t *testing.T) {
	m := newTestManager(t)
	layerID := m.Whiteboard().Layers[0].ID

	m.RecordHistory()
	m.AddStroke(strokeOn(layerID, slate.Point{}, slate.Point{X: 1}))
	m.RecordHistory()
	m.AddStroke(strokeOn(layerID, slate.Point{}, slate.Point{X: 2}))

	require.True(t, m.Undo())
	require.True(t, m.CanRedo())

	m.RecordHistory()
	m.AddStroke(strokeOn(layerID, slate.Point{}, slate.Point{X: 3}))
	assert.False(t, m.CanRedo(), "new mutation must discard the redo branch")

	require.True(t, m.Undo())
	assert.Len(t, m.Whiteboard().Strokes, 1)
}

func TestHistoryCapEvictsOldest(t *testing.T) {
	m := newTestManager(t)
	layerID := m.Whiteboard().Layers[0].ID

	for i := 0; i < HistoryLimit+10; i++ {
		m.RecordHistory()
		m.AddStroke(strokeOn(layerID, slate.Point{X: float64(i)}, slate.Point{X: float64(i) + 1}))
	}

	undos := 0
	for m.Undo() {
		undos++
	}
	assert.Equal(t, HistoryLimit, undos)
	// The floor is the scene as of the evicted prefix, not empty.
	assert.Len(t, m.Whiteboard().Strokes, 10)
	// Recorded snapshots plus the one parked live state.
	assert.LessOrEqual(t, len(m.history), HistoryLimit+1)
}

func TestSnapshotIndependence(t *testing.T) {
	m := newTestManager(t)
	layerID := m.Whiteboard().Layers[0].ID

	m.RecordHistory()
	m.AddStroke(strokeOn(layerID, slate.Point{X: 1}, slate.Point{X: 2}))

	// Mutating the live scene must not corrupt recorded snapshots.
	m.Whiteboard().Strokes[0].Points[0].X = 999
	require.True(t, m.Undo())
	require.True(t, m.Redo())
	assert.Equal(t, 999.0, m.Whiteboard().Strokes[0].Points[0].X,
		"redo restores the parked live state")
	require.True(t, m.Undo())
	assert.Empty(t, m.Whiteboard().Strokes)
}

func TestDeleteLayerCascades(t *testing.T) {
	m := newTestManager(t)
	keep := m.Whiteboard().Layers[0].ID
	doomed := m.AddLayer("Layer 2").ID

	m.AddItem(noteItem(keep, "keep"))
	m.AddItem(noteItem(doomed, "gone"))
	m.AddStroke(strokeOn(keep, slate.Point{}, slate.Point{X: 1}))
	m.AddStroke(strokeOn(doomed, slate.Point{}, slate.Point{X: 2}))
	m.AddStroke(strokeOn(doomed, slate.Point{}, slate.Point{X: 3}))

	require.True(t, m.DeleteLayer(doomed))
	wb := m.Whiteboard()
	require.Len(t, wb.Layers, 1)
	require.Len(t, wb.Items, 1)
	assert.Equal(t, keep, wb.Items[0].LayerID)
	require.Len(t, wb.Strokes, 1)
	assert.Equal(t, keep, wb.Strokes[0].LayerID)

	assert.False(t, m.DeleteLayer("nope"), "unknown layer id is a no-op")
}

func TestClearLayerLeavesOthersUntouched(t *testing.T) {
	m := newTestManager(t)
	a := m.Whiteboard().Layers[0].ID
	b := m.AddLayer("Layer 2").ID

	m.AddItem(noteItem(a, "a"))
	m.AddItem(noteItem(b, "b"))
	m.AddStroke(strokeOn(a, slate.Point{}, slate.Point{X: 1}))
	m.AddStroke(strokeOn(b, slate.Point{}, slate.Point{X: 2}))

	require.True(t, m.ClearLayer(a))
	wb := m.Whiteboard()
	require.Len(t, wb.Layers, 2, "clearing keeps the layer itself")
	require.Len(t, wb.Items, 1)
	assert.Equal(t, b, wb.Items[0].LayerID)
	require.Len(t, wb.Strokes, 1)
	assert.Equal(t, b, wb.Strokes[0].LayerID)
}

func TestReorderLayers(t *testing.T) {
	m := newTestManager(t)
	a := m.Whiteboard().Layers[0].ID
	b := m.AddLayer("Layer 2").ID
	c := m.AddLayer("Layer 3").ID

	require.True(t, m.ReorderLayers(0, 2))
	wb := m.Whiteboard()
	assert.Equal(t, []string{b, c, a}, []string{wb.Layers[0].ID, wb.Layers[1].ID, wb.Layers[2].ID})

	assert.False(t, m.ReorderLayers(0, 5))
	assert.False(t, m.ReorderLayers(-1, 0))
	assert.False(t, m.ReorderLayers(1, 1))
}

func TestUnknownIDMutatorsAreNoOps(t *testing.T) {
	m := newTestManager(t)
	assert.False(t, m.UpdateItem(slate.Item{ID: "missing", W: 1, H: 1}))
	assert.False(t, m.DeleteItem("missing"))
	assert.False(t, m.ToggleLayerVisibility("missing"))
	assert.False(t, m.RenameLayer("missing", "x"))
	assert.False(t, m.ClearLayer("missing"))
}

func TestUpdateViewClampsScaleAndSkipsSave(t *testing.T) {
	var saves atomic.Int32
	m := NewManager(slate.NewProject("test"), func(*slate.Project) error {
		saves.Add(1)
		return nil
	})
	m.SetSaveDelay(5 * time.Millisecond)

	m.UpdateView(slate.View{X: 5, Y: 6, Scale: 99})
	assert.Equal(t, slate.MaxScale, m.View().Scale)
	m.UpdateView(slate.View{Scale: 0.0001})
	assert.Equal(t, slate.MinScale, m.View().Scale)

	time.Sleep(30 * time.Millisecond)
	assert.Zero(t, saves.Load(), "view changes alone must not persist")
}

func TestDebouncedSaveCoalesces(t *testing.T) {
	var saves atomic.Int32
	m := NewManager(slate.NewProject("test"), func(*slate.Project) error {
		saves.Add(1)
		return nil
	})
	m.SetSaveDelay(20 * time.Millisecond)
	layerID := m.Whiteboard().Layers[0].ID

	for i := 0; i < 5; i++ {
		m.AddStroke(strokeOn(layerID, slate.Point{}, slate.Point{X: 1}))
		time.Sleep(2 * time.Millisecond)
	}
	assert.Zero(t, saves.Load(), "saves must wait out the debounce window")

	require.Eventually(t, func() bool { return saves.Load() == 1 },
		time.Second, 5*time.Millisecond)

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(1), saves.Load(), "burst collapses into one save")
}

func TestSaveNowFlushesPendingDebounce(t *testing.T) {
	var saves atomic.Int32
	m := NewManager(slate.NewProject("test"), func(*slate.Project) error {
		saves.Add(1)
		return nil
	})
	m.SetSaveDelay(time.Hour)
	layerID := m.Whiteboard().Layers[0].ID

	m.AddStroke(strokeOn(layerID, slate.Point{}, slate.Point{X: 1}))
	require.NoError(t, m.SaveNow())
	assert.Equal(t, int32(1), saves.Load())

	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, int32(1), saves.Load(), "flush cancels the pending timer")
}

func TestSaveReceivesDetachedCopy(t *testing.T) {
	var saved *slate.Project
	m := NewManager(slate.NewProject("test"), func(p *slate.Project) error {
		saved = p
		return nil
	})
	layerID := m.Whiteboard().Layers[0].ID
	m.AddStroke(strokeOn(layerID, slate.Point{}, slate.Point{X: 1}))

	require.NoError(t, m.SaveNow())
	require.NotNil(t, saved)
	assert.NotSame(t, m.Project(), saved, "save must not see the live project")
	assert.NotSame(t, m.Whiteboard(), saved.Whiteboard)
	require.Len(t, saved.Whiteboard.Strokes, 1)

	m.AddStroke(strokeOn(layerID, slate.Point{}, slate.Point{X: 2}))
	saved.Whiteboard.Strokes[0].Points[0].X = 99
	assert.Len(t, saved.Whiteboard.Strokes, 1, "saved copy is detached from later mutations")
	assert.Zero(t, m.Whiteboard().Strokes[0].Points[0].X, "live scene is detached from the saved copy")
}

func TestDebouncedSaveSurvivesConcurrentMutation(t *testing.T) {
	done := make(chan struct{})
	m := NewManager(slate.NewProject("test"), func(p *slate.Project) error {
		// Walk the encoded scene the way the codec would; the copy
		// handed to us must stay coherent while mutations continue.
		n := 0
		for _, s := range p.Whiteboard.Strokes {
			n += len(s.Points)
		}
		select {
		case done <- struct{}{}:
		default:
		}
		return nil
	})
	m.SetSaveDelay(100 * time.Microsecond)
	layerID := m.Whiteboard().Layers[0].ID

	stop := make(chan struct{})
	go func() {
		for {
			select {
			case <-stop:
				return
			default:
				m.AddStroke(strokeOn(layerID, slate.Point{}, slate.Point{X: 1}))
			}
		}
	}()

	for i := 0; i < 20; i++ {
		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("debounced save never fired")
		}
	}
	close(stop)
	require.NoError(t, m.SaveNow())
}

func TestOnChangeFanOut(t *testing.T) {
	m := newTestManager(t)
	layerID := m.Whiteboard().Layers[0].ID

	var a, b int
	m.OnChange(func() { a++ })
	m.OnChange(func() { b++ })

	m.AddStroke(strokeOn(layerID, slate.Point{}, slate.Point{X: 1}))
	assert.Equal(t, 1, a)
	assert.Equal(t, 1, b)

	m.RecordHistory()
	m.AddStroke(strokeOn(layerID, slate.Point{}, slate.Point{X: 2}))
	m.Undo()
	assert.Equal(t, 3, a, "undo restores also notify")
}
