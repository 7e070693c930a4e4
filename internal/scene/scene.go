// Package scene owns the canonical whiteboard state: the live scene
// graph, its mutation API, snapshot undo/redo, and debounced
// persistence. Everything else in the application reads and mutates
// the scene through a Manager.
package scene

import (
	"sync"
	"time"

	"slate/pkg/slate"
)

const (
	// HistoryLimit bounds the recorded undo snapshots. Exceeding it
	// evicts the oldest. The live state parked by the first Undo for
	// redo's benefit is not counted against this budget.
	HistoryLimit = 50

	// SaveDebounce is the quiet period after the last qualifying
	// mutation before the injected save function runs.
	SaveDebounce = 300 * time.Millisecond
)

// SaveFunc persists the whole project. Injected by the caller; the
// Manager never touches storage directly.
type SaveFunc func(*slate.Project) error

// Manager is the single source of truth for one project's whiteboard.
// All methods are safe for use from multiple goroutines, though the
// application drives it from a single update loop; the lock exists
// because the save debounce fires on a timer goroutine.
type Manager struct {
	mu      sync.Mutex
	project *slate.Project

	history []slate.Snapshot
	histIdx int

	saveFunc  SaveFunc
	saveDelay time.Duration
	saveTimer *time.Timer

	listeners []func()

	lastSaveErr error
}

// NewManager wraps a project. save may be nil, in which case
// persistence calls are silently skipped.
func NewManager(p *slate.Project, save SaveFunc) *Manager {
	if p == nil {
		p = slate.NewProject("")
	}
	m := &Manager{
		project:   p,
		saveFunc:  save,
		saveDelay: SaveDebounce,
	}
	p.EnsureWhiteboard()
	return m
}

// SetSaveDelay overrides the debounce window. Used by tests.
func (m *Manager) SetSaveDelay(d time.Duration) {
	m.mu.Lock()
	m.saveDelay = d
	m.mu.Unlock()
}

// Project returns the wrapped project.
func (m *Manager) Project() *slate.Project {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.project
}

// Whiteboard returns the live whiteboard, materializing defaults on
// first access.
func (m *Manager) Whiteboard() *slate.Whiteboard {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.project.EnsureWhiteboard()
}

// OnChange registers a listener invoked synchronously after every
// scene mutation, including undo/redo restores.
func (m *Manager) OnChange(fn func()) {
	m.mu.Lock()
	m.listeners = append(m.listeners, fn)
	m.mu.Unlock()
}

func (m *Manager) notify() {
	m.mu.Lock()
	ls := make([]func(), len(m.listeners))
	copy(ls, m.listeners)
	m.mu.Unlock()
	for _, fn := range ls {
		fn()
	}
}

// RecordHistory pushes a deep-copy snapshot of the current items and
// strokes. Call it before a mutation so undo restores the exact
// pre-mutation state. Any redo tail beyond the current index is
// discarded.
func (m *Manager) RecordHistory() {
	m.mu.Lock()
	defer m.mu.Unlock()
	wb := m.project.EnsureWhiteboard()

	m.history = append(m.history[:m.histIdx], wb.TakeSnapshot())
	m.histIdx = len(m.history)
	if m.histIdx > HistoryLimit {
		m.history = m.history[1:]
		m.histIdx--
	}
}

// CanUndo reports whether an undo step is available.
func (m *Manager) CanUndo() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.histIdx > 0
}

// CanRedo reports whether a redo step is available.
func (m *Manager) CanRedo() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.histIdx < len(m.history)-1
}

// Undo restores the snapshot before the last recorded mutation.
// Returns false at the history floor.
func (m *Manager) Undo() bool {
	m.mu.Lock()
	if m.histIdx <= 0 {
		m.mu.Unlock()
		return false
	}
	wb := m.project.EnsureWhiteboard()
	if m.histIdx == len(m.history) {
		// Park the live state so redo can come back to it. The
		// parked entry sits outside the HistoryLimit budget: it is
		// the redo target, not a recorded undo step, so the slice
		// may briefly hold HistoryLimit+1 snapshots.
		m.history = append(m.history, wb.TakeSnapshot())
	}
	m.histIdx--
	wb.RestoreSnapshot(m.history[m.histIdx])
	m.mu.Unlock()

	m.notify()
	m.ScheduleSave()
	return true
}

// Redo re-applies the next snapshot after an undo. Returns false when
// there is nothing to redo.
func (m *Manager) Redo() bool {
	m.mu.Lock()
	if m.histIdx >= len(m.history)-1 {
		m.mu.Unlock()
		return false
	}
	m.histIdx++
	m.project.EnsureWhiteboard().RestoreSnapshot(m.history[m.histIdx])
	m.mu.Unlock()

	m.notify()
	m.ScheduleSave()
	return true
}

// mutate runs fn under the lock, then notifies listeners and schedules
// a save if fn reports that it changed anything.
func (m *Manager) mutate(fn func(wb *slate.Whiteboard) bool) bool {
	m.mu.Lock()
	changed := fn(m.project.EnsureWhiteboard())
	if changed {
		m.project.Metadata.ModifiedUnix = time.Now().Unix()
	}
	m.mu.Unlock()
	if changed {
		m.notify()
		m.ScheduleSave()
	}
	return changed
}

// AddItem appends an item to the scene.
func (m *Manager) AddItem(it slate.Item) {
	m.mutate(func(wb *slate.Whiteboard) bool {
		wb.Items = append(wb.Items, slate.CloneItem(it))
		return true
	})
}

// UpdateItem replaces the stored item with the same id. Unknown ids
// are a no-op.
func (m *Manager) UpdateItem(it slate.Item) bool {
	return m.mutate(func(wb *slate.Whiteboard) bool {
		i := wb.ItemIndex(it.ID)
		if i < 0 {
			return false
		}
		wb.Items[i] = slate.CloneItem(it)
		return true
	})
}

// DeleteItem removes the item with the given id. Unknown ids are a
// no-op.
func (m *Manager) DeleteItem(id string) bool {
	return m.mutate(func(wb *slate.Whiteboard) bool {
		i := wb.ItemIndex(id)
		if i < 0 {
			return false
		}
		wb.Items = append(wb.Items[:i], wb.Items[i+1:]...)
		return true
	})
}

// Item returns a deep copy of the item with the given id.
func (m *Manager) Item(id string) (slate.Item, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	wb := m.project.EnsureWhiteboard()
	i := wb.ItemIndex(id)
	if i < 0 {
		return slate.Item{}, false
	}
	return slate.CloneItem(wb.Items[i]), true
}

// AddStroke commits a finished stroke to the scene.
func (m *Manager) AddStroke(s slate.Stroke) {
	m.mutate(func(wb *slate.Whiteboard) bool {
		wb.Strokes = append(wb.Strokes, slate.CloneStroke(s))
		return true
	})
}

// AddLayer appends a new top layer and returns it.
func (m *Manager) AddLayer(name string) slate.Layer {
	layer := slate.Layer{ID: slate.NewID(), Name: name, Visible: true}
	m.mutate(func(wb *slate.Whiteboard) bool {
		wb.Layers = append(wb.Layers, layer)
		return true
	})
	return layer
}

// RenameLayer updates a layer's display name.
func (m *Manager) RenameLayer(id, name string) bool {
	return m.mutate(func(wb *slate.Whiteboard) bool {
		i := wb.LayerIndex(id)
		if i < 0 {
			return false
		}
		wb.Layers[i].Name = name
		return true
	})
}

// DeleteLayer removes a layer together with every item and stroke that
// references it. Unknown ids are a no-op.
func (m *Manager) DeleteLayer(id string) bool {
	return m.mutate(func(wb *slate.Whiteboard) bool {
		i := wb.LayerIndex(id)
		if i < 0 {
			return false
		}
		wb.Layers = append(wb.Layers[:i], wb.Layers[i+1:]...)

		items := wb.Items[:0]
		for _, it := range wb.Items {
			if it.LayerID != id {
				items = append(items, it)
			}
		}
		wb.Items = items

		strokes := wb.Strokes[:0]
		for _, s := range wb.Strokes {
			if s.LayerID != id {
				strokes = append(strokes, s)
			}
		}
		wb.Strokes = strokes
		return true
	})
}

// ToggleLayerVisibility flips a layer's visible flag.
func (m *Manager) ToggleLayerVisibility(id string) bool {
	return m.mutate(func(wb *slate.Whiteboard) bool {
		i := wb.LayerIndex(id)
		if i < 0 {
			return false
		}
		wb.Layers[i].Visible = !wb.Layers[i].Visible
		return true
	})
}

// ReorderLayers moves the layer at from to position to. Out-of-range
// indices are a no-op.
func (m *Manager) ReorderLayers(from, to int) bool {
	return m.mutate(func(wb *slate.Whiteboard) bool {
		n := len(wb.Layers)
		if from < 0 || from >= n || to < 0 || to >= n || from == to {
			return false
		}
		layer := wb.Layers[from]
		rest := append(wb.Layers[:from], wb.Layers[from+1:]...)
		wb.Layers = append(rest[:to], append([]slate.Layer{layer}, rest[to:]...)...)
		return true
	})
}

// ClearLayer removes every item and stroke on the given layer, keeping
// the layer itself.
func (m *Manager) ClearLayer(id string) bool {
	return m.mutate(func(wb *slate.Whiteboard) bool {
		if wb.LayerIndex(id) < 0 {
			return false
		}
		changed := false

		items := wb.Items[:0]
		for _, it := range wb.Items {
			if it.LayerID == id {
				changed = true
				continue
			}
			items = append(items, it)
		}
		wb.Items = items

		strokes := wb.Strokes[:0]
		for _, s := range wb.Strokes {
			if s.LayerID == id {
				changed = true
				continue
			}
			strokes = append(strokes, s)
		}
		wb.Strokes = strokes
		return changed
	})
}

// UpdatePen replaces the brush configuration.
func (m *Manager) UpdatePen(p slate.Pen) {
	m.mutate(func(wb *slate.Whiteboard) bool {
		wb.Pen = p
		return true
	})
}

// UpdateView replaces the view transform. Listeners are notified but
// no save is scheduled: continuous pan/zoom must not thrash
// persistence. The view still reaches disk piggybacked on the next
// qualifying mutation.
func (m *Manager) UpdateView(v slate.View) {
	m.mu.Lock()
	v.Scale = slate.ClampScale(v.Scale)
	m.project.EnsureWhiteboard().View = v
	m.mu.Unlock()
	m.notify()
}

// View returns the current view transform.
func (m *Manager) View() slate.View {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.project.EnsureWhiteboard().View
}

// ScheduleSave arms the debounce timer, coalescing bursts of
// mutations into a single save call.
func (m *Manager) ScheduleSave() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveFunc == nil {
		return
	}
	if m.saveTimer != nil {
		m.saveTimer.Stop()
	}
	m.saveTimer = time.AfterFunc(m.saveDelay, func() {
		m.SaveNow()
	})
}

// SaveNow cancels any pending debounce and persists immediately.
// The save function receives a deep copy taken under the lock; the
// debounce timer fires on its own goroutine, so handing it the live
// project would let the encoder race the update loop's mutations.
func (m *Manager) SaveNow() error {
	m.mu.Lock()
	if m.saveTimer != nil {
		m.saveTimer.Stop()
		m.saveTimer = nil
	}
	save := m.saveFunc
	if save == nil {
		m.mu.Unlock()
		return nil
	}
	p := &slate.Project{
		Metadata:   m.project.Metadata,
		Whiteboard: slate.CloneWhiteboard(m.project.Whiteboard),
	}
	m.mu.Unlock()

	err := save(p)
	m.mu.Lock()
	m.lastSaveErr = err
	m.mu.Unlock()
	return err
}

// LastSaveError reports the outcome of the most recent save attempt.
func (m *Manager) LastSaveError() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastSaveErr
}

// Close flushes any pending save. Call on teardown.
func (m *Manager) Close() error {
	return m.SaveNow()
}
