package ui

import "slate/pkg/slate"

// MenuAction identifies one context menu button.
type MenuAction uint8

const (
	ActDelete MenuAction = iota
	ActResetAspect
	ActToggleBorder
	ActBorderColor
	ActBorderWidth
	ActNoteUndo
	ActNoteRedo
	ActFontSize
	ActBold
	ActItalic
	ActUnderline
	ActStrike
	ActTextColor
	ActHighlight
	ActClearFormat
	ActAlignLeft
	ActAlignCenter
	ActAlignRight
	ActListBullet
	ActListOrdered
	ActListCheck
	ActInsertImage
)

// ContextMenu is the floating per-object toolbar. Only one exists
// app-wide; showing it for a new target replaces the previous state.
type ContextMenu struct {
	Visible bool
	ItemID  string
	Editing bool
	Actions []MenuAction

	// Screen-space anchor: the menu sits above the target's top edge.
	X float64
	Y float64
}

// ShowFor opens the menu for an item. The action set depends on the
// item type and, for notes, whether the note is in edit mode.
func (m *ContextMenu) ShowFor(it slate.Item, editing bool, view slate.View, menuHeight float64) {
	m.Visible = true
	m.ItemID = it.ID
	m.Editing = editing
	m.Actions = actionsFor(it, editing)
	m.UpdatePosition(it, view, menuHeight)
}

// Hide fully clears the menu state.
func (m *ContextMenu) Hide() {
	*m = ContextMenu{}
}

// UpdatePosition re-anchors the menu to the item's screen-space
// bounding box. Call whenever the view changes or the item moves.
func (m *ContextMenu) UpdatePosition(it slate.Item, view slate.View, menuHeight float64) {
	if !m.Visible || it.ID != m.ItemID {
		return
	}
	tl := view.WorldToScreen(slate.Point{X: it.X, Y: it.Y})
	m.X = tl.X
	m.Y = tl.Y - menuHeight - 6
}

func actionsFor(it slate.Item, editing bool) []MenuAction {
	if it.Type == slate.ItemImage {
		acts := []MenuAction{ActResetAspect, ActToggleBorder}
		if it.Border != nil {
			acts = append(acts, ActBorderColor, ActBorderWidth)
		}
		return append(acts, ActDelete)
	}
	if !editing {
		return []MenuAction{ActDelete}
	}
	return []MenuAction{
		ActNoteUndo, ActNoteRedo,
		ActFontSize,
		ActBold, ActItalic, ActUnderline, ActStrike,
		ActTextColor, ActHighlight, ActClearFormat,
		ActAlignLeft, ActAlignCenter, ActAlignRight,
		ActListOrdered, ActListBullet, ActListCheck,
		ActInsertImage,
		ActDelete,
	}
}
