// Package richtext implements the in-place note editor: caret and
// selection tracking over styled blocks, text mutation, character
// formatting, block formatting, and an editor-local undo history
// separate from the scene history.
package richtext

import (
	"strings"
	"unicode/utf8"

	"slate/pkg/slate"
)

const undoLimit = 100

// Position addresses a byte offset within a block.
type Position struct {
	Block int
	Byte  int
}

// Editor mutates one note's content in place. It holds no UI state
// beyond caret and selection; rendering and hit testing live with the
// object manager.
type Editor struct {
	Note         *slate.NoteContent
	CurrentBlock int
	CaretByte    int

	selectionAnchor    Position
	selectionAnchored  bool
	selectionIsVisible bool

	undoStack []slate.NoteContent
	redoStack []slate.NoteContent
}

func NewEditor(note *slate.NoteContent) *Editor {
	if note == nil {
		note = &slate.NoteContent{}
	}
	e := &Editor{Note: note}
	e.Normalize()
	e.CurrentBlock = len(note.Blocks) - 1
	e.CaretByte = len(note.Blocks[e.CurrentBlock].Text)
	return e
}

func (e *Editor) Normalize() {
	if e.Note == nil {
		e.Note = &slate.NoteContent{}
	}
	for i := range e.Note.Blocks {
		b := &e.Note.Blocks[i]
		b.Runs = sanitizeRuns(len(b.Text), b.Runs)
	}
	if len(e.Note.Blocks) == 0 {
		e.Note.Blocks = append(e.Note.Blocks, slate.NoteBlock{
			Kind: slate.BlockParagraph,
			Text: []byte{},
			Runs: []slate.StyleRun{{Start: 0, End: 0, Attr: defaultAttr()}},
		})
	}
	if e.CurrentBlock < 0 {
		e.CurrentBlock = 0
	}
	if e.CurrentBlock >= len(e.Note.Blocks) {
		e.CurrentBlock = len(e.Note.Blocks) - 1
	}
	e.CaretByte = clampToRuneBoundary(e.currentText(), e.CaretByte)
	if e.selectionAnchored {
		e.selectionAnchor = e.clampPosition(e.selectionAnchor)
		e.selectionIsVisible = comparePos(e.selectionAnchor, e.caretPos()) != 0
	}
}

func (e *Editor) BlockCount() int {
	e.Normalize()
	return len(e.Note.Blocks)
}

func (e *Editor) currentText() []byte {
	if e.CurrentBlock < 0 || e.CurrentBlock >= len(e.Note.Blocks) {
		return nil
	}
	return e.Note.Blocks[e.CurrentBlock].Text
}

// PlainText joins all block texts with newlines. Used for content
// measurement and clipboard copy.
func (e *Editor) PlainText() string {
	e.Normalize()
	var out strings.Builder
	for i := range e.Note.Blocks {
		if i > 0 {
			out.WriteByte('\n')
		}
		out.Write(e.Note.Blocks[i].Text)
	}
	return out.String()
}

func (e *Editor) caretPos() Position {
	return Position{Block: e.CurrentBlock, Byte: e.CaretByte}
}

func (e *Editor) clampPosition(p Position) Position {
	if len(e.Note.Blocks) == 0 {
		return Position{}
	}
	if p.Block < 0 {
		p.Block = 0
	}
	if p.Block >= len(e.Note.Blocks) {
		p.Block = len(e.Note.Blocks) - 1
	}
	p.Byte = clampToRuneBoundary(e.Note.Blocks[p.Block].Text, p.Byte)
	return p
}

func comparePos(a, b Position) int {
	if a.Block != b.Block {
		if a.Block < b.Block {
			return -1
		}
		return 1
	}
	if a.Byte != b.Byte {
		if a.Byte < b.Byte {
			return -1
		}
		return 1
	}
	return 0
}

// pushUndo records the content before a mutation. Clears the redo
// branch.
func (e *Editor) pushUndo() {
	snap := slate.CloneNote(e.Note)
	e.undoStack = append(e.undoStack, *snap)
	if len(e.undoStack) > undoLimit {
		e.undoStack = e.undoStack[1:]
	}
	e.redoStack = nil
}

func (e *Editor) CanUndo() bool { return len(e.undoStack) > 0 }
func (e *Editor) CanRedo() bool { return len(e.redoStack) > 0 }

func (e *Editor) Undo() bool {
	if len(e.undoStack) == 0 {
		return false
	}
	e.redoStack = append(e.redoStack, *slate.CloneNote(e.Note))
	top := e.undoStack[len(e.undoStack)-1]
	e.undoStack = e.undoStack[:len(e.undoStack)-1]
	*e.Note = *slate.CloneNote(&top)
	e.ClearSelection()
	e.Normalize()
	return true
}

func (e *Editor) Redo() bool {
	if len(e.redoStack) == 0 {
		return false
	}
	e.undoStack = append(e.undoStack, *slate.CloneNote(e.Note))
	top := e.redoStack[len(e.redoStack)-1]
	e.redoStack = e.redoStack[:len(e.redoStack)-1]
	*e.Note = *slate.CloneNote(&top)
	e.ClearSelection()
	e.Normalize()
	return true
}

// SetCaret places the caret, clamped to valid positions.
func (e *Editor) SetCaret(block, bytePos int) {
	e.Normalize()
	p := e.clampPosition(Position{Block: block, Byte: bytePos})
	e.CurrentBlock = p.Block
	e.CaretByte = p.Byte
	if e.selectionAnchored {
		e.selectionIsVisible = comparePos(e.selectionAnchor, e.caretPos()) != 0
	}
}

func (e *Editor) MoveCaretLeft() {
	e.Normalize()
	text := e.currentText()
	if e.CaretByte <= 0 {
		if e.CurrentBlock > 0 {
			e.CurrentBlock--
			e.CaretByte = len(e.currentText())
		}
		return
	}
	e.CaretByte = previousRuneBoundary(text, e.CaretByte)
}

func (e *Editor) MoveCaretRight() {
	e.Normalize()
	text := e.currentText()
	if e.CaretByte >= len(text) {
		if e.CurrentBlock < len(e.Note.Blocks)-1 {
			e.CurrentBlock++
			e.CaretByte = 0
		}
		return
	}
	e.CaretByte = nextRuneBoundary(text, e.CaretByte)
}

func (e *Editor) MoveCaretWordLeft() {
	e.Normalize()
	if e.CaretByte <= 0 {
		e.MoveCaretLeft()
		return
	}
	e.CaretByte = previousWordBoundary(e.currentText(), e.CaretByte)
}

func (e *Editor) MoveCaretWordRight() {
	e.Normalize()
	text := e.currentText()
	if e.CaretByte >= len(text) {
		e.MoveCaretRight()
		return
	}
	e.CaretByte = nextWordBoundary(text, e.CaretByte)
}

func (e *Editor) MoveCaretLineStart() {
	e.Normalize()
	e.CaretByte = 0
}

func (e *Editor) MoveCaretLineEnd() {
	e.Normalize()
	e.CaretByte = len(e.currentText())
}

func (e *Editor) MoveBlock(delta int) {
	e.Normalize()
	e.SetCaret(e.CurrentBlock+delta, e.CaretByte)
}

func (e *Editor) HasSelection() bool {
	e.Normalize()
	return e.selectionIsVisible
}

func (e *Editor) EnsureSelectionAnchor() {
	e.Normalize()
	if e.selectionAnchored {
		return
	}
	e.selectionAnchor = e.caretPos()
	e.selectionAnchored = true
	e.selectionIsVisible = false
}

func (e *Editor) UpdateSelectionFromCaret() {
	e.Normalize()
	if !e.selectionAnchored {
		e.selectionAnchor = e.caretPos()
		e.selectionAnchored = true
	}
	e.selectionIsVisible = comparePos(e.selectionAnchor, e.caretPos()) != 0
}

func (e *Editor) ClearSelection() {
	e.selectionAnchored = false
	e.selectionIsVisible = false
}

func (e *Editor) SelectionRange() (Position, Position, bool) {
	e.Normalize()
	if !e.selectionIsVisible {
		return Position{}, Position{}, false
	}
	a := e.selectionAnchor
	b := e.caretPos()
	if comparePos(a, b) <= 0 {
		return a, b, true
	}
	return b, a, true
}

func (e *Editor) SelectAll() {
	e.Normalize()
	e.selectionAnchor = Position{}
	e.selectionAnchored = true
	last := len(e.Note.Blocks) - 1
	e.CurrentBlock = last
	e.CaretByte = len(e.Note.Blocks[last].Text)
	e.selectionIsVisible = comparePos(e.selectionAnchor, e.caretPos()) != 0
}

func (e *Editor) SelectedText() string {
	start, end, ok := e.SelectionRange()
	if !ok {
		return ""
	}
	if start.Block == end.Block {
		return string(e.Note.Blocks[start.Block].Text[start.Byte:end.Byte])
	}
	var out strings.Builder
	out.Write(e.Note.Blocks[start.Block].Text[start.Byte:])
	for i := start.Block + 1; i < end.Block; i++ {
		out.WriteByte('\n')
		out.Write(e.Note.Blocks[i].Text)
	}
	out.WriteByte('\n')
	out.Write(e.Note.Blocks[end.Block].Text[:end.Byte])
	return out.String()
}

// DeleteSelection removes the selected range. Returns false when no
// selection is visible.
func (e *Editor) DeleteSelection() bool {
	start, end, ok := e.SelectionRange()
	if !ok {
		return false
	}
	e.pushUndo()
	e.deleteRange(start, end)
	return true
}

func (e *Editor) deleteRange(start, end Position) {
	if start.Block == end.Block {
		attr := e.styleAt(start.Block, start.Byte)
		e.replaceRangeInBlock(start.Block, start.Byte, end.Byte, nil, attr)
		e.CurrentBlock = start.Block
		e.CaretByte = start.Byte
		e.ClearSelection()
		return
	}

	first := &e.Note.Blocks[start.Block]
	lastText := e.Note.Blocks[end.Block].Text
	leftPrefix := append([]byte(nil), first.Text[:start.Byte]...)
	rightSuffix := append([]byte(nil), lastText[end.Byte:]...)
	merged := append(leftPrefix, rightSuffix...)

	leftRuns := e.clipBlockRuns(start.Block, 0, start.Byte, 0)
	rightRuns := e.clipBlockRuns(end.Block, end.Byte, len(lastText), start.Byte)
	newRuns := append(leftRuns, rightRuns...)
	if len(merged) == 0 {
		newRuns = []slate.StyleRun{{Start: 0, End: 0, Attr: normalizeAttr(e.styleAt(start.Block, start.Byte))}}
	} else {
		newRuns = sanitizeRuns(len(merged), newRuns)
	}

	first.Text = merged
	first.Runs = newRuns
	e.Note.Blocks = append(e.Note.Blocks[:start.Block+1], e.Note.Blocks[end.Block+1:]...)
	e.CurrentBlock = start.Block
	e.CaretByte = start.Byte
	e.ClearSelection()
	e.Normalize()
}

// InsertText inserts at the caret, replacing any selection. Newlines
// split blocks.
func (e *Editor) InsertText(text string) {
	if text == "" || !utf8.ValidString(text) {
		return
	}
	e.Normalize()
	e.pushUndo()
	if start, end, ok := e.SelectionRange(); ok {
		e.deleteRange(start, end)
	}
	parts := strings.Split(text, "\n")
	for i, part := range parts {
		if i > 0 {
			e.splitBlockAtCaret()
		}
		if part == "" {
			continue
		}
		attr := e.styleAt(e.CurrentBlock, e.CaretByte)
		e.replaceRangeInBlock(e.CurrentBlock, e.CaretByte, e.CaretByte, []byte(part), attr)
		e.CaretByte += len(part)
	}
	e.ClearSelection()
}

// InsertNewline splits the current block at the caret. List blocks
// carry their kind to the new block; an empty list block converts back
// to a paragraph instead of splitting.
func (e *Editor) InsertNewline() {
	e.Normalize()
	e.pushUndo()
	if start, end, ok := e.SelectionRange(); ok {
		e.deleteRange(start, end)
	}
	cur := &e.Note.Blocks[e.CurrentBlock]
	if cur.Kind != slate.BlockParagraph && len(cur.Text) == 0 {
		cur.Kind = slate.BlockParagraph
		cur.Checked = false
		return
	}
	e.splitBlockAtCaret()
	e.ClearSelection()
}

func (e *Editor) splitBlockAtCaret() {
	cur := &e.Note.Blocks[e.CurrentBlock]
	at := clampToRuneBoundary(cur.Text, e.CaretByte)

	tail := append([]byte(nil), cur.Text[at:]...)
	tailRuns := e.clipBlockRuns(e.CurrentBlock, at, len(cur.Text), 0)
	head := append([]byte(nil), cur.Text[:at]...)
	headRuns := e.clipBlockRuns(e.CurrentBlock, 0, at, 0)

	newBlock := slate.NoteBlock{
		Kind:  cur.Kind,
		Align: cur.Align,
		Text:  tail,
		Runs:  sanitizeRuns(len(tail), tailRuns),
	}
	cur.Text = head
	cur.Runs = sanitizeRuns(len(head), headRuns)

	e.Note.Blocks = append(e.Note.Blocks[:e.CurrentBlock+1],
		append([]slate.NoteBlock{newBlock}, e.Note.Blocks[e.CurrentBlock+1:]...)...)
	e.CurrentBlock++
	e.CaretByte = 0
}

func (e *Editor) DeleteBackward() {
	e.Normalize()
	if e.DeleteSelection() {
		return
	}
	if e.CaretByte == 0 {
		if e.CurrentBlock == 0 {
			return
		}
		e.pushUndo()
		prevLen := len(e.Note.Blocks[e.CurrentBlock-1].Text)
		e.mergeBlocks(e.CurrentBlock-1, e.CurrentBlock)
		e.CurrentBlock--
		e.CaretByte = prevLen
		return
	}
	e.pushUndo()
	start := previousRuneBoundary(e.currentText(), e.CaretByte)
	attr := e.styleAt(e.CurrentBlock, start)
	e.replaceRangeInBlock(e.CurrentBlock, start, e.CaretByte, nil, attr)
	e.CaretByte = start
}

func (e *Editor) DeleteForward() {
	e.Normalize()
	if e.DeleteSelection() {
		return
	}
	text := e.currentText()
	if e.CaretByte >= len(text) {
		if e.CurrentBlock >= len(e.Note.Blocks)-1 {
			return
		}
		e.pushUndo()
		e.mergeBlocks(e.CurrentBlock, e.CurrentBlock+1)
		return
	}
	e.pushUndo()
	end := nextRuneBoundary(text, e.CaretByte)
	attr := e.styleAt(e.CurrentBlock, e.CaretByte)
	e.replaceRangeInBlock(e.CurrentBlock, e.CaretByte, end, nil, attr)
}

func (e *Editor) DeleteWordBackward() {
	e.Normalize()
	if e.DeleteSelection() {
		return
	}
	if e.CaretByte == 0 {
		e.DeleteBackward()
		return
	}
	e.pushUndo()
	start := previousWordBoundary(e.currentText(), e.CaretByte)
	attr := e.styleAt(e.CurrentBlock, start)
	e.replaceRangeInBlock(e.CurrentBlock, start, e.CaretByte, nil, attr)
	e.CaretByte = start
}

func (e *Editor) DeleteWordForward() {
	e.Normalize()
	if e.DeleteSelection() {
		return
	}
	text := e.currentText()
	if e.CaretByte >= len(text) {
		e.DeleteForward()
		return
	}
	e.pushUndo()
	end := nextWordBoundary(text, e.CaretByte)
	attr := e.styleAt(e.CurrentBlock, e.CaretByte)
	e.replaceRangeInBlock(e.CurrentBlock, e.CaretByte, end, nil, attr)
}

func (e *Editor) ToggleBold() {
	e.applyStyleMutation(func(a *slate.StyleAttr) { a.Bold = !a.Bold })
}

func (e *Editor) ToggleItalic() {
	e.applyStyleMutation(func(a *slate.StyleAttr) { a.Italic = !a.Italic })
}

func (e *Editor) ToggleUnderline() {
	e.applyStyleMutation(func(a *slate.StyleAttr) { a.Underline = !a.Underline })
}

func (e *Editor) ToggleStrike() {
	e.applyStyleMutation(func(a *slate.StyleAttr) { a.Strike = !a.Strike })
}

func (e *Editor) ToggleHighlight() {
	e.applyStyleMutation(func(a *slate.StyleAttr) { a.Highlight = !a.Highlight })
}

func (e *Editor) SetFontSize(pt uint16) {
	if pt < minFontPt {
		pt = minFontPt
	}
	if pt > maxFontPt {
		pt = maxFontPt
	}
	e.applyStyleMutation(func(a *slate.StyleAttr) { a.FontSizePt = pt })
}

func (e *Editor) SetColor(rgba uint32) {
	if rgba == 0 {
		rgba = defaultColor
	}
	e.applyStyleMutation(func(a *slate.StyleAttr) { a.ColorRGBA = rgba })
}

// RemoveFormatting resets the selection (or caret rune) to the default
// attributes.
func (e *Editor) RemoveFormatting() {
	e.applyStyleMutation(func(a *slate.StyleAttr) { *a = defaultAttr() })
}

// CurrentAttr is the style at the selection start, or at the caret.
// The context menu uses it to light up its toggle buttons.
func (e *Editor) CurrentAttr() slate.StyleAttr {
	e.Normalize()
	if start, _, ok := e.SelectionRange(); ok {
		return e.styleAt(start.Block, start.Byte)
	}
	return e.styleAt(e.CurrentBlock, e.CaretByte)
}

// SetAlignment applies to every block touched by the selection, or the
// caret block.
func (e *Editor) SetAlignment(a slate.Alignment) {
	e.Normalize()
	e.pushUndo()
	from, to := e.blockSpan()
	for i := from; i <= to; i++ {
		e.Note.Blocks[i].Align = a
	}
}

// ToggleBlockKind switches the touched blocks to kind, or back to
// paragraph when they already have it.
func (e *Editor) ToggleBlockKind(kind slate.BlockKind) {
	e.Normalize()
	e.pushUndo()
	from, to := e.blockSpan()
	all := true
	for i := from; i <= to; i++ {
		if e.Note.Blocks[i].Kind != kind {
			all = false
			break
		}
	}
	for i := from; i <= to; i++ {
		b := &e.Note.Blocks[i]
		if all {
			b.Kind = slate.BlockParagraph
		} else {
			b.Kind = kind
		}
		if b.Kind != slate.BlockCheck {
			b.Checked = false
		}
	}
}

// ToggleChecked flips a checklist block's checked state. Non-check
// blocks are a no-op.
func (e *Editor) ToggleChecked(block int) bool {
	e.Normalize()
	if block < 0 || block >= len(e.Note.Blocks) {
		return false
	}
	if e.Note.Blocks[block].Kind != slate.BlockCheck {
		return false
	}
	e.pushUndo()
	e.Note.Blocks[block].Checked = !e.Note.Blocks[block].Checked
	return true
}

func (e *Editor) blockSpan() (int, int) {
	if start, end, ok := e.SelectionRange(); ok {
		return start.Block, end.Block
	}
	return e.CurrentBlock, e.CurrentBlock
}

func (e *Editor) applyStyleMutation(mut func(*slate.StyleAttr)) {
	e.Normalize()
	if mut == nil {
		return
	}
	e.pushUndo()
	if start, end, ok := e.SelectionRange(); ok {
		for b := start.Block; b <= end.Block; b++ {
			segStart := 0
			segEnd := len(e.Note.Blocks[b].Text)
			if b == start.Block {
				segStart = start.Byte
			}
			if b == end.Block {
				segEnd = end.Byte
			}
			e.applyStyleToBlockRange(b, segStart, segEnd, mut)
		}
		return
	}

	txt := e.currentText()
	if len(txt) == 0 {
		e.applyStyleToBlockRange(e.CurrentBlock, 0, 0, mut)
		return
	}
	pos := e.CaretByte
	if pos >= len(txt) {
		pos = previousRuneBoundary(txt, len(txt))
	}
	end := nextRuneBoundary(txt, pos)
	e.applyStyleToBlockRange(e.CurrentBlock, pos, end, mut)
}

func (e *Editor) applyStyleToBlockRange(blockIndex, start, end int, mut func(*slate.StyleAttr)) {
	if blockIndex < 0 || blockIndex >= len(e.Note.Blocks) {
		return
	}
	b := &e.Note.Blocks[blockIndex]
	textLen := len(b.Text)
	if start < 0 {
		start = 0
	}
	if end < 0 {
		end = 0
	}
	if start > textLen {
		start = textLen
	}
	if end > textLen {
		end = textLen
	}
	if start > end {
		start, end = end, start
	}
	if textLen == 0 {
		attr := normalizeAttr(e.styleAt(blockIndex, 0))
		mut(&attr)
		b.Runs = []slate.StyleRun{{Start: 0, End: 0, Attr: normalizeAttr(attr)}}
		return
	}
	if start == end {
		if start >= textLen {
			start = previousRuneBoundary(b.Text, textLen)
		}
		end = nextRuneBoundary(b.Text, start)
	}

	cov := coverageRuns(textLen, b.Runs)
	newRuns := make([]slate.StyleRun, 0, len(cov)+2)
	for _, r := range cov {
		rs := int(r.Start)
		re := int(r.End)
		if re <= start || rs >= end {
			newRuns = append(newRuns, r)
			continue
		}
		if rs < start {
			newRuns = append(newRuns, slate.StyleRun{Start: uint32(rs), End: uint32(start), Attr: normalizeAttr(r.Attr)})
			rs = start
		}
		midEnd := re
		if end < midEnd {
			midEnd = end
		}
		attr := normalizeAttr(r.Attr)
		mut(&attr)
		newRuns = append(newRuns, slate.StyleRun{Start: uint32(rs), End: uint32(midEnd), Attr: normalizeAttr(attr)})
		if re > end {
			newRuns = append(newRuns, slate.StyleRun{Start: uint32(end), End: uint32(re), Attr: normalizeAttr(r.Attr)})
		}
	}
	b.Runs = sanitizeRuns(textLen, newRuns)
}

func (e *Editor) replaceRangeInBlock(blockIndex, start, end int, insert []byte, insertAttr slate.StyleAttr) {
	if blockIndex < 0 || blockIndex >= len(e.Note.Blocks) {
		return
	}
	b := &e.Note.Blocks[blockIndex]
	text := b.Text
	start = clampToRuneBoundary(text, start)
	end = clampToRuneBoundary(text, end)
	if start > end {
		start, end = end, start
	}
	oldLen := len(text)
	cov := coverageRuns(oldLen, b.Runs)

	newText := make([]byte, 0, oldLen-(end-start)+len(insert))
	newText = append(newText, text[:start]...)
	newText = append(newText, insert...)
	newText = append(newText, text[end:]...)
	delta := len(insert) - (end - start)

	newRuns := make([]slate.StyleRun, 0, len(cov)+2)
	for _, r := range cov {
		rs := int(r.Start)
		re := int(r.End)
		switch {
		case re <= start:
			newRuns = append(newRuns, slate.StyleRun{Start: uint32(rs), End: uint32(re), Attr: normalizeAttr(r.Attr)})
		case rs >= end:
			newRuns = append(newRuns, slate.StyleRun{Start: uint32(rs + delta), End: uint32(re + delta), Attr: normalizeAttr(r.Attr)})
		default:
			if rs < start {
				newRuns = append(newRuns, slate.StyleRun{Start: uint32(rs), End: uint32(start), Attr: normalizeAttr(r.Attr)})
			}
			if re > end {
				newRuns = append(newRuns, slate.StyleRun{Start: uint32(end + delta), End: uint32(re + delta), Attr: normalizeAttr(r.Attr)})
			}
		}
	}
	if len(insert) > 0 {
		newRuns = append(newRuns, slate.StyleRun{Start: uint32(start), End: uint32(start + len(insert)), Attr: normalizeAttr(insertAttr)})
	}

	b.Text = newText
	if len(newText) == 0 {
		b.Runs = []slate.StyleRun{{Start: 0, End: 0, Attr: normalizeAttr(insertAttr)}}
		return
	}
	b.Runs = sanitizeRuns(len(newText), newRuns)
}

func (e *Editor) mergeBlocks(left, right int) {
	if left < 0 || right <= left || right >= len(e.Note.Blocks) {
		return
	}
	leftText := append([]byte(nil), e.Note.Blocks[left].Text...)
	rightText := append([]byte(nil), e.Note.Blocks[right].Text...)
	leftRuns := e.clipBlockRuns(left, 0, len(leftText), 0)
	rightRuns := e.clipBlockRuns(right, 0, len(rightText), len(leftText))
	mergedText := append(leftText, rightText...)
	mergedRuns := append(leftRuns, rightRuns...)
	if len(mergedText) == 0 {
		mergedRuns = []slate.StyleRun{{Start: 0, End: 0, Attr: defaultAttr()}}
	} else {
		mergedRuns = sanitizeRuns(len(mergedText), mergedRuns)
	}
	e.Note.Blocks[left].Text = mergedText
	e.Note.Blocks[left].Runs = mergedRuns
	e.Note.Blocks = append(e.Note.Blocks[:right], e.Note.Blocks[right+1:]...)
}

func (e *Editor) clipBlockRuns(blockIndex, from, to, shift int) []slate.StyleRun {
	if blockIndex < 0 || blockIndex >= len(e.Note.Blocks) {
		return nil
	}
	b := &e.Note.Blocks[blockIndex]
	textLen := len(b.Text)
	if from < 0 {
		from = 0
	}
	if to < 0 {
		to = 0
	}
	if from > textLen {
		from = textLen
	}
	if to > textLen {
		to = textLen
	}
	if from > to {
		from, to = to, from
	}
	cov := coverageRuns(textLen, b.Runs)
	out := make([]slate.StyleRun, 0, len(cov))
	for _, r := range cov {
		rs := int(r.Start)
		re := int(r.End)
		if re <= from || rs >= to {
			continue
		}
		if rs < from {
			rs = from
		}
		if re > to {
			re = to
		}
		out = append(out, slate.StyleRun{Start: uint32(rs - from + shift), End: uint32(re - from + shift), Attr: normalizeAttr(r.Attr)})
	}
	return normalizeSparseRuns(out)
}

func (e *Editor) styleAt(blockIndex, bytePos int) slate.StyleAttr {
	if blockIndex < 0 || blockIndex >= len(e.Note.Blocks) {
		return defaultAttr()
	}
	b := e.Note.Blocks[blockIndex]
	textLen := len(b.Text)
	runs := sanitizeRuns(textLen, b.Runs)
	if textLen == 0 {
		if len(runs) > 0 {
			return normalizeAttr(runs[0].Attr)
		}
		return defaultAttr()
	}
	if bytePos < 0 {
		bytePos = 0
	}
	if bytePos > textLen {
		bytePos = textLen
	}
	probe := bytePos
	if probe == textLen {
		probe = textLen - 1
	}
	for _, r := range runs {
		if int(r.Start) <= probe && probe < int(r.End) {
			return normalizeAttr(r.Attr)
		}
	}
	return defaultAttr()
}
