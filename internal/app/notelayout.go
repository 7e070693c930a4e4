package app

import (
	"unicode/utf8"

	"slate/pkg/slate"
)

// Note text is laid out in world units at scale 1; the renderer scales
// positions and faces by the view when drawing.
const (
	notePadX      = 10.0
	notePadY      = 8.0
	noteLineGap   = 2.0
	noteBlockGap  = 4.0
	noteDefaultPt = 14
	listIndent    = 22.0
	checkIndent   = 30.0
)

type notePiece struct {
	text      string
	attr      slate.StyleAttr
	startByte int
	x         float64
	width     float64
}

type noteLine struct {
	block     int
	startByte int
	endByte   int
	indent    float64
	alignOff  float64 // horizontal shift for centered/right blocks
	first     bool    // first line of its block, carries the list marker
	pieces    []notePiece
	y         float64
	height    float64
	ascent    float64
}

type noteLayout struct {
	lines  []noteLine
	height float64
}

func blockIndent(kind slate.BlockKind) float64 {
	switch kind {
	case slate.BlockBullet, slate.BlockOrdered:
		return listIndent
	case slate.BlockCheck:
		return checkIndent
	}
	return 0
}

// styledSpan is a byte range of a block's text sharing one attr.
type styledSpan struct {
	start int
	end   int
	attr  slate.StyleAttr
}

func blockSpans(b slate.NoteBlock) []styledSpan {
	n := len(b.Text)
	if len(b.Runs) == 0 {
		return []styledSpan{{start: 0, end: n, attr: slate.StyleAttr{FontSizePt: noteDefaultPt}}}
	}
	spans := make([]styledSpan, 0, len(b.Runs))
	pos := 0
	for _, r := range b.Runs {
		s, e := int(r.Start), int(r.End)
		if s > n {
			s = n
		}
		if e > n {
			e = n
		}
		if s > pos {
			spans = append(spans, styledSpan{start: pos, end: s, attr: slate.StyleAttr{FontSizePt: noteDefaultPt}})
		}
		if e > s {
			spans = append(spans, styledSpan{start: s, end: e, attr: r.Attr})
		}
		if e > pos {
			pos = e
		}
	}
	if pos < n {
		spans = append(spans, styledSpan{start: pos, end: n, attr: slate.StyleAttr{FontSizePt: noteDefaultPt}})
	}
	return spans
}

// atom is an unbreakable wrap unit: a word or a run of spaces, clipped
// to one styled span.
type atom struct {
	text      string
	attr      slate.StyleAttr
	startByte int
	space     bool
}

func blockAtoms(b slate.NoteBlock) []atom {
	var atoms []atom
	for _, sp := range blockSpans(b) {
		text := b.Text[sp.start:sp.end]
		i := 0
		for i < len(text) {
			j := i
			space := text[i] == ' '
			for j < len(text) && (text[j] == ' ') == space {
				j++
			}
			atoms = append(atoms, atom{
				text:      string(text[i:j]),
				attr:      sp.attr,
				startByte: sp.start + i,
				space:     space,
			})
			i = j
		}
	}
	return atoms
}

// layoutNote wraps every block of a note to the given item width.
func layoutNote(bank *fontBank, note *slate.NoteContent, width float64) noteLayout {
	var out noteLayout
	y := notePadY
	if note == nil {
		out.height = notePadY * 2
		return out
	}
	for bi := range note.Blocks {
		b := note.Blocks[bi]
		indent := blockIndent(b.Kind)
		avail := width - 2*notePadX - indent
		if avail < 20 {
			avail = 20
		}

		lines := wrapBlock(bank, b, bi, indent, avail)
		for li := range lines {
			if li > 0 {
				y += noteLineGap
			}
			lines[li].y = y
			y += lines[li].height
			out.lines = append(out.lines, lines[li])
		}
		if bi < len(note.Blocks)-1 {
			y += noteBlockGap
		}
	}
	out.height = y + notePadY
	return out
}

func wrapBlock(bank *fontBank, b slate.NoteBlock, blockIdx int, indent, avail float64) []noteLine {
	newLine := func(start int) noteLine {
		return noteLine{block: blockIdx, startByte: start, endByte: start, indent: indent}
	}
	lines := []noteLine{newLine(0)}
	cur := &lines[len(lines)-1]
	x := 0.0

	pushPiece := func(text string, attr slate.StyleAttr, startByte int, w float64) {
		cur.pieces = append(cur.pieces, notePiece{text: text, attr: attr, startByte: startByte, x: x, width: w})
		x += w
		cur.endByte = startByte + len(text)
	}
	flush := func(nextStart int) {
		lines = append(lines, newLine(nextStart))
		cur = &lines[len(lines)-1]
		x = 0
	}

	for _, a := range blockAtoms(b) {
		face := bank.attrFace(a.attr, 1)
		w := measureString(face, a.text)
		if a.space {
			// Trailing spaces never force a wrap; they may overhang.
			pushPiece(a.text, a.attr, a.startByte, w)
			continue
		}
		if x+w > avail && len(cur.pieces) > 0 {
			flush(a.startByte)
		}
		if w > avail {
			// Hard-break an over-long word rune by rune.
			start := 0
			text := a.text
			for start < len(text) {
				end := start
				lineW := 0.0
				for end < len(text) {
					_, size := utf8.DecodeRuneInString(text[end:])
					rw := measureString(face, text[end:end+size])
					if end > start && lineW+rw > avail {
						break
					}
					lineW += rw
					end += size
				}
				pushPiece(text[start:end], a.attr, a.startByte+start, lineW)
				if end < len(text) {
					flush(a.startByte + end)
				}
				start = end
			}
			continue
		}
		pushPiece(a.text, a.attr, a.startByte, w)
	}

	// Metrics per line; an empty line still gets the default face height.
	for li := range lines {
		l := &lines[li]
		l.first = li == 0
		if b.Align != slate.AlignLeft {
			used := 0.0
			for _, p := range l.pieces {
				if e := p.x + p.width; e > used {
					used = e
				}
			}
			if extra := avail - used; extra > 0 {
				l.alignOff = extra
				if b.Align == slate.AlignCenter {
					l.alignOff = extra / 2
				}
				for pi := range l.pieces {
					l.pieces[pi].x += l.alignOff
				}
			}
		}
		attr := slate.StyleAttr{FontSizePt: noteDefaultPt}
		if len(l.pieces) > 0 {
			attr = l.pieces[0].attr
		} else if len(b.Runs) > 0 {
			attr = b.Runs[0].Attr
		}
		face := bank.attrFace(attr, 1)
		l.ascent = faceAscent(face)
		l.height = faceHeight(face)
		for _, p := range l.pieces {
			f := bank.attrFace(p.attr, 1)
			if a := faceAscent(f); a > l.ascent {
				l.ascent = a
			}
			if h := faceHeight(f); h > l.height {
				l.height = h
			}
		}
	}
	return lines
}

// hit maps a point in note-local world coordinates to a block index
// and byte offset, clamping outside clicks to the nearest position.
func (nl noteLayout) hit(bank *fontBank, localX, localY float64) (int, int) {
	if len(nl.lines) == 0 {
		return 0, 0
	}
	li := len(nl.lines) - 1
	for i, l := range nl.lines {
		if localY < l.y+l.height+noteLineGap/2 {
			li = i
			break
		}
	}
	l := nl.lines[li]
	x := localX - notePadX - l.indent
	if x <= l.alignOff {
		return l.block, l.startByte
	}
	for _, p := range l.pieces {
		if x < p.x || x > p.x+p.width {
			continue
		}
		face := bank.attrFace(p.attr, 1)
		acc := p.x
		for off := 0; off < len(p.text); {
			_, size := utf8.DecodeRuneInString(p.text[off:])
			rw := measureString(face, p.text[off:off+size])
			if x < acc+rw/2 {
				return l.block, p.startByte + off
			}
			acc += rw
			off += size
		}
	}
	return l.block, l.endByte
}

// caret returns the note-local position and height of the caret at a
// block/byte location.
func (nl noteLayout) caret(bank *fontBank, block, bytePos int) (x, y, h float64) {
	var target *noteLine
	for i := range nl.lines {
		l := &nl.lines[i]
		if l.block != block {
			continue
		}
		target = l
		if bytePos <= l.endByte {
			break
		}
	}
	if target == nil {
		return notePadX, notePadY, 14
	}
	x = notePadX + target.indent + target.alignOff
	for _, p := range target.pieces {
		if bytePos <= p.startByte {
			break
		}
		face := bank.attrFace(p.attr, 1)
		if bytePos >= p.startByte+len(p.text) {
			x = notePadX + target.indent + p.x + p.width
			continue
		}
		x = notePadX + target.indent + p.x + measureString(face, p.text[:bytePos-p.startByte])
		break
	}
	return x, target.y, target.height
}

// textMeasurer backs the object manager's height queries with real
// font metrics.
type textMeasurer struct {
	bank *fontBank
}

func (m *textMeasurer) NoteContentHeight(note *slate.NoteContent, width float64) float64 {
	return layoutNote(m.bank, note, width).height
}
