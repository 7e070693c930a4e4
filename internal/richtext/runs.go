package richtext

import (
	"sort"
	"unicode"
	"unicode/utf8"

	"slate/pkg/slate"
)

const (
	minFontPt     = 8
	maxFontPt     = 96
	defaultFontPt = 14
	defaultColor  = 0x202020FF
)

func defaultAttr() slate.StyleAttr {
	return slate.StyleAttr{FontSizePt: defaultFontPt, ColorRGBA: defaultColor}
}

func normalizeAttr(attr slate.StyleAttr) slate.StyleAttr {
	if attr.FontSizePt == 0 {
		attr.FontSizePt = defaultFontPt
	}
	if attr.ColorRGBA == 0 {
		attr.ColorRGBA = defaultColor
	}
	return attr
}

func attrsEqual(a, b slate.StyleAttr) bool {
	a = normalizeAttr(a)
	b = normalizeAttr(b)
	return a == b
}

// sanitizeRuns clamps, sorts, de-overlaps, merges, and gap-fills a run
// list so that it exactly covers [0, textLen).
func sanitizeRuns(textLen int, runs []slate.StyleRun) []slate.StyleRun {
	if textLen < 0 {
		textLen = 0
	}
	if len(runs) == 0 {
		if textLen == 0 {
			return []slate.StyleRun{{Start: 0, End: 0, Attr: defaultAttr()}}
		}
		return []slate.StyleRun{{Start: 0, End: uint32(textLen), Attr: defaultAttr()}}
	}
	clean := make([]slate.StyleRun, 0, len(runs))
	for _, r := range runs {
		start := int(r.Start)
		end := int(r.End)
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
		if textLen > 0 && start == end {
			continue
		}
		if textLen == 0 && !(start == 0 && end == 0) {
			continue
		}
		clean = append(clean, slate.StyleRun{Start: uint32(start), End: uint32(end), Attr: normalizeAttr(r.Attr)})
	}
	if len(clean) == 0 {
		if textLen == 0 {
			return []slate.StyleRun{{Start: 0, End: 0, Attr: defaultAttr()}}
		}
		return []slate.StyleRun{{Start: 0, End: uint32(textLen), Attr: defaultAttr()}}
	}

	sort.Slice(clean, func(i, j int) bool {
		if clean[i].Start == clean[j].Start {
			return clean[i].End < clean[j].End
		}
		return clean[i].Start < clean[j].Start
	})

	nonOverlap := make([]slate.StyleRun, 0, len(clean))
	for _, r := range clean {
		if len(nonOverlap) == 0 {
			nonOverlap = append(nonOverlap, r)
			continue
		}
		last := &nonOverlap[len(nonOverlap)-1]
		if r.Start < last.End {
			if r.End <= last.End {
				continue
			}
			r.Start = last.End
		}
		if r.Start == r.End && textLen > 0 {
			continue
		}
		nonOverlap = append(nonOverlap, r)
	}

	merged := make([]slate.StyleRun, 0, len(nonOverlap))
	for _, r := range nonOverlap {
		if len(merged) == 0 {
			merged = append(merged, r)
			continue
		}
		last := &merged[len(merged)-1]
		if last.End == r.Start && attrsEqual(last.Attr, r.Attr) {
			last.End = r.End
			continue
		}
		merged = append(merged, r)
	}

	if textLen == 0 {
		if len(merged) == 0 {
			return []slate.StyleRun{{Start: 0, End: 0, Attr: defaultAttr()}}
		}
		return []slate.StyleRun{{Start: 0, End: 0, Attr: normalizeAttr(merged[0].Attr)}}
	}

	if len(merged) == 0 {
		return []slate.StyleRun{{Start: 0, End: uint32(textLen), Attr: defaultAttr()}}
	}
	if merged[0].Start > 0 {
		merged = append([]slate.StyleRun{{Start: 0, End: merged[0].Start, Attr: defaultAttr()}}, merged...)
	}
	if int(merged[len(merged)-1].End) < textLen {
		merged = append(merged, slate.StyleRun{Start: merged[len(merged)-1].End, End: uint32(textLen), Attr: defaultAttr()})
	}
	for i := 1; i < len(merged); i++ {
		if merged[i].Start > merged[i-1].End {
			gap := slate.StyleRun{Start: merged[i-1].End, End: merged[i].Start, Attr: defaultAttr()}
			merged = append(merged[:i], append([]slate.StyleRun{gap}, merged[i:]...)...)
			i++
		}
	}
	return merged
}

func coverageRuns(textLen int, runs []slate.StyleRun) []slate.StyleRun {
	return sanitizeRuns(textLen, runs)
}

// normalizeSparseRuns sorts and de-overlaps without gap-filling. Used
// for run fragments that are about to be re-based into another block.
func normalizeSparseRuns(runs []slate.StyleRun) []slate.StyleRun {
	if len(runs) == 0 {
		return nil
	}
	sort.Slice(runs, func(i, j int) bool {
		if runs[i].Start == runs[j].Start {
			return runs[i].End < runs[j].End
		}
		return runs[i].Start < runs[j].Start
	})
	out := make([]slate.StyleRun, 0, len(runs))
	for _, r := range runs {
		if r.Start >= r.End {
			continue
		}
		r.Attr = normalizeAttr(r.Attr)
		if len(out) == 0 {
			out = append(out, r)
			continue
		}
		last := &out[len(out)-1]
		if r.Start < last.End {
			if r.End <= last.End {
				continue
			}
			r.Start = last.End
		}
		if last.End == r.Start && attrsEqual(last.Attr, r.Attr) {
			last.End = r.End
			continue
		}
		out = append(out, r)
	}
	return out
}

func clampToRuneBoundary(text []byte, pos int) int {
	if pos < 0 {
		return 0
	}
	if pos > len(text) {
		pos = len(text)
	}
	if pos == len(text) || utf8.Valid(text[:pos]) {
		return pos
	}
	for pos > 0 && !utf8.Valid(text[:pos]) {
		pos--
	}
	return pos
}

func previousRuneBoundary(text []byte, pos int) int {
	pos = clampToRuneBoundary(text, pos)
	if pos == 0 {
		return 0
	}
	_, size := utf8.DecodeLastRune(text[:pos])
	if size <= 0 {
		size = 1
	}
	return pos - size
}

func nextRuneBoundary(text []byte, pos int) int {
	pos = clampToRuneBoundary(text, pos)
	if pos >= len(text) {
		return len(text)
	}
	_, size := utf8.DecodeRune(text[pos:])
	if size <= 0 {
		size = 1
	}
	return pos + size
}

func previousWordBoundary(text []byte, pos int) int {
	pos = clampToRuneBoundary(text, pos)
	for pos > 0 {
		r, size := utf8.DecodeLastRune(text[:pos])
		if size <= 0 {
			size = 1
		}
		if !unicode.IsSpace(r) {
			break
		}
		pos -= size
	}
	for pos > 0 {
		r, size := utf8.DecodeLastRune(text[:pos])
		if size <= 0 {
			size = 1
		}
		if unicode.IsSpace(r) {
			break
		}
		pos -= size
	}
	return clampToRuneBoundary(text, pos)
}

func nextWordBoundary(text []byte, pos int) int {
	pos = clampToRuneBoundary(text, pos)
	for pos < len(text) {
		r, size := utf8.DecodeRune(text[pos:])
		if size <= 0 {
			size = 1
		}
		if !unicode.IsSpace(r) {
			break
		}
		pos += size
	}
	for pos < len(text) {
		r, size := utf8.DecodeRune(text[pos:])
		if size <= 0 {
			size = 1
		}
		if unicode.IsSpace(r) {
			break
		}
		pos += size
	}
	return clampToRuneBoundary(text, pos)
}
