// Package export renders a whiteboard to a PDF page. Strokes become
// vector polylines, notes become filled boxes with their plain text,
// and images are embedded at their canvas geometry.
package export

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"slate/pkg/slate"
)

const (
	pageMargin = 36.0
	minExtent  = 1.0
)

// ErrEmptyBoard is returned when there is nothing to export.
var ErrEmptyBoard = errors.New("export: whiteboard is empty")

// PDF writes the whiteboard to path, fitted to a single landscape A4
// page. Hidden layers are skipped, matching what the user sees.
func PDF(path string, wb *slate.Whiteboard) error {
	if wb == nil {
		return ErrEmptyBoard
	}
	visible := map[string]bool{}
	for _, l := range wb.Layers {
		visible[l.ID] = l.Visible
	}

	minX, minY, maxX, maxY, any := bounds(wb, visible)
	if !any {
		return ErrEmptyBoard
	}

	pdf := gofpdf.New("L", "pt", "A4", "")
	pdf.AddPage()
	pageW, pageH := pdf.GetPageSize()

	spanX := maxX - minX
	spanY := maxY - minY
	if spanX < minExtent {
		spanX = minExtent
	}
	if spanY < minExtent {
		spanY = minExtent
	}
	scale := (pageW - 2*pageMargin) / spanX
	if s := (pageH - 2*pageMargin) / spanY; s < scale {
		scale = s
	}
	tx := func(x float64) float64 { return pageMargin + (x-minX)*scale }
	ty := func(y float64) float64 { return pageMargin + (y-minY)*scale }

	// Layer order is z-order; draw items first, strokes above them,
	// per layer.
	for _, layer := range wb.Layers {
		if !layer.Visible {
			continue
		}
		for _, it := range wb.Items {
			if it.LayerID != layer.ID {
				continue
			}
			drawItem(pdf, it, tx, ty, scale)
		}
		for _, s := range wb.Strokes {
			if s.LayerID != layer.ID || s.IsEraser || len(s.Points) < 2 {
				continue
			}
			drawStroke(pdf, s, tx, ty, scale)
		}
	}

	if pdf.Err() {
		return fmt.Errorf("export: %s", pdf.Error())
	}
	return pdf.OutputFileAndClose(path)
}

func bounds(wb *slate.Whiteboard, visible map[string]bool) (minX, minY, maxX, maxY float64, any bool) {
	grow := func(x, y float64) {
		if !any {
			minX, minY, maxX, maxY = x, y, x, y
			any = true
			return
		}
		if x < minX {
			minX = x
		}
		if y < minY {
			minY = y
		}
		if x > maxX {
			maxX = x
		}
		if y > maxY {
			maxY = y
		}
	}
	for _, s := range wb.Strokes {
		if !visible[s.LayerID] || s.IsEraser {
			continue
		}
		for _, p := range s.Points {
			grow(p.X-s.Size, p.Y-s.Size)
			grow(p.X+s.Size, p.Y+s.Size)
		}
	}
	for _, it := range wb.Items {
		if !visible[it.LayerID] {
			continue
		}
		grow(it.X, it.Y)
		grow(it.X+it.W, it.Y+it.H)
	}
	return
}

func drawStroke(pdf *gofpdf.Fpdf, s slate.Stroke, tx, ty func(float64) float64, scale float64) {
	r, g, b := splitRGB(s.Color)
	pdf.SetDrawColor(r, g, b)
	pdf.SetLineWidth(s.Size * scale)
	pdf.SetLineCapStyle("round")
	pdf.SetLineJoinStyle("round")
	alpha := s.Opacity
	if alpha <= 0 || alpha > 1 {
		alpha = 1
	}
	pdf.SetAlpha(alpha, "Normal")
	for i := 1; i < len(s.Points); i++ {
		p0 := s.Points[i-1]
		p1 := s.Points[i]
		pdf.Line(tx(p0.X), ty(p0.Y), tx(p1.X), ty(p1.Y))
	}
	pdf.SetAlpha(1, "Normal")
}

func drawItem(pdf *gofpdf.Fpdf, it slate.Item, tx, ty func(float64) float64, scale float64) {
	x, y := tx(it.X), ty(it.Y)
	w, h := it.W*scale, it.H*scale

	switch it.Type {
	case slate.ItemNote:
		r, g, b := splitRGB(it.Background)
		pdf.SetFillColor(r, g, b)
		pdf.Rect(x, y, w, h, "F")
		if it.Note != nil {
			pdf.SetFont("Helvetica", "", 10)
			pdf.SetTextColor(0x20, 0x20, 0x20)
			pdf.SetXY(x+4, y+4)
			pdf.MultiCell(w-8, 12, noteText(it.Note), "", "L", false)
		}
	case slate.ItemImage:
		if len(it.ImageData) > 0 {
			name := "item-" + it.ID
			opts := gofpdf.ImageOptions{ImageType: imageType(it.ImageMIME)}
			pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(it.ImageData))
			pdf.ImageOptions(name, x, y, w, h, false, opts, 0, "")
		}
		if it.Border != nil {
			r, g, b := splitRGB(it.Border.Color)
			pdf.SetDrawColor(r, g, b)
			pdf.SetLineWidth(it.Border.Width * scale)
			pdf.Rect(x, y, w, h, "D")
		}
	}
}

func noteText(n *slate.NoteContent) string {
	var out strings.Builder
	for i, b := range n.Blocks {
		if i > 0 {
			out.WriteByte('\n')
		}
		switch b.Kind {
		case slate.BlockBullet:
			out.WriteString("- ")
		case slate.BlockOrdered:
			out.WriteString(fmt.Sprintf("%d. ", i+1))
		case slate.BlockCheck:
			if b.Checked {
				out.WriteString("[x] ")
			} else {
				out.WriteString("[ ] ")
			}
		}
		out.Write(b.Text)
	}
	return out.String()
}

func imageType(mime string) string {
	switch mime {
	case "image/jpeg", "image/jpg":
		return "JPG"
	case "image/gif":
		return "GIF"
	default:
		return "PNG"
	}
}

func splitRGB(rgba uint32) (int, int, int) {
	return int(rgba >> 24 & 0xFF), int(rgba >> 16 & 0xFF), int(rgba >> 8 & 0xFF)
}
