// Package render rasterizes strokes. The Compositor keeps one
// offscreen buffer per layer, recomposites only when marked dirty or
// while a stroke is live, and subtracts eraser strokes with
// destination-out blending. UI chrome drawing stays in the app layer;
// this package only knows about strokes and the view transform.
package render

import (
	"image"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"slate/pkg/slate"
)

var (
	whiteImage    = ebiten.NewImage(3, 3)
	whiteSubImage = whiteImage.SubImage(image.Rect(1, 1, 2, 2)).(*ebiten.Image)
)

func init() {
	whiteImage.Fill(color.White)
}

// LiveStroke is an in-progress, uncommitted stroke. It participates in
// redraws but is not part of the scene until committed.
type LiveStroke struct {
	Points   []slate.Point
	Pen      slate.Pen
	LayerID  string
	IsEraser bool
}

type Compositor struct {
	width       int
	height      int
	deviceScale float64

	background color.RGBA

	layerBufs map[string]*ebiten.Image
	composite *ebiten.Image
	dirty     bool

	live *LiveStroke
}

func NewCompositor(background color.RGBA) *Compositor {
	return &Compositor{
		deviceScale: 1,
		background:  background,
		layerBufs:   map[string]*ebiten.Image{},
		dirty:       true,
	}
}

// Resize reallocates backing buffers for the new size at the given
// device scale. Non-positive dimensions are a no-op.
func (c *Compositor) Resize(w, h int, deviceScale float64) {
	if w <= 0 || h <= 0 {
		return
	}
	if deviceScale <= 0 {
		deviceScale = 1
	}
	if w == c.width && h == c.height && deviceScale == c.deviceScale {
		return
	}
	c.width = w
	c.height = h
	c.deviceScale = deviceScale
	c.disposeBuffers()
	c.dirty = true
}

func (c *Compositor) disposeBuffers() {
	for id, img := range c.layerBufs {
		img.Deallocate()
		delete(c.layerBufs, id)
	}
	if c.composite != nil {
		c.composite.Deallocate()
		c.composite = nil
	}
}

// MarkDirty requests a recomposite on the next Draw.
func (c *Compositor) MarkDirty() {
	c.dirty = true
}

// DropLayerBuffer releases the offscreen buffer of a deleted layer.
func (c *Compositor) DropLayerBuffer(layerID string) {
	if img, ok := c.layerBufs[layerID]; ok {
		img.Deallocate()
		delete(c.layerBufs, layerID)
	}
	c.dirty = true
}

// StartStroke begins an uncommitted stroke at a world-space point.
func (c *Compositor) StartStroke(layerID string, p slate.Point, pen slate.Pen, isEraser bool) {
	c.live = &LiveStroke{
		Points:   []slate.Point{p},
		Pen:      pen,
		LayerID:  layerID,
		IsEraser: isEraser,
	}
	c.dirty = true
}

// AddStrokePoint appends a vertex to the live stroke. No-op when no
// stroke is live.
func (c *Compositor) AddStrokePoint(p slate.Point) {
	if c.live == nil {
		return
	}
	c.live.Points = append(c.live.Points, p)
	c.dirty = true
}

// FinishStroke returns the completed stroke and clears the live one.
// The caller commits it to the scene. Returns false when no stroke is
// live.
func (c *Compositor) FinishStroke() (slate.Stroke, bool) {
	if c.live == nil {
		return slate.Stroke{}, false
	}
	live := c.live
	c.live = nil
	c.dirty = true
	return slate.Stroke{
		ID:       slate.NewID(),
		Points:   live.Points,
		Color:    live.Pen.Color,
		Size:     live.Pen.Size,
		Opacity:  live.Pen.Opacity,
		LayerID:  live.LayerID,
		IsEraser: live.IsEraser,
	}, true
}

// CancelStroke discards the live stroke.
func (c *Compositor) CancelStroke() {
	if c.live == nil {
		return
	}
	c.live = nil
	c.dirty = true
}

// Drawing reports whether a stroke is live.
func (c *Compositor) Drawing() bool {
	return c.live != nil
}

func (c *Compositor) bufSize() (int, int) {
	w := int(float64(c.width) * c.deviceScale)
	h := int(float64(c.height) * c.deviceScale)
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	return w, h
}

func (c *Compositor) layerBuffer(layerID string) *ebiten.Image {
	if img, ok := c.layerBufs[layerID]; ok {
		return img
	}
	w, h := c.bufSize()
	img := ebiten.NewImage(w, h)
	c.layerBufs[layerID] = img
	return img
}

// Draw composites all visible layers onto dst. The expensive stroke
// rasterization only happens when the dirty flag is set or a stroke is
// live; otherwise the cached composite is blitted as-is.
func (c *Compositor) Draw(dst *ebiten.Image, wb *slate.Whiteboard) {
	if c.width <= 0 || c.height <= 0 {
		return
	}
	if c.dirty || c.live != nil {
		c.recomposite(wb)
		c.dirty = false
	}
	if c.composite == nil {
		return
	}
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(1/c.deviceScale, 1/c.deviceScale)
	op.Filter = ebiten.FilterLinear
	dst.DrawImage(c.composite, op)
}

func (c *Compositor) recomposite(wb *slate.Whiteboard) {
	w, h := c.bufSize()
	if c.composite == nil {
		c.composite = ebiten.NewImage(w, h)
	}
	c.composite.Fill(c.background)

	strokesByLayer := map[string][]slate.Stroke{}
	for _, s := range wb.Strokes {
		strokesByLayer[s.LayerID] = append(strokesByLayer[s.LayerID], s)
	}

	for _, layer := range wb.Layers {
		if !layer.Visible {
			continue
		}
		strokes := strokesByLayer[layer.ID]
		liveHere := c.live != nil && c.live.LayerID == layer.ID
		if len(strokes) == 0 && !liveHere {
			continue
		}
		buf := c.layerBuffer(layer.ID)
		buf.Clear()
		for _, s := range strokes {
			c.drawStroke(buf, s.Points, s.Color, s.Size, s.Opacity, s.IsEraser, wb.View)
		}
		if liveHere {
			c.drawStroke(buf, c.live.Points, c.live.Pen.Color, c.live.Pen.Size, c.live.Pen.Opacity, c.live.IsEraser, wb.View)
		}
		c.composite.DrawImage(buf, nil)
	}
}

func (c *Compositor) drawStroke(dst *ebiten.Image, points []slate.Point, rgba uint32, size, opacity float64, isEraser bool, view slate.View) {
	if len(points) == 0 || size <= 0 {
		return
	}
	screen := StrokeScreenPoints(points, view, c.deviceScale)
	path := buildSmoothedPath(screen)

	widthPx := float32(size * view.Scale * c.deviceScale)
	if widthPx < 0.5 {
		widthPx = 0.5
	}
	strokeOp := &vector.StrokeOptions{
		Width:    widthPx,
		LineCap:  vector.LineCapRound,
		LineJoin: vector.LineJoinRound,
	}
	vs, is := path.AppendVerticesAndIndicesForStroke(nil, nil, strokeOp)

	r := float32(rgba>>24&0xFF) / 0xFF
	g := float32(rgba>>16&0xFF) / 0xFF
	b := float32(rgba>>8&0xFF) / 0xFF
	a := float32(opacity)
	if a < 0 {
		a = 0
	}
	if a > 1 {
		a = 1
	}
	if isEraser {
		// Only coverage matters for destination-out.
		r, g, b = 1, 1, 1
		a = 1
	}
	for i := range vs {
		vs[i].SrcX = 1
		vs[i].SrcY = 1
		vs[i].ColorR = r * a
		vs[i].ColorG = g * a
		vs[i].ColorB = b * a
		vs[i].ColorA = a
	}

	op := &ebiten.DrawTrianglesOptions{AntiAlias: true}
	if isEraser {
		op.Blend = ebiten.BlendDestinationOut
	}
	dst.DrawTriangles(vs, is, whiteSubImage, op)
}

// StrokeScreenPoints maps world-space stroke points to device pixels
// under the given view transform.
func StrokeScreenPoints(points []slate.Point, view slate.View, deviceScale float64) []slate.Point {
	out := make([]slate.Point, len(points))
	for i, p := range points {
		s := view.WorldToScreen(p)
		out[i] = slate.Point{X: s.X * deviceScale, Y: s.Y * deviceScale}
	}
	return out
}

// buildSmoothedPath connects points with quadratics through segment
// midpoints, using each interior point as the control point. Raw
// polylines facet visibly at whiteboard zoom levels.
func buildSmoothedPath(points []slate.Point) vector.Path {
	var path vector.Path
	if len(points) == 0 {
		return path
	}
	p0 := points[0]
	path.MoveTo(float32(p0.X), float32(p0.Y))
	if len(points) == 1 {
		// A dot: nudge so the round cap still rasterizes.
		path.LineTo(float32(p0.X)+0.01, float32(p0.Y))
		return path
	}
	if len(points) == 2 {
		path.LineTo(float32(points[1].X), float32(points[1].Y))
		return path
	}
	for i := 1; i < len(points)-1; i++ {
		ctrl := points[i]
		next := points[i+1]
		midX := (ctrl.X + next.X) / 2
		midY := (ctrl.Y + next.Y) / 2
		path.QuadTo(float32(ctrl.X), float32(ctrl.Y), float32(midX), float32(midY))
	}
	last := points[len(points)-1]
	path.LineTo(float32(last.X), float32(last.Y))
	return path
}
