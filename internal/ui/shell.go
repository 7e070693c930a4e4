// Package ui holds the chrome models: shell layout, the layer panel
// rows, and the floating context menu. Everything here is pure
// geometry and state; the app layer rasterizes it.
package ui

import (
	"image/color"

	"slate/internal/render"
)

type Layout struct {
	ToolbarH int
	StatusH  int
	CanvasY  int
	CanvasH  int
	CanvasW  int

	PanelVisible bool
	PanelX       int
	PanelW       int
	PanelRowH    int

	StatusY int
}

func ComputeLayout(w, h int, theme Theme, scale float32, panelVisible bool) Layout {
	if scale <= 0 {
		scale = 1
	}
	dp := func(v int) int { return int(float32(v) * scale) }

	toolbarH := dp(theme.ToolbarHeightDp)
	statusH := dp(theme.StatusHeightDp)
	canvasH := h - toolbarH - statusH
	if canvasH < 0 {
		canvasH = 0
	}

	l := Layout{
		ToolbarH:  toolbarH,
		StatusH:   statusH,
		CanvasY:   toolbarH,
		CanvasH:   canvasH,
		CanvasW:   w,
		PanelRowH: dp(theme.PanelRowDp),
		StatusY:   h - statusH,
	}
	if panelVisible {
		l.PanelVisible = true
		l.PanelW = dp(theme.PanelWidthDp)
		l.PanelX = w - l.PanelW
		l.CanvasW = w - l.PanelW
	}
	return l
}

// DrawShell paints the static chrome onto the CPU frame buffer: the
// toolbar strip, the layer panel surface, and the status bar. The
// canvas region stays transparent so the GPU-composited board shows
// through when the buffer is blitted over it.
func DrawShell(fb *render.FrameBuffer, theme Theme, scale float32, panelVisible bool) Layout {
	layout := ComputeLayout(fb.W, fb.H, theme, scale, panelVisible)

	fb.Clear(color.RGBA{})

	fb.FillRect(0, 0, fb.W, layout.ToolbarH, theme.Toolbar)
	fb.StrokeRect(0, 0, fb.W, layout.ToolbarH, 1, theme.Border)

	if layout.PanelVisible {
		fb.FillRect(layout.PanelX, layout.CanvasY, layout.PanelW, layout.CanvasH, theme.Panel)
		fb.StrokeRect(layout.PanelX, layout.CanvasY, layout.PanelW, layout.CanvasH, 1, theme.Border)
	}

	fb.FillRect(0, layout.StatusY, fb.W, layout.StatusH, theme.StatusBar)
	fb.StrokeRect(0, layout.StatusY, fb.W, layout.StatusH, 1, theme.Border)

	return layout
}
