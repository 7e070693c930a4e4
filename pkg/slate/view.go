package slate

import "math"

// View is the world-to-screen transform: a screen-space translation
// followed by a uniform zoom. Screen = world*Scale + (X, Y).
type View struct {
	X     float64
	Y     float64
	Scale float64
}

func ClampScale(s float64) float64 {
	if s < MinScale {
		return MinScale
	}
	if s > MaxScale {
		return MaxScale
	}
	return s
}

func (v View) WorldToScreen(p Point) Point {
	return Point{X: p.X*v.Scale + v.X, Y: p.Y*v.Scale + v.Y}
}

func (v View) ScreenToWorld(p Point) Point {
	return Point{X: (p.X - v.X) / v.Scale, Y: (p.Y - v.Y) / v.Scale}
}

// ZoomAt scales the view by factor while keeping the world point under
// the given screen position fixed. The resulting scale is clamped, and
// the translation is recomputed from the effective scale so repeated
// zooms at the clamp boundary stay anchored.
func (v View) ZoomAt(sx, sy, factor float64) View {
	if factor <= 0 || math.IsNaN(factor) || math.IsInf(factor, 0) {
		return v
	}
	world := v.ScreenToWorld(Point{X: sx, Y: sy})
	next := ClampScale(v.Scale * factor)
	return View{
		X:     sx - world.X*next,
		Y:     sy - world.Y*next,
		Scale: next,
	}
}

// PanBy shifts the view by a screen-space delta.
func (v View) PanBy(dx, dy float64) View {
	v.X += dx
	v.Y += dy
	return v
}
