package humanize

import (
	"math"

	"github.com/AnthonySaldana/nujob/internal/domain/entity"
)

// Path returns the intermediate pointer positions of a curved, eased move
// from `from` to `to`. The last point is always exactly `to`.
func (m *Model) Path(from, to entity.Point) []entity.Point {
	steps := m.timing.MouseSteps
	if steps < 2 {
		steps = 2
	}

	dx, dy := to.X-from.X, to.Y-from.Y
	dist := math.Hypot(dx, dy)
	if dist < 1 {
		return []entity.Point{to}
	}

	// Unit normal to the straight line; control points bow along it.
	nx, ny := -dy/dist, dx/dist
	bow1 := (m.rng.Float64()*0.4 - 0.2) * dist
	bow2 := (m.rng.Float64()*0.4 - 0.2) * dist

	p0 := from
	p1 := entity.Point{X: from.X + dx/3 + nx*bow1, Y: from.Y + dy/3 + ny*bow1}
	p2 := entity.Point{X: from.X + 2*dx/3 + nx*bow2, Y: from.Y + 2*dy/3 + ny*bow2}
	p3 := to

	// Each move samples a fresh stretch of the noise field.
	offset := m.rng.Float64() * 1000

	path := make([]entity.Point, steps)
	for i := 0; i < steps; i++ {
		t := easeInOutCubic(float64(i+1) / float64(steps))
		path[i] = m.drift(bezier(p0, p1, p2, p3, t), offset+float64(i)*m.timing.PerlinFrequency, t)
	}
	path[steps-1] = to
	return path
}

// drift offsets p by Perlin noise sampled at x, tapering to zero as the move
// completes.
func (m *Model) drift(p entity.Point, x, t float64) entity.Point {
	amp := m.timing.PerlinAmplitude
	if amp == 0 {
		return p
	}
	taper := math.Sin(math.Pi * t)
	p.X += m.noiseX.Noise1D(x) * amp * taper
	p.Y += m.noiseY.Noise1D(x) * amp * taper
	return p
}

func bezier(p0, p1, p2, p3 entity.Point, t float64) entity.Point {
	omt := 1 - t
	a := omt * omt * omt
	b := 3 * omt * omt * t
	c := 3 * omt * t * t
	d := t * t * t
	return entity.Point{
		X: a*p0.X + b*p1.X + c*p2.X + d*p3.X,
		Y: a*p0.Y + b*p1.Y + c*p2.Y + d*p3.Y,
	}
}
