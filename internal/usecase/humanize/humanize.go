// Package humanize models human input timing and pointer movement.
//
// A Model is owned by a single run and is not safe for concurrent use.
package humanize

import (
	"math"
	"math/rand"
	"time"

	"github.com/aquilax/go-perlin"
)

type Timing struct {
	KeyDelayMin  time.Duration
	KeyDelayMax  time.Duration
	KeyDelayMean time.Duration
	KeyDelayDev  time.Duration

	FieldPause  time.Duration
	FieldJitter time.Duration
	BeforeTab   time.Duration
	Settle      time.Duration
	HoverPause  time.Duration

	MouseSteps    int
	MouseStepWait time.Duration

	// PerlinAmplitude bounds the pointer drift in pixels; zero disables it.
	PerlinAmplitude float64
	PerlinFrequency float64
}

func DefaultTiming() Timing {
	return Timing{
		KeyDelayMin:   30 * time.Millisecond,
		KeyDelayMax:   250 * time.Millisecond,
		KeyDelayMean:  110 * time.Millisecond,
		KeyDelayDev:   45 * time.Millisecond,
		FieldPause:    500 * time.Millisecond,
		FieldJitter:   300 * time.Millisecond,
		BeforeTab:     500 * time.Millisecond,
		Settle:        500 * time.Millisecond,
		HoverPause:    400 * time.Millisecond,
		MouseSteps:    25,
		MouseStepWait: 8 * time.Millisecond,

		PerlinAmplitude: 2.0,
		PerlinFrequency: 0.8,
	}
}

type Model struct {
	timing Timing
	rng    *rand.Rand
	sleep  func(time.Duration)
	noiseX *perlin.Perlin
	noiseY *perlin.Perlin
}

type Option func(*Model)

// WithSleep replaces time.Sleep.
func WithSleep(fn func(time.Duration)) Option {
	return func(m *Model) { m.sleep = fn }
}

func New(timing Timing, seed int64, opts ...Option) *Model {
	alpha, beta, n := 2.0, 2.0, int32(3)
	m := &Model{
		timing: timing,
		rng:    rand.New(rand.NewSource(seed)),
		sleep:  time.Sleep,
		noiseX: perlin.NewPerlin(alpha, beta, n, seed),
		noiseY: perlin.NewPerlin(alpha, beta, n, seed+1),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Model) Timing() Timing {
	return m.timing
}

// KeyDelay draws an inter-keystroke delay from a clamped normal distribution.
func (m *Model) KeyDelay() time.Duration {
	t := m.timing
	d := time.Duration(m.rng.NormFloat64()*float64(t.KeyDelayDev)) + t.KeyDelayMean
	if d < t.KeyDelayMin {
		d = t.KeyDelayMin
	}
	if d > t.KeyDelayMax {
		d = t.KeyDelayMax
	}
	return d
}

func (m *Model) FieldPause() time.Duration {
	d := m.timing.FieldPause
	if j := m.timing.FieldJitter; j > 0 {
		d += time.Duration(m.rng.Int63n(int64(j)))
	}
	return d
}

// Wait blocks for d. Pacing waits are not cancellable once started.
func (m *Model) Wait(d time.Duration) {
	if d > 0 {
		m.sleep(d)
	}
}

func (m *Model) PauseKey()    { m.Wait(m.KeyDelay()) }
func (m *Model) PauseField()  { m.Wait(m.FieldPause()) }
func (m *Model) PauseTab()    { m.Wait(m.timing.BeforeTab) }
func (m *Model) PauseSettle() { m.Wait(m.timing.Settle) }
func (m *Model) PauseHover()  { m.Wait(m.timing.HoverPause) }
func (m *Model) PauseStep()   { m.Wait(m.timing.MouseStepWait) }

func easeInOutCubic(t float64) float64 {
	if t < 0.5 {
		return 4 * t * t * t
	}
	return 1 - math.Pow(-2*t+2, 3)/2
}
