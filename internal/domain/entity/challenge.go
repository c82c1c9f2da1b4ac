package entity

type ChallengeStatus string

const (
	ChallengeAbsent   ChallengeStatus = "absent"
	ChallengeDetected ChallengeStatus = "detected"
)

type ChallengePhase string

const (
	PhaseIdle      ChallengePhase = "idle"
	PhaseDetected  ChallengePhase = "detected"
	PhaseCaptured  ChallengePhase = "captured"
	PhaseResolving ChallengePhase = "resolving"
	PhaseClicked   ChallengePhase = "clicked"
)

type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type Box struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

func (b Box) Empty() bool {
	return b.Width <= 0 || b.Height <= 0
}

// Project maps a fractional point onto absolute coordinates inside b.
func (b Box) Project(frac Point) Point {
	return Point{
		X: b.X + frac.X*b.Width,
		Y: b.Y + frac.Y*b.Height,
	}
}

func (b Box) Contains(p Point) bool {
	return p.X >= b.X && p.X <= b.X+b.Width && p.Y >= b.Y && p.Y <= b.Y+b.Height
}

// ChallengeFrame locates the first visible embedded frame of a challenge.
type ChallengeFrame struct {
	Selector string
	Index    int
}

type ChallengeImage struct {
	Data   []byte
	Format string
	Width  int
	Height int
}

// ChallengeState lives for a single detection cycle.
type ChallengeState struct {
	Phase ChallengePhase
	Frame ChallengeFrame
	Image *ChallengeImage
	Click *Point
}
