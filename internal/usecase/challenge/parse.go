package challenge

import (
	"errors"
	"fmt"

	"github.com/AnthonySaldana/nujob/internal/domain/apperr"
	"github.com/AnthonySaldana/nujob/internal/domain/entity"
	"github.com/AnthonySaldana/nujob/internal/usecase/llmjson"
)

type clickReply struct {
	ClickPositions []entity.Point `json:"clickPositions"`
}

// ParseClick returns the first click position as a fraction of the image.
// Each axis is read on its own: a coordinate up to 1 is already a fraction,
// a larger one is pixels of a width x height image.
func ParseClick(reply string, width, height int) (entity.Point, error) {
	var r clickReply
	if err := llmjson.Decode(reply, &r); err != nil {
		return entity.Point{}, apperr.New(apperr.ErrMappingParse, "parse click", err)
	}
	if len(r.ClickPositions) == 0 {
		return entity.Point{}, apperr.New(apperr.ErrMappingSchema, "parse click", errors.New(`"clickPositions" is empty`))
	}

	p := r.ClickPositions[0]
	if p.X < 0 || p.Y < 0 {
		return entity.Point{}, fmt.Errorf("negative click position (%g, %g)", p.X, p.Y)
	}
	x, okX := toFraction(p.X, width)
	y, okY := toFraction(p.Y, height)
	if !okX || !okY {
		return entity.Point{}, fmt.Errorf("click position (%g, %g) outside %dx%d image", p.X, p.Y, width, height)
	}
	return entity.Point{X: x, Y: y}, nil
}

func toFraction(v float64, size int) (float64, bool) {
	if v <= 1 {
		return v, true
	}
	if size <= 0 || v > float64(size) {
		return 0, false
	}
	return v / float64(size), true
}
