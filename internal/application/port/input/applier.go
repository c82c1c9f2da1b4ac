package input

import (
	"context"

	"github.com/AnthonySaldana/nujob/internal/domain/entity"
)

type Applier interface {
	Apply(ctx context.Context, url string, profile *entity.ApplicantProfile) (*entity.RunResult, error)
}
