package output

import (
	"context"

	"github.com/AnthonySaldana/nujob/internal/domain/entity"
)

// MappingOracle returns the raw oracle reply; parsing belongs to the caller.
type MappingOracle interface {
	MapFields(ctx context.Context, req *entity.MappingRequest) (string, error)
}

type ChallengeOracle interface {
	LocateClick(ctx context.Context, img *entity.ChallengeImage) (string, error)
}
