package output

import (
	"context"

	"github.com/AnthonySaldana/nujob/internal/domain/entity"
)

type ProfileStore interface {
	Load(ctx context.Context) (*entity.ApplicantProfile, error)
}

// ArtifactStore persists diagnostic files and returns their location.
type ArtifactStore interface {
	Save(name string, data []byte) (string, error)
}
