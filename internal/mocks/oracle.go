package mocks

import (
	"context"
	"sync"

	"github.com/AnthonySaldana/nujob/internal/application/port/output"
	"github.com/AnthonySaldana/nujob/internal/domain/entity"
)

var (
	_ output.MappingOracle   = (*MappingOracle)(nil)
	_ output.ChallengeOracle = (*ChallengeOracle)(nil)
	_ output.ArtifactStore   = (*Artifacts)(nil)
)

type MappingOracle struct {
	Reply func(req *entity.MappingRequest) (string, error)

	mu       sync.Mutex
	Requests []*entity.MappingRequest
}

func (o *MappingOracle) MapFields(ctx context.Context, req *entity.MappingRequest) (string, error) {
	o.mu.Lock()
	o.Requests = append(o.Requests, req)
	o.mu.Unlock()
	return o.Reply(req)
}

type ChallengeOracle struct {
	Reply func(img *entity.ChallengeImage) (string, error)

	mu    sync.Mutex
	Calls int
}

func (o *ChallengeOracle) LocateClick(ctx context.Context, img *entity.ChallengeImage) (string, error) {
	o.mu.Lock()
	o.Calls++
	o.mu.Unlock()
	return o.Reply(img)
}

type Artifacts struct {
	mu    sync.Mutex
	Files map[string][]byte
}

func NewArtifacts() *Artifacts {
	return &Artifacts{Files: map[string][]byte{}}
}

func (a *Artifacts) Save(name string, data []byte) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.Files[name] = data
	return "mem://" + name, nil
}

func (a *Artifacts) Names() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	names := make([]string, 0, len(a.Files))
	for n := range a.Files {
		names = append(names, n)
	}
	return names
}
