// Package profile loads the applicant profile handed to every run.
package profile

import (
	"context"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/AnthonySaldana/nujob/internal/application/port/output"
	"github.com/AnthonySaldana/nujob/internal/domain/entity"
)

//go:embed sample_profile.yaml
var sampleProfile []byte

var _ output.ProfileStore = (*Store)(nil)

// Store reads a YAML or JSON profile file. An empty path serves the
// embedded sample profile.
type Store struct {
	path string
}

func NewStore(path string) *Store {
	return &Store{path: path}
}

func (s *Store) Load(ctx context.Context) (*entity.ApplicantProfile, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data := sampleProfile
	source := "embedded sample"
	if s.path != "" {
		var err error
		data, err = os.ReadFile(s.path)
		if err != nil {
			return nil, fmt.Errorf("read profile: %w", err)
		}
		source = s.path
	}

	p, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("decode profile %s: %w", source, err)
	}

	if p.ResumeFile != "" && s.path != "" && !filepath.IsAbs(p.ResumeFile) {
		p.ResumeFile = filepath.Join(filepath.Dir(s.path), p.ResumeFile)
	}
	if p.CoverLetterFile != "" && s.path != "" && !filepath.IsAbs(p.CoverLetterFile) {
		p.CoverLetterFile = filepath.Join(filepath.Dir(s.path), p.CoverLetterFile)
	}
	return p, nil
}

// Decode parses YAML; JSON documents are accepted as YAML.
func Decode(data []byte) (*entity.ApplicantProfile, error) {
	var p entity.ApplicantProfile
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// Encode renders a profile as YAML.
func Encode(p *entity.ApplicantProfile) ([]byte, error) {
	return yaml.Marshal(p)
}
