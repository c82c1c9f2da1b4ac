// Package artifacts writes diagnostic screenshots to a local directory.
package artifacts

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/AnthonySaldana/nujob/internal/application/port/output"
)

var _ output.ArtifactStore = (*Store)(nil)

var errBadName = errors.New("invalid artifact name")

type Store struct {
	dir string

	once sync.Once
	err  error
}

// NewStore creates dir lazily, on the first Save.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// Save writes data under name, replacing an existing file. name must be a
// bare file name.
func (s *Store) Save(name string, data []byte) (string, error) {
	if name == "" || name != filepath.Base(name) || name == "." || name == ".." {
		return "", fmt.Errorf("%w: %q", errBadName, name)
	}

	s.once.Do(func() {
		s.err = os.MkdirAll(s.dir, 0o755)
	})
	if s.err != nil {
		return "", fmt.Errorf("create artifact dir: %w", s.err)
	}

	path := filepath.Join(s.dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write artifact: %w", err)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return path, nil
	}
	return abs, nil
}
