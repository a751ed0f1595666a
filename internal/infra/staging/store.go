package staging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Store manages the local staging directory where uploads and
// intermediate audio live for the duration of one pipeline run. Files are
// named with random identifiers so concurrent runs sharing the directory
// never collide.
type Store struct {
	dir string
	log *zerolog.Logger
}

func NewStore(dir string, logger *zerolog.Logger) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create staging dir: %w", err)
	}
	l := logger.With().Str("component", "StagingStore").Logger()
	return &Store{dir: dir, log: &l}, nil
}

func (s *Store) Dir() string { return s.dir }

// SaveUpload streams r into a new staging file named by a fresh UUID with
// the given extension (no leading dot) and returns its path.
func (s *Store) SaveUpload(r io.Reader, ext string) (string, error) {
	name := uuid.NewString() + "." + strings.TrimPrefix(ext, ".")
	path := filepath.Join(s.dir, name)

	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		_ = os.Remove(path)
		return "", err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		return "", err
	}
	return path, nil
}

// SaveBytes writes b to a new staging file, used for synthesized audio.
func (s *Store) SaveBytes(b []byte, ext string) (string, error) {
	name := uuid.NewString() + "." + strings.TrimPrefix(ext, ".")
	path := filepath.Join(s.dir, name)
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return "", err
	}
	return path, nil
}

// Remove deletes staging files best-effort: failures are logged and
// reported back but safe to ignore.
func (s *Store) Remove(paths ...string) error {
	var firstErr error
	for _, p := range paths {
		if p == "" {
			continue
		}
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			s.log.Warn().Err(err).Str("path", p).Msg("staging cleanup failed")
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}
