// Package store owns project file I/O: loading a project at startup
// and persisting it through the debounced save path. It wraps the
// codec in pkg/slate and adds logging; nothing else in the app touches
// the disk.
package store

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"slate/pkg/slate"
)

// Store binds a project to its file path and save options.
type Store struct {
	path string
	opts slate.SaveOptions
	log  zerolog.Logger
}

func New(path string, opts slate.SaveOptions, log zerolog.Logger) *Store {
	return &Store{path: path, opts: opts, log: log.With().Str("component", "store").Logger()}
}

func (s *Store) Path() string { return s.path }

// SetPath retargets saves, for save-as.
func (s *Store) SetPath(path string) { s.path = path }

// SetOptions replaces compression/encryption settings for future
// saves.
func (s *Store) SetOptions(opts slate.SaveOptions) { s.opts = opts }

// Open loads the project at path, or returns a fresh project when the
// file does not exist yet.
func Open(path, password string, log zerolog.Logger) (*slate.Project, error) {
	p, err := slate.LoadWithOptions(path, slate.LoadOptions{Password: password})
	if err == nil {
		log.Info().Str("path", path).Msg("project loaded")
		return p, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		name := filepath.Base(path)
		if ext := filepath.Ext(name); ext != "" {
			name = name[:len(name)-len(ext)]
		}
		log.Info().Str("path", path).Msg("starting new project")
		fresh := slate.NewProject(name)
		fresh.EnsureWhiteboard()
		return fresh, nil
	}
	return nil, err
}

// Save persists the whole project. Matches scene.SaveFunc so it plugs
// straight into the state manager's debounce.
func (s *Store) Save(p *slate.Project) error {
	if s.path == "" {
		return errors.New("store: no file path set")
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		s.log.Error().Err(err).Str("path", s.path).Msg("save failed")
		return err
	}
	if err := slate.SaveWithOptions(s.path, p, s.opts); err != nil {
		s.log.Error().Err(err).Str("path", s.path).Msg("save failed")
		return err
	}
	s.log.Debug().Str("path", s.path).
		Int("items", len(p.Whiteboard.Items)).
		Int("strokes", len(p.Whiteboard.Strokes)).
		Msg("project saved")
	return nil
}
