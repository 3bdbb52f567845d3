package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/geosearch/internal/core/domain"
	"github.com/custodia-labs/geosearch/internal/core/ports/driven"
	"github.com/custodia-labs/geosearch/internal/logger"
)

// Ensure Store implements the interface.
var _ driven.TileStore = (*Store)(nil)

const (
	// Suffix marks tileset files.
	Suffix = ".tileset.json"

	// Pattern finds tilesets anywhere below the root.
	Pattern = "**/*" + Suffix
)

var tilesLog = logger.For("tiles")

// Store reads tilesets from a directory.
type Store struct {
	root string
	fsys fs.FS

	mu       sync.Mutex
	watchers []*fsnotify.Watcher
	closed   bool
}

// NewStore creates a store rooted at dir. The directory must exist.
func NewStore(dir string) (*Store, error) {
	if dir == "" {
		return nil, fmt.Errorf("%w: tiles directory is required", domain.ErrInvalidInput)
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolving tiles directory: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("opening tiles directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", domain.ErrInvalidInput, abs)
	}
	return &Store{root: abs, fsys: os.DirFS(abs)}, nil
}

// Root returns the tiles directory.
func (s *Store) Root() string {
	return s.root
}

// ListTilesets returns the names of available tilesets, sorted.
func (s *Store) ListTilesets(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	matches, err := doublestar.Glob(s.fsys, Pattern, doublestar.WithFilesOnly())
	if err != nil {
		return nil, fmt.Errorf("expanding %s: %w", Pattern, err)
	}
	names := make([]string, 0, len(matches))
	for _, m := range matches {
		names = append(names, strings.TrimSuffix(m, Suffix))
	}
	sort.Strings(names)
	return names, nil
}

// LoadTileset reads and decodes a tileset.
func (s *Store) LoadTileset(ctx context.Context, name string) (*domain.Tileset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	file := name + Suffix
	if name == "" || !fs.ValidPath(file) {
		return nil, fmt.Errorf("%w: tileset name %q", domain.ErrInvalidInput, name)
	}

	data, err := fs.ReadFile(s.fsys, file)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("tileset %q: %w", name, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("reading tileset %q: %w", name, err)
	}

	var tileset domain.Tileset
	if err := json.Unmarshal(data, &tileset); err != nil {
		return nil, fmt.Errorf("%w: tileset %q: %v", domain.ErrInvalidInput, name, err)
	}
	tileset.Name = name

	valid := tileset.Records[:0]
	for _, rec := range tileset.Records {
		if rec.ID == "" || rec.Name == "" || rec.Coordinate.Validate() != nil {
			tilesLog.Warn("tileset %q: skipping invalid record %q", name, rec.ID)
			continue
		}
		valid = append(valid, rec)
	}
	tileset.Records = valid
	return &tileset, nil
}

// Watch reports tileset writes and removals until ctx is done or the
// store is closed.
func (s *Store) Watch(ctx context.Context, onChange func(domain.TileChange), onError func(error)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}

	err = filepath.WalkDir(s.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return watcher.Add(path)
		}
		return nil
	})
	if err != nil {
		watcher.Close()
		return fmt.Errorf("watching %s: %w", s.root, err)
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		watcher.Close()
		return fmt.Errorf("tile store closed")
	}
	s.watchers = append(s.watchers, watcher)
	s.mu.Unlock()

	go s.watchLoop(ctx, watcher, onChange, onError)
	return nil
}

func (s *Store) watchLoop(ctx context.Context, watcher *fsnotify.Watcher, onChange func(domain.TileChange), onError func(error)) {
	defer s.release(watcher)

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					s.watchNewDir(watcher, event.Name, onChange, onError)
					continue
				}
			}
			if change, ok := s.toChange(event); ok {
				tilesLog.Debug("tileset %q %s", change.Tileset, change.Type)
				onChange(change)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			if onError != nil {
				onError(fmt.Errorf("watching tiles: %w", err))
			}
		}
	}
}

// watchNewDir adds a directory created after Watch started and reports
// tilesets that were moved in with it.
func (s *Store) watchNewDir(watcher *fsnotify.Watcher, dir string, onChange func(domain.TileChange), onError func(error)) {
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return watcher.Add(path)
		}
		if name, ok := s.tilesetName(path); ok {
			onChange(domain.TileChange{Type: domain.TileChangeWritten, Tileset: name})
		}
		return nil
	})
	if err != nil && onError != nil {
		onError(fmt.Errorf("watching %s: %w", dir, err))
	}
}

func (s *Store) toChange(event fsnotify.Event) (domain.TileChange, bool) {
	name, ok := s.tilesetName(event.Name)
	if !ok {
		return domain.TileChange{}, false
	}
	switch {
	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		return domain.TileChange{Type: domain.TileChangeRemoved, Tileset: name}, true
	case event.Has(fsnotify.Create), event.Has(fsnotify.Write):
		return domain.TileChange{Type: domain.TileChangeWritten, Tileset: name}, true
	default:
		return domain.TileChange{}, false
	}
}

// tilesetName maps an absolute path to a tileset name.
func (s *Store) tilesetName(path string) (string, bool) {
	rel, err := filepath.Rel(s.root, path)
	if err != nil {
		return "", false
	}
	rel = filepath.ToSlash(rel)
	if ok, _ := doublestar.Match(Pattern, rel); !ok {
		return "", false
	}
	return strings.TrimSuffix(rel, Suffix), true
}

func (s *Store) release(watcher *fsnotify.Watcher) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, w := range s.watchers {
		if w == watcher {
			s.watchers = append(s.watchers[:i], s.watchers[i+1:]...)
			break
		}
	}
	watcher.Close()
}

// Close stops all watchers.
func (s *Store) Close() error {
	s.mu.Lock()
	watchers := s.watchers
	s.watchers = nil
	s.closed = true
	s.mu.Unlock()

	var errs []error
	for _, w := range watchers {
		if err := w.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
