package prompt

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/iw2rmb/inkwell/internal/logging"
)

const templateExt = ".md"

// Store reads templates from a directory and caches them until the files
// change.
type Store struct {
	dir    string
	logger *slog.Logger

	onChange func(name string)
	fallback fs.FS

	mu    sync.Mutex
	cache map[string]Template
	// gens counts invalidations per name; a read only fills the cache if
	// no invalidation happened while it ran.
	gens    map[string]uint64
	watcher *fsnotify.Watcher
}

type StoreOption func(*Store)

func WithLogger(l *slog.Logger) StoreOption {
	return func(s *Store) { s.logger = l }
}

// WithFallback serves templates missing from the directory from fsys.
func WithFallback(fsys fs.FS) StoreOption {
	return func(s *Store) { s.fallback = fsys }
}

// WithOnChange registers a callback run from the watch goroutine after a
// template file changed and its cache entry was dropped.
func WithOnChange(fn func(name string)) StoreOption {
	return func(s *Store) { s.onChange = fn }
}

func NewStore(dir string, opts ...StoreOption) *Store {
	s := &Store{
		dir:   dir,
		cache: make(map[string]Template),
		gens:  make(map[string]uint64),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = logging.OrNop(s.logger)
	return s
}

func (s *Store) Dir() string { return s.dir }

// Template returns the template called name. Both "name" and "name.md"
// files are accepted.
func (s *Store) Template(ctx context.Context, name string) (Template, error) {
	if err := ctx.Err(); err != nil {
		return Template{}, err
	}
	key, err := normalizeName(name)
	if err != nil {
		return Template{}, err
	}

	s.mu.Lock()
	t, ok := s.cache[key]
	gen := s.gens[key]
	s.mu.Unlock()
	if ok {
		return t, nil
	}

	raw, err := s.read(key)
	if err != nil {
		return Template{}, err
	}
	t, err = ParseTemplate(key, raw)
	if err != nil {
		return Template{}, err
	}

	s.mu.Lock()
	if s.gens[key] == gen {
		s.cache[key] = t
	}
	s.mu.Unlock()
	s.logger.Debug("template loaded", "name", key)
	return t, nil
}

func (s *Store) read(key string) (string, error) {
	for _, file := range []string{key + templateExt, key} {
		data, err := os.ReadFile(filepath.Join(s.dir, file))
		if err == nil {
			return string(data), nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("read template %q: %w", key, err)
		}
	}
	if s.fallback != nil {
		for _, file := range []string{key + templateExt, key} {
			data, err := fs.ReadFile(s.fallback, file)
			if err == nil {
				return string(data), nil
			}
		}
	}
	return "", fmt.Errorf("template %q: %w", key, ErrTemplateNotFound)
}

// List returns the template names in the directory and the fallback,
// sorted and deduplicated.
func (s *Store) List() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	if s.fallback != nil {
		more, err := fs.ReadDir(s.fallback, ".")
		if err != nil {
			return nil, fmt.Errorf("list builtin templates: %w", err)
		}
		entries = append(entries, more...)
	}

	seen := make(map[string]bool, len(entries))
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		name := strings.TrimSuffix(e.Name(), templateExt)
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names, nil
}

// Invalidate drops the cached template called name.
func (s *Store) Invalidate(name string) {
	key, err := normalizeName(name)
	if err != nil {
		return
	}
	s.mu.Lock()
	delete(s.cache, key)
	s.gens[key]++
	s.mu.Unlock()
}

// Watch invalidates cached templates when files in the directory change.
// It returns once the watcher is running; watching stops when ctx is done
// or Close is called.
func (s *Store) Watch(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.watcher != nil {
		return nil
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	if err := w.Add(s.dir); err != nil {
		_ = w.Close()
		return fmt.Errorf("watch %s: %w", s.dir, err)
	}
	s.watcher = w
	go s.watchLoop(ctx, w)
	return nil
}

func (s *Store) watchLoop(ctx context.Context, w *fsnotify.Watcher) {
	for {
		select {
		case <-ctx.Done():
			_ = s.Close()
			return
		case ev, ok := <-w.Events:
			if !ok {
				return
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Remove) && !ev.Has(fsnotify.Rename) {
				continue
			}
			name := strings.TrimSuffix(filepath.Base(ev.Name), templateExt)
			s.Invalidate(name)
			s.logger.Debug("template changed", "name", name, "op", ev.Op.String())
			if s.onChange != nil {
				s.onChange(name)
			}
		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			s.logger.Warn("template watcher", "error", err)
		}
	}
}

// Close stops the watcher, if any.
func (s *Store) Close() error {
	s.mu.Lock()
	w := s.watcher
	s.watcher = nil
	s.mu.Unlock()
	if w == nil {
		return nil
	}
	return w.Close()
}

func normalizeName(name string) (string, error) {
	key := strings.TrimSuffix(strings.TrimSpace(name), templateExt)
	if key == "" || key == "." || key == ".." || strings.ContainsAny(key, `/\`) {
		return "", fmt.Errorf("template %q: %w", name, ErrTemplateNotFound)
	}
	return key, nil
}
