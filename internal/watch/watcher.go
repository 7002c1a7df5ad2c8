// ABOUTME: Debounced file watcher that triggers rebuilds
// ABOUTME: Watches parent directories so editor rename-and-replace saves are seen

package watch

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/nainya/refgraph/internal/logger"
)

// DefaultDebounce is used when the configured debounce is zero
const DefaultDebounce = 500 * time.Millisecond

// ErrNoFiles is returned when nothing is left to watch
var ErrNoFiles = errors.New("watch: no files to watch")

// Watcher reports content changes to a fixed set of files.
type Watcher struct {
	files    map[string]bool
	debounce time.Duration
	log      *logger.Logger
	fsw      *fsnotify.Watcher

	mu      sync.Mutex
	pending map[string]struct{}
	hashes  map[string][32]byte
}

// New creates a watcher for files. Empty paths are ignored.
func New(files []string, debounce time.Duration, log *logger.Logger) (*Watcher, error) {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if log == nil {
		log = logger.Nop()
	}

	w := &Watcher{
		files:    make(map[string]bool),
		debounce: debounce,
		log:      log,
		pending:  make(map[string]struct{}),
		hashes:   make(map[string][32]byte),
	}
	for _, f := range files {
		if f == "" {
			continue
		}
		abs, err := filepath.Abs(f)
		if err != nil {
			return nil, fmt.Errorf("watch %s: %w", f, err)
		}
		w.files[abs] = true
	}
	if len(w.files) == 0 {
		return nil, ErrNoFiles
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	w.fsw = fsw

	dirs := make(map[string]bool)
	for f := range w.files {
		dirs[filepath.Dir(f)] = true
		if sum, ok := hashFile(f); ok {
			w.hashes[f] = sum
		}
	}
	added := 0
	for dir := range dirs {
		if err := fsw.Add(dir); err != nil {
			log.Warn().Err(err).Str("dir", dir).Msg("Failed to watch directory")
			continue
		}
		added++
	}
	if added == 0 {
		fsw.Close()
		return nil, ErrNoFiles
	}
	return w, nil
}

// Run blocks until ctx is done, calling onChange with the sorted changed paths
// once events have been quiet for the debounce period. An onChange error is
// logged and watching continues.
func (w *Watcher) Run(ctx context.Context, onChange func(ctx context.Context, changed []string) error) error {
	defer w.fsw.Close()

	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if w.record(event) {
				timer.Reset(w.debounce)
			}

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.log.Error().Err(err).Msg("Watcher error")

		case <-timer.C:
			changed := w.flush()
			if len(changed) == 0 {
				continue
			}
			w.log.Info().Strs("files", changed).Msg("Change detected, rebuilding")
			if err := onChange(ctx, changed); err != nil {
				w.log.Error().Err(err).Msg("Rebuild failed")
			}
		}
	}
}

// record queues a watched file touched by event
func (w *Watcher) record(event fsnotify.Event) bool {
	path := filepath.Clean(event.Name)
	if !w.files[path] {
		return false
	}
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) && !event.Has(fsnotify.Remove) {
		return false
	}
	w.mu.Lock()
	w.pending[path] = struct{}{}
	w.mu.Unlock()
	w.log.Debug().Str("path", path).Str("op", event.Op.String()).Msg("File event")
	return true
}

// flush returns pending files whose content actually changed
func (w *Watcher) flush() []string {
	w.mu.Lock()
	defer w.mu.Unlock()

	var changed []string
	for path := range w.pending {
		sum, ok := hashFile(path)
		old, had := w.hashes[path]
		switch {
		case !ok:
			// Removed mid-save; the following create brings it back.
			delete(w.hashes, path)
			continue
		case had && old == sum:
			continue
		}
		w.hashes[path] = sum
		changed = append(changed, path)
	}
	w.pending = make(map[string]struct{})
	sort.Strings(changed)
	return changed
}

func hashFile(path string) ([32]byte, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return [32]byte{}, false
	}
	return sha256.Sum256(data), true
}
