// Package evidence indexes the file-backed alert and capture artifacts and
// resolves retrieval requests. Names are reduced to their base name and
// confined under the evidence root; anything outside it, or missing, is
// ErrNotFound so the response never confirms whether a traversal target exists.
package evidence

import (
	"errors"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/mjollne/varde/internal/fs"
	"github.com/mjollne/varde/internal/util"

	"github.com/fsnotify/fsnotify"
)

// ErrNotFound covers missing files and traversal attempts alike
var ErrNotFound = errors.New("evidence file not found")

// FileMeta describes one evidence artifact in a listing
type FileMeta struct {
	Name  string  `json:"name"`
	Mtime float64 `json:"mtime"`
	Size  int64   `json:"size"`
}

// Index watches the evidence root and keeps a listing cache warm. The watcher
// invalidates the cache on any directory event; listing rescans lazily.
type Index struct {
	root    string
	watcher *fsnotify.Watcher

	mu    sync.Mutex
	cache []FileMeta
	stale bool
	done  chan struct{}
}

// NewIndex creates the evidence root if needed and starts the watcher
func NewIndex(root string) (*Index, error) {
	if err := fs.EnsureDir(root); err != nil {
		return nil, err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := watcher.Add(root); err != nil {
		watcher.Close()
		return nil, err
	}

	idx := &Index{
		root:    root,
		watcher: watcher,
		stale:   true,
		done:    make(chan struct{}),
	}
	go idx.watch()

	return idx, nil
}

// Root returns the evidence root path
func (x *Index) Root() string {
	return x.root
}

// Close stops the watcher
func (x *Index) Close() error {
	close(x.done)
	return x.watcher.Close()
}

// List returns the evidence artifacts, newest first
func (x *Index) List() []FileMeta {
	x.mu.Lock()
	defer x.mu.Unlock()

	if x.stale {
		x.cache = x.scan()
		x.stale = false
	}

	out := make([]FileMeta, len(x.cache))
	copy(out, x.cache)
	return out
}

// Open resolves a requested artifact name to a path under the evidence root.
// The name is reduced to its base name first, so path traversal segments and
// absolute paths cannot escape the root.
func (x *Index) Open(name string) (string, error) {
	base := filepath.Base(name)
	if base == "." || base == string(filepath.Separator) {
		return "", ErrNotFound
	}

	path := filepath.Join(x.root, base)
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return "", ErrNotFound
	}
	return path, nil
}

func (x *Index) watch() {
	for {
		select {
		case <-x.done:
			return
		case _, ok := <-x.watcher.Events:
			if !ok {
				return
			}
			x.mu.Lock()
			x.stale = true
			x.mu.Unlock()
		case err, ok := <-x.watcher.Errors:
			if !ok {
				return
			}
			util.PrintWarningf("evidence watcher: %v", err)
		}
	}
}

func (x *Index) scan() []FileMeta {
	entries, err := os.ReadDir(x.root)
	if err != nil {
		util.PrintWarningf("evidence scan failed: %v", err)
		return nil
	}

	files := make([]FileMeta, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		files = append(files, FileMeta{
			Name:  entry.Name(),
			Mtime: float64(info.ModTime().UnixNano()) / 1e9,
			Size:  info.Size(),
		})
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].Mtime > files[j].Mtime
	})
	return files
}
