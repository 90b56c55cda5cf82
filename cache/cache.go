// Package cache keeps recently decoded .mat files in memory.
//
// Entries are keyed by path and revalidated against the file's size and
// modification time on every Load, so a file rewritten on disk is decoded
// again. A *matlab.File is immutable, which makes sharing one between callers
// safe.
package cache

import (
	"os"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/thisMagpie/nmatrix/matlab"
)

// DefaultSize is the number of files kept when New is given a size <= 0.
const DefaultSize = 16

type entry struct {
	size    int64
	modTime time.Time
	file    *matlab.File
}

// Loader decodes files through an LRU cache.
type Loader struct {
	mu    sync.Mutex // serialises decodes of the same path
	files *lru.Cache[string, entry]
	opts  []matlab.Option
	open  func(path string, opts ...matlab.Option) (*matlab.File, error)
}

// New returns a Loader holding up to size files, decoded with opts.
func New(size int, opts ...matlab.Option) (*Loader, error) {
	if size <= 0 {
		size = DefaultSize
	}
	files, err := lru.New[string, entry](size)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create file cache")
	}
	return &Loader{files: files, opts: opts, open: matlab.OpenFile}, nil
}

// Load returns the decoded file at path, from the cache when it is current.
func (l *Loader) Load(path string) (*matlab.File, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to stat %s", path)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if e, ok := l.files.Get(path); ok && e.size == fi.Size() && e.modTime.Equal(fi.ModTime()) {
		logrus.Debugf("cache hit for %s", path)
		return e.file, nil
	}

	f, err := l.open(path, l.opts...)
	if err != nil {
		return nil, err
	}
	l.files.Add(path, entry{size: fi.Size(), modTime: fi.ModTime(), file: f})
	return f, nil
}

// Forget drops path from the cache.
func (l *Loader) Forget(path string) {
	l.files.Remove(path)
}

// Len is the number of cached files.
func (l *Loader) Len() int {
	return l.files.Len()
}
