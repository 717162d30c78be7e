package cache

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sync"

	"github.com/rasim/simcore/internal/ini"
)

// FileCache keeps parsed INI files by path so the rules, expansion and mission files are read
// once per session rather than on every scenario load.
type FileCache struct {
	mu    sync.Mutex
	files map[string]*ini.File
}

func NewFileCache() *FileCache {
	return &FileCache{
		files: make(map[string]*ini.File),
	}
}

// Get returns the parsed file at path, loading it on first use. A digest mismatch is not an
// error for these files; only scenarios are signed.
func (c *FileCache) Get(path string) (*ini.File, error) {
	key := filepath.Clean(path)

	c.mu.Lock()
	defer c.mu.Unlock()
	if f, ok := c.files[key]; ok {
		return f, nil
	}
	f, res, err := ini.Load(key)
	if res == ini.LoadFailed {
		if err == nil {
			err = errors.New("unreadable file")
		}
		return nil, fmt.Errorf("loading %s: %w", key, err)
	}
	c.files[key] = f
	return f, nil
}

// Optional is Get for files a session can do without: a missing file yields nil, nil.
func (c *FileCache) Optional(path string) (*ini.File, error) {
	if path == "" {
		return nil, nil
	}
	f, err := c.Get(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	return f, err
}

// Len returns the number of cached files.
func (c *FileCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.files)
}

func (c *FileCache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.files = make(map[string]*ini.File)
}

// SafeCounter is a thread-safe counter
type SafeCounter struct {
	mu sync.Mutex
	v  int
}

func (c *SafeCounter) Value() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.v
}

func (c *SafeCounter) Set(v int) {
	c.mu.Lock()
	c.v = v
	c.mu.Unlock()
}

// Next increments the counter and returns the new value.
func (c *SafeCounter) Next() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.v++
	return c.v
}
