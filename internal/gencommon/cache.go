package gencommon

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/spf13/afero"
)

const (
	CacheFileName = ".factorygen_cache.json"
	cacheVersion  = "1.0"
)

// GenerationCache remembers the checksum of every file written by a run so the
// next run can tell whether a file was edited by hand since.
type GenerationCache struct {
	Version string `json:"version"`

	// Generated file checksums (to detect manual edits), keyed by path
	// relative to the cache directory.
	GeneratedFileChecksums map[string]string `json:"generated_file_checksums"`

	LastGeneration time.Time `json:"last_generation"`

	fs  afero.Fs
	dir string
	mu  sync.RWMutex
}

// NewGenerationCache creates a cache stored in dir and loads the existing one.
// An unreadable cache starts empty.
func NewGenerationCache(fs afero.Fs, dir string) *GenerationCache {
	cache := &GenerationCache{
		Version:                cacheVersion,
		GeneratedFileChecksums: make(map[string]string),
		fs:                     fs,
		dir:                    dir,
	}

	_ = cache.Load()
	return cache
}

// ComputeChecksum returns the hex SHA256 of data.
func ComputeChecksum(data []byte) string {
	return fmt.Sprintf("%x", sha256.Sum256(data))
}

// ComputeFileChecksum computes SHA256 hash of a file
func ComputeFileChecksum(fs afero.Fs, filePath string) (string, error) {
	data, err := afero.ReadFile(fs, filePath)
	if err != nil {
		return "", err
	}
	return ComputeChecksum(data), nil
}

func (c *GenerationCache) key(genFile string) string {
	if rel, err := filepath.Rel(c.dir, genFile); err == nil {
		return filepath.ToSlash(rel)
	}
	return filepath.ToSlash(genFile)
}

// Modified reports whether genFile exists with content other than what the
// cache recorded for it. A file the cache never recorded counts as modified.
func (c *GenerationCache) Modified(genFile string) bool {
	current, err := ComputeFileChecksum(c.fs, genFile)
	if err != nil {
		return false
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	recorded, ok := c.GeneratedFileChecksums[c.key(genFile)]
	return !ok || recorded != current
}

// UpdateGeneratedFileChecksum updates checksum of generated file
func (c *GenerationCache) UpdateGeneratedFileChecksum(genFile, hash string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.GeneratedFileChecksums[c.key(genFile)] = hash
}

// MarkGeneration updates the last generation timestamp
func (c *GenerationCache) MarkGeneration() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.LastGeneration = time.Now()
}

// Save persists the cache to disk
func (c *GenerationCache) Save() error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if err := c.fs.MkdirAll(c.dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return afero.WriteFile(c.fs, filepath.Join(c.dir, CacheFileName), data, 0644)
}

// Load reads the cache from disk
func (c *GenerationCache) Load() error {
	data, err := afero.ReadFile(c.fs, filepath.Join(c.dir, CacheFileName))
	if err != nil {
		if os.IsNotExist(err) {
			return nil // No cache file yet
		}
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := json.Unmarshal(data, c); err != nil {
		return err
	}

	// Cache version mismatch, invalidate
	if c.Version != cacheVersion || c.GeneratedFileChecksums == nil {
		c.GeneratedFileChecksums = make(map[string]string)
		c.Version = cacheVersion
	}

	return nil
}
