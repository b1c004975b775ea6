// Package cache provides build caching for stylesheet bundles.
//
// A cache entry is keyed by a SHA256 over the task name, every input file
// (path and content, in match order) and the options that shape the output.
// Metadata lives in BoltDB; the built bundle is copied to
// artifacts/<hash>/ so it can be restored without rebuilding when the
// output on disk goes missing or is overwritten.
package cache

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/afero"
	"go.etcd.io/bbolt"
)

const (
	// bucketName is the BoltDB bucket name for cache entries
	bucketName = "builds"

	dbName       = "cache.db"
	artifactsDir = "artifacts"
)

// Cache manages build artifacts and metadata using BoltDB
type Cache struct {
	db   *bbolt.DB
	fs   afero.Fs
	root string
}

// New opens (or creates) the cache in dir.
// The database always lives on the local disk; artifacts go through fsys.
func New(dir string, fsys afero.Fs) (*Cache, error) {
	if dir == "" {
		return nil, fmt.Errorf("cache directory not specified")
	}

	if fsys == nil {
		fsys = afero.NewOsFs()
	}

	// Ensure cache directory exists
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	db, err := bbolt.Open(filepath.Join(dir, dbName), 0o600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open cache database: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketName))
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create cache bucket: %w", err)
	}

	return &Cache{
		db:   db,
		fs:   fsys,
		root: dir,
	}, nil
}

// Dir returns the cache root
func (c *Cache) Dir() string {
	return c.root
}

// Close closes the cache database
func (c *Cache) Close() error {
	if c.db != nil {
		return c.db.Close()
	}

	return nil
}

// Get retrieves the entry stored under key.
// Returns nil on a cache miss.
func (c *Cache) Get(key string) (*Entry, error) {
	var entry Entry
	err := c.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket([]byte(bucketName)).Get([]byte(key))
		if data == nil {
			return nil
		}

		return json.Unmarshal(data, &entry)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read cache entry: %w", err)
	}

	if entry.Hash == "" {
		return nil, nil
	}

	return &entry, nil
}

// Store records entry and, for a successful build, copies the file at outputPath into the cache
func (c *Cache) Store(entry Entry, outputPath string) error {
	if entry.Hash == "" {
		return fmt.Errorf("cache entry has no hash")
	}

	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}

	if entry.Success && outputPath != "" {
		entry.Output = filepath.Base(outputPath)
		if err := CopyArtifacts(c.fs, filepath.Dir(outputPath), c.artifactDir(entry.Hash), []string{entry.Output}); err != nil {
			return fmt.Errorf("failed to copy artifacts: %w", err)
		}
	}

	err := c.db.Update(func(tx *bbolt.Tx) error {
		data, err := json.Marshal(entry)
		if err != nil {
			return err
		}

		return tx.Bucket([]byte(bucketName)).Put([]byte(entry.Hash), data)
	})
	if err != nil {
		return fmt.Errorf("failed to store cache entry: %w", err)
	}

	return nil
}

// Restore copies the cached output of entry into destDir and returns its path
func (c *Cache) Restore(entry *Entry, destDir string) (string, error) {
	if !entry.Success || entry.Output == "" {
		return "", fmt.Errorf("cannot restore failed build or build with no output")
	}

	if err := RestoreArtifacts(c.fs, c.artifactDir(entry.Hash), destDir, []string{entry.Output}); err != nil {
		return "", err
	}

	return filepath.Join(destDir, entry.Output), nil
}

// Clear removes all cache entries and artifacts
func (c *Cache) Clear() error {
	err := c.db.Update(func(tx *bbolt.Tx) error {
		if err := tx.DeleteBucket([]byte(bucketName)); err != nil {
			return err
		}

		_, err := tx.CreateBucket([]byte(bucketName))
		return err
	})
	if err != nil {
		return err
	}

	if err := c.fs.RemoveAll(filepath.Join(c.root, artifactsDir)); err != nil {
		return fmt.Errorf("failed to remove artifacts: %w", err)
	}

	return nil
}

// Stats returns the number of entries and the total artifact size in bytes
func (c *Cache) Stats() (int, int64, error) {
	var count int
	var totalSize int64

	err := c.db.View(func(tx *bbolt.Tx) error {
		count = tx.Bucket([]byte(bucketName)).Stats().KeyN
		return nil
	})
	if err != nil {
		return 0, 0, err
	}

	err = afero.Walk(c.fs, filepath.Join(c.root, artifactsDir), func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil // Skip errors
		}

		if !info.IsDir() {
			totalSize += info.Size()
		}

		return nil
	})
	if err != nil {
		return 0, 0, err
	}

	return count, totalSize, nil
}

// artifactDir returns the directory path for a given cache hash
func (c *Cache) artifactDir(hash string) string {
	return filepath.Join(c.root, artifactsDir, hash)
}
