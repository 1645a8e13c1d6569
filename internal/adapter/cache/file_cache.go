// Package cache implements the local single-blob word cache as a JSON file
// on disk. The whole display list is rewritten on every save; a missing or
// corrupt file loads as an empty list so the app can always start.
package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/eslsoft/woorden/internal/entity"
	"github.com/eslsoft/woorden/internal/repository"
)

type fileState struct {
	Words []entity.DisplayWord `json:"words"`
}

// FileCache persists the display list under a single well-known path.
type FileCache struct {
	filePath string
	logger   logrus.FieldLogger
	mu       sync.RWMutex
}

// NewFileCache constructs a cache bound to the given path. The file is not
// created until the first Save.
func NewFileCache(filePath string, logger logrus.FieldLogger) repository.CacheStore {
	return &FileCache{filePath: filePath, logger: logger}
}

// Load reads the cached display list. A missing file or one that fails to
// parse yields an empty list: the malformed blob is discarded and the app
// starts from catalog defaults.
func (c *FileCache) Load() ([]entity.DisplayWord, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	data, err := os.ReadFile(c.filePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		c.logger.WithError(err).Warn("reading local cache failed, starting fresh")
		return nil, nil
	}

	var state fileState
	if err := json.Unmarshal(data, &state); err != nil {
		c.logger.WithError(fmt.Errorf("%w: %v", entity.ErrMalformedCache, err)).
			Warn("discarding unreadable local cache")
		return nil, nil
	}
	return state.Words, nil
}

// Save rewrites the full blob atomically via a temp file rename.
func (c *FileCache) Save(words []entity.DisplayWord) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(c.filePath), 0o755); err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}
	data, err := json.MarshalIndent(fileState{Words: words}, "", "  ")
	if err != nil {
		return fmt.Errorf("encode cache: %w", err)
	}

	tmpPath := c.filePath + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("write cache: %w", err)
	}
	return os.Rename(tmpPath, c.filePath)
}
