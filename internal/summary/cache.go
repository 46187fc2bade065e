package summary

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"

	jsoniter "github.com/json-iterator/go"
	"github.com/maxbolgarin/errm"
	"github.com/maxbolgarin/logze/v2"

	"github.com/maxbolgarin/taskry/internal/model"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// resultCache stores completed results as JSON files named by the hashed
// cache key. It is best effort, unreadable or corrupt entries read as a
// miss and write failures only log.
type resultCache struct {
	dir    string
	logger logze.Logger
}

func newResultCache(dir string, logger logze.Logger) (*resultCache, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, errm.Wrap(err, "failed to create cache directory")
	}
	return &resultCache{dir: dir, logger: logger}, nil
}

// Get returns the cached result for the key or nil
func (c *resultCache) Get(key string) *model.SummaryResult {
	data, err := os.ReadFile(c.path(key))
	if err != nil {
		return nil
	}

	var result model.SummaryResult
	if err := json.Unmarshal(data, &result); err != nil {
		c.logger.Warn("ignoring corrupt cache entry", "key", key)
		return nil
	}

	return &result
}

// Put stores a completed result
func (c *resultCache) Put(key string, result *model.SummaryResult) {
	data, err := json.Marshal(result)
	if err != nil {
		c.logger.Err(err, "failed to encode cache entry", "key", key)
		return
	}
	if err := os.WriteFile(c.path(key), data, 0644); err != nil {
		c.logger.Err(err, "failed to write cache entry", "key", key)
	}
}

func (c *resultCache) path(key string) string {
	sum := sha256.Sum256([]byte(key))
	return filepath.Join(c.dir, hex.EncodeToString(sum[:])[:fingerprintLen]+".json")
}
