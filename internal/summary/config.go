package summary

import (
	"time"

	"github.com/maxbolgarin/lang"
)

const (
	defaultWorkers       = 10
	defaultRetention     = time.Hour
	defaultEvictInterval = time.Minute
	defaultCacheDir      = "./summaries"

	// defaultLiveOutputMaxChars keeps the polled output tail small enough
	// for a UI while a long agent run streams
	defaultLiveOutputMaxChars = 80000
)

// Config contains job orchestration settings
type Config struct {
	// Workers bounds how many jobs run at once
	Workers int `yaml:"workers" env:"SUMMARY_WORKERS"`

	// Retention keeps finished jobs pollable before eviction
	Retention time.Duration `yaml:"retention" env:"SUMMARY_RETENTION"`

	// EvictInterval is how often the janitor scans for expired jobs
	EvictInterval time.Duration `yaml:"evict_interval" env:"SUMMARY_EVICT_INTERVAL"`

	// CacheDir stores completed results keyed by activity fingerprint
	CacheDir string `yaml:"cache_dir" env:"SUMMARY_CACHE_DIR"`

	// LiveOutputMaxChars caps the live output kept per job
	LiveOutputMaxChars int `yaml:"live_output_max_chars" env:"SUMMARY_LIVE_OUTPUT_MAX_CHARS"`
}

// PrepareAndValidate fills defaults
func (cfg *Config) PrepareAndValidate() error {
	cfg.Workers = lang.Check(cfg.Workers, defaultWorkers)
	cfg.Retention = lang.Check(cfg.Retention, defaultRetention)
	cfg.EvictInterval = lang.Check(cfg.EvictInterval, defaultEvictInterval)
	cfg.CacheDir = lang.Check(cfg.CacheDir, defaultCacheDir)
	cfg.LiveOutputMaxChars = lang.Check(cfg.LiveOutputMaxChars, defaultLiveOutputMaxChars)
	return nil
}
