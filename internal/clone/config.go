package clone

import (
	"time"

	"github.com/maxbolgarin/lang"
)

const (
	defaultCacheDir      = "./repos"
	defaultLockTimeout   = time.Minute
	defaultCloneTimeout  = 10 * time.Minute
	defaultGitLogTimeout = time.Minute

	// defaultGitLogMaxChars keeps history diffs small enough for a prompt
	defaultGitLogMaxChars = 50000
)

// Config contains clone cache settings
type Config struct {
	// CacheDir is the directory holding working clones
	CacheDir string `yaml:"cache_dir" env:"CLONE_CACHE_DIR"`

	// LockTimeout bounds waiting for the per repository lease
	LockTimeout time.Duration `yaml:"lock_timeout" env:"CLONE_LOCK_TIMEOUT"`

	// CloneTimeout bounds a single git clone or fetch run
	CloneTimeout time.Duration `yaml:"clone_timeout" env:"CLONE_TIMEOUT"`

	// GitLogTimeout bounds a single git log run
	GitLogTimeout time.Duration `yaml:"git_log_timeout" env:"CLONE_GIT_LOG_TIMEOUT"`

	// GitLogMaxChars caps git log output, the newest part is kept
	GitLogMaxChars int `yaml:"git_log_max_chars" env:"CLONE_GIT_LOG_MAX_CHARS"`
}

// PrepareAndValidate fills defaults
func (cfg *Config) PrepareAndValidate() error {
	cfg.CacheDir = lang.Check(cfg.CacheDir, defaultCacheDir)
	cfg.LockTimeout = lang.Check(cfg.LockTimeout, defaultLockTimeout)
	cfg.CloneTimeout = lang.Check(cfg.CloneTimeout, defaultCloneTimeout)
	cfg.GitLogTimeout = lang.Check(cfg.GitLogTimeout, defaultGitLogTimeout)
	cfg.GitLogMaxChars = lang.Check(cfg.GitLogMaxChars, defaultGitLogMaxChars)
	return nil
}
