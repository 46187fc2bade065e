package model

import "errors"

var (
	ErrUpstreamUnavailable  = errors.New("upstream provider unavailable")
	ErrRepositoryNotFound   = errors.New("repository not found")
	ErrRateLimited          = errors.New("rate limited by upstream provider")
	ErrCloneFailed          = errors.New("repository clone failed")
	ErrLockTimeout          = errors.New("timed out waiting for repository lease")
	ErrBackendUnavailable   = errors.New("generation backend unavailable")
	ErrBackendTimeout       = errors.New("generation backend timed out")
	ErrBackendProtocolError = errors.New("malformed generation backend response")
	ErrJobNotFound          = errors.New("job not found")
)
