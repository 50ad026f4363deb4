package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrProviderUnavailable marks embedding/LLM calls rejected by an open
	// circuit or a persistently failing provider. Components depending on
	// the provider degrade to their fail-open output.
	ErrProviderUnavailable = errors.New("provider unavailable")
	// ErrMalformedResponse marks an unparsable LLM payload. Treated the
	// same as ErrProviderUnavailable by callers.
	ErrMalformedResponse = errors.New("malformed upstream response")
	// ErrStorageQuery marks a failed store query; the owning bucket
	// degrades to empty.
	ErrStorageQuery = errors.New("storage query failed")
	// ErrCacheUnavailable marks a cache backend outage; always treated as
	// a miss, never fatal.
	ErrCacheUnavailable = errors.New("cache backend unavailable")
	// ErrTotalFailure is the only retrieval error surfaced to callers: no
	// strategy produced anything at all.
	ErrTotalFailure = errors.New("all retrieval strategies failed")
	ErrInvalidInput = errors.New("invalid input")
	ErrTemporary    = errors.New("temporary failure")
)

// WrapError preserves typed semantic errors with operation context.
func WrapError(kind error, operation string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", operation, kind, err)
}

func IsKind(err error, kind error) bool {
	return errors.Is(err, kind)
}
