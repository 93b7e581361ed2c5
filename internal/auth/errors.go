package auth

import (
	"fmt"

	"github.com/desertthunder/sptty/internal/shared"
)

// TokenExchangeError is returned when the token endpoint answers with a non-2xx status.
//
// Body is the response text exactly as received.
type TokenExchangeError struct {
	StatusCode int
	Body       string
}

func (e *TokenExchangeError) Error() string {
	return fmt.Sprintf("%v: status %d: %s", shared.ErrTokenExchange, e.StatusCode, e.Body)
}

func (e *TokenExchangeError) Unwrap() error {
	return shared.ErrTokenExchange
}

// CacheError reports a token cache file that could not be read, parsed or written.
type CacheError struct {
	Path string
	Err  error
}

func (e *CacheError) Error() string {
	return fmt.Sprintf("%v: %s: %v", shared.ErrCache, e.Path, e.Err)
}

func (e *CacheError) Unwrap() []error {
	return []error{shared.ErrCache, e.Err}
}
