package shared

import "fmt"

var (
	// Configuration errors
	ErrConfig        = fmt.Errorf("invalid configuration")
	ErrMissingConfig = fmt.Errorf("configuration not found")

	// Authentication errors
	ErrStateMismatch    = fmt.Errorf("state mismatch")
	ErrServerClosed     = fmt.Errorf("failed to serve code")
	ErrRedirectTimeout  = fmt.Errorf("timed out waiting for authorization redirect")
	ErrTokenExchange    = fmt.Errorf("failed to get access token")
	ErrMalformedToken   = fmt.Errorf("malformed token response")
	ErrCache            = fmt.Errorf("token cache unreadable")
	ErrNotAuthenticated = fmt.Errorf("not authenticated")
	ErrLockTimeout      = fmt.Errorf("timed out acquiring lock")

	// API and transport errors
	ErrNetwork            = fmt.Errorf("network error")
	ErrAPIRequest         = fmt.Errorf("API request failed")
	ErrServiceUnavailable = fmt.Errorf("service unavailable")
	ErrNoMatchingDevice   = fmt.Errorf("no matching device found")
	ErrNothingPlaying     = fmt.Errorf("nothing is playing")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
)
