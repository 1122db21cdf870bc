package shared

import "fmt"

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig = fmt.Errorf("configuration not found")
	ErrInvalidConfig = fmt.Errorf("invalid configuration")
	ErrAuthNotReady  = fmt.Errorf("authentication configuration unavailable")

	// Authentication errors
	ErrAuthFailed       = fmt.Errorf("authentication failed")
	ErrNotAuthenticated = fmt.Errorf("not authenticated")
	ErrProviderDenied   = fmt.Errorf("authorization denied by provider")
	ErrExchangeFailed   = fmt.Errorf("credential exchange failed")

	// Capability key errors
	ErrKeyRequired  = fmt.Errorf("API key is required")
	ErrKeyFormat    = fmt.Errorf("invalid API key format")
	ErrKeyRejected  = fmt.Errorf("API key rejected")
	ErrKeyThrottled = fmt.Errorf("too many validation attempts")

	// API and service errors
	ErrAPIRequest         = fmt.Errorf("API request failed")
	ErrServiceUnavailable = fmt.Errorf("service unavailable")
	ErrNetwork            = fmt.Errorf("network error")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
)
