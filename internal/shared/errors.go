package shared

import "fmt"

var (
	// Configuration errors
	ErrMissingConfig = fmt.Errorf("configuration not found")
	ErrInvalidConfig = fmt.Errorf("invalid configuration")

	// Authentication errors
	ErrAuth           = fmt.Errorf("authentication failed")
	ErrRefreshFailed  = fmt.Errorf("token refresh failed")
	ErrNoRefreshToken = fmt.Errorf("no refresh token available")

	// Remote service errors
	ErrTransient = fmt.Errorf("transient remote error")
	ErrTimeout   = fmt.Errorf("operation timed out")
	ErrRateLimit = fmt.Errorf("rate limited by remote service")

	// Storage errors. ErrStorage is fatal for the current operation and must
	// not be retried; ErrNotFound and ErrConstraint are rejected synchronously.
	ErrStorage    = fmt.Errorf("storage failure")
	ErrNotFound   = fmt.Errorf("not found")
	ErrConstraint = fmt.Errorf("constraint violation")

	// Input validation errors
	ErrInvalidInput = fmt.Errorf("invalid input")

	// Scheduler errors
	ErrAborted = fmt.Errorf("task aborted")
)
