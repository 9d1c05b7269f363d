package shared

import "fmt"

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig      = fmt.Errorf("configuration not found")
	ErrInvalidConfig      = fmt.Errorf("invalid configuration")
	ErrMissingCredentials = fmt.Errorf("missing credentials")
	ErrInvalidCredentials = fmt.Errorf("invalid credentials")
	ErrNotConfigured      = fmt.Errorf("provider not configured on server")

	// Connection flow errors
	ErrBrowserLaunch    = fmt.Errorf("could not launch browser")
	ErrUserDenied       = fmt.Errorf("authorization declined")
	ErrAttemptInFlight  = fmt.Errorf("connection attempt already in progress")
	ErrTimeout          = fmt.Errorf("operation timed out")
	ErrAuthFailed       = fmt.Errorf("authentication failed")
	ErrNotAuthenticated = fmt.Errorf("not authenticated")
	ErrTokenExpired     = fmt.Errorf("access token expired")
	ErrStaleLoad        = fmt.Errorf("status load superseded by disconnect")
	ErrLoadInFlight     = fmt.Errorf("status load already in progress")

	// API and service errors
	ErrAPIRequest         = fmt.Errorf("API request failed")
	ErrServiceUnavailable = fmt.Errorf("service unavailable")
	ErrConnectionNotFound = fmt.Errorf("connection not found")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
	ErrInvalidFlag     = fmt.Errorf("invalid flag value")
	ErrUnknownPlatform = fmt.Errorf("unknown platform")
)
