package tool

import "fmt"

// Machine-readable error codes carried by the typed errors below.
const (
	CodeInvalidQuery         = "INVALID_QUERY"
	CodeVersionResolution    = "VERSION_RESOLUTION_FAILED"
	CodeArgumentValidation   = "ARGUMENT_VALIDATION_FAILED"
	CodeConnectionTimeout    = "CONNECTION_TIMEOUT"
	CodeInvalidSessionConfig = "INVALID_SESSION_CONFIG"
	CodeExecution            = "EXECUTION_FAILED"
)

// InvalidQueryError reports a malformed tool query, e.g. mixing selection
// modes or scope-filtering across multiple toolkits.
type InvalidQueryError struct {
	Message string
	Cause   error
}

func (e *InvalidQueryError) Error() string { return errString(CodeInvalidQuery, e.Message, e.Cause) }

// Unwrap returns the wrapped cause, if any.
func (e *InvalidQueryError) Unwrap() error { return e.Cause }

// Code returns the machine-readable error code.
func (*InvalidQueryError) Code() string { return CodeInvalidQuery }

// VersionResolutionError reports that no version source yielded a version for
// a toolkit and no latest sentinel was configured.
type VersionResolutionError struct {
	ToolkitSlug string
	Message     string
	Cause       error
}

func (e *VersionResolutionError) Error() string {
	return errString(CodeVersionResolution, e.Message, e.Cause)
}

// Unwrap returns the wrapped cause, if any.
func (e *VersionResolutionError) Unwrap() error { return e.Cause }

// Code returns the machine-readable error code.
func (*VersionResolutionError) Code() string { return CodeVersionResolution }

// ArgumentValidationError reports arguments that failed schema validation.
// Validation failures are raised before any network call.
type ArgumentValidationError struct {
	ToolSlug string
	Message  string
	Cause    error
}

func (e *ArgumentValidationError) Error() string {
	return errString(CodeArgumentValidation, e.Message, e.Cause)
}

// Unwrap returns the wrapped cause, if any.
func (e *ArgumentValidationError) Unwrap() error { return e.Cause }

// Code returns the machine-readable error code.
func (*ArgumentValidationError) Code() string { return CodeArgumentValidation }

// ConnectionTimeoutError reports that a connection did not reach a terminal
// status within the wait window. The underlying remote attempt is not
// cancelled; the account may still become ACTIVE later.
type ConnectionTimeoutError struct {
	ConnectionID string
	Message      string
	Cause        error
}

func (e *ConnectionTimeoutError) Error() string {
	return errString(CodeConnectionTimeout, e.Message, e.Cause)
}

// Unwrap returns the wrapped cause, if any.
func (e *ConnectionTimeoutError) Unwrap() error { return e.Cause }

// Code returns the machine-readable error code.
func (*ConnectionTimeoutError) Code() string { return CodeConnectionTimeout }

// InvalidSessionConfigError reports an ambiguous or contradictory tool router
// session configuration.
type InvalidSessionConfigError struct {
	Message string
	Cause   error
}

func (e *InvalidSessionConfigError) Error() string {
	return errString(CodeInvalidSessionConfig, e.Message, e.Cause)
}

// Unwrap returns the wrapped cause, if any.
func (e *InvalidSessionConfigError) Unwrap() error { return e.Cause }

// Code returns the machine-readable error code.
func (*InvalidSessionConfigError) Code() string { return CodeInvalidSessionConfig }

// ExecutionError wraps any backend or custom-tool failure raised during
// dispatch, including file parameter conversion failures.
type ExecutionError struct {
	ToolSlug string
	Message  string
	Cause    error
}

func (e *ExecutionError) Error() string { return errString(CodeExecution, e.Message, e.Cause) }

// Unwrap returns the wrapped cause, if any.
func (e *ExecutionError) Unwrap() error { return e.Cause }

// Code returns the machine-readable error code.
func (*ExecutionError) Code() string { return CodeExecution }

func errString(code, msg string, cause error) string {
	if cause != nil {
		return fmt.Sprintf("%s: %s: %v", code, msg, cause)
	}
	return fmt.Sprintf("%s: %s", code, msg)
}
