package tool

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestErrorsCarryCodeAndCause(t *testing.T) {
	root := errors.New("connection refused")

	tests := []struct {
		name string
		err  error
		code string
	}{
		{"invalid query", &InvalidQueryError{Message: "mixed modes", Cause: root}, CodeInvalidQuery},
		{"version resolution", &VersionResolutionError{ToolkitSlug: "github", Message: "no source", Cause: root}, CodeVersionResolution},
		{"argument validation", &ArgumentValidationError{ToolSlug: "X", Message: "missing field", Cause: root}, CodeArgumentValidation},
		{"connection timeout", &ConnectionTimeoutError{ConnectionID: "ca_1", Message: "60s elapsed", Cause: root}, CodeConnectionTimeout},
		{"session config", &InvalidSessionConfigError{Message: "enabled and disabled", Cause: root}, CodeInvalidSessionConfig},
		{"execution", &ExecutionError{ToolSlug: "X", Message: "backend 500", Cause: root}, CodeExecution},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !strings.HasPrefix(tt.err.Error(), tt.code) {
				t.Errorf("Error() = %q, want %q prefix", tt.err.Error(), tt.code)
			}
			if !errors.Is(tt.err, root) {
				t.Error("errors.Is() did not find wrapped cause")
			}
		})
	}
}

func TestExecutionErrorWrapsSameFamily(t *testing.T) {
	inner := &ArgumentValidationError{ToolSlug: "X", Message: "bad type"}
	outer := &ExecutionError{ToolSlug: "X", Message: "dispatch aborted", Cause: inner}
	wrapped := fmt.Errorf("call failed: %w", outer)

	var ave *ArgumentValidationError
	if !errors.As(wrapped, &ave) {
		t.Fatal("errors.As() did not find inner ArgumentValidationError through the chain")
	}
	if ave.ToolSlug != "X" {
		t.Errorf("inner ToolSlug = %q, want %q", ave.ToolSlug, "X")
	}
}
