package errors

import (
	"errors"
	"fmt"
	"os"
	"testing"
)

func TestError_Error(t *testing.T) {
	t.Parallel()
	cause := errors.New("no delimiter lines")

	tests := []struct {
		name     string
		err      *Error
		expected string
	}{
		{"message only", &Error{Message: "grading failed"}, "grading failed"},
		{"with subject", &Error{Subject: "week3.txt", Message: "empty"}, "week3.txt: empty"},
		{"with cause", &Error{Message: "upload failed", Cause: cause}, "upload failed: no delimiter lines"},
		{"spec", Spec("week3.txt", cause), "week3.txt: invalid test specification: no delimiter lines"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tt.err.Error(); got != tt.expected {
				t.Errorf("Error() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestError_Unwrap(t *testing.T) {
	t.Parallel()
	err := IO("subs", "cannot read submissions folder", os.ErrNotExist)
	if !errors.Is(err, os.ErrNotExist) {
		t.Error("errors.Is(IO(...), os.ErrNotExist) = false")
	}
	if got := (&Error{Message: "no cause"}).Unwrap(); got != nil {
		t.Errorf("Unwrap() = %v, want nil", got)
	}
}

func TestError_ExitCode(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		kind     ErrorKind
		expected int
	}{
		{"runtime", KindRuntime, ExitRuntimeError},
		{"config", KindConfig, ExitConfigError},
		{"spec", KindSpec, ExitConfigError},
		{"io", KindIO, ExitRuntimeError},
		{"not found", KindNotFound, ExitRuntimeError},
		{"environment", KindEnvironment, ExitEnvironmentError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := &Error{Kind: tt.kind}
			if got := err.ExitCode(); got != tt.expected {
				t.Errorf("ExitCode() = %d, want %d", got, tt.expected)
			}
		})
	}
}

func TestConstructors(t *testing.T) {
	t.Parallel()
	cause := errors.New("cause")

	tests := []struct {
		name    string
		err     *Error
		kind    ErrorKind
		message string
	}{
		{"New", New("boom"), KindRuntime, "boom"},
		{"Newf", Newf("error %d: %s", 42, "details"), KindRuntime, "error 42: details"},
		{"Config", Config("bad"), KindConfig, "bad"},
		{"Configf", Configf("field %q: %s", "prefix", "is required"), KindConfig, `field "prefix": is required`},
		{"Environment", Environment("python3 missing"), KindEnvironment, "python3 missing"},
		{"Environmentf", Environmentf("%s missing", "lua"), KindEnvironment, "lua missing"},
		{"Wrap", Wrap(cause, "wrapped"), KindRuntime, "wrapped"},
		{"WrapKind", WrapKind(KindIO, cause, "write"), KindIO, "write"},
		{"NotFound", NotFound("submission", "a.py"), KindNotFound, "submission not found: a.py"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if tt.err.Kind != tt.kind {
				t.Errorf("Kind = %v, want %v", tt.err.Kind, tt.kind)
			}
			if tt.err.Message != tt.message {
				t.Errorf("Message = %q, want %q", tt.err.Message, tt.message)
			}
		})
	}
}

func TestGetExitCode(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{"nil error", nil, ExitSuccess},
		{"runtime", New("runtime"), ExitRuntimeError},
		{"config", Config("config"), ExitConfigError},
		{"spec", Spec("s.txt", nil), ExitConfigError},
		{"wrapped by fmt", fmt.Errorf("context: %w", Environment("env")), ExitEnvironmentError},
		{"generic error", errors.New("generic"), ExitRuntimeError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := GetExitCode(tt.err); got != tt.expected {
				t.Errorf("GetExitCode() = %d, want %d", got, tt.expected)
			}
		})
	}
}

func TestExitCodeConstants(t *testing.T) {
	t.Parallel()
	if ExitSuccess != 0 || ExitRuntimeError != 1 || ExitConfigError != 2 || ExitEnvironmentError != 3 {
		t.Errorf("exit codes = %d %d %d %d, want 0 1 2 3", ExitSuccess, ExitRuntimeError, ExitConfigError, ExitEnvironmentError)
	}
}
