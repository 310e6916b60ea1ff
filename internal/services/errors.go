package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrConfiguration  = errors.New("configuration error")
	ErrUsage          = errors.New("usage error")
	ErrNotFound       = errors.New("not found")
	ErrValidation     = errors.New("data error")
	ErrPathRestricted = errors.New("path restricted")
	ErrTransfer       = errors.New("transfer failed")
	ErrExternalTool   = errors.New("external service error")
	ErrTimeout        = errors.New("timeout")
	ErrTransient      = errors.New("transient failure")
)

// Wrap builds an error message that includes component context while tagging it
// with the provided marker for later classification. The marker should be one of
// the exported sentinel errors above.
func Wrap(marker error, component, operation, message string, err error) error {
	detail := buildDetail(component, operation, message)
	if marker == nil {
		marker = ErrTransient
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// Category maps an error to the user-facing category reported in chat. Errors
// without a known marker are reported as transfer failures when they came from
// the transfer handoff and as external service errors otherwise.
func Category(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrConfiguration):
		return "configuration error"
	case errors.Is(err, ErrUsage):
		return "usage error"
	case errors.Is(err, ErrNotFound):
		return "not found"
	case errors.Is(err, ErrValidation):
		return "data error"
	case errors.Is(err, ErrPathRestricted):
		return "path restricted"
	case errors.Is(err, ErrTransfer):
		return "transfer failed"
	case errors.Is(err, ErrTimeout):
		return "timeout"
	default:
		return "external service error"
	}
}

// IsRetryable reports whether an integration failure is worth repeating.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrTimeout) || errors.Is(err, ErrTransient)
}

func buildDetail(component, operation, message string) string {
	parts := make([]string, 0, 3)
	if component = strings.TrimSpace(component); component != "" {
		parts = append(parts, component)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
