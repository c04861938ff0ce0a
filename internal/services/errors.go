package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound marks a path with no regular file behind it.
	ErrNotFound = errors.New("not found")
	// ErrNotReadable marks a file that exists but cannot be opened for reading.
	ErrNotReadable = errors.New("not readable")
	// ErrNoData marks a probe that ran but printed nothing.
	ErrNoData = errors.New("no probe data")
	// ErrMalformedStream marks a stream line whose structure breaks an assumption
	// of the extraction rules. It never escapes the parser.
	ErrMalformedStream = errors.New("malformed stream")
	// ErrParseFailure marks a matched numeric token that failed to convert. It
	// never escapes the parser.
	ErrParseFailure = errors.New("parse failure")
	ErrExternalTool  = errors.New("external tool error")
	ErrTimeout       = errors.New("timeout")
	ErrConfiguration = errors.New("configuration error")
)

// Wrap builds an error message that includes component context while tagging
// it with the provided marker for later classification. The marker should be
// one of the exported sentinel errors above.
func Wrap(marker error, component, operation, message string, err error) error {
	detail := buildDetail(component, operation, message)
	if marker == nil {
		marker = ErrExternalTool
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// IsFileFailure reports whether err means the file could not be probed at all,
// as opposed to a field that is absent from otherwise valid output.
func IsFileFailure(err error) bool {
	switch {
	case err == nil:
		return false
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrNotReadable), errors.Is(err, ErrNoData):
		return true
	case errors.Is(err, ErrExternalTool), errors.Is(err, ErrTimeout):
		return true
	default:
		return false
	}
}

// Kind returns a short classification label for err, used in logs and CLI
// exit messages.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrNotReadable):
		return "not_readable"
	case errors.Is(err, ErrNoData):
		return "no_data"
	case errors.Is(err, ErrMalformedStream):
		return "malformed_stream"
	case errors.Is(err, ErrParseFailure):
		return "parse_failure"
	case errors.Is(err, ErrTimeout):
		return "timeout"
	case errors.Is(err, ErrConfiguration):
		return "configuration"
	default:
		return "external_tool"
	}
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
