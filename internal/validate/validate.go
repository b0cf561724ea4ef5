package validate

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// FormatError reports a model output that violates its structural contract.
// The stage loop feeds Reason back to the model as a correction.
type FormatError struct {
	Artifact string
	Reason   string
}

func (e *FormatError) Error() string {
	return e.Artifact + ": " + e.Reason
}

// IsFormatError reports whether err is (or wraps) a *FormatError.
func IsFormatError(err error) bool {
	var fe *FormatError
	return errors.As(err, &fe)
}

func formatErr(artifact, format string, args ...any) *FormatError {
	return &FormatError{Artifact: artifact, Reason: fmt.Sprintf(format, args...)}
}

// Validator checks one model output.
type Validator func(text string) error

var findingIDRe = regexp.MustCompile(`(?m)^###\s+([A-Z0-9]+-\d{2})\b`)

// FindingIDs returns every finding ID that opens a "### " header, in order.
func FindingIDs(text string) []string {
	var ids []string
	for _, m := range findingIDRe.FindAllStringSubmatch(text, -1) {
		ids = append(ids, m[1])
	}
	return ids
}

func requireAll(artifact, text string, needles ...string) error {
	for _, n := range needles {
		if !strings.Contains(text, n) {
			return formatErr(artifact, "missing required section: %s", n)
		}
	}
	return nil
}

func requireAny(artifact, text string, needles ...string) error {
	for _, n := range needles {
		if strings.Contains(text, n) {
			return nil
		}
	}
	return formatErr(artifact, "missing required section (one of): %s", strings.Join(needles, ", "))
}
