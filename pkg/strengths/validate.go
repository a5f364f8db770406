package strengths

import (
	"strings"
)

const (
	msgExactly   = "Please select exactly 5 strengths."
	msgAll       = "Please select all 5 strengths."
	msgDistinct  = "Please select 5 different strengths (no duplicates)."
	msgName      = "Please enter a name."
	invalidLabel = "Invalid strength(s): "
)

// ValidationError describes a selection the user has to correct.
type ValidationError struct {
	Message string
	// Invalid lists the entries that are not catalog themes, in input order.
	Invalid []string
}

func (e *ValidationError) Error() string { return e.Message }

// Validate checks a selection of strengths. Checks run in order and the
// first failing one is reported.
func Validate(selected []string) error {
	if len(selected) != Size {
		return &ValidationError{Message: msgExactly}
	}
	for _, s := range selected {
		if unfilled(s) {
			return &ValidationError{Message: msgAll}
		}
	}

	seen := make(map[string]struct{}, len(selected))
	for _, s := range selected {
		if _, ok := seen[s]; ok {
			return &ValidationError{Message: msgDistinct}
		}
		seen[s] = struct{}{}
	}

	var invalid []string
	for _, s := range selected {
		if !Contains(s) {
			invalid = append(invalid, s)
		}
	}
	if len(invalid) > 0 {
		return &ValidationError{
			Message: invalidLabel + strings.Join(invalid, ", "),
			Invalid: invalid,
		}
	}

	return nil
}

// ValidateName checks that a person's name is present.
func ValidateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return &ValidationError{Message: msgName}
	}
	return nil
}
