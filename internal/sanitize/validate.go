package sanitize

import (
	"fmt"
	"regexp"
	"strings"
)

// FieldRules configures ValidateField. A nil Pattern skips the pattern
// check; zero MaxLength means unlimited.
type FieldRules struct {
	Required  bool
	MinLength int
	MaxLength int
	Pattern   *regexp.Regexp
}

// FieldError describes the first rule a field failed.
type FieldError struct {
	Rule    string
	Message string
}

// Error implements the error interface for FieldError.
func (e *FieldError) Error() string {
	return e.Message
}

// ValidateField checks a single field value against the given rules,
// evaluated in fixed priority order: required, then minimum length, then
// maximum length, then pattern. Only the first failing rule is reported.
// An absent value passes silently when the field is not required.
func ValidateField(value string, rules FieldRules) error {
	if rules.Required && strings.TrimSpace(value) == "" {
		return &FieldError{Rule: "required", Message: "this field is required"}
	}

	// Remaining rules only apply to present values.
	if value == "" {
		return nil
	}

	if len(value) < rules.MinLength {
		return &FieldError{
			Rule:    "min_length",
			Message: fmt.Sprintf("minimum length is %d characters", rules.MinLength),
		}
	}

	if rules.MaxLength > 0 && len(value) > rules.MaxLength {
		return &FieldError{
			Rule:    "max_length",
			Message: fmt.Sprintf("maximum length is %d characters", rules.MaxLength),
		}
	}

	if rules.Pattern != nil && !rules.Pattern.MatchString(value) {
		return &FieldError{Rule: "pattern", Message: "invalid format"}
	}

	return nil
}
