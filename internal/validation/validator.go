// Package validation checks CLI inputs before they reach the crypto
// layers, so users get actionable messages instead of parser errors.
package validation

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/thresherlabs/thresher/pkg/formula"
)

var hexPattern = regexp.MustCompile(`^[0-9a-fA-F]+$`)

// ValidateHex checks that input is a non-empty even-length hex string.
func ValidateHex(input string) error {
	input = strings.TrimSpace(input)
	if len(input) == 0 {
		return fmt.Errorf("hex string cannot be empty")
	}
	if len(input)%2 != 0 {
		return fmt.Errorf("hex string must have even length")
	}
	if !hexPattern.MatchString(input) {
		return fmt.Errorf("invalid hex characters")
	}
	return nil
}

// ValidateFormula parses the access formula and reports the first
// problem found. Monotone formulas reject negations outright.
func ValidateFormula(input string, monotone bool) error {
	input = strings.TrimSpace(input)
	if input == "" {
		return fmt.Errorf("access formula cannot be empty")
	}
	if _, err := formula.Parse(input, monotone); err != nil {
		return fmt.Errorf("invalid access formula: %w", err)
	}
	return nil
}

// ValidatePartyName checks a name against the formula's reserved
// operator tokens and basic shape.
func ValidatePartyName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("party name cannot be empty")
	}
	for _, r := range name {
		if r == '&' || r == '|' || r == '~' || r == '!' || r == '(' || r == ')' || r == ' ' {
			return fmt.Errorf("party name %q contains operator characters", name)
		}
	}
	lower := strings.ToLower(name)
	if lower == "and" || lower == "or" || lower == "not" {
		return fmt.Errorf("party name %q is a reserved word", name)
	}
	return nil
}

// ValidateSplitParams checks plain t-of-n byte split parameters.
func ValidateSplitParams(parts, threshold int) error {
	if parts < 2 || parts > 255 {
		return fmt.Errorf("parts must be between 2 and 255 (got %d)", parts)
	}
	if threshold < 2 || threshold > parts {
		return fmt.Errorf("threshold must be between 2 and %d (got %d)", parts, threshold)
	}
	return nil
}

// ValidateThreshold checks field-based threshold parameters, where a
// threshold of 1 is legal.
func ValidateThreshold(parts, threshold int) error {
	if threshold < 1 {
		return fmt.Errorf("threshold must be at least 1 (got %d)", threshold)
	}
	if parts < threshold {
		return fmt.Errorf("parts (%d) cannot be below threshold (%d)", parts, threshold)
	}
	return nil
}

// ValidatePassphrase rejects passphrases the storage layer cannot
// handle.
func ValidatePassphrase(passphrase string, minLength int) error {
	if len(passphrase) < minLength {
		return fmt.Errorf("passphrase must be at least %d characters", minLength)
	}
	if len(passphrase) > 256 {
		return fmt.Errorf("passphrase too long (max 256 characters)")
	}
	for i, ch := range passphrase {
		if ch == 0 {
			return fmt.Errorf("passphrase contains null character at position %d", i)
		}
	}
	return nil
}

// SanitizeInput normalizes line endings and trims whitespace from
// pasted input.
func SanitizeInput(input string) string {
	input = strings.TrimSpace(input)
	input = strings.ReplaceAll(input, "\r\n", "\n")
	input = strings.ReplaceAll(input, "\r", "\n")

	lines := strings.Split(input, "\n")
	for i := range lines {
		lines[i] = strings.TrimSpace(lines[i])
	}
	return strings.Join(lines, "\n")
}
