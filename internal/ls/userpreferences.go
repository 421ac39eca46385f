package ls

import (
	"fmt"

	"github.com/dlclark/regexp2"
)

// DefaultWordPattern matches identifiers and numbers.
const DefaultWordPattern = `[A-Za-z0-9_$]+`

type UserPreferences struct {
	// An ECMAScript regular expression describing a word for hover.
	//
	// Default: DefaultWordPattern
	WordPattern string
}

func (p *UserPreferences) compileWordPattern() (*regexp2.Regexp, error) {
	pattern := DefaultWordPattern
	if p != nil && p.WordPattern != "" {
		pattern = p.WordPattern
	}
	re, err := regexp2.Compile(pattern, regexp2.ECMAScript)
	if err != nil {
		return nil, fmt.Errorf("invalid word pattern %q: %w", pattern, err)
	}
	return re, nil
}

// ValidateWordPattern reports whether pattern compiles as an ECMAScript regular expression.
func ValidateWordPattern(pattern string) error {
	_, err := (&UserPreferences{WordPattern: pattern}).compileWordPattern()
	return err
}
