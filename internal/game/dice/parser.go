package dice

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrInvalidValue is wrapped by every error returned from Parse.
var ErrInvalidValue = errors.New("dice: invalid value")

// Parse parses text into a Value.
// Supported forms: "5", "D6", "2D3", "D6+1", "3D6+2".
// The count defaults to 1 when omitted. Whitespace, lower-case "d", signs and
// any other die size are rejected.
//
// Postcondition: Returns a Value or an error wrapping ErrInvalidValue.
func Parse(text string) (Value, error) {
	if text == "" {
		return Value{}, fmt.Errorf("%w: empty expression", ErrInvalidValue)
	}

	dIdx := strings.IndexByte(text, 'D')
	if dIdx < 0 {
		n, err := number(text)
		if err != nil {
			return Value{}, fmt.Errorf("%w %q: %v", ErrInvalidValue, text, err)
		}
		return Set(n), nil
	}

	count := 1
	if countStr := text[:dIdx]; countStr != "" {
		var err error
		count, err = number(countStr)
		if err != nil {
			return Value{}, fmt.Errorf("%w %q: invalid die count: %v", ErrInvalidValue, text, err)
		}
	}

	sidesStr, bonusStr, hasBonus := strings.Cut(text[dIdx+1:], "+")

	var die Die
	switch sidesStr {
	case "3":
		die = D3
	case "6":
		die = D6
	default:
		return Value{}, fmt.Errorf("%w %q: die must be D3 or D6", ErrInvalidValue, text)
	}

	bonus := 0
	if hasBonus {
		var err error
		bonus, err = number(bonusStr)
		if err != nil {
			return Value{}, fmt.Errorf("%w %q: invalid bonus: %v", ErrInvalidValue, text, err)
		}
	}

	return Rolled(count, die, bonus), nil
}

// IsValid reports whether text is accepted by Parse. Edit layers use it to
// flag input without discarding the raw text.
func IsValid(text string) bool {
	_, err := Parse(text)
	return err == nil
}

// ParseOr parses text, returning fallback when text is not a valid value.
func ParseOr(text string, fallback Value) Value {
	v, err := Parse(text)
	if err != nil {
		return fallback
	}
	return v
}

// MustParse parses text and panics on error. Useful for fixtures.
//
// Precondition: text must be a valid value.
func MustParse(text string) Value {
	v, err := Parse(text)
	if err != nil {
		panic("dice: MustParse failed for " + text + ": " + err.Error())
	}
	return v
}

// number parses an unsigned decimal integer made only of ASCII digits.
func number(s string) (int, error) {
	if s == "" {
		return 0, errors.New("missing digits")
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return 0, fmt.Errorf("unexpected character %q", s[i])
		}
	}
	return strconv.Atoi(s)
}

// MarshalYAML stores a Value as its canonical text.
func (v Value) MarshalYAML() (any, error) {
	return v.String(), nil
}

// UnmarshalYAML reads a Value from a scalar in the Parse grammar.
func (v *Value) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("%w: line %d: expected a scalar", ErrInvalidValue, node.Line)
	}
	parsed, err := Parse(node.Value)
	if err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}
	*v = parsed
	return nil
}
