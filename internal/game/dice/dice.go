// Package dice provides the variable stat value used by datasheets: either a
// fixed number or a dice expression such as "2D6+3".
package dice

import (
	"strconv"
)

// Die is the kind of die rolled by a Value. DieNone marks a fixed value.
type Die int

const (
	// DieNone marks a Value that is not rolled.
	DieNone Die = iota
	// D3 is a three-sided die.
	D3
	// D6 is a six-sided die.
	D6
)

// String returns the die symbol, "D3" or "D6". DieNone renders as "".
func (d Die) String() string {
	switch d {
	case D3:
		return "D3"
	case D6:
		return "D6"
	default:
		return ""
	}
}

// Value is either a set number or a rolled expression Count x Die + Bonus.
//
// Invariant: when Die == DieNone, Count is 0 and Bonus holds the set number.
// Value is comparable and is passed by value.
type Value struct {
	Count int // number of dice; only meaningful when Die != DieNone
	Die   Die
	Bonus int // flat bonus for a rolled value, or the number itself for a set value
}

// Set returns a fixed Value of n.
func Set(n int) Value {
	return Value{Bonus: n}
}

// Rolled returns a Value of count dice of the given kind plus bonus.
//
// Precondition: die is D3 or D6.
func Rolled(count int, die Die, bonus int) Value {
	return Value{Count: count, Die: die, Bonus: bonus}
}

// IsRolled reports whether the value involves a die roll.
func (v Value) IsRolled() bool {
	return v.Die != DieNone
}

// String returns the canonical text for v. The count is omitted when it is 1
// and the bonus is omitted when it is 0.
//
// Postcondition: Parse(v.String()) == v for every v with non-negative fields.
func (v Value) String() string {
	if !v.IsRolled() {
		return strconv.Itoa(v.Bonus)
	}
	text := ""
	if v.Count != 1 {
		text += strconv.Itoa(v.Count)
	}
	text += v.Die.String()
	if v.Bonus != 0 {
		text += "+" + strconv.Itoa(v.Bonus)
	}
	return text
}

// AddOne returns v raised by a flat +1: set values grow by one and rolled
// values gain one point of bonus.
func (v Value) AddOne() Value {
	v.Bonus++
	return v
}
