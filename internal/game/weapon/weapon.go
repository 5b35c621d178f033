// Package weapon defines datasheet weapon profiles, their keywords, and the
// references that link weapons into charge level families.
package weapon

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/cory-johannsen/datasheet/internal/game/dice"
)

// Range is a weapon's range in inches. Melee is 0.
type Range int

// Melee is the range of a close combat weapon.
const Melee Range = 0

// IsMelee reports whether the range is Melee.
func (r Range) IsMelee() bool {
	return r == Melee
}

// String returns "Melee" or the range in inches, e.g. `24"`.
func (r Range) String() string {
	if r.IsMelee() {
		return "Melee"
	}
	return fmt.Sprintf("%d\"", int(r))
}

// Weapon is one weapon profile.
//
// AP is stored as a magnitude: a positive AP is subtracted from the target's
// save and renders as "-AP".
type Weapon struct {
	Name     string       `yaml:"name"`
	Range    Range        `yaml:"range"`
	Attacks  dice.Value   `yaml:"attacks"`
	Skill    int          `yaml:"skill"`
	Strength int          `yaml:"strength"`
	AP       int          `yaml:"ap"`
	Damage   dice.Value   `yaml:"damage"`
	Keywords []Ability    `yaml:"keywords,omitempty"`
	Charge   ChargeLevels `yaml:"charge,omitempty"`
}

// Entry is a weapon profile together with how many copies a unit carries.
type Entry struct {
	Weapon Weapon `yaml:"weapon"`
	Count  int    `yaml:"count"`
}

// Clone returns a deep copy of w.
func (w Weapon) Clone() Weapon {
	w.Keywords = slices.Clone(w.Keywords)
	return w
}

// HasKeyword reports whether w carries a keyword of the given kind.
func (w Weapon) HasKeyword(kind AbilityKind) bool {
	return slices.ContainsFunc(w.Keywords, func(a Ability) bool { return a.Kind == kind })
}

// Validate checks the stat line and keywords.
//
// Postcondition: returns nil iff all fields are valid.
func (w Weapon) Validate() error {
	var errs []error
	if w.Range < 0 {
		errs = append(errs, errors.New("range must not be negative"))
	}
	if w.Skill < 0 {
		errs = append(errs, errors.New("skill must not be negative"))
	}
	if w.Strength < 0 {
		errs = append(errs, errors.New("strength must not be negative"))
	}
	for _, k := range w.Keywords {
		if err := k.Validate(); err != nil {
			errs = append(errs, err)
		}
	}
	if err := w.Charge.Validate(); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return fmt.Errorf("weapon %q: %w", w.Name, errors.Join(errs...))
	}
	return nil
}

// Validate checks the weapon and its copy count.
func (e Entry) Validate() error {
	if e.Count < 0 {
		return fmt.Errorf("weapon %q: count must not be negative, got %d", e.Weapon.Name, e.Count)
	}
	return e.Weapon.Validate()
}

// CloneEntries returns a deep copy of entries. A nil slice stays nil.
func CloneEntries(entries []Entry) []Entry {
	if entries == nil {
		return nil
	}
	out := make([]Entry, len(entries))
	for i, e := range entries {
		out[i] = Entry{Weapon: e.Weapon.Clone(), Count: e.Count}
	}
	return out
}

// References returns a Reference for every entry, in list order.
func References(entries []Entry, ranged bool) []Reference {
	refs := make([]Reference, len(entries))
	for i, e := range entries {
		refs[i] = NewReference(e.Weapon.Name, ranged, i)
	}
	return refs
}

// Row is the printable form of a weapon profile.
type Row struct {
	Name     string
	Range    string
	Attacks  string
	Skill    string
	Strength int
	AP       string
	Damage   string
	Keywords string
	Count    int
}

// Row returns the printable stat line of w. TORRENT weapons show "N/A" for skill.
func (w Weapon) Row() Row {
	skill := fmt.Sprintf("%d+", w.Skill)
	if w.HasKeyword(KindTorrent) {
		skill = "N/A"
	}
	ap := fmt.Sprintf("%d", w.AP)
	if w.AP > 0 {
		ap = fmt.Sprintf("-%d", w.AP)
	}
	return Row{
		Name:     w.Name,
		Range:    w.Range.String(),
		Attacks:  w.Attacks.String(),
		Skill:    skill,
		Strength: w.Strength,
		AP:       ap,
		Damage:   w.Damage.String(),
		Keywords: w.FormatKeywords(),
	}
}

// Row returns the printable stat line of the entry's weapon with its count.
func (e Entry) Row() Row {
	r := e.Weapon.Row()
	r.Count = e.Count
	return r
}

// FormatKeywords renders keywords as "[A, B]", skipping NONE.
func (w Weapon) FormatKeywords() string {
	parts := make([]string, 0, len(w.Keywords))
	for _, k := range w.Keywords {
		if k.Kind == KindNone {
			continue
		}
		parts = append(parts, k.RenderString())
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
