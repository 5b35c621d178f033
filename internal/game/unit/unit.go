// Package unit defines the datasheet aggregate, its crusade finalisation, and
// the edit and read views built on top of it.
package unit

import (
	"errors"
	"fmt"
	"slices"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/cory-johannsen/datasheet/internal/game/ability"
	"github.com/cory-johannsen/datasheet/internal/game/crusade"
	"github.com/cory-johannsen/datasheet/internal/game/weapon"
)

// aircraftMovement is shown instead of the movement stat of AIRCRAFT units.
const aircraftMovement = "20+"

// Stats is one stat line of a unit.
type Stats struct {
	Movement   int  `yaml:"movement"`
	Toughness  int  `yaml:"toughness"`
	Save       int  `yaml:"save"`
	Invuln     *int `yaml:"invuln,omitempty"`
	Wounds     int  `yaml:"wounds"`
	Leadership int  `yaml:"leadership"`
	OC         int  `yaml:"oc"`
}

// Clone returns a copy of s that shares no memory with it.
func (s Stats) Clone() Stats {
	if s.Invuln != nil {
		v := *s.Invuln
		s.Invuln = &v
	}
	return s
}

// Validate checks that every stat is non-negative and that an invulnerable
// save, when present, is a D6 roll.
func (s Stats) Validate() error {
	var errs []error
	for _, f := range []struct {
		name string
		v    int
	}{
		{"movement", s.Movement},
		{"toughness", s.Toughness},
		{"save", s.Save},
		{"wounds", s.Wounds},
		{"leadership", s.Leadership},
		{"oc", s.OC},
	} {
		if f.v < 0 {
			errs = append(errs, fmt.Errorf("%s must not be negative, got %d", f.name, f.v))
		}
	}
	if s.Invuln != nil && (*s.Invuln < 1 || *s.Invuln > 6) {
		errs = append(errs, fmt.Errorf("invuln must be in 1..6, got %d", *s.Invuln))
	}
	return errors.Join(errs...)
}

// NamedStats is an additional stat line for one model type of the unit.
type NamedStats struct {
	Name  string `yaml:"name"`
	Stats Stats  `yaml:"stats"`
}

// ExtraStatlines holds the stat lines of a unit with several model profiles.
type ExtraStatlines struct {
	Label string       `yaml:"label,omitempty"`
	Lines []NamedStats `yaml:"lines,omitempty"`
}

// Clone returns a deep copy of e.
func (e ExtraStatlines) Clone() ExtraStatlines {
	if e.Lines != nil {
		lines := make([]NamedStats, len(e.Lines))
		for i, l := range e.Lines {
			lines[i] = NamedStats{Name: l.Name, Stats: l.Stats.Clone()}
		}
		e.Lines = lines
	}
	return e
}

// CrusadeWeapons is the derived weapon cache of a crusade unit.
type CrusadeWeapons struct {
	Ranged []weapon.Entry `yaml:"ranged,omitempty"`
	Melee  []weapon.Entry `yaml:"melee,omitempty"`
}

// Unit is one datasheet.
//
// Invariant: after Finalize, CrusadeWeapons equals the derivation of
// RangedWeapons and MeleeWeapons under CrusadeData.Upgrades, and for a crusade
// unit CrusadeData.Rank == crusade.RankForExp(CrusadeData.Exp).
type Unit struct {
	Name           string         `yaml:"name"`
	Stats          Stats          `yaml:"stats"`
	ExtraStatlines ExtraStatlines `yaml:"extra_statlines,omitempty"`

	RangedWeapons []weapon.Entry `yaml:"ranged_weapons,omitempty"`
	MeleeWeapons  []weapon.Entry `yaml:"melee_weapons,omitempty"`

	FactionAbility  *string           `yaml:"faction_ability,omitempty"`
	CoreAbilities   []ability.Core    `yaml:"core_abilities,omitempty"`
	UniqueAbilities []ability.Ability `yaml:"unique_abilities,omitempty"`

	FactionKeyword string   `yaml:"faction_keyword"`
	Keywords       []string `yaml:"keywords,omitempty"`

	Damaged *int      `yaml:"damaged,omitempty"`
	Leader  *[]string `yaml:"leader,omitempty"`

	CrusadeUnit    bool             `yaml:"crusade_unit"`
	CrusadeData    crusade.UnitData `yaml:"crusade_data"`
	CrusadeWeapons CrusadeWeapons   `yaml:"crusade_weapons,omitempty"`
}

// New returns the default unit. Fields missing from a stored record keep
// these values when the record is decoded over it.
func New() Unit {
	return Unit{
		CoreAbilities: []ability.Core{ability.CoreOf(ability.CoreNone)},
	}
}

// Clone returns a deep copy of u.
func (u Unit) Clone() Unit {
	out := u
	out.Stats = u.Stats.Clone()
	out.ExtraStatlines = u.ExtraStatlines.Clone()
	out.RangedWeapons = weapon.CloneEntries(u.RangedWeapons)
	out.MeleeWeapons = weapon.CloneEntries(u.MeleeWeapons)
	if u.FactionAbility != nil {
		fa := *u.FactionAbility
		out.FactionAbility = &fa
	}
	out.CoreAbilities = slices.Clone(u.CoreAbilities)
	out.UniqueAbilities = slices.Clone(u.UniqueAbilities)
	out.Keywords = slices.Clone(u.Keywords)
	if u.Damaged != nil {
		d := *u.Damaged
		out.Damaged = &d
	}
	if u.Leader != nil {
		l := slices.Clone(*u.Leader)
		out.Leader = &l
	}
	out.CrusadeData = u.CrusadeData.Clone()
	out.CrusadeWeapons = CrusadeWeapons{
		Ranged: weapon.CloneEntries(u.CrusadeWeapons.Ranged),
		Melee:  weapon.CloneEntries(u.CrusadeWeapons.Melee),
	}
	return out
}

// Validate checks every part of the unit.
//
// Postcondition: returns nil iff all fields are valid; otherwise the error
// lists every violation.
func (u Unit) Validate() error {
	var errs []error
	if err := u.Stats.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("stats: %w", err))
	}
	for _, l := range u.ExtraStatlines.Lines {
		if err := l.Stats.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("stat line %q: %w", l.Name, err))
		}
	}
	for _, list := range [][]weapon.Entry{u.RangedWeapons, u.MeleeWeapons} {
		for _, e := range list {
			if err := e.Validate(); err != nil {
				errs = append(errs, err)
			}
		}
	}
	for _, c := range u.CoreAbilities {
		if err := c.Validate(); err != nil {
			errs = append(errs, err)
		}
	}
	if u.Damaged != nil && *u.Damaged < 0 {
		errs = append(errs, fmt.Errorf("damaged must not be negative, got %d", *u.Damaged))
	}
	if err := u.CrusadeData.Validate(); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return fmt.Errorf("unit %q: %w", u.Name, errors.Join(errs...))
	}
	return nil
}

// FinalizeCrusade derives the crusade weapon lists and rank of u.
//
// Precondition: u is canonical; its CrusadeWeapons cache is ignored.
// Postcondition: u is not modified. A unit that is not a crusade unit yields
// nil weapon lists and its stored rank. Calling twice on the same unit gives
// identical results.
func FinalizeCrusade(u *Unit) (ranged, melee []weapon.Entry, rank crusade.Rank) {
	if !u.CrusadeUnit {
		return nil, nil, u.CrusadeData.Rank
	}
	ranged, melee = crusade.DeriveWeapons(u.RangedWeapons, u.MeleeWeapons, u.CrusadeData.Upgrades)
	return ranged, melee, crusade.RankForExp(u.CrusadeData.Exp)
}

// Finalize replaces the derived crusade cache and rank of u with a fresh
// derivation from its canonical fields.
func (u *Unit) Finalize() {
	ranged, melee, rank := FinalizeCrusade(u)
	u.CrusadeWeapons = CrusadeWeapons{Ranged: ranged, Melee: melee}
	u.CrusadeData.Rank = rank
}

// HasKeyword reports whether u carries keyword, ignoring case.
func (u Unit) HasKeyword(keyword string) bool {
	upper := cases.Upper(language.Und)
	want := upper.String(keyword)
	return slices.ContainsFunc(u.Keywords, func(k string) bool { return upper.String(k) == want })
}

// Movement returns the movement stat as shown on the datasheet, without the
// inch mark. AIRCRAFT always shows "20+".
func (u Unit) Movement() string {
	return u.movementOf(u.Stats)
}

func (u Unit) movementOf(s Stats) string {
	if u.HasKeyword("AIRCRAFT") {
		return aircraftMovement
	}
	return fmt.Sprintf("%d", s.Movement)
}

// DisplayWeapons returns the weapon lists a reader sees: the derived crusade
// lists for a crusade unit, the canonical lists otherwise.
func (u Unit) DisplayWeapons() (ranged, melee []weapon.Entry) {
	if u.CrusadeUnit {
		return u.CrusadeWeapons.Ranged, u.CrusadeWeapons.Melee
	}
	return u.RangedWeapons, u.MeleeWeapons
}

// CrusadeAbilities returns the abilities granted by crusade upgrades, in
// upgrade order. Non-crusade units have none.
func (u Unit) CrusadeAbilities() []ability.Ability {
	if !u.CrusadeUnit {
		return nil
	}
	return u.CrusadeData.Abilities()
}

// WeaponReferences returns references to every canonical weapon, ranged first.
func (u Unit) WeaponReferences() []weapon.Reference {
	return append(weapon.References(u.RangedWeapons, true), weapon.References(u.MeleeWeapons, false)...)
}
