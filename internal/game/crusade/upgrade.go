// Package crusade models crusade progression: experience and rank, the
// upgrades a unit has earned, and the derivation of upgraded weapon profiles.
package crusade

import (
	"errors"
	"fmt"

	"github.com/cory-johannsen/datasheet/internal/game/ability"
	"github.com/cory-johannsen/datasheet/internal/game/weapon"
)

// Change is a weapon field a weapon mod improves.
type Change string

const (
	ChangeAttacks  Change = "attacks"
	ChangeSkill    Change = "skill"
	ChangeStrength Change = "strength"
	ChangeAP       Change = "ap"
	ChangeDamage   Change = "damage"
	ChangePrecise  Change = "precise"
)

var changeLabels = map[Change]string{
	ChangeAttacks:  "Attacks",
	ChangeSkill:    "Skill",
	ChangeStrength: "Strength",
	ChangeAP:       "AP",
	ChangeDamage:   "Damage",
	ChangePrecise:  "Precise",
}

// Changes lists every Change in menu order.
func Changes() []Change {
	return []Change{ChangeAttacks, ChangeSkill, ChangeStrength, ChangeAP, ChangeDamage, ChangePrecise}
}

// String returns the menu label of the change.
func (c Change) String() string {
	if l, ok := changeLabels[c]; ok {
		return l
	}
	return string(c)
}

// WeaponMod is a named upgrade improving two fields of a target weapon.
//
// Invariant: ChangeOne != ChangeTwo for mods built by NewWeaponMod. The order
// of the two changes carries no meaning.
type WeaponMod struct {
	Name      string            `yaml:"name"`
	ChangeOne Change            `yaml:"change_one"`
	ChangeTwo Change            `yaml:"change_two"`
	Target    *weapon.Reference `yaml:"target,omitempty"`
}

// NewWeaponMod builds a WeaponMod.
//
// Precondition: one and two are distinct known changes.
// Postcondition: Returns the mod or a non-nil error.
func NewWeaponMod(name string, one, two Change, target *weapon.Reference) (WeaponMod, error) {
	m := WeaponMod{Name: name, ChangeOne: one, ChangeTwo: two}
	if target != nil {
		t := *target
		m.Target = &t
	}
	if err := m.Validate(); err != nil {
		return WeaponMod{}, err
	}
	return m, nil
}

// Changes reports whether the mod improves field c.
func (m WeaponMod) Changes(c Change) bool {
	return m.ChangeOne == c || m.ChangeTwo == c
}

// Equal reports whether m and o are the same upgrade: same name, same pair of
// changes in either order, and the same target position.
func (m WeaponMod) Equal(o WeaponMod) bool {
	if m.Name != o.Name {
		return false
	}
	samePair := (m.ChangeOne == o.ChangeOne && m.ChangeTwo == o.ChangeTwo) ||
		(m.ChangeOne == o.ChangeTwo && m.ChangeTwo == o.ChangeOne)
	if !samePair {
		return false
	}
	switch {
	case m.Target == nil || o.Target == nil:
		return m.Target == nil && o.Target == nil
	default:
		return m.Target.Equal(*o.Target)
	}
}

// Clone returns a copy of m that shares no memory with it.
func (m WeaponMod) Clone() WeaponMod {
	if m.Target != nil {
		t := *m.Target
		m.Target = &t
	}
	return m
}

// Validate checks that both changes are known and distinct.
func (m WeaponMod) Validate() error {
	var errs []error
	for _, c := range []Change{m.ChangeOne, m.ChangeTwo} {
		if _, ok := changeLabels[c]; !ok {
			errs = append(errs, fmt.Errorf("unknown change %q", c))
		}
	}
	if m.ChangeOne == m.ChangeTwo {
		errs = append(errs, fmt.Errorf("both changes are %q", m.ChangeOne))
	}
	if len(errs) > 0 {
		return fmt.Errorf("weapon mod %q: %w", m.Name, errors.Join(errs...))
	}
	return nil
}

// UpgradeKind names a crusade upgrade category.
type UpgradeKind string

const (
	UpgradeWeaponMod   UpgradeKind = "weapon_mod"
	UpgradeRelic       UpgradeKind = "relic"
	UpgradeBattleTrait UpgradeKind = "battle_trait"
	UpgradeEnhancement UpgradeKind = "enhancement"
	UpgradeBattleScar  UpgradeKind = "battle_scar"
)

var upgradeLabels = map[UpgradeKind]string{
	UpgradeWeaponMod:   "Weapon Mod",
	UpgradeRelic:       "Relic",
	UpgradeBattleTrait: "Battle Trait",
	UpgradeEnhancement: "Enhancement",
	UpgradeBattleScar:  "Battle Scar",
}

// Upgrade is one crusade upgrade. Weapon mods change weapon profiles; every
// other kind is an ability shown on the datasheet.
type Upgrade struct {
	Kind      UpgradeKind     `yaml:"kind"`
	WeaponMod WeaponMod       `yaml:"weapon_mod,omitempty"`
	Ability   ability.Ability `yaml:"ability,omitempty"`
}

// ModUpgrade wraps a weapon mod.
func ModUpgrade(m WeaponMod) Upgrade {
	return Upgrade{Kind: UpgradeWeaponMod, WeaponMod: m}
}

// AbilityUpgrade returns an ability upgrade of the given kind.
//
// Precondition: kind is not UpgradeWeaponMod.
func AbilityUpgrade(kind UpgradeKind, a ability.Ability) Upgrade {
	return Upgrade{Kind: kind, Ability: a}
}

// Mod returns the weapon mod of a weapon mod upgrade.
func (u Upgrade) Mod() (WeaponMod, bool) {
	if u.Kind != UpgradeWeaponMod {
		return WeaponMod{}, false
	}
	return u.WeaponMod, true
}

// DisplayAbility returns the ability of a non weapon mod upgrade.
func (u Upgrade) DisplayAbility() (ability.Ability, bool) {
	if u.Kind == UpgradeWeaponMod {
		return ability.Ability{}, false
	}
	return u.Ability, true
}

// Label returns the menu label of the upgrade kind.
func (u Upgrade) Label() string {
	if l, ok := upgradeLabels[u.Kind]; ok {
		return l
	}
	return string(u.Kind)
}

// Validate checks the kind and, for weapon mods, the mod itself.
func (u Upgrade) Validate() error {
	if _, ok := upgradeLabels[u.Kind]; !ok {
		return fmt.Errorf("unknown upgrade kind %q", u.Kind)
	}
	if m, ok := u.Mod(); ok {
		return m.Validate()
	}
	return nil
}

// UnitData is the crusade record of a unit.
//
// Invariant: after finalisation of a crusade unit, Rank == RankForExp(Exp).
type UnitData struct {
	Exp      int       `yaml:"exp"`
	Rank     Rank      `yaml:"rank"`
	Upgrades []Upgrade `yaml:"upgrades,omitempty"`
	Kills    int       `yaml:"kills"`
}

// Clone returns a deep copy of d.
func (d UnitData) Clone() UnitData {
	if d.Upgrades != nil {
		ups := make([]Upgrade, len(d.Upgrades))
		for i, u := range d.Upgrades {
			u.WeaponMod = u.WeaponMod.Clone()
			ups[i] = u
		}
		d.Upgrades = ups
	}
	return d
}

// Validate checks counters and every upgrade.
func (d UnitData) Validate() error {
	var errs []error
	if d.Exp < 0 {
		errs = append(errs, fmt.Errorf("exp must not be negative, got %d", d.Exp))
	}
	if d.Kills < 0 {
		errs = append(errs, fmt.Errorf("kills must not be negative, got %d", d.Kills))
	}
	for i, u := range d.Upgrades {
		if err := u.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("upgrade %d: %w", i, err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("crusade data: %w", errors.Join(errs...))
	}
	return nil
}

// Abilities returns the display abilities granted by non weapon mod upgrades, in order.
func (d UnitData) Abilities() []ability.Ability {
	var out []ability.Ability
	for _, u := range d.Upgrades {
		if a, ok := u.DisplayAbility(); ok {
			out = append(out, a)
		}
	}
	return out
}
