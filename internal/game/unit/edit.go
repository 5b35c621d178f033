package unit

import (
	"fmt"
	"slices"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/cory-johannsen/datasheet/internal/game/ability"
	"github.com/cory-johannsen/datasheet/internal/game/crusade"
	"github.com/cory-johannsen/datasheet/internal/game/dice"
	"github.com/cory-johannsen/datasheet/internal/game/weapon"
)

const (
	defaultInvuln  = 4
	defaultDamaged = 4
)

// StatsEdit is the editable form of Stats. The invulnerable save is an
// (enabled, value) pair so toggling it off keeps the last value.
type StatsEdit struct {
	Movement   int
	Toughness  int
	Save       int
	HasInvuln  bool
	Invuln     int
	Wounds     int
	Leadership int
	OC         int
}

// NewStatsEdit returns the edit form of s. A missing invulnerable save edits as 4.
func NewStatsEdit(s Stats) StatsEdit {
	e := StatsEdit{
		Movement:   s.Movement,
		Toughness:  s.Toughness,
		Save:       s.Save,
		Invuln:     defaultInvuln,
		Wounds:     s.Wounds,
		Leadership: s.Leadership,
		OC:         s.OC,
	}
	if s.Invuln != nil {
		e.HasInvuln = true
		e.Invuln = *s.Invuln
	}
	return e
}

// Stats converts e back to canonical form.
func (e StatsEdit) Stats() Stats {
	s := Stats{
		Movement:   e.Movement,
		Toughness:  e.Toughness,
		Save:       e.Save,
		Wounds:     e.Wounds,
		Leadership: e.Leadership,
		OC:         e.OC,
	}
	if e.HasInvuln {
		v := e.Invuln
		s.Invuln = &v
	}
	return s
}

// NamedStatsEdit is the editable form of NamedStats.
type NamedStatsEdit struct {
	Name  string
	Stats StatsEdit
}

// WeaponEdit is the editable form of a weapon. Attacks and Damage hold the
// text the user typed; AP holds the magnitude shown to the user.
type WeaponEdit struct {
	Name      string
	Range     int
	Attacks   string
	Skill     int
	Strength  int
	AP        int
	Damage    string
	Keywords  []weapon.Ability
	HasLevels bool
	Parent    *weapon.Reference
	Level     string
}

// DefaultWeaponEdit returns the form of a newly added weapon.
func DefaultWeaponEdit() WeaponEdit {
	return WeaponEdit{
		Range:    1,
		Attacks:  "1",
		Skill:    1,
		Strength: 1,
		Damage:   "1",
	}
}

// NewWeaponEdit returns the edit form of w.
func NewWeaponEdit(w weapon.Weapon) WeaponEdit {
	hasLevels, parent, level := w.Charge.ToEdit()
	return WeaponEdit{
		Name:      w.Name,
		Range:     int(w.Range),
		Attacks:   w.Attacks.String(),
		Skill:     w.Skill,
		Strength:  w.Strength,
		AP:        max(w.AP, -w.AP),
		Damage:    w.Damage.String(),
		Keywords:  editKeywords(w.Keywords),
		HasLevels: hasLevels,
		Parent:    parent,
		Level:     level,
	}
}

func editKeywords(keywords []weapon.Ability) []weapon.Ability {
	if keywords == nil {
		return nil
	}
	out := make([]weapon.Ability, len(keywords))
	for i, k := range keywords {
		out[i] = k.WithRaw()
	}
	return out
}

// Weapon converts e to canonical form. Attacks and Damage that do not parse
// become 0; valued keywords whose text does not parse become 1.
func (e WeaponEdit) Weapon() weapon.Weapon {
	var keywords []weapon.Ability
	if e.Keywords != nil {
		keywords = make([]weapon.Ability, len(e.Keywords))
		for i, k := range e.Keywords {
			keywords[i] = k.Resync()
		}
	}
	return weapon.Weapon{
		Name:     e.Name,
		Range:    weapon.Range(max(e.Range, 0)),
		Attacks:  dice.ParseOr(e.Attacks, dice.Set(0)),
		Skill:    e.Skill,
		Strength: e.Strength,
		AP:       e.AP,
		Damage:   dice.ParseOr(e.Damage, dice.Set(0)),
		Keywords: keywords,
		Charge:   weapon.ChargeFromEdit(e.HasLevels, e.Parent, e.Level),
	}
}

// InvalidFields names the text fields of e that do not currently parse.
func (e WeaponEdit) InvalidFields() []string {
	var bad []string
	if !dice.IsValid(e.Attacks) {
		bad = append(bad, "attacks")
	}
	if !dice.IsValid(e.Damage) {
		bad = append(bad, "damage")
	}
	for i, k := range e.Keywords {
		if !k.RawValid() {
			bad = append(bad, fmt.Sprintf("keyword %d (%s)", i, k.Label()))
		}
	}
	return bad
}

// WeaponEditEntry is an edited weapon with its copy count.
type WeaponEditEntry struct {
	Weapon WeaponEdit
	Count  int
}

// Edit is the mutable form of a Unit held by an editor. Optional fields are
// (enabled, value) pairs so a toggle keeps the value the user entered.
type Edit struct {
	Name string

	Stats      StatsEdit
	ExtraLabel string
	ExtraStats []NamedStatsEdit

	RangedWeapons []WeaponEditEntry
	MeleeWeapons  []WeaponEditEntry

	HasFactionAbility bool
	FactionAbility    string
	CoreAbilities     []ability.Core
	UniqueAbilities   []ability.Ability

	FactionKeyword string
	Keywords       []string

	HasDamaged bool
	Damaged    int

	IsLeader bool
	Leader   []string

	Crusader    bool
	CrusadeData crusade.UnitData
}

func editEntries(entries []weapon.Entry) []WeaponEditEntry {
	out := make([]WeaponEditEntry, len(entries))
	for i, e := range entries {
		out[i] = WeaponEditEntry{Weapon: NewWeaponEdit(e.Weapon), Count: e.Count}
	}
	return out
}

func canonicalEntries(entries []WeaponEditEntry) []weapon.Entry {
	if len(entries) == 0 {
		return nil
	}
	out := make([]weapon.Entry, len(entries))
	for i, e := range entries {
		out[i] = weapon.Entry{Weapon: e.Weapon.Weapon(), Count: e.Count}
	}
	return out
}

// NewEdit returns the edit form of u. The derived crusade weapon cache is not
// carried over.
//
// Precondition: u is non-nil.
func NewEdit(u *Unit) Edit {
	e := Edit{
		Name:            u.Name,
		Stats:           NewStatsEdit(u.Stats),
		ExtraLabel:      u.ExtraStatlines.Label,
		RangedWeapons:   editEntries(u.RangedWeapons),
		MeleeWeapons:    editEntries(u.MeleeWeapons),
		UniqueAbilities: slices.Clone(u.UniqueAbilities),
		FactionKeyword:  u.FactionKeyword,
		Keywords:        slices.Clone(u.Keywords),
		Damaged:         defaultDamaged,
		Crusader:        u.CrusadeUnit,
		CrusadeData:     u.CrusadeData.Clone(),
	}
	for _, c := range u.CoreAbilities {
		e.CoreAbilities = append(e.CoreAbilities, c.WithRaw())
	}
	for _, l := range u.ExtraStatlines.Lines {
		e.ExtraStats = append(e.ExtraStats, NamedStatsEdit{Name: l.Name, Stats: NewStatsEdit(l.Stats)})
	}
	if u.FactionAbility != nil {
		e.HasFactionAbility = true
		e.FactionAbility = *u.FactionAbility
	}
	if u.Damaged != nil {
		e.HasDamaged = true
		e.Damaged = *u.Damaged
	}
	if u.Leader != nil {
		e.IsLeader = true
		e.Leader = slices.Clone(*u.Leader)
	}
	return e
}

// SanitizeKeywords drops blank keywords and upper-cases the rest.
func SanitizeKeywords(keywords []string) []string {
	upper := cases.Upper(language.Und)
	var out []string
	for _, k := range keywords {
		k = strings.TrimSpace(k)
		if k == "" {
			continue
		}
		out = append(out, upper.String(k))
	}
	return out
}

// Unit converts e to a canonical, finalised Unit. Text that does not parse
// falls back to a safe default instead of failing.
//
// Postcondition: the returned unit's crusade cache and rank are freshly derived.
func (e Edit) Unit() Unit {
	u := New()
	u.Name = e.Name
	u.Stats = e.Stats.Stats()
	u.ExtraStatlines.Label = e.ExtraLabel
	for _, l := range e.ExtraStats {
		u.ExtraStatlines.Lines = append(u.ExtraStatlines.Lines, NamedStats{Name: l.Name, Stats: l.Stats.Stats()})
	}
	u.RangedWeapons = canonicalEntries(e.RangedWeapons)
	u.MeleeWeapons = canonicalEntries(e.MeleeWeapons)
	if e.HasFactionAbility {
		fa := e.FactionAbility
		u.FactionAbility = &fa
	}
	u.CoreAbilities = nil
	for _, c := range e.CoreAbilities {
		u.CoreAbilities = append(u.CoreAbilities, c.Resync())
	}
	u.UniqueAbilities = slices.Clone(e.UniqueAbilities)
	u.FactionKeyword = e.FactionKeyword
	u.Keywords = SanitizeKeywords(e.Keywords)
	if e.HasDamaged {
		d := e.Damaged
		u.Damaged = &d
	}
	if e.IsLeader {
		l := slices.Clone(e.Leader)
		u.Leader = &l
	}
	u.CrusadeUnit = e.Crusader
	u.CrusadeData = e.CrusadeData.Clone()
	u.Finalize()
	return u
}

// InvalidFields names every text field of e that does not currently parse.
// The fields are left as typed.
func (e Edit) InvalidFields() []string {
	var bad []string
	for _, list := range []struct {
		label   string
		entries []WeaponEditEntry
	}{
		{"ranged", e.RangedWeapons},
		{"melee", e.MeleeWeapons},
	} {
		for i, w := range list.entries {
			for _, f := range w.Weapon.InvalidFields() {
				bad = append(bad, fmt.Sprintf("%s weapon %d %s", list.label, i, f))
			}
		}
	}
	for i, c := range e.CoreAbilities {
		if !c.RawValid() {
			bad = append(bad, fmt.Sprintf("core ability %d (%s)", i, c.Label()))
		}
	}
	return bad
}

// WeaponReferences returns references to every edited weapon, ranged first.
// Editors offer these as charge level parents and weapon mod targets.
func (e Edit) WeaponReferences() []weapon.Reference {
	refs := make([]weapon.Reference, 0, len(e.RangedWeapons)+len(e.MeleeWeapons))
	for i, w := range e.RangedWeapons {
		refs = append(refs, weapon.NewReference(w.Weapon.Name, true, i))
	}
	for i, w := range e.MeleeWeapons {
		refs = append(refs, weapon.NewReference(w.Weapon.Name, false, i))
	}
	return refs
}
