package crusade

import (
	"slices"

	"github.com/cory-johannsen/datasheet/internal/game/weapon"
)

// bestSkill is the lowest skill value a Skill change can reach.
const bestSkill = 2

// Group is a weapon mod applied Count times.
type Group struct {
	Count int
	Mod   WeaponMod
}

// GroupWeaponMods collects the targeted weapon mods of upgrades, merging
// repeats of the same mod (see WeaponMod.Equal) into one Group.
//
// Postcondition: groups appear in order of first occurrence; untargeted mods
// and ability upgrades are dropped; the sum of Count equals the number of
// targeted weapon mods in upgrades.
func GroupWeaponMods(upgrades []Upgrade) []Group {
	var groups []Group
	for _, u := range upgrades {
		m, ok := u.Mod()
		if !ok || m.Target == nil {
			continue
		}
		if i := slices.IndexFunc(groups, func(g Group) bool { return g.Mod.Equal(m) }); i >= 0 {
			groups[i].Count++
			continue
		}
		groups = append(groups, Group{Count: 1, Mod: m.Clone()})
	}
	return groups
}

// slot is one weapon entry with its position in the unit.
type slot struct {
	ranged bool
	index  int
	entry  weapon.Entry
}

func indexWeapons(ranged, melee []weapon.Entry) []slot {
	slots := make([]slot, 0, len(ranged)+len(melee))
	for i, e := range ranged {
		slots = append(slots, slot{ranged: true, index: i, entry: e})
	}
	for i, e := range melee {
		slots = append(slots, slot{ranged: false, index: i, entry: e})
	}
	return slots
}

// targets reports whether m applies to s: directly by position, or through
// the parent reference of a charge level child.
func (m WeaponMod) targets(s slot) bool {
	if m.Target == nil {
		return false
	}
	if m.Target.IsID(s.ranged, s.index) {
		return true
	}
	parent, ok := s.entry.Weapon.Charge.ParentRef()
	return ok && parent.Equal(*m.Target)
}

// renameKey identifies the copies of a parent weapon produced by one group.
type renameKey struct {
	parent weapon.RefKey
	group  int
}

// renames holds the new names of charge level parent copies. byGroup is keyed
// by the group that renamed the copies; consumed names, for each parent with no
// copies left under its old name, the copy made by the first group that took it.
type renames struct {
	byGroup  map[renameKey]string
	consumed map[weapon.RefKey]string
}

// allocate walks groups over one slot, calling apply for every group that
// takes copies of it, with the number of copies taken.
//
// Postcondition: returns the copies left untouched.
func allocate(s slot, groups []Group, apply func(gi int, n int)) int {
	remaining := s.entry.Count
	for gi, g := range groups {
		if remaining <= 0 {
			break
		}
		if !g.Mod.targets(s) {
			continue
		}
		n := min(remaining, g.Count)
		apply(gi, n)
		remaining -= n
	}
	return max(remaining, 0)
}

// parentRenames records the new name of every charge level parent copy
// produced by a group. It runs over all weapons before any output is built,
// so a child sees its parent's rename wherever the two sit in the lists.
func parentRenames(slots []slot, groups []Group) renames {
	r := renames{
		byGroup:  make(map[renameKey]string),
		consumed: make(map[weapon.RefKey]string),
	}
	for _, s := range slots {
		if s.entry.Weapon.Charge.Kind != weapon.ChargeParent {
			continue
		}
		key := weapon.RefKey{Ranged: s.ranged, ID: s.index}
		first := -1
		remaining := allocate(s, groups, func(gi, _ int) {
			r.byGroup[renameKey{parent: key, group: gi}] = groups[gi].Mod.Name
			if first < 0 {
				first = gi
			}
		})
		if remaining == 0 && first >= 0 {
			r.consumed[key] = groups[first].Mod.Name
		}
	}
	return r
}

// relink points a child copy at the copy of its parent renamed by the same
// group. Without one, a child whose parent kept no copies under its old name
// points at the parent's first renamed copy. group is -1 for copies no group
// took. Positions are kept; only the display name changes.
func (r renames) relink(c weapon.ChargeLevels, group int) weapon.ChargeLevels {
	parent, ok := c.ParentRef()
	if !ok {
		return c
	}
	name, ok := r.byGroup[renameKey{parent: parent.Key(), group: group}]
	if !ok {
		name, ok = r.consumed[parent.Key()]
	}
	if !ok {
		return c
	}
	return weapon.ChildLevel(weapon.NewReference(name, parent.Ranged, parent.ID), c.Level)
}

// Apply returns w with m applied: renamed to the mod name and each changed
// field improved once. w is not modified.
func Apply(w weapon.Weapon, m WeaponMod) weapon.Weapon {
	out := w.Clone()
	out.Name = m.Name
	if m.Changes(ChangeAttacks) {
		out.Attacks = out.Attacks.AddOne()
	}
	if m.Changes(ChangeSkill) && out.Skill > bestSkill {
		out.Skill--
	}
	if m.Changes(ChangeStrength) {
		out.Strength++
	}
	if m.Changes(ChangeAP) {
		if out.AP <= 0 {
			out.AP--
		} else {
			out.AP++
		}
	}
	if m.Changes(ChangeDamage) {
		out.Damage = out.Damage.AddOne()
	}
	if m.Changes(ChangePrecise) {
		out.Keywords = append(out.Keywords, weapon.Keyword(weapon.KindPrecise))
	}
	return out
}

// DeriveWeapons applies the weapon mods in upgrades to the ranged and melee
// weapons of a unit and returns the resulting crusade weapon lists.
//
// Each group takes up to Count copies of every weapon it targets, in upgrade
// order, producing one upgraded entry per group; copies no group took follow
// unchanged. Output stays in the category of its source weapon. Mods whose
// target no longer exists have no effect.
//
// Precondition: none; inputs are only read.
// Postcondition: for every source entry, the counts of its output entries sum
// to its Count. The result depends only on the arguments, so deriving twice
// from the same canonical data gives identical lists.
func DeriveWeapons(ranged, melee []weapon.Entry, upgrades []Upgrade) (outRanged, outMelee []weapon.Entry) {
	slots := indexWeapons(ranged, melee)
	groups := GroupWeaponMods(upgrades)
	r := parentRenames(slots, groups)

	for _, s := range slots {
		var out []weapon.Entry
		remaining := allocate(s, groups, func(gi, n int) {
			upgraded := Apply(s.entry.Weapon, groups[gi].Mod)
			upgraded.Charge = r.relink(s.entry.Weapon.Charge, gi)
			out = append(out, weapon.Entry{Weapon: upgraded, Count: n})
		})
		if remaining > 0 {
			untouched := s.entry.Weapon.Clone()
			untouched.Charge = r.relink(untouched.Charge, -1)
			out = append(out, weapon.Entry{Weapon: untouched, Count: remaining})
		}
		if s.ranged {
			outRanged = append(outRanged, out...)
		} else {
			outMelee = append(outMelee, out...)
		}
	}
	return outRanged, outMelee
}
