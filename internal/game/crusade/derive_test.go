package crusade_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/datasheet/internal/game/ability"
	"github.com/cory-johannsen/datasheet/internal/game/crusade"
	"github.com/cory-johannsen/datasheet/internal/game/dice"
	"github.com/cory-johannsen/datasheet/internal/game/weapon"
)

func bolter() weapon.Weapon {
	return weapon.Weapon{
		Name:     "Bolter",
		Range:    24,
		Attacks:  dice.Set(2),
		Skill:    3,
		Strength: 4,
		AP:       0,
		Damage:   dice.Set(1),
	}
}

func chainsword() weapon.Weapon {
	return weapon.Weapon{
		Name:     "Chainsword",
		Range:    weapon.Melee,
		Attacks:  dice.Set(3),
		Skill:    3,
		Strength: 4,
		AP:       1,
		Damage:   dice.Set(1),
	}
}

func upgrades(mods ...crusade.WeaponMod) []crusade.Upgrade {
	out := make([]crusade.Upgrade, len(mods))
	for i, m := range mods {
		out[i] = crusade.ModUpgrade(m)
	}
	return out
}

func totalCount(entries []weapon.Entry) int {
	n := 0
	for _, e := range entries {
		n += e.Count
	}
	return n
}

func TestGroupWeaponMods(t *testing.T) {
	a := mod("X", crusade.ChangeAttacks, crusade.ChangeAP, ref(true, 0))
	aSwapped := mod("X", crusade.ChangeAP, crusade.ChangeAttacks, ref(true, 0))
	b := mod("Y", crusade.ChangeSkill, crusade.ChangeDamage, ref(false, 1))
	untargeted := mod("Z", crusade.ChangeSkill, crusade.ChangeDamage, nil)

	ups := upgrades(a, b, untargeted, aSwapped)
	ups = append(ups, crusade.AbilityUpgrade(crusade.UpgradeRelic, ability.Ability{Name: "Relic"}))

	groups := crusade.GroupWeaponMods(ups)
	require.Len(t, groups, 2)
	assert.Equal(t, 2, groups[0].Count)
	assert.Equal(t, "X", groups[0].Mod.Name)
	assert.Equal(t, 1, groups[1].Count)
	assert.Equal(t, "Y", groups[1].Mod.Name)
}

func TestGroupWeaponMods_CountProperty(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(0, 20).Draw(rt, "n")
		var ups []crusade.Upgrade
		targeted := 0
		for i := 0; i < n; i++ {
			var target *weapon.Reference
			if rapid.Bool().Draw(rt, "hasTarget") {
				target = ref(rapid.Bool().Draw(rt, "ranged"), rapid.IntRange(0, 2).Draw(rt, "id"))
				targeted++
			}
			one := rapid.SampledFrom(crusade.Changes()).Draw(rt, "one")
			two := rapid.SampledFrom(crusade.Changes()).Draw(rt, "two")
			name := rapid.SampledFrom([]string{"A", "B"}).Draw(rt, "name")
			ups = append(ups, crusade.ModUpgrade(mod(name, one, two, target)))
		}
		groups := crusade.GroupWeaponMods(ups)
		sum := 0
		for i, g := range groups {
			sum += g.Count
			for j := i + 1; j < len(groups); j++ {
				assert.False(rt, g.Mod.Equal(groups[j].Mod), "groups must be distinct")
			}
		}
		assert.Equal(rt, targeted, sum)
	})
}

func TestDeriveWeapons_EndToEnd(t *testing.T) {
	ranged := []weapon.Entry{{Weapon: bolter(), Count: 3}}
	ups := upgrades(mod("Master-crafted Bolter", crusade.ChangeAttacks, crusade.ChangeStrength, ref(true, 0)))

	outRanged, outMelee := crusade.DeriveWeapons(ranged, nil, ups)

	upgraded := bolter()
	upgraded.Name = "Master-crafted Bolter"
	upgraded.Attacks = dice.Set(3)
	upgraded.Strength = 5
	assert.Equal(t, []weapon.Entry{
		{Weapon: upgraded, Count: 1},
		{Weapon: bolter(), Count: 2},
	}, outRanged)
	assert.Empty(t, outMelee)
}

func TestDeriveWeapons_Conservation(t *testing.T) {
	ranged := []weapon.Entry{{Weapon: bolter(), Count: 5}}
	m := mod("Twin Bolter", crusade.ChangeAttacks, crusade.ChangeAP, ref(true, 0))

	outRanged, _ := crusade.DeriveWeapons(ranged, nil, upgrades(m, m))

	require.Len(t, outRanged, 2)
	assert.Equal(t, "Twin Bolter", outRanged[0].Weapon.Name)
	assert.Equal(t, 2, outRanged[0].Count)
	assert.Equal(t, "Bolter", outRanged[1].Weapon.Name)
	assert.Equal(t, 3, outRanged[1].Count)
}

func TestDeriveWeapons_MultiplicityExceedsCount(t *testing.T) {
	ranged := []weapon.Entry{{Weapon: bolter(), Count: 1}}
	m := mod("Twin Bolter", crusade.ChangeAttacks, crusade.ChangeAP, ref(true, 0))

	outRanged, _ := crusade.DeriveWeapons(ranged, nil, upgrades(m, m, m))
	assert.Equal(t, []weapon.Entry{{Weapon: crusade.Apply(bolter(), m), Count: 1}}, outRanged)
}

func TestDeriveWeapons_GroupsShareCopiesInOrder(t *testing.T) {
	ranged := []weapon.Entry{{Weapon: bolter(), Count: 3}}
	a := mod("A", crusade.ChangeAttacks, crusade.ChangeAP, ref(true, 0))
	b := mod("B", crusade.ChangeSkill, crusade.ChangeDamage, ref(true, 0))

	outRanged, _ := crusade.DeriveWeapons(ranged, nil, upgrades(a, b, a, b))

	require.Len(t, outRanged, 2)
	assert.Equal(t, "A", outRanged[0].Weapon.Name)
	assert.Equal(t, 2, outRanged[0].Count)
	assert.Equal(t, "B", outRanged[1].Weapon.Name)
	assert.Equal(t, 1, outRanged[1].Count)
}

func TestDeriveWeapons_MeleeStaysMelee(t *testing.T) {
	ranged := []weapon.Entry{{Weapon: bolter(), Count: 1}}
	melee := []weapon.Entry{{Weapon: chainsword(), Count: 2}}
	m := mod("Relic Chainsword", crusade.ChangeStrength, crusade.ChangeDamage, ref(false, 0))

	outRanged, outMelee := crusade.DeriveWeapons(ranged, melee, upgrades(m))

	assert.Equal(t, ranged, outRanged)
	require.Len(t, outMelee, 2)
	assert.Equal(t, "Relic Chainsword", outMelee[0].Weapon.Name)
	assert.Equal(t, weapon.Melee, outMelee[0].Weapon.Range)
	assert.Equal(t, 5, outMelee[0].Weapon.Strength)
	assert.Equal(t, dice.Set(2), outMelee[0].Weapon.Damage)
	assert.Equal(t, 1, outMelee[0].Count)
	assert.Equal(t, chainsword(), outMelee[1].Weapon)
}

func TestDeriveWeapons_MissingTargetIsNoOp(t *testing.T) {
	ranged := []weapon.Entry{{Weapon: bolter(), Count: 2}}
	m := mod("Ghost", crusade.ChangeAttacks, crusade.ChangeAP, ref(true, 7))

	outRanged, outMelee := crusade.DeriveWeapons(ranged, nil, upgrades(m))
	assert.Equal(t, ranged, outRanged)
	assert.Empty(t, outMelee)
}

func TestDeriveWeapons_DoesNotMutateInput(t *testing.T) {
	w := bolter()
	w.Keywords = []weapon.Ability{weapon.Keyword(weapon.KindRapidFire)}
	ranged := []weapon.Entry{{Weapon: w, Count: 2}}
	before := weapon.CloneEntries(ranged)
	m := mod("Precise Bolter", crusade.ChangePrecise, crusade.ChangeAP, ref(true, 0))
	ups := upgrades(m)

	outRanged, _ := crusade.DeriveWeapons(ranged, nil, ups)
	outRanged[1].Weapon.Keywords[0] = weapon.Keyword(weapon.KindBlast)

	assert.Equal(t, before, ranged)
	assert.Equal(t, "Precise Bolter", ups[0].WeaponMod.Name)
}

func TestDeriveWeapons_Idempotent(t *testing.T) {
	ranged := []weapon.Entry{{Weapon: bolter(), Count: 3}}
	melee := []weapon.Entry{{Weapon: chainsword(), Count: 1}}
	ups := upgrades(
		mod("A", crusade.ChangeAttacks, crusade.ChangePrecise, ref(true, 0)),
		mod("B", crusade.ChangeAP, crusade.ChangeSkill, ref(false, 0)),
	)
	r1, m1 := crusade.DeriveWeapons(ranged, melee, ups)
	r2, m2 := crusade.DeriveWeapons(ranged, melee, ups)
	assert.Equal(t, r1, r2)
	assert.Equal(t, m1, m2)
}

func TestApply_FieldRules(t *testing.T) {
	w := bolter()
	w.Attacks = dice.Rolled(1, dice.D6, 0)
	w.Damage = dice.Rolled(1, dice.D3, 1)
	w.Keywords = []weapon.Ability{weapon.Keyword(weapon.KindHeavy)}

	got := crusade.Apply(w, mod("All", crusade.ChangeAttacks, crusade.ChangeDamage, nil))
	assert.Equal(t, dice.Rolled(1, dice.D6, 1), got.Attacks)
	assert.Equal(t, dice.Rolled(1, dice.D3, 2), got.Damage)
	assert.Equal(t, "All", got.Name)
	assert.Equal(t, w.Range, got.Range)

	got = crusade.Apply(w, mod("S", crusade.ChangeSkill, crusade.ChangeStrength, nil))
	assert.Equal(t, 2, got.Skill)
	assert.Equal(t, 5, got.Strength)

	got = crusade.Apply(w, mod("P", crusade.ChangePrecise, crusade.ChangeAP, nil))
	assert.Equal(t, []weapon.Ability{weapon.Keyword(weapon.KindHeavy), weapon.Keyword(weapon.KindPrecise)}, got.Keywords)
	assert.Equal(t, -1, got.AP)
	assert.Len(t, w.Keywords, 1)
}

func TestApply_APGrowsAwayFromZero(t *testing.T) {
	m := mod("AP", crusade.ChangeAP, crusade.ChangeStrength, nil)
	for _, tc := range []struct{ in, want int }{{0, -1}, {-1, -2}, {1, 2}, {3, 4}} {
		w := bolter()
		w.AP = tc.in
		assert.Equal(t, tc.want, crusade.Apply(w, m).AP, "ap %d", tc.in)
	}
}

func TestApply_SkillFloor(t *testing.T) {
	m := mod("S", crusade.ChangeSkill, crusade.ChangeStrength, nil)
	for _, tc := range []struct{ in, want int }{{4, 3}, {3, 2}, {2, 2}, {1, 1}, {0, 0}} {
		w := bolter()
		w.Skill = tc.in
		assert.Equal(t, tc.want, crusade.Apply(w, m).Skill, "skill %d", tc.in)
	}
}

func TestApply_EqualChangesAppliedOnce(t *testing.T) {
	got := crusade.Apply(bolter(), mod("Double", crusade.ChangeStrength, crusade.ChangeStrength, nil))
	assert.Equal(t, 5, got.Strength)
}

func plasmaFamily() []weapon.Entry {
	parent := weapon.Weapon{Name: "Plasma gun", Range: 24, Attacks: dice.Set(1), Skill: 3, Strength: 7, AP: 2, Damage: dice.Set(1), Charge: weapon.ParentLevel("Standard")}
	child := weapon.Weapon{Name: "Plasma gun", Range: 24, Attacks: dice.Set(1), Skill: 3, Strength: 8, AP: 3, Damage: dice.Set(2),
		Keywords: []weapon.Ability{weapon.Keyword(weapon.KindHazardous)},
		Charge:   weapon.ChildLevel(weapon.NewReference("Plasma gun", true, 1), "Supercharge")}
	return []weapon.Entry{
		{Weapon: bolter(), Count: 1},
		{Weapon: parent, Count: 2},
		{Weapon: child, Count: 2},
	}
}

func TestDeriveWeapons_ParentUpgradeReachesChildren(t *testing.T) {
	ranged := plasmaFamily()
	m := mod("Master-crafted Plasma", crusade.ChangeDamage, crusade.ChangeStrength, ref(true, 1))

	outRanged, _ := crusade.DeriveWeapons(ranged, nil, upgrades(m))

	require.Len(t, outRanged, 5)
	assert.Equal(t, "Bolter", outRanged[0].Weapon.Name)

	assert.Equal(t, "Master-crafted Plasma", outRanged[1].Weapon.Name)
	assert.Equal(t, weapon.ParentLevel("Standard"), outRanged[1].Weapon.Charge)
	assert.Equal(t, 1, outRanged[1].Count)
	assert.Equal(t, ranged[1], outRanged[2])

	child := outRanged[3]
	assert.Equal(t, "Master-crafted Plasma", child.Weapon.Name)
	assert.Equal(t, 9, child.Weapon.Strength)
	assert.Equal(t, dice.Set(3), child.Weapon.Damage)
	assert.Equal(t, 1, child.Count)
	parentRef, ok := child.Weapon.Charge.ParentRef()
	require.True(t, ok)
	assert.Equal(t, "Master-crafted Plasma", parentRef.Name)
	assert.True(t, parentRef.IsID(true, 1))
	assert.Equal(t, "Supercharge", child.Weapon.Charge.Level)

	assert.Equal(t, ranged[2], outRanged[4], "untouched child copies keep their parent link")
}

func TestDeriveWeapons_ChildBeforeParent(t *testing.T) {
	family := plasmaFamily()
	child := family[2].Weapon
	child.Charge = weapon.ChildLevel(weapon.NewReference("Plasma gun", true, 1), "Supercharge")
	ranged := []weapon.Entry{
		{Weapon: child, Count: 1},
		{Weapon: family[1].Weapon, Count: 1},
	}
	m := mod("Relic Plasma", crusade.ChangeDamage, crusade.ChangeAP, ref(true, 1))

	outRanged, _ := crusade.DeriveWeapons(ranged, nil, upgrades(m))

	require.Len(t, outRanged, 2)
	parentRef, ok := outRanged[0].Weapon.Charge.ParentRef()
	require.True(t, ok)
	assert.Equal(t, "Relic Plasma", parentRef.Name)
	assert.Equal(t, "Relic Plasma", outRanged[1].Weapon.Name)
}

func TestDeriveWeapons_ChildTargetedDirectlyKeepsParentName(t *testing.T) {
	ranged := plasmaFamily()
	m := mod("Tuned Coils", crusade.ChangeAttacks, crusade.ChangeAP, ref(true, 2))

	outRanged, _ := crusade.DeriveWeapons(ranged, nil, upgrades(m))

	require.Len(t, outRanged, 4)
	assert.Equal(t, ranged[1], outRanged[1])
	assert.Equal(t, "Tuned Coils", outRanged[2].Weapon.Name)
	parentRef, _ := outRanged[2].Weapon.Charge.ParentRef()
	assert.Equal(t, "Plasma gun", parentRef.Name)
}

func TestDeriveWeapons_ChildRelinksToRenamedParentAcrossGroups(t *testing.T) {
	family := plasmaFamily()
	parent, child := family[1].Weapon, family[2].Weapon
	child.Charge = weapon.ChildLevel(weapon.NewReference("Plasma gun", true, 0), "Supercharge")
	ranged := []weapon.Entry{{Weapon: parent, Count: 1}, {Weapon: child, Count: 2}}
	a := mod("A", crusade.ChangeDamage, crusade.ChangeStrength, ref(true, 0))
	b := mod("B", crusade.ChangeAttacks, crusade.ChangeAP, ref(true, 1))

	outRanged, _ := crusade.DeriveWeapons(ranged, nil, upgrades(a, b))

	// parent A, child A, child B
	require.Len(t, outRanged, 3)
	assert.Equal(t, "A", outRanged[0].Weapon.Name)
	for i, want := range []string{"A", "B"} {
		got := outRanged[i+1]
		assert.Equal(t, want, got.Weapon.Name)
		assert.Equal(t, 1, got.Count)
		parentRef, ok := got.Weapon.Charge.ParentRef()
		require.True(t, ok)
		assert.Equal(t, "A", parentRef.Name, "%s child must point at a parent that still exists", want)
		assert.True(t, parentRef.IsID(true, 0))
	}
}

func TestDeriveWeapons_UntouchedChildFollowsFullyRenamedParent(t *testing.T) {
	ranged := plasmaFamily()
	ranged[2].Count = 3
	a := mod("A", crusade.ChangeDamage, crusade.ChangeStrength, ref(true, 1))

	outRanged, _ := crusade.DeriveWeapons(ranged, nil, upgrades(a, a))

	// bolter, parent A x2, child A x2, child x1
	require.Len(t, outRanged, 4)
	assert.Equal(t, "A", outRanged[1].Weapon.Name)
	assert.Equal(t, 2, outRanged[1].Count)
	untouched := outRanged[3]
	assert.Equal(t, "Plasma gun", untouched.Weapon.Name)
	assert.Equal(t, 1, untouched.Count)
	parentRef, ok := untouched.Weapon.Charge.ParentRef()
	require.True(t, ok)
	assert.Equal(t, "A", parentRef.Name)
	assert.Equal(t, "Plasma gun", ranged[2].Weapon.Charge.Parent.Name, "input is not modified")
}

func TestDeriveWeapons_ChildRelinkPerGroup(t *testing.T) {
	ranged := plasmaFamily()
	a := mod("A", crusade.ChangeDamage, crusade.ChangeStrength, ref(true, 1))
	b := mod("B", crusade.ChangeAttacks, crusade.ChangeAP, ref(true, 1))

	outRanged, _ := crusade.DeriveWeapons(ranged, nil, upgrades(a, b))

	// bolter, parent A, parent B, child A, child B
	require.Len(t, outRanged, 5)
	for i, want := range map[int]string{3: "A", 4: "B"} {
		parentRef, ok := outRanged[i].Weapon.Charge.ParentRef()
		require.True(t, ok)
		assert.Equal(t, want, outRanged[i].Weapon.Name)
		assert.Equal(t, want, parentRef.Name)
	}
}

// TestDeriveWeapons_Conservation_Property checks that every source entry's
// copies are fully accounted for, per category, for arbitrary upgrade lists.
func TestDeriveWeapons_Conservation_Property(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		genEntries := func(label string, base weapon.Weapon) []weapon.Entry {
			n := rapid.IntRange(0, 4).Draw(rt, label+"Len")
			out := make([]weapon.Entry, n)
			for i := range out {
				out[i] = weapon.Entry{Weapon: base, Count: rapid.IntRange(0, 6).Draw(rt, label+"Count")}
			}
			return out
		}
		ranged := genEntries("ranged", bolter())
		melee := genEntries("melee", chainsword())

		var ups []crusade.Upgrade
		for i, n := 0, rapid.IntRange(0, 8).Draw(rt, "ups"); i < n; i++ {
			one := rapid.SampledFrom(crusade.Changes()).Draw(rt, "one")
			two := rapid.SampledFrom(crusade.Changes()).Draw(rt, "two")
			name := rapid.SampledFrom([]string{"A", "B", "C"}).Draw(rt, "name")
			target := ref(rapid.Bool().Draw(rt, "ranged"), rapid.IntRange(0, 4).Draw(rt, "id"))
			ups = append(ups, crusade.ModUpgrade(mod(name, one, two, target)))
		}

		outRanged, outMelee := crusade.DeriveWeapons(ranged, melee, ups)
		assert.Equal(rt, totalCount(ranged), totalCount(outRanged))
		assert.Equal(rt, totalCount(melee), totalCount(outMelee))
		for _, e := range outRanged {
			assert.Greater(rt, e.Count, 0)
			assert.False(rt, e.Weapon.Range.IsMelee())
		}
		for _, e := range outMelee {
			assert.Greater(rt, e.Count, 0)
			assert.True(rt, e.Weapon.Range.IsMelee())
		}

		againRanged, againMelee := crusade.DeriveWeapons(ranged, melee, ups)
		assert.Equal(rt, outRanged, againRanged)
		assert.Equal(rt, outMelee, againMelee)
	})
}
