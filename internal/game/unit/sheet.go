package unit

import (
	"fmt"
	"io"
	"slices"
	"strings"
	"text/tabwriter"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/cory-johannsen/datasheet/internal/game/ability"
	"github.com/cory-johannsen/datasheet/internal/game/weapon"
)

// StatLine is the printable form of Stats.
type StatLine struct {
	Name       string
	Movement   string
	Toughness  string
	Save       string
	Invuln     string
	Wounds     string
	Leadership string
	OC         string
}

func newStatLine(name, movement string, s Stats) StatLine {
	invuln := ""
	if s.Invuln != nil {
		invuln = fmt.Sprintf("%d++", *s.Invuln)
	}
	return StatLine{
		Name:       name,
		Movement:   movement + "\"",
		Toughness:  fmt.Sprintf("%d", s.Toughness),
		Save:       fmt.Sprintf("%d+", s.Save),
		Invuln:     invuln,
		Wounds:     fmt.Sprintf("%d", s.Wounds),
		Leadership: fmt.Sprintf("%d+", s.Leadership),
		OC:         fmt.Sprintf("%d", s.OC),
	}
}

// Sheet is the read model of a finalised unit: everything a datasheet
// renderer prints, already formatted.
type Sheet struct {
	Name             string
	Stats            StatLine
	ExtraLabel       string
	ExtraStats       []StatLine
	Rank             string
	Ranged           []weapon.Row
	Melee            []weapon.Row
	FactionAbility   string
	CoreAbilities    []string
	UniqueAbilities  []ability.Ability
	CrusadeAbilities []ability.Ability
	FactionKeyword   string
	Keywords         []string
	Damaged          string
	Leader           []string
}

func rows(entries []weapon.Entry) []weapon.Row {
	out := make([]weapon.Row, len(entries))
	for i, e := range entries {
		out[i] = e.Row()
	}
	return out
}

// NewSheet builds the read model of u.
//
// Precondition: u has been finalised; a crusade unit shows its cached crusade weapons.
func NewSheet(u *Unit) Sheet {
	upper := cases.Upper(language.Und)
	ranged, melee := u.DisplayWeapons()
	s := Sheet{
		Name:             u.Name,
		Stats:            newStatLine("", u.Movement(), u.Stats),
		ExtraLabel:       u.ExtraStatlines.Label,
		Ranged:           rows(ranged),
		Melee:            rows(melee),
		FactionAbility:   "none",
		UniqueAbilities:  slices.Clone(u.UniqueAbilities),
		CrusadeAbilities: u.CrusadeAbilities(),
		FactionKeyword:   upper.String(u.FactionKeyword),
		Damaged:          "none",
	}
	for _, l := range u.ExtraStatlines.Lines {
		s.ExtraStats = append(s.ExtraStats, newStatLine(l.Name, u.movementOf(l.Stats), l.Stats))
	}
	if u.CrusadeUnit {
		s.Rank = fmt.Sprintf("%s (%d exp)", u.CrusadeData.Rank, u.CrusadeData.Exp)
	}
	if u.FactionAbility != nil {
		s.FactionAbility = *u.FactionAbility
	}
	for _, c := range u.CoreAbilities {
		if r := c.RenderString(); r != "" {
			s.CoreAbilities = append(s.CoreAbilities, r)
		}
	}
	for _, k := range u.Keywords {
		s.Keywords = append(s.Keywords, upper.String(k))
	}
	if u.Damaged != nil {
		s.Damaged = fmt.Sprintf("%d", *u.Damaged)
	}
	if u.Leader != nil {
		s.Leader = slices.Clone(*u.Leader)
	}
	return s
}

// WriteText prints s as a plain text datasheet.
func (s Sheet) WriteText(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	p := func(format string, args ...any) {
		fmt.Fprintf(tw, format, args...)
	}

	p("%s\n", s.Name)
	if s.Rank != "" {
		p("%s\n", s.Rank)
	}
	p("\n\tM\tT\tSv\tInv\tW\tLd\tOC\n")
	lines := append([]StatLine{s.Stats}, s.ExtraStats...)
	for _, l := range lines {
		p("%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n", l.Name, l.Movement, l.Toughness, l.Save, l.Invuln, l.Wounds, l.Leadership, l.OC)
	}

	for _, table := range []struct {
		title string
		skill string
		rows  []weapon.Row
	}{
		{"RANGED WEAPONS", "BS", s.Ranged},
		{"MELEE WEAPONS", "WS", s.Melee},
	} {
		if len(table.rows) == 0 {
			continue
		}
		p("\n%s\tRange\tA\t%s\tS\tAP\tD\tKeywords\n", table.title, table.skill)
		for _, r := range table.rows {
			name := r.Name
			if r.Count > 1 {
				name = fmt.Sprintf("%dx %s", r.Count, r.Name)
			}
			p("%s\t%s\t%s\t%s\t%d\t%s\t%s\t%s\n", name, r.Range, r.Attacks, r.Skill, r.Strength, r.AP, r.Damage, r.Keywords)
		}
	}

	p("\nFACTION: %s\n", s.FactionAbility)
	if len(s.CoreAbilities) > 0 {
		p("CORE: %s\n", strings.Join(s.CoreAbilities, ", "))
	}
	for _, a := range s.UniqueAbilities {
		p("%s: %s\n", a.Name, a.Description)
	}
	for _, a := range s.CrusadeAbilities {
		p("%s: %s\n", a.Name, a.Description)
	}
	p("DAMAGED: %s\n", s.Damaged)
	if len(s.Leader) > 0 {
		p("LEADER: %s\n", strings.Join(s.Leader, ", "))
	}
	p("\nKEYWORDS: %s\n", strings.Join(s.Keywords, ", "))
	p("FACTION KEYWORD: %s\n", s.FactionKeyword)
	return tw.Flush()
}
