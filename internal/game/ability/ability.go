// Package ability defines the unit-level rules printed on a datasheet: named
// abilities with free text and the closed set of core abilities.
package ability

import (
	"fmt"

	"github.com/cory-johannsen/datasheet/internal/game/dice"
)

// Ability is a named rule with a description.
type Ability struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
}

// CoreKind names a core ability.
type CoreKind string

// Core abilities. Kinds that carry a payload are noted.
const (
	CoreNone         CoreKind = "none"
	CoreDeepStrike   CoreKind = "deep_strike"
	CoreScouts       CoreKind = "scouts" // N inches
	CoreLeader       CoreKind = "leader"
	CoreInfiltrators CoreKind = "infiltrators"
	CoreLoneOp       CoreKind = "lone_operative"
	CoreFiringDeck   CoreKind = "firing_deck" // N
	CoreStealth      CoreKind = "stealth"
	CoreFeelNoPain   CoreKind = "feel_no_pain"  // N threshold
	CoreDeadlyDemise CoreKind = "deadly_demise" // Value, Raw
	CoreFightsFirst  CoreKind = "fights_first"
)

var coreLabels = map[CoreKind]string{
	CoreNone:         "NONE",
	CoreDeepStrike:   "Deep Strike",
	CoreScouts:       "Scouts",
	CoreLeader:       "Leader",
	CoreInfiltrators: "Infiltrators",
	CoreLoneOp:       "Lone Operative",
	CoreFiringDeck:   "Firing Deck",
	CoreStealth:      "Stealth",
	CoreFeelNoPain:   "Feel no Pain",
	CoreDeadlyDemise: "Deadly Demise",
	CoreFightsFirst:  "Fights First",
}

// Core is one core ability. DeadlyDemise keeps its raw edit text next to the
// parsed value, like the valued weapon keywords.
type Core struct {
	Kind  CoreKind   `yaml:"kind"`
	N     int        `yaml:"n,omitempty"`
	Value dice.Value `yaml:"value,omitempty"`
	Raw   string     `yaml:"raw,omitempty"`
}

// CoreOf returns a core ability without payload.
func CoreOf(kind CoreKind) Core {
	return Core{Kind: kind}
}

// Scouts returns Scouts N".
func Scouts(inches int) Core {
	return Core{Kind: CoreScouts, N: inches}
}

// FiringDeck returns Firing Deck N.
func FiringDeck(n int) Core {
	return Core{Kind: CoreFiringDeck, N: n}
}

// FeelNoPain returns Feel no Pain N+.
func FeelNoPain(threshold int) Core {
	return Core{Kind: CoreFeelNoPain, N: threshold}
}

// DeadlyDemise returns Deadly Demise with a dice value and its raw text.
func DeadlyDemise(v dice.Value, raw string) Core {
	return Core{Kind: CoreDeadlyDemise, Value: v, Raw: raw}
}

// Label returns the menu label of the ability kind.
func (c Core) Label() string {
	if l, ok := coreLabels[c.Kind]; ok {
		return l
	}
	return string(c.Kind)
}

// RenderString returns the ability as printed on a datasheet. NONE renders empty.
func (c Core) RenderString() string {
	switch c.Kind {
	case CoreScouts:
		return fmt.Sprintf("Scouts %d\"", c.N)
	case CoreFiringDeck:
		return fmt.Sprintf("Firing Deck %d", c.N)
	case CoreFeelNoPain:
		return fmt.Sprintf("Feel no Pain %d+", c.N)
	case CoreDeadlyDemise:
		return "Deadly Demise " + c.Value.String()
	case CoreNone:
		return ""
	default:
		return c.Label()
	}
}

// RawValid reports whether the raw text of Deadly Demise parses.
func (c Core) RawValid() bool {
	return c.Kind != CoreDeadlyDemise || dice.IsValid(c.Raw)
}

// WithRaw fills an empty Raw of Deadly Demise from Value.
func (c Core) WithRaw() Core {
	if c.Kind == CoreDeadlyDemise && c.Raw == "" {
		c.Raw = c.Value.String()
	}
	return c
}

// Resync re-parses the raw text of Deadly Demise, falling back to 1.
func (c Core) Resync() Core {
	if c.Kind != CoreDeadlyDemise {
		return c
	}
	c.Value = dice.ParseOr(c.Raw, dice.Set(1))
	c.Raw = c.Value.String()
	return c
}

// Validate checks that the kind is known.
func (c Core) Validate() error {
	if _, ok := coreLabels[c.Kind]; !ok {
		return fmt.Errorf("unknown core ability %q", c.Kind)
	}
	return nil
}
