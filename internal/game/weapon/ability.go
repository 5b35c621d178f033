package weapon

import (
	"fmt"
	"strings"

	"github.com/cory-johannsen/datasheet/internal/game/dice"
)

// AbilityKind names a weapon keyword.
type AbilityKind string

// Weapon keywords. Kinds that carry a payload are noted; the rest are bare.
const (
	KindNone         AbilityKind = "none"
	KindAssault      AbilityKind = "assault"
	KindRapidFire    AbilityKind = "rapid_fire" // Value, Raw
	KindIgnoresCover AbilityKind = "ignores_cover"
	KindTwinLinked   AbilityKind = "twin_linked"
	KindPistol       AbilityKind = "pistol"
	KindTorrent      AbilityKind = "torrent"
	KindLethal       AbilityKind = "lethal_hits"
	KindLance        AbilityKind = "lance"
	KindIndirect     AbilityKind = "indirect_fire"
	KindPrecision    AbilityKind = "precision"
	KindBlast        AbilityKind = "blast"
	KindMelta        AbilityKind = "melta" // N
	KindHeavy        AbilityKind = "heavy"
	KindHazardous    AbilityKind = "hazardous"
	KindDevastating  AbilityKind = "devastating_wounds"
	KindSustained    AbilityKind = "sustained_hits" // Value, Raw
	KindExtraAttacks AbilityKind = "extra_attacks"
	KindAnti         AbilityKind = "anti" // Text keyword, N threshold
	KindOneShot      AbilityKind = "one_shot"
	KindPrecise      AbilityKind = "precise" // granted by crusade weapon mods only
	KindPsychic      AbilityKind = "psychic"
	KindConversion   AbilityKind = "conversion"
	KindCustom       AbilityKind = "custom" // Text
)

var abilityLabels = map[AbilityKind]string{
	KindNone:         "NONE",
	KindAssault:      "ASSAULT",
	KindRapidFire:    "RAPID FIRE",
	KindIgnoresCover: "IGNORES COVER",
	KindTwinLinked:   "TWIN-LINKED",
	KindPistol:       "PISTOL",
	KindTorrent:      "TORRENT",
	KindLethal:       "LETHAL HITS",
	KindLance:        "LANCE",
	KindIndirect:     "INDIRECT FIRE",
	KindPrecision:    "PRECISION",
	KindBlast:        "BLAST",
	KindMelta:        "MELTA",
	KindHeavy:        "HEAVY",
	KindHazardous:    "HAZARDOUS",
	KindDevastating:  "DEVASTATING WOUNDS",
	KindSustained:    "SUSTAINED HITS",
	KindExtraAttacks: "EXTRA ATTACKS",
	KindAnti:         "ANTI-X",
	KindOneShot:      "ONE SHOT",
	KindPrecise:      "PRECISE",
	KindPsychic:      "PSYCHIC",
	KindConversion:   "CONVERSION",
	KindCustom:       "CUSTOM",
}

// Ability is one weapon keyword. Kinds holding a dice value also hold the raw
// text it was typed as, so an edit layer can keep in-progress input that does
// not parse yet. Value is the last good parse and Raw is the current text;
// Resync brings them back in line.
type Ability struct {
	Kind  AbilityKind `yaml:"kind"`
	Value dice.Value  `yaml:"value,omitempty"`
	Raw   string      `yaml:"raw,omitempty"`
	N     int         `yaml:"n,omitempty"`
	Text  string      `yaml:"text,omitempty"`
}

// Keyword returns a bare keyword of the given kind.
func Keyword(kind AbilityKind) Ability {
	return Ability{Kind: kind}
}

// RapidFire returns a RAPID FIRE keyword.
func RapidFire(v dice.Value, raw string) Ability {
	return Ability{Kind: KindRapidFire, Value: v, Raw: raw}
}

// Sustained returns a SUSTAINED HITS keyword.
func Sustained(v dice.Value, raw string) Ability {
	return Ability{Kind: KindSustained, Value: v, Raw: raw}
}

// Melta returns a MELTA keyword.
func Melta(n int) Ability {
	return Ability{Kind: KindMelta, N: n}
}

// Anti returns an ANTI-keyword keyword that triggers on threshold+.
func Anti(keyword string, threshold int) Ability {
	return Ability{Kind: KindAnti, Text: keyword, N: threshold}
}

// Custom returns a free-text keyword.
func Custom(text string) Ability {
	return Ability{Kind: KindCustom, Text: text}
}

// HasValue reports whether the kind carries a dice value and raw text.
func (a Ability) HasValue() bool {
	return a.Kind == KindRapidFire || a.Kind == KindSustained
}

// Label returns the menu label of the keyword kind.
func (a Ability) Label() string {
	if l, ok := abilityLabels[a.Kind]; ok {
		return l
	}
	return strings.ToUpper(string(a.Kind))
}

// RenderString returns the keyword as printed on a datasheet. NONE renders empty.
func (a Ability) RenderString() string {
	switch a.Kind {
	case KindRapidFire:
		return "RAPID FIRE " + a.Value.String()
	case KindSustained:
		return "SUSTAINED HITS " + a.Value.String()
	case KindMelta:
		return fmt.Sprintf("MELTA %d", a.N)
	case KindAnti:
		return fmt.Sprintf("ANTI-%s %d+", strings.ToUpper(a.Text), min(max(a.N, 2), 6))
	case KindCustom:
		return a.Text
	case KindNone:
		return ""
	default:
		return a.Label()
	}
}

// RawValid reports whether the raw text of a valued keyword parses. Keywords
// without a value are always valid.
func (a Ability) RawValid() bool {
	return !a.HasValue() || dice.IsValid(a.Raw)
}

// WithRaw fills an empty Raw of a valued keyword from Value, so a keyword
// loaded or built without edit text keeps its value through Resync.
func (a Ability) WithRaw() Ability {
	if a.HasValue() && a.Raw == "" {
		a.Raw = a.Value.String()
	}
	return a
}

// Resync re-parses the raw text of a valued keyword, falling back to 1 when
// it does not parse, and rewrites Raw in canonical form.
func (a Ability) Resync() Ability {
	if !a.HasValue() {
		return a
	}
	a.Value = dice.ParseOr(a.Raw, dice.Set(1))
	a.Raw = a.Value.String()
	return a
}

// Validate checks that the kind is known.
func (a Ability) Validate() error {
	if _, ok := abilityLabels[a.Kind]; !ok {
		return fmt.Errorf("unknown weapon ability %q", a.Kind)
	}
	return nil
}
