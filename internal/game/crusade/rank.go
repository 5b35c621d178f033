package crusade

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Rank is a crusade progression tier, derived from experience points.
type Rank int

const (
	// BattleReady is the starting rank.
	BattleReady Rank = iota
	// Blooded is reached at 6 experience.
	Blooded
	// BattleHardened is reached at 16 experience.
	BattleHardened
	// Heroic is reached at 31 experience.
	Heroic
	// Legendary is reached at 51 experience.
	Legendary
)

// rankThresholds lists the minimum experience of each rank, highest first.
var rankThresholds = []struct {
	minExp int
	rank   Rank
}{
	{51, Legendary},
	{31, Heroic},
	{16, BattleHardened},
	{6, Blooded},
}

var rankKeys = map[Rank]string{
	BattleReady:    "battle_ready",
	Blooded:        "blooded",
	BattleHardened: "battle_hardened",
	Heroic:         "heroic",
	Legendary:      "legendary",
}

var rankNames = map[Rank]string{
	BattleReady:    "Battle-ready",
	Blooded:        "Blooded",
	BattleHardened: "Battle-hardened",
	Heroic:         "Heroic",
	Legendary:      "Legendary",
}

// RankForExp returns the rank earned by exp experience points.
//
// Postcondition: total and monotonic in exp.
func RankForExp(exp int) Rank {
	for _, t := range rankThresholds {
		if exp >= t.minExp {
			return t.rank
		}
	}
	return BattleReady
}

// String returns the display name of the rank.
func (r Rank) String() string {
	if n, ok := rankNames[r]; ok {
		return n
	}
	return fmt.Sprintf("Rank(%d)", int(r))
}

// MarshalYAML stores the rank by key, e.g. "battle_hardened".
func (r Rank) MarshalYAML() (any, error) {
	k, ok := rankKeys[r]
	if !ok {
		return nil, fmt.Errorf("unknown rank %d", int(r))
	}
	return k, nil
}

// UnmarshalYAML reads a rank key.
func (r *Rank) UnmarshalYAML(node *yaml.Node) error {
	for rank, k := range rankKeys {
		if k == node.Value {
			*r = rank
			return nil
		}
	}
	return fmt.Errorf("line %d: unknown rank %q", node.Line, node.Value)
}
