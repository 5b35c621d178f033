package weapon

import "fmt"

// ChargeKind is a weapon's role in a charge level family.
type ChargeKind string

const (
	// ChargeNone is a standalone weapon.
	ChargeNone ChargeKind = ""
	// ChargeParent defines a family of firing modes.
	ChargeParent ChargeKind = "parent"
	// ChargeChild is an alternate firing mode of a parent weapon.
	ChargeChild ChargeKind = "child"
)

// ChargeLevels describes how a weapon takes part in a charge level family.
//
// Invariant: Parent is only meaningful when Kind == ChargeChild. A child keeps
// the reference to its parent's position taken when the link was made.
type ChargeLevels struct {
	Kind   ChargeKind `yaml:"kind,omitempty"`
	Level  string     `yaml:"level,omitempty"`
	Parent Reference  `yaml:"parent,omitempty"`
}

// NoCharge returns the standalone charge state.
func NoCharge() ChargeLevels {
	return ChargeLevels{}
}

// ParentLevel returns a charge state for a weapon that defines levels.
func ParentLevel(level string) ChargeLevels {
	return ChargeLevels{Kind: ChargeParent, Level: level}
}

// ChildLevel returns a charge state for a weapon that is a level of parent.
func ChildLevel(parent Reference, level string) ChargeLevels {
	return ChargeLevels{Kind: ChargeChild, Level: level, Parent: parent}
}

// ParentRef returns the parent reference of a child, and false for any other kind.
func (c ChargeLevels) ParentRef() (Reference, bool) {
	if c.Kind != ChargeChild {
		return Reference{}, false
	}
	return c.Parent, true
}

// ToEdit returns the edit form (has levels, parent reference, level name).
// A nil parent means the weapon is the parent of its family.
func (c ChargeLevels) ToEdit() (bool, *Reference, string) {
	switch c.Kind {
	case ChargeParent:
		return true, nil, c.Level
	case ChargeChild:
		parent := c.Parent
		return true, &parent, c.Level
	default:
		return false, nil, ""
	}
}

// ChargeFromEdit is the inverse of ToEdit.
//
// Postcondition: ChargeFromEdit(c.ToEdit()) == c for every valid c.
func ChargeFromEdit(hasLevels bool, parent *Reference, level string) ChargeLevels {
	switch {
	case !hasLevels:
		return NoCharge()
	case parent == nil:
		return ParentLevel(level)
	default:
		return ChildLevel(*parent, level)
	}
}

// Validate checks that Kind is known.
func (c ChargeLevels) Validate() error {
	switch c.Kind {
	case ChargeNone, ChargeParent, ChargeChild:
		return nil
	default:
		return fmt.Errorf("unknown charge kind %q", c.Kind)
	}
}
