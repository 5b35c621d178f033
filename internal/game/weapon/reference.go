package weapon

import "cmp"

// Reference identifies a weapon by its position in the ranged or melee list
// of a unit. Name is carried for display only.
//
// Invariant: identity is (Ranged, ID). Two references that differ only by Name
// are equal, so a weapon renamed by an upgrade is still found by position.
type Reference struct {
	Name   string `yaml:"name"`
	Ranged bool   `yaml:"ranged"`
	ID     int    `yaml:"id"`
}

// RefKey is the comparable identity of a Reference, usable as a map key.
type RefKey struct {
	Ranged bool
	ID     int
}

// NewReference returns a Reference to the weapon at index id of the ranged
// (ranged == true) or melee list.
func NewReference(name string, ranged bool, id int) Reference {
	return Reference{Name: name, Ranged: ranged, ID: id}
}

// IsID reports whether r points at index id of the given list, ignoring Name.
func (r Reference) IsID(ranged bool, id int) bool {
	return r.Ranged == ranged && r.ID == id
}

// Equal reports whether r and o identify the same weapon position.
func (r Reference) Equal(o Reference) bool {
	return r.IsID(o.Ranged, o.ID)
}

// Key returns the identity of r.
func (r Reference) Key() RefKey {
	return RefKey{Ranged: r.Ranged, ID: r.ID}
}

// Compare orders references by identity: melee before ranged, then by ID.
// Names never affect the result.
func (r Reference) Compare(o Reference) int {
	if r.Ranged != o.Ranged {
		if r.Ranged {
			return 1
		}
		return -1
	}
	return cmp.Compare(r.ID, o.ID)
}
