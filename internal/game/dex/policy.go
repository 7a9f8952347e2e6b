package dex

// Policy is the per-generation rule table. For generations up to 3 the damage
// category of a move follows from its type, whatever the move table says.
type Policy struct {
	Generation    int
	PhysicalTypes map[Type]bool
}

// Gen1 returns the Generation 1 policy.
func Gen1() Policy {
	return Policy{
		Generation: 1,
		PhysicalTypes: map[Type]bool{
			TypeNone:     true,
			TypeNormal:   true,
			TypeFighting: true,
			TypePoison:   true,
			TypeGround:   true,
			TypeFlying:   true,
			TypeBug:      true,
			TypeRock:     true,
			TypeGhost:    true,
		},
	}
}

// Category resolves the effective category of m. Status moves stay status.
func (p Policy) Category(m *Move) Category {
	if m.Category == CategoryStatus {
		return CategoryStatus
	}
	if p.Generation <= 3 {
		if p.PhysicalTypes[m.Type] {
			return CategoryPhysical
		}
		return CategorySpecial
	}
	return m.Category
}
