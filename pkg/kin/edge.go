package kin

// Kind classifies a kinship edge. A parent edge from A to B means A is a
// parent of B; child is its logical inverse. Spouse and sibling edges are
// symmetric in meaning even when the snapshot only records one direction.
type Kind string

// Edge kinds.
const (
	KindParent  Kind = "parent"
	KindChild   Kind = "child"
	KindSpouse  Kind = "spouse"
	KindSibling Kind = "sibling"
)

// Valid reports whether k is one of the four recognized edge kinds.
func (k Kind) Valid() bool {
	switch k {
	case KindParent, KindChild, KindSpouse, KindSibling:
		return true
	}
	return false
}

// KinshipEdge is one typed relationship between two persons in the snapshot.
// The producer may supply edges asymmetrically (only A→B) or omit reciprocal
// spouse/sibling edges entirely; Build derives the missing direction in
// memory and never mutates the edge list itself.
type KinshipEdge struct {
	ID      string `json:"id,omitempty" bson:"id,omitempty"`
	PersonA string `json:"person_a" bson:"person_a"`
	PersonB string `json:"person_b" bson:"person_b"`
	Kind    Kind   `json:"kind" bson:"kind"`
}
