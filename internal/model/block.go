package model

import "fmt"

// BlockKind identifies the optical behaviour of a block.
type BlockKind uint8

const (
	Reflect BlockKind = iota + 1 // 'A': mirror, needs an Orientation
	Opaque                       // 'B': absorbs every beam
	Refract                      // 'C': passes the beam and reflects a copy
)

// AllKinds lists the block kinds in inventory order.
var AllKinds = []BlockKind{Reflect, Opaque, Refract}

func (k BlockKind) String() string {
	switch k {
	case Reflect:
		return "Reflect"
	case Opaque:
		return "Opaque"
	case Refract:
		return "Refract"
	default:
		return "None"
	}
}

// Letter returns the puzzle-file letter for the kind.
func (k BlockKind) Letter() byte {
	switch k {
	case Reflect:
		return 'A'
	case Opaque:
		return 'B'
	case Refract:
		return 'C'
	default:
		return 'o'
	}
}

// KindFromLetter maps an A/B/C letter (either case) to its kind.
func KindFromLetter(letter byte) (BlockKind, error) {
	switch letter {
	case 'A', 'a':
		return Reflect, nil
	case 'B', 'b':
		return Opaque, nil
	case 'C', 'c':
		return Refract, nil
	}
	return 0, fmt.Errorf("unknown block letter %q (expected A/B/C)", letter)
}

// Orientation is the mirror direction of a Reflect block.
type Orientation uint8

const (
	NoOrientation Orientation = iota
	Slash                     // "/"
	Backslash                 // "\"
)

// Orientations lists the mirror directions in search order.
var Orientations = []Orientation{Slash, Backslash}

func (o Orientation) String() string {
	switch o {
	case Slash:
		return "/"
	case Backslash:
		return "\\"
	default:
		return ""
	}
}

// Block is an immutable block value. The zero Block means "no block".
type Block struct {
	Kind        BlockKind   `json:"kind"`
	Orientation Orientation `json:"orientation,omitempty"`
}

// NewBlock returns a block of the given kind. Reflect blocks default to Slash,
// which is also how fixed mirrors from a puzzle file are interpreted.
func NewBlock(kind BlockKind) Block {
	if kind == Reflect {
		return Block{Kind: Reflect, Orientation: Slash}
	}
	return Block{Kind: kind}
}

// Mirror returns a Reflect block with the given orientation.
func Mirror(o Orientation) Block {
	return Block{Kind: Reflect, Orientation: o}
}

// IsZero reports whether b is the empty block.
func (b Block) IsZero() bool {
	return b.Kind == 0
}

func (b Block) String() string {
	if b.Kind == Reflect {
		return b.Kind.String() + b.Orientation.String()
	}
	return b.Kind.String()
}

// Inventory counts the placeable blocks of each kind.
type Inventory struct {
	Reflect int `json:"reflect" yaml:"reflect"`
	Opaque  int `json:"opaque" yaml:"opaque"`
	Refract int `json:"refract" yaml:"refract"`
}

// Count returns the number of blocks of the given kind.
func (inv Inventory) Count(kind BlockKind) int {
	switch kind {
	case Reflect:
		return inv.Reflect
	case Opaque:
		return inv.Opaque
	case Refract:
		return inv.Refract
	default:
		return 0
	}
}

// Set overwrites the count for a kind.
func (inv *Inventory) Set(kind BlockKind, n int) {
	switch kind {
	case Reflect:
		inv.Reflect = n
	case Opaque:
		inv.Opaque = n
	case Refract:
		inv.Refract = n
	}
}

// Total returns the number of blocks to place.
func (inv Inventory) Total() int {
	return inv.Reflect + inv.Opaque + inv.Refract
}

// Tokens expands the counts into one kind per block, grouped in kind order.
func (inv Inventory) Tokens() []BlockKind {
	tokens := make([]BlockKind, 0, inv.Total())
	for _, k := range AllKinds {
		for i := 0; i < inv.Count(k); i++ {
			tokens = append(tokens, k)
		}
	}
	return tokens
}

func (inv Inventory) String() string {
	return fmt.Sprintf("A=%d, B=%d, C=%d", inv.Reflect, inv.Opaque, inv.Refract)
}
