package locationid

import (
	"strings"

	"github.com/mohammed-shakir/unl-locationid/internal/core/model"
)

// Direction names a side of a cell for Adjacent.
type Direction byte

// The four sides; the byte is the lowercase letter accepted by ParseDirection.
const (
	North Direction = 'n'
	South Direction = 's'
	East  Direction = 'e'
	West  Direction = 'w'
)

func (d Direction) String() string { return string(d) }

// ParseDirection accepts n, s, e or w in either case, ignoring surrounding
// whitespace.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "n":
		return North, nil
	case "s":
		return South, nil
	case "e":
		return East, nil
	case "w":
		return West, nil
	default:
		return 0, invalid("direction %q must be one of n, s, e, w", s)
	}
}

const (
	rowNorth = iota
	rowSouth
	rowEast
	rowWest
)

func (d Direction) row() (int, bool) {
	switch d {
	case North:
		return rowNorth, true
	case South:
		return rowSouth, true
	case East:
		return rowEast, true
	case West:
		return rowWest, true
	}
	return 0, false
}

// transition maps the last character of an id to the last character of its
// neighbour; border marks characters on the edge of the parent cell.
type transition struct {
	next   [32]byte
	border [32]bool
}

// indexed by direction row, then by id length parity (0 even, 1 odd)
var transitions = buildTransitions(
	[4][2]string{
		{"p0r21436x8zb9dcf5h7kjnmqesgutwvy", "bc01fg45238967deuvhjyznpkmstqrwx"},
		{"14365h7k9dcfesgujnmqp0r2twvyx8zb", "238967debc01fg45kmstqrwxuvhjyznp"},
		{"bc01fg45238967deuvhjyznpkmstqrwx", "p0r21436x8zb9dcf5h7kjnmqesgutwvy"},
		{"238967debc01fg45kmstqrwxuvhjyznp", "14365h7k9dcfesgujnmqp0r2twvyx8zb"},
	},
	[4][2]string{
		{"prxz", "bcfguvyz"},
		{"028b", "0145hjnp"},
		{"bcfguvyz", "prxz"},
		{"0145hjnp", "028b"},
	},
)

func buildTransitions(neighbour, border [4][2]string) [4][2]transition {
	var out [4][2]transition
	for d := range neighbour {
		for p := range neighbour[d] {
			t := &out[d][p]
			row := neighbour[d][p]
			// a char at position i of the row steps to Alphabet[i]
			for i := 0; i < len(row); i++ {
				t.next[alphabetIndex[row[i]]] = Alphabet[i]
			}
			for i := 0; i < len(border[d][p]); i++ {
				t.border[alphabetIndex[border[d][p][i]]] = true
			}
		}
	}
	return out
}

// Adjacent returns the locationId of the cell next to id in direction d.
// The elevation suffix of id is carried over unchanged.
func Adjacent(id string, d Direction) (string, error) {
	row, ok := d.row()
	if !ok {
		return "", invalid("direction %q must be one of n, s, e, w", string(d))
	}
	bare, elev, err := ExcludeElevation(id)
	if err != nil {
		return "", err
	}
	if err := validateBare(bare); err != nil {
		return "", err
	}
	return AppendElevation(adjacent(bare, row), elev), nil
}

// adjacent expects a validated, non-empty bare id
func adjacent(bare string, row int) string {
	last := alphabetIndex[bare[len(bare)-1]]
	parent := bare[:len(bare)-1]
	t := &transitions[row][len(bare)%2]

	// edge of the parent cell: the parent has to move too
	if t.border[last] && parent != "" {
		parent = adjacent(parent, row)
	}
	return parent + string(t.next[last])
}

// Neighbours returns the eight cells around id, all with id's elevation.
func Neighbours(id string) (model.Neighbours, error) {
	bare, elev, err := ExcludeElevation(id)
	if err != nil {
		return model.Neighbours{}, err
	}
	if err := validateBare(bare); err != nil {
		return model.Neighbours{}, err
	}

	n := adjacent(bare, rowNorth)
	s := adjacent(bare, rowSouth)
	with := func(v string) string { return AppendElevation(v, elev) }
	return model.Neighbours{
		N:  with(n),
		NE: with(adjacent(n, rowEast)),
		E:  with(adjacent(bare, rowEast)),
		SE: with(adjacent(s, rowEast)),
		S:  with(s),
		SW: with(adjacent(s, rowWest)),
		W:  with(adjacent(bare, rowWest)),
		NW: with(adjacent(n, rowWest)),
	}, nil
}
