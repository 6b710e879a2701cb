// Package unlmapper covers bounding boxes with locationId cells.
package unlmapper

import (
	"fmt"
	"math"
	"sort"

	"github.com/mohammed-shakir/unl-locationid/internal/core/model"
	"github.com/mohammed-shakir/unl-locationid/internal/locationid"
)

const DefaultMaxCells = 4096

// ErrTooManyCells is returned when a box would need more than MaxCells cells.
var ErrTooManyCells = fmt.Errorf("%w: too many cells", locationid.ErrInvalidArgument)

type Mapper struct {
	MaxCells int
}

func New(maxCells int) *Mapper {
	if maxCells <= 0 {
		maxCells = DefaultMaxCells
	}
	return &Mapper{MaxCells: maxCells}
}

// CellsForBounds returns the sorted set of cells of the given precision that
// intersect b, walking east along each row and then one row north.
func (m *Mapper) CellsForBounds(b model.Bounds, precision int) (model.Cells, error) {
	if err := validateBounds(b); err != nil {
		return nil, err
	}
	if est := estimate(b, precision); est > m.MaxCells {
		return nil, fmt.Errorf("%w: %d cells at precision %d (max %d)", ErrTooManyCells, est, precision, m.MaxCells)
	}

	rowStart, err := locationid.Encode(b.SW.Lat, b.SW.Lon, precision, model.Elevation{})
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	out := make([]string, 0, 16)
	for {
		rowBounds, _, err := locationid.Bounds(rowStart)
		if err != nil {
			return nil, err
		}

		cell, west := rowStart, rowBounds.SW.Lon
		for {
			if _, ok := seen[cell]; !ok {
				seen[cell] = struct{}{}
				out = append(out, cell)
			}
			if len(out) > m.MaxCells {
				return nil, fmt.Errorf("%w: more than %d cells", ErrTooManyCells, m.MaxCells)
			}
			cb, _, _ := locationid.Bounds(cell)
			if cb.NE.Lon > b.NE.Lon {
				break
			}
			next, err := locationid.Adjacent(cell, locationid.East)
			if err != nil {
				return nil, err
			}
			nb, _, _ := locationid.Bounds(next)
			// antimeridian
			if nb.SW.Lon <= west {
				break
			}
			cell, west = next, nb.SW.Lon
		}

		if rowBounds.NE.Lat > b.NE.Lat {
			break
		}
		next, err := locationid.Adjacent(rowStart, locationid.North)
		if err != nil {
			return nil, err
		}
		nb, _, _ := locationid.Bounds(next)
		// pole
		if nb.SW.Lat <= rowBounds.SW.Lat {
			break
		}
		rowStart = next
	}

	sort.Strings(out)
	return out, nil
}

func (m *Mapper) ToParent(cell string, precision int) (string, error) {
	return locationid.Parent(cell, precision)
}

// ToChildren expands cell down to the given precision, at most two levels
// (1024 cells) below the cell itself.
func (m *Mapper) ToChildren(cell string, precision int) (model.Cells, error) {
	bare, elev, err := locationid.ExcludeElevation(cell)
	if err != nil {
		return nil, err
	}
	if !locationid.Valid(bare) {
		return nil, fmt.Errorf("%w: invalid cell %q", locationid.ErrInvalidArgument, cell)
	}
	if precision < len(bare) || precision > len(bare)+2 || precision > locationid.MaxPrecision {
		return nil, fmt.Errorf("%w: child precision %d must be in %d..%d",
			locationid.ErrInvalidArgument, precision, len(bare), min(len(bare)+2, locationid.MaxPrecision))
	}

	level := model.Cells{bare}
	for p := len(bare); p < precision; p++ {
		next := make(model.Cells, 0, len(level)*len(locationid.Alphabet))
		for _, c := range level {
			kids, err := locationid.Children(c)
			if err != nil {
				return nil, err
			}
			next = append(next, kids...)
		}
		level = next
	}

	out := make(model.Cells, len(level))
	for i, c := range level {
		out[i] = locationid.AppendElevation(c, elev)
	}
	sort.Strings(out)
	return out, nil
}

func validateBounds(b model.Bounds) error {
	for _, v := range [...]float64{b.SW.Lat, b.SW.Lon, b.NE.Lat, b.NE.Lon} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: bounds must be finite (%v)", locationid.ErrInvalidArgument, b)
		}
	}
	if b.SW.Lat > b.NE.Lat || b.SW.Lon > b.NE.Lon {
		return fmt.Errorf("%w: south-west corner must not exceed north-east corner (%v)", locationid.ErrInvalidArgument, b)
	}
	return nil
}

func estimate(b model.Bounds, precision int) int {
	if precision < 1 || precision > locationid.MaxPrecision {
		// Encode reports the precision error
		return 0
	}
	latDeg, lonDeg := locationid.CellSize(precision)
	n := (math.Floor((b.NE.Lat-b.SW.Lat)/latDeg) + 2) * (math.Floor((b.NE.Lon-b.SW.Lon)/lonDeg) + 2)
	if n > math.MaxInt32 {
		return math.MaxInt32
	}
	return int(n)
}
