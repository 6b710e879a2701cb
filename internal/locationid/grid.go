package locationid

import (
	"math"

	"github.com/mohammed-shakir/unl-locationid/internal/core/model"
)

// GridLines returns the horizontal then vertical lines needed to draw the
// cell grid of the given precision over b. Lines extend up to one cell past
// the north and east edges of b.
func GridLines(b model.Bounds, precision int) ([]model.Line, error) {
	for _, v := range [...]float64{b.SW.Lat, b.SW.Lon, b.NE.Lat, b.NE.Lon} {
		if math.IsNaN(v) {
			return nil, invalid("bounds must be numbers (%v)", b)
		}
	}
	if err := validatePrecision(precision); err != nil {
		return nil, err
	}

	latMin, latMax := b.SW.Lat, b.NE.Lat
	lonMin, lonMax := b.SW.Lon, b.NE.Lon

	swCell := encode(latMin, lonMin, precision)
	swBounds := mustBounds(swCell)

	var lines []model.Line

	cell, north := swCell, swBounds.NE.Lat
	for north <= latMax {
		lines = append(lines, model.Line{{lonMin, north}, {lonMax, north}})
		next := adjacent(cell, rowNorth)
		nextNorth := mustBounds(next).NE.Lat
		// wrapped over the pole
		if nextNorth <= north {
			break
		}
		cell, north = next, nextNorth
	}

	cell, east := swCell, swBounds.NE.Lon
	for east <= lonMax {
		lines = append(lines, model.Line{{east, latMin}, {east, latMax}})
		next := adjacent(cell, rowEast)
		nextEast := mustBounds(next).NE.Lon
		// wrapped over the antimeridian
		if nextEast <= east {
			break
		}
		cell, east = next, nextEast
	}

	return lines, nil
}

// GridLineCount estimates how many lines GridLines would return for b
// without walking the grid.
func GridLineCount(b model.Bounds, precision int) int {
	latDeg, lonDeg := CellSize(precision)
	rows := math.Floor((b.NE.Lat-b.SW.Lat)/latDeg) + 1
	cols := math.Floor((b.NE.Lon-b.SW.Lon)/lonDeg) + 1
	n := rows + cols
	if n < 0 || math.IsNaN(n) {
		return 0
	}
	if n > math.MaxInt32 {
		return math.MaxInt32
	}
	return int(n)
}
