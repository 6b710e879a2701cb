// Package mapper converts a bounding box into the set of cells covering it.
package mapper

import (
	"github.com/mohammed-shakir/unl-locationid/internal/core/model"
)

type Interface interface {
	CellsForBounds(b model.Bounds, precision int) (model.Cells, error)
}
