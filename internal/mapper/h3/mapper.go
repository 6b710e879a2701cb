package h3mapper

import (
	"errors"
	"fmt"
	"sort"

	h3 "github.com/uber/h3-go/v4"

	"github.com/mohammed-shakir/unl-locationid/internal/core/model"
	"github.com/mohammed-shakir/unl-locationid/internal/locationid"
)

// ErrInvalidResolution wraps locationid.ErrInvalidArgument so callers can
// treat it like any other bad input.
var ErrInvalidResolution = fmt.Errorf("%w: invalid H3 resolution", locationid.ErrInvalidArgument)

type Mapper struct{}

func New() *Mapper { return &Mapper{} }

// CellsForBounds returns the H3 cells at resolution res whose centres fall
// inside b. The precision argument of mapper.Interface is the H3 resolution.
func (m *Mapper) CellsForBounds(b model.Bounds, res int) (model.Cells, error) {
	if err := validateRes(res); err != nil {
		return nil, err
	}
	outer := h3.GeoLoop{
		{Lat: b.SW.Lat, Lng: b.SW.Lon},
		{Lat: b.SW.Lat, Lng: b.NE.Lon},
		{Lat: b.NE.Lat, Lng: b.NE.Lon},
		{Lat: b.NE.Lat, Lng: b.SW.Lon},
	}
	return polyfill(outer, res)
}

// CellsForLocationID maps a locationId cell to H3 cells at resolution res.
// A cell too small to contain any H3 centre maps to the single H3 cell
// holding its decoded point.
func (m *Mapper) CellsForLocationID(id string, res int) (model.Cells, error) {
	d, err := locationid.Decode(id)
	if err != nil {
		return nil, err
	}
	cells, err := m.CellsForBounds(d.Bounds, res)
	if err != nil {
		return nil, err
	}
	if len(cells) > 0 {
		return cells, nil
	}
	c, err := h3.LatLngToCell(h3.LatLng{Lat: d.Point.Lat, Lng: d.Point.Lon}, res)
	if err != nil {
		return nil, fmt.Errorf("h3 cell for %s: %w", id, err)
	}
	return model.Cells{c.String()}, nil
}

func validateRes(res int) error {
	if res < 0 || res > 15 {
		return fmt.Errorf("%w %d (must be 0..15)", ErrInvalidResolution, res)
	}
	return nil
}

// polyfill computes unique cells and returns them sorted for determinism.
func polyfill(outer h3.GeoLoop, res int) (model.Cells, error) {
	if len(outer) < 4 {
		return nil, errors.New("outer ring has < 4 vertices")
	}
	indexes, err := h3.PolygonToCells(h3.GeoPolygon{GeoLoop: outer}, res)
	if err != nil {
		return nil, fmt.Errorf("h3 polyfill: %w", err)
	}

	out := make([]string, 0, len(indexes))
	seen := make(map[string]struct{}, len(indexes))
	for _, idx := range indexes {
		s := idx.String()
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	sort.Strings(out)
	return out, nil
}
