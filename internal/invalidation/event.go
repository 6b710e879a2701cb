// Package invalidation describes the events that tell the service a words
// assignment changed upstream and cached lookups must be dropped.
package invalidation

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mohammed-shakir/unl-locationid/internal/core/model"
	"github.com/mohammed-shakir/unl-locationid/internal/locationid"
)

const (
	OpRemap  = "remap"
	OpDelete = "delete"
)

type Event struct {
	Version     int       `json:"version"`
	ID          string    `json:"id,omitempty"`
	Op          string    `json:"op"`
	TS          time.Time `json:"ts"`
	BBox        *BBox     `json:"bbox,omitempty"`
	LocationIDs []string  `json:"location_ids,omitempty"`
	Words       []string  `json:"words,omitempty"`
	Source      string    `json:"source,omitempty"`
}

// BBox is west, south, east, north in degrees.
type BBox struct {
	W float64 `json:"w"`
	S float64 `json:"s"`
	E float64 `json:"e"`
	N float64 `json:"n"`
}

func (b BBox) Bounds() model.Bounds {
	return model.Bounds{
		SW: model.Point{Lat: b.S, Lon: b.W},
		NE: model.Point{Lat: b.N, Lon: b.E},
	}
}

func (e Event) Validate() error {
	if e.Version != 1 {
		return errors.New("version must be 1")
	}
	switch e.Op {
	case OpRemap, OpDelete:
	default:
		return fmt.Errorf("op must be %s|%s", OpRemap, OpDelete)
	}
	if e.TS.IsZero() {
		return errors.New("ts is required")
	}
	if e.BBox == nil && len(e.LocationIDs) == 0 && len(e.Words) == 0 {
		return errors.New("at least one of bbox, location_ids or words is required")
	}
	if e.BBox != nil {
		bb := *e.BBox
		if !(bb.W >= -180 && bb.W <= 180 && bb.E >= -180 && bb.E <= 180) {
			return errors.New("bbox longitude out of range")
		}
		if !(bb.S >= -90 && bb.S <= 90 && bb.N >= -90 && bb.N <= 90) {
			return errors.New("bbox latitude out of range")
		}
		if !(bb.E >= bb.W && bb.N >= bb.S) {
			return errors.New("bbox must satisfy e>=w and n>=s")
		}
	}
	for _, id := range e.LocationIDs {
		if !locationid.Valid(id) {
			return fmt.Errorf("invalid locationId %q", id)
		}
	}
	for _, w := range e.Words {
		if strings.TrimSpace(w) == "" {
			return errors.New("words entries must not be empty")
		}
	}
	return nil
}
