// Package model defines core domain types shared across the service.
package model

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

type Point struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Bounds is an axis-aligned box given by its south-west and north-east corners.
type Bounds struct {
	SW Point `json:"sw"`
	NE Point `json:"ne"`
}

// String representation matching the bbox query parameter (w,s,e,n)
func (b Bounds) String() string {
	return fmt.Sprintf("%.6f,%.6f,%.6f,%.6f", b.SW.Lon, b.SW.Lat, b.NE.Lon, b.NE.Lat)
}

// ParseBounds reads "w,s,e,n" in degrees, the form produced by String.
func ParseBounds(raw string) (Bounds, error) {
	parts := strings.Split(raw, ",")
	if len(parts) != 4 {
		return Bounds{}, errors.New("expected 4 comma-separated values: w,s,e,n")
	}
	var v [4]float64
	for i, name := range [...]string{"w", "s", "e", "n"} {
		f, err := strconv.ParseFloat(strings.TrimSpace(parts[i]), 64)
		if err != nil {
			return Bounds{}, fmt.Errorf("%s: %w", name, err)
		}
		v[i] = f
	}
	w, s, e, n := v[0], v[1], v[2], v[3]

	if !(w >= -180 && w <= 180 && e >= -180 && e <= 180) {
		return Bounds{}, errors.New("longitude must be in [-180,180]")
	}
	if !(s >= -90 && s <= 90 && n >= -90 && n <= 90) {
		return Bounds{}, errors.New("latitude must be in [-90,90]")
	}
	if e < w || n < s {
		return Bounds{}, errors.New("coordinates must satisfy e>=w and n>=s")
	}
	return Bounds{SW: Point{Lat: s, Lon: w}, NE: Point{Lat: n, Lon: e}}, nil
}

func (b Bounds) Contains(p Point) bool {
	return p.Lat >= b.SW.Lat && p.Lat <= b.NE.Lat &&
		p.Lon >= b.SW.Lon && p.Lon <= b.NE.Lon
}

func (b Bounds) ContainsBounds(o Bounds) bool {
	return b.Contains(o.SW) && b.Contains(o.NE)
}

type ElevationType uint8

const (
	Floor ElevationType = iota
	HeightInCm
)

func (t ElevationType) String() string {
	if t == HeightInCm {
		return "heightincm"
	}
	return "floor"
}

func ParseElevationType(s string) (ElevationType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "floor":
		return Floor, nil
	case "heightincm":
		return HeightInCm, nil
	default:
		return Floor, fmt.Errorf("unknown elevation type %q (must be floor or heightincm)", s)
	}
}

func (t ElevationType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t *ElevationType) UnmarshalText(b []byte) error {
	v, err := ParseElevationType(string(b))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// Elevation is a floor index or a height in centimeters. The zero value is
// floor 0, which is also what "no elevation" means on the wire.
type Elevation struct {
	Number int32         `json:"elevation"`
	Type   ElevationType `json:"elevationType"`
}

type Decoded struct {
	Point     Point     `json:"point"`
	Elevation Elevation `json:"elevation"`
	Bounds    Bounds    `json:"bounds"`
}

type Neighbours struct {
	N  string `json:"n"`
	NE string `json:"ne"`
	E  string `json:"e"`
	SE string `json:"se"`
	S  string `json:"s"`
	SW string `json:"sw"`
	W  string `json:"w"`
	NW string `json:"nw"`
}

// Line is a grid segment as [[lonA,latA],[lonB,latB]].
type Line [2][2]float64

type Cells []string

// Location is what the remote words service knows about a cell.
type Location struct {
	Point      Point     `json:"point"`
	Elevation  Elevation `json:"elevation"`
	Bounds     Bounds    `json:"bounds"`
	LocationID string    `json:"locationId"`
	Words      string    `json:"words"`
}
