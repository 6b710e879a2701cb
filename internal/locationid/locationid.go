// Package locationid encodes coordinates into UNL locationIds and back.
//
// A locationId is a geohash-style string over a 32 character alphabet,
// optionally followed by an elevation suffix ("@3" for a floor, "#87" for a
// height in centimeters). Every function in this package is pure: there is
// no shared mutable state and no I/O, so all of them are safe for concurrent
// use.
package locationid

import (
	"errors"
	"fmt"
	"math"

	"github.com/mohammed-shakir/unl-locationid/internal/core/model"
)

const (
	// Alphabet is the base32 alphabet: digits and lowercase letters without a, i, l, o.
	Alphabet = "0123456789bcdefghjkmnpqrstuvwxyz"

	// DefaultPrecision is used when a caller does not pick one; about 4.8m x 4.8m.
	DefaultPrecision = 9
	// MaxPrecision is the longest bare id Encode and Children produce.
	MaxPrecision = 16
)

// ErrInvalidArgument is wrapped by every error returned from this package.
var ErrInvalidArgument = errors.New("invalid argument")

// alphabet position of each byte, -1 when not part of the alphabet
var alphabetIndex = func() [256]int8 {
	var t [256]int8
	for i := range t {
		t[i] = -1
	}
	for i := 0; i < len(Alphabet); i++ {
		t[Alphabet[i]] = int8(i)
	}
	return t
}()

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}

func validatePrecision(precision int) error {
	if precision < 1 || precision > MaxPrecision {
		return invalid("precision %d out of range (must be 1..%d)", precision, MaxPrecision)
	}
	return nil
}

func validateBare(bare string) error {
	if bare == "" {
		return invalid("empty locationId")
	}
	for i := 0; i < len(bare); i++ {
		if alphabetIndex[bare[i]] < 0 {
			return invalid("locationId %q has invalid character %q at %d", bare, bare[i], i)
		}
	}
	return nil
}

// Encode returns the locationId of lat/lon with the given number of
// characters. A non-zero elevation is appended as a suffix.
func Encode(lat, lon float64, precision int, elev model.Elevation) (string, error) {
	if math.IsNaN(lat) || math.IsNaN(lon) {
		return "", invalid("coordinates must be numbers (lat=%v lon=%v)", lat, lon)
	}
	if err := validatePrecision(precision); err != nil {
		return "", err
	}
	return AppendElevation(encode(lat, lon, precision), elev), nil
}

// EncodeAuto picks the shortest precision (up to DefaultPrecision) whose
// decoded centre is exactly lat/lon, falling back to DefaultPrecision.
func EncodeAuto(lat, lon float64, elev model.Elevation) (string, error) {
	if math.IsNaN(lat) || math.IsNaN(lon) {
		return "", invalid("coordinates must be numbers (lat=%v lon=%v)", lat, lon)
	}
	for p := 1; p <= DefaultPrecision; p++ {
		id := encode(lat, lon, p)
		c := center(mustBounds(id))
		if c.Lat == lat && c.Lon == lon {
			return AppendElevation(id, elev), nil
		}
	}
	return AppendElevation(encode(lat, lon, DefaultPrecision), elev), nil
}

// bisection walk; even bits split longitude, odd bits latitude
func encode(lat, lon float64, precision int) string {
	latMin, latMax := -90.0, 90.0
	lonMin, lonMax := -180.0, 180.0

	out := make([]byte, 0, precision)
	idx, bit := 0, 0
	evenBit := true

	for len(out) < precision {
		if evenBit {
			mid := (lonMin + lonMax) / 2
			if lon >= mid {
				idx = idx<<1 | 1
				lonMin = mid
			} else {
				idx <<= 1
				lonMax = mid
			}
		} else {
			mid := (latMin + latMax) / 2
			if lat >= mid {
				idx = idx<<1 | 1
				latMin = mid
			} else {
				idx <<= 1
				latMax = mid
			}
		}
		evenBit = !evenBit

		bit++
		if bit == 5 {
			out = append(out, Alphabet[idx])
			bit, idx = 0, 0
		}
	}
	return string(out)
}

// Bounds returns the south-west/north-east corners of the cell and the
// elevation carried by the locationId.
func Bounds(id string) (model.Bounds, model.Elevation, error) {
	bare, elev, err := ExcludeElevation(id)
	if err != nil {
		return model.Bounds{}, model.Elevation{}, err
	}
	if err := validateBare(bare); err != nil {
		return model.Bounds{}, model.Elevation{}, err
	}
	return mustBounds(bare), elev, nil
}

// mustBounds expects a validated bare id
func mustBounds(bare string) model.Bounds {
	latMin, latMax := -90.0, 90.0
	lonMin, lonMax := -180.0, 180.0
	evenBit := true

	for i := 0; i < len(bare); i++ {
		idx := alphabetIndex[bare[i]]
		for n := 4; n >= 0; n-- {
			set := (idx>>n)&1 == 1
			if evenBit {
				mid := (lonMin + lonMax) / 2
				if set {
					lonMin = mid
				} else {
					lonMax = mid
				}
			} else {
				mid := (latMin + latMax) / 2
				if set {
					latMin = mid
				} else {
					latMax = mid
				}
			}
			evenBit = !evenBit
		}
	}
	return model.Bounds{
		SW: model.Point{Lat: latMin, Lon: lonMin},
		NE: model.Point{Lat: latMax, Lon: lonMax},
	}
}

// Decode returns the approximate centre of the cell, its elevation and its
// bounds. The centre is rounded to floor(2-log10(Δ)) decimals per axis.
func Decode(id string) (model.Decoded, error) {
	b, elev, err := Bounds(id)
	if err != nil {
		return model.Decoded{}, err
	}
	return model.Decoded{Point: center(b), Elevation: elev, Bounds: b}, nil
}

func center(b model.Bounds) model.Point {
	lat := (b.SW.Lat + b.NE.Lat) / 2
	lon := (b.SW.Lon + b.NE.Lon) / 2
	return model.Point{
		Lat: roundHalfDown(lat, decimalsFor(b.NE.Lat-b.SW.Lat)),
		Lon: roundHalfDown(lon, decimalsFor(b.NE.Lon-b.SW.Lon)),
	}
}

func decimalsFor(span float64) int {
	return int(math.Floor(2 - math.Log10(span)))
}

// CellSize returns the height and width in degrees of a cell with the given precision.
func CellSize(precision int) (latDeg, lonDeg float64) {
	bits := 5 * precision
	lonBits := (bits + 1) / 2
	latBits := bits / 2
	return math.Ldexp(180, -latBits), math.Ldexp(360, -lonBits)
}

// Valid reports whether id parses as a locationId.
func Valid(id string) bool {
	_, _, err := Bounds(id)
	return err == nil
}

// Parent truncates id to precision characters, keeping its elevation.
func Parent(id string, precision int) (string, error) {
	bare, elev, err := ExcludeElevation(id)
	if err != nil {
		return "", err
	}
	if err := validateBare(bare); err != nil {
		return "", err
	}
	if precision < 1 || precision > len(bare) {
		return "", invalid("parent precision %d must be in 1..%d", precision, len(bare))
	}
	return AppendElevation(bare[:precision], elev), nil
}

// Children returns the 32 cells one character longer than id, in alphabet order.
func Children(id string) (model.Cells, error) {
	bare, elev, err := ExcludeElevation(id)
	if err != nil {
		return nil, err
	}
	if err := validateBare(bare); err != nil {
		return nil, err
	}
	if len(bare) >= MaxPrecision {
		return nil, invalid("locationId %q is already at max precision", bare)
	}
	out := make(model.Cells, 0, len(Alphabet))
	for i := 0; i < len(Alphabet); i++ {
		out = append(out, AppendElevation(bare+Alphabet[i:i+1], elev))
	}
	return out, nil
}
