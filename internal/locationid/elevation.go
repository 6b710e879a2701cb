package locationid

import (
	"strconv"
	"strings"

	"github.com/mohammed-shakir/unl-locationid/internal/core/model"
)

const (
	floorMarker  = '@'
	heightMarker = '#'
)

// AppendElevation adds the elevation suffix to a bare locationId. Elevation
// number 0 means "no elevation" and is never written.
func AppendElevation(id string, e model.Elevation) string {
	if e.Number == 0 {
		return id
	}
	marker := byte(floorMarker)
	if e.Type == model.HeightInCm {
		marker = heightMarker
	}
	b := make([]byte, 0, len(id)+12)
	b = append(b, id...)
	b = append(b, marker)
	b = strconv.AppendInt(b, int64(e.Number), 10)
	return string(b)
}

// ExcludeElevation splits a locationId into its lower-cased bare part and
// its elevation. Without a suffix the elevation is floor 0.
func ExcludeElevation(id string) (string, model.Elevation, error) {
	if id == "" {
		return "", model.Elevation{}, invalid("empty locationId")
	}

	floors := strings.Count(id, string(floorMarker))
	heights := strings.Count(id, string(heightMarker))
	switch {
	case floors > 0 && heights > 0:
		return "", model.Elevation{}, invalid("locationId %q has both floor and height markers", id)
	case floors+heights > 1:
		return "", model.Elevation{}, invalid("locationId %q has more than one elevation marker", id)
	}

	var elev model.Elevation
	bare := id
	if i := strings.IndexAny(id, "@#"); i >= 0 {
		if id[i] == heightMarker {
			elev.Type = model.HeightInCm
		}
		n, err := strconv.ParseInt(id[i+1:], 10, 32)
		if err != nil {
			return "", model.Elevation{}, invalid("locationId %q has malformed elevation %q", id, id[i+1:])
		}
		elev.Number = int32(n)
		bare = id[:i]
	}
	return strings.ToLower(bare), elev, nil
}
