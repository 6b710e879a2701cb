package unlmapper

import (
	"github.com/golang/geo/r1"
	"github.com/golang/geo/s1"
	"github.com/golang/geo/s2"

	"github.com/mohammed-shakir/unl-locationid/internal/core/model"
)

const earthRadiusKm = 6371.0088

// AreaKm2 is the area of b on a spherical earth of mean radius.
func AreaKm2(b model.Bounds) float64 {
	rect := s2.Rect{
		Lat: r1.Interval{Lo: radians(b.SW.Lat), Hi: radians(b.NE.Lat)},
		Lng: s1.Interval{Lo: radians(b.SW.Lon), Hi: radians(b.NE.Lon)},
	}
	return rect.Area() * earthRadiusKm * earthRadiusKm
}

func radians(deg float64) float64 { return (s1.Angle(deg) * s1.Degree).Radians() }
