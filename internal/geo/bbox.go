package geo

import (
	"math"

	"github.com/YusovID/donor-match-service/internal/domain"
)

// Box is a latitude/longitude rectangle that contains every point within some
// radius of a centre. It is only a coarse pre-filter: points inside the box can
// still be farther than the radius.
type Box struct {
	MinLat, MaxLat float64
	MinLon, MaxLon float64
}

// FullLongitude reports whether the box spans every meridian, in which case a
// longitude predicate filters nothing.
func (b Box) FullLongitude() bool {
	return b.MinLon <= -180 && b.MaxLon >= 180
}

// BoundingBox returns the box around center for radiusKm. Boxes that would
// cross a pole or the antimeridian are widened to every longitude.
func BoundingBox(center domain.Coordinate, radiusKm float64) (Box, error) {
	if err := Validate(center); err != nil {
		return Box{}, err
	}

	if radiusKm < 0 || math.IsNaN(radiusKm) {
		radiusKm = 0
	}

	angular := radiusKm / EarthRadiusKm
	if angular >= math.Pi {
		return Box{MinLat: -90, MaxLat: 90, MinLon: -180, MaxLon: 180}, nil
	}

	dLat := degrees(angular)
	box := Box{
		MinLat: center.Latitude - dLat,
		MaxLat: center.Latitude + dLat,
	}

	if box.MinLat <= -90 || box.MaxLat >= 90 {
		box.MinLat = math.Max(box.MinLat, -90)
		box.MaxLat = math.Min(box.MaxLat, 90)
		box.MinLon, box.MaxLon = -180, 180

		return box, nil
	}

	dLon := degrees(math.Asin(math.Sin(angular) / math.Cos(radians(center.Latitude))))
	box.MinLon = center.Longitude - dLon
	box.MaxLon = center.Longitude + dLon

	if box.MinLon < -180 || box.MaxLon > 180 {
		box.MinLon, box.MaxLon = -180, 180
	}

	return box, nil
}
