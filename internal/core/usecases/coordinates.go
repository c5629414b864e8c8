package usecases

import (
	"math"
	"strconv"
	"strings"

	"github.com/mathieuadams/ukcrimerepository/internal/core/domain"
)

// ValidateCoordinate parses caller-supplied latitude and longitude text.
// It performs no I/O.
func ValidateCoordinate(latText, lngText string) (domain.Coordinate, error) {
	lat, ok := parseFinite(latText)
	if !ok {
		return domain.Coordinate{}, &domain.ValidationError{Field: "lat", Value: latText, Err: domain.ErrInvalidFormat}
	}
	lng, ok := parseFinite(lngText)
	if !ok {
		return domain.Coordinate{}, &domain.ValidationError{Field: "lng", Value: lngText, Err: domain.ErrInvalidFormat}
	}
	if lat < -90 || lat > 90 {
		return domain.Coordinate{}, &domain.ValidationError{Field: "lat", Value: latText, Err: domain.ErrLatitudeOutOfRange}
	}
	if lng < -180 || lng > 180 {
		return domain.Coordinate{}, &domain.ValidationError{Field: "lng", Value: lngText, Err: domain.ErrLongitudeOutOfRange}
	}
	return domain.Coordinate{Lat: lat, Lng: lng}, nil
}

func parseFinite(s string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// formatCoordinate renders c in the text form ValidateCoordinate accepts.
func formatCoordinate(c domain.Coordinate) (lat, lng string) {
	return strconv.FormatFloat(c.Lat, 'f', -1, 64), strconv.FormatFloat(c.Lng, 'f', -1, 64)
}
