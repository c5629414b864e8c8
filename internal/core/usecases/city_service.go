package usecases

import (
	"strings"

	"github.com/mathieuadams/ukcrimerepository/internal/core/domain"
)

const (
	minSuggestQuery = 3
	maxSuggestions  = 10
)

// CityService serves the fixed city directory.
type CityService struct {
	cities []domain.City
}

// NewCityService creates a CityService over cities, or over domain.Cities when nil.
func NewCityService(cities []domain.City) *CityService {
	if cities == nil {
		cities = domain.Cities
	}
	return &CityService{cities: cities}
}

// All returns every city in display order.
func (s *CityService) All() []domain.City {
	return s.cities
}

// Suggest returns cities whose name contains q, ignoring case. Queries
// shorter than three characters yield an empty list.
func (s *CityService) Suggest(q string) []domain.Suggestion {
	q = strings.ToLower(strings.TrimSpace(q))
	out := []domain.Suggestion{}
	if len([]rune(q)) < minSuggestQuery {
		return out
	}
	for _, c := range s.cities {
		if !strings.Contains(strings.ToLower(c.Name), q) {
			continue
		}
		out = append(out, domain.Suggestion{Name: c.Name, Coords: [2]float64{c.Lat, c.Lng}})
		if len(out) == maxSuggestions {
			break
		}
	}
	return out
}

// Lookup finds a city by slug or name, ignoring case.
func (s *CityService) Lookup(name string) (domain.City, error) {
	name = strings.TrimSpace(name)
	for _, c := range s.cities {
		if strings.EqualFold(c.Slug, name) || strings.EqualFold(c.Name, name) {
			return c, nil
		}
	}
	return domain.City{}, &domain.QueryError{Kind: domain.KindNotFound, Message: "city not found", Err: domain.ErrCityNotFound}
}
