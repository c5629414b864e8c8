package domain

import (
	"math"
	"strconv"
	"strings"
)

// UnknownCategory is used for records that arrive without a category.
const UnknownCategory = "unknown"

// ReportingDate is a "YYYY-MM" month token understood by the upstream API.
type ReportingDate = string

// AvailableDate is one entry of the upstream dates listing, most recent first.
type AvailableDate struct {
	Date          ReportingDate `json:"date"`
	StopAndSearch []string      `json:"stop-and-search,omitempty"`
}

// Street is the anonymised street a crime was snapped to.
type Street struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// CrimeLocation holds the snapped point; coordinates arrive as numeric strings.
type CrimeLocation struct {
	Latitude  string `json:"latitude"`
	Longitude string `json:"longitude"`
	Street    Street `json:"street"`
}

// Outcome is the latest outcome recorded against a crime, if any.
type Outcome struct {
	Category string `json:"category"`
	Date     string `json:"date"`
}

// CrimeRecord is a street-level crime as returned by the upstream service.
// It is passed through to clients unchanged.
type CrimeRecord struct {
	ID              int64          `json:"id"`
	PersistentID    string         `json:"persistent_id"`
	Category        string         `json:"category"`
	Month           string         `json:"month"`
	LocationType    string         `json:"location_type"`
	LocationSubtype string         `json:"location_subtype"`
	Context         string         `json:"context"`
	Location        *CrimeLocation `json:"location"`
	OutcomeStatus   *Outcome       `json:"outcome_status"`
}

// CategoryOrUnknown returns the record category, or UnknownCategory when blank.
func (r CrimeRecord) CategoryOrUnknown() string {
	if strings.TrimSpace(r.Category) == "" {
		return UnknownCategory
	}
	return r.Category
}

// Point parses the record location. ok is false when either coordinate is
// missing or not a finite number.
func (r CrimeRecord) Point() (p Coordinate, ok bool) {
	if r.Location == nil {
		return Coordinate{}, false
	}
	lat, ok := parseFinite(r.Location.Latitude)
	if !ok {
		return Coordinate{}, false
	}
	lng, ok := parseFinite(r.Location.Longitude)
	if !ok {
		return Coordinate{}, false
	}
	return Coordinate{Lat: lat, Lng: lng}, true
}

func parseFinite(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// ForceRecord is a police force listing entry.
type ForceRecord struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// CategoryHistogram counts crimes per category.
type CategoryHistogram map[string]int

// Total returns the sum of all counts.
func (h CategoryHistogram) Total() int {
	n := 0
	for _, c := range h {
		n += c
	}
	return n
}

// CrimeQueryResult is the aggregate answer to a crimes-near-a-point query.
type CrimeQueryResult struct {
	Location   Coordinate        `json:"location"`
	Date       ReportingDate     `json:"date"`
	Count      int               `json:"count"`
	Crimes     []CrimeRecord     `json:"crimes"`
	Categories CategoryHistogram `json:"categories"`
	Bounds     *Bounds           `json:"bounds"`
	Sample     *CrimeRecord      `json:"sample"`
	Message    string            `json:"message,omitempty"`
}
