package domain

// Coordinate represents a WGS 84 point supplied by a caller.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Bounds represents the bounding box enclosing a set of crime locations.
// No antimeridian handling: longitude extremes are plain min/max.
type Bounds struct {
	North float64 `json:"north"`
	South float64 `json:"south"`
	East  float64 `json:"east"`
	West  float64 `json:"west"`
}
