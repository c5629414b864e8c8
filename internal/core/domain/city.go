package domain

// City is an entry in the fixed directory of browsable UK cities.
type City struct {
	Slug  string  `json:"slug"`
	Name  string  `json:"name"`
	Lat   float64 `json:"lat"`
	Lng   float64 `json:"lng"`
	Force string  `json:"force"`
}

// Coordinate returns the city centre.
func (c City) Coordinate() Coordinate {
	return Coordinate{Lat: c.Lat, Lng: c.Lng}
}

// Suggestion is a search-box completion.
type Suggestion struct {
	Name   string     `json:"name"`
	Coords [2]float64 `json:"coords"`
}

// Cities is the directory in display order. Scotland and Northern Ireland
// are absent because the upstream service does not publish street-level
// data for them.
var Cities = []City{
	{Slug: "london", Name: "London", Lat: 51.5074, Lng: -0.1278, Force: "metropolitan"},
	{Slug: "birmingham", Name: "Birmingham", Lat: 52.4862, Lng: -1.8904, Force: "west-midlands"},
	{Slug: "manchester", Name: "Manchester", Lat: 53.4808, Lng: -2.2426, Force: "greater-manchester"},
	{Slug: "leeds", Name: "Leeds", Lat: 53.8008, Lng: -1.5491, Force: "west-yorkshire"},
	{Slug: "liverpool", Name: "Liverpool", Lat: 53.4084, Lng: -2.9916, Force: "merseyside"},
	{Slug: "sheffield", Name: "Sheffield", Lat: 53.3811, Lng: -1.4701, Force: "south-yorkshire"},
	{Slug: "bristol", Name: "Bristol", Lat: 51.4545, Lng: -2.5879, Force: "avon-and-somerset"},
	{Slug: "newcastle", Name: "Newcastle upon Tyne", Lat: 54.9783, Lng: -1.6178, Force: "northumbria"},
	{Slug: "nottingham", Name: "Nottingham", Lat: 52.9548, Lng: -1.1581, Force: "nottinghamshire"},
	{Slug: "leicester", Name: "Leicester", Lat: 52.6369, Lng: -1.1398, Force: "leicestershire"},
	{Slug: "cardiff", Name: "Cardiff", Lat: 51.4816, Lng: -3.1791, Force: "south-wales"},
	{Slug: "southampton", Name: "Southampton", Lat: 50.9097, Lng: -1.4044, Force: "hampshire"},
	{Slug: "brighton", Name: "Brighton", Lat: 50.8225, Lng: -0.1372, Force: "sussex"},
	{Slug: "oxford", Name: "Oxford", Lat: 51.752, Lng: -1.2577, Force: "thames-valley"},
	{Slug: "cambridge", Name: "Cambridge", Lat: 52.2053, Lng: 0.1218, Force: "cambridgeshire"},
	{Slug: "york", Name: "York", Lat: 53.96, Lng: -1.0873, Force: "north-yorkshire"},
	{Slug: "norwich", Name: "Norwich", Lat: 52.6309, Lng: 1.2974, Force: "norfolk"},
	{Slug: "plymouth", Name: "Plymouth", Lat: 50.3755, Lng: -4.1427, Force: "devon-and-cornwall"},
	{Slug: "swansea", Name: "Swansea", Lat: 51.6214, Lng: -3.9436, Force: "south-wales"},
	{Slug: "coventry", Name: "Coventry", Lat: 52.4068, Lng: -1.5197, Force: "west-midlands"},
}
