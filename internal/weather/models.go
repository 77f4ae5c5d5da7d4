package weather

import (
	"time"
)

// TimestampLayout is the on-disk text form of an observation timestamp.
const TimestampLayout = "2006-01-02 15:04:05"

// Observation is one weather reading for a city at a point in time.
// A zero Timestamp means the stored value could not be parsed.
type Observation struct {
	Timestamp    time.Time `json:"timestamp"`
	City         string    `json:"city"`
	TemperatureC float64   `json:"temperatureC"`
	Humidity     int       `json:"humidityPercent"`
	Condition    string    `json:"condition"`
}

// HasTimestamp reports whether the observation carries a usable timestamp.
func (o Observation) HasTimestamp() bool {
	return !o.Timestamp.IsZero()
}

// Reading is a freshly fetched observation plus the auxiliary fields that are
// shown on a card but never written to history.
type Reading struct {
	Observation

	FeelsLikeC  float64 `json:"feelsLikeC"`
	WindSpeedMS float64 `json:"windSpeedMs"`
	PressureHpa float64 `json:"pressureHpa"`
}

// Query identifies a single fetch: which city, with which credential.
type Query struct {
	Credential string
	City       string
}

// Session is the caller-held state for one interaction. It is passed by value
// into every call; the service keeps no copy of it.
type Session struct {
	Credential string
	Unit       Unit
	Cities     []string
}

// Query builds the fetch query for one of the session's cities.
func (s Session) Query(city string) Query {
	return Query{Credential: s.Credential, City: city}
}

// Card is the display projection of a Reading in the session's unit.
type Card struct {
	City        string  `json:"city"`
	Unit        Unit    `json:"unit"`
	Temperature float64 `json:"temperature"`
	FeelsLike   float64 `json:"feelsLike"`
	Humidity    int     `json:"humidityPercent"`
	WindSpeedMS float64 `json:"windSpeedMs"`
	PressureHpa float64 `json:"pressureHpa"`
	Condition   string  `json:"condition"`
}

// Card converts the reading for display in unit u.
func (r Reading) Card(u Unit) Card {
	return Card{
		City:        r.City,
		Unit:        u,
		Temperature: u.FromCelsius(r.TemperatureC),
		FeelsLike:   u.FromCelsius(r.FeelsLikeC),
		Humidity:    r.Humidity,
		WindSpeedMS: r.WindSpeedMS,
		PressureHpa: r.PressureHpa,
		Condition:   r.Condition,
	}
}

// Stats summarises the persisted state for a dashboard.
type Stats struct {
	TrackedCities   int `json:"trackedCities"`
	DisplayedCities int `json:"displayedCities"`
	RecordsStored   int `json:"recordsStored"`
}
