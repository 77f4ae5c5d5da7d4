package weather

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func sample() []Observation {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	var log []Observation
	for i := 0; i < 10; i++ {
		log = append(log, Observation{Timestamp: base.Add(time.Duration(i) * time.Hour), City: "Paris", TemperatureC: float64(i)})
		if i%3 == 0 {
			log = append(log, Observation{Timestamp: base, City: "paris", TemperatureC: -1})
		}
	}
	return log
}

func TestTrend_LastNInAppendOrder(t *testing.T) {
	got := Trend(sample(), "Paris", DefaultTrendLimit)
	assert.Len(t, got, 7)
	for i, o := range got {
		assert.Equal(t, "Paris", o.City)
		assert.Equal(t, float64(i+3), o.TemperatureC)
	}
}

func TestTrend_FewerThanLimit(t *testing.T) {
	got := Trend(sample(), "paris", 7)
	assert.Len(t, got, 4)
}

func TestTrend_NoMatch(t *testing.T) {
	got := Trend(sample(), "PARIS", 7)
	assert.NotNil(t, got)
	assert.Empty(t, got)

	assert.Empty(t, Trend(nil, "Paris", 7))
}

func TestTrend_NonPositiveLimit(t *testing.T) {
	assert.Empty(t, Trend(sample(), "Paris", 0))
	assert.Empty(t, Trend(sample(), "Paris", -3))
}

func TestTrend_KeepsInsertionOrderOverTimestamps(t *testing.T) {
	now := time.Now()
	log := []Observation{
		{Timestamp: now, City: "Rome", TemperatureC: 1},
		{Timestamp: now.Add(-48 * time.Hour), City: "Rome", TemperatureC: 2}, // backfilled
	}
	got := Trend(log, "Rome", 1)
	assert.Len(t, got, 1)
	assert.Equal(t, 2.0, got[0].TemperatureC)
}

func TestCities(t *testing.T) {
	assert.Equal(t, []string{"Paris", "paris"}, Cities(sample()))
	assert.Empty(t, Cities(nil))
}
