package gameflow

import (
	"fmt"
	"strings"
)

// RandomSource supplies randomness for market events and maintenance scheduling.
// *math/rand.Rand satisfies it.
type RandomSource interface {
	// Float64 returns a value in [0, 1)
	Float64() float64
	// Intn returns a value in [0, n)
	Intn(n int) int
}

const (
	outageProbability    = 0.20
	fuelShockProbability = 0.15
	weatherProbability   = 0.25

	minShockMagnitude = 0.15
	maxShockMagnitude = 0.40
)

type EventType string

const (
	EventPlantOutage  EventType = "plant_outage"
	EventFuelShock    EventType = "fuel_shock"
	EventWeatherEvent EventType = "weather_event"
)

var (
	outageSeverities  = []string{"moderate", "severe"}
	shockFuels        = []string{"natural_gas", "coal"}
	shockDirections   = []string{"spike", "drop"}
	weatherTypes      = []string{"drought", "low_wind", "exceptional_solar"}
	weatherAffectedBy = []string{"solar", "wind", "hydro"}
)

// MarketEvent is an advisory event generated at the start of a planning year.
// Events are informational; they do not change clearing inputs.
type MarketEvent struct {
	Year        int       `json:"year"`
	Type        EventType `json:"type"`
	Description string    `json:"description"`
	Impact      string    `json:"impact"`

	Severity string `json:"severity,omitempty"`

	FuelAffected string  `json:"fuel_affected,omitempty"`
	Direction    string  `json:"direction,omitempty"`
	Magnitude    float64 `json:"magnitude,omitempty"`

	WeatherType          string   `json:"weather_type,omitempty"`
	AffectedTechnologies []string `json:"affected_technologies,omitempty"`
	DurationMonths       int      `json:"duration_months,omitempty"`
}

func choose(rng RandomSource, options []string) string {
	return options[rng.Intn(len(options))]
}

func humanize(s string) string {
	return strings.ReplaceAll(s, "_", " ")
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// GenerateMarketEvents rolls the yearly outage, fuel shock and weather events
func GenerateMarketEvents(year int, rng RandomSource) []MarketEvent {
	events := []MarketEvent{}

	if rng.Float64() < outageProbability {
		events = append(events, MarketEvent{
			Year:        year,
			Type:        EventPlantOutage,
			Description: fmt.Sprintf("Major plant outage affects capacity in %d", year),
			Impact:      "Reduced supply capacity for 2-4 weeks",
			Severity:    choose(rng, outageSeverities),
		})
	}

	if rng.Float64() < fuelShockProbability {
		fuel := choose(rng, shockFuels)
		direction := choose(rng, shockDirections)
		impact := "Lower operating costs for thermal plants"
		if direction == "spike" {
			impact = "Higher operating costs for thermal plants"
		}
		events = append(events, MarketEvent{
			Year:         year,
			Type:         EventFuelShock,
			Description:  fmt.Sprintf("%s prices %s unexpectedly", titleCase(humanize(fuel)), direction),
			Impact:       impact,
			FuelAffected: fuel,
			Direction:    direction,
			Magnitude:    minShockMagnitude + rng.Float64()*(maxShockMagnitude-minShockMagnitude),
		})
	}

	if rng.Float64() < weatherProbability {
		weather := choose(rng, weatherTypes)
		events = append(events, MarketEvent{
			Year:                 year,
			Type:                 EventWeatherEvent,
			Description:          fmt.Sprintf("Extreme weather: %s conditions", humanize(weather)),
			Impact:               "Altered renewable energy production patterns",
			WeatherType:          weather,
			AffectedTechnologies: append([]string(nil), weatherAffectedBy...),
			DurationMonths:       1 + rng.Intn(6),
		})
	}

	return events
}
