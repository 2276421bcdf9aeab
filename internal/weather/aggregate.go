package weather

import "time"

// AggregateReadings combines multiple provider readings into a single WeatherSnapshot.
// Numeric fields are averaged; conditions are selected by majority (or first if tied).
func AggregateReadings(loc Location, readings []ProviderReading) WeatherSnapshot {
	if len(readings) == 0 {
		return WeatherSnapshot{
			Location:  loc,
			Timestamp: time.Now().UTC(),
			Condition: ConditionUnknown,
		}
	}

	var (
		sumTemp     float64
		sumHumidity float64
		sumWind     float64
		sumPressure float64
		sumPrecip   float64
	)

	conditionCounts := make(map[Condition]int)
	providers := make([]ProviderContribution, 0, len(readings))
	var newestTS time.Time

	for _, r := range readings {
		sumTemp += r.TemperatureC
		sumHumidity += r.HumidityPct
		sumWind += r.WindSpeedMS
		sumPressure += r.PressureHpa
		sumPrecip += r.PrecipMm

		conditionCounts[r.Condition]++

		if r.Timestamp.After(newestTS) {
			newestTS = r.Timestamp
		}

		providers = append(providers, ProviderContribution{
			ProviderName: r.ProviderName,
			Timestamp:    r.Timestamp,
		})
	}

	n := float64(len(readings))

	// Pick majority condition. Walk readings in order so ties go to the first provider.
	bestCond := ConditionUnknown
	bestCount := 0
	for _, r := range readings {
		if count := conditionCounts[r.Condition]; count > bestCount {
			bestCount = count
			bestCond = r.Condition
		}
	}

	// Description, place name and coordinates come from the first reading that has them.
	var description, name string
	resolved := loc
	for _, r := range readings {
		if description == "" && r.Condition == bestCond {
			description = r.Description
		}
		if name == "" {
			name = r.LocationName
		}
		if !resolved.HasCoordinates() && r.Lat != nil && r.Lon != nil {
			resolved.Lat, resolved.Lon = r.Lat, r.Lon
		}
	}

	if newestTS.IsZero() {
		newestTS = time.Now().UTC()
	}

	return WeatherSnapshot{
		Location:     resolved,
		LocationName: name,
		Timestamp:    newestTS,
		Temperature:  sumTemp / n,
		Humidity:     sumHumidity / n,
		WindSpeed:    sumWind / n,
		Pressure:     sumPressure / n,
		PrecipMM:     sumPrecip / n,
		Condition:    bestCond,
		Description:  description,
		Providers:    providers,
	}
}
