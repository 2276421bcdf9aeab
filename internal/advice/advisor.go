// Package advice turns weather, watering schedule and an optional soil-moisture reading
// into a single watering recommendation. It has no side effects.
package advice

import (
	"fmt"
	"time"

	"github.com/i474232898/plant-care/internal/common"
	"github.com/i474232898/plant-care/internal/weather"
)

// Fixed thresholds shared with the task sync engine.
const (
	RainSkipThresholdMM   = 2.0
	HotDayC               = 34.0
	CoolDayC              = 18.0
	DefaultWaterEveryDays = 7
	CheckSoilInDays       = 1

	MoistureLowPct     = 25.0
	MoistureCautionPct = 40.0
	// DroughtTolerantShift lowers both moisture thresholds for cacti and succulents.
	DroughtTolerantShift = 5.0
)

// Action is the recommended step.
type Action string

const (
	ActionWaterNow  Action = "WATER_NOW"
	ActionCheckSoil Action = "CHECK_SOIL"
	ActionSkipToday Action = "SKIP_TODAY"
)

// Advice is a computed recommendation; it is never persisted.
type Advice struct {
	Action     Action    `json:"action"`
	Message    string    `json:"message"`
	Notes      []string  `json:"notes"`
	NextCheck  time.Time `json:"nextCheck"`
	Confidence float64   `json:"confidence"`
}

// Input is everything the advisor knows about one plant. Nil pointers mean "unknown".
type Input struct {
	Weather         *weather.WeatherSnapshot
	LastWatered     *time.Time
	WaterEveryDays  *int
	SoilMoisturePct *float64
	DroughtTolerant bool
}

// Advisor computes Advice. The zero value uses the system clock.
type Advisor struct {
	clock common.Clock
}

// NewAdvisor returns an Advisor reading "today" from clock (nil = system clock).
func NewAdvisor(clock common.Clock) *Advisor {
	return &Advisor{clock: clock}
}

func (a *Advisor) today() time.Time {
	if a == nil {
		return common.Today(nil)
	}
	return common.Today(a.clock)
}

// Interval returns the schedule interval, falling back to the default for nil or non-positive values.
func Interval(waterEveryDays *int) int {
	if waterEveryDays == nil || *waterEveryDays <= 0 {
		return DefaultWaterEveryDays
	}
	return *waterEveryDays
}

// Advise applies, in order: soil moisture, recent rain, schedule (with heat bias), not-due.
// The first matching branch wins.
func (a *Advisor) Advise(in Input) Advice {
	today := a.today()
	interval := Interval(in.WaterEveryDays)

	daysSince := interval
	if in.LastWatered != nil {
		daysSince = max(0, common.DaysBetween(*in.LastWatered, today))
	}
	dueBySchedule := daysSince >= interval
	w := in.Weather

	adv := Advice{Notes: []string{}}

	if in.SoilMoisturePct != nil {
		moisture := *in.SoilMoisturePct
		low, caution := MoistureLowPct, MoistureCautionPct
		if in.DroughtTolerant {
			low -= DroughtTolerantShift
			caution -= DroughtTolerantShift
		}
		adv.Notes = append(adv.Notes, fmt.Sprintf("Soil moisture %s%%.", fmtPct(moisture)))
		adv.Notes = append(adv.Notes, weatherNotes(w)...)

		switch {
		case moisture <= low:
			adv.Action = ActionWaterNow
			adv.Message = "Soil moisture is low — water now."
			adv.NextCheck = common.AddDays(today, interval)
			adv.Confidence = 0.95
		case moisture <= caution:
			adv.Action = ActionCheckSoil
			adv.Message = "Borderline moisture — check soil depth; water if top 2–3 cm are dry."
			adv.NextCheck = common.AddDays(today, CheckSoilInDays)
			adv.Confidence = 0.75
		default:
			adv.Action = ActionSkipToday
			adv.Message = "Soil moisture is healthy — skip watering today."
			adv.NextCheck = a.ComputeNextCheck(in.LastWatered, interval, w, in.DroughtTolerant)
			adv.Confidence = 0.9
		}
		return adv
	}

	schedule := scheduleNote(dueBySchedule, daysSince, interval)

	if w != nil && w.PrecipMM >= RainSkipThresholdMM {
		adv.Action = ActionSkipToday
		adv.Message = "Recent rain — skip watering today."
		adv.Notes = append(adv.Notes, schedule)
		adv.Notes = append(adv.Notes, weatherNotes(w)...)
		adv.NextCheck = a.ComputeNextCheck(in.LastWatered, interval, w, in.DroughtTolerant)
		adv.Confidence = 0.85
		return adv
	}

	if dueBySchedule {
		adv.Action = ActionCheckSoil
		if w != nil && w.Temperature >= HotDayC {
			adv.Message = "Scheduled watering due; hot day — check soil and water if dry."
			adv.Notes = append(adv.Notes, fmt.Sprintf("It’s hot (≥ %d°C).", int(HotDayC)))
			adv.Confidence = 0.8
		} else {
			adv.Message = "Scheduled watering due — check soil; water if top 2–3 cm are dry."
			adv.Confidence = 0.7
		}
		adv.Notes = append(adv.Notes, schedule)
		adv.Notes = append(adv.Notes, weatherNotes(w)...)
		adv.NextCheck = common.AddDays(today, CheckSoilInDays)
		return adv
	}

	adv.Action = ActionSkipToday
	adv.Message = "Not yet due by schedule — skip today."
	adv.Notes = append(adv.Notes, schedule)
	adv.Notes = append(adv.Notes, weatherNotes(w)...)
	adv.NextCheck = a.ComputeNextCheck(in.LastWatered, interval, w, in.DroughtTolerant)
	adv.Confidence = 0.7
	return adv
}

// ComputeNextCheck estimates when to look at the plant again.
// Heat shortens the wait by a day; rain and drought tolerance only offset heat, they never
// lengthen the interval. The result is at least one day after the base date.
func (a *Advisor) ComputeNextCheck(lastWatered *time.Time, intervalDays int, w *weather.WeatherSnapshot, droughtTolerant bool) time.Time {
	adjust := 0
	if w != nil {
		if w.Temperature >= HotDayC {
			adjust++
		}
		if w.PrecipMM >= RainSkipThresholdMM {
			adjust--
		}
	}
	if droughtTolerant {
		adjust--
	}

	days := max(1, intervalDays-max(0, adjust))

	base := a.today()
	if lastWatered != nil {
		base = common.DateOf(*lastWatered)
	}
	return common.AddDays(base, days)
}

// QuickAdvice is a one-line hint from the current weather alone.
func QuickAdvice(precipMm, tempC float64) string {
	switch {
	case precipMm >= RainSkipThresholdMM:
		return "It rained recently — skip watering today."
	case tempC >= HotDayC:
		return "Hot day — check soil; likely water needed."
	case tempC <= CoolDayC:
		return "Cool day — soil dries slower; follow schedule."
	default:
		return "Normal conditions — follow schedule."
	}
}

func fmtPct(v float64) string {
	return fmt.Sprintf("%.0f", min(100, max(0, v)))
}

func weatherNotes(w *weather.WeatherSnapshot) []string {
	if w == nil {
		return nil
	}

	summary := fmt.Sprintf("Weather: %.1f°C, precip %.2f mm", w.Temperature, w.PrecipMM)
	if w.Description != "" {
		summary += " (" + w.Description + ")"
	}

	notes := []string{summary}
	if w.Temperature >= HotDayC {
		notes = append(notes, "High temperature increases evaporation.")
	}
	if w.Temperature <= CoolDayC {
		notes = append(notes, "Cool weather slows drying.")
	}
	if w.PrecipMM >= RainSkipThresholdMM {
		notes = append(notes, "Recent precipitation keeps soil moist longer.")
	}
	return notes
}

func scheduleNote(due bool, daysSince, interval int) string {
	last := "today"
	if daysSince != 0 {
		last = fmt.Sprintf("%d day(s) ago", daysSince)
	}
	qualifier := " (not due)"
	if due {
		qualifier = " (due)"
	}
	return fmt.Sprintf("Schedule: every %d days; last watered %s%s", interval, last, qualifier)
}
