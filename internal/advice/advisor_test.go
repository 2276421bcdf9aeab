package advice

import (
	"strings"
	"testing"
	"time"

	"github.com/i474232898/plant-care/internal/common"
	"github.com/i474232898/plant-care/internal/weather"
)

var fixedNow = time.Date(2025, 6, 15, 9, 30, 0, 0, time.UTC)

func testAdvisor() *Advisor {
	return NewAdvisor(func() time.Time { return fixedNow })
}

func today() time.Time { return common.DateOf(fixedNow) }

func daysAgo(n int) *time.Time {
	d := common.AddDays(today(), -n)
	return &d
}

func snap(tempC, precip float64) *weather.WeatherSnapshot {
	return &weather.WeatherSnapshot{Temperature: tempC, PrecipMM: precip, Description: "Partly cloudy"}
}

func TestLowMoistureAlwaysWatersNow(t *testing.T) {
	a := testAdvisor()
	weathers := []*weather.WeatherSnapshot{nil, snap(10, 0), snap(36, 0), snap(20, 12)}
	for _, m := range []float64{0, 10, 24.9, 25} {
		for _, w := range weathers {
			for _, last := range []*time.Time{nil, daysAgo(0), daysAgo(30)} {
				adv := a.Advise(Input{
					Weather:         w,
					LastWatered:     last,
					WaterEveryDays:  common.IntPtr(7),
					SoilMoisturePct: common.FloatPtr(m),
				})
				if adv.Action != ActionWaterNow || adv.Confidence != 0.95 {
					t.Fatalf("moisture %v: expected WATER_NOW/0.95, got %s/%v", m, adv.Action, adv.Confidence)
				}
			}
		}
	}
}

func TestBorderlineMoistureChecksSoilTomorrow(t *testing.T) {
	a := testAdvisor()
	for _, m := range []float64{25.1, 30, 39.99, 40} {
		for _, w := range []*weather.WeatherSnapshot{nil, snap(35, 0), snap(15, 5)} {
			adv := a.Advise(Input{Weather: w, SoilMoisturePct: common.FloatPtr(m)})
			if adv.Action != ActionCheckSoil {
				t.Fatalf("moisture %v: expected CHECK_SOIL, got %s", m, adv.Action)
			}
			if !adv.NextCheck.Equal(common.AddDays(today(), 1)) {
				t.Fatalf("moisture %v: expected next check tomorrow, got %s", m, adv.NextCheck)
			}
			if adv.Confidence != 0.75 {
				t.Fatalf("expected confidence 0.75, got %v", adv.Confidence)
			}
		}
	}
}

func TestDroughtTolerantShiftsMoistureThresholds(t *testing.T) {
	a := testAdvisor()
	cases := []struct {
		moisture float64
		want     Action
	}{
		{20, ActionWaterNow},
		{22, ActionCheckSoil},
		{35, ActionCheckSoil},
		{36, ActionSkipToday},
	}
	for _, tc := range cases {
		adv := a.Advise(Input{SoilMoisturePct: common.FloatPtr(tc.moisture), DroughtTolerant: true})
		if adv.Action != tc.want {
			t.Fatalf("moisture %v: expected %s, got %s", tc.moisture, tc.want, adv.Action)
		}
	}
}

func TestHealthyMoistureSkipsWithComputedNextCheck(t *testing.T) {
	a := testAdvisor()
	last := daysAgo(2)
	adv := a.Advise(Input{
		LastWatered:     last,
		WaterEveryDays:  common.IntPtr(5),
		SoilMoisturePct: common.FloatPtr(55),
	})
	if adv.Action != ActionSkipToday || adv.Confidence != 0.9 {
		t.Fatalf("expected SKIP_TODAY/0.9, got %s/%v", adv.Action, adv.Confidence)
	}
	if want := common.AddDays(*last, 5); !adv.NextCheck.Equal(want) {
		t.Fatalf("expected next check %s, got %s", want, adv.NextCheck)
	}
	if adv.Notes[0] != "Soil moisture 55%." {
		t.Fatalf("unexpected moisture note %q", adv.Notes[0])
	}
}

func TestRainWithoutMoistureSkips(t *testing.T) {
	a := testAdvisor()
	for _, precip := range []float64{2.0, 3.5, 40} {
		for _, last := range []*time.Time{nil, daysAgo(1), daysAgo(20)} {
			adv := a.Advise(Input{Weather: snap(36, precip), LastWatered: last, WaterEveryDays: common.IntPtr(3)})
			if adv.Action != ActionSkipToday || adv.Confidence != 0.85 {
				t.Fatalf("precip %v: expected SKIP_TODAY/0.85, got %s/%v", precip, adv.Action, adv.Confidence)
			}
		}
	}
}

func TestDueByScheduleChecksSoil(t *testing.T) {
	a := testAdvisor()

	hot := a.Advise(Input{Weather: snap(34, 0), LastWatered: daysAgo(7), WaterEveryDays: common.IntPtr(7)})
	if hot.Action != ActionCheckSoil || hot.Confidence != 0.8 {
		t.Fatalf("expected CHECK_SOIL/0.8 on hot day, got %s/%v", hot.Action, hot.Confidence)
	}
	if !strings.Contains(hot.Message, "hot day") {
		t.Fatalf("expected hot-day message, got %q", hot.Message)
	}

	mild := a.Advise(Input{Weather: snap(25, 0), LastWatered: daysAgo(9), WaterEveryDays: common.IntPtr(7)})
	if mild.Action != ActionCheckSoil || mild.Confidence != 0.7 {
		t.Fatalf("expected CHECK_SOIL/0.7, got %s/%v", mild.Action, mild.Confidence)
	}
	if !mild.NextCheck.Equal(common.AddDays(today(), 1)) {
		t.Fatalf("expected next check tomorrow, got %s", mild.NextCheck)
	}
}

func TestNeverWateredCountsAsDue(t *testing.T) {
	adv := testAdvisor().Advise(Input{})
	if adv.Action != ActionCheckSoil || adv.Confidence != 0.7 {
		t.Fatalf("expected schedule-only CHECK_SOIL/0.7, got %s/%v", adv.Action, adv.Confidence)
	}
	if len(adv.Notes) != 1 || adv.Notes[0] != "Schedule: every 7 days; last watered 7 day(s) ago (due)" {
		t.Fatalf("unexpected notes %q", adv.Notes)
	}
}

func TestNotDueSkips(t *testing.T) {
	adv := testAdvisor().Advise(Input{Weather: snap(15, 0), LastWatered: daysAgo(0), WaterEveryDays: common.IntPtr(7)})
	if adv.Action != ActionSkipToday || adv.Confidence != 0.7 {
		t.Fatalf("expected SKIP_TODAY/0.7, got %s/%v", adv.Action, adv.Confidence)
	}
	want := []string{
		"Schedule: every 7 days; last watered today (not due)",
		"Weather: 15.0°C, precip 0.00 mm (Partly cloudy)",
		"Cool weather slows drying.",
	}
	if strings.Join(adv.Notes, "|") != strings.Join(want, "|") {
		t.Fatalf("unexpected notes %q", adv.Notes)
	}
}

func TestNonPositiveIntervalFallsBackToDefault(t *testing.T) {
	a := testAdvisor()
	for _, every := range []*int{nil, common.IntPtr(0), common.IntPtr(-3)} {
		adv := a.Advise(Input{LastWatered: daysAgo(6), WaterEveryDays: every})
		if adv.Action != ActionSkipToday {
			t.Fatalf("expected not due with default interval, got %s", adv.Action)
		}
	}
}

func TestFutureLastWateredClampsToZeroDays(t *testing.T) {
	future := common.AddDays(today(), 3)
	adv := testAdvisor().Advise(Input{LastWatered: &future, WaterEveryDays: common.IntPtr(2)})
	if adv.Action != ActionSkipToday {
		t.Fatalf("expected SKIP_TODAY, got %s", adv.Action)
	}
	if !strings.Contains(adv.Notes[0], "last watered today") {
		t.Fatalf("expected clamped days-since note, got %q", adv.Notes[0])
	}
}

func TestNotesAlwaysIncludeWeatherSummary(t *testing.T) {
	a := testAdvisor()
	inputs := []Input{
		{SoilMoisturePct: common.FloatPtr(10)},
		{SoilMoisturePct: common.FloatPtr(30)},
		{SoilMoisturePct: common.FloatPtr(80)},
		{},
		{LastWatered: daysAgo(0)},
	}
	for _, w := range []*weather.WeatherSnapshot{snap(20, 0), snap(36, 0), snap(12, 5)} {
		for _, in := range inputs {
			in.Weather = w
			adv := a.Advise(in)
			found := false
			for _, n := range adv.Notes {
				if strings.HasPrefix(n, "Weather: ") {
					found = true
				}
			}
			if !found {
				t.Fatalf("expected weather summary note for %+v, got %q", in, adv.Notes)
			}
		}
	}
}

func TestComputeNextCheck(t *testing.T) {
	a := testAdvisor()
	last := daysAgo(1)

	cases := []struct {
		name    string
		last    *time.Time
		w       *weather.WeatherSnapshot
		drought bool
		want    time.Time
	}{
		{"no weather", last, nil, false, common.AddDays(*last, 7)},
		{"hot pulls in", last, snap(35, 0), false, common.AddDays(*last, 6)},
		{"rain never extends", last, snap(20, 5), false, common.AddDays(*last, 7)},
		{"hot and rain cancel", last, snap(35, 5), false, common.AddDays(*last, 7)},
		{"drought cancels heat", last, snap(35, 0), true, common.AddDays(*last, 7)},
		{"no last watered uses today", nil, nil, false, common.AddDays(today(), 7)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := a.ComputeNextCheck(tc.last, 7, tc.w, tc.drought)
			if !got.Equal(tc.want) {
				t.Fatalf("expected %s, got %s", tc.want, got)
			}
		})
	}
}

func TestComputeNextCheckMonotonicAndAtLeastOneDay(t *testing.T) {
	a := testAdvisor()
	last := daysAgo(4)
	weathers := []*weather.WeatherSnapshot{nil, snap(35, 0), snap(20, 3), snap(36, 3)}

	for _, w := range weathers {
		for _, drought := range []bool{false, true} {
			prev := a.ComputeNextCheck(last, 0, w, drought)
			for interval := 0; interval <= 30; interval++ {
				got := a.ComputeNextCheck(last, interval, w, drought)
				if got.Before(prev) {
					t.Fatalf("interval %d: %s before previous %s", interval, got, prev)
				}
				if got.Before(common.AddDays(*last, 1)) {
					t.Fatalf("interval %d: %s earlier than base+1", interval, got)
				}
				prev = got
			}
		}
	}
}

func TestQuickAdvice(t *testing.T) {
	cases := []struct {
		precip, temp float64
		prefix       string
	}{
		{2, 40, "It rained"},
		{0, 34, "Hot day"},
		{0, 18, "Cool day"},
		{0, 25, "Normal"},
	}
	for _, tc := range cases {
		if got := QuickAdvice(tc.precip, tc.temp); !strings.HasPrefix(got, tc.prefix) {
			t.Fatalf("expected prefix %q, got %q", tc.prefix, got)
		}
	}
}
