package pricing

import (
	"time"

	"skypulse-engine/internal/domain/entity"
)

// Season is a recurring calendar bucket for baseline pricing.
type Season string

const (
	SeasonWinter  Season = "winter"
	SeasonSpring  Season = "spring"
	SeasonSummer  Season = "summer"
	SeasonAutumn  Season = "autumn"
	SeasonHoliday Season = "holiday"
)

// HolidayRange is a recurring month/day range that overrides the calendar
// bucket, e.g. the year-end peak. Ranges may wrap the year boundary.
type HolidayRange struct {
	Name       string
	StartMonth time.Month
	StartDay   int
	EndMonth   time.Month
	EndDay     int
}

// Contains reports whether the date's month/day falls inside the range.
func (r HolidayRange) Contains(t time.Time) bool {
	md := int(t.Month())*100 + t.Day()
	start := int(r.StartMonth)*100 + r.StartDay
	end := int(r.EndMonth)*100 + r.EndDay
	if start <= end {
		return md >= start && md <= end
	}
	// Wraps the year boundary (e.g. Dec 20 - Jan 5).
	return md >= start || md <= end
}

// DefaultHolidayRanges covers the year-end and mid-year travel peaks.
var DefaultHolidayRanges = []HolidayRange{
	{Name: "year-end", StartMonth: time.December, StartDay: 20, EndMonth: time.January, EndDay: 5},
	{Name: "mid-year", StartMonth: time.July, StartDay: 15, EndMonth: time.August, EndDay: 15},
}

// SeasonalBaseline is the bucket classification of a date plus the route's
// historical mean for that bucket. BaselineMean and Deviation are nil when
// no same-bucket history exists: insufficient data, not an error.
type SeasonalBaseline struct {
	Season       Season   `json:"season"`
	BaselineMean *float64 `json:"baselineMean"`
	Deviation    *float64 `json:"deviation"`
	SampleCount  int      `json:"sampleCount"`
}

// SeasonalDetector buckets observation dates by season and computes
// per-bucket baselines across all retained history for a route.
type SeasonalDetector struct {
	history  *History
	holidays []HolidayRange
}

// NewSeasonalDetector creates a detector. A nil holiday list selects the
// default year-end and mid-year ranges.
func NewSeasonalDetector(history *History, holidays []HolidayRange) *SeasonalDetector {
	if holidays == nil {
		holidays = DefaultHolidayRanges
	}
	return &SeasonalDetector{history: history, holidays: holidays}
}

// Bucket classifies a date. Holiday ranges take precedence over the
// calendar season.
func (d *SeasonalDetector) Bucket(t time.Time) Season {
	for _, r := range d.holidays {
		if r.Contains(t) {
			return SeasonHoliday
		}
	}
	switch t.Month() {
	case time.March, time.April, time.May:
		return SeasonSpring
	case time.June, time.July, time.August:
		return SeasonSummer
	case time.September, time.October, time.November:
		return SeasonAutumn
	default:
		return SeasonWinter
	}
}

// Baseline classifies asOf into a bucket and compares currentPrice against
// the mean of the route's retained same-bucket points across all years.
func (d *SeasonalDetector) Baseline(route entity.Route, asOf time.Time, currentPrice float64) SeasonalBaseline {
	season := d.Bucket(asOf)

	var sum float64
	var count int
	for _, p := range d.history.Query(route, 0) {
		if d.Bucket(p.ObservedAt) == season {
			sum += p.Price
			count++
		}
	}

	result := SeasonalBaseline{Season: season, SampleCount: count}
	if count == 0 {
		return result
	}

	baseline := sum / float64(count)
	result.BaselineMean = &baseline
	if baseline != 0 {
		deviation := (currentPrice - baseline) / baseline
		result.Deviation = &deviation
	}
	return result
}
