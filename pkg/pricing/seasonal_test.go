package pricing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBucketCalendarSeasons(t *testing.T) {
	d := NewSeasonalDetector(NewHistory(365), nil)

	tests := []struct {
		date time.Time
		want Season
	}{
		{time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC), SeasonWinter},
		{time.Date(2026, 4, 10, 0, 0, 0, 0, time.UTC), SeasonSpring},
		{time.Date(2026, 6, 10, 0, 0, 0, 0, time.UTC), SeasonSummer},
		{time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC), SeasonAutumn},
		{time.Date(2026, 12, 1, 0, 0, 0, 0, time.UTC), SeasonWinter},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, d.Bucket(tt.date), tt.date.Format("2006-01-02"))
	}
}

func TestBucketHolidayOverridesSeason(t *testing.T) {
	d := NewSeasonalDetector(NewHistory(365), nil)

	// Dec 25 would be winter, Jul 20 would be summer; both sit inside the
	// default holiday ranges.
	assert.Equal(t, SeasonHoliday, d.Bucket(time.Date(2026, 12, 25, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, SeasonHoliday, d.Bucket(time.Date(2026, 7, 20, 0, 0, 0, 0, time.UTC)))

	// The year-end range wraps into January.
	assert.Equal(t, SeasonHoliday, d.Bucket(time.Date(2026, 1, 3, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, SeasonWinter, d.Bucket(time.Date(2026, 1, 6, 0, 0, 0, 0, time.UTC)))
}

func TestHolidayRangeContains(t *testing.T) {
	r := HolidayRange{Name: "year-end", StartMonth: time.December, StartDay: 20, EndMonth: time.January, EndDay: 5}

	assert.True(t, r.Contains(time.Date(2026, 12, 20, 0, 0, 0, 0, time.UTC)))
	assert.True(t, r.Contains(time.Date(2027, 1, 5, 0, 0, 0, 0, time.UTC)))
	assert.False(t, r.Contains(time.Date(2026, 12, 19, 0, 0, 0, 0, time.UTC)))
	assert.False(t, r.Contains(time.Date(2027, 1, 6, 0, 0, 0, 0, time.UTC)))
}

func TestBaselineAcrossYears(t *testing.T) {
	h := NewHistory(365)
	d := NewSeasonalDetector(h, nil)

	// Two June observations a year apart, both inside the retention window
	// measured from the newest point.
	h.Append(testRoute, 100, time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC))
	h.Append(testRoute, 120, time.Date(2026, 6, 5, 0, 0, 0, 0, time.UTC))

	asOf := time.Date(2026, 6, 20, 0, 0, 0, 0, time.UTC)
	baseline := d.Baseline(testRoute, asOf, 99)

	assert.Equal(t, SeasonSummer, baseline.Season)
	assert.Equal(t, 2, baseline.SampleCount)
	require.NotNil(t, baseline.BaselineMean)
	assert.InDelta(t, 110, *baseline.BaselineMean, 1e-9)
	require.NotNil(t, baseline.Deviation)
	assert.InDelta(t, -0.1, *baseline.Deviation, 1e-9)
}

func TestBaselineNoSameBucketHistory(t *testing.T) {
	h := NewHistory(365)
	d := NewSeasonalDetector(h, nil)

	// Only summer history; asking during winter yields the nil markers
	// rather than an error.
	h.Append(testRoute, 100, time.Date(2026, 6, 10, 0, 0, 0, 0, time.UTC))

	baseline := d.Baseline(testRoute, time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC), 100)
	assert.Equal(t, SeasonWinter, baseline.Season)
	assert.Equal(t, 0, baseline.SampleCount)
	assert.Nil(t, baseline.BaselineMean)
	assert.Nil(t, baseline.Deviation)
}

func TestBaselineCustomHolidayRanges(t *testing.T) {
	h := NewHistory(365)
	custom := []HolidayRange{{Name: "carnival", StartMonth: time.February, StartDay: 10, EndMonth: time.February, EndDay: 20}}
	d := NewSeasonalDetector(h, custom)

	assert.Equal(t, SeasonHoliday, d.Bucket(time.Date(2026, 2, 15, 0, 0, 0, 0, time.UTC)))
	// The defaults no longer apply.
	assert.Equal(t, SeasonWinter, d.Bucket(time.Date(2026, 12, 25, 0, 0, 0, 0, time.UTC)))
}
