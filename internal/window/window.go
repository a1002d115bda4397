package window

import (
	"time"

	"roomcal/internal/config"
	"roomcal/internal/model"
)

// Upstream date encodings. The API wants millisecond-precision UTC
// strings where the start bound always ends in ".000Z" and the end bound
// always ends in ".999Z" (the end day is inclusive). The suffixes are
// appended literally so the asymmetry survives whatever sub-second value
// the instants carry.
const secondsLayout = "2006-01-02T15:04:05"

// EncodeStart renders a UTC instant as the API's dateStart parameter.
func EncodeStart(t time.Time) string {
	return t.UTC().Format(secondsLayout) + ".000Z"
}

// EncodeEnd renders a UTC instant as the API's dateEnd parameter.
func EncodeEnd(t time.Time) string {
	return t.UTC().Format(secondsLayout) + ".999Z"
}

// Compute derives the UTC query window from now, the reference timezone
// and the configured policy. Config validation has already rejected
// negative day counts and weeks < 1.
func Compute(now time.Time, loc *time.Location, wc config.WindowConfig) model.TimeWindow {
	switch wc.Policy {
	case config.WindowPolicyWeek:
		return weekAligned(now, loc, wc.Weeks)
	default:
		return lookbackHorizon(now, loc, wc.LookbackDays, wc.HorizonDays)
	}
}

// lookbackHorizon spans from local midnight of (now - lookback days)
// through the last millisecond of (now + horizon days), converted to UTC.
func lookbackHorizon(now time.Time, loc *time.Location, lookbackDays, horizonDays int) model.TimeWindow {
	local := now.In(loc)

	s := local.AddDate(0, 0, -lookbackDays)
	start := time.Date(s.Year(), s.Month(), s.Day(), 0, 0, 0, 0, loc)

	e := local.AddDate(0, 0, horizonDays)
	end := time.Date(e.Year(), e.Month(), e.Day(), 23, 59, 59, int(999*time.Millisecond), loc)

	return model.TimeWindow{Start: start.UTC(), End: end.UTC()}
}

// weekAligned spans whole weeks: from the most recent (or current) Monday
// 00:00 local through weeks*7 days later minus one millisecond.
func weekAligned(now time.Time, loc *time.Location, weeks int) model.TimeWindow {
	local := now.In(loc)

	// Monday = 0 ... Sunday = 6.
	back := (int(local.Weekday()) + 6) % 7
	midnight := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	start := midnight.AddDate(0, 0, -back)

	end := start.AddDate(0, 0, 7*weeks).Add(-time.Millisecond)

	return model.TimeWindow{Start: start.UTC(), End: end.UTC()}
}
