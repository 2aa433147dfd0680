package services

import (
	"fmt"
	"time"

	"github.com/habitloop/backend/models"
)

// PeriodKey identifies the period a completion falls in. Which fields are
// meaningful depends on Freq: Day for DAILY (local midnight), Year+Week for
// WEEKLY (ISO week), Year+Month for MONTHLY.
type PeriodKey struct {
	Freq  models.Frequency
	Day   time.Time
	Year  int
	Week  int
	Month time.Month
}

// String renders the key for storage: "2024-01-31" (daily), "2024-W05"
// (weekly), "2024-01" (monthly).
func (k PeriodKey) String() string {
	switch k.Freq {
	case models.FrequencyWeekly:
		return fmt.Sprintf("%04d-W%02d", k.Year, k.Week)
	case models.FrequencyMonthly:
		return fmt.Sprintf("%04d-%02d", k.Year, int(k.Month))
	default:
		return k.Day.Format("2006-01-02")
	}
}

// PeriodService computes period windows and keys. It is pure: all methods
// derive their results from the passed-in instant and the configured location,
// never from the wall clock.
type PeriodService struct {
	loc *time.Location
}

// NewPeriodService creates a calculator for the given timezone. A nil location
// falls back to time.Local.
func NewPeriodService(loc *time.Location) *PeriodService {
	if loc == nil {
		loc = time.Local
	}
	return &PeriodService{loc: loc}
}

// Location returns the timezone all calendar math is performed in.
func (s *PeriodService) Location() *time.Location {
	return s.loc
}

// Bounds returns the half-open window [start, end) of the period containing
// now for the given frequency.
func (s *PeriodService) Bounds(freq models.Frequency, now time.Time) (time.Time, time.Time) {
	t := now.In(s.loc)
	switch freq {
	case models.FrequencyWeekly:
		// ISO weeks start Monday; Sunday counts as day 7 of the prior week.
		day := int(t.Weekday())
		if day == 0 {
			day = 7
		}
		start := time.Date(t.Year(), t.Month(), t.Day()-day+1, 0, 0, 0, 0, s.loc)
		return start, start.AddDate(0, 0, 7)
	case models.FrequencyMonthly:
		start := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, s.loc)
		return start, start.AddDate(0, 1, 0)
	default:
		start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, s.loc)
		return start, start.AddDate(0, 0, 1)
	}
}

// Key returns the period key containing now for the given frequency.
func (s *PeriodService) Key(freq models.Frequency, now time.Time) PeriodKey {
	t := now.In(s.loc)
	switch freq {
	case models.FrequencyWeekly:
		year, week := t.ISOWeek()
		return PeriodKey{Freq: freq, Year: year, Week: week}
	case models.FrequencyMonthly:
		return PeriodKey{Freq: freq, Year: t.Year(), Month: t.Month()}
	default:
		return PeriodKey{Freq: freq, Day: s.DayOf(now)}
	}
}

// DayOf normalizes an instant to its local calendar day (midnight). The
// aggregate streak walk uses this regardless of habit frequency.
func (s *PeriodService) DayOf(t time.Time) time.Time {
	t = t.In(s.loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, s.loc)
}

// Consecutive reports whether curr is the period immediately after prev. Keys
// of different frequencies are never consecutive, nor are gaps or reversals.
func Consecutive(prev, curr PeriodKey) bool {
	if prev.Freq != curr.Freq {
		return false
	}

	switch prev.Freq {
	case models.FrequencyDaily:
		return prev.Day.AddDate(0, 0, 1).Equal(curr.Day)

	case models.FrequencyWeekly:
		if curr.Year == prev.Year {
			return curr.Week == prev.Week+1
		}
		// Year rollover: ISO years end on week 52 or 53.
		return curr.Year == prev.Year+1 && prev.Week >= 52 && curr.Week == 1

	case models.FrequencyMonthly:
		if curr.Year == prev.Year {
			return curr.Month == prev.Month+1
		}
		return curr.Year == prev.Year+1 && prev.Month == time.December && curr.Month == time.January
	}

	return false
}
