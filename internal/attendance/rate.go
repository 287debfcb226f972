package attendance

import (
	"context"
	"errors"
	"math"
	"time"

	"rollcall/internal/roster"
)

// RateCalculator computes a student's attendance percentage against the
// course's scheduled lecture dates. Counting against the schedule, not the
// recorded rows, keeps a near-empty record set from scoring 100%.
type RateCalculator struct {
	records RecordStore
	roster  roster.Lookup
}

func NewRateCalculator(records RecordStore, lookup roster.Lookup) *RateCalculator {
	return &RateCalculator{records: records, roster: lookup}
}

// ComputeRate returns present-count / scheduled-count as a percentage in
// [0, 100], rounded half-up to one decimal. A course with no schedule or no
// scheduled dates rates 0.
func (c *RateCalculator) ComputeRate(ctx context.Context, studentID, courseID string) (float64, error) {
	sched, err := c.roster.ScheduleForCourse(ctx, courseID)
	if errors.Is(err, roster.ErrNoSchedule) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	n := len(ScheduledDates(sched))
	if n == 0 {
		return 0, nil
	}

	k, err := c.records.CountPresent(ctx, studentID, courseID)
	if err != nil {
		return 0, err
	}

	rate := float64(k) / float64(n) * 100
	if rate > 100 {
		rate = 100
	}
	return roundHalfUp1(rate), nil
}

// ScheduledDates enumerates every date in [start, end] whose weekday belongs
// to the schedule's weekday set.
func ScheduledDates(s roster.Schedule) []time.Time {
	start := dateOnly(s.StartDate)
	end := dateOnly(s.EndDate)
	var dates []time.Time
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		if s.ContainsWeekday(d) {
			dates = append(dates, d)
		}
	}
	return dates
}

// roundHalfUp1 rounds to one decimal place, halves away from zero.
func roundHalfUp1(x float64) float64 {
	return math.Floor(x*10+0.5) / 10
}
