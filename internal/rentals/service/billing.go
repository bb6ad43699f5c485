package service

import "time"

// ComputeCharge returns the exact elapsed time between start and end and the
// cost for it. Only whole hours are billed; a negative interval from clock
// skew counts as zero.
func ComputeCharge(start, end time.Time, hourlyRate int64) (time.Duration, int64) {
	elapsed := end.Sub(start)
	if elapsed < 0 {
		elapsed = 0
	}
	hours := int64(elapsed / time.Hour)
	return elapsed, hours * hourlyRate
}
