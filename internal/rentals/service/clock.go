package service

import "time"

type Clock func() time.Time

// SystemClock returns UTC wall time at the millisecond precision every
// backend can store.
func SystemClock() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}
