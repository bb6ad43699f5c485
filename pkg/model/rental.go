package model

import "time"

// Rental is the immutable record written when a rental ends. Cost is in
// minor currency units.
type Rental struct {
	ID         string        `json:"id" bson:"_id"`
	Station    Station       `json:"station" bson:"station"`
	LockID     string        `json:"lock_id" bson:"lock_id"`
	LockName   string        `json:"lock_name" bson:"lock_name"`
	UserID     string        `json:"user_id" bson:"user_id"`
	HourlyRate int64         `json:"hourly_rate" bson:"hourly_rate"`
	StartTime  time.Time     `json:"start_time" bson:"start_time"`
	EndTime    time.Time     `json:"end_time" bson:"end_time"`
	Duration   time.Duration `json:"duration_ns" bson:"duration_ns"`
	Cost       int64         `json:"cost" bson:"cost"`
}

type EndRentalResult struct {
	LockID  string  `json:"lock_id"`
	Rental  *Rental `json:"rental"`
	Retired bool    `json:"retired"`
	Secrets
}
