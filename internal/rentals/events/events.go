package events

import (
	"time"

	"lockrent/pkg/model"
)

const (
	EventTypeRentalEnded = "rental.ended"
	EventTypeRetireLock  = "lock.retire"

	SchemaVersion = "1"
)

// RentalEndedEvent is published once an end-rental transaction has
// committed. It never carries hardware secrets.
type RentalEndedEvent struct {
	Rental     *model.Rental `json:"rental"`
	Retired    bool          `json:"retired"`
	OccurredAt time.Time     `json:"occurred_at"`
}

// RetireLockCommand asks the service to retire a lock.
type RetireLockCommand struct {
	LockID string `json:"lock_id"`
	Reason string `json:"reason,omitempty"`
}
