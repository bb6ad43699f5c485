package model

import "time"

const SecretSize = 512

type LockStatus int

const (
	LockNotHeld LockStatus = 0
	LockHeld    LockStatus = 1
)

func (s LockStatus) String() string {
	if s == LockHeld {
		return "held"
	}
	return "not_held"
}

// Lock is a physical lock docked at a station. A nil Rental means the lock
// is idle; otherwise Rental describes the current checkout.
type Lock struct {
	ID      string        `json:"id" bson:"_id" validate:"required,uuid"`
	Name    string        `json:"name" bson:"name" validate:"required,min=1,max=100"`
	Station Station       `json:"station" bson:"station" validate:"required"`
	Rental  *ActiveRental `json:"rental,omitempty" bson:"rental,omitempty" validate:"omitempty"`
	URL     string        `json:"-" bson:"url" validate:"required,url"`
	Secret  []byte        `json:"-" bson:"secret" validate:"required,len=512"`
	MAC     string        `json:"-" bson:"mac" validate:"required,mac"`
	Deleted bool          `json:"deleted" bson:"deleted"`
	Version int64         `json:"version" bson:"version"`
}

type ActiveRental struct {
	UserID     string    `json:"user_id" bson:"user_id" validate:"required,max=128"`
	StartTime  time.Time `json:"start_time" bson:"start_time" validate:"required"`
	HourlyRate int64     `json:"hourly_rate" bson:"hourly_rate" validate:"min=0"`
}

func (l *Lock) IsActive() bool {
	return l != nil && l.Rental != nil
}

func (l *Lock) HeldBy(userID string) bool {
	return l.IsActive() && userID != "" && l.Rental.UserID == userID
}

func (l *Lock) Secrets() Secrets {
	secret := make([]byte, len(l.Secret))
	copy(secret, l.Secret)
	return Secrets{URL: l.URL, Secret: secret, MAC: l.MAC}
}

// Secrets are the credentials needed to open the physical lock.
type Secrets struct {
	URL    string `json:"url"`
	Secret []byte `json:"secret"`
	MAC    string `json:"mac"`
}
