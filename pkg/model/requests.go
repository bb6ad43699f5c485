package model

type EndRentalRequest struct {
	UserID string `json:"user_id" validate:"required,max=128"`
	LockID string `json:"lock_id" validate:"required,uuid"`
}

type LockStatusRequest struct {
	UserID string `json:"user_id" validate:"required,max=128"`
	LockID string `json:"lock_id" validate:"required,uuid"`
}

type RetireLockRequest struct {
	LockID string `json:"lock_id" validate:"required,uuid"`
}

type LockStatusResponse struct {
	LockID string     `json:"lock_id"`
	Status LockStatus `json:"status"`
}

type RetireLockResponse struct {
	LockID string `json:"lock_id"`
	Mode   string `json:"mode"`
}

// RentalHistory is one page of a user's completed rentals, newest first.
type RentalHistory struct {
	Rentals []*Rental `json:"rentals"`
	Total   int64     `json:"total"`
	Limit   int       `json:"limit"`
	Offset  int64     `json:"offset"`
}
