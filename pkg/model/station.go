package model

// Station is reference data. Locks and rentals carry a snapshot of it so
// history stays readable after a station is renamed or moved.
type Station struct {
	ID        string  `json:"id" bson:"id" validate:"required,max=64"`
	Name      string  `json:"name" bson:"name" validate:"required,min=1,max=100"`
	Latitude  float64 `json:"latitude" bson:"latitude" validate:"latitude"`
	Longitude float64 `json:"longitude" bson:"longitude" validate:"longitude"`
}
