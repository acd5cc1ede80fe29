package model

import "time"

// Passage is a single vehicle crossing to be charged.
type Passage struct {
	VehicleType string
	PlateNumber string
	Timestamp   time.Time
}

// TollPass is a charged passage kept in the passage history. Records are
// append-only: the engine never updates or deletes them.
type TollPass struct {
	ID          int64     `gorm:"primaryKey" json:"id"`
	PlateNumber string    `gorm:"size:32;not null;index:idx_toll_pass_plate_passed_at,priority:1" json:"plateNumber"`
	PassedAt    time.Time `gorm:"not null;index:idx_toll_pass_plate_passed_at,priority:2" json:"passDateTime"`
	Amount      float64   `gorm:"not null" json:"tollAmount"`
}
