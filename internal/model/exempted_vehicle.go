package model

// ExemptedVehicle is a vehicle type that never pays a toll.
type ExemptedVehicle struct {
	ID    int64  `gorm:"primaryKey" json:"id"`
	Label string `gorm:"uniqueIndex;size:128;not null" json:"vehicle"`
}
