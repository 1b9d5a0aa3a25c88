package model

import "time"

// FilamentSpool represents one physical roll of filament, tracked by the
// weight remaining on it.
type FilamentSpool struct {
	ID            string    `gorm:"primaryKey;size:64" json:"id"`
	Name          string    `gorm:"size:256;not null" json:"name"`
	Brand         string    `gorm:"size:128" json:"brand"`
	Material      string    `gorm:"size:64" json:"material"`
	ColorHex      string    `gorm:"size:8" json:"colorHex"`
	WeightTotal   float64   `gorm:"not null" json:"weightTotal"`
	WeightCurrent float64   `gorm:"not null" json:"weightCurrent"`
	Price         float64   `gorm:"not null" json:"price"`
	OpenedAt      time.Time `gorm:"not null" json:"openedAt"`
	CreatedAt     time.Time `json:"-"`
	UpdatedAt     time.Time `json:"-"`
}
