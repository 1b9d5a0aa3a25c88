package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// PrinterStatus is the operational state of a printer unit.
type PrinterStatus string

const (
	StatusIdle        PrinterStatus = "idle"
	StatusPrinting    PrinterStatus = "printing"
	StatusMaintenance PrinterStatus = "maintenance"
	StatusError       PrinterStatus = "error"
	StatusCompleted   PrinterStatus = "completed"
	StatusPaused      PrinterStatus = "paused"
	StatusOffline     PrinterStatus = "offline"
)

// ValidStatus reports whether s is one of the recognized printer states.
func ValidStatus(s PrinterStatus) bool {
	switch s {
	case StatusIdle, StatusPrinting, StatusMaintenance, StatusError,
		StatusCompleted, StatusPaused, StatusOffline:
		return true
	}
	return false
}

// MaintenanceEvent is one entry in a printer's service history.
type MaintenanceEvent struct {
	Date        time.Time `json:"date"`
	Type        string    `json:"type"`
	HourAtEvent float64   `json:"hourAtEvent"`
}

// MaintenanceHistory is an ordered list of maintenance events, newest first.
// It is persisted as an embedded JSON array ("[]" when empty).
type MaintenanceHistory []MaintenanceEvent

// Value implements driver.Valuer.
func (h MaintenanceHistory) Value() (driver.Value, error) {
	if h == nil {
		return "[]", nil
	}
	b, err := json.Marshal(h)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner.
func (h *MaintenanceHistory) Scan(src any) error {
	if src == nil {
		*h = MaintenanceHistory{}
		return nil
	}
	var data []byte
	switch v := src.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported maintenance history column type %T", src)
	}
	if len(data) == 0 {
		*h = MaintenanceHistory{}
		return nil
	}
	return json.Unmarshal(data, h)
}

// PrinterUnit represents a single printer in the fleet together with the
// usage counters the diagnostics and financial engines derive from.
type PrinterUnit struct {
	ID                       string             `gorm:"primaryKey;size:64" json:"id"`
	Name                     string             `gorm:"size:256;not null" json:"name"`
	Brand                    string             `gorm:"size:128" json:"brand"`
	Model                    string             `gorm:"size:128" json:"model"`
	Status                   PrinterStatus      `gorm:"size:32;not null" json:"status"`
	PowerWatts               float64            `gorm:"not null" json:"powerWatts"`
	Price                    float64            `gorm:"not null" json:"price"`
	YieldTotal               float64            `gorm:"not null" json:"yieldTotal"`
	TotalHours               float64            `gorm:"not null" json:"totalHours"`
	LastMaintenanceHour      float64            `gorm:"not null" json:"lastMaintenanceHour"`
	MaintenanceIntervalHours float64            `gorm:"not null" json:"maintenanceIntervalHours"`
	History                  MaintenanceHistory `gorm:"type:text" json:"history"`
	CreatedAt                time.Time          `json:"-"`
	UpdatedAt                time.Time          `json:"-"`
}
