package models

import "time"

// Zone types as stored in the zones table.
const (
	ZoneSupport    = "support"
	ZoneResistance = "resistance"
)

// Zone is a recorded support or resistance price level for a symbol.
// Rows are written by an external zone-detection job; this application only
// reads them.
type Zone struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	Symbol    string    `gorm:"size:20;not null;index" json:"symbol"`
	Type      string    `gorm:"size:20;not null;index" json:"type"` // "support" or "resistance"
	Price     float64   `gorm:"not null" json:"price"`
	Strength  string    `gorm:"size:20" json:"strength"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
}
