package ledger

import (
	"fmt"

	"committee-trade-bot-go/internal/models"
	"gorm.io/gorm"
)

// ZoneStore reads support/resistance zones recorded by the external
// zone-detection job. The application never writes zones.
type ZoneStore struct {
	db *gorm.DB
}

// NewZoneStore creates a ZoneStore on top of an already migrated database.
func NewZoneStore(db *gorm.DB) *ZoneStore {
	return &ZoneStore{db: db}
}

// ZonesByType returns the most recent zones of one type for a symbol,
// newest first.
func (s *ZoneStore) ZonesByType(symbol, zoneType string, limit int) ([]models.Zone, error) {
	if limit <= 0 {
		limit = 50
	}
	var zones []models.Zone
	err := s.db.
		Where("symbol = ? AND type = ?", symbol, zoneType).
		Order("created_at DESC").
		Limit(limit).
		Find(&zones).Error
	if err != nil {
		return nil, fmt.Errorf("could not query %s zones for %s: %w", zoneType, symbol, err)
	}
	return zones, nil
}
