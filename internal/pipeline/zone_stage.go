package pipeline

import (
	"context"
	"errors"
	"fmt"

	"committee-trade-bot-go/internal/marketdata"
	"committee-trade-bot-go/internal/models"
	"go.uber.org/zap"
)

// ErrNoZonesFound is recorded when neither a support below nor a resistance
// above the current price exists.
var ErrNoZonesFound = errors.New("no zones found")

const zoneScanLimit = 50

// ZoneStage resolves the current price and the nearest recorded
// support/resistance zones around it. Requires only the input symbol.
type ZoneStage struct {
	prices marketdata.PriceSource
	zones  ZoneReader
	logger *zap.Logger
}

func NewZoneStage(prices marketdata.PriceSource, zones ZoneReader, logger *zap.Logger) *ZoneStage {
	return &ZoneStage{prices: prices, zones: zones, logger: logger}
}

func (s *ZoneStage) Name() string { return "support_resistance" }

func (s *ZoneStage) Run(ctx context.Context, rc *Context) {
	symbol := rc.PrimarySymbol()

	price, err := s.prices.LatestClose(ctx, symbol)
	if err != nil {
		s.logger.Error("Failed to fetch current price", zap.Error(err))
		rc.SetError("could not get current price for %s: %v", symbol, err)
		return
	}
	// The price is written before scanning zones so later stages can reuse it
	// even when no zone qualifies.
	rc.CurrentPrice = floatPtr(price)

	supports, err := s.zones.ZonesByType(symbol, models.ZoneSupport, zoneScanLimit)
	if err != nil {
		rc.SetError("could not query support zones for %s: %v", symbol, err)
		return
	}
	resistances, err := s.zones.ZonesByType(symbol, models.ZoneResistance, zoneScanLimit)
	if err != nil {
		rc.SetError("could not query resistance zones for %s: %v", symbol, err)
		return
	}

	nearestSupport, nearestResistance := findNearestZones(price, supports, resistances)

	if nearestSupport != nil {
		rc.NearestSupport = nearestSupport
		rc.DistanceToSupport = strPtr(distancePercentage(price, *nearestSupport))
	} else {
		s.logger.Warn("No support below current price", zap.String("symbol", symbol))
	}
	if nearestResistance != nil {
		rc.NearestResistance = nearestResistance
		rc.DistanceToResistance = strPtr(distancePercentage(price, *nearestResistance))
	} else {
		s.logger.Warn("No resistance above current price", zap.String("symbol", symbol))
	}

	if nearestSupport == nil && nearestResistance == nil {
		rc.SetError("%v for %s at $%.2f", ErrNoZonesFound, symbol, price)
		return
	}

	rc.ClearError()
	s.logger.Info("Zones resolved",
		zap.String("symbol", symbol),
		zap.Float64("price", price),
		zap.Float64p("support", rc.NearestSupport),
		zap.Float64p("resistance", rc.NearestResistance),
	)
}

// findNearestZones picks the highest support strictly below price and the
// lowest resistance strictly above it. Either result may be nil.
func findNearestZones(price float64, supports, resistances []models.Zone) (*float64, *float64) {
	var nearestSupport, nearestResistance *float64

	for _, zone := range supports {
		p := zone.Price
		if p < price && (nearestSupport == nil || p > *nearestSupport) {
			nearestSupport = &p
		}
	}
	for _, zone := range resistances {
		p := zone.Price
		if p > price && (nearestResistance == nil || p < *nearestResistance) {
			nearestResistance = &p
		}
	}
	return nearestSupport, nearestResistance
}

// distancePercentage formats (target-current)/current as a signed percentage,
// e.g. "+2.08%" or "-1.50%".
func distancePercentage(current, target float64) string {
	if current == 0 {
		return "0.0%"
	}
	distance := (target - current) / current * 100
	sign := ""
	if distance > 0 {
		sign = "+"
	}
	return fmt.Sprintf("%s%.2f%%", sign, distance)
}
