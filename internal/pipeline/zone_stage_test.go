package pipeline

import (
	"context"
	"testing"

	"committee-trade-bot-go/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func zone(zoneType string, price float64) models.Zone {
	return models.Zone{Symbol: "BTCUSD", Type: zoneType, Price: price}
}

func TestZoneStage_NearestZonesAroundPrice(t *testing.T) {
	prices := &stubPrices{close: 96000}
	zones := &stubZones{zones: map[string][]models.Zone{
		models.ZoneSupport: {
			zone(models.ZoneSupport, 94000),
			zone(models.ZoneSupport, 95500),
		},
		models.ZoneResistance: {
			zone(models.ZoneResistance, 98000),
			zone(models.ZoneResistance, 99000),
		},
	}}
	stage := NewZoneStage(prices, zones, zap.NewNop())
	rc := NewContext(nil, 0)

	stage.Run(context.Background(), rc)

	require.True(t, rc.Succeeded(), "error slot: %s", rc.ErrorMessage)
	require.NotNil(t, rc.CurrentPrice)
	assert.Equal(t, 96000.0, *rc.CurrentPrice)
	require.NotNil(t, rc.NearestSupport)
	assert.Equal(t, 95500.0, *rc.NearestSupport)
	require.NotNil(t, rc.DistanceToSupport)
	assert.Equal(t, "-0.52%", *rc.DistanceToSupport)
	require.NotNil(t, rc.NearestResistance)
	assert.Equal(t, 98000.0, *rc.NearestResistance)
	require.NotNil(t, rc.DistanceToResistance)
	assert.Equal(t, "+2.08%", *rc.DistanceToResistance)
}

// Zones on the wrong side of the price never qualify: a support above and a
// resistance below are both ignored.
func TestZoneStage_NoQualifyingZones(t *testing.T) {
	prices := &stubPrices{close: 96000}
	zones := &stubZones{zones: map[string][]models.Zone{
		models.ZoneSupport:    {zone(models.ZoneSupport, 97000)},
		models.ZoneResistance: {zone(models.ZoneResistance, 95000)},
	}}
	stage := NewZoneStage(prices, zones, zap.NewNop())
	rc := NewContext(nil, 0)

	stage.Run(context.Background(), rc)

	assert.False(t, rc.Succeeded())
	assert.Contains(t, rc.ErrorMessage, "no zones found")
	assert.Nil(t, rc.NearestSupport)
	assert.Nil(t, rc.NearestResistance)
	// The price is still recorded for later stages.
	require.NotNil(t, rc.CurrentPrice)
	assert.Equal(t, 96000.0, *rc.CurrentPrice)
}

// One side missing is not an error, the found side is still recorded.
func TestZoneStage_SupportOnly(t *testing.T) {
	prices := &stubPrices{close: 96000}
	zones := &stubZones{zones: map[string][]models.Zone{
		models.ZoneSupport: {zone(models.ZoneSupport, 90000)},
	}}
	stage := NewZoneStage(prices, zones, zap.NewNop())
	rc := NewContext(nil, 0)

	stage.Run(context.Background(), rc)

	require.True(t, rc.Succeeded())
	require.NotNil(t, rc.NearestSupport)
	assert.Equal(t, 90000.0, *rc.NearestSupport)
	assert.Nil(t, rc.NearestResistance)
	assert.Nil(t, rc.DistanceToResistance)
}

func TestFindNearestZones_StrictInequality(t *testing.T) {
	// A zone exactly at the current price counts for neither side.
	support, resistance := findNearestZones(96000,
		[]models.Zone{zone(models.ZoneSupport, 96000)},
		[]models.Zone{zone(models.ZoneResistance, 96000)},
	)

	assert.Nil(t, support)
	assert.Nil(t, resistance)
}

func TestDistancePercentage(t *testing.T) {
	assert.Equal(t, "+2.08%", distancePercentage(96000, 98000))
	assert.Equal(t, "-0.52%", distancePercentage(96000, 95500))
	assert.Equal(t, "0.00%", distancePercentage(96000, 96000))
}
