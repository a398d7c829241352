package pipeline

import (
	"context"

	"committee-trade-bot-go/internal/models"
)

// Stage is one step of the pipeline. A stage reads zero or more prior fields
// from the run context, writes its own disjoint set of fields, and records
// any failure into the context's error slot. Run always returns normally:
// errors are recorded, never propagated, and the orchestrator does not
// inspect the slot between stages.
type Stage interface {
	Name() string
	Run(ctx context.Context, rc *Context)
}

// PortfolioReader is the slice of the ledger the deliberation roles query.
type PortfolioReader interface {
	Balance() (float64, error)
	Position(symbol string) (float64, error)
	AverageBuyPrice(symbol string) (*float64, error)
}

// ZoneReader supplies recorded support/resistance zones to the zone stage.
type ZoneReader interface {
	ZonesByType(symbol, zoneType string, limit int) ([]models.Zone, error)
}

// positionContext is the portfolio snapshot handed to the deliberation
// prompts. Each role queries it independently at the time it runs.
type positionContext struct {
	HasPosition     bool
	Quantity        float64
	AverageBuyPrice *float64
	AvailableUSD    float64
}

func loadPositionContext(portfolio PortfolioReader, symbol string) (positionContext, error) {
	quantity, err := portfolio.Position(symbol)
	if err != nil {
		return positionContext{}, err
	}
	available, err := portfolio.Balance()
	if err != nil {
		return positionContext{}, err
	}

	pc := positionContext{
		HasPosition:  quantity > 0,
		Quantity:     quantity,
		AvailableUSD: available,
	}
	if pc.HasPosition {
		pc.AverageBuyPrice, err = portfolio.AverageBuyPrice(symbol)
		if err != nil {
			return positionContext{}, err
		}
	}
	return pc, nil
}
