package ledger

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"committee-trade-bot-go/internal/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DefaultSeedBalance is the available balance reported for an empty ledger.
const DefaultSeedBalance = 10000.0

// Domain failures. Both are fatal for the single operation that raised them;
// callers must not retry.
var (
	ErrInsufficientFunds    = errors.New("insufficient funds")
	ErrInsufficientQuantity = errors.New("insufficient quantity")
)

// Ledger is the append-only transaction log with derived balance, position
// and PnL queries. Balance and position are replayed from rows, never stored
// as mutable counters.
//
// Buy and Sell serialize through a single mutex: the available balance is
// portfolio-wide, so a per-symbol lock would still let two concurrent buys of
// different symbols both pass the funds check against a stale balance.
type Ledger struct {
	db     *gorm.DB
	logger *zap.Logger
	mu     sync.Mutex
}

// New creates a Ledger on top of an already migrated database.
func New(db *gorm.DB, logger *zap.Logger) *Ledger {
	return &Ledger{db: db, logger: logger}
}

// Balance returns the available balance: the snapshot on the most recent
// transaction, or the default seed value when the ledger is empty.
func (l *Ledger) Balance() (float64, error) {
	return l.balanceTx(l.db)
}

func (l *Ledger) balanceTx(tx *gorm.DB) (float64, error) {
	var t models.Transaction
	err := tx.Order("created_at DESC, id DESC").First(&t).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return DefaultSeedBalance, nil
	}
	if err != nil {
		return 0, fmt.Errorf("could not query latest transaction: %w", err)
	}
	return t.AvailableUSD, nil
}

// Position returns the held quantity for a symbol: sum of buys minus sum of
// sells. Zero when the symbol never traded.
func (l *Ledger) Position(symbol string) (float64, error) {
	return l.positionTx(l.db, symbol)
}

func (l *Ledger) positionTx(tx *gorm.DB, symbol string) (float64, error) {
	sum := func(action string) (float64, error) {
		var total float64
		err := tx.Model(&models.Transaction{}).
			Where("symbol = ? AND action = ?", symbol, action).
			Select("COALESCE(SUM(quantity), 0)").
			Scan(&total).Error
		return total, err
	}

	buys, err := sum(models.ActionBuy)
	if err != nil {
		return 0, fmt.Errorf("could not sum buys for %s: %w", symbol, err)
	}
	sells, err := sum(models.ActionSell)
	if err != nil {
		return 0, fmt.Errorf("could not sum sells for %s: %w", symbol, err)
	}
	return buys - sells, nil
}

// AverageBuyPrice returns the cost-weighted mean price over all buy
// transactions for a symbol, or nil when no buys exist. The average is
// all-time: it is not rebased when part of the position is sold.
func (l *Ledger) AverageBuyPrice(symbol string) (*float64, error) {
	return l.averageBuyPriceTx(l.db, symbol)
}

func (l *Ledger) averageBuyPriceTx(tx *gorm.DB, symbol string) (*float64, error) {
	var row struct {
		TotalCost     float64
		TotalQuantity float64
	}
	err := tx.Model(&models.Transaction{}).
		Where("symbol = ? AND action = ?", symbol, models.ActionBuy).
		Select("COALESCE(SUM(quantity * price), 0) AS total_cost, COALESCE(SUM(quantity), 0) AS total_quantity").
		Scan(&row).Error
	if err != nil {
		return nil, fmt.Errorf("could not aggregate buys for %s: %w", symbol, err)
	}
	if row.TotalQuantity == 0 {
		return nil, nil
	}
	avg := row.TotalCost / row.TotalQuantity
	return &avg, nil
}

// PortfolioValue returns the available balance plus, for every symbol with a
// known current price, position times price.
func (l *Ledger) PortfolioValue(currentPrices map[string]float64) (float64, error) {
	return l.portfolioValueTx(l.db, currentPrices)
}

func (l *Ledger) portfolioValueTx(tx *gorm.DB, currentPrices map[string]float64) (float64, error) {
	total, err := l.balanceTx(tx)
	if err != nil {
		return 0, err
	}
	for symbol, price := range currentPrices {
		quantity, err := l.positionTx(tx, symbol)
		if err != nil {
			return 0, err
		}
		if quantity > 0 {
			total += quantity * price
		}
	}
	return total, nil
}

// Buy validates available funds and appends a buy transaction. The balance
// snapshot is balance-before minus cost; the portfolio-value snapshot is
// computed after the purchase, so the newly bought lot is valued exactly once.
func (l *Ledger) Buy(symbol string, quantity, price float64, reason, agentName string) (*models.Transaction, error) {
	if quantity <= 0 || price <= 0 {
		return nil, fmt.Errorf("buy requires quantity and price > 0, got %v @ %v", quantity, price)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	var created *models.Transaction
	err := l.db.Transaction(func(tx *gorm.DB) error {
		totalCost := quantity * price
		available, err := l.balanceTx(tx)
		if err != nil {
			return err
		}
		if totalCost > available {
			return fmt.Errorf("%w: need $%.2f, have $%.2f", ErrInsufficientFunds, totalCost, available)
		}

		newAvailable := available - totalCost
		position, err := l.positionTx(tx, symbol)
		if err != nil {
			return err
		}
		portfolioValue := newAvailable + (position+quantity)*price

		t := models.Transaction{
			Symbol:         symbol,
			Action:         models.ActionBuy,
			Quantity:       quantity,
			Price:          price,
			Total:          totalCost,
			PortfolioValue: portfolioValue,
			AvailableUSD:   newAvailable,
			PnL:            nil, // no PnL on buys
			Reason:         reason,
			AgentName:      agentName,
			CreatedAt:      time.Now().UTC(),
		}
		if err := tx.Create(&t).Error; err != nil {
			return fmt.Errorf("could not save buy transaction: %w", err)
		}
		created = &t
		return nil
	})
	if err != nil {
		return nil, err
	}

	l.logger.Info("Buy executed",
		zap.String("symbol", symbol),
		zap.Float64("quantity", quantity),
		zap.Float64("price", price),
		zap.Float64("total", created.Total),
		zap.Float64("available_usd", created.AvailableUSD),
	)
	return created, nil
}

// Sell validates the held quantity, computes realized PnL against the average
// buy price, and appends a sell transaction with balance snapshot
// balance-before plus revenue.
func (l *Ledger) Sell(symbol string, quantity, price float64, reason, agentName string) (*models.Transaction, error) {
	if quantity <= 0 || price <= 0 {
		return nil, fmt.Errorf("sell requires quantity and price > 0, got %v @ %v", quantity, price)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	var created *models.Transaction
	err := l.db.Transaction(func(tx *gorm.DB) error {
		position, err := l.positionTx(tx, symbol)
		if err != nil {
			return err
		}
		if quantity > position {
			return fmt.Errorf("%w: selling %.8f, holding %.8f %s", ErrInsufficientQuantity, quantity, position, symbol)
		}

		revenue := quantity * price
		available, err := l.balanceTx(tx)
		if err != nil {
			return err
		}
		newAvailable := available + revenue

		avgBuyPrice, err := l.averageBuyPriceTx(tx, symbol)
		if err != nil {
			return err
		}
		var pnl *float64
		if avgBuyPrice != nil {
			v := (price - *avgBuyPrice) * quantity
			pnl = &v
		}

		portfolioValue := newAvailable + (position-quantity)*price

		t := models.Transaction{
			Symbol:         symbol,
			Action:         models.ActionSell,
			Quantity:       quantity,
			Price:          price,
			Total:          revenue,
			PortfolioValue: portfolioValue,
			AvailableUSD:   newAvailable,
			PnL:            pnl,
			Reason:         reason,
			AgentName:      agentName,
			CreatedAt:      time.Now().UTC(),
		}
		if err := tx.Create(&t).Error; err != nil {
			return fmt.Errorf("could not save sell transaction: %w", err)
		}
		created = &t
		return nil
	})
	if err != nil {
		return nil, err
	}

	l.logger.Info("Sell executed",
		zap.String("symbol", symbol),
		zap.Float64("quantity", quantity),
		zap.Float64("price", price),
		zap.Float64("total", created.Total),
		zap.Float64p("pnl", created.PnL),
		zap.Float64("available_usd", created.AvailableUSD),
	)
	return created, nil
}

// History returns the most recent transactions, newest first, optionally
// filtered by symbol. An empty symbol means no filter.
func (l *Ledger) History(limit int, symbol string) ([]models.Transaction, error) {
	if limit <= 0 {
		limit = 100
	}
	query := l.db.Order("created_at DESC, id DESC").Limit(limit)
	if symbol != "" {
		query = query.Where("symbol = ?", symbol)
	}

	var transactions []models.Transaction
	if err := query.Find(&transactions).Error; err != nil {
		return nil, fmt.Errorf("could not query transactions: %w", err)
	}
	return transactions, nil
}

// PnLSummary aggregates realized PnL over sell transactions within the
// trailing window.
type PnLSummary struct {
	PeriodDays     int     `json:"period_days"`
	TotalPnL       float64 `json:"total_pnl"`
	TradeCount     int     `json:"trade_count"`
	AvgPnLPerTrade float64 `json:"avg_pnl_per_trade"`
}

// PnLSummary sums PnL over sells in the last windowDays days. Returns zeros
// when no qualifying sells exist.
func (l *Ledger) PnLSummary(windowDays int) (PnLSummary, error) {
	cutoff := time.Now().UTC().AddDate(0, 0, -windowDays)

	var row struct {
		TotalPnL   float64
		TradeCount int
	}
	err := l.db.Model(&models.Transaction{}).
		Where("action = ? AND created_at >= ? AND pnl IS NOT NULL", models.ActionSell, cutoff).
		Select("COALESCE(SUM(pnl), 0) AS total_pn_l, COUNT(id) AS trade_count").
		Scan(&row).Error
	if err != nil {
		return PnLSummary{}, fmt.Errorf("could not aggregate pnl: %w", err)
	}

	summary := PnLSummary{
		PeriodDays: windowDays,
		TotalPnL:   row.TotalPnL,
		TradeCount: row.TradeCount,
	}
	if row.TradeCount > 0 {
		summary.AvgPnLPerTrade = row.TotalPnL / float64(row.TradeCount)
	}
	return summary, nil
}

// PositionDetail describes one open position in the portfolio summary.
type PositionDetail struct {
	Quantity        float64  `json:"quantity"`
	AverageBuyPrice *float64 `json:"avg_buy_price,omitempty"`
}

// PortfolioSummary is the available balance plus every open position.
type PortfolioSummary struct {
	AvailableUSD   float64                   `json:"available_usd"`
	Positions      map[string]PositionDetail `json:"positions"`
	TotalPositions int                       `json:"total_positions"`
}

// PortfolioSummary reports the available balance and all symbols with a
// positive position.
func (l *Ledger) PortfolioSummary() (PortfolioSummary, error) {
	available, err := l.Balance()
	if err != nil {
		return PortfolioSummary{}, err
	}

	var symbols []string
	err = l.db.Model(&models.Transaction{}).
		Where("action = ?", models.ActionBuy).
		Distinct("symbol").
		Pluck("symbol", &symbols).Error
	if err != nil {
		return PortfolioSummary{}, fmt.Errorf("could not list traded symbols: %w", err)
	}

	summary := PortfolioSummary{
		AvailableUSD: available,
		Positions:    make(map[string]PositionDetail),
	}
	for _, symbol := range symbols {
		quantity, err := l.Position(symbol)
		if err != nil {
			return PortfolioSummary{}, err
		}
		if quantity <= 0 {
			continue
		}
		avg, err := l.AverageBuyPrice(symbol)
		if err != nil {
			return PortfolioSummary{}, err
		}
		summary.Positions[symbol] = PositionDetail{Quantity: quantity, AverageBuyPrice: avg}
	}
	summary.TotalPositions = len(summary.Positions)
	return summary, nil
}
