// Package server exposes the analysis pipeline and the transaction ledger
// over HTTP.
package server

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"committee-trade-bot-go/internal/config"
	"committee-trade-bot-go/internal/ledger"
	"committee-trade-bot-go/internal/models"
	"committee-trade-bot-go/internal/pipeline"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Runner starts one analysis run. Satisfied by *pipeline.Pipeline.
type Runner interface {
	Run(ctx context.Context, symbols []string, newsLimit int) *pipeline.Context
}

// LedgerReader is the slice of the ledger the read endpoints use.
type LedgerReader interface {
	History(limit int, symbol string) ([]models.Transaction, error)
	PnLSummary(windowDays int) (ledger.PnLSummary, error)
	PortfolioSummary() (ledger.PortfolioSummary, error)
}

// ScheduleReader reports the next scheduled firing time. Satisfied by
// *scheduler.Scheduler; nil means the scheduler is disabled.
type ScheduleReader interface {
	NextRun() time.Time
}

// Server is the HTTP API: one endpoint to trigger an analysis run and read
// endpoints over the ledger. Concurrent analyze requests are not serialized
// against each other or against scheduled runs.
type Server struct {
	runner   Runner
	ledger   LedgerReader
	schedule ScheduleReader
	router   *gin.Engine
	http     *http.Server
	logger   *zap.Logger
}

// New creates the API server with its routes registered. schedule may be nil
// when no scheduler is running.
func New(cfg *config.Server, runner Runner, ledgerReader LedgerReader, schedule ScheduleReader, logger *zap.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	s := &Server{
		runner:   runner,
		ledger:   ledgerReader,
		schedule: schedule,
		router:   router,
		logger:   logger,
		http: &http.Server{
			Addr:    fmt.Sprintf(":%d", cfg.Port),
			Handler: router,
		},
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.router.GET("/health", s.handleHealth)
	api := s.router.Group("/api/trading")
	api.POST("/analyze", s.handleAnalyze)
	api.GET("/transactions", s.handleTransactions)
	api.GET("/portfolio", s.handlePortfolio)
	api.GET("/pnl", s.handlePnL)
	api.GET("/scheduler-status", s.handleSchedulerStatus)
}

// Start runs the HTTP server until it is shut down.
func (s *Server) Start() error {
	s.logger.Info("Starting API server", zap.String("addr", s.http.Addr))
	if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests and stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down API server...")
	return s.http.Shutdown(ctx)
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type analyzeRequest struct {
	Symbols   []string `json:"symbols"`
	NewsLimit int      `json:"news_limit"`
}

// analyzeResponse mirrors the run context: optional fields stay null when
// the producing stage did not complete.
type analyzeResponse struct {
	Success      bool     `json:"success"`
	Error        string   `json:"error,omitempty"`
	Symbols      []string `json:"symbols"`
	CurrentPrice *float64 `json:"current_price,omitempty"`

	NewsSentiment           *string `json:"news_sentiment,omitempty"`
	Momentum                *string `json:"momentum,omitempty"`
	Crossover               *string `json:"crossover,omitempty"`
	SentimentIndex          *int    `json:"sentiment_index,omitempty"`
	SentimentClassification *string `json:"sentiment_classification,omitempty"`

	NearestSupport       *float64 `json:"nearest_support,omitempty"`
	DistanceToSupport    *string  `json:"distance_to_support,omitempty"`
	NearestResistance    *float64 `json:"nearest_resistance,omitempty"`
	DistanceToResistance *string  `json:"distance_to_resistance,omitempty"`

	Proposal *pipeline.Proposal `json:"proposal,omitempty"`
	Critique *pipeline.Critique `json:"critique,omitempty"`
	Decision *pipeline.Decision `json:"decision,omitempty"`
}

func (s *Server) handleAnalyze(c *gin.Context) {
	var req analyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	rc := s.runner.Run(c.Request.Context(), req.Symbols, req.NewsLimit)

	resp := analyzeResponse{
		Success:                 rc.Succeeded(),
		Error:                   rc.ErrorMessage,
		Symbols:                 rc.Symbols,
		CurrentPrice:            rc.CurrentPrice,
		NewsSentiment:           rc.NewsSentiment,
		Momentum:                rc.Momentum,
		Crossover:               rc.Crossover,
		SentimentIndex:          rc.SentimentIndex,
		SentimentClassification: rc.SentimentClassification,
		NearestSupport:          rc.NearestSupport,
		DistanceToSupport:       rc.DistanceToSupport,
		NearestResistance:       rc.NearestResistance,
		DistanceToResistance:    rc.DistanceToResistance,
		Proposal:                rc.Proposal,
		Critique:                rc.Critique,
		Decision:                rc.Decision,
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) handleSchedulerStatus(c *gin.Context) {
	if s.schedule == nil {
		c.JSON(http.StatusOK, gin.H{"enabled": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"enabled":  true,
		"next_run": s.schedule.NextRun(),
	})
}

func (s *Server) handleTransactions(c *gin.Context) {
	limit := 50
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		limit = parsed
	}

	transactions, err := s.ledger.History(limit, c.Query("symbol"))
	if err != nil {
		s.logger.Error("Failed to read transaction history", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"transactions": transactions, "count": len(transactions)})
}

func (s *Server) handlePortfolio(c *gin.Context) {
	summary, err := s.ledger.PortfolioSummary()
	if err != nil {
		s.logger.Error("Failed to read portfolio summary", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (s *Server) handlePnL(c *gin.Context) {
	days := 30
	if raw := c.Query("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid days"})
			return
		}
		days = parsed
	}

	summary, err := s.ledger.PnLSummary(days)
	if err != nil {
		s.logger.Error("Failed to aggregate pnl", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, summary)
}

// ShutdownTimeout bounds how long Shutdown waits for in-flight requests;
// analyze runs can take a while against a live model.
const ShutdownTimeout = 30 * time.Second
