package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hyperfolio/wallet-tracker/internal/database"
	"github.com/hyperfolio/wallet-tracker/internal/hyperliquid"
)

// WalletDataHandler serves live upstream data for a tracked wallet. Every
// endpoint goes through the client, so caching and rate limiting apply
// uniformly.
type WalletDataHandler struct {
	repo   *database.Repository
	client *hyperliquid.Client
	logger *zap.Logger
}

// NewWalletDataHandler creates a new wallet data handler
func NewWalletDataHandler(repo *database.Repository, client *hyperliquid.Client, logger *zap.Logger) *WalletDataHandler {
	return &WalletDataHandler{
		repo:   repo,
		client: client,
		logger: logger,
	}
}

// GetSummary handles GET /wallets/:id/summary
func (h *WalletDataHandler) GetSummary(c *gin.Context) {
	wallet, err := h.lookupWallet(c)
	if err != nil {
		respondError(c, err)
		return
	}

	summary, err := h.client.AccountSummary(c.Request.Context(), wallet.Address)
	if err != nil {
		h.logger.Warn("summary fetch failed", zap.String("address", wallet.Address), zap.Error(err))
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Message: "account summary",
		Data:    summary,
	})
}

// GetEquityHistory handles GET /wallets/:id/equity-history?days=90
func (h *WalletDataHandler) GetEquityHistory(c *gin.Context) {
	wallet, err := h.lookupWallet(c)
	if err != nil {
		respondError(c, err)
		return
	}

	startTime := startTimeFromDays(c, 90)
	history, err := h.client.EquityHistory(c.Request.Context(), wallet.Address, startTime)
	if err != nil {
		h.logger.Warn("equity history fetch failed", zap.String("address", wallet.Address), zap.Error(err))
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Message: "equity history",
		Data:    history,
	})
}

// GetStats handles GET /wallets/:id/stats?days=30
func (h *WalletDataHandler) GetStats(c *gin.Context) {
	wallet, err := h.lookupWallet(c)
	if err != nil {
		respondError(c, err)
		return
	}

	startTime := startTimeFromDays(c, 30)
	stats, err := h.client.TradingStats(c.Request.Context(), wallet.Address, startTime)
	if err != nil {
		h.logger.Warn("stats fetch failed", zap.String("address", wallet.Address), zap.Error(err))
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Message: "trading stats",
		Data:    stats,
	})
}

// GetFills handles GET /wallets/:id/fills?days=90
func (h *WalletDataHandler) GetFills(c *gin.Context) {
	wallet, err := h.lookupWallet(c)
	if err != nil {
		respondError(c, err)
		return
	}

	startTime := startTimeFromDays(c, 90)
	fills, err := h.client.UserFills(c.Request.Context(), wallet.Address, startTime)
	if err != nil {
		h.logger.Warn("fills fetch failed", zap.String("address", wallet.Address), zap.Error(err))
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Message: "user fills",
		Data:    fills,
	})
}

func (h *WalletDataHandler) lookupWallet(c *gin.Context) (*database.TrackedWallet, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		// Fall back to address lookup so the data endpoints also work with
		// a raw address in the path.
		if h.client.ValidateAddress(c.Param("id")) {
			return h.repo.GetWalletByAddress(c.Request.Context(), c.Param("id"))
		}
		return nil, database.ErrNotFound
	}
	return h.repo.GetWallet(c.Request.Context(), id)
}

// startTimeFromDays converts the days query param into an epoch-millis
// start time. Invalid or missing values fall back to the default.
func startTimeFromDays(c *gin.Context, defaultDays int) int64 {
	days := defaultDays
	if raw := c.Query("days"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 && parsed <= 365 {
			days = parsed
		}
	}
	return time.Now().Add(-time.Duration(days) * 24 * time.Hour).UnixMilli()
}
