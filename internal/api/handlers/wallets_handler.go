package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hyperfolio/wallet-tracker/internal/database"
	"github.com/hyperfolio/wallet-tracker/internal/hyperliquid"
	"github.com/hyperfolio/wallet-tracker/internal/services"
)

// WalletsHandler manages the tracked-wallet collection.
type WalletsHandler struct {
	repo     *database.Repository
	client   *hyperliquid.Client
	eventBus *services.EventBus
	logger   *zap.Logger
}

// NewWalletsHandler creates a new wallets handler
func NewWalletsHandler(
	repo *database.Repository,
	client *hyperliquid.Client,
	eventBus *services.EventBus,
	logger *zap.Logger,
) *WalletsHandler {
	return &WalletsHandler{
		repo:     repo,
		client:   client,
		eventBus: eventBus,
		logger:   logger,
	}
}

// CreateWalletRequest is the payload for tracking a new wallet.
type CreateWalletRequest struct {
	Address     string `json:"address" binding:"required"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// UpdateWalletRequest is the payload for editing a tracked wallet.
type UpdateWalletRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	IsFollowing *bool   `json:"is_following"`
	IsActive    *bool   `json:"is_active"`
}

// ListWallets handles GET /wallets
func (h *WalletsHandler) ListWallets(c *gin.Context) {
	wallets, err := h.repo.ListWallets(c.Request.Context())
	if err != nil {
		h.logger.Error("failed to list wallets", zap.Error(err))
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Message: fmt.Sprintf("found %d wallets", len(wallets)),
		Data:    wallets,
	})
}

// CreateWallet handles POST /wallets
func (h *WalletsHandler) CreateWallet(c *gin.Context) {
	var req CreateWalletRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request: " + err.Error()})
		return
	}

	if !h.client.ValidateAddress(req.Address) {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid wallet address: " + req.Address})
		return
	}

	ctx := c.Request.Context()

	if existing, err := h.repo.GetWalletByAddress(ctx, req.Address); err == nil {
		c.JSON(http.StatusConflict, ErrorResponse{
			Error: fmt.Sprintf("wallet %s is already tracked as %s", req.Address, existing.ID),
		})
		return
	}

	wallet := &database.TrackedWallet{
		Address:     req.Address,
		Name:        req.Name,
		Description: req.Description,
		IsFollowing: true,
		IsActive:    true,
	}
	if wallet.Name == "" {
		wallet.Name = shortAddress(req.Address)
	}

	if err := h.repo.CreateWallet(ctx, wallet); err != nil {
		h.logger.Error("failed to create wallet", zap.String("address", req.Address), zap.Error(err))
		respondError(c, err)
		return
	}

	// Seed the headline stats right away so the list view is not empty
	// until the next refresh cycle. Upstream being down is not fatal.
	h.seedStats(c, wallet)

	h.eventBus.Publish(services.Event{
		Type: services.EventWalletAdded,
		Data: map[string]interface{}{
			"id":      wallet.ID.String(),
			"address": wallet.Address,
			"name":    wallet.Name,
		},
	})

	c.JSON(http.StatusCreated, SuccessResponse{
		Message: "wallet tracked",
		Data:    wallet,
	})
}

// GetWallet handles GET /wallets/:id
func (h *WalletsHandler) GetWallet(c *gin.Context) {
	wallet, err := h.lookupWallet(c)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Message: "wallet found",
		Data:    wallet,
	})
}

// UpdateWallet handles PUT /wallets/:id
func (h *WalletsHandler) UpdateWallet(c *gin.Context) {
	wallet, err := h.lookupWallet(c)
	if err != nil {
		respondError(c, err)
		return
	}

	var req UpdateWalletRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request: " + err.Error()})
		return
	}

	if req.Name != nil {
		wallet.Name = *req.Name
	}
	if req.Description != nil {
		wallet.Description = *req.Description
	}
	if req.IsFollowing != nil {
		wallet.IsFollowing = *req.IsFollowing
	}
	if req.IsActive != nil {
		wallet.IsActive = *req.IsActive
	}

	if err := h.repo.UpdateWallet(c.Request.Context(), wallet); err != nil {
		h.logger.Error("failed to update wallet", zap.String("id", wallet.ID.String()), zap.Error(err))
		respondError(c, err)
		return
	}

	h.eventBus.Publish(services.Event{
		Type: services.EventWalletUpdated,
		Data: map[string]interface{}{
			"id":      wallet.ID.String(),
			"address": wallet.Address,
		},
	})

	c.JSON(http.StatusOK, SuccessResponse{
		Message: "wallet updated",
		Data:    wallet,
	})
}

// DeleteWallet handles DELETE /wallets/:id
func (h *WalletsHandler) DeleteWallet(c *gin.Context) {
	wallet, err := h.lookupWallet(c)
	if err != nil {
		respondError(c, err)
		return
	}

	if err := h.repo.DeleteWallet(c.Request.Context(), wallet.ID); err != nil {
		h.logger.Error("failed to delete wallet", zap.String("id", wallet.ID.String()), zap.Error(err))
		respondError(c, err)
		return
	}

	// Drop the wallet's cached upstream responses so re-adding it later
	// starts from fresh data.
	h.client.ClearCache(wallet.Address)

	h.eventBus.Publish(services.Event{
		Type: services.EventWalletRemoved,
		Data: map[string]interface{}{
			"id":      wallet.ID.String(),
			"address": wallet.Address,
		},
	})

	c.JSON(http.StatusOK, SuccessResponse{
		Message: "wallet removed",
	})
}

func (h *WalletsHandler) lookupWallet(c *gin.Context) (*database.TrackedWallet, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return nil, fmt.Errorf("invalid wallet id %q: %w", c.Param("id"), database.ErrNotFound)
	}
	return h.repo.GetWallet(c.Request.Context(), id)
}

func (h *WalletsHandler) seedStats(c *gin.Context, wallet *database.TrackedWallet) {
	ctx := c.Request.Context()

	summary, err := h.client.AccountSummary(ctx, wallet.Address)
	if err != nil {
		h.logger.Warn("initial stats fetch failed",
			zap.String("address", wallet.Address),
			zap.Error(err))
		return
	}

	startTime := time.Now().Add(-30 * 24 * time.Hour).UnixMilli()
	stats, err := h.client.TradingStats(ctx, wallet.Address, startTime)
	if err != nil {
		h.logger.Warn("initial stats fetch failed",
			zap.String("address", wallet.Address),
			zap.Error(err))
		return
	}

	wallet.TotalValue = summary.TotalValue
	wallet.WinRate = stats.WinRate
	wallet.TotalTrades = int64(stats.TotalTrades)
	wallet.AvgTradeSize = stats.AvgTrade
	wallet.TotalVolume = stats.TotalVolume
	wallet.OpenPositions = int64(stats.OpenOrders)

	if err := h.repo.UpdateWalletStats(ctx, wallet); err != nil {
		h.logger.Warn("failed to persist initial stats",
			zap.String("address", wallet.Address),
			zap.Error(err))
	}
}

func shortAddress(address string) string {
	if len(address) <= 10 {
		return address
	}
	return address[:6] + "..." + address[len(address)-4:]
}
