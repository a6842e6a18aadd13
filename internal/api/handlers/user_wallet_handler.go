package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/hyperfolio/wallet-tracker/internal/database"
	"github.com/hyperfolio/wallet-tracker/internal/hyperliquid"
	"github.com/hyperfolio/wallet-tracker/internal/services"
)

// defaultUserID keys the settings row when no user header is sent. The
// service runs single-user today; the user_id column exists so multi-user
// does not need a migration.
const defaultUserID = "default"

// UserWalletHandler manages the user's connected wallet and copy-trading
// settings.
type UserWalletHandler struct {
	repo     *database.Repository
	client   *hyperliquid.Client
	eventBus *services.EventBus
	logger   *zap.Logger
	validate *validator.Validate
}

// NewUserWalletHandler creates a new user wallet handler
func NewUserWalletHandler(
	repo *database.Repository,
	client *hyperliquid.Client,
	eventBus *services.EventBus,
	logger *zap.Logger,
) *UserWalletHandler {
	return &UserWalletHandler{
		repo:     repo,
		client:   client,
		eventBus: eventBus,
		logger:   logger,
		validate: validator.New(),
	}
}

// ConnectWalletRequest is the payload for connecting the user's wallet.
type ConnectWalletRequest struct {
	WalletAddress string `json:"wallet_address" binding:"required"`
}

// CopyTradingRequest updates the copy-trading configuration. Zero values
// are meaningful, so everything is a pointer and only supplied fields
// change.
type CopyTradingRequest struct {
	MaxTradeSize     *decimal.Decimal          `json:"max_trade_size"`
	RiskPercentage   *decimal.Decimal          `json:"risk_percentage"`
	MaxOpenPositions *int                      `json:"max_open_positions" validate:"omitempty,min=1,max=100"`
	AutoCopyEnabled  *bool                     `json:"auto_copy_enabled"`
	StopLossEnabled  *bool                     `json:"stop_loss_enabled"`
	MarketOverrides  *database.MarketOverrides `json:"market_overrides"`
}

// GetSettings handles GET /user-wallet
func (h *UserWalletHandler) GetSettings(c *gin.Context) {
	settings, err := h.repo.GetUserWalletSettings(c.Request.Context(), userID(c))
	if errors.Is(err, database.ErrNotFound) {
		// No row yet: report the defaults without creating one.
		c.JSON(http.StatusOK, SuccessResponse{
			Message: "no wallet connected",
			Data:    defaultSettings(userID(c)),
		})
		return
	}
	if err != nil {
		h.logger.Error("failed to load user wallet settings", zap.Error(err))
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Message: "user wallet settings",
		Data:    settings,
	})
}

// ConnectWallet handles PUT /user-wallet/connect
func (h *UserWalletHandler) ConnectWallet(c *gin.Context) {
	var req ConnectWalletRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request: " + err.Error()})
		return
	}

	if !h.client.ValidateAddress(req.WalletAddress) {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid wallet address: " + req.WalletAddress})
		return
	}

	settings := h.currentOrDefault(c)
	settings.WalletAddress = &req.WalletAddress

	if err := h.repo.UpsertUserWalletSettings(c.Request.Context(), settings); err != nil {
		h.logger.Error("failed to connect wallet", zap.Error(err))
		respondError(c, err)
		return
	}

	h.eventBus.Publish(services.Event{
		Type: services.EventSettingsUpdated,
		Data: map[string]interface{}{
			"user_id":        settings.UserID,
			"wallet_address": req.WalletAddress,
		},
	})

	c.JSON(http.StatusOK, SuccessResponse{
		Message: "wallet connected",
		Data:    settings,
	})
}

// UpdateCopyTrading handles PUT /user-wallet/copy-trading
func (h *UserWalletHandler) UpdateCopyTrading(c *gin.Context) {
	var req CopyTradingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request: " + err.Error()})
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request: " + err.Error()})
		return
	}
	if req.MaxTradeSize != nil && req.MaxTradeSize.IsNegative() {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "max_trade_size must not be negative"})
		return
	}
	if req.RiskPercentage != nil &&
		(req.RiskPercentage.IsNegative() || req.RiskPercentage.GreaterThan(decimal.NewFromInt(100))) {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "risk_percentage must be between 0 and 100"})
		return
	}

	settings := h.currentOrDefault(c)
	if req.MaxTradeSize != nil {
		settings.MaxTradeSize = *req.MaxTradeSize
	}
	if req.RiskPercentage != nil {
		settings.RiskPercentage = *req.RiskPercentage
	}
	if req.MaxOpenPositions != nil {
		settings.MaxOpenPositions = *req.MaxOpenPositions
	}
	if req.AutoCopyEnabled != nil {
		settings.AutoCopyEnabled = *req.AutoCopyEnabled
	}
	if req.StopLossEnabled != nil {
		settings.StopLossEnabled = *req.StopLossEnabled
	}
	if req.MarketOverrides != nil {
		settings.MarketOverrides = *req.MarketOverrides
	}

	if err := h.repo.UpsertUserWalletSettings(c.Request.Context(), settings); err != nil {
		h.logger.Error("failed to update copy-trading settings", zap.Error(err))
		respondError(c, err)
		return
	}

	h.eventBus.Publish(services.Event{
		Type: services.EventSettingsUpdated,
		Data: map[string]interface{}{
			"user_id": settings.UserID,
		},
	})

	c.JSON(http.StatusOK, SuccessResponse{
		Message: "copy-trading settings updated",
		Data:    settings,
	})
}

func (h *UserWalletHandler) currentOrDefault(c *gin.Context) *database.UserWalletSettings {
	settings, err := h.repo.GetUserWalletSettings(c.Request.Context(), userID(c))
	if err != nil {
		return defaultSettings(userID(c))
	}
	return settings
}

func userID(c *gin.Context) string {
	if id := c.GetHeader("X-User-ID"); id != "" {
		return id
	}
	return defaultUserID
}

func defaultSettings(userID string) *database.UserWalletSettings {
	return &database.UserWalletSettings{
		UserID:           userID,
		MaxTradeSize:     decimal.NewFromInt(1000),
		RiskPercentage:   decimal.NewFromInt(2),
		MaxOpenPositions: 5,
		AutoCopyEnabled:  true,
		StopLossEnabled:  true,
		MarketOverrides:  database.MarketOverrides{},
	}
}
