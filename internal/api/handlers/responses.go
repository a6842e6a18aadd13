package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hyperfolio/wallet-tracker/internal/database"
	"github.com/hyperfolio/wallet-tracker/internal/hyperliquid"
)

// SuccessResponse is the envelope for successful responses
type SuccessResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// ErrorResponse is the envelope for error responses
type ErrorResponse struct {
	Error string `json:"error"`
}

// respondError maps domain errors onto HTTP statuses.
func respondError(c *gin.Context, err error) {
	var httpErr *hyperliquid.HTTPError

	switch {
	case errors.Is(err, database.ErrNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error()})
	case errors.Is(err, hyperliquid.ErrInvalidAddress):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	case errors.Is(err, hyperliquid.ErrRateLimited):
		c.JSON(http.StatusTooManyRequests, ErrorResponse{Error: err.Error()})
	case errors.Is(err, hyperliquid.ErrNoData):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error()})
	case errors.As(err, &httpErr):
		c.JSON(http.StatusBadGateway, ErrorResponse{Error: err.Error()})
	default:
		var netErr *hyperliquid.NetworkError
		if errors.As(err, &netErr) {
			c.JSON(http.StatusBadGateway, ErrorResponse{Error: err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
	}
}
