package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hyperfolio/wallet-tracker/internal/database"
	"github.com/hyperfolio/wallet-tracker/internal/hyperliquid"
)

func testContext(t *testing.T, url string) *gin.Context {
	t.Helper()
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	req, err := http.NewRequest(http.MethodGet, url, nil)
	require.NoError(t, err)
	c.Request = req
	return c
}

func TestStartTimeFromDaysDefault(t *testing.T) {
	c := testContext(t, "/wallets/x/stats")

	got := startTimeFromDays(c, 30)
	want := time.Now().Add(-30 * 24 * time.Hour).UnixMilli()
	assert.InDelta(t, want, got, float64(time.Second.Milliseconds()))
}

func TestStartTimeFromDaysQueryOverride(t *testing.T) {
	c := testContext(t, "/wallets/x/stats?days=7")

	got := startTimeFromDays(c, 30)
	want := time.Now().Add(-7 * 24 * time.Hour).UnixMilli()
	assert.InDelta(t, want, got, float64(time.Second.Milliseconds()))
}

func TestStartTimeFromDaysRejectsGarbage(t *testing.T) {
	for _, raw := range []string{"abc", "-5", "0", "9999"} {
		c := testContext(t, "/wallets/x/stats?days="+raw)

		got := startTimeFromDays(c, 30)
		want := time.Now().Add(-30 * 24 * time.Hour).UnixMilli()
		assert.InDelta(t, want, got, float64(time.Second.Milliseconds()), "days=%s", raw)
	}
}

func TestShortAddress(t *testing.T) {
	assert.Equal(t, "0x1234...5678", shortAddress("0x1234567890abcdef1234567890abcdef12345678"))
	assert.Equal(t, "0xabc", shortAddress("0xabc"))
}

func TestRespondErrorStatusMapping(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"not found", database.ErrNotFound, http.StatusNotFound},
		{"invalid address", hyperliquid.ErrInvalidAddress, http.StatusBadRequest},
		{"rate limited", hyperliquid.ErrRateLimited, http.StatusTooManyRequests},
		{"no data", hyperliquid.ErrNoData, http.StatusNotFound},
		{"upstream http", &hyperliquid.HTTPError{Status: 502}, http.StatusBadGateway},
		{"network", &hyperliquid.NetworkError{Err: assert.AnError}, http.StatusBadGateway},
		{"unknown", assert.AnError, http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			gin.SetMode(gin.TestMode)
			recorder := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(recorder)

			respondError(c, tc.err)
			assert.Equal(t, tc.status, recorder.Code)
		})
	}
}
