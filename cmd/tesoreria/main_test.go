package main

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/tesoreria/internal/app"
	"github.com/odyssey-erp/tesoreria/internal/observability"
	_ "github.com/odyssey-erp/tesoreria/testing"
)

func TestMainSkipsStartupInTestMode(t *testing.T) {
	require.True(t, app.InTestMode())
	main()
}

func TestNewServerServesReportRoutes(t *testing.T) {
	cfg := &app.Config{
		AppAddr:            ":0",
		AppReadTimeout:     time.Second,
		AppWriteTimeout:    time.Minute,
		AppRequestTimeout:  30 * time.Second,
		FetchTimeout:       time.Second,
		FetchConcurrency:   1,
		FetchMaxBodyBytes:  1 << 20,
		RateLimitPerMinute: 10,
	}
	server, err := newServer(cfg, nil, observability.NewMetrics(), nil)
	require.NoError(t, err)
	assert.Equal(t, time.Minute, server.WriteTimeout)

	rr := httptest.NewRecorder()
	server.Handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = httptest.NewRecorder()
	server.Handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/generar-reporte", nil))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}
