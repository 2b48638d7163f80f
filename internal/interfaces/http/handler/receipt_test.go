package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/exportops/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Binding failures must be rejected before any service call, so these
// routes are exercised with unwired handlers.
func TestHandlers_InvalidID(t *testing.T) {
	router := gin.New()
	api := router.Group("/api/v1")
	NewReceiptHandler(nil).RegisterRoutes(api)
	NewDispatchHandler(nil).RegisterRoutes(api)
	NewOrderHandler(nil).RegisterRoutes(api)
	NewPickupHandler(nil).RegisterRoutes(api)
	NewProductHandler(nil).RegisterRoutes(api)
	NewWarehouseHandler(nil).RegisterRoutes(api)

	tests := []struct {
		name   string
		method string
		path   string
	}{
		{"get receipt", http.MethodGet, "/api/v1/receipts/not-a-uuid"},
		{"delete receipt", http.MethodDelete, "/api/v1/receipts/not-a-uuid"},
		{"get dispatch", http.MethodGet, "/api/v1/dispatches/not-a-uuid"},
		{"reverse dispatch", http.MethodPost, "/api/v1/dispatches/not-a-uuid/reverse"},
		{"get order", http.MethodGet, "/api/v1/orders/not-a-uuid"},
		{"order commitments", http.MethodGet, "/api/v1/orders/not-a-uuid/commitments"},
		{"complete pickup", http.MethodPost, "/api/v1/pickups/not-a-uuid/complete"},
		{"get product", http.MethodGet, "/api/v1/products/not-a-uuid"},
		{"get warehouse", http.MethodGet, "/api/v1/warehouses/not-a-uuid"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(tt.method, tt.path, nil)
			router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusBadRequest, w.Code)

			var resp dto.Response
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.False(t, resp.Success)
			require.NotNil(t, resp.Error)
			assert.Equal(t, dto.ErrCodeBadRequest, resp.Error.Code)
		})
	}
}

func TestHandlers_MalformedBody(t *testing.T) {
	router := gin.New()
	api := router.Group("/api/v1")
	NewReceiptHandler(nil).RegisterRoutes(api)
	NewDispatchHandler(nil).RegisterRoutes(api)
	NewOrderHandler(nil).RegisterRoutes(api)

	tests := []struct {
		name string
		path string
	}{
		{"ingest receipt", "/api/v1/receipts"},
		{"allocate dispatch", "/api/v1/dispatches"},
		{"create order", "/api/v1/orders"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, tt.path, strings.NewReader("{not json"))
			req.Header.Set("Content-Type", "application/json")
			router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}
