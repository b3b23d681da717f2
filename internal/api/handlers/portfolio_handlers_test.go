package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/foliolink/folio_service/internal/api/handlers"
	"github.com/foliolink/folio_service/internal/api/middleware"
	"github.com/foliolink/folio_service/internal/domain/entities"
	"github.com/foliolink/folio_service/internal/domain/services/portfolio"
	"github.com/foliolink/folio_service/internal/infrastructure/store"
)

// stubMarket serves fixed quotes and fails for unknown tickers.
type stubMarket struct {
	quotes map[string]*entities.Quote
}

func (m *stubMarket) Quote(ctx context.Context, ticker string) (*entities.Quote, error) {
	if q, ok := m.quotes[ticker]; ok {
		return q, nil
	}
	return nil, errors.New("quote source unavailable")
}

func setupRouter(t *testing.T, market *stubMarket) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	if market == nil {
		market = &stubMarket{}
	}

	log := zaptest.NewLogger(t)
	svc := portfolio.NewService(
		store.NewTieredStore(store.NewMemoryBackend(), store.NewMemoryBackend(), log),
		market,
		portfolio.Config{BaseURL: "https://folio.test", QuoteTimeout: time.Second},
		log,
	)
	h := handlers.NewPortfolioHandler(svc, log)

	router := gin.New()
	router.Use(middleware.CORS())

	api := router.Group("/api")
	api.POST("/portfolios", h.Create)
	api.GET("/portfolios/:id", h.View)
	api.GET("/portfolios/:id/prices", h.Prices)
	api.PUT("/portfolios/:id/:secret", h.Update)
	api.DELETE("/portfolios/:id/:secret", h.Delete)
	api.GET("/edit/:id/:secret", h.EditLoad)
	return router
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func createPortfolio(t *testing.T, router *gin.Engine) entities.CreateResponse {
	t.Helper()
	w := doJSON(t, router, http.MethodPost, "/api/portfolios", entities.CreateRequest{
		Holdings: []entities.Holding{
			{Ticker: "AAPL", Quantity: decimal.NewFromInt(10), Category: "Tech"},
		},
		Categories:    map[string]entities.Category{"Tech": {Color: "#4287f5"}},
		CategoryOrder: []string{"Tech"},
		Duration:      entities.DurationForever,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp entities.CreateResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.True(t, resp.Success)
	return resp
}

func secretOf(t *testing.T, resp entities.CreateResponse) string {
	t.Helper()
	parts := strings.Split(resp.EditURL, "/")
	return parts[len(parts)-1]
}

func TestPortfolioHandler_CreateAndView(t *testing.T) {
	router := setupRouter(t, nil)

	created := createPortfolio(t, router)
	assert.NotEmpty(t, created.ID)
	assert.Contains(t, created.ViewURL, created.ID)
	assert.Contains(t, created.EditURL, created.ID)

	w := doJSON(t, router, http.MethodGet, "/api/portfolios/"+created.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var view entities.ViewResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &view))
	assert.Equal(t, created.ID, view.ID)
	require.Len(t, view.Holdings, 1)
	assert.Equal(t, "AAPL", view.Holdings[0].Ticker)
}

func TestPortfolioHandler_CreateInvalidBody(t *testing.T) {
	router := setupRouter(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/portfolios", strings.NewReader("{not json"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var errResp entities.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &errResp))
	assert.NotEmpty(t, errResp.Error)
}

func TestPortfolioHandler_ViewUnknown(t *testing.T) {
	router := setupRouter(t, nil)

	w := doJSON(t, router, http.MethodGet, "/api/portfolios/doesnotexist", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPortfolioHandler_EditLoadStatuses(t *testing.T) {
	router := setupRouter(t, nil)
	created := createPortfolio(t, router)
	secret := secretOf(t, created)

	tests := []struct {
		name       string
		path       string
		wantStatus int
	}{
		{name: "correct secret", path: "/api/edit/" + created.ID + "/" + secret, wantStatus: http.StatusOK},
		{name: "wrong secret is forbidden", path: "/api/edit/" + created.ID + "/wrongsecret", wantStatus: http.StatusForbidden},
		{name: "unknown id is not found", path: "/api/edit/nosuchid/" + secret, wantStatus: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(t, router, http.MethodGet, tt.path, nil)
			assert.Equal(t, tt.wantStatus, w.Code, w.Body.String())
		})
	}
}

func TestPortfolioHandler_UpdateFlow(t *testing.T) {
	router := setupRouter(t, nil)
	created := createPortfolio(t, router)
	secret := secretOf(t, created)

	update := entities.UpdateRequest{
		Holdings:      []entities.Holding{{Ticker: "MSFT", Quantity: decimal.NewFromInt(3)}},
		Categories:    map[string]entities.Category{"Core": {}},
		CategoryOrder: []string{"Core"},
		Duration:      entities.Duration1Week,
	}

	w := doJSON(t, router, http.MethodPut, "/api/portfolios/"+created.ID+"/wrongsecret", update)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// Original data is intact after the rejected update.
	w = doJSON(t, router, http.MethodGet, "/api/portfolios/"+created.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var view entities.ViewResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &view))
	require.Len(t, view.Holdings, 1)
	assert.Equal(t, "AAPL", view.Holdings[0].Ticker)

	w = doJSON(t, router, http.MethodPut, "/api/portfolios/"+created.ID+"/"+secret, update)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp entities.UpdateResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, created.ViewURL, resp.ViewURL)

	w = doJSON(t, router, http.MethodGet, "/api/portfolios/"+created.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &view))
	require.Len(t, view.Holdings, 1)
	assert.Equal(t, "MSFT", view.Holdings[0].Ticker)
}

func TestPortfolioHandler_DeleteFlow(t *testing.T) {
	router := setupRouter(t, nil)
	created := createPortfolio(t, router)
	secret := secretOf(t, created)

	w := doJSON(t, router, http.MethodDelete, "/api/portfolios/"+created.ID+"/wrongsecret", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doJSON(t, router, http.MethodDelete, "/api/portfolios/"+created.ID+"/"+secret, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var ack entities.DeleteResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &ack))
	assert.True(t, ack.Success)

	w = doJSON(t, router, http.MethodGet, "/api/portfolios/"+created.ID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPortfolioHandler_PricesEndpoint(t *testing.T) {
	market := &stubMarket{quotes: map[string]*entities.Quote{
		"AAPL": {
			Ticker:       "AAPL",
			CurrentPrice: decimal.NewFromFloat(150.00),
			Change:       decimal.NewFromFloat(1.5),
		},
	}}
	router := setupRouter(t, market)

	w := doJSON(t, router, http.MethodPost, "/api/portfolios", entities.CreateRequest{
		Holdings: []entities.Holding{
			{Ticker: "AAPL", Quantity: decimal.NewFromInt(2)},
			{Ticker: "XYZ", Quantity: decimal.NewFromInt(1)},
		},
	})
	require.Equal(t, http.StatusOK, w.Code)
	var created entities.CreateResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	w = doJSON(t, router, http.MethodGet, fmt.Sprintf("/api/portfolios/%s/prices", created.ID), nil)
	require.Equal(t, http.StatusOK, w.Code, "one failing ticker must not fail the response")

	var prices entities.PricesResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &prices))
	require.Len(t, prices.Holdings, 2)

	assert.Equal(t, "150", prices.Holdings[0].CurrentPrice.String())
	assert.Equal(t, "300", prices.Holdings[0].TotalValue.String())
	assert.True(t, prices.Holdings[1].CurrentPrice.IsZero())
	assert.NotEmpty(t, prices.Holdings[1].PriceError)
}

func TestCORSPreflight(t *testing.T) {
	router := setupRouter(t, nil)

	req := httptest.NewRequest(http.MethodOptions, "/api/portfolios", nil)
	req.Header.Set("Origin", "https://anywhere.example")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Body.String())
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}
