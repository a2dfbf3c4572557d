package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marketbay/auction-engine/internal/cache"
	"github.com/marketbay/auction-engine/internal/dependency"
	"github.com/marketbay/auction-engine/internal/engine"
	"github.com/marketbay/auction-engine/internal/handlers"
	"github.com/marketbay/auction-engine/internal/repository"
	"github.com/marketbay/auction-engine/internal/scheduler"
	"github.com/marketbay/auction-engine/internal/server"
	"github.com/marketbay/auction-engine/internal/service"
	"github.com/marketbay/auction-engine/pkg/config"
	"github.com/marketbay/auction-engine/pkg/logger"
)

type envelope struct {
	Success bool           `json:"success"`
	Message string         `json:"message"`
	Data    map[string]any `json:"data"`
}

type testEnv struct {
	router http.Handler
	deps   *dependency.Dependencies
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	log := logger.NewNop()
	store := repository.NewMemoryStore()
	c := cache.NewMemoryCache()
	eng := engine.New(store, log)
	sched := scheduler.New(eng, c, time.Second, log)
	services := service.NewServices(eng, c, 5*time.Second, log)

	deps := &dependency.Dependencies{
		Store:          store,
		Cache:          c,
		Engine:         eng,
		Scheduler:      sched,
		Services:       services,
		AuctionHandler: handlers.NewAuctionHandler(services.AuctionService),
	}

	cfg := &config.Config{}
	cfg.Server.AllowedOrigins = []string{"*"}
	// empty JWT secret: actor comes from the X-Actor-ID header

	srv := server.New(cfg, deps, log)
	return &testEnv{router: srv.HTTPServer.Handler, deps: deps}
}

func (env *testEnv) do(t *testing.T, method, path string, actor uuid.UUID, body any) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if actor != uuid.Nil {
		req.Header.Set("X-Actor-ID", actor.String())
	}

	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	var resp envelope
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	return w, resp
}

// createActiveAuction drives a listing through the API to the active
// state and returns its id.
func (env *testEnv) createActiveAuction(t *testing.T, seller uuid.UUID, payload map[string]any) string {
	t.Helper()
	body := map[string]any{
		"title":         "mid-century armchair",
		"auction_type":  "standard",
		"start_price":   1000,
		"bid_increment": 100,
		"start_time":    time.Now().Add(-time.Minute).Format(time.RFC3339),
		"end_time":      time.Now().Add(time.Hour).Format(time.RFC3339),
	}
	for k, v := range payload {
		body[k] = v
	}

	w, resp := env.do(t, http.MethodPost, "/api/v1/auctions", seller, body)
	require.Equal(t, http.StatusCreated, w.Code, resp.Message)
	require.True(t, resp.Success)

	auction := resp.Data["auction"].(map[string]any)
	id := auction["id"].(string)

	w, resp = env.do(t, http.MethodPost, "/api/v1/auctions/"+id+"/approve", seller, nil)
	require.Equal(t, http.StatusOK, w.Code, resp.Message)

	env.deps.Scheduler.RunNow()
	return id
}

func TestAPI_WriteRequiresActor(t *testing.T) {
	env := newTestEnv(t)

	w, resp := env.do(t, http.MethodPost, "/api/v1/auctions", uuid.Nil, map[string]any{})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.False(t, resp.Success)
	assert.NotEmpty(t, resp.Message)
}

func TestAPI_BidFlow(t *testing.T) {
	env := newTestEnv(t)
	seller := uuid.New()
	bidder := uuid.New()

	id := env.createActiveAuction(t, seller, nil)

	// snapshot before any bid
	w, resp := env.do(t, http.MethodGet, "/api/v1/auctions/"+id, uuid.Nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.True(t, resp.Success)
	auction := resp.Data["auction"].(map[string]any)
	assert.Equal(t, "active", auction["status"])
	assert.Equal(t, "1000", auction["min_next_bid"])

	// first bid at start price
	w, resp = env.do(t, http.MethodPost, "/api/v1/auctions/bid/"+id, bidder, map[string]any{"amount": 1000})
	require.Equal(t, http.StatusOK, w.Code, resp.Message)
	require.True(t, resp.Success)
	auction = resp.Data["auction"].(map[string]any)
	assert.Equal(t, "1000", auction["current_price"])
	assert.Equal(t, float64(1), auction["bid_count"])

	// below minimum: envelope carries the exact minimum
	w, resp = env.do(t, http.MethodPost, "/api/v1/auctions/bid/"+id, bidder, map[string]any{"amount": 1050})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, resp.Success)
	assert.Contains(t, resp.Message, "1100")

	// seller may not bid
	w, resp = env.do(t, http.MethodPost, "/api/v1/auctions/bid/"+id, seller, map[string]any{"amount": 1100})
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.False(t, resp.Success)
}

func TestAPI_BuyNowFlow(t *testing.T) {
	env := newTestEnv(t)
	seller := uuid.New()
	buyer := uuid.New()

	id := env.createActiveAuction(t, seller, map[string]any{
		"auction_type":  "buy_now",
		"buy_now_price": 4000,
		"bid_increment": 0,
	})

	w, resp := env.do(t, http.MethodPost, "/api/v1/buy-now/"+id, buyer, nil)
	require.Equal(t, http.StatusOK, w.Code, resp.Message)
	require.True(t, resp.Success)
	auction := resp.Data["auction"].(map[string]any)
	assert.Equal(t, "sold_buy_now", auction["status"])
	assert.Equal(t, buyer.String(), auction["winner_id"])
	assert.Equal(t, "4000", auction["final_price"])

	// second buyer loses the race
	w, resp = env.do(t, http.MethodPost, "/api/v1/buy-now/"+id, uuid.New(), nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.False(t, resp.Success)
}

func TestAPI_OfferFlow(t *testing.T) {
	env := newTestEnv(t)
	seller := uuid.New()
	buyer := uuid.New()

	id := env.createActiveAuction(t, seller, map[string]any{"allow_offers": true})

	w, resp := env.do(t, http.MethodPost, "/api/v1/offers/auction/"+id, buyer, map[string]any{
		"amount":  1500,
		"message": "would collect in person",
	})
	require.Equal(t, http.StatusCreated, w.Code, resp.Message)
	require.True(t, resp.Success)
	offer := resp.Data["offer"].(map[string]any)
	assert.Equal(t, "pending", offer["status"])
	offerID := offer["id"].(string)

	// only the seller can accept
	w, resp = env.do(t, http.MethodPost, "/api/v1/offers/"+offerID+"/accept", uuid.New(), nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.False(t, resp.Success)

	w, resp = env.do(t, http.MethodPost, "/api/v1/offers/"+offerID+"/accept", seller, nil)
	require.Equal(t, http.StatusOK, w.Code, resp.Message)
	require.True(t, resp.Success)
	auction := resp.Data["auction"].(map[string]any)
	assert.Equal(t, "sold", auction["status"])
	assert.Equal(t, buyer.String(), auction["winner_id"])
	assert.Equal(t, "1500", auction["final_price"])
}

func TestAPI_ListAuctions(t *testing.T) {
	env := newTestEnv(t)
	seller := uuid.New()

	env.createActiveAuction(t, seller, nil)
	env.createActiveAuction(t, seller, nil)

	path := fmt.Sprintf("/api/v1/auctions?status=active&sellerId=%s", seller)
	w, resp := env.do(t, http.MethodGet, path, uuid.Nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.True(t, resp.Success)
	auctions := resp.Data["auctions"].([]any)
	assert.Len(t, auctions, 2)
}

func TestAPI_NotFoundAndBadInput(t *testing.T) {
	env := newTestEnv(t)

	w, resp := env.do(t, http.MethodGet, "/api/v1/auctions/"+uuid.NewString(), uuid.Nil, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.False(t, resp.Success)

	w, resp = env.do(t, http.MethodGet, "/api/v1/auctions/not-a-uuid", uuid.Nil, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, resp.Success)

	w, resp = env.do(t, http.MethodPost, "/api/v1/auctions/bid/"+uuid.NewString(), uuid.New(), map[string]any{"amount": 100})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.False(t, resp.Success)
}
