package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/marketbay/auction-engine/internal/middleware"
)

func (s *Server) Routes(mux *chi.Mux) {
	h := s.Deps.AuctionHandler

	mux.Get("/api/v1/health", healthCheck)

	mux.Route("/api/v1", func(r chi.Router) {
		// read model, no caller identity needed
		r.Get("/auctions", h.ListAuctions)
		r.Get("/auctions/{auctionId}", h.GetAuction)

		// write commands carry an actor
		r.Group(func(r chi.Router) {
			r.Use(middleware.Actor(s.cfg.Auth.JWTSecret))

			r.Post("/auctions", h.CreateAuction)
			r.Post("/auctions/{auctionId}/approve", h.ApproveAuction)
			r.Post("/auctions/{auctionId}/cancel", h.CancelAuction)
			r.Post("/auctions/bid/{auctionId}", h.PlaceBid)
			r.Post("/buy-now/{auctionId}", h.BuyNow)
			r.Post("/offers/auction/{auctionId}", h.SubmitOffer)
			r.Post("/offers/{offerId}/accept", h.AcceptOffer)
		})
	})
}

func healthCheck(w http.ResponseWriter, r *http.Request) {
	resp := map[string]any{
		"message": "ok",
		"time":    time.Now().Format(time.RFC3339),
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	json.NewEncoder(w).Encode(resp)
}
