package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/marketbay/auction-engine/internal/domain"
	"github.com/marketbay/auction-engine/internal/engine"
	"github.com/marketbay/auction-engine/internal/model"
	"github.com/marketbay/auction-engine/internal/repository"
	"github.com/marketbay/auction-engine/internal/service"
	"github.com/marketbay/auction-engine/pkg/validator"
)

const (
	auctionParamKey = "auctionId"
	offerParamKey   = "offerId"
)

type AuctionHandler struct {
	svc service.AuctionServicer
}

func NewAuctionHandler(svc service.AuctionServicer) *AuctionHandler {
	return &AuctionHandler{svc: svc}
}

func auctionParam(r *http.Request) (uuid.UUID, error) {
	return uuid.Parse(chi.URLParam(r, auctionParamKey))
}

// actor pulls the authenticated caller or writes the 401 envelope.
func actor(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, ok := GetActorID(r.Context())
	if !ok {
		RespondError(w, http.StatusUnauthorized, "caller identity is required")
	}
	return id, ok
}

// GetAuction returns the full snapshot including bids and offers.
func (h *AuctionHandler) GetAuction(w http.ResponseWriter, r *http.Request) {
	auctionID, err := auctionParam(r)
	if err != nil {
		RespondError(w, http.StatusBadRequest, "invalid auction id")
		return
	}

	snap, err := h.svc.GetSnapshot(r.Context(), auctionID)
	if err != nil {
		RespondEngineError(w, err)
		return
	}
	RespondSuccess(w, http.StatusOK, "", map[string]any{"auction": snap})
}

// ListAuctions serves the catalog read with status/seller filters.
func (h *AuctionHandler) ListAuctions(w http.ResponseWriter, r *http.Request) {
	f := repository.Filter{Limit: 50}

	if raw := r.URL.Query().Get("status"); raw != "" {
		for _, s := range strings.Split(raw, ",") {
			f.Statuses = append(f.Statuses, domain.Status(strings.TrimSpace(s)))
		}
	}
	if raw := r.URL.Query().Get("sellerId"); raw != "" {
		sellerID, err := uuid.Parse(raw)
		if err != nil {
			RespondError(w, http.StatusBadRequest, "invalid seller id")
			return
		}
		f.SellerID = sellerID
	}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		fmt.Sscanf(raw, "%d", &f.Limit)
	}
	if raw := r.URL.Query().Get("offset"); raw != "" {
		fmt.Sscanf(raw, "%d", &f.Offset)
	}

	snaps, err := h.svc.List(r.Context(), f)
	if err != nil {
		RespondEngineError(w, err)
		return
	}
	RespondSuccess(w, http.StatusOK, "", map[string]any{"auctions": snaps})
}

// CreateAuction registers a new draft listing for the calling seller.
func (h *AuctionHandler) CreateAuction(w http.ResponseWriter, r *http.Request) {
	sellerID, ok := actor(w, r)
	if !ok {
		return
	}

	var req model.CreateAuctionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	if err := validator.GetValidator().Struct(req); err != nil {
		RespondError(w, http.StatusBadRequest, "validation failed: "+err.Error())
		return
	}

	snap, err := h.svc.Create(r.Context(), engine.CreateParams{
		Title:        req.Title,
		Type:         domain.AuctionType(req.AuctionType),
		StartPrice:   req.StartPrice,
		ReservePrice: req.ReservePrice,
		BuyNowPrice:  req.BuyNowPrice,
		BidIncrement: req.BidIncrement,
		StartTime:    req.StartTime,
		EndTime:      req.EndTime,
		SellerID:     sellerID,
		AllowOffers:  req.AllowOffers,
	})
	if err != nil {
		RespondEngineError(w, err)
		return
	}
	RespondSuccess(w, http.StatusCreated, "auction created", map[string]any{"auction": snap})
}

// ApproveAuction moves a draft into the approved state.
func (h *AuctionHandler) ApproveAuction(w http.ResponseWriter, r *http.Request) {
	if _, ok := actor(w, r); !ok {
		return
	}
	auctionID, err := auctionParam(r)
	if err != nil {
		RespondError(w, http.StatusBadRequest, "invalid auction id")
		return
	}

	snap, err := h.svc.Approve(r.Context(), auctionID)
	if err != nil {
		RespondEngineError(w, err)
		return
	}
	RespondSuccess(w, http.StatusOK, "auction approved", map[string]any{"auction": snap})
}

// CancelAuction is the out-of-band admin cancellation.
func (h *AuctionHandler) CancelAuction(w http.ResponseWriter, r *http.Request) {
	if _, ok := actor(w, r); !ok {
		return
	}
	auctionID, err := auctionParam(r)
	if err != nil {
		RespondError(w, http.StatusBadRequest, "invalid auction id")
		return
	}

	snap, err := h.svc.Cancel(r.Context(), auctionID)
	if err != nil {
		RespondEngineError(w, err)
		return
	}
	RespondSuccess(w, http.StatusOK, "auction cancelled", map[string]any{"auction": snap})
}

// PlaceBid submits an incremental bid and returns the updated snapshot.
func (h *AuctionHandler) PlaceBid(w http.ResponseWriter, r *http.Request) {
	bidderID, ok := actor(w, r)
	if !ok {
		return
	}
	auctionID, err := auctionParam(r)
	if err != nil {
		RespondError(w, http.StatusBadRequest, "invalid auction id")
		return
	}

	var req model.PlaceBidRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	if err := validator.GetValidator().Struct(req); err != nil {
		RespondError(w, http.StatusBadRequest, "bid amount is required")
		return
	}

	snap, err := h.svc.PlaceBid(r.Context(), auctionID, bidderID, req.Amount)
	if err != nil {
		RespondEngineError(w, err)
		return
	}
	RespondSuccess(w, http.StatusOK, "bid placed", map[string]any{"auction": snap})
}

// BuyNow settles the auction instantly at the listed buy-now price.
func (h *AuctionHandler) BuyNow(w http.ResponseWriter, r *http.Request) {
	buyerID, ok := actor(w, r)
	if !ok {
		return
	}
	auctionID, err := auctionParam(r)
	if err != nil {
		RespondError(w, http.StatusBadRequest, "invalid auction id")
		return
	}

	snap, err := h.svc.BuyNow(r.Context(), auctionID, buyerID)
	if err != nil {
		RespondEngineError(w, err)
		return
	}
	RespondSuccess(w, http.StatusOK, "auction purchased", map[string]any{"auction": snap})
}

// SubmitOffer opens a pending offer on the auction.
func (h *AuctionHandler) SubmitOffer(w http.ResponseWriter, r *http.Request) {
	buyerID, ok := actor(w, r)
	if !ok {
		return
	}
	auctionID, err := auctionParam(r)
	if err != nil {
		RespondError(w, http.StatusBadRequest, "invalid auction id")
		return
	}

	var req model.SubmitOfferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	if err := validator.GetValidator().Struct(req); err != nil {
		RespondError(w, http.StatusBadRequest, "offer amount is required")
		return
	}

	offer, snap, err := h.svc.SubmitOffer(r.Context(), auctionID, buyerID, req.Amount, req.Message)
	if err != nil {
		RespondEngineError(w, err)
		return
	}
	RespondSuccess(w, http.StatusCreated, "offer submitted", map[string]any{
		"offer":   offer,
		"auction": snap,
	})
}

// AcceptOffer is the seller-only settlement via the offer lane.
func (h *AuctionHandler) AcceptOffer(w http.ResponseWriter, r *http.Request) {
	actorID, ok := actor(w, r)
	if !ok {
		return
	}
	offerID, err := uuid.Parse(chi.URLParam(r, offerParamKey))
	if err != nil {
		RespondError(w, http.StatusBadRequest, "invalid offer id")
		return
	}

	snap, err := h.svc.AcceptOffer(r.Context(), offerID, actorID)
	if err != nil {
		RespondEngineError(w, err)
		return
	}
	RespondSuccess(w, http.StatusOK, "offer accepted", map[string]any{"auction": snap})
}
