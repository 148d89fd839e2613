package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"groupbid-backend/internal/clock"
	"groupbid-backend/internal/models"
	"groupbid-backend/internal/repository"
	"groupbid-backend/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func newBidRouter(t *testing.T) (chi.Router, *repository.Memory, *models.Auction) {
	t.Helper()
	mem := repository.NewMemory(clock.Mock{T: testNow})
	hub := services.NewWSHub()
	auctionService := services.NewAuctionService(mem, mem, clock.Mock{T: testNow})
	bidService := services.NewBidService(mem, mem)
	handler := NewBidHandler(bidService, auctionService, hub)

	auction, err := mem.CreateAuction(context.Background(), repository.CreateAuctionInput{
		Title:        "Vintage lamp",
		StartingBid:  dec("100.00"),
		MinIncrement: dec("10.00"),
		StartTime:    testNow,
		EndTime:      testNow.Add(24 * time.Hour),
		UserID:       "seller-1",
	})
	require.NoError(t, err)

	r := chi.NewRouter()
	r.Post("/bids", handler.Place)
	r.Get("/auctions/{id}/bids", handler.ListForAuction)
	return r, mem, auction
}

func postBid(t *testing.T, r chi.Router, body any) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/bids", bytes.NewReader(raw))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestPlaceBidHandler_Accepted(t *testing.T) {
	r, mem, auction := newBidRouter(t)

	rec := postBid(t, r, map[string]any{
		"auction_id": auction.ID,
		"amount":     "110.00",
		"bidder":     "Bob",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp struct {
		Bid     models.Bid     `json:"bid"`
		Auction models.Auction `json:"auction"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.True(t, resp.Bid.IsWinning)
	require.True(t, resp.Auction.CurrentBid.Equal(dec("110.00")))
	require.Equal(t, 1, resp.Auction.BidCount)

	after, err := mem.GetAuction(context.Background(), auction.ID)
	require.NoError(t, err)
	require.Equal(t, 1, after.BidCount)
}

func TestPlaceBidHandler_TooLow(t *testing.T) {
	r, _, auction := newBidRouter(t)

	rec := postBid(t, r, map[string]any{
		"auction_id": auction.ID,
		"amount":     "109.99",
		"bidder":     "Bob",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Contains(t, resp.Error, "110.00")
}

func TestPlaceBidHandler_UnknownAuction(t *testing.T) {
	r, _, _ := newBidRouter(t)

	rec := postBid(t, r, map[string]any{
		"auction_id": "missing",
		"amount":     "110.00",
		"bidder":     "Bob",
	})
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPlaceBidHandler_MalformedBody(t *testing.T) {
	r, _, _ := newBidRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/bids", bytes.NewReader([]byte("{not json")))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListBidsHandler_NewestFirst(t *testing.T) {
	r, _, auction := newBidRouter(t)

	for _, amount := range []string{"110.00", "125.00"} {
		rec := postBid(t, r, map[string]any{
			"auction_id": auction.ID,
			"amount":     amount,
			"bidder":     "Bob",
		})
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/auctions/"+auction.ID+"/bids", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var bids []models.Bid
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &bids))
	require.Len(t, bids, 2)
	require.True(t, bids[0].Amount.Equal(dec("125.00")))
	require.True(t, bids[0].IsWinning)
	require.False(t, bids[1].IsWinning)
}
