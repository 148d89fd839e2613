package services

import (
	"context"
	"testing"
	"time"

	"groupbid-backend/internal/auctionerrors"
	"groupbid-backend/internal/clock"
	"groupbid-backend/internal/models"
	"groupbid-backend/internal/repository"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func newAuctionFixture(t *testing.T) (*AuctionService, *repository.Memory) {
	t.Helper()
	mem := repository.NewMemory(clock.Mock{T: testNow})
	return NewAuctionService(mem, mem, clock.Mock{T: testNow}), mem
}

func TestCreateAuction_Validation(t *testing.T) {
	svc, _ := newAuctionFixture(t)
	ctx := context.Background()

	valid := CreateAuctionInput{
		Title:        "Vintage lamp",
		StartingBid:  dec("100.00"),
		MinIncrement: dec("10.00"),
		StartTime:    testNow,
		EndTime:      testNow.Add(24 * time.Hour),
		UserID:       "seller-1",
	}

	tests := []struct {
		name   string
		mutate func(in *CreateAuctionInput)
	}{
		{"empty_title", func(in *CreateAuctionInput) { in.Title = "" }},
		{"empty_user", func(in *CreateAuctionInput) { in.UserID = "" }},
		{"negative_starting_bid", func(in *CreateAuctionInput) { in.StartingBid = dec("-1.00") }},
		{"zero_increment", func(in *CreateAuctionInput) { in.MinIncrement = decimal.Zero }},
		{"end_before_start", func(in *CreateAuctionInput) { in.EndTime = in.StartTime.Add(-time.Hour) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := valid
			tt.mutate(&in)
			_, err := svc.CreateAuction(ctx, in)
			require.ErrorIs(t, err, auctionerrors.ErrValidation)
		})
	}

	auction, err := svc.CreateAuction(ctx, valid)
	require.NoError(t, err)
	require.Equal(t, models.AuctionDraft, auction.Status)
	require.True(t, auction.CurrentBid.Equal(dec("100.00")))
}

func TestUpdateAuction_RejectsSettlementFields(t *testing.T) {
	svc, _ := newAuctionFixture(t)
	ctx := context.Background()

	auction, err := svc.CreateAuction(ctx, CreateAuctionInput{
		Title:        "Vintage lamp",
		StartingBid:  dec("100.00"),
		MinIncrement: dec("10.00"),
		StartTime:    testNow,
		EndTime:      testNow.Add(24 * time.Hour),
		UserID:       "seller-1",
	})
	require.NoError(t, err)

	bid := dec("500.00")
	_, err = svc.UpdateAuction(ctx, auction.ID, repository.AuctionUpdate{CurrentBid: &bid})
	require.ErrorIs(t, err, auctionerrors.ErrValidation)

	count := 99
	_, err = svc.UpdateAuction(ctx, auction.ID, repository.AuctionUpdate{BidCount: &count})
	require.ErrorIs(t, err, auctionerrors.ErrValidation)

	live := models.AuctionLive
	updated, err := svc.UpdateAuction(ctx, auction.ID, repository.AuctionUpdate{Status: &live})
	require.NoError(t, err)
	require.Equal(t, models.AuctionLive, updated.Status)
}

func TestDisplayStatusFor(t *testing.T) {
	svc, _ := newAuctionFixture(t)

	tests := []struct {
		name    string
		auction models.Auction
		want    DisplayStatus
	}{
		{"live_low_bids", models.Auction{Status: models.AuctionLive, BidCount: 3}, DisplayLive},
		{"hot_above_threshold", models.Auction{Status: models.AuctionLive, BidCount: 21}, DisplayHot},
		{"at_threshold_still_live", models.Auction{Status: models.AuctionLive, BidCount: 20}, DisplayLive},
		{"ending_soon_beats_hot", models.Auction{Status: models.AuctionEndingSoon, BidCount: 50}, DisplayEndingSoon},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, svc.DisplayStatusFor(&tt.auction))
		})
	}
}

func TestDashboardStatsFor(t *testing.T) {
	svc, mem := newAuctionFixture(t)
	ctx := context.Background()

	mkAuction := func(title string, status models.AuctionStatus, current string, end time.Time) *models.Auction {
		a, err := mem.CreateAuction(ctx, repository.CreateAuctionInput{
			Title:        title,
			StartingBid:  dec(current),
			MinIncrement: dec("10.00"),
			StartTime:    testNow.Add(-2 * time.Hour),
			EndTime:      end,
			UserID:       "seller-1",
		})
		require.NoError(t, err)
		a, err = mem.UpdateAuction(ctx, a.ID, repository.AuctionUpdate{Status: &status})
		require.NoError(t, err)
		return a
	}

	soon := mkAuction("ending soon", models.AuctionEndingSoon, "250.00", testNow.Add(30*time.Minute))
	mkAuction("live", models.AuctionLive, "120.00", testNow.Add(10*time.Hour))
	mkAuction("ended", models.AuctionEnded, "900.00", testNow.Add(-time.Hour))
	mkAuction("draft", models.AuctionDraft, "50.00", testNow.Add(48*time.Hour))

	// Someone else's auction that seller-1 bids on.
	other, err := mem.CreateAuction(ctx, repository.CreateAuctionInput{
		Title:        "someone else's lamp",
		StartingBid:  dec("40.00"),
		MinIncrement: dec("5.00"),
		StartTime:    testNow.Add(-time.Hour),
		EndTime:      testNow.Add(6 * time.Hour),
		UserID:       "seller-2",
	})
	require.NoError(t, err)

	// totalBidsToday counts bids seller-1 placed, not bids received on
	// seller-1's auctions.
	placer := "seller-1"
	_, err = mem.CreateBid(ctx, repository.CreateBidInput{
		Amount: dec("45.00"), Bidder: "Seller One", AuctionID: other.ID, UserID: &placer,
	})
	require.NoError(t, err)
	_, err = mem.CreateBid(ctx, repository.CreateBidInput{
		Amount: dec("260.00"), Bidder: "Anon", AuctionID: soon.ID, IsWinning: true,
	})
	require.NoError(t, err)

	stats, err := svc.DashboardStatsFor(ctx, "seller-1")
	require.NoError(t, err)
	require.Equal(t, 2, stats.ActiveAuctions)
	require.Equal(t, 1, stats.EndingInOneHour)
	require.Equal(t, 1, stats.TotalBidsToday)
	require.True(t, stats.HighestCurrentBid.Equal(dec("900.00")))
}

func TestDashboardStatsFor_EmptyUser(t *testing.T) {
	svc, _ := newAuctionFixture(t)

	_, err := svc.DashboardStatsFor(context.Background(), "")
	require.ErrorIs(t, err, auctionerrors.ErrValidation)

	stats, err := svc.DashboardStatsFor(context.Background(), "nobody")
	require.NoError(t, err)
	require.Zero(t, stats.ActiveAuctions)
	require.True(t, stats.HighestCurrentBid.IsZero())
}
