package repository

import (
	"context"
	"testing"
	"time"

	"groupbid-backend/internal/auctionerrors"
	"groupbid-backend/internal/clock"
	"groupbid-backend/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func newTestMemory() *Memory {
	return NewMemory(clock.Mock{T: fixedNow})
}

func strPtr(s string) *string { return &s }

func mustAuction(t *testing.T, m *Memory, userID, title string) *models.Auction {
	t.Helper()
	a, err := m.CreateAuction(context.Background(), CreateAuctionInput{
		Title:        title,
		StartingBid:  decimal.RequireFromString("100.00"),
		MinIncrement: decimal.RequireFromString("10.00"),
		StartTime:    fixedNow,
		EndTime:      fixedNow.Add(24 * time.Hour),
		UserID:       userID,
	})
	require.NoError(t, err)
	return a
}

func TestCreateUser_DuplicateUsername(t *testing.T) {
	m := newTestMemory()
	ctx := context.Background()

	_, err := m.CreateUser(ctx, CreateUserInput{Username: "seller"})
	require.NoError(t, err)

	_, err = m.CreateUser(ctx, CreateUserInput{Username: "seller"})
	require.ErrorIs(t, err, auctionerrors.ErrDuplicateKey)
}

func TestUpdateUser_PartialMerge(t *testing.T) {
	m := newTestMemory()
	ctx := context.Background()

	u, err := m.CreateUser(ctx, CreateUserInput{Username: "seller", Name: strPtr("Alice")})
	require.NoError(t, err)

	updated, err := m.UpdateUser(ctx, u.ID, UserUpdate{Email: strPtr("alice@example.com")})
	require.NoError(t, err)
	require.Equal(t, "seller", updated.Username)
	require.NotNil(t, updated.Name)
	require.Equal(t, "Alice", *updated.Name)
	require.NotNil(t, updated.Email)
	require.Equal(t, "alice@example.com", *updated.Email)
}

func TestGetUser_NotFound(t *testing.T) {
	m := newTestMemory()

	_, err := m.GetUser(context.Background(), "missing")
	require.ErrorIs(t, err, auctionerrors.ErrNotFound)
}

func TestCreateAuction_InitialState(t *testing.T) {
	m := newTestMemory()
	a := mustAuction(t, m, "u1", "Vintage lamp")

	require.Equal(t, models.AuctionDraft, a.Status)
	require.True(t, a.CurrentBid.Equal(a.StartingBid))
	require.Zero(t, a.BidCount)
	require.NotEmpty(t, a.ID)
}

func TestListAuctions_FilterAndOrder(t *testing.T) {
	m := newTestMemory()
	ctx := context.Background()

	first := mustAuction(t, m, "u1", "first")
	second := mustAuction(t, m, "u1", "second")
	mustAuction(t, m, "u2", "other seller")

	live := models.AuctionLive
	_, err := m.UpdateAuction(ctx, second.ID, AuctionUpdate{Status: &live})
	require.NoError(t, err)

	// Newest first within a user.
	got, err := m.ListAuctions(ctx, AuctionFilter{UserID: "u1"})
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, second.ID, got[0].ID)
	require.Equal(t, first.ID, got[1].ID)

	got, err = m.ListAuctions(ctx, AuctionFilter{Status: models.AuctionLive})
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, second.ID, got[0].ID)

	got, err = m.ListAuctions(ctx, AuctionFilter{Limit: 1})
	require.NoError(t, err)
	require.Len(t, got, 1)
}

func TestDeleteAuction_Idempotent(t *testing.T) {
	m := newTestMemory()
	ctx := context.Background()
	a := mustAuction(t, m, "u1", "to delete")

	deleted, err := m.DeleteAuction(ctx, a.ID)
	require.NoError(t, err)
	require.True(t, deleted)

	deleted, err = m.DeleteAuction(ctx, a.ID)
	require.NoError(t, err)
	require.False(t, deleted)
}

func TestSettleBid_OrderAndWinningFlag(t *testing.T) {
	m := newTestMemory()
	ctx := context.Background()
	a := mustAuction(t, m, "u1", "bidded")

	b1, _, err := m.SettleBid(ctx, CreateBidInput{
		Amount:    decimal.RequireFromString("110.00"),
		Bidder:    "Bob",
		AuctionID: a.ID,
	})
	require.NoError(t, err)

	b2, after, err := m.SettleBid(ctx, CreateBidInput{
		Amount:    decimal.RequireFromString("125.00"),
		Bidder:    "Carol",
		AuctionID: a.ID,
	})
	require.NoError(t, err)
	require.True(t, after.CurrentBid.Equal(decimal.RequireFromString("125.00")))
	require.Equal(t, 2, after.BidCount)

	bids, err := m.ListBidsForAuction(ctx, a.ID)
	require.NoError(t, err)
	require.Len(t, bids, 2)
	require.Equal(t, b2.ID, bids[0].ID)
	require.Equal(t, b1.ID, bids[1].ID)
	require.True(t, bids[0].IsWinning)
	require.False(t, bids[1].IsWinning)
}

func TestSettleBid_UnknownAuctionLeavesNoTrace(t *testing.T) {
	m := newTestMemory()
	ctx := context.Background()

	_, _, err := m.SettleBid(ctx, CreateBidInput{
		Amount:    decimal.RequireFromString("110.00"),
		Bidder:    "Bob",
		AuctionID: "missing",
	})
	require.ErrorIs(t, err, auctionerrors.ErrNotFound)

	bids, err := m.ListBidsForAuction(ctx, "missing")
	require.NoError(t, err)
	require.Empty(t, bids)
}

func TestListBidsForUser(t *testing.T) {
	m := newTestMemory()
	ctx := context.Background()
	a := mustAuction(t, m, "u1", "bidded")

	uid := "bidder-1"
	_, err := m.CreateBid(ctx, CreateBidInput{
		Amount:    decimal.RequireFromString("110.00"),
		Bidder:    "Bob",
		AuctionID: a.ID,
		UserID:    &uid,
	})
	require.NoError(t, err)
	_, err = m.CreateBid(ctx, CreateBidInput{
		Amount:    decimal.RequireFromString("120.00"),
		Bidder:    "Anon",
		AuctionID: a.ID,
	})
	require.NoError(t, err)

	bids, err := m.ListBidsForUser(ctx, uid)
	require.NoError(t, err)
	require.Len(t, bids, 1)
	require.Equal(t, "Bob", bids[0].Bidder)
}

func TestGroups_DuplicateAndActiveListing(t *testing.T) {
	m := newTestMemory()
	ctx := context.Background()

	zebra, err := m.CreateGroup(ctx, CreateGroupInput{FacebookGroupID: "fb-1", Name: "Zebra Auctions", UserID: "u1"})
	require.NoError(t, err)
	require.True(t, zebra.IsActive)

	_, err = m.CreateGroup(ctx, CreateGroupInput{FacebookGroupID: "fb-1", Name: "Dup", UserID: "u2"})
	require.ErrorIs(t, err, auctionerrors.ErrDuplicateKey)

	apple, err := m.CreateGroup(ctx, CreateGroupInput{FacebookGroupID: "fb-2", Name: "Apple Auctions", UserID: "u1"})
	require.NoError(t, err)

	inactive := false
	_, err = m.UpdateGroup(ctx, zebra.ID, GroupUpdate{IsActive: &inactive})
	require.NoError(t, err)

	groups, err := m.ListActiveGroupsForUser(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, groups, 1)
	require.Equal(t, apple.ID, groups[0].ID)
}

func TestLiveFeedItems_OrderedBySlot(t *testing.T) {
	m := newTestMemory()
	ctx := context.Background()

	session, err := m.CreateSession(ctx, CreateSessionInput{
		Name:         "Friday night",
		UserID:       "u1",
		BidIncrement: decimal.RequireFromString("5.00"),
		ItemDuration: 60,
	})
	require.NoError(t, err)

	for i, name := range []string{"a", "b", "c"} {
		_, err := m.CreateItem(ctx, CreateItemInput{
			Name:        name,
			StartingBid: decimal.RequireFromString("1.00"),
			SessionID:   session.ID,
			OrderIndex:  i,
		})
		require.NoError(t, err)
	}

	items, err := m.ListItemsForSession(ctx, session.ID)
	require.NoError(t, err)
	require.Len(t, items, 3)
	require.Equal(t, "a", items[0].Name)
	require.Equal(t, "c", items[2].Name)
	require.Equal(t, models.ItemPending, items[0].Status)
}

func TestDeleteSession_RemovesItsItems(t *testing.T) {
	m := newTestMemory()
	ctx := context.Background()

	session, err := m.CreateSession(ctx, CreateSessionInput{
		Name:         "cleanup",
		UserID:       "u1",
		BidIncrement: decimal.RequireFromString("5.00"),
		ItemDuration: 60,
	})
	require.NoError(t, err)

	item, err := m.CreateItem(ctx, CreateItemInput{
		Name:        "a",
		StartingBid: decimal.RequireFromString("1.00"),
		SessionID:   session.ID,
	})
	require.NoError(t, err)

	deleted, err := m.DeleteSession(ctx, session.ID)
	require.NoError(t, err)
	require.True(t, deleted)

	_, err = m.GetItem(ctx, item.ID)
	require.ErrorIs(t, err, auctionerrors.ErrNotFound)
}

func TestSettings_OneRowPerUser(t *testing.T) {
	m := newTestMemory()
	ctx := context.Background()

	_, err := m.CreateSettings(ctx, CreateSettingsInput{
		UserID:              "u1",
		OutbidNotifications: true,
		DefaultMinIncrement: decimal.RequireFromString("10.00"),
		DefaultDuration:     24,
	})
	require.NoError(t, err)

	_, err = m.CreateSettings(ctx, CreateSettingsInput{UserID: "u1"})
	require.ErrorIs(t, err, auctionerrors.ErrDuplicateKey)

	dur := 48
	updated, err := m.UpdateSettingsForUser(ctx, "u1", SettingsUpdate{DefaultDuration: &dur})
	require.NoError(t, err)
	require.Equal(t, 48, updated.DefaultDuration)
	require.True(t, updated.OutbidNotifications)
}
