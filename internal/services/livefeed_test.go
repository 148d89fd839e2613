package services

import (
	"context"
	"testing"

	"groupbid-backend/internal/auctionerrors"
	"groupbid-backend/internal/clock"
	"groupbid-backend/internal/models"
	"groupbid-backend/internal/repository"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func newLiveFeedFixture(t *testing.T) *LiveFeedService {
	t.Helper()
	return NewLiveFeedService(repository.NewMemory(clock.Mock{T: testNow}))
}

func TestCreateSession_Defaults(t *testing.T) {
	svc := newLiveFeedFixture(t)

	session, err := svc.CreateSession(context.Background(), CreateSessionInput{
		UserID: "seller-1",
		Name:   "Friday night",
	})
	require.NoError(t, err)
	require.True(t, session.BidIncrement.Equal(dec("10.00")))
	require.Equal(t, 60, session.ItemDuration)
	require.False(t, session.IsActive)
	require.Zero(t, session.CurrentItemIndex)
}

func TestCreateSession_Validation(t *testing.T) {
	svc := newLiveFeedFixture(t)
	ctx := context.Background()

	_, err := svc.CreateSession(ctx, CreateSessionInput{UserID: "seller-1"})
	require.ErrorIs(t, err, auctionerrors.ErrValidation)

	_, err = svc.CreateSession(ctx, CreateSessionInput{Name: "no user"})
	require.ErrorIs(t, err, auctionerrors.ErrValidation)

	_, err = svc.CreateSession(ctx, CreateSessionInput{
		UserID:       "seller-1",
		Name:         "bad increment",
		BidIncrement: dec("-1.00"),
	})
	require.ErrorIs(t, err, auctionerrors.ErrValidation)
}

func TestAddItem_AppendsInOrder(t *testing.T) {
	svc := newLiveFeedFixture(t)
	ctx := context.Background()

	session, err := svc.CreateSession(ctx, CreateSessionInput{UserID: "seller-1", Name: "queue"})
	require.NoError(t, err)

	for _, name := range []string{"first", "second", "third"} {
		_, err := svc.AddItem(ctx, session.ID, repository.CreateItemInput{
			Name:        name,
			StartingBid: dec("5.00"),
		})
		require.NoError(t, err)
	}

	_, items, err := svc.GetSession(ctx, session.ID)
	require.NoError(t, err)
	require.Len(t, items, 3)
	require.Equal(t, "first", items[0].Name)
	require.Equal(t, 2, items[2].OrderIndex)

	_, err = svc.AddItem(ctx, "missing-session", repository.CreateItemInput{Name: "x", StartingBid: dec("1.00")})
	require.ErrorIs(t, err, auctionerrors.ErrNotFound)
}

func TestAdvanceItem_WalksTheQueue(t *testing.T) {
	svc := newLiveFeedFixture(t)
	ctx := context.Background()

	session, err := svc.CreateSession(ctx, CreateSessionInput{UserID: "seller-1", Name: "walk"})
	require.NoError(t, err)

	first, err := svc.AddItem(ctx, session.ID, repository.CreateItemInput{Name: "first", StartingBid: dec("5.00")})
	require.NoError(t, err)
	_, err = svc.AddItem(ctx, session.ID, repository.CreateItemInput{Name: "second", StartingBid: dec("5.00")})
	require.NoError(t, err)

	// Advancing an inactive session is rejected.
	_, _, err = svc.AdvanceItem(ctx, session.ID)
	require.ErrorIs(t, err, auctionerrors.ErrValidation)

	session, err = svc.ActivateSession(ctx, session.ID)
	require.NoError(t, err)
	require.True(t, session.IsActive)

	_, items, err := svc.GetSession(ctx, session.ID)
	require.NoError(t, err)
	require.Equal(t, models.ItemActive, items[0].Status)
	require.Equal(t, models.ItemPending, items[1].Status)

	// A bid on the first item makes it sell when advanced past.
	winning := dec("12.00")
	_, err = svc.UpdateItem(ctx, first.ID, repository.ItemUpdate{CurrentBid: &winning})
	require.NoError(t, err)

	session, closed, err := svc.AdvanceItem(ctx, session.ID)
	require.NoError(t, err)
	require.Equal(t, models.ItemSold, closed.Status)
	require.Equal(t, 1, session.CurrentItemIndex)
	require.True(t, session.IsActive)

	_, items, err = svc.GetSession(ctx, session.ID)
	require.NoError(t, err)
	require.Equal(t, models.ItemActive, items[1].Status)

	// The second item got no bids and passes; the queue is exhausted.
	session, closed, err = svc.AdvanceItem(ctx, session.ID)
	require.NoError(t, err)
	require.Equal(t, models.ItemPassed, closed.Status)
	require.False(t, session.IsActive)

	_, _, err = svc.AdvanceItem(ctx, session.ID)
	require.ErrorIs(t, err, auctionerrors.ErrValidation)
}

func TestAddItem_RejectsBadInput(t *testing.T) {
	svc := newLiveFeedFixture(t)
	ctx := context.Background()

	session, err := svc.CreateSession(ctx, CreateSessionInput{UserID: "seller-1", Name: "validation"})
	require.NoError(t, err)

	_, err = svc.AddItem(ctx, session.ID, repository.CreateItemInput{StartingBid: dec("1.00")})
	require.ErrorIs(t, err, auctionerrors.ErrValidation)

	_, err = svc.AddItem(ctx, session.ID, repository.CreateItemInput{Name: "x", StartingBid: decimal.RequireFromString("-1.00")})
	require.ErrorIs(t, err, auctionerrors.ErrValidation)
}
