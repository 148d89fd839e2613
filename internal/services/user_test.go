package services

import (
	"context"
	"testing"

	"groupbid-backend/internal/auctionerrors"
	"groupbid-backend/internal/clock"
	"groupbid-backend/internal/repository"

	"github.com/stretchr/testify/require"
)

func newUserFixture(t *testing.T) (*UserService, *repository.Memory) {
	t.Helper()
	mem := repository.NewMemory(clock.Mock{T: testNow})
	return NewUserService(mem, mem, "test-secret"), mem
}

func TestRegister_IssuesValidToken(t *testing.T) {
	svc, _ := newUserFixture(t)

	user, token, err := svc.Register(context.Background(), RegisterInput{Username: "seller"})
	require.NoError(t, err)
	require.NotEmpty(t, user.ID)
	require.NotEmpty(t, token)

	userID, err := svc.ValidateJWT(token)
	require.NoError(t, err)
	require.Equal(t, user.ID, userID)
}

func TestRegister_EmptyUsername(t *testing.T) {
	svc, _ := newUserFixture(t)

	_, _, err := svc.Register(context.Background(), RegisterInput{})
	require.ErrorIs(t, err, auctionerrors.ErrValidation)
}

func TestRegister_DuplicateUsername(t *testing.T) {
	svc, _ := newUserFixture(t)
	ctx := context.Background()

	_, _, err := svc.Register(ctx, RegisterInput{Username: "seller"})
	require.NoError(t, err)

	_, _, err = svc.Register(ctx, RegisterInput{Username: "seller"})
	require.ErrorIs(t, err, auctionerrors.ErrDuplicateKey)
}

func TestValidateJWT_WrongSecret(t *testing.T) {
	svc, mem := newUserFixture(t)

	_, token, err := svc.Register(context.Background(), RegisterInput{Username: "seller"})
	require.NoError(t, err)

	other := NewUserService(mem, mem, "different-secret")
	_, err = other.ValidateJWT(token)
	require.Error(t, err)
}

func TestGetSettings_CreatesDefaultsOnFirstRead(t *testing.T) {
	svc, _ := newUserFixture(t)
	ctx := context.Background()

	user, _, err := svc.Register(ctx, RegisterInput{Username: "seller"})
	require.NoError(t, err)

	settings, err := svc.GetSettings(ctx, user.ID)
	require.NoError(t, err)
	require.True(t, settings.OutbidNotifications)
	require.True(t, settings.EndingNotifications)
	require.True(t, settings.NewBidNotifications)
	require.True(t, settings.DefaultMinIncrement.Equal(dec("10.00")))
	require.Equal(t, 24, settings.DefaultDuration)

	// The second read returns the same row, not a fresh one.
	again, err := svc.GetSettings(ctx, user.ID)
	require.NoError(t, err)
	require.Equal(t, settings.ID, again.ID)
}

func TestUpdateSettings_CreatesRowWhenMissing(t *testing.T) {
	svc, _ := newUserFixture(t)
	ctx := context.Background()

	user, _, err := svc.Register(ctx, RegisterInput{Username: "seller"})
	require.NoError(t, err)

	off := false
	dur := 48
	settings, err := svc.UpdateSettings(ctx, user.ID, repository.SettingsUpdate{
		OutbidNotifications: &off,
		DefaultDuration:     &dur,
	})
	require.NoError(t, err)
	require.False(t, settings.OutbidNotifications)
	require.Equal(t, 48, settings.DefaultDuration)
	// Untouched fields keep their defaults.
	require.True(t, settings.EndingNotifications)
	require.True(t, settings.DefaultMinIncrement.Equal(dec("10.00")))
}

func TestLinkFacebook(t *testing.T) {
	svc, _ := newUserFixture(t)
	ctx := context.Background()

	user, _, err := svc.Register(ctx, RegisterInput{Username: "seller"})
	require.NoError(t, err)

	linked, err := svc.LinkFacebook(ctx, user.ID, "fb-123", "access-token")
	require.NoError(t, err)
	require.NotNil(t, linked.FacebookID)
	require.Equal(t, "fb-123", *linked.FacebookID)

	_, err = svc.LinkFacebook(ctx, user.ID, "", "")
	require.ErrorIs(t, err, auctionerrors.ErrValidation)
}
