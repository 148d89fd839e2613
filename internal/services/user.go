package services

import (
	"context"
	"fmt"
	"time"

	"groupbid-backend/internal/auctionerrors"
	"groupbid-backend/internal/models"
	"groupbid-backend/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/shopspring/decimal"
)

const jwtExpDays = 365

// Defaults applied when a settings row is created lazily on first read.
var defaultMinIncrement = decimal.RequireFromString("10.00")

const defaultDurationHours = 24

// UserService handles user identity and per-user settings.
type UserService struct {
	userRepo     repository.UserRepository
	settingsRepo repository.SettingsRepository
	jwtSecret    string
}

// NewUserService creates a new user service
func NewUserService(userRepo repository.UserRepository, settingsRepo repository.SettingsRepository, jwtSecret string) *UserService {
	return &UserService{
		userRepo:     userRepo,
		settingsRepo: settingsRepo,
		jwtSecret:    jwtSecret,
	}
}

// RegisterInput holds the fields for a new registration.
type RegisterInput struct {
	Username   string
	Name       *string
	Email      *string
	Avatar     *string
	FacebookID *string
}

// Register creates a new user and issues a token for it. Usernames are
// unique; a taken one fails with ErrDuplicateKey.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*models.User, string, error) {
	if in.Username == "" {
		return nil, "", fmt.Errorf("service: %w - username is required", auctionerrors.ErrValidation)
	}

	user, err := s.userRepo.CreateUser(ctx, repository.CreateUserInput{
		Username:   in.Username,
		Name:       in.Name,
		Email:      in.Email,
		Avatar:     in.Avatar,
		FacebookID: in.FacebookID,
	})
	if err != nil {
		return nil, "", fmt.Errorf("service: %w", err)
	}

	token, err := s.GenerateJWT(user.ID)
	if err != nil {
		return nil, "", fmt.Errorf("service: failed to generate token: %w", err)
	}

	return user, token, nil
}

// GetUser retrieves a user by id.
func (s *UserService) GetUser(ctx context.Context, id string) (*models.User, error) {
	user, err := s.userRepo.GetUser(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("service: %w", err)
	}
	return user, nil
}

// LinkFacebook attaches a facebook identity and access token to the user.
// A facebook id already linked to another user fails with ErrDuplicateKey.
func (s *UserService) LinkFacebook(ctx context.Context, userID, facebookID, accessToken string) (*models.User, error) {
	if facebookID == "" {
		return nil, fmt.Errorf("service: %w - facebook id is required", auctionerrors.ErrValidation)
	}
	user, err := s.userRepo.UpdateUser(ctx, userID, repository.UserUpdate{
		FacebookID:          &facebookID,
		FacebookAccessToken: &accessToken,
	})
	if err != nil {
		return nil, fmt.Errorf("service: %w", err)
	}
	return user, nil
}

// GetSettings returns the user's settings, creating the row with defaults
// on first read.
func (s *UserService) GetSettings(ctx context.Context, userID string) (*models.UserSettings, error) {
	settings, err := s.settingsRepo.GetSettingsForUser(ctx, userID)
	if err == nil {
		return settings, nil
	}
	if !isNotFound(err) {
		return nil, fmt.Errorf("service: %w", err)
	}

	settings, err = s.settingsRepo.CreateSettings(ctx, repository.CreateSettingsInput{
		UserID:              userID,
		OutbidNotifications: true,
		EndingNotifications: true,
		NewBidNotifications: true,
		DefaultMinIncrement: defaultMinIncrement,
		DefaultDuration:     defaultDurationHours,
	})
	if err != nil {
		return nil, fmt.Errorf("service: failed to create default settings for user %s: %w", userID, err)
	}
	return settings, nil
}

// UpdateSettings merges the provided toggles and defaults into the user's
// settings row, creating it first if the user has none yet.
func (s *UserService) UpdateSettings(ctx context.Context, userID string, upd repository.SettingsUpdate) (*models.UserSettings, error) {
	if _, err := s.GetSettings(ctx, userID); err != nil {
		return nil, err
	}
	settings, err := s.settingsRepo.UpdateSettingsForUser(ctx, userID, upd)
	if err != nil {
		return nil, fmt.Errorf("service: %w", err)
	}
	return settings, nil
}

// GenerateJWT generates a JWT token for a user
func (s *UserService) GenerateJWT(userID string) (string, error) {
	claims := jwt.MapClaims{
		"user_id": userID,
		"exp":     time.Now().AddDate(0, 0, jwtExpDays).Unix(),
		"iat":     time.Now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return tokenString, nil
}

// ValidateJWT validates a JWT token and returns the user ID
func (s *UserService) ValidateJWT(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.jwtSecret), nil
	})

	if err != nil {
		return "", fmt.Errorf("failed to parse token: %w", err)
	}

	if !token.Valid {
		return "", fmt.Errorf("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", fmt.Errorf("invalid token claims")
	}

	userID, ok := claims["user_id"].(string)
	if !ok {
		return "", fmt.Errorf("user_id not found in token")
	}

	return userID, nil
}
