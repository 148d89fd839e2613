package services

import (
	"errors"

	"groupbid-backend/internal/auctionerrors"
)

func isNotFound(err error) bool {
	return errors.Is(err, auctionerrors.ErrNotFound)
}
