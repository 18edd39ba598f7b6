package businessflow

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/amirphl/radio-contracts/app/services"
	"github.com/amirphl/radio-contracts/repository"
	"github.com/amirphl/radio-contracts/utils"
)

// SessionFlow resolves bearer tokens into the current identity of their user
type SessionFlow interface {
	Resolve(ctx context.Context, token string) (*Identity, *services.TokenClaims, error)
}

// SessionFlowImpl implements SessionFlow
type SessionFlowImpl struct {
	userRepo     repository.UserRepository
	tokenService services.TokenService
}

// NewSessionFlow creates a new session flow instance
func NewSessionFlow(userRepo repository.UserRepository, tokenService services.TokenService) SessionFlow {
	return &SessionFlowImpl{
		userRepo:     userRepo,
		tokenService: tokenService,
	}
}

// Resolve validates the token and re-reads its user, so deactivation and role
// changes take effect on the very next request
func (f *SessionFlowImpl) Resolve(ctx context.Context, token string) (*Identity, *services.TokenClaims, error) {
	if strings.TrimSpace(token) == "" {
		return nil, nil, ErrUnauthenticated
	}

	claims, err := f.tokenService.ValidateToken(ctx, token)
	if err != nil {
		return nil, nil, err
	}

	user, err := f.userRepo.ByID(ctx, claims.UserID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load session user %d: %w", claims.UserID, err)
	}
	if user == nil || !utils.IsTrue(user.IsActive) {
		return nil, nil, ErrInactiveOrUnknownUser
	}

	return NewIdentity(user), claims, nil
}

// IsTokenError reports whether err came from token validation
func IsTokenError(err error) bool {
	return errors.Is(err, services.ErrTokenExpired) ||
		errors.Is(err, services.ErrTokenInvalid) ||
		errors.Is(err, services.ErrTokenRevoked)
}
