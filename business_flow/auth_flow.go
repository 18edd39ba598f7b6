package businessflow

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/amirphl/radio-contracts/app/dto"
	"github.com/amirphl/radio-contracts/app/services"
	"github.com/amirphl/radio-contracts/models"
	"github.com/amirphl/radio-contracts/repository"
	"github.com/amirphl/radio-contracts/utils"
	"github.com/rs/zerolog/log"
)

// AuthFlow handles login, self-service account operations and registration
type AuthFlow interface {
	Login(ctx context.Context, req *dto.LoginRequest, metadata *ClientMetadata) (*dto.LoginResponse, error)
	Register(ctx context.Context, actor *Identity, req *dto.CreateUserRequest, metadata *ClientMetadata) (*dto.UserDTO, error)
	ChangePassword(ctx context.Context, actor *Identity, claims *services.TokenClaims, req *dto.ChangePasswordRequest, metadata *ClientMetadata) error
	GetProfile(ctx context.Context, actor *Identity) (*dto.UserDTO, error)
	UpdateProfile(ctx context.Context, actor *Identity, req *dto.UpdateProfileRequest, metadata *ClientMetadata) (*dto.UserDTO, error)
	Logout(ctx context.Context, actor *Identity, claims *services.TokenClaims, metadata *ClientMetadata) error
}

// AuthFlowImpl implements AuthFlow
type AuthFlowImpl struct {
	userRepo     repository.UserRepository
	tokenService services.TokenService
	hasher       services.PasswordHasher
	audit        auditRecorder
	// dummyHash is compared against when no usable account matches, so
	// unknown and inactive usernames cost the same as a wrong password
	dummyHash string
}

const dummyPassword = "radio-contracts-login-placeholder"

// NewAuthFlow creates a new auth flow instance
func NewAuthFlow(
	userRepo repository.UserRepository,
	auditRepo repository.AuditLogRepository,
	tokenService services.TokenService,
	hasher services.PasswordHasher,
) AuthFlow {
	dummyHash, err := hasher.Hash(dummyPassword)
	if err != nil {
		log.Warn().Err(err).Msg("failed to prepare placeholder password hash")
	}
	return &AuthFlowImpl{
		userRepo:     userRepo,
		tokenService: tokenService,
		hasher:       hasher,
		audit:        auditRecorder{repo: auditRepo},
		dummyHash:    dummyHash,
	}
}

// Login verifies credentials of an active user and issues an access token
func (f *AuthFlowImpl) Login(ctx context.Context, req *dto.LoginRequest, metadata *ClientMetadata) (*dto.LoginResponse, error) {
	username := strings.TrimSpace(req.Username)

	user, err := f.userRepo.ByUsername(ctx, username)
	if err != nil {
		return nil, NewBusinessError("LOGIN_FAILED", "Login failed", err)
	}

	if user == nil || !utils.IsTrue(user.IsActive) {
		_ = f.hasher.Compare(f.dummyHash, req.Password)
		f.loginFailed(ctx, nil, username, metadata)
		return nil, ErrInvalidCredentials
	}

	if err := f.hasher.Compare(user.PasswordHash, req.Password); err != nil {
		if !errors.Is(err, services.ErrPasswordMismatch) {
			log.Error().Err(err).Uint("user_id", user.ID).Msg("stored password hash is unusable")
		}
		f.loginFailed(ctx, &user.ID, username, metadata)
		return nil, ErrInvalidCredentials
	}

	token, expiresAt, err := f.tokenService.GenerateToken(user.ID, user.Role.String())
	if err != nil {
		return nil, NewBusinessError("LOGIN_FAILED", "Failed to issue token", err)
	}

	now := utils.UTCNow()
	if err := f.userRepo.UpdateLastLogin(ctx, user.ID, now); err != nil {
		log.Warn().Err(err).Uint("user_id", user.ID).Msg("failed to record last login")
	} else {
		user.LastLoginAt = &now
	}

	authLoginsTotal.WithLabelValues("success").Inc()
	f.audit.record(ctx, &user.ID, models.AuditActionLoginSuccess, fmt.Sprintf("User logged in successfully: %d", user.ID), true, nil, metadata)

	return &dto.LoginResponse{
		Token:     token,
		TokenType: "Bearer",
		ExpiresIn: int(f.tokenService.AccessTokenTTL().Seconds()),
		ExpiresAt: expiresAt,
		User:      ToUserDTO(*user),
	}, nil
}

func (f *AuthFlowImpl) loginFailed(ctx context.Context, userID *uint, username string, metadata *ClientMetadata) {
	authLoginsTotal.WithLabelValues("failure").Inc()
	msg := "invalid credentials"
	f.audit.record(ctx, userID, models.AuditActionLoginFailed, fmt.Sprintf("Login failed for username: %s", username), false, &msg, metadata)
}

// Register creates a user; only admins may register accounts
func (f *AuthFlowImpl) Register(ctx context.Context, actor *Identity, req *dto.CreateUserRequest, metadata *ClientMetadata) (*dto.UserDTO, error) {
	if err := AuthorizeCapability(actor, CapAuthRegister); err != nil {
		return nil, err
	}

	user, err := createUser(ctx, f.userRepo, f.hasher, req)
	if err != nil {
		f.audit.record(ctx, actorID(actor), models.AuditActionUserCreated, "Registration failed", false, errString(err), metadata)
		return nil, err
	}

	f.audit.record(ctx, actorID(actor), models.AuditActionUserCreated, fmt.Sprintf("User registered: %d", user.ID), true, nil, metadata)

	out := ToUserDTO(*user)
	return &out, nil
}

// ChangePassword verifies the current password, stores the new one and revokes the presented token
func (f *AuthFlowImpl) ChangePassword(ctx context.Context, actor *Identity, claims *services.TokenClaims, req *dto.ChangePasswordRequest, metadata *ClientMetadata) error {
	if actor == nil {
		return ErrUnauthenticated
	}

	user, err := getUser(ctx, f.userRepo, actor.ID)
	if err != nil {
		return err
	}

	if err := f.hasher.Compare(user.PasswordHash, req.CurrentPassword); err != nil {
		msg := "current password mismatch"
		f.audit.record(ctx, &user.ID, models.AuditActionPasswordChanged, "Password change failed", false, &msg, metadata)
		return ErrInvalidCredentials
	}

	hash, err := f.hasher.Hash(req.NewPassword)
	if err != nil {
		return NewBusinessError("CHANGE_PASSWORD_FAILED", "Failed to hash password", err)
	}
	if err := f.userRepo.UpdatePassword(ctx, user.ID, hash); err != nil {
		return NewBusinessError("CHANGE_PASSWORD_FAILED", "Failed to update password", err)
	}

	if claims != nil {
		if err := f.tokenService.RevokeToken(ctx, claims); err != nil {
			log.Warn().Err(err).Uint("user_id", user.ID).Msg("failed to revoke token after password change")
		}
	}

	f.audit.record(ctx, &user.ID, models.AuditActionPasswordChanged, "Password changed", true, nil, metadata)
	return nil
}

func (f *AuthFlowImpl) GetProfile(ctx context.Context, actor *Identity) (*dto.UserDTO, error) {
	if actor == nil {
		return nil, ErrUnauthenticated
	}

	user, err := getUser(ctx, f.userRepo, actor.ID)
	if err != nil {
		return nil, err
	}

	out := ToUserDTO(*user)
	return &out, nil
}

// UpdateProfile lets a user change their own name and email
func (f *AuthFlowImpl) UpdateProfile(ctx context.Context, actor *Identity, req *dto.UpdateProfileRequest, metadata *ClientMetadata) (*dto.UserDTO, error) {
	if actor == nil {
		return nil, ErrUnauthenticated
	}
	if req.FullName == nil && req.Email == nil {
		return nil, ErrNoFieldsToUpdate
	}

	user, err := getUser(ctx, f.userRepo, actor.ID)
	if err != nil {
		return nil, err
	}

	if req.FullName != nil {
		user.FullName = strings.TrimSpace(*req.FullName)
	}
	if req.Email != nil {
		user.Email = normalizeEmail(*req.Email)
		exists, err := f.userRepo.Exists(ctx, models.UserFilter{Email: &user.Email, ExcludeID: &user.ID})
		if err != nil {
			return nil, NewBusinessError("UPDATE_PROFILE_FAILED", "Failed to check email", err)
		}
		if exists {
			return nil, ErrEmailAlreadyExists
		}
	}

	if err := f.userRepo.Update(ctx, user); err != nil {
		return nil, mapUserWriteError(err)
	}

	f.audit.record(ctx, &user.ID, models.AuditActionProfileUpdated, "Profile updated", true, nil, metadata)

	out := ToUserDTO(*user)
	return &out, nil
}

// Logout revokes the presented token
func (f *AuthFlowImpl) Logout(ctx context.Context, actor *Identity, claims *services.TokenClaims, metadata *ClientMetadata) error {
	if actor == nil || claims == nil {
		return ErrUnauthenticated
	}

	if err := f.tokenService.RevokeToken(ctx, claims); err != nil {
		return NewBusinessError("LOGOUT_FAILED", "Failed to revoke token", err)
	}

	f.audit.record(ctx, &actor.ID, models.AuditActionLogout, "User logged out", true, nil, metadata)
	return nil
}
