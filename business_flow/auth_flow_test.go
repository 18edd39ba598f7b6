package businessflow

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/amirphl/radio-contracts/app/dto"
	"github.com/amirphl/radio-contracts/app/services"
	"github.com/amirphl/radio-contracts/models"
	"github.com/amirphl/radio-contracts/repository"
	"github.com/amirphl/radio-contracts/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTokenService(t *testing.T) services.TokenService {
	t.Helper()
	tokenService, err := services.NewTokenService(time.Hour, "test-issuer", "test-audience", false, "", "", "test-secret-key-for-flows", services.NewMemoryRevocationStore())
	require.NoError(t, err)
	return tokenService
}

func TestAuthFlow(t *testing.T) {
	ctx := context.Background()
	metadata := NewClientMetadata("10.0.0.1", "test-agent")

	setup := func(t *testing.T) (*testEnv, AuthFlow, SessionFlow, *Identity) {
		env := newTestEnv()
		tokenService := newTestTokenService(t)
		admin := env.addUser("admin", models.RoleAdmin, true)
		return env, NewAuthFlow(env.users, env.audits, tokenService, plainHasher{}), NewSessionFlow(env.users, tokenService), admin
	}

	t.Run("LoginIssuesUsableToken", func(t *testing.T) {
		env, auth, session, admin := setup(t)

		resp, err := auth.Login(ctx, &dto.LoginRequest{Username: "admin", Password: "secret123"}, metadata)
		require.NoError(t, err)
		assert.NotEmpty(t, resp.Token)
		assert.Equal(t, "Bearer", resp.TokenType)
		assert.Equal(t, 3600, resp.ExpiresIn)
		assert.Equal(t, admin.ID, resp.User.ID)
		assert.Equal(t, "admin", resp.User.Role)
		assert.NotNil(t, resp.User.LastLoginAt)

		identity, claims, err := session.Resolve(ctx, resp.Token)
		require.NoError(t, err)
		assert.Equal(t, admin.ID, identity.ID)
		assert.Equal(t, models.RoleAdmin, identity.Role)
		assert.NotEmpty(t, claims.TokenID)

		stored, err := env.users.ByID(ctx, admin.ID)
		require.NoError(t, err)
		assert.NotNil(t, stored.LastLoginAt)
		assert.Contains(t, env.store.auditActions(), models.AuditActionLoginSuccess)
	})

	t.Run("WrongPassword", func(t *testing.T) {
		env, auth, _, _ := setup(t)

		_, err := auth.Login(ctx, &dto.LoginRequest{Username: "admin", Password: "nope"}, metadata)
		assert.ErrorIs(t, err, ErrInvalidCredentials)
		assert.Contains(t, env.store.auditActions(), models.AuditActionLoginFailed)
	})

	t.Run("UnknownAndInactiveLookAlike", func(t *testing.T) {
		env, auth, _, _ := setup(t)
		env.addUser("retired", models.RoleManager, false)

		_, errUnknown := auth.Login(ctx, &dto.LoginRequest{Username: "ghost", Password: "secret123"}, metadata)
		_, errInactive := auth.Login(ctx, &dto.LoginRequest{Username: "retired", Password: "secret123"}, metadata)
		assert.ErrorIs(t, errUnknown, ErrInvalidCredentials)
		assert.ErrorIs(t, errInactive, ErrInvalidCredentials)
		assert.Equal(t, errUnknown.Error(), errInactive.Error())
	})

	t.Run("UnknownAndInactiveStillHashCompare", func(t *testing.T) {
		env := newTestEnv()
		env.addUser("retired", models.RoleManager, false)
		hasher := &countingHasher{}
		auth := NewAuthFlow(env.users, env.audits, newTestTokenService(t), hasher)

		for _, username := range []string{"ghost", "retired"} {
			_, err := auth.Login(ctx, &dto.LoginRequest{Username: username, Password: "secret123"}, metadata)
			assert.ErrorIs(t, err, ErrInvalidCredentials)
		}

		require.Len(t, hasher.compared, 2)
		for _, hash := range hasher.compared {
			assert.Equal(t, "plain:"+dummyPassword, hash)
		}
	})

	t.Run("RegisterRequiresAdmin", func(t *testing.T) {
		env, auth, _, admin := setup(t)
		manager := env.addUser("manager", models.RoleManager, true)

		req := &dto.CreateUserRequest{Username: "new_locutor", Email: "New@Radio.test", Password: "secret123", FullName: "New Locutor", Role: "announcer"}

		_, err := auth.Register(ctx, manager, req, metadata)
		assert.ErrorIs(t, err, ErrForbidden)

		out, err := auth.Register(ctx, admin, req, metadata)
		require.NoError(t, err)
		assert.Equal(t, "new@radio.test", out.Email)
		assert.Equal(t, "announcer", out.Role)
		assert.True(t, out.IsActive)

		_, err = auth.Register(ctx, admin, req, metadata)
		assert.ErrorIs(t, err, ErrUsernameAlreadyExists)
	})

	t.Run("ChangePasswordRevokesToken", func(t *testing.T) {
		_, auth, session, admin := setup(t)

		resp, err := auth.Login(ctx, &dto.LoginRequest{Username: "admin", Password: "secret123"}, metadata)
		require.NoError(t, err)
		_, claims, err := session.Resolve(ctx, resp.Token)
		require.NoError(t, err)

		err = auth.ChangePassword(ctx, admin, claims, &dto.ChangePasswordRequest{CurrentPassword: "wrong", NewPassword: "another123"}, metadata)
		assert.ErrorIs(t, err, ErrInvalidCredentials)

		err = auth.ChangePassword(ctx, admin, claims, &dto.ChangePasswordRequest{CurrentPassword: "secret123", NewPassword: "another123"}, metadata)
		require.NoError(t, err)

		_, _, err = session.Resolve(ctx, resp.Token)
		assert.ErrorIs(t, err, services.ErrTokenRevoked)

		_, err = auth.Login(ctx, &dto.LoginRequest{Username: "admin", Password: "another123"}, metadata)
		assert.NoError(t, err)
	})

	t.Run("Logout", func(t *testing.T) {
		_, auth, session, admin := setup(t)

		resp, err := auth.Login(ctx, &dto.LoginRequest{Username: "admin", Password: "secret123"}, metadata)
		require.NoError(t, err)
		_, claims, err := session.Resolve(ctx, resp.Token)
		require.NoError(t, err)

		require.NoError(t, auth.Logout(ctx, admin, claims, metadata))
		_, _, err = session.Resolve(ctx, resp.Token)
		assert.True(t, IsTokenError(err))
	})

	t.Run("UpdateProfile", func(t *testing.T) {
		env, auth, _, admin := setup(t)
		env.addUser("taken", models.RoleManager, true)

		_, err := auth.UpdateProfile(ctx, admin, &dto.UpdateProfileRequest{Email: utils.ToPtr("taken@radio.test")}, metadata)
		assert.ErrorIs(t, err, ErrEmailAlreadyExists)

		out, err := auth.UpdateProfile(ctx, admin, &dto.UpdateProfileRequest{FullName: utils.ToPtr(" Ana Admin ")}, metadata)
		require.NoError(t, err)
		assert.Equal(t, "Ana Admin", out.FullName)

		profile, err := auth.GetProfile(ctx, admin)
		require.NoError(t, err)
		assert.Equal(t, "Ana Admin", profile.FullName)

		_, err = auth.UpdateProfile(ctx, admin, &dto.UpdateProfileRequest{}, metadata)
		assert.ErrorIs(t, err, ErrNoFieldsToUpdate)
	})
}

func TestSessionFlow(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()
	tokenService := newTestTokenService(t)
	session := NewSessionFlow(env.users, tokenService)
	manager := env.addUser("manager", models.RoleManager, true)

	t.Run("EmptyToken", func(t *testing.T) {
		_, _, err := session.Resolve(ctx, "  ")
		assert.ErrorIs(t, err, ErrUnauthenticated)
	})

	t.Run("GarbageToken", func(t *testing.T) {
		_, _, err := session.Resolve(ctx, "not-a-jwt")
		assert.True(t, IsTokenError(err))
	})

	t.Run("RoleReadFromStoredUser", func(t *testing.T) {
		token, _, err := tokenService.GenerateToken(manager.ID, string(models.RoleManager))
		require.NoError(t, err)

		stored, err := env.users.ByID(ctx, manager.ID)
		require.NoError(t, err)
		stored.Role = models.RoleAdmin
		require.NoError(t, env.users.Update(ctx, stored))

		identity, _, err := session.Resolve(ctx, token)
		require.NoError(t, err)
		assert.Equal(t, models.RoleAdmin, identity.Role)
	})

	t.Run("DeactivatedUser", func(t *testing.T) {
		token, _, err := tokenService.GenerateToken(manager.ID, string(models.RoleManager))
		require.NoError(t, err)

		stored, err := env.users.ByID(ctx, manager.ID)
		require.NoError(t, err)
		stored.IsActive = utils.ToPtr(false)
		require.NoError(t, env.users.Update(ctx, stored))

		_, _, err = session.Resolve(ctx, token)
		assert.ErrorIs(t, err, ErrInactiveOrUnknownUser)
	})

	t.Run("UnknownUser", func(t *testing.T) {
		token, _, err := tokenService.GenerateToken(9999, string(models.RoleAdmin))
		require.NoError(t, err)
		_, _, err = session.Resolve(ctx, token)
		assert.ErrorIs(t, err, ErrInactiveOrUnknownUser)
	})

	t.Run("UserLookupFailure", func(t *testing.T) {
		dbErr := errors.New("connection refused")
		failing := NewSessionFlow(&unavailableUserRepo{UserRepository: env.users, err: dbErr}, tokenService)
		token, _, err := tokenService.GenerateToken(manager.ID, string(models.RoleManager))
		require.NoError(t, err)

		_, _, err = failing.Resolve(ctx, token)
		require.Error(t, err)
		assert.ErrorIs(t, err, dbErr)
		assert.False(t, IsTokenError(err))
		assert.NotErrorIs(t, err, ErrInactiveOrUnknownUser)
		assert.NotErrorIs(t, err, ErrUnauthenticated)
	})
}

// unavailableUserRepo fails every ByID lookup
type unavailableUserRepo struct {
	repository.UserRepository
	err error
}

func (r *unavailableUserRepo) ByID(context.Context, uint) (*models.User, error) {
	return nil, r.err
}

// countingHasher records every hash it is asked to compare against
type countingHasher struct {
	plainHasher
	compared []string
}

func (h *countingHasher) Compare(hash, password string) error {
	h.compared = append(h.compared, hash)
	return h.plainHasher.Compare(hash, password)
}
