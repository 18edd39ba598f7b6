package services

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-for-jwt-signing-32-chars"

// createTestTokenService creates a token service for testing with symmetric key
func createTestTokenService() (TokenService, error) {
	return NewTokenService(
		15*time.Minute,
		"test-issuer",
		"test-audience",
		false, // useRSAKeys
		"",    // privateKeyPEM
		"",    // publicKeyPEM
		testSecret,
		NewMemoryRevocationStore(),
	)
}

func signWith(t *testing.T, method jwt.SigningMethod, key any, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return token
}

func TestNewTokenService(t *testing.T) {
	tests := []struct {
		name        string
		useRSAKeys  bool
		secretKey   string
		expectError bool
	}{
		{name: "valid symmetric key configuration", secretKey: testSecret},
		{name: "missing secret key", secretKey: "", expectError: true},
		{name: "rsa without keys", useRSAKeys: true, expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, err := NewTokenService(time.Hour, "iss", "aud", tt.useRSAKeys, "", "", tt.secretKey, nil)
			if tt.expectError {
				assert.Error(t, err)
				assert.Nil(t, service)
			} else {
				assert.NoError(t, err)
				assert.NotNil(t, service)
				assert.Equal(t, time.Hour, service.AccessTokenTTL())
			}
		})
	}
}

func TestGenerateAndValidateToken(t *testing.T) {
	service, err := createTestTokenService()
	require.NoError(t, err)
	ctx := context.Background()

	token, expiresAt, err := service.GenerateToken(123, "manager")
	require.NoError(t, err)
	assert.Contains(t, token, "eyJ")
	assert.WithinDuration(t, time.Now().Add(15*time.Minute), expiresAt, 5*time.Second)

	claims, err := service.ValidateToken(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, uint(123), claims.UserID)
	assert.Equal(t, "manager", claims.Role)
	assert.Len(t, claims.TokenID, 36)
	assert.True(t, claims.ExpiresAt.After(claims.IssuedAt))

	other, _, err := service.GenerateToken(123, "manager")
	require.NoError(t, err)
	otherClaims, err := service.ValidateToken(ctx, other)
	require.NoError(t, err)
	assert.NotEqual(t, claims.TokenID, otherClaims.TokenID)
}

func TestValidateTokenRejections(t *testing.T) {
	service, err := createTestTokenService()
	require.NoError(t, err)
	ctx := context.Background()
	now := time.Now()

	base := func() jwt.MapClaims {
		return jwt.MapClaims{
			"user_id": 7,
			"role":    "admin",
			"jti":     "abc123",
			"iat":     now.Unix(),
			"exp":     now.Add(time.Hour).Unix(),
			"iss":     "test-issuer",
			"aud":     "test-audience",
		}
	}

	expired := base()
	expired["iat"] = now.Add(-2 * time.Hour).Unix()
	expired["exp"] = now.Add(-time.Hour).Unix()

	wrongIssuer := base()
	wrongIssuer["iss"] = "someone-else"

	missingUser := base()
	delete(missingUser, "user_id")

	missingJTI := base()
	delete(missingJTI, "jti")

	noneToken := signWith(t, jwt.SigningMethodNone, jwt.UnsafeAllowNoneSignatureType, base())

	tests := []struct {
		name  string
		token string
		want  error
	}{
		{name: "empty token", token: "", want: ErrTokenInvalid},
		{name: "garbage", token: "invalid.token.format", want: ErrTokenInvalid},
		{name: "wrong secret", token: signWith(t, jwt.SigningMethodHS256, []byte("another-secret-key-another-secret"), base()), want: ErrTokenInvalid},
		{name: "wrong algorithm", token: signWith(t, jwt.SigningMethodHS384, []byte(testSecret), base()), want: ErrTokenInvalid},
		{name: "none algorithm", token: noneToken, want: ErrTokenInvalid},
		{name: "expired", token: signWith(t, jwt.SigningMethodHS256, []byte(testSecret), expired), want: ErrTokenExpired},
		{name: "wrong issuer", token: signWith(t, jwt.SigningMethodHS256, []byte(testSecret), wrongIssuer), want: ErrTokenInvalid},
		{name: "missing user id", token: signWith(t, jwt.SigningMethodHS256, []byte(testSecret), missingUser), want: ErrTokenInvalid},
		{name: "missing token id", token: signWith(t, jwt.SigningMethodHS256, []byte(testSecret), missingJTI), want: ErrTokenInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := service.ValidateToken(ctx, tt.token)
			assert.ErrorIs(t, err, tt.want)
			assert.Nil(t, claims)
		})
	}
}

func TestRevokeToken(t *testing.T) {
	service, err := createTestTokenService()
	require.NoError(t, err)
	ctx := context.Background()

	token, _, err := service.GenerateToken(5, "announcer")
	require.NoError(t, err)

	claims, err := service.ValidateToken(ctx, token)
	require.NoError(t, err)

	require.NoError(t, service.RevokeToken(ctx, claims))

	_, err = service.ValidateToken(ctx, token)
	assert.ErrorIs(t, err, ErrTokenRevoked)

	t.Run("nil claims", func(t *testing.T) {
		assert.ErrorIs(t, service.RevokeToken(ctx, nil), ErrTokenInvalid)
	})

	t.Run("already expired claims are a no-op", func(t *testing.T) {
		err := service.RevokeToken(ctx, &TokenClaims{TokenID: "old", ExpiresAt: time.Now().Add(-time.Minute)})
		assert.NoError(t, err)
	})
}

func TestMemoryRevocationStore(t *testing.T) {
	store := NewMemoryRevocationStore()
	ctx := context.Background()

	revoked, err := store.IsRevoked(ctx, "a")
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, store.Revoke(ctx, "a", time.Hour))
	require.NoError(t, store.Revoke(ctx, "b", -time.Second))

	revoked, err = store.IsRevoked(ctx, "a")
	require.NoError(t, err)
	assert.True(t, revoked)

	revoked, err = store.IsRevoked(ctx, "b")
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestBcryptHasher(t *testing.T) {
	hasher := NewBcryptHasher(4)

	hash, err := hasher.Hash("s3cret-pass")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret-pass", hash)

	assert.NoError(t, hasher.Compare(hash, "s3cret-pass"))
	assert.ErrorIs(t, hasher.Compare(hash, "wrong"), ErrPasswordMismatch)

	t.Run("out of range cost falls back to default", func(t *testing.T) {
		assert.Equal(t, 10, NewBcryptHasher(99).cost)
	})
}
