package main

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/amirphl/radio-contracts/config"
	"github.com/amirphl/radio-contracts/models"
	"github.com/amirphl/radio-contracts/repository"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gormlogger "gorm.io/gorm/logger"
)

type stubUserRepo struct {
	repository.UserRepository
	existing *models.User
	saved    []*models.User
	saveErr  error
}

func (s *stubUserRepo) ByUsername(_ context.Context, _ string) (*models.User, error) {
	return s.existing, nil
}

func (s *stubUserRepo) Save(_ context.Context, user *models.User) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	user.ID = uint(len(s.saved) + 1)
	s.saved = append(s.saved, user)
	return nil
}

type plainHasher struct{}

func (plainHasher) Hash(password string) (string, error) { return "hashed:" + password, nil }
func (plainHasher) Compare(hash, password string) error {
	if hash != "hashed:"+password {
		return errors.New("mismatch")
	}
	return nil
}

func TestEnsureBootstrapAdmin(t *testing.T) {
	cfg := config.BootstrapConfig{
		AdminUsername: " admin ",
		AdminEmail:    "Admin@Station.com",
		AdminPassword: "supersecret",
	}

	t.Run("creates admin when missing", func(t *testing.T) {
		repo := &stubUserRepo{}
		require.NoError(t, ensureBootstrapAdmin(context.Background(), repo, plainHasher{}, cfg))

		require.Len(t, repo.saved, 1)
		admin := repo.saved[0]
		assert.Equal(t, "admin", admin.Username)
		assert.Equal(t, "admin@station.com", admin.Email)
		assert.Equal(t, "Administrator", admin.FullName)
		assert.Equal(t, models.RoleAdmin, admin.Role)
		assert.Equal(t, "hashed:supersecret", admin.PasswordHash)
	})

	t.Run("leaves existing user alone", func(t *testing.T) {
		repo := &stubUserRepo{existing: &models.User{ID: 7, Username: "admin"}}
		require.NoError(t, ensureBootstrapAdmin(context.Background(), repo, plainHasher{}, cfg))
		assert.Empty(t, repo.saved)
	})

	t.Run("propagates save errors", func(t *testing.T) {
		repo := &stubUserRepo{saveErr: errors.New("db down")}
		assert.Error(t, ensureBootstrapAdmin(context.Background(), repo, plainHasher{}, cfg))
	})
}

func TestGormLoggerSlowQuery(t *testing.T) {
	var buf bytes.Buffer
	previous := log.Logger
	log.Logger = zerolog.New(&buf)
	defer func() { log.Logger = previous }()

	l := newGormLogger(config.DatabaseConfig{SlowQueryLog: true, SlowQueryTime: time.Millisecond})

	l.Trace(context.Background(), time.Now().Add(-time.Second), func() (string, int64) {
		return "SELECT 1", 1
	}, nil)
	assert.Contains(t, buf.String(), "slow query")
	assert.Contains(t, buf.String(), "SELECT 1")

	buf.Reset()
	l.LogMode(gormlogger.Silent).Trace(context.Background(), time.Now().Add(-time.Second), func() (string, int64) {
		return "SELECT 2", 1
	}, nil)
	assert.Empty(t, buf.String())
}

func TestSetupLoggingLevel(t *testing.T) {
	previousLevel := zerolog.GlobalLevel()
	previous := log.Logger
	defer func() {
		zerolog.SetGlobalLevel(previousLevel)
		log.Logger = previous
	}()

	_, closeLog := setupLogging(config.LoggingConfig{Level: "warn", Format: "json", Output: "stdout"})
	defer closeLog()
	assert.Equal(t, zerolog.WarnLevel, zerolog.GlobalLevel())

	_, closeLog2 := setupLogging(config.LoggingConfig{Level: "bogus", Output: "stdout"})
	defer closeLog2()
	assert.Equal(t, zerolog.InfoLevel, zerolog.GlobalLevel())
}
