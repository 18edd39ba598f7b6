// Package repository provides data access layer implementations and interfaces for database operations
package repository

import (
	"context"
	"time"

	"github.com/amirphl/radio-contracts/models"
)

// RepositoryContext key for transaction in context
type contextKey string

const TxContextKey contextKey = "tx"

type Repository[T any, F any] interface {
	ByID(ctx context.Context, id uint) (*T, error)
	ByFilter(ctx context.Context, filter F, orderBy string, limit, offset int) ([]*T, error)
	Save(ctx context.Context, entity *T) error
	SaveBatch(ctx context.Context, entities []*T) error
	Count(ctx context.Context, filter F) (int64, error)
	Exists(ctx context.Context, filter F) (bool, error)
}

// UserRepository defines operations for users
type UserRepository interface {
	Repository[models.User, models.UserFilter]
	ByUsername(ctx context.Context, username string) (*models.User, error)
	ByEmail(ctx context.Context, email string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	UpdatePassword(ctx context.Context, userID uint, passwordHash string) error
	UpdateLastLogin(ctx context.Context, userID uint, at time.Time) error
}

// ClientRepository defines operations for advertising clients
type ClientRepository interface {
	Repository[models.Client, models.ClientFilter]
	ByIDForUpdate(ctx context.Context, id uint) (*models.Client, error)
	ByIDForShare(ctx context.Context, id uint) (*models.Client, error)
	Update(ctx context.Context, client *models.Client) error
	Deactivate(ctx context.Context, clientID uint) error
}

// RadioProgramRepository defines read operations for radio programs
type RadioProgramRepository interface {
	Repository[models.RadioProgram, models.RadioProgramFilter]
}

// AdTypeRepository defines read operations for ad types
type AdTypeRepository interface {
	Repository[models.AdType, models.AdTypeFilter]
}

// ContractRepository defines operations for contracts and their dependents
type ContractRepository interface {
	Repository[models.Contract, models.ContractFilter]
	ByIDForUpdate(ctx context.Context, id uint) (*models.Contract, error)
	ByIDWithDetails(ctx context.Context, id uint) (*models.Contract, error)
	LatestNumberWithPrefix(ctx context.Context, prefix string) (string, error)
	Update(ctx context.Context, contract *models.Contract) error
	DeleteCascade(ctx context.Context, id uint) error
	Stats(ctx context.Context, filter models.ContractFilter) (*models.ContractStats, error)
	MonthlyStats(ctx context.Context, filter models.ContractFilter, since time.Time) ([]*models.MonthlyContractStats, error)
	ListSpots(ctx context.Context, contractID uint) ([]*models.SpotSchedule, error)
	ListPayments(ctx context.Context, contractID uint) ([]*models.Payment, error)
	ListFiles(ctx context.Context, contractID uint) ([]*models.ContractFile, error)
}

// SequenceCounterRepository defines operations on named counters
type SequenceCounterRepository interface {
	Ensure(ctx context.Context, name string) error
	ByNameForUpdate(ctx context.Context, name string) (*models.SequenceCounter, error)
	SetValue(ctx context.Context, name string, value int64) error
}

// AuditLogRepository defines operations for audit logs
type AuditLogRepository interface {
	Repository[models.AuditLog, models.AuditLogFilter]
}
