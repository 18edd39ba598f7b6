package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/amirphl/radio-contracts/models"
	"github.com/amirphl/radio-contracts/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SequenceCounterRepositoryImpl implements SequenceCounterRepository interface
type SequenceCounterRepositoryImpl struct {
	db *gorm.DB
}

// NewSequenceCounterRepository creates a new sequence counter repository
func NewSequenceCounterRepository(db *gorm.DB) SequenceCounterRepository {
	return &SequenceCounterRepositoryImpl{db: db}
}

func (r *SequenceCounterRepositoryImpl) conn(ctx context.Context) *gorm.DB {
	if tx, ok := ctx.Value(TxContextKey).(*gorm.DB); ok && tx != nil {
		return tx.WithContext(ctx)
	}
	return r.db.WithContext(ctx)
}

// Ensure creates the counter row at zero when it does not exist yet
func (r *SequenceCounterRepositoryImpl) Ensure(ctx context.Context, name string) error {
	counter := models.SequenceCounter{Name: name}
	err := r.conn(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "name"}}, DoNothing: true}).
		Create(&counter).Error
	if err != nil {
		return fmt.Errorf("failed to ensure counter %s: %w", name, err)
	}
	return nil
}

// ByNameForUpdate reads a counter and locks its row until the surrounding transaction ends
func (r *SequenceCounterRepositoryImpl) ByNameForUpdate(ctx context.Context, name string) (*models.SequenceCounter, error) {
	var counter models.SequenceCounter
	err := r.conn(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("name = ?", name).
		First(&counter).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to lock counter %s: %w", name, err)
	}
	return &counter, nil
}

// SetValue stores the last issued value of a counter
func (r *SequenceCounterRepositoryImpl) SetValue(ctx context.Context, name string, value int64) error {
	err := r.conn(ctx).Model(&models.SequenceCounter{}).
		Where("name = ?", name).
		Updates(map[string]any{"last_value": value, "updated_at": utils.UTCNow()}).Error
	if err != nil {
		return fmt.Errorf("failed to update counter %s: %w", name, err)
	}
	return nil
}
