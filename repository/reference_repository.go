package repository

import (
	"context"

	"github.com/amirphl/radio-contracts/models"
	"gorm.io/gorm"
)

// RadioProgramRepositoryImpl implements RadioProgramRepository interface
type RadioProgramRepositoryImpl struct {
	*BaseRepository[models.RadioProgram, models.RadioProgramFilter]
}

// NewRadioProgramRepository creates a new radio program repository
func NewRadioProgramRepository(db *gorm.DB) RadioProgramRepository {
	return &RadioProgramRepositoryImpl{
		BaseRepository: NewBaseRepository[models.RadioProgram, models.RadioProgramFilter](db),
	}
}

func (r *RadioProgramRepositoryImpl) applyFilter(query *gorm.DB, filter models.RadioProgramFilter) *gorm.DB {
	if filter.ID != nil {
		query = query.Where("id = ?", *filter.ID)
	}
	if filter.LocutorID != nil {
		query = query.Where("locutor_id = ?", *filter.LocutorID)
	}
	if filter.IsActive != nil {
		query = query.Where("is_active = ?", *filter.IsActive)
	}
	return query
}

// ByFilter retrieves radio programs based on filter criteria
func (r *RadioProgramRepositoryImpl) ByFilter(ctx context.Context, filter models.RadioProgramFilter, orderBy string, limit, offset int) ([]*models.RadioProgram, error) {
	query := r.applyFilter(r.getDB(ctx).Model(&models.RadioProgram{}), filter)

	if orderBy == "" {
		orderBy = "start_time ASC"
	}
	query = query.Order(orderBy)
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	var programs []*models.RadioProgram
	if err := query.Find(&programs).Error; err != nil {
		return nil, err
	}
	return programs, nil
}

// Count returns the number of radio programs matching the filter
func (r *RadioProgramRepositoryImpl) Count(ctx context.Context, filter models.RadioProgramFilter) (int64, error) {
	var count int64
	err := r.applyFilter(r.getDB(ctx).Model(&models.RadioProgram{}), filter).Count(&count).Error
	return count, err
}

// Exists checks if any radio program matching the filter exists
func (r *RadioProgramRepositoryImpl) Exists(ctx context.Context, filter models.RadioProgramFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// AdTypeRepositoryImpl implements AdTypeRepository interface
type AdTypeRepositoryImpl struct {
	*BaseRepository[models.AdType, models.AdTypeFilter]
}

// NewAdTypeRepository creates a new ad type repository
func NewAdTypeRepository(db *gorm.DB) AdTypeRepository {
	return &AdTypeRepositoryImpl{
		BaseRepository: NewBaseRepository[models.AdType, models.AdTypeFilter](db),
	}
}

func (r *AdTypeRepositoryImpl) applyFilter(query *gorm.DB, filter models.AdTypeFilter) *gorm.DB {
	if filter.ID != nil {
		query = query.Where("id = ?", *filter.ID)
	}
	if filter.IsActive != nil {
		query = query.Where("is_active = ?", *filter.IsActive)
	}
	return query
}

// ByFilter retrieves ad types based on filter criteria
func (r *AdTypeRepositoryImpl) ByFilter(ctx context.Context, filter models.AdTypeFilter, orderBy string, limit, offset int) ([]*models.AdType, error) {
	query := r.applyFilter(r.getDB(ctx).Model(&models.AdType{}), filter)

	if orderBy == "" {
		orderBy = "duration_seconds ASC"
	}
	query = query.Order(orderBy)
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	var adTypes []*models.AdType
	if err := query.Find(&adTypes).Error; err != nil {
		return nil, err
	}
	return adTypes, nil
}

// Count returns the number of ad types matching the filter
func (r *AdTypeRepositoryImpl) Count(ctx context.Context, filter models.AdTypeFilter) (int64, error) {
	var count int64
	err := r.applyFilter(r.getDB(ctx).Model(&models.AdType{}), filter).Count(&count).Error
	return count, err
}

// Exists checks if any ad type matching the filter exists
func (r *AdTypeRepositoryImpl) Exists(ctx context.Context, filter models.AdTypeFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
