// Package repository provides data access layer implementations and interfaces for database operations
package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/amirphl/radio-contracts/models"
	"github.com/amirphl/radio-contracts/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrClientRowNotFound is returned by updates that matched no client row
var ErrClientRowNotFound = errors.New("client not found")

// ClientRepositoryImpl implements ClientRepository interface
type ClientRepositoryImpl struct {
	*BaseRepository[models.Client, models.ClientFilter]
}

// NewClientRepository creates a new client repository
func NewClientRepository(db *gorm.DB) ClientRepository {
	return &ClientRepositoryImpl{
		BaseRepository: NewBaseRepository[models.Client, models.ClientFilter](db),
	}
}

func (r *ClientRepositoryImpl) applyFilter(query *gorm.DB, filter models.ClientFilter) *gorm.DB {
	if filter.ID != nil {
		query = query.Where("id = ?", *filter.ID)
	}
	if filter.Email != nil {
		query = query.Where("email = ?", *filter.Email)
	}
	if filter.CNPJ != nil {
		query = query.Where("cnpj = ?", *filter.CNPJ)
	}
	if filter.IsActive != nil {
		query = query.Where("is_active = ?", *filter.IsActive)
	}
	if filter.ExcludeID != nil {
		query = query.Where("id <> ?", *filter.ExcludeID)
	}
	if filter.Search != nil && strings.TrimSpace(*filter.Search) != "" {
		like := "%" + strings.TrimSpace(*filter.Search) + "%"
		query = query.Where("(company_name ILIKE ? OR contact_name ILIKE ? OR email ILIKE ? OR cnpj ILIKE ?)", like, like, like, like)
	}
	return query
}

// ByIDForUpdate reads a client and holds an exclusive row lock until the surrounding transaction ends
func (r *ClientRepositoryImpl) ByIDForUpdate(ctx context.Context, id uint) (*models.Client, error) {
	return r.byIDLocked(ctx, id, "UPDATE")
}

// ByIDForShare reads a client and blocks concurrent writers to its row until the surrounding transaction ends
func (r *ClientRepositoryImpl) ByIDForShare(ctx context.Context, id uint) (*models.Client, error) {
	return r.byIDLocked(ctx, id, "SHARE")
}

func (r *ClientRepositoryImpl) byIDLocked(ctx context.Context, id uint, strength string) (*models.Client, error) {
	var client models.Client
	err := r.getDB(ctx).
		Clauses(clause.Locking{Strength: strength}).
		Where("id = ?", id).
		First(&client).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to lock client %d: %w", id, err)
	}
	return &client, nil
}

// ByFilter retrieves clients based on filter criteria
func (r *ClientRepositoryImpl) ByFilter(ctx context.Context, filter models.ClientFilter, orderBy string, limit, offset int) ([]*models.Client, error) {
	query := r.applyFilter(r.getDB(ctx).Model(&models.Client{}), filter)

	if orderBy == "" {
		orderBy = "company_name ASC"
	}
	query = query.Order(orderBy)

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	var clients []*models.Client
	if err := query.Find(&clients).Error; err != nil {
		return nil, err
	}
	return clients, nil
}

// Count returns the number of clients matching the filter
func (r *ClientRepositoryImpl) Count(ctx context.Context, filter models.ClientFilter) (int64, error) {
	query := r.applyFilter(r.getDB(ctx).Model(&models.Client{}), filter)

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Exists checks if any client matching the filter exists
func (r *ClientRepositoryImpl) Exists(ctx context.Context, filter models.ClientFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Update writes all mutable columns of a client
func (r *ClientRepositoryImpl) Update(ctx context.Context, client *models.Client) (err error) {
	if client == nil || client.ID == 0 {
		return errors.New("client ID is required for update")
	}

	db, shouldCommit, err := r.getDBForWrite(ctx)
	if err != nil {
		return err
	}
	defer finish(db, shouldCommit, &err)

	updates := map[string]any{
		"company_name": client.CompanyName,
		"contact_name": client.ContactName,
		"email":        client.Email,
		"phone":        client.Phone,
		"cnpj":         client.CNPJ,
		"address":      client.Address,
		"updated_at":   utils.UTCNow(),
	}

	result := db.Model(&models.Client{}).Where("id = ?", client.ID).Updates(updates)
	if err = translateError(result.Error); err != nil {
		return fmt.Errorf("failed to update client: %w", err)
	}
	if result.RowsAffected == 0 {
		err = ErrClientRowNotFound
		return err
	}
	return nil
}

// Deactivate soft-deletes a client
func (r *ClientRepositoryImpl) Deactivate(ctx context.Context, clientID uint) error {
	result := r.getDB(ctx).Model(&models.Client{}).
		Where("id = ?", clientID).
		Updates(map[string]any{"is_active": false, "updated_at": utils.UTCNow()})
	if result.Error != nil {
		return fmt.Errorf("failed to deactivate client: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrClientRowNotFound
	}
	return nil
}
