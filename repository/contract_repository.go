// Package repository provides data access layer implementations and interfaces for database operations
package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/amirphl/radio-contracts/models"
	"github.com/amirphl/radio-contracts/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrContractRowNotFound is returned by writes that matched no contract row
var ErrContractRowNotFound = errors.New("contract not found")

// ContractRepositoryImpl implements ContractRepository interface
type ContractRepositoryImpl struct {
	*BaseRepository[models.Contract, models.ContractFilter]
}

// NewContractRepository creates a new contract repository
func NewContractRepository(db *gorm.DB) ContractRepository {
	return &ContractRepositoryImpl{
		BaseRepository: NewBaseRepository[models.Contract, models.ContractFilter](db),
	}
}

// ByIDForUpdate reads a contract and locks its row until the surrounding transaction ends
func (r *ContractRepositoryImpl) ByIDForUpdate(ctx context.Context, id uint) (*models.Contract, error) {
	var contract models.Contract
	err := r.getDB(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&contract).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to lock contract %d: %w", id, err)
	}
	return &contract, nil
}

// ByIDWithDetails reads a contract with its client, program and ad type
func (r *ContractRepositoryImpl) ByIDWithDetails(ctx context.Context, id uint) (*models.Contract, error) {
	var contract models.Contract
	err := r.getDB(ctx).
		Preload("Client").
		Preload("Program").
		Preload("AdType").
		Where("id = ?", id).
		First(&contract).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find contract %d: %w", id, err)
	}
	return &contract, nil
}

// LatestNumberWithPrefix returns the highest contract number starting with prefix, or empty string
func (r *ContractRepositoryImpl) LatestNumberWithPrefix(ctx context.Context, prefix string) (string, error) {
	var numbers []string
	err := r.getDB(ctx).Model(&models.Contract{}).
		Where("contract_number LIKE ?", prefix+"%").
		Order("length(contract_number) DESC, contract_number DESC").
		Limit(1).
		Pluck("contract_number", &numbers).Error
	if err != nil {
		return "", fmt.Errorf("failed to read latest contract number: %w", err)
	}
	if len(numbers) == 0 {
		return "", nil
	}
	return numbers[0], nil
}

func (r *ContractRepositoryImpl) applyFilter(query *gorm.DB, filter models.ContractFilter) *gorm.DB {
	if filter.ID != nil {
		query = query.Where("contracts.id = ?", *filter.ID)
	}
	if filter.ClientID != nil {
		query = query.Where("contracts.client_id = ?", *filter.ClientID)
	}
	if filter.ProgramID != nil {
		query = query.Where("contracts.program_id = ?", *filter.ProgramID)
	}
	if filter.Status != nil {
		query = query.Where("contracts.status = ?", *filter.Status)
	}
	if len(filter.Statuses) > 0 {
		query = query.Where("contracts.status IN ?", filter.Statuses)
	}
	if filter.PaymentStatus != nil {
		query = query.Where("contracts.payment_status = ?", *filter.PaymentStatus)
	}
	if filter.LocutorID != nil {
		query = query.Where("contracts.program_id IN (SELECT id FROM radio_programs WHERE locutor_id = ?)", *filter.LocutorID)
	}
	if filter.NumberPrefix != nil {
		query = query.Where("contracts.contract_number LIKE ?", *filter.NumberPrefix+"%")
	}
	if filter.EndDateBefore != nil {
		query = query.Where("contracts.end_date <= ?", filter.EndDateBefore.Format(utils.DateLayout))
	}
	if filter.CreatedAfter != nil {
		query = query.Where("contracts.created_at >= ?", *filter.CreatedAfter)
	}
	if filter.CreatedBefore != nil {
		query = query.Where("contracts.created_at < ?", *filter.CreatedBefore)
	}
	if filter.Search != nil && strings.TrimSpace(*filter.Search) != "" {
		like := "%" + strings.TrimSpace(*filter.Search) + "%"
		query = query.Where(
			"(contracts.contract_number ILIKE ? OR contracts.title ILIKE ? OR contracts.client_id IN (SELECT id FROM clients WHERE company_name ILIKE ?))",
			like, like, like,
		)
	}
	return query
}

// ByFilter retrieves contracts with client, program and ad type based on filter criteria
func (r *ContractRepositoryImpl) ByFilter(ctx context.Context, filter models.ContractFilter, orderBy string, limit, offset int) ([]*models.Contract, error) {
	query := r.applyFilter(r.getDB(ctx).Model(&models.Contract{}), filter).
		Preload("Client").
		Preload("Program").
		Preload("AdType")

	if orderBy == "" {
		orderBy = "contracts.created_at DESC"
	}
	query = query.Order(orderBy)

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	var contracts []*models.Contract
	if err := query.Find(&contracts).Error; err != nil {
		return nil, err
	}
	return contracts, nil
}

// Count returns the number of contracts matching the filter
func (r *ContractRepositoryImpl) Count(ctx context.Context, filter models.ContractFilter) (int64, error) {
	query := r.applyFilter(r.getDB(ctx).Model(&models.Contract{}), filter)

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Exists checks if any contract matching the filter exists
func (r *ContractRepositoryImpl) Exists(ctx context.Context, filter models.ContractFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Update writes all mutable columns of a contract
func (r *ContractRepositoryImpl) Update(ctx context.Context, contract *models.Contract) (err error) {
	if contract == nil || contract.ID == 0 {
		return errors.New("contract ID is required for update")
	}

	db, shouldCommit, err := r.getDBForWrite(ctx)
	if err != nil {
		return err
	}
	defer finish(db, shouldCommit, &err)

	updates := map[string]any{
		"client_id":           contract.ClientID,
		"program_id":          contract.ProgramID,
		"ad_type_id":          contract.AdTypeID,
		"title":               contract.Title,
		"description":         contract.Description,
		"start_date":          contract.StartDate,
		"end_date":            contract.EndDate,
		"total_spots":         contract.TotalSpots,
		"price_per_spot":      contract.PricePerSpot,
		"discount_percentage": contract.DiscountPercentage,
		"total_value":         contract.TotalValue,
		"discount_amount":     contract.DiscountAmount,
		"final_value":         contract.FinalValue,
		"status":              contract.Status,
		"payment_status":      contract.PaymentStatus,
		"approved_by":         contract.ApprovedBy,
		"approved_at":         contract.ApprovedAt,
		"completed_at":        contract.CompletedAt,
		"cancelled_at":        contract.CancelledAt,
		"cancellation_reason": contract.CancellationReason,
		"updated_at":          utils.UTCNow(),
	}

	result := db.Model(&models.Contract{}).Where("id = ?", contract.ID).Updates(updates)
	if err = translateError(result.Error); err != nil {
		return fmt.Errorf("failed to update contract: %w", err)
	}
	if result.RowsAffected == 0 {
		err = ErrContractRowNotFound
		return err
	}
	return nil
}

// DeleteCascade removes a contract together with its spots, payments and files
func (r *ContractRepositoryImpl) DeleteCascade(ctx context.Context, id uint) (err error) {
	db, shouldCommit, err := r.getDBForWrite(ctx)
	if err != nil {
		return err
	}
	defer finish(db, shouldCommit, &err)

	dependents := []any{&models.SpotSchedule{}, &models.Payment{}, &models.ContractFile{}}
	for _, model := range dependents {
		if err = db.Where("contract_id = ?", id).Delete(model).Error; err != nil {
			return fmt.Errorf("failed to delete contract dependents: %w", err)
		}
	}

	result := db.Where("id = ?", id).Delete(&models.Contract{})
	if result.Error != nil {
		err = fmt.Errorf("failed to delete contract: %w", result.Error)
		return err
	}
	if result.RowsAffected == 0 {
		err = ErrContractRowNotFound
		return err
	}
	return nil
}

// Stats aggregates counts and values of the contracts matching the filter
func (r *ContractRepositoryImpl) Stats(ctx context.Context, filter models.ContractFilter) (*models.ContractStats, error) {
	var stats models.ContractStats
	err := r.applyFilter(r.getDB(ctx).Model(&models.Contract{}), filter).
		Select(`COUNT(*) AS total_contracts,
			COUNT(*) FILTER (WHERE contracts.status = 'draft') AS draft_contracts,
			COUNT(*) FILTER (WHERE contracts.status = 'active') AS active_contracts,
			COUNT(*) FILTER (WHERE contracts.status = 'completed') AS completed_contracts,
			COUNT(*) FILTER (WHERE contracts.status = 'cancelled') AS cancelled_contracts,
			COALESCE(SUM(contracts.total_value), 0) AS total_value,
			COALESCE(SUM(contracts.final_value), 0) AS final_value,
			COALESCE(SUM(contracts.final_value) FILTER (WHERE contracts.payment_status = 'paid'), 0) AS paid_value,
			COALESCE(SUM(contracts.final_value) FILTER (WHERE contracts.payment_status = 'pending'), 0) AS pending_value`).
		Scan(&stats).Error
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate contract stats: %w", err)
	}
	return &stats, nil
}

// MonthlyStats groups contracts created since the given instant by month, newest first
func (r *ContractRepositoryImpl) MonthlyStats(ctx context.Context, filter models.ContractFilter, since time.Time) ([]*models.MonthlyContractStats, error) {
	var rows []*models.MonthlyContractStats
	err := r.applyFilter(r.getDB(ctx).Model(&models.Contract{}), filter).
		Where("contracts.created_at >= ?", since).
		Select(`to_char(date_trunc('month', contracts.created_at), 'YYYY-MM') AS month,
			COUNT(*) AS contracts_count,
			COALESCE(SUM(contracts.final_value), 0) AS total_value`).
		Group("month").
		Order("month DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate monthly contract stats: %w", err)
	}
	return rows, nil
}

// ListSpots returns the spot schedule of a contract
func (r *ContractRepositoryImpl) ListSpots(ctx context.Context, contractID uint) ([]*models.SpotSchedule, error) {
	var spots []*models.SpotSchedule
	err := r.getDB(ctx).
		Where("contract_id = ?", contractID).
		Order("scheduled_date ASC, scheduled_time ASC").
		Find(&spots).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list spots: %w", err)
	}
	return spots, nil
}

// ListPayments returns the payments recorded for a contract
func (r *ContractRepositoryImpl) ListPayments(ctx context.Context, contractID uint) ([]*models.Payment, error) {
	var payments []*models.Payment
	err := r.getDB(ctx).
		Where("contract_id = ?", contractID).
		Order("payment_date DESC").
		Find(&payments).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	return payments, nil
}

// ListFiles returns the files attached to a contract
func (r *ContractRepositoryImpl) ListFiles(ctx context.Context, contractID uint) ([]*models.ContractFile, error) {
	var files []*models.ContractFile
	err := r.getDB(ctx).
		Where("contract_id = ?", contractID).
		Order("created_at DESC").
		Find(&files).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list files: %w", err)
	}
	return files, nil
}
