package businessflow

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/amirphl/radio-contracts/app/dto"
	"github.com/amirphl/radio-contracts/models"
	"github.com/amirphl/radio-contracts/repository"
	"github.com/amirphl/radio-contracts/utils"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// ContractFlow handles contract reads, writes and lifecycle transitions
type ContractFlow interface {
	ListContracts(ctx context.Context, actor *Identity, req *dto.ListContractsRequest) (*dto.ListContractsResponse, error)
	GetContract(ctx context.Context, actor *Identity, contractID uint) (*dto.ContractDetailResponse, error)
	ContractStats(ctx context.Context, actor *Identity) (*dto.ContractStatsResponse, error)
	CreateContract(ctx context.Context, actor *Identity, req *dto.CreateContractRequest, metadata *ClientMetadata) (*dto.ContractDTO, error)
	UpdateContract(ctx context.Context, actor *Identity, contractID uint, req *dto.UpdateContractRequest, metadata *ClientMetadata) (*dto.ContractDTO, error)
	ApproveContract(ctx context.Context, actor *Identity, contractID uint, metadata *ClientMetadata) (*dto.ContractDTO, error)
	CompleteContract(ctx context.Context, actor *Identity, contractID uint, metadata *ClientMetadata) (*dto.ContractDTO, error)
	CancelContract(ctx context.Context, actor *Identity, contractID uint, req *dto.CancelContractRequest, metadata *ClientMetadata) (*dto.ContractDTO, error)
	DeleteContract(ctx context.Context, actor *Identity, contractID uint, metadata *ClientMetadata) error
	ExportContracts(ctx context.Context, actor *Identity, req *dto.ListContractsRequest) (*dto.ExportFile, error)
	CompleteExpired(ctx context.Context) (int, error)
}

// ContractFlowImpl implements ContractFlow
type ContractFlowImpl struct {
	contractRepo repository.ContractRepository
	clientRepo   repository.ClientRepository
	programRepo  repository.RadioProgramRepository
	adTypeRepo   repository.AdTypeRepository
	numberer     ContractNumberer
	uow          repository.UnitOfWork
	audit        auditRecorder
}

// NewContractFlow creates a new contract flow instance
func NewContractFlow(
	contractRepo repository.ContractRepository,
	clientRepo repository.ClientRepository,
	programRepo repository.RadioProgramRepository,
	adTypeRepo repository.AdTypeRepository,
	auditRepo repository.AuditLogRepository,
	numberer ContractNumberer,
	uow repository.UnitOfWork,
) ContractFlow {
	return &ContractFlowImpl{
		contractRepo: contractRepo,
		clientRepo:   clientRepo,
		programRepo:  programRepo,
		adTypeRepo:   adTypeRepo,
		numberer:     numberer,
		uow:          uow,
		audit:        auditRecorder{repo: auditRepo},
	}
}

func (f *ContractFlowImpl) ListContracts(ctx context.Context, actor *Identity, req *dto.ListContractsRequest) (*dto.ListContractsResponse, error) {
	if err := AuthorizeCapability(actor, CapContractsList); err != nil {
		return nil, err
	}

	filter, err := contractFilterFromRequest(req)
	if err != nil {
		return nil, err
	}
	filter.LocutorID = VisibleLocutor(actor, CapContractsList)

	page, limit, offset := normalizePagination(req.Page, req.Limit)

	total, err := f.contractRepo.Count(ctx, filter)
	if err != nil {
		return nil, NewBusinessError("LIST_CONTRACTS_FAILED", "Failed to count contracts", err)
	}

	contracts, err := f.contractRepo.ByFilter(ctx, filter, "contracts.created_at DESC", limit, offset)
	if err != nil {
		return nil, NewBusinessError("LIST_CONTRACTS_FAILED", "Failed to list contracts", err)
	}

	return &dto.ListContractsResponse{
		Contracts:  toContractDTOs(contracts),
		Pagination: dto.NewPaginationInfo(total, page, limit),
	}, nil
}

// GetContract returns a contract with its spots, payments and files
func (f *ContractFlowImpl) GetContract(ctx context.Context, actor *Identity, contractID uint) (*dto.ContractDetailResponse, error) {
	if err := AuthorizeCapability(actor, CapContractsGet); err != nil {
		return nil, err
	}

	contract, err := f.contractRepo.ByIDWithDetails(ctx, contractID)
	if err != nil {
		return nil, NewBusinessError("GET_CONTRACT_FAILED", "Failed to load contract", err)
	}
	if contract == nil {
		return nil, ErrContractNotFound
	}

	if locutorID := VisibleLocutor(actor, CapContractsGet); locutorID != nil {
		if contract.Program == nil || contract.Program.LocutorID == nil || *contract.Program.LocutorID != *locutorID {
			return nil, ErrForbidden
		}
	}

	spots, err := f.contractRepo.ListSpots(ctx, contract.ID)
	if err != nil {
		return nil, NewBusinessError("GET_CONTRACT_FAILED", "Failed to load spots", err)
	}
	payments, err := f.contractRepo.ListPayments(ctx, contract.ID)
	if err != nil {
		return nil, NewBusinessError("GET_CONTRACT_FAILED", "Failed to load payments", err)
	}
	files, err := f.contractRepo.ListFiles(ctx, contract.ID)
	if err != nil {
		return nil, NewBusinessError("GET_CONTRACT_FAILED", "Failed to load files", err)
	}

	resp := &dto.ContractDetailResponse{
		Contract: ToContractDTO(*contract),
		Spots:    make([]dto.SpotDTO, 0, len(spots)),
		Payments: make([]dto.PaymentDTO, 0, len(payments)),
		Files:    make([]dto.ContractFileDTO, 0, len(files)),
	}
	for _, s := range spots {
		resp.Spots = append(resp.Spots, dto.SpotDTO{
			ID:            s.ID,
			ScheduledDate: formatDate(time.Time(s.ScheduledDate)),
			ScheduledTime: formatClock(s.ScheduledTime),
			Status:        s.Status,
			AiredAt:       s.AiredAt,
			Notes:         s.Notes,
		})
	}
	for _, p := range payments {
		resp.Payments = append(resp.Payments, dto.PaymentDTO{
			ID:            p.ID,
			Amount:        p.Amount,
			PaymentDate:   formatDate(time.Time(p.PaymentDate)),
			PaymentMethod: p.PaymentMethod,
			Notes:         p.Notes,
			CreatedAt:     p.CreatedAt,
		})
	}
	for _, file := range files {
		resp.Files = append(resp.Files, dto.ContractFileDTO{
			ID:        file.ID,
			FileName:  file.FileName,
			FileSize:  file.FileSize,
			MimeType:  file.MimeType,
			CreatedAt: file.CreatedAt,
		})
	}
	return resp, nil
}

// ContractStats aggregates the contracts visible to the caller
func (f *ContractFlowImpl) ContractStats(ctx context.Context, actor *Identity) (*dto.ContractStatsResponse, error) {
	if err := AuthorizeCapability(actor, CapContractsStats); err != nil {
		return nil, err
	}

	filter := models.ContractFilter{LocutorID: VisibleLocutor(actor, CapContractsStats)}

	stats, err := f.contractRepo.Stats(ctx, filter)
	if err != nil {
		return nil, NewBusinessError("CONTRACT_STATS_FAILED", "Failed to aggregate contracts", err)
	}
	monthly, err := f.contractRepo.MonthlyStats(ctx, filter, utils.MonthsAgo(statsMonths-1))
	if err != nil {
		return nil, NewBusinessError("CONTRACT_STATS_FAILED", "Failed to aggregate contracts by month", err)
	}

	resp := ToStatsDTO(stats, monthly)
	return &resp, nil
}

// CreateContract stores a draft contract numbered within the same transaction
func (f *ContractFlowImpl) CreateContract(ctx context.Context, actor *Identity, req *dto.CreateContractRequest, metadata *ClientMetadata) (*dto.ContractDTO, error) {
	if err := AuthorizeCapability(actor, CapContractsCreate); err != nil {
		return nil, err
	}

	startDate, endDate, err := parseDateRange(req.StartDate, req.EndDate)
	if err != nil {
		return nil, err
	}

	if req.PricePerSpot == nil {
		return nil, ErrInvalidPricePerSpot
	}
	discountPct := decimal.Zero
	if req.DiscountPercentage != nil {
		discountPct = *req.DiscountPercentage
	}
	valuation, err := ComputeValuation(req.TotalSpots, *req.PricePerSpot, discountPct)
	if err != nil {
		return nil, err
	}

	if err := f.checkReferences(ctx, req.ClientID, req.ProgramID, req.AdTypeID); err != nil {
		return nil, err
	}

	contract := &models.Contract{
		ClientID:           req.ClientID,
		ProgramID:          req.ProgramID,
		AdTypeID:           req.AdTypeID,
		Title:              strings.TrimSpace(req.Title),
		Description:        utils.TrimPtr(req.Description),
		StartDate:          datatypes.Date(startDate),
		EndDate:            datatypes.Date(endDate),
		TotalSpots:         req.TotalSpots,
		PricePerSpot:       req.PricePerSpot.Round(moneyPlaces),
		DiscountPercentage: discountPct.Round(moneyPlaces),
		TotalValue:         valuation.TotalValue,
		DiscountAmount:     valuation.DiscountAmount,
		FinalValue:         valuation.FinalValue,
		Status:             models.ContractStatusDraft,
		PaymentStatus:      models.PaymentStatusPending,
		CreatedBy:          actor.ID,
	}

	err = f.uow.Do(ctx, func(txCtx context.Context) error {
		// holds off a concurrent client deactivation until this contract is visible
		client, err := f.clientRepo.ByIDForShare(txCtx, req.ClientID)
		if err != nil {
			return NewBusinessError("REFERENCE_CHECK_FAILED", "Failed to load client", err)
		}
		if client == nil || !utils.IsTrue(client.IsActive) {
			return fmt.Errorf("%w: %w", ErrInvalidReference, ErrClientNotFound)
		}

		number, err := f.numberer.NextNumber(txCtx, utils.UTCNow().Year())
		if err != nil {
			return err
		}
		contract.ContractNumber = number
		return f.contractRepo.Save(txCtx, contract)
	})
	if err != nil {
		f.audit.record(ctx, actorID(actor), models.AuditActionContractCreated, "Contract creation failed", false, errString(err), metadata)
		return nil, wrapContractError("CREATE_CONTRACT_FAILED", "Failed to create contract", err)
	}

	contractsCreatedTotal.Inc()
	f.audit.record(ctx, actorID(actor), models.AuditActionContractCreated, fmt.Sprintf("Contract created: %s", contract.ContractNumber), true, nil, metadata)

	return f.reload(ctx, contract)
}

// UpdateContract applies the provided fields to a draft or active contract
func (f *ContractFlowImpl) UpdateContract(ctx context.Context, actor *Identity, contractID uint, req *dto.UpdateContractRequest, metadata *ClientMetadata) (*dto.ContractDTO, error) {
	if err := AuthorizeCapability(actor, CapContractsUpdate); err != nil {
		return nil, err
	}
	if isEmptyContractUpdate(req) {
		return nil, ErrNoFieldsToUpdate
	}

	var contract *models.Contract
	err := f.uow.Do(ctx, func(txCtx context.Context) error {
		var err error
		contract, err = f.contractRepo.ByIDForUpdate(txCtx, contractID)
		if err != nil {
			return err
		}
		if contract == nil {
			return ErrContractNotFound
		}
		if !IsEditable(contract.Status) {
			return ErrInvalidContractState
		}

		if err := f.applyContractChanges(txCtx, contract, req); err != nil {
			return err
		}
		return f.contractRepo.Update(txCtx, contract)
	})
	if err != nil {
		f.audit.record(ctx, actorID(actor), models.AuditActionContractUpdated, fmt.Sprintf("Contract update failed: %d", contractID), false, errString(err), metadata)
		return nil, wrapContractError("UPDATE_CONTRACT_FAILED", "Failed to update contract", err)
	}

	f.audit.record(ctx, actorID(actor), models.AuditActionContractUpdated, fmt.Sprintf("Contract updated: %s", contract.ContractNumber), true, nil, metadata)
	return f.reload(ctx, contract)
}

func (f *ContractFlowImpl) ApproveContract(ctx context.Context, actor *Identity, contractID uint, metadata *ClientMetadata) (*dto.ContractDTO, error) {
	if err := AuthorizeCapability(actor, CapContractsApprove); err != nil {
		return nil, err
	}
	return f.runTransition(ctx, actor, contractID, models.ContractStatusActive, nil, models.AuditActionContractApproved, metadata)
}

// CompleteContract closes an active contract whose end date has been reached
func (f *ContractFlowImpl) CompleteContract(ctx context.Context, actor *Identity, contractID uint, metadata *ClientMetadata) (*dto.ContractDTO, error) {
	if err := AuthorizeCapability(actor, CapContractsComplete); err != nil {
		return nil, err
	}
	return f.runTransition(ctx, actor, contractID, models.ContractStatusCompleted, nil, models.AuditActionContractCompleted, metadata)
}

func (f *ContractFlowImpl) CancelContract(ctx context.Context, actor *Identity, contractID uint, req *dto.CancelContractRequest, metadata *ClientMetadata) (*dto.ContractDTO, error) {
	if err := AuthorizeCapability(actor, CapContractsCancel); err != nil {
		return nil, err
	}
	var reason *string
	if req != nil {
		reason = utils.TrimPtr(req.Reason)
	}
	return f.runTransition(ctx, actor, contractID, models.ContractStatusCancelled, reason, models.AuditActionContractCancelled, metadata)
}

// DeleteContract removes a non-active contract and its dependents atomically
func (f *ContractFlowImpl) DeleteContract(ctx context.Context, actor *Identity, contractID uint, metadata *ClientMetadata) error {
	if err := AuthorizeCapability(actor, CapContractsDelete); err != nil {
		return err
	}

	var number string
	err := f.uow.Do(ctx, func(txCtx context.Context) error {
		contract, err := f.contractRepo.ByIDForUpdate(txCtx, contractID)
		if err != nil {
			return err
		}
		if contract == nil {
			return ErrContractNotFound
		}
		if !IsDeletable(contract.Status) {
			return ErrInvalidContractState
		}
		number = contract.ContractNumber
		return f.contractRepo.DeleteCascade(txCtx, contract.ID)
	})
	if err != nil {
		f.audit.record(ctx, actorID(actor), models.AuditActionContractDeleted, fmt.Sprintf("Contract deletion failed: %d", contractID), false, errString(err), metadata)
		return wrapContractError("DELETE_CONTRACT_FAILED", "Failed to delete contract", err)
	}

	f.audit.record(ctx, actorID(actor), models.AuditActionContractDeleted, fmt.Sprintf("Contract deleted: %s", number), true, nil, metadata)
	return nil
}

// CompleteExpired completes every active contract whose end date is already past.
// It returns the number of contracts completed.
func (f *ContractFlowImpl) CompleteExpired(ctx context.Context) (int, error) {
	yesterday := utils.UTCToday().AddDate(0, 0, -1)
	filter := models.ContractFilter{
		Status:        utils.ToPtr(models.ContractStatusActive),
		EndDateBefore: &yesterday,
	}

	due, err := f.contractRepo.ByFilter(ctx, filter, "contracts.end_date ASC", 0, 0)
	if err != nil {
		return 0, NewBusinessError("AUTO_COMPLETE_FAILED", "Failed to list expired contracts", err)
	}

	completed := 0
	for _, c := range due {
		_, err := f.runTransition(ctx, nil, c.ID, models.ContractStatusCompleted, nil, models.AuditActionContractCompleted, nil)
		if err != nil {
			if IsInvalidContractState(err) {
				continue
			}
			log.Error().Err(err).Str("contract_number", c.ContractNumber).Msg("failed to auto-complete contract")
			continue
		}
		completed++
	}
	return completed, nil
}

func (f *ContractFlowImpl) runTransition(ctx context.Context, actor *Identity, contractID uint, to models.ContractStatus, reason *string, action string, metadata *ClientMetadata) (*dto.ContractDTO, error) {
	var contract *models.Contract
	err := f.uow.Do(ctx, func(txCtx context.Context) error {
		var err error
		contract, err = f.contractRepo.ByIDForUpdate(txCtx, contractID)
		if err != nil {
			return err
		}
		if contract == nil {
			return ErrContractNotFound
		}
		if err := transition(contract, to, actor, utils.UTCNow(), reason); err != nil {
			return err
		}
		return f.contractRepo.Update(txCtx, contract)
	})
	if err != nil {
		f.audit.record(ctx, actorID(actor), action, fmt.Sprintf("Contract transition to %s failed: %d", to, contractID), false, errString(err), metadata)
		return nil, wrapContractError("CONTRACT_TRANSITION_FAILED", "Failed to change contract status", err)
	}

	contractTransitionsTotal.WithLabelValues(to.String()).Inc()
	f.audit.record(ctx, actorID(actor), action, fmt.Sprintf("Contract %s moved to %s", contract.ContractNumber, to), true, nil, metadata)
	return f.reload(ctx, contract)
}

// applyContractChanges merges the provided fields into contract
func (f *ContractFlowImpl) applyContractChanges(ctx context.Context, contract *models.Contract, req *dto.UpdateContractRequest) error {
	clientID, programID, adTypeID := contract.ClientID, contract.ProgramID, contract.AdTypeID
	if req.ClientID != nil {
		clientID = *req.ClientID
	}
	if req.ProgramID != nil {
		programID = *req.ProgramID
	}
	if req.AdTypeID != nil {
		adTypeID = *req.AdTypeID
	}
	if req.ClientID != nil || req.ProgramID != nil || req.AdTypeID != nil {
		if err := f.checkReferences(ctx, clientID, programID, adTypeID); err != nil {
			return err
		}
		contract.ClientID, contract.ProgramID, contract.AdTypeID = clientID, programID, adTypeID
	}

	if req.Title != nil {
		contract.Title = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		contract.Description = utils.TrimPtr(req.Description)
	}

	if req.StartDate != nil || req.EndDate != nil {
		start := time.Time(contract.StartDate).Format(utils.DateLayout)
		end := time.Time(contract.EndDate).Format(utils.DateLayout)
		if req.StartDate != nil {
			start = *req.StartDate
		}
		if req.EndDate != nil {
			end = *req.EndDate
		}
		startDate, endDate, err := parseDateRange(start, end)
		if err != nil {
			return err
		}
		contract.StartDate = datatypes.Date(startDate)
		contract.EndDate = datatypes.Date(endDate)
	}

	if req.PaymentStatus != nil {
		ps := models.PaymentStatus(*req.PaymentStatus)
		if !ps.Valid() {
			return ErrInvalidPaymentStatus
		}
		contract.PaymentStatus = ps
	}

	return applyValuationChanges(contract, req)
}

// applyValuationChanges stores the provided valuation inputs and re-derives the
// monetary values only when both total_spots and price_per_spot are present
func applyValuationChanges(contract *models.Contract, req *dto.UpdateContractRequest) error {
	if req.TotalSpots != nil && *req.TotalSpots < 1 {
		return ErrInvalidTotalSpots
	}
	if req.PricePerSpot != nil && req.PricePerSpot.IsNegative() {
		return ErrInvalidPricePerSpot
	}
	if req.DiscountPercentage != nil && (req.DiscountPercentage.IsNegative() || req.DiscountPercentage.GreaterThan(hundred)) {
		return ErrDiscountOutOfRange
	}

	if req.TotalSpots == nil || req.PricePerSpot == nil {
		if req.TotalSpots != nil {
			contract.TotalSpots = *req.TotalSpots
		}
		if req.PricePerSpot != nil {
			contract.PricePerSpot = req.PricePerSpot.Round(moneyPlaces)
		}
		if req.DiscountPercentage != nil {
			contract.DiscountPercentage = req.DiscountPercentage.Round(moneyPlaces)
		}
		return nil
	}

	discountPct := contract.DiscountPercentage
	if req.DiscountPercentage != nil {
		discountPct = *req.DiscountPercentage
	}
	valuation, err := ComputeValuation(*req.TotalSpots, *req.PricePerSpot, discountPct)
	if err != nil {
		return err
	}

	contract.TotalSpots = *req.TotalSpots
	contract.PricePerSpot = req.PricePerSpot.Round(moneyPlaces)
	contract.DiscountPercentage = discountPct.Round(moneyPlaces)
	contract.TotalValue = valuation.TotalValue
	contract.DiscountAmount = valuation.DiscountAmount
	contract.FinalValue = valuation.FinalValue
	return nil
}

// checkReferences requires an active client, program and ad type
func (f *ContractFlowImpl) checkReferences(ctx context.Context, clientID, programID, adTypeID uint) error {
	client, err := f.clientRepo.ByID(ctx, clientID)
	if err != nil {
		return NewBusinessError("REFERENCE_CHECK_FAILED", "Failed to load client", err)
	}
	if client == nil || !utils.IsTrue(client.IsActive) {
		return fmt.Errorf("%w: %w", ErrInvalidReference, ErrClientNotFound)
	}

	program, err := f.programRepo.ByID(ctx, programID)
	if err != nil {
		return NewBusinessError("REFERENCE_CHECK_FAILED", "Failed to load program", err)
	}
	if program == nil || !utils.IsTrue(program.IsActive) {
		return fmt.Errorf("%w: %w", ErrInvalidReference, ErrProgramNotFound)
	}

	adType, err := f.adTypeRepo.ByID(ctx, adTypeID)
	if err != nil {
		return NewBusinessError("REFERENCE_CHECK_FAILED", "Failed to load ad type", err)
	}
	if adType == nil || !utils.IsTrue(adType.IsActive) {
		return fmt.Errorf("%w: %w", ErrInvalidReference, ErrAdTypeNotFound)
	}
	return nil
}

// reload re-reads a contract with its names for the response
func (f *ContractFlowImpl) reload(ctx context.Context, contract *models.Contract) (*dto.ContractDTO, error) {
	fresh, err := f.contractRepo.ByIDWithDetails(ctx, contract.ID)
	if err != nil || fresh == nil {
		if err != nil {
			log.Warn().Err(err).Uint("contract_id", contract.ID).Msg("failed to reload contract")
		}
		out := ToContractDTO(*contract)
		return &out, nil
	}
	out := ToContractDTO(*fresh)
	return &out, nil
}

func contractFilterFromRequest(req *dto.ListContractsRequest) (models.ContractFilter, error) {
	filter := models.ContractFilter{
		Search:    utils.TrimPtr(req.Search),
		ClientID:  req.ClientID,
		ProgramID: req.ProgramID,
	}
	if req.Status != nil && *req.Status != "" {
		status := models.ContractStatus(*req.Status)
		if !status.Valid() {
			return filter, ErrInvalidStatus
		}
		filter.Status = &status
	}
	if req.PaymentStatus != nil && *req.PaymentStatus != "" {
		ps := models.PaymentStatus(*req.PaymentStatus)
		if !ps.Valid() {
			return filter, ErrInvalidPaymentStatus
		}
		filter.PaymentStatus = &ps
	}
	return filter, nil
}

func parseDateRange(start, end string) (time.Time, time.Time, error) {
	startDate, err := utils.ParseDate(start)
	if err != nil {
		return time.Time{}, time.Time{}, ErrInvalidDate
	}
	endDate, err := utils.ParseDate(end)
	if err != nil {
		return time.Time{}, time.Time{}, ErrInvalidDate
	}
	if !endDate.After(startDate) {
		return time.Time{}, time.Time{}, ErrInvalidDateRange
	}
	return startDate, endDate, nil
}

func isEmptyContractUpdate(req *dto.UpdateContractRequest) bool {
	return req.ClientID == nil && req.ProgramID == nil && req.AdTypeID == nil &&
		req.Title == nil && req.Description == nil &&
		req.StartDate == nil && req.EndDate == nil &&
		req.TotalSpots == nil && req.PricePerSpot == nil && req.DiscountPercentage == nil &&
		req.PaymentStatus == nil
}

// wrapContractError keeps business sentinels visible and wraps everything else
func wrapContractError(code, message string, err error) error {
	var be *BusinessError
	if errors.As(err, &be) {
		return err
	}
	if IsNotFound(err) || IsInvalidContractState(err) || IsValidation(err) || IsForbidden(err) {
		return err
	}
	if errors.Is(err, repository.ErrContractRowNotFound) {
		return ErrContractNotFound
	}
	return NewBusinessError(code, message, err)
}

func formatClock(t datatypes.Time) string {
	d := time.Duration(t)
	return fmt.Sprintf("%02d:%02d", int(d.Hours()), int(d.Minutes())%60)
}
