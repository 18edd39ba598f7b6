package businessflow

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/amirphl/radio-contracts/app/dto"
	"github.com/amirphl/radio-contracts/models"
	"github.com/amirphl/radio-contracts/repository"
	"github.com/amirphl/radio-contracts/utils"
)

const statsMonths = 12

// ClientFlow handles advertising client management
type ClientFlow interface {
	ListClients(ctx context.Context, actor *Identity, req *dto.ListClientsRequest) (*dto.ListClientsResponse, error)
	GetClient(ctx context.Context, actor *Identity, clientID uint) (*dto.ClientDetailResponse, error)
	CreateClient(ctx context.Context, actor *Identity, req *dto.CreateClientRequest, metadata *ClientMetadata) (*dto.ClientDTO, error)
	UpdateClient(ctx context.Context, actor *Identity, clientID uint, req *dto.UpdateClientRequest, metadata *ClientMetadata) (*dto.ClientDTO, error)
	DeleteClient(ctx context.Context, actor *Identity, clientID uint, metadata *ClientMetadata) error
	ClientStats(ctx context.Context, actor *Identity, clientID uint) (*dto.ContractStatsResponse, error)
}

// ClientFlowImpl implements ClientFlow
type ClientFlowImpl struct {
	clientRepo   repository.ClientRepository
	contractRepo repository.ContractRepository
	audit        auditRecorder
	uow          repository.UnitOfWork
}

// NewClientFlow creates a new client flow instance
func NewClientFlow(
	clientRepo repository.ClientRepository,
	contractRepo repository.ContractRepository,
	auditRepo repository.AuditLogRepository,
	uow repository.UnitOfWork,
) ClientFlow {
	return &ClientFlowImpl{
		clientRepo:   clientRepo,
		contractRepo: contractRepo,
		audit:        auditRecorder{repo: auditRepo},
		uow:          uow,
	}
}

// ListClients returns active clients ordered by company name
func (f *ClientFlowImpl) ListClients(ctx context.Context, actor *Identity, req *dto.ListClientsRequest) (*dto.ListClientsResponse, error) {
	if err := AuthorizeCapability(actor, CapClientsList); err != nil {
		return nil, err
	}

	filter := models.ClientFilter{
		IsActive: utils.ToPtr(true),
		Search:   utils.TrimPtr(req.Search),
	}
	page, limit, offset := normalizePagination(req.Page, req.Limit)

	total, err := f.clientRepo.Count(ctx, filter)
	if err != nil {
		return nil, NewBusinessError("LIST_CLIENTS_FAILED", "Failed to count clients", err)
	}

	clients, err := f.clientRepo.ByFilter(ctx, filter, "company_name ASC", limit, offset)
	if err != nil {
		return nil, NewBusinessError("LIST_CLIENTS_FAILED", "Failed to list clients", err)
	}

	items := make([]dto.ClientDTO, 0, len(clients))
	for _, c := range clients {
		items = append(items, ToClientDTO(*c))
	}

	return &dto.ListClientsResponse{
		Clients:    items,
		Pagination: dto.NewPaginationInfo(total, page, limit),
	}, nil
}

// GetClient returns an active client with the contracts the caller may see
func (f *ClientFlowImpl) GetClient(ctx context.Context, actor *Identity, clientID uint) (*dto.ClientDetailResponse, error) {
	if err := AuthorizeCapability(actor, CapClientsGet); err != nil {
		return nil, err
	}

	client, err := f.activeClient(ctx, clientID)
	if err != nil {
		return nil, err
	}

	filter := models.ContractFilter{
		ClientID:  &client.ID,
		LocutorID: VisibleLocutor(actor, CapClientsGet),
	}
	contracts, err := f.contractRepo.ByFilter(ctx, filter, "contracts.created_at DESC", 0, 0)
	if err != nil {
		return nil, NewBusinessError("GET_CLIENT_FAILED", "Failed to list client contracts", err)
	}

	return &dto.ClientDetailResponse{
		Client:    ToClientDTO(*client),
		Contracts: toContractDTOs(contracts),
	}, nil
}

func (f *ClientFlowImpl) CreateClient(ctx context.Context, actor *Identity, req *dto.CreateClientRequest, metadata *ClientMetadata) (*dto.ClientDTO, error) {
	if err := AuthorizeCapability(actor, CapClientsCreate); err != nil {
		return nil, err
	}

	client := &models.Client{
		CompanyName: strings.TrimSpace(req.CompanyName),
		ContactName: strings.TrimSpace(req.ContactName),
		Email:       normalizeEmail(req.Email),
		Phone:       utils.TrimPtr(req.Phone),
		CNPJ:        utils.TrimPtr(req.CNPJ),
		Address:     utils.TrimPtr(req.Address),
		IsActive:    utils.ToPtr(true),
	}

	if err := f.ensureClientUnique(ctx, client.Email, client.CNPJ, nil); err != nil {
		return nil, err
	}

	if err := f.clientRepo.Save(ctx, client); err != nil {
		err = mapClientWriteError(err)
		f.audit.record(ctx, actorID(actor), models.AuditActionClientCreated, "Client creation failed", false, errString(err), metadata)
		return nil, err
	}

	f.audit.record(ctx, actorID(actor), models.AuditActionClientCreated, fmt.Sprintf("Client created: %d", client.ID), true, nil, metadata)

	out := ToClientDTO(*client)
	return &out, nil
}

func (f *ClientFlowImpl) UpdateClient(ctx context.Context, actor *Identity, clientID uint, req *dto.UpdateClientRequest, metadata *ClientMetadata) (*dto.ClientDTO, error) {
	if err := AuthorizeCapability(actor, CapClientsUpdate); err != nil {
		return nil, err
	}
	if req.CompanyName == nil && req.ContactName == nil && req.Email == nil &&
		req.Phone == nil && req.CNPJ == nil && req.Address == nil {
		return nil, ErrNoFieldsToUpdate
	}

	client, err := f.activeClient(ctx, clientID)
	if err != nil {
		return nil, err
	}

	if req.CompanyName != nil {
		client.CompanyName = strings.TrimSpace(*req.CompanyName)
	}
	if req.ContactName != nil {
		client.ContactName = strings.TrimSpace(*req.ContactName)
	}
	if req.Email != nil {
		client.Email = normalizeEmail(*req.Email)
	}
	if req.Phone != nil {
		client.Phone = utils.TrimPtr(req.Phone)
	}
	if req.CNPJ != nil {
		client.CNPJ = utils.TrimPtr(req.CNPJ)
	}
	if req.Address != nil {
		client.Address = utils.TrimPtr(req.Address)
	}

	if err := f.ensureClientUnique(ctx, client.Email, client.CNPJ, &client.ID); err != nil {
		return nil, err
	}

	if err := f.clientRepo.Update(ctx, client); err != nil {
		err = mapClientWriteError(err)
		f.audit.record(ctx, actorID(actor), models.AuditActionClientUpdated, fmt.Sprintf("Client update failed: %d", clientID), false, errString(err), metadata)
		return nil, err
	}

	f.audit.record(ctx, actorID(actor), models.AuditActionClientUpdated, fmt.Sprintf("Client updated: %d", clientID), true, nil, metadata)

	out := ToClientDTO(*client)
	return &out, nil
}

// DeleteClient deactivates a client that has no draft or active contracts
func (f *ClientFlowImpl) DeleteClient(ctx context.Context, actor *Identity, clientID uint, metadata *ClientMetadata) error {
	if err := AuthorizeCapability(actor, CapClientsDelete); err != nil {
		return err
	}

	// the row lock serializes with contract creation, which share-locks the client
	err := f.uow.Do(ctx, func(txCtx context.Context) error {
		client, err := f.clientRepo.ByIDForUpdate(txCtx, clientID)
		if err != nil {
			return NewBusinessError("DELETE_CLIENT_FAILED", "Failed to load client", err)
		}
		if client == nil || !utils.IsTrue(client.IsActive) {
			return ErrClientNotFound
		}

		open, err := f.contractRepo.Exists(txCtx, models.ContractFilter{
			ClientID: &client.ID,
			Statuses: []models.ContractStatus{models.ContractStatusDraft, models.ContractStatusActive},
		})
		if err != nil {
			return NewBusinessError("DELETE_CLIENT_FAILED", "Failed to check client contracts", err)
		}
		if open {
			return ErrClientHasOpenContracts
		}

		if err := f.clientRepo.Deactivate(txCtx, client.ID); err != nil {
			return mapClientWriteError(err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	f.audit.record(ctx, actorID(actor), models.AuditActionClientDeactivated, fmt.Sprintf("Client deactivated: %d", clientID), true, nil, metadata)
	return nil
}

// ClientStats aggregates the contracts of one client, with a twelve month breakdown
func (f *ClientFlowImpl) ClientStats(ctx context.Context, actor *Identity, clientID uint) (*dto.ContractStatsResponse, error) {
	if err := AuthorizeCapability(actor, CapClientsStats); err != nil {
		return nil, err
	}

	client, err := f.activeClient(ctx, clientID)
	if err != nil {
		return nil, err
	}

	filter := models.ContractFilter{ClientID: &client.ID}
	stats, err := f.contractRepo.Stats(ctx, filter)
	if err != nil {
		return nil, NewBusinessError("CLIENT_STATS_FAILED", "Failed to aggregate client contracts", err)
	}
	monthly, err := f.contractRepo.MonthlyStats(ctx, filter, utils.MonthsAgo(statsMonths-1))
	if err != nil {
		return nil, NewBusinessError("CLIENT_STATS_FAILED", "Failed to aggregate client contracts by month", err)
	}

	resp := ToStatsDTO(stats, monthly)
	return &resp, nil
}

func (f *ClientFlowImpl) activeClient(ctx context.Context, clientID uint) (*models.Client, error) {
	client, err := f.clientRepo.ByID(ctx, clientID)
	if err != nil {
		return nil, NewBusinessError("GET_CLIENT_FAILED", "Failed to load client", err)
	}
	if client == nil || !utils.IsTrue(client.IsActive) {
		return nil, ErrClientNotFound
	}
	return client, nil
}

// ensureClientUnique checks email and cnpj among active clients
func (f *ClientFlowImpl) ensureClientUnique(ctx context.Context, email string, cnpj *string, excludeID *uint) error {
	active := utils.ToPtr(true)

	exists, err := f.clientRepo.Exists(ctx, models.ClientFilter{Email: &email, IsActive: active, ExcludeID: excludeID})
	if err != nil {
		return NewBusinessError("CLIENT_UNIQUENESS_CHECK_FAILED", "Failed to check client email", err)
	}
	if exists {
		return ErrClientEmailAlreadyExists
	}

	if cnpj == nil {
		return nil
	}
	exists, err = f.clientRepo.Exists(ctx, models.ClientFilter{CNPJ: cnpj, IsActive: active, ExcludeID: excludeID})
	if err != nil {
		return NewBusinessError("CLIENT_UNIQUENESS_CHECK_FAILED", "Failed to check client cnpj", err)
	}
	if exists {
		return ErrCNPJAlreadyExists
	}
	return nil
}

func mapClientWriteError(err error) error {
	if errors.Is(err, repository.ErrClientRowNotFound) {
		return ErrClientNotFound
	}
	if !repository.IsDuplicateKey(err) {
		return NewBusinessError("SAVE_CLIENT_FAILED", "Failed to save client", err)
	}
	if strings.Contains(repository.DuplicateConstraint(err), "cnpj") {
		return ErrCNPJAlreadyExists
	}
	return ErrClientEmailAlreadyExists
}
