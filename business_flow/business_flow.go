// Package businessflow contains the business logic for the application.
package businessflow

import (
	"context"
	"time"

	"github.com/amirphl/radio-contracts/app/dto"
	"github.com/amirphl/radio-contracts/models"
	"github.com/amirphl/radio-contracts/repository"
	"github.com/amirphl/radio-contracts/utils"
	"github.com/rs/zerolog/log"
)

// ClientMetadata holds client-related information for audit logging
type ClientMetadata struct {
	IPAddress string `json:"ip_address"`
	UserAgent string `json:"user_agent"`
	RequestID string `json:"request_id,omitempty"`
}

// NewClientMetadata creates a new ClientMetadata instance with basic information
func NewClientMetadata(ipAddress, userAgent string) *ClientMetadata {
	return &ClientMetadata{
		IPAddress: ipAddress,
		UserAgent: userAgent,
	}
}

// SetRequestID sets the request ID
func (cm *ClientMetadata) SetRequestID(requestID string) {
	cm.RequestID = requestID
}

// Identity is the resolved, hash-free view of the acting user
type Identity struct {
	ID       uint
	Username string
	Email    string
	FullName string
	Role     models.UserRole
}

// NewIdentity builds an Identity from the stored user row
func NewIdentity(user *models.User) *Identity {
	return &Identity{
		ID:       user.ID,
		Username: user.Username,
		Email:    user.Email,
		FullName: user.FullName,
		Role:     user.Role,
	}
}

// auditRecorder writes best-effort audit entries
type auditRecorder struct {
	repo repository.AuditLogRepository
}

func (a auditRecorder) record(ctx context.Context, userID *uint, action, description string, success bool, errorMsg *string, metadata *ClientMetadata) {
	if a.repo == nil {
		return
	}

	ipAddress := "127.0.0.1"
	userAgent := ""
	if metadata != nil {
		ipAddress = metadata.IPAddress
		userAgent = metadata.UserAgent
	}

	audit := &models.AuditLog{
		UserID:       userID,
		Action:       action,
		Description:  &description,
		Success:      utils.ToPtr(success),
		IPAddress:    &ipAddress,
		UserAgent:    &userAgent,
		ErrorMessage: errorMsg,
	}

	if requestID, ok := ctx.Value(utils.RequestIDKey).(string); ok && requestID != "" {
		audit.RequestID = &requestID
	} else if metadata != nil && metadata.RequestID != "" {
		audit.RequestID = utils.ToPtr(metadata.RequestID)
	}

	if err := a.repo.Save(ctx, audit); err != nil {
		log.Warn().Err(err).Str("action", action).Msg("failed to write audit log")
		return
	}
	if audit.IsFailed() && audit.IsSecurityEvent() {
		log.Warn().Str("action", action).Str("ip", ipAddress).Msg("security event failed")
	}
}

func actorID(actor *Identity) *uint {
	if actor == nil {
		return nil
	}
	return utils.ToPtr(actor.ID)
}

func errString(err error) *string {
	if err == nil {
		return nil
	}
	return utils.ToPtr(err.Error())
}

// normalizePagination clamps page and limit and returns the row offset
func normalizePagination(page, limit int) (int, int, int) {
	if page < 1 {
		page = utils.DefaultPage
	}
	if limit < 1 {
		limit = utils.DefaultLimit
	}
	if limit > utils.MaxLimit {
		limit = utils.MaxLimit
	}
	return page, limit, (page - 1) * limit
}

// ToUserDTO converts a user model to its API representation
func ToUserDTO(user models.User) dto.UserDTO {
	return dto.UserDTO{
		ID:          user.ID,
		Username:    user.Username,
		Email:       user.Email,
		FullName:    user.FullName,
		Role:        user.Role.String(),
		IsActive:    utils.IsTrue(user.IsActive),
		LastLoginAt: user.LastLoginAt,
		CreatedAt:   user.CreatedAt,
		UpdatedAt:   user.UpdatedAt,
	}
}

// ToClientDTO converts a client model to its API representation
func ToClientDTO(client models.Client) dto.ClientDTO {
	return dto.ClientDTO{
		ID:          client.ID,
		CompanyName: client.CompanyName,
		ContactName: client.ContactName,
		Email:       client.Email,
		Phone:       client.Phone,
		CNPJ:        client.CNPJ,
		Address:     client.Address,
		IsActive:    utils.IsTrue(client.IsActive),
		CreatedAt:   client.CreatedAt,
		UpdatedAt:   client.UpdatedAt,
	}
}

// ToContractDTO converts a contract model to its API representation
func ToContractDTO(c models.Contract) dto.ContractDTO {
	out := dto.ContractDTO{
		ID:                 c.ID,
		ContractNumber:     c.ContractNumber,
		ClientID:           c.ClientID,
		ProgramID:          c.ProgramID,
		AdTypeID:           c.AdTypeID,
		Title:              c.Title,
		Description:        c.Description,
		StartDate:          formatDate(time.Time(c.StartDate)),
		EndDate:            formatDate(time.Time(c.EndDate)),
		TotalSpots:         c.TotalSpots,
		PricePerSpot:       c.PricePerSpot,
		DiscountPercentage: c.DiscountPercentage,
		TotalValue:         c.TotalValue,
		DiscountAmount:     c.DiscountAmount,
		FinalValue:         c.FinalValue,
		Status:             c.Status.String(),
		PaymentStatus:      c.PaymentStatus.String(),
		CreatedBy:          c.CreatedBy,
		ApprovedBy:         c.ApprovedBy,
		ApprovedAt:         c.ApprovedAt,
		CompletedAt:        c.CompletedAt,
		CancelledAt:        c.CancelledAt,
		CancellationReason: c.CancellationReason,
		CreatedAt:          c.CreatedAt,
		UpdatedAt:          c.UpdatedAt,
	}
	if c.Client != nil {
		out.ClientName = c.Client.CompanyName
	}
	if c.Program != nil {
		out.ProgramName = c.Program.ProgramName
	}
	if c.AdType != nil {
		out.AdTypeName = c.AdType.TypeName
		out.DurationSeconds = c.AdType.DurationSeconds
	}
	return out
}

func toContractDTOs(contracts []*models.Contract) []dto.ContractDTO {
	out := make([]dto.ContractDTO, 0, len(contracts))
	for _, c := range contracts {
		out = append(out, ToContractDTO(*c))
	}
	return out
}

// ToStatsDTO converts aggregate rows to their API representation
func ToStatsDTO(stats *models.ContractStats, monthly []*models.MonthlyContractStats) dto.ContractStatsResponse {
	resp := dto.ContractStatsResponse{Monthly: make([]dto.MonthlyStatsDTO, 0, len(monthly))}
	if stats != nil {
		resp.Stats = dto.ContractStatsDTO{
			TotalContracts:     stats.TotalContracts,
			DraftContracts:     stats.DraftContracts,
			ActiveContracts:    stats.ActiveContracts,
			CompletedContracts: stats.CompletedContracts,
			CancelledContracts: stats.CancelledContracts,
			TotalValue:         stats.TotalValue,
			FinalValue:         stats.FinalValue,
			PaidValue:          stats.PaidValue,
			PendingValue:       stats.PendingValue,
		}
	}
	for _, m := range monthly {
		resp.Monthly = append(resp.Monthly, dto.MonthlyStatsDTO{
			Month:          m.Month,
			ContractsCount: m.ContractsCount,
			TotalValue:     m.TotalValue,
		})
	}
	return resp
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(utils.DateLayout)
}
