package businessflow

import (
	"slices"
	"time"

	"github.com/amirphl/radio-contracts/models"
	"github.com/amirphl/radio-contracts/utils"
)

var contractTransitions = map[models.ContractStatus][]models.ContractStatus{
	models.ContractStatusDraft:  {models.ContractStatusActive, models.ContractStatusCancelled},
	models.ContractStatusActive: {models.ContractStatusCompleted, models.ContractStatusCancelled},
}

// CanTransition reports whether a contract may move from one status to another
func CanTransition(from, to models.ContractStatus) bool {
	return slices.Contains(contractTransitions[from], to)
}

// IsEditable reports whether a contract in the given status accepts field updates
func IsEditable(status models.ContractStatus) bool {
	return status == models.ContractStatusDraft || status == models.ContractStatusActive
}

// IsDeletable reports whether a contract in the given status may be deleted
func IsDeletable(status models.ContractStatus) bool {
	return status != models.ContractStatusActive
}

// transition applies a legal status change and stamps the matching audit columns
func transition(c *models.Contract, to models.ContractStatus, actor *Identity, now time.Time, reason *string) error {
	if !CanTransition(c.Status, to) {
		return ErrInvalidContractState
	}

	switch to {
	case models.ContractStatusActive:
		if actor != nil {
			c.ApprovedBy = utils.ToPtr(actor.ID)
		}
		c.ApprovedAt = &now
	case models.ContractStatusCompleted:
		if time.Time(c.EndDate).After(utils.TruncateToDate(now)) {
			return ErrContractNotEnded
		}
		c.CompletedAt = &now
	case models.ContractStatusCancelled:
		c.CancelledAt = &now
		c.CancellationReason = reason
	}

	c.Status = to
	return nil
}
