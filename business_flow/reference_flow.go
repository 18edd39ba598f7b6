package businessflow

import (
	"context"

	"github.com/amirphl/radio-contracts/app/dto"
	"github.com/amirphl/radio-contracts/models"
	"github.com/amirphl/radio-contracts/repository"
	"github.com/amirphl/radio-contracts/utils"
)

// ReferenceFlow serves the read-only lookup data used by contract forms
type ReferenceFlow interface {
	ListPrograms(ctx context.Context, actor *Identity) ([]dto.RadioProgramDTO, error)
	ListAdTypes(ctx context.Context, actor *Identity) ([]dto.AdTypeDTO, error)
}

type ReferenceFlowImpl struct {
	programRepo repository.RadioProgramRepository
	adTypeRepo  repository.AdTypeRepository
}

func NewReferenceFlow(programRepo repository.RadioProgramRepository, adTypeRepo repository.AdTypeRepository) ReferenceFlow {
	return &ReferenceFlowImpl{programRepo: programRepo, adTypeRepo: adTypeRepo}
}

func (f *ReferenceFlowImpl) ListPrograms(ctx context.Context, actor *Identity) ([]dto.RadioProgramDTO, error) {
	if err := AuthorizeCapability(actor, CapProgramsList); err != nil {
		return nil, err
	}

	programs, err := f.programRepo.ByFilter(ctx, models.RadioProgramFilter{IsActive: utils.ToPtr(true)}, "start_time ASC", 0, 0)
	if err != nil {
		return nil, NewBusinessError("LIST_PROGRAMS_FAILED", "Failed to list radio programs", err)
	}

	out := make([]dto.RadioProgramDTO, 0, len(programs))
	for _, p := range programs {
		days := []string(p.DaysOfWeek)
		if days == nil {
			days = []string{}
		}
		out = append(out, dto.RadioProgramDTO{
			ID:          p.ID,
			ProgramName: p.ProgramName,
			StartTime:   formatClock(p.StartTime),
			EndTime:     formatClock(p.EndTime),
			DaysOfWeek:  days,
			LocutorID:   p.LocutorID,
			IsActive:    utils.IsTrue(p.IsActive),
		})
	}
	return out, nil
}

func (f *ReferenceFlowImpl) ListAdTypes(ctx context.Context, actor *Identity) ([]dto.AdTypeDTO, error) {
	if err := AuthorizeCapability(actor, CapAdTypesList); err != nil {
		return nil, err
	}

	adTypes, err := f.adTypeRepo.ByFilter(ctx, models.AdTypeFilter{IsActive: utils.ToPtr(true)}, "duration_seconds ASC", 0, 0)
	if err != nil {
		return nil, NewBusinessError("LIST_AD_TYPES_FAILED", "Failed to list ad types", err)
	}

	out := make([]dto.AdTypeDTO, 0, len(adTypes))
	for _, a := range adTypes {
		out = append(out, dto.AdTypeDTO{
			ID:              a.ID,
			TypeName:        a.TypeName,
			DurationSeconds: a.DurationSeconds,
			IsActive:        utils.IsTrue(a.IsActive),
		})
	}
	return out, nil
}
