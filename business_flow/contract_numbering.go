package businessflow

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/amirphl/radio-contracts/models"
	"github.com/amirphl/radio-contracts/repository"
)

const contractNumberPrefix = "CT"

// ContractNumberer issues contract numbers
type ContractNumberer interface {
	// NextNumber must run inside the transaction that inserts the contract
	NextNumber(ctx context.Context, year int) (string, error)
}

// ContractNumberingService serializes numbering per year through a locked counter row
type ContractNumberingService struct {
	counters  repository.SequenceCounterRepository
	contracts repository.ContractRepository
}

func NewContractNumberingService(counters repository.SequenceCounterRepository, contracts repository.ContractRepository) *ContractNumberingService {
	return &ContractNumberingService{counters: counters, contracts: contracts}
}

func (s *ContractNumberingService) NextNumber(ctx context.Context, year int) (string, error) {
	name := models.ContractNumberCounter(year)

	if err := s.counters.Ensure(ctx, name); err != nil {
		return "", err
	}
	counter, err := s.counters.ByNameForUpdate(ctx, name)
	if err != nil {
		return "", err
	}
	if counter == nil {
		return "", fmt.Errorf("counter %s missing after ensure", name)
	}

	prefix := yearPrefix(year)
	latest, err := s.contracts.LatestNumberWithPrefix(ctx, prefix)
	if err != nil {
		return "", err
	}

	next := counter.LastValue
	if seq, ok := parseContractSequence(latest, prefix); ok && seq > next {
		next = seq
	}
	next++

	if err := s.counters.SetValue(ctx, name, next); err != nil {
		return "", err
	}
	return FormatContractNumber(year, next), nil
}

// FormatContractNumber renders CT<year><seq>, padding seq to at least four digits
func FormatContractNumber(year int, seq int64) string {
	return fmt.Sprintf("%s%04d", yearPrefix(year), seq)
}

func yearPrefix(year int) string {
	return contractNumberPrefix + strconv.Itoa(year)
}

func parseContractSequence(number, prefix string) (int64, bool) {
	if number == "" || !strings.HasPrefix(number, prefix) {
		return 0, false
	}
	seq, err := strconv.ParseInt(strings.TrimPrefix(number, prefix), 10, 64)
	if err != nil || seq < 0 {
		return 0, false
	}
	return seq, true
}
