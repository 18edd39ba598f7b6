package businessflow

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/amirphl/radio-contracts/models"
	"github.com/amirphl/radio-contracts/repository"
	"github.com/amirphl/radio-contracts/utils"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// memStore is an in-memory stand-in for the database shared by the fake repositories
type memStore struct {
	mu        sync.Mutex
	nextID    uint
	users     map[uint]*models.User
	clients   map[uint]*models.Client
	programs  map[uint]*models.RadioProgram
	adTypes   map[uint]*models.AdType
	contracts map[uint]*models.Contract
	spots     []*models.SpotSchedule
	payments  []*models.Payment
	files     []*models.ContractFile
	counters  map[string]int64
	audits    []*models.AuditLog
}

func newMemStore() *memStore {
	return &memStore{
		users:     map[uint]*models.User{},
		clients:   map[uint]*models.Client{},
		programs:  map[uint]*models.RadioProgram{},
		adTypes:   map[uint]*models.AdType{},
		contracts: map[uint]*models.Contract{},
		counters:  map[string]int64{},
	}
}

func (s *memStore) id() uint {
	s.nextID++
	return s.nextID
}

func (s *memStore) auditActions() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.audits))
	for _, a := range s.audits {
		out = append(out, a.Action)
	}
	return out
}

type passthroughUoW struct{}

func (passthroughUoW) Do(ctx context.Context, fn func(context.Context) error) error {
	return fn(ctx)
}

func paginate[T any](items []*T, limit, offset int) []*T {
	if offset >= len(items) {
		return []*T{}
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}

// users

type fakeUserRepo struct{ s *memStore }

func (r *fakeUserRepo) match(u *models.User, f models.UserFilter) bool {
	if f.ID != nil && u.ID != *f.ID {
		return false
	}
	if f.Username != nil && u.Username != *f.Username {
		return false
	}
	if f.Email != nil && !strings.EqualFold(u.Email, *f.Email) {
		return false
	}
	if f.Role != nil && u.Role != *f.Role {
		return false
	}
	if f.IsActive != nil && utils.IsTrue(u.IsActive) != *f.IsActive {
		return false
	}
	if f.ExcludeID != nil && u.ID == *f.ExcludeID {
		return false
	}
	if f.Search != nil && *f.Search != "" &&
		!containsFold(u.Username, *f.Search) && !containsFold(u.FullName, *f.Search) && !containsFold(u.Email, *f.Search) {
		return false
	}
	return true
}

func (r *fakeUserRepo) list(f models.UserFilter) []*models.User {
	out := []*models.User{}
	for _, u := range r.s.users {
		if r.match(u, f) {
			cp := *u
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r *fakeUserRepo) ByID(_ context.Context, id uint) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (r *fakeUserRepo) ByFilter(_ context.Context, f models.UserFilter, _ string, limit, offset int) ([]*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return paginate(r.list(f), limit, offset), nil
}

func (r *fakeUserRepo) Save(_ context.Context, u *models.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.users {
		if existing.Username == u.Username {
			return &repository.DuplicateKeyError{Constraint: "uk_users_username", Err: repository.ErrDuplicateKey}
		}
		if existing.Email == u.Email {
			return &repository.DuplicateKeyError{Constraint: "uk_users_email", Err: repository.ErrDuplicateKey}
		}
	}
	u.ID = r.s.id()
	u.CreatedAt = utils.UTCNow()
	u.UpdatedAt = u.CreatedAt
	if u.IsActive == nil {
		u.IsActive = utils.ToPtr(true)
	}
	cp := *u
	r.s.users[u.ID] = &cp
	return nil
}

func (r *fakeUserRepo) SaveBatch(ctx context.Context, users []*models.User) error {
	for _, u := range users {
		if err := r.Save(ctx, u); err != nil {
			return err
		}
	}
	return nil
}

func (r *fakeUserRepo) Count(_ context.Context, f models.UserFilter) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return int64(len(r.list(f))), nil
}

func (r *fakeUserRepo) Exists(ctx context.Context, f models.UserFilter) (bool, error) {
	n, err := r.Count(ctx, f)
	return n > 0, err
}

func (r *fakeUserRepo) ByUsername(_ context.Context, username string) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) ByEmail(_ context.Context, email string) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if strings.EqualFold(u.Email, email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) Update(_ context.Context, u *models.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[u.ID]; !ok {
		return repository.ErrUserRowNotFound
	}
	u.UpdatedAt = utils.UTCNow()
	cp := *u
	r.s.users[u.ID] = &cp
	return nil
}

func (r *fakeUserRepo) UpdatePassword(_ context.Context, userID uint, hash string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[userID]
	if !ok {
		return repository.ErrUserRowNotFound
	}
	u.PasswordHash = hash
	return nil
}

func (r *fakeUserRepo) UpdateLastLogin(_ context.Context, userID uint, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[userID]
	if !ok {
		return repository.ErrUserRowNotFound
	}
	u.LastLoginAt = &at
	return nil
}

// clients

type fakeClientRepo struct{ s *memStore }

func (r *fakeClientRepo) match(c *models.Client, f models.ClientFilter) bool {
	if f.ID != nil && c.ID != *f.ID {
		return false
	}
	if f.Email != nil && !strings.EqualFold(c.Email, *f.Email) {
		return false
	}
	if f.CNPJ != nil && (c.CNPJ == nil || *c.CNPJ != *f.CNPJ) {
		return false
	}
	if f.IsActive != nil && utils.IsTrue(c.IsActive) != *f.IsActive {
		return false
	}
	if f.ExcludeID != nil && c.ID == *f.ExcludeID {
		return false
	}
	if f.Search != nil && *f.Search != "" &&
		!containsFold(c.CompanyName, *f.Search) && !containsFold(c.ContactName, *f.Search) && !containsFold(c.Email, *f.Search) {
		return false
	}
	return true
}

func (r *fakeClientRepo) list(f models.ClientFilter) []*models.Client {
	out := []*models.Client{}
	for _, c := range r.s.clients {
		if r.match(c, f) {
			cp := *c
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CompanyName < out[j].CompanyName })
	return out
}

func (r *fakeClientRepo) ByID(_ context.Context, id uint) (*models.Client, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.clients[id]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (r *fakeClientRepo) ByFilter(_ context.Context, f models.ClientFilter, _ string, limit, offset int) ([]*models.Client, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return paginate(r.list(f), limit, offset), nil
}

func (r *fakeClientRepo) Save(_ context.Context, c *models.Client) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c.ID = r.s.id()
	c.CreatedAt = utils.UTCNow()
	c.UpdatedAt = c.CreatedAt
	if c.IsActive == nil {
		c.IsActive = utils.ToPtr(true)
	}
	cp := *c
	r.s.clients[c.ID] = &cp
	return nil
}

func (r *fakeClientRepo) SaveBatch(ctx context.Context, clients []*models.Client) error {
	for _, c := range clients {
		if err := r.Save(ctx, c); err != nil {
			return err
		}
	}
	return nil
}

func (r *fakeClientRepo) Count(_ context.Context, f models.ClientFilter) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return int64(len(r.list(f))), nil
}

func (r *fakeClientRepo) Exists(ctx context.Context, f models.ClientFilter) (bool, error) {
	n, err := r.Count(ctx, f)
	return n > 0, err
}

func (r *fakeClientRepo) Update(_ context.Context, c *models.Client) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.clients[c.ID]; !ok {
		return repository.ErrClientRowNotFound
	}
	cp := *c
	r.s.clients[c.ID] = &cp
	return nil
}

func (r *fakeClientRepo) ByIDForUpdate(ctx context.Context, id uint) (*models.Client, error) {
	return r.ByID(ctx, id)
}

func (r *fakeClientRepo) ByIDForShare(ctx context.Context, id uint) (*models.Client, error) {
	return r.ByID(ctx, id)
}

func (r *fakeClientRepo) Deactivate(_ context.Context, id uint) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.clients[id]
	if !ok {
		return repository.ErrClientRowNotFound
	}
	c.IsActive = utils.ToPtr(false)
	return nil
}

// reference data

type fakeProgramRepo struct{ s *memStore }

func (r *fakeProgramRepo) ByID(_ context.Context, id uint) (*models.RadioProgram, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.programs[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (r *fakeProgramRepo) ByFilter(_ context.Context, f models.RadioProgramFilter, _ string, limit, offset int) ([]*models.RadioProgram, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []*models.RadioProgram{}
	for _, p := range r.s.programs {
		if f.IsActive != nil && utils.IsTrue(p.IsActive) != *f.IsActive {
			continue
		}
		if f.LocutorID != nil && (p.LocutorID == nil || *p.LocutorID != *f.LocutorID) {
			continue
		}
		cp := *p
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return paginate(out, limit, offset), nil
}

func (r *fakeProgramRepo) Save(_ context.Context, p *models.RadioProgram) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p.ID = r.s.id()
	if p.IsActive == nil {
		p.IsActive = utils.ToPtr(true)
	}
	cp := *p
	r.s.programs[p.ID] = &cp
	return nil
}

func (r *fakeProgramRepo) SaveBatch(ctx context.Context, programs []*models.RadioProgram) error {
	for _, p := range programs {
		if err := r.Save(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

func (r *fakeProgramRepo) Count(ctx context.Context, f models.RadioProgramFilter) (int64, error) {
	items, err := r.ByFilter(ctx, f, "", 0, 0)
	return int64(len(items)), err
}

func (r *fakeProgramRepo) Exists(ctx context.Context, f models.RadioProgramFilter) (bool, error) {
	n, err := r.Count(ctx, f)
	return n > 0, err
}

type fakeAdTypeRepo struct{ s *memStore }

func (r *fakeAdTypeRepo) ByID(_ context.Context, id uint) (*models.AdType, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.adTypes[id]
	if !ok {
		return nil, nil
	}
	cp := *a
	return &cp, nil
}

func (r *fakeAdTypeRepo) ByFilter(_ context.Context, f models.AdTypeFilter, _ string, limit, offset int) ([]*models.AdType, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []*models.AdType{}
	for _, a := range r.s.adTypes {
		if f.IsActive != nil && utils.IsTrue(a.IsActive) != *f.IsActive {
			continue
		}
		cp := *a
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DurationSeconds < out[j].DurationSeconds })
	return paginate(out, limit, offset), nil
}

func (r *fakeAdTypeRepo) Save(_ context.Context, a *models.AdType) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a.ID = r.s.id()
	if a.IsActive == nil {
		a.IsActive = utils.ToPtr(true)
	}
	cp := *a
	r.s.adTypes[a.ID] = &cp
	return nil
}

func (r *fakeAdTypeRepo) SaveBatch(ctx context.Context, adTypes []*models.AdType) error {
	for _, a := range adTypes {
		if err := r.Save(ctx, a); err != nil {
			return err
		}
	}
	return nil
}

func (r *fakeAdTypeRepo) Count(ctx context.Context, f models.AdTypeFilter) (int64, error) {
	items, err := r.ByFilter(ctx, f, "", 0, 0)
	return int64(len(items)), err
}

func (r *fakeAdTypeRepo) Exists(ctx context.Context, f models.AdTypeFilter) (bool, error) {
	n, err := r.Count(ctx, f)
	return n > 0, err
}

// contracts

type fakeContractRepo struct{ s *memStore }

func (r *fakeContractRepo) match(c *models.Contract, f models.ContractFilter) bool {
	if f.ID != nil && c.ID != *f.ID {
		return false
	}
	if f.ClientID != nil && c.ClientID != *f.ClientID {
		return false
	}
	if f.ProgramID != nil && c.ProgramID != *f.ProgramID {
		return false
	}
	if f.Status != nil && c.Status != *f.Status {
		return false
	}
	if len(f.Statuses) > 0 {
		found := false
		for _, st := range f.Statuses {
			if c.Status == st {
				found = true
			}
		}
		if !found {
			return false
		}
	}
	if f.PaymentStatus != nil && c.PaymentStatus != *f.PaymentStatus {
		return false
	}
	if f.LocutorID != nil {
		p, ok := r.s.programs[c.ProgramID]
		if !ok || p.LocutorID == nil || *p.LocutorID != *f.LocutorID {
			return false
		}
	}
	if f.NumberPrefix != nil && !strings.HasPrefix(c.ContractNumber, *f.NumberPrefix) {
		return false
	}
	if f.EndDateBefore != nil && time.Time(c.EndDate).After(*f.EndDateBefore) {
		return false
	}
	if f.Search != nil && *f.Search != "" {
		client := r.s.clients[c.ClientID]
		if !containsFold(c.ContractNumber, *f.Search) && !containsFold(c.Title, *f.Search) &&
			(client == nil || !containsFold(client.CompanyName, *f.Search)) {
			return false
		}
	}
	return true
}

func (r *fakeContractRepo) withDetails(c *models.Contract) *models.Contract {
	cp := *c
	if client, ok := r.s.clients[c.ClientID]; ok {
		cl := *client
		cp.Client = &cl
	}
	if program, ok := r.s.programs[c.ProgramID]; ok {
		p := *program
		cp.Program = &p
	}
	if adType, ok := r.s.adTypes[c.AdTypeID]; ok {
		a := *adType
		cp.AdType = &a
	}
	return &cp
}

func (r *fakeContractRepo) list(f models.ContractFilter) []*models.Contract {
	out := []*models.Contract{}
	for _, c := range r.s.contracts {
		if r.match(c, f) {
			out = append(out, r.withDetails(c))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out
}

func (r *fakeContractRepo) ByID(_ context.Context, id uint) (*models.Contract, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.contracts[id]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (r *fakeContractRepo) ByIDForUpdate(ctx context.Context, id uint) (*models.Contract, error) {
	return r.ByID(ctx, id)
}

func (r *fakeContractRepo) ByIDWithDetails(_ context.Context, id uint) (*models.Contract, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.contracts[id]
	if !ok {
		return nil, nil
	}
	return r.withDetails(c), nil
}

func (r *fakeContractRepo) ByFilter(_ context.Context, f models.ContractFilter, _ string, limit, offset int) ([]*models.Contract, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return paginate(r.list(f), limit, offset), nil
}

func (r *fakeContractRepo) Save(_ context.Context, c *models.Contract) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.contracts {
		if existing.ContractNumber == c.ContractNumber {
			return &repository.DuplicateKeyError{Constraint: "uk_contracts_contract_number", Err: repository.ErrDuplicateKey}
		}
	}
	c.ID = r.s.id()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = utils.UTCNow()
	}
	c.UpdatedAt = c.CreatedAt
	cp := *c
	cp.Client, cp.Program, cp.AdType = nil, nil, nil
	r.s.contracts[c.ID] = &cp
	return nil
}

func (r *fakeContractRepo) SaveBatch(ctx context.Context, contracts []*models.Contract) error {
	for _, c := range contracts {
		if err := r.Save(ctx, c); err != nil {
			return err
		}
	}
	return nil
}

func (r *fakeContractRepo) Count(_ context.Context, f models.ContractFilter) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return int64(len(r.list(f))), nil
}

func (r *fakeContractRepo) Exists(ctx context.Context, f models.ContractFilter) (bool, error) {
	n, err := r.Count(ctx, f)
	return n > 0, err
}

func (r *fakeContractRepo) LatestNumberWithPrefix(_ context.Context, prefix string) (string, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	latest := ""
	for _, c := range r.s.contracts {
		if !strings.HasPrefix(c.ContractNumber, prefix) {
			continue
		}
		if len(c.ContractNumber) > len(latest) || (len(c.ContractNumber) == len(latest) && c.ContractNumber > latest) {
			latest = c.ContractNumber
		}
	}
	return latest, nil
}

func (r *fakeContractRepo) Update(_ context.Context, c *models.Contract) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.contracts[c.ID]; !ok {
		return repository.ErrContractRowNotFound
	}
	c.UpdatedAt = utils.UTCNow()
	cp := *c
	cp.Client, cp.Program, cp.AdType = nil, nil, nil
	r.s.contracts[c.ID] = &cp
	return nil
}

func (r *fakeContractRepo) DeleteCascade(_ context.Context, id uint) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.contracts[id]; !ok {
		return repository.ErrContractRowNotFound
	}
	delete(r.s.contracts, id)

	spots := r.s.spots[:0]
	for _, s := range r.s.spots {
		if s.ContractID != id {
			spots = append(spots, s)
		}
	}
	r.s.spots = spots

	payments := r.s.payments[:0]
	for _, p := range r.s.payments {
		if p.ContractID != id {
			payments = append(payments, p)
		}
	}
	r.s.payments = payments

	files := r.s.files[:0]
	for _, f := range r.s.files {
		if f.ContractID != id {
			files = append(files, f)
		}
	}
	r.s.files = files
	return nil
}

func (r *fakeContractRepo) Stats(_ context.Context, f models.ContractFilter) (*models.ContractStats, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stats := &models.ContractStats{}
	for _, c := range r.list(f) {
		stats.TotalContracts++
		switch c.Status {
		case models.ContractStatusDraft:
			stats.DraftContracts++
		case models.ContractStatusActive:
			stats.ActiveContracts++
		case models.ContractStatusCompleted:
			stats.CompletedContracts++
		case models.ContractStatusCancelled:
			stats.CancelledContracts++
		}
		stats.TotalValue = stats.TotalValue.Add(c.TotalValue)
		stats.FinalValue = stats.FinalValue.Add(c.FinalValue)
		if c.PaymentStatus == models.PaymentStatusPaid {
			stats.PaidValue = stats.PaidValue.Add(c.FinalValue)
		}
		if c.PaymentStatus == models.PaymentStatusPending {
			stats.PendingValue = stats.PendingValue.Add(c.FinalValue)
		}
	}
	return stats, nil
}

func (r *fakeContractRepo) MonthlyStats(_ context.Context, f models.ContractFilter, since time.Time) ([]*models.MonthlyContractStats, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	byMonth := map[string]*models.MonthlyContractStats{}
	for _, c := range r.list(f) {
		if c.CreatedAt.Before(since) {
			continue
		}
		key := c.CreatedAt.Format("2006-01")
		m, ok := byMonth[key]
		if !ok {
			m = &models.MonthlyContractStats{Month: key, TotalValue: decimal.Zero}
			byMonth[key] = m
		}
		m.ContractsCount++
		m.TotalValue = m.TotalValue.Add(c.FinalValue)
	}
	out := make([]*models.MonthlyContractStats, 0, len(byMonth))
	for _, m := range byMonth {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month > out[j].Month })
	return out, nil
}

func (r *fakeContractRepo) ListSpots(_ context.Context, contractID uint) ([]*models.SpotSchedule, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []*models.SpotSchedule{}
	for _, s := range r.s.spots {
		if s.ContractID == contractID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *fakeContractRepo) ListPayments(_ context.Context, contractID uint) ([]*models.Payment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []*models.Payment{}
	for _, p := range r.s.payments {
		if p.ContractID == contractID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *fakeContractRepo) ListFiles(_ context.Context, contractID uint) ([]*models.ContractFile, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []*models.ContractFile{}
	for _, f := range r.s.files {
		if f.ContractID == contractID {
			out = append(out, f)
		}
	}
	return out, nil
}

// counters

type fakeCounterRepo struct{ s *memStore }

func (r *fakeCounterRepo) Ensure(_ context.Context, name string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.counters[name]; !ok {
		r.s.counters[name] = 0
	}
	return nil
}

func (r *fakeCounterRepo) ByNameForUpdate(_ context.Context, name string) (*models.SequenceCounter, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	v, ok := r.s.counters[name]
	if !ok {
		return nil, nil
	}
	return &models.SequenceCounter{Name: name, LastValue: v}, nil
}

func (r *fakeCounterRepo) SetValue(_ context.Context, name string, value int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.counters[name] = value
	return nil
}

// audit

type fakeAuditRepo struct{ s *memStore }

func (r *fakeAuditRepo) ByID(_ context.Context, id uint) (*models.AuditLog, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, a := range r.s.audits {
		if a.ID == id {
			return a, nil
		}
	}
	return nil, nil
}

func (r *fakeAuditRepo) ByFilter(_ context.Context, _ models.AuditLogFilter, _ string, limit, offset int) ([]*models.AuditLog, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return paginate(append([]*models.AuditLog{}, r.s.audits...), limit, offset), nil
}

func (r *fakeAuditRepo) Save(_ context.Context, a *models.AuditLog) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a.ID = r.s.id()
	r.s.audits = append(r.s.audits, a)
	return nil
}

func (r *fakeAuditRepo) SaveBatch(ctx context.Context, logs []*models.AuditLog) error {
	for _, a := range logs {
		if err := r.Save(ctx, a); err != nil {
			return err
		}
	}
	return nil
}

func (r *fakeAuditRepo) Count(_ context.Context, _ models.AuditLogFilter) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return int64(len(r.s.audits)), nil
}

func (r *fakeAuditRepo) Exists(ctx context.Context, f models.AuditLogFilter) (bool, error) {
	n, err := r.Count(ctx, f)
	return n > 0, err
}

// plainHasher keeps flow tests fast; bcrypt itself is covered in the services package
type plainHasher struct{}

func (plainHasher) Hash(password string) (string, error) {
	return "plain:" + password, nil
}

func (plainHasher) Compare(hash, password string) error {
	if hash != "plain:"+password {
		return errPlainMismatch
	}
	return nil
}

var errPlainMismatch = errors.New("password mismatch")

// fixtures

type testEnv struct {
	store     *memStore
	users     *fakeUserRepo
	clients   *fakeClientRepo
	programs  *fakeProgramRepo
	adTypes   *fakeAdTypeRepo
	contracts *fakeContractRepo
	counters  *fakeCounterRepo
	audits    *fakeAuditRepo
}

func newTestEnv() *testEnv {
	s := newMemStore()
	return &testEnv{
		store:     s,
		users:     &fakeUserRepo{s: s},
		clients:   &fakeClientRepo{s: s},
		programs:  &fakeProgramRepo{s: s},
		adTypes:   &fakeAdTypeRepo{s: s},
		contracts: &fakeContractRepo{s: s},
		counters:  &fakeCounterRepo{s: s},
		audits:    &fakeAuditRepo{s: s},
	}
}

func (e *testEnv) contractFlow() ContractFlow {
	numberer := NewContractNumberingService(e.counters, e.contracts)
	return NewContractFlow(e.contracts, e.clients, e.programs, e.adTypes, e.audits, numberer, passthroughUoW{})
}

func (e *testEnv) addUser(username string, role models.UserRole, active bool) *Identity {
	u := &models.User{
		Username:     username,
		Email:        username + "@radio.test",
		PasswordHash: "plain:secret123",
		FullName:     strings.ToUpper(username[:1]) + username[1:],
		Role:         role,
		IsActive:     utils.ToPtr(active),
	}
	if err := e.users.Save(context.Background(), u); err != nil {
		panic(err)
	}
	return NewIdentity(u)
}

func (e *testEnv) addClient(name string) *models.Client {
	c := &models.Client{
		CompanyName: name,
		ContactName: "Contact " + name,
		Email:       strings.ToLower(strings.ReplaceAll(name, " ", "")) + "@client.test",
		IsActive:    utils.ToPtr(true),
	}
	if err := e.clients.Save(context.Background(), c); err != nil {
		panic(err)
	}
	return c
}

func (e *testEnv) addProgram(name string, locutorID *uint) *models.RadioProgram {
	p := &models.RadioProgram{
		ProgramName: name,
		StartTime:   datatypes.NewTime(6, 0, 0, 0),
		EndTime:     datatypes.NewTime(9, 0, 0, 0),
		DaysOfWeek:  datatypes.JSONSlice[string]{"monday", "friday"},
		LocutorID:   locutorID,
		IsActive:    utils.ToPtr(true),
	}
	if err := e.programs.Save(context.Background(), p); err != nil {
		panic(err)
	}
	return p
}

func (e *testEnv) addAdType(name string, seconds int) *models.AdType {
	a := &models.AdType{TypeName: name, DurationSeconds: seconds, IsActive: utils.ToPtr(true)}
	if err := e.adTypes.Save(context.Background(), a); err != nil {
		panic(err)
	}
	return a
}

// addContract stores a contract directly, bypassing the flow
func (e *testEnv) addContract(number string, clientID, programID, adTypeID uint, status models.ContractStatus, end time.Time) *models.Contract {
	c := &models.Contract{
		ContractNumber:     number,
		ClientID:           clientID,
		ProgramID:          programID,
		AdTypeID:           adTypeID,
		Title:              "Seeded contract " + number,
		StartDate:          datatypes.Date(end.AddDate(0, -1, 0)),
		EndDate:            datatypes.Date(end),
		TotalSpots:         10,
		PricePerSpot:       decimal.NewFromInt(100),
		DiscountPercentage: decimal.Zero,
		TotalValue:         decimal.NewFromInt(1000),
		DiscountAmount:     decimal.Zero,
		FinalValue:         decimal.NewFromInt(1000),
		Status:             status,
		PaymentStatus:      models.PaymentStatusPending,
		CreatedBy:          1,
	}
	if err := e.contracts.Save(context.Background(), c); err != nil {
		panic(err)
	}
	return c
}
