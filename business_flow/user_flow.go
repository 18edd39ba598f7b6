package businessflow

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/amirphl/radio-contracts/app/dto"
	"github.com/amirphl/radio-contracts/app/services"
	"github.com/amirphl/radio-contracts/models"
	"github.com/amirphl/radio-contracts/repository"
	"github.com/amirphl/radio-contracts/utils"
)

// UserFlow handles user administration
type UserFlow interface {
	ListUsers(ctx context.Context, actor *Identity, req *dto.ListUsersRequest) (*dto.ListUsersResponse, error)
	GetUser(ctx context.Context, actor *Identity, userID uint) (*dto.UserDTO, error)
	ListLocutors(ctx context.Context, actor *Identity) ([]dto.UserDTO, error)
	CreateUser(ctx context.Context, actor *Identity, req *dto.CreateUserRequest, metadata *ClientMetadata) (*dto.UserDTO, error)
	UpdateUser(ctx context.Context, actor *Identity, userID uint, req *dto.UpdateUserRequest, metadata *ClientMetadata) (*dto.UserDTO, error)
	DeleteUser(ctx context.Context, actor *Identity, userID uint, metadata *ClientMetadata) error
	ResetPassword(ctx context.Context, actor *Identity, userID uint, req *dto.ResetUserPasswordRequest, metadata *ClientMetadata) error
}

// UserFlowImpl implements UserFlow
type UserFlowImpl struct {
	userRepo repository.UserRepository
	hasher   services.PasswordHasher
	audit    auditRecorder
}

// NewUserFlow creates a new user flow instance
func NewUserFlow(userRepo repository.UserRepository, auditRepo repository.AuditLogRepository, hasher services.PasswordHasher) UserFlow {
	return &UserFlowImpl{
		userRepo: userRepo,
		hasher:   hasher,
		audit:    auditRecorder{repo: auditRepo},
	}
}

func (f *UserFlowImpl) ListUsers(ctx context.Context, actor *Identity, req *dto.ListUsersRequest) (*dto.ListUsersResponse, error) {
	if err := AuthorizeCapability(actor, CapUsersList); err != nil {
		return nil, err
	}

	filter := models.UserFilter{Search: utils.TrimPtr(req.Search)}
	if req.Role != nil && *req.Role != "" {
		role := models.UserRole(*req.Role)
		if !role.Valid() {
			return nil, ErrInvalidRole
		}
		filter.Role = &role
	}

	page, limit, offset := normalizePagination(req.Page, req.Limit)

	total, err := f.userRepo.Count(ctx, filter)
	if err != nil {
		return nil, NewBusinessError("LIST_USERS_FAILED", "Failed to count users", err)
	}

	users, err := f.userRepo.ByFilter(ctx, filter, "created_at DESC", limit, offset)
	if err != nil {
		return nil, NewBusinessError("LIST_USERS_FAILED", "Failed to list users", err)
	}

	items := make([]dto.UserDTO, 0, len(users))
	for _, u := range users {
		items = append(items, ToUserDTO(*u))
	}

	return &dto.ListUsersResponse{
		Users:      items,
		Pagination: dto.NewPaginationInfo(total, page, limit),
	}, nil
}

func (f *UserFlowImpl) GetUser(ctx context.Context, actor *Identity, userID uint) (*dto.UserDTO, error) {
	if err := AuthorizeCapability(actor, CapUsersGet); err != nil {
		return nil, err
	}

	user, err := getUser(ctx, f.userRepo, userID)
	if err != nil {
		return nil, err
	}

	out := ToUserDTO(*user)
	return &out, nil
}

// ListLocutors returns active announcers ordered by name
func (f *UserFlowImpl) ListLocutors(ctx context.Context, actor *Identity) ([]dto.UserDTO, error) {
	if err := AuthorizeCapability(actor, CapUsersLocutors); err != nil {
		return nil, err
	}

	filter := models.UserFilter{
		Role:     utils.ToPtr(models.RoleAnnouncer),
		IsActive: utils.ToPtr(true),
	}
	users, err := f.userRepo.ByFilter(ctx, filter, "full_name ASC", 0, 0)
	if err != nil {
		return nil, NewBusinessError("LIST_LOCUTORS_FAILED", "Failed to list announcers", err)
	}

	items := make([]dto.UserDTO, 0, len(users))
	for _, u := range users {
		items = append(items, ToUserDTO(*u))
	}
	return items, nil
}

func (f *UserFlowImpl) CreateUser(ctx context.Context, actor *Identity, req *dto.CreateUserRequest, metadata *ClientMetadata) (*dto.UserDTO, error) {
	if err := AuthorizeCapability(actor, CapUsersCreate); err != nil {
		return nil, err
	}

	user, err := createUser(ctx, f.userRepo, f.hasher, req)
	if err != nil {
		f.audit.record(ctx, actorID(actor), models.AuditActionUserCreated, "User creation failed", false, errString(err), metadata)
		return nil, err
	}

	f.audit.record(ctx, actorID(actor), models.AuditActionUserCreated, fmt.Sprintf("User created: %d", user.ID), true, nil, metadata)

	out := ToUserDTO(*user)
	return &out, nil
}

func (f *UserFlowImpl) UpdateUser(ctx context.Context, actor *Identity, userID uint, req *dto.UpdateUserRequest, metadata *ClientMetadata) (*dto.UserDTO, error) {
	if err := AuthorizeCapability(actor, CapUsersUpdate); err != nil {
		return nil, err
	}
	if req.Username == nil && req.Email == nil && req.FullName == nil && req.Role == nil && req.IsActive == nil {
		return nil, ErrNoFieldsToUpdate
	}

	user, err := getUser(ctx, f.userRepo, userID)
	if err != nil {
		return nil, err
	}

	if req.Username != nil {
		user.Username = strings.TrimSpace(*req.Username)
	}
	if req.Email != nil {
		user.Email = normalizeEmail(*req.Email)
	}
	if req.FullName != nil {
		user.FullName = strings.TrimSpace(*req.FullName)
	}
	if req.Role != nil {
		role := models.UserRole(*req.Role)
		if !role.Valid() {
			return nil, ErrInvalidRole
		}
		user.Role = role
	}
	if req.IsActive != nil {
		user.IsActive = utils.ToPtr(*req.IsActive)
	}

	if err := ensureUserUnique(ctx, f.userRepo, user.Username, user.Email, &user.ID); err != nil {
		return nil, err
	}

	if err := f.userRepo.Update(ctx, user); err != nil {
		err = mapUserWriteError(err)
		f.audit.record(ctx, actorID(actor), models.AuditActionUserUpdated, fmt.Sprintf("User update failed: %d", userID), false, errString(err), metadata)
		return nil, err
	}

	f.audit.record(ctx, actorID(actor), models.AuditActionUserUpdated, fmt.Sprintf("User updated: %d", userID), true, nil, metadata)

	out := ToUserDTO(*user)
	return &out, nil
}

// DeleteUser deactivates a user; rows are never removed
func (f *UserFlowImpl) DeleteUser(ctx context.Context, actor *Identity, userID uint, metadata *ClientMetadata) error {
	if err := AuthorizeCapability(actor, CapUsersDelete); err != nil {
		return err
	}
	if actor.ID == userID {
		return ErrCannotDeleteSelf
	}

	user, err := getUser(ctx, f.userRepo, userID)
	if err != nil {
		return err
	}

	user.IsActive = utils.ToPtr(false)
	if err := f.userRepo.Update(ctx, user); err != nil {
		return NewBusinessError("DELETE_USER_FAILED", "Failed to deactivate user", err)
	}

	f.audit.record(ctx, actorID(actor), models.AuditActionAccountDeactivated, fmt.Sprintf("User deactivated: %d", userID), true, nil, metadata)
	return nil
}

func (f *UserFlowImpl) ResetPassword(ctx context.Context, actor *Identity, userID uint, req *dto.ResetUserPasswordRequest, metadata *ClientMetadata) error {
	if err := AuthorizeCapability(actor, CapUsersResetPassword); err != nil {
		return err
	}

	if _, err := getUser(ctx, f.userRepo, userID); err != nil {
		return err
	}

	hash, err := f.hasher.Hash(req.NewPassword)
	if err != nil {
		return NewBusinessError("RESET_PASSWORD_FAILED", "Failed to hash password", err)
	}
	if err := f.userRepo.UpdatePassword(ctx, userID, hash); err != nil {
		return NewBusinessError("RESET_PASSWORD_FAILED", "Failed to update password", err)
	}

	f.audit.record(ctx, actorID(actor), models.AuditActionPasswordReset, fmt.Sprintf("Password reset for user: %d", userID), true, nil, metadata)
	return nil
}

func getUser(ctx context.Context, repo repository.UserRepository, userID uint) (*models.User, error) {
	user, err := repo.ByID(ctx, userID)
	if err != nil {
		return nil, NewBusinessError("GET_USER_FAILED", "Failed to load user", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// createUser validates uniqueness, hashes the password and stores an active user
func createUser(ctx context.Context, repo repository.UserRepository, hasher services.PasswordHasher, req *dto.CreateUserRequest) (*models.User, error) {
	role := models.UserRole(req.Role)
	if !role.Valid() {
		return nil, ErrInvalidRole
	}

	username := strings.TrimSpace(req.Username)
	email := normalizeEmail(req.Email)

	if err := ensureUserUnique(ctx, repo, username, email, nil); err != nil {
		return nil, err
	}

	hash, err := hasher.Hash(req.Password)
	if err != nil {
		return nil, NewBusinessError("CREATE_USER_FAILED", "Failed to hash password", err)
	}

	user := &models.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		FullName:     strings.TrimSpace(req.FullName),
		Role:         role,
		IsActive:     utils.ToPtr(true),
	}
	if err := repo.Save(ctx, user); err != nil {
		return nil, mapUserWriteError(err)
	}
	return user, nil
}

// ensureUserUnique checks username and email against every user row, active or not
func ensureUserUnique(ctx context.Context, repo repository.UserRepository, username, email string, excludeID *uint) error {
	exists, err := repo.Exists(ctx, models.UserFilter{Username: &username, ExcludeID: excludeID})
	if err != nil {
		return NewBusinessError("USER_UNIQUENESS_CHECK_FAILED", "Failed to check username", err)
	}
	if exists {
		return ErrUsernameAlreadyExists
	}

	exists, err = repo.Exists(ctx, models.UserFilter{Email: &email, ExcludeID: excludeID})
	if err != nil {
		return NewBusinessError("USER_UNIQUENESS_CHECK_FAILED", "Failed to check email", err)
	}
	if exists {
		return ErrEmailAlreadyExists
	}
	return nil
}

// mapUserWriteError turns unique index violations raced past ensureUserUnique into conflicts
func mapUserWriteError(err error) error {
	if errors.Is(err, repository.ErrUserRowNotFound) {
		return ErrUserNotFound
	}
	if !repository.IsDuplicateKey(err) {
		return NewBusinessError("SAVE_USER_FAILED", "Failed to save user", err)
	}
	if strings.Contains(repository.DuplicateConstraint(err), "email") {
		return ErrEmailAlreadyExists
	}
	return ErrUsernameAlreadyExists
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
