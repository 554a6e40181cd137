package service

import (
	"context"
	"errors"
	"strings"

	"cadetbot/internal/model"
	"cadetbot/internal/repository"

	"gorm.io/gorm"
)

// DTOs for request validation
type CreateUserRequest struct {
	TelegramID       *int64 `json:"telegram_id"`
	TelegramUsername string `json:"telegram_username"`
	FullName         string `json:"full_name" binding:"required"`
	Rank             string `json:"rank" binding:"required"`
	Role             string `json:"role" binding:"required"`
	IsAdmin          bool   `json:"is_admin"`
	IsActive         *bool  `json:"is_active"`
}

type UserResponse struct {
	ID               uint   `json:"id"`
	TelegramID       *int64 `json:"telegram_id"`
	TelegramUsername string `json:"telegram_username"`
	FullName         string `json:"full_name"`
	Rank             string `json:"rank"`
	Role             string `json:"role"`
	IsAdmin          bool   `json:"is_admin"`
	IsActive         bool   `json:"is_active"`
}

// UserService is the roster: lookups by Telegram identity, names for menus,
// and admin discovery for notification fan-out.
type UserService interface {
	CreateUser(ctx context.Context, req CreateUserRequest) (*UserResponse, error)
	GetByTelegramID(ctx context.Context, telegramID int64) (*model.User, error)
	GetByRankAndName(ctx context.Context, identity string) (*model.User, error)
	ListUsers(ctx context.Context, page, limit int) ([]UserResponse, int64, error)
	CadetNames(ctx context.Context) ([]string, error)
	InstructorNames(ctx context.Context) ([]string, error)
	AdminTelegramIDs(ctx context.Context) ([]int64, error)
	IsAdministrator(ctx context.Context, telegramID int64) (bool, error)
}

type userService struct {
	repo repository.UserRepository
}

func NewUserService(repo repository.UserRepository) UserService {
	return &userService{repo: repo}
}

func validateRole(role string) bool {
	lower := strings.ToLower(role)
	return lower == model.RoleCadet || lower == model.RoleInstructor
}

func normalizeUsername(value string) string {
	name := strings.TrimSpace(value)
	name = strings.TrimPrefix(name, "@")
	return name
}

func mapToResponse(user *model.User) *UserResponse {
	resp := &UserResponse{
		ID:         user.ID,
		TelegramID: user.TelegramID,
		FullName:   user.FullName,
		Rank:       user.Rank,
		Role:       user.Role,
		IsAdmin:    user.IsAdmin,
		IsActive:   user.IsActive,
	}
	if user.TelegramUsername != nil {
		resp.TelegramUsername = *user.TelegramUsername
	}
	return resp
}

func (s *userService) CreateUser(ctx context.Context, req CreateUserRequest) (*UserResponse, error) {
	if !validateRole(req.Role) {
		return nil, errors.New("invalid role: must be cadet or instructor")
	}

	username := normalizeUsername(req.TelegramUsername)
	if req.TelegramID == nil && username == "" {
		return nil, errors.New("telegram_id or telegram_username is required")
	}

	if req.TelegramID != nil {
		if _, err := s.repo.GetByTelegramID(ctx, *req.TelegramID); err == nil {
			return nil, errors.New("telegram_id already exists")
		}
	}
	if username != "" {
		if _, err := s.repo.GetByTelegramUsername(ctx, username); err == nil {
			return nil, errors.New("telegram_username already exists")
		}
	}

	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}

	user := &model.User{
		TelegramID: req.TelegramID,
		FullName:   req.FullName,
		Rank:       req.Rank,
		Role:       strings.ToLower(req.Role),
		IsAdmin:    req.IsAdmin,
		IsActive:   active,
	}
	if username != "" {
		user.TelegramUsername = &username
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}

	return mapToResponse(user), nil
}

func (s *userService) GetByTelegramID(ctx context.Context, telegramID int64) (*model.User, error) {
	return s.repo.GetByTelegramID(ctx, telegramID)
}

// GetByRankAndName resolves a "RANK Full Name" identity as rendered in menus.
func (s *userService) GetByRankAndName(ctx context.Context, identity string) (*model.User, error) {
	parts := strings.SplitN(strings.TrimSpace(identity), " ", 2)
	if len(parts) != 2 {
		return nil, errors.New("invalid name format")
	}
	return s.repo.GetByRankAndName(ctx, parts[0], parts[1])
}

func (s *userService) ListUsers(ctx context.Context, page, limit int) ([]UserResponse, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}

	users, total, err := s.repo.List(ctx, page, limit)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]UserResponse, 0, len(users))
	for _, u := range users {
		responses = append(responses, *mapToResponse(&u))
	}
	return responses, total, nil
}

func (s *userService) CadetNames(ctx context.Context) ([]string, error) {
	return s.displayNames(ctx, model.RoleCadet, true)
}

func (s *userService) InstructorNames(ctx context.Context) ([]string, error) {
	return s.displayNames(ctx, model.RoleInstructor, false)
}

func (s *userService) displayNames(ctx context.Context, role string, activeOnly bool) ([]string, error) {
	users, err := s.repo.ListByRole(ctx, role, activeOnly)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(users))
	for i := range users {
		names = append(names, users[i].DisplayName())
	}
	return names, nil
}

func (s *userService) AdminTelegramIDs(ctx context.Context) ([]int64, error) {
	return s.repo.ListAdminTelegramIDs(ctx)
}

func (s *userService) IsAdministrator(ctx context.Context, telegramID int64) (bool, error) {
	user, err := s.repo.GetByTelegramID(ctx, telegramID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	return user.IsAdmin && user.IsActive, nil
}
