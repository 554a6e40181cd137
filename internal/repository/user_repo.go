package repository

import (
	"context"

	"cadetbot/internal/model"

	"gorm.io/gorm"
)

// UserRepository defines the interface for data access of roster entities
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id uint) (*model.User, error)
	GetByTelegramID(ctx context.Context, telegramID int64) (*model.User, error)
	GetByTelegramUsername(ctx context.Context, username string) (*model.User, error)
	GetByRankAndName(ctx context.Context, rank, fullName string) (*model.User, error)
	List(ctx context.Context, page, limit int) ([]model.User, int64, error)
	ListByRole(ctx context.Context, role string, activeOnly bool) ([]model.User, error)
	ListAdminTelegramIDs(ctx context.Context) ([]int64, error)
	Update(ctx context.Context, user *model.User) error
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository returns a new instance of UserRepository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	return GetDB(ctx, r.db).Create(user).Error
}

func (r *userRepository) GetByID(ctx context.Context, id uint) (*model.User, error) {
	var user model.User
	if err := GetDB(ctx, r.db).First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) GetByTelegramID(ctx context.Context, telegramID int64) (*model.User, error) {
	var user model.User
	if err := GetDB(ctx, r.db).First(&user, "telegram_id = ?", telegramID).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) GetByTelegramUsername(ctx context.Context, username string) (*model.User, error) {
	var user model.User
	if err := GetDB(ctx, r.db).First(&user, "telegram_username = ?", username).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) GetByRankAndName(ctx context.Context, rank, fullName string) (*model.User, error) {
	var user model.User
	if err := GetDB(ctx, r.db).
		First(&user, "rank = ? AND full_name = ?", rank, fullName).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) List(ctx context.Context, page, limit int) ([]model.User, int64, error) {
	var users []model.User
	var total int64

	db := GetDB(ctx, r.db)
	if err := db.Model(&model.User{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := db.Order("rank, full_name").Offset(offset).Limit(limit).Find(&users).Error; err != nil {
		return nil, 0, err
	}

	return users, total, nil
}

func (r *userRepository) ListByRole(ctx context.Context, role string, activeOnly bool) ([]model.User, error) {
	var users []model.User
	query := GetDB(ctx, r.db).Where("LOWER(role) = LOWER(?)", role)
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}
	if err := query.Order("rank, full_name").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (r *userRepository) ListAdminTelegramIDs(ctx context.Context) ([]int64, error) {
	var ids []int64
	err := GetDB(ctx, r.db).Model(&model.User{}).
		Where("is_admin = ? AND is_active = ? AND telegram_id IS NOT NULL", true, true).
		Pluck("telegram_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *userRepository) Update(ctx context.Context, user *model.User) error {
	return GetDB(ctx, r.db).Save(user).Error
}
