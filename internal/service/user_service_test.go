package service

import (
	"context"
	"testing"

	"cadetbot/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// memUserRepo backs user tests with a plain slice.
type memUserRepo struct {
	nextID uint
	users  []model.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{nextID: 1}
}

func (r *memUserRepo) snapshot() func() {
	saved := append([]model.User(nil), r.users...)
	id := r.nextID
	return func() {
		r.users = saved
		r.nextID = id
	}
}

func (r *memUserRepo) Create(ctx context.Context, user *model.User) error {
	user.ID = r.nextID
	r.nextID++
	r.users = append(r.users, *user)
	return nil
}

func (r *memUserRepo) GetByID(ctx context.Context, id uint) (*model.User, error) {
	for _, user := range r.users {
		if user.ID == id {
			u := user
			return &u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *memUserRepo) GetByTelegramID(ctx context.Context, telegramID int64) (*model.User, error) {
	for _, user := range r.users {
		if user.TelegramID != nil && *user.TelegramID == telegramID {
			u := user
			return &u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *memUserRepo) GetByTelegramUsername(ctx context.Context, username string) (*model.User, error) {
	for _, user := range r.users {
		if user.TelegramUsername != nil && *user.TelegramUsername == username {
			u := user
			return &u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *memUserRepo) GetByRankAndName(ctx context.Context, rank, fullName string) (*model.User, error) {
	for _, user := range r.users {
		if user.Rank == rank && user.FullName == fullName {
			u := user
			return &u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *memUserRepo) List(ctx context.Context, page, limit int) ([]model.User, int64, error) {
	return append([]model.User(nil), r.users...), int64(len(r.users)), nil
}

func (r *memUserRepo) ListByRole(ctx context.Context, role string, activeOnly bool) ([]model.User, error) {
	var matched []model.User
	for _, user := range r.users {
		if user.Role != role {
			continue
		}
		if activeOnly && !user.IsActive {
			continue
		}
		matched = append(matched, user)
	}
	return matched, nil
}

func (r *memUserRepo) ListAdminTelegramIDs(ctx context.Context) ([]int64, error) {
	var ids []int64
	for _, user := range r.users {
		if user.IsAdmin && user.IsActive && user.TelegramID != nil {
			ids = append(ids, *user.TelegramID)
		}
	}
	return ids, nil
}

func (r *memUserRepo) Update(ctx context.Context, user *model.User) error {
	for i := range r.users {
		if r.users[i].ID == user.ID {
			r.users[i] = *user
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func int64Ptr(v int64) *int64 { return &v }

func TestCreateUserValidatesRole(t *testing.T) {
	svc := NewUserService(newMemUserRepo())

	_, err := svc.CreateUser(context.Background(), CreateUserRequest{
		FullName:   "Tan Wei Ming",
		Rank:       "OCT",
		Role:       "commander",
		TelegramID: int64Ptr(42),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid role")
}

func TestCreateUserRequiresTelegramIdentity(t *testing.T) {
	svc := NewUserService(newMemUserRepo())

	_, err := svc.CreateUser(context.Background(), CreateUserRequest{
		FullName: "Tan Wei Ming",
		Rank:     "OCT",
		Role:     "cadet",
	})
	require.Error(t, err)
}

func TestCreateUserNormalizesUsername(t *testing.T) {
	svc := NewUserService(newMemUserRepo())

	resp, err := svc.CreateUser(context.Background(), CreateUserRequest{
		FullName:         "Tan Wei Ming",
		Rank:             "OCT",
		Role:             "Cadet",
		TelegramUsername: "@weiming",
	})
	require.NoError(t, err)
	assert.Equal(t, "weiming", resp.TelegramUsername)
	assert.Equal(t, "cadet", resp.Role)
	assert.True(t, resp.IsActive)
}

func TestCreateUserRejectsDuplicateTelegramID(t *testing.T) {
	svc := NewUserService(newMemUserRepo())
	ctx := context.Background()

	_, err := svc.CreateUser(ctx, CreateUserRequest{
		FullName: "Tan Wei Ming", Rank: "OCT", Role: "cadet", TelegramID: int64Ptr(42),
	})
	require.NoError(t, err)

	_, err = svc.CreateUser(ctx, CreateUserRequest{
		FullName: "Lee Jun Hao", Rank: "OCT", Role: "cadet", TelegramID: int64Ptr(42),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
}

func TestIsAdministrator(t *testing.T) {
	repo := newMemUserRepo()
	svc := NewUserService(repo)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &model.User{
		FullName: "Tan Wei Ming", Rank: "CPT", Role: model.RoleInstructor,
		TelegramID: int64Ptr(42), IsAdmin: true, IsActive: true,
	}))

	isAdmin, err := svc.IsAdministrator(ctx, 42)
	require.NoError(t, err)
	assert.True(t, isAdmin)

	// Unknown users are simply not admins, not an error.
	isAdmin, err = svc.IsAdministrator(ctx, 999)
	require.NoError(t, err)
	assert.False(t, isAdmin)
}

func TestCadetNamesUsesDisplayName(t *testing.T) {
	repo := newMemUserRepo()
	svc := NewUserService(repo)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &model.User{
		FullName: "Tan Wei Ming", Rank: "OCT", Role: model.RoleCadet,
		TelegramID: int64Ptr(1), IsActive: true,
	}))
	require.NoError(t, repo.Create(ctx, &model.User{
		FullName: "Lee Jun Hao", Rank: "OCT", Role: model.RoleCadet,
		TelegramID: int64Ptr(2), IsActive: false,
	}))

	names, err := svc.CadetNames(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"OCT Tan Wei Ming"}, names)
}
