package service

import (
	"context"
	"strings"
	"testing"

	"cadetbot/internal/model"
	"cadetbot/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memMaintenanceRepo struct {
	users       *memUserRepo
	clearCalls  int
	clearCounts repository.WipeCounts
}

func (r *memMaintenanceRepo) snapshot() func() {
	calls := r.clearCalls
	return func() { r.clearCalls = calls }
}

func (r *memMaintenanceRepo) ClearAllData(ctx context.Context) (repository.WipeCounts, error) {
	r.clearCalls++
	return r.clearCounts, nil
}

func (r *memMaintenanceRepo) ClearUserData(ctx context.Context) (repository.WipeCounts, error) {
	r.clearCalls++
	counts := repository.WipeCounts{Users: int64(len(r.users.users))}
	r.users.users = nil
	return counts, nil
}

func newTestImportService(t *testing.T) (ImportService, *memUserRepo, *memMaintenanceRepo, *memAuditRepo) {
	t.Helper()
	users := newMemUserRepo()
	maintenance := &memMaintenanceRepo{users: users}
	audit := &memAuditRepo{}
	clock := newFixedClock(mustTime("2024-01-01 12:00:00"))
	tx := &memTxManager{stores: []snapshotter{users, maintenance, audit}}
	return NewImportService(users, maintenance, audit, tx, clock), users, maintenance, audit
}

const rosterCSV = `full_name,rank,role,telegram_id,telegram_username,is_admin
Tan Wei Ming,OCT,cadet,1001,weiming,false
Lee Jun Hao,OCT,cadet,1002,,false
Ng Li Ting,CPT,instructor,1003,liting,true
`

func TestImportUsersLoadsRoster(t *testing.T) {
	svc, users, _, audit := newTestImportService(t)

	result, err := svc.ImportUsers(context.Background(), 100, strings.NewReader(rosterCSV), false)
	require.NoError(t, err)
	assert.Equal(t, 3, result.Imported)
	assert.Zero(t, result.Skipped)
	assert.Nil(t, result.Cleared)
	require.Len(t, users.users, 3)

	admin := users.users[2]
	assert.Equal(t, "Ng Li Ting", admin.FullName)
	assert.Equal(t, model.RoleInstructor, admin.Role)
	assert.True(t, admin.IsAdmin)
	require.NotNil(t, admin.TelegramID)
	assert.Equal(t, int64(1003), *admin.TelegramID)

	entries, _, err := audit.List(context.Background(), model.ActionImportUsers, 1, 10)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestImportUsersSkipsBadRows(t *testing.T) {
	svc, users, _, _ := newTestImportService(t)

	csvData := `full_name,rank,role,telegram_id,telegram_username,is_admin
Tan Wei Ming,OCT,cadet,1001,,false
,OCT,cadet,1002,,false
Lee Jun Hao,OCT,general,1003,,false
Ng Li Ting,CPT,instructor,notanumber,,true
`
	result, err := svc.ImportUsers(context.Background(), 100, strings.NewReader(csvData), false)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Imported)
	assert.Equal(t, 3, result.Skipped)
	assert.Len(t, result.Errors, 3)
	assert.Len(t, users.users, 1)
}

func TestImportUsersRejectsMissingColumns(t *testing.T) {
	svc, _, _, _ := newTestImportService(t)

	_, err := svc.ImportUsers(context.Background(), 100, strings.NewReader("full_name,rank\nTan,OCT\n"), false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "role")
}

func TestImportUsersReplaceClearsFirst(t *testing.T) {
	svc, users, maintenance, _ := newTestImportService(t)
	ctx := context.Background()

	require.NoError(t, users.Create(ctx, &model.User{
		FullName: "Old Cadet", Rank: "OCT", Role: model.RoleCadet,
		TelegramID: int64Ptr(1), IsActive: true,
	}))

	result, err := svc.ImportUsers(ctx, 100, strings.NewReader(rosterCSV), true)
	require.NoError(t, err)
	assert.Equal(t, 1, maintenance.clearCalls)
	require.NotNil(t, result.Cleared)
	assert.Equal(t, int64(1), result.Cleared.Users)
	assert.Equal(t, 3, result.Imported)
	assert.Len(t, users.users, 3)
}
