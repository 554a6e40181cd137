package service

import (
	"context"
	"testing"
	"time"

	"cadetbot/internal/model"
	"cadetbot/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestMaintenanceService(t *testing.T) (MaintenanceService, *memMaintenanceRepo, *fixedClock) {
	t.Helper()
	users := newMemUserRepo()
	maintenance := &memMaintenanceRepo{
		users:       users,
		clearCounts: repository.WipeCounts{Users: 4, SFTSubmissions: 7},
	}
	approvals := newMemApprovalRepo()
	audit := &memAuditRepo{}
	clock := newFixedClock(mustTime("2024-01-01 12:00:00"))
	tx := &memTxManager{stores: []snapshotter{users, maintenance, approvals, audit}}
	gate := NewApprovalGate(approvals, audit, tx, clock, 10*time.Minute)
	return NewMaintenanceService(gate, maintenance), maintenance, clock
}

func TestRequestClearFirstAdminRecordsOnly(t *testing.T) {
	svc, maintenance, _ := newTestMaintenanceService(t)

	approvers, counts, err := svc.RequestClear(context.Background(), 100)
	require.NoError(t, err)
	assert.Equal(t, int64(1), approvers)
	assert.Nil(t, counts)
	assert.Zero(t, maintenance.clearCalls)
}

func TestRequestClearSecondAdminWipes(t *testing.T) {
	svc, maintenance, _ := newTestMaintenanceService(t)
	ctx := context.Background()

	_, _, err := svc.RequestClear(ctx, 100)
	require.NoError(t, err)

	approvers, counts, err := svc.RequestClear(ctx, 200)
	require.NoError(t, err)
	assert.Equal(t, int64(2), approvers)
	require.NotNil(t, counts)
	assert.Equal(t, int64(4), counts.Users)
	assert.Equal(t, int64(7), counts.SFTSubmissions)
	assert.Equal(t, 1, maintenance.clearCalls)

	// The gate resets after the wipe; the next press starts a fresh request.
	approvers, counts, err = svc.RequestClear(ctx, 100)
	require.NoError(t, err)
	assert.Equal(t, int64(1), approvers)
	assert.Nil(t, counts)
}

func TestRequestClearSameAdminTwiceNeverWipes(t *testing.T) {
	svc, maintenance, _ := newTestMaintenanceService(t)
	ctx := context.Background()

	_, _, err := svc.RequestClear(ctx, 100)
	require.NoError(t, err)
	approvers, counts, err := svc.RequestClear(ctx, 100)
	require.NoError(t, err)
	assert.Equal(t, int64(1), approvers)
	assert.Nil(t, counts)
	assert.Zero(t, maintenance.clearCalls)
}

func TestRequestClearExpiredFirstApprovalDoesNotCount(t *testing.T) {
	svc, maintenance, clock := newTestMaintenanceService(t)
	ctx := context.Background()

	_, _, err := svc.RequestClear(ctx, 100)
	require.NoError(t, err)

	clock.Advance(11 * time.Minute)

	approvers, counts, err := svc.RequestClear(ctx, 200)
	require.NoError(t, err)
	assert.Equal(t, int64(1), approvers)
	assert.Nil(t, counts)
	assert.Zero(t, maintenance.clearCalls)
}

func TestCancelClearDropsPendingRequest(t *testing.T) {
	svc, maintenance, _ := newTestMaintenanceService(t)
	ctx := context.Background()

	_, _, err := svc.RequestClear(ctx, 100)
	require.NoError(t, err)
	require.NoError(t, svc.CancelClear(ctx, 200))

	status, err := svc.ClearStatus(ctx)
	require.NoError(t, err)
	assert.Zero(t, status.Approvers)

	// After a cancel both admins must confirm again from scratch.
	approvers, counts, err := svc.RequestClear(ctx, 200)
	require.NoError(t, err)
	assert.Equal(t, int64(1), approvers)
	assert.Nil(t, counts)
	assert.Zero(t, maintenance.clearCalls)
}

func TestClearStatusReportsPendingWindow(t *testing.T) {
	svc, _, clock := newTestMaintenanceService(t)
	ctx := context.Background()

	first := clock.Now()
	_, _, err := svc.RequestClear(ctx, 100)
	require.NoError(t, err)

	status, err := svc.ClearStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), status.Approvers)
	assert.Equal(t, first.Add(10*time.Minute), status.ExpiresAt)
}

func TestWipeAuditTrail(t *testing.T) {
	users := newMemUserRepo()
	maintenance := &memMaintenanceRepo{users: users}
	approvals := newMemApprovalRepo()
	audit := &memAuditRepo{}
	clock := newFixedClock(mustTime("2024-01-01 12:00:00"))
	tx := &memTxManager{stores: []snapshotter{users, maintenance, approvals, audit}}
	gate := NewApprovalGate(approvals, audit, tx, clock, 10*time.Minute)
	svc := NewMaintenanceService(gate, maintenance)
	ctx := context.Background()

	_, _, err := svc.RequestClear(ctx, 100)
	require.NoError(t, err)
	_, _, err = svc.RequestClear(ctx, 200)
	require.NoError(t, err)

	requests, _, err := audit.List(ctx, model.ActionRequestApproval, 1, 10)
	require.NoError(t, err)
	assert.Len(t, requests, 2)

	executions, _, err := audit.List(ctx, model.ActionExecuteGatedAction, 1, 10)
	require.NoError(t, err)
	assert.Len(t, executions, 1)
}
