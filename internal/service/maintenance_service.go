package service

import (
	"context"

	"cadetbot/internal/model"
	"cadetbot/internal/repository"
)

// MaintenanceService is the front door for the gated full wipe. It binds the
// approval gate to the actual destructive effect so callers never reach the
// wipe without passing the gate.
type MaintenanceService interface {
	// RequestClear records one admin's confirmation and, once the second
	// distinct admin confirms, performs the wipe. The returned counts are nil
	// until the wipe actually ran.
	RequestClear(ctx context.Context, adminID int64) (approvers int64, counts *repository.WipeCounts, err error)
	CancelClear(ctx context.Context, adminID int64) error
	ClearStatus(ctx context.Context) (GateStatus, error)
}

type maintenanceService struct {
	gate        ApprovalGate
	maintenance repository.MaintenanceRepository
}

func NewMaintenanceService(gate ApprovalGate, maintenance repository.MaintenanceRepository) MaintenanceService {
	return &maintenanceService{gate: gate, maintenance: maintenance}
}

func (s *maintenanceService) RequestClear(ctx context.Context, adminID int64) (int64, *repository.WipeCounts, error) {
	count, err := s.gate.RequestApproval(ctx, model.ActionClearDatabase, adminID)
	if err != nil {
		return 0, nil, err
	}
	if count < RequiredApprovers {
		return count, nil, nil
	}

	counts, err := s.gate.ExecuteAndReset(ctx, model.ActionClearDatabase, adminID, s.maintenance.ClearAllData)
	if err != nil {
		return count, nil, err
	}
	return count, &counts, nil
}

func (s *maintenanceService) CancelClear(ctx context.Context, adminID int64) error {
	return s.gate.CancelRequest(ctx, model.ActionClearDatabase, adminID)
}

func (s *maintenanceService) ClearStatus(ctx context.Context) (GateStatus, error) {
	return s.gate.Status(ctx, model.ActionClearDatabase)
}
