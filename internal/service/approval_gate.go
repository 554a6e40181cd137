package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"cadetbot/internal/model"
	"cadetbot/internal/repository"
)

// RequiredApprovers is the number of distinct administrators that must
// confirm a gated action before it executes.
const RequiredApprovers = 2

// WipeEffect is the destructive action run once the threshold is met. It
// receives the transaction context so the wipe commits atomically with the
// approval reset.
type WipeEffect func(ctx context.Context) (repository.WipeCounts, error)

// GateStatus describes the pending request for a gated action.
type GateStatus struct {
	Approvers int64
	ExpiresAt time.Time // zero when no request is pending
}

// ApprovalGate gates destructive actions behind confirmation from two
// distinct administrators within a bounded window. Approvals are persisted as
// a sliding window of rows, so the gate survives restarts and stays correct
// across service instances; stale rows are pruned lazily on the next access
// rather than by a background sweep.
type ApprovalGate interface {
	// RequestApproval records the admin's confirmation and returns the
	// distinct-approver count. Re-confirming never inflates the count.
	RequestApproval(ctx context.Context, action string, adminID int64) (int64, error)
	// IsThresholdMet reports whether enough distinct admins have confirmed
	// within the window.
	IsThresholdMet(ctx context.Context, action string) (bool, error)
	// CancelRequest drops the whole pending request for the action.
	CancelRequest(ctx context.Context, action string, adminID int64) error
	// ExecuteAndReset runs the destructive effect once the threshold is met,
	// then resets the request. The reset happens even when the effect fails,
	// so a broken wipe can never leave the gate stuck half-approved.
	ExecuteAndReset(ctx context.Context, action string, adminID int64, effect WipeEffect) (repository.WipeCounts, error)
	// Status returns the current approver count and the request expiry.
	Status(ctx context.Context, action string) (GateStatus, error)
}

type approvalGate struct {
	approvals repository.ApprovalRepository
	audit     repository.AuditRepository
	txManager repository.TransactionManager
	clock     Clock
	window    time.Duration
}

// NewApprovalGate builds the gate. The confirmation window applies to every
// action the gate serves.
func NewApprovalGate(
	approvals repository.ApprovalRepository,
	audit repository.AuditRepository,
	txManager repository.TransactionManager,
	clock Clock,
	window time.Duration,
) ApprovalGate {
	return &approvalGate{
		approvals: approvals,
		audit:     audit,
		txManager: txManager,
		clock:     clock,
		window:    window,
	}
}

func (g *approvalGate) RequestApproval(ctx context.Context, action string, adminID int64) (int64, error) {
	var count int64
	err := g.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := g.approvals.LockAction(txCtx, action); err != nil {
			return fmt.Errorf("failed to lock action: %w", err)
		}

		now := g.clock.Now()
		if err := g.approvals.PruneBefore(txCtx, action, now.Add(-g.window)); err != nil {
			return fmt.Errorf("failed to prune expired approvals: %w", err)
		}
		if err := g.approvals.Record(txCtx, action, adminID, now); err != nil {
			return fmt.Errorf("failed to record approval: %w", err)
		}

		var countErr error
		count, countErr = g.approvals.CountDistinct(txCtx, action)
		if countErr != nil {
			return fmt.Errorf("failed to count approvers: %w", countErr)
		}

		details, _ := json.Marshal(map[string]interface{}{
			"action":    action,
			"approvers": count,
		})
		return g.audit.Create(txCtx, &model.AuditLog{
			AdminID:   &adminID,
			Action:    model.ActionRequestApproval,
			EntityID:  action,
			Details:   string(details),
			CreatedAt: now,
		})
	})
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (g *approvalGate) IsThresholdMet(ctx context.Context, action string) (bool, error) {
	var count int64
	err := g.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := g.approvals.LockAction(txCtx, action); err != nil {
			return fmt.Errorf("failed to lock action: %w", err)
		}
		cutoff := g.clock.Now().Add(-g.window)
		if err := g.approvals.PruneBefore(txCtx, action, cutoff); err != nil {
			return fmt.Errorf("failed to prune expired approvals: %w", err)
		}
		var countErr error
		count, countErr = g.approvals.CountDistinct(txCtx, action)
		return countErr
	})
	if err != nil {
		return false, err
	}
	return count >= RequiredApprovers, nil
}

func (g *approvalGate) CancelRequest(ctx context.Context, action string, adminID int64) error {
	return g.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := g.approvals.LockAction(txCtx, action); err != nil {
			return fmt.Errorf("failed to lock action: %w", err)
		}
		if err := g.approvals.Clear(txCtx, action); err != nil {
			return fmt.Errorf("failed to clear approvals: %w", err)
		}
		details, _ := json.Marshal(map[string]interface{}{"action": action})
		return g.audit.Create(txCtx, &model.AuditLog{
			AdminID:   &adminID,
			Action:    model.ActionCancelApproval,
			EntityID:  action,
			Details:   string(details),
			CreatedAt: g.clock.Now(),
		})
	})
}

func (g *approvalGate) ExecuteAndReset(ctx context.Context, action string, adminID int64, effect WipeEffect) (repository.WipeCounts, error) {
	var counts repository.WipeCounts
	execErr := g.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := g.approvals.LockAction(txCtx, action); err != nil {
			return fmt.Errorf("failed to lock action: %w", err)
		}

		now := g.clock.Now()
		if err := g.approvals.PruneBefore(txCtx, action, now.Add(-g.window)); err != nil {
			return fmt.Errorf("failed to prune expired approvals: %w", err)
		}
		count, err := g.approvals.CountDistinct(txCtx, action)
		if err != nil {
			return fmt.Errorf("failed to count approvers: %w", err)
		}
		if count < RequiredApprovers {
			return ErrThresholdNotMet
		}

		counts, err = effect(txCtx)
		if err != nil {
			return fmt.Errorf("gated action failed: %w", err)
		}

		if err := g.approvals.Clear(txCtx, action); err != nil {
			return fmt.Errorf("failed to reset approvals: %w", err)
		}

		details, _ := json.Marshal(counts)
		return g.audit.Create(txCtx, &model.AuditLog{
			AdminID:   &adminID,
			Action:    model.ActionExecuteGatedAction,
			EntityID:  action,
			Details:   string(details),
			CreatedAt: now,
		})
	})

	if execErr != nil && !errors.Is(execErr, ErrThresholdNotMet) {
		// The failed transaction rolled back the in-tx reset together with the
		// effect. Reset again outside it so the gate never sticks.
		resetErr := g.txManager.RunInTx(ctx, func(txCtx context.Context) error {
			if err := g.approvals.LockAction(txCtx, action); err != nil {
				return err
			}
			return g.approvals.Clear(txCtx, action)
		})
		if resetErr != nil {
			log.Printf("approval gate: failed to reset %s after error: %v", action, resetErr)
		}
	}

	if execErr != nil {
		return repository.WipeCounts{}, execErr
	}
	return counts, nil
}

func (g *approvalGate) Status(ctx context.Context, action string) (GateStatus, error) {
	var status GateStatus
	err := g.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := g.approvals.LockAction(txCtx, action); err != nil {
			return fmt.Errorf("failed to lock action: %w", err)
		}
		cutoff := g.clock.Now().Add(-g.window)
		if err := g.approvals.PruneBefore(txCtx, action, cutoff); err != nil {
			return fmt.Errorf("failed to prune expired approvals: %w", err)
		}
		count, err := g.approvals.CountDistinct(txCtx, action)
		if err != nil {
			return err
		}
		status.Approvers = count
		if count > 0 {
			first, err := g.approvals.OldestCreatedAt(txCtx, action)
			if err != nil {
				return err
			}
			status.ExpiresAt = first.Add(g.window)
		}
		return nil
	})
	if err != nil {
		return GateStatus{}, err
	}
	return status, nil
}
