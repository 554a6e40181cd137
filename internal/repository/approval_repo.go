package repository

import (
	"context"
	"time"

	"cadetbot/internal/model"

	"gorm.io/gorm"
)

// ApprovalRepository persists per-admin confirmations of gated actions as a
// sliding window of rows. Callers are expected to run the record/count
// sequence inside one transaction after taking LockAction, so two admins
// confirming at once are serialized per action rather than racing.
type ApprovalRepository interface {
	// LockAction takes a transaction-scoped advisory lock for the action.
	// Must be called inside RunInTx; the lock releases on commit/rollback.
	LockAction(ctx context.Context, action string) error
	// PruneBefore removes confirmations recorded before the cutoff.
	PruneBefore(ctx context.Context, action string, cutoff time.Time) error
	// Record registers one admin's confirmation, replacing any earlier row by
	// the same admin so repeat presses never inflate the count.
	Record(ctx context.Context, action string, adminID int64, at time.Time) error
	// CountDistinct returns the number of distinct admins with a live row.
	CountDistinct(ctx context.Context, action string) (int64, error)
	// OldestCreatedAt returns the first confirmation time of the live window,
	// or a zero time when no rows exist.
	OldestCreatedAt(ctx context.Context, action string) (time.Time, error)
	// Clear drops every confirmation for the action.
	Clear(ctx context.Context, action string) error
}

type approvalRepository struct {
	db *gorm.DB
}

func NewApprovalRepository(db *gorm.DB) ApprovalRepository {
	return &approvalRepository{db: db}
}

func (r *approvalRepository) LockAction(ctx context.Context, action string) error {
	return GetDB(ctx, r.db).Exec("SELECT pg_advisory_xact_lock(hashtext(?))", action).Error
}

func (r *approvalRepository) PruneBefore(ctx context.Context, action string, cutoff time.Time) error {
	return GetDB(ctx, r.db).
		Where("action = ? AND created_at < ?", action, cutoff).
		Delete(&model.AdminApproval{}).Error
}

func (r *approvalRepository) Record(ctx context.Context, action string, adminID int64, at time.Time) error {
	db := GetDB(ctx, r.db)
	if err := db.Where("action = ? AND admin_id = ?", action, adminID).
		Delete(&model.AdminApproval{}).Error; err != nil {
		return err
	}
	return db.Create(&model.AdminApproval{
		Action:    action,
		AdminID:   adminID,
		CreatedAt: at,
	}).Error
}

func (r *approvalRepository) CountDistinct(ctx context.Context, action string) (int64, error) {
	var count int64
	err := GetDB(ctx, r.db).Model(&model.AdminApproval{}).
		Where("action = ?", action).
		Distinct("admin_id").
		Count(&count).Error
	return count, err
}

func (r *approvalRepository) OldestCreatedAt(ctx context.Context, action string) (time.Time, error) {
	var approval model.AdminApproval
	err := GetDB(ctx, r.db).
		Where("action = ?", action).
		Order("created_at ASC").
		First(&approval).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return time.Time{}, nil
		}
		return time.Time{}, err
	}
	return approval.CreatedAt, nil
}

func (r *approvalRepository) Clear(ctx context.Context, action string) error {
	return GetDB(ctx, r.db).
		Where("action = ?", action).
		Delete(&model.AdminApproval{}).Error
}
