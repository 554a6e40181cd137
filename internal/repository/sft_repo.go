package repository

import (
	"context"

	"cadetbot/internal/model"

	"gorm.io/gorm"
)

// SFTRepository owns sessions and submissions. Mutations that touch the
// active-session pointer must run inside RunInTx so the deactivate+create pair
// commits atomically.
type SFTRepository interface {
	GetActiveSession(ctx context.Context) (*model.SFTSession, error)
	// ActivateSession deactivates every active session and creates a new
	// active one in its place.
	ActivateSession(ctx context.Context, session *model.SFTSession) error
	// DeactivateAll flips every active session to inactive.
	DeactivateAll(ctx context.Context) error

	CreateSubmission(ctx context.Context, sub *model.SFTSubmission) error
	// DeleteUserSubmissions removes the user's rows under one session and
	// reports how many were deleted.
	DeleteUserSubmissions(ctx context.Context, sessionID uint, userID uint) (int64, error)
	DeleteSessionSubmissions(ctx context.Context, sessionID uint) error
	// ListSubmissionsForDate returns every submission under sessions held on
	// the given date, oldest first, so group order is stable across calls.
	ListSubmissionsForDate(ctx context.Context, date string) ([]model.SFTSubmission, error)
}

type sftRepository struct {
	db *gorm.DB
}

func NewSFTRepository(db *gorm.DB) SFTRepository {
	return &sftRepository{db: db}
}

func (r *sftRepository) GetActiveSession(ctx context.Context) (*model.SFTSession, error) {
	var session model.SFTSession
	err := GetDB(ctx, r.db).
		Where("is_active = ?", true).
		Order("id DESC").
		First(&session).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &session, nil
}

func (r *sftRepository) ActivateSession(ctx context.Context, session *model.SFTSession) error {
	db := GetDB(ctx, r.db)
	if err := db.Model(&model.SFTSession{}).
		Where("is_active = ?", true).
		Update("is_active", false).Error; err != nil {
		return err
	}
	session.IsActive = true
	return db.Create(session).Error
}

func (r *sftRepository) DeactivateAll(ctx context.Context) error {
	return GetDB(ctx, r.db).Model(&model.SFTSession{}).
		Where("is_active = ?", true).
		Update("is_active", false).Error
}

func (r *sftRepository) CreateSubmission(ctx context.Context, sub *model.SFTSubmission) error {
	return GetDB(ctx, r.db).Create(sub).Error
}

func (r *sftRepository) DeleteUserSubmissions(ctx context.Context, sessionID uint, userID uint) (int64, error) {
	result := GetDB(ctx, r.db).
		Where("session_id = ? AND user_id = ?", sessionID, userID).
		Delete(&model.SFTSubmission{})
	return result.RowsAffected, result.Error
}

func (r *sftRepository) DeleteSessionSubmissions(ctx context.Context, sessionID uint) error {
	return GetDB(ctx, r.db).
		Where("session_id = ?", sessionID).
		Delete(&model.SFTSubmission{}).Error
}

func (r *sftRepository) ListSubmissionsForDate(ctx context.Context, date string) ([]model.SFTSubmission, error) {
	var subs []model.SFTSubmission
	err := GetDB(ctx, r.db).
		Joins("JOIN sft_sessions ON sft_sessions.id = sft_submissions.session_id").
		Where("sft_sessions.date = ?", date).
		Order("sft_submissions.id ASC").
		Find(&subs).Error
	if err != nil {
		return nil, err
	}
	return subs, nil
}
