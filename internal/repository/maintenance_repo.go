package repository

import (
	"context"

	"cadetbot/internal/model"

	"gorm.io/gorm"
)

// WipeCounts reports how many rows each table lost in a wipe, keyed the way
// the confirmation message renders them.
type WipeCounts struct {
	SFTSubmissions  int64 `json:"sft_submissions"`
	SFTSessions     int64 `json:"sft_sessions"`
	MovementLogs    int64 `json:"movement_logs"`
	MedicalStatuses int64 `json:"medical_statuses"`
	MedicalEvents   int64 `json:"medical_events"`
	Users           int64 `json:"users"`
}

// MaintenanceRepository performs bulk destructive deletes. ClearAllData is
// only ever reached through the two-admin approval gate.
type MaintenanceRepository interface {
	// ClearAllData wipes every operational table, children before parents.
	ClearAllData(ctx context.Context) (WipeCounts, error)
	// ClearUserData wipes users and their medical records, keeping SFT and
	// movement history. Used by roster import with the replace option.
	ClearUserData(ctx context.Context) (WipeCounts, error)
}

type maintenanceRepository struct {
	db *gorm.DB
}

func NewMaintenanceRepository(db *gorm.DB) MaintenanceRepository {
	return &maintenanceRepository{db: db}
}

func (r *maintenanceRepository) ClearAllData(ctx context.Context) (WipeCounts, error) {
	db := GetDB(ctx, r.db)
	var counts WipeCounts

	steps := []struct {
		target interface{}
		count  *int64
	}{
		{&model.SFTSubmission{}, &counts.SFTSubmissions},
		{&model.SFTSession{}, &counts.SFTSessions},
		{&model.MovementLog{}, &counts.MovementLogs},
		{&model.MedicalStatus{}, &counts.MedicalStatuses},
		{&model.MedicalEvent{}, &counts.MedicalEvents},
		{&model.User{}, &counts.Users},
	}
	for _, step := range steps {
		result := db.Where("1 = 1").Delete(step.target)
		if result.Error != nil {
			return counts, result.Error
		}
		*step.count = result.RowsAffected
	}

	return counts, nil
}

func (r *maintenanceRepository) ClearUserData(ctx context.Context) (WipeCounts, error) {
	db := GetDB(ctx, r.db)
	var counts WipeCounts

	steps := []struct {
		target interface{}
		count  *int64
	}{
		{&model.MedicalStatus{}, &counts.MedicalStatuses},
		{&model.MedicalEvent{}, &counts.MedicalEvents},
		{&model.User{}, &counts.Users},
	}
	for _, step := range steps {
		result := db.Where("1 = 1").Delete(step.target)
		if result.Error != nil {
			return counts, result.Error
		}
		*step.count = result.RowsAffected
	}

	return counts, nil
}
