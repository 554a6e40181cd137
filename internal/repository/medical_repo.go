package repository

import (
	"context"
	"time"

	"cadetbot/internal/model"

	"gorm.io/gorm"
)

// MedicalRepository covers medical events (RSO/MA/RSI) and the statuses
// granted off them.
type MedicalRepository interface {
	CreateEvent(ctx context.Context, event *model.MedicalEvent) error
	GetEventByID(ctx context.Context, id uint) (*model.MedicalEvent, error)
	UpdateEvent(ctx context.Context, event *model.MedicalEvent) error
	ListEventsForUser(ctx context.Context, userID uint, eventType string) ([]model.MedicalEvent, error)
	ListEventsWithUsers(ctx context.Context) ([]model.MedicalEvent, error)

	CreateStatus(ctx context.Context, status *model.MedicalStatus) error
	// ListActiveStatuses returns statuses whose date range covers the day,
	// user preloaded, for parade-state rendering.
	ListActiveStatuses(ctx context.Context, day time.Time) ([]model.MedicalStatus, error)
	// DeleteExpired prunes statuses ended before the day and events dated
	// before the day start, returning the per-kind delete counts.
	DeleteExpired(ctx context.Context, day time.Time) (statuses int64, events int64, err error)
}

type medicalRepository struct {
	db *gorm.DB
}

func NewMedicalRepository(db *gorm.DB) MedicalRepository {
	return &medicalRepository{db: db}
}

func (r *medicalRepository) CreateEvent(ctx context.Context, event *model.MedicalEvent) error {
	return GetDB(ctx, r.db).Create(event).Error
}

func (r *medicalRepository) GetEventByID(ctx context.Context, id uint) (*model.MedicalEvent, error) {
	var event model.MedicalEvent
	if err := GetDB(ctx, r.db).First(&event, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &event, nil
}

func (r *medicalRepository) UpdateEvent(ctx context.Context, event *model.MedicalEvent) error {
	return GetDB(ctx, r.db).Save(event).Error
}

func (r *medicalRepository) ListEventsForUser(ctx context.Context, userID uint, eventType string) ([]model.MedicalEvent, error) {
	var events []model.MedicalEvent
	err := GetDB(ctx, r.db).
		Where("user_id = ? AND event_type = ?", userID, eventType).
		Order("event_datetime DESC").
		Find(&events).Error
	if err != nil {
		return nil, err
	}
	return events, nil
}

func (r *medicalRepository) ListEventsWithUsers(ctx context.Context) ([]model.MedicalEvent, error) {
	var events []model.MedicalEvent
	err := GetDB(ctx, r.db).
		Preload("User").
		Order("event_datetime DESC").
		Find(&events).Error
	if err != nil {
		return nil, err
	}
	return events, nil
}

func (r *medicalRepository) CreateStatus(ctx context.Context, status *model.MedicalStatus) error {
	return GetDB(ctx, r.db).Create(status).Error
}

func (r *medicalRepository) ListActiveStatuses(ctx context.Context, day time.Time) ([]model.MedicalStatus, error) {
	var statuses []model.MedicalStatus
	err := GetDB(ctx, r.db).
		Preload("User").
		Preload("SourceEvent").
		Where("start_date <= ? AND end_date >= ?", day, day).
		Order("id ASC").
		Find(&statuses).Error
	if err != nil {
		return nil, err
	}
	return statuses, nil
}

func (r *medicalRepository) DeleteExpired(ctx context.Context, day time.Time) (int64, int64, error) {
	db := GetDB(ctx, r.db)

	statusResult := db.Where("end_date < ?", day).Delete(&model.MedicalStatus{})
	if statusResult.Error != nil {
		return 0, 0, statusResult.Error
	}

	dayStart := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	eventResult := db.Where("event_datetime < ?", dayStart).Delete(&model.MedicalEvent{})
	if eventResult.Error != nil {
		return statusResult.RowsAffected, 0, eventResult.Error
	}

	return statusResult.RowsAffected, eventResult.RowsAffected, nil
}
