package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"cadetbot/internal/model"
	"cadetbot/internal/repository"

	"gorm.io/gorm"
)

// MedicalService covers RSO/MA/RSI reporting: events are opened when a cadet
// reports sick or books an appointment, then closed out later with a
// diagnosis and an optional excusal status.
type MedicalService interface {
	// ReportSick opens an RSO or RSI event for the named user.
	ReportSick(ctx context.Context, eventType, identity, symptoms, diagnosis string) (*model.MedicalEvent, error)
	// CloseOutEvent records the diagnosis and, unless statusDesc is "N/A",
	// grants a status over the DDMMYY date range. Already-diagnosed events
	// are returned untouched.
	CloseOutEvent(ctx context.Context, eventID uint, diagnosis, statusType, statusDesc, startDDMMYY, endDDMMYY string) (*model.MedicalEvent, error)
	// BookAppointment opens an MA event at the DDMMYY/HHMM slot.
	BookAppointment(ctx context.Context, identity, appointment, location, dateDDMMYY, timeHHMM string) (*model.MedicalEvent, error)
	// UpdateAppointment rebooks an MA event and optionally endorses it.
	UpdateAppointment(ctx context.Context, eventID uint, appointment, location, dateDDMMYY, timeHHMM, endorsedBy string) (*model.MedicalEvent, error)
	ListEventsFor(ctx context.Context, identity, eventType string) ([]model.MedicalEvent, error)
	ActiveStatuses(ctx context.Context, day time.Time) ([]model.MedicalStatus, error)
	// PruneExpired drops statuses and events that ended before today.
	PruneExpired(ctx context.Context) (statuses int64, events int64, err error)
}

type medicalService struct {
	medical   repository.MedicalRepository
	users     repository.UserRepository
	txManager repository.TransactionManager
	clock     Clock
}

func NewMedicalService(
	medical repository.MedicalRepository,
	users repository.UserRepository,
	txManager repository.TransactionManager,
	clock Clock,
) MedicalService {
	return &medicalService{medical: medical, users: users, txManager: txManager, clock: clock}
}

func (s *medicalService) resolveUser(ctx context.Context, identity string) (*model.User, error) {
	parts := splitIdentity(identity)
	if parts == nil {
		return nil, fmt.Errorf("invalid name format")
	}
	user, err := s.users.GetByRankAndName(ctx, parts[0], parts[1])
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("user not found")
		}
		return nil, err
	}
	return user, nil
}

func (s *medicalService) ReportSick(ctx context.Context, eventType, identity, symptoms, diagnosis string) (*model.MedicalEvent, error) {
	if eventType != model.EventTypeRSO && eventType != model.EventTypeRSI {
		return nil, fmt.Errorf("unsupported event type: %s", eventType)
	}
	user, err := s.resolveUser(ctx, identity)
	if err != nil {
		return nil, err
	}

	event := &model.MedicalEvent{
		UserID:        user.ID,
		EventType:     eventType,
		Symptoms:      symptoms,
		Diagnosis:     diagnosis,
		EventDatetime: s.clock.Now().Truncate(time.Second),
	}
	if err := s.medical.CreateEvent(ctx, event); err != nil {
		return nil, fmt.Errorf("failed to create medical event: %w", err)
	}
	return event, nil
}

func (s *medicalService) CloseOutEvent(ctx context.Context, eventID uint, diagnosis, statusType, statusDesc, startDDMMYY, endDDMMYY string) (*model.MedicalEvent, error) {
	var event *model.MedicalEvent
	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		loaded, err := s.medical.GetEventByID(txCtx, eventID)
		if err != nil {
			return fmt.Errorf("medical event not found: %w", err)
		}
		event = loaded

		// A closed-out event keeps its first diagnosis.
		if event.HasDiagnosis() {
			return nil
		}

		event.Diagnosis = diagnosis
		if err := s.medical.UpdateEvent(txCtx, event); err != nil {
			return fmt.Errorf("failed to update medical event: %w", err)
		}

		if statusDesc == "" || statusDesc == "N/A" {
			return nil
		}

		startDate, err := parseDDMMYY(startDDMMYY)
		if err != nil {
			return err
		}
		endDate, err := parseDDMMYY(endDDMMYY)
		if err != nil {
			return err
		}
		eventID := event.ID
		return s.medical.CreateStatus(txCtx, &model.MedicalStatus{
			UserID:        event.UserID,
			StatusType:    statusType,
			Description:   statusDesc,
			StartDate:     startDate,
			EndDate:       endDate,
			SourceEventID: &eventID,
		})
	})
	if err != nil {
		return nil, err
	}
	return event, nil
}

func (s *medicalService) BookAppointment(ctx context.Context, identity, appointment, location, dateDDMMYY, timeHHMM string) (*model.MedicalEvent, error) {
	user, err := s.resolveUser(ctx, identity)
	if err != nil {
		return nil, err
	}

	slot, err := parseDDMMYYHHMM(dateDDMMYY, timeHHMM, s.clock.Now().Location())
	if err != nil {
		return nil, err
	}

	event := &model.MedicalEvent{
		UserID:          user.ID,
		EventType:       model.EventTypeMA,
		AppointmentType: appointment,
		Location:        location,
		EventDatetime:   slot,
	}
	if err := s.medical.CreateEvent(ctx, event); err != nil {
		return nil, fmt.Errorf("failed to create appointment: %w", err)
	}
	return event, nil
}

func (s *medicalService) UpdateAppointment(ctx context.Context, eventID uint, appointment, location, dateDDMMYY, timeHHMM, endorsedBy string) (*model.MedicalEvent, error) {
	event, err := s.medical.GetEventByID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("medical event not found: %w", err)
	}

	slot, err := parseDDMMYYHHMM(dateDDMMYY, timeHHMM, s.clock.Now().Location())
	if err != nil {
		return nil, err
	}

	event.AppointmentType = appointment
	event.Location = location
	event.EventDatetime = slot
	if endorsedBy != "" {
		event.EndorsedBy = endorsedBy
	}
	if err := s.medical.UpdateEvent(ctx, event); err != nil {
		return nil, fmt.Errorf("failed to update appointment: %w", err)
	}
	return event, nil
}

func (s *medicalService) ListEventsFor(ctx context.Context, identity, eventType string) ([]model.MedicalEvent, error) {
	user, err := s.resolveUser(ctx, identity)
	if err != nil {
		return nil, err
	}
	return s.medical.ListEventsForUser(ctx, user.ID, eventType)
}

func (s *medicalService) ActiveStatuses(ctx context.Context, day time.Time) ([]model.MedicalStatus, error) {
	return s.medical.ListActiveStatuses(ctx, day)
}

func (s *medicalService) PruneExpired(ctx context.Context) (int64, int64, error) {
	return s.medical.DeleteExpired(ctx, s.clock.Now())
}

func splitIdentity(identity string) []string {
	parts := strings.SplitN(strings.TrimSpace(identity), " ", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return nil
	}
	return parts
}

func parseDDMMYY(value string) (time.Time, error) {
	t, err := time.Parse("020106", value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: use DDMMYY", value)
	}
	return t, nil
}

func parseDDMMYYHHMM(date, clockTime string, loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation("020106 1504", date+" "+clockTime, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date/time %q %q: use DDMMYY and HHMM", date, clockTime)
	}
	return t, nil
}
