package service

import (
	"context"
	"testing"

	"cadetbot/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestMedicalService(t *testing.T) (MedicalService, *memUserRepo, *memMedicalRepo) {
	t.Helper()
	users := newMemUserRepo()
	medical := newMemMedicalRepo()
	clock := newFixedClock(mustTime("2024-01-01 12:00:00"))
	tx := &memTxManager{stores: []snapshotter{users, medical}}
	return NewMedicalService(medical, users, tx, clock), users, medical
}

func seedCadet(t *testing.T, users *memUserRepo) *model.User {
	t.Helper()
	user := &model.User{
		FullName: "Tan Wei Ming", Rank: "OCT", Role: model.RoleCadet,
		TelegramID: int64Ptr(1), IsActive: true,
	}
	require.NoError(t, users.Create(context.Background(), user))
	return user
}

func TestReportSickCreatesEvent(t *testing.T) {
	svc, users, medical := newTestMedicalService(t)
	user := seedCadet(t, users)

	event, err := svc.ReportSick(context.Background(), model.EventTypeRSO, "OCT Tan Wei Ming", "fever", "")
	require.NoError(t, err)
	assert.Equal(t, user.ID, event.UserID)
	assert.Equal(t, model.EventTypeRSO, event.EventType)
	assert.Equal(t, "fever", event.Symptoms)
	assert.False(t, event.HasDiagnosis())
	assert.Len(t, medical.events, 1)
}

func TestReportSickRejectsUnknownUser(t *testing.T) {
	svc, _, _ := newTestMedicalService(t)

	_, err := svc.ReportSick(context.Background(), model.EventTypeRSI, "OCT Nobody Here", "cough", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "user not found")
}

func TestReportSickRejectsAppointmentType(t *testing.T) {
	svc, users, _ := newTestMedicalService(t)
	seedCadet(t, users)

	_, err := svc.ReportSick(context.Background(), model.EventTypeMA, "OCT Tan Wei Ming", "n/a", "")
	require.Error(t, err)
}

func TestCloseOutEventGrantsStatus(t *testing.T) {
	svc, users, medical := newTestMedicalService(t)
	seedCadet(t, users)

	event, err := svc.ReportSick(context.Background(), model.EventTypeRSO, "OCT Tan Wei Ming", "fever", "")
	require.NoError(t, err)

	closed, err := svc.CloseOutEvent(context.Background(), event.ID, "flu", "status", "LD", "010124", "050124")
	require.NoError(t, err)
	assert.Equal(t, "flu", closed.Diagnosis)

	require.Len(t, medical.statuses, 1)
	status := medical.statuses[0]
	assert.Equal(t, "LD", status.Description)
	assert.Equal(t, "010124", status.StartDate.Format("020106"))
	assert.Equal(t, "050124", status.EndDate.Format("020106"))
	require.NotNil(t, status.SourceEventID)
	assert.Equal(t, event.ID, *status.SourceEventID)
}

func TestCloseOutEventWithoutStatus(t *testing.T) {
	svc, users, medical := newTestMedicalService(t)
	seedCadet(t, users)

	event, err := svc.ReportSick(context.Background(), model.EventTypeRSI, "OCT Tan Wei Ming", "cough", "")
	require.NoError(t, err)

	closed, err := svc.CloseOutEvent(context.Background(), event.ID, "cold", "status", "N/A", "", "")
	require.NoError(t, err)
	assert.Equal(t, "cold", closed.Diagnosis)
	assert.Empty(t, medical.statuses)
}

func TestCloseOutEventKeepsFirstDiagnosis(t *testing.T) {
	svc, users, medical := newTestMedicalService(t)
	seedCadet(t, users)

	event, err := svc.ReportSick(context.Background(), model.EventTypeRSO, "OCT Tan Wei Ming", "fever", "")
	require.NoError(t, err)

	_, err = svc.CloseOutEvent(context.Background(), event.ID, "flu", "status", "N/A", "", "")
	require.NoError(t, err)

	closed, err := svc.CloseOutEvent(context.Background(), event.ID, "pneumonia", "status", "MC", "010124", "050124")
	require.NoError(t, err)
	assert.Equal(t, "flu", closed.Diagnosis)
	assert.Empty(t, medical.statuses)
}

func TestBookAndUpdateAppointment(t *testing.T) {
	svc, users, _ := newTestMedicalService(t)
	seedCadet(t, users)
	ctx := context.Background()

	event, err := svc.BookAppointment(ctx, "OCT Tan Wei Ming", "Dental", "Medical Centre", "050124", "0930")
	require.NoError(t, err)
	assert.Equal(t, model.EventTypeMA, event.EventType)
	assert.Equal(t, "050124 0930", event.EventDatetime.Format("020106 1504"))

	updated, err := svc.UpdateAppointment(ctx, event.ID, "Dental", "Medical Centre", "060124", "1400", "CPT Ng")
	require.NoError(t, err)
	assert.Equal(t, "060124 1400", updated.EventDatetime.Format("020106 1504"))
	assert.Equal(t, "CPT Ng", updated.EndorsedBy)
}

func TestBookAppointmentRejectsBadSlot(t *testing.T) {
	svc, users, _ := newTestMedicalService(t)
	seedCadet(t, users)

	_, err := svc.BookAppointment(context.Background(), "OCT Tan Wei Ming", "Dental", "Medical Centre", "320124", "0930")
	require.Error(t, err)
}
