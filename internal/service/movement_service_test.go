package service

import (
	"context"
	"testing"

	"cadetbot/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memMovementRepo struct {
	logs []model.MovementLog
}

func (r *memMovementRepo) Create(ctx context.Context, log *model.MovementLog) error {
	log.ID = uint(len(r.logs) + 1)
	r.logs = append(r.logs, *log)
	return nil
}

func (r *memMovementRepo) ListRecent(ctx context.Context, limit int) ([]model.MovementLog, error) {
	if limit > len(r.logs) {
		limit = len(r.logs)
	}
	out := make([]model.MovementLog, 0, limit)
	for i := len(r.logs) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, r.logs[i])
	}
	return out, nil
}

func TestBuildMessageSortsNames(t *testing.T) {
	svc := NewMovementService(&memMovementRepo{})

	msg := svc.BuildMessage([]string{"OCT Tan Wei Ming", "OCT Lee Jun Hao"}, "Camp", "Medical Centre", "0930")

	want := "🚶 Movement Report\n\n" +
		"From: Camp\n" +
		"To: Medical Centre\n" +
		"Time: 0930H\n\n" +
		"1. OCT Lee Jun Hao\n" +
		"2. OCT Tan Wei Ming"
	assert.Equal(t, want, msg)
}

func TestReportPersistsLog(t *testing.T) {
	repo := &memMovementRepo{}
	svc := NewMovementService(repo)

	report, err := svc.Report(context.Background(), 42, []string{"OCT Tan Wei Ming"}, "Camp", "Mess", "1200")
	require.NoError(t, err)
	require.Len(t, repo.logs, 1)
	assert.Equal(t, "Camp", repo.logs[0].FromLocation)
	assert.Equal(t, "Mess", repo.logs[0].ToLocation)
	assert.Equal(t, "1200", repo.logs[0].Time)
	assert.Equal(t, int64(42), repo.logs[0].CreatedBy)
	assert.Contains(t, report.Message, "1. OCT Tan Wei Ming")
}

func TestReportRejectsEmptySelection(t *testing.T) {
	svc := NewMovementService(&memMovementRepo{})

	_, err := svc.Report(context.Background(), 42, nil, "Camp", "Mess", "1200")
	require.Error(t, err)
}

func TestReportRejectsSameLocation(t *testing.T) {
	svc := NewMovementService(&memMovementRepo{})

	_, err := svc.Report(context.Background(), 42, []string{"OCT Tan Wei Ming"}, "Camp", "Camp", "1200")
	require.Error(t, err)
}
