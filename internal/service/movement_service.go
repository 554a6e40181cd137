package service

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"cadetbot/internal/model"
	"cadetbot/internal/repository"
)

// MovementReport is the prepared broadcast plus the persisted log row.
type MovementReport struct {
	Message string
	Log     *model.MovementLog
}

// MovementService builds and records personnel movement reports.
type MovementService interface {
	// BuildMessage renders the broadcast text for a movement. Names are
	// sorted so previews are stable regardless of selection order.
	BuildMessage(names []string, fromLoc, toLoc, timeHHMM string) string
	// Report persists the movement and returns the broadcast text.
	Report(ctx context.Context, reporterID int64, names []string, fromLoc, toLoc, timeHHMM string) (*MovementReport, error)
	ListRecent(ctx context.Context, limit int) ([]model.MovementLog, error)
}

type movementService struct {
	movements repository.MovementRepository
}

func NewMovementService(movements repository.MovementRepository) MovementService {
	return &movementService{movements: movements}
}

func (s *movementService) BuildMessage(names []string, fromLoc, toLoc, timeHHMM string) string {
	sorted := make([]string, len(names))
	copy(sorted, names)
	sort.Strings(sorted)

	lines := []string{
		"🚶 Movement Report",
		"",
		fmt.Sprintf("From: %s", fromLoc),
		fmt.Sprintf("To: %s", toLoc),
		fmt.Sprintf("Time: %sH", timeHHMM),
		"",
	}
	for i, name := range sorted {
		lines = append(lines, fmt.Sprintf("%d. %s", i+1, name))
	}
	return strings.Join(lines, "\n")
}

func (s *movementService) Report(ctx context.Context, reporterID int64, names []string, fromLoc, toLoc, timeHHMM string) (*MovementReport, error) {
	if len(names) == 0 {
		return nil, fmt.Errorf("at least one name is required")
	}
	if fromLoc == toLoc {
		return nil, fmt.Errorf("from and to locations cannot be the same")
	}

	entry := &model.MovementLog{
		FromLocation: fromLoc,
		ToLocation:   toLoc,
		Time:         timeHHMM,
		CreatedBy:    reporterID,
	}
	if err := s.movements.Create(ctx, entry); err != nil {
		return nil, fmt.Errorf("failed to record movement: %w", err)
	}

	return &MovementReport{
		Message: s.BuildMessage(names, fromLoc, toLoc, timeHHMM),
		Log:     entry,
	}, nil
}

func (s *movementService) ListRecent(ctx context.Context, limit int) ([]model.MovementLog, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.movements.ListRecent(ctx, limit)
}
