package service

import (
	"context"
	"fmt"
	"strings"

	"cadetbot/internal/model"
	"cadetbot/internal/repository"
)

// ParadeService renders the daily parade state: strength counts plus every
// active medical status for the day.
type ParadeService interface {
	Generate(ctx context.Context, outOfCamp int) (string, error)
}

type paradeService struct {
	users   repository.UserRepository
	medical repository.MedicalRepository
	clock   Clock
}

func NewParadeService(users repository.UserRepository, medical repository.MedicalRepository, clock Clock) ParadeService {
	return &paradeService{users: users, medical: medical, clock: clock}
}

func (s *paradeService) Generate(ctx context.Context, outOfCamp int) (string, error) {
	now := s.clock.Now()

	cadets, err := s.users.ListByRole(ctx, model.RoleCadet, true)
	if err != nil {
		return "", fmt.Errorf("failed to load cadets: %w", err)
	}

	statuses, err := s.medical.ListActiveStatuses(ctx, now)
	if err != nil {
		return "", fmt.Errorf("failed to load active statuses: %w", err)
	}

	total := len(cadets)
	present := total - outOfCamp
	if present < 0 {
		present = 0
	}

	lines := []string{
		fmt.Sprintf("Parade State for %s", now.Format("020106")),
		"",
		fmt.Sprintf("Total strength: %d", total),
		fmt.Sprintf("Present: %d", present),
		fmt.Sprintf("Out of camp: %d", outOfCamp),
		"",
	}

	if len(statuses) == 0 {
		lines = append(lines, "No active medical statuses.")
	} else {
		lines = append(lines, "Medical statuses:")
		for i, status := range statuses {
			name := "Unknown"
			if status.User != nil {
				name = status.User.DisplayName()
			}
			lines = append(lines, fmt.Sprintf(
				"%d. %s - %s (%s to %s)",
				i+1, name, status.Description,
				status.StartDate.Format("020106"), status.EndDate.Format("020106"),
			))
		}
	}

	return strings.Join(lines, "\n"), nil
}
