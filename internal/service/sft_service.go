package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"cadetbot/internal/model"
	"cadetbot/internal/repository"
)

// Window is the read-only view of the active SFT session.
type Window struct {
	Date  string `json:"date"`
	Start string `json:"start"`
	End   string `json:"end"`
}

// SFTService manages the single active training window, the submissions
// against it, and summary generation.
type SFTService interface {
	// OpenWindow deactivates any current session and opens a new active one.
	// Prior sessions and their submissions stay for per-date history.
	OpenWindow(ctx context.Context, adminID int64, date, start, end string) error
	// ClearWindow deactivates the active session without opening another.
	ClearWindow(ctx context.Context, adminID int64) error
	// GetActiveWindow returns the open window, or nil when none is open.
	GetActiveWindow(ctx context.Context) (*Window, error)
	// Submit records the user's entry against the active session, replacing
	// any previous entry by the same user. Fails with ErrNoActiveSession when
	// no window is open.
	Submit(ctx context.Context, userID uint, userName, activity, location, start, end string) error
	// Quit removes the user's submission from the active session and reports
	// whether anything was removed.
	Quit(ctx context.Context, userID uint) (bool, error)
	// ClearSubmissions removes every submission under the active session,
	// leaving the session itself open.
	ClearSubmissions(ctx context.Context) error
	// GenerateSummary renders the roster for the date. Returns a
	// *SummaryValidationError when any activity group has fewer than two
	// participants; a date with no submissions yields the no-submission
	// message, not an error. Output is byte-identical across calls on
	// unchanged data.
	GenerateSummary(ctx context.Context, date, instructorName, salutation string) (string, error)
}

type sftService struct {
	sft       repository.SFTRepository
	audit     repository.AuditRepository
	txManager repository.TransactionManager
	clock     Clock
}

func NewSFTService(
	sft repository.SFTRepository,
	audit repository.AuditRepository,
	txManager repository.TransactionManager,
	clock Clock,
) SFTService {
	return &sftService{sft: sft, audit: audit, txManager: txManager, clock: clock}
}

func (s *sftService) OpenWindow(ctx context.Context, adminID int64, date, start, end string) error {
	return s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		session := &model.SFTSession{Date: date, Start: start, End: end}
		if err := s.sft.ActivateSession(txCtx, session); err != nil {
			return fmt.Errorf("failed to activate session: %w", err)
		}

		details, _ := json.Marshal(map[string]interface{}{
			"date":  date,
			"start": start,
			"end":   end,
		})
		return s.audit.Create(txCtx, &model.AuditLog{
			AdminID:    &adminID,
			Action:     model.ActionOpenSFTWindow,
			EntityID:   fmt.Sprintf("%d", session.ID),
			EntityName: date,
			Details:    string(details),
			CreatedAt:  s.clock.Now(),
		})
	})
}

func (s *sftService) ClearWindow(ctx context.Context, adminID int64) error {
	return s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.sft.DeactivateAll(txCtx); err != nil {
			return fmt.Errorf("failed to deactivate sessions: %w", err)
		}
		return s.audit.Create(txCtx, &model.AuditLog{
			AdminID:   &adminID,
			Action:    model.ActionClearSFTWindow,
			Details:   "{}",
			CreatedAt: s.clock.Now(),
		})
	})
}

func (s *sftService) GetActiveWindow(ctx context.Context) (*Window, error) {
	session, err := s.sft.GetActiveSession(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load active session: %w", err)
	}
	if session == nil {
		return nil, nil
	}
	return &Window{Date: session.Date, Start: session.Start, End: session.End}, nil
}

func (s *sftService) Submit(ctx context.Context, userID uint, userName, activity, location, start, end string) error {
	return s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		session, err := s.sft.GetActiveSession(txCtx)
		if err != nil {
			return fmt.Errorf("failed to load active session: %w", err)
		}
		if session == nil {
			return ErrNoActiveSession
		}

		// Replace, not update: the latest submission wins and duplicates
		// never accumulate.
		if _, err := s.sft.DeleteUserSubmissions(txCtx, session.ID, userID); err != nil {
			return fmt.Errorf("failed to remove prior submission: %w", err)
		}
		return s.sft.CreateSubmission(txCtx, &model.SFTSubmission{
			SessionID: session.ID,
			UserID:    userID,
			UserName:  userName,
			Activity:  activity,
			Location:  location,
			Start:     start,
			End:       end,
		})
	})
}

func (s *sftService) Quit(ctx context.Context, userID uint) (bool, error) {
	var removed bool
	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		session, err := s.sft.GetActiveSession(txCtx)
		if err != nil {
			return fmt.Errorf("failed to load active session: %w", err)
		}
		if session == nil {
			return nil
		}
		deleted, err := s.sft.DeleteUserSubmissions(txCtx, session.ID, userID)
		if err != nil {
			return fmt.Errorf("failed to remove submission: %w", err)
		}
		removed = deleted > 0
		return nil
	})
	if err != nil {
		return false, err
	}
	return removed, nil
}

func (s *sftService) ClearSubmissions(ctx context.Context) error {
	return s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		session, err := s.sft.GetActiveSession(txCtx)
		if err != nil {
			return fmt.Errorf("failed to load active session: %w", err)
		}
		if session == nil {
			return nil
		}
		return s.sft.DeleteSessionSubmissions(txCtx, session.ID)
	})
}

func (s *sftService) GenerateSummary(ctx context.Context, date, instructorName, salutation string) (string, error) {
	subs, err := s.sft.ListSubmissionsForDate(ctx, date)
	if err != nil {
		return "", fmt.Errorf("failed to load submissions: %w", err)
	}

	if len(subs) == 0 {
		return fmt.Sprintf("❌ No SFT submissions for %s.", date), nil
	}

	// Group in first-appearance order so repeated calls render identically.
	grouped := make(map[string][]model.SFTSubmission)
	var order []string
	for _, sub := range subs {
		key := sub.GroupKey()
		if _, seen := grouped[key]; !seen {
			order = append(order, key)
		}
		grouped[key] = append(grouped[key], sub)
	}

	var invalid []string
	for _, key := range order {
		if len(grouped[key]) < 2 {
			invalid = append(invalid, key)
		}
	}
	if len(invalid) > 0 {
		return "", &SummaryValidationError{Groups: invalid}
	}

	earliest := subs[0].Start
	latest := subs[0].End
	for _, sub := range subs[1:] {
		if sub.Start < earliest {
			earliest = sub.Start
		}
		if sub.End > latest {
			latest = sub.End
		}
	}

	lines := []string{
		fmt.Sprintf(
			"Good Afternoon %s %s, below are the cadets participating in SFT for %s from %sH to %sH.",
			salutation, instructorGivenName(instructorName), date, earliest, latest,
		),
		"",
		"Submission of names",
	}

	counter := 1
	for _, key := range order {
		for _, entry := range grouped[key] {
			lines = append(lines, fmt.Sprintf("%d. %s %s-%s", counter, entry.UserName, entry.Start, entry.End))
			counter++
		}
		lines = append(lines, key, "")
	}

	return strings.TrimRight(strings.Join(lines, "\n"), " \n"), nil
}

// instructorGivenName strips a leading rank token from "RANK Name" identities,
// falling back to the full string when there is nothing to strip.
func instructorGivenName(name string) string {
	fields := strings.Fields(name)
	if len(fields) >= 2 {
		return strings.Join(fields[1:], " ")
	}
	return name
}
