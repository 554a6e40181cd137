package service

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"cadetbot/internal/model"
	"cadetbot/internal/repository"
)

// ImportResult reports the outcome of one CSV roster import.
type ImportResult struct {
	Imported int                    `json:"imported"`
	Skipped  int                    `json:"skipped"`
	Errors   []string               `json:"errors,omitempty"`
	Cleared  *repository.WipeCounts `json:"cleared,omitempty"`
}

// ImportService loads the roster from CSV. Expected header:
// full_name,rank,role,telegram_id,telegram_username,is_admin
type ImportService interface {
	// ImportUsers reads the CSV and creates roster rows. With clearFirst set,
	// users and medical records are wiped in the same transaction before the
	// import, so a bad file never leaves the roster half-replaced.
	ImportUsers(ctx context.Context, adminID int64, r io.Reader, clearFirst bool) (*ImportResult, error)
}

type importService struct {
	users       repository.UserRepository
	maintenance repository.MaintenanceRepository
	audit       repository.AuditRepository
	txManager   repository.TransactionManager
	clock       Clock
}

func NewImportService(
	users repository.UserRepository,
	maintenance repository.MaintenanceRepository,
	audit repository.AuditRepository,
	txManager repository.TransactionManager,
	clock Clock,
) ImportService {
	return &importService{
		users:       users,
		maintenance: maintenance,
		audit:       audit,
		txManager:   txManager,
		clock:       clock,
	}
}

func (s *importService) ImportUsers(ctx context.Context, adminID int64, r io.Reader, clearFirst bool) (*ImportResult, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse CSV: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("CSV file is empty")
	}

	columns, err := headerIndex(records[0])
	if err != nil {
		return nil, err
	}

	result := &ImportResult{}
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if clearFirst {
			counts, clearErr := s.maintenance.ClearUserData(txCtx)
			if clearErr != nil {
				return fmt.Errorf("failed to clear user data: %w", clearErr)
			}
			result.Cleared = &counts
		}

		for i, record := range records[1:] {
			user, rowErr := parseUserRow(columns, record)
			if rowErr != nil {
				result.Skipped++
				result.Errors = append(result.Errors, fmt.Sprintf("row %d: %v", i+2, rowErr))
				continue
			}
			if createErr := s.users.Create(txCtx, user); createErr != nil {
				result.Skipped++
				result.Errors = append(result.Errors, fmt.Sprintf("row %d: %v", i+2, createErr))
				continue
			}
			result.Imported++
		}

		details, _ := json.Marshal(map[string]interface{}{
			"imported":    result.Imported,
			"skipped":     result.Skipped,
			"clear_first": clearFirst,
		})
		auditAction := model.ActionImportUsers
		if clearFirst {
			auditAction = model.ActionClearUserData
		}
		return s.audit.Create(txCtx, &model.AuditLog{
			AdminID:   &adminID,
			Action:    auditAction,
			Details:   string(details),
			CreatedAt: s.clock.Now(),
		})
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func headerIndex(header []string) (map[string]int, error) {
	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, required := range []string{"full_name", "rank", "role"} {
		if _, ok := columns[required]; !ok {
			return nil, fmt.Errorf("CSV is missing required column %q", required)
		}
	}
	return columns, nil
}

func parseUserRow(columns map[string]int, record []string) (*model.User, error) {
	field := func(name string) string {
		idx, ok := columns[name]
		if !ok || idx >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[idx])
	}

	fullName := field("full_name")
	rank := field("rank")
	role := strings.ToLower(field("role"))
	if fullName == "" || rank == "" {
		return nil, fmt.Errorf("full_name and rank are required")
	}
	if !validateRole(role) {
		return nil, fmt.Errorf("invalid role %q", role)
	}

	user := &model.User{
		FullName: fullName,
		Rank:     rank,
		Role:     role,
		IsActive: true,
	}

	if raw := field("telegram_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid telegram_id %q", raw)
		}
		user.TelegramID = &id
	}
	if username := normalizeUsername(field("telegram_username")); username != "" {
		user.TelegramUsername = &username
	}
	if user.TelegramID == nil && user.TelegramUsername == nil {
		return nil, fmt.Errorf("telegram_id or telegram_username is required")
	}

	if raw := field("is_admin"); raw != "" {
		isAdmin, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid is_admin %q", raw)
		}
		user.IsAdmin = isAdmin
	}

	return user, nil
}
