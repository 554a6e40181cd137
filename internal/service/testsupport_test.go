package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"cadetbot/internal/model"
)

// fixedClock lets tests move time forward deterministically.
type fixedClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFixedClock(at time.Time) *fixedClock {
	return &fixedClock{now: at}
}

func (c *fixedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fixedClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// memTxManager runs the callback directly. Rollback-on-error is simulated by
// snapshotting the stores before the callback and restoring them on failure.
type memTxManager struct {
	stores []snapshotter
}

type snapshotter interface {
	snapshot() func()
}

func (m *memTxManager) RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error {
	restores := make([]func(), 0, len(m.stores))
	for _, store := range m.stores {
		restores = append(restores, store.snapshot())
	}
	if err := fn(ctx); err != nil {
		for _, restore := range restores {
			restore()
		}
		return err
	}
	return nil
}

type approvalRow struct {
	adminID int64
	at      time.Time
}

type memApprovalRepo struct {
	rows map[string][]approvalRow
}

func newMemApprovalRepo() *memApprovalRepo {
	return &memApprovalRepo{rows: map[string][]approvalRow{}}
}

func (r *memApprovalRepo) snapshot() func() {
	saved := map[string][]approvalRow{}
	for action, rows := range r.rows {
		saved[action] = append([]approvalRow(nil), rows...)
	}
	return func() { r.rows = saved }
}

func (r *memApprovalRepo) LockAction(ctx context.Context, action string) error { return nil }

func (r *memApprovalRepo) PruneBefore(ctx context.Context, action string, cutoff time.Time) error {
	var kept []approvalRow
	for _, row := range r.rows[action] {
		if !row.at.Before(cutoff) {
			kept = append(kept, row)
		}
	}
	r.rows[action] = kept
	return nil
}

func (r *memApprovalRepo) Record(ctx context.Context, action string, adminID int64, at time.Time) error {
	var kept []approvalRow
	for _, row := range r.rows[action] {
		if row.adminID != adminID {
			kept = append(kept, row)
		}
	}
	r.rows[action] = append(kept, approvalRow{adminID: adminID, at: at})
	return nil
}

func (r *memApprovalRepo) CountDistinct(ctx context.Context, action string) (int64, error) {
	seen := map[int64]bool{}
	for _, row := range r.rows[action] {
		seen[row.adminID] = true
	}
	return int64(len(seen)), nil
}

func (r *memApprovalRepo) OldestCreatedAt(ctx context.Context, action string) (time.Time, error) {
	var oldest time.Time
	for _, row := range r.rows[action] {
		if oldest.IsZero() || row.at.Before(oldest) {
			oldest = row.at
		}
	}
	return oldest, nil
}

func (r *memApprovalRepo) Clear(ctx context.Context, action string) error {
	delete(r.rows, action)
	return nil
}

type memAuditRepo struct {
	entries []model.AuditLog
}

func (r *memAuditRepo) snapshot() func() {
	saved := append([]model.AuditLog(nil), r.entries...)
	return func() { r.entries = saved }
}

func (r *memAuditRepo) Create(ctx context.Context, entry *model.AuditLog) error {
	r.entries = append(r.entries, *entry)
	return nil
}

func (r *memAuditRepo) List(ctx context.Context, action string, page, limit int) ([]model.AuditLog, int64, error) {
	var matched []model.AuditLog
	for _, entry := range r.entries {
		if action == "" || entry.Action == action {
			matched = append(matched, entry)
		}
	}
	return matched, int64(len(matched)), nil
}

type memSFTRepo struct {
	nextSessionID uint
	nextSubID     uint
	sessions      []model.SFTSession
	subs          []model.SFTSubmission
}

func newMemSFTRepo() *memSFTRepo {
	return &memSFTRepo{nextSessionID: 1, nextSubID: 1}
}

func (r *memSFTRepo) snapshot() func() {
	sessions := append([]model.SFTSession(nil), r.sessions...)
	subs := append([]model.SFTSubmission(nil), r.subs...)
	sessID, subID := r.nextSessionID, r.nextSubID
	return func() {
		r.sessions, r.subs = sessions, subs
		r.nextSessionID, r.nextSubID = sessID, subID
	}
}

func (r *memSFTRepo) GetActiveSession(ctx context.Context) (*model.SFTSession, error) {
	for i := len(r.sessions) - 1; i >= 0; i-- {
		if r.sessions[i].IsActive {
			session := r.sessions[i]
			return &session, nil
		}
	}
	return nil, nil
}

func (r *memSFTRepo) ActivateSession(ctx context.Context, session *model.SFTSession) error {
	for i := range r.sessions {
		r.sessions[i].IsActive = false
	}
	session.ID = r.nextSessionID
	r.nextSessionID++
	session.IsActive = true
	r.sessions = append(r.sessions, *session)
	return nil
}

func (r *memSFTRepo) DeactivateAll(ctx context.Context) error {
	for i := range r.sessions {
		r.sessions[i].IsActive = false
	}
	return nil
}

func (r *memSFTRepo) CreateSubmission(ctx context.Context, sub *model.SFTSubmission) error {
	sub.ID = r.nextSubID
	r.nextSubID++
	r.subs = append(r.subs, *sub)
	return nil
}

func (r *memSFTRepo) DeleteUserSubmissions(ctx context.Context, sessionID uint, userID uint) (int64, error) {
	var kept []model.SFTSubmission
	var deleted int64
	for _, sub := range r.subs {
		if sub.SessionID == sessionID && sub.UserID == userID {
			deleted++
			continue
		}
		kept = append(kept, sub)
	}
	r.subs = kept
	return deleted, nil
}

func (r *memSFTRepo) DeleteSessionSubmissions(ctx context.Context, sessionID uint) error {
	var kept []model.SFTSubmission
	for _, sub := range r.subs {
		if sub.SessionID != sessionID {
			kept = append(kept, sub)
		}
	}
	r.subs = kept
	return nil
}

func (r *memSFTRepo) ListSubmissionsForDate(ctx context.Context, date string) ([]model.SFTSubmission, error) {
	sessionIDs := map[uint]bool{}
	for _, session := range r.sessions {
		if session.Date == date {
			sessionIDs[session.ID] = true
		}
	}
	var matched []model.SFTSubmission
	for _, sub := range r.subs {
		if sessionIDs[sub.SessionID] {
			matched = append(matched, sub)
		}
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID < matched[j].ID })
	return matched, nil
}

func mustTime(value string) time.Time {
	t, err := time.Parse("2006-01-02 15:04:05", value)
	if err != nil {
		panic(fmt.Sprintf("bad test time %q: %v", value, err))
	}
	return t
}
