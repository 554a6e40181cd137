package model

import (
	"time"
)

// Gated actions requiring two-admin confirmation.
const (
	ActionClearDatabase = "CLEAR_DATABASE"
)

// AdminApproval is one administrator's confirmation of a gated destructive
// action. Rows older than the confirmation window are pruned before counting,
// so the set of live rows for an action is the current approval request.
// The composite unique index keeps one admin from ever counting twice.
type AdminApproval struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Action    string    `gorm:"type:varchar(50);not null;uniqueIndex:idx_admin_approvals_action_admin" json:"action"`
	AdminID   int64     `gorm:"not null;uniqueIndex:idx_admin_approvals_action_admin" json:"admin_id"`
	CreatedAt time.Time `gorm:"not null;index" json:"created_at"`
}
