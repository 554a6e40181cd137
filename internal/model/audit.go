package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	ActionRequestApproval    = "REQUEST_APPROVAL"
	ActionCancelApproval     = "CANCEL_APPROVAL"
	ActionExecuteGatedAction = "EXECUTE_GATED_ACTION"
	ActionOpenSFTWindow      = "OPEN_SFT_WINDOW"
	ActionClearSFTWindow     = "CLEAR_SFT_WINDOW"
	ActionImportUsers        = "IMPORT_USERS"
	ActionClearUserData      = "CLEAR_USER_DATA"
)

// AuditLog tracks Who, What, and When for critical system changes
type AuditLog struct {
	ID         uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	AdminID    *int64    `gorm:"index" json:"admin_id"` // telegram id, nullable for system actions
	Action     string    `gorm:"type:varchar(50);not null;index" json:"action"`
	EntityID   string    `gorm:"type:varchar(50);index" json:"entity_id"`
	EntityName string    `gorm:"type:varchar(255)" json:"entity_name,omitempty"`
	Details    string    `gorm:"type:jsonb" json:"details"` // Serialized JSON payload of the action
	CreatedAt  time.Time `gorm:"index" json:"created_at"`
}
