package model

import (
	"time"
)

// SFTSession is one physical-training window. At most one session is active at
// a time; opening a new window deactivates every other session in the same
// transaction. Date and times are kept in the external string formats the unit
// uses (DDMMYY, HHMM) so reports render them verbatim.
type SFTSession struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Date      string    `gorm:"type:varchar(10);not null;index" json:"date"`
	Start     string    `gorm:"type:varchar(5);not null" json:"start"`
	End       string    `gorm:"type:varchar(5);not null" json:"end"`
	IsActive  bool      `gorm:"not null;default:true;index" json:"is_active"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`

	Submissions []SFTSubmission `gorm:"foreignKey:SessionID;constraint:OnDelete:CASCADE" json:"submissions,omitempty"`
}

// SFTSubmission is one user's activity entry against a session. A user holds
// at most one submission per session; resubmitting replaces the old row.
// UserName is denormalized so summaries survive roster edits.
type SFTSubmission struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	SessionID uint      `gorm:"not null;index:idx_sft_submissions_session_user" json:"session_id"`
	UserID    uint      `gorm:"not null;index:idx_sft_submissions_session_user" json:"user_id"`
	UserName  string    `gorm:"type:varchar(255);not null" json:"user_name"`
	Activity  string    `gorm:"type:varchar(100);not null" json:"activity"`
	Location  string    `gorm:"type:varchar(100);not null;default:''" json:"location"`
	Start     string    `gorm:"type:varchar(5);not null" json:"start"`
	End       string    `gorm:"type:varchar(5);not null" json:"end"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`

	Session *SFTSession `gorm:"foreignKey:SessionID" json:"-"`
}

// GroupKey is the display key submissions are clustered under in summaries.
func (s *SFTSubmission) GroupKey() string {
	if s.Location != "" {
		return s.Activity + " @ " + s.Location
	}
	return s.Activity
}
