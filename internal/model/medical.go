package model

import (
	"time"
)

// MedicalEvent kinds.
const (
	EventTypeRSO = "RSO" // report sick outside
	EventTypeMA  = "MA"  // medical appointment
	EventTypeRSI = "RSI" // report sick inside
)

// MedicalEvent is a single medical occurrence for a user: a report-sick visit
// or a scheduled appointment. Follow-up fields (diagnosis, endorsement) are
// filled in later by an instructor.
type MedicalEvent struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	UserID          uint      `gorm:"not null;index" json:"user_id"`
	User            *User     `gorm:"foreignKey:UserID" json:"user,omitempty"`
	EventType       string    `gorm:"type:varchar(10);not null;index" json:"event_type"` // RSO, MA, RSI
	AppointmentType string    `gorm:"type:varchar(100)" json:"appointment_type,omitempty"`
	Location        string    `gorm:"type:varchar(255)" json:"location,omitempty"`
	Symptoms        string    `gorm:"type:text" json:"symptoms,omitempty"`
	Diagnosis       string    `gorm:"type:text" json:"diagnosis,omitempty"`
	EndorsedBy      string    `gorm:"type:varchar(255)" json:"endorsed_by,omitempty"`
	EventDatetime   time.Time `gorm:"not null" json:"event_datetime"`
	CreatedAt       time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// HasDiagnosis reports whether the event was already closed out with a
// diagnosis; closed events are never overwritten by a second update.
func (e *MedicalEvent) HasDiagnosis() bool {
	for _, r := range e.Diagnosis {
		if r != ' ' && r != '\t' && r != '\n' {
			return true
		}
	}
	return false
}

// MedicalStatus is an excusal/status window granted off the back of an event
// (e.g. MC, light duty). Active statuses feed the parade state.
type MedicalStatus struct {
	ID            uint          `gorm:"primaryKey" json:"id"`
	UserID        uint          `gorm:"not null;index" json:"user_id"`
	User          *User         `gorm:"foreignKey:UserID" json:"user,omitempty"`
	StatusType    string        `gorm:"type:varchar(50);not null" json:"status_type"`
	Description   string        `gorm:"type:varchar(255);not null" json:"description"`
	StartDate     time.Time     `gorm:"type:date;not null" json:"start_date"`
	EndDate       time.Time     `gorm:"type:date;not null;index" json:"end_date"`
	SourceEventID *uint         `gorm:"index" json:"source_event_id,omitempty"`
	SourceEvent   *MedicalEvent `gorm:"foreignKey:SourceEventID" json:"source_event,omitempty"`
	CreatedAt     time.Time     `gorm:"autoCreateTime" json:"created_at"`
}
