package model

import (
	"time"
)

// MovementLog records one personnel movement broadcast: who reported it and
// the from/to/time of the move. Names are carried in the broadcast text only.
type MovementLog struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	FromLocation string    `gorm:"type:varchar(255);not null" json:"from_location"`
	ToLocation   string    `gorm:"type:varchar(255);not null" json:"to_location"`
	Time         string    `gorm:"type:varchar(5);not null" json:"time"` // HHMM
	CreatedBy    int64     `gorm:"not null" json:"created_by"`           // telegram id of the reporter
	CreatedAt    time.Time `gorm:"autoCreateTime;index" json:"created_at"`
}
