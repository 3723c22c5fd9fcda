package models

import "time"

type NotificationType string

const (
	NotifBadgeAwarded  NotificationType = "BADGE_AWARDED"
	NotifStatusChanged NotificationType = "STATUS_CHANGED"
	NotifGeneral       NotificationType = "GENERAL"
)

// Notification is a durable user-facing message. CreatedAt is always set by
// the service; ReadAt is only ever set together with IsRead flipping true.
type Notification struct {
	ID       string           `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	UserID   string           `gorm:"index;not null" json:"user_id"`
	Type     NotificationType `gorm:"type:varchar(32);default:'GENERAL'" json:"type"`
	Title    string           `gorm:"not null" json:"title"`
	Message  string           `json:"message"`
	IsRead   bool             `gorm:"default:false;index" json:"is_read"`
	IsPushed bool             `gorm:"default:false" json:"is_pushed"`

	ReadAt    *time.Time `json:"read_at,omitempty"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
}
