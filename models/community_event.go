package models

import "time"

// CommunityEvent is an organized group cleanup (distinct from ad-hoc requests).
type CommunityEvent struct {
	ID          string    `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	OrganizerID string    `gorm:"index;not null" json:"organizer_id"`
	Title       string    `gorm:"not null" json:"title"`
	Description string    `json:"description"`
	Location    string    `json:"location"`
	StartsAt    time.Time `json:"starts_at"`

	Organizer User `gorm:"foreignKey:OrganizerID" json:"-"`

	Timestamps
}

// EventParticipation records attendance at a community event.
type EventParticipation struct {
	ID           string `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	EventID      string `gorm:"index;not null" json:"event_id"`
	UserID       string `gorm:"index;not null" json:"user_id"`
	Attended     bool   `gorm:"default:false" json:"attended"`
	PointsEarned int64  `gorm:"default:0" json:"points_earned"`

	Event CommunityEvent `gorm:"foreignKey:EventID" json:"-"`
	User  User           `gorm:"foreignKey:UserID" json:"-"`

	Timestamps
}
