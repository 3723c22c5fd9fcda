package models

import (
	"time"
)

// BadgeCriteriaType is the category of accumulated activity a badge threshold
// is measured against.
type BadgeCriteriaType string

const (
	CriteriaCount           BadgeCriteriaType = "count"            // requests submitted + approved participations
	CriteriaPoints          BadgeCriteriaType = "points"           // total points across all activity
	CriteriaEventsOrganized BadgeCriteriaType = "events_organized" // community events created
	CriteriaEventsAttended  BadgeCriteriaType = "events_attended"  // community events attended
	CriteriaDonationsMade   BadgeCriteriaType = "donations_made"   // number of donations
	CriteriaDonationAmount  BadgeCriteriaType = "donation_amount"  // total donated amount
	CriteriaSpecial         BadgeCriteriaType = "special"          // awarded manually, never by the engine
)

// BadgeDefinition: static reference data (seeded at startup or created by admins)
type BadgeDefinition struct {
	ID            string            `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	Code          string            `gorm:"uniqueIndex;not null" json:"code"` // slug of Name, e.g. "clean-hundred"
	Name          string            `gorm:"not null" json:"name"`
	Description   string            `json:"description"`
	IconURL       string            `gorm:"type:text" json:"icon_url"`
	CriteriaType  BadgeCriteriaType `gorm:"type:varchar(24);index;not null" json:"criteria_type"`
	CriteriaValue int64             `gorm:"not null" json:"criteria_value"`
	IsActive      bool              `gorm:"default:true" json:"is_active"`
	CreatedAt     time.Time         `gorm:"autoCreateTime" json:"created_at"`
}

// UserBadge: awarded instance. The composite unique index is the idempotency
// contract: at most one row per (user, badge) pair, enforced by the database
// and not just the engine's pre-check.
type UserBadge struct {
	ID       string    `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	UserID   string    `gorm:"uniqueIndex:idx_user_badge;not null" json:"user_id"`
	BadgeID  string    `gorm:"uniqueIndex:idx_user_badge;not null" json:"badge_id"`
	EarnedAt time.Time `gorm:"autoCreateTime" json:"earned_at"`

	Badge BadgeDefinition `gorm:"foreignKey:BadgeID" json:"badge,omitempty"`
}

// DefaultBadges seeds an empty badge table at startup.
var DefaultBadges = []BadgeDefinition{
	{
		Name:          "First Steps",
		Description:   "Completed your first cleanup activity",
		CriteriaType:  CriteriaCount,
		CriteriaValue: 1,
	},
	{
		Name:          "Regular",
		Description:   "Completed 5 cleanup activities",
		CriteriaType:  CriteriaCount,
		CriteriaValue: 5,
	},
	{
		Name:          "Cleanup Veteran",
		Description:   "Completed 25 cleanup activities",
		CriteriaType:  CriteriaCount,
		CriteriaValue: 25,
	},
	{
		Name:          "Point Collector",
		Description:   "Earned 100 points",
		CriteriaType:  CriteriaPoints,
		CriteriaValue: 100,
	},
	{
		Name:          "Point Hoarder",
		Description:   "Earned 1000 points",
		CriteriaType:  CriteriaPoints,
		CriteriaValue: 1000,
	},
	{
		Name:          "Organizer",
		Description:   "Organized a community cleanup event",
		CriteriaType:  CriteriaEventsOrganized,
		CriteriaValue: 1,
	},
	{
		Name:          "Community Pillar",
		Description:   "Attended 10 community events",
		CriteriaType:  CriteriaEventsAttended,
		CriteriaValue: 10,
	},
	{
		Name:          "Supporter",
		Description:   "Made your first donation",
		CriteriaType:  CriteriaDonationsMade,
		CriteriaValue: 1,
	},
	{
		Name:          "Benefactor",
		Description:   "Donated 100 in total",
		CriteriaType:  CriteriaDonationAmount,
		CriteriaValue: 100,
	},
}
