package models

// Request/participation statuses shared across the pipeline.
const (
	StatusPending   = "pending"
	StatusApproved  = "approved"
	StatusDenied    = "denied"
	StatusCompleted = "completed"
)

// CleanupRequest is a reported cleanup spot: a user flags a location, the
// community cleans it, admins approve the result.
type CleanupRequest struct {
	ID          string `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	UserID      string `gorm:"index;not null" json:"user_id"`
	Title       string `gorm:"not null" json:"title"`
	Description string `json:"description"`
	Location    string `json:"location"`
	Status      string `gorm:"type:varchar(16);default:'pending';index" json:"status"`

	// Reward granted when the request is approved/completed.
	RewardPoints int64   `gorm:"default:0" json:"reward_points"`
	RewardAmount float64 `gorm:"default:0" json:"reward_amount"`

	// Estimated payout from the pricing model (model internals out of scope here).
	SuggestedPrice *float64 `json:"suggested_price,omitempty"`

	User User `gorm:"foreignKey:UserID" json:"-"`

	Timestamps
}

// Participation is a user's claimed share of a cleanup request, submitted with
// proof of activity and reviewed by an admin.
type Participation struct {
	ID        string `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	RequestID string `gorm:"index;not null" json:"request_id"`
	UserID    string `gorm:"index;not null" json:"user_id"`
	Status    string `gorm:"type:varchar(16);default:'pending';index" json:"status"`
	Notes     string `json:"notes"`

	ProofPhotoURL *string `json:"proof_photo_url,omitempty"`

	// Granted on approval.
	RewardAmount float64 `gorm:"default:0" json:"reward_amount"`
	PointsEarned int64   `gorm:"default:0" json:"points_earned"`

	Request CleanupRequest `gorm:"foreignKey:RequestID" json:"-"`
	User    User           `gorm:"foreignKey:UserID" json:"-"`

	Timestamps
}
