package models

// Donation is a completed monetary contribution. Payment-intent creation is
// handled by the payments collaborator; only settled donations land here.
type Donation struct {
	ID       string  `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	UserID   string  `gorm:"index;not null" json:"user_id"`
	Amount   float64 `gorm:"not null" json:"amount"`
	Currency string  `gorm:"type:varchar(8);default:'EUR'" json:"currency"`

	User User `gorm:"foreignKey:UserID" json:"-"`

	Timestamps
}

// TrainingRun is the bookkeeping row written each time the pricing model is
// retrained by the scheduler.
type TrainingRun struct {
	ID          string `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	SampleCount int64  `json:"sample_count"`

	Timestamps
}
