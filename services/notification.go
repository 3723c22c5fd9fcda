package services

import (
	"time"

	"cleanup-platform/models"

	"gorm.io/gorm"
)

// NotificationRequest is what callers hand the sink; everything else
// (CreatedAt, IsRead) is set server-side.
type NotificationRequest struct {
	UserID  string
	Type    models.NotificationType
	Title   string
	Message string
}

type NotificationService struct {
	DB *gorm.DB
}

func NewNotificationService(db *gorm.DB) *NotificationService {
	return &NotificationService{DB: db}
}

// newRecords materializes requests into rows. CreatedAt is stamped here, not
// taken from the caller; IsRead always starts false.
func newRecords(reqs []NotificationRequest, now time.Time) []models.Notification {
	records := make([]models.Notification, 0, len(reqs))
	for _, req := range reqs {
		t := req.Type
		if t == "" {
			t = models.NotifGeneral
		}
		records = append(records, models.Notification{
			UserID:    req.UserID,
			Type:      t,
			Title:     req.Title,
			Message:   req.Message,
			IsRead:    false,
			CreatedAt: now,
		})
	}
	return records
}

func (s *NotificationService) CreateOne(req NotificationRequest) (*models.Notification, error) {
	records := newRecords([]NotificationRequest{req}, time.Now().UTC())
	if err := s.DB.Create(&records[0]).Error; err != nil {
		return nil, err
	}
	return &records[0], nil
}

// CreateMany inserts all requests in one transaction and returns the created
// records; a failing insert rolls back the whole batch.
func (s *NotificationService) CreateMany(reqs []NotificationRequest) ([]models.Notification, error) {
	if len(reqs) == 0 {
		return nil, nil
	}
	records := newRecords(reqs, time.Now().UTC())
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		return tx.Create(&records).Error
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}

// MarkRead flips one notification read, stamping ReadAt in the same update.
// Returns false when no such notification exists.
func (s *NotificationService) MarkRead(id string) (bool, error) {
	now := time.Now().UTC()
	res := s.DB.Model(&models.Notification{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"is_read": true, "read_at": now})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// MarkAllRead flips every unread notification of a user, returning the count.
func (s *NotificationService) MarkAllRead(userID string) (int64, error) {
	now := time.Now().UTC()
	res := s.DB.Model(&models.Notification{}).
		Where("user_id = ? AND is_read = false", userID).
		Updates(map[string]interface{}{"is_read": true, "read_at": now})
	return res.RowsAffected, res.Error
}

func (s *NotificationService) ListForUser(userID string, unreadOnly bool) ([]models.Notification, error) {
	q := s.DB.Where("user_id = ?", userID).Order("created_at DESC")
	if unreadOnly {
		q = q.Where("is_read = false")
	}
	var notifications []models.Notification
	err := q.Find(&notifications).Error
	return notifications, err
}
