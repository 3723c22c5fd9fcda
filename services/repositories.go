package services

import (
	"cleanup-platform/models"

	"gorm.io/gorm"
)

// GormActivityRepo answers the evaluators' queries straight from the
// relational store, the single source of truth for accumulated activity.
type GormActivityRepo struct {
	DB *gorm.DB
}

func NewGormActivityRepo(db *gorm.DB) *GormActivityRepo {
	return &GormActivityRepo{DB: db}
}

// TotalPoints sums points across approved participations and approved requests
// plus attended community events.
func (r *GormActivityRepo) TotalPoints(userID string) (int64, error) {
	var participation, request, event int64

	err := r.DB.Model(&models.Participation{}).
		Select("COALESCE(SUM(points_earned), 0)").
		Where("user_id = ? AND status IN ?", userID, []string{models.StatusApproved, models.StatusCompleted}).
		Scan(&participation).Error
	if err != nil {
		return 0, err
	}

	err = r.DB.Model(&models.CleanupRequest{}).
		Select("COALESCE(SUM(reward_points), 0)").
		Where("user_id = ? AND status IN ?", userID, []string{models.StatusApproved, models.StatusCompleted}).
		Scan(&request).Error
	if err != nil {
		return 0, err
	}

	err = r.DB.Model(&models.EventParticipation{}).
		Select("COALESCE(SUM(points_earned), 0)").
		Where("user_id = ? AND attended = true", userID).
		Scan(&event).Error
	if err != nil {
		return 0, err
	}

	return participation + request + event, nil
}

// ActivityCount counts requests submitted plus approved participations.
func (r *GormActivityRepo) ActivityCount(userID string) (int64, error) {
	var requests, participations int64

	if err := r.DB.Model(&models.CleanupRequest{}).
		Where("user_id = ?", userID).
		Count(&requests).Error; err != nil {
		return 0, err
	}

	if err := r.DB.Model(&models.Participation{}).
		Where("user_id = ? AND status IN ?", userID, []string{models.StatusApproved, models.StatusCompleted}).
		Count(&participations).Error; err != nil {
		return 0, err
	}

	return requests + participations, nil
}

func (r *GormActivityRepo) EventsOrganized(userID string) (int64, error) {
	var n int64
	err := r.DB.Model(&models.CommunityEvent{}).
		Where("organizer_id = ?", userID).
		Count(&n).Error
	return n, err
}

func (r *GormActivityRepo) EventsAttended(userID string) (int64, error) {
	var n int64
	err := r.DB.Model(&models.EventParticipation{}).
		Where("user_id = ? AND attended = true", userID).
		Count(&n).Error
	return n, err
}

func (r *GormActivityRepo) DonationsMade(userID string) (int64, error) {
	var n int64
	err := r.DB.Model(&models.Donation{}).
		Where("user_id = ?", userID).
		Count(&n).Error
	return n, err
}

func (r *GormActivityRepo) DonationTotal(userID string) (float64, error) {
	var total float64
	err := r.DB.Model(&models.Donation{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("user_id = ?", userID).
		Scan(&total).Error
	return total, err
}

func (r *GormActivityRepo) ActiveUserIDs() ([]string, error) {
	var ids []string
	err := r.DB.Model(&models.User{}).
		Where("is_active = true").
		Pluck("id", &ids).Error
	return ids, err
}

// GormBadgeRepo persists badge definitions and award records.
type GormBadgeRepo struct {
	DB *gorm.DB
}

func NewGormBadgeRepo(db *gorm.DB) *GormBadgeRepo {
	return &GormBadgeRepo{DB: db}
}

func (r *GormBadgeRepo) ActiveByCriteria(ct models.BadgeCriteriaType) ([]models.BadgeDefinition, error) {
	var defs []models.BadgeDefinition
	err := r.DB.
		Where("criteria_type = ? AND is_active = true", ct).
		Order("criteria_value ASC").
		Find(&defs).Error
	return defs, err
}

func (r *GormBadgeRepo) HasAward(userID, badgeID string) (bool, error) {
	var count int64
	err := r.DB.Model(&models.UserBadge{}).
		Where("user_id = ? AND badge_id = ?", userID, badgeID).
		Count(&count).Error
	return count > 0, err
}

// CreateAward relies on gorm's TranslateError config so a unique-index
// violation surfaces as gorm.ErrDuplicatedKey for the engine to swallow.
func (r *GormBadgeRepo) CreateAward(award *models.UserBadge) error {
	return r.DB.Create(award).Error
}

func (r *GormBadgeRepo) AwardsForUser(userID string) ([]models.UserBadge, error) {
	var awards []models.UserBadge
	err := r.DB.Preload("Badge").
		Where("user_id = ?", userID).
		Order("earned_at DESC").
		Find(&awards).Error
	return awards, err
}
