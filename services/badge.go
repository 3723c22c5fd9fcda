package services

import (
	"errors"
	"fmt"
	"log"

	"cleanup-platform/models"

	"gorm.io/gorm"
)

// ActivityRepo exposes the slices of accumulated user activity the criteria
// evaluators compare against badge thresholds.
type ActivityRepo interface {
	TotalPoints(userID string) (int64, error)
	ActivityCount(userID string) (int64, error)
	EventsOrganized(userID string) (int64, error)
	EventsAttended(userID string) (int64, error)
	DonationsMade(userID string) (int64, error)
	DonationTotal(userID string) (float64, error)
	ActiveUserIDs() ([]string, error)
}

// BadgeRepo reads badge definitions and writes award records.
type BadgeRepo interface {
	ActiveByCriteria(ct models.BadgeCriteriaType) ([]models.BadgeDefinition, error)
	HasAward(userID, badgeID string) (bool, error)
	CreateAward(award *models.UserBadge) error
	AwardsForUser(userID string) ([]models.UserBadge, error)
}

// AwardNotifier is the slice of the notification sink the engine needs.
type AwardNotifier interface {
	CreateOne(req NotificationRequest) (*models.Notification, error)
}

// criteriaEvaluator computes the current value of one activity slice for a
// user. A closed set of these, keyed by criteria type, replaces string
// branching in the award loop.
type criteriaEvaluator func(userID string) (float64, error)

// BadgeService evaluates which badge thresholds a user newly satisfies and
// awards them exactly once. Awards are monotonic: once earned, never revoked,
// even if a later data correction would disqualify the user.
type BadgeService struct {
	Activity ActivityRepo
	Badges   BadgeRepo
	Notify   AwardNotifier
}

func NewBadgeService(activity ActivityRepo, badges BadgeRepo, notify AwardNotifier) *BadgeService {
	return &BadgeService{Activity: activity, Badges: badges, Notify: notify}
}

// evaluationOrder fixes the criteria sweep order. CriteriaSpecial is absent on
// purpose: special badges are granted manually, never by the engine.
var evaluationOrder = []models.BadgeCriteriaType{
	models.CriteriaCount,
	models.CriteriaPoints,
	models.CriteriaEventsOrganized,
	models.CriteriaEventsAttended,
	models.CriteriaDonationsMade,
	models.CriteriaDonationAmount,
}

func (s *BadgeService) evaluator(ct models.BadgeCriteriaType) criteriaEvaluator {
	switch ct {
	case models.CriteriaCount:
		return asFloat(s.Activity.ActivityCount)
	case models.CriteriaPoints:
		return asFloat(s.Activity.TotalPoints)
	case models.CriteriaEventsOrganized:
		return asFloat(s.Activity.EventsOrganized)
	case models.CriteriaEventsAttended:
		return asFloat(s.Activity.EventsAttended)
	case models.CriteriaDonationsMade:
		return asFloat(s.Activity.DonationsMade)
	case models.CriteriaDonationAmount:
		return s.Activity.DonationTotal
	default:
		return nil
	}
}

func asFloat(fn func(string) (int64, error)) criteriaEvaluator {
	return func(userID string) (float64, error) {
		n, err := fn(userID)
		return float64(n), err
	}
}

// EvaluateUser runs every criteria evaluator for one user and awards each
// active badge whose threshold the current value meets. Safe to call
// arbitrarily often; re-runs are no-ops for already-earned badges.
func (s *BadgeService) EvaluateUser(userID string) ([]models.BadgeDefinition, error) {
	var awarded []models.BadgeDefinition

	for _, ct := range evaluationOrder {
		eval := s.evaluator(ct)
		if eval == nil {
			log.Printf("[Badges] no evaluator for criteria type %q, skipping", ct)
			continue
		}

		defs, err := s.Badges.ActiveByCriteria(ct)
		if err != nil {
			return awarded, fmt.Errorf("load %s badges: %w", ct, err)
		}
		if len(defs) == 0 {
			continue
		}

		value, err := eval(userID)
		if err != nil {
			return awarded, fmt.Errorf("evaluate %s for user %s: %w", ct, userID, err)
		}

		// defs come back ascending by threshold; everything at or below the
		// current value qualifies.
		for _, def := range defs {
			if value < float64(def.CriteriaValue) {
				break
			}
			ok, err := s.award(userID, def)
			if err != nil {
				return awarded, err
			}
			if ok {
				awarded = append(awarded, def)
			}
		}
	}

	return awarded, nil
}

// award grants one badge to one user at most once. The pre-check keeps re-runs
// cheap; the unique (user, badge) index is the real guard, so a duplicate-key
// error from a concurrent evaluation counts as "already awarded".
func (s *BadgeService) award(userID string, def models.BadgeDefinition) (bool, error) {
	has, err := s.Badges.HasAward(userID, def.ID)
	if err != nil {
		return false, fmt.Errorf("check award %s/%s: %w", userID, def.Code, err)
	}
	if has {
		return false, nil
	}

	err = s.Badges.CreateAward(&models.UserBadge{UserID: userID, BadgeID: def.ID})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("create award %s/%s: %w", userID, def.Code, err)
	}

	log.Printf("[Badges] 🎖️ awarded %q to user %s", def.Name, userID)

	if _, err := s.Notify.CreateOne(NotificationRequest{
		UserID:  userID,
		Type:    models.NotifBadgeAwarded,
		Title:   fmt.Sprintf("You earned the %q badge!", def.Name),
		Message: def.Description,
	}); err != nil {
		// The award stands; only the notification is lost.
		log.Printf("[Badges] notification for %q/%s failed: %v", def.Code, userID, err)
	}

	return true, nil
}

// EvaluateAllUsers sweeps the active user population. One user's failure is
// logged and does not abort the rest of the batch.
func (s *BadgeService) EvaluateAllUsers() (evaluated, failed int) {
	ids, err := s.Activity.ActiveUserIDs()
	if err != nil {
		log.Printf("[Badges] failed to list active users: %v", err)
		return 0, 0
	}

	for _, id := range ids {
		if _, err := s.EvaluateUser(id); err != nil {
			failed++
			log.Printf("[Badges] evaluation failed for user %s: %v", id, err)
			continue
		}
		evaluated++
	}

	log.Printf("[Badges] sweep done: %d users evaluated, %d failed", evaluated, failed)
	return evaluated, failed
}
