package services

import (
	"errors"
	"testing"

	"cleanup-platform/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// --- mocks ---

type mockActivityRepo struct{ mock.Mock }

func (m *mockActivityRepo) TotalPoints(userID string) (int64, error) {
	args := m.Called(userID)
	return args.Get(0).(int64), args.Error(1)
}
func (m *mockActivityRepo) ActivityCount(userID string) (int64, error) {
	args := m.Called(userID)
	return args.Get(0).(int64), args.Error(1)
}
func (m *mockActivityRepo) EventsOrganized(userID string) (int64, error) {
	args := m.Called(userID)
	return args.Get(0).(int64), args.Error(1)
}
func (m *mockActivityRepo) EventsAttended(userID string) (int64, error) {
	args := m.Called(userID)
	return args.Get(0).(int64), args.Error(1)
}
func (m *mockActivityRepo) DonationsMade(userID string) (int64, error) {
	args := m.Called(userID)
	return args.Get(0).(int64), args.Error(1)
}
func (m *mockActivityRepo) DonationTotal(userID string) (float64, error) {
	args := m.Called(userID)
	return args.Get(0).(float64), args.Error(1)
}
func (m *mockActivityRepo) ActiveUserIDs() ([]string, error) {
	args := m.Called()
	return args.Get(0).([]string), args.Error(1)
}

type mockBadgeRepo struct{ mock.Mock }

func (m *mockBadgeRepo) ActiveByCriteria(ct models.BadgeCriteriaType) ([]models.BadgeDefinition, error) {
	args := m.Called(ct)
	return args.Get(0).([]models.BadgeDefinition), args.Error(1)
}
func (m *mockBadgeRepo) HasAward(userID, badgeID string) (bool, error) {
	args := m.Called(userID, badgeID)
	return args.Bool(0), args.Error(1)
}
func (m *mockBadgeRepo) CreateAward(award *models.UserBadge) error {
	return m.Called(award).Error(0)
}
func (m *mockBadgeRepo) AwardsForUser(userID string) ([]models.UserBadge, error) {
	args := m.Called(userID)
	return args.Get(0).([]models.UserBadge), args.Error(1)
}

type mockNotifier struct{ mock.Mock }

func (m *mockNotifier) CreateOne(req NotificationRequest) (*models.Notification, error) {
	args := m.Called(req)
	if n, _ := args.Get(0).(*models.Notification); n != nil {
		return n, args.Error(1)
	}
	return nil, args.Error(1)
}

// --- helpers ---

func countBadge(id string, threshold int64) models.BadgeDefinition {
	return models.BadgeDefinition{
		ID:            id,
		Code:          "badge-" + id,
		Name:          "Badge " + id,
		Description:   "test badge",
		CriteriaType:  models.CriteriaCount,
		CriteriaValue: threshold,
		IsActive:      true,
	}
}

// onlyCountBadges registers one Count definition list and empty lists for
// every other criteria type.
func onlyCountBadges(br *mockBadgeRepo, defs ...models.BadgeDefinition) {
	br.On("ActiveByCriteria", models.CriteriaCount).Return(defs, nil)
	br.On("ActiveByCriteria", mock.Anything).Return([]models.BadgeDefinition{}, nil)
}

// --- threshold boundary ---

func TestEvaluateUser_BelowThresholdNoAward(t *testing.T) {
	ar := &mockActivityRepo{}
	ar.On("ActivityCount", "u1").Return(int64(4), nil)

	br := &mockBadgeRepo{}
	onlyCountBadges(br, countBadge("b1", 5))

	nf := &mockNotifier{}

	svc := NewBadgeService(ar, br, nf)
	awarded, err := svc.EvaluateUser("u1")

	require.NoError(t, err)
	assert.Empty(t, awarded)
	br.AssertNotCalled(t, "CreateAward", mock.Anything)
	nf.AssertNotCalled(t, "CreateOne", mock.Anything)
}

func TestEvaluateUser_AtThresholdAwards(t *testing.T) {
	ar := &mockActivityRepo{}
	ar.On("ActivityCount", "u1").Return(int64(5), nil)

	br := &mockBadgeRepo{}
	onlyCountBadges(br, countBadge("b1", 5))
	br.On("HasAward", "u1", "b1").Return(false, nil)
	br.On("CreateAward", mock.Anything).Return(nil)

	nf := &mockNotifier{}
	nf.On("CreateOne", mock.Anything).Return(&models.Notification{ID: "n1"}, nil)

	svc := NewBadgeService(ar, br, nf)
	awarded, err := svc.EvaluateUser("u1")

	require.NoError(t, err)
	require.Len(t, awarded, 1)
	assert.Equal(t, "b1", awarded[0].ID)

	br.AssertCalled(t, "CreateAward", mock.MatchedBy(func(ub *models.UserBadge) bool {
		return ub.UserID == "u1" && ub.BadgeID == "b1"
	}))
	nf.AssertCalled(t, "CreateOne", mock.MatchedBy(func(req NotificationRequest) bool {
		return req.UserID == "u1" && req.Type == models.NotifBadgeAwarded
	}))
}

// ascending thresholds: a count of 5 earns the 1- and 5-badges, not the 25 one.
func TestEvaluateUser_AscendingThresholds(t *testing.T) {
	ar := &mockActivityRepo{}
	ar.On("ActivityCount", "u1").Return(int64(5), nil)

	br := &mockBadgeRepo{}
	onlyCountBadges(br, countBadge("b1", 1), countBadge("b5", 5), countBadge("b25", 25))
	br.On("HasAward", "u1", mock.Anything).Return(false, nil)
	br.On("CreateAward", mock.Anything).Return(nil)

	nf := &mockNotifier{}
	nf.On("CreateOne", mock.Anything).Return(&models.Notification{}, nil)

	svc := NewBadgeService(ar, br, nf)
	awarded, err := svc.EvaluateUser("u1")

	require.NoError(t, err)
	require.Len(t, awarded, 2)
	assert.Equal(t, "b1", awarded[0].ID)
	assert.Equal(t, "b5", awarded[1].ID)
	br.AssertNumberOfCalls(t, "CreateAward", 2)
}

// --- idempotent award ---

func TestEvaluateUser_RepeatRunIsNoOp(t *testing.T) {
	ar := &mockActivityRepo{}
	ar.On("ActivityCount", "u1").Return(int64(100), nil)

	br := &mockBadgeRepo{}
	onlyCountBadges(br, countBadge("b1", 100))
	br.On("HasAward", "u1", "b1").Return(false, nil).Once()
	br.On("HasAward", "u1", "b1").Return(true, nil)
	br.On("CreateAward", mock.Anything).Return(nil)

	nf := &mockNotifier{}
	nf.On("CreateOne", mock.Anything).Return(&models.Notification{}, nil)

	svc := NewBadgeService(ar, br, nf)

	first, err := svc.EvaluateUser("u1")
	require.NoError(t, err)
	require.Len(t, first, 1)

	second, err := svc.EvaluateUser("u1")
	require.NoError(t, err)
	assert.Empty(t, second)

	br.AssertNumberOfCalls(t, "CreateAward", 1)
	nf.AssertNumberOfCalls(t, "CreateOne", 1)
}

// A concurrent evaluation can win the insert between check and create; the
// duplicate-key error counts as already awarded.
func TestEvaluateUser_DuplicateInsertTreatedAsAwarded(t *testing.T) {
	ar := &mockActivityRepo{}
	ar.On("ActivityCount", "u1").Return(int64(10), nil)

	br := &mockBadgeRepo{}
	onlyCountBadges(br, countBadge("b1", 10))
	br.On("HasAward", "u1", "b1").Return(false, nil)
	br.On("CreateAward", mock.Anything).Return(gorm.ErrDuplicatedKey)

	nf := &mockNotifier{}

	svc := NewBadgeService(ar, br, nf)
	awarded, err := svc.EvaluateUser("u1")

	require.NoError(t, err)
	assert.Empty(t, awarded)
	nf.AssertNotCalled(t, "CreateOne", mock.Anything)
}

// --- monotonic award ---

// Even when the current value no longer qualifies, an existing award stays:
// the engine only ever inserts, it has no revoke path.
func TestEvaluateUser_NeverRevokes(t *testing.T) {
	ar := &mockActivityRepo{}
	ar.On("ActivityCount", "u1").Return(int64(2), nil) // dropped below 5 after a data correction

	br := &mockBadgeRepo{}
	onlyCountBadges(br, countBadge("b1", 5))

	nf := &mockNotifier{}

	svc := NewBadgeService(ar, br, nf)
	awarded, err := svc.EvaluateUser("u1")

	require.NoError(t, err)
	assert.Empty(t, awarded)
	// No delete surface exists at all; the strongest assertion available is
	// that not a single write went to the badge repo.
	br.AssertNotCalled(t, "CreateAward", mock.Anything)
}

// --- award notification failure ---

func TestEvaluateUser_NotificationFailureKeepsAward(t *testing.T) {
	ar := &mockActivityRepo{}
	ar.On("ActivityCount", "u1").Return(int64(10), nil)

	br := &mockBadgeRepo{}
	onlyCountBadges(br, countBadge("b1", 10))
	br.On("HasAward", "u1", "b1").Return(false, nil)
	br.On("CreateAward", mock.Anything).Return(nil)

	nf := &mockNotifier{}
	nf.On("CreateOne", mock.Anything).Return(nil, errors.New("db down"))

	svc := NewBadgeService(ar, br, nf)
	awarded, err := svc.EvaluateUser("u1")

	require.NoError(t, err)
	require.Len(t, awarded, 1)
}

// --- full-population sweep ---

func TestEvaluateAllUsers_OneFailureDoesNotAbortBatch(t *testing.T) {
	ar := &mockActivityRepo{}
	ar.On("ActiveUserIDs").Return([]string{"u1", "u2", "u3"}, nil)
	ar.On("ActivityCount", "u2").Return(int64(0), errors.New("query timeout"))
	ar.On("ActivityCount", mock.Anything).Return(int64(0), nil)
	ar.On("TotalPoints", mock.Anything).Return(int64(0), nil)
	ar.On("EventsOrganized", mock.Anything).Return(int64(0), nil)
	ar.On("EventsAttended", mock.Anything).Return(int64(0), nil)
	ar.On("DonationsMade", mock.Anything).Return(int64(0), nil)
	ar.On("DonationTotal", mock.Anything).Return(float64(0), nil)

	br := &mockBadgeRepo{}
	onlyCountBadges(br, countBadge("b1", 1))
	br.On("HasAward", mock.Anything, mock.Anything).Return(false, nil)

	nf := &mockNotifier{}

	svc := NewBadgeService(ar, br, nf)
	evaluated, failed := svc.EvaluateAllUsers()

	assert.Equal(t, 2, evaluated)
	assert.Equal(t, 1, failed)
}
