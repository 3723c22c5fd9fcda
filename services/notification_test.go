package services

import (
	"testing"
	"time"

	"cleanup-platform/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRecords_BulkSemantics(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	reqs := []NotificationRequest{
		{UserID: "u1", Type: models.NotifBadgeAwarded, Title: "Badge!", Message: "earned"},
		{UserID: "u2", Type: models.NotifStatusChanged, Title: "Approved"},
		{UserID: "u3", Title: "Plain"},
	}

	records := newRecords(reqs, now)

	require.Len(t, records, len(reqs))
	for i, r := range records {
		assert.Equal(t, reqs[i].UserID, r.UserID)
		assert.Equal(t, now, r.CreatedAt, "CreatedAt must be server-set")
		assert.False(t, r.IsRead, "IsRead must default false")
		assert.Nil(t, r.ReadAt, "ReadAt is only set together with IsRead")
	}

	// Untyped requests fall back to the general type.
	assert.Equal(t, models.NotifGeneral, records[2].Type)
}

func TestNewRecords_Empty(t *testing.T) {
	assert.Empty(t, newRecords(nil, time.Now()))
}
