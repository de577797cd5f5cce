package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/campus-portal/internal/models"
	"github.com/yukikurage/campus-portal/internal/repository"
)

func TestAuditService_TrackPage(t *testing.T) {
	db := setupTestDB(t)
	service := NewAuditService(repository.NewLogRepository(db))
	stamped := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	service.now = func() time.Time { return stamped }
	ctx := context.Background()
	user := createTestUser(t, db, "student")

	platform := "iOS"
	err := service.TrackPage(ctx, user.ID, []PageEvent{
		{Type: models.PageView, Page: "/stuinfo/", Client: models.ClientInfo{Platform: &platform}},
		{Type: models.PageDisappear, Page: "/stuinfo/", Time: stamped.Add(time.Minute)},
	})
	require.NoError(t, err)

	var logs []models.PageLog
	require.NoError(t, db.Order("id").Find(&logs).Error)
	require.Len(t, logs, 2)
	assert.True(t, logs[0].Time.Equal(stamped))
	require.NotNil(t, logs[0].Platform)
	assert.Equal(t, "iOS", *logs[0].Platform)
	require.NotNil(t, logs[0].UserID)
	assert.Equal(t, user.ID, *logs[0].UserID)
	assert.True(t, logs[1].Time.Equal(stamped.Add(time.Minute)))
}

func TestAuditService_TrackValidation(t *testing.T) {
	db := setupTestDB(t)
	service := NewAuditService(repository.NewLogRepository(db))
	ctx := context.Background()

	assert.ErrorIs(t, service.TrackPage(ctx, 1, nil), ErrNoEvents)
	assert.ErrorIs(t, service.TrackPage(ctx, 1, []PageEvent{{Type: 2, Page: "/"}}), ErrInvalidEventType)
	assert.ErrorIs(t, service.TrackPage(ctx, 1, []PageEvent{{Type: models.PageView, Page: strings.Repeat("p", 257)}}), ErrEventTooLong)

	long := strings.Repeat("v", 33)
	assert.ErrorIs(t, service.TrackModule(ctx, 1, []ModuleEvent{
		{Type: models.ModuleClick, Page: "/", ModuleName: "nav", Client: models.ClientInfo{ExploreVersion: &long}},
	}), ErrEventTooLong)
	assert.ErrorIs(t, service.TrackModule(ctx, 1, []ModuleEvent{{Type: 0, ModuleName: "nav"}}), ErrInvalidEventType)

	var count int64
	require.NoError(t, db.Model(&models.ModuleLog{}).Count(&count).Error)
	assert.Zero(t, count)

	require.NoError(t, service.TrackModule(ctx, 1, []ModuleEvent{{Type: models.ModuleView, Page: "/", ModuleName: "nav"}}))
	require.NoError(t, db.Model(&models.ModuleLog{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestAuditService_RecordModification(t *testing.T) {
	db := setupTestDB(t)
	service := NewAuditService(repository.NewLogRepository(db))
	ctx := context.Background()
	user := createTestUser(t, db, "alice")

	require.NoError(t, service.RecordModification(ctx, user, &models.Reader{Name: "Alice R."}, "card renewed"))
	require.NoError(t, service.RecordModification(ctx, nil, models.Organization{Name: "Chess Club"}, "created"))

	history, err := service.ModificationHistory(ctx, "alice", 10)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "Reader", history[0].UserType)
	assert.Equal(t, "Alice R.", history[0].Name)
	assert.Equal(t, "card renewed", history[0].Info)
}
