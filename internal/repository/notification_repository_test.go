package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/campus-portal/internal/models"
	"github.com/yukikurage/campus-portal/internal/utils"
	"gorm.io/gorm"
)

func createTestNotification(t *testing.T, db *gorm.DB, senderID, receiverID uint64, status models.NotificationStatus) *models.Notification {
	t.Helper()

	notification := &models.Notification{
		SenderID:   senderID,
		ReceiverID: receiverID,
		Status:     status,
		Title:      models.TitleActivityInform,
		Content:    "content",
	}
	require.NoError(t, db.Create(notification).Error)
	return notification
}

func TestNotificationRepository_ListExcludesDeleted(t *testing.T) {
	db := setupTestDB(t)
	repo := NewNotificationRepository(db)
	ctx := context.Background()

	sender := createTestUser(t, db, "sender")
	receiver := createTestUser(t, db, "receiver")
	other := createTestUser(t, db, "other")

	createTestNotification(t, db, sender.ID, receiver.ID, models.NotificationPending)
	createTestNotification(t, db, sender.ID, receiver.ID, models.NotificationDone)
	createTestNotification(t, db, sender.ID, receiver.ID, models.NotificationDeleted)
	createTestNotification(t, db, sender.ID, other.ID, models.NotificationPending)

	notifications, total, err := repo.List(ctx, NotificationFilter{ReceiverID: receiver.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, notifications, 2)
	for _, n := range notifications {
		assert.NotEqual(t, models.NotificationDeleted, n.Status)
		assert.Equal(t, receiver.ID, n.ReceiverID)
	}

	pending := models.NotificationPending
	notifications, total, err = repo.List(ctx, NotificationFilter{ReceiverID: receiver.ID, Status: &pending})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Len(t, notifications, 1)

	notifications, total, err = repo.List(ctx, NotificationFilter{
		ReceiverID: receiver.ID,
		Pagination: utils.NewPaginationParams(1, 1),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, notifications, 1)
}

func TestNotificationRepository_Transition(t *testing.T) {
	db := setupTestDB(t)
	repo := NewNotificationRepository(db)
	ctx := context.Background()

	sender := createTestUser(t, db, "sender")
	receiver := createTestUser(t, db, "receiver")
	notification := createTestNotification(t, db, sender.ID, receiver.ID, models.NotificationPending)
	at := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	done, err := repo.Transition(ctx, notification.ID, receiver.ID, models.NotificationDone, at)
	require.NoError(t, err)
	assert.Equal(t, models.NotificationDone, done.Status)
	require.NotNil(t, done.FinishTime)

	stored, err := repo.FindByID(ctx, notification.ID)
	require.NoError(t, err)
	assert.Equal(t, models.NotificationDone, stored.Status)
	require.NotNil(t, stored.FinishTime)

	_, err = repo.Transition(ctx, notification.ID, receiver.ID, models.NotificationDeleted, at)
	assert.ErrorIs(t, err, ErrInvalidNotificationTransition)
}

func TestNotificationRepository_TransitionWrongReceiver(t *testing.T) {
	db := setupTestDB(t)
	repo := NewNotificationRepository(db)

	sender := createTestUser(t, db, "sender")
	receiver := createTestUser(t, db, "receiver")
	notification := createTestNotification(t, db, sender.ID, receiver.ID, models.NotificationPending)

	_, err := repo.Transition(context.Background(), notification.ID, sender.ID, models.NotificationDeleted, time.Now())
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestNotificationRepository_DeleteBulk(t *testing.T) {
	db := setupTestDB(t)
	repo := NewNotificationRepository(db)
	ctx := context.Background()

	sender := createTestUser(t, db, "sender")
	first := createTestUser(t, db, "first")
	second := createTestUser(t, db, "second")

	batch := []models.Notification{
		{SenderID: sender.ID, ReceiverID: first.ID, Status: models.NotificationPending, BulkIdentifier: "bulk-1"},
		{SenderID: sender.ID, ReceiverID: second.ID, Status: models.NotificationDone, BulkIdentifier: "bulk-1"},
		{SenderID: sender.ID, ReceiverID: second.ID, Status: models.NotificationPending, BulkIdentifier: "bulk-2"},
	}
	require.NoError(t, repo.CreateBatch(ctx, batch))

	deleted, err := repo.DeleteBulk(ctx, sender.ID, "bulk-1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	var statuses []models.NotificationStatus
	require.NoError(t, db.Model(&models.Notification{}).Order("id").Pluck("status", &statuses).Error)
	assert.Equal(t, []models.NotificationStatus{
		models.NotificationDeleted,
		models.NotificationDone,
		models.NotificationPending,
	}, statuses)
}

func TestNotificationRepository_TransitionLocksRow(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewNotificationRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "notifications" WHERE \(?id = \$1 AND receiver_id = \$2\)? .*FOR UPDATE`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "receiver_id", "sender_id", "status"}).AddRow(5, 2, 1, models.NotificationDone))
	mock.ExpectRollback()

	_, err := repo.Transition(context.Background(), 5, 2, models.NotificationDeleted, time.Now())
	assert.ErrorIs(t, err, ErrInvalidNotificationTransition)
	require.NoError(t, mock.ExpectationsWereMet())
}
