package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/campus-portal/internal/models"
	"github.com/yukikurage/campus-portal/internal/registry"
	"github.com/yukikurage/campus-portal/internal/repository"
	"github.com/yukikurage/campus-portal/internal/utils"
	"gorm.io/gorm"
)

func newTestLibraryService(t *testing.T, db *gorm.DB) *LibraryService {
	t.Helper()

	reg, err := registry.Default(db)
	require.NoError(t, err)
	return NewLibraryService(repository.NewLibraryRepository(db), reg)
}

func TestLibraryService_LendInfo(t *testing.T) {
	db := setupTestDB(t)
	service := newTestLibraryService(t, db)
	ctx := context.Background()

	user := createTestUser(t, db, "2021010001")
	require.NoError(t, db.Create(&models.Person{UserID: user.ID, Name: "Li Hua"}).Error)

	reader := &models.Reader{StudentID: "2021010001", Name: "Li Hua"}
	require.NoError(t, db.Create(reader).Error)
	book := &models.Book{IdentityCode: "TP311", Title: "The Go Programming Language"}
	require.NoError(t, db.Create(book).Error)

	now := time.Now()
	require.NoError(t, db.Create(&[]models.LendRecord{
		{ReaderID: reader.ID, BookID: book.ID, LendTime: now.Add(-72 * time.Hour), Returned: true, ReturnTime: &now},
		{ReaderID: reader.ID, BookID: book.ID, LendTime: now.Add(-24 * time.Hour)},
		{ReaderID: reader.ID, BookID: book.ID, LendTime: now, Status: models.LendOvertime},
	}).Error)

	infos, err := service.LendInfo(ctx, user)
	require.NoError(t, err)
	require.Len(t, infos, 1)
	assert.Equal(t, reader.ID, infos[0].Reader.ID)
	assert.Len(t, infos[0].Returned, 1)
	assert.Len(t, infos[0].NotReturned, 2)

	overtime, err := service.Records(ctx, reader.ID, nil, models.LendOvertime)
	require.NoError(t, err)
	assert.Len(t, overtime, 1)
}

func TestLibraryService_LendInfoErrors(t *testing.T) {
	db := setupTestDB(t)
	service := newTestLibraryService(t, db)
	ctx := context.Background()

	club := createTestUser(t, db, "club")
	require.NoError(t, db.Create(&models.Organization{UserID: club.ID, Name: "Chess Club"}).Error)
	_, err := service.LendInfo(ctx, club)
	assert.ErrorIs(t, err, ErrPersonAccountRequired)

	student := createTestUser(t, db, "2021010002")
	require.NoError(t, db.Create(&models.Person{UserID: student.ID, Name: "No Card"}).Error)
	_, err = service.LendInfo(ctx, student)
	assert.ErrorIs(t, err, ErrNoLinkedReader)
}

func TestLibraryService_SearchBooks(t *testing.T) {
	db := setupTestDB(t)
	service := newTestLibraryService(t, db)

	require.NoError(t, db.Create(&[]models.Book{
		{IdentityCode: "TP311", Title: "The Go Programming Language", Returned: true},
		{IdentityCode: "I247", Title: "Dream of the Red Chamber", Returned: true},
	}).Error)

	books, total, err := service.SearchBooks(context.Background(), "Chamber", utils.NewPaginationParams(1, 20))
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, books, 1)
	assert.Equal(t, "I247", books[0].IdentityCode)
}

func TestLibraryService_PersonLendInfo(t *testing.T) {
	db := setupTestDB(t)
	service := newTestLibraryService(t, db)
	ctx := context.Background()

	user := createTestUser(t, db, "2021010003")
	person := models.Person{UserID: user.ID, Name: "Wang Fang"}
	require.NoError(t, db.Create(&person).Error)
	reader := &models.Reader{StudentID: "2021010003", Name: "Wang Fang"}
	require.NoError(t, db.Create(reader).Error)

	infos, err := service.PersonLendInfo(ctx, person, user.Username)
	require.NoError(t, err)
	require.Len(t, infos, 1)
	assert.Equal(t, reader.ID, infos[0].Reader.ID)

	_, err = service.PersonLendInfo(ctx, &models.Organization{UserID: user.ID, Name: "Chess Club"}, user.Username)
	assert.ErrorIs(t, err, ErrPersonAccountRequired)
}
