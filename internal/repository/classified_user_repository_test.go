package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/yukikurage/campus-portal/internal/constants"
	"github.com/yukikurage/campus-portal/internal/models"
	"gorm.io/gorm"
)

type ClassifiedUserRepositoryTestSuite struct {
	suite.Suite
	db      *gorm.DB
	ctx     context.Context
	persons *ClassifiedUserRepository[models.Person]
	orgs    *ClassifiedUserRepository[models.Organization]
	readers *ClassifiedUserRepository[models.Reader]
}

func (s *ClassifiedUserRepositoryTestSuite) SetupTest() {
	s.db = setupTestDB(s.T())
	s.ctx = context.Background()
	s.persons = NewClassifiedUserRepository[models.Person](s.db)
	s.orgs = NewClassifiedUserRepository[models.Organization](s.db)
	s.readers = NewClassifiedUserRepository[models.Reader](s.db)
}

func (s *ClassifiedUserRepositoryTestSuite) createPerson(user *models.User, name string, status models.PersonStatus) *models.Person {
	person := &models.Person{UserID: user.ID, Name: name, Status: status}
	s.Require().NoError(s.db.Create(person).Error)
	return person
}

func (s *ClassifiedUserRepositoryTestSuite) createReader(user *models.User, name string, expires *time.Time) *models.Reader {
	reader := &models.Reader{Name: name, StudentID: "s-" + name, CardExpiresAt: expires}
	if user != nil {
		reader.UserID = &user.ID
	}
	s.Require().NoError(s.db.Create(reader).Error)
	return reader
}

func (s *ClassifiedUserRepositoryTestSuite) TestUserType() {
	s.Equal(constants.UserTypePerson, s.persons.UserType())
	s.Equal(constants.UserTypeOrganization, s.orgs.UserType())
	s.Equal(constants.UserTypeReader, s.readers.UserType())
}

func (s *ClassifiedUserRepositoryTestSuite) TestByUser_Found() {
	user := createTestUser(s.T(), s.db, "li")
	s.createPerson(user, "Li Hua", models.PersonStudying)

	person, err := s.persons.ByUser(s.ctx, user.ID, LookupOptions{})
	s.Require().NoError(err)
	s.Equal("Li Hua", person.Name)
	s.Equal(user.ID, person.UserID)
}

func (s *ClassifiedUserRepositoryTestSuite) TestByUser_NotFound() {
	user := createTestUser(s.T(), s.db, "nobody")

	_, err := s.persons.ByUser(s.ctx, user.ID, LookupOptions{})
	s.ErrorIs(err, ErrClassifiedUserNotFound)

	_, err = s.readers.ByUser(s.ctx, user.ID, LookupOptions{Update: true, Active: true})
	s.ErrorIs(err, ErrClassifiedUserNotFound)
}

func (s *ClassifiedUserRepositoryTestSuite) TestByUser_Ambiguous() {
	user := createTestUser(s.T(), s.db, "twice")
	s.createReader(user, "first", nil)
	s.createReader(user, "second", nil)

	_, err := s.readers.ByUser(s.ctx, user.ID, LookupOptions{})
	s.ErrorIs(err, ErrAmbiguousClassifiedUser)
	s.False(errors.Is(err, ErrClassifiedUserNotFound))
}

func (s *ClassifiedUserRepositoryTestSuite) TestByUser_ActiveOnly() {
	graduate := createTestUser(s.T(), s.db, "graduate")
	s.createPerson(graduate, "Old Timer", models.PersonGraduated)

	person, err := s.persons.ByUser(s.ctx, graduate.ID, LookupOptions{})
	s.Require().NoError(err)
	s.Equal(models.PersonGraduated, person.Status)

	_, err = s.persons.ByUser(s.ctx, graduate.ID, LookupOptions{Active: true})
	s.ErrorIs(err, ErrClassifiedUserNotFound)
}

func (s *ClassifiedUserRepositoryTestSuite) TestByUser_SoftDeletedExcluded() {
	user := createTestUser(s.T(), s.db, "deleted")
	person := s.createPerson(user, "Gone", models.PersonStudying)
	s.Require().NoError(s.db.Delete(person).Error)

	_, err := s.persons.ByUser(s.ctx, user.ID, LookupOptions{})
	s.ErrorIs(err, ErrClassifiedUserNotFound)
}

func (s *ClassifiedUserRepositoryTestSuite) TestActiveSubsetIsSubsetOfFiltered() {
	past := time.Now().Add(-24 * time.Hour)
	future := time.Now().Add(24 * time.Hour)
	s.createReader(nil, "expired", &past)
	s.createReader(nil, "valid", &future)
	s.createReader(nil, "forever", nil)

	all, err := s.readers.List(s.ctx, LookupOptions{})
	s.Require().NoError(err)
	active, err := s.readers.List(s.ctx, LookupOptions{Active: true})
	s.Require().NoError(err)

	s.Len(all, 3)
	s.Len(active, 2)

	ids := make(map[uint64]bool, len(all))
	for _, r := range all {
		ids[r.ID] = true
	}
	for _, r := range active {
		s.True(ids[r.ID], "active reader %d missing from the full set", r.ID)
		s.NotEqual("expired", r.Name)
	}

	var count int64
	s.Require().NoError(s.readers.ActiveSubset(s.ctx).Count(&count).Error)
	s.Equal(int64(2), count)
}

func (s *ClassifiedUserRepositoryTestSuite) TestOrganizationActiveSubset() {
	user := createTestUser(s.T(), s.db, "club")
	org := &models.Organization{UserID: user.ID, Name: "Chess Club"}
	s.Require().NoError(s.db.Create(org).Error)
	s.Require().NoError(s.db.Model(org).Update("disbanded", true).Error)

	_, err := s.orgs.ByUser(s.ctx, user.ID, LookupOptions{Active: true})
	s.ErrorIs(err, ErrClassifiedUserNotFound)

	found, err := s.orgs.ByUser(s.ctx, user.ID, LookupOptions{})
	s.Require().NoError(err)
	s.True(found.Disbanded)
}

func (s *ClassifiedUserRepositoryTestSuite) TestWithLockedUser_Commits() {
	user := createTestUser(s.T(), s.db, "locked")
	s.createPerson(user, "Before", models.PersonStudying)

	err := s.persons.WithLockedUser(s.ctx, user.ID, true, func(tx *gorm.DB, person *models.Person) error {
		return tx.Model(person).Update("name", "After").Error
	})
	s.Require().NoError(err)

	person, err := s.persons.ByUser(s.ctx, user.ID, LookupOptions{})
	s.Require().NoError(err)
	s.Equal("After", person.Name)
}

func (s *ClassifiedUserRepositoryTestSuite) TestWithLockedUser_RollsBack() {
	user := createTestUser(s.T(), s.db, "rollback")
	s.createPerson(user, "Before", models.PersonStudying)
	errBoom := errors.New("boom")

	err := s.persons.WithLockedUser(s.ctx, user.ID, false, func(tx *gorm.DB, person *models.Person) error {
		if err := tx.Model(person).Update("name", "After").Error; err != nil {
			return err
		}
		return errBoom
	})
	s.ErrorIs(err, errBoom)

	person, err := s.persons.ByUser(s.ctx, user.ID, LookupOptions{})
	s.Require().NoError(err)
	s.Equal("Before", person.Name)
}

func (s *ClassifiedUserRepositoryTestSuite) TestWithLockedUser_NotFoundSkipsCallback() {
	user := createTestUser(s.T(), s.db, "missing")
	called := false

	err := s.readers.WithLockedUser(s.ctx, user.ID, false, func(tx *gorm.DB, reader *models.Reader) error {
		called = true
		return nil
	})
	s.ErrorIs(err, ErrClassifiedUserNotFound)
	s.False(called)
}

func (s *ClassifiedUserRepositoryTestSuite) TestOwner() {
	user := createTestUser(s.T(), s.db, "alice")
	reader := s.createReader(user, "Alice R.", nil)

	owner, err := s.readers.Owner(s.ctx, *reader)
	s.Require().NoError(err)
	s.Equal("alice", owner.Username)

	unlinked := s.createReader(nil, "Card Only", nil)
	_, err = s.readers.Owner(s.ctx, *unlinked)
	s.ErrorIs(err, ErrClassifiedUserUnlinked)
}

// A reader card bound to alice is her only classified identity.
func (s *ClassifiedUserRepositoryTestSuite) TestFind_ReaderIdentity() {
	user := createTestUser(s.T(), s.db, "alice")
	s.createReader(user, "Alice R.", nil)

	record, err := s.readers.Find(s.ctx, user.ID, LookupOptions{})
	s.Require().NoError(err)

	name, err := models.DisplayNameOf(record)
	s.Require().NoError(err)
	s.Equal("Alice R.", name)
	s.Equal(constants.UserType("Reader"), record.UserType())
	s.Equal("/", record.ProfilePath())

	owner, err := s.readers.Owner(s.ctx, *record.(*models.Reader))
	s.Require().NoError(err)
	s.Equal(user.ID, owner.ID)
}

func (s *ClassifiedUserRepositoryTestSuite) TestDisplayColumn() {
	column, err := s.persons.DisplayColumn()
	s.Require().NoError(err)
	s.Equal("name", column)
}

func TestClassifiedUserRepositoryTestSuite(t *testing.T) {
	suite.Run(t, new(ClassifiedUserRepositoryTestSuite))
}

// misconfigured declares neither of its classified fields.
type misconfigured struct {
	ID     uint64
	UserID uint64
}

func (misconfigured) UserType() constants.UserType { return "Misconfigured" }
func (misconfigured) ClassifiedFields() models.ClassifiedFields {
	return models.ClassifiedFields{}
}
func (misconfigured) ProfilePath() string { return "/" }
func (misconfigured) AvatarPath() string  { return "" }

func TestClassifiedUserRepository_NotConfigured(t *testing.T) {
	db := setupTestDB(t)
	repo := NewClassifiedUserRepository[misconfigured](db)

	_, err := repo.ByUser(context.Background(), 1, LookupOptions{})
	assert.ErrorIs(t, err, models.ErrNotConfigured)

	_, err = repo.DisplayColumn()
	assert.ErrorIs(t, err, models.ErrNotConfigured)
}

const lockedPersonQuery = `SELECT \* FROM "people" WHERE "people"."user_id" = \$1 AND "people"."deleted_at" IS NULL LIMIT (\$2|2) FOR UPDATE`

func personRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "user_id", "name", "status"}).AddRow(1, 42, "Li Hua", 0)
}

func TestWithLockedUser_LocksInsideTransaction(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewClassifiedUserRepository[models.Person](db)

	mock.ExpectBegin()
	mock.ExpectQuery(lockedPersonQuery).WillReturnRows(personRows())
	mock.ExpectCommit()

	var seen string
	err := repo.WithLockedUser(context.Background(), 42, false, func(tx *gorm.DB, person *models.Person) error {
		seen = person.Name
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, "Li Hua", seen)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestWithLockedUser_ActiveLockUsesScope(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewClassifiedUserRepository[models.Person](db)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "people" WHERE status = \$1 AND "people"."user_id" = \$2 .*FOR UPDATE`).
		WillReturnRows(personRows())
	mock.ExpectCommit()

	err := repo.WithLockedUser(context.Background(), 42, true, func(tx *gorm.DB, person *models.Person) error {
		return nil
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestWithLockedUser_RollbackOnError(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewClassifiedUserRepository[models.Person](db)
	errBoom := errors.New("boom")

	mock.ExpectBegin()
	mock.ExpectQuery(lockedPersonQuery).WillReturnRows(personRows())
	mock.ExpectRollback()

	err := repo.WithLockedUser(context.Background(), 42, false, func(tx *gorm.DB, person *models.Person) error {
		return errBoom
	})
	assert.ErrorIs(t, err, errBoom)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestWithLockedUser_RollbackOnPanic(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewClassifiedUserRepository[models.Person](db)

	mock.ExpectBegin()
	mock.ExpectQuery(lockedPersonQuery).WillReturnRows(personRows())
	mock.ExpectRollback()

	assert.PanicsWithValue(t, "boom", func() {
		_ = repo.WithLockedUser(context.Background(), 42, false, func(tx *gorm.DB, person *models.Person) error {
			panic("boom")
		})
	})
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestWithLockedUser_RollbackWhenMissing(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewClassifiedUserRepository[models.Person](db)

	mock.ExpectBegin()
	mock.ExpectQuery(lockedPersonQuery).WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "name"}))
	mock.ExpectRollback()

	called := false
	err := repo.WithLockedUser(context.Background(), 42, false, func(tx *gorm.DB, person *models.Person) error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, ErrClassifiedUserNotFound)
	assert.False(t, called)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFiltered_PlainQueryHasNoLock(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewClassifiedUserRepository[models.Reader](db)

	mock.ExpectQuery(`SELECT \* FROM "readers" WHERE "readers"."user_id" = \$1 LIMIT (\$2|2)$`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "name"}).AddRow(3, 42, "Alice R."))

	reader, err := repo.ByUser(context.Background(), 42, LookupOptions{})
	require.NoError(t, err)
	assert.Equal(t, "Alice R.", reader.Name)
	require.NoError(t, mock.ExpectationsWereMet())
}
