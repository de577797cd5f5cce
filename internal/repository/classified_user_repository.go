package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/yukikurage/campus-portal/internal/constants"
	"github.com/yukikurage/campus-portal/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	// ErrClassifiedUserNotFound is returned when no record is linked to the user.
	ErrClassifiedUserNotFound = errors.New("classified user not found")
	// ErrAmbiguousClassifiedUser is returned when more than one record is linked
	// to the same user, which breaks the one-to-one relation.
	ErrAmbiguousClassifiedUser = errors.New("more than one classified user linked to the user")
	// ErrClassifiedUserUnlinked is returned by Owner for a record without a user.
	ErrClassifiedUserUnlinked = errors.New("classified user has no linked user")
)

// LookupOptions controls how classified user queries are built.
type LookupOptions struct {
	// Update locks the selected rows for update. Only useful inside a transaction.
	Update bool
	// Active restricts the query to the model's active subset.
	Active bool
}

// ClassifiedUserRepository is the query manager of one classified user type.
type ClassifiedUserRepository[T models.ClassifiedUser] struct {
	db *gorm.DB
}

// NewClassifiedUserRepository creates a repository for the classified user type T.
func NewClassifiedUserRepository[T models.ClassifiedUser](db *gorm.DB) *ClassifiedUserRepository[T] {
	return &ClassifiedUserRepository[T]{db: db}
}

// WithTx returns a repository that runs its queries inside tx.
func (r *ClassifiedUserRepository[T]) WithTx(tx *gorm.DB) *ClassifiedUserRepository[T] {
	return &ClassifiedUserRepository[T]{db: tx}
}

// UserType returns the user type managed by the repository.
func (r *ClassifiedUserRepository[T]) UserType() constants.UserType {
	return models.TypeOf[T]()
}

// ActiveSubset returns a query over the valid records of T. Models that do not
// implement models.ActiveScoper consider every record valid.
func (r *ClassifiedUserRepository[T]) ActiveSubset(ctx context.Context) *gorm.DB {
	query := r.db.WithContext(ctx).Model(new(T))
	var zero T
	if scoper, ok := any(zero).(models.ActiveScoper); ok {
		query = scoper.ActiveScope(query)
	}
	return query
}

// Filtered returns a query over all or only the active records, optionally
// locked for update.
func (r *ClassifiedUserRepository[T]) Filtered(ctx context.Context, opts LookupOptions) *gorm.DB {
	var query *gorm.DB
	if opts.Active {
		query = r.ActiveSubset(ctx)
	} else {
		query = r.db.WithContext(ctx).Model(new(T))
	}
	if opts.Update {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return query
}

// List returns the records selected by opts.
func (r *ClassifiedUserRepository[T]) List(ctx context.Context, opts LookupOptions) ([]T, error) {
	var records []T
	if err := r.Filtered(ctx, opts).Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

// ByUser returns the record linked to the given user.
func (r *ClassifiedUserRepository[T]) ByUser(ctx context.Context, userID uint64, opts LookupOptions) (*T, error) {
	column, err := r.column(func(f models.ClassifiedFields) string { return f.User })
	if err != nil {
		return nil, err
	}

	// Two rows are enough to tell a unique match from a broken invariant.
	var records []T
	if err := r.Filtered(ctx, opts).
		Where(clause.Eq{Column: clause.Column{Table: clause.CurrentTable, Name: column}, Value: userID}).
		Limit(2).
		Find(&records).Error; err != nil {
		return nil, err
	}

	switch len(records) {
	case 0:
		return nil, fmt.Errorf("%w: %s for user %d", ErrClassifiedUserNotFound, r.UserType(), userID)
	case 1:
		return &records[0], nil
	default:
		return nil, fmt.Errorf("%w: %s for user %d", ErrAmbiguousClassifiedUser, r.UserType(), userID)
	}
}

// WithLockedUser looks up the user's record under a row lock and runs fn in the
// same transaction. The lock is held until fn returns; the transaction commits
// when fn returns nil and rolls back on error or panic.
func (r *ClassifiedUserRepository[T]) WithLockedUser(ctx context.Context, userID uint64, activeOnly bool, fn func(tx *gorm.DB, record *T) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		record, err := r.WithTx(tx).ByUser(ctx, userID, LookupOptions{Update: true, Active: activeOnly})
		if err != nil {
			return err
		}
		return fn(tx, record)
	})
}

// Owner loads the User linked to record.
func (r *ClassifiedUserRepository[T]) Owner(ctx context.Context, record T) (*models.User, error) {
	userID, err := models.UserIDOf(record)
	if err != nil {
		return nil, err
	}
	if userID == 0 {
		return nil, ErrClassifiedUserUnlinked
	}

	var user models.User
	if err := r.db.WithContext(ctx).First(&user, userID).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// Find is ByUser with the result as a models.ClassifiedUser.
func (r *ClassifiedUserRepository[T]) Find(ctx context.Context, userID uint64, opts LookupOptions) (models.ClassifiedUser, error) {
	record, err := r.ByUser(ctx, userID, opts)
	if err != nil {
		return nil, err
	}
	return asClassified(record), nil
}

// WithLocked is WithLockedUser with the record passed as a models.ClassifiedUser.
// The record is a pointer, so it can be handed to tx.Model directly.
func (r *ClassifiedUserRepository[T]) WithLocked(ctx context.Context, userID uint64, activeOnly bool, fn func(tx *gorm.DB, record models.ClassifiedUser) error) error {
	return r.WithLockedUser(ctx, userID, activeOnly, func(tx *gorm.DB, record *T) error {
		return fn(tx, asClassified(record))
	})
}

// asClassified converts a record pointer to the interface. *T of a type
// parameter has no static method set, but every *T implements it at run time.
func asClassified[T models.ClassifiedUser](record *T) models.ClassifiedUser {
	return any(record).(models.ClassifiedUser)
}

// DisplayColumn returns the database column of the declared display field.
func (r *ClassifiedUserRepository[T]) DisplayColumn() (string, error) {
	return r.column(func(f models.ClassifiedFields) string { return f.Display })
}

func (r *ClassifiedUserRepository[T]) column(pick func(models.ClassifiedFields) string) (string, error) {
	var zero T
	name := pick(zero.ClassifiedFields())
	if name == "" {
		return "", fmt.Errorf("%w: %s", models.ErrNotConfigured, r.UserType())
	}

	stmt := &gorm.Statement{DB: r.db}
	if err := stmt.Parse(new(T)); err != nil {
		return "", fmt.Errorf("failed to parse %s schema: %w", r.UserType(), err)
	}
	field := stmt.Schema.LookUpField(name)
	if field == nil || field.DBName == "" {
		return "", fmt.Errorf("%w: %s has no column for field %q", models.ErrNotConfigured, r.UserType(), name)
	}
	return field.DBName, nil
}
