// Package registry maps user types to the repositories that resolve them.
// A Registry is built once at startup and is read-only afterwards.
package registry

import (
	"context"
	"errors"
	"fmt"

	"github.com/yukikurage/campus-portal/internal/constants"
	"github.com/yukikurage/campus-portal/internal/models"
	"github.com/yukikurage/campus-portal/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrUnknownUserType   = errors.New("unknown user type")
	ErrDuplicateUserType = errors.New("user type registered twice")
	// ErrUnclassified is returned when a user has no record of any registered type.
	ErrUnclassified = errors.New("user has no classified identity")
)

// Entry resolves records of one classified user type.
// *repository.ClassifiedUserRepository implements it.
type Entry interface {
	UserType() constants.UserType
	Find(ctx context.Context, userID uint64, opts repository.LookupOptions) (models.ClassifiedUser, error)
	WithLocked(ctx context.Context, userID uint64, activeOnly bool, fn func(tx *gorm.DB, record models.ClassifiedUser) error) error
	DisplayColumn() (string, error)
}

type Registry struct {
	order   []constants.UserType
	entries map[constants.UserType]Entry
}

// New builds a registry. The order of entries is the order Classify tries them in.
func New(entries ...Entry) (*Registry, error) {
	r := &Registry{entries: make(map[constants.UserType]Entry, len(entries))}
	for _, e := range entries {
		t := e.UserType()
		if !t.Valid() {
			return nil, fmt.Errorf("%w: %q", ErrUnknownUserType, t)
		}
		if _, ok := r.entries[t]; ok {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateUserType, t)
		}
		r.entries[t] = e
		r.order = append(r.order, t)
	}
	return r, nil
}

// Default registers the classified user types of the portal.
func Default(db *gorm.DB) (*Registry, error) {
	return New(
		repository.NewClassifiedUserRepository[models.Person](db),
		repository.NewClassifiedUserRepository[models.Organization](db),
		repository.NewClassifiedUserRepository[models.Reader](db),
	)
}

// Lookup returns the entry registered for t.
func (r *Registry) Lookup(t constants.UserType) (Entry, error) {
	e, ok := r.entries[t]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownUserType, t)
	}
	return e, nil
}

// Types returns the registered user types in registration order.
func (r *Registry) Types() []constants.UserType {
	types := make([]constants.UserType, len(r.order))
	copy(types, r.order)
	return types
}

// Resolve returns the user's record of type t.
func (r *Registry) Resolve(ctx context.Context, t constants.UserType, userID uint64, opts repository.LookupOptions) (models.ClassifiedUser, error) {
	e, err := r.Lookup(t)
	if err != nil {
		return nil, err
	}
	return e.Find(ctx, userID, opts)
}

// Classify returns the first registered record linked to the user. Ambiguous
// links are reported, never skipped.
func (r *Registry) Classify(ctx context.Context, userID uint64) (models.ClassifiedUser, error) {
	for _, t := range r.order {
		record, err := r.entries[t].Find(ctx, userID, repository.LookupOptions{})
		if err == nil {
			return record, nil
		}
		if !errors.Is(err, repository.ErrClassifiedUserNotFound) {
			return nil, err
		}
	}
	return nil, fmt.Errorf("%w: user %d", ErrUnclassified, userID)
}
