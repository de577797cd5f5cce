package models

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/yukikurage/campus-portal/internal/constants"
	"gorm.io/gorm"
)

// ErrNotConfigured is returned when a classified user type did not declare
// which of its fields holds the user link or the display name.
var ErrNotConfigured = errors.New("classified user field not configured")

// ClassifiedFields names the struct fields that hold the base user link and the
// display name of a classified user type.
type ClassifiedFields struct {
	User    string
	Display string
}

// ClassifiedUser is implemented by every model that has a one-to-one relation
// with User. All methods use value receivers so they work on the zero value,
// which lets callers ask for the type of a model without loading a record.
type ClassifiedUser interface {
	UserType() constants.UserType
	ClassifiedFields() ClassifiedFields
	// ProfilePath returns the site-relative page that presents the record.
	ProfilePath() string
	// AvatarPath returns the stored image path, or "" when none was uploaded.
	AvatarPath() string
}

// ActiveScoper is implemented by classified users whose valid subset is
// narrower than the whole table.
type ActiveScoper interface {
	ActiveScope(db *gorm.DB) *gorm.DB
}

// TypeOf returns the user type of T without an instance.
func TypeOf[T ClassifiedUser]() constants.UserType {
	var zero T
	return zero.UserType()
}

// IsType reports whether c is of the given user type.
func IsType(c ClassifiedUser, t constants.UserType) bool {
	return c.UserType() == t
}

// UserIDOf returns the id of the User linked to c. A nil link yields 0.
func UserIDOf(c ClassifiedUser) (uint64, error) {
	v, err := declaredField(c, c.ClassifiedFields().User)
	if err != nil {
		return 0, err
	}
	if v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return 0, nil
		}
		v = v.Elem()
	}
	switch v.Kind() {
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return v.Uint(), nil
	default:
		return 0, fmt.Errorf("%w: %s.%s is %s, want an unsigned id",
			ErrNotConfigured, c.UserType(), c.ClassifiedFields().User, v.Type())
	}
}

// DisplayNameOf returns the display name of c.
func DisplayNameOf(c ClassifiedUser) (string, error) {
	v, err := declaredField(c, c.ClassifiedFields().Display)
	if err != nil {
		return "", err
	}
	if v.Kind() != reflect.String {
		return "", fmt.Errorf("%w: %s.%s is %s, want string",
			ErrNotConfigured, c.UserType(), c.ClassifiedFields().Display, v.Type())
	}
	return v.String(), nil
}

func declaredField(c ClassifiedUser, name string) (reflect.Value, error) {
	if name == "" {
		return reflect.Value{}, fmt.Errorf("%w: %s", ErrNotConfigured, c.UserType())
	}
	v := reflect.Indirect(reflect.ValueOf(c))
	if v.Kind() != reflect.Struct {
		return reflect.Value{}, fmt.Errorf("%w: %s is not a struct", ErrNotConfigured, c.UserType())
	}
	f := v.FieldByName(name)
	if !f.IsValid() {
		return reflect.Value{}, fmt.Errorf("%w: %s has no field %q", ErrNotConfigured, c.UserType(), name)
	}
	return f, nil
}

// SetDisplayNameOf assigns the display field of c, which must be a pointer.
func SetDisplayNameOf(c ClassifiedUser, name string) error {
	if reflect.ValueOf(c).Kind() != reflect.Pointer {
		return fmt.Errorf("%w: %s passed by value", ErrNotConfigured, c.UserType())
	}
	v, err := declaredField(c, c.ClassifiedFields().Display)
	if err != nil {
		return err
	}
	if v.Kind() != reflect.String || !v.CanSet() {
		return fmt.Errorf("%w: %s.%s is not a settable string",
			ErrNotConfigured, c.UserType(), c.ClassifiedFields().Display)
	}
	v.SetString(name)
	return nil
}
