package constants

// UserType identifies a concrete classified user type.
type UserType string

const (
	UserTypePerson       UserType = "Person"
	UserTypeOrganization UserType = "Organization"
	UserTypeReader       UserType = "Reader"
)

// UserTypes lists every known user type. The set is closed: a new classified
// user model must add its tag here before it can be registered.
var UserTypes = []UserType{
	UserTypePerson,
	UserTypeOrganization,
	UserTypeReader,
}

// Valid reports whether t is one of the known user types.
func (t UserType) Valid() bool {
	for _, known := range UserTypes {
		if t == known {
			return true
		}
	}
	return false
}

func (t UserType) String() string {
	return string(t)
}
