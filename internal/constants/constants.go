package constants

// Session and context keys
const (
	SessionCookieName = "portal_session"
	ContextKeyUserID  = "user_id"
)

// Validation limits
const (
	MinPasswordLength = 8
)

// Pagination
const (
	MinPageSize     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Media
const (
	DefaultMediaURL     = "/media/"
	DefaultAvatarPath   = "avatar/person_default.jpg"
	DefaultProfilePath  = "/"
	NotificationBulkLen = 64
)
