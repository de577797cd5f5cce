package media

import (
	"strings"

	"github.com/yukikurage/campus-portal/internal/constants"
	"github.com/yukikurage/campus-portal/internal/models"
)

// Resolver turns stored paths into public URLs.
type Resolver struct {
	mediaURL string
	siteURL  string
}

// NewResolver creates a Resolver. An empty mediaURL falls back to the default prefix.
func NewResolver(mediaURL, siteURL string) *Resolver {
	if mediaURL == "" {
		mediaURL = constants.DefaultMediaURL
	}
	return &Resolver{
		mediaURL: mediaURL,
		siteURL:  strings.TrimRight(siteURL, "/"),
	}
}

// ImageURL returns the media URL of a stored file path. Paths that are
// already absolute are returned unchanged.
func (r *Resolver) ImageURL(path string) string {
	if strings.HasPrefix(path, "/") || strings.Contains(path, "://") {
		return path
	}
	return r.mediaURL + path
}

// DefaultAvatarURL returns the placeholder avatar.
func (r *Resolver) DefaultAvatarURL() string {
	return r.ImageURL(constants.DefaultAvatarPath)
}

// AvatarURL returns the avatar of c, or the placeholder when no image was uploaded.
func (r *Resolver) AvatarURL(c models.ClassifiedUser) string {
	if c == nil {
		return r.DefaultAvatarURL()
	}
	path := strings.TrimSpace(c.AvatarPath())
	if path == "" {
		return r.DefaultAvatarURL()
	}
	return r.ImageURL(path)
}

// ProfileURL returns the profile page of c, prefixed by the site URL when absolute.
func (r *Resolver) ProfileURL(c models.ClassifiedUser, absolute bool) string {
	path := constants.DefaultProfilePath
	if c != nil && c.ProfilePath() != "" {
		path = c.ProfilePath()
	}
	if absolute {
		return r.siteURL + path
	}
	return path
}
