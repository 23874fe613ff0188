// Package viewer carries the identity of the person looking at the data.
// Ownership checks are pure functions of the viewer and an author identity.
package viewer

import "github.com/anonto42/nano-midea/social/internal/models"

// Viewer is the signed-in user, or the zero value for an anonymous visitor.
type Viewer struct {
	ID       uint
	Username string
	Role     models.Role
}

// Anonymous is the viewer of a visitor without a session.
var Anonymous = Viewer{}

// FromUser builds the viewer of a signed-in user.
func FromUser(u models.User) Viewer {
	return Viewer{ID: u.ID, Username: u.Username, Role: u.Role}
}

// IsAnonymous reports whether there is no signed-in user.
func (v Viewer) IsAnonymous() bool {
	return v.ID == 0
}

// IsSelf reports whether userID is the viewer.
func (v Viewer) IsSelf(userID uint) bool {
	return !v.IsAnonymous() && v.ID == userID
}

// CanEdit reports whether the viewer may edit content written by authorID.
// Only authors edit their own posts and comments.
func (v Viewer) CanEdit(authorID uint) bool {
	return v.IsSelf(authorID)
}

// CanModerate reports whether the viewer has administrative rights.
func (v Viewer) CanModerate() bool {
	return !v.IsAnonymous() && v.Role == models.RoleAdmin
}

// CanDelete reports whether the viewer may delete content written by authorID.
func (v Viewer) CanDelete(authorID uint) bool {
	return v.IsSelf(authorID) || v.CanModerate()
}

// CanFollow reports whether the viewer may follow userID.
func (v Viewer) CanFollow(userID uint) bool {
	return !v.IsAnonymous() && userID != 0 && !v.IsSelf(userID)
}
