package models

import (
	"strings"

	"github.com/google/uuid"
)

// AuthorToken is the anonymous identifier stamped on posts and comments.
// It is not tied to any identity and collisions are not guarded against.
type AuthorToken string

// NewAuthorToken returns a fresh random token.
func NewAuthorToken() AuthorToken {
	return AuthorToken(strings.ReplaceAll(uuid.NewString(), "-", ""))
}
