// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers to distinguish domain conditions ("nothing there", "already
// exists") from genuine storage failures, which travel as ordinary
// wrapped errors and roll the surrounding transaction back.
package repository

import (
	"errors"
	"strings"
)

// ErrUserNotFound is returned when a referenced user id or name does
// not exist. Handlers translate this into an HTTP 404 response.
var ErrUserNotFound = errors.New("user not found")

// ErrMovieNotFound is returned when a referenced movie id does not
// exist. Handlers translate this into an HTTP 404 response.
var ErrMovieNotFound = errors.New("movie not found")

// ErrLinkNotFound is returned when no ownership link exists for a
// (user, movie) pair that an operation requires.
var ErrLinkNotFound = errors.New("user is not linked to movie")

// ErrNameExists is returned when creating or renaming a user would
// collide with an existing name. Handlers should translate this into
// an HTTP 409 response.
var ErrNameExists = errors.New("user name already exists")

// ErrInvalidName is returned when a user name is empty after trimming.
// Length policy beyond non-emptiness lives at the handler layer.
var ErrInvalidName = errors.New("user name must not be empty")

// IsDuplicate reports whether err is a unique-key violation. MySQL
// surfaces these as error 1062, the sqlite driver as "UNIQUE constraint
// failed"; the store runs on either engine. The collection store uses
// this to turn a lost creation race into a re-read instead of an error.
func IsDuplicate(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "1062") || strings.Contains(msg, "UNIQUE constraint failed")
}
