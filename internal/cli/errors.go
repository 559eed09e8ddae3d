package cli

import "errors"

// errNotSaved is returned after a blocked write has been explained, so the
// process exits non-zero without repeating the message.
var errNotSaved = errors.New("not saved")

// IsReported reports whether err was already rendered to the user.
func IsReported(err error) bool {
	return errors.Is(err, errNotSaved)
}
