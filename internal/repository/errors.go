package repository

import "errors"

// ErrNotFound is wrapped by every Get-style lookup that matches no row.
var ErrNotFound = errors.New("not found")
