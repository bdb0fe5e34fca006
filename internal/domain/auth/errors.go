package auth

import "errors"

// ErrEmailExists indicates a duplicate staff email address.
var ErrEmailExists = errors.New("email already exists")
