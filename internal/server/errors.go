package server

import "errors"

// Root error for server failures.
var ErrServer = errors.New("server error")
