package config

import "errors"

// ErrConfig marks configuration loading, parsing, and persistence failures.
var ErrConfig = errors.New("config error")
