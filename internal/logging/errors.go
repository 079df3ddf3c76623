package logging

import "errors"

var (
	// ErrConfig marks invalid construction parameters. Fatal to the manager
	// instance that reported it.
	ErrConfig = errors.New("logging configuration error")

	// ErrLogFile marks log file open or rotation failures. The manager
	// degrades to console-only output rather than failing entirely.
	ErrLogFile = errors.New("log file error")
)
