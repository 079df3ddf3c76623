// Package logging implements the asynchronous log pipeline used across
// modkit services.
//
// A Manager owns two bounded in-memory queues (high priority for WARNING and
// ERROR, low priority for VERBOSE and INFO), a writer worker per queue, and a
// background monitor that rotates the log file once it grows past a size
// threshold. Submission never blocks: high-priority overflow falls back to
// the error console, low-priority overflow is counted and dropped.
//
// Framework code should log through the Logger interface, usually via a
// ComponentLogger obtained from a Manager, so every line carries the service
// and component identity and the same formatting rules.
package logging
