// Command modkit runs the example module host and provides configuration
// and inspection utilities.
package main
