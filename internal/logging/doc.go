// Package logging provides concrete implementations of the xsdmeta.Logger interface.
//
// Available implementations:
//   - ConsoleLogger: writes prefixed messages to a writer, stderr by default
//   - NullLogger: discards all messages
//
// All logger implementations are safe for concurrent use by multiple goroutines.
package logging
