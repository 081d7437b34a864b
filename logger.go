package xsdmeta

// Logger receives repository diagnostics. Implementations must be safe for
// concurrent use.
type Logger interface {
	Verbose(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}
