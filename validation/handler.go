// Package validation checks a sealed metadata graph and reports problems to
// a caller-supplied Handler. Reported problems never fail a load by
// themselves; callers inspect ErrorCount.
package validation

import (
	"sync"

	xsderrors "github.com/jacoelho/xsdmeta/errors"
)

// Handler receives reported problems.
type Handler interface {
	Error(v xsderrors.Validation)
	Warning(v xsderrors.Validation)
	// End is called once when a load has reported everything.
	End()
	ErrorCount() int
}

// Logger receives the problems reported to a DefaultHandler.
type Logger interface {
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

// Report dispatches v to h by severity.
func Report(h Handler, v xsderrors.Validation) {
	if h == nil {
		return
	}
	if v.Severity == xsderrors.SeverityWarning {
		h.Warning(v)
		return
	}
	h.Error(v)
}

// DefaultHandler logs and counts problems. It never aborts.
type DefaultHandler struct {
	logger   Logger
	mu       sync.Mutex
	errors   int
	warnings int
}

// NewDefaultHandler returns a handler logging to logger, which may be nil.
func NewDefaultHandler(logger Logger) *DefaultHandler {
	return &DefaultHandler{logger: logger}
}

func (h *DefaultHandler) Error(v xsderrors.Validation) {
	h.mu.Lock()
	h.errors++
	h.mu.Unlock()
	if h.logger != nil {
		h.logger.Error("%s", v.Error())
	}
}

func (h *DefaultHandler) Warning(v xsderrors.Validation) {
	h.mu.Lock()
	h.warnings++
	h.mu.Unlock()
	if h.logger != nil {
		h.logger.Warn("%s", v.Error())
	}
}

func (h *DefaultHandler) End() {}

func (h *DefaultHandler) ErrorCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.errors
}

// WarningCount returns the number of warnings reported so far.
func (h *DefaultHandler) WarningCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.warnings
}

// NoOpHandler discards every problem.
type NoOpHandler struct{}

func (NoOpHandler) Error(xsderrors.Validation)   {}
func (NoOpHandler) Warning(xsderrors.Validation) {}
func (NoOpHandler) End()                         {}
func (NoOpHandler) ErrorCount() int              { return 0 }

// CollectingHandler keeps every reported problem in order.
type CollectingHandler struct {
	records xsderrors.ValidationList
	mu      sync.Mutex
	ended   bool
}

// NewCollectingHandler returns an empty collecting handler.
func NewCollectingHandler() *CollectingHandler {
	return &CollectingHandler{}
}

func (h *CollectingHandler) Error(v xsderrors.Validation) {
	v.Severity = xsderrors.SeverityError
	h.add(v)
}

func (h *CollectingHandler) Warning(v xsderrors.Validation) {
	v.Severity = xsderrors.SeverityWarning
	h.add(v)
}

func (h *CollectingHandler) add(v xsderrors.Validation) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.records = append(h.records, v)
}

func (h *CollectingHandler) End() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.ended = true
}

// Ended reports whether End was called.
func (h *CollectingHandler) Ended() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.ended
}

func (h *CollectingHandler) ErrorCount() int {
	return len(h.Records().Errors())
}

// Records returns every problem reported so far.
func (h *CollectingHandler) Records() xsderrors.ValidationList {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append(xsderrors.ValidationList(nil), h.records...)
}

// Kinds returns the kinds of the reported problems in order.
func (h *CollectingHandler) Kinds() []xsderrors.Kind {
	records := h.Records()
	out := make([]xsderrors.Kind, len(records))
	for i, r := range records {
		out[i] = r.Kind
	}
	return out
}

// Err returns the reported errors as a ValidationList, or nil when none.
func (h *CollectingHandler) Err() error {
	if errs := h.Records().Errors(); len(errs) > 0 {
		return errs
	}
	return nil
}
