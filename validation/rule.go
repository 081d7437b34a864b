package validation

// Rule is one structural check. Perform reports problems to h and returns
// false when the check failed.
type Rule interface {
	Perform(h Handler) bool
	// ContinueOnFail tells whether later rules still run after a failure.
	ContinueOnFail() bool
}

// Run performs rules in order and stops after the first failing rule that
// does not continue on failure. It returns true when every rule passed.
func Run(h Handler, rules ...Rule) bool {
	ok := true
	for _, r := range rules {
		if r.Perform(h) {
			continue
		}
		ok = false
		if !r.ContinueOnFail() {
			break
		}
	}
	return ok
}
