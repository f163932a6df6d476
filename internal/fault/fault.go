// Package fault carries the one typed panic value this repository uses to
// signal a broken invariant. Callers that can meaningfully recover match on
// Violation; the top-level caller that can't logs it and exits.
package fault

import "fmt"

// Violation is panicked whenever a component observes state its own
// contract says can't happen. Component names the package that raised it
// so a caller recovering several layers up can still tell what broke.
type Violation struct {
	Component string
	Message   string
}

func (v Violation) Error() string {
	return fmt.Sprintf("%s: %s", v.Component, v.Message)
}

// Trap panics with a Violation built from component and a formatted message.
func Trap(component, format string, args ...any) {
	panic(Violation{Component: component, Message: fmt.Sprintf(format, args...)})
}
