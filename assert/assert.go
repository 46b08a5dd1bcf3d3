package assert

import "github.com/oomph-ac/agentsim/oerror"

// IsTrue panics with a formatted error if ok is false. It is reserved for programmer errors that must never reach a
// running tick, such as a negative time step.
func IsTrue(ok bool, message string, args ...interface{}) {
	if !ok {
		panic(oerror.New(message, args...))
	}
}
