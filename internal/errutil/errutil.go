// Package errutil provides error-handling helpers.
package errutil

import "fmt"

// RunAndSetError runs f and, when f fails while *err is still nil, stores
// the wrapped failure in *err. Meant to be deferred around cleanup calls
// whose errors would otherwise be lost.
func RunAndSetError(f func() error, err *error, msg string) {
	ferr := f()
	if ferr != nil && *err == nil {
		*err = fmt.Errorf(msg+": %w", ferr)
	}
}
