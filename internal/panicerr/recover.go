// Package panicerr turns panics into errors.
package panicerr

import "runtime/debug"

// Recover calls f and returns its error, or an error describing the panic if
// f panics. Panics with an error value unwrap to that error.
func Recover(name string, f func() error) (err error) {
	defer func() {
		if e := recover(); e != nil {
			err = panicError{name: name, e: e, stack: debug.Stack()}
		}
	}()
	return f()
}
