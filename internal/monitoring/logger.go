// Package monitoring holds the diagnostic logger shared by the library
// packages. Commands log with the standard log package directly.
package monitoring

import "log"

// Logf receives every diagnostic line from the curve, panel, surface and
// server packages. It starts as log.Printf.
var Logf func(format string, v ...interface{}) = log.Printf

// SetLogger redirects Logf to f. A nil f discards all output.
func SetLogger(f func(format string, v ...interface{})) {
	if f == nil {
		f = func(string, ...interface{}) {}
	}
	Logf = f
}

// Mute discards Logf output until the returned restore func is called.
// Tests use it as t.Cleanup(monitoring.Mute()).
func Mute() (restore func()) {
	prev := Logf
	SetLogger(nil)
	return func() { Logf = prev }
}
