// SPDX-License-Identifier: GPL-3.0-or-later

package tlssession

// ErrClassifier classifies errors into categorical strings for structured
// logging. This is distinct from the closed error taxonomy in package
// errmap that drives [State]: this interface only produces a free-form
// label for log lines, same separation of concerns used throughout the
// ambient logging in this package.
type ErrClassifier interface {
	Classify(err error) string
}

// ErrClassifierFunc adapts a function to the [ErrClassifier] interface.
//
// This allows using simple functions as classifiers:
//
//	cfg.ErrClassifier = ErrClassifierFunc(errclass.New)
type ErrClassifierFunc func(error) string

var _ ErrClassifier = ErrClassifierFunc(nil)

// Classify implements [ErrClassifier].
func (f ErrClassifierFunc) Classify(err error) string {
	return f(err)
}

// DefaultErrClassifier is a no-op classifier that returns an empty string.
var DefaultErrClassifier = ErrClassifierFunc(func(error) string { return "" })
