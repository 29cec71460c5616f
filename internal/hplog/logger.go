// Package hplog constructs the zap.Logger threaded through every long-lived
// component's constructor, following the pattern the rest of the codebase
// uses of passing a *zap.Logger in rather than reaching for a package
// global.
package hplog

import "go.uber.org/zap"

// New builds a production logger by default, or a development logger (human
// readable, debug level, stack traces on warn+) when verbose is set.
func New(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// Nop returns a logger that discards everything, for tests that don't care
// about log output.
func Nop() *zap.Logger {
	return zap.NewNop()
}
