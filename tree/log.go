package tree

import "github.com/btcsuite/btclog"

// log is the package logger.  Disabled until the caller hands one in.
var log = btclog.Disabled

// DisableLog disables all library log output.
func DisableLog() {
	log = btclog.Disabled
}

// UseLogger uses a specified Logger to output package logging info.
func UseLogger(logger btclog.Logger) {
	log = logger
}
