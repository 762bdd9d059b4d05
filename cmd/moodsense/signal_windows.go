//go:build windows

package main

import (
	"os"
)

// terminationSignals trigger a graceful shutdown.
var terminationSignals = []os.Signal{os.Interrupt}
