// Command seqviz plays scripts that drive animated queues, stacks and
// arrays.
//
// # Commands
//
//   - run: evaluate a script headlessly and print its trace and final scene
//   - play: animate a script live in the terminal
//   - config init: write a default configuration file
//
// All commands accept --config to load a YAML configuration and --verbose
// (-v) for debug logging. Loggers are passed to commands through the
// command context.
package main

import (
	"context"
	"os"
)

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
