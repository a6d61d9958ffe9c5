// SPDX-License-Identifier: EPL-2.0

// Command auplay plays audio files through a native audio graph.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/ik5/auplay/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := cli.Run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()

	os.Exit(code)
}
