// Command beatvid renders videos whose frames pulse with a procedural effect
// for the length of an audio track.
//
// # Usage
//
//	beatvid render [flags] <audio>
//	beatvid frame [flags]
//	beatvid preview [flags]
//	beatvid effects
//	beatvid schema
//	beatvid version
//
// Scene and effect flags override the settings file (see --settings); pass
// --save to write the result back.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err := newRootCmd(os.Stdout, os.Stderr).ExecuteContext(ctx)

	stop()

	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}
