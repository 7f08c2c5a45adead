package main

import (
	"os/signal"
	"syscall"

	"github.com/grovevc/grove/cmd/grove/cmd"
)

func main() {
	// the runtime raises SIGPIPE for a closed stdout/stderr; ignoring it lets
	// writes return EPIPE so a vanished pager ends the render cleanly
	signal.Ignore(syscall.SIGPIPE)
	cmd.Execute()
}
