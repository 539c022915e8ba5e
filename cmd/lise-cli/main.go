package main

import (
	"liseplanning/cmd/lise-cli/commands"
	"liseplanning/lib/serviceutil"
)

func main() {
	commands.ExecuteContext(serviceutil.SignalContext())
}
