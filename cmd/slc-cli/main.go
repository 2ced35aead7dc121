package main

import (
	"slc-balance/cmd/slc-cli/commands"
	"slc-balance/pkg/serviceutil"
)

func main() {
	commands.ExecuteContext(serviceutil.SignalContext())
}
