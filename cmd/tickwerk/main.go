package main

import (
	"fmt"
	"os"

	"github.com/tickwerk/tickwerk/launch/cmds"
	"github.com/tickwerk/tickwerk/util"
)

// Version is set at build time.
var Version = "v0.1.0"

type mainFlags struct {
	Run     cmds.RunCommand     `cmd:"" help:"run the timer daemon"`
	Version cmds.VersionCommand `cmd:"" help:"print version"`
}

func main() {
	flags := mainFlags{
		Run:     cmds.NewRunCommand(),
		Version: cmds.NewVersionCommand(),
	}

	kctx, err := cmds.Context(os.Args[1:], &flags)
	if err != nil {
		printError(err)

		os.Exit(1)
	}

	version := util.Version(Version)
	if err := version.IsValid(nil); err != nil {
		printError(err)

		os.Exit(1)
	}

	if err := kctx.Run(version); err != nil {
		printError(err)

		os.Exit(1)
	}
}

func printError(err error) {
	_, _ = fmt.Fprintf(os.Stderr, "error: %+v\n", err)
}
