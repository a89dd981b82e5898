package cmds

import (
	"fmt"
	"io"
	"os"

	"github.com/tickwerk/tickwerk/util"
)

type VersionCommand struct {
	Output io.Writer `kong:"-"`
}

func NewVersionCommand() VersionCommand {
	return VersionCommand{}
}

func (cmd *VersionCommand) Run(version util.Version) error {
	if cmd.Output == nil {
		cmd.Output = os.Stdout
	}

	if err := version.IsValid(nil); err != nil {
		return err
	}

	_, _ = fmt.Fprintln(cmd.Output, version.String())

	return nil
}
