package cmds

import (
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/kong"
	"github.com/rs/zerolog"
	"go.uber.org/automaxprocs/maxprocs"

	"github.com/tickwerk/tickwerk/util"
	"github.com/tickwerk/tickwerk/util/logging"
)

var (
	DefaultName = "tickwerk"
	MainOptions = kong.HelpOptions{NoAppSummary: false, Compact: true, Summary: false, Tree: true}
)

var defaultKongOptions = []kong.Option{
	kong.Name(DefaultName),
	kong.UsageOnError(),
	kong.ConfigureHelp(MainOptions),
	LogVars,
	PprofVars,
}

func Context(args []string, flags interface{}, options ...kong.Option) (*kong.Context, error) {
	ops := make([]kong.Option, len(defaultKongOptions)+len(options))
	copy(ops, defaultKongOptions)
	copy(ops[len(defaultKongOptions):], options)

	p, err := kong.New(flags, ops...)
	if err != nil {
		return nil, err
	}
	return p.Parse(args)
}

type BaseCommand struct {
	*logging.Logging
	*LogFlags
	*PprofFlags
	LogOutput io.Writer `kong:"-"`
	version   util.Version
	exithooks []func() error
}

func NewBaseCommand(name string) *BaseCommand {
	return &BaseCommand{
		Logging: logging.NewLogging(func(c zerolog.Context) zerolog.Context {
			return c.Str("module", fmt.Sprintf("command-%s", name))
		}),
		LogFlags:   &LogFlags{},
		PprofFlags: &PprofFlags{},
	}
}

func (cmd *BaseCommand) Initialize(flags interface{}, version util.Version) error {
	if cmd.LogOutput == nil {
		cmd.LogOutput = os.Stdout
	}

	i, err := SetupLoggingFromFlags(cmd.LogFlags, cmd.LogOutput)
	if err != nil {
		return err
	}
	_ = cmd.SetLogging(i)

	_, _ = maxprocs.Set(maxprocs.Logger(func(f string, s ...interface{}) {
		cmd.Log().Debug().Msgf(f, s...)
	}))

	hook, err := RunPprofs(cmd.PprofFlags)
	if err != nil {
		return err
	}
	cmd.exithooks = append(cmd.exithooks, hook)

	cmd.Log().Debug().Interface("flags", flags).Msg("flags parsed")

	if err := version.IsValid(nil); err != nil {
		return err
	}
	cmd.version = version

	return nil
}

func (cmd *BaseCommand) Done() {
	for i := range cmd.exithooks {
		if err := cmd.exithooks[i](); err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "error: %+v\n", err)
		}
	}

	cmd.Log().Info().Msg("stopped")
}

func (cmd *BaseCommand) Version() util.Version {
	return cmd.version
}
