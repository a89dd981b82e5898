package cmds

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"

	"github.com/tickwerk/tickwerk/engine"
	"github.com/tickwerk/tickwerk/event"
	"github.com/tickwerk/tickwerk/launch/config"
	"github.com/tickwerk/tickwerk/util"
	"github.com/tickwerk/tickwerk/util/localtime"
)

// RunCommand runs the timer daemon; the event stream goes to stdout
// as json lines, logs go to stderr.
type RunCommand struct {
	*BaseCommand
	Config      FileLoad      `name:"config" help:"config file"`
	Scenario    FileLoad      `name:"scenario" help:"timers to preload at boot"`
	ExitAfter   time.Duration `name:"exit-after" help:"exit after the given duration"`
	EventOutput io.Writer     `kong:"-"`
	conf        config.LocalConfig
	hub         *event.Hub
	eg          *engine.Engine
}

func NewRunCommand() RunCommand {
	return RunCommand{
		BaseCommand: NewBaseCommand("run"),
	}
}

func (cmd *RunCommand) Run(version util.Version) error {
	if cmd.LogOutput == nil {
		cmd.LogOutput = os.Stderr
	}

	if cmd.EventOutput == nil {
		cmd.EventOutput = os.Stdout
	}

	if err := cmd.Initialize(cmd, version); err != nil {
		return errors.Wrap(err, "failed to initialize command")
	}
	defer cmd.Done()

	if err := cmd.prepare(); err != nil {
		return err
	}

	return cmd.run()
}

func (cmd *RunCommand) prepare() error {
	conf, err := config.LoadConfig(cmd.Config.Bytes())
	if err != nil {
		return err
	}
	cmd.conf = conf

	if len(conf.TimeServer()) > 0 {
		ts, err := localtime.NewTimeSyncer(conf.TimeServer(), conf.SyncInterval())
		if err != nil {
			return err
		}

		_ = ts.SetLogging(cmd.Logging)

		if err := ts.Start(); err != nil {
			return err
		}

		localtime.SetTimeSyncer(ts)

		cmd.exithooks = append(cmd.exithooks, ts.Stop)
	}

	hub, err := event.NewHub(conf.RetainedSize(), conf.RetainedExpire())
	if err != nil {
		return err
	}

	eg, err := engine.NewEngine(engine.NewRegistry(), hub, conf.TickInterval())
	if err != nil {
		return err
	}

	_ = hub.SetLogging(cmd.Logging)
	_ = eg.SetLogging(cmd.Logging)

	cmd.hub = hub
	cmd.eg = eg

	return nil
}

func (cmd *RunCommand) run() error {
	sb := cmd.hub.Subscribe(uint(cmd.conf.EventBuffer()))

	streamch := make(chan struct{})
	go func() {
		defer close(streamch)

		cmd.stream(sb)
	}()

	defer func() {
		if err := cmd.eg.Stop(); err != nil && !errors.Is(err, util.DaemonAlreadyStoppedError) {
			cmd.Log().Error().Err(err).Msg("failed to stop engine")
		}

		if err := cmd.hub.Close(); err != nil {
			cmd.Log().Error().Err(err).Msg("failed to close hub")
		}

		<-streamch
	}()

	if len(cmd.Scenario) > 0 {
		if err := cmd.loadScenario(cmd.Scenario.Bytes()); err != nil {
			return err
		}
	}

	errch := cmd.eg.Wait(context.Background())

	cmd.Log().Info().Dur("tick_interval", cmd.conf.TickInterval()).Msg("timer daemon started")

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigc)

	select {
	case err := <-errch:
		return err
	case s := <-sigc:
		cmd.Log().Info().Str("sig", s.String()).Msg("stopped by force")

		return nil
	case <-func(w time.Duration) <-chan time.Time {
		if w < 1 {
			return make(chan time.Time)
		}

		return time.After(w)
	}(cmd.ExitAfter):
		cmd.Log().Info().Str("exit-after", cmd.ExitAfter.String()).Msg("expired, exit.")

		return nil
	}
}

func (cmd *RunCommand) stream(sb *event.Subscriber) {
	for ev := range sb.Events() {
		b, err := util.JSON.Marshal(ev)
		if err != nil {
			cmd.Log().Error().Err(err).Msg("failed to marshal event")

			continue
		}

		_, _ = fmt.Fprintln(cmd.EventOutput, string(b))
	}
}

func (cmd *RunCommand) loadScenario(b []byte) error {
	timers, err := config.LoadScenario(b)
	if err != nil {
		return err
	}

	for i := range timers {
		st := timers[i]

		sn, err := cmd.eg.CreateTimer(st.Name(), st.Duration())
		if err != nil {
			return err
		}

		if st.AutoStart() {
			if _, err := cmd.eg.StartTimer(sn.ID()); err != nil {
				return err
			}
		}

		cmd.Log().Debug().
			Str("timer", sn.ID().String()).
			Str("name", sn.Name()).
			Dur("duration", sn.Duration()).
			Bool("auto_start", st.AutoStart()).
			Msg("timer preloaded")
	}

	return nil
}
