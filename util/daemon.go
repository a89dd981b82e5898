package util

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/tickwerk/tickwerk/util/logging"
)

var (
	DaemonAlreadyStartedError = NewError("daemon already started")
	DaemonAlreadyStoppedError = NewError("daemon already stopped")
)

type Daemon interface {
	Start() error
	Stop() error
	IsStarted() bool
	IsStopped() bool
}

// ContextDaemon runs one long-running function; the function keeps
// running until the received context is canceled by Stop().
type ContextDaemon struct {
	sync.RWMutex
	*logging.Logging
	fn         func(context.Context) error
	cancel     func()
	donech     chan error
	finishedch chan struct{}
}

func NewContextDaemon(name string, fn func(context.Context) error) *ContextDaemon {
	return &ContextDaemon{
		Logging: logging.NewLogging(func(c zerolog.Context) zerolog.Context {
			return c.Str("module", fmt.Sprintf("context-daemon-%s", name))
		}),
		fn: fn,
	}
}

func (dm *ContextDaemon) IsStarted() bool {
	dm.RLock()
	defer dm.RUnlock()

	return dm.cancel != nil
}

func (dm *ContextDaemon) IsStopped() bool {
	return !dm.IsStarted()
}

func (dm *ContextDaemon) Start() error {
	dm.Lock()
	defer dm.Unlock()

	if dm.cancel != nil {
		return DaemonAlreadyStartedError.Call()
	}

	_ = dm.run(context.Background())

	return nil
}

// Wait starts daemon and the returned channel will receive the error
// of the daemon function after it stopped. Canceling ctx also stops
// the daemon.
func (dm *ContextDaemon) Wait(ctx context.Context) <-chan error {
	ch := make(chan error, 1)

	dm.Lock()
	defer dm.Unlock()

	if dm.cancel != nil {
		ch <- DaemonAlreadyStartedError.Call()

		return ch
	}

	donech := dm.run(ctx)

	go func() {
		ch <- <-donech
	}()

	return ch
}

func (dm *ContextDaemon) Stop() error {
	dm.Lock()

	if dm.cancel == nil {
		dm.Unlock()

		return DaemonAlreadyStoppedError.Call()
	}

	dm.cancel()
	finishedch := dm.finishedch
	dm.Unlock()

	<-finishedch

	dm.Log().Debug().Msg("stopped")

	return nil
}

func (dm *ContextDaemon) run(ctx context.Context) chan error {
	nctx, cancel := context.WithCancel(ctx)
	dm.cancel = cancel
	dm.donech = make(chan error, 1)
	dm.finishedch = make(chan struct{})

	donech := dm.donech
	finishedch := dm.finishedch

	go func() {
		err := dm.fn(nctx)
		cancel()

		dm.Lock()
		if dm.finishedch == finishedch {
			dm.cancel = nil
		}
		dm.Unlock()

		donech <- err
		close(finishedch)
	}()

	dm.Log().Debug().Msg("started")

	return donech
}
