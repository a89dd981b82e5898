package config

import (
	"strings"
	"time"

	"github.com/tickwerk/tickwerk/engine"
	"github.com/tickwerk/tickwerk/util"
)

var InvalidConfigError = util.NewError("invalid config")

var (
	DefaultEventBuffer    = 64
	DefaultRetainedSize   = 100
	DefaultRetainedExpire = time.Minute
	DefaultSyncInterval   = time.Second * 10
)

type LocalConfig interface {
	TickInterval() time.Duration
	SetTickInterval(string) error
	EventBuffer() int
	SetEventBuffer(int) error
	RetainedSize() int
	SetRetainedSize(int) error
	RetainedExpire() time.Duration
	SetRetainedExpire(string) error
	TimeServer() string
	SetTimeServer(string) error
	SyncInterval() time.Duration
	SetSyncInterval(string) error
}

// BaseLocalConfig carries the daemon settings. An empty time server
// means no ntp syncing.
type BaseLocalConfig struct {
	tickInterval   time.Duration
	eventBuffer    int
	retainedSize   int
	retainedExpire time.Duration
	timeServer     string
	syncInterval   time.Duration
}

func EmptyBaseLocalConfig() *BaseLocalConfig {
	return &BaseLocalConfig{
		tickInterval:   engine.DefaultTickInterval,
		eventBuffer:    DefaultEventBuffer,
		retainedSize:   DefaultRetainedSize,
		retainedExpire: DefaultRetainedExpire,
		syncInterval:   DefaultSyncInterval,
	}
}

func (no *BaseLocalConfig) TickInterval() time.Duration {
	return no.tickInterval
}

func (no *BaseLocalConfig) SetTickInterval(s string) error {
	t, err := parseTimeDuration(s, true)
	if err != nil {
		return err
	}

	no.tickInterval = t

	return nil
}

func (no *BaseLocalConfig) EventBuffer() int {
	return no.eventBuffer
}

func (no *BaseLocalConfig) SetEventBuffer(i int) error {
	no.eventBuffer = i

	return nil
}

func (no *BaseLocalConfig) RetainedSize() int {
	return no.retainedSize
}

func (no *BaseLocalConfig) SetRetainedSize(i int) error {
	no.retainedSize = i

	return nil
}

func (no *BaseLocalConfig) RetainedExpire() time.Duration {
	return no.retainedExpire
}

func (no *BaseLocalConfig) SetRetainedExpire(s string) error {
	t, err := parseTimeDuration(s, true)
	if err != nil {
		return err
	}

	no.retainedExpire = t

	return nil
}

func (no *BaseLocalConfig) TimeServer() string {
	return no.timeServer
}

func (no *BaseLocalConfig) SetTimeServer(s string) error {
	no.timeServer = strings.TrimSpace(s)

	return nil
}

func (no *BaseLocalConfig) SyncInterval() time.Duration {
	return no.syncInterval
}

func (no *BaseLocalConfig) SetSyncInterval(s string) error {
	t, err := parseTimeDuration(s, true)
	if err != nil {
		return err
	}

	no.syncInterval = t

	return nil
}
