package config

import (
	"github.com/rs/zerolog"

	"github.com/tickwerk/tickwerk/engine"
	"github.com/tickwerk/tickwerk/util/logging"
)

type checker struct {
	*logging.Logging
	config LocalConfig
}

func NewChecker(conf LocalConfig) *checker {
	return &checker{
		Logging: logging.NewLogging(func(c zerolog.Context) zerolog.Context {
			return c.Str("module", "config-checker")
		}),
		config: conf,
	}
}

func (cc *checker) CheckTickInterval() (bool, error) {
	switch t := cc.config.TickInterval(); {
	case t == 0:
		if err := cc.config.SetTickInterval(engine.DefaultTickInterval.String()); err != nil {
			return false, err
		}
	case t < engine.MinTickInterval || t > engine.MaxTickInterval:
		return false, engine.InvalidTickIntervalError.Errorf("interval=%v", t)
	}

	return true, nil
}

func (cc *checker) CheckEventBuffer() (bool, error) {
	switch i := cc.config.EventBuffer(); {
	case i < 0:
		return false, InvalidConfigError.Errorf("event buffer should be positive; %d", i)
	case i == 0:
		if err := cc.config.SetEventBuffer(DefaultEventBuffer); err != nil {
			return false, err
		}
	}

	return true, nil
}

func (cc *checker) CheckRetained() (bool, error) {
	if cc.config.RetainedSize() < 0 {
		return false, InvalidConfigError.Errorf(
			"retained size should be zero or positive; %d", cc.config.RetainedSize())
	}

	if cc.config.RetainedSize() > 0 && cc.config.RetainedExpire() <= 0 {
		if err := cc.config.SetRetainedExpire(DefaultRetainedExpire.String()); err != nil {
			return false, err
		}
	}

	return true, nil
}

func (cc *checker) CheckTimeServer() (bool, error) {
	if len(cc.config.TimeServer()) < 1 {
		return true, nil
	}

	if cc.config.SyncInterval() <= 0 {
		if err := cc.config.SetSyncInterval(DefaultSyncInterval.String()); err != nil {
			return false, err
		}
	}

	return true, nil
}
