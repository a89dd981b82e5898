package config

import (
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/tickwerk/tickwerk/util"
)

// LocalConfigYAML is the yaml packer of LocalConfig; nil fields keep
// the defaults.
type LocalConfigYAML struct {
	TickInterval   *string `yaml:"tick-interval,omitempty"`
	EventBuffer    *int    `yaml:"event-buffer,omitempty"`
	RetainedSize   *int    `yaml:"retained-size,omitempty"`
	RetainedExpire *string `yaml:"retained-expire,omitempty"`
	TimeServer     *string `yaml:"time-server,omitempty"`
	SyncInterval   *string `yaml:"sync-interval,omitempty"`
}

func (no LocalConfigYAML) Set(conf LocalConfig) error {
	if no.TickInterval != nil {
		if err := conf.SetTickInterval(*no.TickInterval); err != nil {
			return err
		}
	}

	if no.EventBuffer != nil {
		if err := conf.SetEventBuffer(*no.EventBuffer); err != nil {
			return err
		}
	}

	if no.RetainedSize != nil {
		if err := conf.SetRetainedSize(*no.RetainedSize); err != nil {
			return err
		}
	}

	if no.RetainedExpire != nil {
		if err := conf.SetRetainedExpire(*no.RetainedExpire); err != nil {
			return err
		}
	}

	if no.TimeServer != nil {
		if err := conf.SetTimeServer(*no.TimeServer); err != nil {
			return err
		}
	}

	if no.SyncInterval != nil {
		if err := conf.SetSyncInterval(*no.SyncInterval); err != nil {
			return err
		}
	}

	return nil
}

// LoadConfig loads LocalConfig from yaml source and fills the gaps
// with the defaults.
func LoadConfig(b []byte) (LocalConfig, error) {
	var y LocalConfigYAML
	if err := yaml.Unmarshal(b, &y); err != nil {
		return nil, errors.Wrap(err, "failed to load config")
	}

	conf := EmptyBaseLocalConfig()
	if err := y.Set(conf); err != nil {
		return nil, err
	}

	cc := NewChecker(conf)
	if err := util.NewChecker("config", []util.CheckerFunc{
		cc.CheckTickInterval,
		cc.CheckEventBuffer,
		cc.CheckRetained,
		cc.CheckTimeServer,
	}).Check(); err != nil {
		return nil, err
	}

	return conf, nil
}
