package config

import (
	"strings"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// ScenarioTimer is one timer to preload at boot.
type ScenarioTimer struct {
	name      string
	duration  time.Duration
	autoStart bool
}

func (st ScenarioTimer) Name() string {
	return st.name
}

func (st ScenarioTimer) Duration() time.Duration {
	return st.duration
}

func (st ScenarioTimer) AutoStart() bool {
	return st.autoStart
}

type scenarioTimerYAML struct {
	Name      *string `yaml:"name,omitempty"`
	Duration  *string `yaml:"duration"`
	AutoStart *bool   `yaml:"auto-start,omitempty"`
}

type scenarioYAML struct {
	Timers []scenarioTimerYAML `yaml:"timers"`
}

func LoadScenario(b []byte) ([]ScenarioTimer, error) {
	var y scenarioYAML
	if err := yaml.Unmarshal(b, &y); err != nil {
		return nil, errors.Wrap(err, "failed to load scenario")
	}

	timers := make([]ScenarioTimer, len(y.Timers))

	for i := range y.Timers {
		sy := y.Timers[i]

		if sy.Duration == nil {
			return nil, InvalidConfigError.Errorf("scenario timer #%d: duration is missing", i)
		}

		d, err := parseTimeDuration(*sy.Duration, false)
		if err != nil {
			return nil, InvalidConfigError.Errorf("scenario timer #%d: %v", i, err)
		}

		if d <= 0 {
			return nil, InvalidConfigError.Errorf("scenario timer #%d: duration should be positive; %v", i, d)
		}

		st := ScenarioTimer{duration: d}

		if sy.Name != nil {
			st.name = strings.TrimSpace(*sy.Name)
		}

		if sy.AutoStart != nil {
			st.autoStart = *sy.AutoStart
		}

		timers[i] = st
	}

	return timers, nil
}
