package config

import (
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/suite"

	"github.com/tickwerk/tickwerk/engine"
)

type testLocalConfig struct {
	suite.Suite
}

func (t *testLocalConfig) TestEmpty() {
	conf, err := LoadConfig([]byte(""))
	t.NoError(err)

	t.Equal(engine.DefaultTickInterval, conf.TickInterval())
	t.Equal(DefaultEventBuffer, conf.EventBuffer())
	t.Equal(DefaultRetainedSize, conf.RetainedSize())
	t.Equal(DefaultRetainedExpire, conf.RetainedExpire())
	t.Empty(conf.TimeServer())
	t.Equal(DefaultSyncInterval, conf.SyncInterval())
}

func (t *testLocalConfig) TestLoad() {
	y := `
tick-interval: 100ms
event-buffer: 16
retained-size: 10
retained-expire: 30s
time-server: time.google.com
sync-interval: 1m
`

	conf, err := LoadConfig([]byte(y))
	t.NoError(err)

	t.Equal(time.Millisecond*100, conf.TickInterval())
	t.Equal(16, conf.EventBuffer())
	t.Equal(10, conf.RetainedSize())
	t.Equal(time.Second*30, conf.RetainedExpire())
	t.Equal("time.google.com", conf.TimeServer())
	t.Equal(time.Minute, conf.SyncInterval())
}

func (t *testLocalConfig) TestEmptyTickInterval() {
	y := `
tick-interval:
`

	conf, err := LoadConfig([]byte(y))
	t.NoError(err)

	t.Equal(engine.DefaultTickInterval, conf.TickInterval())
}

func (t *testLocalConfig) TestInvalidTickInterval() {
	y := `
tick-interval: showme
`

	_, err := LoadConfig([]byte(y))
	t.Error(err)
}

func (t *testLocalConfig) TestTickIntervalOutOfRange() {
	y := `
tick-interval: 1ms
`

	_, err := LoadConfig([]byte(y))
	t.True(errors.Is(err, engine.InvalidTickIntervalError))

	y = `
tick-interval: 10m
`

	_, err = LoadConfig([]byte(y))
	t.True(errors.Is(err, engine.InvalidTickIntervalError))
}

func (t *testLocalConfig) TestNegativeEventBuffer() {
	y := `
event-buffer: -1
`

	_, err := LoadConfig([]byte(y))
	t.True(errors.Is(err, InvalidConfigError))
}

func (t *testLocalConfig) TestZeroEventBuffer() {
	y := `
event-buffer: 0
`

	conf, err := LoadConfig([]byte(y))
	t.NoError(err)

	t.Equal(DefaultEventBuffer, conf.EventBuffer())
}

func (t *testLocalConfig) TestRetentionDisabled() {
	y := `
retained-size: 0
`

	conf, err := LoadConfig([]byte(y))
	t.NoError(err)

	t.Equal(0, conf.RetainedSize())
}

func (t *testLocalConfig) TestNegativeRetainedSize() {
	y := `
retained-size: -3
`

	_, err := LoadConfig([]byte(y))
	t.True(errors.Is(err, InvalidConfigError))
}

func (t *testLocalConfig) TestRetainedExpireFilled() {
	y := `
retained-size: 5
retained-expire: 0s
`

	conf, err := LoadConfig([]byte(y))
	t.NoError(err)

	t.Equal(DefaultRetainedExpire, conf.RetainedExpire())
}

func (t *testLocalConfig) TestTimeServerFillsSyncInterval() {
	y := `
time-server: time.google.com
sync-interval: 0s
`

	conf, err := LoadConfig([]byte(y))
	t.NoError(err)

	t.Equal(DefaultSyncInterval, conf.SyncInterval())
}

func TestLocalConfig(t *testing.T) {
	suite.Run(t, new(testLocalConfig))
}
