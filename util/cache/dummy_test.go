package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

type testDummy struct {
	suite.Suite
}

func (t *testDummy) TestNew() {
	ca := Dummy{}

	_, ok := (interface{})(ca).(Cache)
	t.True(ok)
}

func (t *testDummy) TestRemembersNothing() {
	ca := Dummy{}

	t.NoError(ca.Set("showme", 1, time.Minute))
	t.False(ca.Has("showme"))

	i, err := ca.Get("showme")
	t.NoError(err)
	t.Nil(i)
}

func TestDummy(t *testing.T) {
	suite.Run(t, new(testDummy))
}
