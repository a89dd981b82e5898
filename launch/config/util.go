package config

import (
	"strings"
	"time"

	"github.com/pkg/errors"
)

func parseTimeDuration(s string, allowEmpty bool) (time.Duration, error) {
	if s = strings.TrimSpace(s); len(s) < 1 {
		if !allowEmpty {
			return 0, errors.Errorf("empty string")
		}

		return 0, nil
	} else if t, err := time.ParseDuration(s); err != nil {
		return 0, err
	} else {
		return t, nil
	}
}
