package util

import (
	"strings"

	"golang.org/x/mod/semver"
)

var InvalidVersionError = NewError("invalid version")

// Version follows semantic versioning, https://semver.org .
type Version string

func (vs Version) String() string {
	return string(vs)
}

// GO returns golang style semver string; 'v' prefixed. It does not
// check IsValid().
func (vs Version) GO() string {
	if strings.HasPrefix(string(vs), "v") {
		return string(vs)
	}

	return "v" + string(vs)
}

func (vs Version) IsValid([]byte) error {
	if !semver.IsValid(vs.GO()) {
		return InvalidVersionError.Errorf("version=%s", vs)
	}

	return nil
}

// IsCompatible checks if the check version is compatible to the
// target; their major versions are same.
func (vs Version) IsCompatible(check Version) error {
	if err := check.IsValid(nil); err != nil {
		return err
	}

	if semver.Major(vs.GO()) != semver.Major(check.GO()) {
		return InvalidVersionError.Errorf("not compatible; major version does not match, %q != %q", vs, check)
	}

	return nil
}
