// Package platform maps the host operating system to the tag used to lay out
// per-platform build directories.
package platform

import (
	"errors"
	"fmt"
	"runtime"
)

// ErrUnsupported is returned for an operating system with no platform tag.
var ErrUnsupported = errors.New("unsupported platform")

// Tag names a supported host platform.
type Tag string

const (
	Windows Tag = "win"
	MacOS   Tag = "osx"
	Linux   Tag = "linux"
)

// Detect returns the tag for goos, a runtime.GOOS value.
func Detect(goos string) (Tag, error) {
	switch goos {
	case "windows":
		return Windows, nil
	case "darwin":
		return MacOS, nil
	case "linux":
		return Linux, nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnsupported, goos)
}

// Host returns the tag of the running operating system.
func Host() (Tag, error) {
	return Detect(runtime.GOOS)
}
