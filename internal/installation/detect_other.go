//go:build !windows

package installation

import "errors"

var errNoRegistry = errors.New("file associations are only read on windows")

func registeredExecutable() (string, error) {
	return "", errNoRegistry
}
