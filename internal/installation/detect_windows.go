//go:build windows

package installation

import (
	"fmt"

	"golang.org/x/sys/windows/registry"
)

const oszOpenCommandKey = `osustable.File.osz\Shell\Open\Command`

func registeredExecutable() (string, error) {
	key, err := registry.OpenKey(registry.CLASSES_ROOT, oszOpenCommandKey, registry.QUERY_VALUE)
	if err != nil {
		return "", fmt.Errorf("open registry key %s: %w", oszOpenCommandKey, err)
	}
	defer key.Close()

	command, _, err := key.GetStringValue("")
	if err != nil {
		return "", fmt.Errorf("read registry key %s: %w", oszOpenCommandKey, err)
	}
	return executableFromOpenCommand(command), nil
}
