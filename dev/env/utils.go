package devenv

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"slc-balance/pkg/configutil"
	"strings"
)

const (
	moduleName  = "slc-balance"
	statePrefix = "<dev_state>"
)

var modName = regexp.MustCompile(`(?m)^module +([\w\-_./]+)\s*$`)

func isWorkspaceRoot(dir string) bool {
	mod, err := os.ReadFile(filepath.Join(dir, "go.mod"))
	if err != nil {
		return false
	}
	matches := modName.FindSubmatch(mod)
	return len(matches) >= 2 && string(matches[1]) == moduleName
}

// GetWorkspaceRoot walks up from the cwd to the directory holding this
// module's go.mod.
func GetWorkspaceRoot() (string, error) {
	current, err := filepath.Abs(".")
	if err != nil {
		return "", err
	}

	for {
		if isWorkspaceRoot(current) {
			return current, nil
		}
		parent := filepath.Dir(current)
		if parent == current {
			return "", os.ErrNotExist
		}
		current = parent
	}
}

func GetStateFilePath(path string) (string, error) {
	root, err := GetWorkspaceRoot()
	if err != nil {
		return "", err
	}
	return filepath.Join(root, "dev", ".state", path), nil
}

// GetStateConfig reads a json5 config (and its local override) out of dev/.state.
func GetStateConfig[T any](path string) (T, error) {
	configPath, err := GetStateFilePath(path)
	if err != nil {
		var out T
		return out, err
	}
	out, err := configutil.ReadConfig[T](configPath)
	if errors.Is(err, fs.ErrNotExist) {
		return out, fmt.Errorf("no config at %s: %w", configPath, err)
	}
	return out, err
}

// IsStatePath reports whether path lives under the dev/.state directory.
func IsStatePath(path string) bool {
	return strings.HasPrefix(path, statePrefix)
}

// ResolvePath expands a leading "<dev_state>" into the dev/.state directory
// of the workspace, creating it if needed. Other paths are returned as is.
func ResolvePath(path string) (string, error) {
	if !IsStatePath(path) {
		return path, nil
	}

	root, err := GetWorkspaceRoot()
	if err != nil {
		return "", err
	}

	stateDir := filepath.Join(root, "dev", ".state")
	err = os.MkdirAll(stateDir, 0777)
	if err != nil {
		return "", err
	}

	subpath := strings.TrimLeft(strings.TrimPrefix(path, statePrefix), `/\`)
	return filepath.Join(stateDir, subpath), nil
}
