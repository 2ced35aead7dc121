package configutil

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"dario.cat/mergo"
	"github.com/titanous/json5"
)

// LocalPath returns the path of the local override for a config file,
// "config.json5" becomes "config.local.json5".
func LocalPath(name string) string {
	ext := filepath.Ext(name)
	return strings.TrimSuffix(name, ext) + ".local" + ext
}

func readJson5[T any](path string) (out T, found bool, err error) {
	contents, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return out, false, nil
	}
	if err != nil {
		return out, false, err
	}
	if len(contents) == 0 {
		return out, false, nil
	}
	err = json5.Unmarshal(contents, &out)
	if err != nil {
		return out, false, err
	}
	return out, true, nil
}

// ReadConfig reads a json5 configuration file and merges it with its local
// override (see LocalPath), the override taking priority. It returns
// os.ErrNotExist when neither file exists.
func ReadConfig[T any](name string) (T, error) {
	out, foundDefault, err := readJson5[T](name)
	if err != nil {
		return out, err
	}

	localPath := LocalPath(name)
	override, foundLocal, err := readJson5[T](localPath)
	if err != nil {
		return out, err
	}
	if foundLocal {
		err = mergo.Merge(&out, override, mergo.WithOverride)
		if err != nil {
			return out, err
		}
		slog.Debug("merging config with local overrides", "local", localPath)
	}

	if !foundDefault && !foundLocal {
		return out, os.ErrNotExist
	}
	return out, nil
}

// ReadRecursively calls ReadConfig in the current directory and every parent
// directory until a config named `name` is found.
func ReadRecursively[T any](name string) (T, error) {
	var empty T

	current, err := os.Getwd()
	if err != nil {
		return empty, err
	}

	for {
		config, err := ReadConfig[T](filepath.Join(current, name))
		if err == nil {
			return config, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return empty, err
		}

		parent := filepath.Dir(current)
		if parent == current {
			return empty, os.ErrNotExist
		}
		current = parent
	}
}
