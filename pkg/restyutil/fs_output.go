package restyutil

import (
	"log/slog"
	"os"
	"path/filepath"
	devenv "slc-balance/dev/env"
)

// FilesystemOutput writes every formatted exchange to its own file.
type FilesystemOutput struct {
	directory string
}

// NewFilesystemOutput prepares a directory for writing dumps. A dir starting
// with <dev_state> is cleared and reused, any other dir is left untouched and
// the dumps go to a new "resty-*" directory inside it.
func NewFilesystemOutput(dir string) (FilesystemOutput, error) {
	if devenv.IsStatePath(dir) {
		resolved, err := devenv.ResolvePath(dir)
		if err != nil {
			return FilesystemOutput{}, err
		}
		err = os.RemoveAll(resolved)
		if err != nil {
			return FilesystemOutput{}, err
		}
		err = os.MkdirAll(resolved, 0700)
		if err != nil {
			return FilesystemOutput{}, err
		}
		return FilesystemOutput{directory: resolved}, nil
	}

	err := os.MkdirAll(dir, 0700)
	if err != nil {
		return FilesystemOutput{}, err
	}
	created, err := os.MkdirTemp(dir, "resty-*")
	if err != nil {
		return FilesystemOutput{}, err
	}
	return FilesystemOutput{directory: created}, nil
}

func (o FilesystemOutput) Directory() string {
	return o.directory
}

func (o FilesystemOutput) Write(id string, contents string) {
	err := os.WriteFile(filepath.Join(o.directory, id+".txt"), []byte(contents), 0600)
	if err != nil {
		slog.Warn("failed to write message info file", "id", id, "err", err)
	}
}
