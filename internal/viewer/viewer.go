// Package viewer opens files and folders with the operating system's
// default application.
package viewer

import (
	"os/exec"
	"runtime"

	"culld/internal/errors"
	"culld/internal/log"
)

// Launcher opens paths with the platform's opener command.
type Launcher struct {
	// goos and runner are overridable for tests
	goos   string
	runner func(name string, args ...string) error
}

// New returns a launcher for the current platform.
func New() *Launcher {
	return &Launcher{
		goos: runtime.GOOS,
		runner: func(name string, args ...string) error {
			return exec.Command(name, args...).Start()
		},
	}
}

// Open launches the default application for path. It returns once the
// process has started; it does not wait for the viewer to exit.
func (l *Launcher) Open(path string) error {
	var name string
	var args []string

	switch l.goos {
	case "darwin":
		name = "open"
		args = []string{path}
	case "windows":
		name = "rundll32"
		args = []string{"url.dll,FileProtocolHandler", path}
	default:
		name = "xdg-open"
		args = []string{path}
	}

	log.Debugf("opening %s with %s", path, name)
	if err := l.runner(name, args...); err != nil {
		return errors.NewFileError("cannot open with system viewer", path, errors.LaunchFailed, err)
	}
	return nil
}
