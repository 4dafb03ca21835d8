package viewer

import (
	"fmt"
	"testing"

	"culld/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func recordingLauncher(goos string, fail bool) (*Launcher, *[]string) {
	var calls []string
	l := &Launcher{
		goos: goos,
		runner: func(name string, args ...string) error {
			calls = append(calls, name)
			calls = append(calls, args...)
			if fail {
				return fmt.Errorf("exec: %q: executable file not found in $PATH", name)
			}
			return nil
		},
	}
	return l, &calls
}

func TestOpenPerPlatform(t *testing.T) {
	tests := []struct {
		goos string
		want []string
	}{
		{"linux", []string{"xdg-open", "/pics/cat.jpg"}},
		{"darwin", []string{"open", "/pics/cat.jpg"}},
		{"windows", []string{"rundll32", "url.dll,FileProtocolHandler", "/pics/cat.jpg"}},
	}

	for _, tt := range tests {
		t.Run(tt.goos, func(t *testing.T) {
			l, calls := recordingLauncher(tt.goos, false)
			require.NoError(t, l.Open("/pics/cat.jpg"))
			assert.Equal(t, tt.want, *calls)
		})
	}
}

func TestOpenLaunchFailure(t *testing.T) {
	l, _ := recordingLauncher("linux", true)
	err := l.Open("/pics/cat.jpg")
	require.Error(t, err)
	assert.True(t, errors.IsLaunchFailed(err))
}
