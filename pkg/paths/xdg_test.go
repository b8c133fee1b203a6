package paths

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfigDirResolution(t *testing.T) {
	t.Run("portable home wins", func(t *testing.T) {
		t.Setenv("NINJAWATCH_HOME", "/opt/nw")
		t.Setenv("XDG_CONFIG_HOME", "/xdg/config")
		assert.Equal(t, filepath.Join("/opt/nw", "config"), ConfigDir())
		assert.Equal(t, filepath.Join("/opt/nw", "state"), StateDir())
	})

	t.Run("xdg variable", func(t *testing.T) {
		t.Setenv("NINJAWATCH_HOME", "")
		t.Setenv("XDG_CONFIG_HOME", "/xdg/config")
		assert.Equal(t, filepath.Join("/xdg/config", "ninjawatch"), ConfigDir())
		assert.Equal(t, filepath.Join("/xdg/config", "ninjawatch", "ninjawatch.yml"), GlobalConfigFile())
	})

	t.Run("home fallback", func(t *testing.T) {
		t.Setenv("NINJAWATCH_HOME", "")
		t.Setenv("XDG_STATE_HOME", "")
		t.Setenv("HOME", "/home/dev")
		assert.Equal(t, filepath.Join("/home/dev", ".local", "state", "ninjawatch"), StateDir())
	})
}
