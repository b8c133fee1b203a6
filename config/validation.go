package config

import (
	"fmt"
	"strings"

	"github.com/grovetools/ninjawatch/errors"
	"github.com/moby/patternmatcher"
)

// Validate checks the semantic rules the schema cannot express.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Driver) == "" {
		return errors.ConfigInvalid("driver cannot be empty")
	}

	switch c.Watcher.Backend {
	case BackendInotifywait, BackendFsnotify:
	default:
		return errors.ConfigInvalid(fmt.Sprintf("unknown watcher backend '%s'", c.Watcher.Backend)).
			WithDetail("backend", c.Watcher.Backend)
	}

	if c.Watcher.Backend == BackendInotifywait && strings.TrimSpace(c.Watcher.Command) == "" {
		return errors.ConfigInvalid("watcher.command cannot be empty for the inotifywait backend")
	}

	if _, err := c.Timing.Parse(); err != nil {
		return errors.Wrap(err, errors.ErrCodeConfigInvalid, "invalid timing configuration")
	}

	for name, lang := range c.Languages {
		if strings.TrimSpace(name) == "" {
			return errors.ConfigInvalid("language names cannot be empty")
		}
		for _, ext := range lang.Extensions {
			if strings.TrimSpace(ext) == "" {
				return errors.ConfigInvalid(fmt.Sprintf("language '%s' has an empty extension", name)).
					WithDetail("language", name)
			}
		}
		for _, special := range lang.SpecialFiles {
			if special == "" || strings.ContainsAny(special, `/\`) {
				return errors.ConfigInvalid(fmt.Sprintf("language '%s' has an invalid special file name '%s'", name, special)).
					WithDetail("language", name)
			}
		}
	}

	if _, err := patternmatcher.New(c.Exclude); err != nil {
		return errors.Wrap(err, errors.ErrCodeConfigInvalid, "invalid exclude pattern")
	}

	return nil
}
