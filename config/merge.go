package config

// mergeConfigs merges override configuration into base
func mergeConfigs(base, override *Config) *Config {
	result := *base

	if override.Driver != "" {
		result.Driver = override.Driver
	}

	if override.Watcher.Backend != "" {
		result.Watcher.Backend = override.Watcher.Backend
	}
	if override.Watcher.Command != "" {
		result.Watcher.Command = override.Watcher.Command
	}

	if override.Timing.Debounce != "" {
		result.Timing.Debounce = override.Timing.Debounce
	}
	if override.Timing.Retry != "" {
		result.Timing.Retry = override.Timing.Retry
	}
	if override.Timing.Grace != "" {
		result.Timing.Grace = override.Timing.Grace
	}

	// Languages merge per key; an override entry replaces the base entry.
	if len(override.Languages) > 0 {
		result.Languages = make(map[string]LanguageConfig, len(base.Languages)+len(override.Languages))
		for name, lang := range base.Languages {
			result.Languages[name] = lang
		}
		for name, lang := range override.Languages {
			result.Languages[name] = lang
		}
	}

	if len(override.Exclude) > 0 {
		result.Exclude = append(append([]string{}, base.Exclude...), override.Exclude...)
	}

	if len(override.Extensions) > 0 {
		result.Extensions = make(map[string]interface{}, len(base.Extensions)+len(override.Extensions))
		for key, value := range base.Extensions {
			result.Extensions[key] = value
		}
		for key, value := range override.Extensions {
			result.Extensions[key] = value
		}
	}

	return &result
}
