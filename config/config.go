package config

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/grovetools/ninjawatch/errors"
	"github.com/grovetools/ninjawatch/pkg/paths"
	"github.com/grovetools/ninjawatch/schema"
	"github.com/pelletier/go-toml/v2"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

// ConfigNames are the project file names searched from the build root upwards.
var ConfigNames = []string{
	"ninjawatch.yml",
	"ninjawatch.yaml",
	".ninjawatch.yml",
	".ninjawatch.yaml",
	"ninjawatch.toml",
	".ninjawatch.toml",
}

// LoadFromWithLogger loads configuration with hierarchical merging:
// 1. Global config ($XDG_CONFIG_HOME/ninjawatch/ninjawatch.yml) - base layer
// 2. NINJAWATCH_CONFIG if set, else the nearest project file above startDir
// Neither layer is required; with no files the defaults are returned.
func LoadFromWithLogger(startDir string, logger *logrus.Entry) (*Config, error) {
	var finalConfig *Config

	if globalPath := paths.GlobalConfigFile(); globalPath != "" {
		if _, err := os.Stat(globalPath); err == nil {
			logger.WithField("path", globalPath).Debug("Loading global configuration")
			globalConfig, err := loadRaw(globalPath)
			if err != nil {
				return nil, err
			}
			finalConfig = globalConfig
		}
	}

	projectPath := os.Getenv("NINJAWATCH_CONFIG")
	if projectPath == "" {
		found, err := FindConfigFile(startDir)
		if err != nil && !errors.Is(err, errors.ErrCodeConfigNotFound) {
			return nil, err
		}
		projectPath = found
	}

	if projectPath != "" {
		logger.WithField("path", projectPath).Debug("Loading project configuration")
		projectConfig, err := loadRaw(projectPath)
		if err != nil {
			return nil, err
		}
		if finalConfig == nil {
			finalConfig = projectConfig
		} else {
			logger.Debug("Merging project configuration over global configuration")
			finalConfig = mergeConfigs(finalConfig, projectConfig)
		}
	}

	if finalConfig == nil {
		logger.Debug("No configuration file found, using defaults")
		finalConfig = &Config{}
	}

	cfg, err := finalize(finalConfig)
	if err != nil {
		return nil, err
	}

	if logger.Logger.IsLevelEnabled(logrus.DebugLevel) {
		if data, err := yaml.Marshal(cfg); err == nil {
			logger.Debugf("Merged configuration:\n%s", string(data))
		}
	}

	return cfg, nil
}

// LoadFromBytes parses a YAML or TOML document. format is "yaml" or "toml".
func LoadFromBytes(data []byte, format string) (*Config, error) {
	cfg, err := decode(data, format, "<bytes>")
	if err != nil {
		return nil, err
	}
	return finalize(cfg)
}

// FindConfigFile searches startDir and its parents for a ninjawatch config file.
func FindConfigFile(startDir string) (string, error) {
	dir := startDir
	for {
		for _, name := range ConfigNames {
			path := filepath.Join(dir, name)
			if info, err := os.Stat(path); err == nil && !info.IsDir() {
				return path, nil
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return "", errors.ConfigNotFound(startDir).WithDetail("searchPath", startDir)
}

func finalize(cfg *Config) (*Config, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadRaw(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.ConfigNotFound(path)
		}
		return nil, errors.Wrap(err, errors.ErrCodeConfigInvalid, "failed to read config file").
			WithDetail("path", path)
	}

	format := "yaml"
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		format = "toml"
	}
	return decode(data, format, path)
}

// decode validates the raw document against the schema, then decodes it
// into Config. TOML is normalized through the same YAML path so both
// formats share struct tags and the inline extension map.
func decode(data []byte, format, source string) (*Config, error) {
	expanded := []byte(expandEnvVars(string(data)))

	var document map[string]interface{}
	switch format {
	case "toml":
		if err := toml.Unmarshal(expanded, &document); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeConfigInvalid, "failed to parse TOML configuration").
				WithDetail("path", source)
		}
	default:
		if err := yaml.Unmarshal(expanded, &document); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeConfigInvalid, "failed to parse YAML configuration").
				WithDetail("path", source)
		}
	}
	if document == nil {
		document = map[string]interface{}{}
	}

	validator, err := newSchemaValidator()
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "failed to create validator")
	}
	if err := validator.Validate(document); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeConfigInvalid, "schema validation failed").
			WithDetail("path", source)
	}

	normalized, err := yaml.Marshal(document)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "failed to normalize configuration")
	}

	var cfg Config
	if err := yaml.Unmarshal(normalized, &cfg); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeConfigInvalid, "failed to decode configuration").
			WithDetail("path", source)
	}
	return &cfg, nil
}

func newSchemaValidator() (*schema.Validator, error) {
	data, err := GenerateSchema()
	if err != nil {
		return nil, err
	}
	return schema.NewValidator(data)
}

// expandEnvVars replaces ${VAR} with environment variable values
func expandEnvVars(content string) string {
	return envVarRegex.ReplaceAllStringFunc(content, func(match string) string {
		varName := envVarRegex.FindStringSubmatch(match)[1]

		// Handle default values: ${VAR:-default}
		parts := strings.SplitN(varName, ":-", 2)
		varName = parts[0]
		defaultValue := ""
		if len(parts) > 1 {
			defaultValue = parts[1]
		}

		if value := os.Getenv(varName); value != "" {
			return value
		}

		return defaultValue
	})
}
