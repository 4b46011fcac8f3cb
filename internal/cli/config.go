// Package cli provides shared configuration and exit handling for the
// lookmap CLI.
package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

const maxWalkDepth = 25

// Config is the lookmap configuration from lookmap.yaml.
type Config struct {
	// Directory names of the two project roots, relative to the project
	// path given on the command line.
	ViewsDir  string `mapstructure:"views_dir"`
	ModelsDir string `mapstructure:"models_dir"`

	// Workers caps parse concurrency; 0 means one worker per CPU.
	Workers int `mapstructure:"workers"`

	Analyze AnalyzeConfig `mapstructure:"analyze"`
}

// AnalyzeConfig holds analyze command settings.
type AnalyzeConfig struct {
	CSV string `mapstructure:"csv"`
}

// LoadConfig discovers and loads configuration with flag > env > config
// file > default precedence. Returns the config, the path of the config
// file used (empty when none was found), and any error.
func LoadConfig(explicitConfigPath string) (*Config, string, error) {
	v := viper.New()

	setDefaults(v)

	v.SetEnvPrefix("LOOKMAP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	configPath, err := findConfigFile(explicitConfigPath)
	if err != nil {
		return nil, "", err
	}

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, configPath, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, configPath, fmt.Errorf("unmarshaling config: %w", err)
	}

	return &cfg, configPath, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("views_dir", "views")
	v.SetDefault("models_dir", "models")
	v.SetDefault("workers", 0)
	v.SetDefault("analyze.csv", "")
}

// findConfigFile locates the config file. An explicit path must exist.
// Otherwise the search walks up from cwd looking for lookmap.yaml or
// lookmap.yml, stopping at a .git boundary or after maxWalkDepth levels.
func findConfigFile(explicitPath string) (string, error) {
	if explicitPath != "" {
		if _, err := os.Stat(explicitPath); err != nil {
			return "", fmt.Errorf("config file not found: %s", explicitPath)
		}
		return explicitPath, nil
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("getting cwd: %w", err)
	}

	dir := cwd
	for i := 0; i < maxWalkDepth; i++ {
		for _, name := range []string{"lookmap.yaml", "lookmap.yml"} {
			path := filepath.Join(dir, name)
			if _, err := os.Stat(path); err == nil {
				return path, nil
			}
		}

		if _, err := os.Stat(filepath.Join(dir, ".git")); err == nil {
			break // repo root
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return "", nil
}
