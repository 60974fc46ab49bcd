package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config interface {
	EnvConfig
	BackendConfig
	StoreConfig
	OAuthConfig
	SecurityConfig
}

type EnvConfig interface {
	GetAppName() string
	GetEnv() string
	GetLogLevel() string
	GetDataFolder() string
}

type mainConfig struct {
	EnvVars
	Backend
	Store
	OAuth
	Security
}

// New returns a Config backed by environment variables only.
func New() Config {
	return newMainConfig(nil)
}

// Load returns a Config backed by environment variables with the YAML file at
// path as a fallback layer. The file is a flat map keyed by environment
// variable name, e.g. "BACKEND_URL: https://api.example.com".
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("[config Load] failed to read %s: %w", path, err)
	}

	raw := make(map[string]any)
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("[config Load] failed to parse %s: %w", path, err)
	}

	values := make(Values, len(raw))
	for k, v := range raw {
		if v == nil {
			continue
		}
		values[k] = fmt.Sprint(v)
	}
	return newMainConfig(values), nil
}

func newMainConfig(values Values) mainConfig {
	return mainConfig{
		EnvVars:  EnvVars{values: values},
		Backend:  Backend{values: values},
		Store:    Store{values: values},
		OAuth:    OAuth{values: values},
		Security: Security{values: values},
	}
}
