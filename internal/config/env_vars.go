package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"
)

const (
	appNameVar   = "APP_NAME"
	envVar       = "ENV"
	logLevelVar  = "LOG_LEVEL"
	folderEnvVar = "FOLDER"
)

// Values holds settings read from a config file, keyed by environment variable name.
type Values map[string]string

// lookup resolves a setting: environment first, then file values, then the default.
func (v Values) lookup(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	if value, ok := v[key]; ok && value != "" {
		return value
	}
	return defaultValue
}

func (v Values) duration(key string, defaultValue time.Duration) time.Duration {
	d, err := time.ParseDuration(v.lookup(key, ""))
	if err != nil || d <= 0 {
		return defaultValue
	}
	return d
}

func (v Values) boolean(key string, defaultValue bool) bool {
	b, err := strconv.ParseBool(v.lookup(key, ""))
	if err != nil {
		return defaultValue
	}
	return b
}

type EnvVars struct {
	values Values
}

var _ EnvConfig = EnvVars{}

func (e EnvVars) GetAppName() string {
	return e.values.lookup(appNameVar, "Session Client")
}

func (e EnvVars) GetEnv() string {
	return e.values.lookup(envVar, "DEV")
}

func (e EnvVars) GetLogLevel() string {
	return e.values.lookup(logLevelVar, "info")
}

func (e EnvVars) GetDataFolder() string {
	return e.values.lookup(folderEnvVar, filepath.Join(".", "data"))
}

func GetEnv(envVar, defaultValue string) string {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	return value
}
