package config

import "path/filepath"

const (
	StoreKindFile  = "file"
	StoreKindRedis = "redis"
)

type StoreConfig interface {
	GetStoreKind() string
	GetSessionFile() string
	GetStoreKeyFile() string
	GetRedisURL() string
	GetRedisKey() string
}

type Store struct {
	values Values
}

var _ StoreConfig = Store{}

func (s Store) GetStoreKind() string {
	return s.values.lookup("STORE_KIND", StoreKindFile)
}

func (s Store) GetSessionFile() string {
	return s.values.lookup("SESSION_FILE", filepath.Join(EnvVars(s).GetDataFolder(), "session.json"))
}

// GetStoreKeyFile is the age identity used to seal the session file.
func (s Store) GetStoreKeyFile() string {
	return s.values.lookup("STORE_KEY_FILE", filepath.Join(EnvVars(s).GetDataFolder(), "session.key"))
}

func (s Store) GetRedisURL() string {
	return s.values.lookup("REDIS_URL", "redis://localhost:6379/0")
}

func (s Store) GetRedisKey() string {
	return s.values.lookup("REDIS_KEY", "session:default")
}
