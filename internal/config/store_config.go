package config

type StoreBackend string

const (
	StoreBackendFile   StoreBackend = "file"
	StoreBackendRedis  StoreBackend = "redis"
	StoreBackendMemory StoreBackend = "memory"
)

type StoreConfig interface {
	GetStoreBackend() StoreBackend
	GetDataFolder() string
	GetStoreSecret() string
	GetRedisAddr() string
	GetRedisPassword() string
	GetRedisDB() int
	GetRedisKey() string
}

type Store struct{}

var _ StoreConfig = Store{}

func (Store) GetStoreBackend() StoreBackend {
	switch b := StoreBackend(GetEnv("STORE_BACKEND", string(StoreBackendFile))); b {
	case StoreBackendFile, StoreBackendRedis, StoreBackendMemory:
		return b
	default:
		return StoreBackendFile
	}
}

func (Store) GetDataFolder() string {
	return GetEnv("FOLDER", "./data")
}

// GetStoreSecret enables at-rest encryption of the credentials file when non-empty.
func (Store) GetStoreSecret() string {
	return GetEnv("STORE_SECRET", "")
}

func (Store) GetRedisAddr() string {
	return GetEnv("REDIS_ADDR", "localhost:6379")
}

func (Store) GetRedisPassword() string {
	return GetEnv("REDIS_PASSWORD", "")
}

func (Store) GetRedisDB() int {
	return GetInt("REDIS_DB", 0)
}

func (Store) GetRedisKey() string {
	return GetEnv("REDIS_KEY", "gym-dashboard:credentials")
}
