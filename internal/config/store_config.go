package config

type StoreConfig interface {
	GetDatabaseURL() string
	GetRedisAddr() string
	GetRedisPassword() string
	GetRedisDB() int
}

type Store struct{}

var _ StoreConfig = Store{}

func (Store) GetDatabaseURL() string {
	return GetEnv("DATABASE_URL", "")
}

func (Store) GetRedisAddr() string {
	return GetEnv("REDIS_ADDR", "localhost:6379")
}

func (Store) GetRedisPassword() string {
	return GetEnv("REDIS_PASSWORD", "")
}

func (Store) GetRedisDB() int {
	return getInt("REDIS_DB", 0)
}
