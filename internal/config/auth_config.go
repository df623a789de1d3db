package config

import (
	"strconv"
	"time"
)

type AuthConfig interface {
	GetJWTSecret() string
	GetJWTRefreshSecret() string
	GetAccessTokenExpiry() time.Duration
	GetSessionTTL() time.Duration
	GetUserCacheTTL() time.Duration
	GetBcryptCost() int
	GetLoginRateLimit() int
	GetLoginRateWindow() time.Duration
}

type Auth struct{}

var _ AuthConfig = Auth{}

func (Auth) GetJWTSecret() string {
	return GetEnv("JWT_SECRET", "")
}

// GetJWTRefreshSecret returns the refresh-token signing secret. Falls back to
// the access-token secret when no dedicated secret is configured.
func (a Auth) GetJWTRefreshSecret() string {
	return GetEnv("JWT_REFRESH_SECRET", a.GetJWTSecret())
}

func (Auth) GetAccessTokenExpiry() time.Duration {
	return getDuration("JWT_EXPIRES_IN", 24*time.Hour)
}

func (Auth) GetSessionTTL() time.Duration {
	return getDuration("SESSION_TTL", 24*time.Hour)
}

func (Auth) GetUserCacheTTL() time.Duration {
	return getDuration("USER_CACHE_TTL", time.Hour)
}

func (Auth) GetBcryptCost() int {
	return getInt("BCRYPT_COST", 12)
}

func (Auth) GetLoginRateLimit() int {
	return getInt("LOGIN_RATE_LIMIT", 10)
}

func (Auth) GetLoginRateWindow() time.Duration {
	return getDuration("LOGIN_RATE_WINDOW", time.Minute)
}

func getDuration(envVar string, defaultValue time.Duration) time.Duration {
	value := GetEnv(envVar, "")
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		return defaultValue
	}
	return d
}

func getInt(envVar string, defaultValue int) int {
	value := GetEnv(envVar, "")
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil || n <= 0 {
		return defaultValue
	}
	return n
}
