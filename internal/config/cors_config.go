package config

import "strings"

type CorsConfig interface {
	GetAllowedOrigins() []string
	GetAllowedMethods() string
	GetAllowedHeaders() string
}

type Cors struct{}

var _ CorsConfig = Cors{}

func (Cors) GetAllowedOrigins() []string {
	raw := GetEnv("CORS_ALLOWED_ORIGINS", "*")
	parts := strings.Split(raw, ",")
	origins := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}

func (Cors) GetAllowedMethods() string {
	return GetEnv("CORS_ALLOWED_METHODS", "GET, POST, PUT, DELETE, OPTIONS")
}

func (Cors) GetAllowedHeaders() string {
	return GetEnv("CORS_ALLOWED_HEADERS", "Content-Type, Authorization")
}
