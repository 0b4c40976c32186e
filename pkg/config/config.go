package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv   string
	LogLevel string

	// APIBaseURL is the storefront API root. It must end with a slash;
	// request paths are concatenated onto it.
	APIBaseURL string

	// Cookies seeds the client cookie jar, in "name=value; name2=value2"
	// form. The session and CSRF cookies normally arrive here.
	Cookies string

	// CSRFCookie names the cookie whose value is echoed back in the
	// X-CSRFToken header on every request.
	CSRFCookie string

	RequestTimeout time.Duration
}

func Load() Config {
	// Missing .env is fine; the environment may be set directly.
	_ = godotenv.Load()

	return Config{
		AppEnv:         getEnv("APP_ENV", "dev"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		APIBaseURL:     getEnv("API_BASE_URL", "http://localhost:8000/api/"),
		Cookies:        getEnv("STORE_COOKIES", ""),
		CSRFCookie:     getEnv("CSRF_COOKIE", "csrftoken"),
		RequestTimeout: getEnvDuration("REQUEST_TIMEOUT", 15*time.Second),
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)

	if v == "" {
		return def
	}

	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}

	return d
}
