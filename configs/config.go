package config

import "os"

type Config struct {
	LinkedInClientID     string
	LinkedInClientSecret string
	LinkedInRedirectURI  string
	LinkedInAPIBaseURL   string
	LinkedInAuthBaseURL  string
	PostgresURI          string
	RedisURI             string
	FrontendURL          string
	SecretKey            string
	CookieName           string
	StateCookieName      string
}

func LoadConfig() *Config {
	return &Config{
		LinkedInClientID:     getEnv("LINKEDIN_CLIENT_ID", ""),
		LinkedInClientSecret: getEnv("LINKEDIN_CLIENT_SECRET", ""),
		LinkedInRedirectURI:  getEnv("LINKEDIN_REDIRECT_URI", "http://localhost:3000/login/callback"),
		LinkedInAPIBaseURL:   getEnv("LINKEDIN_API_BASE_URL", "https://api.linkedin.com"),
		LinkedInAuthBaseURL:  getEnv("LINKEDIN_AUTH_BASE_URL", "https://www.linkedin.com"),
		PostgresURI:          getEnv("POSTGRES_URI", ""),
		RedisURI:             getEnv("REDIS_URI", "localhost:6379"),
		FrontendURL:          getEnv("FRONTEND_URL", "http://localhost:5173"),
		SecretKey:            getEnv("SECRET_KEY", ""),
		CookieName:           getEnv("COOKIE_NAME", "linkpost_session"),
		StateCookieName:      getEnv("STATE_COOKIE_NAME", "linkpost_oauth_state"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
