package config

import (
	"log"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	APIPort string
	SiteURL string
	JWTKey  []byte
	JWTExp  time.Duration

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSslMode  string
	DBConnStr  string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	ServerHeartbeatTTLSeconds int
	TokenReaperIntervalMin    int

	SMTPHost     string
	SMTPPort     string
	SMTPUser     string
	SMTPPassword string
	SMTPFrom     string

	DiscordClientID     string
	DiscordClientSecret string
	DiscordRedirectURI  string
}

var AppConfig *Config

func Load() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	AppConfig = &Config{
		APIPort:                   getEnv("API_PORT", "8080"),
		SiteURL:                   getEnv("SITE_URL", "http://localhost:8080"),
		JWTKey:                    []byte(getEnv("JWT_SECRET", "defaultsecret")),
		JWTExp:                    time.Duration(getEnvAsInt("JWT_EXPIRATION_HOURS", 168)) * time.Hour,
		DBHost:                    getEnv("DB_HOST", "localhost"),
		DBPort:                    getEnv("DB_PORT", "5432"),
		DBUser:                    getEnv("DB_USER", "user"),
		DBPassword:                getEnv("DB_PASSWORD", "password"),
		DBName:                    getEnv("DB_NAME", "gamehub_db"),
		DBSslMode:                 getEnv("DB_SSLMODE", "disable"),
		RedisAddr:                 getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:             getEnv("REDIS_PASSWORD", ""),
		RedisDB:                   getEnvAsInt("REDIS_DB", 0),
		ServerHeartbeatTTLSeconds: getEnvAsInt("SERVER_HEARTBEAT_TTL_SECONDS", 90),
		TokenReaperIntervalMin:    getEnvAsInt("TOKEN_REAPER_INTERVAL_MINUTES", 15),
		SMTPHost:                  getEnv("SMTP_HOST", "localhost"),
		SMTPPort:                  getEnv("SMTP_PORT", "587"),
		SMTPUser:                  getEnv("SMTP_USER", ""),
		SMTPPassword:              getEnv("SMTP_PASSWORD", ""),
		SMTPFrom:                  getEnv("SMTP_FROM", "no-reply@gamehub.local"),
		DiscordClientID:           getEnv("DISCORD_CLIENT_ID", ""),
		DiscordClientSecret:       getEnv("DISCORD_CLIENT_SECRET", ""),
		DiscordRedirectURI:        getEnv("DISCORD_REDIRECT_URI", ""),
	}

	AppConfig.DBConnStr = "host=" + AppConfig.DBHost +
		" port=" + AppConfig.DBPort +
		" user=" + AppConfig.DBUser +
		" password=" + AppConfig.DBPassword +
		" dbname=" + AppConfig.DBName +
		" sslmode=" + AppConfig.DBSslMode
}

// SiteScheme returns the scheme of the configured site URL. Used as the
// fallback when a request carries no X-Forwarded-Proto header.
func (c *Config) SiteScheme() string {
	u, err := url.Parse(c.SiteURL)
	if err != nil || u.Scheme == "" {
		return "http"
	}
	return u.Scheme
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return fallback
}
