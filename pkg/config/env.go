// Env loader
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv string
	Port   string

	Timezone     string
	CorpusPath   string
	TopicsPath   string
	KeywordsPath string
	DefaultTopic string

	DefaultMorning   string
	DefaultMidday    string
	DefaultAfternoon string
	DefaultEvening   string

	StoreDriver string
	SQLitePath  string
	DBHost      string
	DBPort      string
	DBName      string
	DBUser      string
	DBPassword  string
	DBSchema    string

	LedgerDriver string
	RedisURL     string
	RedisPrefix  string

	Transport    string
	NatsURL      string
	NatsSubject  string
	SmtpFrom     string
	SmtpFromName string
	SmtpPassword string
	SmtpHost     string
	SmtpPort     int

	JWTSecret   string
	GatewayKeys string
	TokenTTL    time.Duration

	LogFile  string
	LogLevel string

	SearchCacheTTL     time.Duration
	SendTimeout        time.Duration
	MaxConcurrentSends int
}

// LoadConfig loads environment variables from the .env file
func LoadConfig() *Config {
	switch GetAppEnv() {
	case "production":
		if err := godotenv.Load(".env.production"); err == nil {
			fmt.Println("Loaded .env.production")
		}
	default:
		if err := godotenv.Load(".env.development"); err == nil {
			fmt.Println("Loaded .env.development")
		}
	}

	return &Config{
		AppEnv: getEnv("APP_ENV", "development"),
		Port:   getEnv("PORT", "8080"),

		Timezone:     getEnv("TIMEZONE", "UTC"),
		CorpusPath:   getEnv("CORPUS_PATH", "data/corpus.json"),
		TopicsPath:   getEnv("TOPICS_PATH", "configs/topics.yaml"),
		KeywordsPath: getEnv("KEYWORDS_PATH", "configs/keywords.yaml"),
		DefaultTopic: getEnv("DEFAULT_TOPIC", "encouragement"),

		DefaultMorning:   getEnv("DEFAULT_SLOT_MORNING", "07:30"),
		DefaultMidday:    getEnv("DEFAULT_SLOT_MIDDAY", "12:00"),
		DefaultAfternoon: getEnv("DEFAULT_SLOT_AFTERNOON", "16:30"),
		DefaultEvening:   getEnv("DEFAULT_SLOT_EVENING", "21:00"),

		StoreDriver: strings.ToLower(getEnv("STORE_DRIVER", "sqlite")),
		SQLitePath:  getEnv("SQLITE_PATH", "data/verse-courier.db"),
		DBHost:      getEnv("BLUEPRINT_DB_HOST", "localhost"),
		DBPort:      getEnv("BLUEPRINT_DB_PORT", "5432"),
		DBName:      getEnv("BLUEPRINT_DB_DATABASE", "verse_courier"),
		DBUser:      getEnv("BLUEPRINT_DB_USERNAME", "postgres"),
		DBPassword:  getEnv("BLUEPRINT_DB_PASSWORD", ""),
		DBSchema:    getEnv("BLUEPRINT_DB_SCHEMA", "public"),

		LedgerDriver: strings.ToLower(getEnv("LEDGER_DRIVER", "store")),
		RedisURL:     getEnv("REDIS_URL", "redis://localhost:6379/0"),
		RedisPrefix:  getEnv("REDIS_PREFIX", "verse-courier"),

		Transport:    strings.ToLower(getEnv("TRANSPORT", "log")),
		NatsURL:      getEnv("NATS_URL", "nats://localhost:4222"),
		NatsSubject:  getEnv("NATS_SUBJECT", "verses.deliver"),
		SmtpFrom:     getEnv("SMTP_FROM", ""),
		SmtpFromName: getEnv("SMTP_FROM_NAME", "Verse Courier"),
		SmtpPassword: getEnv("SMTP_PASSWORD", ""),
		SmtpHost:     getEnv("SMTP_HOST", "smtp.gmail.com"),
		SmtpPort:     getEnvInt("SMTP_PORT", 587),

		JWTSecret:   getEnv("JWT_SECRET", ""),
		GatewayKeys: getEnv("GATEWAY_KEYS", ""),
		TokenTTL:    getEnvDuration("TOKEN_TTL", 24*time.Hour),

		LogFile:  getEnv("LOG_FILE", ""),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		SearchCacheTTL:     getEnvDuration("SEARCH_CACHE_TTL", 10*time.Minute),
		SendTimeout:        getEnvDuration("SEND_TIMEOUT", 30*time.Second),
		MaxConcurrentSends: getEnvInt("MAX_CONCURRENT_SENDS", 16),
	}
}

// Location resolves the configured IANA timezone.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// IsProduction reports whether APP_ENV is production.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	n, err := strconv.Atoi(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return n
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	d, err := time.ParseDuration(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return d
}

func GetAppEnv() string {
	if value, exists := os.LookupEnv("APP_ENV"); exists {
		return value
	}
	return "development"
}
