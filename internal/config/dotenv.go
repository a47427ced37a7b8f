package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// LoadDotEnv loads environment variables from a .env file if present.
// Existing environment variables are not overwritten.
func LoadDotEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return godotenv.Load(path)
}

type Config struct {
	Port                     string
	Debug                    bool
	DatabaseURL              string
	RedisAddr                string
	RedisPassword            string
	RedisDB                  int
	DescriptionSeconds       int
	DaySpeechSeconds         int
	VoteSeconds              int
	NightSeconds             int
	PresenceTTLSeconds       int
	DisconnectGraceSeconds   int
	AITimeoutMillis          int
	TickSeconds              int
	ArchiveAfterHours        int
	RecentLogEntries         int
	CORSOrigins              []string
	DBMaxOpenConns           int
	DBMaxIdleConns           int
	DBConnMaxLifetimeSeconds int
	OpenAIAPIKey             string
	OpenAIModel              string
	OpenAIBaseURL            string
}

func Default() Config {
	return Config{
		Port:                     "8080",
		DescriptionSeconds:       60,
		DaySpeechSeconds:         90,
		VoteSeconds:              30,
		NightSeconds:             30,
		PresenceTTLSeconds:       15,
		DisconnectGraceSeconds:   20,
		AITimeoutMillis:          3000,
		TickSeconds:              5,
		ArchiveAfterHours:        24,
		RecentLogEntries:         20,
		CORSOrigins:              []string{"http://localhost:3000"},
		DBMaxOpenConns:           10,
		DBMaxIdleConns:           10,
		DBConnMaxLifetimeSeconds: 300,
		OpenAIModel:              "gpt-4o-mini",
		OpenAIBaseURL:            "https://api.openai.com/v1",
	}
}

func Load() Config {
	cfg := Default()
	if raw := os.Getenv("PORT"); raw != "" {
		cfg.Port = raw
	}
	if raw := os.Getenv("DEBUG"); raw != "" {
		if value, err := strconv.ParseBool(raw); err == nil {
			cfg.Debug = value
		}
	}
	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	cfg.RedisAddr = os.Getenv("REDIS_ADDR")
	cfg.RedisPassword = os.Getenv("REDIS_PASSWORD")
	if raw := os.Getenv("REDIS_DB"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value >= 0 {
			cfg.RedisDB = value
		}
	}
	positiveInt("DESCRIPTION_SECONDS", &cfg.DescriptionSeconds)
	positiveInt("DAY_SPEECH_SECONDS", &cfg.DaySpeechSeconds)
	positiveInt("VOTE_SECONDS", &cfg.VoteSeconds)
	positiveInt("NIGHT_SECONDS", &cfg.NightSeconds)
	positiveInt("PRESENCE_TTL_SECONDS", &cfg.PresenceTTLSeconds)
	positiveInt("DISCONNECT_GRACE_SECONDS", &cfg.DisconnectGraceSeconds)
	positiveInt("AI_TIMEOUT_MS", &cfg.AITimeoutMillis)
	positiveInt("ARCHIVE_AFTER_HOURS", &cfg.ArchiveAfterHours)
	positiveInt("RECENT_LOG_ENTRIES", &cfg.RecentLogEntries)
	positiveInt("DB_MAX_OPEN_CONNS", &cfg.DBMaxOpenConns)
	positiveInt("DB_MAX_IDLE_CONNS", &cfg.DBMaxIdleConns)
	positiveInt("DB_CONN_MAX_LIFETIME_SECONDS", &cfg.DBConnMaxLifetimeSeconds)
	// zero disables the proactive ticker
	if raw := os.Getenv("TICK_SECONDS"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value >= 0 {
			cfg.TickSeconds = value
		}
	}
	if raw := os.Getenv("CORS_ORIGINS"); raw != "" {
		var origins []string
		for _, origin := range strings.Split(raw, ",") {
			if origin = strings.TrimSpace(origin); origin != "" {
				origins = append(origins, origin)
			}
		}
		if len(origins) > 0 {
			cfg.CORSOrigins = origins
		}
	}
	if raw := os.Getenv("OPENAI_API_KEY"); raw != "" {
		cfg.OpenAIAPIKey = raw
	}
	if raw := os.Getenv("OPENAI_MODEL"); raw != "" {
		cfg.OpenAIModel = raw
	}
	if raw := os.Getenv("OPENAI_BASE_URL"); raw != "" {
		cfg.OpenAIBaseURL = strings.TrimRight(raw, "/")
	}
	return cfg
}

func positiveInt(key string, dest *int) {
	raw := os.Getenv(key)
	if raw == "" {
		return
	}
	if value, err := strconv.Atoi(raw); err == nil && value > 0 {
		*dest = value
	}
}
