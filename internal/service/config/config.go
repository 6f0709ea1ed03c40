package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

func init() {
	godotenv.Load()
}

type Config struct {
	HTTPPort string
	Env      string

	LoggerLevel string

	// Spine connection
	SpineURL          string
	SpineClinicalPath string
	SpineACSPath      string

	// Identity of this adaptor towards Spine
	NhsdAsidTo  string
	PartyIDFrom string
	PartyIDTo   string

	// Asynchronous upload behaviour
	ScrResultTimeout     time.Duration
	PollFallbackInterval time.Duration
}

func NewConfigFromEnv() (Config, error) {
	return Config{
		HTTPPort:    envString("PORT", "8080"),
		Env:         envString("APP_ENV", "development"),
		LoggerLevel: envString("LOGGER_LEVEL", "debug"),

		SpineURL:          envString("SPINE_URL", "http://localhost:8081"),
		SpineClinicalPath: envString("SPINE_CLINICAL_PATH", "/clinical"),
		SpineACSPath:      envString("SPINE_ACS_PATH", "/sync-service"),

		NhsdAsidTo:  envString("NHSD_ASID_TO", "655159266510"),
		PartyIDFrom: envString("PARTY_ID_FROM", "test-party-from"),
		PartyIDTo:   envString("PARTY_ID_TO", "test-party-to"),

		ScrResultTimeout:     envDuration("SCR_RESULT_TIMEOUT", 90*time.Second),
		PollFallbackInterval: envDuration("SPINE_POLL_FALLBACK_INTERVAL", 2*time.Second),
	}, nil
}

func envString(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	// bare numbers are milliseconds, same convention as Spine's Retry-After
	if ms, err := strconv.Atoi(v); err == nil {
		return time.Duration(ms) * time.Millisecond
	}
	return fallback
}
