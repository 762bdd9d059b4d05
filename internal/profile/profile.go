package profile

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// Profile is the configuration to start main server.
type Profile struct {
	// Mode can be "prod" or "dev" or "demo"
	Mode string
	// Addr is the binding address for server
	Addr string
	// Port is the binding port for server
	Port int
	// Data is the data directory
	Data string
	// DSN points to where moodsense reads its records from
	DSN string
	// Driver is the database driver (sqlite or postgres)
	Driver string
	// Version is the current version of server
	Version string
	// Timezone is the IANA zone used for day and hour bucketing (default: UTC)
	Timezone string

	// Analysis configuration
	LookbackDays          int           // MOODSENSE_LOOKBACK_DAYS (default: 30)
	MinWeeklySamples      int           // MOODSENSE_MIN_WEEKLY_SAMPLES (default: 3)
	MinCorrelationSamples int           // MOODSENSE_MIN_CORRELATION_SAMPLES (default: 5)
	PrewarmInterval       time.Duration // MOODSENSE_PREWARM_INTERVAL (default: 0, disabled)

	// Cache configuration
	AnalysisTTL       time.Duration // MOODSENSE_ANALYSIS_TTL (default: 20m)
	RecommendationTTL time.Duration // MOODSENSE_RECOMMENDATION_TTL (default: 3m)
	CacheMaxEntries   int           // MOODSENSE_CACHE_MAX_ENTRIES (default: 1000)

	// RateLimitPerSecond bounds requests per client on the HTTP boundary (default: 10)
	RateLimitPerSecond float64
}

const (
	defaultLookbackDays          = 30
	defaultMinWeeklySamples      = 3
	defaultMinCorrelationSamples = 5
	defaultAnalysisTTL           = 20 * time.Minute
	defaultRecommendationTTL     = 3 * time.Minute
	defaultCacheMaxEntries       = 1000
	defaultRateLimitPerSecond    = 10
)

func (p *Profile) IsDev() bool {
	return p.Mode != "prod"
}

// Location returns the configured bucketing zone, falling back to UTC.
func (p *Profile) Location() *time.Location {
	if p.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(p.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func getEnvInt(key string, fallback int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		slog.Warn("ignoring invalid integer env", "key", key, "value", raw)
		return fallback
	}
	return v
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		slog.Warn("ignoring invalid duration env", "key", key, "value", raw)
		return fallback
	}
	return v
}

// FromEnv loads analysis and cache tuning from MOODSENSE_* environment variables.
// Values already set on the profile are kept when the variable is absent.
func (p *Profile) FromEnv() {
	p.LookbackDays = getEnvInt("MOODSENSE_LOOKBACK_DAYS", p.LookbackDays)
	p.MinWeeklySamples = getEnvInt("MOODSENSE_MIN_WEEKLY_SAMPLES", p.MinWeeklySamples)
	p.MinCorrelationSamples = getEnvInt("MOODSENSE_MIN_CORRELATION_SAMPLES", p.MinCorrelationSamples)
	p.PrewarmInterval = getEnvDuration("MOODSENSE_PREWARM_INTERVAL", p.PrewarmInterval)
	p.AnalysisTTL = getEnvDuration("MOODSENSE_ANALYSIS_TTL", p.AnalysisTTL)
	p.RecommendationTTL = getEnvDuration("MOODSENSE_RECOMMENDATION_TTL", p.RecommendationTTL)
	p.CacheMaxEntries = getEnvInt("MOODSENSE_CACHE_MAX_ENTRIES", p.CacheMaxEntries)
	if tz := os.Getenv("MOODSENSE_TIMEZONE"); tz != "" {
		p.Timezone = tz
	}
}

func checkDataDir(dataDir string) (string, error) {
	// Convert to absolute path if relative path is supplied.
	if !filepath.IsAbs(dataDir) {
		relativeDir := filepath.Join(filepath.Dir(os.Args[0]), dataDir)
		absDir, err := filepath.Abs(relativeDir)
		if err != nil {
			return "", err
		}
		dataDir = absDir
	}

	// Trim trailing \ or / in case user supplies
	dataDir = strings.TrimRight(dataDir, "\\/")
	if _, err := os.Stat(dataDir); err != nil {
		return "", errors.Wrapf(err, "unable to access data folder %s", dataDir)
	}
	return dataDir, nil
}

func (p *Profile) Validate() error {
	if p.Mode != "demo" && p.Mode != "dev" && p.Mode != "prod" {
		p.Mode = "demo"
	}
	if p.Driver == "" {
		p.Driver = "sqlite"
	}

	if p.Mode == "prod" && p.Data == "" {
		if runtime.GOOS == "windows" {
			p.Data = filepath.Join(os.Getenv("ProgramData"), "moodsense")
			if _, err := os.Stat(p.Data); os.IsNotExist(err) {
				if err := os.MkdirAll(p.Data, 0770); err != nil {
					slog.Error("failed to create data directory", slog.String("data", p.Data), slog.String("error", err.Error()))
					return err
				}
			}
		} else {
			p.Data = "/var/opt/moodsense"
		}
	}

	dataDir, err := checkDataDir(p.Data)
	if err != nil {
		slog.Error("failed to check dsn", slog.String("data", dataDir), slog.String("error", err.Error()))
		return err
	}

	p.Data = dataDir
	if p.Driver == "sqlite" && p.DSN == "" {
		dbFile := fmt.Sprintf("moodsense_%s.db", p.Mode)
		p.DSN = filepath.Join(dataDir, dbFile)
	}

	if p.Timezone != "" {
		if _, err := time.LoadLocation(p.Timezone); err != nil {
			return errors.Wrapf(err, "invalid timezone %q", p.Timezone)
		}
	}
	if p.LookbackDays <= 0 {
		p.LookbackDays = defaultLookbackDays
	}
	if p.MinWeeklySamples <= 0 {
		p.MinWeeklySamples = defaultMinWeeklySamples
	}
	if p.MinCorrelationSamples <= 0 {
		p.MinCorrelationSamples = defaultMinCorrelationSamples
	}
	if p.AnalysisTTL <= 0 {
		p.AnalysisTTL = defaultAnalysisTTL
	}
	if p.RecommendationTTL <= 0 {
		p.RecommendationTTL = defaultRecommendationTTL
	}
	if p.CacheMaxEntries <= 0 {
		p.CacheMaxEntries = defaultCacheMaxEntries
	}
	if p.RateLimitPerSecond <= 0 {
		p.RateLimitPerSecond = defaultRateLimitPerSecond
	}
	return nil
}
