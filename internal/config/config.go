package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Storage backends.
const (
	StorageMemory = "memory"
	StorageSQLite = "sqlite"
	StorageRedis  = "redis"
)

type Config struct {
	ListenPort      string        // ex: ":8080"
	ShutdownTimeout time.Duration // ex: 5s

	LogLevel      string // "debug" | "info" | "warn" | "error"
	PrettyLog     bool   // true => zap dev (color), false => zap prod (JSON)
	LogFile       string // optional rotating log file
	LogMaxSizeMB  int
	LogMaxBackups int
	LogMaxAgeDays int

	// Storage
	Storage          string        // "memory" | "sqlite" | "redis"
	SQLitePath       string        // ex: "launchpad.db"
	KeyPrefix        string        // namespace for redis keys
	MigrationLockTTL time.Duration // expiry of the migration lock key

	// Redis (only read when Storage == "redis")
	RedisAddr           string        // ex: "localhost:6379"
	RedisUser           string        // optional
	RedisPassword       string        // optional
	RedisDB             int           // Redis DB number
	RedisDT             time.Duration // Redis dial timeout (ex: 5s)
	RedisRT             time.Duration // Redis read timeout (ex: 3s)
	RedisWT             time.Duration // Redis write timeout (ex: 3s)
	RedisMaxWait        time.Duration // max wait between retries (ex: 10s)
	RedisPingTimeout    time.Duration // timeout for each ping attempt (ex: 5s)
	RedisPoolSize       int           // Redis connection pool size
	RedisConnectTimeout time.Duration // Total time to retry connecting (ex: 30s)
	RedisRetryInterval  time.Duration // Initial wait between retries (ex: 2s, grows exponentially)
	RedisWarnThreshold  int           // warn after this many attempts

	// Host collaborators
	HostBridgeURL string        // empty => local fallbacks
	HostTimeout   time.Duration // per-call timeout against the bridge
	SearchURL     string        // empty => suggestions disabled
	SearchTimeout time.Duration
	DefaultVolume int // 0-100

	// Link import
	ImportFiles    []string      // Homepage bookmarks.yaml / services.yaml files
	ImportInterval time.Duration // interval between imports (default: 24h)

	AllowedHosts        []string // optional, restrict access to specific Host headers
	AllowedCIDRS        []string // optional, restrict access to specific IP (e.g. "1.2.3.4, 5.6.7.8")
	TrustProxy          bool     // true => trust X-Forwarded-For headers (e.g. cloudflared)
	SuggestBurst        int      // rate limit burst for /api/suggest
	SuggestRefillPerMin int      // rate limit refill for /api/suggest
}

// file holds the optional YAML config named by LAUNCHPAD_CONFIG while Load runs.
var file *viper.Viper

// Load reads the configuration from the environment. Values missing from the
// environment are taken from the LAUNCHPAD_CONFIG file when one is given.
func Load() *Config {
	file = loadFile(os.Getenv("LAUNCHPAD_CONFIG"))
	defer func() { file = nil }()

	cfg := &Config{
		// Server settings
		ListenPort:      getenv("LAUNCHPAD_LISTEN_PORT", ":8080"),
		ShutdownTimeout: mustDuration("LAUNCHPAD_SHUTDOWN_TIMEOUT", 5*time.Second),

		// Logging
		LogLevel:      getenv("LAUNCHPAD_LOG_LEVEL", "info"),
		PrettyLog:     mustBool("LAUNCHPAD_PRETTY_LOG", true),
		LogFile:       getenv("LAUNCHPAD_LOG_FILE", ""),
		LogMaxSizeMB:  getenvInt("LAUNCHPAD_LOG_MAX_SIZE_MB", 10),
		LogMaxBackups: getenvInt("LAUNCHPAD_LOG_MAX_BACKUPS", 3),
		LogMaxAgeDays: getenvInt("LAUNCHPAD_LOG_MAX_AGE_DAYS", 28),

		// Storage
		Storage:          strings.ToLower(getenv("LAUNCHPAD_STORAGE", StorageSQLite)),
		SQLitePath:       getenv("LAUNCHPAD_SQLITE_PATH", "launchpad.db"),
		KeyPrefix:        getenv("LAUNCHPAD_KEY_PREFIX", "launchpad:"),
		MigrationLockTTL: mustDuration("LAUNCHPAD_MIGRATION_LOCK_TTL", 30*time.Second),

		// Redis tuning
		RedisUser:           getenv("LAUNCHPAD_REDIS_USERNAME", ""),
		RedisPassword:       getenv("LAUNCHPAD_REDIS_PASSWORD", ""),
		RedisDB:             getenvInt("LAUNCHPAD_REDIS_DB", 0),
		RedisDT:             mustDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
		RedisRT:             mustDuration("REDIS_READ_TIMEOUT", 3*time.Second),
		RedisWT:             mustDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		RedisMaxWait:        mustDuration("REDIS_MAX_WAIT", 10*time.Second),
		RedisPingTimeout:    mustDuration("REDIS_PING_TIMEOUT", 5*time.Second),
		RedisPoolSize:       getenvInt("REDIS_POOL_SIZE", 10),
		RedisConnectTimeout: mustDuration("REDIS_CONNECT_TIMEOUT", 30*time.Second),
		RedisRetryInterval:  mustDuration("REDIS_RETRY_INTERVAL", 2*time.Second),
		RedisWarnThreshold:  getenvInt("REDIS_WARN_THRESHOLD", 3),

		// Host collaborators
		HostBridgeURL: strings.TrimRight(getenv("LAUNCHPAD_HOST_BRIDGE_URL", ""), "/"),
		HostTimeout:   mustDuration("LAUNCHPAD_HOST_TIMEOUT", 2*time.Second),
		SearchURL:     getenv("LAUNCHPAD_SEARCH_URL", ""),
		SearchTimeout: mustDuration("LAUNCHPAD_SEARCH_TIMEOUT", 3*time.Second),
		DefaultVolume: clampPercent(getenvInt("LAUNCHPAD_DEFAULT_VOLUME", 80)),

		// Import
		ImportFiles:    splitAndTrim(getenv("LAUNCHPAD_IMPORT_FILES", "")),
		ImportInterval: mustDuration("LAUNCHPAD_IMPORT_INTERVAL", 24*time.Hour),

		// Access restrictions
		AllowedHosts:        splitAndTrim(getenv("LAUNCHPAD_ALLOWED_HOSTS", "")),
		AllowedCIDRS:        parseAllowedIPs(getenv("LAUNCHPAD_ALLOWED_CIDRS", "")),
		TrustProxy:          mustBool("LAUNCHPAD_TRUST_PROXY", true),
		SuggestBurst:        getenvInt("LAUNCHPAD_SUGGEST_BURST", 10),
		SuggestRefillPerMin: getenvInt("LAUNCHPAD_SUGGEST_REFILL_PER_MIN", 30),
	}

	switch cfg.Storage {
	case StorageMemory, StorageSQLite:
	case StorageRedis:
		cfg.RedisAddr = requireEnv("LAUNCHPAD_REDIS_ADDR")
	default:
		panic(fmt.Sprintf("❌ FATAL: Invalid LAUNCHPAD_STORAGE %q (want memory, sqlite or redis)", cfg.Storage))
	}

	// Log config only in debug mode with redacted sensitive fields
	if cfg.LogLevel == "debug" {
		cfgCopy := *cfg
		if cfg.RedisPassword != "" {
			cfgCopy.RedisPassword = "***REDACTED***"
		}
		if cfg.RedisUser != "" {
			cfgCopy.RedisUser = "***REDACTED***"
		}
		log.Printf("[DEBUG] cfg: %+v\n", cfgCopy)
	}

	return cfg
}

func loadFile(path string) *viper.Viper {
	if path == "" {
		return nil
	}
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		panic(fmt.Sprintf("❌ FATAL: Failed to read config file %s: %v", path, err))
	}
	return v
}

// fileKey maps LAUNCHPAD_LISTEN_PORT to listen_port.
func fileKey(envKey string) string {
	return strings.ToLower(strings.TrimPrefix(envKey, "LAUNCHPAD_"))
}

// lookup returns the environment value for key, then the config file value.
// YAML lists are joined with commas.
func lookup(key string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	if file == nil {
		return ""
	}
	fk := fileKey(key)
	if !file.IsSet(fk) {
		return ""
	}
	if list, ok := file.Get(fk).([]any); ok {
		parts := make([]string, 0, len(list))
		for _, p := range list {
			parts = append(parts, fmt.Sprint(p))
		}
		return strings.Join(parts, ",")
	}
	return file.GetString(fk)
}

// helpers
func getenv(key, def string) string {
	if v := lookup(key); v != "" {
		return v
	}
	return def
}

func requireEnv(key string) string {
	v := lookup(key)
	if v == "" {
		panic(fmt.Sprintf("❌ FATAL: Required environment variable %s is not set", key))
	}
	return v
}

func getenvInt(key string, def int) int {
	if v := lookup(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func mustBool(key string, def bool) bool {
	if v := lookup(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func mustDuration(key string, def time.Duration) time.Duration {
	if v := lookup(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func clampPercent(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

func parseAllowedIPs(allowed string) []string {
	if allowed == "" {
		return nil
	}
	ips := make([]string, 0, 4)
	for _, ip := range splitAndTrim(allowed) {
		if ip != "" {
			ips = append(ips, ip)
		}
	}
	return ips
}

func splitAndTrim(s string) []string {
	if s == "" {
		return nil
	}
	raw := strings.Split(s, ",")
	parts := make([]string, 0, len(raw))
	for _, part := range raw {
		trimmed := strings.TrimSpace(part)
		// Remove surrounding quotes if present
		trimmed = strings.Trim(trimmed, `"'`)
		if trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return parts
}
