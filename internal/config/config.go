package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	ListenPort      string        // ex: ":8080"
	ShutdownTimeout time.Duration // ex: 5s
	RequestTimeout  time.Duration // per-request handler timeout

	LogLevel  string // "debug" | "info" | "warn" | "error"
	PrettyLog bool   // true => zap dev (color), false => zap prod (JSON)

	// Storage
	DatabasePath      string        // SQLite file path
	DatabaseBusyLimit time.Duration // SQLite busy_timeout

	// Metadata extraction
	FetchTimeout     time.Duration // hard limit for one page fetch (default: 8s)
	FetchMaxBytes    int           // bytes read from a page before giving up on <head>
	FetchUserAgent   string        // browser-like UA, some sites refuse bare clients
	FaviconService   string        // fallback icon URL template, "%s" is the hostname
	MetadataCacheTTL time.Duration // how long a fetched result is reused
	EnrichWorkers    int           // concurrent enrichment jobs
	EnrichQueueSize  int           // pending jobs before new ones are dropped
	DefaultTimezone  string        // calendar zone when a request carries none
	TagSuggestLimit  int           // max entries returned by /v1/tags?q=
	GCInterval       time.Duration // interval to purge the in-memory metadata cache

	// Bookmark import (optional, empty file = disabled)
	ImportFile     string
	ImportOwner    string        // email of the account receiving imported bookmarks
	ImportInterval time.Duration // reload interval (default: 24h)

	Redis Redis

	// Forward auth (identity asserted by the reverse proxy)
	AuthSubjectHeader string
	AuthEmailHeader   string
	AuthNameHeader    string
	AuthImageHeader   string

	// External API
	APIRateLimit int // requests per minute per client IP

	AllowedHosts []string // optional, restrict access to specific Host headers
	AllowedCIDRS []string // optional, proxies allowed to assert identity headers
	TrustProxy   bool     // true => trust X-Forwarded-For headers (e.g. cloudflared)
}

// Redis configures the optional metadata cache. An empty Addr selects the
// in-memory cache instead.
type Redis struct {
	Addr             string
	User             string
	Password         string
	PasswordRequired bool
	DB               int

	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	PoolSize     int

	ConnectTimeout time.Duration // total budget for the startup retry loop
	RetryInterval  time.Duration // first backoff step, doubled up to MaxWait
	MaxWait        time.Duration
	PingTimeout    time.Duration
	WarnThreshold  int // attempts before retries are logged at warn
}

func (r Redis) Enabled() bool { return r.Addr != "" }

func Load() *Config {
	loadDotenv(getenv("DOODL_ENV_FILE", ".env"))

	cfg := &Config{
		ListenPort:      getenv("DOODL_LISTEN_PORT", ":8080"),
		ShutdownTimeout: envDuration("DOODL_SHUTDOWN_TIMEOUT", 5*time.Second),
		RequestTimeout:  envDuration("DOODL_REQUEST_TIMEOUT", 15*time.Second),

		LogLevel:  getenv("DOODL_LOG_LEVEL", "info"),
		PrettyLog: envBool("DOODL_PRETTY_LOG", true),

		DatabasePath:      getenv("DOODL_DATABASE_PATH", "/data/doodl.db"),
		DatabaseBusyLimit: envDuration("DOODL_DATABASE_BUSY_TIMEOUT", 5*time.Second),

		FetchTimeout:     envDuration("DOODL_FETCH_TIMEOUT", 8*time.Second),
		FetchMaxBytes:    envInt("DOODL_FETCH_MAX_BYTES", 64*1024),
		FetchUserAgent:   getenv("DOODL_FETCH_USER_AGENT", "Mozilla/5.0 (compatible; doodl/1.0; +https://github.com/MrSnakeDoc/doodl)"),
		FaviconService:   getenv("DOODL_FAVICON_SERVICE", "https://www.google.com/s2/favicons?domain=%s&sz=64"),
		MetadataCacheTTL: envDuration("DOODL_METADATA_CACHE_TTL", 24*time.Hour),
		EnrichWorkers:    max(envInt("DOODL_ENRICH_WORKERS", 4), 1),
		EnrichQueueSize:  envInt("DOODL_ENRICH_QUEUE_SIZE", 256),
		DefaultTimezone:  getenv("DOODL_DEFAULT_TIMEZONE", "UTC"),
		TagSuggestLimit:  envInt("DOODL_TAG_SUGGEST_LIMIT", 10),
		GCInterval:       envDuration("DOODL_GC_INTERVAL", time.Hour),

		ImportFile:     getenv("DOODL_IMPORT_FILE", ""),
		ImportOwner:    getenv("DOODL_IMPORT_OWNER", ""),
		ImportInterval: envDuration("DOODL_IMPORT_INTERVAL", 24*time.Hour),

		Redis: Redis{
			Addr:             getenv("DOODL_REDIS_ADDR", ""),
			User:             getenv("DOODL_REDIS_USERNAME", "default"),
			Password:         getenv("DOODL_REDIS_PASSWORD", ""),
			PasswordRequired: envBool("DOODL_REDIS_PASSWORD_REQUIRED", false),
			DB:               envInt("DOODL_REDIS_DB", 0),
			DialTimeout:      envDuration("DOODL_REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:      envDuration("DOODL_REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout:     envDuration("DOODL_REDIS_WRITE_TIMEOUT", 3*time.Second),
			PoolSize:         envInt("DOODL_REDIS_POOL_SIZE", 10),
			ConnectTimeout:   envDuration("DOODL_REDIS_CONNECT_TIMEOUT", 30*time.Second),
			RetryInterval:    envDuration("DOODL_REDIS_RETRY_INTERVAL", 2*time.Second),
			MaxWait:          envDuration("DOODL_REDIS_MAX_WAIT", 10*time.Second),
			PingTimeout:      envDuration("DOODL_REDIS_PING_TIMEOUT", 5*time.Second),
			WarnThreshold:    envInt("DOODL_REDIS_WARN_THRESHOLD", 3),
		},

		AuthSubjectHeader: getenv("DOODL_AUTH_SUBJECT_HEADER", "X-Auth-Request-User"),
		AuthEmailHeader:   getenv("DOODL_AUTH_EMAIL_HEADER", "X-Auth-Request-Email"),
		AuthNameHeader:    getenv("DOODL_AUTH_NAME_HEADER", "X-Auth-Request-Preferred-Username"),
		AuthImageHeader:   getenv("DOODL_AUTH_IMAGE_HEADER", ""),

		APIRateLimit: envInt("DOODL_API_RATE_LIMIT", 60),

		AllowedHosts: splitList(getenv("DOODL_ALLOWED_HOSTS", "")),
		AllowedCIDRS: splitList(getenv("DOODL_ALLOWED_CIDRS", "")),
		TrustProxy:   envBool("DOODL_TRUST_PROXY", true),
	}

	if cfg.Redis.Enabled() && cfg.Redis.PasswordRequired && cfg.Redis.Password == "" {
		panic("❌ FATAL: DOODL_REDIS_PASSWORD is required when DOODL_REDIS_PASSWORD_REQUIRED=true")
	}
	if cfg.ImportFile != "" && cfg.ImportOwner == "" {
		panic("❌ FATAL: DOODL_IMPORT_OWNER is required when DOODL_IMPORT_FILE is set")
	}
	if _, err := time.LoadLocation(cfg.DefaultTimezone); err != nil {
		panic(fmt.Sprintf("❌ FATAL: Invalid DOODL_DEFAULT_TIMEZONE %q: %v", cfg.DefaultTimezone, err))
	}

	if cfg.LogLevel == "debug" {
		log.Printf("[DEBUG] cfg: %+v\n", cfg.redacted())
	}

	return cfg
}

func (c Config) redacted() Config {
	if c.Redis.Password != "" {
		c.Redis.Password = "***REDACTED***"
	}
	return c
}

// loadDotenv fills unset variables from an optional .env file.
// Variables already present in the environment win.
func loadDotenv(path string) {
	if path == "" {
		return
	}
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		panic(fmt.Sprintf("❌ FATAL: Cannot read env file %s: %v", path, err))
	}
}

func getenv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

// envParse reads key with parse. A set but malformed value is fatal.
func envParse[T any](key string, def T, parse func(string) (T, error)) T {
	v := getenv(key, "")
	if v == "" {
		return def
	}
	out, err := parse(v)
	if err != nil {
		panic(fmt.Sprintf("❌ FATAL: Invalid %s %q: %v", key, v, err))
	}
	return out
}

func envInt(key string, def int) int { return envParse(key, def, strconv.Atoi) }

func envBool(key string, def bool) bool { return envParse(key, def, strconv.ParseBool) }

func envDuration(key string, def time.Duration) time.Duration {
	return envParse(key, def, time.ParseDuration)
}

// splitList splits a comma separated value, dropping blanks and surrounding quotes.
func splitList(s string) []string {
	var out []string
	for part := range strings.SplitSeq(s, ",") {
		if p := strings.Trim(strings.TrimSpace(part), `"'`); p != "" {
			out = append(out, p)
		}
	}
	return out
}
