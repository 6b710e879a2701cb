package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type WordsCfg struct {
	URL     string
	APIKey  string
	Timeout time.Duration
}

type CacheCfg struct {
	RedisEnabled bool
	RedisAddr    string
	RedisUser    string
	RedisPass    string
	RedisDB      int
	OpTimeout    time.Duration
	TTL          time.Duration
	LRUSize      int

	// redis writes are skipped for keys whose decayed hit score is below
	// RedisMinScore; 0 disables the gate
	HotHalfLife   time.Duration
	RedisMinScore float64
}

type InvalidationCfg struct {
	Enabled    bool
	Topic      string
	Brokers    []string
	GroupID    string
	Precisions []int
}

type MetricsCfg struct {
	Enabled bool
	Addr    string
	Path    string
}

type Config struct {
	Addr             string
	LogLevel         string
	LogConsole       bool
	LogSampleN       int
	DefaultPrecision int
	GridMaxLines     int
	CellsMax         int
	Words            WordsCfg
	Cache            CacheCfg
	Invalidation     InvalidationCfg
	Metrics          MetricsCfg
}

func FromEnv() Config {
	precision := getint("DEFAULT_PRECISION", 9)
	if precision < 1 || precision > 16 {
		precision = 9
	}

	return Config{
		Addr:             getenv("ADDR", ":8090"),
		LogLevel:         getenv("LOG_LEVEL", "info"),
		LogConsole:       getbool("LOG_CONSOLE", false),
		LogSampleN:       getint("LOG_SAMPLE_N", 0),
		DefaultPrecision: precision,
		GridMaxLines:     getint("GRID_MAX_LINES", 5000),
		CellsMax:         getint("CELLS_MAX", 4096),
		Words: WordsCfg{
			URL:     getenv("WORDS_API_URL", "https://map.unl.global/api/v1/location/"),
			APIKey:  os.Getenv("WORDS_API_KEY"),
			Timeout: getduration("WORDS_TIMEOUT", 5*time.Second),
		},
		Cache: CacheCfg{
			RedisEnabled: getbool("REDIS_ENABLED", false),
			RedisAddr:    getenv("REDIS_ADDR", "localhost:6379"),
			RedisUser:    os.Getenv("REDIS_USERNAME"),
			RedisPass:    os.Getenv("REDIS_PASSWORD"),
			RedisDB:      getint("REDIS_DB", 0),
			OpTimeout:    getduration("CACHE_OP_TIMEOUT", 250*time.Millisecond),
			TTL:          getduration("CACHE_TTL", 24*time.Hour),
			LRUSize:      getint("CACHE_LRU_SIZE", 10000),

			HotHalfLife:   getduration("HOTNESS_HALF_LIFE", 10*time.Minute),
			RedisMinScore: getfloat("CACHE_REDIS_MIN_SCORE", 0),
		},
		Invalidation: InvalidationCfg{
			Enabled:    getbool("INVALIDATION_ENABLED", false),
			Topic:      getenv("KAFKA_TOPIC", "unl-words-invalidation"),
			Brokers:    getlist("KAFKA_BROKERS", "localhost:9092"),
			GroupID:    getenv("KAFKA_GROUP_ID", "unl-words-cache"),
			Precisions: getints("INVALIDATION_PRECISIONS", []int{precision}),
		},
		Metrics: MetricsCfg{
			Enabled: getbool("METRICS_ENABLED", false),
			Addr:    getenv("METRICS_ADDR", ":9090"),
			Path:    getenv("METRICS_PATH", "/metrics"),
		},
	}
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getint(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getfloat(k string, def float64) float64 {
	if v := os.Getenv(k); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func getbool(k string, def bool) bool {
	if v := os.Getenv(k); v != "" {
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "1", "t", "true", "y", "yes":
			return true
		case "0", "f", "false", "n", "no":
			return false
		}
	}
	return def
}

func getduration(k string, def time.Duration) time.Duration {
	if v := os.Getenv(k); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

// comma separated, blanks dropped
func getlist(k, def string) []string {
	var out []string
	for p := range strings.SplitSeq(getenv(k, def), ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// parse "7,9" into precisions; entries outside 1..16 are skipped
func getints(k string, def []int) []int {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def
	}
	var out []int
	for p := range strings.SplitSeq(v, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil || n < 1 || n > 16 {
			continue
		}
		out = append(out, n)
	}
	if len(out) == 0 {
		return def
	}
	return out
}
