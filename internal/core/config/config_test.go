package config

import (
	"reflect"
	"testing"
	"time"
)

func TestFromEnv_Defaults(t *testing.T) {
	for _, k := range []string{"ADDR", "DEFAULT_PRECISION", "KAFKA_BROKERS", "INVALIDATION_PRECISIONS", "WORDS_API_KEY", "CACHE_TTL"} {
		t.Setenv(k, "")
	}
	cfg := FromEnv()
	if cfg.Addr != ":8090" || cfg.DefaultPrecision != 9 {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.Words.APIKey != "" || cfg.Words.URL != "https://map.unl.global/api/v1/location/" {
		t.Fatalf("unexpected words defaults: %+v", cfg.Words)
	}
	if cfg.Cache.TTL != 24*time.Hour {
		t.Fatalf("cache ttl=%v", cfg.Cache.TTL)
	}
	if !reflect.DeepEqual(cfg.Invalidation.Precisions, []int{9}) {
		t.Fatalf("precisions=%v", cfg.Invalidation.Precisions)
	}
	if !reflect.DeepEqual(cfg.Invalidation.Brokers, []string{"localhost:9092"}) {
		t.Fatalf("brokers=%v", cfg.Invalidation.Brokers)
	}
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("DEFAULT_PRECISION", "7")
	t.Setenv("KAFKA_BROKERS", " a:9092, ,b:9092 ")
	t.Setenv("INVALIDATION_PRECISIONS", "6, 8,99,x")
	t.Setenv("REDIS_ENABLED", "yes")
	t.Setenv("CACHE_OP_TIMEOUT", "1s")
	t.Setenv("GRID_MAX_LINES", "not-a-number")

	cfg := FromEnv()
	if cfg.DefaultPrecision != 7 {
		t.Fatalf("precision=%d", cfg.DefaultPrecision)
	}
	if !reflect.DeepEqual(cfg.Invalidation.Brokers, []string{"a:9092", "b:9092"}) {
		t.Fatalf("brokers=%v", cfg.Invalidation.Brokers)
	}
	if !reflect.DeepEqual(cfg.Invalidation.Precisions, []int{6, 8}) {
		t.Fatalf("precisions=%v", cfg.Invalidation.Precisions)
	}
	if !cfg.Cache.RedisEnabled || cfg.Cache.OpTimeout != time.Second {
		t.Fatalf("cache=%+v", cfg.Cache)
	}
	if cfg.GridMaxLines != 5000 {
		t.Fatalf("bad int must fall back to default, got %d", cfg.GridMaxLines)
	}
}

func TestFromEnv_OutOfRangePrecisionFallsBack(t *testing.T) {
	t.Setenv("DEFAULT_PRECISION", "40")
	t.Setenv("INVALIDATION_PRECISIONS", "")
	cfg := FromEnv()
	if cfg.DefaultPrecision != 9 || !reflect.DeepEqual(cfg.Invalidation.Precisions, []int{9}) {
		t.Fatalf("cfg=%+v", cfg)
	}
}

func TestFromEnv_HotnessGate(t *testing.T) {
	t.Setenv("HOTNESS_HALF_LIFE", "")
	t.Setenv("CACHE_REDIS_MIN_SCORE", "")
	cfg := FromEnv()
	if cfg.Cache.HotHalfLife != 10*time.Minute || cfg.Cache.RedisMinScore != 0 {
		t.Fatalf("defaults: %+v", cfg.Cache)
	}

	t.Setenv("HOTNESS_HALF_LIFE", "30s")
	t.Setenv("CACHE_REDIS_MIN_SCORE", "2.5")
	cfg = FromEnv()
	if cfg.Cache.HotHalfLife != 30*time.Second || cfg.Cache.RedisMinScore != 2.5 {
		t.Fatalf("overrides: %+v", cfg.Cache)
	}

	t.Setenv("CACHE_REDIS_MIN_SCORE", "lots")
	if got := FromEnv().Cache.RedisMinScore; got != 0 {
		t.Fatalf("bad float must fall back, got %v", got)
	}
}
