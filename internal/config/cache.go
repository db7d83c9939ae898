package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// CacheConfig configures the Redis response cache placed in front of the
// read-only checkout endpoints (session details and seat lists).  When
// Enabled is false or no Redis client is available the middleware is a
// pass-through.
//
// KeyStrategy selects which request parts form the key: "route",
// "method_route", "method_route_query" or the default "route_query".
// RespectNoCache lets a client force a refresh with
// "Cache-Control: no-cache".
type CacheConfig struct {
	Enabled        bool
	Methods        map[string]bool
	TTL            time.Duration
	KeyStrategy    string
	Prefix         string
	MaxBodyBytes   int
	RespectNoCache bool
}

// LoadCacheConfig reads CACHE_* variables, falling back to defaults.
func LoadCacheConfig() CacheConfig {
	return CacheConfig{
		Enabled:        envBool("CACHE_ENABLED", true),
		Methods:        parseMethods(getenv("CACHE_METHODS", "GET")),
		TTL:            parseDur(getenv("CACHE_TTL", "60s")),
		KeyStrategy:    getenv("CACHE_KEY_STRATEGY", "route_query"),
		Prefix:         getenv("CACHE_PREFIX", "checkout:cache"),
		MaxBodyBytes:   atoi(getenv("CACHE_MAX_BODY_BYTES", "1048576")),
		RespectNoCache: envBool("CACHE_RESPECT_NO_CACHE", true),
	}
}

func parseMethods(s string) map[string]bool {
	m := map[string]bool{}
	for _, p := range strings.Split(s, ",") {
		p = strings.TrimSpace(strings.ToUpper(p))
		if p != "" {
			m[p] = true
		}
	}
	return m
}

// Helper functions shared with ratelimit.go and redis.go.
func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func atoi(s string) int {
	i, _ := strconv.Atoi(s)
	return i
}

func parseDur(s string) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return time.Second
	}
	return d
}
