package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

func boolFromEnv(key string) bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	return v == "1" || v == "true" || v == "yes" || v == "y" || v == "on"
}

// ReportCacheEnabled gates the Redis cache in front of the report queries.
//
// Set via env:
// - ENABLE_REPORT_CACHE=true
func ReportCacheEnabled() bool {
	return boolFromEnv("ENABLE_REPORT_CACHE")
}

// ReportCacheTTL is how long a cached report payload stays fresh.
//
// Env: REPORT_CACHE_TTL_SECONDS (default 120s)
func ReportCacheTTL() time.Duration {
	ttl := 120
	if v := strings.TrimSpace(os.Getenv("REPORT_CACHE_TTL_SECONDS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			ttl = n
		}
	}
	return time.Duration(ttl) * time.Second
}

// UpstreamSyncEnabled gates the background collections sync worker.
//
// Set via env:
// - ENABLE_UPSTREAM_SYNC=true
func UpstreamSyncEnabled() bool {
	return boolFromEnv("ENABLE_UPSTREAM_SYNC")
}

// UpstreamSyncInterval is the period between sync runs.
//
// Env: UPSTREAM_SYNC_INTERVAL_SECONDS (default 100s, matching the upstream
// gateway's recommended polling rate)
func UpstreamSyncInterval() time.Duration {
	sec := 100
	if v := strings.TrimSpace(os.Getenv("UPSTREAM_SYNC_INTERVAL_SECONDS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			sec = n
		}
	}
	return time.Duration(sec) * time.Second
}

// RawArchiveEnabled gates MongoDB archival of raw upstream batches.
//
// Set via env:
// - ENABLE_RAW_ARCHIVE=true
func RawArchiveEnabled() bool {
	return boolFromEnv("ENABLE_RAW_ARCHIVE")
}
