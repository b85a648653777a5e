package utils

import (
	"os"
	"strconv"
	"strings"
	"time"
)

func EnvOrDefault(key, def string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	return value
}

func EnvInt(key string, def int) int {
	n, err := strconv.Atoi(EnvOrDefault(key, ""))
	if err != nil {
		return def
	}
	return n
}

func EnvBool(key string, def bool) bool {
	b, err := strconv.ParseBool(EnvOrDefault(key, ""))
	if err != nil {
		return def
	}
	return b
}

// EnvDuration reads a Go duration ("15s", "500ms").
func EnvDuration(key string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(EnvOrDefault(key, ""))
	if err != nil {
		return def
	}
	return d
}
