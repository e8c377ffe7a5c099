package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

var gitSHA string
var buildDate string

func GetMediaRoot() string {
	value, exists := os.LookupEnv("STREAMHUB_MEDIA_ROOT")
	if exists {
		return value
	}
	return "media"
}

// defaults to GetMediaRoot() / config
func GetConfigDir() string {
	value, exists := os.LookupEnv("STREAMHUB_CONFIG_DIR")
	if exists {
		return value
	}
	return filepath.Join(GetMediaRoot(), "config")
}

func GetListenAddr() string {
	value, exists := os.LookupEnv("STREAMHUB_LISTEN")
	if exists {
		return value
	}
	return ":8080"
}

func GetSessionAuthKey() ([]byte, error) {
	key := "STREAMHUB_SESSION_AUTH_KEY"
	value, exists := os.LookupEnv(key)
	if exists {
		return []byte(value), nil
	}
	return []byte{}, fmt.Errorf("please set %s", key)
}

func GetSecure() bool {
	key := "STREAMHUB_SECURE"
	if value, exists := os.LookupEnv(key); exists {
		lower := strings.ToLower(value)
		if lower == "on" || lower == "1" || lower == "true" || lower == "yes" {
			return true
		}
	}
	return false
}

func GetGitSHA() string {
	if gitSHA == "" {
		return "<not provided>"
	}
	return gitSHA
}

func GetBuildDate() string {
	if buildDate == "" {
		return "<not provided>"
	}
	return buildDate
}
