// Package config loads runtime settings from the environment (with optional
// .env support) into an explicit struct that gets passed to the server and
// the importer. Nothing in this repo reads the environment after startup.
package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv   string
	DBPath   string
	BindHost string
	BindPort int

	// CORSOrigins lists allowed browser origins. Defaults cover the local
	// Vite dev server and the Tauri shell.
	CORSOrigins []string

	MediaDir string
	Tenant   string
}

// Load reads configuration from the environment, after loading a .env file
// from the working directory if one exists. Missing values fall back to
// local-development defaults.
func Load() Config {
	// Best effort; running without a .env file is the normal case.
	_ = godotenv.Load()

	return Config{
		AppEnv:      getEnv("APP_ENV", "local"),
		DBPath:      getEnv("DB_PATH", "./data/catalog.sqlite"),
		BindHost:    getEnv("BIND_HOST", "127.0.0.1"),
		BindPort:    getEnvInt("BIND_PORT", 8787),
		CORSOrigins: getEnvCSV("CORS_ORIGINS", "http://localhost:5173,http://127.0.0.1:5173,tauri://localhost"),
		MediaDir:    getEnv("MEDIA_DIR", "./media"),
		Tenant:      getEnv("TENANT_ID", "local"),
	}
}

func getEnv(name, fallback string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(name string, fallback int) int {
	if v := os.Getenv(name); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvCSV(name, fallback string) []string {
	raw := getEnv(name, fallback)
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
