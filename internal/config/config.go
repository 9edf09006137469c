package config

import (
	"log"
	"os"
	"strconv"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
)

const (
	DefaultDBURI = "sqlite:///posts.db"
	DefaultPort  = "5001"
	// MemoryDB selects the in-memory store instead of a database.
	MemoryDB = "memory"
)

type Config struct {
	IsDev     bool
	Addr      string
	SecretKey []byte
	DBURI     string

	// CookieSecure marks the identity and session cookies HTTPS-only. Enable it
	// when the site is served over TLS, directly or behind a proxy.
	CookieSecure bool
}

// Load reads the process environment, after merging a .env file if present.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Print("No .env file found")
	}

	cfg := &Config{
		IsDev: os.Getenv("GO_ENV") == "development",
		Addr:  os.Getenv("SERVER_ADDR") + ":" + getenv("PORT", DefaultPort),
		DBURI: getenv("DB_URI", DefaultDBURI),

		CookieSecure: getbool("COOKIE_SECURE", false),
	}

	if key := os.Getenv("SECRET_KEY"); key != "" {
		cfg.SecretKey = []byte(key)
	} else {
		log.Print("SECRET_KEY is not set, sessions will not survive a restart")
		cfg.SecretKey = []byte(uuid.NewString() + uuid.NewString())
	}
	return cfg
}

func getenv(name, fallback string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return fallback
}

func getbool(name string, fallback bool) bool {
	v := os.Getenv(name)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		log.Printf("Ignoring %s=%q: %v", name, v, err)
		return fallback
	}
	return b
}
