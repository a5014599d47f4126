package app

import (
	"strings"
	"time"

	"github.com/lumeo-social/lumeo-backend/internal/platform/envutil"
)

type Config struct {
	HTTPAddr       string
	JWTSecretKey   string
	AllowedOrigins []string

	// Per-source budget for candidate retrieval.
	SourceTimeout time.Duration
}

func LoadConfig() Config {
	var origins []string
	if raw := envutil.String("ALLOWED_ORIGINS", ""); raw != "" {
		for _, o := range strings.Split(raw, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
	}
	return Config{
		HTTPAddr:       envutil.String("HTTP_ADDR", ":8080"),
		JWTSecretKey:   envutil.String("JWT_SECRET_KEY", "defaultsecret"),
		AllowedOrigins: origins,
		SourceTimeout:  envutil.Duration("FEED_SOURCE_TIMEOUT", 800*time.Millisecond),
	}
}
