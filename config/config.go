package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds every runtime setting of the application.
type Config struct {
	DatabaseURL  string
	JWTSecretKey string
	ServerPort   int

	RedisAddr     string
	RedisPassword string

	// Cloudflare R2 object storage for avatars, player photos and logos.
	R2AccountID       string
	R2AccessKeyID     string
	R2SecretAccessKey string
	R2BucketName      string
	R2PublicBaseURL   string

	SMTPHost string
	SMTPPort int
	SMTPUser string
	SMTPPass string
	SMTPFrom string

	// PublicBaseURL is the externally reachable address used in emails.
	PublicBaseURL string

	// Scoring knob overrides; zero values keep the built-in defaults.
	// ScoringRoundPoints uses the form "1:10,2:20,3:40" with rounds counted
	// from the end of the draw (1 = final).
	ScoringRoundPoints        map[int]int
	ScoringChampionBonus      int
	ScoringBasePoints         int
	ScoringConfidencePerLevel int
	ScoringExactScoreBonus    int
}

// Load reads configuration from environment variables, optionally seeding
// them from a .env file for local development.
func Load() (*Config, error) {
	_ = godotenv.Load()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is not set")
	}

	jwtKey := os.Getenv("JWT_SECRET_KEY")
	if jwtKey == "" {
		return nil, fmt.Errorf("JWT_SECRET_KEY environment variable is not set")
	}

	port, err := intEnv("SERVER_PORT", 8080)
	if err != nil {
		return nil, err
	}
	if port <= 0 || port > 65535 {
		return nil, fmt.Errorf("SERVER_PORT must be between 1 and 65535, got %d", port)
	}

	smtpPort, err := intEnv("SMTP_PORT", 587)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		DatabaseURL:  dbURL,
		JWTSecretKey: jwtKey,
		ServerPort:   port,

		RedisAddr:     stringEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),

		R2AccountID:       os.Getenv("R2_ACCOUNT_ID"),
		R2AccessKeyID:     os.Getenv("R2_ACCESS_KEY_ID"),
		R2SecretAccessKey: os.Getenv("R2_SECRET_ACCESS_KEY"),
		R2BucketName:      os.Getenv("R2_BUCKET_NAME"),
		R2PublicBaseURL:   os.Getenv("R2_PUBLIC_BASE_URL"),

		SMTPHost: os.Getenv("SMTP_HOST"),
		SMTPPort: smtpPort,
		SMTPUser: os.Getenv("SMTP_USER"),
		SMTPPass: os.Getenv("SMTP_PASS"),
		SMTPFrom: os.Getenv("SMTP_FROM"),

		PublicBaseURL: stringEnv("PUBLIC_BASE_URL", fmt.Sprintf("http://localhost:%d", port)),
	}

	if cfg.ScoringRoundPoints, err = roundPointsEnv("SCORING_ROUND_POINTS"); err != nil {
		return nil, err
	}
	if cfg.ScoringChampionBonus, err = intEnv("SCORING_CHAMPION_BONUS", 0); err != nil {
		return nil, err
	}
	if cfg.ScoringBasePoints, err = intEnv("SCORING_BASE_POINTS", 0); err != nil {
		return nil, err
	}
	if cfg.ScoringConfidencePerLevel, err = intEnv("SCORING_CONFIDENCE_PER_LEVEL", 0); err != nil {
		return nil, err
	}
	if cfg.ScoringExactScoreBonus, err = intEnv("SCORING_EXACT_SCORE_BONUS", 0); err != nil {
		return nil, err
	}
	return cfg, nil
}

// roundPointsEnv parses a "round:points" comma-separated list, e.g.
// "1:10,2:20,3:40". An unset variable yields a nil map.
func roundPointsEnv(key string) (map[int]int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return nil, nil
	}
	points := make(map[int]int)
	for _, pair := range strings.Split(raw, ",") {
		parts := strings.SplitN(strings.TrimSpace(pair), ":", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid %s entry %q, expected round:points", key, pair)
		}
		round, err := strconv.Atoi(parts[0])
		if err != nil {
			return nil, fmt.Errorf("invalid %s round %q: %w", key, parts[0], err)
		}
		value, err := strconv.Atoi(parts[1])
		if err != nil {
			return nil, fmt.Errorf("invalid %s points %q: %w", key, parts[1], err)
		}
		if round <= 0 || value < 0 {
			return nil, fmt.Errorf("invalid %s entry %q, rounds start at 1 and points must not be negative", key, pair)
		}
		points[round] = value
	}
	return points, nil
}

// R2Configured reports whether every object-storage credential is present.
func (c *Config) R2Configured() bool {
	return c.R2AccountID != "" && c.R2AccessKeyID != "" &&
		c.R2SecretAccessKey != "" && c.R2BucketName != "" && c.R2PublicBaseURL != ""
}

func stringEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func intEnv(key string, fallback int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s environment variable: %w", key, err)
	}
	return value, nil
}
