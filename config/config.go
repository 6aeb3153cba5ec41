package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config is loaded once at startup and treated as immutable afterwards.
// Core packages receive it (or the fields they need) explicitly instead of
// reading the environment themselves.
type Config struct {
	Port           string
	MongoURI       string
	DatabaseName   string
	AllowedOrigins []string

	JWTSecret        string
	JWTRefreshSecret string
	AccessTTL        time.Duration
	RefreshTTL       time.Duration
	SocialTokenTTL   time.Duration

	ResetTokenTTL  time.Duration
	VerifyTokenTTL time.Duration
	OTPTTL         time.Duration
	OTPDigits      int

	AppBaseURL string

	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string
	FromEmail    string

	GoogleClientID string

	GCSBucket       string
	CredentialsFile string

	AdminEmail    string
	AdminPassword string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	cfg := &Config{
		Port:         getEnv("PORT", "8080"),
		MongoURI:     os.Getenv("MONGODB_URI"),
		DatabaseName: getEnv("DATABASE_NAME", "escrow"),

		JWTSecret:        os.Getenv("JWT_SECRET"),
		JWTRefreshSecret: os.Getenv("JWT_REFRESH_SECRET"),
		AccessTTL:        minutes("ACCESS_TOKEN_TTL_MINUTES", 15),
		RefreshTTL:       days("REFRESH_TOKEN_TTL_DAYS", 14),
		SocialTokenTTL:   days("SOCIAL_TOKEN_TTL_DAYS", 30),

		ResetTokenTTL:  minutes("RESET_TOKEN_TTL_MINUTES", 10),
		VerifyTokenTTL: minutes("VERIFY_TOKEN_TTL_MINUTES", 120),
		OTPTTL:         minutes("OTP_TTL_MINUTES", 10),
		OTPDigits:      intEnv("OTP_DIGITS", 6),

		AppBaseURL: getEnv("APP_BASE_URL", "http://localhost:8080"),

		SMTPHost:     os.Getenv("SMTP_HOST"),
		SMTPPort:     intEnv("SMTP_PORT", 587),
		SMTPUser:     os.Getenv("SMTP_USER"),
		SMTPPassword: os.Getenv("SMTP_PASSWORD"),
		FromEmail:    getEnv("FROM_EMAIL", "no-reply@escrow.local"),

		GoogleClientID: os.Getenv("GOOGLE_CLIENT_ID"),

		GCSBucket:       os.Getenv("GCS_BUCKET"),
		CredentialsFile: os.Getenv("CREDENTIALS_FILE_LOCATION"),

		AdminEmail:    os.Getenv("ADMIN_EMAIL"),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),
	}

	for _, origin := range strings.Split(os.Getenv("ALLOWED_ORIGINS"), ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			cfg.AllowedOrigins = append(cfg.AllowedOrigins, origin)
		}
	}

	if cfg.JWTSecret == "" || cfg.JWTRefreshSecret == "" {
		log.Fatal("JWT_SECRET and JWT_REFRESH_SECRET must be set")
	}

	return cfg
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func intEnv(key string, def int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil || v <= 0 {
		return def
	}
	return v
}

func minutes(key string, def int) time.Duration {
	return time.Duration(intEnv(key, def)) * time.Minute
}

func days(key string, def int) time.Duration {
	return time.Duration(intEnv(key, def)) * 24 * time.Hour
}
