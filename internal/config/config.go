package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// SchemaVersion selects how attendance rows are stored.
type SchemaVersion string

const (
	// SchemaPaired stores punch-in and punch-out on the same row.
	SchemaPaired SchemaVersion = "paired"
	// SchemaLegacy stores every punch as its own row; direction lives in the note.
	SchemaLegacy SchemaVersion = "legacy"
)

type Config struct {
	Database   DatabaseConfig
	JWT        JWTConfig
	App        AppConfig
	Attendance AttendanceConfig
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret           string
	AccessExpiration string
}

// AppConfig holds application configuration
type AppConfig struct {
	Port        int
	Env         string
	LogLevel    string
	FrontendURL string
	AutoMigrate bool
}

// AttendanceConfig holds the admission rules for punch-in and punch-out.
type AttendanceConfig struct {
	AllowedSSID      string
	AllowedSSIDAlt   string
	OfficeLatitude   float64
	OfficeLongitude  float64
	RadiusMeters     float64
	AttemptLimit     int
	AllowedIPs       string
	AllowedRouterIPs string
	Schema           SchemaVersion
}

// AllowedSSIDs returns the primary SSID followed by every comma-separated alternative.
func (a AttendanceConfig) AllowedSSIDs() []string {
	var ssids []string
	if s := strings.TrimSpace(a.AllowedSSID); s != "" {
		ssids = append(ssids, s)
	}
	for _, s := range strings.Split(a.AllowedSSIDAlt, ",") {
		if s = strings.TrimSpace(s); s != "" {
			ssids = append(ssids, s)
		}
	}
	return ssids
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using process environment")
	}

	config := &Config{}

	// Database configuration
	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}

	config.Database = DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     dbPort,
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", "workdesk"),
		SSLMode:  getEnv("DB_SSL_MODE", "disable"),
	}

	// Application configuration
	appPort, err := strconv.Atoi(getEnv("APP_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_PORT: %w", err)
	}

	config.App = AppConfig{
		Port:        appPort,
		Env:         getEnv("APP_ENV", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		FrontendURL: getEnv("FRONTEND_URL", "http://localhost:3000"),
		AutoMigrate: getEnv("DB_AUTO_MIGRATE", "false") == "true",
	}

	// JWT configuration
	config.JWT = JWTConfig{
		Secret:           getEnv("JWT_SECRET_KEY", ""),
		AccessExpiration: getEnv("JWT_ACCESS_EXPIRATION_TIME", "1h"),
	}

	// Attendance configuration
	attendance, err := loadAttendance()
	if err != nil {
		return nil, err
	}
	config.Attendance = attendance

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

func loadAttendance() (AttendanceConfig, error) {
	officeLat, err := strconv.ParseFloat(getEnv("OFFICE_LAT", "22.804925060054416"), 64)
	if err != nil {
		return AttendanceConfig{}, fmt.Errorf("invalid OFFICE_LAT: %w", err)
	}
	officeLng, err := strconv.ParseFloat(getEnv("OFFICE_LNG", "86.203053378007"), 64)
	if err != nil {
		return AttendanceConfig{}, fmt.Errorf("invalid OFFICE_LNG: %w", err)
	}
	radius, err := strconv.ParseFloat(getEnv("ALLOWED_RADIUS_METERS", "50"), 64)
	if err != nil {
		return AttendanceConfig{}, fmt.Errorf("invalid ALLOWED_RADIUS_METERS: %w", err)
	}
	attemptLimit, err := strconv.Atoi(getEnv("ATTEMPT_LIMIT", "15"))
	if err != nil {
		return AttendanceConfig{}, fmt.Errorf("invalid ATTEMPT_LIMIT: %w", err)
	}

	return AttendanceConfig{
		AllowedSSID:      getEnv("ALLOWED_SSID", "E DIGITAL INDIA"),
		AllowedSSIDAlt:   getEnv("ALLOWED_SSID_ALT", "E DIGITAL INDIA 5g"),
		OfficeLatitude:   officeLat,
		OfficeLongitude:  officeLng,
		RadiusMeters:     radius,
		AttemptLimit:     attemptLimit,
		AllowedIPs:       getEnv("ALLOWED_IPS", "192.168.1.1"),
		AllowedRouterIPs: getEnv("ALLOWED_ROUTER_IPS", ""),
		Schema:           SchemaVersion(strings.ToLower(getEnv("ATTENDANCE_SCHEMA", string(SchemaPaired)))),
	}, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Database.Password == "" {
		return fmt.Errorf("DB_PASSWORD is required")
	}
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET_KEY is required")
	}
	return c.Attendance.Validate()
}

// Validate checks the attendance admission settings.
func (a AttendanceConfig) Validate() error {
	switch a.Schema {
	case SchemaPaired, SchemaLegacy:
	default:
		return fmt.Errorf("ATTENDANCE_SCHEMA must be %q or %q, got %q", SchemaPaired, SchemaLegacy, a.Schema)
	}
	if a.RadiusMeters <= 0 {
		return fmt.Errorf("ALLOWED_RADIUS_METERS must be positive")
	}
	if a.AttemptLimit <= 0 {
		return fmt.Errorf("ATTEMPT_LIMIT must be positive")
	}
	return nil
}

// DatabaseURL returns the PostgreSQL connection string
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
