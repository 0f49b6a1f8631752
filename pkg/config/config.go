package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env  string
	Port int

	CMS      CMSConfig
	Browser  BrowserConfig
	Database DatabaseConfig
	Sync     SyncConfig
	Server   ServerConfig
	Log      LogConfig
}

// CMSConfig describes the remote campus management system and the HTTP
// session driven against it.
type CMSConfig struct {
	BaseURL        string
	JarPath        string
	RequestTimeout time.Duration
	MaxRetries     int
	RetryBaseDelay time.Duration
	MaxConns       int
	MaxIdleConns   int
}

// BrowserConfig controls the interactive login flow.
type BrowserConfig struct {
	LoginURL    string
	WaitTimeout time.Duration
	Headless    bool
}

type DatabaseConfig struct {
	// Path is either a local SQLite file or a Turso URL carrying its
	// auth token in the query string. The value is handed to the driver
	// untouched.
	Path         string
	BusyTimeout  time.Duration
	MaxOpenConns int
	MaxIdleConns int
}

// SyncConfig tunes orchestrator fan-out and push defaults.
type SyncConfig struct {
	ModuleWorkers       int
	DefaultModuleAmount int
	CampusCode          string
	JobHistory          int
}

// ServerConfig gates the control API.
type ServerConfig struct {
	APIToken       string
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")

	cfg.CMS = CMSConfig{
		BaseURL:        strings.TrimRight(v.GetString("CMS_BASE_URL"), "/"),
		JarPath:        v.GetString("CMS_JAR_PATH"),
		RequestTimeout: parseDuration(v.GetString("CMS_REQUEST_TIMEOUT"), 120*time.Second),
		MaxRetries:     v.GetInt("CMS_MAX_RETRIES"),
		RetryBaseDelay: parseDuration(v.GetString("CMS_RETRY_BASE_DELAY"), 3*time.Second),
		MaxConns:       v.GetInt("CMS_MAX_CONNS"),
		MaxIdleConns:   v.GetInt("CMS_MAX_IDLE_CONNS"),
	}

	cfg.Browser = BrowserConfig{
		LoginURL:    v.GetString("CMS_LOGIN_URL"),
		WaitTimeout: parseDuration(v.GetString("BROWSER_WAIT_TIMEOUT"), 3*time.Minute),
		Headless:    v.GetBool("BROWSER_HEADLESS"),
	}
	if cfg.Browser.LoginURL == "" {
		cfg.Browser.LoginURL = cfg.CMS.BaseURL + "/login.php"
	}

	cfg.Database = DatabaseConfig{
		Path:         v.GetString("DB_PATH"),
		BusyTimeout:  parseDuration(v.GetString("DB_BUSY_TIMEOUT"), 120*time.Second),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Sync = SyncConfig{
		ModuleWorkers:       v.GetInt("SYNC_MODULE_WORKERS"),
		DefaultModuleAmount: v.GetInt("SYNC_MODULE_AMOUNT"),
		CampusCode:          v.GetString("SYNC_CAMPUS_CODE"),
		JobHistory:          v.GetInt("SYNC_JOB_HISTORY"),
	}

	cfg.Server = ServerConfig{
		APIToken:       v.GetString("API_TOKEN"),
		AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS")),
	}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8081)

	v.SetDefault("CMS_BASE_URL", "https://cms.example.ac.ls/campus/registry")
	v.SetDefault("CMS_JAR_PATH", "session.pkl")
	v.SetDefault("CMS_REQUEST_TIMEOUT", "120s")
	v.SetDefault("CMS_MAX_RETRIES", 60)
	v.SetDefault("CMS_RETRY_BASE_DELAY", "3s")
	v.SetDefault("CMS_MAX_CONNS", 80)
	v.SetDefault("CMS_MAX_IDLE_CONNS", 20)

	v.SetDefault("BROWSER_WAIT_TIMEOUT", "3m")
	v.SetDefault("BROWSER_HEADLESS", false)

	v.SetDefault("DB_PATH", "registry.db")
	v.SetDefault("DB_BUSY_TIMEOUT", "120s")
	v.SetDefault("DB_MAX_OPEN_CONNS", 1)
	v.SetDefault("DB_MAX_IDLE_CONNS", 1)

	v.SetDefault("SYNC_MODULE_WORKERS", 10)
	v.SetDefault("SYNC_MODULE_AMOUNT", 1200)
	v.SetDefault("SYNC_CAMPUS_CODE", "Lesotho")
	v.SetDefault("SYNC_JOB_HISTORY", 50)

	v.SetDefault("API_TOKEN", "")
	v.SetDefault("ALLOWED_ORIGINS", "")

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
