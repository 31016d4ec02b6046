package config

import (
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server ServerConfig
	Log    LogConfig
	CORS   CORSConfig
	Engine EngineConfig
	Upload UploadConfig
	S3     S3Config
	Auth   AuthConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	Environment  string        `mapstructure:"environment"`
}

// IsDevelopment reports whether diagnostic details may be returned to callers.
func (s *ServerConfig) IsDevelopment() bool {
	return s.Environment == "development"
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// EngineConfig describes how to launch the external recognition engine.
type EngineConfig struct {
	Interpreter string        `mapstructure:"interpreter"`
	Script      string        `mapstructure:"script"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

// UploadConfig holds image intake settings.
type UploadConfig struct {
	Dir           string `mapstructure:"dir"`
	MaxFileSizeMB int64  `mapstructure:"max_file_size_mb"`
	KeepFiles     bool   `mapstructure:"keep_files"`
}

// MaxFileSizeBytes returns the upload limit in bytes.
func (u *UploadConfig) MaxFileSizeBytes() int64 {
	return u.MaxFileSizeMB * 1024 * 1024
}

// S3Config holds settings for archiving uploaded images to S3.
type S3Config struct {
	Enabled   bool   `mapstructure:"enabled"`
	Region    string `mapstructure:"region"`
	Bucket    string `mapstructure:"bucket"`
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Prefix    string `mapstructure:"prefix"`
}

// AuthConfig holds service-token settings. An empty secret disables auth.
type AuthConfig struct {
	JWTSecret string        `mapstructure:"jwt_secret"`
	Issuer    string        `mapstructure:"issuer"`
	TokenTTL  time.Duration `mapstructure:"token_ttl"`
}

// Enabled reports whether bearer tokens are required on the API.
func (a *AuthConfig) Enabled() bool {
	return a.JWTSecret != ""
}

// Load reads configuration from environment variables with the POLICYOCR_ prefix.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("POLICYOCR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Server defaults
	v.SetDefault("server.port", ":3000")
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "6m")
	v.SetDefault("server.environment", "development")

	// Log defaults
	v.SetDefault("log.level", "debug")
	v.SetDefault("log.format", "console")

	// CORS defaults (the Angular dev server)
	v.SetDefault("cors.allowed_origins", "http://localhost:4200")

	// Engine defaults
	v.SetDefault("engine.interpreter", "python3")
	v.SetDefault("engine.script", "ocr-engine/ocr_processor.py")
	v.SetDefault("engine.timeout", "5m")

	// Upload defaults
	v.SetDefault("upload.dir", "uploads")
	v.SetDefault("upload.max_file_size_mb", 10)
	v.SetDefault("upload.keep_files", false)

	// S3 defaults
	v.SetDefault("s3.enabled", false)
	v.SetDefault("s3.region", "us-east-1")
	v.SetDefault("s3.bucket", "policy-ocr-uploads")
	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.prefix", "uploads")

	// Auth defaults
	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.issuer", "policy-ocr")
	v.SetDefault("auth.token_ttl", "24h")

	// Bind environment variables explicitly for nested keys
	envBindings := map[string]string{
		"server.port":             "POLICYOCR_SERVER_PORT",
		"server.read_timeout":     "POLICYOCR_SERVER_READ_TIMEOUT",
		"server.write_timeout":    "POLICYOCR_SERVER_WRITE_TIMEOUT",
		"server.environment":      "POLICYOCR_SERVER_ENVIRONMENT",
		"log.level":               "POLICYOCR_LOG_LEVEL",
		"log.format":              "POLICYOCR_LOG_FORMAT",
		"cors.allowed_origins":    "POLICYOCR_CORS_ALLOWED_ORIGINS",
		"engine.interpreter":      "POLICYOCR_ENGINE_INTERPRETER",
		"engine.script":           "POLICYOCR_ENGINE_SCRIPT",
		"engine.timeout":          "POLICYOCR_ENGINE_TIMEOUT",
		"upload.dir":              "POLICYOCR_UPLOAD_DIR",
		"upload.max_file_size_mb": "POLICYOCR_UPLOAD_MAX_FILE_SIZE_MB",
		"upload.keep_files":       "POLICYOCR_UPLOAD_KEEP_FILES",
		"s3.enabled":              "POLICYOCR_S3_ENABLED",
		"s3.region":               "POLICYOCR_S3_REGION",
		"s3.bucket":               "POLICYOCR_S3_BUCKET",
		"s3.endpoint":             "POLICYOCR_S3_ENDPOINT",
		"s3.access_key":           "POLICYOCR_S3_ACCESS_KEY",
		"s3.secret_key":           "POLICYOCR_S3_SECRET_KEY",
		"s3.prefix":               "POLICYOCR_S3_PREFIX",
		"auth.jwt_secret":         "POLICYOCR_AUTH_JWT_SECRET",
		"auth.issuer":             "POLICYOCR_AUTH_ISSUER",
		"auth.token_ttl":          "POLICYOCR_AUTH_TOKEN_TTL",
	}
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	cfg := &Config{}

	// Hosting platforms set PORT. Use it if POLICYOCR_SERVER_PORT is not explicitly set.
	serverPort := v.GetString("server.port")
	if port := os.Getenv("PORT"); port != "" && os.Getenv("POLICYOCR_SERVER_PORT") == "" {
		serverPort = ":" + port
	}

	cfg.Server = ServerConfig{
		Port:         serverPort,
		ReadTimeout:  v.GetDuration("server.read_timeout"),
		WriteTimeout: v.GetDuration("server.write_timeout"),
		Environment:  v.GetString("server.environment"),
	}
	cfg.Log = LogConfig{
		Level:  v.GetString("log.level"),
		Format: v.GetString("log.format"),
	}

	var corsOrigins []string
	for _, o := range strings.Split(v.GetString("cors.allowed_origins"), ",") {
		o = strings.TrimSpace(o)
		if o != "" {
			corsOrigins = append(corsOrigins, o)
		}
	}
	cfg.CORS = CORSConfig{
		AllowedOrigins: corsOrigins,
	}

	cfg.Engine = EngineConfig{
		Interpreter: v.GetString("engine.interpreter"),
		Script:      v.GetString("engine.script"),
		Timeout:     v.GetDuration("engine.timeout"),
	}
	cfg.Upload = UploadConfig{
		Dir:           v.GetString("upload.dir"),
		MaxFileSizeMB: v.GetInt64("upload.max_file_size_mb"),
		KeepFiles:     v.GetBool("upload.keep_files"),
	}
	cfg.S3 = S3Config{
		Enabled:   v.GetBool("s3.enabled"),
		Region:    v.GetString("s3.region"),
		Bucket:    v.GetString("s3.bucket"),
		Endpoint:  v.GetString("s3.endpoint"),
		AccessKey: v.GetString("s3.access_key"),
		SecretKey: v.GetString("s3.secret_key"),
		Prefix:    v.GetString("s3.prefix"),
	}
	cfg.Auth = AuthConfig{
		JWTSecret: v.GetString("auth.jwt_secret"),
		Issuer:    v.GetString("auth.issuer"),
		TokenTTL:  v.GetDuration("auth.token_ttl"),
	}

	return cfg, nil
}
