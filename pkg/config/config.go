package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server        ServerConfig
	Database      DatabaseConfig
	JWT           JWTConfig
	LLM           LLMConfig
	OpenRouter    OpenRouterConfig
	GigaChat      GigaChatConfig
	Storage       StorageConfig
	Redis         RedisConfig
	Transcription TranscriptionConfig
	Logger        LoggerConfig
}

type LoggerConfig struct {
	Level    string
	Encoding string
}

type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	BodyLimit    int
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type JWTConfig struct {
	SecretKey  string
	Expiration time.Duration
	RefreshExp time.Duration
}

// LLMConfig selects the text-generation provider used for extraction.
type LLMConfig struct {
	Provider    string // "openrouter" or "gigachat"
	Temperature float32
	Timeout     time.Duration
}

type OpenRouterConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	VisionModel string
}

type GigaChatConfig struct {
	APIKey             string
	Scope              string
	InsecureSkipVerify bool
	Model              string
	BaseURL            string
	AuthURL            string
}

type StorageConfig struct {
	Endpoint  string
	Port      int
	UseSSL    bool
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	ReadTTL   time.Duration
	UploadTTL time.Duration
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	StatsTTL time.Duration
}

type TranscriptionConfig struct {
	ProxyURL string
	Timeout  time.Duration
}

func Load() (*Config, error) {
	// .env is optional; plain environment variables work the same (Docker/K8s).
	for _, envFile := range []string{".env", "../.env", "../../.env"} {
		if err := godotenv.Load(envFile); err == nil {
			break
		}
	}

	readTimeout, _ := strconv.Atoi(getEnv("SERVER_READ_TIMEOUT", "30"))
	writeTimeout, _ := strconv.Atoi(getEnv("SERVER_WRITE_TIMEOUT", "90"))
	bodyLimitMB, _ := strconv.Atoi(getEnv("SERVER_BODY_LIMIT_MB", "25"))
	jwtExp, _ := strconv.Atoi(getEnv("JWT_EXPIRATION_HOURS", "24"))
	refreshExp, _ := strconv.Atoi(getEnv("JWT_REFRESH_EXPIRATION_HOURS", "168"))
	temperature, err := strconv.ParseFloat(getEnv("LLM_TEMPERATURE", "0.1"), 32)
	if err != nil || temperature < 0 {
		return nil, fmt.Errorf("invalid LLM_TEMPERATURE %q", os.Getenv("LLM_TEMPERATURE"))
	}
	extractTimeout, err := strconv.Atoi(getEnv("EXTRACTION_TIMEOUT_SECONDS", "60"))
	if err != nil || extractTimeout <= 0 {
		return nil, fmt.Errorf("invalid EXTRACTION_TIMEOUT_SECONDS %q", os.Getenv("EXTRACTION_TIMEOUT_SECONDS"))
	}
	minioPort, _ := strconv.Atoi(getEnv("MINIO_PORT", "9000"))
	readTTL, _ := strconv.Atoi(getEnv("MINIO_READ_URL_TTL_SECONDS", "86400"))
	uploadTTL, _ := strconv.Atoi(getEnv("MINIO_UPLOAD_URL_TTL_SECONDS", "604800"))
	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))
	statsTTL, _ := strconv.Atoi(getEnv("REDIS_STATS_TTL_SECONDS", "300"))
	transcribeTimeout, _ := strconv.Atoi(getEnv("TRANSCRIBE_TIMEOUT_SECONDS", "60"))

	return &Config{
		Server: ServerConfig{
			Port:         getEnv("SERVER_PORT", "8080"),
			ReadTimeout:  time.Duration(readTimeout) * time.Second,
			WriteTimeout: time.Duration(writeTimeout) * time.Second,
			BodyLimit:    bodyLimitMB * 1024 * 1024,
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "tajeryar"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		JWT: JWTConfig{
			SecretKey:  getEnv("JWT_SECRET_KEY", "your-secret-key-change-in-production"),
			Expiration: time.Duration(jwtExp) * time.Hour,
			RefreshExp: time.Duration(refreshExp) * time.Hour,
		},
		LLM: LLMConfig{
			Provider:    getEnv("LLM_PROVIDER", "openrouter"),
			Temperature: float32(temperature),
			Timeout:     time.Duration(extractTimeout) * time.Second,
		},
		OpenRouter: OpenRouterConfig{
			APIKey:      getEnv("OPENROUTER_API_KEY", ""),
			BaseURL:     getEnv("OPENROUTER_BASE_URL", "https://openrouter.ai/api/v1"),
			Model:       getEnv("OPENROUTER_MODEL", "openai/gpt-4o-mini"),
			VisionModel: getEnv("OPENROUTER_VISION_MODEL", "openai/gpt-4o-mini"),
		},
		GigaChat: GigaChatConfig{
			APIKey:             getEnv("GIGACHAT_API_KEY", ""),
			Scope:              getEnv("GIGACHAT_SCOPE", "GIGACHAT_API_PERS"),
			InsecureSkipVerify: getEnv("GIGACHAT_INSECURE_SKIP_VERIFY", "true") == "true",
			Model:              getEnv("GIGACHAT_MODEL", "GigaChat"),
			BaseURL:            getEnv("GIGACHAT_BASE_URL", "https://gigachat.devices.sberbank.ru/api/v1"),
			AuthURL:            getEnv("GIGACHAT_AUTH_URL", "https://ngw.devices.sberbank.ru:9443/api/v2/oauth"),
		},
		Storage: StorageConfig{
			Endpoint:  getEnv("MINIO_ENDPOINT", "localhost"),
			Port:      minioPort,
			UseSSL:    getEnv("MINIO_USE_SSL", "false") == "true",
			AccessKey: getEnv("MINIO_ACCESS_KEY", "minioadmin"),
			SecretKey: getEnv("MINIO_SECRET_KEY", "minioadmin"),
			Bucket:    getEnv("MINIO_DEFAULT_BUCKET", "file"),
			Region:    getEnv("MINIO_REGION", "us-east-1"),
			ReadTTL:   time.Duration(readTTL) * time.Second,
			UploadTTL: time.Duration(uploadTTL) * time.Second,
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       redisDB,
			StatsTTL: time.Duration(statsTTL) * time.Second,
		},
		Transcription: TranscriptionConfig{
			ProxyURL: getEnv("TRANSCRIBE_PROXY_URL", "https://rapid-bonus-3ec6.ab-reza.workers.dev"),
			Timeout:  time.Duration(transcribeTimeout) * time.Second,
		},
		Logger: LoggerConfig{
			Level:    getEnv("LOG_LEVEL", "info"),
			Encoding: getEnv("LOG_ENCODING", "json"),
		},
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
