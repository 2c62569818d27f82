package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

const (
	OCRFailureAbort     = "abort"
	OCRFailureEmptyPage = "empty_page"
)

type Config struct {
	ServerPort        string
	TesseractDataPath string
	OCRLanguage       string
	OCRTimeout        time.Duration
	OCRFailurePolicy  string

	DonutEndpoint    string
	DonutTaskPrompt  string
	InferenceTimeout time.Duration
	EnableQR         bool

	PageWorkers     int
	DownloadTimeout time.Duration
	MaxFileSize     int64

	CORSAllowedOrigins []string
	LogLevel           string
	LogFormat          string
}

func LoadConfig() *Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Warning: could not load .env file: %v", err)
	}

	cfg := &Config{
		ServerPort:        getEnv("SERVER_PORT", "8080"),
		TesseractDataPath: getEnv("TESSDATA_PREFIX", "/usr/share/tesseract-ocr/5/tessdata/"),
		OCRLanguage:       getEnv("OCR_LANGUAGE", "eng"),
		OCRTimeout:        getEnvAsDuration("OCR_TIMEOUT", 60*time.Second),
		OCRFailurePolicy:  strings.ToLower(getEnv("OCR_FAILURE_POLICY", OCRFailureAbort)),

		DonutEndpoint:    getEnv("DONUT_ENDPOINT", ""),
		DonutTaskPrompt:  getEnv("DONUT_TASK_PROMPT", "<s_invoice>"),
		InferenceTimeout: getEnvAsDuration("INFERENCE_TIMEOUT", 120*time.Second),
		EnableQR:         getEnvAsBool("ENABLE_QR_EXTRACTION", true),

		PageWorkers:     getEnvAsInt("PAGE_WORKERS", 1),
		DownloadTimeout: getEnvAsDuration("DOWNLOAD_TIMEOUT", 25*time.Second),
		MaxFileSize:     int64(getEnvAsInt("MAX_FILE_SIZE", 20*1024*1024)),

		CORSAllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "*")),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		LogFormat:          getEnv("LOG_FORMAT", "text"),
	}

	if cfg.OCRFailurePolicy != OCRFailureAbort && cfg.OCRFailurePolicy != OCRFailureEmptyPage {
		log.Printf("Warning: unknown OCR_FAILURE_POLICY %q, using %q", cfg.OCRFailurePolicy, OCRFailureAbort)
		cfg.OCRFailurePolicy = OCRFailureAbort
	}
	if cfg.PageWorkers < 1 {
		cfg.PageWorkers = 1
	}

	return cfg
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
