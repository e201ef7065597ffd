package common

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joseph-ayodele/contracts-ocr/constants"
)

// Config holds all application configuration
type Config struct {
	OCR        OCRConfig
	Preprocess PreprocessConfig
	Batch      BatchConfig
	Export     ExportConfig
	Server     ServerConfig
	Log        LogConfig
}

// OCRConfig holds rasterizer and recognizer configuration
type OCRConfig struct {
	Pdftoppm      string
	Tesseract     string
	TesseractLang string
	TessdataDir   string
	DPI           int
	MaxPages      int
	PSM           int
	OEM           int
}

// PreprocessConfig toggles the page preprocessing steps
type PreprocessConfig struct {
	Grayscale    bool
	AutoContrast bool
	Binarize     bool
	Threshold    int
}

// BatchConfig holds batch-related configuration
type BatchConfig struct {
	MaxDocuments int
}

// ExportConfig holds export-related configuration
type ExportConfig struct {
	Dir string
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	HTTPAddr        string
	MaxUploadMB     int
	ShutdownTimeout time.Duration
}

// LogConfig holds logger configuration
type LogConfig struct {
	Level  string
	Format string
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		OCR: OCRConfig{
			Pdftoppm:      getEnv("PDFTOPPM_BIN", "pdftoppm"),
			Tesseract:     getEnv("TESSERACT_BIN", "tesseract"),
			TesseractLang: getEnv("TESSERACT_LANG", "chi_tra+eng"),
			TessdataDir:   getEnv("TESSDATA_PREFIX", ""),
			DPI:           getEnvAsInt("OCR_DPI", constants.RasterDPI),
			MaxPages:      getEnvAsInt("OCR_MAX_PAGES", 0),
			PSM:           getEnvAsInt("OCR_PSM", 0),
			OEM:           getEnvAsInt("OCR_OEM", 0),
		},
		Preprocess: PreprocessConfig{
			Grayscale:    getEnvAsBool("PREPROCESS_GRAYSCALE", true),
			AutoContrast: getEnvAsBool("PREPROCESS_AUTOCONTRAST", true),
			Binarize:     getEnvAsBool("PREPROCESS_BINARIZE", false),
			Threshold:    getEnvAsInt("PREPROCESS_THRESHOLD", 180),
		},
		Batch: BatchConfig{
			MaxDocuments: getEnvAsInt("BATCH_MAX_DOCUMENTS", constants.MaxBatchDocuments),
		},
		Export: ExportConfig{
			Dir: getEnv("EXPORT_DIR", "."),
		},
		Server: ServerConfig{
			HTTPAddr:        getEnv("HTTP_ADDR", ":8080"),
			MaxUploadMB:     getEnvAsInt("MAX_UPLOAD_MB", 50),
			ShutdownTimeout: getEnvAsDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}
}

// Helper functions for environment variable parsing
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
		if boolVal, err := strconv.ParseBool(strings.TrimSpace(value)); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	v := NewValidator().
		Field("PDFTOPPM_BIN", c.OCR.Pdftoppm, Required).
		Field("TESSERACT_BIN", c.OCR.Tesseract, Required).
		Field("TESSERACT_LANG", c.OCR.TesseractLang, Required).
		Field("OCR_DPI", c.OCR.DPI, IntRange(72, 1200)).
		Field("OCR_MAX_PAGES", c.OCR.MaxPages, IntRange(0, 1000)).
		Field("PREPROCESS_THRESHOLD", c.Preprocess.Threshold, IntRange(0, 255)).
		Field("BATCH_MAX_DOCUMENTS", c.Batch.MaxDocuments, IntRange(1, constants.MaxBatchDocuments)).
		Field("MAX_UPLOAD_MB", c.Server.MaxUploadMB, IntRange(1, 1024)).
		Field("LOG_LEVEL", strings.ToLower(c.Log.Level), OneOf("debug", "info", "warn", "error")).
		Field("LOG_FORMAT", strings.ToLower(c.Log.Format), OneOf("json", "text"))
	if v.HasErrors() {
		return NewAppError(CodeConfig, v.ErrorMessage(), ErrInvalidInput)
	}
	return nil
}
