package config

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"seedcounter/internal/fusion"

	"github.com/joho/godotenv"
	"github.com/lucasb-eyer/go-colorful"
)

const (
	// BackendDNN runs the ONNX models in-process through OpenCV.
	BackendDNN = "dnn"
	// BackendHTTP sends images to remote inference servers.
	BackendHTTP = "http"
)

type Config struct {
	Port int

	DetectorBackend       string
	SeedlingModelPath     string
	EmptyCellModelPath    string
	SeedlingModelClasses  []string // class names in model output order
	EmptyCellModelClasses []string
	SeedlingClass         string
	EmptyCellClass        string
	SeedlingDetectorURL   string
	EmptyCellDetectorURL  string
	DetectorTimeout       time.Duration
	ModelInputSize        int
	NMSThreshold          float64

	SeedlingConfidence  float64
	EmptyCellConfidence float64
	IoUThreshold        float64
	SeedlingColor       string
	EmptyCellColor      string

	UploadDirectory    string
	UploadMaxAge       time.Duration
	MaxUploadSize      int64 // bytes
	ResultsDirectory   string
	ThumbnailDirectory string
	ThumbnailSize      int
	StaticDirectory    string
	DatabasePath       string

	ProcessingWorkers int
	ProcessingTimeout time.Duration
	AllowedOrigins    []string
	LogDirectory      string
}

// Load reads the configuration from the environment. Variables from a .env
// file in the working directory are loaded first when the file exists.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Port: getEnvAsInt("PORT", 8000),

		DetectorBackend:       getEnv("DETECTOR_BACKEND", BackendDNN),
		SeedlingModelPath:     getEnv("SEEDLING_MODEL_PATH", filepath.Join(".", "model", "best_n.onnx")),
		EmptyCellModelPath:    getEnv("EMPTY_CELL_MODEL_PATH", filepath.Join(".", "model", "best.onnx")),
		SeedlingModelClasses:  getEnvAsList("SEEDLING_MODEL_CLASSES", []string{"plantula"}),
		EmptyCellModelClasses: getEnvAsList("EMPTY_CELL_MODEL_CLASSES", []string{"celda_vacia"}),
		SeedlingClass:         getEnv("SEEDLING_CLASS", "plantula"),
		EmptyCellClass:        getEnv("EMPTY_CELL_CLASS", "celda_vacia"),
		SeedlingDetectorURL:   getEnv("SEEDLING_DETECTOR_URL", ""),
		EmptyCellDetectorURL:  getEnv("EMPTY_CELL_DETECTOR_URL", ""),
		DetectorTimeout:       time.Duration(getEnvAsInt("DETECTOR_TIMEOUT", 30)) * time.Second,
		ModelInputSize:        getEnvAsInt("MODEL_INPUT_SIZE", 640),
		NMSThreshold:          getEnvAsFloat("NMS_THRESHOLD", 0.7),

		SeedlingConfidence:  getEnvAsFloat("SEEDLING_CONFIDENCE", fusion.DefaultSeedlingConfidence),
		EmptyCellConfidence: getEnvAsFloat("EMPTY_CELL_CONFIDENCE", fusion.DefaultEmptyCellConfidence),
		IoUThreshold:        getEnvAsFloat("IOU_THRESHOLD", fusion.DefaultIoUThreshold),
		SeedlingColor:       getEnv("SEEDLING_COLOR", "#00FF00"),
		EmptyCellColor:      getEnv("EMPTY_CELL_COLOR", "#0064FF"),

		UploadDirectory:    getEnv("UPLOAD_DIR", filepath.Join(".", "temp_uploads")),
		UploadMaxAge:       time.Duration(getEnvAsInt("UPLOAD_MAX_AGE", 30)) * time.Minute,
		MaxUploadSize:      getEnvAsInt64("MAX_UPLOAD_SIZE_MB", 20) << 20,
		ResultsDirectory:   getEnv("RESULTS_DIR", filepath.Join(".", "static", "results")),
		ThumbnailDirectory: getEnv("THUMBNAIL_DIR", filepath.Join(".", "static", "thumbnails")),
		ThumbnailSize:      getEnvAsInt("THUMBNAIL_SIZE", 320),
		StaticDirectory:    getEnv("STATIC_DIR", filepath.Join(".", "static")),
		DatabasePath:       getEnv("DATABASE_PATH", filepath.Join(".", "data", "results.db")),

		ProcessingWorkers: getEnvAsInt("PROCESSING_WORKERS", 2),
		ProcessingTimeout: time.Duration(getEnvAsInt("PROCESSING_TIMEOUT", 60)) * time.Second,
		AllowedOrigins:    getEnvAsList("ALLOWED_ORIGINS", []string{"*"}),
		LogDirectory:      getEnv("LOG_DIR", filepath.Join(".", "logs")),
	}
}

// Validate checks value ranges that would otherwise fail late at request time.
func (c *Config) Validate() error {
	for name, v := range map[string]float64{
		"SEEDLING_CONFIDENCE":   c.SeedlingConfidence,
		"EMPTY_CELL_CONFIDENCE": c.EmptyCellConfidence,
		"IOU_THRESHOLD":         c.IoUThreshold,
		"NMS_THRESHOLD":         c.NMSThreshold,
	} {
		if math.IsNaN(v) || v < 0 || v > 1 {
			return fmt.Errorf("%s must be within [0,1], got %v", name, v)
		}
	}

	if c.ProcessingWorkers < 1 {
		return fmt.Errorf("PROCESSING_WORKERS must be at least 1, got %d", c.ProcessingWorkers)
	}
	if c.ModelInputSize < 32 {
		return fmt.Errorf("MODEL_INPUT_SIZE must be at least 32, got %d", c.ModelInputSize)
	}
	if c.SeedlingClass == "" || c.EmptyCellClass == "" {
		return fmt.Errorf("SEEDLING_CLASS and EMPTY_CELL_CLASS must not be empty")
	}

	for name, hex := range map[string]string{
		"SEEDLING_COLOR":   c.SeedlingColor,
		"EMPTY_CELL_COLOR": c.EmptyCellColor,
	} {
		if _, err := colorful.Hex(hex); err != nil {
			return fmt.Errorf("%s must be a hex color like #00FF00, got %q", name, hex)
		}
	}

	switch c.DetectorBackend {
	case BackendDNN:
		if c.SeedlingModelPath == "" || c.EmptyCellModelPath == "" {
			return fmt.Errorf("model paths are required for the %s backend", BackendDNN)
		}
	case BackendHTTP:
		if c.SeedlingDetectorURL == "" || c.EmptyCellDetectorURL == "" {
			return fmt.Errorf("detector URLs are required for the %s backend", BackendHTTP)
		}
	default:
		return fmt.Errorf("unknown DETECTOR_BACKEND %q", c.DetectorBackend)
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

// getEnvAsList splits a comma separated value, dropping empty entries.
func getEnvAsList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	if len(items) == 0 {
		return defaultValue
	}
	return items
}
