package config

import (
	"os"
	"strconv"
)

// Config holds all pipeline configuration
type Config struct {
	Pipeline   PipelineConfig
	Detect     DetectConfig
	Categorize CategorizeConfig
	Export     ExportConfig
}

type PipelineConfig struct {
	// Workers bounds how many statements are processed concurrently.
	Workers int
	// GenericFallback enables the best-effort parser for statements
	// whose institution could not be identified.
	GenericFallback bool
}

type DetectConfig struct {
	// Pages is how many leading pages are sampled for institution signatures.
	Pages int
	// MinScore is the minimum signature score a profile must reach.
	MinScore int
}

type CategorizeConfig struct {
	// ConfigPath points at the category-keyword JSON document. Empty means
	// the built-in default categories.
	ConfigPath string
	// SemanticThreshold is the minimum similarity for a semantic match.
	SemanticThreshold float64
	// LowConfidence marks categorizations below it for manual review.
	LowConfidence float64
}

type ExportConfig struct {
	OutputPath string
	Format     string // csv or xlsx
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Pipeline: PipelineConfig{
			Workers:         getEnvAsInt("PIPELINE_WORKERS", 4),
			GenericFallback: getEnvAsBool("PIPELINE_GENERIC_FALLBACK", true),
		},
		Detect: DetectConfig{
			Pages:    getEnvAsInt("DETECT_PAGES", 3),
			MinScore: getEnvAsInt("DETECT_MIN_SCORE", 2),
		},
		Categorize: CategorizeConfig{
			ConfigPath:        getEnv("CATEGORIZE_CONFIG_PATH", ""),
			SemanticThreshold: getEnvAsFloat("CATEGORIZE_SEMANTIC_THRESHOLD", 0.3),
			LowConfidence:     getEnvAsFloat("CATEGORIZE_LOW_CONFIDENCE", 0.7),
		},
		Export: ExportConfig{
			OutputPath: getEnv("EXPORT_OUTPUT_PATH", "ledger.csv"),
			Format:     getEnv("EXPORT_FORMAT", "csv"),
		},
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}
