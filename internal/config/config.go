package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	// Database
	DatabaseURL string

	// Kafka
	KafkaBrokers string

	// API Configuration
	APIPort string
	APIHost string

	// Billz
	BillzAPIURL      string
	BillzSecretToken string
	ShopID           string
	PageSize         int

	// Media
	MediaDir string

	// Environment
	Env      string
	LogLevel string

	Policies Policies
}

// Policies are the per-field write switches applied by the reconciler and
// catalog store. Defaults mirror the behavior a fresh install should have:
// everything updates except category merging, out-of-stock variation hiding
// and image-less product creation.
type Policies struct {
	UpdateName                  bool
	UpdateDescription           bool
	UpdateShortDescription      bool
	UpdateSKU                   bool
	UpdateImages                bool
	RemoveImagesIfEmpty         bool
	UpdateCategories            bool
	MergeCategories             bool
	UpdateAttributes            bool
	DisableOutOfStockVariations bool
	CreateWithoutImages         bool
}

func Load() (*Config, error) {
	// Load .env file
	godotenv.Load()

	return &Config{
		DatabaseURL:      getEnv("DATABASE_URL", "sqlite://billzsync.db"),
		KafkaBrokers:     getEnv("KAFKA_BROKERS", "localhost:9092"),
		APIPort:          getEnv("API_PORT", "8080"),
		APIHost:          getEnv("API_HOST", "0.0.0.0"),
		BillzAPIURL:      getEnv("BILLZ_API_URL", "https://api-admin.billz.ai"),
		BillzSecretToken: getEnv("BILLZ_SECRET_TOKEN", ""),
		ShopID:           getEnv("BILLZ_SHOP_ID", ""),
		PageSize:         getEnvAsInt("BILLZ_PAGE_SIZE", 100),
		MediaDir:         getEnv("MEDIA_DIR", "./media"),
		Env:              getEnv("ENV", "development"),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		Policies: Policies{
			UpdateName:                  getEnvAsBool("UPDATE_NAME", true),
			UpdateDescription:           getEnvAsBool("UPDATE_DESCRIPTION", true),
			UpdateShortDescription:      getEnvAsBool("UPDATE_SHORT_DESCRIPTION", true),
			UpdateSKU:                   getEnvAsBool("UPDATE_SKU", true),
			UpdateImages:                getEnvAsBool("UPDATE_IMAGES", true),
			RemoveImagesIfEmpty:         getEnvAsBool("REMOVE_IMAGES_IF_EMPTY", true),
			UpdateCategories:            getEnvAsBool("UPDATE_CATEGORIES", true),
			MergeCategories:             getEnvAsBool("MERGE_CATEGORIES", false),
			UpdateAttributes:            getEnvAsBool("UPDATE_ATTRIBUTES", true),
			DisableOutOfStockVariations: getEnvAsBool("DISABLE_OUTOFSTOCK_VARIATIONS", false),
			CreateWithoutImages:         getEnvAsBool("CREATE_WITHOUT_IMAGES", false),
		},
	}, nil
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

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
