package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"time"

	"github.com/spf13/viper"
)

//go:embed config.yml
var embeddedConfig []byte

type Config struct {
	Mode     string `mapstructure:"mode"`
	Dotenv   string `mapstructure:"dotenv"`
	Handlers struct {
		Prometheus struct {
			Port      string `mapstructure:"port"`
			CertFile  string `mapstructure:"certFile"`
			KeyFile   string `mapstructure:"keyFile"`
			EnableTLS bool   `mapstructure:"enableTLS"`
		} `mapstructure:"prometheus"`
	} `mapstructure:"handlers"`
	Repositories struct {
		Postgres struct {
			Host              string `mapstructure:"host"`
			Password          string `mapstructure:"password"`
			Port              string `mapstructure:"port"`
			Username          string `mapstructure:"username"`
			DB                string `mapstructure:"db"`
			SSLMODE           string `mapstructure:"SSLMODE"`
			MAXCONWAITINGTIME int    `mapstructure:"MAXCONWAITINGTIME"`
		} `mapstructure:"postgres"`
		Redis struct {
			Host     string `mapstructure:"host"`
			Port     string `mapstructure:"port"`
			Password string `mapstructure:"password"`
			DB       int    `mapstructure:"db"`
		} `mapstructure:"redis"`
	} `mapstructure:"repositories"`
	Server struct {
		HTTPPort string        `mapstructure:"HTTPPort"`
		Timeout  time.Duration `mapstructure:"HTTPTimeout"`
	} `mapstructure:"server"`
	Providers struct {
		GooglePlacesAPIKey string `mapstructure:"googlePlacesAPIKey"`
		GeminiAPIKey       string `mapstructure:"geminiAPIKey"`
		NominatimEndpoint  string `mapstructure:"nominatimEndpoint"`
		NominatimUserAgent string `mapstructure:"nominatimUserAgent"`
		TranslateEndpoint  string `mapstructure:"translateEndpoint"`
	} `mapstructure:"providers"`
	Chatbot struct {
		DefaultLanguage      string        `mapstructure:"defaultLanguage"`
		SupportedLanguages   []string      `mapstructure:"supportedLanguages"`
		RecommendationRadius int           `mapstructure:"recommendationRadius"`
		MaxRecommendations   int           `mapstructure:"maxRecommendations"`
		CacheTTL             time.Duration `mapstructure:"cacheTTL"`
	} `mapstructure:"chatbot"`
	Webhook struct {
		Secret string `mapstructure:"secret"`
	} `mapstructure:"webhook"`
	BookingSearch struct {
		URL     string        `mapstructure:"url"`
		Auth    string        `mapstructure:"auth"`
		Timeout time.Duration `mapstructure:"timeout"`
	} `mapstructure:"bookingSearch"`
}

func InitConfig() (Config, error) {
	var config Config
	v := viper.New()

	// Add file-based config paths
	v.AddConfigPath(".")
	v.AddConfigPath("config")
	v.AddConfigPath("/app/config")

	v.SetConfigName("config")
	v.SetConfigType("yml")

	// Try to load file-based config
	err := v.ReadInConfig()
	if err != nil {
		fmt.Printf("Warning: Failed to find file-based config: %s. Falling back to embedded config.\n", err)
		if err = v.ReadConfig(bytes.NewReader(embeddedConfig)); err != nil {
			return Config{}, fmt.Errorf("failed to read embedded config: %s", err)
		}
	}

	// Secrets always come from the environment, never from the yml on disk
	_ = v.BindEnv("providers.googlePlacesAPIKey", "GOOGLE_PLACES_API_KEY")
	_ = v.BindEnv("providers.geminiAPIKey", "GEMINI_API_KEY")
	_ = v.BindEnv("webhook.secret", "WEBHOOK_SECRET")
	_ = v.BindEnv("bookingSearch.url", "BOOKING_SEARCH_URL")
	_ = v.BindEnv("bookingSearch.auth", "BOOKING_SEARCH_AUTH")
	_ = v.BindEnv("repositories.postgres.password", "POSTGRES_PASSWORD")
	_ = v.BindEnv("repositories.redis.password", "REDIS_PASSWORD")

	// Unmarshal the config into the Config struct
	if err = v.Unmarshal(&config); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %s", err)
	}
	fmt.Println("Successfully loaded app configs...")
	return config, nil
}
