package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	// Server
	Port string

	// Database
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// Auth (single admin user)
	AdminUsername    string
	AdminPassword    string
	AdminDisplayName string
	AdminRole        string
	JWTSecret        string

	// MQTT ingest source (disabled when broker URL is empty)
	MQTTBrokerURL string
	MQTTClientID  string
	MQTTTopic     string

	// Seed demo devices/rules/readings into an empty database
	SeedDemoData bool
}

func Load() *Config {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	return &Config{
		Port:             getEnv("PORT", "8080"),
		DBHost:           getEnv("DB_HOST", "localhost"),
		DBPort:           getEnv("DB_PORT", "5432"),
		DBUser:           getEnv("DB_USER", "postgres"),
		DBPassword:       getEnv("DB_PASSWORD", ""),
		DBName:           getEnv("DB_NAME", "predictive_maintenance"),
		DBSSLMode:        getEnv("DB_SSLMODE", "disable"),
		AdminUsername:    getEnv("ADMIN_USERNAME", "admin"),
		AdminPassword:    getEnv("ADMIN_PASSWORD", ""),
		AdminDisplayName: getEnv("ADMIN_DISPLAY_NAME", "Admin"),
		AdminRole:        getEnv("ADMIN_ROLE", "admin"),
		JWTSecret:        getEnv("JWT_SECRET", ""),
		MQTTBrokerURL:    getEnv("MQTT_BROKER_URL", ""),
		MQTTClientID:     getEnv("MQTT_CLIENT_ID", "pm-backend"),
		MQTTTopic:        getEnv("MQTT_TOPIC", "devices/+/readings"),
		SeedDemoData:     getEnvBool("SEED_DEMO_DATA", false),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}
