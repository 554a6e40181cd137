package config

import (
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds every runtime setting, bound from the environment with
// sensible development defaults.
type Config struct {
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	HTTPPort string

	TelegramToken     string
	BroadcastChatID   int64
	AdminUsername     string
	AdminPassword     string
	Timezone          string
	ApprovalWindow    time.Duration
	AllowedOrigins    []string
	SFTActivities     []string
	MovementLocations []string
}

// Load reads configs/.env when present, then binds environment variables.
func Load() (*Config, error) {
	if err := godotenv.Load("configs/.env"); err != nil {
		log.Println("No configs/.env file found or error loading it")
	}

	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "postgres")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("PORT", "8080")
	v.SetDefault("TIMEZONE", "Asia/Singapore")
	v.SetDefault("APPROVAL_WINDOW_MINUTES", 10)
	v.SetDefault("ALLOWED_ORIGINS", []string{"http://localhost:5173"})
	v.SetDefault("SFT_ACTIVITIES", []string{"Run", "Swim", "Gym", "Sports"})
	v.SetDefault("MOVEMENT_LOCATIONS", []string{"Camp", "Medical Centre", "Training Shed", "Mess"})

	cfg := &Config{
		DBHost:            v.GetString("DB_HOST"),
		DBPort:            v.GetString("DB_PORT"),
		DBUser:            v.GetString("DB_USER"),
		DBPassword:        v.GetString("DB_PASSWORD"),
		DBName:            v.GetString("DB_NAME"),
		DBSSLMode:         v.GetString("DB_SSLMODE"),
		HTTPPort:          v.GetString("PORT"),
		TelegramToken:     v.GetString("TELEGRAM_TOKEN"),
		BroadcastChatID:   v.GetInt64("BROADCAST_CHAT_ID"),
		AdminUsername:     v.GetString("DASHBOARD_ADMIN_USER"),
		AdminPassword:     v.GetString("DASHBOARD_ADMIN_PASSWORD"),
		Timezone:          v.GetString("TIMEZONE"),
		ApprovalWindow:    time.Duration(v.GetInt("APPROVAL_WINDOW_MINUTES")) * time.Minute,
		AllowedOrigins:    v.GetStringSlice("ALLOWED_ORIGINS"),
		SFTActivities:     v.GetStringSlice("SFT_ACTIVITIES"),
		MovementLocations: v.GetStringSlice("MOVEMENT_LOCATIONS"),
	}

	return cfg, nil
}

// DSN builds the postgres connection string.
func (c *Config) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName, c.DBSSLMode)
}

// Location resolves the configured time zone, falling back to UTC.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		log.Printf("WARNING: unknown timezone %q, falling back to UTC", c.Timezone)
		return time.UTC
	}
	return loc
}
