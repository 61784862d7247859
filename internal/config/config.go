package config

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/ekaraca/restaurant_pos/internal/models"
	"github.com/ekaraca/restaurant_pos/pkg/db"
)

type Config struct {
	DB_HOST       string
	DB_PORT       string
	DB_USER       string
	DB_PASSWORD   string
	DB_NAME       string
	REDIS_ADDR    string
	KAFKA_ADDRESS string
	JWT_SECRET    string
	HTTP_PORT     string
	LOG_LEVEL     string
}

func LoadConfig() (*Config, error) {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Notice: .env file not found: %v. Using system environment variables", err)
	}

	config := &Config{
		DB_HOST:       os.Getenv("DB_HOST"),
		DB_PORT:       os.Getenv("DB_PORT"),
		DB_USER:       os.Getenv("DB_USER"),
		DB_PASSWORD:   os.Getenv("DB_PASSWORD"),
		DB_NAME:       os.Getenv("DB_NAME"),
		REDIS_ADDR:    os.Getenv("REDIS_ADDR"),
		KAFKA_ADDRESS: os.Getenv("KAFKA_ADDRESS"),
		JWT_SECRET:    os.Getenv("JWT_SECRET"),
		HTTP_PORT:     os.Getenv("HTTP_PORT"),
		LOG_LEVEL:     os.Getenv("LOG_LEVEL"),
	}
	if config.HTTP_PORT == "" {
		config.HTTP_PORT = "8080"
	}

	return config, nil
}

func (c *Config) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.DB_USER, c.DB_PASSWORD, c.DB_HOST, c.DB_PORT, c.DB_NAME,
	)
}

func InitDB(ctx context.Context, c *Config) (*gorm.DB, error) {
	gdb, err := db.Open(ctx, c.DSN())
	if err != nil {
		return nil, err
	}

	if err := gdb.AutoMigrate(
		&models.Tenant{},
		&models.User{},
		&models.Product{},
		&models.Modifier{},
		&models.DiningTable{},
		&models.StockMovement{},
		&models.Order{},
		&models.OrderItem{},
		&models.OrderItemModifier{},
		&models.Payment{},
	); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return gdb, nil
}
