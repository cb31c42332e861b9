package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// This function will Load the ENVIORNMENT VARIABLES from .env if GO_ENV variable is not set
func LoadENV() error {
	goEnv := os.Getenv("GO_ENV")

	if goEnv == "" || goEnv == "development" {
		err := godotenv.Load()
		if err != nil {
			return err
		}
	}

	return nil
}

type EnviornmentVariable struct {
	// All variables
	GO_ENV       string
	DB_USER_NAME string
	DB_PASSWORD  string
	DB_NAME      string
	DB_HOST      string
	DB_PORT      string
	DB_SSL_MODE  string
	PORT         int
	// Redis Configuration
	REDIS_URL      string
	REDIS_PASSWORD string
	REDIS_DB       string
	// OCR fallback service
	OCR_SERVICE_URL string
	// Test defaults
	DEFAULT_NEGATIVE_MARKING   float64
	DEFAULT_MARKS_PER_QUESTION float64
}

func Get() (*EnviornmentVariable, error) {

	port, err := strconv.Atoi(os.Getenv("PORT"))
	if err != nil {
		port = 8080
	}

	// Database defaults
	dbHost := os.Getenv("DB_HOST")
	if dbHost == "" {
		dbHost = "localhost"
	}

	dbPort := os.Getenv("DB_PORT")
	if dbPort == "" {
		dbPort = "5432"
	}

	negativeMarking, err := strconv.ParseFloat(os.Getenv("DEFAULT_NEGATIVE_MARKING"), 64)
	if err != nil {
		negativeMarking = 0.66
	}

	marksPerQuestion, err := strconv.ParseFloat(os.Getenv("DEFAULT_MARKS_PER_QUESTION"), 64)
	if err != nil {
		marksPerQuestion = 2
	}

	envVariables := &EnviornmentVariable{
		GO_ENV:       os.Getenv("GO_ENV"),
		DB_USER_NAME: os.Getenv("DB_USER_NAME"),
		DB_PASSWORD:  os.Getenv("DB_PASSWORD"),
		DB_NAME:      os.Getenv("DB_NAME"),
		DB_HOST:      dbHost,
		DB_PORT:      dbPort,
		DB_SSL_MODE:  os.Getenv("DB_SSL_MODE"),
		PORT:         port,
		// Redis
		REDIS_URL:      os.Getenv("REDIS_URL"),
		REDIS_PASSWORD: os.Getenv("REDIS_PASSWORD"),
		REDIS_DB:       os.Getenv("REDIS_DB"),
		// OCR
		OCR_SERVICE_URL: os.Getenv("OCR_SERVICE_URL"),
		// Test defaults
		DEFAULT_NEGATIVE_MARKING:   negativeMarking,
		DEFAULT_MARKS_PER_QUESTION: marksPerQuestion,
	}

	return envVariables, nil
}
