package database

import (
	"database/sql"
	"fmt"
	"log"

	_ "github.com/lib/pq"
	"github.com/parikshasetu/api/config"
)

// Storage defines the interface that all database implementations must satisfy
type Storage interface {
	// Lifecycle methods
	Init() error
	Close() error
	HealthCheck() error

	// GORM DB access
	GetDB() interface{} // Returns *gorm.DB for GORMStore, *sql.DB for PostgreSQLStore
}

// PostgreSQLStore is the raw database/sql store used for reporting queries
// that bypass the ORM (leaderboard export, rank audits)
type PostgreSQLStore struct {
	db *sql.DB
}

// StartPostgreSQL opens a raw lib/pq connection
func StartPostgreSQL() (*PostgreSQLStore, error) {
	getEnv, err := config.Get()
	if err != nil {
		return nil, err
	}

	connStr := fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		getEnv.DB_HOST,
		getEnv.DB_USER_NAME,
		getEnv.DB_PASSWORD,
		getEnv.DB_NAME,
		getEnv.DB_PORT,
		getEnv.DB_SSL_MODE,
	)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		log.Println("Unable to open PostgreSQL connection:", err)
		return nil, err
	}

	if err := db.Ping(); err != nil {
		log.Println("Unable to reach PostgreSQL:", err)
		return nil, err
	}

	log.Println("Successfully connected to PostgreSQL Database.")

	return &PostgreSQLStore{db: db}, nil
}

// Init applies the raw-SQL constraints GORM's AutoMigrate does not manage
func (s *PostgreSQLStore) Init() error {
	return s.Initialize()
}

// Close closes the database connection
func (s *PostgreSQLStore) Close() error {
	log.Println("Closing PostgreSQL connection...")
	return s.db.Close()
}

// HealthCheck verifies the database connection is alive
func (s *PostgreSQLStore) HealthCheck() error {
	return s.db.Ping()
}

// GetDB returns the raw *sql.DB instance
func (s *PostgreSQLStore) GetDB() interface{} {
	return s.db
}
