package testutil

import (
	"database/sql"
	"fmt"
	"testing"

	_ "github.com/go-sql-driver/mysql"
)

// SetupTestDB opens the integration test database. Tests calling it are
// skipped when no MySQL named 'testjowi_test' is reachable on localhost.
func SetupTestDB(t *testing.T) *sql.DB {
	dsn := "root:@tcp(localhost:3306)/testjowi_test?parseTime=true"
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	if err := db.Ping(); err != nil {
		t.Skipf("test database not available: %v", err)
	}

	return db
}

// CleanupTestDB empties the test tables and closes the connection.
func CleanupTestDB(t *testing.T, db *sql.DB) {
	if db == nil {
		return
	}

	tables := []string{"OrderItems", "Orders", "Products", "Users"}
	for _, table := range tables {
		if _, err := db.Exec(fmt.Sprintf("DELETE FROM %s", table)); err != nil {
			t.Logf("failed to clean table %s: %v", table, err)
		}
	}

	db.Close()
}

// SetupTestTables creates the tables the tests need.
func SetupTestTables(t *testing.T, db *sql.DB) {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS Users (
			id INT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
			username VARCHAR(80) NOT NULL UNIQUE,
			passwordHash VARCHAR(255) NOT NULL,
			role VARCHAR(20) NOT NULL DEFAULT 'staff'
		)`,
		`CREATE TABLE IF NOT EXISTS Products (
			id INT NOT NULL AUTO_INCREMENT PRIMARY KEY,
			name VARCHAR(120) NOT NULL,
			price DECIMAL(12,2) NOT NULL,
			category VARCHAR(64) NOT NULL DEFAULT '',
			isAvailable TINYINT(1) NOT NULL DEFAULT 1
		)`,
		`CREATE TABLE IF NOT EXISTS Orders (
			id INT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
			customerName VARCHAR(120) NOT NULL,
			contact VARCHAR(120) NOT NULL,
			status VARCHAR(20) NOT NULL DEFAULT 'new',
			total DECIMAL(12,2) NOT NULL DEFAULT 0,
			createdAt DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updatedAt DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
			createdBy INT UNSIGNED NOT NULL,
			INDEX idx_status (status),
			INDEX idx_created (createdAt)
		)`,
		`CREATE TABLE IF NOT EXISTS OrderItems (
			id INT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
			orderId INT UNSIGNED NOT NULL,
			productName VARCHAR(120) NOT NULL,
			quantity INT NOT NULL,
			price DECIMAL(12,2) NOT NULL,
			notes VARCHAR(255),
			INDEX idx_order (orderId)
		)`,
	}

	for _, stmt := range statements {
		if _, err := db.Exec(stmt); err != nil {
			t.Fatalf("failed to create test tables: %v", err)
		}
	}
}
