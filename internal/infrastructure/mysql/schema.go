package mysql

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/faraganiev/testjowi/internal/domain"
)

var schema = []string{
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
		isAvailable TINYINT(1) NOT NULL DEFAULT 1,
		CONSTRAINT ck_product_price_nonneg CHECK (price >= 0)
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
		INDEX idx_order (orderId),
		CONSTRAINT fk_orderitem_order FOREIGN KEY (orderId) REFERENCES Orders (id),
		CONSTRAINT ck_orderitem_price_nonneg CHECK (price >= 0),
		CONSTRAINT ck_orderitem_qty_pos CHECK (quantity > 0)
	)`,
}

// Migrate creates the tables when they do not exist yet.
func Migrate(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("applying schema: %w", err)
		}
	}
	return nil
}

// Seed inserts the starter catalog and the admin user when the corresponding
// tables are empty. Passwords are bcrypt-hashed; the admin password comes
// from config so deployments can override the default.
func Seed(ctx context.Context, db *sql.DB, adminPassword string, logger *zap.Logger) error {
	var productCount int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM Products`).Scan(&productCount); err != nil {
		return fmt.Errorf("counting products: %w", err)
	}

	if productCount == 0 {
		products := []domain.Product{
			{Name: "Пицца Маргарита", Price: 55000, Category: "Еда"},
			{Name: "Бургер Классический", Price: 32000, Category: "Еда"},
			{Name: "Картофель фри", Price: 15000, Category: "Еда"},
			{Name: "Кола 0.5", Price: 11000, Category: "Напитки"},
			{Name: "Спрайт 0.5", Price: 11000, Category: "Напитки"},
		}
		for _, p := range products {
			_, err := db.ExecContext(ctx,
				`INSERT INTO Products (name, price, category, isAvailable) VALUES (?, ?, ?, 1)`,
				p.Name, p.Price, p.Category,
			)
			if err != nil {
				return fmt.Errorf("seeding products: %w", err)
			}
		}
		logger.Info("seeded product catalog", zap.Int("count", len(products)))
	}

	var adminCount int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM Users WHERE username = 'admin'`).Scan(&adminCount); err != nil {
		return fmt.Errorf("counting admin user: %w", err)
	}

	if adminCount == 0 {
		hash, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("hashing admin password: %w", err)
		}
		_, err = db.ExecContext(ctx,
			`INSERT INTO Users (username, passwordHash, role) VALUES ('admin', ?, ?)`,
			string(hash), domain.RoleStaff,
		)
		if err != nil {
			return fmt.Errorf("seeding admin user: %w", err)
		}
		logger.Info("seeded admin user")
	}

	return nil
}
