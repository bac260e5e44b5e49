package database

import "context"

// schemaStatements creates the storefront tables. Emails compare
// case-insensitively through the utf8mb4_general_ci collation while the
// stored value keeps the case the shopper typed.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS products (
	    id VARCHAR(36) PRIMARY KEY,
	    name VARCHAR(255) NOT NULL,
	    description TEXT NOT NULL,
	    price DECIMAL(10,2) NOT NULL,
	    image_url TEXT NOT NULL,
	    stock INT NOT NULL DEFAULT 0,
	    is_active BOOLEAN NOT NULL DEFAULT TRUE,
	    created_at TIMESTAMP(6) DEFAULT CURRENT_TIMESTAMP(6),
	    INDEX idx_is_active (is_active),
	    CONSTRAINT chk_stock_non_negative CHECK (stock >= 0)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS users (
	    id VARCHAR(36) PRIMARY KEY,
	    email VARCHAR(255) NOT NULL COLLATE utf8mb4_general_ci,
	    password VARCHAR(255) NOT NULL,
	    name VARCHAR(255) NOT NULL,
	    is_admin BOOLEAN NOT NULL DEFAULT FALSE,
	    created_at DATETIME(6) NOT NULL,
	    UNIQUE KEY uk_email (email)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS orders (
	    id VARCHAR(36) PRIMARY KEY,
	    user_id VARCHAR(36) NULL,
	    customer_email VARCHAR(255) NOT NULL,
	    customer_name VARCHAR(255) NOT NULL,
	    total_amount DECIMAL(10,2) NOT NULL,
	    status VARCHAR(32) NOT NULL DEFAULT 'pending',
	    payment_intent_id VARCHAR(255),
	    created_at DATETIME(6) NOT NULL,
	    INDEX idx_created_at (created_at),
	    UNIQUE KEY uk_payment_intent (payment_intent_id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	// product_id has no foreign key: products may be hard-deleted after purchase.
	`CREATE TABLE IF NOT EXISTS order_items (
	    id VARCHAR(36) PRIMARY KEY,
	    order_id VARCHAR(36) NOT NULL,
	    product_id VARCHAR(36) NOT NULL,
	    product_name VARCHAR(255) NOT NULL,
	    quantity INT NOT NULL,
	    price DECIMAL(10,2) NOT NULL,
	    FOREIGN KEY (order_id) REFERENCES orders(id),
	    INDEX idx_order_id (order_id),
	    INDEX idx_product_id (product_id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}

// SetupSchema creates the storefront tables if they do not exist
func (db *DB) SetupSchema(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}

	return nil
}

// DropSchema removes all storefront tables
func (db *DB) DropSchema(ctx context.Context) error {
	queries := []string{
		"DROP TABLE IF EXISTS order_items",
		"DROP TABLE IF EXISTS orders",
		"DROP TABLE IF EXISTS products",
		"DROP TABLE IF EXISTS users",
	}

	for _, query := range queries {
		if _, err := db.ExecContext(ctx, query); err != nil {
			return err
		}
	}

	return nil
}
