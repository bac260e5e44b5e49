package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"

	"github.com/matthieukhl/axoshard/internal/apperr"
	"github.com/matthieukhl/axoshard/internal/database"
	"github.com/matthieukhl/axoshard/internal/models"
)

const (
	mysqlErrDuplicateEntry = 1062
	mysqlErrNoReferenced   = 1452
)

// MySQLStore persists the storefront in MySQL (or TiDB).
type MySQLStore struct {
	db  *database.DB
	ids IDGenerator
	now func() time.Time
}

func NewMySQLStore(db *database.DB, ids IDGenerator) *MySQLStore {
	if ids == nil {
		ids = UUIDGenerator{}
	}
	return &MySQLStore{db: db, ids: ids, now: time.Now}
}

func persistence(err error, op string) error {
	return apperr.Wrap(apperr.KindPersistence, err, "failed to "+op)
}

func mysqlErrorNumber(err error) uint16 {
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		return me.Number
	}
	return 0
}

// Product methods

const productColumns = "id, name, description, price, image_url, stock, is_active"

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (models.Product, error) {
	var p models.Product
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.ImageURL, &p.Stock, &p.IsActive)
	return p, err
}

func (s *MySQLStore) ListProducts(ctx context.Context) ([]models.Product, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT "+productColumns+" FROM products ORDER BY created_at, id")
	if err != nil {
		return nil, persistence(err, "list products")
	}
	defer rows.Close()

	products := []models.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, persistence(err, "scan product")
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, persistence(err, "list products")
	}
	return products, nil
}

func (s *MySQLStore) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+productColumns+" FROM products WHERE id = ?", id)
	p, err := scanProduct(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, persistence(err, "get product")
	}
	return &p, nil
}

func (s *MySQLStore) CreateProduct(ctx context.Context, p models.Product) (*models.Product, error) {
	p.ID = s.ids.NewID()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO products (id, name, description, price, image_url, stock, is_active)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, p.ID, p.Name, p.Description, p.Price, p.ImageURL, p.Stock, p.IsActive)
	if err != nil {
		return nil, persistence(err, "create product")
	}
	return &p, nil
}

func (s *MySQLStore) UpdateProduct(ctx context.Context, id string, p models.Product) (*models.Product, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE products
		SET name = ?, description = ?, price = ?, image_url = ?, stock = ?, is_active = ?
		WHERE id = ?
	`, p.Name, p.Description, p.Price, p.ImageURL, p.Stock, p.IsActive, id)
	if err != nil {
		return nil, persistence(err, "update product")
	}
	if n, err := res.RowsAffected(); err != nil {
		return nil, persistence(err, "update product")
	} else if n == 0 {
		return nil, ErrNotFound
	}
	p.ID = id
	return &p, nil
}

func (s *MySQLStore) DeleteProduct(ctx context.Context, id string) (bool, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM products WHERE id = ?", id)
	if err != nil {
		return false, persistence(err, "delete product")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, persistence(err, "delete product")
	}
	return n > 0, nil
}

func (s *MySQLStore) SetProductActive(ctx context.Context, id string, active bool) (*models.Product, error) {
	res, err := s.db.ExecContext(ctx, "UPDATE products SET is_active = ? WHERE id = ?", active, id)
	if err != nil {
		return nil, persistence(err, "toggle product")
	}
	if n, err := res.RowsAffected(); err != nil {
		return nil, persistence(err, "toggle product")
	} else if n == 0 {
		return nil, ErrNotFound
	}
	return s.GetProduct(ctx, id)
}

// DecrementStock is the single stock mutation point. The WHERE clause makes
// the check and the write one statement, so concurrent checkouts cannot
// oversell.
func (s *MySQLStore) DecrementStock(ctx context.Context, id string, qty int) (*models.Product, error) {
	res, err := s.db.ExecContext(ctx,
		"UPDATE products SET stock = stock - ? WHERE id = ? AND stock >= ?", qty, id, qty)
	if err != nil {
		return nil, persistence(err, "decrement stock")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, persistence(err, "decrement stock")
	}

	p, err := s.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, fmt.Errorf("%w: %s", ErrInsufficientStock, p.Name)
	}
	return p, nil
}

// Order methods

const orderColumns = "id, user_id, customer_email, customer_name, total_amount, status, COALESCE(payment_intent_id, ''), created_at"

func scanOrder(row rowScanner) (models.Order, error) {
	var o models.Order
	var userID sql.NullString
	err := row.Scan(&o.ID, &userID, &o.CustomerEmail, &o.CustomerName, &o.TotalAmount, &o.Status, &o.PaymentIntentID, &o.CreatedAt)
	if userID.Valid {
		o.UserID = &userID.String
	}
	return o, err
}

func (s *MySQLStore) CreateOrder(ctx context.Context, o models.Order) (*models.Order, error) {
	o.ID = s.ids.NewID()
	o.CreatedAt = s.now().UTC().Truncate(time.Microsecond)

	var userID sql.NullString
	if o.UserID != nil {
		userID = sql.NullString{String: *o.UserID, Valid: true}
	}
	// NULL keeps intent-less rows out of uk_payment_intent
	intentID := sql.NullString{String: o.PaymentIntentID, Valid: o.PaymentIntentID != ""}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO orders (id, user_id, customer_email, customer_name, total_amount, status, payment_intent_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, o.ID, userID, o.CustomerEmail, o.CustomerName, o.TotalAmount, o.Status, intentID, o.CreatedAt)
	if err != nil {
		if mysqlErrorNumber(err) == mysqlErrDuplicateEntry {
			return nil, fmt.Errorf("%w: %s", ErrPaymentRecorded, o.PaymentIntentID)
		}
		return nil, persistence(err, "create order")
	}
	return &o, nil
}

func (s *MySQLStore) FindOrderByPaymentIntent(ctx context.Context, intentID string) (*models.Order, error) {
	o, err := scanOrder(s.db.QueryRowContext(ctx, "SELECT "+orderColumns+" FROM orders WHERE payment_intent_id = ?", intentID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, persistence(err, "find order")
	}
	return &o, nil
}

func (s *MySQLStore) CreateOrderItem(ctx context.Context, item models.OrderItem) (*models.OrderItem, error) {
	item.ID = s.ids.NewID()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO order_items (id, order_id, product_id, product_name, quantity, price)
		VALUES (?, ?, ?, ?, ?, ?)
	`, item.ID, item.OrderID, item.ProductID, item.ProductName, item.Quantity, item.Price)
	if err != nil {
		if mysqlErrorNumber(err) == mysqlErrNoReferenced {
			return nil, fmt.Errorf("order %s: %w", item.OrderID, ErrNotFound)
		}
		return nil, persistence(err, "create order item")
	}
	return &item, nil
}

func (s *MySQLStore) ListOrders(ctx context.Context) ([]models.Order, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT "+orderColumns+" FROM orders ORDER BY created_at DESC, id DESC")
	if err != nil {
		return nil, persistence(err, "list orders")
	}
	defer rows.Close()

	orders := []models.Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, persistence(err, "scan order")
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, persistence(err, "list orders")
	}
	return orders, nil
}

func (s *MySQLStore) GetOrder(ctx context.Context, id string) (*models.OrderDetail, error) {
	o, err := scanOrder(s.db.QueryRowContext(ctx, "SELECT "+orderColumns+" FROM orders WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, persistence(err, "get order")
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, order_id, product_id, product_name, quantity, price
		FROM order_items WHERE order_id = ? ORDER BY id
	`, id)
	if err != nil {
		return nil, persistence(err, "list order items")
	}
	defer rows.Close()

	detail := &models.OrderDetail{Order: o, Items: []models.OrderItem{}}
	for rows.Next() {
		var item models.OrderItem
		if err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.ProductName, &item.Quantity, &item.Price); err != nil {
			return nil, persistence(err, "scan order item")
		}
		detail.Items = append(detail.Items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, persistence(err, "list order items")
	}
	return detail, nil
}

// User methods

const userColumns = "id, email, password, name, is_admin, created_at"

func scanUser(row rowScanner) (models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Name, &u.IsAdmin, &u.CreatedAt)
	return u, err
}

func (s *MySQLStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE email = ?", strings.TrimSpace(email))
	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, persistence(err, "find user")
	}
	return &u, nil
}

func (s *MySQLStore) GetUser(ctx context.Context, id string) (*models.User, error) {
	u, err := scanUser(s.db.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, persistence(err, "get user")
	}
	return &u, nil
}

func (s *MySQLStore) CreateUser(ctx context.Context, u models.User) (*models.User, error) {
	u.ID = s.ids.NewID()
	u.CreatedAt = s.now().UTC().Truncate(time.Microsecond)
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (id, email, password, name, is_admin, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, u.ID, u.Email, u.PasswordHash, u.Name, u.IsAdmin, u.CreatedAt)
	if err != nil {
		if mysqlErrorNumber(err) == mysqlErrDuplicateEntry {
			return nil, ErrDuplicateEmail
		}
		return nil, persistence(err, "create user")
	}
	return &u, nil
}

func (s *MySQLStore) CreateAccount(ctx context.Context, u models.User) (*models.User, error) {
	u.ID = s.ids.NewID()
	u.CreatedAt = s.now().UTC().Truncate(time.Microsecond)
	// INSERT … SELECT locks what NOT EXISTS reads, so two first signups
	// cannot both see an empty table.
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (id, email, password, name, is_admin, created_at)
		SELECT ?, ?, ?, ?, NOT EXISTS (SELECT 1 FROM users), ?
	`, u.ID, u.Email, u.PasswordHash, u.Name, u.CreatedAt)
	if err != nil {
		if mysqlErrorNumber(err) == mysqlErrDuplicateEntry {
			return nil, ErrDuplicateEmail
		}
		return nil, persistence(err, "create user")
	}
	return s.GetUser(ctx, u.ID)
}

func (s *MySQLStore) CountUsers(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM users").Scan(&n); err != nil {
		return 0, persistence(err, "count users")
	}
	return n, nil
}

func (s *MySQLStore) SetAdmin(ctx context.Context, id string, admin bool) (*models.User, error) {
	res, err := s.db.ExecContext(ctx, "UPDATE users SET is_admin = ? WHERE id = ?", admin, id)
	if err != nil {
		return nil, persistence(err, "update user")
	}
	if n, err := res.RowsAffected(); err != nil {
		return nil, persistence(err, "update user")
	} else if n == 0 {
		return nil, ErrNotFound
	}
	return s.GetUser(ctx, id)
}

func (s *MySQLStore) HealthCheck(ctx context.Context) error {
	return s.db.HealthCheck(ctx)
}

func (s *MySQLStore) Close() error {
	return s.db.Close()
}

// Compile-time interface check
var _ Store = (*MySQLStore)(nil)
