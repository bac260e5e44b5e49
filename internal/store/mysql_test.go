package store

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matthieukhl/axoshard/internal/apperr"
	"github.com/matthieukhl/axoshard/internal/database"
	"github.com/matthieukhl/axoshard/internal/models"
)

func newMockStore(t *testing.T) (*MySQLStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	s := NewMySQLStore(&database.DB{DB: db}, &sequenceIDs{})
	s.now = func() time.Time { return time.Date(2025, 11, 12, 9, 30, 0, 0, time.UTC) }
	return s, mock
}

var productRowColumns = []string{"id", "name", "description", "price", "image_url", "stock", "is_active"}

func TestMySQLGetProduct(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectQuery(regexp.QuoteMeta("FROM products WHERE id = ?")).
		WithArgs("p1").
		WillReturnRows(sqlmock.NewRows(productRowColumns).
			AddRow("p1", "Mug", "Ceramic", "19.99", "/mug.png", int64(2), true))

	p, err := s.GetProduct(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, "Mug", p.Name)
	assert.True(t, decimal.RequireFromString("19.99").Equal(p.Price))
	assert.Equal(t, 2, p.Stock)
	assert.True(t, p.IsActive)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMySQLGetProductNotFound(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectQuery(regexp.QuoteMeta("FROM products WHERE id = ?")).
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows(productRowColumns))

	_, err := s.GetProduct(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMySQLDecrementStockConditional(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE products SET stock = stock - ? WHERE id = ? AND stock >= ?")).
		WithArgs(2, "p1", 2).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta("FROM products WHERE id = ?")).
		WithArgs("p1").
		WillReturnRows(sqlmock.NewRows(productRowColumns).
			AddRow("p1", "Mug", "Ceramic", "19.99", "/mug.png", int64(0), true))

	p, err := s.DecrementStock(context.Background(), "p1", 2)
	require.NoError(t, err)
	assert.Equal(t, 0, p.Stock)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMySQLDecrementStockInsufficient(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE products SET stock = stock - ?")).
		WithArgs(1, "p1", 1).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta("FROM products WHERE id = ?")).
		WithArgs("p1").
		WillReturnRows(sqlmock.NewRows(productRowColumns).
			AddRow("p1", "Mug", "Ceramic", "19.99", "/mug.png", int64(0), true))

	_, err := s.DecrementStock(context.Background(), "p1", 1)
	assert.ErrorIs(t, err, ErrInsufficientStock)
	assert.Contains(t, err.Error(), "Mug")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMySQLCreateUserDuplicate(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectExec("INSERT INTO users").
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry 'a@x.com' for key 'uk_email'"})

	_, err := s.CreateUser(context.Background(), models.User{Email: "a@x.com", PasswordHash: "h", Name: "A"})
	assert.ErrorIs(t, err, ErrDuplicateEmail)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMySQLCreateOrderItemUnknownOrder(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectExec("INSERT INTO order_items").
		WillReturnError(&mysql.MySQLError{Number: 1452, Message: "Cannot add or update a child row"})

	_, err := s.CreateOrderItem(context.Background(), models.OrderItem{OrderID: "o1", ProductID: "p1", Quantity: 1})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMySQLPersistenceErrorsAreClassified(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectQuery("FROM products").WillReturnError(errors.New("connection reset"))

	_, err := s.ListProducts(context.Background())
	require.Error(t, err)
	assert.Equal(t, apperr.KindPersistence, apperr.KindOf(err))
	assert.Equal(t, "internal server error", apperr.PublicMessage(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMySQLCreateOrderAssignsIdentityAndTime(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectExec("INSERT INTO orders").
		WithArgs("id-001", sqlmock.AnyArg(), "a@x.com", "A", sqlmock.AnyArg(), models.OrderStatusCompleted, "pi_123", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	o, err := s.CreateOrder(context.Background(), models.Order{
		CustomerEmail:   "a@x.com",
		CustomerName:    "A",
		TotalAmount:     decimal.RequireFromString("39.98"),
		Status:          models.OrderStatusCompleted,
		PaymentIntentID: "pi_123",
	})
	require.NoError(t, err)
	assert.Equal(t, "id-001", o.ID)
	assert.Equal(t, 2025, o.CreatedAt.Year())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMySQLCreateOrderDuplicateIntent(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectExec("INSERT INTO orders").
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry 'pi_123' for key 'uk_payment_intent'"})

	_, err := s.CreateOrder(context.Background(), models.Order{
		CustomerEmail:   "a@x.com",
		CustomerName:    "A",
		TotalAmount:     decimal.RequireFromString("19.99"),
		Status:          models.OrderStatusCompleted,
		PaymentIntentID: "pi_123",
	})
	assert.ErrorIs(t, err, ErrPaymentRecorded)
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMySQLFindOrderByPaymentIntent(t *testing.T) {
	s, mock := newMockStore(t)
	columns := []string{"id", "user_id", "customer_email", "customer_name", "total_amount", "status", "payment_intent_id", "created_at"}
	mock.ExpectQuery(regexp.QuoteMeta("FROM orders WHERE payment_intent_id = ?")).
		WithArgs("pi_123").
		WillReturnRows(sqlmock.NewRows(columns).
			AddRow("o1", nil, "a@x.com", "A", "19.99", models.OrderStatusCompleted, "pi_123", time.Date(2025, 11, 12, 9, 30, 0, 0, time.UTC)))
	mock.ExpectQuery(regexp.QuoteMeta("FROM orders WHERE payment_intent_id = ?")).
		WithArgs("pi_new").
		WillReturnRows(sqlmock.NewRows(columns))

	o, err := s.FindOrderByPaymentIntent(context.Background(), "pi_123")
	require.NoError(t, err)
	assert.Equal(t, "o1", o.ID)
	assert.Nil(t, o.UserID)

	_, err = s.FindOrderByPaymentIntent(context.Background(), "pi_new")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMySQLCreateAccountDecidesAdminInInsert(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectExec(regexp.QuoteMeta("SELECT ?, ?, ?, ?, NOT EXISTS (SELECT 1 FROM users), ?")).
		WithArgs("id-001", "a@x.com", "h", "A", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE id = ?")).
		WithArgs("id-001").
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "password", "name", "is_admin", "created_at"}).
			AddRow("id-001", "a@x.com", "h", "A", true, time.Date(2025, 11, 12, 9, 30, 0, 0, time.UTC)))

	u, err := s.CreateAccount(context.Background(), models.User{Email: "a@x.com", PasswordHash: "h", Name: "A"})
	require.NoError(t, err)
	assert.True(t, u.IsAdmin)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMySQLSetProductActiveUnknown(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE products SET is_active = ? WHERE id = ?")).
		WithArgs(false, "missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	_, err := s.SetProductActive(context.Background(), "missing", false)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
