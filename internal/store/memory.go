package store

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/matthieukhl/axoshard/internal/models"
)

// MemoryStore keeps every collection in process memory. It is the dev-mode
// backend; state can be carried across restarts with Load and Save.
type MemoryStore struct {
	mu         sync.RWMutex
	ids        IDGenerator
	now        func() time.Time
	products   map[string]models.Product
	order      []string // product ids in creation order
	users      map[string]models.User
	orders     map[string]models.Order
	orderItems map[string][]models.OrderItem // keyed by order id
	byIntent   map[string]string             // payment intent id -> order id
	rev        uint64                        // bumped on every mutation
}

// MemoryOption configures a MemoryStore.
type MemoryOption func(*MemoryStore)

// WithIDGenerator replaces the UUID generator.
func WithIDGenerator(g IDGenerator) MemoryOption {
	return func(s *MemoryStore) { s.ids = g }
}

// WithClock replaces time.Now for creation timestamps.
func WithClock(now func() time.Time) MemoryOption {
	return func(s *MemoryStore) { s.now = now }
}

func NewMemoryStore(opts ...MemoryOption) *MemoryStore {
	s := &MemoryStore{
		ids:        UUIDGenerator{},
		now:        time.Now,
		products:   make(map[string]models.Product),
		users:      make(map[string]models.User),
		orders:     make(map[string]models.Order),
		orderItems: make(map[string][]models.OrderItem),
		byIntent:   make(map[string]string),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Product methods

func (s *MemoryStore) ListProducts(ctx context.Context) ([]models.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Product, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.products[id])
	}
	return out, nil
}

func (s *MemoryStore) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.products[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &p, nil
}

func (s *MemoryStore) CreateProduct(ctx context.Context, p models.Product) (*models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p.ID = s.ids.NewID()
	s.products[p.ID] = p
	s.order = append(s.order, p.ID)
	s.rev++
	return &p, nil
}

func (s *MemoryStore) UpdateProduct(ctx context.Context, id string, p models.Product) (*models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.products[id]; !ok {
		return nil, ErrNotFound
	}
	p.ID = id
	s.products[id] = p
	s.rev++
	return &p, nil
}

func (s *MemoryStore) DeleteProduct(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.products[id]; !ok {
		return false, nil
	}
	delete(s.products, id)
	for i, pid := range s.order {
		if pid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	s.rev++
	return true, nil
}

func (s *MemoryStore) SetProductActive(ctx context.Context, id string, active bool) (*models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.products[id]
	if !ok {
		return nil, ErrNotFound
	}
	p.IsActive = active
	s.products[id] = p
	s.rev++
	return &p, nil
}

func (s *MemoryStore) DecrementStock(ctx context.Context, id string, qty int) (*models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.products[id]
	if !ok {
		return nil, ErrNotFound
	}
	if p.Stock-qty < 0 {
		return nil, fmt.Errorf("%w: %s", ErrInsufficientStock, p.Name)
	}
	p.Stock -= qty
	s.products[id] = p
	s.rev++
	return &p, nil
}

// Order methods

func (s *MemoryStore) CreateOrder(ctx context.Context, o models.Order) (*models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.byIntent[o.PaymentIntentID]; taken && o.PaymentIntentID != "" {
		return nil, fmt.Errorf("%w: %s", ErrPaymentRecorded, o.PaymentIntentID)
	}
	o.ID = s.ids.NewID()
	o.CreatedAt = s.now().UTC()
	s.orders[o.ID] = o
	if o.PaymentIntentID != "" {
		s.byIntent[o.PaymentIntentID] = o.ID
	}
	s.rev++
	return &o, nil
}

func (s *MemoryStore) FindOrderByPaymentIntent(ctx context.Context, intentID string) (*models.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byIntent[intentID]
	if !ok || intentID == "" {
		return nil, ErrNotFound
	}
	o := s.orders[id]
	return &o, nil
}

func (s *MemoryStore) CreateOrderItem(ctx context.Context, item models.OrderItem) (*models.OrderItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.orders[item.OrderID]; !ok {
		return nil, fmt.Errorf("order %s: %w", item.OrderID, ErrNotFound)
	}
	item.ID = s.ids.NewID()
	s.orderItems[item.OrderID] = append(s.orderItems[item.OrderID], item)
	s.rev++
	return &item, nil
}

func (s *MemoryStore) ListOrders(ctx context.Context) ([]models.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Order, 0, len(s.orders))
	for _, o := range s.orders {
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (s *MemoryStore) GetOrder(ctx context.Context, id string) (*models.OrderDetail, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	o, ok := s.orders[id]
	if !ok {
		return nil, ErrNotFound
	}
	items := append([]models.OrderItem(nil), s.orderItems[id]...)
	return &models.OrderDetail{Order: o, Items: items}, nil
}

// User methods

func (s *MemoryStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if u, ok := s.findByEmail(email); ok {
		return &u, nil
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) findByEmail(email string) (models.User, bool) {
	email = strings.TrimSpace(email)
	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			return u, true
		}
	}
	return models.User{}, false
}

func (s *MemoryStore) GetUser(ctx context.Context, id string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &u, nil
}

func (s *MemoryStore) CreateUser(ctx context.Context, u models.User) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.createUser(u)
}

func (s *MemoryStore) CreateAccount(ctx context.Context, u models.User) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u.IsAdmin = len(s.users) == 0
	return s.createUser(u)
}

func (s *MemoryStore) createUser(u models.User) (*models.User, error) {
	if _, exists := s.findByEmail(u.Email); exists {
		return nil, ErrDuplicateEmail
	}
	u.ID = s.ids.NewID()
	u.CreatedAt = s.now().UTC()
	s.users[u.ID] = u
	s.rev++
	return &u, nil
}

func (s *MemoryStore) CountUsers(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.users), nil
}

func (s *MemoryStore) SetAdmin(ctx context.Context, id string, admin bool) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	u.IsAdmin = admin
	s.users[id] = u
	s.rev++
	return &u, nil
}

// Revision changes whenever the store is mutated.
func (s *MemoryStore) Revision() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.rev
}

func (s *MemoryStore) HealthCheck(ctx context.Context) error {
	return nil
}

func (s *MemoryStore) Close() error {
	return nil
}

// snapshot is the on-disk layout written by Save.
type snapshot struct {
	Products   []models.Product   `json:"products"`
	Users      []snapshotUser     `json:"users"`
	Orders     []models.Order     `json:"orders"`
	OrderItems []models.OrderItem `json:"orderItems"`
}

// snapshotUser keeps the hash, which models.User hides from JSON.
type snapshotUser struct {
	models.User
	PasswordHash string `json:"passwordHash"`
}

// Save writes every collection as JSON.
func (s *MemoryStore) Save(w io.Writer) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := snapshot{
		Products:   make([]models.Product, 0, len(s.order)),
		Users:      make([]snapshotUser, 0, len(s.users)),
		Orders:     make([]models.Order, 0, len(s.orders)),
		OrderItems: []models.OrderItem{},
	}
	for _, id := range s.order {
		snap.Products = append(snap.Products, s.products[id])
	}
	for _, u := range s.users {
		snap.Users = append(snap.Users, snapshotUser{User: u, PasswordHash: u.PasswordHash})
	}
	for _, o := range s.orders {
		snap.Orders = append(snap.Orders, o)
		snap.OrderItems = append(snap.OrderItems, s.orderItems[o.ID]...)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(snap)
}

// Load replaces every collection with the snapshot read from r.
func (s *MemoryStore) Load(r io.Reader) error {
	var snap snapshot
	if err := json.NewDecoder(r).Decode(&snap); err != nil {
		return fmt.Errorf("failed to decode snapshot: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.products = make(map[string]models.Product, len(snap.Products))
	s.order = s.order[:0]
	for _, p := range snap.Products {
		s.products[p.ID] = p
		s.order = append(s.order, p.ID)
	}
	s.users = make(map[string]models.User, len(snap.Users))
	for _, su := range snap.Users {
		u := su.User
		u.PasswordHash = su.PasswordHash
		s.users[u.ID] = u
	}
	s.orders = make(map[string]models.Order, len(snap.Orders))
	s.byIntent = make(map[string]string, len(snap.Orders))
	for _, o := range snap.Orders {
		s.orders[o.ID] = o
		if o.PaymentIntentID != "" {
			s.byIntent[o.PaymentIntentID] = o.ID
		}
	}
	s.orderItems = make(map[string][]models.OrderItem)
	for _, item := range snap.OrderItems {
		s.orderItems[item.OrderID] = append(s.orderItems[item.OrderID], item)
	}
	s.rev++
	return nil
}

// LoadFile loads a snapshot from path. A missing file is not an error.
func (s *MemoryStore) LoadFile(path string) error {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to open snapshot: %w", err)
	}
	defer f.Close()
	return s.Load(f)
}

// SaveFile writes a snapshot to path, replacing it atomically.
func (s *MemoryStore) SaveFile(path string) error {
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("failed to create snapshot: %w", err)
	}
	if err := s.Save(f); err != nil {
		f.Close()
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close snapshot: %w", err)
	}
	return os.Rename(tmp, path)
}

// Compile-time interface check
var _ Store = (*MemoryStore)(nil)
