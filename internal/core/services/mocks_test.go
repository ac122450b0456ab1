package services

import (
	"context"
	"sync"
	"time"

	"kas-kelas/internal/adapters/persistence/models"
	"kas-kelas/internal/adapters/persistence/repositories"
	"kas-kelas/internal/core/domain"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// ============================================================
// Repository mocks
// ============================================================

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	args := m.Called(ctx, id)
	user, _ := args.Get(0).(*models.User)
	return user, args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	user, _ := args.Get(0).(*models.User)
	return user, args.Error(1)
}

func (m *MockUserRepository) GetByIDs(ctx context.Context, ids []string) ([]*models.User, error) {
	args := m.Called(ctx, ids)
	users, _ := args.Get(0).([]*models.User)
	return users, args.Error(1)
}

func (m *MockUserRepository) Update(ctx context.Context, user *models.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *MockUserRepository) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockUserRepository) List(ctx context.Context, role *domain.Role, offset, limit int) ([]*models.User, int64, error) {
	args := m.Called(ctx, role, offset, limit)
	users, _ := args.Get(0).([]*models.User)
	return users, args.Get(1).(int64), args.Error(2)
}

func (m *MockUserRepository) ListByRole(ctx context.Context, role domain.Role) ([]*models.User, error) {
	args := m.Called(ctx, role)
	users, _ := args.Get(0).([]*models.User)
	return users, args.Error(1)
}

func (m *MockUserRepository) CountByRole(ctx context.Context, role domain.Role) (int64, error) {
	args := m.Called(ctx, role)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

type MockRefreshTokenRepository struct {
	mock.Mock
}

func (m *MockRefreshTokenRepository) Create(ctx context.Context, token *models.RefreshToken) error {
	return m.Called(ctx, token).Error(0)
}

func (m *MockRefreshTokenRepository) GetByTokenHash(ctx context.Context, tokenHash string) (*models.RefreshToken, error) {
	args := m.Called(ctx, tokenHash)
	token, _ := args.Get(0).(*models.RefreshToken)
	return token, args.Error(1)
}

func (m *MockRefreshTokenRepository) Revoke(ctx context.Context, id uint) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockRefreshTokenRepository) RevokeByTokenHash(ctx context.Context, tokenHash string) error {
	return m.Called(ctx, tokenHash).Error(0)
}

func (m *MockRefreshTokenRepository) RevokeAllByUserID(ctx context.Context, userID string) error {
	return m.Called(ctx, userID).Error(0)
}

func (m *MockRefreshTokenRepository) DeleteExpired(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

type MockBillRepository struct {
	mock.Mock
}

func (m *MockBillRepository) CreateMany(ctx context.Context, bills []*models.Bill) error {
	return m.Called(ctx, bills).Error(0)
}

func (m *MockBillRepository) GetByID(ctx context.Context, id string) (*models.Bill, error) {
	args := m.Called(ctx, id)
	bill, _ := args.Get(0).(*models.Bill)
	return bill, args.Error(1)
}

func (m *MockBillRepository) UpdateStatus(ctx context.Context, bill *models.Bill, status domain.BillStatus) error {
	return m.Called(ctx, bill, status).Error(0)
}

func (m *MockBillRepository) List(ctx context.Context, filter repositories.BillFilter, offset, limit int) ([]*models.Bill, int64, error) {
	args := m.Called(ctx, filter, offset, limit)
	bills, _ := args.Get(0).([]*models.Bill)
	return bills, args.Get(1).(int64), args.Error(2)
}

func (m *MockBillRepository) ListUpcoming(ctx context.Context, from time.Time, statuses []domain.BillStatus, limit int) ([]*models.Bill, error) {
	args := m.Called(ctx, from, statuses, limit)
	bills, _ := args.Get(0).([]*models.Bill)
	return bills, args.Error(1)
}

func (m *MockBillRepository) CountByStatus(ctx context.Context, userID string, status domain.BillStatus) (int64, error) {
	args := m.Called(ctx, userID, status)
	return args.Get(0).(int64), args.Error(1)
}

type MockTransactionRepository struct {
	mock.Mock
}

func (m *MockTransactionRepository) Create(ctx context.Context, tx *models.Transaction) error {
	return m.Called(ctx, tx).Error(0)
}

func (m *MockTransactionRepository) GetByID(ctx context.Context, id string) (*models.Transaction, error) {
	args := m.Called(ctx, id)
	tx, _ := args.Get(0).(*models.Transaction)
	return tx, args.Error(1)
}

func (m *MockTransactionRepository) Update(ctx context.Context, tx *models.Transaction) error {
	return m.Called(ctx, tx).Error(0)
}

func (m *MockTransactionRepository) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockTransactionRepository) List(ctx context.Context, offset, limit int) ([]*models.Transaction, int64, error) {
	args := m.Called(ctx, offset, limit)
	txs, _ := args.Get(0).([]*models.Transaction)
	return txs, args.Get(1).(int64), args.Error(2)
}

func (m *MockTransactionRepository) ListAll(ctx context.Context, filter repositories.TransactionFilter) ([]*models.Transaction, error) {
	args := m.Called(ctx, filter)
	txs, _ := args.Get(0).([]*models.Transaction)
	return txs, args.Error(1)
}

func (m *MockTransactionRepository) FindByBillID(ctx context.Context, billID string) (*models.Transaction, error) {
	args := m.Called(ctx, billID)
	tx, _ := args.Get(0).(*models.Transaction)
	return tx, args.Error(1)
}

func (m *MockTransactionRepository) FindUnlinkedPayment(ctx context.Context, description string, amount decimal.Decimal) (*models.Transaction, error) {
	args := m.Called(ctx, description, amount)
	tx, _ := args.Get(0).(*models.Transaction)
	return tx, args.Error(1)
}

func (m *MockTransactionRepository) SumByType(ctx context.Context, txType domain.TransactionType, filter repositories.TransactionFilter) (decimal.Decimal, error) {
	args := m.Called(ctx, txType, filter)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

// ============================================================
// Transaction manager and cache fakes
// ============================================================

// fakeTxManager runs fn against the mocks and records whether the
// unit of work would have committed.
type fakeTxManager struct {
	registry  repositories.Registry
	commits   int
	rollbacks int
}

func (f *fakeTxManager) WithinTransaction(ctx context.Context, fn func(r repositories.Registry) error) error {
	if err := fn(f.registry); err != nil {
		f.rollbacks++
		return err
	}
	f.commits++
	return nil
}

type memoryCache struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMemoryCache() *memoryCache {
	return &memoryCache{data: make(map[string][]byte)}
}

func (c *memoryCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.data[key]
	return v, ok, nil
}

func (c *memoryCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = value
	return nil
}

func (c *memoryCache) Delete(ctx context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.data, k)
	}
	return nil
}

// ============================================================
// Fixtures
// ============================================================

type billTestDeps struct {
	users   *MockUserRepository
	bills   *MockBillRepository
	txs     *MockTransactionRepository
	txm     *fakeTxManager
	cache   *memoryCache
	service *BillService
}

func setupBillTest() *billTestDeps {
	users := &MockUserRepository{}
	bills := &MockBillRepository{}
	txs := &MockTransactionRepository{}
	txm := &fakeTxManager{registry: repositories.Registry{Users: users, Bills: bills, Transactions: txs}}
	cache := newMemoryCache()

	return &billTestDeps{
		users:   users,
		bills:   bills,
		txs:     txs,
		txm:     txm,
		cache:   cache,
		service: NewBillService(bills, users, txm, cache, time.Minute),
	}
}

func treasurer() *domain.Principal {
	return &domain.Principal{UserID: "bendahara-1", Name: "Bu Bendahara", Email: "bendahara@infor24", Role: domain.RoleBendahara}
}

func admin() *domain.Principal {
	return &domain.Principal{UserID: "admin-1", Name: "Admin", Email: "admin@infor24", Role: domain.RoleAdministrator}
}

func member(id, name string) *domain.Principal {
	return &domain.Principal{UserID: id, Name: name, Email: id + "@infor24", Role: domain.RoleAnggota}
}

func memberUser(id, name string) *models.User {
	return &models.User{ID: id, Name: name, Email: id + "@infor24", Role: domain.RoleAnggota}
}

func newBill(id string, owner *models.User, status domain.BillStatus, amount int64, description string) *models.Bill {
	return &models.Bill{
		ID:          id,
		Amount:      decimal.NewFromInt(amount),
		Description: description,
		DueDate:     time.Date(2026, 10, 20, 0, 0, 0, 0, time.UTC),
		Status:      status,
		UserID:      owner.ID,
		User:        owner,
	}
}
