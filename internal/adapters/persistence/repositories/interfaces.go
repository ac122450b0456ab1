package repositories

import (
	"context"
	"time"

	"kas-kelas/internal/adapters/persistence/models"
	"kas-kelas/internal/core/domain"

	"github.com/shopspring/decimal"
)

// UserRepository defines user repository interface
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByIDs(ctx context.Context, ids []string) ([]*models.User, error)
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, role *domain.Role, offset, limit int) ([]*models.User, int64, error)
	ListByRole(ctx context.Context, role domain.Role) ([]*models.User, error)
	CountByRole(ctx context.Context, role domain.Role) (int64, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}

// RefreshTokenRepository defines refresh token repository interface
type RefreshTokenRepository interface {
	Create(ctx context.Context, token *models.RefreshToken) error
	GetByTokenHash(ctx context.Context, tokenHash string) (*models.RefreshToken, error)
	Revoke(ctx context.Context, id uint) error
	RevokeByTokenHash(ctx context.Context, tokenHash string) error
	RevokeAllByUserID(ctx context.Context, userID string) error
	DeleteExpired(ctx context.Context) (int64, error)
}

// BillFilter narrows bill listings. Zero values mean "any".
type BillFilter struct {
	UserID  string
	Status  domain.BillStatus
	BatchID string
}

// BillRepository defines bill repository interface
type BillRepository interface {
	CreateMany(ctx context.Context, bills []*models.Bill) error
	GetByID(ctx context.Context, id string) (*models.Bill, error)
	UpdateStatus(ctx context.Context, bill *models.Bill, status domain.BillStatus) error
	List(ctx context.Context, filter BillFilter, offset, limit int) ([]*models.Bill, int64, error)
	ListUpcoming(ctx context.Context, from time.Time, statuses []domain.BillStatus, limit int) ([]*models.Bill, error)
	CountByStatus(ctx context.Context, userID string, status domain.BillStatus) (int64, error)
}

// TransactionFilter narrows transaction reads by creation time. Nil bounds are open.
type TransactionFilter struct {
	From *time.Time
	To   *time.Time
}

// TransactionRepository defines ledger transaction repository interface
type TransactionRepository interface {
	Create(ctx context.Context, tx *models.Transaction) error
	GetByID(ctx context.Context, id string) (*models.Transaction, error)
	Update(ctx context.Context, tx *models.Transaction) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, offset, limit int) ([]*models.Transaction, int64, error)
	ListAll(ctx context.Context, filter TransactionFilter) ([]*models.Transaction, error)
	FindByBillID(ctx context.Context, billID string) (*models.Transaction, error)
	FindUnlinkedPayment(ctx context.Context, description string, amount decimal.Decimal) (*models.Transaction, error)
	SumByType(ctx context.Context, txType domain.TransactionType, filter TransactionFilter) (decimal.Decimal, error)
}
