package repositories

import (
	"context"

	"gorm.io/gorm"
)

// Registry bundles the ledger repositories bound to one database handle
type Registry struct {
	Users        UserRepository
	Bills        BillRepository
	Transactions TransactionRepository
}

// NewRegistry builds a registry over db
func NewRegistry(db *gorm.DB) Registry {
	return Registry{
		Users:        NewUserRepository(db),
		Bills:        NewBillRepository(db),
		Transactions: NewTransactionRepository(db),
	}
}

// TxManager runs fn with repositories bound to a single database transaction.
// The transaction commits when fn returns nil and rolls back otherwise.
type TxManager interface {
	WithinTransaction(ctx context.Context, fn func(r Registry) error) error
}

type gormTxManager struct {
	db *gorm.DB
}

// NewTxManager creates a GORM backed transaction manager
func NewTxManager(db *gorm.DB) TxManager {
	return &gormTxManager{db: db}
}

func (m *gormTxManager) WithinTransaction(ctx context.Context, fn func(r Registry) error) error {
	return m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewRegistry(tx))
	})
}
