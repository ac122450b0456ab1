package repositories

import (
	"context"

	"kas-kelas/internal/adapters/persistence/models"
	"kas-kelas/internal/core/domain"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// transactionRepository implements TransactionRepository interface
type transactionRepository struct {
	db *gorm.DB
}

// NewTransactionRepository creates a new transaction repository
func NewTransactionRepository(db *gorm.DB) TransactionRepository {
	return &transactionRepository{db: db}
}

func withRecorder(db *gorm.DB) *gorm.DB {
	return db.Preload("User", func(db *gorm.DB) *gorm.DB {
		return db.Unscoped()
	})
}

func applyRange(db *gorm.DB, filter TransactionFilter) *gorm.DB {
	if filter.From != nil {
		db = db.Where("created_at >= ?", *filter.From)
	}
	if filter.To != nil {
		db = db.Where("created_at < ?", *filter.To)
	}
	return db
}

// Create creates a new transaction
func (r *transactionRepository) Create(ctx context.Context, tx *models.Transaction) error {
	return r.db.WithContext(ctx).Omit("User", "Bill").Create(tx).Error
}

// GetByID gets a transaction by ID with its recorder
func (r *transactionRepository) GetByID(ctx context.Context, id string) (*models.Transaction, error) {
	var tx models.Transaction
	err := withRecorder(r.db.WithContext(ctx)).
		Where("id = ?", id).
		First(&tx).Error
	if err != nil {
		return nil, err
	}
	return &tx, nil
}

// Update saves amount, type and description of a transaction
func (r *transactionRepository) Update(ctx context.Context, tx *models.Transaction) error {
	return r.db.WithContext(ctx).
		Model(tx).
		Select("amount", "type", "description").
		Updates(tx).Error
}

// Delete hard deletes a transaction
func (r *transactionRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Transaction{}).Error
}

// List lists transactions newest first with pagination
func (r *transactionRepository) List(ctx context.Context, offset, limit int) ([]*models.Transaction, int64, error) {
	var txs []*models.Transaction
	var total int64

	if err := r.db.WithContext(ctx).Model(&models.Transaction{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := withRecorder(r.db.WithContext(ctx)).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&txs).Error
	if err != nil {
		return nil, 0, err
	}

	return txs, total, nil
}

// ListAll lists every transaction in the filter range, newest first
func (r *transactionRepository) ListAll(ctx context.Context, filter TransactionFilter) ([]*models.Transaction, error) {
	var txs []*models.Transaction
	err := applyRange(withRecorder(r.db.WithContext(ctx)), filter).
		Order("created_at DESC").
		Find(&txs).Error
	return txs, err
}

// FindByBillID finds the payment recorded for a bill
func (r *transactionRepository) FindByBillID(ctx context.Context, billID string) (*models.Transaction, error) {
	var tx models.Transaction
	err := r.db.WithContext(ctx).
		Where("bill_id = ?", billID).
		Order("created_at DESC").
		First(&tx).Error
	if err != nil {
		return nil, err
	}
	return &tx, nil
}

// FindUnlinkedPayment finds an inflow without a bill link matching description
// and amount exactly. Rows written before bill_id existed are only reachable this way.
func (r *transactionRepository) FindUnlinkedPayment(ctx context.Context, description string, amount decimal.Decimal) (*models.Transaction, error) {
	var tx models.Transaction
	err := r.db.WithContext(ctx).
		Where("bill_id IS NULL").
		Where("type = ?", domain.TransactionMasuk).
		Where("description = ?", description).
		Where("amount = ?", amount).
		Order("created_at DESC").
		First(&tx).Error
	if err != nil {
		return nil, err
	}
	return &tx, nil
}

// SumByType sums amounts of one transaction type inside the filter range
func (r *transactionRepository) SumByType(ctx context.Context, txType domain.TransactionType, filter TransactionFilter) (decimal.Decimal, error) {
	var result struct {
		Total decimal.Decimal
	}
	err := applyRange(r.db.WithContext(ctx).Model(&models.Transaction{}), filter).
		Where("type = ?", txType).
		Select("COALESCE(SUM(amount), 0) AS total").
		Scan(&result).Error
	return result.Total, err
}
