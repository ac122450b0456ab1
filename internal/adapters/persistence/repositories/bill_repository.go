package repositories

import (
	"context"
	"time"

	"kas-kelas/internal/adapters/persistence/models"
	"kas-kelas/internal/core/domain"

	"gorm.io/gorm"
)

// billRepository implements BillRepository interface
type billRepository struct {
	db *gorm.DB
}

// NewBillRepository creates a new bill repository
func NewBillRepository(db *gorm.DB) BillRepository {
	return &billRepository{db: db}
}

// withOwner preloads the owning user, including soft-deleted members so old
// bills keep their display name.
func withOwner(db *gorm.DB) *gorm.DB {
	return db.Preload("User", func(db *gorm.DB) *gorm.DB {
		return db.Unscoped()
	})
}

// CreateMany inserts bills in chunks
func (r *billRepository) CreateMany(ctx context.Context, bills []*models.Bill) error {
	if len(bills) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Omit("User").CreateInBatches(bills, 100).Error
}

// GetByID gets a bill by ID with its owner
func (r *billRepository) GetByID(ctx context.Context, id string) (*models.Bill, error) {
	var bill models.Bill
	err := withOwner(r.db.WithContext(ctx)).
		Where("id = ?", id).
		First(&bill).Error
	if err != nil {
		return nil, err
	}
	return &bill, nil
}

// UpdateStatus moves bill to status only while the stored row still holds
// bill.Status. A row changed since it was read yields ErrBillStatusChanged.
func (r *billRepository) UpdateStatus(ctx context.Context, bill *models.Bill, status domain.BillStatus) error {
	result := r.db.WithContext(ctx).
		Model(&models.Bill{}).
		Where("id = ? AND status = ?", bill.ID, bill.Status).
		Update("status", status)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrBillStatusChanged
	}
	return nil
}

// List lists bills newest first with pagination
func (r *billRepository) List(ctx context.Context, filter BillFilter, offset, limit int) ([]*models.Bill, int64, error) {
	var bills []*models.Bill
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Bill{})
	if filter.UserID != "" {
		query = query.Where("user_id = ?", filter.UserID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.BatchID != "" {
		query = query.Where("batch_id = ?", filter.BatchID)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := withOwner(query).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&bills).Error
	if err != nil {
		return nil, 0, err
	}

	return bills, total, nil
}

// ListUpcoming lists bills of active members due at or after from, soonest first
func (r *billRepository) ListUpcoming(ctx context.Context, from time.Time, statuses []domain.BillStatus, limit int) ([]*models.Bill, error) {
	var bills []*models.Bill
	err := withOwner(r.db.WithContext(ctx)).
		Joins("JOIN users ON users.id = bills.user_id AND users.deleted_at IS NULL").
		Where("users.role = ?", domain.RoleAnggota).
		Where("bills.due_date >= ?", from).
		Where("bills.status IN ?", statuses).
		Order("bills.due_date ASC").
		Limit(limit).
		Find(&bills).Error
	return bills, err
}

// CountByStatus counts bills in status, restricted to one owner when userID is set
func (r *billRepository) CountByStatus(ctx context.Context, userID string, status domain.BillStatus) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&models.Bill{}).Where("status = ?", status)
	if userID != "" {
		query = query.Where("user_id = ?", userID)
	}
	err := query.Count(&count).Error
	return count, err
}
