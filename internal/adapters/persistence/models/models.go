package models

import (
	"time"

	"kas-kelas/internal/core/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ============================================================
// Users & Auth
// ============================================================

// User represents users table
type User struct {
	ID        string         `gorm:"primaryKey;size:36" json:"id"`
	Name      string         `gorm:"size:100;not null" json:"name"`
	Email     string         `gorm:"uniqueIndex;size:100;not null" json:"email"`
	Password  string         `gorm:"size:255;not null" json:"-"`
	Role      domain.Role    `gorm:"size:20;not null;default:'ANGGOTA';index" json:"role"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (User) TableName() string {
	return "users"
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

// UserResponse DTO
type UserResponse struct {
	ID        string      `json:"id"`
	Name      string      `json:"name"`
	Email     string      `json:"email"`
	Role      domain.Role `json:"role"`
	CreatedAt time.Time   `json:"created_at"`
}

func (u *User) ToResponse() *UserResponse {
	return &UserResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
	}
}

// Principal returns the identity used for authorization decisions
func (u *User) Principal() *domain.Principal {
	return &domain.Principal{
		UserID: u.ID,
		Name:   u.Name,
		Email:  u.Email,
		Role:   u.Role,
	}
}

// UserSummary is the owner/recorder display block embedded in bills and transactions
type UserSummary struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

func summarize(u *User) *UserSummary {
	if u == nil {
		return nil
	}
	return &UserSummary{Name: u.Name, Email: u.Email}
}

// RefreshToken represents refresh_tokens table
type RefreshToken struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	UserID    string     `gorm:"size:36;index;not null" json:"user_id"`
	TokenHash string     `gorm:"size:255;not null;index" json:"-"`
	ExpiresAt time.Time  `gorm:"not null" json:"expires_at"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
	RevokedAt *time.Time `gorm:"index" json:"revoked_at"`
	User      User       `gorm:"foreignKey:UserID" json:"-"`
}

func (RefreshToken) TableName() string {
	return "refresh_tokens"
}

func (rt *RefreshToken) IsRevoked() bool {
	return rt.RevokedAt != nil
}

func (rt *RefreshToken) IsExpired() bool {
	return time.Now().After(rt.ExpiresAt)
}

// ============================================================
// Ledger
// ============================================================

// Bill tagihan kas, owned by exactly one user
type Bill struct {
	ID          string            `gorm:"primaryKey;size:36" json:"id"`
	Amount      decimal.Decimal   `gorm:"type:decimal(15,2);not null" json:"amount"`
	Description string            `gorm:"size:255;not null" json:"description"`
	DueDate     time.Time         `gorm:"not null;index" json:"due_date"`
	Status      domain.BillStatus `gorm:"size:20;not null;default:'PENDING';index" json:"status"`
	BatchID     *string           `gorm:"size:64;index" json:"batch_id"`
	UserID      string            `gorm:"size:36;not null;index" json:"user_id"`
	CreatedAt   time.Time         `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time         `gorm:"autoUpdateTime" json:"updated_at"`

	// Relations
	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (Bill) TableName() string {
	return "bills"
}

func (b *Bill) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	return nil
}

// OwnerName returns the display name of the owning user, empty when not loaded
func (b *Bill) OwnerName() string {
	if b.User == nil {
		return ""
	}
	return b.User.Name
}

// BillResponse DTO
type BillResponse struct {
	ID          string            `json:"id"`
	Amount      decimal.Decimal   `json:"amount"`
	Description string            `json:"description"`
	DueDate     time.Time         `json:"due_date"`
	Status      domain.BillStatus `json:"status"`
	BatchID     *string           `json:"batch_id"`
	UserID      string            `json:"user_id"`
	User        *UserSummary      `json:"user,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

func (b *Bill) ToResponse() *BillResponse {
	return &BillResponse{
		ID:          b.ID,
		Amount:      b.Amount,
		Description: b.Description,
		DueDate:     b.DueDate,
		Status:      b.Status,
		BatchID:     b.BatchID,
		UserID:      b.UserID,
		User:        summarize(b.User),
		CreatedAt:   b.CreatedAt,
		UpdatedAt:   b.UpdatedAt,
	}
}

// Transaction catatan kas masuk/keluar
type Transaction struct {
	ID          string                 `gorm:"primaryKey;size:36" json:"id"`
	Amount      decimal.Decimal        `gorm:"type:decimal(15,2);not null" json:"amount"`
	Type        domain.TransactionType `gorm:"size:10;not null;index" json:"type"`
	Description string                 `gorm:"size:255;not null" json:"description"`
	UserID      string                 `gorm:"size:36;not null;index" json:"user_id"`
	BillID      *string                `gorm:"size:36;index" json:"bill_id"`
	CreatedAt   time.Time              `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt   time.Time              `gorm:"autoUpdateTime" json:"updated_at"`

	// Relations
	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Bill *Bill `gorm:"foreignKey:BillID;constraint:OnDelete:SET NULL" json:"-"`
}

func (Transaction) TableName() string {
	return "transactions"
}

func (t *Transaction) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return nil
}

// RecorderName returns the display name of the recording user, empty when not loaded
func (t *Transaction) RecorderName() string {
	if t.User == nil {
		return ""
	}
	return t.User.Name
}

// TransactionResponse DTO
type TransactionResponse struct {
	ID          string                 `json:"id"`
	Amount      decimal.Decimal        `json:"amount"`
	Type        domain.TransactionType `json:"type"`
	Description string                 `json:"description"`
	UserID      string                 `json:"user_id"`
	BillID      *string                `json:"bill_id"`
	User        *UserSummary           `json:"user,omitempty"`
	CreatedAt   time.Time              `json:"created_at"`
	UpdatedAt   time.Time              `json:"updated_at"`
}

func (t *Transaction) ToResponse() *TransactionResponse {
	return &TransactionResponse{
		ID:          t.ID,
		Amount:      t.Amount,
		Type:        t.Type,
		Description: t.Description,
		UserID:      t.UserID,
		BillID:      t.BillID,
		User:        summarize(t.User),
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

// ============================================================
// Auto Migration
// ============================================================

// AutoMigrate runs auto migration for all tables
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&User{},
		&RefreshToken{},
		&Bill{},
		&Transaction{},
	)
}
