package handlers

import (
	"context"
	"time"

	"kas-kelas/internal/adapters/persistence/models"
	"kas-kelas/internal/core/domain"
	"kas-kelas/internal/core/services"
)

// BillUseCase is the bill service surface used by the handlers
type BillUseCase interface {
	List(ctx context.Context, p *domain.Principal, input *services.ListBillsInput) ([]*models.Bill, int64, error)
	ListUpcoming(ctx context.Context) (*services.UpcomingBills, error)
	CreateBatch(ctx context.Context, p *domain.Principal, input *services.CreateBillBatchInput) (*services.BatchResult, error)
	ClaimPaid(ctx context.Context, p *domain.Principal, billID string) (*models.Bill, error)
	Pay(ctx context.Context, p *domain.Principal, billID string) (*services.PayResult, error)
	Unverify(ctx context.Context, p *domain.Principal, billID string) (*models.Bill, error)
}

// TransactionUseCase is the transaction service surface used by the handlers
type TransactionUseCase interface {
	List(ctx context.Context, p *domain.Principal, offset, limit int) ([]*models.Transaction, int64, error)
	Get(ctx context.Context, p *domain.Principal, id string) (*models.Transaction, error)
	Create(ctx context.Context, p *domain.Principal, input *services.TransactionInput) (*models.Transaction, error)
	Update(ctx context.Context, p *domain.Principal, id string, input *services.TransactionInput) (*models.Transaction, error)
	Delete(ctx context.Context, p *domain.Principal, id string) error
}

// ReportUseCase is the report service surface used by the handlers
type ReportUseCase interface {
	Summary(ctx context.Context, p *domain.Principal, from, to *time.Time) (*services.Summary, error)
	Export(ctx context.Context, p *domain.Principal) (*services.ExportFile, error)
}

// DashboardUseCase is the dashboard service surface used by the handlers
type DashboardUseCase interface {
	GetDashboard(ctx context.Context, p *domain.Principal) (*services.DashboardData, error)
}

// UserUseCase is the account management surface used by the handlers
type UserUseCase interface {
	ListUsers(ctx context.Context, p *domain.Principal, role string, offset, limit int) ([]*models.User, int64, error)
	ResetPassword(ctx context.Context, p *domain.Principal, userID string) (string, error)
	ListMembers(ctx context.Context, p *domain.Principal) ([]*models.User, error)
	CreateMember(ctx context.Context, p *domain.Principal, input *services.CreateMemberInput) (*models.User, error)
	DeleteMember(ctx context.Context, p *domain.Principal, userID string) error
	GetProfile(ctx context.Context, p *domain.Principal) (*models.User, error)
	ChangePassword(ctx context.Context, p *domain.Principal, input *services.ChangePasswordInput) error
}

// AuthUseCase is the session surface used by the handlers
type AuthUseCase interface {
	Login(ctx context.Context, input *services.LoginInput) (*services.AuthResponse, error)
	RefreshToken(ctx context.Context, refreshToken string) (*services.AuthResponse, error)
	Logout(ctx context.Context, refreshToken string) error
	LogoutAll(ctx context.Context, userID string) error
}
