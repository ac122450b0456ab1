package services

import (
	"context"
	"time"

	"kas-kelas/internal/adapters/persistence/repositories"
	"kas-kelas/internal/core/domain"

	"github.com/shopspring/decimal"
)

// DashboardService handles dashboard operations
type DashboardService struct {
	billRepo repositories.BillRepository
	txRepo   repositories.TransactionRepository
	userRepo repositories.UserRepository
	now      func() time.Time
}

// NewDashboardService creates a new dashboard service
func NewDashboardService(
	billRepo repositories.BillRepository,
	txRepo repositories.TransactionRepository,
	userRepo repositories.UserRepository,
) *DashboardService {
	return &DashboardService{
		billRepo: billRepo,
		txRepo:   txRepo,
		userRepo: userRepo,
		now:      time.Now,
	}
}

// DashboardData represents dashboard statistics
type DashboardData struct {
	// Cash flow this month
	MonthInflow  decimal.Decimal `json:"month_inflow"`
	MonthOutflow decimal.Decimal `json:"month_outflow"`
	MonthBalance decimal.Decimal `json:"month_balance"`

	// Bills, own bills only for members
	PendingBills int64 `json:"pending_bills"`
	ClaimedBills int64 `json:"claimed_bills"`

	// Members, hidden from members
	TotalMembers *int64 `json:"total_members,omitempty"`
}

// GetDashboard returns dashboard statistics scoped to the caller
func (s *DashboardService) GetDashboard(ctx context.Context, p *domain.Principal) (*DashboardData, error) {
	if err := domain.Authorize(p, domain.AnyAuthenticated); err != nil {
		return nil, err
	}

	data := &DashboardData{}
	from := startOfMonth(s.now())
	month := repositories.TransactionFilter{From: &from}

	var err error
	if data.MonthInflow, err = s.txRepo.SumByType(ctx, domain.TransactionMasuk, month); err != nil {
		return nil, err
	}
	if data.MonthOutflow, err = s.txRepo.SumByType(ctx, domain.TransactionKeluar, month); err != nil {
		return nil, err
	}
	data.MonthBalance = data.MonthInflow.Sub(data.MonthOutflow)

	owner := ""
	if p.Role == domain.RoleAnggota {
		owner = p.UserID
	}
	if data.PendingBills, err = s.billRepo.CountByStatus(ctx, owner, domain.BillStatusPending); err != nil {
		return nil, err
	}
	if data.ClaimedBills, err = s.billRepo.CountByStatus(ctx, owner, domain.BillStatusClaimedPaid); err != nil {
		return nil, err
	}

	if p.Role != domain.RoleAnggota {
		members, err := s.userRepo.CountByRole(ctx, domain.RoleAnggota)
		if err != nil {
			return nil, err
		}
		data.TotalMembers = &members
	}

	return data, nil
}
