package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"kas-kelas/internal/adapters/persistence/models"
	"kas-kelas/internal/adapters/persistence/repositories"
	"kas-kelas/internal/core/domain"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// BillService drives the bill lifecycle: claims, verification and reversal
type BillService struct {
	billRepo    repositories.BillRepository
	userRepo    repositories.UserRepository
	txManager   repositories.TxManager
	cache       Cache
	upcomingTTL time.Duration
	now         func() time.Time
}

// NewBillService creates a new bill service. cache may be nil.
func NewBillService(
	billRepo repositories.BillRepository,
	userRepo repositories.UserRepository,
	txManager repositories.TxManager,
	cache Cache,
	upcomingTTL time.Duration,
) *BillService {
	return &BillService{
		billRepo:    billRepo,
		userRepo:    userRepo,
		txManager:   txManager,
		cache:       cache,
		upcomingTTL: upcomingTTL,
		now:         time.Now,
	}
}

// ListBillsInput represents list bills input
type ListBillsInput struct {
	Status  string
	BatchID string
	Offset  int
	Limit   int
}

// PayResult is the verified bill together with the ledger entry it produced
type PayResult struct {
	Bill        *models.BillResponse        `json:"bill"`
	Transaction *models.TransactionResponse `json:"transaction"`
}

// UpcomingBill is the public view of an open bill
type UpcomingBill struct {
	ID          string              `json:"id"`
	DueDate     time.Time           `json:"due_date"`
	Amount      decimal.Decimal     `json:"amount"`
	Description string              `json:"description"`
	Status      domain.BillStatus   `json:"status"`
	User        *models.UserSummary `json:"user"`
}

// UpcomingBills is the public listing of open bills
type UpcomingBills struct {
	Total int64           `json:"total"`
	Data  []*UpcomingBill `json:"data"`
}

// ============================================================
// Listing
// ============================================================

// List returns bills newest first. Members only ever see their own bills.
func (s *BillService) List(ctx context.Context, p *domain.Principal, input *ListBillsInput) ([]*models.Bill, int64, error) {
	if err := domain.Authorize(p, domain.AnyAuthenticated); err != nil {
		return nil, 0, err
	}

	filter := repositories.BillFilter{
		Status:  domain.BillStatus(input.Status),
		BatchID: input.BatchID,
	}
	if filter.Status != "" && !filter.Status.IsValid() {
		return nil, 0, invalidf("unknown bill status %q", input.Status)
	}
	if p.Role == domain.RoleAnggota {
		filter.UserID = p.UserID
	}

	return s.billRepo.List(ctx, filter, input.Offset, input.Limit)
}

// ListUpcoming returns open member bills due from today on, soonest first,
// limited to one bill per member on average. Served from cache when possible.
func (s *BillService) ListUpcoming(ctx context.Context) (*UpcomingBills, error) {
	if cached := s.cachedUpcoming(ctx); cached != nil {
		return cached, nil
	}

	total, err := s.userRepo.CountByRole(ctx, domain.RoleAnggota)
	if err != nil {
		return nil, err
	}

	result := &UpcomingBills{Total: total, Data: []*UpcomingBill{}}
	if total > 0 {
		bills, err := s.billRepo.ListUpcoming(
			ctx,
			startOfDay(s.now()),
			[]domain.BillStatus{domain.BillStatusPending, domain.BillStatusClaimedPaid},
			int(total),
		)
		if err != nil {
			return nil, err
		}
		for _, bill := range bills {
			result.Data = append(result.Data, &UpcomingBill{
				ID:          bill.ID,
				DueDate:     bill.DueDate,
				Amount:      bill.Amount,
				Description: bill.Description,
				Status:      bill.Status,
				User:        bill.ToResponse().User,
			})
		}
	}

	s.storeUpcoming(ctx, result)
	return result, nil
}

func (s *BillService) cachedUpcoming(ctx context.Context) *UpcomingBills {
	if s.cache == nil {
		return nil
	}
	raw, ok, err := s.cache.Get(ctx, CacheKeyUpcomingBills)
	if err != nil {
		log.Printf("⚠️ Upcoming bills cache read failed: %v", err)
		return nil
	}
	if !ok {
		return nil
	}
	var result UpcomingBills
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil
	}
	return &result
}

func (s *BillService) storeUpcoming(ctx context.Context, result *UpcomingBills) {
	if s.cache == nil || s.upcomingTTL <= 0 {
		return
	}
	raw, err := json.Marshal(result)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, CacheKeyUpcomingBills, raw, s.upcomingTTL); err != nil {
		log.Printf("⚠️ Upcoming bills cache write failed: %v", err)
	}
}

// invalidate drops every cached view derived from bill state
func (s *BillService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, CacheKeyUpcomingBills); err != nil {
		log.Printf("⚠️ Upcoming bills cache invalidation failed: %v", err)
	}
}

// ============================================================
// Lifecycle
// ============================================================

// ClaimPaid records a member's claim that they paid their own bill
func (s *BillService) ClaimPaid(ctx context.Context, p *domain.Principal, billID string) (*models.Bill, error) {
	// 1. Only members may claim
	if err := domain.Authorize(p, domain.MemberOnly); err != nil {
		return nil, err
	}

	// 2. Load bill
	bill, err := s.billRepo.GetByID(ctx, billID)
	if err != nil {
		return nil, notFound(err, domain.ErrBillNotFound)
	}

	// 3. Only the owner may claim
	if err := domain.Authorize(p, domain.Capability{
		Roles: domain.MemberOnly.Roles,
		Owner: domain.OwnedBy(bill.UserID),
	}); err != nil {
		return nil, err
	}

	switch bill.Status {
	case domain.BillStatusClaimedPaid:
		return bill, nil
	case domain.BillStatusPaid:
		return nil, invalid(domain.ErrBillAlreadyPaid)
	}
	if !bill.Status.CanTransitionTo(domain.BillStatusClaimedPaid) {
		return nil, invalid(domain.ErrInvalidBillStatus)
	}

	// 4. Move to CLAIMED_PAID
	if err := moveBill(ctx, s.billRepo, bill, domain.BillStatusClaimedPaid); err != nil {
		return nil, err
	}
	s.invalidate(ctx)

	log.Printf("✅ Bill %s claimed paid by %s", bill.ID, p.Name)
	return bill, nil
}

// Pay verifies a bill as paid and records the matching inflow in the same
// database transaction.
func (s *BillService) Pay(ctx context.Context, p *domain.Principal, billID string) (*PayResult, error) {
	if err := domain.Authorize(p, domain.TreasurerOnly); err != nil {
		return nil, err
	}

	var result *PayResult
	err := s.txManager.WithinTransaction(ctx, func(r repositories.Registry) error {
		// 1. Load bill
		bill, err := r.Bills.GetByID(ctx, billID)
		if err != nil {
			return notFound(err, domain.ErrBillNotFound)
		}

		// 2. Check transition
		if bill.Status == domain.BillStatusPaid {
			return invalid(domain.ErrBillAlreadyPaid)
		}
		if !bill.Status.CanTransitionTo(domain.BillStatusPaid) {
			return invalid(domain.ErrInvalidBillStatus)
		}

		// 3. Mark PAID, unless another request got there first
		if err := moveBill(ctx, r.Bills, bill, domain.BillStatusPaid); err != nil {
			return err
		}

		// 4. Record inflow linked to the bill
		billRef := bill.ID
		tx := &models.Transaction{
			Amount:      bill.Amount,
			Type:        domain.TransactionMasuk,
			Description: PaymentDescription(bill),
			UserID:      p.UserID,
			BillID:      &billRef,
		}
		if err := r.Transactions.Create(ctx, tx); err != nil {
			return err
		}
		tx.User = &models.User{ID: p.UserID, Name: p.Name, Email: p.Email}

		result = &PayResult{Bill: bill.ToResponse(), Transaction: tx.ToResponse()}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx)

	log.Printf("✅ Bill %s verified by %s", billID, p.Name)
	return result, nil
}

// Unverify reverts a verified bill to CLAIMED_PAID and removes the inflow
// recorded for it.
func (s *BillService) Unverify(ctx context.Context, p *domain.Principal, billID string) (*models.Bill, error) {
	if err := domain.Authorize(p, domain.TreasurerOnly); err != nil {
		return nil, err
	}

	var bill *models.Bill
	err := s.txManager.WithinTransaction(ctx, func(r repositories.Registry) error {
		var err error
		bill, err = r.Bills.GetByID(ctx, billID)
		if err != nil {
			return notFound(err, domain.ErrBillNotFound)
		}

		if bill.Status != domain.BillStatusPaid {
			return invalid(domain.ErrBillNotVerified)
		}

		payment, err := findPayment(ctx, r.Transactions, bill)
		if err != nil {
			return err
		}
		if payment != nil {
			if err := r.Transactions.Delete(ctx, payment.ID); err != nil {
				return err
			}
		} else {
			log.Printf("⚠️ No payment transaction found for bill %s, reverting status only", bill.ID)
		}

		return moveBill(ctx, r.Bills, bill, domain.BillStatusClaimedPaid)
	})
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx)

	log.Printf("✅ Bill %s unverified by %s", billID, p.Name)
	return bill, nil
}

// moveBill applies a status change that was checked against the loaded bill.
// Losing a race to a concurrent transition is reported as a validation error.
func moveBill(ctx context.Context, billRepo repositories.BillRepository, bill *models.Bill, status domain.BillStatus) error {
	if err := billRepo.UpdateStatus(ctx, bill, status); err != nil {
		if errors.Is(err, domain.ErrBillStatusChanged) {
			return invalid(err)
		}
		return err
	}
	bill.Status = status
	return nil
}

// findPayment locates the inflow recorded when bill was verified. Rows
// written before transactions carried a bill id are matched by description
// and amount. A nil result with nil error means nothing was found.
func findPayment(ctx context.Context, txRepo repositories.TransactionRepository, bill *models.Bill) (*models.Transaction, error) {
	tx, err := txRepo.FindByBillID(ctx, bill.ID)
	if err == nil {
		return tx, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	tx, err = txRepo.FindUnlinkedPayment(ctx, PaymentDescription(bill), bill.Amount)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return tx, err
}

// PaymentDescription is the ledger description of the inflow for bill
func PaymentDescription(bill *models.Bill) string {
	return fmt.Sprintf("%s - %s", bill.Description, bill.OwnerName())
}
